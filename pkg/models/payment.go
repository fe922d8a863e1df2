package models

import (
	"time"

	"github.com/google/uuid"
)

// PaymentStatus is the reconciliation state of an SDA payment.
type PaymentStatus string

const (
	PaymentExpected PaymentStatus = "expected"
	PaymentReceived PaymentStatus = "received"
	PaymentOverdue  PaymentStatus = "overdue"
	PaymentPartial  PaymentStatus = "partial"
)

// Payment is a monthly SDA payment for a participant. ExpectedAmount comes
// from the participant's current plan; Variance is actual minus expected.
type Payment struct {
	ID             uuid.UUID     `json:"id"`
	OrgID          uuid.UUID     `json:"org_id"`
	ParticipantID  uuid.UUID     `json:"participant_id"`
	PlanID         *uuid.UUID    `json:"plan_id,omitempty"`
	Status         PaymentStatus `json:"status"`
	ExpectedAmount float64       `json:"expected_amount"`
	ActualAmount   *float64      `json:"actual_amount,omitempty"`
	Variance       *float64      `json:"variance,omitempty"`
	DueDate        time.Time     `json:"due_date"`
	PaidDate       *time.Time    `json:"paid_date,omitempty"`
	Notes          string        `json:"notes,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}
