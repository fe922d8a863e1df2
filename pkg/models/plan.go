package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanStatus is the lifecycle state of an NDIS plan.
type PlanStatus string

const (
	PlanCurrent PlanStatus = "current"
	PlanExpired PlanStatus = "expired"
)

// ParticipantPlan is an NDIS plan with an SDA budget component. At most one
// plan per participant is current at a time.
type ParticipantPlan struct {
	ID               uuid.UUID  `json:"id"`
	OrgID            uuid.UUID  `json:"org_id"`
	ParticipantID    uuid.UUID  `json:"participant_id"`
	Status           PlanStatus `json:"status"`
	StartDate        time.Time  `json:"start_date"`
	EndDate          time.Time  `json:"end_date"`
	MonthlySDAAmount float64    `json:"monthly_sda_amount"`
	PlanManager      string     `json:"plan_manager,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// DaysUntilExpiry returns whole days from now until the plan's end date.
// Negative values mean the plan has already ended.
func (p *ParticipantPlan) DaysUntilExpiry(now time.Time) int {
	return int(p.EndDate.Sub(now).Hours() / 24)
}
