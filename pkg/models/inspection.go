package models

import (
	"time"

	"github.com/google/uuid"
)

// InspectionStatus is the state of a scheduled property inspection.
type InspectionStatus string

const (
	InspectionScheduled InspectionStatus = "scheduled"
	InspectionCompleted InspectionStatus = "completed"
	InspectionCancelled InspectionStatus = "cancelled"
)

// Inspection is a scheduled or completed property inspection.
type Inspection struct {
	ID            uuid.UUID        `json:"id"`
	OrgID         uuid.UUID        `json:"org_id"`
	PropertyID    uuid.UUID        `json:"property_id"`
	Type          string           `json:"type"`
	Status        InspectionStatus `json:"status"`
	ScheduledDate time.Time        `json:"scheduled_date"`
	CompletedDate *time.Time       `json:"completed_date,omitempty"`
	Inspector     string           `json:"inspector,omitempty"`
	Findings      string           `json:"findings,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}
