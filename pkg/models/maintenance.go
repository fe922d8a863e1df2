package models

import (
	"time"

	"github.com/google/uuid"
)

// MaintenanceStatus is the workflow state of a maintenance request.
type MaintenanceStatus string

const (
	MaintenanceReported   MaintenanceStatus = "reported"
	MaintenanceScheduled  MaintenanceStatus = "scheduled"
	MaintenanceInProgress MaintenanceStatus = "in_progress"
	MaintenanceCompleted  MaintenanceStatus = "completed"
	MaintenanceCancelled  MaintenanceStatus = "cancelled"
)

// MaintenancePriority orders requests by urgency.
type MaintenancePriority string

const (
	PriorityLow    MaintenancePriority = "low"
	PriorityMedium MaintenancePriority = "medium"
	PriorityHigh   MaintenancePriority = "high"
	PriorityUrgent MaintenancePriority = "urgent"
)

// MaintenanceRequest is a reported issue against a property or dwelling.
type MaintenanceRequest struct {
	ID            uuid.UUID           `json:"id"`
	OrgID         uuid.UUID           `json:"org_id"`
	PropertyID    uuid.UUID           `json:"property_id"`
	DwellingID    *uuid.UUID          `json:"dwelling_id,omitempty"`
	Description   string              `json:"description"`
	Category      string              `json:"category"`
	Priority      MaintenancePriority `json:"priority"`
	Status        MaintenanceStatus   `json:"status"`
	ReportedDate  time.Time           `json:"reported_date"`
	ScheduledDate *time.Time          `json:"scheduled_date,omitempty"`
	CompletedDate *time.Time          `json:"completed_date,omitempty"`
	Contractor    string              `json:"contractor,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// IsOverdue reports whether the request needs chasing: a scheduled date in
// the past, urgent or high priority still open, or anything sitting in
// reported for more than seven days.
func (m *MaintenanceRequest) IsOverdue(now time.Time) bool {
	switch m.Status {
	case MaintenanceCompleted, MaintenanceCancelled:
		return false
	}
	if m.ScheduledDate != nil && m.ScheduledDate.Before(now) {
		return true
	}
	if m.Priority == PriorityUrgent || m.Priority == PriorityHigh {
		return true
	}
	if m.Status == MaintenanceReported && now.Sub(m.ReportedDate) > 7*24*time.Hour {
		return true
	}
	return false
}
