package models

import (
	"time"

	"github.com/google/uuid"
)

// ParticipantStatus tracks where a participant is in their tenancy lifecycle.
type ParticipantStatus string

const (
	ParticipantActive        ParticipantStatus = "active"
	ParticipantInactive      ParticipantStatus = "inactive"
	ParticipantPendingMoveIn ParticipantStatus = "pending_move_in"
	ParticipantMovedOut      ParticipantStatus = "moved_out"
)

// ValidParticipantStatus reports whether s is a known participant status.
func ValidParticipantStatus(s string) bool {
	switch ParticipantStatus(s) {
	case ParticipantActive, ParticipantInactive, ParticipantPendingMoveIn, ParticipantMovedOut:
		return true
	}
	return false
}

// Participant is an NDIS participant housed (or previously housed) in one of
// the org's dwellings.
type Participant struct {
	ID          uuid.UUID         `json:"id"`
	OrgID       uuid.UUID         `json:"org_id"`
	FirstName   string            `json:"first_name"`
	LastName    string            `json:"last_name"`
	NDISNumber  string            `json:"ndis_number"`
	Status      ParticipantStatus `json:"status"`
	DwellingID  *uuid.UUID        `json:"dwelling_id,omitempty"`
	MoveInDate  *time.Time        `json:"move_in_date,omitempty"`
	MoveOutDate *time.Time        `json:"move_out_date,omitempty"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// FullName returns the participant's display name.
func (p *Participant) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
