package models

import (
	"time"

	"github.com/google/uuid"
)

// PendingActionStatus is the lifecycle state of a prepared action.
// Every action passes through pending_confirmation; there is no transition
// that skips it, which is what makes at-most-once execution checkable.
type PendingActionStatus string

const (
	ActionPendingConfirmation PendingActionStatus = "pending_confirmation"
	ActionExecuted            PendingActionStatus = "executed"
	ActionDiscarded           PendingActionStatus = "discarded"
)

// PendingAction is a fully validated write that has NOT executed yet. It
// holds everything needed to run the mutation once the user confirms, plus
// the human-readable description shown in the confirmation prompt.
type PendingAction struct {
	Token       uuid.UUID           `json:"token"`
	OrgID       uuid.UUID           `json:"org_id"`
	ActionType  string              `json:"action_type"`
	Description string              `json:"description"`
	Params      map[string]any      `json:"params"`
	Status      PendingActionStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
	ExpiresAt   time.Time           `json:"expires_at"`
}

// Expired reports whether the confirmation window has closed.
func (a *PendingAction) Expired(now time.Time) bool {
	return now.After(a.ExpiresAt)
}

// Confirmable reports whether the action can still be executed: it must be
// awaiting confirmation and inside its window. Executed and discarded
// actions can never come back.
func (a *PendingAction) Confirmable(now time.Time) bool {
	return a.Status == ActionPendingConfirmation && !a.Expired(now)
}
