package apperrors

import "errors"

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	// ErrToolNotFound indicates a tool name outside the static catalogue.
	// This is an integration bug (a hallucinated tool name), not a user error.
	ErrToolNotFound = errors.New("tool not found")

	// ErrStaleAction indicates a pending action whose referenced entities
	// changed or disappeared between preparation and confirmation, or one
	// that was already confirmed, cancelled, or expired.
	ErrStaleAction = errors.New("pending action is stale")

	// ErrDwellingAtCapacity indicates a move into a dwelling with no vacancy.
	ErrDwellingAtCapacity = errors.New("dwelling is at full capacity")

	// ErrNoCurrentPlan indicates a payment recorded for a participant with
	// no current NDIS plan to price it against.
	ErrNoCurrentPlan = errors.New("participant has no current plan")
)
