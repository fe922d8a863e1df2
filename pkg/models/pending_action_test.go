package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestPendingActionConfirmable(t *testing.T) {
	now := time.Now()
	base := PendingAction{
		Token:      uuid.New(),
		ActionType: "move_participant",
		Status:     ActionPendingConfirmation,
		CreatedAt:  now,
		ExpiresAt:  now.Add(10 * time.Minute),
	}

	if !base.Confirmable(now) {
		t.Fatal("fresh pending action should be confirmable")
	}

	expired := base
	expired.ExpiresAt = now.Add(-time.Minute)
	if expired.Confirmable(now) {
		t.Error("expired action should not be confirmable")
	}

	executed := base
	executed.Status = ActionExecuted
	if executed.Confirmable(now) {
		t.Error("executed action should not be confirmable again")
	}

	discarded := base
	discarded.Status = ActionDiscarded
	if discarded.Confirmable(now) {
		t.Error("discarded action should not be confirmable")
	}
}
