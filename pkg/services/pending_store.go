package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
)

// PendingActionStore holds prepared actions awaiting confirmation. It is
// in-memory and mutex-guarded; pending actions are ephemeral by design and
// do not survive a restart (a lost action just means re-asking).
type PendingActionStore struct {
	mu      sync.Mutex
	actions map[uuid.UUID]*models.PendingAction
	ttl     time.Duration
	now     func() time.Time
}

// NewPendingActionStore creates a store with the given confirmation window.
func NewPendingActionStore(ttl time.Duration) *PendingActionStore {
	return &PendingActionStore{
		actions: make(map[uuid.UUID]*models.PendingAction),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Put stores a prepared action and stamps its confirmation window.
func (s *PendingActionStore) Put(action *models.PendingAction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	action.Status = models.ActionPendingConfirmation
	action.CreatedAt = now
	action.ExpiresAt = now.Add(s.ttl)
	s.actions[action.Token] = action

	// Opportunistic sweep keeps the map from accumulating stale entries.
	for token, a := range s.actions {
		if a.Expired(now) && a.Status == models.ActionPendingConfirmation {
			delete(s.actions, token)
		}
	}
}

// Take claims an action for execution. The claim is atomic: a second Take
// with the same token fails with ErrStaleAction, which is what makes
// double-confirm safe. Expired actions also fail as stale.
func (s *PendingActionStore) Take(token uuid.UUID) (*models.PendingAction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	action, ok := s.actions[token]
	if !ok {
		return nil, fmt.Errorf("pending action %s: %w", token, apperrors.ErrStaleAction)
	}
	if !action.Confirmable(s.now()) {
		return nil, fmt.Errorf("pending action %s: %w", token, apperrors.ErrStaleAction)
	}

	action.Status = models.ActionExecuted
	delete(s.actions, token)
	return action, nil
}

// Discard cancels an action. Discarding an unknown or expired token is not
// an error; the end state is the same.
func (s *PendingActionStore) Discard(token uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if action, ok := s.actions[token]; ok {
		action.Status = models.ActionDiscarded
		delete(s.actions, token)
	}
}
