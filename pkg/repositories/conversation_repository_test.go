//go:build integration

package repositories

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/database"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/testhelpers"
)

func createConversation(t *testing.T, ctx context.Context, repo ConversationRepository, orgID uuid.UUID) *models.Conversation {
	t.Helper()
	conv := &models.Conversation{
		OrgID:  orgID,
		UserID: uuid.New(),
		Title:  "Vacancy questions",
	}
	if err := repo.Create(ctx, conv); err != nil {
		t.Fatalf("failed to create conversation: %v", err)
	}
	return conv
}

func TestConversationRepository_Lifecycle(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgID := seedOrg(t, db, "Conversation Lifecycle Org")
	repo := NewConversationRepository()

	ctx, cleanup := tenantContext(t, db, orgID)
	defer cleanup()

	conv := createConversation(t, ctx, repo, orgID)
	if conv.ID == uuid.Nil {
		t.Fatal("Create did not assign an ID")
	}
	if !conv.IsActive {
		t.Error("new conversation should be active")
	}

	got, err := repo.GetByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Vacancy questions" {
		t.Errorf("got title %q", got.Title)
	}
	if got.OrgID != orgID {
		t.Errorf("got org %s, want %s", got.OrgID, orgID)
	}

	if err := repo.UpdateTitle(ctx, conv.ID, "Vacancies at Riverside"); err != nil {
		t.Fatalf("UpdateTitle failed: %v", err)
	}
	got, err = repo.GetByID(ctx, conv.ID)
	if err != nil {
		t.Fatalf("GetByID after rename failed: %v", err)
	}
	if got.Title != "Vacancies at Riverside" {
		t.Errorf("got title %q", got.Title)
	}

	listed, err := repo.ListByUser(ctx, conv.UserID)
	if err != nil {
		t.Fatalf("ListByUser failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != conv.ID {
		t.Errorf("ListByUser returned %d conversations", len(listed))
	}

	if err := repo.Deactivate(ctx, conv.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if _, err := repo.GetByID(ctx, conv.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("deactivated conversation still visible: %v", err)
	}
	if err := repo.Deactivate(ctx, conv.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("second Deactivate should be ErrNotFound, got %v", err)
	}
}

func TestConversationRepository_AppendTurnOrdering(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgID := seedOrg(t, db, "Turn Ordering Org")
	repo := NewConversationRepository()

	ctx, cleanup := tenantContext(t, db, orgID)
	defer cleanup()

	conv := createConversation(t, ctx, repo, orgID)

	var prev *models.ConversationTurn
	for i := 0; i < 5; i++ {
		turn, err := repo.AppendTurn(ctx, conv.ID, models.TurnUser, fmt.Sprintf("message %d", i))
		if err != nil {
			t.Fatalf("AppendTurn %d failed: %v", i, err)
		}
		if prev != nil && !turn.CreatedAt.After(prev.CreatedAt) {
			t.Errorf("turn %d timestamp %v not after %v", i, turn.CreatedAt, prev.CreatedAt)
		}
		prev = turn
	}

	if _, err := repo.AppendTurn(ctx, uuid.New(), models.TurnUser, "orphan"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("append to missing conversation should be ErrNotFound, got %v", err)
	}
}

// Two writers appending to the same conversation from separate connections
// must serialize on the row lock so every stored timestamp is distinct and
// strictly increasing.
func TestConversationRepository_AppendTurnConcurrent(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgID := seedOrg(t, db, "Concurrent Turns Org")
	repo := NewConversationRepository()

	ctx, cleanup := tenantContext(t, db, orgID)
	defer cleanup()

	conv := createConversation(t, ctx, repo, orgID)

	const writers = 2
	const turnsPerWriter = 10

	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()

			// Each writer gets its own scoped connection, like a replica.
			scope, err := db.DB.WithTenant(context.Background(), orgID)
			if err != nil {
				errs <- fmt.Errorf("writer %d scope: %w", w, err)
				return
			}
			defer scope.Close()
			wctx := database.SetTenantScope(context.Background(), scope)

			for i := 0; i < turnsPerWriter; i++ {
				content := fmt.Sprintf("writer %d message %d", w, i)
				if _, err := repo.AppendTurn(wctx, conv.ID, models.TurnAssistant, content); err != nil {
					errs <- fmt.Errorf("writer %d append %d: %w", w, i, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}

	turns, err := repo.GetTurns(ctx, conv.ID, writers*turnsPerWriter)
	if err != nil {
		t.Fatalf("GetTurns failed: %v", err)
	}
	if len(turns) != writers*turnsPerWriter {
		t.Fatalf("got %d turns, want %d", len(turns), writers*turnsPerWriter)
	}

	if !sort.SliceIsSorted(turns, func(i, j int) bool {
		return turns[i].CreatedAt.Before(turns[j].CreatedAt)
	}) {
		t.Error("turns not returned oldest-first")
	}
	for i := 1; i < len(turns); i++ {
		if !turns[i].CreatedAt.After(turns[i-1].CreatedAt) {
			t.Errorf("turn %d timestamp %v not strictly after %v",
				i, turns[i].CreatedAt, turns[i-1].CreatedAt)
		}
	}
}

func TestConversationRepository_GetTurnsLimit(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgID := seedOrg(t, db, "Turn Limit Org")
	repo := NewConversationRepository()

	ctx, cleanup := tenantContext(t, db, orgID)
	defer cleanup()

	conv := createConversation(t, ctx, repo, orgID)
	for i := 0; i < 6; i++ {
		if _, err := repo.AppendTurn(ctx, conv.ID, models.TurnUser, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("AppendTurn failed: %v", err)
		}
	}

	// The limit keeps the most recent turns, returned oldest-first.
	turns, err := repo.GetTurns(ctx, conv.ID, 4)
	if err != nil {
		t.Fatalf("GetTurns failed: %v", err)
	}
	if len(turns) != 4 {
		t.Fatalf("got %d turns, want 4", len(turns))
	}
	if turns[0].Content != "message 2" || turns[3].Content != "message 5" {
		t.Errorf("got window %q .. %q", turns[0].Content, turns[3].Content)
	}
}

func TestConversationRepository_CrossOrgInvisible(t *testing.T) {
	db := testhelpers.GetTestDB(t)
	orgA := seedOrg(t, db, "Conversation Org A")
	orgB := seedOrg(t, db, "Conversation Org B")
	repo := NewConversationRepository()

	ctxA, cleanupA := tenantContext(t, db, orgA)
	defer cleanupA()
	conv := createConversation(t, ctxA, repo, orgA)
	if _, err := repo.AppendTurn(ctxA, conv.ID, models.TurnUser, "hello"); err != nil {
		t.Fatalf("AppendTurn failed: %v", err)
	}

	ctxB, cleanupB := tenantContext(t, db, orgB)
	defer cleanupB()

	if _, err := repo.GetByID(ctxB, conv.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("conversation visible across orgs: %v", err)
	}
	if _, err := repo.AppendTurn(ctxB, conv.ID, models.TurnUser, "intruder"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("cross-org append should be ErrNotFound, got %v", err)
	}
	turns, err := repo.GetTurns(ctxB, conv.ID, 10)
	if err != nil {
		t.Fatalf("GetTurns failed: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("turns visible across orgs: %d", len(turns))
	}
}
