package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/database"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/tools"
)

// moveFixture wires a dispatcher whose repos know one participant and two
// dwellings, with call counters on every write method.
type moveFixture struct {
	dispatcher   *Dispatcher
	repos        *Repos
	participant  *models.Participant
	target       *models.Dwelling
	participants *mockParticipantRepo
	dwellings    *mockDwellingRepo
}

func newMoveFixture(t *testing.T) *moveFixture {
	t.Helper()

	oldDwellingID := uuid.New()
	participant := &models.Participant{
		ID:         uuid.New(),
		FirstName:  "Jon",
		LastName:   "Smith",
		Status:     models.ParticipantActive,
		DwellingID: &oldDwellingID,
	}
	target := &models.Dwelling{
		ID:       uuid.New(),
		Name:     "HPS House",
		Capacity: 2,
	}
	previous := &models.Dwelling{
		ID:       oldDwellingID,
		Name:     "Robust House",
		Capacity: 2,
	}

	repos, participants, dwellings := testRepos()
	participants.ListFunc = func(ctx context.Context) ([]*models.Participant, error) {
		return []*models.Participant{participant}, nil
	}
	participants.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
		if id == participant.ID {
			return participant, nil
		}
		return nil, apperrors.ErrNotFound
	}
	dwellings.ListFunc = func(ctx context.Context) ([]*models.Dwelling, error) {
		return []*models.Dwelling{target, previous}, nil
	}
	dwellings.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Dwelling, error) {
		switch id {
		case target.ID:
			return target, nil
		case previous.ID:
			return previous, nil
		}
		return nil, apperrors.ErrNotFound
	}

	dispatcher := NewDispatcher(
		tools.NewRegistry(tools.AssistantTools()),
		repos,
		NewPendingActionStore(10*time.Minute),
		testLogger(),
	)

	return &moveFixture{
		dispatcher:   dispatcher,
		repos:        repos,
		participant:  participant,
		target:       target,
		participants: participants,
		dwellings:    dwellings,
	}
}

func moveInput() map[string]any {
	return map[string]any{
		"participant_name": "jon",
		"target_dwelling":  "HPS House",
	}
}

func TestPrepareActionDoesNotMutate(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	action, err := f.dispatcher.PrepareAction(ctx, "move_participant", moveInput())
	require.NoError(t, err)

	assert.Equal(t, models.ActionPendingConfirmation, action.Status)
	assert.NotEqual(t, uuid.Nil, action.Token)
	assert.Contains(t, action.Description, "Move jon to HPS House")
	assert.Equal(t, f.participant.ID.String(), action.Params["participant_id"])

	// Nothing may be written until the user confirms.
	assert.Zero(t, f.participants.UpdateDwellingCalls)
	assert.Zero(t, f.participants.UpdateStatusCalls)
	assert.Zero(t, f.dwellings.UpdateOccupancyCalls)
}

func TestConfirmActionExecutesOnce(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	action, err := f.dispatcher.PrepareAction(ctx, "move_participant", moveInput())
	require.NoError(t, err)

	result, err := f.dispatcher.ConfirmAction(ctx, action.Token)
	require.NoError(t, err)
	assert.Contains(t, result, "Jon Smith")
	assert.Contains(t, result, "HPS House")
	assert.Equal(t, 1, f.participants.UpdateDwellingCalls)
	// Target and previous dwelling both get their occupancy refreshed.
	assert.Equal(t, 2, f.dwellings.UpdateOccupancyCalls)

	// Confirming the same token again must not execute a second time.
	_, err = f.dispatcher.ConfirmAction(ctx, action.Token)
	assert.True(t, errors.Is(err, apperrors.ErrStaleAction))
	assert.Equal(t, 1, f.participants.UpdateDwellingCalls)
}

func TestConfirmActionStaleWhenParticipantDeleted(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	action, err := f.dispatcher.PrepareAction(ctx, "move_participant", moveInput())
	require.NoError(t, err)

	// The participant vanishes between preparation and confirmation.
	f.participants.GetByIDFunc = func(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
		return nil, apperrors.ErrNotFound
	}

	_, err = f.dispatcher.ConfirmAction(ctx, action.Token)
	assert.True(t, errors.Is(err, apperrors.ErrStaleAction))
	assert.Zero(t, f.participants.UpdateDwellingCalls)
	assert.Zero(t, f.dwellings.UpdateOccupancyCalls)
}

func TestConfirmActionRefusedAtCapacity(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	action, err := f.dispatcher.PrepareAction(ctx, "move_participant", moveInput())
	require.NoError(t, err)

	f.participants.CountActiveInDwellingFunc = func(ctx context.Context, dwellingID uuid.UUID) (int, error) {
		return f.target.Capacity, nil
	}

	_, err = f.dispatcher.ConfirmAction(ctx, action.Token)
	assert.True(t, errors.Is(err, apperrors.ErrDwellingAtCapacity))
	assert.Zero(t, f.participants.UpdateDwellingCalls)
}

func TestConfirmActionRejectsCrossOrgToken(t *testing.T) {
	f := newMoveFixture(t)

	orgA := uuid.New()
	orgB := uuid.New()
	ctxA := database.SetTenantScope(context.Background(), &database.TenantScope{OrgID: orgA})
	ctxB := database.SetTenantScope(context.Background(), &database.TenantScope{OrgID: orgB})

	action, err := f.dispatcher.PrepareAction(ctxA, "move_participant", moveInput())
	require.NoError(t, err)
	assert.Equal(t, orgA, action.OrgID)

	// A token prepared in one org must not confirm in another.
	_, err = f.dispatcher.ConfirmAction(ctxB, action.Token)
	assert.True(t, errors.Is(err, apperrors.ErrStaleAction))
	assert.Zero(t, f.participants.UpdateDwellingCalls)
	assert.Zero(t, f.dwellings.UpdateOccupancyCalls)

	// The failed cross-org attempt consumed the token, so even the owning
	// org cannot replay it.
	_, err = f.dispatcher.ConfirmAction(ctxA, action.Token)
	assert.True(t, errors.Is(err, apperrors.ErrStaleAction))
}

func TestCancelActionDiscards(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	action, err := f.dispatcher.PrepareAction(ctx, "move_participant", moveInput())
	require.NoError(t, err)

	f.dispatcher.CancelAction(action.Token)

	_, err = f.dispatcher.ConfirmAction(ctx, action.Token)
	assert.True(t, errors.Is(err, apperrors.ErrStaleAction))
	assert.Zero(t, f.participants.UpdateDwellingCalls)
}

func TestExecuteReadToolRefusesActions(t *testing.T) {
	f := newMoveFixture(t)

	_, err := f.dispatcher.ExecuteReadTool(context.Background(), "move_participant", moveInput())
	require.Error(t, err)
	assert.Zero(t, f.participants.UpdateDwellingCalls)
}

func TestDispatcherUnknownTool(t *testing.T) {
	f := newMoveFixture(t)
	ctx := context.Background()

	_, err := f.dispatcher.ExecuteReadTool(ctx, "drop_all_tables", nil)
	assert.True(t, errors.Is(err, apperrors.ErrToolNotFound))

	_, err = f.dispatcher.PrepareAction(ctx, "drop_all_tables", nil)
	assert.True(t, errors.Is(err, apperrors.ErrToolNotFound))
}

func TestPrepareActionMissingFields(t *testing.T) {
	f := newMoveFixture(t)

	_, err := f.dispatcher.PrepareAction(context.Background(), "move_participant", map[string]any{
		"participant_name": "jon",
	})

	var verr *tools.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Missing, "target_dwelling")
}

func TestPrepareActionInvalidStatus(t *testing.T) {
	repos, participants, _ := testRepos()
	participants.ListFunc = func(ctx context.Context) ([]*models.Participant, error) {
		return []*models.Participant{{ID: uuid.New(), FirstName: "Mia", LastName: "Wong"}}, nil
	}

	dispatcher := NewDispatcher(
		tools.NewRegistry(tools.AssistantTools()),
		repos,
		NewPendingActionStore(10*time.Minute),
		testLogger(),
	)

	_, err := dispatcher.PrepareAction(context.Background(), "update_participant_status", map[string]any{
		"participant_name": "mia",
		"status":           "vanished",
	})

	var verr *tools.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Invalid, "status")
}

func TestPrepareActionRejectsUnknownEnumValues(t *testing.T) {
	prop := &models.Property{ID: uuid.New(), Name: "Riverside Villas"}
	repos, _, _ := testRepos()
	repos.Properties = &mockPropertyRepo{
		ListFunc: func(ctx context.Context) ([]*models.Property, error) {
			return []*models.Property{prop}, nil
		},
	}
	maintenance := &mockMaintenanceRepo{}
	repos.Maintenance = maintenance

	dispatcher := NewDispatcher(
		tools.NewRegistry(tools.AssistantTools()),
		repos,
		NewPendingActionStore(10*time.Minute),
		testLogger(),
	)

	_, err := dispatcher.PrepareAction(context.Background(), "create_maintenance_request", map[string]any{
		"property_name": "riverside",
		"description":   "leaking tap",
		"category":      "bogus",
		"priority":      "catastrophic",
	})

	var verr *tools.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Invalid, "category")
	assert.Contains(t, verr.Invalid, "priority")
	assert.Zero(t, maintenance.CreateCalls)
}
