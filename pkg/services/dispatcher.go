package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/database"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/tools"
)

// Dispatcher routes tool calls. Read tools execute immediately; action tools
// are prepared into pending actions and only execute on explicit
// confirmation. This is the single enforcement point of the write gate:
// there is no code path from a tool name to a mutation that bypasses it.
type Dispatcher struct {
	registry *tools.Registry
	repos    *Repos
	store    *PendingActionStore
	logger   *zap.Logger
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(registry *tools.Registry, repos *Repos, store *PendingActionStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		registry: registry,
		repos:    repos,
		store:    store,
		logger:   logger.Named("dispatcher"),
	}
}

// Registry exposes the tool catalogue for surfaces that list tools.
func (d *Dispatcher) Registry() *tools.Registry {
	return d.registry
}

// ExecuteReadTool runs a read tool and returns its result as a JSON string.
// Domain-level misses ("no such participant") come back as {"error": ...}
// JSON so the model can relay them; Go errors are reserved for real
// failures. Calling an action tool here is refused outright.
func (d *Dispatcher) ExecuteReadTool(ctx context.Context, name string, input map[string]any) (string, error) {
	def, err := d.registry.Lookup(name)
	if err != nil {
		d.logger.Error("model requested unknown tool", zap.String("tool", name))
		return "", err
	}
	if tools.IsActionTool(name) {
		return "", fmt.Errorf("tool %q mutates data and cannot run as a read tool", name)
	}
	if err := tools.ValidateInput(def, input); err != nil {
		return "", err
	}

	d.logger.Debug("executing read tool", zap.String("tool", name))
	return d.runQuery(ctx, name, input)
}

// PrepareAction validates an action tool call and stores it as a pending
// action. Nothing is written; the returned action carries the token and
// human description for the confirmation prompt. Missing required fields
// surface as *tools.ValidationError for the clarification path.
func (d *Dispatcher) PrepareAction(ctx context.Context, name string, input map[string]any) (*models.PendingAction, error) {
	def, err := d.registry.Lookup(name)
	if err != nil {
		d.logger.Error("model requested unknown tool", zap.String("tool", name))
		return nil, err
	}
	if !tools.IsActionTool(name) {
		return nil, fmt.Errorf("tool %q is not an action tool", name)
	}
	if err := tools.ValidateInput(def, input); err != nil {
		return nil, err
	}

	// Resolve referenced entities now so obviously-bad actions fail before
	// the user is asked to confirm, and so the description names the real
	// records. The same resolution runs again at confirm time.
	desc, resolved, err := d.resolveAction(ctx, name, input)
	if err != nil {
		return nil, err
	}

	action := &models.PendingAction{
		Token:       uuid.New(),
		OrgID:       orgFromContext(ctx),
		ActionType:  name,
		Description: desc,
		Params:      resolved,
	}
	d.store.Put(action)

	d.logger.Info("prepared action",
		zap.String("tool", name),
		zap.String("token", action.Token.String()),
		zap.String("description", desc))
	return action, nil
}

// ConfirmAction executes a prepared action exactly once. The referenced
// entities are re-resolved at confirm time; if any has vanished or changed
// underneath, the action fails with ErrStaleAction and nothing is written.
// A second confirm with the same token also fails with ErrStaleAction.
func (d *Dispatcher) ConfirmAction(ctx context.Context, token uuid.UUID) (string, error) {
	action, err := d.store.Take(token)
	if err != nil {
		return "", err
	}

	// A token only confirms within the org it was prepared for. Tokens are
	// unguessable, but a leaked one must still be useless across tenants.
	if action.OrgID != orgFromContext(ctx) {
		d.logger.Warn("action confirmed from a different org",
			zap.String("tool", action.ActionType),
			zap.String("token", token.String()))
		return "", staleErr("action belongs to a different organisation")
	}

	// Revalidate against current data. Prepared params hold entity IDs;
	// stale here means the record disappeared since preparation.
	result, err := d.executeAction(ctx, action)
	if err != nil {
		d.logger.Warn("confirmed action failed",
			zap.String("tool", action.ActionType),
			zap.String("token", token.String()),
			zap.Error(err))
		return "", err
	}

	d.logger.Info("executed action",
		zap.String("tool", action.ActionType),
		zap.String("token", token.String()))
	return result, nil
}

// CancelAction discards a pending action. Cancelling an unknown or expired
// token succeeds; the end state is identical.
func (d *Dispatcher) CancelAction(token uuid.UUID) {
	d.store.Discard(token)
	d.logger.Info("cancelled action", zap.String("token", token.String()))
}

// staleErr wraps a revalidation failure as a stale-action error.
func staleErr(what string) error {
	return fmt.Errorf("%s: %w", what, apperrors.ErrStaleAction)
}

// orgFromContext reads the org from the tenant scope, uuid.Nil when unscoped.
func orgFromContext(ctx context.Context) uuid.UUID {
	if scope, ok := database.GetTenantScope(ctx); ok {
		return scope.OrgID
	}
	return uuid.Nil
}
