package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/matching"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/tools"
)

// resolveAction resolves the entities an action references and builds the
// human description for the confirmation prompt. The returned params carry
// the raw input plus resolved entity IDs; execution re-checks those IDs
// against current data at confirm time.
func (d *Dispatcher) resolveAction(ctx context.Context, name string, input map[string]any) (string, map[string]any, error) {
	params := make(map[string]any, len(input)+2)
	for k, v := range input {
		params[k] = v
	}

	var notes []string

	switch name {
	case "move_participant":
		participant, amb, err := d.resolveParticipant(ctx, inputString(input, "participant_name"))
		if err != nil {
			return "", nil, err
		}
		if amb != nil {
			notes = append(notes, fmt.Sprintf("several participants matched (%v); picked %s", amb.Names, participant.FullName()))
		}
		dwelling, amb, err := d.resolveDwelling(ctx, inputString(input, "target_dwelling"))
		if err != nil {
			return "", nil, err
		}
		if amb != nil {
			notes = append(notes, fmt.Sprintf("several dwellings matched (%v); picked %s", amb.Names, dwelling.Name))
		}
		params["participant_id"] = participant.ID.String()
		params["target_dwelling_id"] = dwelling.ID.String()

	case "create_maintenance_request":
		property, amb, err := d.resolveProperty(ctx, inputString(input, "property_name"))
		if err != nil {
			return "", nil, err
		}
		if amb != nil {
			notes = append(notes, fmt.Sprintf("several properties matched (%v); picked %s", amb.Names, property.Name))
		}
		params["property_id"] = property.ID.String()

	case "update_maintenance_status":
		open, err := d.repos.Maintenance.ListOpen(ctx)
		if err != nil {
			return "", nil, err
		}
		req, amb, err := resolveMaintenance(inputString(input, "description"), open)
		if err != nil {
			return "", nil, err
		}
		if amb != nil {
			notes = append(notes, fmt.Sprintf("several requests matched (%v); picked %q", amb.Names, req.Description))
		}
		params["maintenance_id"] = req.ID.String()

	case "record_payment":
		participant, amb, err := d.resolveParticipant(ctx, inputString(input, "participant_name"))
		if err != nil {
			return "", nil, err
		}
		if amb != nil {
			notes = append(notes, fmt.Sprintf("several participants matched (%v); picked %s", amb.Names, participant.FullName()))
		}
		params["participant_id"] = participant.ID.String()

	case "update_participant_status":
		participant, amb, err := d.resolveParticipant(ctx, inputString(input, "participant_name"))
		if err != nil {
			return "", nil, err
		}
		if amb != nil {
			notes = append(notes, fmt.Sprintf("several participants matched (%v); picked %s", amb.Names, participant.FullName()))
		}
		params["participant_id"] = participant.ID.String()

	default:
		return "", nil, fmt.Errorf("action tool %q has no implementation", name)
	}

	desc := tools.DescribeAction(name, input)
	for _, note := range notes {
		desc += " (" + note + ")"
	}
	return desc, params, nil
}

// executeAction runs a confirmed action. Every referenced entity is fetched
// fresh; a missing one means the world changed since preparation and the
// whole action fails as stale with nothing written.
func (d *Dispatcher) executeAction(ctx context.Context, action *models.PendingAction) (string, error) {
	switch action.ActionType {
	case "move_participant":
		return d.executeMoveParticipant(ctx, action.Params)
	case "create_maintenance_request":
		return d.executeCreateMaintenance(ctx, action.Params)
	case "update_maintenance_status":
		return d.executeUpdateMaintenanceStatus(ctx, action.Params)
	case "record_payment":
		return d.executeRecordPayment(ctx, action.Params)
	case "update_participant_status":
		return d.executeUpdateParticipantStatus(ctx, action.Params)
	default:
		return "", fmt.Errorf("action tool %q has no implementation", action.ActionType)
	}
}

func paramUUID(params map[string]any, key string) (uuid.UUID, error) {
	s, _ := params[key].(string)
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s in pending action: %w", key, err)
	}
	return id, nil
}

func (d *Dispatcher) executeMoveParticipant(ctx context.Context, params map[string]any) (string, error) {
	participantID, err := paramUUID(params, "participant_id")
	if err != nil {
		return "", err
	}
	dwellingID, err := paramUUID(params, "target_dwelling_id")
	if err != nil {
		return "", err
	}

	participant, err := d.repos.Participants.GetByID(ctx, participantID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", staleErr("participant no longer exists")
	}
	if err != nil {
		return "", err
	}

	dwelling, err := d.repos.Dwellings.GetByID(ctx, dwellingID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", staleErr("target dwelling no longer exists")
	}
	if err != nil {
		return "", err
	}

	occupants, err := d.repos.Participants.CountActiveInDwelling(ctx, dwellingID)
	if err != nil {
		return "", err
	}
	if occupants >= dwelling.Capacity {
		return "", fmt.Errorf("%s: %w", dwelling.Name, apperrors.ErrDwellingAtCapacity)
	}

	previousDwelling := participant.DwellingID

	now := time.Now()
	if err := d.repos.Participants.UpdateDwelling(ctx, participantID, &dwellingID, &now); err != nil {
		return "", err
	}

	if err := d.recomputeOccupancy(ctx, dwellingID); err != nil {
		return "", err
	}
	if previousDwelling != nil && *previousDwelling != dwellingID {
		if err := d.recomputeOccupancy(ctx, *previousDwelling); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("Moved %s to %s.", participant.FullName(), dwelling.Name), nil
}

func (d *Dispatcher) executeCreateMaintenance(ctx context.Context, params map[string]any) (string, error) {
	propertyID, err := paramUUID(params, "property_id")
	if err != nil {
		return "", err
	}

	property, err := d.repos.Properties.GetByID(ctx, propertyID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", staleErr("property no longer exists")
	}
	if err != nil {
		return "", err
	}

	category := inputString(params, "category")
	if category == "" {
		category = "general"
	}
	priority := inputString(params, "priority")
	if priority == "" {
		priority = string(models.PriorityMedium)
	}

	req := &models.MaintenanceRequest{
		OrgID:       property.OrgID,
		PropertyID:  property.ID,
		Description: inputString(params, "description"),
		Category:    category,
		Priority:    models.MaintenancePriority(priority),
		Status:      models.MaintenanceReported,
	}
	if err := d.repos.Maintenance.Create(ctx, req); err != nil {
		return "", err
	}

	return fmt.Sprintf("Created %s priority maintenance request at %s.", priority, property.Name), nil
}

func (d *Dispatcher) executeUpdateMaintenanceStatus(ctx context.Context, params map[string]any) (string, error) {
	maintenanceID, err := paramUUID(params, "maintenance_id")
	if err != nil {
		return "", err
	}

	req, err := d.repos.Maintenance.GetByID(ctx, maintenanceID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", staleErr("maintenance request no longer exists")
	}
	if err != nil {
		return "", err
	}

	status := models.MaintenanceStatus(inputString(params, "status"))

	var completedDate *time.Time
	if status == models.MaintenanceCompleted {
		now := time.Now()
		completedDate = &now
	}
	if err := d.repos.Maintenance.UpdateStatus(ctx, maintenanceID, status, completedDate); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", staleErr("maintenance request no longer exists")
		}
		return "", err
	}

	return fmt.Sprintf("Updated %q to %s.", req.Description, status), nil
}

func (d *Dispatcher) executeRecordPayment(ctx context.Context, params map[string]any) (string, error) {
	participantID, err := paramUUID(params, "participant_id")
	if err != nil {
		return "", err
	}

	participant, err := d.repos.Participants.GetByID(ctx, participantID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", staleErr("participant no longer exists")
	}
	if err != nil {
		return "", err
	}

	plan, err := d.repos.Plans.GetCurrentByParticipant(ctx, participantID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", fmt.Errorf("%s: %w", participant.FullName(), apperrors.ErrNoCurrentPlan)
	}
	if err != nil {
		return "", err
	}

	amount, ok := inputFloat(params, "amount")
	if !ok {
		return "", fmt.Errorf("pending action is missing a payment amount")
	}

	paidDate := time.Now()
	if s := inputString(params, "payment_date"); s != "" {
		if t, perr := time.Parse("2006-01-02", s); perr == nil {
			paidDate = t
		}
	}

	variance := amount - plan.MonthlySDAAmount
	status := models.PaymentReceived
	if amount < plan.MonthlySDAAmount {
		status = models.PaymentPartial
	}

	payment := &models.Payment{
		OrgID:          participant.OrgID,
		ParticipantID:  participantID,
		PlanID:         &plan.ID,
		Status:         status,
		ExpectedAmount: plan.MonthlySDAAmount,
		ActualAmount:   &amount,
		Variance:       &variance,
		DueDate:        paidDate,
		PaidDate:       &paidDate,
		Notes:          inputString(params, "notes"),
	}
	if err := d.repos.Payments.Create(ctx, payment); err != nil {
		return "", err
	}

	return fmt.Sprintf("Recorded payment of $%.2f for %s (expected $%.2f, variance $%.2f).",
		amount, participant.FullName(), plan.MonthlySDAAmount, variance), nil
}

func (d *Dispatcher) executeUpdateParticipantStatus(ctx context.Context, params map[string]any) (string, error) {
	participantID, err := paramUUID(params, "participant_id")
	if err != nil {
		return "", err
	}

	participant, err := d.repos.Participants.GetByID(ctx, participantID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return "", staleErr("participant no longer exists")
	}
	if err != nil {
		return "", err
	}

	status := models.ParticipantStatus(inputString(params, "status"))

	var moveOutDate *time.Time
	if status == models.ParticipantMovedOut {
		now := time.Now()
		moveOutDate = &now
	}
	if err := d.repos.Participants.UpdateStatus(ctx, participantID, status, moveOutDate); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return "", staleErr("participant no longer exists")
		}
		return "", err
	}

	// Moving out vacates the dwelling and its occupancy changes with it.
	if status == models.ParticipantMovedOut && participant.DwellingID != nil {
		if err := d.repos.Participants.UpdateDwelling(ctx, participantID, nil, nil); err != nil {
			return "", err
		}
		if err := d.recomputeOccupancy(ctx, *participant.DwellingID); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("Updated %s to %s.", participant.FullName(), status), nil
}

// recomputeOccupancy refreshes a dwelling's occupancy status from its
// current head count.
func (d *Dispatcher) recomputeOccupancy(ctx context.Context, dwellingID uuid.UUID) error {
	dwelling, err := d.repos.Dwellings.GetByID(ctx, dwellingID)
	if err != nil {
		return err
	}
	occupants, err := d.repos.Participants.CountActiveInDwelling(ctx, dwellingID)
	if err != nil {
		return err
	}
	return d.repos.Dwellings.UpdateOccupancy(ctx, dwellingID, models.OccupancyFor(occupants, dwelling.Capacity))
}

// resolveMaintenance matches a description fragment against open requests.
func resolveMaintenance(query string, open []*models.MaintenanceRequest) (*models.MaintenanceRequest, *matching.AmbiguousMatchError, error) {
	return matching.ResolveOne(query, open, func(m *models.MaintenanceRequest) string { return m.Description })
}
