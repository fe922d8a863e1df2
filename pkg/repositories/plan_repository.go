package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/models"
)

// PlanRepository provides data access for NDIS plans.
type PlanRepository interface {
	GetCurrentByParticipant(ctx context.Context, participantID uuid.UUID) (*models.ParticipantPlan, error)
	ListExpiringWithin(ctx context.Context, days int) ([]*models.ParticipantPlan, error)
}

type planRepository struct{}

// NewPlanRepository creates a new PlanRepository.
func NewPlanRepository() PlanRepository {
	return &planRepository{}
}

var _ PlanRepository = (*planRepository)(nil)

const planColumns = `id, org_id, participant_id, status, start_date, end_date,
	monthly_sda_amount, plan_manager, created_at, updated_at`

func scanPlan(row interface{ Scan(...any) error }) (*models.ParticipantPlan, error) {
	var p models.ParticipantPlan
	err := row.Scan(&p.ID, &p.OrgID, &p.ParticipantID, &p.Status, &p.StartDate, &p.EndDate,
		&p.MonthlySDAAmount, &p.PlanManager, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *planRepository) GetCurrentByParticipant(ctx context.Context, participantID uuid.UUID) (*models.ParticipantPlan, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM participant_plans WHERE participant_id = $1 AND status = 'current' ORDER BY end_date DESC LIMIT 1`,
		planColumns)
	p, err := scanPlan(scope.Conn.QueryRow(ctx, query, participantID))
	if err != nil {
		return nil, mapNotFound(err, "current plan")
	}
	return p, nil
}

func (r *planRepository) ListExpiringWithin(ctx context.Context, days int) ([]*models.ParticipantPlan, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM participant_plans
		 WHERE status = 'current' AND end_date <= NOW() + ($1 * INTERVAL '1 day')
		 ORDER BY end_date, id`,
		planColumns)
	rows, err := scope.Conn.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to list expiring plans: %w", err)
	}
	defer rows.Close()

	var out []*models.ParticipantPlan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
