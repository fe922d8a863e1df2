package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/models"
)

// InspectionRepository provides data access for property inspections.
type InspectionRepository interface {
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Inspection, error)
	ListUpcoming(ctx context.Context, days int) ([]*models.Inspection, error)
}

type inspectionRepository struct{}

// NewInspectionRepository creates a new InspectionRepository.
func NewInspectionRepository() InspectionRepository {
	return &inspectionRepository{}
}

var _ InspectionRepository = (*inspectionRepository)(nil)

const inspectionColumns = `id, org_id, property_id, type, status, scheduled_date,
	completed_date, inspector, findings, created_at, updated_at`

func scanInspection(row interface{ Scan(...any) error }) (*models.Inspection, error) {
	var i models.Inspection
	err := row.Scan(&i.ID, &i.OrgID, &i.PropertyID, &i.Type, &i.Status, &i.ScheduledDate,
		&i.CompletedDate, &i.Inspector, &i.Findings, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *inspectionRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Inspection, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM inspections WHERE property_id = $1 ORDER BY scheduled_date DESC, id`, inspectionColumns),
		propertyID)
}

func (r *inspectionRepository) ListUpcoming(ctx context.Context, days int) ([]*models.Inspection, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM inspections
			WHERE status = 'scheduled' AND scheduled_date <= NOW() + ($1 * INTERVAL '1 day')
			ORDER BY scheduled_date, id`, inspectionColumns),
		days)
}

func (r *inspectionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Inspection, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspections: %w", err)
	}
	defer rows.Close()

	var out []*models.Inspection
	for rows.Next() {
		i, err := scanInspection(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan inspection: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
