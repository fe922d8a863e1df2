package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
)

// MaintenanceRepository provides data access for maintenance requests.
type MaintenanceRepository interface {
	Create(ctx context.Context, req *models.MaintenanceRequest) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListOpen(ctx context.Context) ([]*models.MaintenanceRequest, error)
	ListOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error)
	ListReportedSince(ctx context.Context, since time.Time) ([]*models.MaintenanceRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.MaintenanceStatus, completedDate *time.Time) error
}

type maintenanceRepository struct{}

// NewMaintenanceRepository creates a new MaintenanceRepository.
func NewMaintenanceRepository() MaintenanceRepository {
	return &maintenanceRepository{}
}

var _ MaintenanceRepository = (*maintenanceRepository)(nil)

const maintenanceColumns = `id, org_id, property_id, dwelling_id, description, category,
	priority, status, reported_date, scheduled_date, completed_date, contractor, notes,
	created_at, updated_at`

func scanMaintenance(row interface{ Scan(...any) error }) (*models.MaintenanceRequest, error) {
	var m models.MaintenanceRequest
	err := row.Scan(&m.ID, &m.OrgID, &m.PropertyID, &m.DwellingID, &m.Description, &m.Category,
		&m.Priority, &m.Status, &m.ReportedDate, &m.ScheduledDate, &m.CompletedDate,
		&m.Contractor, &m.Notes, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	if req.ReportedDate.IsZero() {
		req.ReportedDate = now
	}

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO maintenance_requests (
			id, org_id, property_id, dwelling_id, description, category, priority, status,
			reported_date, scheduled_date, completed_date, contractor, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		req.ID, req.OrgID, req.PropertyID, req.DwellingID, req.Description, req.Category,
		req.Priority, req.Status, req.ReportedDate, req.ScheduledDate, req.CompletedDate,
		req.Contractor, req.Notes, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create maintenance request: %w", err)
	}
	return nil
}

func (r *maintenanceRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE id = $1`, maintenanceColumns)
	m, err := scanMaintenance(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, "maintenance request")
	}
	return m, nil
}

func (r *maintenanceRepository) ListOpen(ctx context.Context) ([]*models.MaintenanceRequest, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM maintenance_requests
			WHERE status NOT IN ('completed', 'cancelled')
			ORDER BY reported_date, id`, maintenanceColumns))
}

func (r *maintenanceRepository) ListOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM maintenance_requests
			WHERE status NOT IN ('completed', 'cancelled') AND property_id = $1
			ORDER BY reported_date, id`, maintenanceColumns),
		propertyID)
}

func (r *maintenanceRepository) ListReportedSince(ctx context.Context, since time.Time) ([]*models.MaintenanceRequest, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM maintenance_requests WHERE reported_date >= $1 ORDER BY reported_date DESC, id`, maintenanceColumns),
		since)
}

func (r *maintenanceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MaintenanceStatus, completedDate *time.Time) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE maintenance_requests SET status = $2, completed_date = $3, updated_at = NOW() WHERE id = $1`,
		id, status, completedDate)
	if err != nil {
		return fmt.Errorf("failed to update maintenance status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("maintenance request %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *maintenanceRepository) list(ctx context.Context, query string, args ...any) ([]*models.MaintenanceRequest, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list maintenance requests: %w", err)
	}
	defer rows.Close()

	var out []*models.MaintenanceRequest
	for rows.Next() {
		m, err := scanMaintenance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan maintenance request: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
