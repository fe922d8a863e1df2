package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
)

// DwellingRepository provides data access for dwellings.
type DwellingRepository interface {
	List(ctx context.Context) ([]*models.Dwelling, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Dwelling, error)
	ListVacant(ctx context.Context) ([]*models.Dwelling, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dwelling, error)
	UpdateOccupancy(ctx context.Context, id uuid.UUID, status models.OccupancyStatus) error
}

type dwellingRepository struct{}

// NewDwellingRepository creates a new DwellingRepository.
func NewDwellingRepository() DwellingRepository {
	return &dwellingRepository{}
}

var _ DwellingRepository = (*dwellingRepository)(nil)

const dwellingColumns = `id, org_id, property_id, name, capacity, occupancy_status,
	sda_design, weekly_rent, created_at, updated_at`

func scanDwelling(row interface{ Scan(...any) error }) (*models.Dwelling, error) {
	var d models.Dwelling
	err := row.Scan(&d.ID, &d.OrgID, &d.PropertyID, &d.Name, &d.Capacity, &d.OccupancyStatus,
		&d.SDADesign, &d.WeeklyRent, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *dwellingRepository) List(ctx context.Context) ([]*models.Dwelling, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM dwellings ORDER BY name, id`, dwellingColumns))
}

func (r *dwellingRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Dwelling, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM dwellings WHERE property_id = $1 ORDER BY name, id`, dwellingColumns),
		propertyID)
}

func (r *dwellingRepository) ListVacant(ctx context.Context) ([]*models.Dwelling, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM dwellings WHERE occupancy_status != 'fully_occupied' ORDER BY name, id`, dwellingColumns))
}

func (r *dwellingRepository) list(ctx context.Context, query string, args ...any) ([]*models.Dwelling, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list dwellings: %w", err)
	}
	defer rows.Close()

	var out []*models.Dwelling
	for rows.Next() {
		d, err := scanDwelling(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan dwelling: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dwellingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dwelling, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM dwellings WHERE id = $1`, dwellingColumns)
	d, err := scanDwelling(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, "dwelling")
	}
	return d, nil
}

func (r *dwellingRepository) UpdateOccupancy(ctx context.Context, id uuid.UUID, status models.OccupancyStatus) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE dwellings SET occupancy_status = $2, updated_at = NOW() WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("failed to update dwelling occupancy: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dwelling %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
