package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/models"
)

// PropertyRepository provides data access for properties.
type PropertyRepository interface {
	List(ctx context.Context) ([]*models.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

type propertyRepository struct{}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository() PropertyRepository {
	return &propertyRepository{}
}

var _ PropertyRepository = (*propertyRepository)(nil)

const propertyColumns = `id, org_id, name, address, suburb, state, postcode, sda_category, created_at, updated_at`

func scanProperty(row interface{ Scan(...any) error }) (*models.Property, error) {
	var p models.Property
	err := row.Scan(&p.ID, &p.OrgID, &p.Name, &p.Address, &p.Suburb, &p.State,
		&p.Postcode, &p.SDACategory, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *propertyRepository) List(ctx context.Context) ([]*models.Property, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM properties ORDER BY name, id`, propertyColumns)
	rows, err := scope.Conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan property: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, propertyColumns)
	p, err := scanProperty(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, "property")
	}
	return p, nil
}
