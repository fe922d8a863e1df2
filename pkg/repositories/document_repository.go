package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/models"
)

// DocumentRepository provides data access for compliance documents.
type DocumentRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceDocument, error)
	ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.ComplianceDocument, error)
	ListExpiringWithin(ctx context.Context, days int) ([]*models.ComplianceDocument, error)
	ListAll(ctx context.Context) ([]*models.ComplianceDocument, error)
}

type documentRepository struct{}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

var _ DocumentRepository = (*documentRepository)(nil)

const documentColumns = `id, org_id, property_id, document_type, title, storage_key,
	content_type, issue_date, expiry_date, created_at, updated_at`

func scanDocument(row interface{ Scan(...any) error }) (*models.ComplianceDocument, error) {
	var d models.ComplianceDocument
	err := row.Scan(&d.ID, &d.OrgID, &d.PropertyID, &d.DocumentType, &d.Title, &d.StorageKey,
		&d.ContentType, &d.IssueDate, &d.ExpiryDate, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *documentRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceDocument, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM compliance_documents WHERE id = $1`, documentColumns)
	d, err := scanDocument(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, "compliance document")
	}
	return d, nil
}

func (r *documentRepository) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.ComplianceDocument, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM compliance_documents WHERE property_id = $1 ORDER BY expiry_date NULLS LAST, id`, documentColumns),
		propertyID)
}

func (r *documentRepository) ListExpiringWithin(ctx context.Context, days int) ([]*models.ComplianceDocument, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM compliance_documents
			WHERE expiry_date IS NOT NULL AND expiry_date <= NOW() + ($1 * INTERVAL '1 day')
			ORDER BY expiry_date, id`, documentColumns),
		days)
}

func (r *documentRepository) ListAll(ctx context.Context) ([]*models.ComplianceDocument, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM compliance_documents ORDER BY expiry_date NULLS LAST, id`, documentColumns))
}

func (r *documentRepository) list(ctx context.Context, query string, args ...any) ([]*models.ComplianceDocument, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list compliance documents: %w", err)
	}
	defer rows.Close()

	var out []*models.ComplianceDocument
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan compliance document: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
