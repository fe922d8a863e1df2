package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
)

// ParticipantRepository provides data access for participants.
type ParticipantRepository interface {
	List(ctx context.Context) ([]*models.Participant, error)
	ListByStatus(ctx context.Context, status models.ParticipantStatus) ([]*models.Participant, error)
	ListByDwelling(ctx context.Context, dwellingID uuid.UUID) ([]*models.Participant, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	CountActiveInDwelling(ctx context.Context, dwellingID uuid.UUID) (int, error)
	UpdateDwelling(ctx context.Context, id uuid.UUID, dwellingID *uuid.UUID, moveInDate *time.Time) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ParticipantStatus, moveOutDate *time.Time) error
}

type participantRepository struct{}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository() ParticipantRepository {
	return &participantRepository{}
}

var _ ParticipantRepository = (*participantRepository)(nil)

const participantColumns = `id, org_id, first_name, last_name, ndis_number, status,
	dwelling_id, move_in_date, move_out_date, notes, created_at, updated_at`

func scanParticipant(row interface{ Scan(...any) error }) (*models.Participant, error) {
	var p models.Participant
	err := row.Scan(&p.ID, &p.OrgID, &p.FirstName, &p.LastName, &p.NDISNumber, &p.Status,
		&p.DwellingID, &p.MoveInDate, &p.MoveOutDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *participantRepository) List(ctx context.Context) ([]*models.Participant, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM participants ORDER BY first_name, last_name, id`, participantColumns)
	rows, err := scope.Conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *participantRepository) ListByStatus(ctx context.Context, status models.ParticipantStatus) ([]*models.Participant, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM participants WHERE status = $1 ORDER BY first_name, last_name, id`, participantColumns)
	rows, err := scope.Conn.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by status: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *participantRepository) ListByDwelling(ctx context.Context, dwellingID uuid.UUID) ([]*models.Participant, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM participants WHERE dwelling_id = $1 ORDER BY first_name, last_name, id`, participantColumns)
	rows, err := scope.Conn.Query(ctx, query, dwellingID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants by dwelling: %w", err)
	}
	defer rows.Close()

	var out []*models.Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *participantRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM participants WHERE id = $1`, participantColumns)
	p, err := scanParticipant(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, "participant")
	}
	return p, nil
}

func (r *participantRepository) CountActiveInDwelling(ctx context.Context, dwellingID uuid.UUID) (int, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return 0, err
	}

	var count int
	err = scope.Conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM participants WHERE dwelling_id = $1 AND status IN ('active', 'pending_move_in')`,
		dwellingID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count dwelling occupants: %w", err)
	}
	return count, nil
}

func (r *participantRepository) UpdateDwelling(ctx context.Context, id uuid.UUID, dwellingID *uuid.UUID, moveInDate *time.Time) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE participants SET dwelling_id = $2, move_in_date = $3, updated_at = NOW() WHERE id = $1`,
		id, dwellingID, moveInDate)
	if err != nil {
		return fmt.Errorf("failed to update participant dwelling: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *participantRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ParticipantStatus, moveOutDate *time.Time) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE participants SET status = $2, move_out_date = COALESCE($3, move_out_date), updated_at = NOW() WHERE id = $1`,
		id, status, moveOutDate)
	if err != nil {
		return fmt.Errorf("failed to update participant status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("participant %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
