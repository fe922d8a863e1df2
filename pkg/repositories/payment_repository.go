package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/models"
)

// PaymentRepository provides data access for SDA payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	ListByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]*models.Payment, error)
	ListDueWithin(ctx context.Context, days int) ([]*models.Payment, error)
	ListPaidSince(ctx context.Context, since time.Time) ([]*models.Payment, error)
	ListForMonth(ctx context.Context, monthStart time.Time) ([]*models.Payment, error)
}

type paymentRepository struct{}

// NewPaymentRepository creates a new PaymentRepository.
func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

var _ PaymentRepository = (*paymentRepository)(nil)

const paymentColumns = `id, org_id, participant_id, plan_id, status, expected_amount,
	actual_amount, variance, due_date, paid_date, notes, created_at, updated_at`

func scanPayment(row interface{ Scan(...any) error }) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.OrgID, &p.ParticipantID, &p.PlanID, &p.Status, &p.ExpectedAmount,
		&p.ActualAmount, &p.Variance, &p.DueDate, &p.PaidDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.Payment) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	if payment.ID == uuid.Nil {
		payment.ID = uuid.New()
	}
	now := time.Now()
	payment.CreatedAt = now
	payment.UpdatedAt = now

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO payments (
			id, org_id, participant_id, plan_id, status, expected_amount,
			actual_amount, variance, due_date, paid_date, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		payment.ID, payment.OrgID, payment.ParticipantID, payment.PlanID, payment.Status,
		payment.ExpectedAmount, payment.ActualAmount, payment.Variance,
		payment.DueDate, payment.PaidDate, payment.Notes, payment.CreatedAt, payment.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]*models.Payment, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE participant_id = $1 ORDER BY due_date DESC, id LIMIT $2`, paymentColumns),
		participantID, limit)
}

func (r *paymentRepository) ListDueWithin(ctx context.Context, days int) ([]*models.Payment, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM payments
			WHERE status IN ('expected', 'overdue', 'partial')
			  AND due_date <= NOW() + ($1 * INTERVAL '1 day')
			ORDER BY due_date, id`, paymentColumns),
		days)
}

func (r *paymentRepository) ListPaidSince(ctx context.Context, since time.Time) ([]*models.Payment, error) {
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE paid_date >= $1 ORDER BY paid_date DESC, id`, paymentColumns),
		since)
}

func (r *paymentRepository) ListForMonth(ctx context.Context, monthStart time.Time) ([]*models.Payment, error) {
	monthEnd := monthStart.AddDate(0, 1, 0)
	return r.list(ctx,
		fmt.Sprintf(`SELECT %s FROM payments WHERE due_date >= $1 AND due_date < $2 ORDER BY due_date, id`, paymentColumns),
		monthStart, monthEnd)
}

func (r *paymentRepository) list(ctx context.Context, query string, args ...any) ([]*models.Payment, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := scope.Conn.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var out []*models.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
