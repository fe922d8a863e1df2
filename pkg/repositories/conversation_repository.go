package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
)

// ConversationRepository provides data access for assistant conversations.
type ConversationRepository interface {
	Create(ctx context.Context, conv *models.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error)
	UpdateTitle(ctx context.Context, id uuid.UUID, title string) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	AppendTurn(ctx context.Context, conversationID uuid.UUID, role models.TurnRole, content string) (*models.ConversationTurn, error)
	GetTurns(ctx context.Context, conversationID uuid.UUID, limit int) ([]*models.ConversationTurn, error)
}

type conversationRepository struct{}

// NewConversationRepository creates a new ConversationRepository.
func NewConversationRepository() ConversationRepository {
	return &conversationRepository{}
}

var _ ConversationRepository = (*conversationRepository)(nil)

const conversationColumns = `id, org_id, user_id, title, is_active, created_at, updated_at`

func scanConversation(row interface{ Scan(...any) error }) (*models.Conversation, error) {
	var c models.Conversation
	err := row.Scan(&c.ID, &c.OrgID, &c.UserID, &c.Title, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversationRepository) Create(ctx context.Context, conv *models.Conversation) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	if conv.ID == uuid.Nil {
		conv.ID = uuid.New()
	}
	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now
	conv.IsActive = true

	_, err = scope.Conn.Exec(ctx, `
		INSERT INTO assistant_conversations (id, org_id, user_id, title, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		conv.ID, conv.OrgID, conv.UserID, conv.Title, conv.IsActive, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`SELECT %s FROM assistant_conversations WHERE id = $1 AND is_active`, conversationColumns)
	c, err := scanConversation(scope.Conn.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapNotFound(err, "conversation")
	}
	return c, nil
}

func (r *conversationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM assistant_conversations WHERE user_id = $1 AND is_active ORDER BY updated_at DESC`,
		conversationColumns)
	rows, err := scope.Conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var out []*models.Conversation
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *conversationRepository) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE assistant_conversations SET title = $2, updated_at = NOW() WHERE id = $1 AND is_active`,
		id, title)
	if err != nil {
		return fmt.Errorf("failed to update conversation title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *conversationRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := scope.Conn.Exec(ctx,
		`UPDATE assistant_conversations SET is_active = FALSE, updated_at = NOW() WHERE id = $1 AND is_active`,
		id)
	if err != nil {
		return fmt.Errorf("failed to deactivate conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("conversation %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

// AppendTurn adds a turn to a conversation. It locks the conversation row
// for the duration of the transaction so concurrent appends to the same
// conversation serialize and turn timestamps stay strictly increasing, even
// with multiple engine replicas.
func (r *conversationRepository) AppendTurn(ctx context.Context, conversationID uuid.UUID, role models.TurnRole, content string) (*models.ConversationTurn, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	tx, err := scope.Conn.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var convID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM assistant_conversations WHERE id = $1 AND is_active FOR UPDATE`,
		conversationID).Scan(&convID)
	if err != nil {
		return nil, mapNotFound(err, "conversation")
	}

	turn := &models.ConversationTurn{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}

	// clock_timestamp() advances inside the transaction, so two appends in
	// the same transaction window still get distinct increasing timestamps.
	err = tx.QueryRow(ctx, `
		INSERT INTO conversation_turns (id, conversation_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, clock_timestamp())
		RETURNING created_at`,
		turn.ID, turn.ConversationID, turn.Role, turn.Content).Scan(&turn.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append turn: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE assistant_conversations SET updated_at = NOW() WHERE id = $1`,
		conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to touch conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit turn: %w", err)
	}
	return turn, nil
}

func (r *conversationRepository) GetTurns(ctx context.Context, conversationID uuid.UUID, limit int) ([]*models.ConversationTurn, error) {
	scope, err := scopeFromContext(ctx)
	if err != nil {
		return nil, err
	}

	// Fetch the most recent turns, then return them oldest-first.
	rows, err := scope.Conn.Query(ctx, `
		SELECT id, conversation_id, role, content, created_at FROM (
			SELECT id, conversation_id, role, content, created_at
			FROM conversation_turns
			WHERE conversation_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) recent ORDER BY created_at`,
		conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get turns: %w", err)
	}
	defer rows.Close()

	var out []*models.ConversationTurn
	for rows.Next() {
		var t models.ConversationTurn
		if err := rows.Scan(&t.ID, &t.ConversationID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}
