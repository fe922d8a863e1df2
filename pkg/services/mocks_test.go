package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
)

// Function-field mocks for the repository interfaces. Unset fields return
// empty results; write methods count calls so tests can assert that nothing
// mutated.

type mockParticipantRepo struct {
	ListFunc                  func(ctx context.Context) ([]*models.Participant, error)
	ListByStatusFunc          func(ctx context.Context, status models.ParticipantStatus) ([]*models.Participant, error)
	ListByDwellingFunc        func(ctx context.Context, dwellingID uuid.UUID) ([]*models.Participant, error)
	GetByIDFunc               func(ctx context.Context, id uuid.UUID) (*models.Participant, error)
	CountActiveInDwellingFunc func(ctx context.Context, dwellingID uuid.UUID) (int, error)
	UpdateDwellingFunc        func(ctx context.Context, id uuid.UUID, dwellingID *uuid.UUID, moveInDate *time.Time) error
	UpdateStatusFunc          func(ctx context.Context, id uuid.UUID, status models.ParticipantStatus, moveOutDate *time.Time) error

	UpdateDwellingCalls int
	UpdateStatusCalls   int
}

func (m *mockParticipantRepo) List(ctx context.Context) ([]*models.Participant, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockParticipantRepo) ListByStatus(ctx context.Context, status models.ParticipantStatus) ([]*models.Participant, error) {
	if m.ListByStatusFunc != nil {
		return m.ListByStatusFunc(ctx, status)
	}
	return nil, nil
}

func (m *mockParticipantRepo) ListByDwelling(ctx context.Context, dwellingID uuid.UUID) ([]*models.Participant, error) {
	if m.ListByDwellingFunc != nil {
		return m.ListByDwellingFunc(ctx, dwellingID)
	}
	return nil, nil
}

func (m *mockParticipantRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Participant, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockParticipantRepo) CountActiveInDwelling(ctx context.Context, dwellingID uuid.UUID) (int, error) {
	if m.CountActiveInDwellingFunc != nil {
		return m.CountActiveInDwellingFunc(ctx, dwellingID)
	}
	return 0, nil
}

func (m *mockParticipantRepo) UpdateDwelling(ctx context.Context, id uuid.UUID, dwellingID *uuid.UUID, moveInDate *time.Time) error {
	m.UpdateDwellingCalls++
	if m.UpdateDwellingFunc != nil {
		return m.UpdateDwellingFunc(ctx, id, dwellingID, moveInDate)
	}
	return nil
}

func (m *mockParticipantRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ParticipantStatus, moveOutDate *time.Time) error {
	m.UpdateStatusCalls++
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, moveOutDate)
	}
	return nil
}

type mockPropertyRepo struct {
	ListFunc    func(ctx context.Context) ([]*models.Property, error)
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*models.Property, error)
}

func (m *mockPropertyRepo) List(ctx context.Context) ([]*models.Property, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

type mockDwellingRepo struct {
	ListFunc            func(ctx context.Context) ([]*models.Dwelling, error)
	ListByPropertyFunc  func(ctx context.Context, propertyID uuid.UUID) ([]*models.Dwelling, error)
	ListVacantFunc      func(ctx context.Context) ([]*models.Dwelling, error)
	GetByIDFunc         func(ctx context.Context, id uuid.UUID) (*models.Dwelling, error)
	UpdateOccupancyFunc func(ctx context.Context, id uuid.UUID, status models.OccupancyStatus) error

	UpdateOccupancyCalls int
}

func (m *mockDwellingRepo) List(ctx context.Context) ([]*models.Dwelling, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return nil, nil
}

func (m *mockDwellingRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Dwelling, error) {
	if m.ListByPropertyFunc != nil {
		return m.ListByPropertyFunc(ctx, propertyID)
	}
	return nil, nil
}

func (m *mockDwellingRepo) ListVacant(ctx context.Context) ([]*models.Dwelling, error) {
	if m.ListVacantFunc != nil {
		return m.ListVacantFunc(ctx)
	}
	return nil, nil
}

func (m *mockDwellingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dwelling, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDwellingRepo) UpdateOccupancy(ctx context.Context, id uuid.UUID, status models.OccupancyStatus) error {
	m.UpdateOccupancyCalls++
	if m.UpdateOccupancyFunc != nil {
		return m.UpdateOccupancyFunc(ctx, id, status)
	}
	return nil
}

type mockPlanRepo struct {
	GetCurrentByParticipantFunc func(ctx context.Context, participantID uuid.UUID) (*models.ParticipantPlan, error)
	ListExpiringWithinFunc      func(ctx context.Context, days int) ([]*models.ParticipantPlan, error)
}

func (m *mockPlanRepo) GetCurrentByParticipant(ctx context.Context, participantID uuid.UUID) (*models.ParticipantPlan, error) {
	if m.GetCurrentByParticipantFunc != nil {
		return m.GetCurrentByParticipantFunc(ctx, participantID)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockPlanRepo) ListExpiringWithin(ctx context.Context, days int) ([]*models.ParticipantPlan, error) {
	if m.ListExpiringWithinFunc != nil {
		return m.ListExpiringWithinFunc(ctx, days)
	}
	return nil, nil
}

type mockPaymentRepo struct {
	CreateFunc            func(ctx context.Context, payment *models.Payment) error
	ListByParticipantFunc func(ctx context.Context, participantID uuid.UUID, limit int) ([]*models.Payment, error)
	ListDueWithinFunc     func(ctx context.Context, days int) ([]*models.Payment, error)
	ListPaidSinceFunc     func(ctx context.Context, since time.Time) ([]*models.Payment, error)
	ListForMonthFunc      func(ctx context.Context, monthStart time.Time) ([]*models.Payment, error)

	CreateCalls int
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.Payment) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, payment)
	}
	return nil
}

func (m *mockPaymentRepo) ListByParticipant(ctx context.Context, participantID uuid.UUID, limit int) ([]*models.Payment, error) {
	if m.ListByParticipantFunc != nil {
		return m.ListByParticipantFunc(ctx, participantID, limit)
	}
	return nil, nil
}

func (m *mockPaymentRepo) ListDueWithin(ctx context.Context, days int) ([]*models.Payment, error) {
	if m.ListDueWithinFunc != nil {
		return m.ListDueWithinFunc(ctx, days)
	}
	return nil, nil
}

func (m *mockPaymentRepo) ListPaidSince(ctx context.Context, since time.Time) ([]*models.Payment, error) {
	if m.ListPaidSinceFunc != nil {
		return m.ListPaidSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *mockPaymentRepo) ListForMonth(ctx context.Context, monthStart time.Time) ([]*models.Payment, error) {
	if m.ListForMonthFunc != nil {
		return m.ListForMonthFunc(ctx, monthStart)
	}
	return nil, nil
}

type mockMaintenanceRepo struct {
	CreateFunc             func(ctx context.Context, req *models.MaintenanceRequest) error
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error)
	ListOpenFunc           func(ctx context.Context) ([]*models.MaintenanceRequest, error)
	ListOpenByPropertyFunc func(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error)
	ListReportedSinceFunc  func(ctx context.Context, since time.Time) ([]*models.MaintenanceRequest, error)
	UpdateStatusFunc       func(ctx context.Context, id uuid.UUID, status models.MaintenanceStatus, completedDate *time.Time) error

	CreateCalls       int
	UpdateStatusCalls int
}

func (m *mockMaintenanceRepo) Create(ctx context.Context, req *models.MaintenanceRequest) error {
	m.CreateCalls++
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil
}

func (m *mockMaintenanceRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.MaintenanceRequest, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockMaintenanceRepo) ListOpen(ctx context.Context) ([]*models.MaintenanceRequest, error) {
	if m.ListOpenFunc != nil {
		return m.ListOpenFunc(ctx)
	}
	return nil, nil
}

func (m *mockMaintenanceRepo) ListOpenByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.MaintenanceRequest, error) {
	if m.ListOpenByPropertyFunc != nil {
		return m.ListOpenByPropertyFunc(ctx, propertyID)
	}
	return nil, nil
}

func (m *mockMaintenanceRepo) ListReportedSince(ctx context.Context, since time.Time) ([]*models.MaintenanceRequest, error) {
	if m.ListReportedSinceFunc != nil {
		return m.ListReportedSinceFunc(ctx, since)
	}
	return nil, nil
}

func (m *mockMaintenanceRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.MaintenanceStatus, completedDate *time.Time) error {
	m.UpdateStatusCalls++
	if m.UpdateStatusFunc != nil {
		return m.UpdateStatusFunc(ctx, id, status, completedDate)
	}
	return nil
}

type mockDocumentRepo struct {
	GetByIDFunc            func(ctx context.Context, id uuid.UUID) (*models.ComplianceDocument, error)
	ListByPropertyFunc     func(ctx context.Context, propertyID uuid.UUID) ([]*models.ComplianceDocument, error)
	ListExpiringWithinFunc func(ctx context.Context, days int) ([]*models.ComplianceDocument, error)
	ListAllFunc            func(ctx context.Context) ([]*models.ComplianceDocument, error)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ComplianceDocument, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.ErrNotFound
}

func (m *mockDocumentRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.ComplianceDocument, error) {
	if m.ListByPropertyFunc != nil {
		return m.ListByPropertyFunc(ctx, propertyID)
	}
	return nil, nil
}

func (m *mockDocumentRepo) ListExpiringWithin(ctx context.Context, days int) ([]*models.ComplianceDocument, error) {
	if m.ListExpiringWithinFunc != nil {
		return m.ListExpiringWithinFunc(ctx, days)
	}
	return nil, nil
}

func (m *mockDocumentRepo) ListAll(ctx context.Context) ([]*models.ComplianceDocument, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return nil, nil
}

type mockInspectionRepo struct {
	ListByPropertyFunc func(ctx context.Context, propertyID uuid.UUID) ([]*models.Inspection, error)
	ListUpcomingFunc   func(ctx context.Context, days int) ([]*models.Inspection, error)
}

func (m *mockInspectionRepo) ListByProperty(ctx context.Context, propertyID uuid.UUID) ([]*models.Inspection, error) {
	if m.ListByPropertyFunc != nil {
		return m.ListByPropertyFunc(ctx, propertyID)
	}
	return nil, nil
}

func (m *mockInspectionRepo) ListUpcoming(ctx context.Context, days int) ([]*models.Inspection, error) {
	if m.ListUpcomingFunc != nil {
		return m.ListUpcomingFunc(ctx, days)
	}
	return nil, nil
}

// mockConversationRepo keeps conversations and turns in memory so the
// chatbot tests can assert on persisted turns.
type mockConversationRepo struct {
	conversations map[uuid.UUID]*models.Conversation
	turns         map[uuid.UUID][]*models.ConversationTurn
}

func newMockConversationRepo() *mockConversationRepo {
	return &mockConversationRepo{
		conversations: make(map[uuid.UUID]*models.Conversation),
		turns:         make(map[uuid.UUID][]*models.ConversationTurn),
	}
}

func (m *mockConversationRepo) Create(ctx context.Context, conv *models.Conversation) error {
	conv.ID = uuid.New()
	conv.IsActive = true
	conv.CreatedAt = time.Now()
	m.conversations[conv.ID] = conv
	return nil
}

func (m *mockConversationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	conv, ok := m.conversations[id]
	if !ok || !conv.IsActive {
		return nil, apperrors.ErrNotFound
	}
	return conv, nil
}

func (m *mockConversationRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Conversation, error) {
	var out []*models.Conversation
	for _, conv := range m.conversations {
		if conv.UserID == userID && conv.IsActive {
			out = append(out, conv)
		}
	}
	return out, nil
}

func (m *mockConversationRepo) UpdateTitle(ctx context.Context, id uuid.UUID, title string) error {
	conv, ok := m.conversations[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	conv.Title = title
	return nil
}

func (m *mockConversationRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	conv, ok := m.conversations[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	conv.IsActive = false
	return nil
}

func (m *mockConversationRepo) AppendTurn(ctx context.Context, conversationID uuid.UUID, role models.TurnRole, content string) (*models.ConversationTurn, error) {
	turn := &models.ConversationTurn{
		ID:             uuid.New(),
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now(),
	}
	m.turns[conversationID] = append(m.turns[conversationID], turn)
	return turn, nil
}

func (m *mockConversationRepo) GetTurns(ctx context.Context, conversationID uuid.UUID, limit int) ([]*models.ConversationTurn, error) {
	turns := m.turns[conversationID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return turns, nil
}

// testRepos bundles fresh mocks into a Repos value.
func testRepos() (*Repos, *mockParticipantRepo, *mockDwellingRepo) {
	participants := &mockParticipantRepo{}
	dwellings := &mockDwellingRepo{}
	return &Repos{
		Participants:  participants,
		Properties:    &mockPropertyRepo{},
		Dwellings:     dwellings,
		Plans:         &mockPlanRepo{},
		Payments:      &mockPaymentRepo{},
		Maintenance:   &mockMaintenanceRepo{},
		Documents:     &mockDocumentRepo{},
		Inspections:   &mockInspectionRepo{},
		Conversations: newMockConversationRepo(),
	}, participants, dwellings
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
