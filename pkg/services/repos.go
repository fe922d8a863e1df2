package services

import "github.com/bls-living/sda-engine/pkg/repositories"

// Repos bundles the repositories the assistant services depend on, so
// constructors stay readable and tests can swap in fakes per field.
type Repos struct {
	Participants  repositories.ParticipantRepository
	Properties    repositories.PropertyRepository
	Dwellings     repositories.DwellingRepository
	Plans         repositories.PlanRepository
	Payments      repositories.PaymentRepository
	Maintenance   repositories.MaintenanceRepository
	Documents     repositories.DocumentRepository
	Inspections   repositories.InspectionRepository
	Conversations repositories.ConversationRepository
}

// NewRepos wires the production repository implementations.
func NewRepos() *Repos {
	return &Repos{
		Participants:  repositories.NewParticipantRepository(),
		Properties:    repositories.NewPropertyRepository(),
		Dwellings:     repositories.NewDwellingRepository(),
		Plans:         repositories.NewPlanRepository(),
		Payments:      repositories.NewPaymentRepository(),
		Maintenance:   repositories.NewMaintenanceRepository(),
		Documents:     repositories.NewDocumentRepository(),
		Inspections:   repositories.NewInspectionRepository(),
		Conversations: repositories.NewConversationRepository(),
	}
}
