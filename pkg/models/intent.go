package models

// Intent is one tag from the closed classification set. The classifier may
// only produce these values; anything else is normalized to IntentUnknown.
type Intent string

const (
	// Query intents resolve to read tools and execute immediately.
	IntentVacancyQuery         Intent = "vacancy_query"
	IntentPlanExpiryQuery      Intent = "plan_expiry_query"
	IntentMaintenanceQuery     Intent = "maintenance_query"
	IntentPaymentQuery         Intent = "payment_query"
	IntentDocumentExpiryQuery  Intent = "document_expiry_query"
	IntentPropertyInfoQuery    Intent = "property_info_query"
	IntentParticipantInfoQuery Intent = "participant_info_query"
	IntentGeneralQuestion      Intent = "general_question"

	// Action intents resolve to write tools and require confirmation.
	IntentMoveParticipant          Intent = "move_participant"
	IntentCreateMaintenanceRequest Intent = "create_maintenance_request"
	IntentUpdateMaintenanceStatus  Intent = "update_maintenance_status"
	IntentRecordPayment            Intent = "record_payment"
	IntentUpdateParticipantStatus  Intent = "update_participant_status"

	IntentUnknown Intent = "unknown"
)

// Known reports whether the intent belongs to the closed tag set.
func (i Intent) Known() bool {
	switch i {
	case IntentVacancyQuery, IntentPlanExpiryQuery, IntentMaintenanceQuery,
		IntentPaymentQuery, IntentDocumentExpiryQuery, IntentPropertyInfoQuery,
		IntentParticipantInfoQuery, IntentGeneralQuestion,
		IntentMoveParticipant, IntentCreateMaintenanceRequest,
		IntentUpdateMaintenanceStatus, IntentRecordPayment,
		IntentUpdateParticipantStatus, IntentUnknown:
		return true
	}
	return false
}

// IsAction reports whether the intent requires the confirmation gate.
// Derived from the tag alone; it is never stored or trusted from elsewhere.
func (i Intent) IsAction() bool {
	switch i {
	case IntentMoveParticipant, IntentCreateMaintenanceRequest,
		IntentUpdateMaintenanceStatus, IntentRecordPayment,
		IntentUpdateParticipantStatus:
		return true
	}
	return false
}

// IntentEntities carries the structured fields the classifier pulled out of
// the message. All fields are optional; empty means not mentioned.
type IntentEntities struct {
	ParticipantName string   `json:"participant_name,omitempty"`
	PropertyName    string   `json:"property_name,omitempty"`
	DwellingName    string   `json:"dwelling_name,omitempty"`
	Description     string   `json:"description,omitempty"`
	Category        string   `json:"category,omitempty"`
	Priority        string   `json:"priority,omitempty"`
	Status          string   `json:"status,omitempty"`
	Amount          *float64 `json:"amount,omitempty"`
	PaymentDate     string   `json:"payment_date,omitempty"`
	DaysAhead       *int     `json:"days_ahead,omitempty"`
	Month           string   `json:"month,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// IntentResult is the classifier's verdict for one user message.
// IsAction() on the Intent is the only source of truth for gating; the
// struct deliberately has no stored is_action field.
type IntentResult struct {
	Intent     Intent         `json:"intent"`
	Confidence float64        `json:"confidence"`
	Entities   IntentEntities `json:"entities"`
	Reasoning  string         `json:"reasoning,omitempty"`
}
