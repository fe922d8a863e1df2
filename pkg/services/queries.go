package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/matching"
	"github.com/bls-living/sda-engine/pkg/models"
)

// runQuery dispatches a read tool to its implementation. Names reaching this
// switch have already passed registry lookup and schema validation.
func (d *Dispatcher) runQuery(ctx context.Context, name string, input map[string]any) (string, error) {
	switch name {
	case "get_vacancies":
		return d.getVacancies(ctx, input)
	case "get_participant_plan_expiry":
		return d.getParticipantPlanExpiry(ctx, input)
	case "get_expiring_plans":
		return d.getExpiringPlans(ctx, input)
	case "get_overdue_maintenance":
		return d.getOverdueMaintenance(ctx, input)
	case "get_payment_status":
		return d.getPaymentStatus(ctx, input)
	case "get_expiring_documents":
		return d.getExpiringDocuments(ctx, input)
	case "get_property_summary":
		return d.getPropertySummary(ctx, input)
	case "get_participant_info":
		return d.getParticipantInfo(ctx, input)
	case "list_all_participants":
		return d.listAllParticipants(ctx, input)
	case "get_recent_activity":
		return d.getRecentActivity(ctx, input)
	case "get_compliance_status":
		return d.getComplianceStatus(ctx, input)
	case "calculate_owner_payment":
		return d.calculateOwnerPayment(ctx, input)
	case "get_upcoming_payments":
		return d.getUpcomingPayments(ctx, input)
	case "get_upcoming_inspections":
		return d.getUpcomingInspections(ctx, input)
	case "get_monthly_summary":
		return d.getMonthlySummary(ctx, input)
	default:
		return "", fmt.Errorf("read tool %q has no implementation", name)
	}
}

func inputString(input map[string]any, key string) string {
	s, _ := input[key].(string)
	return s
}

func inputInt(input map[string]any, key string, fallback int) int {
	switch v := input[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return fallback
}

func inputFloat(input map[string]any, key string) (float64, bool) {
	switch v := input[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// toJSON marshals a tool result. Marshal failures on plain maps cannot
// really happen; they surface as errors anyway rather than panic.
func toJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return string(data), nil
}

// softError is a domain-level miss the model should relay to the user.
func softError(format string, args ...any) (string, error) {
	return toJSON(map[string]string{"error": fmt.Sprintf(format, args...)})
}

// resolveParticipant matches a mentioned name against all participants.
func (d *Dispatcher) resolveParticipant(ctx context.Context, name string) (*models.Participant, *matching.AmbiguousMatchError, error) {
	all, err := d.repos.Participants.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return matching.ResolveOne(name, all, func(p *models.Participant) string { return p.FullName() })
}

// resolveProperty matches a mentioned name against all properties.
func (d *Dispatcher) resolveProperty(ctx context.Context, name string) (*models.Property, *matching.AmbiguousMatchError, error) {
	all, err := d.repos.Properties.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return matching.ResolveOne(name, all, func(p *models.Property) string { return p.Name })
}

// resolveDwelling matches a mentioned name against all dwellings.
func (d *Dispatcher) resolveDwelling(ctx context.Context, name string) (*models.Dwelling, *matching.AmbiguousMatchError, error) {
	all, err := d.repos.Dwellings.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return matching.ResolveOne(name, all, func(dw *models.Dwelling) string { return dw.Name })
}

func (d *Dispatcher) getVacancies(ctx context.Context, input map[string]any) (string, error) {
	dwellings, err := d.repos.Dwellings.ListVacant(ctx)
	if err != nil {
		return "", err
	}

	var propertyFilter *models.Property
	if name := inputString(input, "property_name"); name != "" {
		prop, _, err := d.resolveProperty(ctx, name)
		if errors.Is(err, apperrors.ErrNotFound) {
			return softError("No property matching %q", name)
		}
		if err != nil {
			return "", err
		}
		propertyFilter = prop
	}

	type vacancy struct {
		Dwelling  string `json:"dwelling"`
		Property  string `json:"property"`
		Capacity  int    `json:"capacity"`
		Occupants int    `json:"occupants"`
		Available int    `json:"available_places"`
	}

	properties := map[string]*models.Property{}
	all, err := d.repos.Properties.List(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range all {
		properties[p.ID.String()] = p
	}

	var out []vacancy
	for _, dw := range dwellings {
		if propertyFilter != nil && dw.PropertyID != propertyFilter.ID {
			continue
		}
		occupants, err := d.repos.Participants.CountActiveInDwelling(ctx, dw.ID)
		if err != nil {
			return "", err
		}
		propName := ""
		if p, ok := properties[dw.PropertyID.String()]; ok {
			propName = p.Name
		}
		out = append(out, vacancy{
			Dwelling:  dw.Name,
			Property:  propName,
			Capacity:  dw.Capacity,
			Occupants: occupants,
			Available: dw.Capacity - occupants,
		})
	}

	return toJSON(map[string]any{"vacancies": out, "count": len(out)})
}

func (d *Dispatcher) getParticipantPlanExpiry(ctx context.Context, input map[string]any) (string, error) {
	name := inputString(input, "participant_name")
	participant, amb, err := d.resolveParticipant(ctx, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return softError("No participant matching %q", name)
	}
	if err != nil {
		return "", err
	}

	plan, err := d.repos.Plans.GetCurrentByParticipant(ctx, participant.ID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return softError("%s has no current NDIS plan on file", participant.FullName())
	}
	if err != nil {
		return "", err
	}

	result := map[string]any{
		"participant":        participant.FullName(),
		"plan_end_date":      plan.EndDate.Format("2006-01-02"),
		"days_until_expiry":  plan.DaysUntilExpiry(time.Now()),
		"monthly_sda_amount": plan.MonthlySDAAmount,
	}
	if amb != nil {
		result["note"] = fmt.Sprintf("multiple participants matched %q; showing %s (also: %v)", name, participant.FullName(), amb.Names)
	}
	return toJSON(result)
}

func (d *Dispatcher) getExpiringPlans(ctx context.Context, input map[string]any) (string, error) {
	days := inputInt(input, "days_ahead", 90)
	plans, err := d.repos.Plans.ListExpiringWithin(ctx, days)
	if err != nil {
		return "", err
	}

	now := time.Now()
	type expiring struct {
		Participant string  `json:"participant"`
		EndDate     string  `json:"end_date"`
		DaysLeft    int     `json:"days_left"`
		Monthly     float64 `json:"monthly_sda_amount"`
	}

	var out []expiring
	for _, plan := range plans {
		p, err := d.repos.Participants.GetByID(ctx, plan.ParticipantID)
		if err != nil {
			return "", err
		}
		out = append(out, expiring{
			Participant: p.FullName(),
			EndDate:     plan.EndDate.Format("2006-01-02"),
			DaysLeft:    plan.DaysUntilExpiry(now),
			Monthly:     plan.MonthlySDAAmount,
		})
	}

	return toJSON(map[string]any{"days_ahead": days, "expiring_plans": out, "count": len(out)})
}

func (d *Dispatcher) getOverdueMaintenance(ctx context.Context, input map[string]any) (string, error) {
	var (
		open []*models.MaintenanceRequest
		err  error
	)
	if name := inputString(input, "property_name"); name != "" {
		prop, _, rerr := d.resolveProperty(ctx, name)
		if errors.Is(rerr, apperrors.ErrNotFound) {
			return softError("No property matching %q", name)
		}
		if rerr != nil {
			return "", rerr
		}
		open, err = d.repos.Maintenance.ListOpenByProperty(ctx, prop.ID)
	} else {
		open, err = d.repos.Maintenance.ListOpen(ctx)
	}
	if err != nil {
		return "", err
	}

	now := time.Now()
	type overdue struct {
		Description  string `json:"description"`
		Priority     string `json:"priority"`
		Status       string `json:"status"`
		ReportedDate string `json:"reported_date"`
	}

	var out []overdue
	for _, req := range open {
		if !req.IsOverdue(now) {
			continue
		}
		out = append(out, overdue{
			Description:  req.Description,
			Priority:     string(req.Priority),
			Status:       string(req.Status),
			ReportedDate: req.ReportedDate.Format("2006-01-02"),
		})
	}

	return toJSON(map[string]any{"overdue_requests": out, "count": len(out)})
}

func (d *Dispatcher) getPaymentStatus(ctx context.Context, input map[string]any) (string, error) {
	name := inputString(input, "participant_name")
	participant, _, err := d.resolveParticipant(ctx, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return softError("No participant matching %q", name)
	}
	if err != nil {
		return "", err
	}

	payments, err := d.repos.Payments.ListByParticipant(ctx, participant.ID, 6)
	if err != nil {
		return "", err
	}

	type payment struct {
		DueDate  string   `json:"due_date"`
		Status   string   `json:"status"`
		Expected float64  `json:"expected_amount"`
		Actual   *float64 `json:"actual_amount,omitempty"`
		Variance *float64 `json:"variance,omitempty"`
	}

	var out []payment
	for _, p := range payments {
		out = append(out, payment{
			DueDate:  p.DueDate.Format("2006-01-02"),
			Status:   string(p.Status),
			Expected: p.ExpectedAmount,
			Actual:   p.ActualAmount,
			Variance: p.Variance,
		})
	}

	result := map[string]any{
		"participant":     participant.FullName(),
		"recent_payments": out,
	}
	if plan, err := d.repos.Plans.GetCurrentByParticipant(ctx, participant.ID); err == nil {
		result["expected_monthly_amount"] = plan.MonthlySDAAmount
	}
	return toJSON(result)
}

func (d *Dispatcher) getExpiringDocuments(ctx context.Context, input map[string]any) (string, error) {
	days := inputInt(input, "days_ahead", 30)
	docs, err := d.repos.Documents.ListExpiringWithin(ctx, days)
	if err != nil {
		return "", err
	}

	var propertyFilter *models.Property
	if name := inputString(input, "property_name"); name != "" {
		prop, _, rerr := d.resolveProperty(ctx, name)
		if errors.Is(rerr, apperrors.ErrNotFound) {
			return softError("No property matching %q", name)
		}
		if rerr != nil {
			return "", rerr
		}
		propertyFilter = prop
	}

	type expiring struct {
		Title      string `json:"title"`
		Type       string `json:"document_type"`
		ExpiryDate string `json:"expiry_date"`
	}

	var out []expiring
	for _, doc := range docs {
		if propertyFilter != nil && doc.PropertyID != propertyFilter.ID {
			continue
		}
		expiry := ""
		if doc.ExpiryDate != nil {
			expiry = doc.ExpiryDate.Format("2006-01-02")
		}
		out = append(out, expiring{Title: doc.Title, Type: doc.DocumentType, ExpiryDate: expiry})
	}

	return toJSON(map[string]any{"days_ahead": days, "expiring_documents": out, "count": len(out)})
}

func (d *Dispatcher) getPropertySummary(ctx context.Context, input map[string]any) (string, error) {
	name := inputString(input, "property_name")
	prop, amb, err := d.resolveProperty(ctx, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return softError("No property matching %q", name)
	}
	if err != nil {
		return "", err
	}

	dwellings, err := d.repos.Dwellings.ListByProperty(ctx, prop.ID)
	if err != nil {
		return "", err
	}

	type dwellingSummary struct {
		Name      string `json:"name"`
		Capacity  int    `json:"capacity"`
		Occupants int    `json:"occupants"`
		Status    string `json:"occupancy_status"`
	}

	totalCapacity, totalOccupants := 0, 0
	var dws []dwellingSummary
	for _, dw := range dwellings {
		occupants, err := d.repos.Participants.CountActiveInDwelling(ctx, dw.ID)
		if err != nil {
			return "", err
		}
		totalCapacity += dw.Capacity
		totalOccupants += occupants
		dws = append(dws, dwellingSummary{
			Name:      dw.Name,
			Capacity:  dw.Capacity,
			Occupants: occupants,
			Status:    string(dw.OccupancyStatus),
		})
	}

	open, err := d.repos.Maintenance.ListOpenByProperty(ctx, prop.ID)
	if err != nil {
		return "", err
	}

	inspections, err := d.repos.Inspections.ListByProperty(ctx, prop.ID)
	if err != nil {
		return "", err
	}
	scheduled := 0
	for _, insp := range inspections {
		if insp.Status == models.InspectionScheduled {
			scheduled++
		}
	}

	result := map[string]any{
		"property":              prop.Name,
		"address":               fmt.Sprintf("%s, %s %s %s", prop.Address, prop.Suburb, prop.State, prop.Postcode),
		"sda_category":          prop.SDACategory,
		"dwellings":             dws,
		"total_capacity":        totalCapacity,
		"total_occupants":       totalOccupants,
		"open_maintenance":      len(open),
		"scheduled_inspections": scheduled,
	}
	if amb != nil {
		result["note"] = fmt.Sprintf("multiple properties matched %q (also: %v)", name, amb.Names)
	}
	return toJSON(result)
}

func (d *Dispatcher) getParticipantInfo(ctx context.Context, input map[string]any) (string, error) {
	name := inputString(input, "participant_name")
	participant, amb, err := d.resolveParticipant(ctx, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return softError("No participant matching %q", name)
	}
	if err != nil {
		return "", err
	}

	result := map[string]any{
		"name":        participant.FullName(),
		"ndis_number": participant.NDISNumber,
		"status":      string(participant.Status),
	}
	if participant.MoveInDate != nil {
		result["move_in_date"] = participant.MoveInDate.Format("2006-01-02")
	}
	if participant.MoveOutDate != nil {
		result["move_out_date"] = participant.MoveOutDate.Format("2006-01-02")
	}
	if participant.DwellingID != nil {
		if dw, err := d.repos.Dwellings.GetByID(ctx, *participant.DwellingID); err == nil {
			result["dwelling"] = dw.Name
			if prop, err := d.repos.Properties.GetByID(ctx, dw.PropertyID); err == nil {
				result["property"] = prop.Name
			}
		}
	}
	if plan, err := d.repos.Plans.GetCurrentByParticipant(ctx, participant.ID); err == nil {
		result["plan_end_date"] = plan.EndDate.Format("2006-01-02")
		result["monthly_sda_amount"] = plan.MonthlySDAAmount
	}
	if amb != nil {
		result["note"] = fmt.Sprintf("multiple participants matched %q (also: %v)", name, amb.Names)
	}
	return toJSON(result)
}

func (d *Dispatcher) listAllParticipants(ctx context.Context, input map[string]any) (string, error) {
	var (
		participants []*models.Participant
		err          error
	)
	if status := inputString(input, "status"); status != "" {
		if !models.ValidParticipantStatus(status) {
			return softError("Unknown participant status %q", status)
		}
		participants, err = d.repos.Participants.ListByStatus(ctx, models.ParticipantStatus(status))
	} else {
		participants, err = d.repos.Participants.List(ctx)
	}
	if err != nil {
		return "", err
	}

	type entry struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	var out []entry
	for _, p := range participants {
		out = append(out, entry{Name: p.FullName(), Status: string(p.Status)})
	}
	return toJSON(map[string]any{"participants": out, "count": len(out)})
}

func (d *Dispatcher) getRecentActivity(ctx context.Context, input map[string]any) (string, error) {
	days := inputInt(input, "days_back", 7)
	since := time.Now().AddDate(0, 0, -days)

	reported, err := d.repos.Maintenance.ListReportedSince(ctx, since)
	if err != nil {
		return "", err
	}
	paid, err := d.repos.Payments.ListPaidSince(ctx, since)
	if err != nil {
		return "", err
	}

	var maintenance []map[string]any
	for _, req := range reported {
		maintenance = append(maintenance, map[string]any{
			"description":   req.Description,
			"priority":      string(req.Priority),
			"reported_date": req.ReportedDate.Format("2006-01-02"),
		})
	}

	var payments []map[string]any
	for _, p := range paid {
		entry := map[string]any{"expected_amount": p.ExpectedAmount, "status": string(p.Status)}
		if p.ActualAmount != nil {
			entry["actual_amount"] = *p.ActualAmount
		}
		if p.PaidDate != nil {
			entry["paid_date"] = p.PaidDate.Format("2006-01-02")
		}
		payments = append(payments, entry)
	}

	return toJSON(map[string]any{
		"days_back":               days,
		"new_maintenance":         maintenance,
		"payments_received":       payments,
		"new_maintenance_count":   len(maintenance),
		"payments_received_count": len(payments),
	})
}

func (d *Dispatcher) getComplianceStatus(ctx context.Context, input map[string]any) (string, error) {
	var (
		docs []*models.ComplianceDocument
		err  error
	)
	if name := inputString(input, "property_name"); name != "" {
		prop, _, rerr := d.resolveProperty(ctx, name)
		if errors.Is(rerr, apperrors.ErrNotFound) {
			return softError("No property matching %q", name)
		}
		if rerr != nil {
			return "", rerr
		}
		docs, err = d.repos.Documents.ListByProperty(ctx, prop.ID)
	} else {
		docs, err = d.repos.Documents.ListAll(ctx)
	}
	if err != nil {
		return "", err
	}

	now := time.Now()
	expired, expiringSoon, current := 0, 0, 0
	for _, doc := range docs {
		switch {
		case doc.ExpiryDate != nil && doc.ExpiryDate.Before(now):
			expired++
		case doc.ExpiresWithin(now, 30):
			expiringSoon++
		default:
			current++
		}
	}

	return toJSON(map[string]any{
		"total_documents": len(docs),
		"expired":         expired,
		"expiring_30d":    expiringSoon,
		"current":         current,
	})
}

func (d *Dispatcher) calculateOwnerPayment(ctx context.Context, input map[string]any) (string, error) {
	name := inputString(input, "property_name")
	prop, _, err := d.resolveProperty(ctx, name)
	if errors.Is(err, apperrors.ErrNotFound) {
		return softError("No property matching %q", name)
	}
	if err != nil {
		return "", err
	}

	month := monthOrCurrent(inputString(input, "month"))

	dwellings, err := d.repos.Dwellings.ListByProperty(ctx, prop.ID)
	if err != nil {
		return "", err
	}

	total := 0.0
	funded := 0
	for _, dw := range dwellings {
		occupants, err := d.repos.Participants.ListByDwelling(ctx, dw.ID)
		if err != nil {
			return "", err
		}
		for _, p := range occupants {
			if p.Status != models.ParticipantActive {
				continue
			}
			plan, err := d.repos.Plans.GetCurrentByParticipant(ctx, p.ID)
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			if err != nil {
				return "", err
			}
			total += plan.MonthlySDAAmount
			funded++
		}
	}

	return toJSON(map[string]any{
		"property":            prop.Name,
		"month":               month.Format("2006-01"),
		"funded_participants": funded,
		"owner_payment":       total,
	})
}

func (d *Dispatcher) getUpcomingPayments(ctx context.Context, input map[string]any) (string, error) {
	days := inputInt(input, "days_ahead", 30)
	payments, err := d.repos.Payments.ListDueWithin(ctx, days)
	if err != nil {
		return "", err
	}

	var out []map[string]any
	total := 0.0
	for _, p := range payments {
		participant, err := d.repos.Participants.GetByID(ctx, p.ParticipantID)
		if err != nil {
			return "", err
		}
		out = append(out, map[string]any{
			"participant":     participant.FullName(),
			"due_date":        p.DueDate.Format("2006-01-02"),
			"expected_amount": p.ExpectedAmount,
			"status":          string(p.Status),
		})
		total += p.ExpectedAmount
	}

	return toJSON(map[string]any{
		"days_ahead":     days,
		"payments":       out,
		"count":          len(out),
		"total_expected": total,
	})
}

func (d *Dispatcher) getUpcomingInspections(ctx context.Context, input map[string]any) (string, error) {
	days := inputInt(input, "days_ahead", 30)
	inspections, err := d.repos.Inspections.ListUpcoming(ctx, days)
	if err != nil {
		return "", err
	}

	var propertyFilter *models.Property
	if name := inputString(input, "property_name"); name != "" {
		prop, _, rerr := d.resolveProperty(ctx, name)
		if errors.Is(rerr, apperrors.ErrNotFound) {
			return softError("No property matching %q", name)
		}
		if rerr != nil {
			return "", rerr
		}
		propertyFilter = prop
	}

	properties := map[string]*models.Property{}
	all, err := d.repos.Properties.List(ctx)
	if err != nil {
		return "", err
	}
	for _, p := range all {
		properties[p.ID.String()] = p
	}

	type upcoming struct {
		Property      string `json:"property"`
		Type          string `json:"type"`
		ScheduledDate string `json:"scheduled_date"`
		Inspector     string `json:"inspector,omitempty"`
	}

	var out []upcoming
	for _, insp := range inspections {
		if propertyFilter != nil && insp.PropertyID != propertyFilter.ID {
			continue
		}
		propName := ""
		if p, ok := properties[insp.PropertyID.String()]; ok {
			propName = p.Name
		}
		out = append(out, upcoming{
			Property:      propName,
			Type:          insp.Type,
			ScheduledDate: insp.ScheduledDate.Format("2006-01-02"),
			Inspector:     insp.Inspector,
		})
	}

	return toJSON(map[string]any{"days_ahead": days, "upcoming_inspections": out, "count": len(out)})
}

func (d *Dispatcher) getMonthlySummary(ctx context.Context, input map[string]any) (string, error) {
	month := monthOrCurrent(inputString(input, "month"))

	payments, err := d.repos.Payments.ListForMonth(ctx, month)
	if err != nil {
		return "", err
	}

	expected, received := 0.0, 0.0
	for _, p := range payments {
		expected += p.ExpectedAmount
		if p.ActualAmount != nil {
			received += *p.ActualAmount
		}
	}

	dwellings, err := d.repos.Dwellings.List(ctx)
	if err != nil {
		return "", err
	}
	capacity, occupants := 0, 0
	for _, dw := range dwellings {
		n, err := d.repos.Participants.CountActiveInDwelling(ctx, dw.ID)
		if err != nil {
			return "", err
		}
		capacity += dw.Capacity
		occupants += n
	}

	reported, err := d.repos.Maintenance.ListReportedSince(ctx, month)
	if err != nil {
		return "", err
	}

	return toJSON(map[string]any{
		"month":              month.Format("2006-01"),
		"payments_expected":  expected,
		"payments_received":  received,
		"payment_variance":   received - expected,
		"total_capacity":     capacity,
		"total_occupants":    occupants,
		"maintenance_opened": len(reported),
	})
}

// monthOrCurrent parses a YYYY-MM value, falling back to the start of the
// current month.
func monthOrCurrent(s string) time.Time {
	if s != "" {
		if t, err := time.Parse("2006-01", s); err == nil {
			return t
		}
	}
	now := time.Now()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}
