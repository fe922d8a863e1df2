// Package tools defines the assistant's static tool catalogue: which tools
// exist, which of them mutate data, their JSON schemas, and input validation.
// The catalogue is fixed at compile time; nothing registers tools at runtime.
package tools

import "github.com/bls-living/sda-engine/pkg/llm"

// AssistantTools returns the full tool catalogue. Read tools execute
// immediately; the five action tools go through the confirmation gate.
func AssistantTools() []llm.ToolDefinition {
	return []llm.ToolDefinition{
		// Read tools
		llm.NewToolDefinition(
			"get_vacancies",
			"Get current dwelling vacancies across all properties, optionally filtered by property",
			map[string]llm.ParameterProperty{
				"property_name": {
					Type:        "string",
					Description: "Optional property name to filter vacancies by",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_participant_plan_expiry",
			"Get NDIS plan expiry details for a specific participant",
			map[string]llm.ParameterProperty{
				"participant_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the participant",
				},
			},
			[]string{"participant_name"},
		),
		llm.NewToolDefinition(
			"get_expiring_plans",
			"List NDIS plans expiring within a number of days",
			map[string]llm.ParameterProperty{
				"days_ahead": {
					Type:        "integer",
					Description: "How many days ahead to look (default 90)",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_overdue_maintenance",
			"List maintenance requests that are overdue or need chasing",
			map[string]llm.ParameterProperty{
				"property_name": {
					Type:        "string",
					Description: "Optional property name to filter by",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_payment_status",
			"Get SDA payment status for a participant, including variance against their plan",
			map[string]llm.ParameterProperty{
				"participant_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the participant",
				},
			},
			[]string{"participant_name"},
		),
		llm.NewToolDefinition(
			"get_expiring_documents",
			"List compliance documents expiring within a number of days",
			map[string]llm.ParameterProperty{
				"days_ahead": {
					Type:        "integer",
					Description: "How many days ahead to look (default 30)",
				},
				"property_name": {
					Type:        "string",
					Description: "Optional property name to filter by",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_property_summary",
			"Get a summary of a property: dwellings, occupancy, open maintenance",
			map[string]llm.ParameterProperty{
				"property_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the property",
				},
			},
			[]string{"property_name"},
		),
		llm.NewToolDefinition(
			"get_participant_info",
			"Get a participant's details: dwelling, plan, status, move dates",
			map[string]llm.ParameterProperty{
				"participant_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the participant",
				},
			},
			[]string{"participant_name"},
		),
		llm.NewToolDefinition(
			"list_all_participants",
			"List all participants, optionally filtered by status",
			map[string]llm.ParameterProperty{
				"status": {
					Type:        "string",
					Description: "Optional participant status to filter by",
					Enum:        []string{"active", "inactive", "pending_move_in", "moved_out"},
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_recent_activity",
			"Get recent activity: new maintenance requests, payments, and moves",
			map[string]llm.ParameterProperty{
				"days_back": {
					Type:        "integer",
					Description: "How many days back to look (default 7)",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_compliance_status",
			"Get compliance document status for a property or the whole portfolio",
			map[string]llm.ParameterProperty{
				"property_name": {
					Type:        "string",
					Description: "Optional property name; omit for the whole portfolio",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"calculate_owner_payment",
			"Calculate the owner payment for a property for a given month",
			map[string]llm.ParameterProperty{
				"property_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the property",
				},
				"month": {
					Type:        "string",
					Description: "Month in YYYY-MM format (default: current month)",
				},
			},
			[]string{"property_name"},
		),
		llm.NewToolDefinition(
			"get_upcoming_payments",
			"List SDA payments due within a number of days",
			map[string]llm.ParameterProperty{
				"days_ahead": {
					Type:        "integer",
					Description: "How many days ahead to look (default 30)",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_upcoming_inspections",
			"List property inspections scheduled within a number of days",
			map[string]llm.ParameterProperty{
				"days_ahead": {
					Type:        "integer",
					Description: "How many days ahead to look (default 30)",
				},
				"property_name": {
					Type:        "string",
					Description: "Optional property name to filter by",
				},
			},
			[]string{},
		),
		llm.NewToolDefinition(
			"get_monthly_summary",
			"Get a monthly portfolio summary: payments, occupancy, maintenance",
			map[string]llm.ParameterProperty{
				"month": {
					Type:        "string",
					Description: "Month in YYYY-MM format (default: current month)",
				},
			},
			[]string{},
		),

		// Action tools. These never execute directly; they produce a pending
		// action that the user must confirm.
		llm.NewToolDefinition(
			"move_participant",
			"Move a participant to a different dwelling",
			map[string]llm.ParameterProperty{
				"participant_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the participant to move",
				},
				"target_dwelling": {
					Type:        "string",
					Description: "Name of the dwelling to move the participant into",
				},
			},
			[]string{"participant_name", "target_dwelling"},
		),
		llm.NewToolDefinition(
			"create_maintenance_request",
			"Create a new maintenance request for a property",
			map[string]llm.ParameterProperty{
				"property_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the property",
				},
				"description": {
					Type:        "string",
					Description: "Description of the issue",
				},
				"category": {
					Type:        "string",
					Description: "Category of the issue (default: general)",
					Enum:        []string{"plumbing", "electrical", "structural", "appliance", "garden", "general"},
				},
				"priority": {
					Type:        "string",
					Description: "Priority of the request (default: medium)",
					Enum:        []string{"low", "medium", "high", "urgent"},
				},
			},
			[]string{"property_name", "description"},
		),
		llm.NewToolDefinition(
			"update_maintenance_status",
			"Update the status of an existing maintenance request",
			map[string]llm.ParameterProperty{
				"description": {
					Type:        "string",
					Description: "Words from the request's description, used to find it",
				},
				"status": {
					Type:        "string",
					Description: "New status for the request",
					Enum:        []string{"reported", "scheduled", "in_progress", "completed", "cancelled"},
				},
			},
			[]string{"description", "status"},
		),
		llm.NewToolDefinition(
			"record_payment",
			"Record an SDA payment received for a participant",
			map[string]llm.ParameterProperty{
				"participant_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the participant",
				},
				"amount": {
					Type:        "number",
					Description: "Payment amount in dollars",
				},
				"payment_date": {
					Type:        "string",
					Description: "Date received in YYYY-MM-DD format (default: today)",
				},
				"notes": {
					Type:        "string",
					Description: "Optional notes about the payment",
				},
			},
			[]string{"participant_name", "amount"},
		),
		llm.NewToolDefinition(
			"update_participant_status",
			"Update a participant's status",
			map[string]llm.ParameterProperty{
				"participant_name": {
					Type:        "string",
					Description: "Name (or part of the name) of the participant",
				},
				"status": {
					Type:        "string",
					Description: "New status for the participant",
					Enum:        []string{"active", "inactive", "pending_move_in", "moved_out"},
				},
			},
			[]string{"participant_name", "status"},
		),
	}
}
