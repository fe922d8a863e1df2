package tools

import "fmt"

// actionTools is the closed set of tools that mutate data. Membership here
// is the single source of truth for the confirmation gate.
var actionTools = map[string]bool{
	"move_participant":           true,
	"create_maintenance_request": true,
	"update_maintenance_status":  true,
	"record_payment":             true,
	"update_participant_status":  true,
}

// IsActionTool reports whether the named tool mutates data and therefore
// requires confirmation before executing.
func IsActionTool(name string) bool {
	return actionTools[name]
}

// DescribeAction renders a one-line human-readable description of what an
// action will do, shown in the confirmation prompt. Absent optional fields
// render their defaults; it never panics on missing input.
func DescribeAction(name string, input map[string]any) string {
	switch name {
	case "move_participant":
		return fmt.Sprintf("Move %s to %s",
			str(input, "participant_name", "participant"),
			str(input, "target_dwelling", "the selected dwelling"))
	case "create_maintenance_request":
		return fmt.Sprintf("Create %s priority maintenance request at %s: %s",
			str(input, "priority", "medium"),
			str(input, "property_name", "property"),
			str(input, "description", "no description"))
	case "update_maintenance_status":
		return fmt.Sprintf("Update maintenance request %q to %s",
			str(input, "description", "unknown"),
			str(input, "status", "unknown"))
	case "record_payment":
		return fmt.Sprintf("Record payment of $%s for %s",
			amount(input, "amount"),
			str(input, "participant_name", "participant"))
	case "update_participant_status":
		return fmt.Sprintf("Update %s status to %s",
			str(input, "participant_name", "participant"),
			str(input, "status", "unknown"))
	default:
		return fmt.Sprintf("Perform %s", name)
	}
}

func str(input map[string]any, key, fallback string) string {
	if v, ok := input[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

func amount(input map[string]any, key string) string {
	switch v := input[key].(type) {
	case float64:
		return fmt.Sprintf("%.2f", v)
	case int:
		return fmt.Sprintf("%d.00", v)
	case string:
		if v != "" {
			return v
		}
	}
	return "0.00"
}
