package tools

import (
	"fmt"
	"strings"

	"github.com/bls-living/sda-engine/pkg/llm"
)

// ValidationError reports input that fails a tool's schema. It is a
// user-facing condition: the workflow turns it into a clarification
// question, never a 500.
type ValidationError struct {
	Tool    string
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid: "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("invalid input for %s (%s)", e.Tool, strings.Join(parts, "; "))
}

// ValidateInput checks input against a tool definition: every required field
// must be present and non-empty, provided fields must match their declared
// type loosely (numbers accept any JSON number), and fields with a declared
// enum must use one of the listed values.
func ValidateInput(def llm.ToolDefinition, input map[string]any) error {
	verr := &ValidationError{Tool: def.Name}

	for _, field := range def.RequiredFields() {
		v, ok := input[field]
		if !ok || v == nil {
			verr.Missing = append(verr.Missing, field)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			verr.Missing = append(verr.Missing, field)
		}
	}

	props := def.Properties()
	for field, raw := range input {
		spec, ok := props[field].(map[string]any)
		if !ok {
			continue
		}
		declared, _ := spec["type"].(string)
		if raw == nil || declared == "" {
			continue
		}
		if !typeMatches(declared, raw) {
			verr.Invalid = append(verr.Invalid, field)
			continue
		}
		if !enumMatches(spec["enum"], raw) {
			verr.Invalid = append(verr.Invalid, field)
		}
	}

	if len(verr.Missing) > 0 || len(verr.Invalid) > 0 {
		return verr
	}
	return nil
}

// enumMatches checks a value against a declared enum. Absent enums and blank
// strings pass; blank optional fields are treated as not provided.
func enumMatches(enum any, v any) bool {
	s, isStr := v.(string)
	if !isStr || s == "" {
		return true
	}
	switch allowed := enum.(type) {
	case []string:
		for _, a := range allowed {
			if a == s {
				return true
			}
		}
		return len(allowed) == 0
	case []any:
		for _, a := range allowed {
			if a == s {
				return true
			}
		}
		return len(allowed) == 0
	}
	return true
}

func typeMatches(declared string, v any) bool {
	switch declared {
	case "string":
		_, ok := v.(string)
		return ok
	case "number":
		switch v.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch n := v.(type) {
		case int, int64:
			return true
		case float64:
			return n == float64(int64(n))
		}
		return false
	case "boolean":
		_, ok := v.(bool)
		return ok
	case "array":
		_, ok := v.([]any)
		return ok
	case "object":
		_, ok := v.(map[string]any)
		return ok
	}
	return true
}
