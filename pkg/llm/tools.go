// Package llm wraps the Anthropic Messages API: message construction,
// tool-call plumbing, and structured-output extraction.
package llm

import "github.com/liushuangls/go-anthropic/v2"

// ToolDefinition defines a tool that can be called by the model.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ParameterProperty defines a parameter property in JSON Schema format.
type ParameterProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description,omitempty"`
	Enum        []string `json:"enum,omitempty"`
}

// NewToolDefinition creates a new tool definition with standard JSON Schema parameters.
func NewToolDefinition(name, description string, properties map[string]ParameterProperty, required []string) ToolDefinition {
	props := make(map[string]any)
	for k, v := range properties {
		props[k] = map[string]any{
			"type":        v.Type,
			"description": v.Description,
		}
		if len(v.Enum) > 0 {
			props[k].(map[string]any)["enum"] = v.Enum
		}
	}

	return ToolDefinition{
		Name:        name,
		Description: description,
		Parameters: map[string]any{
			"type":       "object",
			"properties": props,
			"required":   required,
		},
	}
}

// RequiredFields returns the required parameter names of a tool definition.
func (t ToolDefinition) RequiredFields() []string {
	required, ok := t.Parameters["required"].([]string)
	if !ok {
		return nil
	}
	return required
}

// Properties returns the parameter property map of a tool definition.
func (t ToolDefinition) Properties() map[string]any {
	props, ok := t.Parameters["properties"].(map[string]any)
	if !ok {
		return nil
	}
	return props
}

// toAnthropicTools converts tool definitions to the wire format.
func toAnthropicTools(tools []ToolDefinition) []anthropic.ToolDefinition {
	out := make([]anthropic.ToolDefinition, 0, len(tools))
	for _, t := range tools {
		out = append(out, anthropic.ToolDefinition{
			Name:        t.Name,
			Description: t.Description,
			InputSchema: t.Parameters,
		})
	}
	return out
}
