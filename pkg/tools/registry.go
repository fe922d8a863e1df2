package tools

import (
	"fmt"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/llm"
)

// Registry is an immutable tool catalogue, built once at startup and passed
// by injection. Safe for concurrent readers; nothing mutates it after
// construction.
type Registry struct {
	defs  []llm.ToolDefinition
	index map[string]llm.ToolDefinition
}

// NewRegistry builds a registry from tool definitions, preserving order.
func NewRegistry(defs []llm.ToolDefinition) *Registry {
	index := make(map[string]llm.ToolDefinition, len(defs))
	for _, d := range defs {
		index[d.Name] = d
	}
	return &Registry{defs: defs, index: index}
}

// Lookup returns the definition for a tool name. An unknown name means the
// model hallucinated a tool; that is an integration bug, not a user error,
// and callers log it as such.
func (r *Registry) Lookup(name string) (llm.ToolDefinition, error) {
	def, ok := r.index[name]
	if !ok {
		return llm.ToolDefinition{}, fmt.Errorf("tool %q: %w", name, apperrors.ErrToolNotFound)
	}
	return def, nil
}

// All returns the catalogue in definition order.
func (r *Registry) All() []llm.ToolDefinition {
	out := make([]llm.ToolDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}
