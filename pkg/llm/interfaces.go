package llm

import "context"

// ModelClient is the interface services depend on for model calls.
// Implementations: Client (Anthropic API), MockModelClient (tests).
type ModelClient interface {
	// CallModel sends messages and returns the text of the response.
	CallModel(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)

	// CallModelWithTools sends messages with a tool catalogue. The model may
	// answer in text or request a tool call; both are valid outcomes and the
	// caller distinguishes them with ExtractToolUse/ExtractText.
	CallModelWithTools(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens int) (*Response, error)
}
