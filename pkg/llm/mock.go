package llm

import "context"

// MockModelClient is a configurable mock for tests. Set the function fields
// to control behavior; call counters track usage.
type MockModelClient struct {
	CallModelFunc          func(ctx context.Context, system string, messages []Message, maxTokens int) (string, error)
	CallModelWithToolsFunc func(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens int) (*Response, error)

	CallModelCalls          int
	CallModelWithToolsCalls int
}

var _ ModelClient = (*MockModelClient)(nil)

func (m *MockModelClient) CallModel(ctx context.Context, system string, messages []Message, maxTokens int) (string, error) {
	m.CallModelCalls++
	if m.CallModelFunc != nil {
		return m.CallModelFunc(ctx, system, messages, maxTokens)
	}
	return "", nil
}

func (m *MockModelClient) CallModelWithTools(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens int) (*Response, error) {
	m.CallModelWithToolsCalls++
	if m.CallModelWithToolsFunc != nil {
		return m.CallModelWithToolsFunc(ctx, system, messages, tools, maxTokens)
	}
	return &Response{}, nil
}
