package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/retry"
)

// Client calls the Anthropic Messages API. It owns every protocol detail:
// model selection, the PDF beta option, tool wire format, and response
// parsing. Callers work with the package's own Message and Response types.
type Client struct {
	api      *anthropic.Client
	pdfAPI   *anthropic.Client
	model    string
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewClient creates a model client. A missing API key fails immediately at
// construction rather than on the first request.
func NewClient(apiKey, model string, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, NewError(ErrorTypeConfig, "ANTHROPIC_API_KEY is not set", false, nil)
	}
	if model == "" {
		return nil, NewError(ErrorTypeConfig, "model name is not set", false, nil)
	}

	return &Client{
		api:      anthropic.NewClient(apiKey),
		pdfAPI:   anthropic.NewClient(apiKey, anthropic.WithBetaVersion(anthropic.BetaVersion("pdfs-2024-09-25"))),
		model:    model,
		retryCfg: retry.ModelCallConfig(),
		logger:   logger.Named("llm"),
	}, nil
}

var _ ModelClient = (*Client)(nil)

// Response is a parsed model response. Content preserves block order;
// StopReason is the API's stop reason verbatim.
type Response struct {
	Content    []ContentBlock
	StopReason string
}

// ToolUse is a tool call requested by the model.
type ToolUse struct {
	ID    string
	Name  string
	Input map[string]any
}

// ExtractText returns the concatenated text blocks of a response.
func ExtractText(resp *Response) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == BlockText {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// ExtractToolUse returns the first tool call in a response, or nil when the
// model answered in plain text.
func ExtractToolUse(resp *Response) *ToolUse {
	if resp == nil {
		return nil
	}
	for _, b := range resp.Content {
		if b.Type != BlockToolUse {
			continue
		}
		input := map[string]any{}
		if len(b.ToolInput) > 0 {
			if err := json.Unmarshal(b.ToolInput, &input); err != nil {
				input = map[string]any{}
			}
		}
		return &ToolUse{ID: b.ToolUseID, Name: b.ToolName, Input: input}
	}
	return nil
}

// CallModel sends messages and returns the response text.
func (c *Client) CallModel(ctx context.Context, system string, messages []Message, maxTokens int) (string, error) {
	resp, err := c.send(ctx, system, messages, nil, maxTokens)
	if err != nil {
		return "", err
	}
	return ExtractText(resp), nil
}

// CallModelWithTools sends messages with a tool catalogue and returns the
// parsed response. The model may answer in text instead of calling a tool.
func (c *Client) CallModelWithTools(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens int) (*Response, error) {
	return c.send(ctx, system, messages, tools, maxTokens)
}

func (c *Client) send(ctx context.Context, system string, messages []Message, tools []ToolDefinition, maxTokens int) (*Response, error) {
	req := anthropic.MessagesRequest{
		Model:     anthropic.Model(c.model),
		System:    system,
		Messages:  toAnthropicMessages(messages),
		MaxTokens: maxTokens,
	}
	if len(tools) > 0 {
		req.Tools = toAnthropicTools(tools)
	}

	api := c.apiFor(messages)

	// Rate limits and overloads are retried with backoff; classified errors
	// declare their own retryability, so permanent failures return at once.
	var resp anthropic.MessagesResponse
	err := retry.DoIfRetryable(ctx, c.retryCfg, func() error {
		r, err := api.CreateMessages(ctx, req)
		if err != nil {
			llmErr := ClassifyError(err)
			llmErr.Model = c.model
			if llmErr.Retryable {
				c.logger.Warn("model call failed, will retry",
					zap.String("model", c.model),
					zap.String("error_type", string(llmErr.Type)),
					zap.Error(err))
			}
			return llmErr
		}
		resp = r
		return nil
	})
	if err != nil {
		c.logger.Error("model call failed",
			zap.String("model", c.model),
			zap.Error(err))
		return nil, err
	}

	return parseResponse(resp), nil
}

// apiFor picks the underlying API client for a request. Document blocks need
// the PDF beta option; the decision lives here so callers cannot forget it.
func (c *Client) apiFor(messages []Message) *anthropic.Client {
	if ContainsDocument(messages) {
		return c.pdfAPI
	}
	return c.api
}

func parseResponse(resp anthropic.MessagesResponse) *Response {
	out := &Response{StopReason: string(resp.StopReason)}
	for _, block := range resp.Content {
		switch {
		case block.Type == anthropic.MessagesContentTypeText && block.Text != nil:
			out.Content = append(out.Content, ContentBlock{Type: BlockText, Text: *block.Text})
		case block.MessageContentToolUse != nil:
			tu := block.MessageContentToolUse
			out.Content = append(out.Content, ContentBlock{
				Type:      BlockToolUse,
				ToolUseID: tu.ID,
				ToolName:  tu.Name,
				ToolInput: tu.Input,
			})
		}
	}
	return out
}
