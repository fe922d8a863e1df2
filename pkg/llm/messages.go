package llm

import (
	"encoding/json"

	"github.com/liushuangls/go-anthropic/v2"
)

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// BlockType identifies the kind of content carried by a block.
type BlockType string

const (
	BlockText       BlockType = "text"
	BlockImage      BlockType = "image"
	BlockDocument   BlockType = "document"
	BlockToolUse    BlockType = "tool_use"
	BlockToolResult BlockType = "tool_result"
)

// ContentBlock is one piece of message content. Exactly one payload field is
// set, according to Type.
type ContentBlock struct {
	Type BlockType `json:"type"`

	// Text payload (BlockText)
	Text string `json:"text,omitempty"`

	// Base64 payload (BlockImage, BlockDocument)
	MediaType string `json:"media_type,omitempty"`
	Data      string `json:"data,omitempty"`

	// Tool-use payload (BlockToolUse)
	ToolUseID string          `json:"tool_use_id,omitempty"`
	ToolName  string          `json:"tool_name,omitempty"`
	ToolInput json.RawMessage `json:"tool_input,omitempty"`

	// Tool-result payload (BlockToolResult)
	ToolResult string `json:"tool_result,omitempty"`
	IsError    bool   `json:"is_error,omitempty"`
}

// Message is one turn in a model conversation.
type Message struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

// TextMessage builds a single-block text message.
func TextMessage(role Role, text string) Message {
	return Message{Role: role, Content: []ContentBlock{{Type: BlockText, Text: text}}}
}

// DocumentBlock builds a base64 document block (PDFs). Sending a message
// containing one switches the client onto the PDF beta endpoint.
func DocumentBlock(mediaType, base64Data string) ContentBlock {
	return ContentBlock{Type: BlockDocument, MediaType: mediaType, Data: base64Data}
}

// ImageBlock builds a base64 image block.
func ImageBlock(mediaType, base64Data string) ContentBlock {
	return ContentBlock{Type: BlockImage, MediaType: mediaType, Data: base64Data}
}

// ToolResultMessage builds a user message carrying one tool result.
func ToolResultMessage(toolUseID, result string, isError bool) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{{
		Type:       BlockToolResult,
		ToolUseID:  toolUseID,
		ToolResult: result,
		IsError:    isError,
	}}}
}

// ContainsDocument reports whether any message carries a document block.
// The client uses this to decide whether the PDF beta option is needed;
// callers never set the option themselves.
func ContainsDocument(messages []Message) bool {
	for _, m := range messages {
		for _, b := range m.Content {
			if b.Type == BlockDocument {
				return true
			}
		}
	}
	return false
}

// toAnthropicMessages converts our message model to the wire types.
func toAnthropicMessages(messages []Message) []anthropic.Message {
	out := make([]anthropic.Message, 0, len(messages))
	for _, m := range messages {
		role := anthropic.RoleUser
		if m.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}

		content := make([]anthropic.MessageContent, 0, len(m.Content))
		for _, b := range m.Content {
			switch b.Type {
			case BlockText:
				content = append(content, anthropic.NewTextMessageContent(b.Text))
			case BlockImage:
				content = append(content, anthropic.NewImageMessageContent(
					anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64, b.MediaType, b.Data)))
			case BlockDocument:
				content = append(content, anthropic.NewDocumentMessageContent(
					anthropic.NewMessageContentSource(
						anthropic.MessagesContentSourceTypeBase64, b.MediaType, b.Data)))
			case BlockToolUse:
				content = append(content, anthropic.MessageContent{
					Type: anthropic.MessagesContentTypeToolUse,
					MessageContentToolUse: &anthropic.MessageContentToolUse{
						ID:    b.ToolUseID,
						Name:  b.ToolName,
						Input: b.ToolInput,
					},
				})
			case BlockToolResult:
				content = append(content, anthropic.NewToolResultMessageContent(
					b.ToolUseID, b.ToolResult, b.IsError))
			}
		}

		out = append(out, anthropic.Message{Role: role, Content: content})
	}
	return out
}
