package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/llm"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/prompts"
	"github.com/bls-living/sda-engine/pkg/tools"
)

const (
	replyTryAgain     = "Sorry, I couldn't process that just now. Please try again."
	replyUnknown      = "I'm not sure what you're after. You can ask about vacancies, plans, payments, maintenance and documents, or ask me to record a change."
	maxToolIterations = 5
)

// ChatReply is the outcome of one processed message. PendingAction is set
// when the message resolved to a write and confirmation is required.
type ChatReply struct {
	ConversationID uuid.UUID             `json:"conversation_id"`
	Response       string                `json:"response"`
	PendingAction  *models.PendingAction `json:"pending_action,omitempty"`
}

// Chatbot orchestrates the assistant: classify, dispatch, format, persist.
type Chatbot struct {
	resolver     *IntentResolver
	dispatcher   *Dispatcher
	model        llm.ModelClient
	repos        *Repos
	maxTokens    int
	historyLimit int
	logger       *zap.Logger
}

// NewChatbot creates a Chatbot.
func NewChatbot(resolver *IntentResolver, dispatcher *Dispatcher, model llm.ModelClient, repos *Repos, maxTokens, historyLimit int, logger *zap.Logger) *Chatbot {
	return &Chatbot{
		resolver:     resolver,
		dispatcher:   dispatcher,
		model:        model,
		repos:        repos,
		maxTokens:    maxTokens,
		historyLimit: historyLimit,
		logger:       logger.Named("chatbot"),
	}
}

// ProcessMessage handles one staff message on the classify-then-dispatch
// path: resolve the intent, run the matching read tool or prepare the
// matching action, and persist both turns.
func (c *Chatbot) ProcessMessage(ctx context.Context, orgID, userID uuid.UUID, conversationID *uuid.UUID, message string) (*ChatReply, error) {
	conv, history, err := c.openConversation(ctx, orgID, userID, conversationID, message)
	if err != nil {
		return nil, err
	}

	if _, err := c.repos.Conversations.AppendTurn(ctx, conv.ID, models.TurnUser, message); err != nil {
		return nil, err
	}

	reply := &ChatReply{ConversationID: conv.ID}

	result, err := c.resolver.Resolve(ctx, message, history)
	var classErr *ClassificationError
	if errors.As(err, &classErr) {
		// The classifier failing is not the user's fault; tell them to
		// retry rather than pretending the message was unintelligible.
		reply.Response = replyTryAgain
		return c.finish(ctx, conv.ID, reply)
	}
	if err != nil {
		return nil, err
	}

	c.logger.Info("resolved intent",
		zap.String("intent", string(result.Intent)),
		zap.Float64("confidence", result.Confidence),
		zap.Bool("is_action", result.Intent.IsAction()))

	if result.Intent == models.IntentUnknown {
		reply.Response = replyUnknown
		return c.finish(ctx, conv.ID, reply)
	}

	if result.Intent.IsAction() {
		c.handleAction(ctx, result, reply)
	} else {
		c.handleQuery(ctx, message, result, reply)
	}

	return c.finish(ctx, conv.ID, reply)
}

// ProcessMessageWithTools handles one message on the tool-calling path: the
// model picks tools from the catalogue itself. Action tools still only
// prepare a pending action; the gate holds on this path too.
func (c *Chatbot) ProcessMessageWithTools(ctx context.Context, orgID, userID uuid.UUID, conversationID *uuid.UUID, message string) (*ChatReply, error) {
	conv, history, err := c.openConversation(ctx, orgID, userID, conversationID, message)
	if err != nil {
		return nil, err
	}

	if _, err := c.repos.Conversations.AppendTurn(ctx, conv.ID, models.TurnUser, message); err != nil {
		return nil, err
	}

	reply := &ChatReply{ConversationID: conv.ID}

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.TextMessage(llm.RoleUser, message))

	catalogue := c.dispatcher.Registry().All()

	for i := 0; i < maxToolIterations; i++ {
		resp, err := c.model.CallModelWithTools(ctx, prompts.AssistantWithTools, messages, catalogue, c.maxTokens)
		if err != nil {
			c.logger.Error("tool-calling turn failed", zap.Error(err))
			reply.Response = replyTryAgain
			return c.finish(ctx, conv.ID, reply)
		}

		toolUse := llm.ExtractToolUse(resp)
		if toolUse == nil {
			reply.Response = llm.ExtractText(resp)
			return c.finish(ctx, conv.ID, reply)
		}

		if tools.IsActionTool(toolUse.Name) {
			action, err := c.dispatcher.PrepareAction(ctx, toolUse.Name, toolUse.Input)
			c.actionReply(action, err, toolUse.Name, reply)
			return c.finish(ctx, conv.ID, reply)
		}

		toolResult, err := c.dispatcher.ExecuteReadTool(ctx, toolUse.Name, toolUse.Input)
		if err != nil {
			if errors.Is(err, apperrors.ErrToolNotFound) {
				// The model invented a tool name. Integration bug, not a
				// user problem.
				reply.Response = replyTryAgain
				return c.finish(ctx, conv.ID, reply)
			}
			toolResult = fmt.Sprintf(`{"error": %q}`, err.Error())
		}

		inputJSON, _ := json.Marshal(toolUse.Input)
		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: []llm.ContentBlock{{
				Type:      llm.BlockToolUse,
				ToolUseID: toolUse.ID,
				ToolName:  toolUse.Name,
				ToolInput: inputJSON,
			}}},
			llm.ToolResultMessage(toolUse.ID, toolResult, false),
		)
	}

	reply.Response = "I wasn't able to finish looking that up. Please try a more specific question."
	return c.finish(ctx, conv.ID, reply)
}

// Confirm executes a pending action and records the outcome in the
// conversation. Stale or capacity errors pass through for the handler to
// map; nothing is appended in that case since nothing happened.
func (c *Chatbot) Confirm(ctx context.Context, conversationID, token uuid.UUID) (*ChatReply, error) {
	result, err := c.dispatcher.ConfirmAction(ctx, token)
	if err != nil {
		return nil, err
	}

	reply := &ChatReply{ConversationID: conversationID, Response: result}
	return c.finish(ctx, conversationID, reply)
}

// Cancel discards a pending action and records the cancellation.
func (c *Chatbot) Cancel(ctx context.Context, conversationID, token uuid.UUID) (*ChatReply, error) {
	c.dispatcher.CancelAction(token)

	reply := &ChatReply{ConversationID: conversationID, Response: "No problem, I've cancelled that."}
	return c.finish(ctx, conversationID, reply)
}

// openConversation loads (or creates) the conversation and returns the
// prior turns as model messages.
func (c *Chatbot) openConversation(ctx context.Context, orgID, userID uuid.UUID, conversationID *uuid.UUID, message string) (*models.Conversation, []llm.Message, error) {
	if conversationID != nil {
		conv, err := c.repos.Conversations.GetByID(ctx, *conversationID)
		if err != nil {
			return nil, nil, err
		}
		turns, err := c.repos.Conversations.GetTurns(ctx, conv.ID, c.historyLimit)
		if err != nil {
			return nil, nil, err
		}
		history := make([]llm.Message, 0, len(turns))
		for _, t := range turns {
			role := llm.RoleUser
			if t.Role == models.TurnAssistant {
				role = llm.RoleAssistant
			}
			history = append(history, llm.TextMessage(role, t.Content))
		}
		return conv, history, nil
	}

	conv := &models.Conversation{
		OrgID:  orgID,
		UserID: userID,
		Title:  models.TitleFromMessage(message),
	}
	if err := c.repos.Conversations.Create(ctx, conv); err != nil {
		return nil, nil, err
	}
	return conv, nil, nil
}

// handleQuery maps a query intent onto a read tool, executes it, and
// formats the result through the model.
func (c *Chatbot) handleQuery(ctx context.Context, message string, result *models.IntentResult, reply *ChatReply) {
	toolName, input := queryToolFor(result)
	if toolName == "" {
		reply.Response = prompts.ClarificationFor(string(result.Intent), missingQueryFields(result))
		return
	}

	toolResult, err := c.dispatcher.ExecuteReadTool(ctx, toolName, input)
	if err != nil {
		var verr *tools.ValidationError
		if errors.As(err, &verr) {
			reply.Response = prompts.ClarificationFor(toolName, verr.Missing)
			return
		}
		c.logger.Error("read tool failed", zap.String("tool", toolName), zap.Error(err))
		reply.Response = replyTryAgain
		return
	}

	formatted, err := c.model.CallModel(ctx,
		prompts.ResponseFormatter(message, toolName, toolResult),
		[]llm.Message{llm.TextMessage(llm.RoleUser, message)},
		c.maxTokens)
	if err != nil || formatted == "" {
		// Raw tool output is still an answer; formatting is best-effort.
		c.logger.Warn("response formatting failed, returning raw result", zap.Error(err))
		reply.Response = toolResult
		return
	}
	reply.Response = formatted
}

// handleAction maps an action intent onto its action tool and prepares it.
func (c *Chatbot) handleAction(ctx context.Context, result *models.IntentResult, reply *ChatReply) {
	toolName := string(result.Intent)
	input := actionInputFor(result)

	action, err := c.dispatcher.PrepareAction(ctx, toolName, input)
	c.actionReply(action, err, toolName, reply)
}

// actionReply turns a PrepareAction outcome into a user-facing reply.
func (c *Chatbot) actionReply(action *models.PendingAction, err error, toolName string, reply *ChatReply) {
	if err != nil {
		var verr *tools.ValidationError
		switch {
		case errors.As(err, &verr):
			reply.Response = prompts.ClarificationFor(toolName, append(verr.Missing, verr.Invalid...))
		case errors.Is(err, apperrors.ErrNotFound):
			reply.Response = fmt.Sprintf("I couldn't find what that refers to (%v). Could you check the name?", err)
		default:
			c.logger.Error("failed to prepare action", zap.String("tool", toolName), zap.Error(err))
			reply.Response = replyTryAgain
		}
		return
	}

	reply.PendingAction = action
	reply.Response = fmt.Sprintf("%s. Shall I go ahead? Confirm or cancel.", action.Description)
}

// queryToolFor maps a query intent and its entities onto a read tool call.
// An empty tool name means a required entity is missing and the caller
// should ask for it.
func queryToolFor(result *models.IntentResult) (string, map[string]any) {
	e := result.Entities
	input := map[string]any{}

	switch result.Intent {
	case models.IntentVacancyQuery:
		if e.PropertyName != "" {
			input["property_name"] = e.PropertyName
		}
		return "get_vacancies", input

	case models.IntentPlanExpiryQuery:
		if e.ParticipantName != "" {
			return "get_participant_plan_expiry", map[string]any{"participant_name": e.ParticipantName}
		}
		if e.DaysAhead != nil {
			input["days_ahead"] = float64(*e.DaysAhead)
		}
		return "get_expiring_plans", input

	case models.IntentMaintenanceQuery:
		if e.PropertyName != "" {
			input["property_name"] = e.PropertyName
		}
		return "get_overdue_maintenance", input

	case models.IntentPaymentQuery:
		if e.ParticipantName != "" {
			return "get_payment_status", map[string]any{"participant_name": e.ParticipantName}
		}
		if e.DaysAhead != nil {
			input["days_ahead"] = float64(*e.DaysAhead)
		}
		return "get_upcoming_payments", input

	case models.IntentDocumentExpiryQuery:
		if e.DaysAhead != nil {
			input["days_ahead"] = float64(*e.DaysAhead)
		}
		if e.PropertyName != "" {
			input["property_name"] = e.PropertyName
		}
		return "get_expiring_documents", input

	case models.IntentPropertyInfoQuery:
		if e.PropertyName == "" {
			return "", nil
		}
		return "get_property_summary", map[string]any{"property_name": e.PropertyName}

	case models.IntentParticipantInfoQuery:
		if e.ParticipantName == "" {
			return "", nil
		}
		return "get_participant_info", map[string]any{"participant_name": e.ParticipantName}

	case models.IntentGeneralQuestion:
		return "get_recent_activity", input
	}

	return "", nil
}

// missingQueryFields names what a query intent needs when queryToolFor
// could not build a call.
func missingQueryFields(result *models.IntentResult) []string {
	switch result.Intent {
	case models.IntentPropertyInfoQuery:
		return []string{"property_name"}
	case models.IntentParticipantInfoQuery:
		return []string{"participant_name"}
	}
	return nil
}

// actionInputFor maps extracted entities onto an action tool's input.
func actionInputFor(result *models.IntentResult) map[string]any {
	e := result.Entities
	input := map[string]any{}

	put := func(key, val string) {
		if val != "" {
			input[key] = val
		}
	}

	switch result.Intent {
	case models.IntentMoveParticipant:
		put("participant_name", e.ParticipantName)
		target := e.DwellingName
		if target == "" {
			target = e.PropertyName
		}
		put("target_dwelling", target)

	case models.IntentCreateMaintenanceRequest:
		put("property_name", e.PropertyName)
		put("description", e.Description)
		put("category", e.Category)
		put("priority", e.Priority)

	case models.IntentUpdateMaintenanceStatus:
		put("description", e.Description)
		put("status", e.Status)

	case models.IntentRecordPayment:
		put("participant_name", e.ParticipantName)
		if e.Amount != nil {
			input["amount"] = *e.Amount
		}
		put("payment_date", e.PaymentDate)
		put("notes", e.Notes)

	case models.IntentUpdateParticipantStatus:
		put("participant_name", e.ParticipantName)
		put("status", e.Status)
	}

	return input
}

// finish appends the assistant turn and returns the reply.
func (c *Chatbot) finish(ctx context.Context, conversationID uuid.UUID, reply *ChatReply) (*ChatReply, error) {
	if _, err := c.repos.Conversations.AppendTurn(ctx, conversationID, models.TurnAssistant, reply.Response); err != nil {
		return nil, err
	}
	return reply, nil
}
