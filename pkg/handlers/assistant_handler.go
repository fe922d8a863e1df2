package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/services"
	"github.com/bls-living/sda-engine/pkg/tools"
)

// MessageRequest for POST /api/orgs/{org}/assistant/message
type MessageRequest struct {
	UserID         uuid.UUID  `json:"user_id"`
	ConversationID *uuid.UUID `json:"conversation_id,omitempty"`
	Message        string     `json:"message"`
	UseTools       bool       `json:"use_tools,omitempty"`
}

// ConfirmRequest for POST /api/orgs/{org}/assistant/confirm and /cancel
type ConfirmRequest struct {
	ConversationID uuid.UUID `json:"conversation_id"`
	Token          uuid.UUID `json:"token"`
}

// AssistantHandler handles the assistant chat endpoints.
type AssistantHandler struct {
	chatbot *services.Chatbot
	logger  *zap.Logger
}

// NewAssistantHandler creates a new assistant handler.
func NewAssistantHandler(chatbot *services.Chatbot, logger *zap.Logger) *AssistantHandler {
	return &AssistantHandler{chatbot: chatbot, logger: logger}
}

// RegisterRoutes registers the assistant handler's routes on the given mux.
func (h *AssistantHandler) RegisterRoutes(mux *http.ServeMux, tenantMiddleware TenantMiddleware) {
	base := "/api/orgs/{org}/assistant"

	mux.HandleFunc("POST "+base+"/message", tenantMiddleware(h.Message))
	mux.HandleFunc("POST "+base+"/confirm", tenantMiddleware(h.Confirm))
	mux.HandleFunc("POST "+base+"/cancel", tenantMiddleware(h.Cancel))
}

// Message handles POST /api/orgs/{org}/assistant/message
func (h *AssistantHandler) Message(w http.ResponseWriter, r *http.Request) {
	orgID, ok := ParseOrgID(w, r, h.logger)
	if !ok {
		return
	}

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		h.writeError(w, http.StatusBadRequest, "empty_message", "Message must not be empty")
		return
	}
	if req.UserID == uuid.Nil {
		h.writeError(w, http.StatusBadRequest, "missing_user_id", "user_id is required")
		return
	}

	process := h.chatbot.ProcessMessage
	if req.UseTools {
		process = h.chatbot.ProcessMessageWithTools
	}

	reply, err := process(r.Context(), orgID, req.UserID, req.ConversationID, req.Message)
	if err != nil {
		h.writeDomainError(w, "process_message_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: reply}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Confirm handles POST /api/orgs/{org}/assistant/confirm
func (h *AssistantHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	reply, err := h.chatbot.Confirm(r.Context(), req.ConversationID, req.Token)
	if err != nil {
		h.writeDomainError(w, "confirm_action_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: reply}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Cancel handles POST /api/orgs/{org}/assistant/cancel
func (h *AssistantHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}

	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	reply, err := h.chatbot.Cancel(r.Context(), req.ConversationID, req.Token)
	if err != nil {
		h.writeDomainError(w, "cancel_action_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: reply}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeDomainError maps service errors onto HTTP statuses.
func (h *AssistantHandler) writeDomainError(w http.ResponseWriter, fallbackCode string, err error) {
	var verr *tools.ValidationError
	switch {
	case errors.Is(err, apperrors.ErrStaleAction):
		h.writeError(w, http.StatusConflict, "stale_action", err.Error())
	case errors.Is(err, apperrors.ErrDwellingAtCapacity):
		h.writeError(w, http.StatusConflict, "dwelling_at_capacity", err.Error())
	case errors.Is(err, apperrors.ErrNoCurrentPlan):
		h.writeError(w, http.StatusConflict, "no_current_plan", err.Error())
	case errors.Is(err, apperrors.ErrNotFound):
		h.writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &verr):
		h.writeError(w, http.StatusBadRequest, "validation_error", err.Error())
	default:
		h.logger.Error("Assistant request failed", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, fallbackCode, err.Error())
	}
}

func (h *AssistantHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
