package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/repositories"
)

// ConversationListResponse for GET /api/orgs/{org}/conversations
type ConversationListResponse struct {
	Conversations []*models.Conversation `json:"conversations"`
	Total         int                    `json:"total"`
}

// ConversationDetailResponse for GET /api/orgs/{org}/conversations/{cid}
type ConversationDetailResponse struct {
	Conversation *models.Conversation       `json:"conversation"`
	Turns        []*models.ConversationTurn `json:"turns"`
}

// UpdateTitleRequest for PATCH /api/orgs/{org}/conversations/{cid}
type UpdateTitleRequest struct {
	Title string `json:"title"`
}

// ConversationHandler handles conversation management endpoints.
type ConversationHandler struct {
	conversations repositories.ConversationRepository
	turnLimit     int
	logger        *zap.Logger
}

// NewConversationHandler creates a new conversation handler. turnLimit caps
// how many turns a detail request returns.
func NewConversationHandler(conversations repositories.ConversationRepository, turnLimit int, logger *zap.Logger) *ConversationHandler {
	return &ConversationHandler{conversations: conversations, turnLimit: turnLimit, logger: logger}
}

// RegisterRoutes registers the conversation handler's routes on the given mux.
func (h *ConversationHandler) RegisterRoutes(mux *http.ServeMux, tenantMiddleware TenantMiddleware) {
	base := "/api/orgs/{org}/conversations"

	mux.HandleFunc("GET "+base, tenantMiddleware(h.List))
	mux.HandleFunc("GET "+base+"/{cid}", tenantMiddleware(h.Get))
	mux.HandleFunc("PATCH "+base+"/{cid}", tenantMiddleware(h.UpdateTitle))
	mux.HandleFunc("DELETE "+base+"/{cid}", tenantMiddleware(h.Delete))
}

// List handles GET /api/orgs/{org}/conversations?user_id=...
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}

	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_user_id", "user_id query parameter is required")
		return
	}

	conversations, err := h.conversations.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list conversations", zap.Error(err))
		h.writeError(w, http.StatusInternalServerError, "list_conversations_failed", err.Error())
		return
	}

	response := ConversationListResponse{Conversations: conversations, Total: len(conversations)}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Get handles GET /api/orgs/{org}/conversations/{cid}
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	conversation, err := h.conversations.GetByID(r.Context(), conversationID)
	if err != nil {
		h.writeRepoError(w, "get_conversation_failed", err)
		return
	}

	turns, err := h.conversations.GetTurns(r.Context(), conversationID, h.turnLimit)
	if err != nil {
		h.writeRepoError(w, "get_conversation_failed", err)
		return
	}

	response := ConversationDetailResponse{Conversation: conversation, Turns: turns}
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: response}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// UpdateTitle handles PATCH /api/orgs/{org}/conversations/{cid}
func (h *ConversationHandler) UpdateTitle(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		h.writeError(w, http.StatusBadRequest, "empty_title", "Title must not be empty")
		return
	}

	if err := h.conversations.UpdateTitle(r.Context(), conversationID, req.Title); err != nil {
		h.writeRepoError(w, "update_title_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Delete handles DELETE /api/orgs/{org}/conversations/{cid}
// Conversations are soft-deleted; turns stay for audit.
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}
	conversationID, ok := ParseConversationID(w, r, h.logger)
	if !ok {
		return
	}

	if err := h.conversations.Deactivate(r.Context(), conversationID); err != nil {
		h.writeRepoError(w, "delete_conversation_failed", err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

func (h *ConversationHandler) writeRepoError(w http.ResponseWriter, fallbackCode string, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		h.writeError(w, http.StatusNotFound, "conversation_not_found", "Conversation not found")
		return
	}
	h.logger.Error("Conversation request failed", zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, fallbackCode, err.Error())
}

func (h *ConversationHandler) writeError(w http.ResponseWriter, status int, code, message string) {
	if err := ErrorResponse(w, status, code, message); err != nil {
		h.logger.Error("Failed to write error response", zap.Error(err))
	}
}
