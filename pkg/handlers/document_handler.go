package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/apperrors"
	"github.com/bls-living/sda-engine/pkg/services"
)

// DocumentHandler handles compliance document analysis endpoints.
type DocumentHandler struct {
	analysis *services.DocumentAnalysisService
	logger   *zap.Logger
}

// NewDocumentHandler creates a new document handler.
func NewDocumentHandler(analysis *services.DocumentAnalysisService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{analysis: analysis, logger: logger}
}

// RegisterRoutes registers the document handler's routes on the given mux.
func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux, tenantMiddleware TenantMiddleware) {
	mux.HandleFunc("POST /api/orgs/{org}/documents/{did}/analyze", tenantMiddleware(h.Analyze))
}

// Analyze handles POST /api/orgs/{org}/documents/{did}/analyze
func (h *DocumentHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if _, ok := ParseOrgID(w, r, h.logger); !ok {
		return
	}
	documentID, ok := ParseDocumentID(w, r, h.logger)
	if !ok {
		return
	}

	metadata, err := h.analysis.Analyze(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			if werr := ErrorResponse(w, http.StatusNotFound, "document_not_found", "Document not found"); werr != nil {
				h.logger.Error("Failed to write error response", zap.Error(werr))
			}
			return
		}
		h.logger.Error("Failed to analyze document",
			zap.String("document_id", documentID.String()),
			zap.Error(err))
		if werr := ErrorResponse(w, http.StatusInternalServerError, "analyze_document_failed", err.Error()); werr != nil {
			h.logger.Error("Failed to write error response", zap.Error(werr))
		}
		return
	}

	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: metadata}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
