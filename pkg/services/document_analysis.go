package services

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/llm"
	"github.com/bls-living/sda-engine/pkg/prompts"
	"github.com/bls-living/sda-engine/pkg/repositories"
	"github.com/bls-living/sda-engine/pkg/storage"
)

// DocumentMetadata is what the model extracts from a compliance document.
type DocumentMetadata struct {
	DocumentType string `json:"document_type"`
	Title        string `json:"title"`
	IssueDate    string `json:"issue_date,omitempty"`
	ExpiryDate   string `json:"expiry_date,omitempty"`
	Issuer       string `json:"issuer,omitempty"`
	Summary      string `json:"summary"`
}

// DocumentAnalysisService sends stored compliance documents to the model and
// extracts structured metadata from them.
type DocumentAnalysisService struct {
	documents repositories.DocumentRepository
	files     storage.FileStore
	model     llm.ModelClient
	maxTokens int
	logger    *zap.Logger
}

// NewDocumentAnalysisService creates a DocumentAnalysisService.
func NewDocumentAnalysisService(documents repositories.DocumentRepository, files storage.FileStore, model llm.ModelClient, maxTokens int, logger *zap.Logger) *DocumentAnalysisService {
	return &DocumentAnalysisService{
		documents: documents,
		files:     files,
		model:     model,
		maxTokens: maxTokens,
		logger:    logger.Named("document_analysis"),
	}
}

// Analyze fetches the stored document, sends it to the model as a PDF or
// image block according to its content type, and parses the extracted
// metadata.
func (s *DocumentAnalysisService) Analyze(ctx context.Context, documentID uuid.UUID) (*DocumentMetadata, error) {
	doc, err := s.documents.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}

	data, err := s.files.Fetch(ctx, doc.StorageKey)
	if err != nil {
		return nil, err
	}

	block, err := contentBlockFor(doc.ContentType, data)
	if err != nil {
		return nil, err
	}

	messages := []llm.Message{{
		Role: llm.RoleUser,
		Content: []llm.ContentBlock{
			block,
			{Type: llm.BlockText, Text: "Extract the metadata from this document."},
		},
	}}

	response, err := s.model.CallModel(ctx, prompts.DocumentAnalysis, messages, s.maxTokens)
	if err != nil {
		return nil, err
	}

	meta, err := llm.ParseJSONResponse[DocumentMetadata](response)
	if err != nil {
		return nil, err
	}

	s.logger.Info("analyzed document",
		zap.String("document_id", documentID.String()),
		zap.String("document_type", meta.DocumentType))
	return &meta, nil
}

// contentBlockFor maps a stored content type onto a model content block.
func contentBlockFor(contentType string, data []byte) (llm.ContentBlock, error) {
	encoded := base64.StdEncoding.EncodeToString(data)

	switch {
	case contentType == "application/pdf":
		return llm.DocumentBlock(contentType, encoded), nil
	case strings.HasPrefix(contentType, "image/"):
		return llm.ImageBlock(contentType, encoded), nil
	default:
		return llm.ContentBlock{}, fmt.Errorf("unsupported document content type %q", contentType)
	}
}
