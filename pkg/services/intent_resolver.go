package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/bls-living/sda-engine/pkg/llm"
	"github.com/bls-living/sda-engine/pkg/models"
	"github.com/bls-living/sda-engine/pkg/prompts"
)

// ClassificationError means the classifier itself failed (transport error or
// unparseable output). It is distinct from a confident "unknown" verdict:
// the user should retry, not rephrase.
type ClassificationError struct {
	Cause error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("intent classification failed: %v", e.Cause)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// IntentResolver classifies free-form staff messages into the closed intent
// set using the model.
type IntentResolver struct {
	model               llm.ModelClient
	confidenceThreshold float64
	maxTokens           int
	logger              *zap.Logger
}

// NewIntentResolver creates an IntentResolver. Results whose confidence
// falls below threshold are downgraded to IntentUnknown.
func NewIntentResolver(model llm.ModelClient, threshold float64, maxTokens int, logger *zap.Logger) *IntentResolver {
	return &IntentResolver{
		model:               model,
		confidenceThreshold: threshold,
		maxTokens:           maxTokens,
		logger:              logger.Named("intent_resolver"),
	}
}

// Resolve classifies one message, with optional prior turns for context.
// A transport or parse failure returns *ClassificationError; it is never
// silently reported as IntentUnknown. Unknown or low-confidence verdicts
// are normal values, not errors.
func (r *IntentResolver) Resolve(ctx context.Context, message string, history []llm.Message) (*models.IntentResult, error) {
	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, history...)
	messages = append(messages, llm.TextMessage(llm.RoleUser, message))

	raw, err := r.model.CallModel(ctx, prompts.IntentClassifier, messages, r.maxTokens)
	if err != nil {
		r.logger.Error("classifier call failed", zap.Error(err))
		return nil, &ClassificationError{Cause: err}
	}

	result, err := llm.ParseJSONResponse[models.IntentResult](raw)
	if err != nil {
		r.logger.Error("classifier returned unparseable output",
			zap.String("response", raw),
			zap.Error(err))
		return nil, &ClassificationError{Cause: err}
	}

	// Anything outside the closed set is normalized, never passed through.
	if !result.Intent.Known() {
		r.logger.Warn("classifier produced tag outside the closed set",
			zap.String("tag", string(result.Intent)))
		result.Intent = models.IntentUnknown
	}

	if result.Intent != models.IntentUnknown && result.Confidence < r.confidenceThreshold {
		r.logger.Info("downgrading low-confidence intent",
			zap.String("intent", string(result.Intent)),
			zap.Float64("confidence", result.Confidence))
		result.Intent = models.IntentUnknown
	}

	return &result, nil
}
