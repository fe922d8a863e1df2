package llm

import (
	"errors"
	"fmt"
	"strings"

	"github.com/liushuangls/go-anthropic/v2"
)

// ErrorType classifies a model-call failure.
type ErrorType string

const (
	// ErrorTypeConfig covers local misconfiguration (missing API key,
	// empty model name). Never retryable.
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeUpstream covers HTTP-level failures from the model API.
	ErrorTypeUpstream ErrorType = "upstream"
	// ErrorTypeConnection covers network failures before any HTTP response.
	ErrorTypeConnection ErrorType = "connection"
	// ErrorTypeExtraction covers responses we could not pull structured
	// content out of.
	ErrorTypeExtraction ErrorType = "extraction"
	ErrorTypeUnknown    ErrorType = "unknown"
)

// Error represents a structured model-call error with classification.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the operation can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	Model      string    // Model name if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.Model != "" {
		parts = append(parts, fmt.Sprintf("model=%s", e.Model))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable implements the retry.RetryableError interface.
// This allows the retry package to check retryability without importing llm.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new structured model-call error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// ClassifyError categorizes an error from the Anthropic client and returns a
// structured Error. Rate limits, overload, and network failures are
// retryable; auth and bad-request failures are not.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	// Check if already an *Error
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr
	}

	// HTTP-level failure with a response from the API
	var reqErr *anthropic.RequestError
	if errors.As(err, &reqErr) {
		retryable := reqErr.StatusCode == 429 || reqErr.StatusCode >= 500
		e := NewError(ErrorTypeUpstream, "model API request failed", retryable, err)
		e.StatusCode = reqErr.StatusCode
		return e
	}

	var apiErr *anthropic.APIError
	if errors.As(err, &apiErr) {
		retryable := apiErr.IsRateLimitErr() || apiErr.IsOverloadedErr() || apiErr.IsApiErr()
		return NewError(ErrorTypeUpstream, string(apiErr.Type), retryable, err)
	}

	lower := strings.ToLower(err.Error())

	// Connection errors (retryable)
	if strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded") {
		return NewError(ErrorTypeConnection, "connection to model API failed", true, err)
	}

	return NewError(ErrorTypeUnknown, "model call failed", false, err)
}

// IsRetryable returns true if the error is retryable.
func IsRetryable(err error) bool {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var llmErr *Error
	if errors.As(err, &llmErr) {
		return llmErr.Type
	}
	return ErrorTypeUnknown
}
