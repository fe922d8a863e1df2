package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastConfig() *Config {
	return &Config{
		MaxRetries:   3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestDoSuccessAfterRetries(t *testing.T) {
	callCount := 0
	err := Do(context.Background(), fastConfig(), func() error {
		callCount++
		if callCount < 3 {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Errorf("expected no error after retries, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("expected 3 calls, got %d", callCount)
	}
}

func TestDoMaxRetriesExhausted(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 2

	expectedErr := errors.New("persistent error")
	callCount := 0
	err := Do(context.Background(), cfg, func() error {
		callCount++
		return expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	// MaxRetries=2 means: initial attempt + 2 retries = 3 total calls
	if callCount != 3 {
		t.Errorf("expected 3 calls (1 initial + 2 retries), got %d", callCount)
	}
}

func TestDoContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := fastConfig()
	cfg.InitialDelay = 100 * time.Millisecond
	cfg.MaxRetries = 5

	callCount := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, cfg, func() error {
		callCount++
		return errors.New("error")
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call before cancellation, got %d", callCount)
	}
}

func TestDoWithResultReturnsValue(t *testing.T) {
	callCount := 0
	result, err := DoWithResult(context.Background(), fastConfig(), func() (int, error) {
		callCount++
		if callCount < 2 {
			return 0, errors.New("transient error")
		}
		return 42, nil
	})

	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
	if result != 42 {
		t.Errorf("expected 42, got %d", result)
	}
}

func TestDoWithResultNilConfig(t *testing.T) {
	result, err := DoWithResult(context.Background(), nil, func() (bool, error) {
		return true, nil
	})
	if err != nil || !result {
		t.Errorf("expected success with nil config, got %v %v", result, err)
	}
}

type declaredError struct {
	retryable bool
}

func (e *declaredError) Error() string     { return "declared" }
func (e *declaredError) IsRetryable() bool { return e.retryable }

func TestIsRetryableHonorsDeclaration(t *testing.T) {
	// An error that declares itself decides, regardless of its message.
	if IsRetryable(&declaredError{retryable: false}) {
		t.Error("declared non-retryable error reported retryable")
	}
	if !IsRetryable(&declaredError{retryable: true}) {
		t.Error("declared retryable error reported non-retryable")
	}
}

func TestIsRetryablePatterns(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"nil error", nil, false},
		{"connection refused", errors.New("connection refused"), true},
		{"uppercase", errors.New("Connection Refused"), true},
		{"timeout", errors.New("context deadline exceeded: timeout"), true},
		{"rate limit", errors.New("rate limit exceeded"), true},
		{"overloaded", errors.New("overloaded_error: try again later"), true},
		{"server error", errors.New("unexpected status 503"), true},
		{"auth error", errors.New("authentication failed"), false},
		{"invalid request", errors.New("invalid request body"), false},
		{"not found", errors.New("participant not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRetryable(tt.err); got != tt.expected {
				t.Errorf("IsRetryable(%v) = %v, expected %v", tt.err, got, tt.expected)
			}
		})
	}
}

func TestDoIfRetryableStopsOnPermanentError(t *testing.T) {
	expectedErr := errors.New("authentication failed")
	callCount := 0
	err := DoIfRetryable(context.Background(), fastConfig(), func() error {
		callCount++
		return expectedErr
	})

	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if callCount != 1 {
		t.Errorf("expected 1 call (no retries), got %d", callCount)
	}
}

func TestDoIfRetryableEscalatesRepeatedErrors(t *testing.T) {
	cfg := fastConfig()
	cfg.MaxRetries = 10
	cfg.MaxSameErrorType = 3

	callCount := 0
	err := DoIfRetryable(context.Background(), cfg, func() error {
		callCount++
		return errors.New("rate limit exceeded")
	})

	if err == nil {
		t.Fatal("expected escalated error")
	}
	if callCount != cfg.MaxSameErrorType {
		t.Errorf("expected %d calls before escalation, got %d", cfg.MaxSameErrorType, callCount)
	}
}

func TestModelCallConfig(t *testing.T) {
	cfg := ModelCallConfig()
	if cfg.InitialDelay < time.Second {
		t.Errorf("model call backoff should start at a second or more, got %v", cfg.InitialDelay)
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		t.Errorf("MaxDelay %v below InitialDelay %v", cfg.MaxDelay, cfg.InitialDelay)
	}
}
