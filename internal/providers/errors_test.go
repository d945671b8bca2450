package providers

import (
	"errors"
	"testing"
)

func TestFailoverReasonIsRetryable(t *testing.T) {
	tests := []struct {
		reason FailoverReason
		want   bool
	}{
		{FailoverRateLimit, true},
		{FailoverTimeout, true},
		{FailoverServerError, true},
		{FailoverBilling, false},
		{FailoverAuth, false},
		{FailoverInvalidRequest, false},
		{FailoverModelUnavailable, false},
		{FailoverContentFilter, false},
		{FailoverUnknown, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			if got := tt.reason.IsRetryable(); got != tt.want {
				t.Errorf("IsRetryable() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFailoverReasonShouldFailover(t *testing.T) {
	tests := []struct {
		reason FailoverReason
		want   bool
	}{
		{FailoverBilling, true},
		{FailoverAuth, true},
		{FailoverModelUnavailable, true},
		{FailoverRateLimit, false},
		{FailoverTimeout, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.reason), func(t *testing.T) {
			if got := tt.reason.ShouldFailover(); got != tt.want {
				t.Errorf("ShouldFailover() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FailoverReason
	}{
		{"rate limited", errors.New("429 Too Many Requests"), FailoverRateLimit},
		{"auth", errors.New("401 unauthorized"), FailoverAuth},
		{"billing", errors.New("insufficient quota"), FailoverBilling},
		{"server error", errors.New("503 Service Unavailable"), FailoverServerError},
		{"timeout", errors.New("context deadline exceeded"), FailoverTimeout},
		{"unknown", errors.New("something weird"), FailoverUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestProviderErrorWithStatus(t *testing.T) {
	err := NewProviderError("openai", "gpt-4o", errors.New("boom")).WithStatus(429)
	if err.Reason != FailoverRateLimit {
		t.Errorf("Reason = %v, want FailoverRateLimit", err.Reason)
	}
	if !IsRetryable(err) {
		t.Error("expected 429 to be retryable")
	}
	if got := err.Error(); got == "" {
		t.Error("Error() returned empty string")
	}
}

func TestIsProviderError(t *testing.T) {
	wrapped := NewProviderError("anthropic", "", errors.New("x"))
	if !IsProviderError(wrapped) {
		t.Error("expected IsProviderError to be true")
	}
	if IsProviderError(errors.New("plain")) {
		t.Error("expected plain error to not be a ProviderError")
	}
}
