package resilience

import (
	"context"
	"errors"
)

// ClassifyCommon resolves the cases every backend classifier shares: caller
// cancellation never retries and never trips the breaker, while an
// already-open breaker stays retryable so the half-open probe can close it.
// handled reports whether the error was one of those; backend-specific
// classification only runs when it was not.
func ClassifyCommon(err error) (class ErrorClassification, handled bool) {
	if err == nil {
		return ErrorClassification{}, true
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ErrorClassification{Retryable: false, RecordFailure: false}, true
	}
	if IsCircuitOpen(err) {
		return ErrorClassification{Retryable: true, RecordFailure: true}, true
	}
	return ErrorClassification{}, false
}
