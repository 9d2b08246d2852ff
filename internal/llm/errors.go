package llm

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrTimeout indicates the request exceeded the configured timeout.
	// Callers should suggest simplifying the query or raising the budget.
	ErrTimeout = errors.New("llm request timed out")

	// ErrAuth indicates missing or invalid credentials. Fatal for the query
	// but never silently degraded.
	ErrAuth = errors.New("llm authentication failed")
)

// RateLimitError indicates HTTP 429 from the provider. RetryAfter is zero
// when the provider gave no hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("llm rate limited, retry after %s", e.RetryAfter)
	}
	return "llm rate limited"
}

// IsRateLimited reports whether err is (or wraps) a RateLimitError.
func IsRateLimited(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
