// Package llm provides the language-model collaborator used by query
// planning, answer synthesis, and topic extraction.
package llm

import "context"

// Request is a single completion request. System is optional.
type Request struct {
	System    string
	Message   string
	Model     string
	MaxTokens int
}

// Completion is the model's reply.
type Completion struct {
	Text       string
	TokensUsed int
}

// Client abstracts the external LLM API. Implementations must return the
// typed errors in errors.go so callers can distinguish timeout, rate-limit,
// and credential failures.
type Client interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
}
