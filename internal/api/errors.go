package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/alai22/gladly-conversation-analyzer/internal/api/respond"
	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// writeDomainError maps domain and LLM errors onto HTTP statuses with
// actionable messages. Unrecognized errors become a generic 500.
func writeDomainError(w http.ResponseWriter, err error) {
	var rl *llm.RateLimitError

	switch {
	case errors.Is(err, model.ErrCorpusUnavailable):
		respond.WriteError(w, http.StatusServiceUnavailable,
			"no conversation data loaded; refresh the corpus and try again")
	case errors.Is(err, llm.ErrTimeout):
		respond.WriteError(w, http.StatusGatewayTimeout,
			"the analysis timed out; try simplifying the question or raising the timeout budget")
	case errors.As(err, &rl):
		msg := "the LLM is rate limited; wait a moment and retry"
		if rl.RetryAfter > 0 {
			msg = fmt.Sprintf("the LLM is rate limited; retry after %s", rl.RetryAfter)
		}
		respond.WriteError(w, http.StatusTooManyRequests, msg)
	case errors.Is(err, llm.ErrAuth):
		respond.WriteInternalError(w,
			"LLM credentials are missing or invalid; check the ANALYZER_ANTHROPIC_API_KEY setting")
	case errors.Is(err, model.ErrExtractionRunning):
		respond.WriteError(w, http.StatusConflict,
			"a topic extraction batch is already running")
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, err.Error())
	case errors.Is(err, model.ErrValidation):
		respond.WriteBadRequest(w, err.Error())
	default:
		respond.WriteInternalError(w, err.Error())
	}
}
