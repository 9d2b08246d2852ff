package api

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/api/respond"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// CorpusService exposes the corpus snapshot lifecycle to the API.
type CorpusService interface {
	Summary() (model.CorpusSummary, error)
	RefreshSummary(ctx context.Context) (model.CorpusSummary, error)
}

// CorpusHandler handles corpus summary and refresh endpoints.
type CorpusHandler struct {
	svc CorpusService
	log zerolog.Logger
}

func NewCorpusHandler(svc CorpusService, log zerolog.Logger) *CorpusHandler {
	return &CorpusHandler{svc: svc, log: log}
}

// GetSummary handles GET /api/corpus/summary.
func (h *CorpusHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Summary()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, summary)
}

// Refresh handles POST /api/corpus/refresh.
func (h *CorpusHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.RefreshSummary(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("corpus refresh failed")
		respond.WriteError(w, http.StatusBadGateway, "corpus reload failed: "+err.Error())
		return
	}
	respond.WriteJSON(w, http.StatusOK, summary)
}
