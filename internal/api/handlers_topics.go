package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/api/respond"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// TopicRunner drives batch topic extraction.
type TopicRunner interface {
	Start(ctx context.Context, startDate, endDate string) (string, error)
	Progress(jobID string) (model.ExtractionProgress, error)
	Stop(jobID string) error
}

// TopicReader reads persisted topic records.
type TopicReader interface {
	RecordsForDate(ctx context.Context, date string) (map[string]model.TopicRecord, error)
}

// TopicsHandler handles topic extraction endpoints.
type TopicsHandler struct {
	runner TopicRunner
	store  TopicReader
	log    zerolog.Logger
}

func NewTopicsHandler(runner TopicRunner, store TopicReader, log zerolog.Logger) *TopicsHandler {
	return &TopicsHandler{runner: runner, store: store, log: log}
}

type extractRequest struct {
	// Date is shorthand for a single-day range.
	Date      string `json:"date,omitempty"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// StartExtraction handles POST /api/topics/extract.
func (h *TopicsHandler) StartExtraction(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}

	start, end := req.StartDate, req.EndDate
	if req.Date != "" {
		start, end = req.Date, req.Date
	}
	if end == "" {
		end = start
	}
	if _, err := time.Parse("2006-01-02", start); err != nil {
		respond.WriteBadRequest(w, "startDate must be YYYY-MM-DD")
		return
	}

	jobID, err := h.runner.Start(r.Context(), start, end)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	h.log.Info().Str("start_date", start).Str("end_date", end).Str("job_id", jobID).Msg("topic extraction accepted")
	respond.WriteJSON(w, http.StatusAccepted, map[string]string{"jobId": jobID})
}

// GetJob handles GET /api/topics/jobs/{jobId}.
func (h *TopicsHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	progress, err := h.runner.Progress(mux.Vars(r)["jobId"])
	if err != nil {
		respond.WriteNotFound(w, "unknown job")
		return
	}
	respond.WriteJSON(w, http.StatusOK, progress)
}

// StopJob handles POST /api/topics/jobs/{jobId}/stop.
func (h *TopicsHandler) StopJob(w http.ResponseWriter, r *http.Request) {
	if err := h.runner.Stop(mux.Vars(r)["jobId"]); err != nil {
		respond.WriteNotFound(w, "unknown job")
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]string{"status": "stopping"})
}

// GetTopicsForDate handles GET /api/topics/{date}.
func (h *TopicsHandler) GetTopicsForDate(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	records, err := h.store.RecordsForDate(r.Context(), date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"date":   date,
		"topics": records,
	})
}
