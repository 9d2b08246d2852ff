package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/api/respond"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

const defaultAnswerTokens = 2000

// QueryEngine answers questions over the loaded corpus.
type QueryEngine interface {
	Ask(ctx context.Context, question, llmModel string, maxTokens int) (*model.AnswerResult, error)
}

// AskHandler handles the question-answering endpoint.
type AskHandler struct {
	engine QueryEngine
	log    zerolog.Logger
}

func NewAskHandler(engine QueryEngine, log zerolog.Logger) *AskHandler {
	return &AskHandler{engine: engine, log: log}
}

type askRequest struct {
	Question  string `json:"question"`
	Model     string `json:"model,omitempty"`
	MaxTokens int    `json:"maxTokens,omitempty"`
}

type askResponse struct {
	Answer         string               `json:"answer"`
	CitedGroupIDs  []string             `json:"citedGroupIds"`
	TokensUsed     int                  `json:"tokensUsed"`
	RetrievedCount int                  `json:"retrievedCount"`
	Plan           *model.RetrievalPlan `json:"plan"`
	RetrievalStats model.RetrievalStats `json:"retrievalStats"`
}

// Ask handles POST /api/ask.
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		respond.WriteBadRequest(w, "question is required")
		return
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultAnswerTokens
	}

	result, err := h.engine.Ask(r.Context(), req.Question, req.Model, req.MaxTokens)
	if err != nil {
		h.log.Warn().Err(err).Str("question", req.Question).Msg("ask failed")
		writeDomainError(w, err)
		return
	}

	respond.WriteJSON(w, http.StatusOK, askResponse{
		Answer:         result.Answer,
		CitedGroupIDs:  result.CitedGroupIDs,
		TokensUsed:     result.TokensUsed,
		RetrievedCount: result.RetrievedCount,
		Plan:           result.Plan,
		RetrievalStats: result.Stats,
	})
}
