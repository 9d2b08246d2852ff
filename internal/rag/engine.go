package rag

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/corpus"
	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// Engine runs the full question pipeline against the live corpus snapshot.
// Planning and retrieval degrade gracefully; synthesis errors surface typed.
type Engine struct {
	store       *corpus.Store
	planner     *Planner
	retriever   *Retriever
	synthesizer *Synthesizer
	log         zerolog.Logger
}

func NewEngine(store *corpus.Store, client llm.Client, minYield, visibleItems int, log zerolog.Logger) *Engine {
	return &Engine{
		store:       store,
		planner:     NewPlanner(client, log),
		retriever:   NewRetriever(minYield, log),
		synthesizer: NewSynthesizer(client, visibleItems, log),
		log:         log,
	}
}

// Ask answers a question over the current corpus. Returns
// model.ErrCorpusUnavailable before any data has been loaded; distinguishing
// "no data source" from "no matches" is the caller's contract.
func (e *Engine) Ask(ctx context.Context, question, llmModel string, maxTokens int) (*model.AnswerResult, error) {
	snap, err := e.store.Current()
	if err != nil {
		return nil, err
	}

	plan := e.planner.Plan(ctx, question, llmModel)
	items, stats := e.retriever.Retrieve(plan, snap)

	e.log.Info().
		Str("question", question).
		Int("retrieved", len(items)).
		Bool("fallback", stats.FallbackUsed).
		Msg("retrieval complete")

	result, err := e.synthesizer.Synthesize(ctx, question, items, plan, snap.Summary, llmModel, maxTokens)
	if err != nil {
		return nil, err
	}
	result.Stats = stats
	return result, nil
}
