package rag

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alai22/gladly-conversation-analyzer/internal/blob"
	"github.com/alai22/gladly-conversation-analyzer/internal/corpus"
	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// fakeLLM returns canned completions in order, or a fixed error.
type fakeLLM struct {
	responses []string
	err       error
	requests  []llm.Request
}

func (f *fakeLLM) Complete(_ context.Context, req llm.Request) (*llm.Completion, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	idx := len(f.requests) - 1
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	return &llm.Completion{Text: f.responses[idx], TokensUsed: 10}, nil
}

func makeItem(id, group, ts string, ct model.ContentType, text string) model.CorpusItem {
	it := model.CorpusItem{
		ID:         id,
		GroupID:    group,
		Timestamp:  ts,
		Type:       ct,
		TextFields: []model.TextField{{Name: "content", Text: text}},
	}
	it.ComputeDerived()
	return it
}

func TestExpand(t *testing.T) {
	terms := Expand("battery complaints")

	// Words and crude prefix stems of the query itself.
	assert.Contains(t, terms, "battery")
	assert.Contains(t, terms, "complaints")
	assert.Contains(t, terms, "comp")

	// Concept synonyms for both touched concepts.
	assert.Contains(t, terms, "charging")
	assert.Contains(t, terms, "frustrated")

	// Never empty, even for vocabulary outside the lexicon.
	assert.NotEmpty(t, Expand("xyzzyplugh"))
}

func TestScoreIsDeterministicAndTiered(t *testing.T) {
	it := makeItem("i1", "g1", "", model.ChatMessage, "my refund is late and I want my money back")

	terms := Expand("refund")
	first := Score(&it, terms, "refund")
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Score(&it, terms, "refund"))
	}

	// "refund" matches as the literal query (+10) and "money back" as a
	// synonym of the refund concept (+5).
	assert.GreaterOrEqual(t, first, 15)

	miss := makeItem("i2", "g2", "", model.ChatMessage, "the weather is nice")
	assert.Zero(t, Score(&miss, terms, "refund"))
}

func TestRetrieveMatchesAndSkipsFallback(t *testing.T) {
	items := []model.CorpusItem{
		makeItem("i1", "g1", "", model.ChatMessage, "battery drains too fast"),
		makeItem("i2", "g2", "", model.ChatMessage, "dead battery after one day"),
		makeItem("i3", "g3", "", model.ChatMessage, "battery will not hold a charge"),
		makeItem("i4", "g4", "", model.ChatMessage, "love the product"),
		makeItem("i5", "g5", "", model.ChatMessage, "where is my order"),
	}
	snap := &corpus.Snapshot{Items: items}
	plan := &model.RetrievalPlan{
		SearchTerms: []string{"battery life complaints"},
		FilterAll:   true,
		TimeFilter:  model.TimeAll,
		MaxItems:    10,
	}

	r := NewRetriever(2, zerolog.Nop())
	got, stats := r.Retrieve(plan, snap)

	require.Len(t, got, 3)
	assert.False(t, stats.FallbackUsed)
	assert.Equal(t, 3, stats.FinalCount)
	for _, it := range got {
		assert.Contains(t, it.SearchText, "battery")
	}
}

func TestRetrieveDiversityFallbackOnNoMatches(t *testing.T) {
	var items []model.CorpusItem
	for i := 0; i < 200; i++ {
		items = append(items, makeItem(
			fmt.Sprintf("i%03d", i), fmt.Sprintf("g%03d", i), "",
			model.ChatMessage, "ordinary support exchange"))
	}
	snap := &corpus.Snapshot{Items: items}
	plan := &model.RetrievalPlan{
		SearchTerms: []string{"xyzzyplugh"},
		FilterAll:   true,
		TimeFilter:  model.TimeAll,
		MaxItems:    25,
	}

	r := NewRetriever(20, zerolog.Nop())
	got, stats := r.Retrieve(plan, snap)

	require.Len(t, got, 25)
	assert.True(t, stats.FallbackUsed)
	assert.Contains(t, stats.FallbackReason, "minimum of 20")
	// Corpus order preserved.
	for i, it := range got {
		assert.Equal(t, fmt.Sprintf("i%03d", i), it.ID)
	}
}

func TestRetrieveFallbackReturnsWholeSmallCorpus(t *testing.T) {
	var items []model.CorpusItem
	for i := 0; i < 100; i++ {
		items = append(items, makeItem(
			fmt.Sprintf("i%03d", i), "g", "", model.ChatMessage, "nothing relevant here"))
	}
	snap := &corpus.Snapshot{Items: items}
	plan := &model.RetrievalPlan{
		SearchTerms: []string{"qwertyuiop"},
		FilterAll:   true,
		TimeFilter:  model.TimeAll,
		MaxItems:    500,
	}

	r := NewRetriever(20, zerolog.Nop())
	got, stats := r.Retrieve(plan, snap)

	assert.Len(t, got, 100)
	assert.True(t, stats.FallbackUsed)
}

func TestRetrieveDeduplicatesByID(t *testing.T) {
	items := []model.CorpusItem{
		makeItem("dup", "g1", "", model.ChatMessage, "refund for broken battery please"),
		makeItem("dup", "g1", "", model.ChatMessage, "refund for broken battery please"),
		makeItem("i2", "g2", "", model.ChatMessage, "battery refund request"),
	}
	snap := &corpus.Snapshot{Items: items}
	plan := &model.RetrievalPlan{
		// Two overlapping terms so the same item surfaces twice.
		SearchTerms: []string{"battery", "refund"},
		FilterAll:   true,
		TimeFilter:  model.TimeAll,
		MaxItems:    10,
	}

	r := NewRetriever(1, zerolog.Nop())
	got, _ := r.Retrieve(plan, snap)

	seen := make(map[string]bool)
	for _, it := range got {
		assert.False(t, seen[it.ID], "duplicate id %s in results", it.ID)
		seen[it.ID] = true
	}
}

func TestRetrieveTimeFilterKeepsTimelessItems(t *testing.T) {
	old := time.Now().AddDate(0, 0, -30).Format(time.RFC3339)
	items := []model.CorpusItem{
		makeItem("old", "g1", old, model.ChatMessage, "battery complaint from last month"),
		makeItem("timeless", "g2", "", model.ChatMessage, "battery complaint with no timestamp"),
	}
	snap := &corpus.Snapshot{Items: items}
	plan := &model.RetrievalPlan{
		SearchTerms: []string{"battery"},
		FilterAll:   true,
		TimeFilter:  model.TimeLast7,
		MaxItems:    10,
	}

	r := NewRetriever(1, zerolog.Nop())
	got, _ := r.Retrieve(plan, snap)

	require.Len(t, got, 1)
	assert.Equal(t, "timeless", got[0].ID)
}

func TestPlannerParsesLLMResponse(t *testing.T) {
	client := &fakeLLM{responses: []string{`Here is my plan:
{"search_terms": ["refund", "money back"], "content_types": ["CHAT_MESSAGE", "EMAIL"], "time_filters": "last_30_days", "analysis_focus": "refund complaints", "max_items": 150}`}}

	p := NewPlanner(client, zerolog.Nop())
	plan := p.Plan(context.Background(), "why do customers want refunds?", "")

	assert.False(t, plan.Fallback)
	assert.Equal(t, []string{"refund", "money back"}, plan.SearchTerms)
	assert.Equal(t, []model.ContentType{model.ChatMessage, model.Email}, plan.ContentTypes)
	assert.Equal(t, model.TimeLast30, plan.TimeFilter)
	assert.Equal(t, 150, plan.MaxItems)
	assert.Equal(t, "refund complaints", plan.AnalysisFocus)
}

func TestPlannerFallsBackOnNonJSON(t *testing.T) {
	client := &fakeLLM{responses: []string{"I would suggest searching for refund-related terms."}}

	p := NewPlanner(client, zerolog.Nop())
	plan := p.Plan(context.Background(), "why do customers want refunds?", "")

	assert.True(t, plan.Fallback)
	assert.Equal(t, []string{"why do customers want refunds?"}, plan.SearchTerms)
	assert.Equal(t, model.ChatLikeContentTypes(), plan.ContentTypes)
	assert.Equal(t, model.TimeAll, plan.TimeFilter)
	assert.Equal(t, 100, plan.MaxItems)
}

func TestPlannerFallsBackOnLLMError(t *testing.T) {
	client := &fakeLLM{err: llm.ErrTimeout}

	p := NewPlanner(client, zerolog.Nop())
	plan := p.Plan(context.Background(), "anything", "")

	assert.True(t, plan.Fallback)
	assert.Contains(t, plan.FallbackReason, "planning call failed")
}

func TestSynthesizerPromptZeroItems(t *testing.T) {
	client := &fakeLLM{responses: []string{"No data was found for this question."}}
	s := NewSynthesizer(client, 50, zerolog.Nop())

	plan := &model.RetrievalPlan{AnalysisFocus: "general analysis"}
	got, err := s.Synthesize(context.Background(), "what about unicorns?", nil, plan, model.CorpusSummary{}, "", 2000)
	require.NoError(t, err)

	require.Len(t, client.requests, 1)
	assert.Contains(t, client.requests[0].System, "State clearly that no data was found")
	assert.Empty(t, got.CitedGroupIDs)
	assert.Zero(t, got.RetrievedCount)
}

func TestSynthesizerTruncatesLongFields(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "0123456789"
	}
	it := makeItem("i1", "conv-abc", "", model.Email, long)

	client := &fakeLLM{responses: []string{"See `conv-abc` for details."}}
	s := NewSynthesizer(client, 50, zerolog.Nop())

	plan := &model.RetrievalPlan{AnalysisFocus: "general analysis"}
	got, err := s.Synthesize(context.Background(), "q", []*model.CorpusItem{&it}, plan, model.CorpusSummary{}, "", 2000)
	require.NoError(t, err)

	assert.Contains(t, client.requests[0].System, "... [truncated]")
	assert.Equal(t, []string{"conv-abc"}, got.CitedGroupIDs)
}

func TestSynthesizerPropagatesTypedErrors(t *testing.T) {
	client := &fakeLLM{err: llm.ErrTimeout}
	s := NewSynthesizer(client, 50, zerolog.Nop())

	plan := &model.RetrievalPlan{AnalysisFocus: "general analysis"}
	_, err := s.Synthesize(context.Background(), "q", nil, plan, model.CorpusSummary{}, "", 2000)
	assert.ErrorIs(t, err, llm.ErrTimeout)
}

func TestEngineCorpusUnavailable(t *testing.T) {
	blobs := blob.NewFS(t.TempDir())
	store := corpus.NewStore(blobs, "conversations/corpus.jsonl", zerolog.Nop())

	e := NewEngine(store, &fakeLLM{responses: []string{"{}"}}, 20, 50, zerolog.Nop())
	_, err := e.Ask(context.Background(), "anything", "", 2000)
	assert.ErrorIs(t, err, model.ErrCorpusUnavailable)
}

func TestEngineEndToEnd(t *testing.T) {
	blobs := blob.NewFS(t.TempDir())
	ctx := context.Background()

	var lines string
	for i := 0; i < 30; i++ {
		lines += fmt.Sprintf(
			`{"id":"i%02d","conversationId":"g%02d","content":{"type":"CHAT_MESSAGE","content":"my battery dies within hours"}}`+"\n", i, i)
	}
	require.NoError(t, blobs.Put(ctx, "conversations/corpus.jsonl", []byte(lines)))

	store := corpus.NewStore(blobs, "conversations/corpus.jsonl", zerolog.Nop())
	_, err := store.Refresh(ctx)
	require.NoError(t, err)

	client := &fakeLLM{responses: []string{
		`{"search_terms": ["battery"], "content_types": ["CHAT_MESSAGE"], "time_filters": "all", "analysis_focus": "battery complaints", "max_items": 20}`,
		"Battery drain is the dominant complaint, for example `g00` and `g01`.",
	}}

	e := NewEngine(store, client, 5, 50, zerolog.Nop())
	result, err := e.Ask(ctx, "what are the battery complaints?", "", 2000)
	require.NoError(t, err)

	assert.False(t, result.Stats.FallbackUsed)
	assert.Equal(t, 20, result.RetrievedCount)
	assert.Equal(t, []string{"g00", "g01"}, result.CitedGroupIDs)
	require.Len(t, client.requests, 2)
	assert.Contains(t, client.requests[1].System, "Retrieved Conversation Data")
}
