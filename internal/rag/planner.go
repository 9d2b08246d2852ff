package rag

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

const (
	planTokenBudget = 500

	defaultMaxItems = 100
)

const planPromptTemplate = `You are a data analysis assistant. I have customer support conversation data with the following structure:

Data Types Available:
- CHAT_MESSAGE: Customer and agent chat messages
- EMAIL: Email communications with subjects and content
- CONVERSATION_NOTE: Agent notes and internal documentation
- CONVERSATION_STATUS_CHANGE: Status updates (OPEN/CLOSED)
- PHONE_CALL: Phone call records
- TOPIC_CHANGE: Topic changes in conversations
- SURVEY_ANSWER: Survey responses with answers and comments

Each item has: timestamp, customerId, conversationId, and content (which varies by type).

Question: %q

Based on this question, provide a JSON response with:
1. "search_terms": List of specific terms to search for in the conversation content
2. "content_types": List of content types to focus on (e.g., ["CHAT_MESSAGE", "EMAIL"]), or ["all"]
3. "time_filters": Time-based filtering needed: one of "all", "last_24_hours", "last_7_days", "last_30_days", "last_90_days"
4. "analysis_focus": What specific aspects to focus on in the analysis
5. "max_items": Maximum number of conversation items to retrieve (suggest 50-200)

Be specific and comprehensive in your search terms. Think about synonyms, related terms, and different ways the same issue might be expressed.

Respond with valid JSON only.`

// Planner asks the LLM for a retrieval strategy. Any failure, from transport
// errors to malformed JSON, degrades to a deterministic fallback plan; a
// planning problem only lowers retrieval quality, it never fails the query.
type Planner struct {
	client llm.Client
	log    zerolog.Logger
}

func NewPlanner(client llm.Client, log zerolog.Logger) *Planner {
	return &Planner{client: client, log: log}
}

type rawPlan struct {
	SearchTerms   []string        `json:"search_terms"`
	ContentTypes  []string        `json:"content_types"`
	TimeFilters   json.RawMessage `json:"time_filters"`
	AnalysisFocus string          `json:"analysis_focus"`
	MaxItems      int             `json:"max_items"`
}

// Plan produces a retrieval plan for the question.
func (p *Planner) Plan(ctx context.Context, question, llmModel string) *model.RetrievalPlan {
	completion, err := p.client.Complete(ctx, llm.Request{
		Message:   fmt.Sprintf(planPromptTemplate, question),
		Model:     llmModel,
		MaxTokens: planTokenBudget,
	})
	if err != nil {
		return p.fallback(question, fmt.Sprintf("planning call failed: %v", err))
	}

	obj, err := llm.ExtractJSONObject(completion.Text)
	if err != nil {
		return p.fallback(question, fmt.Sprintf("no JSON object in planning response: %v", err))
	}

	var raw rawPlan
	if err := json.Unmarshal(obj, &raw); err != nil {
		return p.fallback(question, fmt.Sprintf("planning JSON malformed: %v", err))
	}
	if len(raw.SearchTerms) == 0 {
		return p.fallback(question, "planning response missing search_terms")
	}

	plan := &model.RetrievalPlan{
		SearchTerms:   raw.SearchTerms,
		TimeFilter:    model.ParseTimeFilter(timeFilterString(raw.TimeFilters)),
		MaxItems:      raw.MaxItems,
		AnalysisFocus: raw.AnalysisFocus,
	}
	if plan.MaxItems < 1 {
		plan.MaxItems = defaultMaxItems
	}
	if plan.AnalysisFocus == "" {
		plan.AnalysisFocus = "general analysis"
	}

	for _, ct := range raw.ContentTypes {
		if ct == model.ContentTypeFilterAll {
			plan.FilterAll = true
			plan.ContentTypes = nil
			break
		}
		plan.ContentTypes = append(plan.ContentTypes, model.ParseContentType(ct))
	}
	if len(raw.ContentTypes) == 0 {
		plan.FilterAll = true
	}

	p.log.Debug().
		Strs("search_terms", plan.SearchTerms).
		Str("time_filter", string(plan.TimeFilter)).
		Int("max_items", plan.MaxItems).
		Msg("retrieval plan ready")
	return plan
}

func (p *Planner) fallback(question, reason string) *model.RetrievalPlan {
	p.log.Warn().Str("reason", reason).Msg("query planning degraded to fallback plan")
	return &model.RetrievalPlan{
		SearchTerms:    []string{question},
		ContentTypes:   model.ChatLikeContentTypes(),
		TimeFilter:     model.TimeAll,
		MaxItems:       defaultMaxItems,
		AnalysisFocus:  "general analysis",
		Fallback:       true,
		FallbackReason: reason,
	}
}

// timeFilterString tolerates both a bare string and a one-element array, both
// of which the model produces in practice.
func timeFilterString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}
