package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

const fieldTruncateLen = 500

// Synthesizer turns retrieved items into a grounded answer via the LLM.
// Unlike planning, synthesis errors abort the query: timeouts, rate limits
// and auth failures propagate as their typed llm errors.
type Synthesizer struct {
	client llm.Client
	// visibleItems caps how many retrieved items the prompt embeds,
	// bounding prompt size regardless of plan.MaxItems.
	visibleItems int
	log          zerolog.Logger
}

func NewSynthesizer(client llm.Client, visibleItems int, log zerolog.Logger) *Synthesizer {
	return &Synthesizer{client: client, visibleItems: visibleItems, log: log}
}

// Synthesize asks the LLM to answer the question grounded in the items.
func (s *Synthesizer) Synthesize(ctx context.Context, question string, items []*model.CorpusItem, plan *model.RetrievalPlan, summary model.CorpusSummary, llmModel string, maxTokens int) (*model.AnswerResult, error) {
	system := s.systemPrompt(question, items, plan, summary)

	completion, err := s.client.Complete(ctx, llm.Request{
		System:    system,
		Message:   question,
		Model:     llmModel,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Int("retrieved", len(items)).
		Int("tokens_used", completion.TokensUsed).
		Msg("answer synthesized")

	return &model.AnswerResult{
		Answer:         completion.Text,
		CitedGroupIDs:  citedGroups(completion.Text, items),
		TokensUsed:     completion.TokensUsed,
		RetrievedCount: len(items),
		Plan:           plan,
	}, nil
}

func (s *Synthesizer) systemPrompt(question string, items []*model.CorpusItem, plan *model.RetrievalPlan, summary model.CorpusSummary) string {
	var b strings.Builder
	b.WriteString("You are analyzing customer support conversation data. Here's a summary of the data:\n\n")
	b.WriteString(summary.String())
	b.WriteString("\n")
	b.WriteString(formatItems(items, s.visibleItems))
	b.WriteString("\nAnalysis Focus: " + plan.AnalysisFocus + "\n\n")

	if len(items) == 0 {
		b.WriteString("No conversation data matched this question. State clearly that no data was found for this question. Do not invent or guess at conversation content.\n\n")
	}

	fmt.Fprintf(&b, "Please analyze the conversation data and answer the question: %q\n\n", question)
	b.WriteString(`Be specific and reference the actual conversation content when possible. Look for patterns, themes, and specific examples in the data. Provide detailed insights based on the retrieved conversations.

IMPORTANT: When referencing specific conversations, ALWAYS use the Conversation ID instead of item numbers. Format conversation IDs using backticks like this: ` + "`conversation-id-here`" + `. This makes it easy for users to identify and access the specific conversations.

Format your response using proper Markdown: **bold** for important terms, bullet points for lists, ## and ### for headings, and backticks for conversation IDs.`)
	return b.String()
}

// formatItems renders the retrieved items grouped by conversation, capped at
// visibleCap items with long fields truncated.
func formatItems(items []*model.CorpusItem, visibleCap int) string {
	var b strings.Builder
	b.WriteString("Retrieved Conversation Data:\n\n")

	shown := items
	if len(shown) > visibleCap {
		shown = shown[:visibleCap]
	}

	var groupOrder []string
	groups := make(map[string][]*model.CorpusItem)
	for _, it := range shown {
		if _, seen := groups[it.GroupID]; !seen {
			groupOrder = append(groupOrder, it.GroupID)
		}
		groups[it.GroupID] = append(groups[it.GroupID], it)
	}

	for _, gid := range groupOrder {
		fmt.Fprintf(&b, "--- Conversation ID: %s ---\n", gid)
		for _, it := range groups[gid] {
			fmt.Fprintf(&b, "Type: %s\n", it.Type)
			if it.Timestamp != "" {
				fmt.Fprintf(&b, "Timestamp: %s\n", it.Timestamp)
			}
			if it.CustomerID != "" {
				fmt.Fprintf(&b, "Customer: %s\n", it.CustomerID)
			}
			for _, f := range it.TextFields {
				fmt.Fprintf(&b, "%s: %s\n", capitalize(f.Name), truncate(f.Text, fieldTruncateLen))
			}
			b.WriteString("\n")
		}
	}

	if len(items) > visibleCap {
		fmt.Fprintf(&b, "\n[Note: Showing first %d of %d retrieved items for performance]\n", visibleCap, len(items))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func truncate(text string, max int) string {
	if len(text) <= max {
		return text
	}
	return text[:max] + "... [truncated]"
}

// citedGroups returns the retrieved conversation IDs the answer actually
// mentions, in retrieval order.
func citedGroups(answer string, items []*model.CorpusItem) []string {
	seen := make(map[string]struct{})
	var cited []string
	for _, it := range items {
		if _, done := seen[it.GroupID]; done {
			continue
		}
		seen[it.GroupID] = struct{}{}
		if strings.Contains(answer, it.GroupID) {
			cited = append(cited, it.GroupID)
		}
	}
	return cited
}
