package topics

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/llm"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

const (
	extractTokenBudget = 300
	maxKeyPhrases      = 5
	maxBackoff         = 60 * time.Second
)

// Extractor classifies one conversation per LLM call. Rate limits are
// retried with exponential backoff; exhausting the retries returns the
// rate-limit error so the batch driver can stop and preserve progress.
type Extractor struct {
	client     llm.Client
	model      string
	maxRetries int
	log        zerolog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewExtractor(client llm.Client, llmModel string, maxRetries int, log zerolog.Logger) *Extractor {
	return &Extractor{
		client:     client,
		model:      llmModel,
		maxRetries: maxRetries,
		log:        log,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type rawMetadata struct {
	Topic             string   `json:"topic"`
	Sentiment         string   `json:"sentiment"`
	CustomerSentiment string   `json:"customer_sentiment"`
	KeyPhrases        []string `json:"key_phrases"`
}

// ExtractMetadata classifies a conversation's items into a topic record.
// Malformed or off-taxonomy LLM output normalizes to "Other"/neutral rather
// than failing the item.
func (e *Extractor) ExtractMetadata(ctx context.Context, items []*model.CorpusItem) (model.TopicRecord, error) {
	if len(items) == 0 {
		return model.TopicRecord{Topic: TopicOther}, nil
	}

	completion, err := e.completeWithBackoff(ctx, llm.Request{
		Message:   e.prompt(items),
		Model:     e.model,
		MaxTokens: extractTokenBudget,
	})
	if err != nil {
		return model.TopicRecord{}, err
	}

	now := time.Now().UTC()
	rec := model.TopicRecord{Topic: TopicOther, Sentiment: "neutral", CustomerSentiment: "neutral", ExtractedAt: &now}

	obj, err := llm.ExtractJSONObject(completion.Text)
	if err != nil {
		e.log.Warn().Err(err).Msg("extraction response had no JSON object, recording as Other")
		return rec, nil
	}
	var raw rawMetadata
	if err := json.Unmarshal(obj, &raw); err != nil {
		e.log.Warn().Err(err).Msg("extraction JSON malformed, recording as Other")
		return rec, nil
	}

	rec.Topic = NormalizeTopic(raw.Topic)
	rec.Sentiment = NormalizeSentiment(raw.Sentiment)
	rec.CustomerSentiment = NormalizeSentiment(raw.CustomerSentiment)
	if len(raw.KeyPhrases) > maxKeyPhrases {
		raw.KeyPhrases = raw.KeyPhrases[:maxKeyPhrases]
	}
	rec.KeyPhrases = raw.KeyPhrases
	return rec, nil
}

// completeWithBackoff retries rate-limited calls with 2^attempt seconds of
// delay, capped at maxBackoff. Other errors are returned as is.
func (e *Extractor) completeWithBackoff(ctx context.Context, req llm.Request) (*llm.Completion, error) {
	for attempt := 0; ; attempt++ {
		completion, err := e.client.Complete(ctx, req)
		if err == nil {
			return completion, nil
		}
		if !llm.IsRateLimited(err) {
			return nil, err
		}
		if attempt >= e.maxRetries {
			return nil, fmt.Errorf("rate limited after %d retries: %w", e.maxRetries, err)
		}

		delay := time.Duration(1<<uint(attempt)) * time.Second
		if delay > maxBackoff {
			delay = maxBackoff
		}
		e.log.Warn().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("extraction rate limited, backing off")
		if err := e.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

func (e *Extractor) prompt(items []*model.CorpusItem) string {
	var b strings.Builder
	b.WriteString("Analyze this customer support conversation.\n\nCONVERSATION TRANSCRIPT:\n")
	b.WriteString(transcript(items))
	b.WriteString("\n\nVALID TOPIC CATEGORIES (use exact spelling):\n")
	for _, t := range Taxonomy {
		fmt.Fprintf(&b, "  %q\n", t)
	}
	b.WriteString(`
INSTRUCTIONS:
1. Read through the entire conversation transcript
2. Identify the PRIMARY topic or main reason for this conversation
3. Choose the SINGLE most appropriate category from the list above
4. Judge the overall sentiment of the exchange and the customer's sentiment separately
5. Pick up to 5 short key phrases that capture what the conversation is about

RESPONSE FORMAT:
Return ONLY a JSON object, nothing else:
{"topic": "<category from the list>", "sentiment": "<positive|neutral|negative|mixed>", "customer_sentiment": "<positive|neutral|negative|mixed>", "key_phrases": ["..."]}

If the conversation doesn't clearly fit any category, use "Other".`)
	return b.String()
}

// transcript renders the conversation in timestamp order.
func transcript(items []*model.CorpusItem) string {
	sorted := make([]*model.CorpusItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	var b strings.Builder
	for _, it := range sorted {
		ts := it.Timestamp
		if ts == "" {
			ts = "No timestamp"
		}
		fmt.Fprintf(&b, "\n[%s] %s:\n", ts, it.Type)
		for _, f := range it.TextFields {
			fmt.Fprintf(&b, "  %s\n", f.Text)
		}
	}
	return b.String()
}
