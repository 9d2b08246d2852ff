// Package topics classifies conversations into a fixed topic taxonomy with
// an LLM, one conversation per call, driven by a sequential batch runner.
package topics

import "strings"

// TopicOther is the sentinel category for anything the taxonomy cannot place.
const TopicOther = "Other"

// Taxonomy is the closed set of conversation topic categories. Order matters
// for prompt rendering; "Other" stays last.
var Taxonomy = []string{
	"Product Issues / Technical Problems",
	"Billing / Subscription Questions",
	"Shipping / Delivery Issues",
	"Account Management / Login Issues",
	"Feature Questions / How-to",
	"Returns / Refunds",
	"Product Recommendations / Purchasing",
	"General Customer Service",
	TopicOther,
}

// NormalizeTopic maps a raw LLM label onto the taxonomy: exact match, then
// case-insensitive, then substring in either direction. Anything unmatched
// resolves to "Other", never an error.
func NormalizeTopic(raw string) string {
	label := strings.Trim(strings.TrimSpace(raw), `"'`)
	if label == "" {
		return TopicOther
	}

	for _, t := range Taxonomy {
		if t == label {
			return t
		}
	}

	labelLower := strings.ToLower(label)
	for _, t := range Taxonomy {
		if strings.ToLower(t) == labelLower {
			return t
		}
	}
	for _, t := range Taxonomy {
		tLower := strings.ToLower(t)
		if strings.Contains(tLower, labelLower) || strings.Contains(labelLower, tLower) {
			return t
		}
	}
	return TopicOther
}

var sentiments = map[string]string{
	"positive": "positive",
	"neutral":  "neutral",
	"negative": "negative",
	"mixed":    "mixed",
}

// NormalizeSentiment maps a raw sentiment label to the closed set
// {positive, neutral, negative, mixed}, defaulting to neutral.
func NormalizeSentiment(raw string) string {
	if s, ok := sentiments[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return s
	}
	return "neutral"
}
