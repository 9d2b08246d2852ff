package model

import (
	"strconv"
	"strings"
	"time"
)

// TextField is one named text fragment of a corpus item that participates in
// search, e.g. content/subject/body for conversations or Answer/Comment for
// survey responses. Order is preserved from the source record.
type TextField struct {
	Name string `json:"name"`
	Text string `json:"text"`
}

// CorpusItem is the unified, denormalized record for a conversation item or
// survey response. Corpus snapshots are immutable, so SearchText is computed
// once at ingestion and can never go stale within a snapshot.
type CorpusItem struct {
	ID         string      `json:"id"`
	GroupID    string      `json:"groupId"`
	CustomerID string      `json:"customerId,omitempty"`
	Timestamp  string      `json:"timestamp,omitempty"`
	Type       ContentType `json:"contentType"`
	TextFields []TextField `json:"textFields"`

	// ParsedTime is valid only when HasTime is true. A missing or
	// unparsable timestamp degrades to HasTime=false; it never fails ingest.
	ParsedTime time.Time `json:"-"`
	HasTime    bool      `json:"-"`

	// SearchText is the lowercase concatenation of all text fields.
	SearchText string `json:"-"`
}

// ComputeDerived fills ParsedTime/HasTime and SearchText from the raw fields.
func (it *CorpusItem) ComputeDerived() {
	it.HasTime = false
	if it.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339, it.Timestamp); err == nil {
			it.ParsedTime = t
			it.HasTime = true
		}
	}

	var b strings.Builder
	for _, f := range it.TextFields {
		if f.Text == "" {
			continue
		}
		b.WriteString(strings.ToLower(f.Text))
		b.WriteByte(' ')
	}
	it.SearchText = b.String()
}

// ScoredItem pairs a corpus item with its relevance score for one search
// term. Ephemeral: produced and consumed within a single retrieval call.
type ScoredItem struct {
	Item  *CorpusItem
	Score int
}

// CorpusSummary describes a corpus snapshot for reporting and for the
// synthesizer's system prompt.
type CorpusSummary struct {
	TotalItems      int            `json:"totalItems"`
	UniqueGroups    int            `json:"uniqueGroups"`
	UniqueCustomers int            `json:"uniqueCustomers"`
	ContentTypes    map[string]int `json:"contentTypes"`
	EarliestDate    string         `json:"earliestDate"`
	LatestDate      string         `json:"latestDate"`
	SkippedBadLines int            `json:"skippedBadLines"`
	LoadedAtUnixMs  int64          `json:"loadedAtUnixMs"`
}

// String renders the summary in the form the synthesis prompt embeds.
func (s CorpusSummary) String() string {
	var b strings.Builder
	b.WriteString("Conversation Data Summary:\n")
	writeKV(&b, "Total items", s.TotalItems)
	writeKV(&b, "Unique conversations", s.UniqueGroups)
	writeKV(&b, "Unique customers", s.UniqueCustomers)
	b.WriteString("- Date range: " + orUnknown(s.EarliestDate) + " to " + orUnknown(s.LatestDate) + "\n")
	if len(s.ContentTypes) > 0 {
		b.WriteString("Content Types:\n")
		for ct, n := range s.ContentTypes {
			writeKV(&b, "  "+ct, n)
		}
	}
	return b.String()
}

func writeKV(b *strings.Builder, key string, n int) {
	b.WriteString("- ")
	b.WriteString(key)
	b.WriteString(": ")
	b.WriteString(strconv.Itoa(n))
	b.WriteByte('\n')
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
