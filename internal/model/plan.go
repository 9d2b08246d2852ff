package model

import (
	"strings"
	"time"
)

// TimeFilter restricts retrieval to a trailing window.
type TimeFilter string

const (
	TimeAll    TimeFilter = "all"
	TimeLast24 TimeFilter = "last_24_hours"
	TimeLast7  TimeFilter = "last_7_days"
	TimeLast30 TimeFilter = "last_30_days"
	TimeLast90 TimeFilter = "last_90_days"
)

// ParseTimeFilter normalizes a planner-provided string; anything it does not
// recognize degrades to TimeAll rather than failing the query.
func ParseTimeFilter(raw string) TimeFilter {
	switch TimeFilter(strings.ToLower(strings.TrimSpace(raw))) {
	case TimeLast24:
		return TimeLast24
	case TimeLast7:
		return TimeLast7
	case TimeLast30:
		return TimeLast30
	case TimeLast90:
		return TimeLast90
	default:
		return TimeAll
	}
}

// Cutoff returns the inclusive lower bound for the filter, and whether a
// bound applies at all.
func (f TimeFilter) Cutoff(now time.Time) (time.Time, bool) {
	switch f {
	case TimeLast24:
		return now.Add(-24 * time.Hour), true
	case TimeLast7:
		return now.AddDate(0, 0, -7), true
	case TimeLast30:
		return now.AddDate(0, 0, -30), true
	case TimeLast90:
		return now.AddDate(0, 0, -90), true
	default:
		return time.Time{}, false
	}
}

// RetrievalPlan is the structured retrieval strategy produced per query by
// the planner. Created per query, consumed once, never persisted.
type RetrievalPlan struct {
	SearchTerms   []string      `json:"searchTerms"`
	ContentTypes  []ContentType `json:"contentTypes"`
	FilterAll     bool          `json:"filterAll"`
	TimeFilter    TimeFilter    `json:"timeFilter"`
	MaxItems      int           `json:"maxItems"`
	AnalysisFocus string        `json:"analysisFocus"`
	// Fallback is true when the planner degraded to the deterministic plan.
	Fallback       bool   `json:"fallback"`
	FallbackReason string `json:"fallbackReason,omitempty"`
}

// AllowsType reports whether an item of the given type passes the plan's
// content-type filter.
func (p *RetrievalPlan) AllowsType(ct ContentType) bool {
	if p.FilterAll {
		return true
	}
	for _, allowed := range p.ContentTypes {
		if allowed == ct {
			return true
		}
	}
	return false
}

// RetrievalStats reports how a retrieval was executed, including whether the
// diversity-sample fallback replaced a sparse keyword result.
type RetrievalStats struct {
	TotalScanned      int            `json:"totalScanned"`
	PerTermCounts     map[string]int `json:"perTermCounts"`
	FilteredOutCount  int            `json:"filteredOutCount"`
	FallbackUsed      bool           `json:"fallbackUsed"`
	FallbackReason    string         `json:"fallbackReason,omitempty"`
	DuplicatesRemoved int            `json:"duplicatesRemoved"`
	FinalCount        int            `json:"finalCount"`
}

// AnswerResult is the synthesized answer with provenance.
type AnswerResult struct {
	Answer         string         `json:"answer"`
	CitedGroupIDs  []string       `json:"citedGroupIds"`
	TokensUsed     int            `json:"tokensUsed"`
	RetrievedCount int            `json:"retrievedCount"`
	Plan           *RetrievalPlan `json:"plan"`
	Stats          RetrievalStats `json:"retrievalStats"`
}
