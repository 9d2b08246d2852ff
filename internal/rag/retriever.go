package rag

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/corpus"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// Retriever executes a retrieval plan against a corpus snapshot. Pure
// in-memory scan, no blocking.
type Retriever struct {
	// minYield is the minimum keyword-search result count below which the
	// diversity-sample fallback replaces the sparse result.
	minYield int
	log      zerolog.Logger
	now      func() time.Time
}

func NewRetriever(minYield int, log zerolog.Logger) *Retriever {
	return &Retriever{minYield: minYield, log: log, now: time.Now}
}

// Retrieve runs the plan over the snapshot and returns the selected items
// with execution stats.
func (r *Retriever) Retrieve(plan *model.RetrievalPlan, snap *corpus.Snapshot) ([]*model.CorpusItem, model.RetrievalStats) {
	stats := model.RetrievalStats{PerTermCounts: make(map[string]int)}
	if len(snap.Items) == 0 {
		return nil, stats
	}

	maxItems := plan.MaxItems
	if maxItems < 1 {
		maxItems = 1
	}
	if maxItems > len(snap.Items) {
		maxItems = len(snap.Items)
	}

	perTermBudget := maxItems / len(plan.SearchTerms)
	if perTermBudget < 1 {
		perTermBudget = 1
	}

	var candidates []*model.CorpusItem
	for _, term := range plan.SearchTerms {
		top := r.searchTerm(term, snap, perTermBudget)
		stats.PerTermCounts[term] = len(top)
		stats.TotalScanned += len(top)
		candidates = append(candidates, top...)
	}

	// Content-type filter.
	if !plan.FilterAll {
		kept := candidates[:0]
		for _, it := range candidates {
			if plan.AllowsType(it.Type) {
				kept = append(kept, it)
			} else {
				stats.FilteredOutCount++
			}
		}
		candidates = kept
	}

	// Minimum-yield fallback: narrow keyword matching starves broad
	// questions with no lexical anchor, so a sparse result is replaced by
	// an unbiased cross-section of the corpus.
	if len(candidates) < r.minYield {
		stats.FallbackUsed = true
		stats.FallbackReason = fmt.Sprintf(
			"keyword retrieval yielded %d items, below the minimum of %d; using a diversity sample of the corpus instead",
			len(candidates), r.minYield)
		r.log.Info().
			Int("yield", len(candidates)).
			Int("threshold", r.minYield).
			Msg("retrieval fell back to diversity sample")
		candidates = diversitySample(snap, maxItems)
	}

	// Time filter. Items without parsable timestamps are kept; missing
	// time info must never silently exclude data.
	if cutoff, bounded := plan.TimeFilter.Cutoff(r.now()); bounded {
		kept := candidates[:0]
		for _, it := range candidates {
			if !it.HasTime || !it.ParsedTime.Before(cutoff) {
				kept = append(kept, it)
			}
		}
		candidates = kept
	}

	// Dedup by id, first occurrence wins, then truncate.
	seen := make(map[string]struct{}, len(candidates))
	final := make([]*model.CorpusItem, 0, maxItems)
	for _, it := range candidates {
		if _, dup := seen[it.ID]; dup {
			stats.DuplicatesRemoved++
			continue
		}
		seen[it.ID] = struct{}{}
		final = append(final, it)
		if len(final) >= maxItems {
			break
		}
	}

	stats.FinalCount = len(final)
	return final, stats
}

// searchTerm expands one search term, scores the whole snapshot, and returns
// the top items by score. The sort is stable so ties keep corpus order.
func (r *Retriever) searchTerm(term string, snap *corpus.Snapshot, budget int) []*model.CorpusItem {
	termLower := strings.ToLower(term)
	expanded := Expand(term)

	var scored []model.ScoredItem
	for i := range snap.Items {
		it := &snap.Items[i]
		if s := Score(it, expanded, termLower); s > 0 {
			scored = append(scored, model.ScoredItem{Item: it, Score: s})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > budget {
		scored = scored[:budget]
	}
	out := make([]*model.CorpusItem, len(scored))
	for i, s := range scored {
		out[i] = s.Item
	}
	return out
}

// diversitySample walks the corpus in original order, dedups by id, and takes
// the first n items.
func diversitySample(snap *corpus.Snapshot, n int) []*model.CorpusItem {
	seen := make(map[string]struct{}, n)
	out := make([]*model.CorpusItem, 0, n)
	for i := range snap.Items {
		it := &snap.Items[i]
		if _, dup := seen[it.ID]; dup {
			continue
		}
		seen[it.ID] = struct{}{}
		out = append(out, it)
		if len(out) >= n {
			break
		}
	}
	return out
}
