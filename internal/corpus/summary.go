package corpus

import (
	"time"

	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// Summarize computes corpus statistics over a loaded item set. Items without
// a parsable timestamp count toward totals but not the date range.
func Summarize(items []model.CorpusItem, skipped int, loadedAt time.Time) model.CorpusSummary {
	groups := make(map[string]struct{})
	customers := make(map[string]struct{})
	contentTypes := make(map[string]int)

	var earliest, latest time.Time
	for i := range items {
		it := &items[i]
		if it.GroupID != "" {
			groups[it.GroupID] = struct{}{}
		}
		if it.CustomerID != "" {
			customers[it.CustomerID] = struct{}{}
		}
		contentTypes[string(it.Type)]++

		if !it.HasTime {
			continue
		}
		if earliest.IsZero() || it.ParsedTime.Before(earliest) {
			earliest = it.ParsedTime
		}
		if latest.IsZero() || it.ParsedTime.After(latest) {
			latest = it.ParsedTime
		}
	}

	s := model.CorpusSummary{
		TotalItems:      len(items),
		UniqueGroups:    len(groups),
		UniqueCustomers: len(customers),
		ContentTypes:    contentTypes,
		SkippedBadLines: skipped,
		LoadedAtUnixMs:  loadedAt.UnixMilli(),
	}
	if !earliest.IsZero() {
		s.EarliestDate = earliest.Format("2006-01-02")
		s.LatestDate = latest.Format("2006-01-02")
	}
	return s
}
