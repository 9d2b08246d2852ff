package corpus

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/blob"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// Snapshot is one immutable load of the corpus. Queries operate on a single
// snapshot end to end; a concurrent refresh never mutates items in place.
type Snapshot struct {
	Items   []model.CorpusItem
	Summary model.CorpusSummary
}

// GroupsForDate returns the conversation IDs with at least one item on the
// given date (YYYY-MM-DD), in corpus order, plus each group's items. Items
// without a parsable timestamp are never attributed to a date.
func (s *Snapshot) GroupsForDate(date string) ([]string, map[string][]*model.CorpusItem) {
	var order []string
	groups := make(map[string][]*model.CorpusItem)
	for i := range s.Items {
		it := &s.Items[i]
		if !it.HasTime || it.ParsedTime.Format("2006-01-02") != date {
			continue
		}
		if _, seen := groups[it.GroupID]; !seen {
			order = append(order, it.GroupID)
		}
		groups[it.GroupID] = append(groups[it.GroupID], it)
	}
	return order, groups
}

// Store holds the current corpus snapshot and reloads it from the blob store
// on demand. Swaps are atomic: readers see the old snapshot or the new one,
// never a mix.
type Store struct {
	blobs   blob.Store
	key     string
	log     zerolog.Logger
	current atomic.Pointer[Snapshot]
}

// NewStore creates a corpus store reading JSONL from the given blob key.
func NewStore(blobs blob.Store, key string, log zerolog.Logger) *Store {
	return &Store{blobs: blobs, key: key, log: log}
}

// Refresh rebuilds the snapshot from the blob store and swaps it in. On
// failure the previous snapshot, if any, stays live.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	data, err := s.blobs.Get(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", s.key, err)
	}

	items, skipped := ParseJSONL(data, s.log)
	snap := &Snapshot{
		Items:   items,
		Summary: Summarize(items, skipped, time.Now()),
	}
	s.current.Store(snap)
	s.log.Info().
		Int("items", len(items)).
		Int("skipped", skipped).
		Str("key", s.key).
		Msg("corpus snapshot refreshed")
	return snap, nil
}

// Current returns the live snapshot, or ErrCorpusUnavailable when nothing
// has been loaded or the corpus is empty.
func (s *Store) Current() (*Snapshot, error) {
	snap := s.current.Load()
	if snap == nil || len(snap.Items) == 0 {
		return nil, model.ErrCorpusUnavailable
	}
	return snap, nil
}

// RefreshSummary reloads the corpus and reports the new snapshot's stats.
func (s *Store) RefreshSummary(ctx context.Context) (model.CorpusSummary, error) {
	snap, err := s.Refresh(ctx)
	if err != nil {
		return model.CorpusSummary{}, err
	}
	return snap.Summary, nil
}

// Summary reports statistics for the live snapshot.
func (s *Store) Summary() (model.CorpusSummary, error) {
	snap, err := s.Current()
	if err != nil {
		return model.CorpusSummary{}, err
	}
	return snap.Summary, nil
}
