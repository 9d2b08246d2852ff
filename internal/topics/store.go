package topics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/alai22/gladly-conversation-analyzer/internal/blob"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// StorageKey is the blob key holding all extracted topic records.
const StorageKey = "topics/extracted_topics.json"

// Store persists topic records keyed by date then conversation ID. The whole
// file is read on first use and rewritten on every save; the record set is
// small enough that this stays cheap.
type Store struct {
	blobs blob.Store
	log   zerolog.Logger

	mu     sync.Mutex
	byDate map[string]map[string]model.TopicRecord
	loaded bool
}

func NewStore(blobs blob.Store, log zerolog.Logger) *Store {
	return &Store{blobs: blobs, log: log}
}

func (s *Store) load(ctx context.Context) error {
	if s.loaded {
		return nil
	}

	data, err := s.blobs.Get(ctx, StorageKey)
	if errors.Is(err, blob.ErrNotFound) {
		s.byDate = make(map[string]map[string]model.TopicRecord)
		s.loaded = true
		s.log.Info().Msg("no existing topic records, starting fresh")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load topic records: %w", err)
	}

	var raw map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode topic records: %w", err)
	}

	s.byDate = make(map[string]map[string]model.TopicRecord, len(raw))
	for date, convs := range raw {
		records := make(map[string]model.TopicRecord, len(convs))
		for convID, v := range convs {
			records[convID] = decodeRecord(v)
		}
		s.byDate[date] = records
	}
	s.loaded = true
	s.log.Info().Int("dates", len(s.byDate)).Msg("topic records loaded")
	return nil
}

// decodeRecord tolerates the legacy format where the value was a bare topic
// string rather than a full record.
func decodeRecord(raw json.RawMessage) model.TopicRecord {
	var rec model.TopicRecord
	if err := json.Unmarshal(raw, &rec); err == nil {
		return rec
	}
	var topic string
	if err := json.Unmarshal(raw, &topic); err == nil {
		return model.TopicRecord{Topic: topic}
	}
	return model.TopicRecord{Topic: TopicOther}
}

func (s *Store) persist(ctx context.Context) error {
	data, err := json.MarshalIndent(s.byDate, "", "  ")
	if err != nil {
		return fmt.Errorf("encode topic records: %w", err)
	}
	if err := s.blobs.Put(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("save topic records: %w", err)
	}
	return nil
}

// SaveForDate merges records for a date into the store and persists.
func (s *Store) SaveForDate(ctx context.Context, date string, records map[string]model.TopicRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return err
	}

	existing := s.byDate[date]
	if existing == nil {
		existing = make(map[string]model.TopicRecord, len(records))
		s.byDate[date] = existing
	}
	for convID, rec := range records {
		existing[convID] = rec
	}
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.log.Info().Str("date", date).Int("records", len(records)).Msg("topic records saved")
	return nil
}

// RecordsForDate returns all records for a date, or model.ErrNotFound.
func (s *Store) RecordsForDate(ctx context.Context, date string) (map[string]model.TopicRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	records, ok := s.byDate[date]
	if !ok || len(records) == 0 {
		return nil, model.ErrNotFound
	}
	out := make(map[string]model.TopicRecord, len(records))
	for k, v := range records {
		out[k] = v
	}
	return out, nil
}

// ExtractedSet returns the conversation IDs already extracted for a date.
func (s *Store) ExtractedSet(ctx context.Context, date string) (map[string]struct{}, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(ctx); err != nil {
		return nil, err
	}

	set := make(map[string]struct{}, len(s.byDate[date]))
	for convID := range s.byDate[date] {
		set[convID] = struct{}{}
	}
	return set, nil
}
