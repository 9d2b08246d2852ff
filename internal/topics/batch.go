package topics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/alai22/gladly-conversation-analyzer/internal/corpus"
	"github.com/alai22/gladly-conversation-analyzer/internal/model"
)

// job tracks one batch run. Only the runner goroutine writes progress;
// readers take the mutex and copy.
type job struct {
	mu       sync.Mutex
	progress model.ExtractionProgress
	stop     bool
}

func (j *job) snapshot() model.ExtractionProgress {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.progress
}

func (j *job) update(fn func(*model.ExtractionProgress)) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn(&j.progress)
}

func (j *job) stopped() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.stop
}

// Runner drives batch topic extraction: one conversation at a time, throttled,
// with periodic checkpoints so a crash or rate-limit stop loses at most
// checkpointEvery conversations of work. At most one batch runs at a time.
type Runner struct {
	corpus    *corpus.Store
	store     *Store
	extractor *Extractor
	log       zerolog.Logger

	checkpointEvery int
	limiter         *rate.Limiter

	mu      sync.Mutex
	jobs    map[string]*job
	running bool
}

func NewRunner(corpusStore *corpus.Store, store *Store, extractor *Extractor, checkpointEvery int, delay time.Duration, log zerolog.Logger) *Runner {
	if checkpointEvery < 1 {
		checkpointEvery = 10
	}
	limit := rate.Inf
	if delay > 0 {
		limit = rate.Every(delay)
	}
	return &Runner{
		corpus:          corpusStore,
		store:           store,
		extractor:       extractor,
		log:             log,
		checkpointEvery: checkpointEvery,
		limiter:         rate.NewLimiter(limit, 1),
		jobs:            make(map[string]*job),
	}
}

// Start launches extraction for an inclusive date range and returns a job
// handle. A second start while a batch is active returns
// model.ErrExtractionRunning. The batch outlives the caller's context; use
// Stop to halt it.
func (r *Runner) Start(_ context.Context, startDate, endDate string) (string, error) {
	dates, err := expandDateRange(startDate, endDate)
	if err != nil {
		return "", err
	}

	snap, err := r.corpus.Current()
	if err != nil {
		return "", err
	}

	label := dates[0]
	if len(dates) > 1 {
		label = dates[0] + ".." + dates[len(dates)-1]
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return "", model.ErrExtractionRunning
	}
	r.running = true
	jobID := uuid.New().String()
	j := &job{progress: model.ExtractionProgress{
		JobID: jobID,
		Date:  label,
		State: model.ExtractionRunning,
	}}
	r.jobs[jobID] = j
	r.mu.Unlock()

	go r.run(context.Background(), j, dates, snap)
	return jobID, nil
}

// expandDateRange lists the dates from start through end inclusive.
func expandDateRange(startDate, endDate string) ([]string, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad start date %q", model.ErrValidation, startDate)
	}
	if endDate == "" {
		endDate = startDate
	}
	end, err := time.Parse("2006-01-02", endDate)
	if err != nil {
		return nil, fmt.Errorf("%w: bad end date %q", model.ErrValidation, endDate)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s before start date %s", model.ErrValidation, endDate, startDate)
	}

	var dates []string
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format("2006-01-02"))
	}
	return dates, nil
}

// Progress returns a point-in-time snapshot for a job handle.
func (r *Runner) Progress(jobID string) (model.ExtractionProgress, error) {
	r.mu.Lock()
	j, ok := r.jobs[jobID]
	r.mu.Unlock()
	if !ok {
		return model.ExtractionProgress{}, model.ErrNotFound
	}
	return j.snapshot(), nil
}

// Stop flags a running job to halt between items. An in-flight LLM call is
// not interrupted.
func (r *Runner) Stop(jobID string) error {
	r.mu.Lock()
	j, ok := r.jobs[jobID]
	r.mu.Unlock()
	if !ok {
		return model.ErrNotFound
	}
	j.mu.Lock()
	j.stop = true
	j.mu.Unlock()
	return nil
}

func (r *Runner) run(ctx context.Context, j *job, dates []string, snap *corpus.Snapshot) {
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	total := 0
	for _, date := range dates {
		order, _ := snap.GroupsForDate(date)
		total += len(order)
	}
	j.update(func(p *model.ExtractionProgress) { p.Total = total })
	r.log.Info().Strs("dates", dates).Int("conversations", total).Msg("topic extraction started")

	for _, date := range dates {
		if !r.runDate(ctx, j, date, snap) {
			return
		}
		if j.stopped() {
			break
		}
	}

	j.update(func(p *model.ExtractionProgress) { p.State = model.ExtractionCompleted })
	r.log.Info().Msg("topic extraction completed")
}

// runDate processes one date; false means the batch failed and must not
// continue to later dates.
func (r *Runner) runDate(ctx context.Context, j *job, date string, snap *corpus.Snapshot) bool {
	order, groups := snap.GroupsForDate(date)

	extracted, err := r.store.ExtractedSet(ctx, date)
	if err != nil {
		r.fail(j, err)
		return false
	}

	pending := make(map[string]model.TopicRecord)
	for _, convID := range order {
		if j.stopped() {
			r.log.Info().Str("date", date).Msg("topic extraction stopped by request")
			break
		}

		j.update(func(p *model.ExtractionProgress) { p.Current++ })

		if _, done := extracted[convID]; done {
			j.update(func(p *model.ExtractionProgress) { p.Skipped++ })
			continue
		}

		if err := r.limiter.Wait(ctx); err != nil {
			r.checkpoint(ctx, date, pending)
			r.fail(j, err)
			return false
		}

		rec, err := r.extractor.ExtractMetadata(ctx, groups[convID])
		if err != nil {
			// Exhausted rate-limit retries or another hard LLM
			// failure: stop the batch, keep what we have.
			r.checkpoint(ctx, date, pending)
			r.fail(j, err)
			return false
		}

		pending[convID] = rec
		j.update(func(p *model.ExtractionProgress) { p.Succeeded++ })

		if len(pending) >= r.checkpointEvery {
			r.checkpoint(ctx, date, pending)
			pending = make(map[string]model.TopicRecord)
		}
	}

	r.checkpoint(ctx, date, pending)
	return true
}

func (r *Runner) checkpoint(ctx context.Context, date string, pending map[string]model.TopicRecord) {
	if len(pending) == 0 {
		return
	}
	if err := r.store.SaveForDate(ctx, date, pending); err != nil {
		r.log.Error().Err(err).Str("date", date).Msg("topic checkpoint failed")
	}
}

func (r *Runner) fail(j *job, err error) {
	j.update(func(p *model.ExtractionProgress) {
		p.State = model.ExtractionFailed
		p.Failed++
		p.Error = err.Error()
	})
	r.log.Error().Err(err).Msg("topic extraction failed")
}
