package batch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/civicstack/civic-triage/internal/metrics"
	"github.com/civicstack/civic-triage/internal/models"
)

// Analyzer runs the single-message pipeline for one batch item.
type Analyzer interface {
	Analyze(ctx context.Context, req models.AnalysisRequest) (models.AnalysisResult, error)
}

// Config bounds the manager's resource usage.
type Config struct {
	// Workers caps concurrent item analyses per job.
	Workers int
	// MaxBatchSize rejects oversized submissions; zero means unlimited.
	MaxBatchSize int
	// EstimatePerItem sizes the advisory completion estimate.
	EstimatePerItem time.Duration
}

// Manager owns batch jobs from creation to terminal state. All mutations of
// a live job record flow through a single updater goroutine per job, so
// concurrent item completions can never lose an update. Callers hold only
// the job id and poll read-only snapshots.
type Manager struct {
	logger   *slog.Logger
	clock    clockwork.Clock
	analyzer Analyzer
	store    *JobStore
	cfg      Config

	mu sync.RWMutex
	// active holds live records so same-process status reads reflect the most
	// recent write even when the external store lags or fails.
	active map[string]models.BatchJob
}

// NewManager constructs a batch job manager.
func NewManager(logger *slog.Logger, clock clockwork.Clock, analyzer Analyzer, store *JobStore, cfg Config) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if store == nil {
		store = NewJobStore(nil, 0)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}
	if cfg.EstimatePerItem <= 0 {
		cfg.EstimatePerItem = 2 * time.Second
	}
	return &Manager{
		logger:   logger,
		clock:    clock,
		analyzer: analyzer,
		store:    store,
		cfg:      cfg,
		active:   make(map[string]models.BatchJob),
	}
}

// Submit validates the batch, persists the pending job record, and kicks off
// background processing. The returned snapshot reflects the persisted pending
// state; callers poll Status for progress.
func (m *Manager) Submit(ctx context.Context, ownerID string, messages []string, msgContext map[string]string) (models.BatchJob, error) {
	if len(messages) == 0 {
		return models.BatchJob{}, fmt.Errorf("batch has no messages")
	}
	if m.cfg.MaxBatchSize > 0 && len(messages) > m.cfg.MaxBatchSize {
		return models.BatchJob{}, fmt.Errorf("batch size %d exceeds limit %d", len(messages), m.cfg.MaxBatchSize)
	}
	if ownerID == "" {
		ownerID = "anonymous"
	}

	now := m.clock.Now().UTC()
	jobID := fmt.Sprintf("batch_%s_%d_%s", ownerID, now.Unix(), uuid.NewString()[:8])

	results := make([]models.JobResultItem, len(messages))
	for i, msg := range messages {
		results[i] = models.JobResultItem{Index: i, Message: msg}
	}

	waves := (len(messages) + m.cfg.Workers - 1) / m.cfg.Workers
	estimate := now.Add(time.Duration(waves) * m.cfg.EstimatePerItem)

	job := models.BatchJob{
		JobID:               jobID,
		OwnerID:             ownerID,
		Status:              models.JobStatusPending,
		Total:               len(messages),
		Results:             results,
		CreatedAt:           now,
		UpdatedAt:           now,
		EstimatedCompletion: &estimate,
	}

	// Persist before any work starts: a crash right after submission leaves a
	// discoverable pending job, never a lost one.
	if err := m.store.Save(ctx, job); err != nil {
		return models.BatchJob{}, err
	}

	m.mu.Lock()
	m.active[jobID] = job.Clone()
	m.mu.Unlock()

	// Processing outlives the submission request.
	go m.run(context.Background(), job.Clone(), messages, msgContext)

	return job.Clone(), nil
}

// Status returns a read-only snapshot of the job. Live jobs are served from
// the in-process record; finished or foreign jobs come from the store.
func (m *Manager) Status(ctx context.Context, jobID string) (models.BatchJob, error) {
	m.mu.RLock()
	job, ok := m.active[jobID]
	m.mu.RUnlock()
	if ok {
		return job.Clone(), nil
	}
	return m.store.Load(ctx, jobID)
}

type itemOutcome struct {
	index  int
	output *models.AnalysisResult
	err    string
}

func (m *Manager) run(ctx context.Context, job models.BatchJob, messages []string, msgContext map[string]string) {
	job.Status = models.JobStatusProcessing
	job.UpdatedAt = m.clock.Now().UTC()
	m.publish(ctx, &job)

	outcomes := make(chan itemOutcome)
	updaterDone := make(chan struct{})

	// Single-writer updater: the only goroutine that mutates the job record
	// once processing starts.
	go func() {
		defer close(updaterDone)
		for outcome := range outcomes {
			job.Results[outcome.index].Output = outcome.output
			job.Results[outcome.index].Error = outcome.err
			job.Processed++
			job.UpdatedAt = m.clock.Now().UTC()
			m.publish(ctx, &job)
		}
	}()

	sem := make(chan struct{}, m.cfg.Workers)
	var wg sync.WaitGroup
	for i, msg := range messages {
		wg.Add(1)
		sem <- struct{}{}
		go func(index int, message string) {
			defer wg.Done()
			defer func() { <-sem }()
			outcomes <- m.analyzeItem(ctx, index, message, msgContext)
		}(i, msg)
	}
	wg.Wait()
	close(outcomes)
	<-updaterDone

	m.finish(ctx, &job)
}

// analyzeItem runs one message through the pipeline, converting panics and
// errors into a per-item failure so sibling items keep going.
func (m *Manager) analyzeItem(ctx context.Context, index int, message string, msgContext map[string]string) (outcome itemOutcome) {
	outcome = itemOutcome{index: index}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("batch item panicked",
				slog.Int("index", index),
				slog.Any("panic", r))
			outcome.output = nil
			outcome.err = fmt.Sprintf("item panicked: %v", r)
			metrics.ObserveBatchItem(metrics.OutcomeError)
		}
	}()

	result, err := m.analyzer.Analyze(ctx, models.AnalysisRequest{Text: message, Context: msgContext})
	if err != nil {
		outcome.err = err.Error()
		metrics.ObserveBatchItem(metrics.OutcomeError)
		return outcome
	}
	outcome.output = &result
	metrics.ObserveBatchItem(metrics.OutcomeSuccess)
	return outcome
}

// publish persists the current record and refreshes the in-process snapshot.
// Mid-job persistence failures are tolerated; the terminal write decides the
// job's fate.
func (m *Manager) publish(ctx context.Context, job *models.BatchJob) {
	m.mu.Lock()
	m.active[job.JobID] = job.Clone()
	m.mu.Unlock()

	if err := m.store.Save(ctx, *job); err != nil {
		m.logger.Warn("batch job persist failed",
			slog.String("job_id", job.JobID),
			slog.Any("error", err))
	}
}

func (m *Manager) finish(ctx context.Context, job *models.BatchJob) {
	now := m.clock.Now().UTC()
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &now
	job.UpdatedAt = now

	var saveErr error
	for attempt := 0; attempt < 3; attempt++ {
		if saveErr = m.store.Save(ctx, *job); saveErr == nil {
			break
		}
		m.clock.Sleep(time.Duration(attempt+1) * 100 * time.Millisecond)
	}

	if saveErr != nil {
		// Bookkeeping could not finish: this is a manager-level fault.
		job.Status = models.JobStatusFailed
		job.Error = fmt.Sprintf("persist terminal state: %v", saveErr)
		job.UpdatedAt = m.clock.Now().UTC()
		if err := m.store.Save(ctx, *job); err != nil {
			m.logger.Error("batch job terminal persist failed",
				slog.String("job_id", job.JobID),
				slog.Any("error", err))
		}
		// Keep the record readable in-process since the store is unreliable.
		m.mu.Lock()
		m.active[job.JobID] = job.Clone()
		m.mu.Unlock()
		metrics.ObserveBatchJob(string(job.Status))
		return
	}

	metrics.ObserveBatchJob(string(job.Status))
	m.logger.Info("batch job finished",
		slog.String("job_id", job.JobID),
		slog.Int("total", job.Total),
		slog.Int("processed", job.Processed))

	m.mu.Lock()
	delete(m.active, job.JobID)
	m.mu.Unlock()
}
