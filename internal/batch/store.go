package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/civicstack/civic-triage/internal/cache"
	"github.com/civicstack/civic-triage/internal/models"
)

const jobKeyPrefix = "batch_job:"

// ErrJobNotFound signals an unknown or expired job id.
var ErrJobNotFound = errors.New("batch job not found")

// JobStore persists batch job records in the shared key-value store under the
// batch_job: prefix. Records expire after the configured TTL; expiry is the
// only cleanup path.
type JobStore struct {
	provider cache.Provider
	ttl      time.Duration
}

// NewJobStore builds a JobStore. A nil provider falls back to process memory.
func NewJobStore(provider cache.Provider, ttl time.Duration) *JobStore {
	if provider == nil {
		provider = cache.NewMemoryProvider(nil)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &JobStore{provider: provider, ttl: ttl}
}

// Save writes the full job record, refreshing its TTL.
func (s *JobStore) Save(ctx context.Context, job models.BatchJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job %s: %w", job.JobID, err)
	}
	if err := s.provider.Set(ctx, jobKeyPrefix+job.JobID, data, s.ttl); err != nil {
		return fmt.Errorf("persist job %s: %w", job.JobID, err)
	}
	return nil
}

// Load reads a job record by id, returning ErrJobNotFound for unknown or
// expired jobs.
func (s *JobStore) Load(ctx context.Context, jobID string) (models.BatchJob, error) {
	data, err := s.provider.Get(ctx, jobKeyPrefix+jobID)
	if err != nil {
		if errors.Is(err, cache.ErrCacheMiss) {
			return models.BatchJob{}, ErrJobNotFound
		}
		return models.BatchJob{}, fmt.Errorf("load job %s: %w", jobID, err)
	}

	var job models.BatchJob
	if err := json.Unmarshal(data, &job); err != nil {
		return models.BatchJob{}, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return job, nil
}
