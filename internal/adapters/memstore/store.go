// Package memstore holds the process-local job registry. Jobs live in
// memory only; a restart forgets them, which is the intended retention
// model alongside the TTL reaper.
package memstore

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"blogvelocity/internal/config"
	"blogvelocity/internal/core/domain"
	"blogvelocity/internal/core/ports"
	"blogvelocity/internal/metrics"
)

const (
	defaultTTL           = time.Hour
	defaultSweepInterval = 10 * time.Minute
)

// Store implements ports.JobStore with a mutex-guarded map and a
// background reaper that evicts jobs older than the retention window.
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*domain.Job

	ttl           time.Duration
	sweepInterval time.Duration
	logger        *zap.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// New creates the store and starts its reaper.
func New(cfg config.JobsConfig, logger *zap.Logger) *Store {
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}
	s := &Store{
		jobs:          make(map[string]*domain.Job),
		ttl:           cfg.TTL,
		sweepInterval: cfg.SweepInterval,
		logger:        logger,
		done:          make(chan struct{}),
	}
	go s.reap()
	return s
}

// Create inserts a new pending job and returns a copy of the record.
func (s *Store) Create(domainName string) *domain.Job {
	job := &domain.Job{
		ID:        uuid.New().String(),
		Domain:    domainName,
		Status:    domain.JobPending,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()

	cp := *job
	return &cp
}

// Get returns a copy of the job, or ports.ErrJobNotFound.
func (s *Store) Get(id string) (*domain.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, ports.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

// UpdateStatus merges a new status into the job record.
func (s *Store) UpdateStatus(id string, status domain.JobStatus) error {
	return s.update(id, func(job *domain.Job) {
		job.Status = status
	})
}

// Complete marks the job completed and attaches its result.
func (s *Store) Complete(id string, result *domain.AnalysisResult) error {
	now := time.Now().UTC()
	return s.update(id, func(job *domain.Job) {
		job.Status = domain.JobCompleted
		job.Result = result
		job.Error = ""
		job.CompletedAt = &now
	})
}

// Fail marks the job failed with a human-readable message.
func (s *Store) Fail(id string, message string) error {
	now := time.Now().UTC()
	return s.update(id, func(job *domain.Job) {
		job.Status = domain.JobFailed
		job.Error = message
		job.Result = nil
		job.CompletedAt = &now
	})
}

func (s *Store) update(id string, mutate func(*domain.Job)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return ports.ErrJobNotFound
	}
	mutate(job)
	return nil
}

// Close stops the reaper. Safe to call more than once.
func (s *Store) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *Store) reap() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(time.Now().UTC())
		}
	}
}

// sweep deletes every job older than the TTL, regardless of status. A
// late poller sees not-found, same as a job that never existed.
func (s *Store) sweep(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, job := range s.jobs {
		if now.Sub(job.CreatedAt) > s.ttl {
			delete(s.jobs, id)
			metrics.JobsReapedTotal.Inc()
			s.logger.Debug("reaped expired job",
				zap.String("job_id", id),
				zap.String("status", string(job.Status)))
		}
	}
}
