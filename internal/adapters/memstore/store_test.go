package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"blogvelocity/internal/config"
	"blogvelocity/internal/core/domain"
	"blogvelocity/internal/core/ports"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New(config.JobsConfig{TTL: time.Hour, SweepInterval: time.Hour}, zap.NewNop())
	t.Cleanup(s.Close)
	return s
}

func TestCreateAndGet(t *testing.T) {
	s := newTestStore(t)

	job := s.Create("example.com")
	require.NotEmpty(t, job.ID)
	assert.Equal(t, domain.JobPending, job.Status)
	assert.Equal(t, "example.com", job.Domain)
	assert.False(t, job.CreatedAt.IsZero())

	got, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, got.ID)

	other := s.Create("example.com")
	assert.NotEqual(t, job.ID, other.ID)
}

func TestGetUnknown(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get("nope")
	assert.ErrorIs(t, err, ports.ErrJobNotFound)
}

func TestGetReturnsCopy(t *testing.T) {
	s := newTestStore(t)
	job := s.Create("example.com")

	got, err := s.Get(job.ID)
	require.NoError(t, err)
	got.Status = domain.JobFailed

	again, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobPending, again.Status)
}

func TestUpdateStatus(t *testing.T) {
	s := newTestStore(t)
	job := s.Create("example.com")

	require.NoError(t, s.UpdateStatus(job.ID, domain.JobProcessing))
	got, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobProcessing, got.Status)

	assert.ErrorIs(t, s.UpdateStatus("nope", domain.JobProcessing), ports.ErrJobNotFound)
}

func TestCompleteAndFailAreExclusive(t *testing.T) {
	s := newTestStore(t)

	completed := s.Create("a.com")
	require.NoError(t, s.Complete(completed.ID, &domain.AnalysisResult{Domain: "a.com", BlogFound: true}))
	got, err := s.Get(completed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobCompleted, got.Status)
	require.NotNil(t, got.Result)
	assert.Empty(t, got.Error)
	require.NotNil(t, got.CompletedAt)

	failed := s.Create("b.com")
	require.NoError(t, s.Fail(failed.ID, "agent rejected scrape request: status 400"))
	got, err = s.Get(failed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobFailed, got.Status)
	assert.Nil(t, got.Result)
	assert.NotEmpty(t, got.Error)
	require.NotNil(t, got.CompletedAt)
}

func TestSweepEvictsExpiredJobs(t *testing.T) {
	s := newTestStore(t)

	old := s.Create("old.com")
	fresh := s.Create("fresh.com")

	s.mu.Lock()
	s.jobs[old.ID].CreatedAt = time.Now().UTC().Add(-2 * time.Hour)
	s.mu.Unlock()

	s.sweep(time.Now().UTC())

	_, err := s.Get(old.ID)
	assert.ErrorIs(t, err, ports.ErrJobNotFound)

	_, err = s.Get(fresh.ID)
	assert.NoError(t, err)
}

func TestSweepRunsPeriodically(t *testing.T) {
	s := New(config.JobsConfig{TTL: time.Millisecond, SweepInterval: 5 * time.Millisecond}, zap.NewNop())
	defer s.Close()

	job := s.Create("old.com")

	assert.Eventually(t, func() bool {
		_, err := s.Get(job.ID)
		return err != nil
	}, time.Second, 5*time.Millisecond)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := New(config.JobsConfig{}, zap.NewNop())
	s.Close()
	s.Close()
}
