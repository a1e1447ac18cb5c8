package ports

import (
	"context"
	"errors"

	"blogvelocity/internal/core/domain"
)

// ErrJobNotFound is returned by JobStore lookups and mutations when no
// job exists for the given id (including jobs already reaped).
var ErrJobNotFound = errors.New("job not found")

// ScrapeResult holds the normalized output of one scraping call.
// Title is empty when the agent found no blog on the domain.
type ScrapeResult struct {
	Title string
	Posts []domain.BlogPost
}

// Scraper defines the contract for fetching blog posts for a domain
// through the browser-automation agent.
type Scraper interface {
	// FetchPosts retrieves the blog title and post list for the domain.
	// It retries transient upstream failures internally and returns a
	// terminal error only once retries are exhausted or the upstream
	// rejected the request outright.
	FetchPosts(ctx context.Context, domain string) (*ScrapeResult, error)
}

// Classifier defines the contract for the title classification service.
type Classifier interface {
	// Classify judges each title and returns the aggregated summary.
	Classify(ctx context.Context, titles []string) (*domain.ClassificationSummary, error)
}

// JobStore defines the contract for the job lifecycle registry.
type JobStore interface {
	// Create inserts a new pending job for the domain and returns a copy.
	Create(domainName string) *domain.Job

	// Get returns a copy of the job, or ErrJobNotFound.
	Get(id string) (*domain.Job, error)

	// UpdateStatus merges a new status into the job record.
	UpdateStatus(id string, status domain.JobStatus) error

	// Complete marks the job completed and attaches its result.
	Complete(id string, result *domain.AnalysisResult) error

	// Fail marks the job failed with a human-readable message.
	Fail(id string, message string) error
}
