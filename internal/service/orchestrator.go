package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"blogvelocity/internal/core/domain"
	"blogvelocity/internal/core/ports"
	"blogvelocity/internal/metrics"
	"blogvelocity/internal/velocity"
)

// Orchestrator coordinates the velocity analysis workflow.
type Orchestrator struct {
	scraper    ports.Scraper
	classifier ports.Classifier
	store      ports.JobStore
	logger     *zap.Logger
}

// NewOrchestrator creates a new Orchestrator.
func NewOrchestrator(
	scraper ports.Scraper,
	classifier ports.Classifier,
	store ports.JobStore,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		scraper:    scraper,
		classifier: classifier,
		store:      store,
		logger:     logger,
	}
}

// Submit creates a job for the domain and starts the analysis in the
// background. It returns immediately; callers poll the store by job id.
func (o *Orchestrator) Submit(domainName string) *domain.Job {
	job := o.store.Create(domainName)
	metrics.JobsSubmittedTotal.Inc()
	o.logger.Info("accepted analysis job",
		zap.String("job_id", job.ID),
		zap.String("domain", domainName))

	// Detached from the request context: the caller can stop polling but
	// cannot abort the work. runJob always reaches a terminal status.
	go o.runJob(context.Background(), job.ID, domainName)

	return job
}

func (o *Orchestrator) runJob(ctx context.Context, jobID, domainName string) {
	logger := o.logger.With(zap.String("job_id", jobID), zap.String("domain", domainName))

	metrics.JobsInFlight.Inc()
	defer metrics.JobsInFlight.Dec()

	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", zap.Any("panic", r))
			o.failJob(jobID, fmt.Sprintf("internal error: %v", r), logger)
		}
	}()

	if err := o.store.UpdateStatus(jobID, domain.JobProcessing); err != nil {
		logger.Warn("job disappeared before processing", zap.Error(err))
		return
	}

	logger.Info("scraping blog posts")
	scrape, err := o.scraper.FetchPosts(ctx, domainName)
	if err != nil {
		logger.Error("scrape failed", zap.Error(err))
		o.failJob(jobID, err.Error(), logger)
		return
	}

	result := &domain.AnalysisResult{
		Domain:     domainName,
		BlogFound:  scrape.Title != "",
		BlogTitle:  scrape.Title,
		TotalPosts: len(scrape.Posts),
	}
	result.VelocityMetrics = velocity.Analyze(scrape.Posts, time.Now().UTC())

	if len(scrape.Posts) == 0 {
		// A domain without posts is a valid answer, not a failure.
		logger.Info("no posts found", zap.Bool("blog_found", result.BlogFound))
		o.completeJob(jobID, result, logger)
		return
	}

	titles := make([]string, 0, len(scrape.Posts))
	for _, post := range scrape.Posts {
		titles = append(titles, post.Title)
	}

	summary, err := o.classifier.Classify(ctx, titles)
	if err != nil {
		// Best-effort: velocity without classification beats no result.
		logger.Warn("classification failed, continuing without it", zap.Error(err))
		summary = &domain.ClassificationSummary{TotalTitles: len(titles)}
	}
	result.Classification = *summary

	o.completeJob(jobID, result, logger)
}

func (o *Orchestrator) completeJob(jobID string, result *domain.AnalysisResult, logger *zap.Logger) {
	if err := o.store.Complete(jobID, result); err != nil {
		logger.Warn("failed to record completion", zap.Error(err))
		return
	}
	metrics.JobsFinishedTotal.WithLabelValues(string(domain.JobCompleted)).Inc()
	logger.Info("job completed",
		zap.Int("total_posts", result.TotalPosts),
		zap.String("trend_30d", string(result.Velocity30d.Trend)),
		zap.String("trend_14d", string(result.Velocity14d.Trend)))
}

func (o *Orchestrator) failJob(jobID, message string, logger *zap.Logger) {
	if err := o.store.Fail(jobID, message); err != nil {
		logger.Warn("failed to record failure", zap.Error(err))
		return
	}
	metrics.JobsFinishedTotal.WithLabelValues(string(domain.JobFailed)).Inc()
	logger.Info("job failed", zap.String("reason", message))
}
