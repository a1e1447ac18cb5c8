package domain

import "time"

// JobStatus tracks the lifecycle of an analysis job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job represents a single velocity analysis tracked by the job store.
// Exactly one of Result/Error is set once the job reaches a terminal status.
type Job struct {
	ID          string          `json:"job_id"`
	Domain      string          `json:"domain"`
	Status      JobStatus       `json:"status"`
	Result      *AnalysisResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// BlogPost is a single scraped post. PublishDate is kept as the raw text
// the agent returned; the velocity analyzer decides whether it parses.
type BlogPost struct {
	Title       string `json:"title"`
	PublishDate string `json:"publishDate"`
}

// Trend labels the direction of change between two adjacent windows.
type Trend string

const (
	TrendUp       Trend = "up"
	TrendDown     Trend = "down"
	TrendNoChange Trend = "no-change"
)

// WindowMetrics compares post counts in one trailing window against the
// window immediately before it.
type WindowMetrics struct {
	CurrentCount     int     `json:"current_count"`
	PreviousCount    int     `json:"previous_count"`
	PercentageChange float64 `json:"percentage_change"`
	Trend            Trend   `json:"trend"`
}

// VelocityMetrics holds the window comparison for each configured size.
type VelocityMetrics struct {
	Velocity30d WindowMetrics `json:"velocity_30d"`
	Velocity14d WindowMetrics `json:"velocity_14d"`
}

// ClassificationSummary aggregates the per-title listicle judgments.
// Classified is false when the classifier was skipped or failed and the
// summary is a zero-valued substitute.
type ClassificationSummary struct {
	TotalTitles        int     `json:"total_titles"`
	ListicleCount      int     `json:"listicle_count"`
	ListiclePercentage float64 `json:"listicle_percentage"`
	Classified         bool    `json:"classified"`
}

// AnalysisResult is the payload stored on a completed job.
type AnalysisResult struct {
	Domain     string `json:"domain"`
	BlogFound  bool   `json:"blog_found"`
	BlogTitle  string `json:"blog_title,omitempty"`
	TotalPosts int    `json:"total_posts"`
	VelocityMetrics
	Classification ClassificationSummary `json:"classification"`
}
