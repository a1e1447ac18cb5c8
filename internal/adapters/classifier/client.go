package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"blogvelocity/internal/config"
	"blogvelocity/internal/core/domain"
	"blogvelocity/internal/metrics"
	"blogvelocity/internal/velocity"
)

const defaultTimeout = 10 * time.Second

// Client implements ports.Classifier against the title classification
// service. Calls are best-effort; the orchestrator tolerates failures.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient creates a new classifier client from config.
func NewClient(cfg config.ClassifierConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

type classifyResponse struct {
	Judgments []struct {
		Title      string `json:"title"`
		IsListicle bool   `json:"is_listicle"`
		Reason     string `json:"reason"`
	} `json:"judgments"`
}

// Classify sends the full title list and aggregates the per-title
// judgments into a summary.
func (c *Client) Classify(ctx context.Context, titles []string) (*domain.ClassificationSummary, error) {
	body, _ := json.Marshal(map[string]interface{}{"titles": titles})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("classifier request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.ClassifierRequestsTotal.WithLabelValues("error").Inc()
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("classifier returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		metrics.ClassifierRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode classifier response: %w", err)
	}

	metrics.ClassifierRequestsTotal.WithLabelValues("success").Inc()

	summary := &domain.ClassificationSummary{
		TotalTitles: len(titles),
		Classified:  true,
	}
	for _, judgment := range parsed.Judgments {
		if judgment.IsListicle {
			summary.ListicleCount++
		}
	}
	if summary.TotalTitles > 0 {
		summary.ListiclePercentage = velocity.Round2(float64(summary.ListicleCount) / float64(summary.TotalTitles) * 100)
	}

	c.logger.Debug("classified titles",
		zap.Int("total", summary.TotalTitles),
		zap.Int("listicles", summary.ListicleCount))

	return summary, nil
}
