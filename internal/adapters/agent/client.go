package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"blogvelocity/internal/config"
	"blogvelocity/internal/core/domain"
	"blogvelocity/internal/core/ports"
	"blogvelocity/internal/metrics"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = 5 * time.Second
	defaultTimeout    = 5 * time.Minute

	// Task text sent to the browser-automation agent. The wording is an
	// opaque parameter of the collaborator, not a behavioral contract.
	taskTemplate = "Go to https://%s, find its blog or news section, and extract the blog title and every visible post with its title and publish date."
)

// outputSchema hints the structured shape the agent should return.
var outputSchema = map[string]interface{}{
	"title": "string or null",
	"posts": []map[string]string{
		{"title": "string", "publishDate": "YYYY-MM-DD"},
	},
}

// Client implements ports.Scraper against the browser-automation agent's
// REST API. Attempts are retried with exponential backoff on server-side
// and network failures; 4xx responses abort immediately.
type Client struct {
	baseURL    string
	apiToken   string
	client     *http.Client
	maxRetries int
	baseDelay  time.Duration
	logger     *zap.Logger
}

// NewClient creates a new agent client from config.
func NewClient(cfg config.AgentConfig, logger *zap.Logger) *Client {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = defaultBaseDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		apiToken: cfg.APIToken,
		client: &http.Client{
			// The agent drives a real browser; runs take minutes.
			Timeout: cfg.Timeout,
		},
		maxRetries: cfg.MaxRetries,
		baseDelay:  cfg.RetryBaseDelay,
		logger:     logger,
	}
}

// FetchPosts runs the scraping task for the domain.
func (c *Client) FetchPosts(ctx context.Context, domainName string) (*ports.ScrapeResult, error) {
	var lastErr error

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			delay := c.backoffDelay(attempt)
			c.logger.Info("retrying scrape",
				zap.String("domain", domainName),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, status, err := c.runTask(ctx, domainName)
		if err != nil {
			// No response received; network-level failures are retryable.
			lastErr = err
			metrics.ScrapeAttemptsTotal.WithLabelValues("network_error").Inc()
			c.logger.Warn("scrape attempt failed",
				zap.String("domain", domainName),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}

		switch {
		case status >= 500:
			lastErr = fmt.Errorf("agent returned status %d", status)
			metrics.ScrapeAttemptsTotal.WithLabelValues("server_error").Inc()
			c.logger.Warn("scrape attempt failed",
				zap.String("domain", domainName),
				zap.Int("attempt", attempt),
				zap.Int("status", status))
			continue
		case status >= 400:
			metrics.ScrapeAttemptsTotal.WithLabelValues("client_error").Inc()
			return nil, fmt.Errorf("agent rejected scrape request: status %d", status)
		}

		metrics.ScrapeAttemptsTotal.WithLabelValues("success").Inc()
		return normalizePayload(body), nil
	}

	if lastErr == nil {
		lastErr = errors.New("scraping service may be experiencing issues")
	}
	return nil, fmt.Errorf("scrape failed after %d attempts: %w", c.maxRetries, lastErr)
}

// backoffDelay returns the delay applied before the given attempt.
func (c *Client) backoffDelay(attempt int) time.Duration {
	return c.baseDelay << (attempt - 2)
}

func (c *Client) runTask(ctx context.Context, domainName string) ([]byte, int, error) {
	input := map[string]interface{}{
		"task":          fmt.Sprintf(taskTemplate, domainName),
		"output_schema": outputSchema,
	}
	body, _ := json.Marshal(input)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/run", bytes.NewReader(body))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, err
	}
	return respBody, resp.StatusCode, nil
}

// normalizePayload interprets the agent's inconsistently wrapped response.
// A payload that defeats every stage is treated as "nothing found", not
// as an error.
func normalizePayload(raw []byte) *ports.ScrapeResult {
	return buildResult(interpretPayload(raw))
}

func interpretPayload(raw []byte) map[string]interface{} {
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return parseEmbedded(string(raw))
	}
	return coerceObject(v, true)
}

// coerceObject walks one value toward the expected payload shape: plain
// object, JSON-encoded string, string with an embedded object, or an
// object double-wrapped under a "result" field.
func coerceObject(v interface{}, unwrap bool) map[string]interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		if _, ok := t["posts"]; ok {
			return t
		}
		if _, ok := t["title"]; ok {
			return t
		}
		if unwrap {
			if inner, ok := t["result"]; ok {
				if obj := coerceObject(inner, false); obj != nil {
					return obj
				}
			}
		}
		return t
	case string:
		var parsed interface{}
		if err := json.Unmarshal([]byte(t), &parsed); err == nil {
			if obj := coerceObject(parsed, unwrap); obj != nil {
				return obj
			}
		}
		return parseEmbedded(t)
	}
	return nil
}

// parseEmbedded extracts the outermost {...} span from free text.
func parseEmbedded(s string) map[string]interface{} {
	first := strings.Index(s, "{")
	last := strings.LastIndex(s, "}")
	if first < 0 || last <= first {
		return nil
	}
	var v interface{}
	if err := json.Unmarshal([]byte(s[first:last+1]), &v); err != nil {
		return nil
	}
	return coerceObject(v, true)
}

func buildResult(obj map[string]interface{}) *ports.ScrapeResult {
	result := &ports.ScrapeResult{}
	if obj == nil {
		return result
	}

	if title, ok := obj["title"].(string); ok {
		result.Title = title
	}

	items, ok := obj["posts"].([]interface{})
	if !ok {
		return result
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		post := domain.BlogPost{
			Title:       stringField(fields, "title"),
			PublishDate: stringField(fields, "publishDate"),
		}
		if post.PublishDate == "" {
			post.PublishDate = stringField(fields, "publish_date")
		}

		key := post.Title + "\x00" + post.PublishDate
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		result.Posts = append(result.Posts, post)
	}

	return result
}

func stringField(fields map[string]interface{}, name string) string {
	if val, ok := fields[name].(string); ok {
		return val
	}
	return ""
}
