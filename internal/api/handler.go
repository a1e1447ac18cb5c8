package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blogvelocity/internal/core/ports"
	"blogvelocity/internal/service"
)

// Handler exposes the velocity analysis endpoints.
type Handler struct {
	orchestrator *service.Orchestrator
	store        ports.JobStore
	logger       *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(orchestrator *service.Orchestrator, store ports.JobStore, logger *zap.Logger) *Handler {
	return &Handler{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger,
	}
}

// SubmitAnalysis accepts a domain and returns the pending job id.
func (h *Handler) SubmitAnalysis(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	domainName := normalizeDomain(extractDomain(body))
	if domainName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request must include a domain"})
		return
	}

	job := h.orchestrator.Submit(domainName)
	c.JSON(http.StatusAccepted, gin.H{
		"job_id": job.ID,
		"domain": job.Domain,
		"status": job.Status,
	})
}

// GetAnalysis returns the current state of a job, including the result
// once completed or the error message once failed.
func (h *Handler) GetAnalysis(c *gin.Context) {
	job, err := h.store.Get(c.Param("jobId"))
	if err != nil {
		if errors.Is(err, ports.ErrJobNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "job not found"})
			return
		}
		h.logger.Error("job lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up job"})
		return
	}

	c.JSON(http.StatusOK, job)
}

// extractDomain pulls the domain string out of the request body, which
// clients send as a JSON object ({"domain": ...} or {"url": ...}), a
// JSON string, or raw text.
func extractDomain(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}

	var obj struct {
		Domain string `json:"domain"`
		URL    string `json:"url"`
	}
	if err := json.Unmarshal(trimmed, &obj); err == nil {
		if obj.Domain != "" {
			return obj.Domain
		}
		return obj.URL
	}

	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}

	return string(trimmed)
}

// normalizeDomain reduces a URL-ish input to a bare lowercase hostname.
func normalizeDomain(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	if strings.Contains(s, "://") {
		if u, err := url.Parse(s); err == nil && u.Host != "" {
			s = u.Host
		}
	}
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(strings.ToLower(s), "www.")
	return s
}
