// Package linkcheck verifies that every external link cited by the install
// guide still resolves.
package linkcheck

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"femcheck.openqed.org/internal/logging"
	"femcheck.openqed.org/internal/manifest"
	"femcheck.openqed.org/internal/models"
)

// Checker fetches each cited URL and records whether it resolves. Requests
// are paced per host so a documentation site never sees a burst.
type Checker struct {
	client       *http.Client
	logger       *slog.Logger
	maxBodyBytes int64
	perHostRate  rate.Limit

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewChecker builds a checker from the manifest's link settings.
func NewChecker(cfg manifest.Links, logger *slog.Logger) *Checker {
	perHost := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		perHost = rate.Limit(cfg.RequestsPerSecond)
	}

	return &Checker{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger:       logger,
		maxBodyBytes: cfg.MaxBodyBytes,
		perHostRate:  perHost,
		limiters:     make(map[string]*rate.Limiter),
	}
}

// CheckDoc reads a markdown document and verifies every URL it cites.
func (c *Checker) CheckDoc(ctx context.Context, path string) (models.LinkReport, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		return models.LinkReport{}, fmt.Errorf("reading document %s: %w", path, err)
	}

	report := models.LinkReport{
		Doc:       path,
		CheckedAt: time.Now().UTC(),
	}

	for _, link := range ExtractURLs(string(doc)) {
		result := c.checkURL(ctx, link)
		if !result.OK {
			report.Broken++
		}
		report.Results = append(report.Results, result)
	}

	logging.LogOperation(c.logger, "link_check",
		slog.String("doc", path),
		slog.Int("links", len(report.Results)),
		slog.Int("broken", report.Broken))
	return report, nil
}

func (c *Checker) checkURL(ctx context.Context, link string) models.LinkResult {
	result := models.LinkResult{URL: link}

	parsed, err := url.Parse(link)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if err := c.limiterFor(parsed.Host).Wait(ctx); err != nil {
		result.Error = err.Error()
		return result
	}

	// GET rather than HEAD: several documentation hosts reject HEAD. The
	// body read is capped, so the difference is a few kilobytes.
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	req.Header.Set("User-Agent", "femcheck-linkcheck/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer logging.SafeCloseWithLogging(resp.Body, c.logger, "link_response_body")

	if c.maxBodyBytes > 0 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, c.maxBodyBytes))
	}

	result.StatusCode = resp.StatusCode
	result.OK = resp.StatusCode < 400
	if !result.OK {
		logging.LogOperation(c.logger, "broken_link",
			slog.String("url", link),
			slog.Int("status", resp.StatusCode))
	}
	return result
}

// limiterFor returns the rate limiter for a host, creating it on first use.
func (c *Checker) limiterFor(host string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(c.perHostRate, 1)
		c.limiters[host] = limiter
	}
	return limiter
}
