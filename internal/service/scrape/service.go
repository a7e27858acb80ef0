// Package scrape fronts the Firecrawl scraping API. The integration is
// still a placeholder: requests are validated and gated on credentials,
// but no remote call is made yet.
package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/config"
)

// ErrNotConfigured signals a missing FIRECRAWL_API_KEY; scraping
// endpoints degrade gracefully instead of crashing.
var ErrNotConfigured = errors.New("firecrawl api key not configured")

// Options mirror the Firecrawl scrape parameters we accept.
type Options struct {
	Formats         []string `json:"formats"`
	OnlyMainContent bool     `json:"only_main_content"`
	WaitFor         int      `json:"wait_for,omitempty"`
}

// ScrapeResult is the content extracted from one URL.
type ScrapeResult struct {
	URL      string                 `json:"url"`
	Content  map[string]interface{} `json:"content"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Message  string                 `json:"message,omitempty"`
}

// CrawlStatus enumerates crawl lifecycle states.
type CrawlStatus string

const (
	CrawlStarted   CrawlStatus = "started"
	CrawlCompleted CrawlStatus = "completed"
	CrawlFailed    CrawlStatus = "failed"
)

// CrawlResult reports a started crawl.
type CrawlResult struct {
	CrawlID string      `json:"crawl_id"`
	Status  CrawlStatus `json:"status"`
	Message string      `json:"message,omitempty"`
}

// Service holds the Firecrawl client state.
type Service struct {
	apiKey  string
	baseURL string
	client  *http.Client
	logger  *zap.Logger
	now     func() time.Time
}

// New builds the scrape service.
func New(cfg config.ScrapeConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger,
		now:     time.Now,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.apiKey != ""
}

// ScrapeURL extracts content from a single URL. Until the Firecrawl
// integration lands this returns the documented placeholder payload.
// TODO: issue the real /scrape request once the Firecrawl plan is active.
func (s *Service) ScrapeURL(ctx context.Context, url string, _ Options) (ScrapeResult, error) {
	if !s.Configured() {
		return ScrapeResult{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return ScrapeResult{}, err
	}

	s.logger.Info("scrape requested", zap.String("url", url))

	return ScrapeResult{
		URL:     url,
		Content: map[string]interface{}{"status": "placeholder"},
		Message: "firecrawl integration coming soon",
	}, nil
}

// CrawlSite starts a site crawl and returns its handle. Placeholder:
// the crawl id is issued but no pages are fetched.
func (s *Service) CrawlSite(ctx context.Context, url string, limit, maxDepth int) (CrawlResult, error) {
	if !s.Configured() {
		return CrawlResult{}, ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return CrawlResult{}, err
	}

	crawlID := fmt.Sprintf("crawl_%d", s.now().Unix())
	s.logger.Info("crawl started",
		zap.String("url", url),
		zap.String("crawl_id", crawlID),
		zap.Int("limit", limit),
		zap.Int("max_depth", maxDepth))

	return CrawlResult{
		CrawlID: crawlID,
		Status:  CrawlStarted,
		Message: "crawl started successfully",
	}, nil
}
