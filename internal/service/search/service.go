// Package search implements competitor web search on the Tavily API.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/config"
)

var (
	// ErrNotConfigured signals a missing TAVILY_API_KEY; callers degrade
	// instead of crashing.
	ErrNotConfigured = errors.New("search api key not configured")
	// ErrTimeout signals that the search request hit its deadline.
	ErrTimeout = errors.New("web search timeout")
)

// Result is one competitor hit.
type Result struct {
	Name    string `json:"name"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}

// Service calls the Tavily search endpoint.
type Service struct {
	apiKey     string
	baseURL    string
	maxResults int
	client     *http.Client
	logger     *zap.Logger
}

// New builds the search service. With no API key the service stays
// usable but every search returns ErrNotConfigured.
func New(cfg config.SearchConfig, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		maxResults: cfg.MaxResults,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

// Configured reports whether an API key is present.
func (s *Service) Configured() bool {
	return s.apiKey != ""
}

// SearchCompetitors finds detailing businesses around the given location.
func (s *Service) SearchCompetitors(ctx context.Context, location string) ([]Result, error) {
	query := fmt.Sprintf("estética automotiva detalhe carros %s concorrentes empresas", location)
	return s.Search(ctx, query)
}

// Search runs one Tavily query and normalizes the hits.
func (s *Service) Search(ctx context.Context, query string) ([]Result, error) {
	if !s.Configured() {
		return nil, ErrNotConfigured
	}

	payload := map[string]interface{}{
		"api_key":     s.apiKey,
		"query":       query,
		"max_results": s.maxResults,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) ||
			strings.Contains(err.Error(), "Client.Timeout") ||
			strings.Contains(err.Error(), "deadline") {
			return nil, ErrTimeout
		}
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search API returned %d", resp.StatusCode)
	}

	var apiResponse struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return nil, err
	}

	results := make([]Result, 0, len(apiResponse.Results))
	for _, item := range apiResponse.Results {
		if item.URL == "" {
			continue
		}
		name := item.Title
		if name == "" {
			name = "Unknown"
		}
		results = append(results, Result{
			Name:    name,
			URL:     item.URL,
			Snippet: item.Content,
			Source:  "tavily_search",
		})
	}

	s.logger.Info("web search completed",
		zap.String("query", query),
		zap.Int("result_count", len(results)))

	return results, nil
}
