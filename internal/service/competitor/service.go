// Package competitor combines search and scraping into market research.
package competitor

import (
	"context"

	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/service/scrape"
	"github.com/vanluestetica/vanlu-backend/internal/service/search"
)

// Analysis is the structured profile of one competitor website. The
// extraction logic is still pending; fields are populated as far as the
// scrape placeholder allows.
type Analysis struct {
	CompetitorName  string                 `json:"competitor_name"`
	Website         string                 `json:"website"`
	ServicesOffered []string               `json:"services_offered"`
	PriceRanges     map[string]interface{} `json:"price_ranges"`
	ContactInfo     map[string]interface{} `json:"contact_info"`
	Strengths       []string               `json:"strengths"`
	Weaknesses      []string               `json:"weaknesses"`
}

// Service drives competitor discovery and analysis.
type Service struct {
	search *search.Service
	scrape *scrape.Service
	logger *zap.Logger
}

// New wires the competitor service over its two capabilities.
func New(searchSvc *search.Service, scrapeSvc *scrape.Service, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{search: searchSvc, scrape: scrapeSvc, logger: logger}
}

// SearchCompetitors lists detailing businesses around a location.
func (s *Service) SearchCompetitors(ctx context.Context, location string) ([]search.Result, error) {
	return s.search.SearchCompetitors(ctx, location)
}

// AnalyzeCompetitor scrapes a competitor site and extracts its profile.
// TODO: extract services, prices and contacts once real scrape content
// is available.
func (s *Service) AnalyzeCompetitor(ctx context.Context, url string) (Analysis, error) {
	result, err := s.scrape.ScrapeURL(ctx, url, scrape.Options{
		Formats:         []string{"markdown"},
		OnlyMainContent: true,
	})
	if err != nil {
		return Analysis{}, err
	}

	s.logger.Info("competitor analysis pending extraction",
		zap.String("url", result.URL))

	return Analysis{
		CompetitorName:  "Analysis Pending",
		Website:         url,
		ServicesOffered: []string{},
		PriceRanges:     map[string]interface{}{},
		ContactInfo:     map[string]interface{}{},
		Strengths:       []string{},
		Weaknesses:      []string{},
	}, nil
}
