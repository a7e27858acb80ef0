// Package scraping exposes the market-research endpoints: scrape, crawl,
// competitor search and competitor analysis.
package scraping

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/service/competitor"
	"github.com/vanluestetica/vanlu-backend/internal/service/scrape"
	"github.com/vanluestetica/vanlu-backend/internal/service/search"
	"github.com/vanluestetica/vanlu-backend/pkg/utils"
)

// Handler serves the /scraping route group.
type Handler struct {
	scrapeSvc     *scrape.Service
	competitorSvc *competitor.Service
	logger        *zap.Logger
}

// New creates the scraping handler.
func New(scrapeSvc *scrape.Service, competitorSvc *competitor.Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{scrapeSvc: scrapeSvc, competitorSvc: competitorSvc, logger: logger}
}

// RegisterRoutes mounts the scraping route group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/scraping/scrape", h.handleScrape)
	r.Post("/scraping/crawl", h.handleCrawl)
	r.Post("/scraping/search", h.handleSearch)
	r.Post("/scraping/analyze", h.handleAnalyze)
}

func validURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

func (h *Handler) handleScrape(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL             string   `json:"url"`
		Formats         []string `json:"formats"`
		OnlyMainContent *bool    `json:"only_main_content"`
		WaitFor         int      `json:"wait_for"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validURL(req.URL) {
		utils.RespondError(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}

	opts := scrape.Options{Formats: req.Formats, OnlyMainContent: true, WaitFor: req.WaitFor}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{"markdown"}
	}
	if req.OnlyMainContent != nil {
		opts.OnlyMainContent = *req.OnlyMainContent
	}

	result, err := h.scrapeSvc.ScrapeURL(r.Context(), req.URL, opts)
	if err != nil {
		if errors.Is(err, scrape.ErrNotConfigured) {
			utils.RespondError(w, http.StatusServiceUnavailable, "scraping service not available")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"url":      result.URL,
		"content":  result.Content,
		"metadata": result.Metadata,
		"message":  result.Message,
	})
}

func (h *Handler) handleCrawl(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL      string `json:"url"`
		Limit    int    `json:"limit"`
		MaxDepth int    `json:"max_depth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !validURL(req.URL) {
		utils.RespondError(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}
	if req.Limit < 1 || req.Limit > 100 {
		req.Limit = 10
	}
	if req.MaxDepth < 1 || req.MaxDepth > 10 {
		req.MaxDepth = 3
	}

	result, err := h.scrapeSvc.CrawlSite(r.Context(), req.URL, req.Limit, req.MaxDepth)
	if err != nil {
		if errors.Is(err, scrape.ErrNotConfigured) {
			utils.RespondError(w, http.StatusServiceUnavailable, "scraping service not available")
			return
		}
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"crawl_id": result.CrawlID,
		"status":   result.Status,
		"message":  result.Message,
	})
}

func (h *Handler) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		utils.RespondError(w, http.StatusBadRequest, "query parameter is required")
		return
	}
	location := r.URL.Query().Get("location")
	if location == "" {
		location = "Aracaju"
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			utils.RespondError(w, http.StatusBadRequest, "limit must be between 1 and 50")
			return
		}
		limit = parsed
	}

	results, err := h.competitorSvc.SearchCompetitors(r.Context(), location)
	if err != nil {
		switch {
		case errors.Is(err, search.ErrNotConfigured):
			utils.RespondError(w, http.StatusServiceUnavailable, "competitor service not available")
		case errors.Is(err, search.ErrTimeout):
			utils.RespondError(w, http.StatusGatewayTimeout, "web search timed out")
		default:
			h.logger.Error("competitor search failed", zap.Error(err))
			utils.RespondError(w, http.StatusInternalServerError, "competitor search failed")
		}
		return
	}

	totalFound := len(results)
	if totalFound > limit {
		results = results[:limit]
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"query":       query,
		"results":     results,
		"total_found": totalFound,
	})
}

func (h *Handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if !validURL(url) {
		utils.RespondError(w, http.StatusBadRequest, "url must start with http:// or https://")
		return
	}

	analysis, err := h.competitorSvc.AnalyzeCompetitor(r.Context(), url)
	if err != nil {
		if errors.Is(err, scrape.ErrNotConfigured) {
			utils.RespondError(w, http.StatusServiceUnavailable, "competitor service not available")
			return
		}
		h.logger.Error("competitor analysis failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "competitor analysis failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, analysis)
}
