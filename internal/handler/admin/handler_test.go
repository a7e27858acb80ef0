package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/vanluestetica/vanlu-backend/internal/config"
	chatModel "github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	"github.com/vanluestetica/vanlu-backend/internal/service/scrape"
	"github.com/vanluestetica/vanlu-backend/internal/service/search"
	"github.com/vanluestetica/vanlu-backend/internal/service/session"
)

type stubResponder struct{}

func (stubResponder) Respond(context.Context, []chatModel.Message) (string, error) {
	return "ok", nil
}

func setupRouter(withAgent bool) (*chi.Mux, *session.Store) {
	store := session.NewStore(time.Hour, nil)

	var responder agent.Responder
	if withAgent {
		responder = stubResponder{}
	}
	agentSvc := agent.NewService(store, responder, nil, 0, nil)
	searchSvc := search.New(config.SearchConfig{}, nil)
	scrapeSvc := scrape.New(config.ScrapeConfig{}, nil)

	handler := New(agentSvc, searchSvc, scrapeSvc, nil, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func TestHealthDegradedWithoutServices(t *testing.T) {
	r, _ := setupRouter(false)

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		Status   string            `json:"status"`
		Services map[string]string `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Status != "degraded" {
		t.Fatalf("status: got %s want degraded", result.Status)
	}
	if result.Services["agent"] != "stopped" {
		t.Fatalf("agent status: got %s want stopped", result.Services["agent"])
	}
}

func TestHealthReportsRunningAgent(t *testing.T) {
	r, _ := setupRouter(true)

	req := httptest.NewRequest(http.MethodGet, "/admin/health", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var result struct {
		Services map[string]string `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Services["agent"] != "running" {
		t.Fatalf("agent status: got %s want running", result.Services["agent"])
	}
}

func TestCleanupRemovesExpiredSessions(t *testing.T) {
	r, store := setupRouter(true)

	sess := store.Create("")
	if _, err := store.AppendMessage(sess.ID, chatModel.RoleCustomer, "oi"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	// Nothing expired yet, cleanup removes zero.
	req := httptest.NewRequest(http.MethodPost, "/admin/cleanup", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		SessionsRemoved int `json:"sessions_removed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.SessionsRemoved != 0 {
		t.Fatalf("sessions removed: got %d want 0", result.SessionsRemoved)
	}
	if store.Len() != 1 {
		t.Fatalf("live sessions: got %d want 1", store.Len())
	}
}

func TestStats(t *testing.T) {
	r, store := setupRouter(true)

	sess := store.Create("")
	store.AppendMessage(sess.ID, chatModel.RoleCustomer, "oi")
	store.AppendMessage(sess.ID, chatModel.RoleAgent, "olá!")

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	var result struct {
		TotalSessions int `json:"total_sessions"`
		TotalMessages int `json:"total_messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.TotalSessions != 1 || result.TotalMessages != 2 {
		t.Fatalf("stats: got %d sessions / %d messages, want 1 / 2", result.TotalSessions, result.TotalMessages)
	}
}
