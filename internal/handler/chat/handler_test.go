package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"

	"github.com/vanluestetica/vanlu-backend/internal/model/catalog"
	chatModel "github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/observability"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	"github.com/vanluestetica/vanlu-backend/internal/service/session"
)

type stubResponder struct {
	reply string
	err   error
}

func (s *stubResponder) Respond(context.Context, []chatModel.Message) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func setupRouter(responder agent.Responder) (*chi.Mux, *session.Store) {
	store := session.NewStore(session.DefaultTTL, nil)
	agentSvc := agent.NewService(store, responder, nil, 0, nil)
	handler := New(agentSvc, catalog.New(), nil, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r, store
}

func postJSON(t *testing.T, r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestChatTurn(t *testing.T) {
	r, store := setupRouter(&stubResponder{reply: "Qual o modelo do seu carro?"})

	resp := postJSON(t, r, "/chat/", map[string]string{"message": "quanto custa a Premium?"})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Reply     string `json:"response"`
		SessionID string `json:"session_id"`
		Intent    string `json:"intent_detected"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Intent != "price_inquiry" {
		t.Fatalf("intent: got %s want price_inquiry", result.Intent)
	}
	if !strings.HasPrefix(result.SessionID, "session_") {
		t.Fatalf("unexpected session id %q", result.SessionID)
	}

	transcript, err := store.Transcript(result.SessionID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(transcript) != 2 {
		t.Fatalf("transcript length: got %d want 2", len(transcript))
	}
}

func TestChatEmptyMessage(t *testing.T) {
	r, _ := setupRouter(&stubResponder{reply: "ok"})

	resp := postJSON(t, r, "/chat/", map[string]string{"message": "   "})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatMessageTooLong(t *testing.T) {
	r, _ := setupRouter(&stubResponder{reply: "ok"})

	resp := postJSON(t, r, "/chat/", map[string]string{"message": strings.Repeat("a", 1001)})

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestChatAcceptsAccentedMessageUnderLimit(t *testing.T) {
	r, _ := setupRouter(&stubResponder{reply: "ok"})

	// 600 characters but 1200 bytes; the limit counts characters.
	resp := postJSON(t, r, "/chat/", map[string]string{"message": strings.Repeat("ç", 600)})

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestChatRecordsMetrics(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	agentSvc := agent.NewService(store, &stubResponder{reply: "ok"}, nil, 0, nil)
	metrics := observability.NewMetrics("vanlu_test")
	handler := New(agentSvc, catalog.New(), metrics, nil)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)

	resp := postJSON(t, r, "/chat/", map[string]string{"message": "quanto custa a Premium?"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	if got := testutil.ToFloat64(metrics.ChatRequests.WithLabelValues("price_inquiry")); got != 1 {
		t.Fatalf("chat requests counter: got %v want 1", got)
	}

	var sample dto.Metric
	if err := metrics.ChatLatency.Write(&sample); err != nil {
		t.Fatalf("read latency histogram: %v", err)
	}
	if sample.Histogram.GetSampleCount() != 1 {
		t.Fatalf("latency sample count: got %d want 1", sample.Histogram.GetSampleCount())
	}
}

func TestChatWithoutAgent(t *testing.T) {
	r, _ := setupRouter(nil)

	resp := postJSON(t, r, "/chat/", map[string]string{"message": "oi"})

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}

func TestGetSessionNotFound(t *testing.T) {
	r, _ := setupRouter(&stubResponder{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions/session_missing", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestDeleteSession(t *testing.T) {
	r, store := setupRouter(&stubResponder{reply: "ok"})
	sess := store.Create("")

	req := httptest.NewRequest(http.MethodDelete, "/chat/sessions/"+sess.ID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if store.Len() != 0 {
		t.Fatalf("session not removed, %d left", store.Len())
	}

	// Second delete must report not found.
	resp = httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodDelete, "/chat/sessions/"+sess.ID, nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", resp.Code)
	}
}

func TestListSessions(t *testing.T) {
	r, store := setupRouter(&stubResponder{reply: "ok"})
	store.Create("")
	store.Create("")

	req := httptest.NewRequest(http.MethodGet, "/chat/sessions", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		TotalSessions int `json:"total_sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.TotalSessions != 2 {
		t.Fatalf("total sessions: got %d want 2", result.TotalSessions)
	}
}

func appointmentPayload(sessionID string) map[string]interface{} {
	return map[string]interface{}{
		"session_id":     sessionID,
		"vehicle":        map[string]interface{}{"model": "Hilux", "year": 2022},
		"service":        "Premium",
		"preferred_date": "2026-09-01",
		"preferred_time": "14:30",
		"customer": map[string]interface{}{
			"name":  "João Silva",
			"phone": "(79) 99999-8888",
		},
	}
}

func TestCreateAppointment(t *testing.T) {
	r, store := setupRouter(&stubResponder{reply: "ok"})
	sess := store.Create("")

	resp := postJSON(t, r, "/chat/appointments", appointmentPayload(sess.ID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		Success             bool    `json:"success"`
		AppointmentID       string  `json:"appointment_id"`
		ConfirmationMessage string  `json:"confirmation_message"`
		TotalPrice          float64 `json:"total_price"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	// Hilux is category G, so Premium prices at 150.
	if result.TotalPrice != 150.0 {
		t.Fatalf("total price: got %v want 150", result.TotalPrice)
	}
	if !strings.HasPrefix(result.AppointmentID, fmt.Sprintf("apt_%s_", sess.ID)) {
		t.Fatalf("unexpected appointment id %q", result.AppointmentID)
	}
	if !strings.Contains(result.ConfirmationMessage, "Agendado para 2026-09-01 às 14:30") {
		t.Fatalf("unexpected confirmation message %q", result.ConfirmationMessage)
	}

	updated, err := store.Get(sess.ID)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if updated.Stage != chatModel.StageCompleted {
		t.Fatalf("stage: got %s want %s", updated.Stage, chatModel.StageCompleted)
	}
	if updated.CustomerData == nil || !updated.CustomerData.AppointmentConfirmed {
		t.Fatalf("customer data not recorded: %+v", updated.CustomerData)
	}
	if updated.CustomerData.Appointment.Vehicle.Category != catalog.CategoryLarge {
		t.Fatalf("category: got %s want %s", updated.CustomerData.Appointment.Vehicle.Category, catalog.CategoryLarge)
	}
}

func TestCreateAppointmentUnknownSession(t *testing.T) {
	r, _ := setupRouter(&stubResponder{reply: "ok"})

	resp := postJSON(t, r, "/chat/appointments", appointmentPayload("session_missing"))

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}

func TestCreateAppointmentValidation(t *testing.T) {
	r, store := setupRouter(&stubResponder{reply: "ok"})
	sess := store.Create("")

	cases := []struct {
		name   string
		mutate func(map[string]interface{})
	}{
		{"year too old", func(p map[string]interface{}) {
			p["vehicle"] = map[string]interface{}{"model": "Hilux", "year": 1999}
		}},
		{"short model", func(p map[string]interface{}) {
			p["vehicle"] = map[string]interface{}{"model": "H", "year": 2022}
		}},
		{"short name", func(p map[string]interface{}) {
			p["customer"] = map[string]interface{}{"name": "Jo", "phone": "79999998888"}
		}},
		{"bad phone", func(p map[string]interface{}) {
			p["customer"] = map[string]interface{}{"name": "João Silva", "phone": "1234"}
		}},
		{"bad date", func(p map[string]interface{}) {
			p["preferred_date"] = "01/09/2026"
		}},
		{"bad time", func(p map[string]interface{}) {
			p["preferred_time"] = "2pm"
		}},
		{"unknown service", func(p map[string]interface{}) {
			p["service"] = "Enceramento"
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := appointmentPayload(sess.ID)
			tc.mutate(payload)

			resp := postJSON(t, r, "/chat/appointments", payload)
			if resp.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
			}
		})
	}
}

func TestListServices(t *testing.T) {
	r, _ := setupRouter(&stubResponder{reply: "ok"})

	req := httptest.NewRequest(http.MethodGet, "/chat/services", nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	var result struct {
		Services []catalog.Service `json:"services"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(result.Services) != 7 {
		t.Fatalf("service count: got %d want 7", len(result.Services))
	}
}
