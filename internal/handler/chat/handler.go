// Package chat exposes the conversation endpoints: the main chat turn,
// session management, appointments and the service menu.
package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/model/catalog"
	chatModel "github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/observability"
	"github.com/vanluestetica/vanlu-backend/internal/service/agent"
	"github.com/vanluestetica/vanlu-backend/pkg/utils"
)

const maxMessageLength = 1000

// Handler serves the /chat route group.
type Handler struct {
	agentSvc *agent.Service
	catalog  *catalog.Catalog
	metrics  *observability.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// New creates the chat handler.
func New(agentSvc *agent.Service, cat *catalog.Catalog, metrics *observability.Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		agentSvc: agentSvc,
		catalog:  cat,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// RegisterRoutes mounts the chat route group.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat/", h.handleChat)
	r.Post("/chat", h.handleChat)
	r.Get("/chat/sessions", h.handleListSessions)
	r.Get("/chat/sessions/{sessionID}", h.handleGetSession)
	r.Delete("/chat/sessions/{sessionID}", h.handleDeleteSession)
	r.Post("/chat/appointments", h.handleCreateAppointment)
	r.Get("/chat/services", h.handleListServices)
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
		UserID    string `json:"user_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		utils.RespondError(w, http.StatusBadRequest, "message must not be empty")
		return
	}
	if utf8.RuneCountInString(payload.Message) > maxMessageLength {
		utils.RespondError(w, http.StatusBadRequest, "message exceeds 1000 characters")
		return
	}

	start := h.now()
	result, err := h.agentSvc.Chat(r.Context(), message, payload.SessionID)
	if err != nil {
		switch {
		case errors.Is(err, agent.ErrUnavailable):
			utils.RespondError(w, http.StatusServiceUnavailable, "agent service not available")
		case errors.Is(err, agent.ErrUpstream):
			if h.metrics != nil {
				h.metrics.ProviderErrors.WithLabelValues("ark").Inc()
			}
			utils.RespondError(w, http.StatusBadGateway, "agent failed to produce a reply")
		default:
			utils.RespondError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	if h.metrics != nil {
		h.metrics.ChatRequests.WithLabelValues(string(result.Intent)).Inc()
		h.metrics.ChatLatency.Observe(h.now().Sub(start).Seconds())
	}

	// Expiry sweep piggybacks on chat traffic, off the request path.
	store := h.agentSvc.Store()
	go func() {
		removed := store.SweepExpired(0)
		if h.metrics != nil {
			h.metrics.SessionsSwept.Add(float64(removed))
			h.metrics.ActiveSessions.Set(float64(store.Len()))
		}
	}()

	utils.RespondJSON(w, http.StatusOK, result)
}

type sessionInfo struct {
	SessionID    string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
	Status       string    `json:"status"`
}

func toSessionInfo(sess *chatModel.Session) sessionInfo {
	return sessionInfo{
		SessionID:    sess.ID,
		CreatedAt:    sess.CreatedAt,
		LastActivity: sess.LastActivityAt,
		MessageCount: sess.MessageCount(),
		Status:       "active",
	}
}

func (h *Handler) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.agentSvc.Store().All()

	infos := make([]sessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		infos = append(infos, toSessionInfo(sess))
	}

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":        true,
		"total_sessions": len(infos),
		"sessions":       infos,
	})
}

func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	sess, err := h.agentSvc.Store().Get(sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, toSessionInfo(sess))
}

func (h *Handler) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if !h.agentSvc.Store().Delete(sessionID) {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted successfully", sessionID),
	})
}

type appointmentRequest struct {
	Vehicle struct {
		Model string `json:"model"`
		Year  int    `json:"year"`
	} `json:"vehicle"`
	Service       string `json:"service"`
	PreferredDate string `json:"preferred_date"`
	PreferredTime string `json:"preferred_time"`
	Customer      struct {
		Name  string `json:"name"`
		Phone string `json:"phone"`
		Email string `json:"email"`
	} `json:"customer"`
	Notes     string `json:"notes"`
	SessionID string `json:"session_id"`
}

func (req *appointmentRequest) validate() error {
	if req.SessionID == "" {
		return errors.New("session_id is required")
	}
	if len(strings.TrimSpace(req.Vehicle.Model)) < 2 {
		return errors.New("vehicle model must have at least 2 characters")
	}
	if req.Vehicle.Year < 2000 || req.Vehicle.Year > 2025 {
		return errors.New("vehicle year must be between 2000 and 2025")
	}
	if len(strings.TrimSpace(req.Customer.Name)) < 3 {
		return errors.New("customer name must have at least 3 characters")
	}
	if digits := countDigits(req.Customer.Phone); digits < 10 || digits > 11 {
		return errors.New("phone must have 10 or 11 digits")
	}
	if _, err := time.Parse("2006-01-02", req.PreferredDate); err != nil {
		return errors.New("preferred_date must be in YYYY-MM-DD format")
	}
	if _, err := time.Parse("15:04", req.PreferredTime); err != nil {
		return errors.New("preferred_time must be in HH:MM format")
	}
	if len(req.Notes) > 500 {
		return errors.New("notes exceed 500 characters")
	}
	return nil
}

func countDigits(s string) int {
	count := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			count++
		}
	}
	return count
}

func (h *Handler) handleCreateAppointment(w http.ResponseWriter, r *http.Request) {
	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := req.validate(); err != nil {
		utils.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	service, ok := h.catalog.Find(req.Service)
	if !ok {
		utils.RespondError(w, http.StatusBadRequest, "unknown service: "+req.Service)
		return
	}

	store := h.agentSvc.Store()
	if _, err := store.Get(req.SessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	// Category always comes from the model name; client input is not trusted.
	category := catalog.ClassifyVehicle(req.Vehicle.Model)
	price := h.catalog.PriceFor(service.Name, category)

	appointment := chatModel.Appointment{
		Vehicle: chatModel.Vehicle{
			Model:    req.Vehicle.Model,
			Year:     req.Vehicle.Year,
			Category: category,
		},
		Service:       service.Name,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Customer: chatModel.Customer{
			Name:  req.Customer.Name,
			Phone: req.Customer.Phone,
			Email: req.Customer.Email,
		},
		Notes: req.Notes,
	}

	if err := store.SetCustomerData(req.SessionID, chatModel.CustomerData{
		Appointment:          &appointment,
		AppointmentConfirmed: true,
		TotalPrice:           price,
	}); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}
	if err := store.SetStage(req.SessionID, chatModel.StageCompleted); err != nil {
		utils.RespondError(w, http.StatusNotFound, "session not found")
		return
	}

	confirmation := fmt.Sprintf(
		"Pronto! Agendado para %s às %s, %s no seu %s %d. Te espero aqui na Vanlu! 🚗",
		req.PreferredDate, req.PreferredTime, service.Name, req.Vehicle.Model, req.Vehicle.Year,
	)

	h.logger.Info("appointment created",
		zap.String("session_id", req.SessionID),
		zap.String("service", service.Name),
		zap.String("category", string(category)),
		zap.Float64("price", price))

	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":              true,
		"appointment_id":       fmt.Sprintf("apt_%s_%d", req.SessionID, h.now().Unix()),
		"confirmation_message": confirmation,
		"scheduled_date":       req.PreferredDate,
		"service":              service.Name,
		"vehicle":              appointment.Vehicle,
		"total_price":          price,
	})
}

func (h *Handler) handleListServices(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"services": h.catalog.List(),
	})
}
