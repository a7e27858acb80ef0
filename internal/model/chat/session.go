package chat

import (
	"time"

	"github.com/vanluestetica/vanlu-backend/internal/model/catalog"
)

// Stage is the advisory attendance phase of a session. It is stored and
// reported but only appointment creation transitions it.
type Stage string

const (
	StageInitial            Stage = "initial"
	StageSystemChoice       Stage = "system_choice"
	StageWhatsAppAttendance Stage = "whatsapp_attendance"
	StageCompleted          Stage = "completed"
)

// Session captures one ongoing customer conversation and its derived state.
type Session struct {
	ID             string        `json:"session_id"`
	Transcript     []Message     `json:"transcript"`
	CreatedAt      time.Time     `json:"created_at"`
	LastActivityAt time.Time     `json:"last_activity"`
	Stage          Stage         `json:"stage"`
	CustomerData   *CustomerData `json:"customer_data,omitempty"`
}

// MessageCount returns the transcript length.
func (s *Session) MessageCount() int {
	return len(s.Transcript)
}

// CustomerData holds provisional appointment details collected during the
// conversation.
type CustomerData struct {
	Appointment          *Appointment `json:"appointment,omitempty"`
	AppointmentConfirmed bool         `json:"appointment_confirmed"`
	TotalPrice           float64      `json:"total_price,omitempty"`
}

// Vehicle is a customer's car as described in chat. Category is always
// recomputed from Model, never trusted from caller input.
type Vehicle struct {
	Model    string           `json:"model"`
	Year     int              `json:"year"`
	Category catalog.Category `json:"category"`
}

// Customer is the contact information collected for an appointment.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Appointment composes a vehicle, a service and a requested slot. It is
// never persisted on its own, only inside a session's customer data.
type Appointment struct {
	Vehicle       Vehicle  `json:"vehicle"`
	Service       string   `json:"service"`
	PreferredDate string   `json:"preferred_date"`
	PreferredTime string   `json:"preferred_time"`
	Customer      Customer `json:"customer"`
	Notes         string   `json:"notes,omitempty"`
}
