// Package analytics derives aggregate statistics from live sessions.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/vanluestetica/vanlu-backend/internal/analysis/intent"
	"github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/service/session"
)

// IntentCount pairs an intent label with its observed frequency.
type IntentCount struct {
	Intent intent.Label `json:"intent"`
	Count  int          `json:"count"`
}

// ConversationStats summarizes every live conversation.
type ConversationStats struct {
	TotalSessions         int           `json:"total_conversations"`
	CompletedAppointments int           `json:"completed_appointments"`
	ConversionRate        float64       `json:"conversion_rate"`
	TopIntents            []IntentCount `json:"top_intents"`
}

// SessionStats summarizes one session.
type SessionStats struct {
	SessionID       string     `json:"session_id"`
	CreatedAt       time.Time  `json:"created_at"`
	LastActivity    time.Time  `json:"last_activity"`
	MessageCount    int        `json:"message_count"`
	DurationSeconds float64    `json:"duration_seconds"`
	Stage           chat.Stage `json:"stage"`
	HasCustomerData bool       `json:"has_customer_data"`
}

// Service computes statistics on demand. Intents are reclassified on
// every scan rather than cached; the workload is small and the rules
// may evolve between scans.
type Service struct {
	store *session.Store
}

// New builds the analytics service over the shared session store.
func New(store *session.Store) *Service {
	return &Service{store: store}
}

const topIntentLimit = 5

// ConversationStats scans a snapshot of all sessions. The snapshot is
// taken under the store lock and the computation runs without it;
// slightly stale results are acceptable here.
func (s *Service) ConversationStats() ConversationStats {
	sessions := s.store.All()

	counts := make(map[intent.Label]int)
	var firstSeen []intent.Label
	completed := 0

	for _, sess := range sessions {
		for _, msg := range sess.Transcript {
			if msg.Role != chat.RoleCustomer {
				continue
			}
			label := intent.Classify(msg.Content)
			if counts[label] == 0 {
				firstSeen = append(firstSeen, label)
			}
			counts[label]++
		}

		if sess.CustomerData != nil && sess.CustomerData.AppointmentConfirmed {
			completed++
		}
	}

	total := len(sessions)
	rate := 0.0
	if total > 0 {
		rate = math.Round(float64(completed)/float64(total)*100*100) / 100
	}

	// Stable sort keeps first-encountered order for equal counts.
	top := make([]IntentCount, 0, len(firstSeen))
	for _, label := range firstSeen {
		top = append(top, IntentCount{Intent: label, Count: counts[label]})
	}
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Count > top[j].Count
	})
	if len(top) > topIntentLimit {
		top = top[:topIntentLimit]
	}

	return ConversationStats{
		TotalSessions:         total,
		CompletedAppointments: completed,
		ConversionRate:        rate,
		TopIntents:            top,
	}
}

// SessionStats reports on one session; unknown ids surface the store's
// not-found error.
func (s *Service) SessionStats(id string) (SessionStats, error) {
	sess, err := s.store.Get(id)
	if err != nil {
		return SessionStats{}, err
	}

	return SessionStats{
		SessionID:       sess.ID,
		CreatedAt:       sess.CreatedAt,
		LastActivity:    sess.LastActivityAt,
		MessageCount:    sess.MessageCount(),
		DurationSeconds: sess.LastActivityAt.Sub(sess.CreatedAt).Seconds(),
		Stage:           sess.Stage,
		HasCustomerData: sess.CustomerData != nil,
	}, nil
}
