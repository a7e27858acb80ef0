// Package session owns the in-memory conversation state and its lifecycle.
package session

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/model/chat"
)

// ErrNotFound signals a lookup or delete on an unknown session id.
var ErrNotFound = errors.New("session not found")

// DefaultTTL is the inactivity threshold after which a session is
// eligible for the expiry sweep.
const DefaultTTL = 24 * time.Hour

// Store keeps every live session behind a single mutex. The lock is held
// only for map and transcript mutation, never across agent or network
// calls; accessors hand out deep copies so callers cannot race the map.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*chat.Session
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewStore bootstraps an empty store with the given inactivity TTL.
func NewStore(ttl time.Duration, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		sessions: make(map[string]*chat.Session),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// TTL returns the configured inactivity threshold.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create provisions a new session. When explicitID is non-empty and not
// already taken it becomes the session id, otherwise a fresh time-hashed
// id is generated.
func (s *Store) Create(explicitID string) *chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.createLocked(explicitID))
}

// Get retrieves a copy of the session or ErrNotFound.
func (s *Store) Get(id string) (*chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(session), nil
}

// GetOrCreate resolves the id to an existing session or creates one.
// An unknown or empty id is not an error, it starts a new conversation.
func (s *Store) GetOrCreate(id string) *chat.Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if session, ok := s.sessions[id]; ok {
			return clone(session)
		}
	}
	return clone(s.createLocked(id))
}

// Delete removes the session and reports whether it existed.
func (s *Store) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return false
	}
	delete(s.sessions, id)
	return true
}

// All returns a snapshot of copies of every session. Mutating the result
// does not touch the store.
func (s *Store) All() []*chat.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*chat.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		out = append(out, clone(session))
	}
	return out
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// AppendMessage appends one transcript turn and touches the activity
// timestamp. The message id is assigned here.
func (s *Store) AppendMessage(id string, role chat.Role, content string) (chat.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return chat.Message{}, ErrNotFound
	}

	now := s.now().UTC()
	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: id,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}
	session.Transcript = append(session.Transcript, message)
	session.LastActivityAt = now
	return message, nil
}

// Transcript returns a copy of the ordered conversation for the session.
func (s *Store) Transcript(id string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := make([]chat.Message, len(session.Transcript))
	copy(copied, session.Transcript)
	return copied, nil
}

// SetStage updates the advisory attendance stage.
func (s *Store) SetStage(id string, stage chat.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.Stage = stage
	return nil
}

// SetCustomerData replaces the session's provisional appointment details.
func (s *Store) SetCustomerData(id string, data chat.CustomerData) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	copied := data
	session.CustomerData = &copied
	return nil
}

// SweepExpired removes every session whose last activity is older than
// now minus threshold and returns how many were removed. A non-positive
// threshold falls back to the configured TTL. Scheduling of the sweep is
// the caller's concern; there is no background timer here.
func (s *Store) SweepExpired(threshold time.Duration) int {
	if threshold <= 0 {
		threshold = s.ttl
	}

	s.mu.Lock()
	cutoff := s.now().Add(-threshold)
	var expired []string
	for id, session := range s.sessions {
		if session.LastActivityAt.Before(cutoff) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	if len(expired) > 0 {
		s.logger.Info("cleaned up expired sessions",
			zap.Int("removed", len(expired)),
			zap.Duration("threshold", threshold))
	}
	return len(expired)
}

// createLocked assumes the write lock is held. An explicit id that is
// already taken falls back to a generated one so a live session is
// never replaced.
func (s *Store) createLocked(explicitID string) *chat.Session {
	id := explicitID
	if id == "" {
		id = s.generateIDLocked()
	} else if _, taken := s.sessions[id]; taken {
		id = s.generateIDLocked()
	}

	now := s.now().UTC()
	session := &chat.Session{
		ID:             id,
		Transcript:     make([]chat.Message, 0, 8),
		CreatedAt:      now,
		LastActivityAt: now,
		Stage:          chat.StageInitial,
	}
	s.sessions[id] = session
	return session
}

// generateIDLocked derives a session id from a nanosecond timestamp hash.
// Collisions are improbable but re-rolled anyway; the id is an opaque
// handle, not a security token.
func (s *Store) generateIDLocked() string {
	for {
		stamp := strconv.FormatInt(s.now().UnixNano(), 10)
		sum := md5.Sum([]byte(stamp))
		id := "session_" + hex.EncodeToString(sum[:])[:12]
		if _, taken := s.sessions[id]; !taken {
			return id
		}
	}
}

func clone(session *chat.Session) *chat.Session {
	copied := *session
	copied.Transcript = make([]chat.Message, len(session.Transcript))
	copy(copied.Transcript, session.Transcript)
	if session.CustomerData != nil {
		data := *session.CustomerData
		if session.CustomerData.Appointment != nil {
			appointment := *session.CustomerData.Appointment
			data.Appointment = &appointment
		}
		copied.CustomerData = &data
	}
	return &copied
}
