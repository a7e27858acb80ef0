// Package agent orchestrates one chat turn: session resolution,
// transcript replay into the external agent, and intent/next-action
// derivation.
package agent

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vanluestetica/vanlu-backend/internal/analysis/intent"
	"github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/service/session"
)

var (
	// ErrUnavailable signals that no agent capability was configured.
	ErrUnavailable = errors.New("agent service not available")
	// ErrUpstream wraps failures of the external agent capability.
	ErrUpstream = errors.New("agent upstream failure")
)

// ChatResult is the structured outcome of one conversation turn.
type ChatResult struct {
	Reply      string       `json:"response"`
	SessionID  string       `json:"session_id"`
	Intent     intent.Label `json:"intent_detected"`
	NextAction NextAction   `json:"next_action,omitempty"`
}

// Service is the conversation orchestrator.
type Service struct {
	store       *session.Store
	responder   Responder
	interpreter ReplyInterpreter
	timeout     time.Duration
	logger      *zap.Logger
}

// NewService wires the orchestrator. responder may be nil when agent
// credentials are missing; Chat then reports ErrUnavailable.
func NewService(store *session.Store, responder Responder, interpreter ReplyInterpreter, timeout time.Duration, logger *zap.Logger) *Service {
	if interpreter == nil {
		interpreter = PhraseInterpreter{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:       store,
		responder:   responder,
		interpreter: interpreter,
		timeout:     timeout,
		logger:      logger,
	}
}

// Available reports whether an agent capability is wired.
func (s *Service) Available() bool {
	return s.responder != nil
}

// Store exposes the session store to handlers sharing this service.
func (s *Service) Store() *session.Store {
	return s.store
}

// Chat processes one customer message. An unknown or absent session id
// starts a new conversation; the agent sees the full transcript
// including the message just appended. The store lock is never held
// across the agent call.
func (s *Service) Chat(ctx context.Context, message, sessionID string) (ChatResult, error) {
	if s.responder == nil {
		return ChatResult{}, ErrUnavailable
	}

	sess := s.store.GetOrCreate(sessionID)

	if _, err := s.store.AppendMessage(sess.ID, chat.RoleCustomer, message); err != nil {
		return ChatResult{}, err
	}

	transcript, err := s.store.Transcript(sess.ID)
	if err != nil {
		return ChatResult{}, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	reply, err := s.responder.Respond(ctx, transcript)
	if err != nil {
		s.logger.Error("agent call failed",
			zap.String("session_id", sess.ID),
			zap.Error(err))
		return ChatResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	if _, err := s.store.AppendMessage(sess.ID, chat.RoleAgent, reply); err != nil {
		return ChatResult{}, err
	}

	// Intent comes from the raw customer message, not the reply.
	label := intent.Classify(message)
	action := s.interpreter.NextAction(reply)

	s.logger.Info("chat turn completed",
		zap.String("session_id", sess.ID),
		zap.String("intent", string(label)),
		zap.String("next_action", string(action)),
		zap.Int("reply_length", len(reply)))

	return ChatResult{
		Reply:      reply,
		SessionID:  sess.ID,
		Intent:     label,
		NextAction: action,
	}, nil
}

// FinishTurn records an agent reply produced outside Chat (the SSE and
// websocket paths) and derives the turn's classification.
func (s *Service) FinishTurn(sessionID, message, reply string) (ChatResult, error) {
	if _, err := s.store.AppendMessage(sessionID, chat.RoleAgent, reply); err != nil {
		return ChatResult{}, err
	}

	return ChatResult{
		Reply:      reply,
		SessionID:  sessionID,
		Intent:     intent.Classify(message),
		NextAction: s.interpreter.NextAction(reply),
	}, nil
}
