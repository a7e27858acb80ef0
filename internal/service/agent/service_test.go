package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/vanluestetica/vanlu-backend/internal/analysis/intent"
	"github.com/vanluestetica/vanlu-backend/internal/model/chat"
	"github.com/vanluestetica/vanlu-backend/internal/service/session"
)

type stubResponder struct {
	reply string
	err   error
	seen  []chat.Message
}

func (s *stubResponder) Respond(_ context.Context, transcript []chat.Message) (string, error) {
	s.seen = append([]chat.Message(nil), transcript...)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func TestChatAppendsBothTurns(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	responder := &stubResponder{reply: "Qual o modelo do seu carro?"}
	svc := NewService(store, responder, nil, 0, nil)

	result, err := svc.Chat(context.Background(), "quanto custa a Premium?", "")
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}

	transcript, err := store.Transcript(result.SessionID)
	if err != nil {
		t.Fatalf("Transcript err: %v", err)
	}
	if len(transcript) != 2 {
		t.Fatalf("transcript length after one turn: got %d want 2", len(transcript))
	}
	if transcript[0].Role != chat.RoleCustomer || transcript[1].Role != chat.RoleAgent {
		t.Fatalf("unexpected transcript roles: %s, %s", transcript[0].Role, transcript[1].Role)
	}

	if result.Intent != intent.PriceInquiry {
		t.Fatalf("intent: got %s want %s", result.Intent, intent.PriceInquiry)
	}
	if result.NextAction != ActionRequestMoreInfo {
		t.Fatalf("next action: got %s want %s", result.NextAction, ActionRequestMoreInfo)
	}
}

func TestChatReplaysFullTranscript(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	responder := &stubResponder{reply: "Entendi!"}
	svc := NewService(store, responder, nil, 0, nil)

	first, err := svc.Chat(context.Background(), "oi", "")
	if err != nil {
		t.Fatalf("first Chat err: %v", err)
	}
	if _, err := svc.Chat(context.Background(), "é um Hilux 2022", first.SessionID); err != nil {
		t.Fatalf("second Chat err: %v", err)
	}

	// Second call must see customer, agent, customer in order.
	if len(responder.seen) != 3 {
		t.Fatalf("replayed transcript length: got %d want 3", len(responder.seen))
	}
	if responder.seen[0].Content != "oi" || responder.seen[2].Content != "é um Hilux 2022" {
		t.Fatalf("transcript order lost: %+v", responder.seen)
	}
}

func TestChatReusesSuppliedSession(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	svc := NewService(store, &stubResponder{reply: "ok"}, nil, 0, nil)

	result, err := svc.Chat(context.Background(), "oi", "session_custom")
	if err != nil {
		t.Fatalf("Chat err: %v", err)
	}
	if result.SessionID != "session_custom" {
		t.Fatalf("session id: got %s want session_custom", result.SessionID)
	}
}

func TestChatUpstreamFailurePropagates(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	svc := NewService(store, &stubResponder{err: errors.New("boom")}, nil, 0, nil)

	result, err := svc.Chat(context.Background(), "oi", "")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
	if result.Reply != "" {
		t.Fatalf("expected empty result on failure, got %+v", result)
	}
}

func TestChatWithoutResponder(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	svc := NewService(store, nil, nil, 0, nil)

	if _, err := svc.Chat(context.Background(), "oi", ""); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestFinishTurnRecordsReply(t *testing.T) {
	store := session.NewStore(session.DefaultTTL, nil)
	svc := NewService(store, &stubResponder{reply: "ignored"}, nil, 0, nil)

	sess := store.Create("")
	if _, err := store.AppendMessage(sess.ID, chat.RoleCustomer, "quero marcar"); err != nil {
		t.Fatalf("AppendMessage err: %v", err)
	}

	result, err := svc.FinishTurn(sess.ID, "quero marcar", "Tem vaga sexta. Qual horário prefere?")
	if err != nil {
		t.Fatalf("FinishTurn err: %v", err)
	}
	if result.Intent != intent.Scheduling {
		t.Fatalf("intent: got %s want %s", result.Intent, intent.Scheduling)
	}
	if result.NextAction != ActionRequestMoreInfo {
		t.Fatalf("next action: got %s", result.NextAction)
	}

	transcript, _ := store.Transcript(sess.ID)
	if len(transcript) != 2 {
		t.Fatalf("transcript length: got %d want 2", len(transcript))
	}
}
