package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/vanluestetica/vanlu-backend/internal/config"
	"github.com/vanluestetica/vanlu-backend/internal/model/chat"
)

// Responder is the external agent capability: it turns an ordered
// transcript into a reply. May be slow, may fail; the orchestrator does
// not retry.
type Responder interface {
	Respond(ctx context.Context, transcript []chat.Message) (string, error)
}

// StreamingResponder additionally yields the reply as a chunk stream.
type StreamingResponder interface {
	Responder
	StreamingEnabled() bool
	Stream(ctx context.Context, transcript []chat.Message) (*schema.StreamReader[*schema.Message], error)
}

// ArkResponder runs the Luciano script on an Ark chat model through an
// eino chain: system prompt, replayed history, then the latest customer
// message.
type ArkResponder struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
	streaming bool
}

// NewArkResponder builds the chat model and compiles the chain.
func NewArkResponder(ctx context.Context, cfg config.AIConfig) (*ArkResponder, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile chat chain: %w", err)
	}

	return &ArkResponder{
		chatModel: chatModel,
		chain:     runnable,
		streaming: cfg.Streaming,
	}, nil
}

// StreamingEnabled reports whether SSE streaming was configured.
func (r *ArkResponder) StreamingEnabled() bool {
	return r.streaming
}

// Respond replays the transcript and returns the agent's reply text.
func (r *ArkResponder) Respond(ctx context.Context, transcript []chat.Message) (string, error) {
	input, err := chainInput(transcript)
	if err != nil {
		return "", err
	}

	response, err := r.chain.Invoke(ctx, input)
	if err != nil {
		return "", fmt.Errorf("failed to run agent chain: %w", err)
	}
	return response.Content, nil
}

// Stream replays the transcript and yields the reply as chunks.
func (r *ArkResponder) Stream(ctx context.Context, transcript []chat.Message) (*schema.StreamReader[*schema.Message], error) {
	if !r.streaming {
		return nil, fmt.Errorf("streaming disabled in configuration")
	}

	input, err := chainInput(transcript)
	if err != nil {
		return nil, err
	}

	stream, err := r.chain.Stream(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to stream agent chain output: %w", err)
	}
	return stream, nil
}

// chainInput splits the transcript into replayed history plus the query.
// The transcript must end with the customer message being answered, and
// the full history is replayed in order: the scripted flow depends on
// the agent seeing the whole conversation.
func chainInput(transcript []chat.Message) (map[string]any, error) {
	if len(transcript) == 0 {
		return nil, errors.New("transcript is empty")
	}

	last := transcript[len(transcript)-1]
	if last.Role != chat.RoleCustomer {
		return nil, errors.New("transcript must end with a customer message")
	}

	history := make([]*schema.Message, 0, len(transcript)-1)
	for _, msg := range transcript[:len(transcript)-1] {
		switch msg.Role {
		case chat.RoleCustomer:
			history = append(history, schema.UserMessage(msg.Content))
		case chat.RoleAgent:
			history = append(history, schema.AssistantMessage(msg.Content, nil))
		}
	}

	return map[string]any{
		"system":  systemPrompt,
		"history": history,
		"query":   last.Content,
	}, nil
}
