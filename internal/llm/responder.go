package llm

import (
	"context"
	"strings"
	"time"

	"maitred/internal/models"
	"maitred/internal/monitoring"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

// Responder answers free-form queries from the full conversation
type Responder struct {
	caller
	systemPrompt string
}

// NewResponder creates a responder. A non-empty systemPrompt is sent ahead of the history.
func NewResponder(model llms.Model, timeout time.Duration, systemPrompt string, metrics *monitoring.Metrics, logger *zap.Logger) *Responder {
	return &Responder{caller: newCaller(model, timeout, metrics, logger), systemPrompt: systemPrompt}
}

// Respond generates the next assistant message for history
func (r *Responder) Respond(ctx context.Context, history []models.Message) (string, error) {
	messages := make([]llms.MessageContent, 0, len(history)+1)
	if r.systemPrompt != "" {
		messages = append(messages, llms.TextParts(schema.ChatMessageTypeSystem, r.systemPrompt))
	}
	for _, msg := range history {
		messages = append(messages, llms.TextParts(messageType(msg.Role), msg.Content))
	}

	answer, err := r.generate(ctx, "response", messages, llms.WithMaxTokens(150), llms.WithTemperature(0.7))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}

func messageType(role models.Role) schema.ChatMessageType {
	switch role {
	case models.RoleSystem:
		return schema.ChatMessageTypeSystem
	case models.RoleAssistant:
		return schema.ChatMessageTypeAI
	default:
		return schema.ChatMessageTypeHuman
	}
}
