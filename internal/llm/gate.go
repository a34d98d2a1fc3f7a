package llm

import (
	"context"
	"strings"
	"time"

	"maitred/internal/monitoring"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
	"go.uber.org/zap"
)

const relevancePrompt = "¿Está esta consulta relacionada con un restaurante o su menú? Responde con 'sí' o 'no'."

// Gate asks the model whether a query is about the restaurant
type Gate struct {
	caller
}

// NewGate creates a relevance gate
func NewGate(model llms.Model, timeout time.Duration, metrics *monitoring.Metrics, logger *zap.Logger) *Gate {
	return &Gate{caller: newCaller(model, timeout, metrics, logger)}
}

// IsRelevant classifies query. Only an answer starting with "no" marks it
// off-topic; anything else counts as relevant.
func (g *Gate) IsRelevant(ctx context.Context, query string) (bool, error) {
	answer, err := g.generate(ctx, "relevance", []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, relevancePrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, query),
	}, llms.WithMaxTokens(2), llms.WithTemperature(0))
	if err != nil {
		return false, err
	}
	return !strings.HasPrefix(strings.ToLower(strings.TrimSpace(answer)), "no"), nil
}
