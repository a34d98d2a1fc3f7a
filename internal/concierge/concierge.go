// Package concierge runs one chat turn: moderation, relevance check, intent routing and fallback.
package concierge

import (
	"context"
	"strings"

	"maitred/internal/intent"
	"maitred/internal/models"
	"maitred/internal/moderation"
	"maitred/internal/monitoring"
	"maitred/internal/session"

	"go.uber.org/zap"
)

// Fixed replies for turns that never reach a handler
const (
	MsgOffTopic        = "Lo siento, solo puedo ayudarte con temas relacionados al restaurante. ¿Te gustaría saber más sobre nuestro menú o realizar un pedido?"
	MsgCouldNotProcess = "Lo siento, no pude procesar tu consulta. Inténtalo nuevamente o pregunta algo relacionado con el restaurante."
	MsgRephrase        = "Lo siento, no pude entender tu consulta. ¿Podrías reformularla con algo relacionado con nuestro restaurante?"
	MsgEmptyQuery      = "¿En qué puedo ayudarte hoy? Si quieres ver nuestro menú, solo pídemelo."
)

// Turn outcomes recorded alongside the router's intent names
const (
	OutcomeEmpty     = "empty"
	OutcomeModerated = "moderated"
	OutcomeOffTopic  = "off_topic"
	OutcomeGateError = "gate_error"
)

// Gate classifies whether a query is about the restaurant
type Gate interface {
	IsRelevant(ctx context.Context, query string) (bool, error)
}

// Responder generates a free-form answer from the conversation
type Responder interface {
	Respond(ctx context.Context, history []models.Message) (string, error)
}

// Turn is the outcome of one query
type Turn struct {
	Intent string `json:"intent"`
	Reply  string `json:"reply"`
}

// Concierge answers chat queries
type Concierge struct {
	router    *intent.Router
	filter    *moderation.Filter
	gate      Gate
	responder Responder
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// Option configures a Concierge
type Option func(*Concierge)

// WithFilter screens queries before anything else sees them
func WithFilter(f *moderation.Filter) Option {
	return func(c *Concierge) { c.filter = f }
}

// WithGate rejects off-topic queries before routing
func WithGate(g Gate) Option {
	return func(c *Concierge) { c.gate = g }
}

// WithResponder answers queries no rule matched
func WithResponder(r Responder) Option {
	return func(c *Concierge) { c.responder = r }
}

// WithMetrics records turn outcomes
func WithMetrics(m *monitoring.Metrics) Option {
	return func(c *Concierge) { c.metrics = m }
}

// New creates a concierge around router
func New(router *intent.Router, logger *zap.Logger, opts ...Option) *Concierge {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Concierge{router: router, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HandleQuery answers text for sess and returns the reply
func (c *Concierge) HandleQuery(ctx context.Context, sess *session.Session, text string) string {
	return c.Handle(ctx, sess, text).Reply
}

// Handle answers text for sess. Turns of one session are serialized; the
// query and the reply are appended to the session history.
func (c *Concierge) Handle(ctx context.Context, sess *session.Session, text string) Turn {
	sess.Lock()
	defer sess.Unlock()

	query := strings.TrimSpace(text)
	if query == "" {
		c.metrics.RecordTurn(OutcomeEmpty)
		return Turn{Intent: OutcomeEmpty, Reply: MsgEmptyQuery}
	}

	sess.Append(models.RoleUser, query)
	turn := c.answer(ctx, sess, query)
	sess.Append(models.RoleAssistant, turn.Reply)

	c.metrics.RecordTurn(turn.Intent)
	c.logger.Info("Turn handled",
		zap.String("session", sess.ID),
		zap.String("intent", turn.Intent))
	return turn
}

func (c *Concierge) answer(ctx context.Context, sess *session.Session, query string) Turn {
	if c.filter.IsProfane(query) {
		c.logger.Warn("Query rejected by content filter", zap.String("session", sess.ID))
		return Turn{Intent: OutcomeModerated, Reply: moderation.MsgRefusal}
	}

	if c.gate != nil {
		relevant, err := c.gate.IsRelevant(ctx, query)
		if err != nil {
			return Turn{Intent: OutcomeGateError, Reply: MsgCouldNotProcess}
		}
		if !relevant {
			return Turn{Intent: OutcomeOffTopic, Reply: MsgOffTopic}
		}
	}

	if reply, ok := c.router.Route(ctx, sess, query); ok {
		return Turn{Intent: reply.Intent, Reply: reply.Text}
	}

	if c.responder == nil {
		return Turn{Intent: intent.IntentFallback, Reply: MsgRephrase}
	}
	answer, err := c.responder.Respond(ctx, sess.History())
	if err != nil || answer == "" {
		return Turn{Intent: intent.IntentFallback, Reply: MsgRephrase}
	}
	return Turn{Intent: intent.IntentFallback, Reply: answer}
}
