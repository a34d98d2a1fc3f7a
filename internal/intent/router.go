// Package intent maps a chat query to the operation it asks for.
package intent

import (
	"context"
	"strings"

	"maitred/internal/catalog"
	"maitred/internal/delivery"
	"maitred/internal/ordering"
	"maitred/internal/session"

	"go.uber.org/zap"
)

// Deps are the components the rules act on
type Deps struct {
	Catalog   *catalog.Catalog
	Delivery  *delivery.Checker
	Finalizer *ordering.Finalizer
}

// Reply is the routed answer to a query
type Reply struct {
	Intent string `json:"intent"`
	Text   string `json:"text"`
}

// Router evaluates an ordered rule table; the first matching rule handles the query
type Router struct {
	deps   Deps
	vocab  Vocabulary
	rules  []Rule
	logger *zap.Logger
}

// NewRouter creates a router. Empty vocabulary lists take their defaults.
func NewRouter(deps Deps, vocab Vocabulary, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Delivery == nil {
		deps.Delivery = delivery.NewChecker(nil, logger)
	}
	if deps.Finalizer == nil {
		deps.Finalizer = ordering.NewFinalizer(nil, nil, logger)
	}
	r := &Router{deps: deps, vocab: vocab.WithDefaults(), logger: logger}
	r.rules = r.buildRules()
	return r
}

// Rules returns the routing table in priority order
func (r *Router) Rules() []Rule {
	return append([]Rule(nil), r.rules...)
}

// Classify returns the first rule matching query
func (r *Router) Classify(query string) (Rule, Match, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return Rule{}, Match{}, false
	}
	for _, rule := range r.rules {
		if m, ok := rule.Match(q); ok {
			return rule, m, true
		}
	}
	return Rule{}, Match{}, false
}

// Route answers query for sess. It reports false when no rule matched and
// the caller should fall back to the generative responder. The caller must
// hold the session lock.
func (r *Router) Route(ctx context.Context, sess *session.Session, query string) (Reply, bool) {
	rule, m, ok := r.Classify(query)
	if !ok {
		return Reply{}, false
	}

	r.logger.Debug("Query routed",
		zap.String("session", sess.ID),
		zap.String("intent", rule.Name))

	if rule.NeedsMenu && r.deps.Catalog.Empty() {
		return Reply{Intent: rule.Name, Text: catalog.MsgMenuUnavailable}, true
	}
	return Reply{Intent: rule.Name, Text: rule.Handle(ctx, sess, m)}, true
}
