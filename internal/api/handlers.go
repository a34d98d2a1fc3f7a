package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"maitred/internal/models"
	"maitred/internal/normalize"
	"maitred/internal/ordering"
	"maitred/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultOrderLimit = 20
	maxOrderLimit     = 200
)

// MessageRequest is a chat query sent over HTTP or WebSocket
type MessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// MenuItemView is a menu item as served to clients
type MenuItemView struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	ServingSize string  `json:"serving_size"`
	Price       float64 `json:"price"`
	Display     string  `json:"display"`
}

// OrderLineView is a priced line of the current order
type OrderLineView struct {
	Item      string  `json:"item"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Subtotal  float64 `json:"subtotal"`
}

// OrderView is a session's current order
type OrderView struct {
	Lines   []OrderLineView `json:"lines"`
	Total   float64         `json:"total"`
	Summary string          `json:"summary"`
}

// SessionView is a session with its conversation and order
type SessionView struct {
	ID        string           `json:"id"`
	CreatedAt time.Time        `json:"created_at"`
	Messages  []models.Message `json:"messages"`
	Order     OrderView        `json:"order"`
}

// ConfirmedOrderView is a persisted order as served to clients
type ConfirmedOrderView struct {
	ID          string          `json:"id"`
	SessionID   string          `json:"session_id"`
	Lines       []OrderLineView `json:"lines"`
	Total       float64         `json:"total"`
	ConfirmedAt time.Time       `json:"confirmed_at"`
}

func (s *Server) handleMenu(c *gin.Context) {
	if s.deps.Catalog.Empty() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "menu unavailable", "message": s.deps.Catalog.RenderMenu()})
		return
	}

	items := make([]MenuItemView, 0, s.deps.Catalog.Len())
	for _, item := range s.deps.Catalog.Items() {
		items = append(items, MenuItemView{
			Name:        normalize.Title(item.Name),
			Category:    normalize.Title(item.Category),
			ServingSize: item.ServingSize,
			Price:       item.Price.Float(),
			Display:     item.Price.Dollars(),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"categories": s.deps.Catalog.Categories(),
		"items":      items,
		"text":       s.deps.Catalog.RenderMenu(),
	})
}

func (s *Server) handleListCities(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"cities":  s.deps.Delivery.Cities(),
		"message": s.deps.Delivery.ListCities(),
	})
}

func (s *Server) handleCheckCity(c *gin.Context) {
	city := c.Param("city")
	c.JSON(http.StatusOK, gin.H{
		"city":     normalize.Title(city),
		"delivers": s.deps.Delivery.Delivers(city),
		"message":  s.deps.Delivery.CheckCity(city),
	})
}

func (s *Server) handleCreateSession(c *gin.Context) {
	sess := s.deps.Sessions.Create()
	sess.Lock()
	defer sess.Unlock()
	c.JSON(http.StatusCreated, sessionView(sess))
}

func (s *Server) handleGetSession(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		c.JSON(http.StatusOK, sessionView(sess))
	})
}

func (s *Server) handleDeleteSession(c *gin.Context) {
	if !s.deps.Sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sess, ok := s.deps.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	// Handle takes the session lock itself
	c.JSON(http.StatusOK, s.deps.Concierge.Handle(c.Request.Context(), sess, req.Text))
}

func (s *Server) handleGetOrder(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		c.JSON(http.StatusOK, orderView(sess.Ledger()))
	})
}

func (s *Server) handleConfirmOrder(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		order, err := s.deps.Finalizer.ConfirmOrder(c.Request.Context(), sess.ID, sess.Ledger())
		switch {
		case errors.Is(err, ordering.ErrEmptyOrder):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "message": ordering.MsgNothingToConfirm})
			return
		case err != nil:
			s.logger.Error("Order confirmation failed", zap.String("session", sess.ID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "order could not be saved", "message": ordering.MsgConfirmFailed})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"order":   confirmedOrderView(order),
			"message": ordering.ConfirmedMessage(order),
		})
	})
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	s.withSession(c, func(sess *session.Session) {
		c.JSON(http.StatusOK, gin.H{"message": sess.Ledger().Cancel()})
	})
}

func (s *Server) handleListOrders(c *gin.Context) {
	if s.deps.Orders == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "order history requires a database"})
		return
	}

	limit := defaultOrderLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxOrderLimit {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}

	orders, err := s.deps.Orders.Recent(c.Request.Context(), limit)
	if err != nil {
		s.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}

	views := make([]ConfirmedOrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, confirmedOrderView(o))
	}
	c.JSON(http.StatusOK, gin.H{"orders": views})
}

// handleStats returns the JSON metrics snapshot
func (s *Server) handleStats(c *gin.Context) {
	monitor := s.deps.Metrics.Monitor()
	if monitor == nil {
		c.JSON(http.StatusOK, gin.H{})
		return
	}
	c.JSON(http.StatusOK, monitor.Snapshot())
}

// withSession runs fn with the session named by the :id parameter locked
func (s *Server) withSession(c *gin.Context, fn func(*session.Session)) {
	sess, ok := s.deps.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	sess.Lock()
	defer sess.Unlock()
	fn(sess)
}

func sessionView(sess *session.Session) SessionView {
	return SessionView{
		ID:        sess.ID,
		CreatedAt: sess.CreatedAt,
		Messages:  sess.History(),
		Order:     orderView(sess.Ledger()),
	}
}

func orderView(l *ordering.Ledger) OrderView {
	return OrderView{
		Lines:   lineViews(l.Priced()),
		Total:   l.Total().Float(),
		Summary: l.Summary(),
	}
}

func confirmedOrderView(o models.ConfirmedOrder) ConfirmedOrderView {
	return ConfirmedOrderView{
		ID:          o.ID,
		SessionID:   o.SessionID,
		Lines:       lineViews(o.Lines),
		Total:       o.Total.Float(),
		ConfirmedAt: o.ConfirmedAt,
	}
}

func lineViews(lines []models.OrderLine) []OrderLineView {
	views := make([]OrderLineView, 0, len(lines))
	for _, line := range lines {
		views = append(views, OrderLineView{
			Item:      normalize.Title(line.Item),
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice.Float(),
			Subtotal:  line.Subtotal.Float(),
		})
	}
	return views
}
