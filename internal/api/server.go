// Package api exposes the assistant over HTTP and WebSocket.
package api

import (
	"context"
	"net/http"
	"time"

	"maitred/internal/catalog"
	"maitred/internal/concierge"
	"maitred/internal/config"
	"maitred/internal/delivery"
	"maitred/internal/models"
	"maitred/internal/monitoring"
	"maitred/internal/ordering"
	"maitred/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// OrderLister lists persisted orders, newest first
type OrderLister interface {
	Recent(ctx context.Context, limit int) ([]models.ConfirmedOrder, error)
}

// Deps are the components the API serves
type Deps struct {
	Catalog   *catalog.Catalog
	Delivery  *delivery.Checker
	Sessions  *session.Manager
	Concierge *concierge.Concierge
	Finalizer *ordering.Finalizer
	Orders    OrderLister
	Metrics   *monitoring.Metrics
}

// Server represents the HTTP handler of the assistant
type Server struct {
	Router *gin.Engine
	deps   Deps
	logger *zap.Logger
}

// NewServer creates the API server. Routes under /api/v1 and /ws require a
// token when auth is enabled.
func NewServer(deps Deps, cfg config.ServerConfig, auth config.AuthConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	s := &Server{Router: router, deps: deps, logger: logger}
	s.setupRoutes(auth)
	return s
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = origins
		cc.AllowCredentials = true
	}
	return cc
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes(auth config.AuthConfig) {
	s.Router.GET("/health", s.handleHealth)

	v1 := s.Router.Group("/api/v1")
	ws := s.Router.Group("/ws")
	if auth.Enabled() {
		v1.Use(AuthMiddleware(auth.JWTSecret))
		ws.Use(AuthMiddleware(auth.JWTSecret))
	}

	{
		v1.GET("/menu", s.handleMenu)
		v1.GET("/delivery/cities", s.handleListCities)
		v1.GET("/delivery/cities/:city", s.handleCheckCity)

		v1.POST("/sessions", s.handleCreateSession)
		v1.GET("/sessions/:id", s.handleGetSession)
		v1.DELETE("/sessions/:id", s.handleDeleteSession)
		v1.POST("/sessions/:id/messages", s.handleMessage)

		v1.GET("/sessions/:id/order", s.handleGetOrder)
		v1.POST("/sessions/:id/order/confirm", s.handleConfirmOrder)
		v1.POST("/sessions/:id/order/cancel", s.handleCancelOrder)

		v1.GET("/orders", s.handleListOrders)
		v1.GET("/stats", s.handleStats)
	}

	ws.GET("/sessions/:id", s.handleWebSocket)
}

// handleHealth reports liveness and reference data counts
func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"menu_items": s.deps.Catalog.Len(),
		"cities":     s.deps.Delivery.CityCount(),
		"sessions":   s.deps.Sessions.Len(),
	})
}
