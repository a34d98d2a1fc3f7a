package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"maitred/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	wsReadLimit    = 64 * 1024
	wsPongWait     = 60 * time.Second
	wsPingInterval = 30 * time.Second
	wsWriteWait    = 10 * time.Second
	wsSendBuffer   = 16
)

// Origin checks are left to the CORS configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsConn is one chat client bound to a session
type wsConn struct {
	conn   *websocket.Conn
	send   chan []byte
	sess   *session.Session
	server *Server
	logger *zap.Logger
}

// handleWebSocket upgrades the request and serves chat turns for a session
// until the client disconnects. Frames are handled in arrival order.
func (s *Server) handleWebSocket(c *gin.Context) {
	sess, ok := s.deps.Sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}

	ws := &wsConn{
		conn:   conn,
		send:   make(chan []byte, wsSendBuffer),
		sess:   sess,
		server: s,
		logger: s.logger.With(zap.String("session", sess.ID)),
	}
	ws.logger.Debug("WebSocket connected")

	go ws.writePump()
	ws.readPump(context.Background())
}

// readPump reads client frames and answers each one
func (c *wsConn) readPump(ctx context.Context) {
	defer func() {
		close(c.send)
		c.logger.Debug("WebSocket disconnected")
	}()

	c.conn.SetReadLimit(wsReadLimit)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("WebSocket error", zap.Error(err))
			}
			return
		}
		c.handleMessage(ctx, message)
	}
}

// writePump writes queued replies and keeps the connection alive with pings
func (c *wsConn) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *wsConn) handleMessage(ctx context.Context, message []byte) {
	var req MessageRequest
	if err := json.Unmarshal(message, &req); err != nil {
		c.sendError("invalid message")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		c.sendError("text is required")
		return
	}

	turn := c.server.deps.Concierge.Handle(ctx, c.sess, req.Text)
	c.sendJSON(turn)
}

func (c *wsConn) sendError(message string) {
	c.sendJSON(gin.H{"error": message})
}

func (c *wsConn) sendJSON(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Error marshaling reply", zap.Error(err))
		return
	}
	select {
	case c.send <- data:
	case <-time.After(wsWriteWait):
		c.logger.Warn("WebSocket send buffer full, dropping reply")
	}
}
