package transport

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"designcollab/internal/config"
	"designcollab/internal/middleware"
	"designcollab/internal/session"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = (pongWait * 9) / 10
	writeTimeout = 10 * time.Second
)

// Handler upgrades HTTP requests to websocket connections and runs the
// per-connection read loop that feeds the session coordinator.
type Handler struct {
	coordinator *session.Coordinator
	ipLimiter   *middleware.ConnLimiter
	limits      config.Limits
	logger      *zap.Logger
	upgrader    websocket.Upgrader
}

func NewHandler(coordinator *session.Coordinator, ipLimiter *middleware.ConnLimiter, cfg *config.Config, logger *zap.Logger) *Handler {
	h := &Handler{
		coordinator: coordinator,
		ipLimiter:   ipLimiter,
		limits:      cfg.Limits,
		logger:      logger,
	}
	origins := cfg.AllowedOrigins
	h.upgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			// No whitelist configured means local development; allow all.
			if len(origins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range origins {
				if origin == allowed {
					return true
				}
			}
			return false
		},
	}
	return h
}

// ClientIP extracts the real client IP from the request, preferring proxy
// headers over RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	clientIP := ClientIP(r)
	if !h.ipLimiter.Allow(clientIP) {
		h.logger.Warn("connection rate limit exceeded", zap.String("ip", clientIP))
		http.Error(w, "Too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s := session.New(conn, h.limits.MessagesPerSecond, h.limits.BurstSize)
	h.logger.Info("client connected",
		zap.String("session_id", s.ID()),
		zap.String("ip", clientIP))

	h.run(r.Context(), conn, s)

	// Read loop exited: sweep the session out of every room it joined.
	h.coordinator.Disconnect(s)
	h.logger.Info("client disconnected", zap.String("session_id", s.ID()))
}

// run is the message loop for one connection. Events are processed in
// arrival order; an event handler completes (persistence write and
// broadcast) before the next message from this connection is read.
func (h *Handler) run(ctx context.Context, conn *websocket.Conn, s *session.Session) {
	conn.SetReadLimit(int64(h.limits.MaxMessageSize))
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	defer close(done)

	// Keepalive pings: the write path is serialized through the session.
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// WriteControl is safe alongside the session's data writes.
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Warn("read failed", zap.String("session_id", s.ID()), zap.Error(err))
			}
			return
		}

		if !s.Allow() {
			h.logger.Warn("message rate limit exceeded", zap.String("session_id", s.ID()))
			continue // drop
		}

		if err := h.coordinator.Handle(ctx, s, msg); err != nil {
			h.logger.Warn("event rejected",
				zap.String("session_id", s.ID()), zap.Error(err))
			continue // skip malformed event, connection stays usable
		}
	}
}
