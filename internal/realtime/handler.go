package realtime

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/trailmark/routes-backend/internal/domain/route"
	"github.com/trailmark/routes-backend/internal/pkg/jwt"
	"github.com/trailmark/routes-backend/internal/pkg/response"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// RouteOwnerChecker is the narrow route capability the websocket gate
// needs: confirm the connecting user actually owns the route before
// handing them its live channel.
type RouteOwnerChecker interface {
	GetByID(ctx context.Context, userID, routeID uuid.UUID) (*route.Route, error)
}

// Handler upgrades authenticated, owned route connections to a
// websocket fed from the route's broadcast channel.
type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	routes   RouteOwnerChecker
	upgrader websocket.Upgrader
}

// NewHandler creates the realtime websocket handler.
func NewHandler(hub *Hub, jwtService *jwt.Service, routes RouteOwnerChecker, allowedOrigins []string) *Handler {
	return &Handler{
		hub:    hub,
		jwt:    jwtService,
		routes: routes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				origin := r.Header.Get("Origin")
				for _, allowed := range allowedOrigins {
					if origin == allowed {
						return true
					}
				}
				log.Warn().Str("origin", origin).Msg("realtime: websocket origin rejected")
				return false
			},
		},
	}
}

// Serve handles GET /routes/ws/{routeId}?token=. The token must be a
// valid, unexpired access token; refresh tokens and anything else are
// rejected with 401 before the connection is upgraded.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	routeID, err := uuid.Parse(chi.URLParam(r, "routeId"))
	if err != nil {
		response.BadRequest(w, "Invalid route ID")
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		response.Unauthorized(w, "Missing token")
		return
	}

	claims, err := h.jwt.ValidateAccessToken(token)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrWrongTokenType):
			response.Unauthorized(w, "Refresh tokens cannot be used for realtime connections")
		case errors.Is(err, jwt.ErrExpiredToken):
			response.Unauthorized(w, "Token expired")
		default:
			response.Unauthorized(w, "Invalid token")
		}
		return
	}

	if _, err := h.routes.GetByID(r.Context(), claims.UserID, routeID); err != nil {
		response.NotFound(w, "Route not found")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("realtime: websocket upgrade failed")
		return
	}

	sub := h.hub.Subscribe(routeID)
	go h.readPump(conn, routeID, sub)
	go h.writePump(conn, sub)
}

// readPump only exists to detect client disconnects (this channel is
// one-directional: the server never expects inbound application
// messages) and keep the connection alive against idle timeouts.
func (h *Handler) readPump(conn *websocket.Conn, routeID uuid.UUID, sub *Subscriber) {
	defer func() {
		h.hub.Unsubscribe(routeID, sub)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sub *Subscriber) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sub.Messages():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case skipped := <-sub.Lag():
			// Outbound frames are exactly the completion-subject JSON;
			// a slow reader's drops are surfaced in logs/metrics only,
			// never as an extra frame the client has to know about.
			log.Warn().Int("skipped", skipped).Msg("realtime: subscriber lagging, dropping payloads")

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
