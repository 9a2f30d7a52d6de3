package handler

import (
	"net/http"
	"strings"

	"github.com/edudash/edudash-backend/internal/config"
	"github.com/edudash/edudash-backend/internal/middleware"
	"github.com/edudash/edudash-backend/internal/service"
	ws "github.com/edudash/edudash-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams thread events to connected participants.
type WSHandler struct {
	rdb           *redis.Client
	threadService *service.ThreadService
	log           zerolog.Logger
	upgrader      websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, threadService *service.ThreadService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:           rdb,
		threadService: threadService,
		log:           log.With().Str("component", "ws_handler").Logger(),
		upgrader:      buildUpgrader(allowedOrigins),
	}
}

// ThreadStream godoc
// WS /ws/v1/threads/:thread_id/stream
// Upgrades to WebSocket and relays the thread's Redis channel: new
// messages, read receipts and typing events. The read loop accepts ping,
// typing and mark_read actions.
func (h *WSHandler) ThreadStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profileID, err := uuid.Parse(claims.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	threadID, err := uuid.Parse(c.Param("thread_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid thread ID"})
		return
	}

	// Participation is checked before the upgrade so outsiders never hold
	// a socket.
	ok, err := h.threadService.IsParticipant(c.Request.Context(), threadID, profileID)
	if err != nil || !ok {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	// The relay goroutine and the read loop both write to the socket, so
	// all writes go through the locked wrapper.
	conn := ws.Wrap(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Str("profile_id", profileID.String()).
		Str("thread_id", threadID.String()).
		Logger()

	wsLog.Info().Msg("Participant connected")

	// Subscribe before entering the loops so no event published after the
	// handshake is missed.
	channel := config.CacheKey.ThreadEventsChannel(threadID.String())
	sub := h.rdb.Subscribe(c.Request.Context(), channel)
	defer sub.Close()

	done := make(chan struct{})
	go h.relayEvents(conn, sub, wsLog, done)

	h.readLoop(c, conn, threadID, profileID, wsLog)
	close(done)
}

// relayEvents forwards Redis channel payloads to the socket until the read
// loop exits or the subscription closes.
func (h *WSHandler) relayEvents(conn *ws.Conn, sub *redis.PubSub, wsLog zerolog.Logger, done <-chan struct{}) {
	ch := sub.Channel()
	for {
		select {
		case <-done:
			return
		case msg, open := <-ch:
			if !open {
				return
			}
			if err := conn.WriteRaw([]byte(msg.Payload)); err != nil {
				wsLog.Debug().Err(err).Msg("Relay write failed")
				return
			}
		}
	}
}

func (h *WSHandler) readLoop(c *gin.Context, conn *ws.Conn, threadID, profileID uuid.UUID, wsLog zerolog.Logger) {
	for {
		var msg ws.RequestEnvelope
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		case ws.ActionTyping:
			if err := h.threadService.NotifyTyping(c.Request.Context(), threadID, profileID); err != nil {
				conn.WriteError("typing notify failed")
			}
		case ws.ActionMarkRead:
			if err := h.threadService.MarkRead(c.Request.Context(), threadID, profileID); err != nil {
				conn.WriteError("mark read failed")
			}
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}
}
