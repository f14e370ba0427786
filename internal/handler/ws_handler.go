package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/interview-master/backend/internal/middleware"
	"github.com/interview-master/backend/internal/proctor"
	"github.com/interview-master/backend/internal/service"
	ws "github.com/interview-master/backend/internal/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// allowedOrigins comes from config.Config.AllowedOrigins.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  4096,
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

// WSHandler handles the bidirectional monitor stream: camera frames and
// visibility reports in, lifecycle events out.
type WSHandler struct {
	interviews *service.InterviewService
	log        zerolog.Logger
	upgrader   websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(interviews *service.InterviewService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		interviews: interviews,
		log:        log.With().Str("component", "ws_handler").Logger(),
		upgrader:   buildUpgrader(allowedOrigins),
	}
}

// MonitorStream godoc
// WS /ws/v1/interviews/:session_id/monitor
// Upgrades to WebSocket for the duration of a session.
func (h *WSHandler) MonitorStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid session ID"})
		return
	}

	userID := claims.UserID

	// Ownership is checked before the upgrade so a rejected client gets
	// a proper HTTP status instead of an immediate close.
	events, cancel, err := h.interviews.Subscribe(sessionID, userID)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "no such session for this user"})
		return
	}
	defer cancel()

	raw, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	// The event-feed goroutine and the reader loop's replies share this
	// connection, so all writes go through the locked wrapper.
	conn := ws.NewConn(raw)
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", userID).
		Str("session_id", sessionID.String()).
		Logger()

	wsLog.Info().Msg("Candidate connected")

	// Writer: the session's event feed belongs to this goroutine alone.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range events {
			if err := conn.WriteRaw(ev); err != nil {
				wsLog.Debug().Err(err).Msg("Event write failed")
				return
			}
		}
	}()

	// Reader: frames, visibility and fullscreen reports.
	for {
		var msg ws.RequestPayload
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			break
		}

		switch msg.Action {
		case ws.ActionFrame:
			h.handleFrame(conn, sessionID, userID, &msg)
		case ws.ActionVisibility:
			if err := h.interviews.ReportVisibility(sessionID, userID, msg.Hidden); err != nil {
				conn.WriteError("session is not active")
			}
		case ws.ActionFullscreenExit:
			_ = h.interviews.ReportFullscreenExit(sessionID, userID)
		case ws.ActionPing:
			conn.WriteTyped(ws.PongResponse{Event: ws.EventPong})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			conn.WriteError("unknown action: " + string(msg.Action))
		}
	}

	cancel()
	<-done
}

// handleFrame decodes one base64 RGB capture into the session's frame
// buffer. Malformed frames are rejected without touching the buffer.
func (h *WSHandler) handleFrame(conn *ws.Conn, sessionID uuid.UUID, userID int, msg *ws.RequestPayload) {
	pixels, err := base64.StdEncoding.DecodeString(msg.Pixels)
	if err != nil {
		conn.WriteError("invalid frame encoding")
		return
	}

	frame := proctor.Frame{Width: msg.Width, Height: msg.Height, Pixels: pixels}
	if !frame.Valid() {
		conn.WriteError("frame dimensions do not match pixel data")
		return
	}

	if err := h.interviews.SubmitFrame(sessionID, userID, frame); err != nil {
		conn.WriteError("session is not active")
	}
}
