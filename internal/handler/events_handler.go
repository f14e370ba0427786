package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/interview-master/backend/internal/middleware"
	"github.com/interview-master/backend/internal/response"
	"github.com/interview-master/backend/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keepAliveInterval = 30 * time.Second

// EventsHandler streams a session's lifecycle events over SSE. It rides
// the Redis PubSub channel, so an observer can attach from any process
// in the deployment, not just the one hosting the session.
type EventsHandler struct {
	rdb        *redis.Client
	interviews *service.InterviewService
	log        zerolog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(rdb *redis.Client, interviews *service.InterviewService, log zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		rdb:        rdb,
		interviews: interviews,
		log:        log.With().Str("component", "events_handler").Logger(),
	}
}

// InterviewEventsSSE godoc
// GET /api/v1/interviews/:session_id/events
func (h *EventsHandler) InterviewEventsSSE(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	reqCtx := c.Request.Context()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	pubsub := h.rdb.Subscribe(reqCtx, h.interviews.EventChannel(sessionID))
	defer pubsub.Close()

	ch := pubsub.Channel()

	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	h.log.Info().Str("session_id", sessionID.String()).Msg("Observer attached to events SSE")

	pingPayload, _ := json.Marshal(map[string]string{"type": "ping"})

	for {
		select {
		case <-reqCtx.Done():
			h.log.Info().Str("session_id", sessionID.String()).Msg("Observer disconnected from events SSE")
			return

		case msg := <-ch:
			// Forward raw JSON directly, no deserialization needed
			c.Writer.Write([]byte("data: "))
			c.Writer.Write([]byte(msg.Payload))
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			c.Writer.Write([]byte("data: "))
			c.Writer.Write(pingPayload)
			c.Writer.Write([]byte("\n\n"))
			c.Writer.Flush()
		}
	}
}
