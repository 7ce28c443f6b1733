package ws

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"broadcast-service/internal/observability"
	"broadcast-service/internal/repositories"
)

// StatusWebSocketHandler serves the public live feed of a user's active
// message, addressed by slug. No authentication: this is the Reader side.
type StatusWebSocketHandler struct {
	hub      *Hub
	profiles repositories.ProfileRepository
}

// NewStatusWebSocketHandler constructs a StatusWebSocketHandler.
func NewStatusWebSocketHandler(hub *Hub, profiles repositories.ProfileRepository) *StatusWebSocketHandler {
	return &StatusWebSocketHandler{hub: hub, profiles: profiles}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle resolves the slug, upgrades the connection and registers the
// client with the hub.
func (h *StatusWebSocketHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("broadcast-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	profile, err := h.profiles.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "unknown slug"})
		return
	}
	ownerID := profile.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	traceID := span.SpanContext().TraceID().String()
	requestID := observability.RequestIDFromRequest(c.Request)
	info := ConnInfo{
		ConnID:      newConnID(),
		OwnerID:     ownerID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   requestID,
		TraceID:     traceID,
		ConnectedAt: time.Now(),
	}
	h.hub.AddClient(ownerID, conn, info)

	observability.IncWSActive("status")
	observability.IncWSEvent("status", "ws_connect")
	_ = observability.PublishEvent(ctx, statusRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_connect",
		Payload:   statusEventPayload(info, ownerID, "ws_connect", "", 0),
	}, observability.BuildHeaders(requestID, traceID))

	// Keep connection alive and clean up on close.
	go func() {
		var closeReason string
		defer func() {
			h.hub.RemoveClient(ownerID, conn)
			observability.DecWSActive("status")
			observability.IncWSEvent("status", "ws_disconnect")
			_ = observability.PublishEvent(ctx, statusRoutingKey, observability.EventEnvelope{
				EventType: "ws_events",
				EventName: "ws_disconnect",
				Payload:   statusEventPayload(info, ownerID, "ws_disconnect", closeReason, time.Since(info.ConnectedAt)),
			}, observability.BuildHeaders(requestID, traceID))
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				closeReason = err.Error()
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					observability.IncWSEvent("status", "ws_error")
					_ = observability.PublishEvent(ctx, statusRoutingKey, observability.EventEnvelope{
						EventType: "ws_events",
						EventName: "ws_error",
						Payload:   statusEventPayload(info, ownerID, "ws_error", closeReason, time.Since(info.ConnectedAt)),
					}, observability.BuildHeaders(requestID, traceID))
				}
				return
			}
		}
	}()
}
