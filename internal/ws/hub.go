package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"broadcast-service/internal/models"
	"broadcast-service/internal/observability"
)

const statusRoutingKey = "ws_events.status"

// Hub maintains the websocket subscribers of each user's public status
// page, keyed by the owning user id.
type Hub struct {
	statusRooms map[int]map[*websocket.Conn]bool
	connInfo    map[int]map[*websocket.Conn]ConnInfo
	mu          sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		statusRooms: make(map[int]map[*websocket.Conn]bool),
		connInfo:    make(map[int]map[*websocket.Conn]ConnInfo),
	}
}

// AddClient registers a websocket connection watching ownerID's status.
func (h *Hub) AddClient(ownerID int, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.statusRooms[ownerID]; !ok {
		h.statusRooms[ownerID] = make(map[*websocket.Conn]bool)
	}
	h.statusRooms[ownerID][conn] = true
	if _, ok := h.connInfo[ownerID]; !ok {
		h.connInfo[ownerID] = make(map[*websocket.Conn]ConnInfo)
	}
	h.connInfo[ownerID][conn] = info
}

// RemoveClient removes a status websocket connection.
func (h *Hub) RemoveClient(ownerID int, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns, ok := h.statusRooms[ownerID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.statusRooms, ownerID)
		}
	}
	if infos, ok := h.connInfo[ownerID]; ok {
		delete(infos, conn)
		if len(infos) == 0 {
			delete(h.connInfo, ownerID)
		}
	}
}

// BroadcastActiveMessage pushes the owner's new active message to every
// watcher. Delivery is best-effort; pages can always re-fetch.
func (h *Hub) BroadcastActiveMessage(ownerID int, msg models.BroadcastMessage) {
	h.broadcast(ownerID, models.StatusEvent{Type: "active_message", Message: &msg})
}

// BroadcastCleared tells watchers the owner currently has no active
// message.
func (h *Hub) BroadcastCleared(ownerID int) {
	h.broadcast(ownerID, models.StatusEvent{Type: "cleared"})
}

func (h *Hub) broadcast(ownerID int, event models.StatusEvent) {
	h.mu.RLock()
	conns := h.statusRooms[ownerID]
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.RemoveClient(ownerID, conn)
			h.publishWSError(ownerID, conn, err)
		}
	}
}

func (h *Hub) publishWSError(ownerID int, conn *websocket.Conn, err error) {
	info, ok := h.getConnInfo(ownerID, conn)
	if !ok {
		return
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), statusRoutingKey, observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   statusEventPayload(info, ownerID, "ws_error", err.Error(), time.Since(info.ConnectedAt)),
	}, headers)
	observability.IncWSEvent("status", "ws_error")
}

func (h *Hub) getConnInfo(ownerID int, conn *websocket.Conn) (ConnInfo, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if infos, ok := h.connInfo[ownerID]; ok {
		info, exists := infos[conn]
		return info, exists
	}
	return ConnInfo{}, false
}

func statusEventPayload(info ConnInfo, ownerID int, event, reason string, duration time.Duration) map[string]interface{} {
	return map[string]interface{}{
		"ws": map[string]interface{}{
			"kind":        "status",
			"resource_id": ownerID,
			"event":       event,
			"conn_id":     info.ConnID,
			"duration_ms": duration.Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"owner_id":  info.OwnerID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
}
