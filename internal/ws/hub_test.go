package ws

import (
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

func TestAddAndRemoveClient(t *testing.T) {
	hub := NewHub()
	conn := &websocket.Conn{}

	hub.AddClient(1, conn, ConnInfo{ConnID: "c1", OwnerID: 1})
	assert.Len(t, hub.statusRooms[1], 1)
	assert.Len(t, hub.connInfo[1], 1)

	hub.RemoveClient(1, conn)
	assert.NotContains(t, hub.statusRooms, 1)
	assert.NotContains(t, hub.connInfo, 1)
}

func TestRoomsAreKeyedByOwner(t *testing.T) {
	hub := NewHub()
	connA := &websocket.Conn{}
	connB := &websocket.Conn{}

	hub.AddClient(1, connA, ConnInfo{ConnID: "a"})
	hub.AddClient(2, connB, ConnInfo{ConnID: "b"})

	assert.Len(t, hub.statusRooms, 2)
	assert.True(t, hub.statusRooms[1][connA])
	assert.True(t, hub.statusRooms[2][connB])
}

func TestRemoveUnknownClientIsNoop(t *testing.T) {
	hub := NewHub()
	hub.RemoveClient(1, &websocket.Conn{})
	assert.Empty(t, hub.statusRooms)
}

func TestGetConnInfo(t *testing.T) {
	hub := NewHub()
	conn := &websocket.Conn{}
	hub.AddClient(1, conn, ConnInfo{ConnID: "c1", DeviceID: "dev-1"})

	info, ok := hub.getConnInfo(1, conn)
	assert.True(t, ok)
	assert.Equal(t, "dev-1", info.DeviceID)

	_, ok = hub.getConnInfo(2, conn)
	assert.False(t, ok)
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	// nobody is watching, nothing should panic
	hub.BroadcastCleared(1)
}
