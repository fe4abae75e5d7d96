package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/service/room"
)

type Output struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type playerEventPayload struct {
	Position  float64 `json:"position"`
	Timestamp int64   `json:"timestamp"`
}

type participantsPayload struct {
	RoomId       string `json:"room_id"`
	Participants int    `json:"participants"`
}

func (c *controller) writeToConn(ctx context.Context, conn *websocket.Conn, output *Output) error {
	mu, _ := c.writeLocks.LoadOrStore(conn, &sync.Mutex{})
	mu.(*sync.Mutex).Lock()
	defer mu.(*sync.Mutex).Unlock()

	return conn.WriteJSON(output)
}

// broadcast delivers one event to every conn in the set. A failed write only
// costs that one receiver.
func (c *controller) broadcast(ctx context.Context, conns []*websocket.Conn, output *Output) {
	for _, conn := range conns {
		if err := c.writeToConn(ctx, conn, output); err != nil {
			c.logger.DebugContext(ctx, "failed to write to conn", "error", err)
		}
	}
}

func (c *controller) writeError(ctx context.Context, conn *websocket.Conn, message string) {
	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "room:error",
		Payload: map[string]string{"message": message},
	}); err != nil {
		c.logger.DebugContext(ctx, "failed to write error", "error", err)
	}
}

// errorMessage maps service errors to the messages clients see. Anything
// unexpected stays opaque.
func (c *controller) errorMessage(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, room.ErrInvalidPosition):
		return "Invalid position"
	case errors.Is(err, room.ErrInvalidVideoURL):
		return "Invalid video url"
	default:
		return "Internal error"
	}
}
