package controller

import (
	"context"
	"encoding/json"

	"github.com/gorilla/websocket"

	"github.com/vidroom/server/pkg/wsrouter"
)

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Use(c.wsLoggingMw)
	mux.Use(c.rateLimitMw)

	// room
	mux.Handle("room:join", c.handleJoinRoom)
	mux.Handle("room:leave", c.handleLeaveRoom)

	// video
	mux.Handle("video:play", c.handlePlay)
	mux.Handle("video:pause", c.handlePause)
	mux.Handle("video:seek", c.handleSeek)
	mux.Handle("video:sync_request", c.handleSyncRequest)

	// chat
	mux.Handle("chat:send", c.handleSendMessage)

	mux.HandleUnknown(func(ctx context.Context, conn *websocket.Conn, _ json.RawMessage) error {
		c.writeError(ctx, conn, "Unknown message type")
		return nil
	})

	return mux
}
