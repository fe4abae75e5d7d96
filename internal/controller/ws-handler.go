package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/service/room"
	"github.com/vidroom/server/pkg/ctxlogger"
)

var errValidation = fmt.Errorf("validation error")

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		username = "anonymous"
	}

	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	connId := uuid.NewString()
	if err := c.roomService.Connect(&room.ConnectParams{Conn: conn, ConnId: connId}); err != nil {
		c.logger.WarnContext(r.Context(), "failed to connect", "error", err)
		conn.Close()
		return
	}
	defer c.disconnect(r.Context(), conn, connId)

	ctx := context.WithValue(r.Context(), connIdCtxKey, connId)
	ctx = context.WithValue(ctx, usernameCtxKey, username)
	ctx = ctxlogger.AppendCtx(ctx, slog.String("conn_id", connId))

	c.logger.InfoContext(ctx, "connection established", "username", username)

	if err := c.wsmux.ServeConn(ctx, conn); err != nil {
		c.logger.DebugContext(ctx, "connection closed", "error", err)
	}
}

func (c *controller) disconnect(ctx context.Context, conn *websocket.Conn, connId string) {
	disconnectResp, err := c.roomService.Disconnect(ctx, conn, connId)
	if err != nil {
		c.logger.WarnContext(ctx, "failed to disconnect", "conn_id", connId, "error", err)
	}

	for _, affectedRoom := range disconnectResp.AffectedRooms {
		c.broadcast(ctx, affectedRoom.Conns, &Output{
			Type: "room:user_left",
			Payload: participantsPayload{
				RoomId:       affectedRoom.RoomId,
				Participants: affectedRoom.Participants,
			},
		})
	}

	c.limiter.Forget(connId)
	c.writeLocks.Delete(conn)
	conn.Close()
}

func (c *controller) readInput(ctx context.Context, conn *websocket.Conn, payload json.RawMessage, input any) error {
	if err := json.Unmarshal(payload, input); err != nil {
		c.writeError(ctx, conn, "Invalid payload")
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if validationErrors, ok := c.validate.Validate(input); !ok {
		c.writeError(ctx, conn, "Invalid payload")
		return fmt.Errorf("%w: %v", errValidation, validationErrors)
	}

	return nil
}

type JoinRoomInput struct {
	RoomId string `json:"room_id" validate:"required"`
}

func (c *controller) handleJoinRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input JoinRoomInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	joinRoomResp, err := c.roomService.JoinRoom(ctx, &room.JoinRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to join room: %w", err)
	}

	// The joiner gets the reconciliation snapshot, everyone else the count.
	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "video:state",
		Payload: joinRoomResp.PlayerState,
	}); err != nil {
		return fmt.Errorf("failed to write to conn: %w", err)
	}

	c.broadcast(ctx, joinRoomResp.Conns, &Output{
		Type: "room:user_joined",
		Payload: participantsPayload{
			RoomId:       input.RoomId,
			Participants: joinRoomResp.Participants,
		},
	})

	return nil
}

type LeaveRoomInput struct {
	RoomId string `json:"room_id" validate:"required"`
}

func (c *controller) handleLeaveRoom(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input LeaveRoomInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	leaveRoomResp, err := c.roomService.LeaveRoom(ctx, &room.LeaveRoomParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
	})
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to leave room: %w", err)
	}

	c.broadcast(ctx, leaveRoomResp.Conns, &Output{
		Type: "room:user_left",
		Payload: participantsPayload{
			RoomId:       input.RoomId,
			Participants: leaveRoomResp.Participants,
		},
	})

	return nil
}

type PlayInput struct {
	RoomId   string   `json:"room_id" validate:"required"`
	Position *float64 `json:"position" validate:"omitempty,gte=0"`
}

func (c *controller) handlePlay(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PlayInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	playResp, err := c.roomService.Play(ctx, &room.PlayParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Position: input.Position,
	})
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to play: %w", err)
	}

	c.broadcast(ctx, playResp.Conns, &Output{
		Type: "video:play",
		Payload: playerEventPayload{
			Position:  playResp.PlayerState.Position,
			Timestamp: playResp.PlayerState.UpdatedAt,
		},
	})

	return nil
}

type PauseInput struct {
	RoomId   string   `json:"room_id" validate:"required"`
	Position *float64 `json:"position" validate:"omitempty,gte=0"`
}

func (c *controller) handlePause(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input PauseInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	pauseResp, err := c.roomService.Pause(ctx, &room.PauseParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Position: input.Position,
	})
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to pause: %w", err)
	}

	c.broadcast(ctx, pauseResp.Conns, &Output{
		Type: "video:pause",
		Payload: playerEventPayload{
			Position:  pauseResp.PlayerState.Position,
			Timestamp: pauseResp.PlayerState.UpdatedAt,
		},
	})

	return nil
}

type SeekInput struct {
	RoomId   string   `json:"room_id" validate:"required"`
	Position *float64 `json:"position" validate:"required,gte=0"`
}

func (c *controller) handleSeek(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SeekInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	seekResp, err := c.roomService.Seek(ctx, &room.SeekParams{
		ConnId:   c.getConnIdFromCtx(ctx),
		RoomId:   input.RoomId,
		Position: *input.Position,
	})
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to seek: %w", err)
	}

	eventPayload := playerEventPayload{
		Position:  seekResp.PlayerState.Position,
		Timestamp: seekResp.PlayerState.UpdatedAt,
	}

	// Seek pauses the room, and the pause is broadcast explicitly so clients
	// that only freeze on pause events still converge.
	c.broadcast(ctx, seekResp.Conns, &Output{
		Type:    "video:seek",
		Payload: eventPayload,
	})
	c.broadcast(ctx, seekResp.Conns, &Output{
		Type:    "video:pause",
		Payload: eventPayload,
	})

	return nil
}

type SyncRequestInput struct {
	RoomId string `json:"room_id" validate:"required"`
}

func (c *controller) handleSyncRequest(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SyncRequestInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	state, err := c.roomService.SyncRequest(ctx, input.RoomId)
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to sync: %w", err)
	}

	if err := c.writeToConn(ctx, conn, &Output{
		Type:    "video:sync",
		Payload: state,
	}); err != nil {
		return fmt.Errorf("failed to write to conn: %w", err)
	}

	return nil
}

type SendMessageInput struct {
	RoomId string `json:"room_id" validate:"required"`
	Text   string `json:"text" validate:"required,max=2000"`
}

func (c *controller) handleSendMessage(ctx context.Context, conn *websocket.Conn, payload json.RawMessage) error {
	var input SendMessageInput
	if err := c.readInput(ctx, conn, payload, &input); err != nil {
		return err
	}

	sendMessageResp, err := c.roomService.SendMessage(ctx, &room.SendMessageParams{
		ConnId: c.getConnIdFromCtx(ctx),
		RoomId: input.RoomId,
		Sender: c.getUsernameFromCtx(ctx),
		Text:   input.Text,
	})
	if err != nil {
		c.writeError(ctx, conn, c.errorMessage(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	c.broadcast(ctx, sendMessageResp.Conns, &Output{
		Type:    "chat:message",
		Payload: sendMessageResp.Message,
	})

	return nil
}
