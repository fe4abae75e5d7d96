package controller

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/service/room"
	"github.com/vidroom/server/pkg/ratelimit"
	"github.com/vidroom/server/pkg/validator"
	"github.com/vidroom/server/pkg/wsrouter"
)

type iRoomService interface {
	CreateRoom(context.Context, *room.CreateRoomParams) (room.CreateRoomResponse, error)
	GetRoom(ctx context.Context, roomId string) (room.Room, error)
	GetPlayerState(ctx context.Context, roomId string) (room.PlayerState, error)
	GetMessages(ctx context.Context, roomId string) ([]room.Message, error)
	ConnectionsCount() int

	Connect(*room.ConnectParams) error
	Disconnect(ctx context.Context, conn *websocket.Conn, connId string) (room.DisconnectResponse, error)
	JoinRoom(context.Context, *room.JoinRoomParams) (room.JoinRoomResponse, error)
	LeaveRoom(context.Context, *room.LeaveRoomParams) (room.LeaveRoomResponse, error)
	Play(context.Context, *room.PlayParams) (room.PlayerStateResponse, error)
	Pause(context.Context, *room.PauseParams) (room.PlayerStateResponse, error)
	Seek(context.Context, *room.SeekParams) (room.PlayerStateResponse, error)
	SyncRequest(ctx context.Context, roomId string) (room.PlayerState, error)
	SendMessage(context.Context, *room.SendMessageParams) (room.SendMessageResponse, error)
}

type controller struct {
	roomService iRoomService
	upgrader    websocket.Upgrader
	validate    *validator.Validator
	limiter     *ratelimit.Limiter
	wsmux       *wsrouter.WSRouter
	logger      *slog.Logger
	// gorilla conns do not tolerate concurrent writers; fan-outs from other
	// connections' handlers serialize here.
	writeLocks sync.Map
}

func NewController(roomService iRoomService, logger *slog.Logger, messageRate float64) *controller {
	c := controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService: roomService,
		validate:    validator.NewValidator(),
		limiter:     ratelimit.NewLimiter(messageRate),
		logger:      logger,
	}
	c.wsmux = c.getWSRouter()

	return &c
}
