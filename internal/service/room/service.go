package room

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/repository/room"
	"github.com/vidroom/server/pkg/ytvideo"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrInvalidVideoURL = errors.New("invalid video url")
	ErrInvalidPosition = errors.New("invalid position")
)

type iRoomRepo interface {
	// room
	SetRoom(context.Context, *room.SetRoomParams) error
	GetRoom(ctx context.Context, roomId string) (room.Room, error)
	// player
	SetPlayer(context.Context, *room.SetPlayerParams) error
	GetPlayer(ctx context.Context, roomId string) (room.Player, error)
	UpdatePlayerState(context.Context, *room.UpdatePlayerStateParams) (room.Player, error)
	// membership
	AddMember(ctx context.Context, roomId, connId string) error
	RemoveMember(ctx context.Context, roomId, connId string) error
	GetMemberIds(ctx context.Context, roomId string) ([]string, error)
	GetMembersCount(ctx context.Context, roomId string) (int, error)
	GetConnRooms(ctx context.Context, connId string) ([]string, error)
	RemoveConn(ctx context.Context, connId string) error
	// chat
	AddMessage(context.Context, *room.AddMessageParams) error
	GetMessages(ctx context.Context, roomId string) ([]room.Message, error)
}

type iConnRepo interface {
	Add(conn *websocket.Conn, connId string) error
	RemoveByConn(conn *websocket.Conn) error
	GetConns(connIds []string) []*websocket.Conn
	GetConnIds() []string
}

type iVideoData interface {
	GetData(videoId string) (*ytvideo.VideoData, error)
}

// VideoDataFunc adapts a plain fetch function to iVideoData.
type VideoDataFunc func(videoId string) (*ytvideo.VideoData, error)

func (f VideoDataFunc) GetData(videoId string) (*ytvideo.VideoData, error) {
	return f(videoId)
}

type service struct {
	roomRepo  iRoomRepo
	connRepo  iConnRepo
	videoData iVideoData
	logger    *slog.Logger
	roomLocks *keyedMutex
}

func NewService(roomRepo iRoomRepo, connRepo iConnRepo, videoData iVideoData, logger *slog.Logger) *service {
	return &service{
		roomRepo:  roomRepo,
		connRepo:  connRepo,
		videoData: videoData,
		logger:    logger,
		roomLocks: newKeyedMutex(),
	}
}
