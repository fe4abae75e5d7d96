package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/repository/room"
)

type PlayParams struct {
	ConnId string
	RoomId string
	// Position is optional: omitted keeps the previous position.
	Position *float64
}

type PlayerStateResponse struct {
	PlayerState PlayerState
	// Conns is every member except the sender.
	Conns []*websocket.Conn
}

func (s service) Play(ctx context.Context, params *PlayParams) (PlayerStateResponse, error) {
	return s.updatePlayerState(ctx, params.RoomId, params.ConnId, params.Position, true)
}

type PauseParams struct {
	ConnId   string
	RoomId   string
	Position *float64
}

func (s service) Pause(ctx context.Context, params *PauseParams) (PlayerStateResponse, error) {
	return s.updatePlayerState(ctx, params.RoomId, params.ConnId, params.Position, false)
}

type SeekParams struct {
	ConnId   string
	RoomId   string
	Position float64
}

// Seek moves to the target position and always forces a pause so client
// clocks cannot race ahead during a scrub.
func (s service) Seek(ctx context.Context, params *SeekParams) (PlayerStateResponse, error) {
	return s.updatePlayerState(ctx, params.RoomId, params.ConnId, &params.Position, false)
}

func (s service) SyncRequest(ctx context.Context, roomId string) (PlayerState, error) {
	player, err := s.roomRepo.GetPlayer(ctx, roomId)
	if err != nil {
		if err == room.ErrPlayerNotFound {
			return PlayerState{}, ErrRoomNotFound
		}

		return PlayerState{}, fmt.Errorf("failed to get player: %w", err)
	}

	return toPlayerState(player), nil
}

func (s service) updatePlayerState(ctx context.Context, roomId, connId string, position *float64, isPlaying bool) (PlayerStateResponse, error) {
	// One rule for play, pause and seek alike.
	if position != nil && *position < 0 {
		return PlayerStateResponse{}, ErrInvalidPosition
	}

	s.roomLocks.Lock(roomId)
	defer s.roomLocks.Unlock(roomId)

	player, err := s.roomRepo.UpdatePlayerState(ctx, &room.UpdatePlayerStateParams{
		RoomId:    roomId,
		Position:  position,
		IsPlaying: &isPlaying,
	})
	if err != nil {
		if err == room.ErrPlayerNotFound {
			return PlayerStateResponse{}, ErrRoomNotFound
		}

		return PlayerStateResponse{}, fmt.Errorf("failed to update player state: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, roomId, connId)
	if err != nil {
		return PlayerStateResponse{}, fmt.Errorf("failed to get conns by room id: %w", err)
	}

	return PlayerStateResponse{
		PlayerState: toPlayerState(player),
		Conns:       conns,
	}, nil
}
