package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/vidroom/server/internal/repository/room"
	omitnilpointers "github.com/vidroom/server/pkg/omit-nil-pointers"
)

func (r repo) SetPlayer(ctx context.Context, params *room.SetPlayerParams) error {
	pipe := r.rc.TxPipeline()

	player := room.Player{
		Position:  params.Position,
		IsPlaying: params.IsPlaying,
		UpdatedAt: time.Now().UnixMilli(),
	}
	playerKey := r.getPlayerKey(params.RoomId)
	pipe.HSet(ctx, playerKey, player)
	pipe.Expire(ctx, playerKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set player: %w", err)
	}

	return nil
}

func (r repo) GetPlayer(ctx context.Context, roomId string) (room.Player, error) {
	playerKey := r.getPlayerKey(roomId)
	res, err := r.rc.Exists(ctx, playerKey).Result()
	if err != nil {
		return room.Player{}, fmt.Errorf("failed to check if player exists: %w", err)
	}

	if res == 0 {
		return room.Player{}, room.ErrPlayerNotFound
	}

	var player room.Player
	if err := r.rc.HGetAll(ctx, playerKey).Scan(&player); err != nil {
		return room.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	r.rc.Expire(ctx, playerKey, r.expireDuration)

	return player, nil
}

// UpdatePlayerState merges the provided fields over the stored state and
// stamps updated_at with the current server time, returning the new
// snapshot.
func (r repo) UpdatePlayerState(ctx context.Context, params *room.UpdatePlayerStateParams) (room.Player, error) {
	playerKey := r.getPlayerKey(params.RoomId)
	res, err := r.rc.Exists(ctx, playerKey).Result()
	if err != nil {
		return room.Player{}, fmt.Errorf("failed to check if player exists: %w", err)
	}

	if res == 0 {
		return room.Player{}, room.ErrPlayerNotFound
	}

	fields := omitnilpointers.OmitNilPointers(map[string]any{
		"position":   params.Position,
		"is_playing": params.IsPlaying,
		"updated_at": time.Now().UnixMilli(),
	})
	if err := r.rc.HSet(ctx, playerKey, fields).Err(); err != nil {
		return room.Player{}, fmt.Errorf("failed to update player state: %w", err)
	}

	var player room.Player
	if err := r.rc.HGetAll(ctx, playerKey).Scan(&player); err != nil {
		return room.Player{}, fmt.Errorf("failed to get player: %w", err)
	}

	r.rc.Expire(ctx, playerKey, r.expireDuration)

	return player, nil
}
