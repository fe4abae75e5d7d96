package redis

import (
	"context"
	"fmt"

	"github.com/vidroom/server/internal/repository/room"
)

func (r repo) SetRoom(ctx context.Context, params *room.SetRoomParams) error {
	pipe := r.rc.TxPipeline()

	roomKey := r.getRoomKey(params.Room.Id)
	pipe.HSet(ctx, roomKey, params.Room)
	pipe.Expire(ctx, roomKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to set room: %w", err)
	}

	return nil
}

func (r repo) GetRoom(ctx context.Context, roomId string) (room.Room, error) {
	roomKey := r.getRoomKey(roomId)
	res, err := r.rc.Exists(ctx, roomKey).Result()
	if err != nil {
		return room.Room{}, fmt.Errorf("failed to check if room exists: %w", err)
	}

	if res == 0 {
		return room.Room{}, room.ErrRoomNotFound
	}

	var roomModel room.Room
	if err := r.rc.HGetAll(ctx, roomKey).Scan(&roomModel); err != nil {
		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	r.rc.Expire(ctx, roomKey, r.expireDuration)

	return roomModel, nil
}

// RemoveRoom deletes every key belonging to a room. Nothing triggers it yet.
func (r repo) RemoveRoom(ctx context.Context, roomId string) error {
	res, err := r.rc.Del(ctx,
		r.getRoomKey(roomId),
		r.getPlayerKey(roomId),
		r.getMembersKey(roomId),
		r.getMessagesKey(roomId),
	).Result()
	if err != nil {
		return fmt.Errorf("failed to remove room: %w", err)
	}

	if res == 0 {
		return room.ErrRoomNotFound
	}

	return nil
}
