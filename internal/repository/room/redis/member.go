package redis

import (
	"context"
	"fmt"
)

// AddMember records the connection in the room's member set and the room in
// the connection's room set. Both are sets, so repeated joins are no-ops.
func (r repo) AddMember(ctx context.Context, roomId, connId string) error {
	pipe := r.rc.TxPipeline()

	membersKey := r.getMembersKey(roomId)
	connRoomsKey := r.getConnRoomsKey(connId)
	pipe.SAdd(ctx, membersKey, connId)
	pipe.SAdd(ctx, connRoomsKey, roomId)
	pipe.Expire(ctx, membersKey, r.expireDuration)
	pipe.Expire(ctx, connRoomsKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}

	return nil
}

func (r repo) RemoveMember(ctx context.Context, roomId, connId string) error {
	pipe := r.rc.TxPipeline()

	pipe.SRem(ctx, r.getMembersKey(roomId), connId)
	pipe.SRem(ctx, r.getConnRoomsKey(connId), roomId)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

func (r repo) GetMemberIds(ctx context.Context, roomId string) ([]string, error) {
	memberIds, err := r.rc.SMembers(ctx, r.getMembersKey(roomId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	return memberIds, nil
}

// GetMembersCount is the participant count of a room. It is always derived
// from the member set, there is no separate counter to drift.
func (r repo) GetMembersCount(ctx context.Context, roomId string) (int, error) {
	count, err := r.rc.SCard(ctx, r.getMembersKey(roomId)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to get members count: %w", err)
	}

	return int(count), nil
}

func (r repo) GetConnRooms(ctx context.Context, connId string) ([]string, error) {
	roomIds, err := r.rc.SMembers(ctx, r.getConnRoomsKey(connId)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get conn rooms: %w", err)
	}

	return roomIds, nil
}

func (r repo) RemoveConn(ctx context.Context, connId string) error {
	if err := r.rc.Del(ctx, r.getConnRoomsKey(connId)).Err(); err != nil {
		return fmt.Errorf("failed to remove conn: %w", err)
	}

	return nil
}
