package room

import (
	"context"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/repository/room"
)

// keyedMutex serializes operations per room id so concurrent intents on one
// room cannot interleave, while unrelated rooms proceed in parallel. Entries
// are refcounted and removed once the last holder unlocks.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*lockEntry)}
}

func (k *keyedMutex) Lock(key string) {
	k.mu.Lock()
	entry, ok := k.locks[key]
	if !ok {
		entry = &lockEntry{}
		k.locks[key] = entry
	}
	entry.refs++
	k.mu.Unlock()

	entry.mu.Lock()
}

func (k *keyedMutex) Unlock(key string) {
	k.mu.Lock()
	entry := k.locks[key]
	entry.refs--
	if entry.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	entry.mu.Unlock()
}

// getConnsByRoomId resolves the fan-out set of a room, excluding
// excludeConnId when it is non-empty.
func (s service) getConnsByRoomId(ctx context.Context, roomId, excludeConnId string) ([]*websocket.Conn, error) {
	memberIds, err := s.roomRepo.GetMemberIds(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get member ids: %w", err)
	}

	if excludeConnId != "" {
		filtered := memberIds[:0]
		for _, memberId := range memberIds {
			if memberId != excludeConnId {
				filtered = append(filtered, memberId)
			}
		}
		memberIds = filtered
	}

	return s.connRepo.GetConns(memberIds), nil
}

func (s service) checkRoomExists(ctx context.Context, roomId string) error {
	if _, err := s.roomRepo.GetRoom(ctx, roomId); err != nil {
		if err == room.ErrRoomNotFound {
			return ErrRoomNotFound
		}

		return fmt.Errorf("failed to get room: %w", err)
	}

	return nil
}

func toPlayerState(player room.Player) PlayerState {
	return PlayerState{
		Position:  player.Position,
		IsPlaying: player.IsPlaying,
		UpdatedAt: player.UpdatedAt,
	}
}
