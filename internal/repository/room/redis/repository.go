package redis

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type repo struct {
	rc             *redis.Client
	expireDuration time.Duration
}

// NewRepo returns a room repository backed by redis. Every key of a room is
// written with expireDuration and refreshed on activity, so abandoned rooms
// eventually disappear on their own.
func NewRepo(rc *redis.Client, expireDuration time.Duration) *repo {
	return &repo{
		rc:             rc,
		expireDuration: expireDuration,
	}
}

func (r repo) getRoomKey(roomId string) string {
	return "room:" + roomId + ":info"
}

func (r repo) getPlayerKey(roomId string) string {
	return "room:" + roomId + ":player"
}

func (r repo) getMembersKey(roomId string) string {
	return "room:" + roomId + ":members"
}

func (r repo) getMessagesKey(roomId string) string {
	return "room:" + roomId + ":messages"
}

func (r repo) getConnRoomsKey(connId string) string {
	return "conn:" + connId + ":rooms"
}
