package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/vidroom/server/internal/repository/room"
)

func (r repo) AddMessage(ctx context.Context, params *room.AddMessageParams) error {
	body, err := json.Marshal(params.Message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	pipe := r.rc.TxPipeline()

	messagesKey := r.getMessagesKey(params.RoomId)
	pipe.RPush(ctx, messagesKey, body)
	pipe.Expire(ctx, messagesKey, r.expireDuration)

	if err := r.executePipe(ctx, pipe); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}

	return nil
}

// GetMessages returns the room's transcript in send order.
func (r repo) GetMessages(ctx context.Context, roomId string) ([]room.Message, error) {
	messagesKey := r.getMessagesKey(roomId)
	entries, err := r.rc.LRange(ctx, messagesKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	r.rc.Expire(ctx, messagesKey, r.expireDuration)

	messages := make([]room.Message, 0, len(entries))
	for _, entry := range entries {
		var message room.Message
		if err := json.Unmarshal([]byte(entry), &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal message: %w", err)
		}

		messages = append(messages, message)
	}

	return messages, nil
}
