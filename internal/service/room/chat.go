package room

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vidroom/server/internal/repository/room"
)

type SendMessageParams struct {
	ConnId string
	RoomId string
	Sender string
	Text   string
}

type SendMessageResponse struct {
	Message Message
	// Conns includes the sender: everyone gets the same echo.
	Conns []*websocket.Conn
}

// SendMessage persists the message, then hands back the full member set for
// the fan-out. A persistence failure propagates and nothing is broadcast.
func (s service) SendMessage(ctx context.Context, params *SendMessageParams) (SendMessageResponse, error) {
	if err := s.checkRoomExists(ctx, params.RoomId); err != nil {
		return SendMessageResponse{}, err
	}

	message := room.Message{
		Id:     uuid.NewString(),
		RoomId: params.RoomId,
		Sender: params.Sender,
		Text:   params.Text,
		SentAt: time.Now().UnixMilli(),
	}
	if err := s.roomRepo.AddMessage(ctx, &room.AddMessageParams{
		RoomId:  params.RoomId,
		Message: message,
	}); err != nil {
		return SendMessageResponse{}, fmt.Errorf("failed to add message: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, "")
	if err != nil {
		return SendMessageResponse{}, fmt.Errorf("failed to get conns by room id: %w", err)
	}

	return SendMessageResponse{
		Message: toMessage(message),
		Conns:   conns,
	}, nil
}

func (s service) GetMessages(ctx context.Context, roomId string) ([]Message, error) {
	if err := s.checkRoomExists(ctx, roomId); err != nil {
		return nil, err
	}

	messageModels, err := s.roomRepo.GetMessages(ctx, roomId)
	if err != nil {
		return nil, fmt.Errorf("failed to get messages: %w", err)
	}

	messages := make([]Message, 0, len(messageModels))
	for _, messageModel := range messageModels {
		messages = append(messages, toMessage(messageModel))
	}

	return messages, nil
}

func toMessage(messageModel room.Message) Message {
	return Message{
		Id:     messageModel.Id,
		RoomId: messageModel.RoomId,
		Sender: messageModel.Sender,
		Text:   messageModel.Text,
		SentAt: messageModel.SentAt,
	}
}
