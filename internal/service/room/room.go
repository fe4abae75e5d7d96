package room

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidroom/server/internal/repository/room"
	"github.com/vidroom/server/pkg/ytvideo"
)

type CreateRoomParams struct {
	VideoURL string
}

type CreateRoomResponse struct {
	Room Room
}

// CreateRoom allocates a room for the given video and initializes its
// playback state at position 0, paused.
func (s service) CreateRoom(ctx context.Context, params *CreateRoomParams) (CreateRoomResponse, error) {
	videoId, err := ytvideo.ExtractVideoId(params.VideoURL)
	if err != nil {
		if errors.Is(err, ytvideo.ErrInvalidURL) {
			return CreateRoomResponse{}, ErrInvalidVideoURL
		}

		return CreateRoomResponse{}, fmt.Errorf("failed to extract video id: %w", err)
	}

	roomModel := room.Room{
		Id:        uuid.NewString(),
		VideoURL:  params.VideoURL,
		VideoId:   videoId,
		CreatedAt: time.Now().UnixMilli(),
	}

	// Metadata is best effort, the room works without it.
	if videoData, err := s.videoData.GetData(videoId); err != nil {
		s.logger.DebugContext(ctx, "failed to get video data", "video_id", videoId, "error", err)
	} else {
		roomModel.Title = videoData.Title
		roomModel.AuthorName = videoData.AuthorName
		roomModel.ThumbnailURL = videoData.ThumbnailUrl
	}

	if err := s.roomRepo.SetRoom(ctx, &room.SetRoomParams{Room: roomModel}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set room: %w", err)
	}

	if err := s.roomRepo.SetPlayer(ctx, &room.SetPlayerParams{
		RoomId:    roomModel.Id,
		Position:  0,
		IsPlaying: false,
	}); err != nil {
		return CreateRoomResponse{}, fmt.Errorf("failed to set player: %w", err)
	}

	return CreateRoomResponse{Room: toRoom(roomModel, 0)}, nil
}

func (s service) GetRoom(ctx context.Context, roomId string) (Room, error) {
	roomModel, err := s.roomRepo.GetRoom(ctx, roomId)
	if err != nil {
		if err == room.ErrRoomNotFound {
			return Room{}, ErrRoomNotFound
		}

		return Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	participants, err := s.roomRepo.GetMembersCount(ctx, roomId)
	if err != nil {
		return Room{}, fmt.Errorf("failed to get members count: %w", err)
	}

	return toRoom(roomModel, participants), nil
}

func (s service) GetPlayerState(ctx context.Context, roomId string) (PlayerState, error) {
	player, err := s.roomRepo.GetPlayer(ctx, roomId)
	if err != nil {
		if err == room.ErrPlayerNotFound {
			return PlayerState{}, ErrRoomNotFound
		}

		return PlayerState{}, fmt.Errorf("failed to get player: %w", err)
	}

	return toPlayerState(player), nil
}

func toRoom(roomModel room.Room, participants int) Room {
	return Room{
		Id:           roomModel.Id,
		VideoURL:     roomModel.VideoURL,
		VideoId:      roomModel.VideoId,
		Title:        roomModel.Title,
		AuthorName:   roomModel.AuthorName,
		ThumbnailURL: roomModel.ThumbnailURL,
		CreatedAt:    roomModel.CreatedAt,
		Participants: participants,
	}
}
