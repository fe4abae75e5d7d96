package room

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidroom/server/internal/repository/connection/inmemory"
	roomRedis "github.com/vidroom/server/internal/repository/room/redis"
	"github.com/vidroom/server/pkg/ytvideo"
)

func newTestService(t *testing.T, videoData VideoDataFunc) *service {
	t.Helper()
	s := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{
		Addr: s.Addr(),
	})
	roomRepo := roomRedis.NewRepo(rc, time.Hour)
	connRepo := inmemory.NewRepo()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(roomRepo, connRepo, videoData, logger)
}

func stubVideoData(videoId string) (*ytvideo.VideoData, error) {
	return &ytvideo.VideoData{
		Title:        "some title",
		AuthorName:   "some author",
		ThumbnailUrl: "https://i.ytimg.com/vi/" + videoId + "/hqdefault.jpg",
	}, nil
}

func ptr[T any](v T) *T {
	return &v
}

func TestCreateRoom(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{
		VideoURL: "https://youtu.be/abc123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, createRoomResp.Room.Id, "room id is empty")
	assert.Equal(t, "abc123", createRoomResp.Room.VideoId, "video id is not equal")
	assert.Equal(t, "some title", createRoomResp.Room.Title)
	assert.Equal(t, 0, createRoomResp.Room.Participants)

	// State is initialized atomically with the room.
	state, err := service.GetPlayerState(ctx, createRoomResp.Room.Id)
	require.NoError(t, err)
	assert.Equal(t, float64(0), state.Position)
	assert.False(t, state.IsPlaying)
	assert.NotZero(t, state.UpdatedAt)
}

func TestCreateRoomInvalidURL(t *testing.T) {
	service := newTestService(t, stubVideoData)

	_, err := service.CreateRoom(context.Background(), &CreateRoomParams{
		VideoURL: "https://vimeo.com/123456",
	})
	assert.ErrorIs(t, err, ErrInvalidVideoURL)
}

func TestCreateRoomMetadataBestEffort(t *testing.T) {
	service := newTestService(t, func(string) (*ytvideo.VideoData, error) {
		return nil, errors.New("network down")
	})

	createRoomResp, err := service.CreateRoom(context.Background(), &CreateRoomParams{
		VideoURL: "https://youtu.be/abc123",
	})
	require.NoError(t, err, "metadata failure must not fail room creation")
	assert.Empty(t, createRoomResp.Room.Title)
}

func TestJoinRoomUnknown(t *testing.T) {
	service := newTestService(t, stubVideoData)

	_, err := service.JoinRoom(context.Background(), &JoinRoomParams{
		ConnId: "conn-a",
		RoomId: "missing",
	})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomIdempotent(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	roomId := createRoomResp.Room.Id

	require.NoError(t, service.Connect(&ConnectParams{Conn: &websocket.Conn{}, ConnId: "conn-a"}))

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{ConnId: "conn-a", RoomId: roomId})
	require.NoError(t, err)
	assert.Equal(t, 1, joinRoomResp.Participants)

	joinRoomResp, err = service.JoinRoom(ctx, &JoinRoomParams{ConnId: "conn-a", RoomId: roomId})
	require.NoError(t, err)
	assert.Equal(t, 1, joinRoomResp.Participants, "double join must not inflate the count")
}

func TestLeaveRoomNotMember(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)

	leaveRoomResp, err := service.LeaveRoom(ctx, &LeaveRoomParams{
		ConnId: "conn-never-joined",
		RoomId: createRoomResp.Room.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, leaveRoomResp.Participants, "count must clamp at zero")
}

func TestPlaybackScenario(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	roomId := createRoomResp.Room.Id

	connA, connB := &websocket.Conn{}, &websocket.Conn{}
	require.NoError(t, service.Connect(&ConnectParams{Conn: connA, ConnId: "conn-a"}))
	require.NoError(t, service.Connect(&ConnectParams{Conn: connB, ConnId: "conn-b"}))

	joinRoomResp, err := service.JoinRoom(ctx, &JoinRoomParams{ConnId: "conn-a", RoomId: roomId})
	require.NoError(t, err)
	assert.Equal(t, 1, joinRoomResp.Participants)
	assert.Empty(t, joinRoomResp.Conns, "first joiner has nobody to notify")

	joinRoomResp, err = service.JoinRoom(ctx, &JoinRoomParams{ConnId: "conn-b", RoomId: roomId})
	require.NoError(t, err)
	assert.Equal(t, 2, joinRoomResp.Participants)
	require.Len(t, joinRoomResp.Conns, 1)
	assert.Same(t, connA, joinRoomResp.Conns[0], "only the first member gets notified")

	// A plays at 10: B receives, A does not.
	playResp, err := service.Play(ctx, &PlayParams{ConnId: "conn-a", RoomId: roomId, Position: ptr(10.0)})
	require.NoError(t, err)
	assert.True(t, playResp.PlayerState.IsPlaying)
	assert.Equal(t, 10.0, playResp.PlayerState.Position)
	require.Len(t, playResp.Conns, 1)
	assert.Same(t, connB, playResp.Conns[0], "sender must be excluded from the fan-out")

	state, err := service.GetPlayerState(ctx, roomId)
	require.NoError(t, err)
	assert.True(t, state.IsPlaying)
	assert.Equal(t, 10.0, state.Position)

	// Seek forces a pause.
	seekResp, err := service.Seek(ctx, &SeekParams{ConnId: "conn-a", RoomId: roomId, Position: 5})
	require.NoError(t, err)
	assert.False(t, seekResp.PlayerState.IsPlaying)
	assert.Equal(t, 5.0, seekResp.PlayerState.Position)

	state, err = service.GetPlayerState(ctx, roomId)
	require.NoError(t, err)
	assert.False(t, state.IsPlaying, "seek must leave the room paused")
	assert.Equal(t, 5.0, state.Position)

	// A disconnects: B is the remaining member of the only affected room.
	disconnectResp, err := service.Disconnect(ctx, connA, "conn-a")
	require.NoError(t, err)
	require.Len(t, disconnectResp.AffectedRooms, 1)
	assert.Equal(t, roomId, disconnectResp.AffectedRooms[0].RoomId)
	assert.Equal(t, 1, disconnectResp.AffectedRooms[0].Participants)
	require.Len(t, disconnectResp.AffectedRooms[0].Conns, 1)
	assert.Same(t, connB, disconnectResp.AffectedRooms[0].Conns[0])

	// A second disconnect for the same conn is a safe no-op.
	disconnectResp, err = service.Disconnect(ctx, connA, "conn-a")
	require.NoError(t, err)
	assert.Empty(t, disconnectResp.AffectedRooms)
}

func TestPauseKeepsPositionWhenOmitted(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	roomId := createRoomResp.Room.Id

	_, err = service.Play(ctx, &PlayParams{ConnId: "conn-a", RoomId: roomId, Position: ptr(30.0)})
	require.NoError(t, err)

	pauseResp, err := service.Pause(ctx, &PauseParams{ConnId: "conn-a", RoomId: roomId})
	require.NoError(t, err)
	assert.False(t, pauseResp.PlayerState.IsPlaying)
	assert.Equal(t, 30.0, pauseResp.PlayerState.Position, "omitted position must keep the previous one")
}

func TestNegativePositionRejected(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	roomId := createRoomResp.Room.Id

	_, err = service.Seek(ctx, &SeekParams{ConnId: "conn-a", RoomId: roomId, Position: -1})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = service.Play(ctx, &PlayParams{ConnId: "conn-a", RoomId: roomId, Position: ptr(-0.5)})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	_, err = service.Pause(ctx, &PauseParams{ConnId: "conn-a", RoomId: roomId, Position: ptr(-0.5)})
	assert.ErrorIs(t, err, ErrInvalidPosition)

	// Nothing was mutated by the rejected intents.
	state, err := service.GetPlayerState(ctx, roomId)
	require.NoError(t, err)
	assert.False(t, state.IsPlaying)
	assert.Equal(t, 0.0, state.Position)
}

func TestPlayUnknownRoom(t *testing.T) {
	service := newTestService(t, stubVideoData)

	_, err := service.Play(context.Background(), &PlayParams{ConnId: "conn-a", RoomId: "missing"})
	assert.ErrorIs(t, err, ErrRoomNotFound)

	_, err = service.SyncRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestTimestampsMonotonic(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	roomId := createRoomResp.Room.Id

	var last int64
	for i := 0; i < 20; i++ {
		var state PlayerState
		switch i % 3 {
		case 0:
			resp, err := service.Play(ctx, &PlayParams{ConnId: "conn-a", RoomId: roomId, Position: ptr(float64(i))})
			require.NoError(t, err)
			state = resp.PlayerState
		case 1:
			resp, err := service.Pause(ctx, &PauseParams{ConnId: "conn-a", RoomId: roomId})
			require.NoError(t, err)
			state = resp.PlayerState
		case 2:
			resp, err := service.Seek(ctx, &SeekParams{ConnId: "conn-a", RoomId: roomId, Position: float64(i)})
			require.NoError(t, err)
			state = resp.PlayerState
		}
		assert.GreaterOrEqual(t, state.UpdatedAt, last)
		last = state.UpdatedAt
	}
}

func TestSendMessage(t *testing.T) {
	service := newTestService(t, stubVideoData)
	ctx := context.Background()

	createRoomResp, err := service.CreateRoom(ctx, &CreateRoomParams{VideoURL: "https://youtu.be/abc123"})
	require.NoError(t, err)
	roomId := createRoomResp.Room.Id

	connA, connB := &websocket.Conn{}, &websocket.Conn{}
	require.NoError(t, service.Connect(&ConnectParams{Conn: connA, ConnId: "conn-a"}))
	require.NoError(t, service.Connect(&ConnectParams{Conn: connB, ConnId: "conn-b"}))
	_, err = service.JoinRoom(ctx, &JoinRoomParams{ConnId: "conn-a", RoomId: roomId})
	require.NoError(t, err)
	_, err = service.JoinRoom(ctx, &JoinRoomParams{ConnId: "conn-b", RoomId: roomId})
	require.NoError(t, err)

	sendMessageResp, err := service.SendMessage(ctx, &SendMessageParams{
		ConnId: "conn-a",
		RoomId: roomId,
		Sender: "alice",
		Text:   "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, sendMessageResp.Message.Id)
	assert.NotZero(t, sendMessageResp.Message.SentAt)
	assert.Len(t, sendMessageResp.Conns, 2, "chat echoes to the sender too")

	messages, err := service.GetMessages(ctx, roomId)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, "hello", messages[0].Text)
	assert.Equal(t, "alice", messages[0].Sender)

	_, err = service.SendMessage(ctx, &SendMessageParams{ConnId: "conn-a", RoomId: "missing", Text: "hi"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
