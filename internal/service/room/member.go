package room

import (
	"context"
	"fmt"

	"github.com/gorilla/websocket"
)

type ConnectParams struct {
	Conn   *websocket.Conn
	ConnId string
}

func (s service) Connect(params *ConnectParams) error {
	if err := s.connRepo.Add(params.Conn, params.ConnId); err != nil {
		return fmt.Errorf("failed to add conn: %w", err)
	}

	return nil
}

func (s service) ConnectionsCount() int {
	return len(s.connRepo.GetConnIds())
}

type JoinRoomParams struct {
	ConnId string
	RoomId string
}

type JoinRoomResponse struct {
	PlayerState  PlayerState
	Participants int
	// Conns is every member except the joiner, for the user_joined fan-out.
	Conns []*websocket.Conn
}

func (s service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	s.roomLocks.Lock(params.RoomId)
	defer s.roomLocks.Unlock(params.RoomId)

	if err := s.checkRoomExists(ctx, params.RoomId); err != nil {
		return JoinRoomResponse{}, err
	}

	// Set semantics: a repeated join changes nothing.
	if err := s.roomRepo.AddMember(ctx, params.RoomId, params.ConnId); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to add member: %w", err)
	}

	participants, err := s.roomRepo.GetMembersCount(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get members count: %w", err)
	}

	player, err := s.roomRepo.GetPlayer(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get player: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, params.ConnId)
	if err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to get conns by room id: %w", err)
	}

	return JoinRoomResponse{
		PlayerState:  toPlayerState(player),
		Participants: participants,
		Conns:        conns,
	}, nil
}

type LeaveRoomParams struct {
	ConnId string
	RoomId string
}

type LeaveRoomResponse struct {
	Participants int
	// Conns is the remaining members, for the user_left fan-out.
	Conns []*websocket.Conn
}

// LeaveRoom is idempotent: leaving a room the connection never joined
// changes nothing and the derived participant count cannot go negative.
func (s service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	s.roomLocks.Lock(params.RoomId)
	defer s.roomLocks.Unlock(params.RoomId)

	if err := s.roomRepo.RemoveMember(ctx, params.RoomId, params.ConnId); err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to remove member: %w", err)
	}

	participants, err := s.roomRepo.GetMembersCount(ctx, params.RoomId)
	if err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to get members count: %w", err)
	}

	conns, err := s.getConnsByRoomId(ctx, params.RoomId, params.ConnId)
	if err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to get conns by room id: %w", err)
	}

	return LeaveRoomResponse{
		Participants: participants,
		Conns:        conns,
	}, nil
}

type AffectedRoom struct {
	RoomId       string
	Participants int
	Conns        []*websocket.Conn
}

type DisconnectResponse struct {
	AffectedRooms []AffectedRoom
}

// Disconnect removes the connection from every room it belonged to and from
// the connection registry. Safe to call for a connection with no recorded
// memberships.
func (s service) Disconnect(ctx context.Context, conn *websocket.Conn, connId string) (DisconnectResponse, error) {
	roomIds, err := s.roomRepo.GetConnRooms(ctx, connId)
	if err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to get conn rooms: %w", err)
	}

	affectedRooms := make([]AffectedRoom, 0, len(roomIds))
	for _, roomId := range roomIds {
		leaveRoomResp, err := s.LeaveRoom(ctx, &LeaveRoomParams{
			ConnId: connId,
			RoomId: roomId,
		})
		if err != nil {
			return DisconnectResponse{}, fmt.Errorf("failed to leave room: %w", err)
		}

		affectedRooms = append(affectedRooms, AffectedRoom{
			RoomId:       roomId,
			Participants: leaveRoomResp.Participants,
			Conns:        leaveRoomResp.Conns,
		})
	}

	if err := s.roomRepo.RemoveConn(ctx, connId); err != nil {
		return DisconnectResponse{}, fmt.Errorf("failed to remove conn: %w", err)
	}

	if err := s.connRepo.RemoveByConn(conn); err != nil {
		s.logger.DebugContext(ctx, "conn already removed", "conn_id", connId, "error", err)
	}

	return DisconnectResponse{AffectedRooms: affectedRooms}, nil
}
