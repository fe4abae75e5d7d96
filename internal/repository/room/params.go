package room

type SetRoomParams struct {
	Room Room
}

type SetPlayerParams struct {
	RoomId    string
	Position  float64
	IsPlaying bool
}

// UpdatePlayerStateParams carries a partial update: nil fields keep their
// stored value.
type UpdatePlayerStateParams struct {
	RoomId    string
	Position  *float64
	IsPlaying *bool
}

type AddMemberParams struct {
	RoomId string
	ConnId string
}

type RemoveMemberParams struct {
	RoomId string
	ConnId string
}

type AddMessageParams struct {
	RoomId  string
	Message Message
}
