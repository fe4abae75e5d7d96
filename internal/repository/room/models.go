package room

type Room struct {
	Id           string `redis:"id"`
	VideoURL     string `redis:"video_url"`
	VideoId      string `redis:"video_id"`
	Title        string `redis:"title"`
	AuthorName   string `redis:"author_name"`
	ThumbnailURL string `redis:"thumbnail_url"`
	CreatedAt    int64  `redis:"created_at"`
}

// Player is the authoritative playback state of a room. UpdatedAt is stamped
// by the repository on every write and is never client-supplied.
type Player struct {
	Position  float64 `redis:"position"`
	IsPlaying bool    `redis:"is_playing"`
	UpdatedAt int64   `redis:"updated_at"`
}

type Message struct {
	Id     string `json:"id"`
	RoomId string `json:"room_id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	SentAt int64  `json:"sent_at"`
}
