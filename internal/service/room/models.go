package room

type Room struct {
	Id           string `json:"id"`
	VideoURL     string `json:"video_url"`
	VideoId      string `json:"video_id"`
	Title        string `json:"title,omitempty"`
	AuthorName   string `json:"author_name,omitempty"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	CreatedAt    int64  `json:"created_at"`
	Participants int    `json:"participants"`
}

// PlayerState is the reconciliation snapshot clients extrapolate from:
// displayed position = position + (now - timestamp) while playing.
type PlayerState struct {
	Position  float64 `json:"position"`
	IsPlaying bool    `json:"is_playing"`
	UpdatedAt int64   `json:"timestamp"`
}

type Message struct {
	Id     string `json:"id"`
	RoomId string `json:"room_id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
	SentAt int64  `json:"sent_at"`
}
