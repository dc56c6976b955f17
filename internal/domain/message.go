package domain

// Message is one history entry. Immutable once appended; removed only
// when its room is deleted.
type Message struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	IsImage   bool   `json:"isImage"`
	Sender    Sender `json:"sender"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds, server clock
}

// RoomSummary is the public view of a room used in room lists and the
// room-joined reply. It never carries the password or the member set.
type RoomSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CreatorID   string `json:"creatorId"`
	CreatorName string `json:"creatorName"`
	IsPrivate   bool   `json:"isPrivate"`
	UserCount   int    `json:"userCount"`
}
