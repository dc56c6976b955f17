package domain

// WebSocket event types from client.
const (
	EvtUser           = "user"
	EvtCreateRoom     = "create-room"
	EvtJoinRoom       = "join-room"
	EvtMessage        = "message"
	EvtImage          = "image"
	EvtDeleteRoom     = "delete-room"
	EvtRenameRoom     = "rename-room"
	EvtGetOnlineCount = "get-online-count"
)

// WebSocket event types to client.
const (
	EvtInit           = "init"
	EvtError          = "error"
	EvtUserJoined     = "user-joined"
	EvtUserLeft       = "user-left"
	EvtRoomJoined     = "room-joined"
	EvtRoomList       = "room-list"
	EvtRoomUserCount  = "room-user-count"
	EvtOnlineCount    = "online-count"
	EvtRoomDeleting   = "room-deleting"
	EvtForceLeaveRoom = "force-leave-room"
	EvtRoomDeleted    = "room-deleted"
	EvtRoomRenamed    = "room-renamed"
)

// BaseEvent carries the type tag used to route an inbound frame.
type BaseEvent struct {
	Type string `json:"type"`
}

// Client -> Server events

type UserEvent struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}

type CreateRoomEvent struct {
	Type     string `json:"type"`
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

type JoinRoomEvent struct {
	Type     string `json:"type"`
	RoomID   string `json:"roomId"`
	Password string `json:"password,omitempty"`
}

type PostEvent struct {
	Type    string `json:"type"`
	ID      string `json:"id,omitempty"`
	Content string `json:"content"`
}

type DeleteRoomEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	CreatorID string `json:"creatorId"`
}

type RenameRoomEvent struct {
	Type      string `json:"type"`
	RoomID    string `json:"roomId"`
	CreatorID string `json:"creatorId"`
	NewName   string `json:"newName"`
}

// Server -> Client events

type InitEvent struct {
	Type        string        `json:"type"`
	Rooms       []RoomSummary `json:"rooms"`
	OnlineCount int           `json:"onlineCount"`
}

type ErrorEvent struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type UserJoinedEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	User   Sender `json:"user"`
}

type UserLeftEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type RoomJoinedEvent struct {
	Type    string      `json:"type"`
	Room    RoomSummary `json:"room"`
	History []Message   `json:"history"`
}

type RoomListEvent struct {
	Type  string        `json:"type"`
	Rooms []RoomSummary `json:"rooms"`
}

type RoomUserCountEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Count  int    `json:"count"`
}

type OnlineCountEvent struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

type RoomDeletingEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type ForceLeaveRoomEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type RoomDeletedEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
}

type RoomRenamedEvent struct {
	Type        string `json:"type"`
	RoomID      string `json:"roomId"`
	Name        string `json:"name"`
	CreatorName string `json:"creatorName"`
}

// MessageEvent fans a posted message out to room members. Type is
// EvtMessage or EvtImage to mirror the inbound frame that produced it.
type MessageEvent struct {
	Type   string `json:"type"`
	RoomID string `json:"roomId"`
	Message
}

func NewErrorEvent(code, message string) *ErrorEvent {
	return &ErrorEvent{
		Type:    EvtError,
		Code:    code,
		Message: message,
	}
}
