// Package room owns room state: membership, metadata, and history.
package room

import (
	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/history"
)

// Room is one conversation channel. The registry serializes all access;
// the struct carries no locking of its own.
type Room struct {
	ID          string
	Name        string
	CreatorID   string
	CreatorName string
	IsPrivate   bool

	password string
	members  map[string]struct{}
	history  *history.Ring
}

func newRoom(id, name, creatorID, creatorName, password string, historyCap int) *Room {
	return &Room{
		ID:          id,
		Name:        name,
		CreatorID:   creatorID,
		CreatorName: creatorName,
		IsPrivate:   password != "",
		password:    password,
		members:     make(map[string]struct{}),
		history:     history.NewRing(historyCap),
	}
}

// MemberIDs returns a snapshot of the member identity set. Order is
// unspecified.
func (r *Room) MemberIDs() []string {
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) MemberCount() int {
	return len(r.members)
}

func (r *Room) HasMember(id string) bool {
	_, ok := r.members[id]
	return ok
}

// Append adds a message to the room's history.
func (r *Room) Append(msg domain.Message) {
	r.history.Append(msg)
}

// RecentHistory returns up to n of the newest history entries in
// arrival order.
func (r *Room) RecentHistory(n int) []domain.Message {
	return r.history.Recent(n)
}

// HistoryLen reports how many messages the room currently retains.
func (r *Room) HistoryLen() int {
	return r.history.Len()
}

// Summary is the public view of the room. Password and member set stay
// internal.
func (r *Room) Summary() domain.RoomSummary {
	return domain.RoomSummary{
		ID:          r.ID,
		Name:        r.Name,
		CreatorID:   r.CreatorID,
		CreatorName: r.CreatorName,
		IsPrivate:   r.IsPrivate,
		UserCount:   len(r.members),
	}
}
