package room

import (
	"strings"

	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/ident"
	"github.com/campfire-chat/campfire/internal/logging"
)

// The default room exists for the whole process lifetime. It has no
// creator and can never be deleted or made private.
const (
	DefaultRoomID   = "lobby"
	DefaultRoomName = "Lobby"
)

// Notifier delivers events to connections. Implemented by hub.Hub.
type Notifier interface {
	ToClients(ids []string, event interface{}, excludeID string)
	ToAll(event interface{}, excludeID string)
}

// ConnectionSource resolves a connection identity to its profile.
// Implemented by hub.Hub.
type ConnectionSource interface {
	Profile(id string) (*domain.Profile, bool)
}

// Registry owns every room. The dispatcher lock serializes all calls.
type Registry struct {
	rooms map[string]*Room
	order []string // creation order, default room first

	notify      Notifier
	conns       ConnectionSource
	historyCap  int
	replayLimit int
}

func NewRegistry(notify Notifier, conns ConnectionSource, historyCap, replayLimit int) *Registry {
	reg := &Registry{
		rooms:       make(map[string]*Room),
		notify:      notify,
		conns:       conns,
		historyCap:  historyCap,
		replayLimit: replayLimit,
	}
	lobby := newRoom(DefaultRoomID, DefaultRoomName, "", "", "", historyCap)
	reg.rooms[lobby.ID] = lobby
	reg.order = append(reg.order, lobby.ID)
	return reg
}

// Get returns the room with the given identity.
func (reg *Registry) Get(roomID string) (*Room, bool) {
	r, ok := reg.rooms[roomID]
	return r, ok
}

// DefaultRoom returns the permanent lobby.
func (reg *Registry) DefaultRoom() *Room {
	return reg.rooms[DefaultRoomID]
}

// Len returns the number of rooms, default room included.
func (reg *Registry) Len() int {
	return len(reg.rooms)
}

// Create makes a new room owned by the requester. Requires a verified
// identity. A supplied password makes the room private.
func (reg *Registry) Create(name string, creator *domain.Profile, password string) (*Room, error) {
	if !IsVerified(creator) {
		return nil, domain.ErrUnverified
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = creator.DisplayName + "'s room"
	}

	r := newRoom(ident.NewRoomID(), name, creator.Identity, creator.DisplayName, password, reg.historyCap)
	reg.rooms[r.ID] = r
	reg.order = append(reg.order, r.ID)

	lg := logging.L()
	lg.Info().
		Str(logging.FieldRoomID, r.ID).
		Str(logging.FieldUserID, creator.Identity).
		Bool("private", r.IsPrivate).
		Msg("room created")
	return r, nil
}

// Join adds the requester to a room, implicitly leaving any room it
// currently occupies. The joiner gets the room metadata plus the most
// recent history; everyone else gets arrival and count notices.
func (reg *Registry) Join(roomID string, requester *domain.Profile, password string) error {
	r, ok := reg.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if !PasswordMatches(r, password) {
		return domain.ErrWrongPassword
	}

	if requester.CurrentRoom != "" && requester.CurrentRoom != roomID {
		reg.Leave(requester.CurrentRoom, requester)
	}

	r.members[requester.Identity] = struct{}{}
	requester.CurrentRoom = roomID

	reg.notify.ToClients(r.MemberIDs(), &domain.UserJoinedEvent{
		Type:   domain.EvtUserJoined,
		RoomID: r.ID,
		User:   requester.Snapshot(requester.Identity == r.CreatorID && r.CreatorID != ""),
	}, requester.Identity)

	reg.notify.ToClients([]string{requester.Identity}, &domain.RoomJoinedEvent{
		Type:    domain.EvtRoomJoined,
		Room:    r.Summary(),
		History: r.RecentHistory(reg.replayLimit),
	}, "")

	reg.notify.ToClients(r.MemberIDs(), &domain.RoomUserCountEvent{
		Type:   domain.EvtRoomUserCount,
		RoomID: r.ID,
		Count:  r.MemberCount(),
	}, "")

	return nil
}

// Leave removes the connection from the room and tells the remaining
// members. Used for explicit room switches and connection teardown.
func (reg *Registry) Leave(roomID string, p *domain.Profile) {
	r, ok := reg.rooms[roomID]
	if !ok {
		p.CurrentRoom = ""
		return
	}

	delete(r.members, p.Identity)
	if p.CurrentRoom == roomID {
		p.CurrentRoom = ""
	}

	remaining := r.MemberIDs()
	reg.notify.ToClients(remaining, &domain.UserLeftEvent{
		Type:   domain.EvtUserLeft,
		RoomID: r.ID,
		UserID: p.Identity,
		Name:   p.DisplayName,
	}, "")
	reg.notify.ToClients(remaining, &domain.RoomUserCountEvent{
		Type:   domain.EvtRoomUserCount,
		RoomID: r.ID,
		Count:  r.MemberCount(),
	}, "")
}

// Delete removes a creator-owned room. Every member is notified, force
// cleared out of the room, and the updated room list goes to everyone.
func (reg *Registry) Delete(roomID string, requester *domain.Profile, claimedCreatorID string) error {
	r, ok := reg.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if r.ID == DefaultRoomID {
		return domain.ErrCannotDeleteDefault
	}
	if !IsCreator(r, claimedCreatorID, requester.Identity) {
		return domain.ErrNotCreator
	}

	members := r.MemberIDs()
	reg.notify.ToClients(members, &domain.RoomDeletingEvent{
		Type:   domain.EvtRoomDeleting,
		RoomID: r.ID,
	}, "")

	for _, id := range members {
		if p, ok := reg.conns.Profile(id); ok && p.CurrentRoom == r.ID {
			p.CurrentRoom = ""
		}
		reg.notify.ToClients([]string{id}, &domain.ForceLeaveRoomEvent{
			Type:   domain.EvtForceLeaveRoom,
			RoomID: r.ID,
		}, "")
	}

	delete(reg.rooms, r.ID)
	for i, id := range reg.order {
		if id == r.ID {
			reg.order = append(reg.order[:i], reg.order[i+1:]...)
			break
		}
	}

	reg.notify.ToAll(&domain.RoomDeletedEvent{
		Type:   domain.EvtRoomDeleted,
		RoomID: r.ID,
	}, "")
	reg.notify.ToAll(&domain.RoomListEvent{
		Type:  domain.EvtRoomList,
		Rooms: reg.ListSummaries(),
	}, "")

	lg := logging.L()
	lg.Info().
		Str(logging.FieldRoomID, r.ID).
		Str(logging.FieldUserID, requester.Identity).
		Msg("room deleted")
	return nil
}

// Rename updates a creator-owned room's display name and refreshes the
// recorded creator name from the requester's current profile.
func (reg *Registry) Rename(roomID string, requester *domain.Profile, claimedCreatorID, newName string) error {
	r, ok := reg.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if !IsCreator(r, claimedCreatorID, requester.Identity) {
		return domain.ErrNotCreator
	}
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return domain.ErrEmptyName
	}

	r.Name = newName
	r.CreatorName = requester.DisplayName

	reg.notify.ToClients(r.MemberIDs(), &domain.RoomRenamedEvent{
		Type:        domain.EvtRoomRenamed,
		RoomID:      r.ID,
		Name:        r.Name,
		CreatorName: r.CreatorName,
	}, "")
	reg.notify.ToAll(&domain.RoomListEvent{
		Type:  domain.EvtRoomList,
		Rooms: reg.ListSummaries(),
	}, "")

	return nil
}

// ListSummaries returns the public view of every room in creation
// order, default room first.
func (reg *Registry) ListSummaries() []domain.RoomSummary {
	out := make([]domain.RoomSummary, 0, len(reg.order))
	for _, id := range reg.order {
		if r, ok := reg.rooms[id]; ok {
			out = append(out, r.Summary())
		}
	}
	return out
}
