package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/campfire-chat/campfire/internal/audit"
	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/hub"
	"github.com/campfire-chat/campfire/internal/ident"
	"github.com/campfire-chat/campfire/internal/logging"
	"github.com/campfire-chat/campfire/internal/room"
)

type chatService struct {
	// mu serializes all event handling: every handler runs start to
	// finish under it, including broadcast enqueues, so registry state
	// never sees interleaved mutation.
	mu sync.Mutex

	hub   *hub.Hub
	rooms *room.Registry
}

func New(h *hub.Hub, rooms *room.Registry) ChatService {
	return &chatService{hub: h, rooms: rooms}
}

// live reports whether the client is still the registered holder of
// its identity. Frames from a connection torn down earlier in the same
// batch are dropped.
func (s *chatService) live(c *hub.Client) bool {
	cur, ok := s.hub.Lookup(c.ID())
	return ok && cur == c
}

func (s *chatService) sendError(c *hub.Client, err error) error {
	code := domain.WireCode(err)
	if code == "" {
		return err
	}
	c.SendEvent(domain.NewErrorEvent(code, err.Error()))
	return nil
}

func (s *chatService) broadcastOnlineCount() {
	s.hub.ToAll(&domain.OnlineCountEvent{
		Type:  domain.EvtOnlineCount,
		Count: s.hub.Count(),
	}, "")
}

func (s *chatService) HandleConnect(ctx context.Context, c *hub.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hub.Register(c)

	if err := c.SendEvent(&domain.InitEvent{
		Type:        domain.EvtInit,
		Rooms:       s.rooms.ListSummaries(),
		OnlineCount: s.hub.Count(),
	}); err != nil {
		return err
	}

	s.broadcastOnlineCount()
	return nil
}

func (s *chatService) HandleIdentify(ctx context.Context, c *hub.Client, ev domain.UserEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	if ev.ID != "" && ev.ID != c.ID() {
		if err := s.hub.Rekey(c.ID(), ev.ID); err != nil {
			if !errors.Is(err, hub.ErrIdentityInUse) {
				return err
			}
			// Claimed identity is taken; keep the server-assigned one.
			lg := logging.Ctx(ctx)
			lg.Warn().
				Str(logging.FieldConnID, c.ID()).
				Str("claimed_id", ev.ID).
				Msg("identity claim collided, keeping assigned identity")
		} else {
			c.Profile.Identity = ev.ID
		}
	}

	if ev.Name != "" {
		c.Profile.DisplayName = ev.Name
	}
	c.Profile.AvatarRef = ev.Avatar
	c.Profile.Verified = true

	audit.Log(ctx, audit.ActionIdentify, c.Profile.Identity, "identity claimed")
	return nil
}

func (s *chatService) HandleCreateRoom(ctx context.Context, c *hub.Client, ev domain.CreateRoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	r, err := s.rooms.Create(ev.Name, c.Profile, ev.Password)
	if err != nil {
		return s.sendError(c, err)
	}

	// The creator auto-joins the room it just made.
	if err := s.rooms.Join(r.ID, c.Profile, ev.Password); err != nil {
		return s.sendError(c, err)
	}

	s.hub.ToAll(&domain.RoomListEvent{
		Type:  domain.EvtRoomList,
		Rooms: s.rooms.ListSummaries(),
	}, "")

	audit.LogTarget(ctx, audit.ActionCreateRoom, c.Profile.Identity, r.ID, "room created")
	return nil
}

func (s *chatService) HandleJoinRoom(ctx context.Context, c *hub.Client, ev domain.JoinRoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	if err := s.rooms.Join(ev.RoomID, c.Profile, ev.Password); err != nil {
		return s.sendError(c, err)
	}

	audit.LogTarget(ctx, audit.ActionJoinRoom, c.Profile.Identity, ev.RoomID, "joined room")
	return nil
}

func (s *chatService) HandlePost(ctx context.Context, c *hub.Client, ev domain.PostEvent, isImage bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	roomID := c.Profile.CurrentRoom
	if roomID == "" {
		// Posting without a room is a protocol slip, not an error the
		// client gets told about.
		lg := logging.Ctx(ctx)
		lg.Debug().
			Str(logging.FieldConnID, c.ID()).
			Msg("post dropped, connection not in a room")
		return nil
	}
	r, ok := s.rooms.Get(roomID)
	if !ok {
		c.Profile.CurrentRoom = ""
		return nil
	}

	msgID := ev.ID
	if msgID == "" {
		msgID = ident.NewMessageID()
	}

	evtType := domain.EvtMessage
	if isImage {
		evtType = domain.EvtImage
	}

	msg := domain.Message{
		ID:        msgID,
		Content:   ev.Content,
		IsImage:   isImage,
		Sender:    c.Profile.Snapshot(r.CreatorID != "" && c.Profile.Identity == r.CreatorID),
		Timestamp: time.Now().UnixMilli(),
	}
	r.Append(msg)

	s.hub.ToClients(r.MemberIDs(), &domain.MessageEvent{
		Type:    evtType,
		RoomID:  r.ID,
		Message: msg,
	}, c.Profile.Identity)

	audit.LogTarget(ctx, audit.ActionPost, c.Profile.Identity, msg.ID, "message posted")
	return nil
}

func (s *chatService) HandleDeleteRoom(ctx context.Context, c *hub.Client, ev domain.DeleteRoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	if err := s.rooms.Delete(ev.RoomID, c.Profile, ev.CreatorID); err != nil {
		return s.sendError(c, err)
	}

	audit.LogTarget(ctx, audit.ActionDeleteRoom, c.Profile.Identity, ev.RoomID, "room deleted")
	return nil
}

func (s *chatService) HandleRenameRoom(ctx context.Context, c *hub.Client, ev domain.RenameRoomEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	if err := s.rooms.Rename(ev.RoomID, c.Profile, ev.CreatorID, ev.NewName); err != nil {
		return s.sendError(c, err)
	}

	audit.LogTarget(ctx, audit.ActionRenameRoom, c.Profile.Identity, ev.RoomID, "room renamed")
	return nil
}

func (s *chatService) HandleOnlineCount(ctx context.Context, c *hub.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.live(c) {
		return nil
	}

	return c.SendEvent(&domain.OnlineCountEvent{
		Type:  domain.EvtOnlineCount,
		Count: s.hub.Count(),
	})
}

func (s *chatService) HandleDisconnect(ctx context.Context, c *hub.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.Profile.CurrentRoom != "" {
		s.rooms.Leave(c.Profile.CurrentRoom, c.Profile)
	}

	s.hub.Deregister(c.ID())
	s.broadcastOnlineCount()

	audit.Log(ctx, audit.ActionDisconnect, c.Profile.Identity, "connection closed")
	return nil
}
