package service

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campfire-chat/campfire/internal/config"
	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/hub"
	"github.com/campfire-chat/campfire/internal/room"
)

type fixture struct {
	svc   ChatService
	hub   *hub.Hub
	rooms *room.Registry
}

func newFixture() *fixture {
	h := hub.New()
	rooms := room.NewRegistry(h, h, 500, 50)
	return &fixture{svc: New(h, rooms), hub: h, rooms: rooms}
}

func (f *fixture) connect(t *testing.T, id string) *hub.Client {
	t.Helper()
	c := hub.NewClient(id, nil, config.WebSocketConfig{SendBuffer: 64})
	require.NoError(t, f.svc.HandleConnect(context.Background(), c))
	return c
}

func (f *fixture) identify(t *testing.T, c *hub.Client, id, name string) {
	t.Helper()
	require.NoError(t, f.svc.HandleIdentify(context.Background(), c, domain.UserEvent{
		Type: domain.EvtUser, ID: id, Name: name, Avatar: "a.png",
	}))
}

// events drains and decodes everything queued on the client's outbox.
func events(t *testing.T, c *hub.Client) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for {
		select {
		case data := <-c.Send:
			var ev map[string]interface{}
			require.NoError(t, json.Unmarshal(data, &ev))
			out = append(out, ev)
		default:
			return out
		}
	}
}

func ofType(evs []map[string]interface{}, typ string) []map[string]interface{} {
	var out []map[string]interface{}
	for _, ev := range evs {
		if ev["type"] == typ {
			out = append(out, ev)
		}
	}
	return out
}

func TestConnectSendsInit(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")

	evs := events(t, a)
	inits := ofType(evs, domain.EvtInit)
	require.Len(t, inits, 1)

	rooms := inits[0]["rooms"].([]interface{})
	require.Len(t, rooms, 1)
	assert.Equal(t, room.DefaultRoomID, rooms[0].(map[string]interface{})["id"])
	assert.Equal(t, float64(1), inits[0]["onlineCount"])
}

func TestOnlineCountTracksConnectsAndDisconnects(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	b := f.connect(t, "conn-b")
	f.connect(t, "conn-c")
	require.Equal(t, 3, f.hub.Count())

	events(t, a) // clear
	require.NoError(t, f.svc.HandleDisconnect(ctx, b))

	counts := ofType(events(t, a), domain.EvtOnlineCount)
	require.NotEmpty(t, counts)
	assert.Equal(t, float64(2), counts[len(counts)-1]["count"])
	assert.Equal(t, 2, f.hub.Count())
}

func TestIdentifyVerifiesAndRekeys(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "temp-id")

	f.identify(t, a, "alice", "Alice")

	assert.Equal(t, "alice", a.ID())
	assert.Equal(t, "alice", a.Profile.Identity)
	assert.Equal(t, "Alice", a.Profile.DisplayName)
	assert.True(t, a.Profile.Verified)

	_, ok := f.hub.Lookup("temp-id")
	assert.False(t, ok)
	_, ok = f.hub.Lookup("alice")
	assert.True(t, ok)

	// Repeat claims are idempotent.
	f.identify(t, a, "alice", "Alice")
	assert.True(t, a.Profile.Verified)
}

func TestIdentifyCollisionKeepsAssignedIdentity(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")
	b := f.connect(t, "conn-b")

	f.identify(t, a, "alice", "Alice")
	f.identify(t, b, "alice", "Imposter")

	assert.Equal(t, "conn-b", b.ID())
	assert.True(t, b.Profile.Verified, "collision still verifies the connection")
	assert.Equal(t, "Imposter", b.Profile.DisplayName)
}

func TestCreateRoomRequiresVerifiedIdentity(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")
	events(t, a)

	require.NoError(t, f.svc.HandleCreateRoom(context.Background(), a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Books",
	}))

	errs := ofType(events(t, a), domain.EvtError)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeUnverified, errs[0]["code"])
	assert.Equal(t, 1, f.rooms.Len(), "no room beyond the lobby")
}

func TestCreateRoomAutoJoins(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	events(t, a)

	require.NoError(t, f.svc.HandleCreateRoom(context.Background(), a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Books",
	}))

	evs := events(t, a)
	joined := ofType(evs, domain.EvtRoomJoined)
	require.Len(t, joined, 1)

	roomInfo := joined[0]["room"].(map[string]interface{})
	assert.Equal(t, "Books", roomInfo["name"])
	assert.Equal(t, "alice", roomInfo["creatorId"])
	assert.Empty(t, joined[0]["history"])

	assert.NotEmpty(t, a.Profile.CurrentRoom)
	r, ok := f.rooms.Get(a.Profile.CurrentRoom)
	require.True(t, ok)
	assert.True(t, r.HasMember("alice"))

	// Everyone hears about the new room.
	require.NotEmpty(t, ofType(evs, domain.EvtRoomList))
}

func TestJoinWrongPassword(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleCreateRoom(ctx, a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Secrets", Password: "secret",
	}))

	b := f.connect(t, "conn-b")
	f.identify(t, b, "bob", "Bob")
	require.NoError(t, f.svc.HandleJoinRoom(ctx, b, domain.JoinRoomEvent{
		Type: domain.EvtJoinRoom, RoomID: room.DefaultRoomID,
	}))
	events(t, b)

	require.NoError(t, f.svc.HandleJoinRoom(ctx, b, domain.JoinRoomEvent{
		Type: domain.EvtJoinRoom, RoomID: a.Profile.CurrentRoom, Password: "wrong",
	}))

	errs := ofType(events(t, b), domain.EvtError)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeWrongPassword, errs[0]["code"])
	assert.Equal(t, room.DefaultRoomID, b.Profile.CurrentRoom, "failed join leaves membership untouched")
}

func TestMessageFanout(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleCreateRoom(ctx, a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Books", Password: "secret",
	}))
	roomID := a.Profile.CurrentRoom

	b := f.connect(t, "conn-b")
	f.identify(t, b, "bob", "Bob")
	require.NoError(t, f.svc.HandleJoinRoom(ctx, b, domain.JoinRoomEvent{
		Type: domain.EvtJoinRoom, RoomID: roomID, Password: "secret",
	}))
	events(t, a)
	events(t, b)

	require.NoError(t, f.svc.HandlePost(ctx, a, domain.PostEvent{
		Type: domain.EvtMessage, ID: "m1", Content: "hi",
	}, false))

	r, ok := f.rooms.Get(roomID)
	require.True(t, ok)
	require.Equal(t, 1, r.HistoryLen())
	entry := r.RecentHistory(1)[0]
	assert.Equal(t, "m1", entry.ID)
	assert.True(t, entry.Sender.IsCreator)
	assert.Equal(t, "Alice", entry.Sender.Name)
	assert.NotZero(t, entry.Timestamp)

	got := ofType(events(t, b), domain.EvtMessage)
	require.Len(t, got, 1)
	assert.Equal(t, "m1", got[0]["id"])
	assert.Equal(t, "hi", got[0]["content"])

	assert.Empty(t, ofType(events(t, a), domain.EvtMessage), "sender is excluded from its own fanout")
}

func TestImagePost(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleJoinRoom(ctx, a, domain.JoinRoomEvent{
		Type: domain.EvtJoinRoom, RoomID: room.DefaultRoomID,
	}))

	require.NoError(t, f.svc.HandlePost(ctx, a, domain.PostEvent{
		Type: domain.EvtImage, Content: "data:image/png;base64,xyz",
	}, true))

	lobby := f.rooms.DefaultRoom()
	require.Equal(t, 1, lobby.HistoryLen())
	entry := lobby.RecentHistory(1)[0]
	assert.True(t, entry.IsImage)
	assert.NotEmpty(t, entry.ID, "server assigns an id when the client sends none")
	assert.False(t, entry.Sender.IsCreator, "lobby has no creator")
}

func TestPostWithoutRoomIsDropped(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	events(t, a)

	require.NoError(t, f.svc.HandlePost(context.Background(), a, domain.PostEvent{
		Type: domain.EvtMessage, Content: "void",
	}, false))

	assert.Empty(t, events(t, a), "no error event, no fanout")
	assert.Equal(t, 0, f.rooms.DefaultRoom().HistoryLen())
}

func TestDisconnectLeavesRoomButKeepsIt(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleCreateRoom(ctx, a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Books",
	}))
	roomID := a.Profile.CurrentRoom

	require.NoError(t, f.svc.HandleDisconnect(ctx, a))

	r, ok := f.rooms.Get(roomID)
	require.True(t, ok, "rooms outlive their members")
	assert.Equal(t, 0, r.MemberCount())
	assert.Equal(t, 0, f.hub.Count())
}

func TestDeleteRoomEndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleCreateRoom(ctx, a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Books",
	}))
	roomID := a.Profile.CurrentRoom

	b := f.connect(t, "conn-b")
	f.identify(t, b, "bob", "Bob")
	require.NoError(t, f.svc.HandleJoinRoom(ctx, b, domain.JoinRoomEvent{
		Type: domain.EvtJoinRoom, RoomID: roomID,
	}))
	events(t, a)
	events(t, b)

	// Bob cannot delete Alice's room.
	require.NoError(t, f.svc.HandleDeleteRoom(ctx, b, domain.DeleteRoomEvent{
		Type: domain.EvtDeleteRoom, RoomID: roomID, CreatorID: "alice",
	}))
	errs := ofType(events(t, b), domain.EvtError)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeNotCreator, errs[0]["code"])

	require.NoError(t, f.svc.HandleDeleteRoom(ctx, a, domain.DeleteRoomEvent{
		Type: domain.EvtDeleteRoom, RoomID: roomID, CreatorID: "alice",
	}))

	_, ok := f.rooms.Get(roomID)
	assert.False(t, ok)
	assert.Empty(t, a.Profile.CurrentRoom)
	assert.Empty(t, b.Profile.CurrentRoom)

	bobEvs := events(t, b)
	assert.NotEmpty(t, ofType(bobEvs, domain.EvtRoomDeleting))
	assert.NotEmpty(t, ofType(bobEvs, domain.EvtForceLeaveRoom))
	assert.NotEmpty(t, ofType(bobEvs, domain.EvtRoomDeleted))
}

func TestDeleteDefaultRoom(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	events(t, a)

	require.NoError(t, f.svc.HandleDeleteRoom(context.Background(), a, domain.DeleteRoomEvent{
		Type: domain.EvtDeleteRoom, RoomID: room.DefaultRoomID, CreatorID: "alice",
	}))

	errs := ofType(events(t, a), domain.EvtError)
	require.Len(t, errs, 1)
	assert.Equal(t, domain.CodeCannotDeleteDefault, errs[0]["code"])
}

func TestRenameRoomEndToEnd(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleCreateRoom(ctx, a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "Books",
	}))
	roomID := a.Profile.CurrentRoom
	events(t, a)

	require.NoError(t, f.svc.HandleRenameRoom(ctx, a, domain.RenameRoomEvent{
		Type: domain.EvtRenameRoom, RoomID: roomID, CreatorID: "alice", NewName: "Poems",
	}))

	r, _ := f.rooms.Get(roomID)
	assert.Equal(t, "Poems", r.Name)

	evs := events(t, a)
	renamed := ofType(evs, domain.EvtRoomRenamed)
	require.Len(t, renamed, 1)
	assert.Equal(t, "Poems", renamed[0]["name"])
}

func TestGetOnlineCount(t *testing.T) {
	f := newFixture()
	a := f.connect(t, "conn-a")
	f.connect(t, "conn-b")
	events(t, a)

	require.NoError(t, f.svc.HandleOnlineCount(context.Background(), a))

	counts := ofType(events(t, a), domain.EvtOnlineCount)
	require.Len(t, counts, 1)
	assert.Equal(t, float64(2), counts[0]["count"])
}

func TestSwitchingRoomsSingleMembership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a := f.connect(t, "conn-a")
	f.identify(t, a, "alice", "Alice")
	require.NoError(t, f.svc.HandleCreateRoom(ctx, a, domain.CreateRoomEvent{
		Type: domain.EvtCreateRoom, Name: "A",
	}))
	first := a.Profile.CurrentRoom

	require.NoError(t, f.svc.HandleJoinRoom(ctx, a, domain.JoinRoomEvent{
		Type: domain.EvtJoinRoom, RoomID: room.DefaultRoomID,
	}))

	assert.Equal(t, room.DefaultRoomID, a.Profile.CurrentRoom)
	r, _ := f.rooms.Get(first)
	assert.False(t, r.HasMember("alice"))
	assert.True(t, f.rooms.DefaultRoom().HasMember("alice"))
}
