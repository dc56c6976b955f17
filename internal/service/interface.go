package service

import (
	"context"

	"github.com/campfire-chat/campfire/internal/domain"
	"github.com/campfire-chat/campfire/internal/hub"
)

// ChatService handles every inbound event after decoding. Each method
// runs to completion, broadcasts included, before the next event for
// any connection is processed.
type ChatService interface {
	HandleConnect(ctx context.Context, c *hub.Client) error
	HandleIdentify(ctx context.Context, c *hub.Client, ev domain.UserEvent) error
	HandleCreateRoom(ctx context.Context, c *hub.Client, ev domain.CreateRoomEvent) error
	HandleJoinRoom(ctx context.Context, c *hub.Client, ev domain.JoinRoomEvent) error
	HandlePost(ctx context.Context, c *hub.Client, ev domain.PostEvent, isImage bool) error
	HandleDeleteRoom(ctx context.Context, c *hub.Client, ev domain.DeleteRoomEvent) error
	HandleRenameRoom(ctx context.Context, c *hub.Client, ev domain.RenameRoomEvent) error
	HandleOnlineCount(ctx context.Context, c *hub.Client) error
	HandleDisconnect(ctx context.Context, c *hub.Client) error
}
