package audit

import (
	"context"

	"github.com/campfire-chat/campfire/internal/logging"
)

// Audit actions.
const (
	ActionIdentify   = "chat.identify"
	ActionCreateRoom = "chat.create_room"
	ActionDeleteRoom = "chat.delete_room"
	ActionRenameRoom = "chat.rename_room"
	ActionJoinRoom   = "chat.join_room"
	ActionLeaveRoom  = "chat.leave_room"
	ActionPost       = "chat.post"
	ActionDisconnect = "chat.disconnect"
)

// Field constants for audit entries.
const (
	FieldAction   = "action"
	FieldTargetID = "target_id"
)

// Log emits a structured audit entry via the context logger.
func Log(ctx context.Context, action, userID, msg string) {
	l := logging.Ctx(ctx)
	l.Info().
		Str(logging.FieldLogType, logging.LogTypeAudit).
		Str(FieldAction, action).
		Str(logging.FieldUserID, userID).
		Msg(msg)
}

// LogTarget emits an audit entry about an action on a target (a room
// or a message).
func LogTarget(ctx context.Context, action, userID, targetID, msg string) {
	l := logging.Ctx(ctx)
	l.Info().
		Str(logging.FieldLogType, logging.LogTypeAudit).
		Str(FieldAction, action).
		Str(logging.FieldUserID, userID).
		Str(FieldTargetID, targetID).
		Msg(msg)
}
