package logging

// Shared field names so log lines stay greppable across packages.
const (
	FieldService = "service"
	FieldConnID  = "conn_id"
	FieldUserID  = "user_id"
	FieldRoomID  = "room_id"
	FieldMsgID   = "msg_id"
	FieldEvent   = "event"

	// Log type (for audit log)
	FieldLogType = "log_type"
	LogTypeAudit = "audit"
)
