// Package ident generates the three identifier kinds the relay hands out.
// Connections get UUIDs, rooms get short nanoids, messages get KSUIDs so
// their IDs sort by creation time.
package ident

import (
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/segmentio/ksuid"
)

const roomIDSize = 12

// NewConnectionID returns a server-assigned identity for a fresh connection.
func NewConnectionID() string {
	return uuid.New().String()
}

// NewRoomID returns a URL-friendly room identity.
func NewRoomID() string {
	id, err := gonanoid.New(roomIDSize)
	if err != nil {
		// gonanoid only fails when the OS entropy source does; nothing
		// sensible to do but fall back to a UUID.
		return uuid.New().String()
	}
	return id
}

// NewMessageID returns a message identity, sortable by creation time.
func NewMessageID() string {
	return ksuid.New().String()
}
