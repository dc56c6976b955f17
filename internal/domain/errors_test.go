package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWireCode(t *testing.T) {
	tests := []struct {
		err  error
		code string
	}{
		{ErrUnverified, CodeUnverified},
		{ErrRoomNotFound, CodeRoomNotFound},
		{ErrNotCreator, CodeNotCreator},
		{ErrCannotDeleteDefault, CodeCannotDeleteDefault},
		{ErrWrongPassword, CodeWrongPassword},
		{ErrEmptyName, CodeEmptyName},
		{errors.New("disk on fire"), ""},
		{fmt.Errorf("join: %w", ErrRoomNotFound), CodeRoomNotFound},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, WireCode(tt.err))
	}
}

func TestSnapshotFreezesProfile(t *testing.T) {
	p := NewProfile("alice")
	p.DisplayName = "Alice"
	p.AvatarRef = "a.png"

	snap := p.Snapshot(true)
	p.DisplayName = "Someone Else"

	assert.Equal(t, "Alice", snap.Name)
	assert.Equal(t, "alice", snap.ID)
	assert.True(t, snap.IsCreator)
}
