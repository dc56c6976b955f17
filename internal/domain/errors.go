package domain

import "errors"

// Error codes surfaced to clients.
const (
	CodeUnverified          = "unverified-user"
	CodeRoomNotFound        = "room-not-found"
	CodeNotCreator          = "not-creator"
	CodeCannotDeleteDefault = "cannot-delete-default"
	CodeWrongPassword       = "wrong-password"
	CodeEmptyName           = "empty-name"
)

var (
	ErrUnverified          = errors.New("identity has not been claimed")
	ErrRoomNotFound        = errors.New("room not found")
	ErrNotCreator          = errors.New("only the room creator may do that")
	ErrCannotDeleteDefault = errors.New("the default room cannot be deleted")
	ErrWrongPassword       = errors.New("wrong room password")
	ErrEmptyName           = errors.New("room name cannot be empty")
)

// WireCode maps a domain error to its stable client-facing code.
// Unknown errors map to the empty string.
func WireCode(err error) string {
	switch {
	case errors.Is(err, ErrUnverified):
		return CodeUnverified
	case errors.Is(err, ErrRoomNotFound):
		return CodeRoomNotFound
	case errors.Is(err, ErrNotCreator):
		return CodeNotCreator
	case errors.Is(err, ErrCannotDeleteDefault):
		return CodeCannotDeleteDefault
	case errors.Is(err, ErrWrongPassword):
		return CodeWrongPassword
	case errors.Is(err, ErrEmptyName):
		return CodeEmptyName
	default:
		return ""
	}
}
