package room

import "github.com/campfire-chat/campfire/internal/domain"

// Stateless authorization predicates. All checks are exact string
// equality on opaque identities and secrets.

// IsCreator reports whether requesterID owns the room and the caller's
// claimed creator identity agrees with the record.
func IsCreator(r *Room, claimedCreatorID, requesterID string) bool {
	if r.CreatorID == "" {
		return false
	}
	return claimedCreatorID == r.CreatorID && requesterID == r.CreatorID
}

// PasswordMatches reports whether the supplied password grants entry.
// Public rooms admit everyone.
func PasswordMatches(r *Room, supplied string) bool {
	if !r.IsPrivate {
		return true
	}
	return supplied == r.password
}

// IsVerified reports whether the connection has completed the
// identity-claim handshake.
func IsVerified(p *domain.Profile) bool {
	return p != nil && p.Verified
}
