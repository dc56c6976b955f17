package domain

// Default profile values before the client claims an identity.
const (
	DefaultDisplayName = "anonymous"
	DefaultAvatarRef   = ""
)

// Profile is the mutable per-connection identity state. All access is
// serialized by the dispatcher lock; the struct carries no locking of
// its own.
type Profile struct {
	Identity    string
	DisplayName string
	AvatarRef   string
	CurrentRoom string
	Verified    bool
}

func NewProfile(identity string) *Profile {
	return &Profile{
		Identity:    identity,
		DisplayName: DefaultDisplayName,
		AvatarRef:   DefaultAvatarRef,
	}
}

// Sender captures who posted a message. It is written into history at
// send time, so later profile changes do not rewrite old messages.
type Sender struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Avatar    string `json:"avatar"`
	IsCreator bool   `json:"isCreator"`
}

// Snapshot freezes the profile into a Sender.
func (p *Profile) Snapshot(isCreator bool) Sender {
	return Sender{
		ID:        p.Identity,
		Name:      p.DisplayName,
		Avatar:    p.AvatarRef,
		IsCreator: isCreator,
	}
}
