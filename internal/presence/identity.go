package presence

import (
	"errors"
	"strings"
)

// Kind discriminates chat users from dashboard administrators.
type Kind int

const (
	// KindChatUser is a regular chat application user.
	KindChatUser Kind = iota
	// KindAdmin is a dashboard administrator observing presence.
	KindAdmin
)

// adminPrefix is the wire convention marking administrator connections.
// It exists only at the protocol boundary; inside the process the role
// travels as Identity.Kind.
const adminPrefix = "admin_"

// ErrNoIdentity is returned when a connection carries no resolvable identity.
var ErrNoIdentity = errors.New("missing connection identity")

// Identity names one connected party. The same identity may hold several
// live channels at once (multiple tabs, multiple devices).
type Identity struct {
	Kind Kind
	ID   string
}

// ParseIdentity resolves the wire form of an identity: a raw entity ID
// for chat users, or the admin prefix followed by the admin's ID.
func ParseIdentity(wire string) (Identity, error) {
	wire = strings.TrimSpace(wire)
	if wire == "" {
		return Identity{}, ErrNoIdentity
	}
	if rest, ok := strings.CutPrefix(wire, adminPrefix); ok {
		if rest == "" {
			return Identity{}, ErrNoIdentity
		}
		return Identity{Kind: KindAdmin, ID: rest}, nil
	}
	return Identity{Kind: KindChatUser, ID: wire}, nil
}

// String returns the wire form of the identity.
func (id Identity) String() string {
	if id.Kind == KindAdmin {
		return adminPrefix + id.ID
	}
	return id.ID
}

// IsAdmin reports whether the identity belongs to an administrator.
func (id Identity) IsAdmin() bool {
	return id.Kind == KindAdmin
}
