package session

import "context"

// Snapshot is the durable session state: the four keys that must be
// written and cleared as a group. A partial clear is a correctness
// bug, so Storage implementations make both operations atomic.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	IdentityJSON []byte
	// ExpiresAt is epoch milliseconds; zero means absent, and an
	// absent or past expiry makes the session expired regardless of
	// the other fields.
	ExpiresAt int64
}

// Empty reports whether the snapshot carries no usable session.
func (s Snapshot) Empty() bool {
	return s.AccessToken == "" || len(s.IdentityJSON) == 0
}

// Storage is the durable client-side store behind the session. Only
// the session Manager writes it; every other component treats the
// session keys as read-only.
type Storage interface {
	Load(ctx context.Context) (Snapshot, error)
	Save(ctx context.Context, snap Snapshot) error
	Clear(ctx context.Context) error
}
