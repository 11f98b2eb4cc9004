package session

import "errors"

// ErrNotFound is returned when an identity has no stored session.
var ErrNotFound = errors.New("session not found")

// ErrEmptyIdentity is returned when a snapshot without an identity is
// offered for storage.
var ErrEmptyIdentity = errors.New("session identity is empty")

// Session is one stored account session, keyed by Identity.
// AuthBlob and SecondaryBlob are kept exactly as read from the IDE.
// Timestamps are Unix seconds; LastUsed is 0 until the session is loaded.
type Session struct {
	Identity      string
	DisplayName   string
	AuthBlob      string
	SecondaryBlob string
	LastUsed      int64
	CreatedAt     int64
	UpdatedAt     int64
}

// Snapshot is the identity and payload captured from the live store.
type Snapshot struct {
	Identity      string
	DisplayName   string
	AuthBlob      string
	SecondaryBlob string
}

// SameBlobs reports whether s holds exactly the payload of snap.
// Comparison is byte-for-byte; re-serialized JSON counts as a change.
func (s *Session) SameBlobs(snap Snapshot) bool {
	return s.AuthBlob == snap.AuthBlob && s.SecondaryBlob == snap.SecondaryBlob
}
