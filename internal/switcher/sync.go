package switcher

import (
	"errors"
	"fmt"

	"github.com/ideswap/ideswap/internal/session"
	"go.uber.org/zap"
)

// SyncStatus is the outcome of Sync.
type SyncStatus int

const (
	NoActiveSession SyncStatus = iota
	Added
	Updated
	Unchanged
)

func (st SyncStatus) String() string {
	switch st {
	case Added:
		return "added"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return "no active session"
	}
}

// SyncResult reports what Sync did and for which identity.
type SyncResult struct {
	Status   SyncStatus
	Identity string
}

// Sync stores the IDE's current session: a new identity is inserted, a
// known one is updated only when either blob differs byte-for-byte.
func (s *Switcher) Sync() (SyncResult, error) {
	cur, err := s.live.ReadCurrent()
	if err != nil {
		return SyncResult{}, err
	}
	if cur == nil {
		return SyncResult{Status: NoActiveSession}, nil
	}

	snap := session.Snapshot{
		Identity:      cur.Identity,
		DisplayName:   cur.DisplayName,
		AuthBlob:      cur.AuthBlob,
		SecondaryBlob: cur.SecondaryBlob,
	}
	result := SyncResult{Identity: cur.Identity}

	stored, err := s.repo.Get(cur.Identity)
	switch {
	case errors.Is(err, session.ErrNotFound):
		if err := s.repo.Insert(snap, s.unixNow()); err != nil {
			return SyncResult{}, err
		}
		result.Status = Added
	case err != nil:
		return SyncResult{}, fmt.Errorf("sync %s: %w", cur.Identity, err)
	case !stored.SameBlobs(snap):
		if err := s.repo.UpdateBlobs(snap, s.unixNow()); err != nil {
			return SyncResult{}, err
		}
		result.Status = Updated
	default:
		result.Status = Unchanged
	}

	s.log.Debug("synced live session",
		zap.String("identity", result.Identity), zap.Stringer("status", result.Status))
	return result, nil
}
