// Package switcher rotates the IDE between stored account sessions.
//
// Sync captures whatever the IDE is signed in with into the repository,
// NextSession picks the session that follows the current one, and Load
// writes a stored session back into the IDE. Next runs all three.
// No rotation cursor is kept: the current position is always derived
// from the live store.
package switcher

import (
	"time"

	"github.com/ideswap/ideswap/internal/livestore"
	"github.com/ideswap/ideswap/internal/session"
	"go.uber.org/zap"
)

// LiveStore is the IDE's credential store.
type LiveStore interface {
	ReadCurrent() (*livestore.Current, error)
	WriteCurrent(authBlob, secondaryBlob string) error
}

// Switcher ties the live store to the session repository.
type Switcher struct {
	live LiveStore
	repo session.Store
	log  *zap.Logger
	now  func() time.Time
}

// New creates a Switcher. A nil logger disables logging.
func New(live LiveStore, repo session.Store, log *zap.Logger) *Switcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Switcher{
		live: live,
		repo: repo,
		log:  log.Named("switcher"),
		now:  time.Now,
	}
}

// SetClock replaces the time source used for repository timestamps.
func (s *Switcher) SetClock(now func() time.Time) {
	s.now = now
}

func (s *Switcher) unixNow() int64 {
	return s.now().Unix()
}

// Current returns the live identity, or "" when the IDE is signed out.
func (s *Switcher) Current() (string, error) {
	cur, err := s.live.ReadCurrent()
	if err != nil {
		return "", err
	}
	if cur == nil {
		return "", nil
	}
	return cur.Identity, nil
}

// List returns all sessions, most recently used first, together with the
// live identity. A live store that cannot be read only loses the marker.
func (s *Switcher) List() ([]session.Session, string, error) {
	sessions, err := s.repo.List(session.ByLastUsedDesc)
	if err != nil {
		return nil, "", err
	}
	current, err := s.Current()
	if err != nil {
		s.log.Warn("cannot read live store, active session unknown", zap.Error(err))
		current = ""
	}
	return sessions, current, nil
}

// Delete removes a stored session. The live store is not touched.
func (s *Switcher) Delete(identity string) error {
	if err := s.repo.Delete(identity); err != nil {
		return err
	}
	s.log.Info("session deleted", zap.String("identity", identity))
	return nil
}
