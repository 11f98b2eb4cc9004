package switcher

import (
	"fmt"

	"github.com/ideswap/ideswap/internal/session"
	"go.uber.org/zap"
)

// Load makes identity the IDE's active session. The live store is
// written before last_used is touched, so an interruption leaves the
// IDE switched with stale bookkeeping rather than the reverse.
func (s *Switcher) Load(identity string) (*session.Session, error) {
	sess, err := s.repo.Get(identity)
	if err != nil {
		return nil, err
	}

	if err := s.live.WriteCurrent(sess.AuthBlob, sess.SecondaryBlob); err != nil {
		return nil, fmt.Errorf("load %s: %w", identity, err)
	}

	now := s.unixNow()
	if err := s.repo.TouchLastUsed(identity, now); err != nil {
		return nil, fmt.Errorf("load %s: live store switched but bookkeeping failed: %w", identity, err)
	}
	sess.LastUsed = now

	s.log.Info("session loaded", zap.String("identity", identity))
	return sess, nil
}
