package switcher

import "github.com/ideswap/ideswap/internal/session"

// NextOutcome is what Next ended up doing.
type NextOutcome int

const (
	// NextEmpty: the repository has no sessions.
	NextEmpty NextOutcome = iota
	// NextAlreadyActive: the only stored session is already live.
	NextAlreadyActive
	// NextSwitched: a different session was loaded.
	NextSwitched
)

// NextResult describes one Next invocation.
type NextResult struct {
	Sync    SyncResult
	Outcome NextOutcome
	From    string
	To      *session.Session
}

// Next syncs the live session, then loads the one that follows it.
func (s *Switcher) Next() (*NextResult, error) {
	synced, err := s.Sync()
	if err != nil {
		return nil, err
	}
	res := &NextResult{Sync: synced}

	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	res.From = current

	next, err := s.NextSession(current)
	if err != nil {
		return nil, err
	}
	if next == nil {
		res.Outcome = NextEmpty
		return res, nil
	}
	if next.Identity == current {
		res.Outcome = NextAlreadyActive
		res.To = next
		return res, nil
	}

	loaded, err := s.Load(next.Identity)
	if err != nil {
		return nil, err
	}
	res.Outcome = NextSwitched
	res.To = loaded
	return res, nil
}
