package switcher

import "github.com/ideswap/ideswap/internal/session"

// NextSession returns the session after current in ordered, wrapping
// around at the end. ordered must already be sorted by last_used then
// identity (session.ByLastUsedAsc). With no sessions it returns nil;
// with one it returns that one; when current is empty or unknown it
// returns the first.
func NextSession(ordered []session.Session, current string) *session.Session {
	switch len(ordered) {
	case 0:
		return nil
	case 1:
		return &ordered[0]
	}
	if current == "" {
		return &ordered[0]
	}
	for i := range ordered {
		if ordered[i].Identity == current {
			return &ordered[(i+1)%len(ordered)]
		}
	}
	return &ordered[0]
}

// NextSession loads the rotation order from the repository and picks
// the session following current.
func (s *Switcher) NextSession(current string) (*session.Session, error) {
	ordered, err := s.repo.List(session.ByLastUsedAsc)
	if err != nil {
		return nil, err
	}
	return NextSession(ordered, current), nil
}
