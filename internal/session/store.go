package session

// Order selects the sort order of Store.List.
type Order int

const (
	// ByLastUsedAsc puts the least recently used session first. Ties are
	// broken by identity so rotation order is stable.
	ByLastUsedAsc Order = iota
	// ByLastUsedDesc puts the most recently used session first.
	ByLastUsedDesc
)

// Store abstracts session persistence.
type Store interface {
	Get(identity string) (*Session, error)
	List(order Order) ([]Session, error)
	Insert(snap Snapshot, now int64) error
	UpdateBlobs(snap Snapshot, now int64) error
	TouchLastUsed(identity string, now int64) error
	Delete(identity string) error
	Close() error
}
