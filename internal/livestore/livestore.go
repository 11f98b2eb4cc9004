// Package livestore reads and writes the IDE's own state database
// (state.vscdb), a single key/value table named ItemTable. Only two keys
// are touched: the auth key, whose JSON value carries the signed-in
// identity, and a secondary key holding per-identity auxiliary data.
//
// Every call opens its own connection and closes it before returning;
// the IDE owns the file and may write to it between calls.
package livestore

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// EmptySecondary is substituted when the secondary key is absent.
const EmptySecondary = "{}"

// Current is the session the IDE is signed in with right now.
type Current struct {
	Identity      string
	DisplayName   string
	AuthBlob      string
	SecondaryBlob string
}

// Options names the database file and the keys/fields to use.
type Options struct {
	Path             string
	AuthKey          string
	SecondaryKey     string
	IdentityField    string
	DisplayNameField string
}

// Store is the live credential store of one IDE installation.
type Store struct {
	opts Options
	log  *zap.Logger
}

// New returns a Store for opts. A nil logger disables logging.
func New(opts Options, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{opts: opts, log: log.Named("livestore")}
}

// Path returns the state database path.
func (s *Store) Path() string {
	return s.opts.Path
}

// ReadCurrent returns the identity and blobs the IDE is signed in with.
// It returns (nil, nil) when there is no usable session: the auth key is
// missing or empty, its value is not JSON, or it has no identity field.
// Only failures to open or query the database are returned as errors.
func (s *Store) ReadCurrent() (*Current, error) {
	db, err := s.open("ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	auth, ok, err := getItem(db, s.opts.AuthKey)
	if err != nil {
		return nil, err
	}
	if !ok || strings.TrimSpace(auth) == "" {
		s.log.Debug("auth key not present", zap.String("key", s.opts.AuthKey))
		return nil, nil
	}

	if !gjson.Valid(auth) {
		s.log.Warn("auth blob is not valid JSON, treating as signed out",
			zap.String("key", s.opts.AuthKey), zap.Int("bytes", len(auth)))
		return nil, nil
	}
	identity := gjson.Get(auth, s.opts.IdentityField)
	if identity.Type != gjson.String || strings.TrimSpace(identity.Str) == "" {
		s.log.Warn("auth blob has no identity, treating as signed out",
			zap.String("key", s.opts.AuthKey), zap.String("field", s.opts.IdentityField))
		return nil, nil
	}

	secondary, ok, err := getItem(db, s.opts.SecondaryKey)
	if err != nil {
		return nil, err
	}
	if !ok {
		secondary = EmptySecondary
	}

	cur := &Current{
		Identity:      identity.Str,
		AuthBlob:      auth,
		SecondaryBlob: secondary,
	}
	if s.opts.DisplayNameField != "" {
		if name := gjson.Get(auth, s.opts.DisplayNameField); name.Type == gjson.String {
			cur.DisplayName = name.Str
		}
	}
	return cur, nil
}

// WriteCurrent replaces both keys in one transaction. Whatever was there
// before is overwritten; nothing is merged.
func (s *Store) WriteCurrent(authBlob, secondaryBlob string) error {
	db, err := s.open("rw")
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin live store write: %w", err)
	}
	defer tx.Rollback()

	const upsert = `INSERT OR REPLACE INTO ItemTable (key, value) VALUES (?, ?)`
	if _, err := tx.Exec(upsert, s.opts.AuthKey, authBlob); err != nil {
		return fmt.Errorf("write %s: %w", s.opts.AuthKey, err)
	}
	if _, err := tx.Exec(upsert, s.opts.SecondaryKey, secondaryBlob); err != nil {
		return fmt.Errorf("write %s: %w", s.opts.SecondaryKey, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit live store write: %w", err)
	}

	s.log.Debug("live store updated", zap.String("path", s.opts.Path))
	return nil
}

// open connects to the state database without ever creating it.
func (s *Store) open(mode string) (*sql.DB, error) {
	if _, err := os.Stat(s.opts.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("live store not found at %s (is the IDE installed and has it been started once?)", s.opts.Path)
		}
		return nil, fmt.Errorf("stat live store: %w", err)
	}

	db, err := sql.Open("sqlite", sqliteURI(s.opts.Path, mode))
	if err != nil {
		return nil, fmt.Errorf("open live store: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("open live store %s: %w", s.opts.Path, err)
	}
	return db, nil
}

func getItem(db *sql.DB, key string) (string, bool, error) {
	var value sql.NullString
	err := db.QueryRow(`SELECT value FROM ItemTable WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", key, err)
	}
	if !value.Valid {
		return "", false, nil
	}
	return value.String, true, nil
}

// sqliteURI builds a file: URI so the open mode can be passed to SQLite.
// The IDE may hold the database briefly while flushing, hence busy_timeout.
func sqliteURI(path, mode string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "mode=" + mode + "&_pragma=busy_timeout(5000)"}
	return u.String()
}
