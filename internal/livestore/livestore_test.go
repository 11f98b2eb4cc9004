package livestore

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

const (
	testAuthKey      = "windsurfAuthStatus"
	testSecondaryKey = "codeium.windsurf"
)

// newStateDB creates a state.vscdb with the IDE's ItemTable layout.
func newStateDB(t *testing.T, items map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "User", "globalStorage", "state.vscdb")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE ItemTable (key TEXT UNIQUE ON CONFLICT REPLACE, value BLOB)`); err != nil {
		t.Fatalf("create ItemTable: %v", err)
	}
	for k, v := range items {
		if _, err := db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, ?)`, k, v); err != nil {
			t.Fatalf("insert %s: %v", k, err)
		}
	}
	return path
}

func newTestStore(path string, log *zap.Logger) *Store {
	return New(Options{
		Path:             path,
		AuthKey:          testAuthKey,
		SecondaryKey:     testSecondaryKey,
		IdentityField:    "email",
		DisplayNameField: "name",
	}, log)
}

func TestReadCurrent(t *testing.T) {
	path := newStateDB(t, map[string]string{
		testAuthKey:      `{"email":"u@x.com","name":"U","apiKey":"k"}`,
		testSecondaryKey: `{"teams":[1]}`,
		"unrelated":      `{"email":"other@x.com"}`,
	})

	cur, err := newTestStore(path, nil).ReadCurrent()
	if err != nil {
		t.Fatalf("ReadCurrent: %v", err)
	}
	if cur == nil {
		t.Fatal("expected a current session")
	}
	if cur.Identity != "u@x.com" {
		t.Errorf("Identity = %q, want %q", cur.Identity, "u@x.com")
	}
	if cur.DisplayName != "U" {
		t.Errorf("DisplayName = %q, want %q", cur.DisplayName, "U")
	}
	if cur.AuthBlob != `{"email":"u@x.com","name":"U","apiKey":"k"}` {
		t.Errorf("AuthBlob = %q, want raw value", cur.AuthBlob)
	}
	if cur.SecondaryBlob != `{"teams":[1]}` {
		t.Errorf("SecondaryBlob = %q", cur.SecondaryBlob)
	}
}

func TestReadCurrentMissingSecondaryDefaults(t *testing.T) {
	path := newStateDB(t, map[string]string{
		testAuthKey: `{"email":"u@x.com"}`,
	})

	cur, err := newTestStore(path, nil).ReadCurrent()
	if err != nil {
		t.Fatalf("ReadCurrent: %v", err)
	}
	if cur == nil {
		t.Fatal("expected a current session")
	}
	if cur.SecondaryBlob != EmptySecondary {
		t.Errorf("SecondaryBlob = %q, want %q", cur.SecondaryBlob, EmptySecondary)
	}
	if cur.DisplayName != "" {
		t.Errorf("DisplayName = %q, want empty", cur.DisplayName)
	}
}

func TestReadCurrentNoSession(t *testing.T) {
	tests := []struct {
		name  string
		items map[string]string
		warns bool
	}{
		{"missing key", map[string]string{testSecondaryKey: "{}"}, false},
		{"empty value", map[string]string{testAuthKey: "  "}, false},
		{"malformed JSON", map[string]string{testAuthKey: `{"email":`}, true},
		{"no email", map[string]string{testAuthKey: `{"name":"U"}`}, true},
		{"email not a string", map[string]string{testAuthKey: `{"email":42}`}, true},
		{"blank email", map[string]string{testAuthKey: `{"email":""}`}, true},
		{"JSON null", map[string]string{testAuthKey: `null`}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.DebugLevel)
			path := newStateDB(t, tt.items)

			cur, err := newTestStore(path, zap.New(core)).ReadCurrent()
			if err != nil {
				t.Fatalf("ReadCurrent err = %v, want nil", err)
			}
			if cur != nil {
				t.Fatalf("ReadCurrent = %+v, want nil", cur)
			}
			warned := logs.FilterLevelExact(zap.WarnLevel).Len() > 0
			if warned != tt.warns {
				t.Errorf("warn logged = %v, want %v", warned, tt.warns)
			}
		})
	}
}

func TestReadCurrentNullValue(t *testing.T) {
	path := newStateDB(t, nil)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(`INSERT INTO ItemTable (key, value) VALUES (?, NULL)`, testAuthKey); err != nil {
		t.Fatal(err)
	}
	db.Close()

	cur, err := newTestStore(path, nil).ReadCurrent()
	if err != nil || cur != nil {
		t.Fatalf("ReadCurrent = %+v, %v; want nil, nil", cur, err)
	}
}

func TestReadCurrentNestedIdentityField(t *testing.T) {
	path := newStateDB(t, map[string]string{
		testAuthKey: `{"account":{"email":"n@x.com"}}`,
	})
	s := New(Options{
		Path:          path,
		AuthKey:       testAuthKey,
		SecondaryKey:  testSecondaryKey,
		IdentityField: "account.email",
	}, nil)

	cur, err := s.ReadCurrent()
	if err != nil {
		t.Fatal(err)
	}
	if cur == nil || cur.Identity != "n@x.com" {
		t.Fatalf("ReadCurrent = %+v, want identity n@x.com", cur)
	}
}

func TestReadCurrentMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent", "state.vscdb")

	_, err := newTestStore(path, nil).ReadCurrent()
	if err == nil {
		t.Fatal("expected error for missing live store")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %q, want mention of not found", err)
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("reading must not create the live store")
	}
}

func TestReadCurrentNotADatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.vscdb")
	if err := os.WriteFile(path, []byte(strings.Repeat("garbage!", 200)), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := newTestStore(path, nil).ReadCurrent(); err == nil {
		t.Fatal("expected error for a file that is not a database")
	}
}

func TestWriteCurrentRoundTrip(t *testing.T) {
	path := newStateDB(t, map[string]string{
		testAuthKey:      `{"email":"old@x.com"}`,
		testSecondaryKey: `{"old":true}`,
		"keep":           "untouched",
	})
	s := newTestStore(path, nil)

	auth := `{"email":"new@x.com","name":"New"}`
	secondary := `{"new":true}`
	if err := s.WriteCurrent(auth, secondary); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}

	cur, err := s.ReadCurrent()
	if err != nil {
		t.Fatal(err)
	}
	if cur == nil || cur.Identity != "new@x.com" {
		t.Fatalf("ReadCurrent = %+v, want new@x.com", cur)
	}
	if cur.AuthBlob != auth || cur.SecondaryBlob != secondary {
		t.Errorf("blobs = %q / %q, want %q / %q", cur.AuthBlob, cur.SecondaryBlob, auth, secondary)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM ItemTable WHERE key = ?`, testAuthKey).Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("auth key rows = %d, want 1", n)
	}
	var keep string
	if err := db.QueryRow(`SELECT value FROM ItemTable WHERE key = 'keep'`).Scan(&keep); err != nil {
		t.Fatal(err)
	}
	if keep != "untouched" {
		t.Errorf("unrelated key = %q, want untouched", keep)
	}
}

func TestWriteCurrentInsertsMissingKeys(t *testing.T) {
	path := newStateDB(t, nil)
	s := newTestStore(path, nil)

	if err := s.WriteCurrent(`{"email":"a@x.com"}`, `{}`); err != nil {
		t.Fatalf("WriteCurrent: %v", err)
	}
	cur, err := s.ReadCurrent()
	if err != nil {
		t.Fatal(err)
	}
	if cur == nil || cur.Identity != "a@x.com" {
		t.Fatalf("ReadCurrent = %+v, want a@x.com", cur)
	}
}

func TestWriteCurrentMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.vscdb")

	if err := newTestStore(path, nil).WriteCurrent("{}", "{}"); err == nil {
		t.Fatal("expected error writing to missing live store")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("writing must not create the live store")
	}
}

func TestSQLiteURI(t *testing.T) {
	got := sqliteURI("/tmp/Application Support/state.vscdb", "ro")
	want := "file:///tmp/Application%20Support/state.vscdb?mode=ro&_pragma=busy_timeout(5000)"
	if got != want {
		t.Errorf("sqliteURI = %q, want %q", got, want)
	}
}
