// Package install puts a "next session" launcher on the user's PATH and
// binds it to a key chord in the IDE.
package install

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/ideswap/ideswap/internal/config"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"go.uber.org/zap"
)

// KeybindingCommand runs a shell line in the IDE's integrated terminal.
const KeybindingCommand = "workbench.action.terminal.sendSequence"

var goos = runtime.GOOS

// Installer sets up whatever the user needs to trigger a rotation.
type Installer interface {
	Install() (*Result, error)
}

// Result reports each installed piece and whether it was already there.
type Result struct {
	LauncherPath     string
	LauncherWritten  bool
	KeybindingsPath  string
	KeybindingAdded  bool
	KeybindingExists bool
}

// Local installs into the user's home: a launcher script in BinDir and an
// entry in the IDE's keybindings.json.
type Local struct {
	cfg        config.InstallConfig
	executable string
	log        *zap.Logger
}

var _ Installer = (*Local)(nil)

// NewLocal returns an installer whose launcher execs executable.
func NewLocal(cfg config.InstallConfig, executable string, log *zap.Logger) *Local {
	if log == nil {
		log = zap.NewNop()
	}
	return &Local{cfg: cfg, executable: executable, log: log.Named("install")}
}

// Install writes the launcher and the keybinding. Running it again
// changes nothing.
func (l *Local) Install() (*Result, error) {
	res := &Result{
		LauncherPath:    l.launcherPath(),
		KeybindingsPath: l.cfg.KeybindingsPath,
	}

	written, err := writeIfChanged(res.LauncherPath, l.launcherScript(), 0o755)
	if err != nil {
		return nil, fmt.Errorf("install launcher: %w", err)
	}
	res.LauncherWritten = written

	added, err := l.addKeybinding()
	if err != nil {
		return res, fmt.Errorf("install keybinding: %w", err)
	}
	res.KeybindingAdded = added
	res.KeybindingExists = !added

	l.log.Info("install finished",
		zap.String("launcher", res.LauncherPath),
		zap.Bool("launcher_written", res.LauncherWritten),
		zap.Bool("keybinding_added", res.KeybindingAdded))
	return res, nil
}

func (l *Local) launcherPath() string {
	name := "ideswap-next"
	if goos == "windows" {
		name += ".cmd"
	}
	return filepath.Join(l.cfg.BinDir, name)
}

func (l *Local) launcherScript() []byte {
	if goos == "windows" {
		return []byte(fmt.Sprintf("@echo off\r\n\"%s\" next %%*\r\n", l.executable))
	}
	quoted := "'" + strings.ReplaceAll(l.executable, "'", `'\''`) + "'"
	return []byte("#!/bin/sh\nexec " + quoted + " next \"$@\"\n")
}

// terminalText is what the keybinding types into the terminal.
func (l *Local) terminalText() string {
	return l.launcherPath() + "\r"
}

// addKeybinding appends the entry to keybindings.json unless an entry
// sending the same text is already present. A file that is not plain
// JSON (VS Code allows comments) is left alone.
func (l *Local) addKeybinding() (bool, error) {
	raw, err := os.ReadFile(l.cfg.KeybindingsPath)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return false, fmt.Errorf("read %s: %w", l.cfg.KeybindingsPath, err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = []byte("[]")
	}

	entry, err := l.keybindingEntry()
	if err != nil {
		return false, err
	}
	if !gjson.ValidBytes(raw) || !gjson.ParseBytes(raw).IsArray() {
		return false, fmt.Errorf("%s is not a plain JSON array; add this entry by hand:\n%s", l.cfg.KeybindingsPath, entry)
	}

	if hasKeybinding(raw, l.terminalText()) {
		return false, nil
	}

	out, err := sjson.SetRawBytes(raw, "-1", entry)
	if err != nil {
		return false, fmt.Errorf("append keybinding: %w", err)
	}
	if _, err := writeIfChanged(l.cfg.KeybindingsPath, out, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

func (l *Local) keybindingEntry() ([]byte, error) {
	entry := []byte(`{}`)
	var err error
	for _, kv := range []struct{ path, value string }{
		{"key", l.cfg.Key},
		{"command", KeybindingCommand},
		{"args.text", l.terminalText()},
	} {
		entry, err = sjson.SetBytes(entry, kv.path, kv.value)
		if err != nil {
			return nil, fmt.Errorf("build keybinding: %w", err)
		}
	}
	return entry, nil
}

func hasKeybinding(raw []byte, text string) bool {
	found := false
	gjson.ParseBytes(raw).ForEach(func(_, value gjson.Result) bool {
		if value.Get("command").Str == KeybindingCommand && value.Get("args.text").Str == text {
			found = true
			return false
		}
		return true
	})
	return found
}

// writeIfChanged atomically replaces path with raw unless it already
// holds exactly raw. It reports whether a write happened.
func writeIfChanged(path string, raw []byte, mode os.FileMode) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, raw) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, fmt.Errorf("create parent directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ideswap-*")
	if err != nil {
		return false, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return false, fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return false, fmt.Errorf("set file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return false, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return false, fmt.Errorf("replace %s: %w", path, err)
	}
	return true, nil
}
