// Package config loads and resolves ideswap configuration.
// Sources, highest priority first:
// 1. CLI flags (applied by cmd after Load)
// 2. Environment variables (IDESWAP_STATE_DB, IDESWAP_REPO_DB, IDESWAP_APP, IDESWAP_LOG_LEVEL)
// 3. The file passed with --config
// 4. ~/.config/ideswap/config.yaml
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	DefaultApp              = "Windsurf"
	DefaultAuthKey          = "windsurfAuthStatus"
	DefaultSecondaryKey     = "codeium.windsurf"
	DefaultIdentityField    = "email"
	DefaultDisplayNameField = "name"
	DefaultLogLevel         = "warn"
	DefaultKeybinding       = "ctrl+alt+n"
)

var (
	userHomeDir = os.UserHomeDir
	goos        = runtime.GOOS
)

// InstallConfig configures the launcher/keybinding installer.
type InstallConfig struct {
	// BinDir receives the ideswap-next launcher (default ~/.local/bin).
	BinDir string `yaml:"bin_dir"`

	// KeybindingsPath is the IDE's keybindings.json (default <app user dir>/keybindings.json).
	KeybindingsPath string `yaml:"keybindings_path"`

	// Key is the key chord bound to "ideswap next".
	Key string `yaml:"key"`
}

// Config is the complete ideswap configuration. Every path is absolute
// after Load returns.
type Config struct {
	// App is the IDE's product directory name (e.g. "Windsurf", "Code").
	App string `yaml:"app"`

	// StateDB is the IDE's live state.vscdb. Empty = OS default for App.
	StateDB string `yaml:"state_db"`

	// RepoDB is the session repository database.
	RepoDB string `yaml:"repo_db"`

	// AuthKey and SecondaryKey are the ItemTable keys swapped on rotation.
	AuthKey      string `yaml:"auth_key"`
	SecondaryKey string `yaml:"secondary_key"`

	// IdentityField and DisplayNameField are gjson paths into the auth blob.
	IdentityField    string `yaml:"identity_field"`
	DisplayNameField string `yaml:"display_name_field"`

	// LogLevel: "debug" | "info" | "warn" | "error"
	LogLevel string `yaml:"log_level"`

	Install InstallConfig `yaml:"install"`
}

// DefaultConfig returns the built-in defaults. Paths stay empty until
// Resolve fills them in.
func DefaultConfig() *Config {
	return &Config{
		App:              DefaultApp,
		AuthKey:          DefaultAuthKey,
		SecondaryKey:     DefaultSecondaryKey,
		IdentityField:    DefaultIdentityField,
		DisplayNameField: DefaultDisplayNameField,
		LogLevel:         DefaultLogLevel,
		Install: InstallConfig{
			Key: DefaultKeybinding,
		},
	}
}

// DefaultConfigPath returns ~/.config/ideswap/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := userHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "ideswap", "config.yaml"), nil
}

// Load reads the config file (missing file = defaults), applies
// environment overrides and resolves all paths.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath == "" {
		p, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		configPath = p
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("invalid config file %s: %w", configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", configPath, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Resolve fills empty paths with their OS defaults and expands a leading
// "~" in configured ones. It is safe to call more than once.
func (c *Config) Resolve() error {
	home, err := userHomeDir()
	if err != nil {
		return fmt.Errorf("resolve home directory: %w", err)
	}
	if c.App == "" {
		c.App = DefaultApp
	}

	userDir := appUserDir(home, c.App)
	if c.StateDB == "" {
		c.StateDB = filepath.Join(userDir, "globalStorage", "state.vscdb")
	}
	if c.RepoDB == "" {
		c.RepoDB = filepath.Join(home, ".config", "ideswap", "sessions.db")
	}
	if c.Install.BinDir == "" {
		c.Install.BinDir = filepath.Join(home, ".local", "bin")
	}
	if c.Install.KeybindingsPath == "" {
		c.Install.KeybindingsPath = filepath.Join(userDir, "keybindings.json")
	}
	if c.Install.Key == "" {
		c.Install.Key = DefaultKeybinding
	}

	c.StateDB = expandHome(c.StateDB, home)
	c.RepoDB = expandHome(c.RepoDB, home)
	c.Install.BinDir = expandHome(c.Install.BinDir, home)
	c.Install.KeybindingsPath = expandHome(c.Install.KeybindingsPath, home)
	return nil
}

// appUserDir returns the IDE's per-user settings directory.
func appUserDir(home, app string) string {
	switch goos {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", app, "User")
	case "windows":
		base := os.Getenv("APPDATA")
		if base == "" {
			base = filepath.Join(home, "AppData", "Roaming")
		}
		return filepath.Join(base, app, "User")
	default:
		base := os.Getenv("XDG_CONFIG_HOME")
		if base == "" {
			base = filepath.Join(home, ".config")
		}
		return filepath.Join(base, app, "User")
	}
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

// applyEnvOverrides copies IDESWAP_* environment variables into cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("IDESWAP_APP"); v != "" {
		cfg.App = v
	}
	if v := os.Getenv("IDESWAP_STATE_DB"); v != "" {
		cfg.StateDB = v
	}
	if v := os.Getenv("IDESWAP_REPO_DB"); v != "" {
		cfg.RepoDB = v
	}
	if v := os.Getenv("IDESWAP_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
