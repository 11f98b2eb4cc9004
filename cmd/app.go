package cmd

import (
	"fmt"
	"io"

	"github.com/ideswap/ideswap/internal/config"
	"github.com/ideswap/ideswap/internal/livestore"
	"github.com/ideswap/ideswap/internal/logging"
	"github.com/ideswap/ideswap/internal/session"
	"github.com/ideswap/ideswap/internal/switcher"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var termIsTerminal = term.IsTerminal

// app holds the stores opened for one command invocation.
type app struct {
	cfg  *config.Config
	log  *zap.Logger
	live *livestore.Store
	repo *session.SQLiteStore
	sw   *switcher.Switcher
}

// initConfig loads configuration, applying CLI flag overrides.
func initConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// CLI flags override config values
	if stateDBFlag != "" {
		cfg.StateDB = stateDBFlag
	}
	if repoDBFlag != "" {
		cfg.RepoDB = repoDBFlag
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, stderr io.Writer) (*zap.Logger, error) {
	log, err := logging.New(cfg.LogLevel, stderr)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return log, nil
}

// openApp loads config and opens the session repository. The caller
// must Close the result.
func openApp(stderr io.Writer) (*app, error) {
	cfg, err := initConfig()
	if err != nil {
		return nil, err
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		return nil, err
	}

	repo, err := session.NewSQLiteStore(cfg.RepoDB)
	if err != nil {
		return nil, fmt.Errorf("open session repository %s: %w", cfg.RepoDB, err)
	}

	live := livestore.New(livestore.Options{
		Path:             cfg.StateDB,
		AuthKey:          cfg.AuthKey,
		SecondaryKey:     cfg.SecondaryKey,
		IdentityField:    cfg.IdentityField,
		DisplayNameField: cfg.DisplayNameField,
	}, log)

	log.Debug("stores ready", zap.String("state_db", cfg.StateDB), zap.String("repo_db", cfg.RepoDB))
	return &app{
		cfg:  cfg,
		log:  log,
		live: live,
		repo: repo,
		sw:   switcher.New(live, repo, log),
	}, nil
}

func (a *app) Close() {
	if err := a.repo.Close(); err != nil {
		a.log.Warn("close session repository", zap.Error(err))
	}
	_ = a.log.Sync()
}
