package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/ideswap/ideswap/internal/install"
)

// runInstall is the no-argument invocation.
func runInstall(stdout, stderr io.Writer) error {
	cfg, err := initConfig()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, stderr)
	if err != nil {
		return err
	}
	defer log.Sync()

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate ideswap binary: %w", err)
	}

	var inst install.Installer = install.NewLocal(cfg.Install, exe, log)
	res, err := inst.Install()
	if res != nil {
		if res.LauncherWritten {
			fmt.Fprintf(stdout, "Installed launcher %s\n", res.LauncherPath)
		} else {
			fmt.Fprintf(stdout, "Launcher already installed at %s\n", res.LauncherPath)
		}
	}
	if err != nil {
		return err
	}
	if res.KeybindingAdded {
		fmt.Fprintf(stdout, "Bound %s to ideswap next in %s\n", cfg.Install.Key, res.KeybindingsPath)
	} else {
		fmt.Fprintf(stdout, "Keybinding already present in %s\n", res.KeybindingsPath)
	}
	fmt.Fprintln(stdout, "Run `ideswap --help` for the full command list.")
	return nil
}
