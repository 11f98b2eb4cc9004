package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	stateDBFlag string
	repoDBFlag  string
	verbose     bool
)

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	rootCmd := newRootCmd(version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ideswap",
		Short: "Rotate the IDE between signed-in accounts",
		Long: "ideswap stores every account the IDE has been signed in with and swaps\n" +
			"between them by rewriting the IDE's local state database.\n\n" +
			"Running ideswap with no subcommand installs the ideswap-next launcher\n" +
			"and its keybinding.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default ~/.config/ideswap/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&stateDBFlag, "state-db", "", "override the IDE state database path")
	rootCmd.PersistentFlags().StringVar(&repoDBFlag, "repo-db", "", "override the session repository path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	// Subcommands
	rootCmd.AddCommand(newNextCmd())
	rootCmd.AddCommand(newSyncCmd())
	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newDeleteCmd())
	rootCmd.AddCommand(newCurrentCmd())
	rootCmd.AddCommand(newVersionCmd(version, commit, date))

	return rootCmd
}

// identityArg rejects anything but exactly one identity argument.
func identityArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 || args[0] == "" {
		return fmt.Errorf("usage: %s <identity>", cmd.CommandPath())
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && termIsTerminal(int(f.Fd()))
}
