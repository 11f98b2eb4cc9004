package cmd

import (
	"fmt"

	"github.com/ideswap/ideswap/internal/switcher"
	"github.com/spf13/cobra"
)

func newNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Switch the IDE to the next stored session",
		Long: "Saves the session the IDE is signed in with, then loads the stored\n" +
			"session that follows it (least recently used first, wrapping around).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.sw.Next()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch res.Sync.Status {
			case switcher.Added:
				fmt.Fprintf(out, "Saved new session %s\n", res.Sync.Identity)
			case switcher.Updated:
				fmt.Fprintf(out, "Refreshed session %s\n", res.Sync.Identity)
			}

			switch res.Outcome {
			case switcher.NextEmpty:
				fmt.Fprintln(out, "No stored sessions. Sign in to the IDE, then run `ideswap sync`.")
			case switcher.NextAlreadyActive:
				fmt.Fprintf(out, "Only one session stored (%s); nothing to switch.\n", res.To.Identity)
			case switcher.NextSwitched:
				from := res.From
				if from == "" {
					from = "(signed out)"
				}
				fmt.Fprintf(out, "Switched %s -> %s\n", from, res.To.Identity)
				fmt.Fprintln(out, "Reload the IDE window to pick up the new session.")
			}
			return nil
		},
	}
}
