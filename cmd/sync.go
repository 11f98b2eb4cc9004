package cmd

import (
	"fmt"

	"github.com/ideswap/ideswap/internal/switcher"
	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Save the IDE's current session into the repository",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.sw.Sync()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch res.Status {
			case switcher.NoActiveSession:
				fmt.Fprintf(out, "No active session in %s\n", a.live.Path())
			case switcher.Added:
				fmt.Fprintf(out, "Added %s\n", res.Identity)
			case switcher.Updated:
				fmt.Fprintf(out, "Updated %s\n", res.Identity)
			default:
				fmt.Fprintf(out, "Unchanged %s\n", res.Identity)
			}
			return nil
		},
	}
}
