package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "load <identity>",
		Short:   "Switch the IDE to a specific stored session",
		Example: "  ideswap load work@example.com",
		Args:    identityArg,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			sess, err := a.sw.Load(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Loaded %s\n", sess.Identity)
			fmt.Fprintln(cmd.OutOrStdout(), "Reload the IDE window to pick up the new session.")
			return nil
		},
	}
}
