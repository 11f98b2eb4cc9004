package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/ideswap/ideswap/internal/session"
	"github.com/spf13/cobra"
)

var activeStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored sessions, most recently used first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			sessions, current, err := a.sw.List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(sessions) == 0 {
				fmt.Fprintln(out, "No stored sessions.")
				return nil
			}
			printSessions(out, sessions, current, isTerminal(out), time.Now())
			return nil
		},
	}
}

// printSessions writes one aligned line per session; the live one is
// prefixed with "*" and, on a terminal, highlighted.
func printSessions(out io.Writer, sessions []session.Session, current string, color bool, now time.Time) {
	idWidth, nameWidth := len("identity"), len("name")
	for _, s := range sessions {
		idWidth = max(idWidth, lipgloss.Width(s.Identity))
		nameWidth = max(nameWidth, lipgloss.Width(orDash(s.DisplayName)))
	}

	fmt.Fprintf(out, "  %-*s  %-*s  %s\n", idWidth, "identity", nameWidth, "name", "last used")
	for _, s := range sessions {
		marker := " "
		if s.Identity == current {
			marker = "*"
		}
		line := fmt.Sprintf("%s %-*s  %-*s  %s", marker, idWidth, s.Identity, nameWidth, orDash(s.DisplayName), lastUsed(s.LastUsed, now))
		if color && s.Identity == current {
			line = activeStyle.Render(line)
		}
		fmt.Fprintln(out, line)
	}
}

func lastUsed(unix int64, now time.Time) string {
	if unix == 0 {
		return "never"
	}
	return humanize.RelTime(time.Unix(unix, 0), now, "ago", "from now")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
