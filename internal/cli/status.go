package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/conorfennell/muraje/internal/notify"
	"github.com/conorfennell/muraje/internal/session"
	"github.com/conorfennell/muraje/internal/storage"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show points, streak and badges",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(notify.NewWriter(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer a.Close()

		out := cmd.OutOrStdout()
		printStatus(out, a.ctrl.View(), len(a.ctrl.Cards()))

		// only the sqlite store keeps a review log
		if db, ok := a.store.(*storage.DB); ok {
			today, err := db.ReviewCount(a.ctrl.Today())
			if err != nil {
				return err
			}
			total, err := db.ReviewCount("")
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Reviews:  %d today, %d total\n", today, total)
		}
		return nil
	},
}

func printStatus(out io.Writer, v session.View, cards int) {
	fmt.Fprintf(out, "Points:   %d\n", v.Points)
	fmt.Fprintf(out, "Streak:   %d days\n", v.Streak)
	fmt.Fprintf(out, "Cards:    %d (%d due today)\n", cards, v.DueCount)
	fmt.Fprintln(out, "Badges:")
	for _, b := range v.Badges {
		mark := "○"
		if b.Earned {
			mark = "✓"
		}
		fmt.Fprintf(out, "  %s %s %s\n", mark, b.Icon, b.Name)
	}
}
