package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/muraje/internal/domain"
	"github.com/conorfennell/muraje/internal/notify"
)

var (
	addFront string
	addBack  string
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a card",
	Long: `Add creates a new card that is due today and earns a few points.

Examples:
  muraje add --front "Capital of Peru?" --back "Lima"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(notify.NewWriter(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer a.Close()

		card, err := a.ctrl.AddCard(domain.NewCard{Front: addFront, Back: addBack})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added card %d, due %s\n", card.ID, card.NextReview)
		return nil
	},
}

var dueCmd = &cobra.Command{
	Use:   "due",
	Short: "List the cards due today",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(notify.NewWriter(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer a.Close()

		due := a.ctrl.DueCards()
		out := cmd.OutOrStdout()
		if len(due) == 0 {
			fmt.Fprintln(out, "No cards due today.")
			return nil
		}
		for _, c := range due {
			fmt.Fprintf(out, "%d\t%s\t(reviews: %d)\n", c.ID, truncate(c.Front, 60), c.Reviews)
		}
		fmt.Fprintf(out, "%d cards due\n", len(due))
		return nil
	},
}

func init() {
	addCmd.Flags().StringVar(&addFront, "front", "", "question side of the card")
	addCmd.Flags().StringVar(&addBack, "back", "", "answer side of the card")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
