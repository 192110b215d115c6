package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/muraje/internal/domain"
	"github.com/conorfennell/muraje/internal/notify"
	"github.com/conorfennell/muraje/internal/session"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Review the cards due today",
	Long: `Review walks through the cards due today. Each card shows its
question first; press Enter to see the answer, then rate how well you
remembered it:

  e  easy   the next review moves far out
  g  good   the next review moves out
  h  hard   the card comes back soon

Type q at any prompt to stop. Progress is saved after every rating.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(notify.NewWriter(cmd.OutOrStdout()))
		if err != nil {
			return err
		}
		defer a.Close()

		return runReview(a.ctrl, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// runReview drives the session from line-based input until nothing is due,
// the user quits or input ends.
func runReview(ctrl *session.Controller, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	prompt := func(text string) (string, bool) {
		fmt.Fprint(out, text)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return "", false
		}
		answer := strings.TrimSpace(scanner.Text())
		return answer, !strings.EqualFold(answer, "q")
	}

	for {
		view := ctrl.Render()
		if view.Mode == session.NoCardsDue {
			fmt.Fprintln(out, "No cards due today. Come back tomorrow!")
			return nil
		}

		fmt.Fprintf(out, "\n[%d/%d] %s\n", view.Position+1, view.DueCount, view.Card.Front)
		if _, ok := prompt("Press Enter to show the answer (q to quit) "); !ok {
			return nil
		}
		if err := ctrl.Reveal(); err != nil {
			return err
		}
		fmt.Fprintf(out, "Answer: %s\n", ctrl.View().Card.Back)

		var rating domain.Rating
		for {
			answer, ok := prompt("Rate it: (e)asy, (g)ood, (h)ard ")
			if !ok {
				return nil
			}
			r, err := parseAnswer(answer)
			if err == nil {
				rating = r
				break
			}
			fmt.Fprintln(out, "Please answer e, g or h.")
		}

		outcome, err := ctrl.Rate(rating)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Next review on %s. +%d points\n", outcome.Card.NextReview, outcome.Points)
	}
}

// parseAnswer accepts a rating name or its first letter.
func parseAnswer(s string) (domain.Rating, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "e":
		return domain.Easy, nil
	case "g":
		return domain.Good, nil
	case "h":
		return domain.Hard, nil
	}
	return domain.ParseRating(s)
}
