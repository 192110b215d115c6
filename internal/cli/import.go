package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/muraje/internal/importer"
	"github.com/conorfennell/muraje/internal/notify"
)

var importCmd = &cobra.Command{
	Use:   "import <dir|git-url>",
	Short: "Import cards from markdown decks",
	Long: `Import reads every .md file under a directory, or under a git
repository which is cloned (or pulled) into the repos directory first.

Cards are written as question/answer blocks:

  Q: What is the capital of Peru?
  A: Lima

Cards whose content already exists in the deck are skipped.

Examples:
  muraje import ./decks
  muraje import https://github.com/someone/flashcards.git`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		a, err := openApp(notify.NewWriter(out))
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := importer.New(cfg.Import.ReposDir, logger).Run(a.ctrl, args[0])
		fmt.Fprintf(out, "Found %d cards: %d added, %d already in the deck, %d problems.\n",
			res.Parsed, res.Added, res.Skipped, len(res.Errors))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "- %s\n", e)
		}
		return err
	},
}

func init() {
	importCmd.Flags().String("repos-dir", "", "where git sources are checked out (default repos)")
}
