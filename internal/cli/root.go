// Package cli provides the command-line interface for muraje.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/conorfennell/muraje/internal/config"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
	cfg     *config.Config
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "muraje",
	Short: "Spaced-repetition flashcards with points, streaks and badges",
	Long: `Muraje schedules flashcard reviews with a simple spaced-repetition
heuristic. Every review earns points, daily practice builds a streak,
and milestones unlock badges.

Cards can be added one at a time or imported from markdown decks in a
local directory or a git repository.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded

		logLevel := cfg.SlogLevel()
		if verbose {
			logLevel = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./muraje.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().String("db", "", "path of the state store (default muraje.db)")
	rootCmd.PersistentFlags().String("storage", "", "storage driver: sqlite or file")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn or error")

	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(dueCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(serveCmd)
}
