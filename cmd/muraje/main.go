// Muraje is a spaced-repetition flashcard trainer with points, streaks and badges.
package main

import (
	"fmt"
	"os"

	"github.com/conorfennell/muraje/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
