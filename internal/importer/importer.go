// Package importer loads cards from markdown decks in a local directory or a git repository.
package importer

import (
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/conorfennell/muraje/internal/domain"
	"github.com/conorfennell/muraje/internal/gitsource"
	"github.com/conorfennell/muraje/internal/knol"
	"github.com/conorfennell/muraje/internal/parser"
)

// Deck is the card store an import writes into.
type Deck interface {
	Cards() []domain.Card
	ImportCards(inputs []domain.NewCard) ([]domain.Card, error)
}

// Result summarizes an import run.
type Result struct {
	Parsed  int
	Skipped int
	Added   int
	Errors  []error
}

// Importer resolves sources and feeds parsed cards into a Deck.
type Importer struct {
	reposDir string
	logger   *slog.Logger
}

// New creates an Importer that keeps git checkouts under reposDir.
func New(reposDir string, logger *slog.Logger) *Importer {
	return &Importer{reposDir: reposDir, logger: logger.With("component", "importer")}
}

// Run imports every new card found at source. Cards already in the deck (by
// normalized content) and invalid cards are skipped; per-file and per-card
// problems are reported in Result.Errors rather than aborting the run.
func (im *Importer) Run(deck Deck, source string) (Result, error) {
	var res Result

	parsed, errs, err := im.Collect(source)
	if err != nil {
		return res, err
	}
	res.Parsed = len(parsed)
	res.Errors = errs

	var valid []domain.NewCard
	for _, in := range parsed {
		v, err := in.Validate()
		if err != nil {
			res.Errors = append(res.Errors, fmt.Errorf("card %q: %w", in.Front, err))
			continue
		}
		valid = append(valid, v)
	}

	fresh, skipped := Fresh(deck.Cards(), valid)
	res.Skipped = skipped

	added, err := deck.ImportCards(fresh)
	res.Added = len(added)

	im.logger.Info("import complete",
		"source", source,
		"parsed_cards", res.Parsed,
		"skipped_existing", res.Skipped,
		"added", res.Added,
		"errors", len(res.Errors),
	)
	return res, err
}

// Collect parses every markdown file under source. A git URL is cloned or
// pulled into the repos dir first.
func (im *Importer) Collect(source string) ([]domain.NewCard, []error, error) {
	dir := source
	if gitsource.IsURL(source) {
		local, err := gitsource.LocalPath(im.reposDir, source)
		if err != nil {
			return nil, nil, err
		}
		if err := gitsource.Sync(source, local, im.logger); err != nil {
			return nil, nil, err
		}
		dir = local
	}

	var (
		cards []domain.NewCard
		errs  []error
	)
	walkErr := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}

		fileCards, parseErr := parser.ParseFile(path)
		if parseErr != nil {
			errs = append(errs, fmt.Errorf("parsing %s: %w", path, parseErr))
			return nil
		}
		im.logger.Debug("parsed deck file", "path", path, "cards", len(fileCards))
		cards = append(cards, fileCards...)
		return nil
	})
	if walkErr != nil {
		return nil, nil, fmt.Errorf("walking %s: %w", dir, walkErr)
	}
	return cards, errs, nil
}

// Fresh drops inputs whose content matches an existing card or an earlier input.
func Fresh(existing []domain.Card, incoming []domain.NewCard) ([]domain.NewCard, int) {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, c := range existing {
		seen[knol.Hash(c.Front, c.Back)] = true
	}

	var (
		fresh   []domain.NewCard
		skipped int
	)
	for _, in := range incoming {
		h := knol.Hash(in.Front, in.Back)
		if seen[h] {
			skipped++
			continue
		}
		seen[h] = true
		fresh = append(fresh, in)
	}
	return fresh, skipped
}
