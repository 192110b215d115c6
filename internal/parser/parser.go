// Package parser extracts flashcards from markdown files written as
//
//	Q: question text
//	A: answer text, possibly
//	spanning several lines
//
// Cards end at the next "Q:", at a "---" line, or at end of input.
package parser

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/conorfennell/muraje/internal/domain"
)

const (
	frontPrefix = "Q:"
	backPrefix  = "A:"
	separator   = "---"
)

type section int

const (
	seeking section = iota
	readingFront
	readingBack
)

// ParseFile reads a file from the given path and extracts all cards.
func ParseFile(path string) ([]domain.NewCard, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads from an io.Reader and extracts all cards. Blocks without a
// question are dropped; a question without an answer is kept so the caller's
// validation can report it.
func Parse(r io.Reader) ([]domain.NewCard, error) {
	p := &cardParser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line(scanner.Text())
	}
	p.finish()

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p.cards, nil
}

type cardParser struct {
	cards   []domain.NewCard
	current domain.NewCard
	block   []string
	section section
}

func (p *cardParser) line(line string) {
	switch {
	case line == separator:
		p.finish()
	case strings.HasPrefix(line, frontPrefix):
		p.finish()
		p.section = readingFront
		p.block = append(p.block, stripPrefix(line, frontPrefix))
	case strings.HasPrefix(line, backPrefix) && p.section != seeking:
		p.flush()
		p.section = readingBack
		p.block = append(p.block, stripPrefix(line, backPrefix))
	case p.section != seeking:
		p.block = append(p.block, line)
	}
}

// flush moves the buffered lines into the field of the current section.
func (p *cardParser) flush() {
	if len(p.block) == 0 {
		return
	}
	content := strings.TrimSpace(strings.Join(p.block, "\n"))
	switch p.section {
	case readingFront:
		p.current.Front = content
	case readingBack:
		p.current.Back = content
	}
	p.block = nil
}

func (p *cardParser) finish() {
	p.flush()
	if p.current.Front != "" {
		p.cards = append(p.cards, p.current)
	}
	p.current = domain.NewCard{}
	p.section = seeking
}

func stripPrefix(line, prefix string) string {
	return strings.TrimPrefix(line[len(prefix):], " ")
}
