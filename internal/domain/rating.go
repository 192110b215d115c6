package domain

import (
	"fmt"
	"strings"
)

// Rating is the user's recall assessment of a card.
type Rating int

const (
	Hard Rating = iota + 1
	Good
	Easy
)

var ratingNames = [...]string{Hard: "hard", Good: "good", Easy: "easy"}

// ParseRating accepts "easy", "good" or "hard", case-insensitively.
func ParseRating(raw string) (Rating, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return Easy, nil
	case "good":
		return Good, nil
	case "hard":
		return Hard, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidRating, raw)
	}
}

// IsValid reports whether r is one of Hard, Good or Easy.
func (r Rating) IsValid() bool {
	return r >= Hard && r <= Easy
}

func (r Rating) String() string {
	if r.IsValid() {
		return ratingNames[r]
	}
	return fmt.Sprintf("Rating(%d)", int(r))
}

// MarshalText implements encoding.TextMarshaler.
func (r Rating) MarshalText() ([]byte, error) {
	if !r.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRating, int(r))
	}
	return []byte(ratingNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rating) UnmarshalText(text []byte) error {
	v, err := ParseRating(string(text))
	if err != nil {
		return err
	}
	*r = v
	return nil
}
