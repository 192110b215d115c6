package domain

import (
	"encoding/json"
	"fmt"
)

// Ease bounds and default shared by the scheduler and state decoding.
const (
	MinEase     = 1.3
	MaxEase     = 3.0
	DefaultEase = 2.5
)

// State is the whole persisted aggregate: the card store plus session progress.
type State struct {
	Cards            []Card   `json:"cards"`
	CurrentCardIndex int      `json:"currentCardIndex"`
	Points           int      `json:"points"`
	Streak           int      `json:"streak"`
	LastReviewDate   Date     `json:"lastReviewDate"`
	Badges           []string `json:"badges"`

	// StreakBonusDate is the day the streak milestone bonus was last paid.
	StreakBonusDate Date `json:"streakBonusDate,omitempty"`
}

// DefaultState is the initial state that stored state is merged onto.
func DefaultState() State {
	return State{
		Cards:  []Card{},
		Badges: []string{},
	}
}

// SeedState is the first-launch state with two sample cards due today.
func SeedState(today Date) State {
	st := DefaultState()
	st.Cards = []Card{
		{
			ID:         1,
			Front:      "What is the first step in spaced repetition?",
			Back:       "Reviewing at the right moment, just before you forget",
			NextReview: today,
			Interval:   Float(1),
			Ease:       Float(DefaultEase),
		},
		{
			ID:         2,
			Front:      "Why add rewards to studying?",
			Back:       "They keep you consistent and make the process more enjoyable",
			NextReview: today,
			Interval:   Float(1),
			Ease:       Float(DefaultEase),
		},
	}
	return st
}

// HasBadge reports whether the badge id was already earned.
func (s State) HasBadge(id string) bool {
	for _, b := range s.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Cards = make([]Card, len(s.Cards))
	for i, c := range s.Cards {
		out.Cards[i] = c.Clone()
	}
	out.Badges = append([]string{}, s.Badges...)
	return out
}

// EncodeState serializes the state for the storage port.
func EncodeState(s State) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding state: %w", err)
	}
	return data, nil
}

// DecodeState parses stored state and merges it onto DefaultState, so fields missing
// from data keep their initial values. Any decode or invariant failure is reported
// as ErrMalformedState.
func DecodeState(data []byte) (State, error) {
	st := DefaultState()
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	if st.Cards == nil {
		st.Cards = []Card{}
	}
	if err := st.check(); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedState, err)
	}
	st.Badges = dedupe(st.Badges)
	if st.CurrentCardIndex < 0 {
		st.CurrentCardIndex = 0
	}
	return st, nil
}

func (s State) check() error {
	if s.Points < 0 {
		return fmt.Errorf("negative points %d", s.Points)
	}
	if s.Streak < 0 {
		return fmt.Errorf("negative streak %d", s.Streak)
	}
	ids := make(map[int64]bool, len(s.Cards))
	for _, c := range s.Cards {
		if ids[c.ID] {
			return fmt.Errorf("duplicate card id %d", c.ID)
		}
		ids[c.ID] = true
		if c.NextReview.IsZero() {
			return fmt.Errorf("card %d has no next review date", c.ID)
		}
		if c.Reviews < 0 {
			return fmt.Errorf("card %d has negative review count", c.ID)
		}
		if c.Ease != nil && (*c.Ease < MinEase || *c.Ease > MaxEase) {
			return fmt.Errorf("card %d ease %.2f out of range", c.ID, *c.Ease)
		}
	}
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
