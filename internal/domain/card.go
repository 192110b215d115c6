package domain

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Card represents a single front/back flashcard and its scheduling state.
// Interval and Ease are nil until they have been set, which is distinct from zero.
type Card struct {
	ID         int64    `json:"id"`
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	NextReview Date     `json:"nextReview"`
	Interval   *float64 `json:"interval,omitempty"`
	Ease       *float64 `json:"ease,omitempty"`
	Reviews    int      `json:"reviews"`
}

// Clone returns a copy of the card that shares no pointers with c.
func (c Card) Clone() Card {
	if c.Interval != nil {
		v := *c.Interval
		c.Interval = &v
	}
	if c.Ease != nil {
		v := *c.Ease
		c.Ease = &v
	}
	return c
}

// Float returns a pointer to v, for the optional numeric fields of Card.
func Float(v float64) *float64 {
	return &v
}

// NewCard is the input for creating a card.
type NewCard struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// Validate trims both sides and checks that neither is empty.
// It returns the trimmed input.
func (n NewCard) Validate() (NewCard, error) {
	n.Front = strings.TrimSpace(n.Front)
	n.Back = strings.TrimSpace(n.Back)
	if err := validate.Struct(n); err != nil {
		return n, fmt.Errorf("%w: please fill in both the question and the answer", ErrValidation)
	}
	return n, nil
}

// ReviewLog records a single rating event for a card.
type ReviewLog struct {
	CardID     int64
	Rating     Rating
	Date       Date
	Interval   float64
	Ease       float64
	NextReview Date
}
