package domain

import "errors"

// Sentinel errors. Check with errors.Is.
var (
	// ErrInvalidRating is returned for a rating outside easy/good/hard.
	ErrInvalidRating = errors.New("invalid rating")

	// ErrValidation is returned when card input is empty or whitespace only.
	ErrValidation = errors.New("validation failed")

	// ErrMalformedState is returned when stored state cannot be decoded.
	ErrMalformedState = errors.New("malformed stored state")

	// ErrInvalidDate is returned for a date not in YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date")

	// ErrInvalidTransition is returned when an event does not apply to the current session mode,
	// such as rating a card before its answer was revealed.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrNoCardsDue indicates there is nothing to review.
	ErrNoCardsDue = errors.New("no cards due")
)
