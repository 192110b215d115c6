package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the ISO calendar date format used for storage and due comparison.
const DateLayout = "2006-01-02"

// MaxDate is the last date DateLayout can hold with a four-digit year.
const MaxDate Date = "9999-12-31"

// Date is a calendar date in YYYY-MM-DD form. Because the format is fixed width,
// string comparison orders dates chronologically. The empty Date means absent.
type Date string

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// ParseDate validates s and returns it as a Date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date(s), nil
}

// IsZero reports whether the date is absent.
func (d Date) IsZero() bool {
	return d == ""
}

// Valid reports whether d is a well-formed calendar date.
func (d Date) Valid() bool {
	_, err := time.Parse(DateLayout, string(d))
	return err == nil
}

// AddDays returns the date n days after d. n may be negative. A result outside
// years 1 to 9999 returns ErrInvalidDate.
func (d Date) AddDays(n int) (Date, error) {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	if days, _ := d.DaysUntil(MaxDate); n > days {
		return "", fmt.Errorf("%w: %s + %d days is after %s", ErrInvalidDate, d, n, MaxDate)
	}
	next := t.AddDate(0, 0, n)
	if next.Year() < 1 {
		return "", fmt.Errorf("%w: %s %+d days is before year 1", ErrInvalidDate, d, n)
	}
	return DateOf(next), nil
}

// DaysUntil returns the number of days from d to other, negative if other is earlier.
func (d Date) DaysUntil(other Date) (int, error) {
	from, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	to, err := time.Parse(DateLayout, string(other))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDate, string(other))
	}
	// time.Duration overflows past ~292 years, so count in seconds
	return int((to.Unix() - from.Unix()) / 86400), nil
}

// Yesterday returns the date before d.
func (d Date) Yesterday() (Date, error) {
	return d.AddDays(-1)
}

func (d Date) String() string {
	return string(d)
}

// MarshalJSON writes an absent date as null.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(string(d))
}

// UnmarshalJSON accepts null or a YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, data)
	}
	if s == "" {
		*d = ""
		return nil
	}
	v, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
