package session

import (
	"fmt"

	"github.com/conorfennell/muraje/internal/gamify"
	"github.com/conorfennell/muraje/internal/srs"
)

// Mode is the session state machine position.
type Mode int

const (
	NoCardsDue Mode = iota
	ShowingFront
	ShowingBack
)

var modeNames = [...]string{
	NoCardsDue:   "no_cards_due",
	ShowingFront: "showing_front",
	ShowingBack:  "showing_back",
}

func (m Mode) String() string {
	if m >= NoCardsDue && m <= ShowingBack {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// View is what a front end needs to draw the session.
type View struct {
	Mode     Mode        `json:"mode"`
	Card     *CardView   `json:"card,omitempty"`
	Position int         `json:"position"`
	DueCount int         `json:"dueCount"`
	Points   int         `json:"points"`
	Streak   int         `json:"streak"`
	Badges   []BadgeView `json:"badges"`
}

// CardView is the current card. Back is empty until the answer is revealed.
type CardView struct {
	ID    int64  `json:"id"`
	Front string `json:"front"`
	Back  string `json:"back,omitempty"`
}

// BadgeView is one catalog entry with its earned flag.
type BadgeView struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Earned bool   `json:"earned"`
}

// View returns a snapshot of the session without changing it.
func (c *Controller) View() View {
	due := srs.DueIndexes(c.state.Cards, c.today())
	v := View{
		Mode:     c.mode,
		DueCount: len(due),
		Points:   c.state.Points,
		Streak:   c.state.Streak,
	}

	for _, b := range gamify.Catalog {
		v.Badges = append(v.Badges, BadgeView{ID: b.ID, Name: b.Name, Icon: b.Icon, Earned: c.state.HasBadge(b.ID)})
	}

	if len(due) == 0 {
		v.Mode = NoCardsDue
		return v
	}
	if c.mode == NoCardsDue {
		return v
	}

	v.Position = clampCursor(c.state.CurrentCardIndex, len(due))
	card := c.state.Cards[due[v.Position]]
	v.Card = &CardView{ID: card.ID, Front: card.Front}
	if c.mode == ShowingBack {
		v.Card.Back = card.Back
	}
	return v
}
