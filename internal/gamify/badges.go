package gamify

import "github.com/conorfennell/muraje/internal/domain"

// Point awards.
const (
	ReviewPoints      = 10
	NewCardPoints     = 5
	StreakBonusPoints = 50

	// StreakMilestone is the streak length whose multiples pay the streak bonus.
	StreakMilestone = 7
)

// Badge is a one-time achievement tied to a predicate over state.
type Badge struct {
	ID   string
	Name string
	Icon string

	earned func(domain.State) bool
}

// Earned reports whether st satisfies the badge condition.
func (b Badge) Earned(st domain.State) bool {
	return b.earned(st)
}

// Catalog lists every badge in display order.
var Catalog = []Badge{
	{ID: "first", Name: "First step", Icon: "⭐", earned: func(s domain.State) bool { return len(s.Cards) > 0 }},
	{ID: "streak3", Name: "3 days", Icon: "🔥", earned: func(s domain.State) bool { return s.Streak >= 3 }},
	{ID: "streak7", Name: "One week", Icon: "🚀", earned: func(s domain.State) bool { return s.Streak >= 7 }},
	{ID: "points100", Name: "100 points", Icon: "💎", earned: func(s domain.State) bool { return s.Points >= 100 }},
	{ID: "cards10", Name: "10 cards", Icon: "📚", earned: func(s domain.State) bool { return len(s.Cards) >= 10 }},
}

// Lookup returns the catalog entry for id.
func Lookup(id string) (Badge, bool) {
	for _, b := range Catalog {
		if b.ID == id {
			return b, true
		}
	}
	return Badge{}, false
}

// NewBadges returns the badges st satisfies that are not yet recorded in st.Badges.
// It has no side effects; the caller records and announces the result.
func NewBadges(st domain.State) []Badge {
	var out []Badge
	for _, b := range Catalog {
		if b.Earned(st) && !st.HasBadge(b.ID) {
			out = append(out, b)
		}
	}
	return out
}

// StreakBonusDue reports whether the streak milestone bonus should be paid today:
// the streak is a positive multiple of StreakMilestone and the bonus has not
// already been paid today.
func StreakBonusDue(st domain.State, today domain.Date) bool {
	if st.Streak <= 0 || st.Streak%StreakMilestone != 0 {
		return false
	}
	return st.StreakBonusDate != today
}
