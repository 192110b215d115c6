// Package session runs a review session: it owns the card store and session state,
// dispatches ratings to the scheduler and drives the persistence and notification ports.
//
// A Controller is not safe for concurrent use. Every event runs to completion before
// the next one is accepted; callers that share a Controller must serialize access.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/muraje/internal/domain"
	"github.com/conorfennell/muraje/internal/gamify"
	"github.com/conorfennell/muraje/internal/notify"
	"github.com/conorfennell/muraje/internal/srs"
)

// ErrNotSaved wraps a persistence failure after an event was applied in memory.
// The event took effect; only storing it failed.
var ErrNotSaved = errors.New("state not saved")

// Storage is the persistence port. LoadState returns nil data when nothing is stored.
type Storage interface {
	LoadState() ([]byte, error)
	SaveState(data []byte) error
}

// ReviewRecorder is implemented by storage backends that keep a review log.
type ReviewRecorder interface {
	RecordReview(log domain.ReviewLog) error
}

// Controller orchestrates one review session.
type Controller struct {
	state    domain.State
	mode     Mode
	day      domain.Date
	store    Storage
	notifier notify.Notifier
	params   *srs.Params
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces time.Now as the source of today's date.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithParams replaces the default scheduler tuning.
func WithParams(p *srs.Params) Option {
	return func(c *Controller) { c.params = p }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// New creates a Controller. Call Load before any other event.
func New(store Storage, notifier notify.Notifier, opts ...Option) *Controller {
	c := &Controller{
		state:    domain.DefaultState(),
		mode:     NoCardsDue,
		store:    store,
		notifier: notifier,
		params:   srs.DefaultParams(),
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "session")
	return c
}

// Load restores state from storage, or seeds the sample deck when nothing usable is
// stored. A restored session gets its once-per-day streak update here.
// Unreadable stored data falls back to the seed; a storage read failure is returned
// so that real data is never overwritten by the seed.
func (c *Controller) Load() error {
	today := c.today()

	data, err := c.store.LoadState()
	if err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	var st domain.State
	if len(data) == 0 {
		c.logger.Info("no stored state, seeding sample cards")
		st = domain.SeedState(today)
	} else if st, err = domain.DecodeState(data); err != nil {
		c.logger.Warn("stored state is unreadable, starting from seed", "error", err)
		st = domain.SeedState(today)
	} else {
		st.Streak, st.LastReviewDate, err = gamify.UpdateStreak(st.Streak, st.LastReviewDate, today)
		if err != nil {
			return fmt.Errorf("updating streak: %w", err)
		}
		c.logger.Debug("state restored", "cards", len(st.Cards), "streak", st.Streak, "points", st.Points)
	}

	c.state = st
	c.day = today
	msgs := c.awardBadges()
	c.render()
	saveErr := c.save()
	c.dispatch(msgs)
	return saveErr
}

// Render recomputes the due list, clamps the cursor and returns the view.
// Any revealed answer is hidden again. The first render on a new calendar day
// starts that day's session and persists the result.
func (c *Controller) Render() View {
	msgs, rolled, err := c.startDay(c.today())
	if err != nil {
		c.logger.Error("failed to start new day", "error", err)
	}
	c.render()
	if rolled {
		// save logs its own failure
		_ = c.save()
		c.dispatch(msgs)
	}
	return c.View()
}

// Reveal shows the answer of the current card.
func (c *Controller) Reveal() error {
	if c.mode != ShowingFront {
		return fmt.Errorf("%w: cannot reveal while %s", domain.ErrInvalidTransition, c.mode)
	}
	c.mode = ShowingBack
	return nil
}

// Outcome summarizes one rating event.
type Outcome struct {
	Card   domain.Card
	Points int
	Badges []string
}

// Rate schedules the current card, awards points and badges, advances the cursor
// and persists. It requires the answer to be revealed first. An invalid rating
// leaves all state unchanged.
func (c *Controller) Rate(rating domain.Rating) (Outcome, error) {
	if !rating.IsValid() {
		return Outcome{}, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}
	if c.mode != ShowingBack {
		return Outcome{}, fmt.Errorf("%w: cannot rate while %s", domain.ErrInvalidTransition, c.mode)
	}

	today := c.today()
	before := len(c.state.Badges)
	msgs, rolled, err := c.startDay(today)
	if err != nil {
		return Outcome{}, err
	}
	due := srs.DueIndexes(c.state.Cards, today)
	if len(due) == 0 {
		c.render()
		if rolled {
			_ = c.save()
			c.dispatch(msgs)
		}
		return Outcome{}, domain.ErrNoCardsDue
	}
	cursor := clampCursor(c.state.CurrentCardIndex, len(due))
	idx := due[cursor]

	res, err := c.params.Schedule(c.state.Cards[idx], rating, today)
	if err != nil {
		return Outcome{}, err
	}
	c.state.Cards[idx] = res.Card

	earned := gamify.ReviewPoints + res.Bonus
	if gamify.StreakBonusDue(c.state, today) {
		earned += gamify.StreakBonusPoints
		c.state.StreakBonusDate = today
		msgs = append(msgs, fmt.Sprintf("A full week of reviews, congratulations! +%d points", gamify.StreakBonusPoints))
	}
	c.state.Points += earned

	msgs = append(msgs, c.awardBadges()...)

	if n := len(srs.DueIndexes(c.state.Cards, today)); n > 0 {
		c.state.CurrentCardIndex = (cursor + 1) % n
	} else {
		c.state.CurrentCardIndex = 0
	}

	c.recordReview(res.Card, rating, today)
	c.render()
	saveErr := c.save()
	c.dispatch(msgs)

	c.logger.Debug("card rated", "card_id", res.Card.ID, "rating", rating, "next_review", res.Card.NextReview, "points", earned)
	return Outcome{
		Card:   res.Card.Clone(),
		Points: earned,
		Badges: append([]string{}, c.state.Badges[before:]...),
	}, saveErr
}

// AddCard validates the input and appends a new card due today.
func (c *Controller) AddCard(in domain.NewCard) (domain.Card, error) {
	in, err := in.Validate()
	if err != nil {
		return domain.Card{}, err
	}

	msgs, _, err := c.startDay(c.today())
	if err != nil {
		return domain.Card{}, err
	}

	card := c.newCard(in)
	c.state.Cards = append(c.state.Cards, card)
	c.state.Points += gamify.NewCardPoints

	msgs = append(msgs, fmt.Sprintf("New card added! +%d points", gamify.NewCardPoints))
	msgs = append(msgs, c.awardBadges()...)
	c.render()
	saveErr := c.save()
	c.dispatch(msgs)
	return card.Clone(), saveErr
}

// ImportCards adds a batch of cards in one event. Either every input is valid and
// all are added, or nothing changes. Imports award no points.
func (c *Controller) ImportCards(inputs []domain.NewCard) ([]domain.Card, error) {
	valid := make([]domain.NewCard, 0, len(inputs))
	for i, in := range inputs {
		v, err := in.Validate()
		if err != nil {
			return nil, fmt.Errorf("card %d: %w", i+1, err)
		}
		valid = append(valid, v)
	}
	if len(valid) == 0 {
		return nil, nil
	}

	msgs, _, err := c.startDay(c.today())
	if err != nil {
		return nil, err
	}

	added := make([]domain.Card, 0, len(valid))
	for _, in := range valid {
		card := c.newCard(in)
		c.state.Cards = append(c.state.Cards, card)
		added = append(added, card.Clone())
	}

	msgs = append(msgs, fmt.Sprintf("Imported %d cards", len(added)))
	msgs = append(msgs, c.awardBadges()...)
	c.render()
	saveErr := c.save()
	c.dispatch(msgs)
	return added, saveErr
}

// State returns a copy of the current state.
func (c *Controller) State() domain.State {
	return c.state.Clone()
}

// Cards returns a copy of the card store.
func (c *Controller) Cards() []domain.Card {
	return c.state.Clone().Cards
}

// DueCards returns the cards due today in store order.
func (c *Controller) DueCards() []domain.Card {
	return srs.Due(c.state.Cards, c.today())
}

// Today is the calendar date the session uses for due cards and streaks.
func (c *Controller) Today() domain.Date {
	return c.today()
}

// Mode returns the current session mode.
func (c *Controller) Mode() Mode {
	return c.mode
}

// startDay runs the once-per-day session start (streak update, then badges) when
// the clock has moved past the day the session last started. A long-running
// session crossing midnight behaves like a restart on the new day.
func (c *Controller) startDay(today domain.Date) ([]string, bool, error) {
	if c.day == today {
		return nil, false, nil
	}
	streak, last, err := gamify.UpdateStreak(c.state.Streak, c.state.LastReviewDate, today)
	if err != nil {
		return nil, false, fmt.Errorf("updating streak: %w", err)
	}
	c.state.Streak, c.state.LastReviewDate = streak, last
	c.day = today
	c.logger.Debug("new day started", "day", today, "streak", streak)
	return c.awardBadges(), true, nil
}

func (c *Controller) render() {
	due := srs.DueIndexes(c.state.Cards, c.today())
	if len(due) == 0 {
		c.mode = NoCardsDue
		return
	}
	c.state.CurrentCardIndex = clampCursor(c.state.CurrentCardIndex, len(due))
	c.mode = ShowingFront
}

// awardBadges records newly earned badges and returns their announcements.
func (c *Controller) awardBadges() []string {
	var msgs []string
	for _, b := range gamify.NewBadges(c.state) {
		c.state.Badges = append(c.state.Badges, b.ID)
		msgs = append(msgs, fmt.Sprintf("Congratulations! You earned the %s badge %s", b.Name, b.Icon))
	}
	return msgs
}

func (c *Controller) newCard(in domain.NewCard) domain.Card {
	return domain.Card{
		ID:         c.nextID(),
		Front:      in.Front,
		Back:       in.Back,
		NextReview: c.today(),
		Interval:   domain.Float(1),
		Ease:       domain.Float(domain.DefaultEase),
	}
}

// nextID is the current Unix millisecond timestamp, bumped past any existing id.
func (c *Controller) nextID() int64 {
	id := c.now().UnixMilli()
	for _, card := range c.state.Cards {
		if card.ID >= id {
			id = card.ID + 1
		}
	}
	return id
}

func (c *Controller) recordReview(card domain.Card, rating domain.Rating, today domain.Date) {
	rec, ok := c.store.(ReviewRecorder)
	if !ok {
		return
	}
	log := domain.ReviewLog{
		CardID:     card.ID,
		Rating:     rating,
		Date:       today,
		Interval:   *card.Interval,
		Ease:       c.params.DefaultEase,
		NextReview: card.NextReview,
	}
	if card.Ease != nil {
		log.Ease = *card.Ease
	}
	if err := rec.RecordReview(log); err != nil {
		c.logger.Warn("failed to record review", "card_id", card.ID, "error", err)
	}
}

func (c *Controller) save() error {
	data, err := domain.EncodeState(c.state)
	if err != nil {
		c.logger.Error("failed to encode state", "error", err)
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	if err := c.store.SaveState(data); err != nil {
		c.logger.Error("failed to save state", "error", err)
		return fmt.Errorf("%w: %w", ErrNotSaved, err)
	}
	return nil
}

func (c *Controller) dispatch(msgs []string) {
	if c.notifier == nil {
		return
	}
	for _, m := range msgs {
		c.notifier.Notify(m)
	}
}

func (c *Controller) today() domain.Date {
	return domain.DateOf(c.now())
}

func clampCursor(cursor, n int) int {
	if cursor < 0 || cursor >= n {
		return 0
	}
	return cursor
}
