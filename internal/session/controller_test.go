package session

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/conorfennell/muraje/internal/domain"
	"github.com/conorfennell/muraje/internal/notify"
)

type memStore struct {
	data    []byte
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) LoadState() ([]byte, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.data, nil
}

func (m *memStore) SaveState(data []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.data = append([]byte{}, data...)
	return nil
}

type recordingStore struct {
	memStore
	logs []domain.ReviewLog
}

func (r *recordingStore) RecordReview(log domain.ReviewLog) error {
	r.logs = append(r.logs, log)
	return nil
}

var day = time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)

func newController(t *testing.T, store Storage) (*Controller, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c := New(store, rec, WithClock(func() time.Time { return day }), WithLogger(logger))
	return c, rec
}

func storeWith(t *testing.T, st domain.State) *memStore {
	t.Helper()
	data, err := domain.EncodeState(st)
	if err != nil {
		t.Fatalf("EncodeState() returned an unexpected error: %v", err)
	}
	return &memStore{data: data}
}

func loaded(t *testing.T, store Storage) (*Controller, *notify.Recorder) {
	t.Helper()
	c, rec := newController(t, store)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	rec.Drain()
	return c, rec
}

func TestLoadSeedsOnFirstLaunch(t *testing.T) {
	store := &memStore{}
	c, rec := newController(t, store)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}

	st := c.State()
	if len(st.Cards) != 2 {
		t.Fatalf("Expected 2 seed cards, got %d", len(st.Cards))
	}
	if !st.LastReviewDate.IsZero() || st.Streak != 0 {
		t.Errorf("Expected streak untouched on first launch, got %d/%q", st.Streak, st.LastReviewDate)
	}
	if store.saves != 1 {
		t.Errorf("Expected seed state to be saved once, got %d saves", store.saves)
	}
	if !st.HasBadge("first") {
		t.Error("Expected the first badge once cards exist")
	}
	msgs := rec.Drain()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "First step") {
		t.Errorf("Expected one badge notification, got %v", msgs)
	}
	if c.Mode() != ShowingFront {
		t.Errorf("Expected %s, got %s", ShowingFront, c.Mode())
	}
}

func TestLoadMalformedFallsBackToSeed(t *testing.T) {
	store := &memStore{data: []byte("{not json")}
	c, _ := newController(t, store)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if n := len(c.State().Cards); n != 2 {
		t.Errorf("Expected seed deck after malformed state, got %d cards", n)
	}
}

func TestLoadStorageFailure(t *testing.T) {
	store := &memStore{loadErr: errors.New("disk on fire")}
	c, _ := newController(t, store)
	if err := c.Load(); err == nil {
		t.Fatal("Expected Load() to fail when storage cannot be read")
	}
	if store.saves != 0 {
		t.Errorf("Expected nothing to be written, got %d saves", store.saves)
	}
}

func TestLoadUpdatesStreakOnce(t *testing.T) {
	st := domain.SeedState("2024-01-09")
	st.Streak = 2
	st.LastReviewDate = "2024-01-09"
	store := storeWith(t, st)

	c, _ := loaded(t, store)
	got := c.State()
	if got.Streak != 3 || got.LastReviewDate != "2024-01-10" {
		t.Fatalf("Expected streak 3 on 2024-01-10, got %d on %s", got.Streak, got.LastReviewDate)
	}
	if !got.HasBadge("streak3") {
		t.Error("Expected the streak3 badge")
	}

	// A second launch on the same day must not inflate the streak.
	c2, _ := loaded(t, store)
	if s := c2.State().Streak; s != 3 {
		t.Errorf("Expected streak to stay 3, got %d", s)
	}
}

func TestRateEasyOnFreshCard(t *testing.T) {
	st := domain.DefaultState()
	st.Cards = []domain.Card{{ID: 1, Front: "Q", Back: "A", NextReview: "2024-01-10", Ease: domain.Float(2.5)}}
	c, _ := loaded(t, storeWith(t, st))
	before := c.State().Points

	if err := c.Reveal(); err != nil {
		t.Fatalf("Reveal() returned an unexpected error: %v", err)
	}
	out, err := c.Rate(domain.Easy)
	if err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}

	card := c.State().Cards[0]
	if *card.Interval != 6 {
		t.Errorf("Expected interval 6, got %.2f", *card.Interval)
	}
	if math.Abs(*card.Ease-2.65) > 1e-9 {
		t.Errorf("Expected ease 2.65, got %.4f", *card.Ease)
	}
	if card.NextReview != "2024-01-16" {
		t.Errorf("Expected next review 2024-01-16, got %s", card.NextReview)
	}
	if card.Reviews != 1 {
		t.Errorf("Expected 1 review, got %d", card.Reviews)
	}
	if got := c.State().Points - before; got != 15 {
		t.Errorf("Expected +15 points, got %+d", got)
	}
	if out.Points != 15 {
		t.Errorf("Expected outcome points 15, got %d", out.Points)
	}
	if c.Mode() != NoCardsDue {
		t.Errorf("Expected %s after the only card left the queue, got %s", NoCardsDue, c.Mode())
	}
}

func TestRateRequiresReveal(t *testing.T) {
	c, _ := loaded(t, &memStore{})
	before := c.State()

	_, err := c.Rate(domain.Good)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("Expected ErrInvalidTransition, got %v", err)
	}
	if c.State().Points != before.Points || c.State().Cards[0].Reviews != 0 {
		t.Error("Expected state to be unchanged")
	}
}

func TestRateRejectsInvalidRating(t *testing.T) {
	store := &memStore{}
	c, rec := loaded(t, store)
	if err := c.Reveal(); err != nil {
		t.Fatalf("Reveal() returned an unexpected error: %v", err)
	}
	before, _ := domain.EncodeState(c.State())
	saves := store.saves

	_, err := c.Rate(domain.Rating(42))
	if !errors.Is(err, domain.ErrInvalidRating) {
		t.Fatalf("Expected ErrInvalidRating, got %v", err)
	}
	after, _ := domain.EncodeState(c.State())
	if string(before) != string(after) {
		t.Error("Expected state to be unchanged after an invalid rating")
	}
	if store.saves != saves {
		t.Error("Expected no save after an invalid rating")
	}
	if c.Mode() != ShowingBack {
		t.Errorf("Expected to stay in %s, got %s", ShowingBack, c.Mode())
	}
	if msgs := rec.Drain(); len(msgs) != 0 {
		t.Errorf("Expected no notifications, got %v", msgs)
	}
}

func TestRateAdvancesCursorOverRecomputedQueue(t *testing.T) {
	st := domain.DefaultState()
	for i := int64(1); i <= 3; i++ {
		st.Cards = append(st.Cards, domain.Card{ID: i, Front: "Q", Back: "A", NextReview: "2024-01-10"})
	}
	c, _ := loaded(t, storeWith(t, st))

	if v := c.View(); v.Card == nil || v.Card.ID != 1 {
		t.Fatalf("Expected card 1 first, got %+v", v.Card)
	}
	_ = c.Reveal()
	if _, err := c.Rate(domain.Good); err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}

	// Card 1 left the queue, leaving [2, 3]; the cursor moves to (0+1) mod 2.
	v := c.View()
	if v.DueCount != 2 {
		t.Fatalf("Expected 2 due cards, got %d", v.DueCount)
	}
	if v.Mode != ShowingFront || v.Card == nil || v.Card.ID != 3 {
		t.Errorf("Expected to show card 3's front, got %s %+v", v.Mode, v.Card)
	}
	if v.Card.Back != "" {
		t.Error("Expected the back to be hidden")
	}
}

func TestStreakBonusOncePerDay(t *testing.T) {
	st := domain.DefaultState()
	st.Streak = 6
	st.LastReviewDate = "2024-01-09"
	for i := int64(1); i <= 2; i++ {
		st.Cards = append(st.Cards, domain.Card{ID: i, Front: "Q", Back: "A", NextReview: "2024-01-10"})
	}
	c, rec := loaded(t, storeWith(t, st))
	if s := c.State().Streak; s != 7 {
		t.Fatalf("Expected streak 7, got %d", s)
	}

	_ = c.Reveal()
	out, err := c.Rate(domain.Good)
	if err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}
	if out.Points != 60 {
		t.Errorf("Expected 10 + 50 bonus points, got %d", out.Points)
	}
	msgs := rec.Drain()
	if len(msgs) != 1 || !strings.Contains(msgs[0], "+50") {
		t.Errorf("Expected one bonus notification, got %v", msgs)
	}

	_ = c.Reveal()
	out, err = c.Rate(domain.Good)
	if err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}
	if out.Points != 10 {
		t.Errorf("Expected no second bonus on the same day, got %d points", out.Points)
	}
}

func TestBadgesAreNeverRemoved(t *testing.T) {
	st := domain.DefaultState()
	st.Points = 95
	st.Cards = []domain.Card{{ID: 1, Front: "Q", Back: "A", NextReview: "2024-01-10"}}
	c, rec := loaded(t, storeWith(t, st))

	_ = c.Reveal()
	out, err := c.Rate(domain.Hard)
	if err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}
	if len(out.Badges) != 1 || out.Badges[0] != "points100" {
		t.Errorf("Expected points100 to be earned, got %v", out.Badges)
	}
	if msgs := rec.Drain(); len(msgs) != 1 {
		t.Errorf("Expected one badge notification, got %v", msgs)
	}

	// Reloading re-evaluates but neither re-awards nor drops anything.
	c2, rec2 := newController(t, c.store)
	if err := c2.Load(); err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	if msgs := rec2.Drain(); len(msgs) != 0 {
		t.Errorf("Expected no repeated notifications, got %v", msgs)
	}
	for _, id := range []string{"first", "points100"} {
		if !c2.State().HasBadge(id) {
			t.Errorf("Expected badge %s to persist", id)
		}
	}
}

func TestAddCard(t *testing.T) {
	st := domain.DefaultState()
	st.Cards = []domain.Card{{ID: 1, Front: "Old", Back: "Card", NextReview: "2024-02-01"}}
	c, rec := loaded(t, storeWith(t, st))
	if c.Mode() != NoCardsDue {
		t.Fatalf("Expected %s, got %s", NoCardsDue, c.Mode())
	}
	before := c.State().Points

	card, err := c.AddCard(domain.NewCard{Front: "Q", Back: "A"})
	if err != nil {
		t.Fatalf("AddCard() returned an unexpected error: %v", err)
	}
	if card.NextReview != "2024-01-10" || *card.Interval != 1 || *card.Ease != 2.5 || card.Reviews != 0 {
		t.Errorf("Unexpected new card %+v", card)
	}
	if card.ID != day.UnixMilli() {
		t.Errorf("Expected timestamp id %d, got %d", day.UnixMilli(), card.ID)
	}

	due := c.DueCards()
	if len(due) != 1 || due[0].ID != card.ID {
		t.Errorf("Expected the new card to be due immediately, got %v", due)
	}
	if got := c.State().Points - before; got != 5 {
		t.Errorf("Expected +5 points, got %+d", got)
	}
	if msgs := rec.Drain(); len(msgs) == 0 || !strings.Contains(msgs[0], "New card added") {
		t.Errorf("Expected a new card notification, got %v", msgs)
	}
	if c.Mode() != ShowingFront {
		t.Errorf("Expected %s, got %s", ShowingFront, c.Mode())
	}

	second, err := c.AddCard(domain.NewCard{Front: "Q2", Back: "A2"})
	if err != nil {
		t.Fatalf("AddCard() returned an unexpected error: %v", err)
	}
	if second.ID == card.ID {
		t.Error("Expected unique ids for cards created in the same millisecond")
	}
}

func TestAddCardValidation(t *testing.T) {
	store := &memStore{}
	c, rec := loaded(t, store)
	saves := store.saves
	before := c.State()

	_, err := c.AddCard(domain.NewCard{Front: "  ", Back: "A"})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if len(c.State().Cards) != len(before.Cards) || c.State().Points != before.Points {
		t.Error("Expected state to be unchanged")
	}
	if store.saves != saves {
		t.Error("Expected no save")
	}
	if msgs := rec.Drain(); len(msgs) != 0 {
		t.Errorf("Expected no notifications, got %v", msgs)
	}
}

func TestImportCardsIsAllOrNothing(t *testing.T) {
	c, _ := loaded(t, &memStore{})
	n := len(c.State().Cards)

	_, err := c.ImportCards([]domain.NewCard{{Front: "Q", Back: "A"}, {Front: "Q2"}})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if len(c.State().Cards) != n {
		t.Fatal("Expected no cards to be added")
	}

	added, err := c.ImportCards([]domain.NewCard{{Front: "Q", Back: "A"}, {Front: "Q2", Back: "A2"}})
	if err != nil {
		t.Fatalf("ImportCards() returned an unexpected error: %v", err)
	}
	if len(added) != 2 || len(c.State().Cards) != n+2 {
		t.Errorf("Expected 2 cards imported, got %d", len(added))
	}
	if c.State().Points != 0 {
		t.Errorf("Expected imports to award no points, got %d", c.State().Points)
	}
}

func TestRevealWithNothingDue(t *testing.T) {
	st := domain.DefaultState()
	st.Cards = []domain.Card{{ID: 1, Front: "Q", Back: "A", NextReview: "2024-03-01"}}
	c, _ := loaded(t, storeWith(t, st))

	if v := c.Render(); v.Mode != NoCardsDue || v.Card != nil {
		t.Errorf("Expected an empty %s view, got %+v", NoCardsDue, v)
	}
	if err := c.Reveal(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Errorf("Expected ErrInvalidTransition, got %v", err)
	}
}

func TestRateRecordsReview(t *testing.T) {
	store := &recordingStore{}
	c, _ := loaded(t, store)
	_ = c.Reveal()
	if _, err := c.Rate(domain.Good); err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}
	if len(store.logs) != 1 {
		t.Fatalf("Expected 1 review log, got %d", len(store.logs))
	}
	log := store.logs[0]
	if log.CardID != 1 || log.Rating != domain.Good || log.Date != "2024-01-10" || log.Interval != 1.8 {
		t.Errorf("Unexpected review log %+v", log)
	}
}

func TestSaveFailureKeepsInMemoryState(t *testing.T) {
	store := &memStore{}
	c, _ := loaded(t, store)
	store.saveErr = errors.New("read-only")

	_ = c.Reveal()
	if _, err := c.Rate(domain.Good); !errors.Is(err, ErrNotSaved) {
		t.Fatalf("Expected ErrNotSaved, got %v", err)
	}
	if c.State().Cards[0].Reviews != 1 {
		t.Error("Expected the rating to apply in memory")
	}
}

func TestNewDayStartsWithoutRestart(t *testing.T) {
	st := domain.DefaultState()
	st.Streak = 6
	st.LastReviewDate = "2024-01-09"
	for i := int64(1); i <= 3; i++ {
		st.Cards = append(st.Cards, domain.Card{ID: i, Front: "Q", Back: "A", NextReview: "2024-01-09"})
	}
	store := storeWith(t, st)

	now := day
	c := New(store, &notify.Recorder{},
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}

	_ = c.Reveal()
	out, err := c.Rate(domain.Good)
	if err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}
	if out.Points != 60 {
		t.Fatalf("Expected 10 + 50 bonus points on day one, got %d", out.Points)
	}

	// the process keeps running past midnight
	now = now.Add(24 * time.Hour)
	if c.Today() != "2024-01-11" {
		t.Fatalf("Expected the session to follow the clock, got %s", c.Today())
	}

	if err := c.Reveal(); err != nil {
		t.Fatalf("Reveal() returned an unexpected error: %v", err)
	}
	out, err = c.Rate(domain.Good)
	if err != nil {
		t.Fatalf("Rate() returned an unexpected error: %v", err)
	}
	if out.Points != 10 {
		t.Errorf("Expected no repeated streak bonus on day two, got %d points", out.Points)
	}

	got := c.State()
	if got.Streak != 8 || got.LastReviewDate != "2024-01-11" {
		t.Errorf("Expected streak 8 on 2024-01-11, got %d on %s", got.Streak, got.LastReviewDate)
	}

	saved, err := domain.DecodeState(store.data)
	if err != nil {
		t.Fatalf("DecodeState() returned an unexpected error: %v", err)
	}
	if saved.Streak != 8 || saved.LastReviewDate != "2024-01-11" || saved.Points != 70 {
		t.Errorf("Expected the new day to be persisted, got streak %d on %s with %d points",
			saved.Streak, saved.LastReviewDate, saved.Points)
	}
}

func TestRenderStartsNewDay(t *testing.T) {
	st := domain.DefaultState()
	st.Streak = 1
	st.LastReviewDate = "2024-01-09"
	st.Cards = []domain.Card{{ID: 1, Front: "Q", Back: "A", NextReview: "2024-01-09"}}
	store := storeWith(t, st)

	now := day
	c := New(store, &notify.Recorder{},
		WithClock(func() time.Time { return now }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err := c.Load(); err != nil {
		t.Fatalf("Load() returned an unexpected error: %v", err)
	}
	saves := store.saves

	c.Render()
	if store.saves != saves {
		t.Errorf("Expected a same-day render not to save, got %d extra saves", store.saves-saves)
	}

	now = now.Add(24 * time.Hour)
	v := c.Render()
	if v.Streak != 3 {
		t.Errorf("Expected streak 3 after rolling into 2024-01-11, got %d", v.Streak)
	}
	if store.saves != saves+1 {
		t.Errorf("Expected the new day to be saved once, got %d extra saves", store.saves-saves)
	}

	c.Render()
	if s := c.State().Streak; s != 3 {
		t.Errorf("Expected a second render on the same day to keep streak 3, got %d", s)
	}
}
