// Package srs implements the interval/ease update and due-card selection.
//
// Intervals grow multiplicatively per rating and the ease factor is nudged up on
// easy and down on hard, clamped to [MinEase, MaxEase]. This is a simplified
// heuristic rather than a statistical memory model.
package srs

import (
	"fmt"
	"math"

	"github.com/conorfennell/muraje/internal/domain"
)

// Params holds the scheduler tuning.
type Params struct {
	// Multiplier grows an interval that has already been set.
	Multiplier map[domain.Rating]float64
	// FirstInterval is used when the card has no interval yet.
	FirstInterval map[domain.Rating]float64

	EaseStep    float64
	MinEase     float64
	MaxEase     float64
	DefaultEase float64

	// Bonus is the extra points awarded per rating on top of the base review points.
	Bonus map[domain.Rating]int
}

// DefaultParams returns the standard tuning.
func DefaultParams() *Params {
	return &Params{
		Multiplier: map[domain.Rating]float64{
			domain.Easy: 2.5,
			domain.Good: 1.8,
			domain.Hard: 1.2,
		},
		FirstInterval: map[domain.Rating]float64{
			domain.Easy: 6,
			domain.Good: 3,
			domain.Hard: 1,
		},
		EaseStep:    0.15,
		MinEase:     domain.MinEase,
		MaxEase:     domain.MaxEase,
		DefaultEase: domain.DefaultEase,
		Bonus: map[domain.Rating]int{
			domain.Easy: 5,
		},
	}
}

// ParamsConfig overrides DefaultParams. Zero fields keep the default.
type ParamsConfig struct {
	EasyMultiplier float64
	GoodMultiplier float64
	HardMultiplier float64

	EasyFirstInterval float64
	GoodFirstInterval float64
	HardFirstInterval float64

	EaseStep float64
}

// NewParams builds Params from DefaultParams with the non-zero overrides applied.
// Ease bounds are fixed so stored cards always satisfy the ease invariant.
func NewParams(cfg ParamsConfig) *Params {
	p := DefaultParams()

	if cfg.EasyMultiplier > 0 {
		p.Multiplier[domain.Easy] = cfg.EasyMultiplier
	}
	if cfg.GoodMultiplier > 0 {
		p.Multiplier[domain.Good] = cfg.GoodMultiplier
	}
	if cfg.HardMultiplier > 0 {
		p.Multiplier[domain.Hard] = cfg.HardMultiplier
	}

	if cfg.EasyFirstInterval > 0 {
		p.FirstInterval[domain.Easy] = cfg.EasyFirstInterval
	}
	if cfg.GoodFirstInterval > 0 {
		p.FirstInterval[domain.Good] = cfg.GoodFirstInterval
	}
	if cfg.HardFirstInterval > 0 {
		p.FirstInterval[domain.Hard] = cfg.HardFirstInterval
	}

	if cfg.EaseStep > 0 {
		p.EaseStep = cfg.EaseStep
	}
	return p
}

// Result is the outcome of scheduling one card.
type Result struct {
	Card  domain.Card
	Bonus int
}

// Schedule applies a rating to card as of today and returns the updated copy.
// The input card is never modified; an invalid rating returns ErrInvalidRating.
func (p *Params) Schedule(card domain.Card, rating domain.Rating, today domain.Date) (Result, error) {
	if !rating.IsValid() {
		return Result{}, fmt.Errorf("%w: %v", domain.ErrInvalidRating, rating)
	}

	next := card.Clone()

	// the next review can never land after domain.MaxDate
	maxDays, err := today.DaysUntil(domain.MaxDate)
	if err != nil {
		return Result{}, fmt.Errorf("scheduling card %d: %w", card.ID, err)
	}

	interval := p.nextInterval(card.Interval, rating)
	if maxDays > 0 && interval > float64(maxDays) {
		interval = float64(maxDays)
	}
	next.Interval = domain.Float(interval)
	if ease, changed := p.nextEase(card.Ease, rating); changed {
		next.Ease = domain.Float(ease)
	}
	next.Reviews++

	days := min(math.Round(interval), float64(maxDays))
	due, err := today.AddDays(int(days))
	if err != nil {
		return Result{}, fmt.Errorf("scheduling card %d: %w", card.ID, err)
	}
	next.NextReview = due

	return Result{Card: next, Bonus: p.Bonus[rating]}, nil
}

// nextInterval grows a set interval or starts an unset one. A non-positive stored
// interval counts as unset.
func (p *Params) nextInterval(current *float64, rating domain.Rating) float64 {
	if current == nil || *current <= 0 {
		return p.FirstInterval[rating]
	}
	return *current * p.Multiplier[rating]
}

// nextEase reports the adjusted ease and whether the rating touches ease at all.
func (p *Params) nextEase(current *float64, rating domain.Rating) (float64, bool) {
	ease := p.DefaultEase
	if current != nil {
		ease = *current
	}

	switch rating {
	case domain.Easy:
		return math.Min(ease+p.EaseStep, p.MaxEase), true
	case domain.Hard:
		return math.Max(ease-p.EaseStep, p.MinEase), true
	default:
		return ease, false
	}
}
