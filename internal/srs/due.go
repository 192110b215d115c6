package srs

import "github.com/conorfennell/muraje/internal/domain"

// DueIndexes returns the positions of cards whose next review is on or before today,
// in store order.
func DueIndexes(cards []domain.Card, today domain.Date) []int {
	var idx []int
	for i, c := range cards {
		if c.NextReview <= today {
			idx = append(idx, i)
		}
	}
	return idx
}

// Due returns the cards due on or before today, in store order.
func Due(cards []domain.Card, today domain.Date) []domain.Card {
	idx := DueIndexes(cards, today)
	due := make([]domain.Card, 0, len(idx))
	for _, i := range idx {
		due = append(due, cards[i].Clone())
	}
	return due
}
