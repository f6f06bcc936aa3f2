// Package hand models a blackjack hand and evaluates its totals.
//
// Hands are values. Every transformation returns a new Hand with its own
// card slice, so a Hand handed out in a snapshot never changes underneath
// its holder.
package hand

import (
	"errors"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// ErrHandClosed is returned when adding a card to a standing or busted hand
var ErrHandClosed = errors.New("hand is closed")

// Hand is one set of cards with the bet riding on it
type Hand struct {
	Cards       []deck.Card
	Bet         float64
	DoubledDown bool
	Split       bool
	Standing    bool
	Busted      bool
}

// New returns an empty hand carrying bet
func New(bet float64) Hand {
	return Hand{Bet: bet}
}

// Closed reports whether the hand can no longer take cards
func (h Hand) Closed() bool {
	return h.Standing || h.Busted
}

// Len returns the number of cards in the hand
func (h Hand) Len() int {
	return len(h.Cards)
}

// AddCard returns the hand with c appended
func (h Hand) AddCard(c deck.Card) (Hand, error) {
	if h.Closed() {
		return h, ErrHandClosed
	}
	cards := make([]deck.Card, len(h.Cards), len(h.Cards)+1)
	copy(cards, h.Cards)
	h.Cards = append(cards, c)
	return h, nil
}

// WithDoubledBet returns the hand with its bet doubled and flagged
func (h Hand) WithDoubledBet() Hand {
	h.Bet *= 2
	h.DoubledDown = true
	return h
}

// Stand returns the hand marked as standing
func (h Hand) Stand() Hand {
	h.Standing = true
	return h
}

// MarkBusted returns the hand marked busted, which also closes it
func (h Hand) MarkBusted() Hand {
	h.Busted = true
	h.Standing = true
	return h
}

// Reveal returns the hand with every card turned face up
func (h Hand) Reveal() Hand {
	cards := make([]deck.Card, len(h.Cards))
	for i, c := range h.Cards {
		cards[i] = c.WithFaceUp(true)
	}
	h.Cards = cards
	return h
}

// UpCard returns the first face-up card, if any
func (h Hand) UpCard() (deck.Card, bool) {
	for _, c := range h.Cards {
		if c.FaceUp {
			return c, true
		}
	}
	return deck.Card{}, false
}

// Value evaluates the hand's visible cards
func (h Hand) Value() Value {
	return Evaluate(h.Cards)
}

// Clone returns a deep copy of the hand
func (h Hand) Clone() Hand {
	if h.Cards != nil {
		cards := make([]deck.Card, len(h.Cards))
		copy(cards, h.Cards)
		h.Cards = cards
	}
	return h
}

// String renders the cards, e.g. "[A♠ 10♥]"
func (h Hand) String() string {
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}
