// Package engine implements the blackjack dealing and play rules.
//
// Every operation takes the deck and hands it works on and returns new
// values; the engine keeps no game state of its own. Ownership of the
// current round lives with the caller (see package game).
package engine

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

// DefaultDeckCount is the number of decks in a fresh shoe
const DefaultDeckCount = 6

// DealerStandsOn is the soft total at which the dealer stops drawing
const DealerStandsOn = 17

var (
	// ErrInvalidSplit is returned when splitting a hand that is not an
	// unsplit two-card pair
	ErrInvalidSplit = errors.New("hand cannot be split")

	// ErrInvalidDouble is returned when doubling a hand that is not an
	// undoubled two-card hand
	ErrInvalidDouble = errors.New("hand cannot be doubled")
)

// Engine applies blackjack rules to explicit decks and hands
type Engine struct {
	deckCount int
	logger    *log.Logger
}

// Option configures an Engine
type Option func(*Engine)

// WithDeckCount sets the number of decks per shoe
func WithDeckCount(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.deckCount = n
		}
	}
}

// New creates an engine
func New(logger *log.Logger, opts ...Option) *Engine {
	e := &Engine{
		deckCount: DefaultDeckCount,
		logger:    logger.WithPrefix("engine"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// DeckCount returns the number of decks per shoe
func (e *Engine) DeckCount() int {
	return e.deckCount
}

// NewShoe returns a freshly shuffled shoe
func (e *Engine) NewShoe(rng *rand.Rand) deck.Deck {
	shoe := deck.New(rng, e.deckCount)
	e.logger.Debug("Shuffled new shoe", "decks", e.deckCount, "cards", shoe.Remaining())
	return shoe
}

// Deal is the outcome of the initial deal
type Deal struct {
	Player hand.Hand
	Dealer hand.Hand
	Deck   deck.Deck
}

// DealInitialCards deals player, dealer, player, dealer. The dealer's
// second card is the face-down hole card.
func (e *Engine) DealInitialCards(d deck.Deck) (Deal, error) {
	player, dealer := hand.New(0), hand.New(0)
	order := []struct {
		target *hand.Hand
		faceUp bool
	}{
		{&player, true},
		{&dealer, true},
		{&player, true},
		{&dealer, false},
	}

	for _, step := range order {
		card, rest, err := d.Draw(step.faceUp)
		if err != nil {
			return Deal{}, fmt.Errorf("initial deal: %w", err)
		}
		next, err := step.target.AddCard(card)
		if err != nil {
			return Deal{}, fmt.Errorf("initial deal: %w", err)
		}
		*step.target = next
		d = rest
	}

	e.logger.Debug("Dealt initial cards", "player", player, "dealer", dealer, "remaining", d.Remaining())
	return Deal{Player: player, Dealer: dealer, Deck: d}, nil
}

// Hit draws one face-up card onto the hand. A hand whose hard total goes
// over 21 comes back busted and standing.
func (e *Engine) Hit(h hand.Hand, d deck.Deck) (hand.Hand, deck.Deck, error) {
	card, rest, err := d.Draw(true)
	if err != nil {
		return h, d, fmt.Errorf("hit: %w", err)
	}
	next, err := h.AddCard(card)
	if err != nil {
		return h, d, fmt.Errorf("hit: %w", err)
	}
	if next.Value().Bust {
		next = next.MarkBusted()
	}
	return next, rest, nil
}

// Stand marks the hand as standing
func (e *Engine) Stand(h hand.Hand) hand.Hand {
	return h.Stand()
}

// DoubleDown doubles the bet, draws exactly one card and stands whatever
// the result. The caller charges the extra stake.
func (e *Engine) DoubleDown(h hand.Hand, d deck.Deck) (hand.Hand, deck.Deck, error) {
	if h.Len() != 2 || h.DoubledDown || h.Closed() {
		return h, d, ErrInvalidDouble
	}
	next, rest, err := e.Hit(h.WithDoubledBet(), d)
	if err != nil {
		return h, d, fmt.Errorf("double down: %w", err)
	}
	return next.Stand(), rest, nil
}

// Split turns a pair into two hands, each keeping one original card plus a
// fresh one and the original bet. The caller charges the second stake.
func (e *Engine) Split(h hand.Hand, d deck.Deck) ([2]hand.Hand, deck.Deck, error) {
	var out [2]hand.Hand
	if h.Len() != 2 || h.Split || h.Closed() {
		return out, d, ErrInvalidSplit
	}
	if h.Cards[0].StrategyCode() != h.Cards[1].StrategyCode() {
		return out, d, fmt.Errorf("%w: %s and %s are not a pair", ErrInvalidSplit, h.Cards[0], h.Cards[1])
	}

	for i, seed := range h.Cards {
		split := hand.New(h.Bet)
		split.Split = true

		var err error
		if split, err = split.AddCard(seed); err != nil {
			return out, d, fmt.Errorf("split: %w", err)
		}
		card, rest, err := d.Draw(true)
		if err != nil {
			return out, d, fmt.Errorf("split: %w", err)
		}
		if split, err = split.AddCard(card); err != nil {
			return out, d, fmt.Errorf("split: %w", err)
		}
		out[i] = split
		d = rest
	}

	e.logger.Debug("Split hand", "first", out[0], "second", out[1])
	return out, d, nil
}

// CanSplit reports whether the hand is an unsplit pair and the bankroll
// covers a second stake
func (e *Engine) CanSplit(h hand.Hand, bankroll float64) bool {
	if h.Len() != 2 || h.Split || h.Closed() {
		return false
	}
	if bankroll < h.Bet {
		return false
	}
	return h.Cards[0].StrategyCode() == h.Cards[1].StrategyCode()
}

// CanDouble reports whether the hand is an undoubled two-card hand and the
// bankroll covers the extra stake
func (e *Engine) CanDouble(h hand.Hand, bankroll float64) bool {
	if h.Len() != 2 || h.DoubledDown || h.Closed() {
		return false
	}
	return bankroll >= h.Bet
}

// PlayDealerTurn reveals the hole card and draws while the soft total is
// below 17. The returned hand is either standing or busted.
func (e *Engine) PlayDealerTurn(dealer hand.Hand, d deck.Deck) (hand.Hand, deck.Deck, error) {
	h := dealer.Reveal()
	for {
		v := h.Value()
		if v.Bust {
			return h.MarkBusted(), d, nil
		}
		if v.Soft >= DealerStandsOn {
			e.logger.Debug("Dealer stands", "total", v.Soft, "cards", h)
			return h.Stand(), d, nil
		}

		var err error
		h, d, err = e.Hit(h, d)
		if err != nil {
			return dealer, d, fmt.Errorf("dealer turn: %w", err)
		}
	}
}
