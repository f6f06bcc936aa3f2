package hand

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// Value is the evaluation of a hand's visible cards. It is derived on
// demand and never stored on the Hand.
type Value struct {
	Hard      int
	Soft      int
	IsSoft    bool
	Blackjack bool
	Bust      bool
}

// Best returns the total that counts for play: the soft total when the
// hand is soft, the hard total otherwise.
func (v Value) Best() int {
	if v.IsSoft {
		return v.Soft
	}
	return v.Hard
}

// String returns the display form of the value
func (v Value) String() string {
	switch {
	case v.Bust:
		return fmt.Sprintf("%d (Bust)", v.Hard)
	case v.Blackjack:
		return "Blackjack!"
	default:
		return fmt.Sprintf("%d", v.Best())
	}
}

// Evaluate totals the face-up cards. Face-down cards are ignored, which is
// how the dealer's hole card stays hidden from every caller.
func Evaluate(cards []deck.Card) Value {
	hard, aces, visible := 0, 0, 0
	for _, c := range cards {
		if !c.FaceUp {
			continue
		}
		visible++
		hard += c.Rank.MinValue()
		if c.IsAce() {
			aces++
		}
	}

	soft := hard
	if aces > 0 && hard+10 <= 21 {
		soft = hard + 10
	}

	return Value{
		Hard:      hard,
		Soft:      soft,
		IsSoft:    soft != hard,
		Blackjack: visible == 2 && soft == 21,
		Bust:      hard > 21,
	}
}
