package deck

import (
	"errors"
	rand "math/rand/v2"
)

// CardsPerDeck is the size of one standard deck
const CardsPerDeck = 52

// ErrEmptyDeck is returned when drawing from a deck with no cards left.
// Seeing it means the reshuffle threshold is wrong, not that the player
// did something recoverable.
var ErrEmptyDeck = errors.New("deck is empty")

// Deck is an ordered shoe of cards drawn from the front. Operations never
// modify the receiver's backing array, so a Deck value can be kept and
// shared safely after a draw.
type Deck []Card

// New builds deckCount standard decks, all face up, and shuffles them
func New(rng *rand.Rand, deckCount int) Deck {
	if deckCount < 1 {
		deckCount = 1
	}
	cards := make(Deck, 0, deckCount*CardsPerDeck)
	for range deckCount {
		for _, suit := range AllSuits {
			for _, rank := range AllRanks {
				cards = append(cards, NewCard(suit, rank))
			}
		}
	}
	return Shuffle(rng, cards)
}

// Shuffle returns a uniformly shuffled copy of the cards (Fisher-Yates).
// The input slice is left untouched.
func Shuffle(rng *rand.Rand, cards []Card) Deck {
	shuffled := make(Deck, len(cards))
	copy(shuffled, cards)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Draw returns the front card with its face flag overridden, and the deck
// that remains after removing it.
func (d Deck) Draw(faceUp bool) (Card, Deck, error) {
	if len(d) == 0 {
		return Card{}, d, ErrEmptyDeck
	}
	return d[0].WithFaceUp(faceUp), d[1:], nil
}

// Remaining returns the number of cards left in the deck
func (d Deck) Remaining() int {
	return len(d)
}

// IsEmpty returns true if the deck has no cards left
func (d Deck) IsEmpty() bool {
	return len(d) == 0
}

// Clone returns an independent copy of the deck
func (d Deck) Clone() Deck {
	if d == nil {
		return nil
	}
	out := make(Deck, len(d))
	copy(out, d)
	return out
}
