package deck

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDeckSize(t *testing.T) {
	t.Parallel()
	rng := randutil.New(1)

	for _, n := range []int{1, 2, 6, 8} {
		d := New(rng, n)
		assert.Equal(t, n*CardsPerDeck, d.Remaining())
		for _, c := range d {
			assert.True(t, c.FaceUp, "fresh cards are face up")
		}
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	t.Parallel()
	rng := randutil.New(7)

	original := New(rng, 2)
	before := original.Clone()
	shuffled := Shuffle(rng, original)

	require.Len(t, shuffled, len(original))
	assert.Equal(t, before, original, "shuffle must not touch the input")
	assert.Equal(t, countCards(original), countCards(shuffled))
}

func TestDraw(t *testing.T) {
	t.Parallel()
	d := Deck{NewCard(Spades, Ace), NewCard(Hearts, Two), NewCard(Clubs, King)}

	card, rest, err := d.Draw(false)
	require.NoError(t, err)
	assert.Equal(t, Ace, card.Rank)
	assert.False(t, card.FaceUp)
	assert.Equal(t, 2, rest.Remaining())
	assert.NotContains(t, rest, NewCard(Spades, Ace))
	assert.Equal(t, 3, d.Remaining(), "original deck value unchanged")
}

func TestDrawEmpty(t *testing.T) {
	t.Parallel()
	var d Deck
	_, _, err := d.Draw(true)
	assert.True(t, errors.Is(err, ErrEmptyDeck))
}

func TestDrawExhaustsDeck(t *testing.T) {
	t.Parallel()
	d := New(randutil.New(3), 1)
	seen := make(map[Card]bool)
	for !d.IsEmpty() {
		var c Card
		var err error
		c, d, err = d.Draw(true)
		require.NoError(t, err)
		assert.False(t, seen[c], "card %s drawn twice from a single deck", c)
		seen[c] = true
	}
	assert.Len(t, seen, CardsPerDeck)
}

func countCards(cards []Card) map[Card]int {
	m := make(map[Card]int)
	for _, c := range cards {
		m[c]++
	}
	return m
}
