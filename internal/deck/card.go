package deck

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCard is returned when a card string cannot be parsed
var ErrInvalidCard = errors.New("invalid card")

// Suit represents a card suit
type Suit int

const (
	Hearts Suit = iota
	Diamonds
	Clubs
	Spades
)

// AllSuits lists the suits in deck construction order
var AllSuits = []Suit{Hearts, Diamonds, Clubs, Spades}

// String returns the symbol for a suit
func (s Suit) String() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Name returns the lowercase suit name
func (s Suit) Name() string {
	switch s {
	case Hearts:
		return "hearts"
	case Diamonds:
		return "diamonds"
	case Clubs:
		return "clubs"
	case Spades:
		return "spades"
	default:
		return "unknown"
	}
}

// IsRed returns true if the suit is red (Hearts or Diamonds)
func (s Suit) IsRed() bool {
	return s == Hearts || s == Diamonds
}

// Rank represents a card rank. Ace is low in the ordering; its
// blackjack value range is handled by MinValue and the evaluator.
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

// AllRanks lists the thirteen ranks in deck construction order
var AllRanks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

// String returns the display form of a rank
func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Ten:
		return "10"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	if r >= Two && r <= Nine {
		return fmt.Sprintf("%d", int(r))
	}
	return "?"
}

// MinValue is the lowest value the rank can count for: 1 for an ace,
// face value for 2-9, and 10 for ten-valued cards.
func (r Rank) MinValue() int {
	if r >= Ten {
		return 10
	}
	return int(r)
}

// MaxValue is the highest value the rank can count for (11 for an ace)
func (r Rank) MaxValue() int {
	if r == Ace {
		return 11
	}
	return r.MinValue()
}

// StrategyCode returns the strategy table symbol for the rank: "2"-"9",
// "T" for every ten-valued rank and "A" for an ace.
func (r Rank) StrategyCode() string {
	switch {
	case r == Ace:
		return "A"
	case r >= Ten:
		return "T"
	case r >= Two:
		return fmt.Sprintf("%d", int(r))
	default:
		return "?"
	}
}

// Card represents a playing card. Cards are values; changing the face
// flag produces a new card.
type Card struct {
	Suit   Suit
	Rank   Rank
	FaceUp bool
}

// NewCard creates a new face-up card
func NewCard(suit Suit, rank Rank) Card {
	return Card{Suit: suit, Rank: rank, FaceUp: true}
}

// String returns the string representation of a card (e.g., "A♠").
// Face-down cards render as "??".
func (c Card) String() string {
	if !c.FaceUp {
		return "??"
	}
	return fmt.Sprintf("%s%s", c.Rank, c.Suit)
}

// WithFaceUp returns a copy of the card with the face flag set
func (c Card) WithFaceUp(faceUp bool) Card {
	c.FaceUp = faceUp
	return c
}

// IsRed returns true if the card is red
func (c Card) IsRed() bool {
	return c.Suit.IsRed()
}

// IsAce returns true if the card is an Ace
func (c Card) IsAce() bool {
	return c.Rank == Ace
}

// StrategyCode returns the strategy table symbol for the card's rank
func (c Card) StrategyCode() string {
	return c.Rank.StrategyCode()
}

// ParseCard parses a card like "Ah", "10d", "Tc" or "ks". Rank and suit
// are case-insensitive; "T" and "10" both parse as Ten.
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	rankPart, suitPart := strings.ToUpper(s[:len(s)-1]), strings.ToLower(s[len(s)-1:])

	var rank Rank
	switch rankPart {
	case "A":
		rank = Ace
	case "T", "10":
		rank = Ten
	case "J":
		rank = Jack
	case "Q":
		rank = Queen
	case "K":
		rank = King
	default:
		if len(rankPart) != 1 || rankPart[0] < '2' || rankPart[0] > '9' {
			return Card{}, fmt.Errorf("%w: bad rank in %q", ErrInvalidCard, s)
		}
		rank = Rank(rankPart[0] - '0')
	}

	var suit Suit
	switch suitPart {
	case "h":
		suit = Hearts
	case "d":
		suit = Diamonds
	case "c":
		suit = Clubs
	case "s":
		suit = Spades
	default:
		return Card{}, fmt.Errorf("%w: bad suit in %q", ErrInvalidCard, s)
	}

	return NewCard(suit, rank), nil
}

// ParseCards parses whitespace or comma separated cards ("Ah Td", "Ah,Td")
func ParseCards(s string) ([]Card, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	cards := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, nil
}

// MustParseCards is like ParseCards but panics on error. Intended for tests.
func MustParseCards(s string) []Card {
	cards, err := ParseCards(s)
	if err != nil {
		panic(err)
	}
	return cards
}

// RankForCode returns the ranks that map to a strategy code. "T" yields
// all four ten-valued ranks.
func RankForCode(code string) ([]Rank, error) {
	switch code {
	case "A":
		return []Rank{Ace}, nil
	case "T":
		return []Rank{Ten, Jack, Queen, King}, nil
	}
	if len(code) == 1 && code[0] >= '2' && code[0] <= '9' {
		return []Rank{Rank(code[0] - '0')}, nil
	}
	return nil, fmt.Errorf("%w: unknown strategy code %q", ErrInvalidCard, code)
}
