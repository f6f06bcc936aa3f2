package strategy

import (
	"fmt"
	rand "math/rand/v2"
	"strconv"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
)

// Hard scenarios are drawn from this range of totals
const (
	minHardScenario = 5
	maxHardScenario = 17
)

// Filter selects which hand types training scenarios may use
type Filter struct {
	HardHands bool `json:"hardHands"`
	SoftHands bool `json:"softHands"`
	Pairs     bool `json:"pairs"`
}

// DefaultFilter enables every hand type
func DefaultFilter() Filter {
	return Filter{HardHands: true, SoftHands: true, Pairs: true}
}

// Types returns the enabled hand types in display order
func (f Filter) Types() []hand.Type {
	var types []hand.Type
	if f.HardHands {
		types = append(types, hand.Hard)
	}
	if f.SoftHands {
		types = append(types, hand.Soft)
	}
	if f.Pairs {
		types = append(types, hand.Pair)
	}
	return types
}

// Scenario is one training question
type Scenario struct {
	PlayerCards   []deck.Card
	DealerUpCard  deck.Card
	HandType      hand.Type
	Analysis      hand.Analysis
	Code          Code
	CorrectAction Action
	Explanation   string
}

// GenerateScenario picks a random enabled hand type, a random dealer
// up-card and a random table row of that type, then builds two concrete
// cards that classify to that row. Doubling is assumed allowed; splitting
// only for pairs.
func (s *Service) GenerateScenario(f Filter) (Scenario, error) {
	t := s.current()
	if t == nil {
		return Scenario{}, ErrNotLoaded
	}
	types := f.Types()
	if len(types) == 0 {
		return Scenario{}, ErrNoHandTypes
	}

	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	rng := s.rng

	handType := types[rng.IntN(len(types))]
	dealerCode := DealerCodes[rng.IntN(len(DealerCodes))]

	var (
		cards    []deck.Card
		row      Row
		canSplit bool
		err      error
	)
	switch handType {
	case hand.Hard:
		var totals []int
		for _, total := range t.HardTotals() {
			if total >= minHardScenario && total <= maxHardScenario {
				totals = append(totals, total)
			}
		}
		if len(totals) == 0 {
			return Scenario{}, fmt.Errorf("%w: no hard rows between %d and %d", ErrNoRecommendation, minHardScenario, maxHardScenario)
		}
		total := totals[rng.IntN(len(totals))]
		row = t.Hard[total]
		cards, err = hardHand(rng, total)

	case hand.Soft:
		keys := t.SoftKeys()
		if len(keys) == 0 {
			return Scenario{}, fmt.Errorf("%w: no soft rows", ErrNoRecommendation)
		}
		key := keys[rng.IntN(len(keys))]
		row = t.Soft[key]
		cards, err = softHand(rng, key[1:])

	case hand.Pair:
		keys := t.PairKeys()
		if len(keys) == 0 {
			return Scenario{}, fmt.Errorf("%w: no pair rows", ErrNoRecommendation)
		}
		key := keys[rng.IntN(len(keys))]
		row = t.Pairs[key]
		cards, err = pairHand(rng, key)
		canSplit = true
	}
	if err != nil {
		return Scenario{}, err
	}

	code, ok := row[dealerCode]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s hand against %s", ErrNoRecommendation, handType, dealerCode)
	}
	up, err := cardForCode(rng, dealerCode)
	if err != nil {
		return Scenario{}, err
	}

	return Scenario{
		PlayerCards:   cards,
		DealerUpCard:  up,
		HandType:      handType,
		Analysis:      hand.Analyze(cards),
		Code:          code,
		CorrectAction: code.Resolve(true, canSplit),
		Explanation:   ExplanationFor(code),
	}, nil
}

// hardHand builds two non-pair, ace-free cards totalling total. Totals up
// to 11 use (total-2)+2; higher totals use a ten-valued card plus the rest.
func hardHand(rng *rand.Rand, total int) ([]deck.Card, error) {
	var first, second string
	if total <= 11 {
		first, second = strconv.Itoa(total-2), "2"
	} else {
		first, second = "T", strconv.Itoa(total-10)
	}
	a, err := cardForCode(rng, first)
	if err != nil {
		return nil, fmt.Errorf("hard %d: %w", total, err)
	}
	b, err := cardForCode(rng, second)
	if err != nil {
		return nil, fmt.Errorf("hard %d: %w", total, err)
	}
	return []deck.Card{a, b}, nil
}

func softHand(rng *rand.Rand, otherCode string) ([]deck.Card, error) {
	other, err := cardForCode(rng, otherCode)
	if err != nil {
		return nil, fmt.Errorf("soft A%s: %w", otherCode, err)
	}
	return []deck.Card{deck.NewCard(randomSuit(rng), deck.Ace), other}, nil
}

// pairHand returns two cards of the same rank in different suits
func pairHand(rng *rand.Rand, code string) ([]deck.Card, error) {
	ranks, err := deck.RankForCode(code)
	if err != nil {
		return nil, fmt.Errorf("pair %s: %w", code, err)
	}
	rank := ranks[rng.IntN(len(ranks))]
	suits := rng.Perm(len(deck.AllSuits))
	return []deck.Card{
		deck.NewCard(deck.AllSuits[suits[0]], rank),
		deck.NewCard(deck.AllSuits[suits[1]], rank),
	}, nil
}

func cardForCode(rng *rand.Rand, code string) (deck.Card, error) {
	ranks, err := deck.RankForCode(code)
	if err != nil {
		return deck.Card{}, err
	}
	return deck.NewCard(randomSuit(rng), ranks[rng.IntN(len(ranks))]), nil
}

func randomSuit(rng *rand.Rand) deck.Suit {
	return deck.AllSuits[rng.IntN(len(deck.AllSuits))]
}
