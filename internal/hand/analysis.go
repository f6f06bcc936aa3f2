package hand

import "github.com/lox/blackjack/internal/deck"

// Type is the strategy classification of a hand
type Type string

const (
	Hard Type = "hard"
	Soft Type = "soft"
	Pair Type = "pair"
)

// AllTypes lists the classifications in display order
var AllTypes = []Type{Hard, Soft, Pair}

// Analysis classifies a hand for strategy lookup. PairRank is set only for
// pairs and SoftCard only for soft hands; both hold strategy codes.
type Analysis struct {
	Type     Type
	Value    int
	PairRank string
	SoftCard string
}

// SoftKey returns the soft table key such as "A7"
func (a Analysis) SoftKey() string {
	if a.SoftCard == "" {
		return ""
	}
	return "A" + a.SoftCard
}

// Analyze classifies the visible cards. A two-card hand whose strategy
// codes match is a pair; a two-card hand with an ace counted as 11 is soft
// and keyed by the other card; anything else is hard, valued at its best
// total. Fewer than two visible cards gives a zero hard analysis.
func Analyze(cards []deck.Card) Analysis {
	visible := make([]deck.Card, 0, len(cards))
	for _, c := range cards {
		if c.FaceUp {
			visible = append(visible, c)
		}
	}
	if len(visible) < 2 {
		return Analysis{Type: Hard}
	}

	v := Evaluate(visible)

	if len(visible) == 2 {
		first, second := visible[0].StrategyCode(), visible[1].StrategyCode()
		if first == second {
			return Analysis{Type: Pair, Value: v.Soft, PairRank: first}
		}

		if v.IsSoft {
			other := visible[0]
			if other.IsAce() {
				other = visible[1]
			}
			return Analysis{Type: Soft, Value: v.Soft, SoftCard: other.StrategyCode()}
		}
	}

	return Analysis{Type: Hard, Value: v.Best()}
}
