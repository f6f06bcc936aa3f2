package game

import (
	"errors"
	"slices"
	"time"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/strategy"
)

var (
	// ErrInvalidBet is returned for a bet outside the table limits or
	// above the bankroll
	ErrInvalidBet = errors.New("invalid bet")

	// ErrActionNotAllowed is returned when a command's gating predicate
	// is false for the current state
	ErrActionNotAllowed = errors.New("action not allowed")

	// ErrWrongMode is returned for a play command in training mode or the
	// reverse
	ErrWrongMode = errors.New("command not available in this mode")

	// ErrNoScenario is returned when answering without a current scenario
	ErrNoScenario = errors.New("no training scenario")
)

// Phase is a step of a play-mode round
type Phase string

const (
	PhaseBetting    Phase = "betting"
	PhaseDealing    Phase = "dealing"
	PhasePlayerTurn Phase = "player-turn"
	PhaseDealerTurn Phase = "dealer-turn"
	PhaseSettlement Phase = "settlement"
	PhaseGameOver   Phase = "game-over"
)

// Mode selects between playing rounds and strategy drills
type Mode string

const (
	ModePlay     Mode = "play"
	ModeTraining Mode = "training"
)

// Rules are the table limits and shoe thresholds
type Rules struct {
	Bankroll         float64
	MinBet           float64
	MaxBet           float64
	Chips            []int
	ShoeRefreshBelow int
	ReshuffleBelow   int
}

// DefaultRules returns the standard table
func DefaultRules() Rules {
	return Rules{
		Bankroll:         1000,
		MinBet:           10,
		MaxBet:           500,
		Chips:            []int{10, 25, 50, 100, 500},
		ShoeRefreshBelow: 52,
		ReshuffleBelow:   20,
	}
}

// State is a snapshot of the round. Snapshots share nothing with the
// service and can be kept or modified freely.
type State struct {
	RoundID     string
	Mode        Mode
	Phase       Phase
	Deck        deck.Deck
	Dealer      hand.Hand
	Player      []hand.Hand
	ActiveHand  int
	Bankroll    float64
	CurrentBet  float64
	Results     []engine.Result
	RoundNumber int
	Message     string
	ShowMessage bool
}

// ActivePlayerHand returns the hand currently being played
func (s State) ActivePlayerHand() hand.Hand {
	if s.ActiveHand < 0 || s.ActiveHand >= len(s.Player) {
		return hand.Hand{}
	}
	return s.Player[s.ActiveHand]
}

// DealerUpCard returns the dealer's first face-up card
func (s State) DealerUpCard() (deck.Card, bool) {
	return s.Dealer.UpCard()
}

func (s State) clone() State {
	out := s
	out.Deck = s.Deck.Clone()
	out.Dealer = s.Dealer.Clone()
	out.Player = make([]hand.Hand, len(s.Player))
	for i, h := range s.Player {
		out.Player[i] = h.Clone()
	}
	out.Results = slices.Clone(s.Results)
	return out
}

// Answer is the verdict on one training answer
type Answer struct {
	WasCorrect    bool
	PlayerAction  strategy.Action
	CorrectAction strategy.Action
	Explanation   string
	AnsweredAt    time.Time
}

// TrainingState is a snapshot of the training session
type TrainingState struct {
	Active     bool
	Scenario   *strategy.Scenario
	Filter     strategy.Filter
	Stats      stats.Stats
	LastAnswer *Answer
}

func (t TrainingState) clone() TrainingState {
	out := t
	if t.Scenario != nil {
		sc := *t.Scenario
		sc.PlayerCards = slices.Clone(t.Scenario.PlayerCards)
		out.Scenario = &sc
	}
	if t.LastAnswer != nil {
		a := *t.LastAnswer
		out.LastAnswer = &a
	}
	return out
}
