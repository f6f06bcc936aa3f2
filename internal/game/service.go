// Package game owns the authoritative blackjack round and training state.
//
// A Service is driven one command at a time. It is not safe for concurrent
// use: the presentation layer serialises user input and reads state
// through Snapshot and Training, which return independent copies.
package game

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/strategy"
)

// Service runs play rounds and training drills
type Service struct {
	engine   *engine.Engine
	strategy *strategy.Service
	store    stats.Store
	logger   *log.Logger
	clock    quartz.Clock
	rng      *rand.Rand
	rules    Rules

	state    State
	training TrainingState
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the logger
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithClock sets the clock used for answer and stats timestamps
func WithClock(clock quartz.Clock) Option {
	return func(s *Service) { s.clock = clock }
}

// WithRand sets the RNG used to shuffle shoes
func WithRand(rng *rand.Rand) Option {
	return func(s *Service) { s.rng = rng }
}

// WithRules overrides the table rules
func WithRules(r Rules) Option {
	return func(s *Service) { s.rules = r }
}

// New creates a service in play mode at the betting phase and loads the
// persisted training stats. Absent or unreadable stats start from zero.
func New(ctx context.Context, eng *engine.Engine, strat *strategy.Service, store stats.Store, opts ...Option) *Service {
	s := &Service{
		engine:   eng,
		strategy: strat,
		store:    store,
		logger:   log.Default(),
		clock:    quartz.NewReal(),
		rules:    DefaultRules(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		s.rng = randutil.New(randutil.NewSeed())
	}
	s.logger = s.logger.WithPrefix("game")

	s.state = State{
		Mode:       ModePlay,
		Bankroll:   s.rules.Bankroll,
		CurrentBet: s.rules.MinBet,
		Player:     []hand.Hand{hand.New(0)},
	}
	s.training = TrainingState{
		Filter: strategy.DefaultFilter(),
		Stats:  s.loadStats(ctx),
	}
	s.resetRound()
	return s
}

func (s *Service) loadStats(ctx context.Context) stats.Stats {
	if s.store == nil {
		return stats.Stats{}
	}
	st, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, stats.ErrNotFound):
		return stats.Stats{}
	case err != nil:
		s.logger.Warn("Ignoring unreadable training stats", "error", err)
		return stats.Stats{}
	}
	s.logger.Debug("Loaded training stats", "attempts", st.TotalAttempts, "best_streak", st.BestStreak)
	return st
}

func (s *Service) saveStats(ctx context.Context) {
	if s.store == nil {
		return
	}
	if err := s.store.Save(ctx, s.training.Stats); err != nil {
		s.logger.Warn("Failed to save training stats", "error", err)
	}
}

// Rules returns the table rules
func (s *Service) Rules() Rules {
	return s.rules
}

// Snapshot returns a copy of the round state
func (s *Service) Snapshot() State {
	return s.state.clone()
}

// Training returns a copy of the training state
func (s *Service) Training() TrainingState {
	return s.training.clone()
}

// SuccessRate is the rounded share of correct training answers
func (s *Service) SuccessRate() int {
	return s.training.Stats.SuccessRate()
}

// SetMode switches between play and training. Entering training loads
// the strategy table first; on failure the mode is left unchanged. It is
// refused while a staked round is being played.
func (s *Service) SetMode(ctx context.Context, mode Mode) error {
	if s.state.Mode == ModePlay && s.state.Phase == PhasePlayerTurn {
		return fmt.Errorf("%w: round in progress", ErrActionNotAllowed)
	}
	switch mode {
	case ModeTraining:
		prev := s.state.Mode
		s.state.Mode = ModeTraining
		if err := s.StartTraining(ctx); err != nil {
			s.state.Mode = prev
			s.training.Active = false
			return err
		}
	case ModePlay:
		s.StopTraining()
		s.state.Mode = ModePlay
		s.resetRound()
	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
	s.logger.Info("Mode changed", "mode", mode)
	return nil
}

// NewRound clears the table for the next bet, replacing the shoe when it
// runs low. It is refused while hands are still being played.
func (s *Service) NewRound() error {
	if s.state.Mode != ModePlay {
		return ErrWrongMode
	}
	if s.state.Phase == PhasePlayerTurn {
		return fmt.Errorf("%w: round in progress", ErrActionNotAllowed)
	}
	s.resetRound()
	return nil
}

func (s *Service) resetRound() {
	if s.state.Deck == nil || s.state.Deck.Remaining() < s.rules.ShoeRefreshBelow {
		s.state.Deck = s.engine.NewShoe(s.rng)
	}
	s.state.RoundID = uuid.NewString()
	s.state.Phase = PhaseBetting
	s.state.Dealer = hand.New(0)
	s.state.Player = []hand.Hand{hand.New(0)}
	s.state.ActiveHand = 0
	s.state.Results = nil
	s.state.Message = ""
	s.state.ShowMessage = false
}

// PlaceBet stakes amount and deals. A natural blackjack settles at once.
func (s *Service) PlaceBet(amount float64) error {
	if s.state.Mode != ModePlay {
		return ErrWrongMode
	}
	if s.state.Phase != PhaseBetting {
		return fmt.Errorf("%w: not accepting bets in %s", ErrActionNotAllowed, s.state.Phase)
	}
	if amount < s.rules.MinBet || amount > s.rules.MaxBet {
		return fmt.Errorf("%w: %v outside %v-%v", ErrInvalidBet, amount, s.rules.MinBet, s.rules.MaxBet)
	}
	if amount > s.state.Bankroll {
		return fmt.Errorf("%w: %v exceeds bankroll %v", ErrInvalidBet, amount, s.state.Bankroll)
	}

	s.state.CurrentBet = amount
	s.state.Bankroll -= amount
	s.state.RoundNumber++
	s.logger.Debug("Bet placed", "round", s.state.RoundID, "amount", amount, "bankroll", s.state.Bankroll)

	if err := s.deal(); err != nil {
		s.state.Bankroll += amount
		s.state.RoundNumber--
		s.state.Phase = PhaseBetting
		return err
	}
	return nil
}

func (s *Service) deal() error {
	s.state.Phase = PhaseDealing
	if s.state.Deck.Remaining() < s.rules.ReshuffleBelow {
		s.state.Deck = s.engine.NewShoe(s.rng)
	}

	d, err := s.engine.DealInitialCards(s.state.Deck)
	if err != nil {
		return err
	}
	player := d.Player
	player.Bet = s.state.CurrentBet
	s.state.Deck = d.Deck
	s.state.Dealer = d.Dealer
	s.state.Player = []hand.Hand{player}
	s.state.ActiveHand = 0

	if player.Value().Blackjack {
		// Reveal without drawing so a dealer natural pushes
		s.state.Dealer = s.state.Dealer.Reveal()
		s.settle()
		return nil
	}
	s.state.Phase = PhasePlayerTurn
	return nil
}

func (s *Service) activeOpen() bool {
	if s.state.Mode != ModePlay || s.state.Phase != PhasePlayerTurn {
		return false
	}
	return !s.state.ActivePlayerHand().Closed()
}

// CanHit reports whether the active hand may draw
func (s *Service) CanHit() bool {
	return s.activeOpen()
}

// CanStand reports whether the active hand may stand
func (s *Service) CanStand() bool {
	return s.activeOpen()
}

// CanDouble reports whether the active hand may double down
func (s *Service) CanDouble() bool {
	return s.activeOpen() && s.engine.CanDouble(s.state.ActivePlayerHand(), s.state.Bankroll)
}

// CanSplit reports whether the active hand may split
func (s *Service) CanSplit() bool {
	return s.activeOpen() && s.engine.CanSplit(s.state.ActivePlayerHand(), s.state.Bankroll)
}

// Hit draws a card to the active hand
func (s *Service) Hit() error {
	if !s.CanHit() {
		return fmt.Errorf("%w: hit", ErrActionNotAllowed)
	}
	i := s.state.ActiveHand
	h, d, err := s.engine.Hit(s.state.Player[i], s.state.Deck)
	if err != nil {
		return err
	}
	s.state.Player[i] = h
	s.state.Deck = d
	if h.Closed() {
		return s.nextHand()
	}
	return nil
}

// Stand ends play on the active hand
func (s *Service) Stand() error {
	if !s.CanStand() {
		return fmt.Errorf("%w: stand", ErrActionNotAllowed)
	}
	i := s.state.ActiveHand
	s.state.Player[i] = s.engine.Stand(s.state.Player[i])
	return s.nextHand()
}

// Double charges a second stake, draws one card and stands
func (s *Service) Double() error {
	if !s.CanDouble() {
		return fmt.Errorf("%w: %w", ErrActionNotAllowed, engine.ErrInvalidDouble)
	}
	i := s.state.ActiveHand
	bet := s.state.Player[i].Bet
	h, d, err := s.engine.DoubleDown(s.state.Player[i], s.state.Deck)
	if err != nil {
		return err
	}
	s.state.Bankroll -= bet
	s.state.Player[i] = h
	s.state.Deck = d
	return s.nextHand()
}

// Split charges a second stake and replaces the active hand with two.
// Play continues on the first of them.
func (s *Service) Split() error {
	if !s.CanSplit() {
		return fmt.Errorf("%w: %w", ErrActionNotAllowed, engine.ErrInvalidSplit)
	}
	i := s.state.ActiveHand
	bet := s.state.Player[i].Bet
	hands, d, err := s.engine.Split(s.state.Player[i], s.state.Deck)
	if err != nil {
		return err
	}
	s.state.Bankroll -= bet
	s.state.Deck = d

	player := make([]hand.Hand, 0, len(s.state.Player)+1)
	player = append(player, s.state.Player[:i]...)
	player = append(player, hands[0], hands[1])
	player = append(player, s.state.Player[i+1:]...)
	s.state.Player = player
	return nil
}

// Hint returns the strategy table's action for the active hand, loading
// the table on first use
func (s *Service) Hint(ctx context.Context) (strategy.Action, bool) {
	if !s.activeOpen() {
		return "", false
	}
	if _, err := s.strategy.Load(ctx); err != nil {
		s.logger.Warn("No hint without a strategy table", "error", err)
		return "", false
	}
	up, ok := s.state.DealerUpCard()
	if !ok {
		return "", false
	}
	a := hand.Analyze(s.state.ActivePlayerHand().Cards)
	return s.strategy.Recommend(a, up, s.CanDouble(), s.CanSplit())
}

func (s *Service) nextHand() error {
	if next := s.state.ActiveHand + 1; next < len(s.state.Player) {
		s.state.ActiveHand = next
		return nil
	}
	return s.dealerTurn()
}

func (s *Service) dealerTurn() error {
	s.state.Phase = PhaseDealerTurn

	allBusted := true
	for _, h := range s.state.Player {
		if !h.Busted {
			allBusted = false
			break
		}
	}

	if allBusted {
		s.state.Dealer = s.state.Dealer.Reveal().Stand()
	} else {
		dealer, d, err := s.engine.PlayDealerTurn(s.state.Dealer, s.state.Deck)
		if err != nil {
			return err
		}
		s.state.Dealer = dealer
		s.state.Deck = d
	}
	s.settle()
	return nil
}

func (s *Service) settle() {
	s.state.Phase = PhaseSettlement

	results := make([]engine.Result, 0, len(s.state.Player))
	wins := 0
	var paid float64
	for _, h := range s.state.Player {
		r := s.engine.DetermineWinner(h, s.state.Dealer)
		s.state.Bankroll += r.Payout
		paid += r.Payout
		if r.Outcome.IsWin() {
			wins++
		}
		results = append(results, r)
	}
	s.state.Results = results
	s.state.Phase = PhaseGameOver

	if len(results) == 1 {
		s.state.Message = results[0].Message
	} else {
		s.state.Message = fmt.Sprintf("%d of %d hands won", wins, len(results))
	}
	s.state.ShowMessage = true

	s.logger.Info("Round settled",
		"round", s.state.RoundID,
		"number", s.state.RoundNumber,
		"hands", len(results),
		"won", wins,
		"paid", paid,
		"bankroll", s.state.Bankroll)
}

// ResetBankroll restores the starting bankroll
func (s *Service) ResetBankroll() {
	s.state.Bankroll = s.rules.Bankroll
}

// HideMessage dismisses the current message
func (s *Service) HideMessage() {
	s.state.ShowMessage = false
}

// DealerUpCard is a convenience for presentation code
func (s *Service) DealerUpCard() (deck.Card, bool) {
	return s.state.DealerUpCard()
}
