package game

import (
	"context"
	"fmt"

	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/strategy"
)

// StartTraining loads the strategy table, activates training and shows
// the first scenario. Training does not start without a table. A filter
// that yields no scenario leaves training active with no scenario, so the
// filter can still be changed.
func (s *Service) StartTraining(ctx context.Context) error {
	if _, err := s.strategy.Load(ctx); err != nil {
		return err
	}
	s.state.Mode = ModeTraining
	s.training.Active = true
	s.training.Scenario = nil
	s.training.LastAnswer = nil
	if err := s.GenerateNextScenario(); err != nil {
		s.state.Player = []hand.Hand{hand.New(0)}
		s.state.Dealer = hand.New(0)
		s.state.ActiveHand = 0
	}
	return nil
}

// StopTraining deactivates training and clears the scenario
func (s *Service) StopTraining() {
	s.training.Active = false
	s.training.Scenario = nil
	s.training.LastAnswer = nil
}

// UpdateTrainingFilter replaces the hand type filter. It applies from the
// next scenario on.
func (s *Service) UpdateTrainingFilter(f strategy.Filter) {
	s.training.Filter = f
}

// ToggleFilter flips one hand type in the filter
func (s *Service) ToggleFilter(t hand.Type) {
	f := s.training.Filter
	switch t {
	case hand.Hard:
		f.HardHands = !f.HardHands
	case hand.Soft:
		f.SoftHands = !f.SoftHands
	case hand.Pair:
		f.Pairs = !f.Pairs
	}
	s.UpdateTrainingFilter(f)
}

// GenerateNextScenario draws a scenario under the current filter and
// mirrors it into the display hands. On failure the previous scenario
// stays in place.
func (s *Service) GenerateNextScenario() error {
	if !s.training.Active {
		return ErrWrongMode
	}
	sc, err := s.strategy.GenerateScenario(s.training.Filter)
	if err != nil {
		s.logger.Warn("No training scenario", "filter", s.training.Filter, "error", err)
		return err
	}

	s.training.Scenario = &sc
	s.training.LastAnswer = nil

	player := hand.New(0)
	player.Cards = append(player.Cards, sc.PlayerCards...)
	dealer := hand.New(0)
	dealer.Cards = append(dealer.Cards, sc.DealerUpCard)
	s.state.Player = []hand.Hand{player}
	s.state.Dealer = dealer
	s.state.ActiveHand = 0

	s.logger.Debug("Training scenario", "type", sc.HandType, "player", player, "dealer_up", sc.DealerUpCard, "code", sc.Code)
	return nil
}

// SubmitTrainingAnswer scores action against the current scenario,
// updates and persists the stats and sets the feedback message. Each
// scenario takes one answer.
func (s *Service) SubmitTrainingAnswer(ctx context.Context, action strategy.Action) (Answer, error) {
	sc := s.training.Scenario
	if !s.training.Active || sc == nil {
		return Answer{}, ErrNoScenario
	}
	if s.training.LastAnswer != nil {
		return Answer{}, fmt.Errorf("%w: scenario already answered", ErrActionNotAllowed)
	}

	now := s.clock.Now()
	correct := action == sc.CorrectAction
	s.training.Stats = s.training.Stats.Record(sc.HandType, correct, now)
	s.saveStats(ctx)

	answer := Answer{
		WasCorrect:    correct,
		PlayerAction:  action,
		CorrectAction: sc.CorrectAction,
		Explanation:   sc.Explanation,
		AnsweredAt:    now,
	}
	s.training.LastAnswer = &answer

	if correct {
		s.state.Message = "✓ Correct!"
	} else {
		s.state.Message = "✗ Wrong! Correct answer: " + sc.CorrectAction.Title()
	}
	s.state.ShowMessage = true

	s.logger.Debug("Training answer", "type", sc.HandType, "played", action, "correct", sc.CorrectAction,
		"streak", s.training.Stats.Streak)
	return answer, nil
}

// NextTrainingScenario clears the feedback and shows a fresh scenario
func (s *Service) NextTrainingScenario() error {
	s.state.ShowMessage = false
	return s.GenerateNextScenario()
}

// ResetTrainingStats zeroes and persists the training stats
func (s *Service) ResetTrainingStats(ctx context.Context) {
	s.training.Stats = stats.Stats{UpdatedAt: s.clock.Now()}
	s.saveStats(ctx)
	s.logger.Info("Training stats reset")
}
