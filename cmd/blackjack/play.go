package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/lox/blackjack/internal/tui"
)

var titleStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#1B5E20")).
	Padding(0, 1).
	Bold(true)

// PlayCmd starts the TUI at the betting phase
type PlayCmd struct{}

func (c *PlayCmd) Run(g *Globals) error {
	return runTUI(g, game.ModePlay, strategy.Filter{})
}

// TrainCmd starts the TUI in training mode
type TrainCmd struct {
	Hard bool `help:"Only drill hard totals"`
	Soft bool `help:"Only drill soft totals"`
	Pair bool `help:"Only drill pairs"`
}

func (c *TrainCmd) Run(g *Globals) error {
	return runTUI(g, game.ModeTraining, strategy.Filter{HardHands: c.Hard, SoftHands: c.Soft, Pairs: c.Pair})
}

func runTUI(g *Globals, mode game.Mode, filter strategy.Filter) error {
	a, err := newApp(g, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	svc, err := a.newGame(ctx)
	if err != nil {
		return err
	}
	if filter != (strategy.Filter{}) {
		svc.UpdateTrainingFilter(filter)
	}
	if mode == game.ModeTraining {
		if err := svc.SetMode(ctx, game.ModeTraining); err != nil {
			return fmt.Errorf("start training: %w", err)
		}
	}

	a.logger.Info("Starting TUI", "mode", mode, "bankroll", svc.Rules().Bankroll)
	model := tui.New(ctx, svc, a.strategy, a.logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}

	st := svc.Training().Stats
	fmt.Println(titleStyle.Render(" ♠ ♥ Blackjack ♦ ♣ "))
	fmt.Printf("Bankroll: $%.2f after %d rounds\n", svc.Snapshot().Bankroll, svc.Snapshot().RoundNumber)
	if st.TotalAttempts > 0 {
		fmt.Printf("Training: %d/%d correct (%d%%), best streak %d\n",
			st.CorrectAttempts, st.TotalAttempts, svc.SuccessRate(), st.BestStreak)
	}
	return nil
}
