package tui

import (
	"context"
	"errors"
	"io"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestModel(t *testing.T) (*Model, *stats.MemoryStore) {
	t.Helper()
	logger := log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	ctx := context.Background()
	strat := strategy.NewService(strategy.EmbeddedSource{}, randutil.New(3), logger)
	store := &stats.MemoryStore{}
	svc := game.New(ctx, engine.New(logger), strat, store,
		game.WithLogger(logger), game.WithRand(randutil.New(5)))
	return New(ctx, svc, strat, logger), store
}

func lastLog(m *Model) string {
	if len(m.gameLog) == 0 {
		return ""
	}
	return m.gameLog[len(m.gameLog)-1]
}

// enterTraining runs the train command through its async load
func enterTraining(t *testing.T, m *Model) {
	t.Helper()
	cmd := m.execute("train")
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	m.Update(cmd())
	require.False(t, m.loading)
	require.Equal(t, game.ModeTraining, m.game.Snapshot().Mode)
}

func TestBetCommandDeals(t *testing.T) {
	t.Parallel()
	for _, line := range []string{"bet 25", "25"} {
		m, _ := newTestModel(t)
		assert.Nil(t, m.execute(line))

		s := m.game.Snapshot()
		assert.Equal(t, 1, s.RoundNumber, line)
		assert.Equal(t, 25.0, s.CurrentBet, line)
		assert.Contains(t, []game.Phase{game.PhasePlayerTurn, game.PhaseGameOver}, s.Phase, line)
	}
}

func TestBareBetUsesMinimum(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.execute("bet")

	s := m.game.Snapshot()
	assert.Equal(t, 1, s.RoundNumber)
	assert.Equal(t, m.game.Rules().MinBet, s.CurrentBet)
}

func TestHintBeforeTraining(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.execute("bet 10")
	if m.game.Snapshot().Phase != game.PhasePlayerTurn {
		t.Skip("dealt a natural")
	}
	m.execute("hint")
	assert.Contains(t, lastLog(m), "Basic strategy says:")
}

func TestTrainWithEveryFilterOff(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	enterTraining(t, m)
	m.execute("filter hard")
	m.execute("filter soft")
	m.execute("filter pair")
	m.execute("play")

	enterTraining(t, m)
	assert.Contains(t, lastLog(m), "No hand types enabled")
	assert.True(t, m.game.Training().Active)

	m.execute("filter pair")
	m.execute("next")
	sc := m.game.Training().Scenario
	require.NotNil(t, sc)
	assert.Equal(t, hand.Pair, sc.HandType)
}

func TestInvalidBetIsReported(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.execute("bet 5000")

	assert.Contains(t, lastLog(m), "invalid bet")
	assert.Equal(t, game.PhaseBetting, m.game.Snapshot().Phase)
	assert.Equal(t, 1000.0, m.game.Snapshot().Bankroll)
}

func TestUnknownCommand(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.execute("fold")
	assert.Contains(t, lastLog(m), `unknown command "fold"`)
}

func TestPlayActionsOutsideRound(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.execute("h")
	assert.Contains(t, lastLog(m), "action not allowed")
}

func TestPlayRoundToCompletion(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.execute("bet 10")
	for i := 0; i < 10 && m.game.Snapshot().Phase == game.PhasePlayerTurn; i++ {
		m.execute("s")
	}
	s := m.game.Snapshot()
	require.Equal(t, game.PhaseGameOver, s.Phase)
	assert.Contains(t, lastLog(m), "Round 1:")

	// Betting again from game over starts the next round
	m.execute("10")
	assert.Equal(t, 2, m.game.Snapshot().RoundNumber)
}

func TestTrainCommandSwitchesMode(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	enterTraining(t, m)

	assert.NotNil(t, m.game.Training().Scenario)
	assert.Contains(t, lastLog(m), "Training mode")

	m.execute("play")
	assert.Equal(t, game.ModePlay, m.game.Snapshot().Mode)
}

func TestTrainingAnswer(t *testing.T) {
	t.Parallel()
	m, store := newTestModel(t)
	enterTraining(t, m)

	sc := m.game.Training().Scenario
	m.execute(string(sc.CorrectAction))

	st := m.game.Training().Stats
	assert.Equal(t, 1, st.TotalAttempts)
	assert.Equal(t, 1, st.CorrectAttempts)
	assert.Contains(t, lastLog(m), "Correct!")
	assert.Equal(t, 1, store.Saves())

	m.execute("p")
	assert.Contains(t, lastLog(m), "action not allowed")

	m.execute("")
	assert.Nil(t, m.game.Training().LastAnswer)
}

func TestTrainingFilterCommand(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	enterTraining(t, m)

	m.execute("filter soft")
	assert.Equal(t, strategy.Filter{HardHands: true, Pairs: true}, m.game.Training().Filter)
	assert.Contains(t, lastLog(m), "hard, pair")

	m.execute("filter pairs")
	m.execute("filter hard")
	assert.Contains(t, lastLog(m), "none")

	m.execute("filter aces")
	assert.Contains(t, lastLog(m), "unknown hand type")
}

func TestFailedTableLoadStaysInPlay(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.loading = true
	m.Update(tableLoadedMsg{err: errors.New("offline")})

	assert.False(t, m.loading)
	assert.Equal(t, game.ModePlay, m.game.Snapshot().Mode)
	assert.Contains(t, lastLog(m), "offline")
}

func TestEnterKeyExecutesInput(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	m.input.SetValue("bet 50")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Empty(t, m.input.Value())
	assert.Equal(t, 50.0, m.game.Snapshot().CurrentBet)
}

func TestQuit(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	cmd := m.execute("quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, m.View())
}

func TestView(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t)
	assert.Equal(t, "Loading...", m.View())

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	view := m.View()
	assert.Contains(t, view, "Bankroll")
	assert.Contains(t, view, "Dealer:")
	assert.Contains(t, view, "play mode")
}
