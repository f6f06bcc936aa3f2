package simulator

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

func newSimulator(cfg Config) *Simulator {
	logger := quietLogger()
	cfg.Logger = logger
	return New(cfg, engine.New(logger), strategy.NewService(strategy.EmbeddedSource{}, randutil.New(1), logger))
}

func TestNewDefaults(t *testing.T) {
	t.Parallel()
	sim := newSimulator(Config{Rounds: 10})
	assert.Positive(t, sim.config.Workers)
	assert.Equal(t, 10.0, sim.config.Bet)
}

func TestRunAccounting(t *testing.T) {
	t.Parallel()
	sim := newSimulator(Config{Rounds: 2000, Workers: 4, Seed: 42, Bet: 10, ReshuffleBelow: 20})

	r, err := sim.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2000, r.Rounds)
	assert.GreaterOrEqual(t, r.Hands, r.Rounds)
	assert.Equal(t, r.Hands, r.Wins+r.Losses+r.Pushes+r.Blackjacks)
	assert.Equal(t, r.Hands-r.Rounds, r.Splits, "each split adds one hand")
	assert.Positive(t, r.Blackjacks)
	assert.Positive(t, r.Doubles)
	assert.GreaterOrEqual(t, r.Wagered, float64(r.Hands)*10)
	assert.InDelta(t, r.Returned-r.Wagered, r.Net(), 1e-9)
}

func TestRunIsReproducible(t *testing.T) {
	t.Parallel()
	cfg := Config{Rounds: 500, Workers: 3, Seed: 7}

	first, err := newSimulator(cfg).Run(context.Background())
	require.NoError(t, err)
	second, err := newSimulator(cfg).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestHouseEdgeIsSmall(t *testing.T) {
	if testing.Short() {
		t.Skip("long simulation")
	}
	t.Parallel()
	sim := newSimulator(Config{Rounds: 100000, Workers: 4, Seed: 2024})

	r, err := sim.Run(context.Background())
	require.NoError(t, err)
	// Basic strategy keeps the edge within a few percent either way
	assert.InDelta(t, 0, r.HouseEdge(), 3.0)
}

func TestRunCancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSimulator(Config{Rounds: 100, Workers: 2}).Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunRejectsZeroRounds(t *testing.T) {
	t.Parallel()
	_, err := newSimulator(Config{}).Run(context.Background())
	assert.Error(t, err)
}

func TestHouseEdge(t *testing.T) {
	t.Parallel()
	assert.Zero(t, Results{}.HouseEdge())
	assert.InDelta(t, 5.0, Results{Wagered: 100, Returned: 95}.HouseEdge(), 1e-9)
	assert.InDelta(t, -2.0, Results{Wagered: 100, Returned: 102}.HouseEdge(), 1e-9)
}

func TestFallbackAction(t *testing.T) {
	t.Parallel()
	h := hand.New(10)
	h.Cards = deck.MustParseCards("10s 6h")
	assert.Equal(t, strategy.Hit, fallbackAction(h))
	h.Cards = deck.MustParseCards("10s 7h")
	assert.Equal(t, strategy.Stand, fallbackAction(h))
}
