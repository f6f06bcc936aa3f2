package main

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/lox/blackjack/internal/config"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/stats"
	"github.com/lox/blackjack/internal/stats/sqlite"
	"github.com/lox/blackjack/internal/strategy"
)

// app holds everything a command needs, built from config and flags
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	seed     int64
	engine   *engine.Engine
	strategy *strategy.Service
	closers  []io.Closer
}

// newApp loads the config and builds the shared services. When tui is
// set, logs go to the configured file (or are discarded) so they do not
// tear the screen.
func newApp(g *Globals, tui bool) (*app, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	if err := a.setupLogger(g.Debug, tui); err != nil {
		return nil, err
	}

	if g.Seed != nil {
		a.seed = *g.Seed
		a.logger.Info("Using deterministic seed", "seed", a.seed)
	} else {
		a.seed = randutil.NewSeed()
		a.logger.Debug("Using random seed", "seed", a.seed)
	}

	a.engine = engine.New(a.logger, engine.WithDeckCount(cfg.Rules.Decks))
	client := &http.Client{Timeout: cfg.Strategy.Timeout()}
	a.strategy = strategy.NewService(strategy.NewSource(cfg.Strategy.Source, client), a.rng(1), a.logger)
	return a, nil
}

func (a *app) setupLogger(debug, tui bool) error {
	level, err := log.ParseLevel(a.cfg.Log.Level)
	if err != nil {
		return err
	}
	if debug {
		level = log.DebugLevel
	}

	var out io.Writer = os.Stderr
	switch {
	case a.cfg.Log.File != "":
		f, err := os.OpenFile(a.cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f)
		out = f
	case tui:
		out = io.Discard
	}

	a.logger = log.NewWithOptions(out, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Level:           level,
	})
	return nil
}

// rng derives an independent stream from the run seed
func (a *app) rng(stream int) *rand.Rand {
	return randutil.Derive(a.seed, stream)
}

func (a *app) rules() game.Rules {
	r := a.cfg.Rules
	return game.Rules{
		Bankroll:         r.Bankroll,
		MinBet:           r.MinBet,
		MaxBet:           r.MaxBet,
		Chips:            r.Chips,
		ShoeRefreshBelow: r.ShoeRefreshBelow,
		ReshuffleBelow:   r.ReshuffleBelow,
	}
}

// openStore opens the configured training stats backend
func (a *app) openStore(ctx context.Context, clock quartz.Clock) (stats.Store, error) {
	switch a.cfg.Stats.Backend {
	case config.BackendMemory:
		return &stats.MemoryStore{}, nil
	case config.BackendSQLite:
		s, err := sqlite.Open(ctx, a.cfg.Stats.Path, clock)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, s)
		return s, nil
	default:
		return stats.NewFileStore(a.cfg.Stats.Path), nil
	}
}

// newGame builds the round and training state machine
func (a *app) newGame(ctx context.Context) (*game.Service, error) {
	clock := quartz.NewReal()
	store, err := a.openStore(ctx, clock)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("Opened stats store", "backend", a.cfg.Stats.Backend, "path", a.cfg.Stats.Path)
	return game.New(ctx, a.engine, a.strategy, store,
		game.WithLogger(a.logger),
		game.WithClock(clock),
		game.WithRand(a.rng(2)),
		game.WithRules(a.rules()),
	), nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Error("Failed to close", "error", err)
		}
	}
}

// signalContext is cancelled on interrupt or terminate
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
