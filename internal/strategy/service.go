// Package strategy loads basic strategy tables, recommends actions and
// builds training scenarios from them.
package strategy

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrLoad wraps every failure to fetch or parse a strategy table
	ErrLoad = errors.New("strategy load failed")

	// ErrNotLoaded is returned by table-dependent calls before Load succeeds
	ErrNotLoaded = errors.New("strategy table not loaded")

	// ErrNoRecommendation means the table has no entry for the hand and
	// dealer card. It signals incomplete table data, not a bad game state.
	ErrNoRecommendation = errors.New("no strategy recommendation")

	// ErrNoHandTypes is returned when a training filter enables nothing
	ErrNoHandTypes = errors.New("training filter enables no hand types")
)

// Service owns the process-wide strategy table
type Service struct {
	source Source
	logger *log.Logger

	loads singleflight.Group

	mu    sync.RWMutex
	table *Table

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewService creates a strategy service reading from source. rng drives
// scenario generation.
func NewService(source Source, rng *rand.Rand, logger *log.Logger) *Service {
	return &Service{
		source: source,
		rng:    rng,
		logger: logger.WithPrefix("strategy"),
	}
}

// Load fetches and parses the table once. Callers arriving while a fetch
// is in flight wait for it and get the same table or error. After a
// success the cached table is returned without fetching again; after a
// failure the next call fetches afresh.
func (s *Service) Load(ctx context.Context) (*Table, error) {
	if t := s.current(); t != nil {
		return t, nil
	}

	v, err, shared := s.loads.Do("table", func() (any, error) {
		if t := s.current(); t != nil {
			return t, nil
		}

		s.logger.Debug("Fetching strategy table", "source", s.source)
		data, err := s.source.Fetch(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}
		t, err := ParseTable(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoad, err)
		}

		s.mu.Lock()
		s.table = t
		s.mu.Unlock()

		s.logger.Info("Loaded strategy table", "name", t.Name, "source", s.source,
			"hard_rows", len(t.Hard), "soft_rows", len(t.Soft), "pair_rows", len(t.Pairs))
		return t, nil
	})
	if err != nil {
		s.logger.Error("Failed to load strategy table", "source", s.source, "error", err, "shared", shared)
		return nil, err
	}
	return v.(*Table), nil
}

// Loaded reports whether a table is available
func (s *Service) Loaded() bool {
	return s.current() != nil
}

// Table returns the loaded table or ErrNotLoaded
func (s *Service) Table() (*Table, error) {
	t := s.current()
	if t == nil {
		return nil, ErrNotLoaded
	}
	return t, nil
}

func (s *Service) current() *Table {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.table
}

// Recommend returns the action the table prescribes for the hand against
// the dealer up-card. It reports false when no table is loaded or the table
// has no matching entry.
func (s *Service) Recommend(a hand.Analysis, dealerUp deck.Card, canDouble, canSplit bool) (Action, bool) {
	code, ok := s.lookup(a, dealerUp)
	if !ok {
		return "", false
	}
	return code.Resolve(canDouble, canSplit), true
}

func (s *Service) lookup(a hand.Analysis, dealerUp deck.Card) (Code, bool) {
	t := s.current()
	if t == nil {
		return "", false
	}
	return t.Lookup(a, dealerUp.StrategyCode())
}

// Validation is the verdict on a player's decision
type Validation struct {
	Correct       bool
	Found         bool
	CorrectAction Action
	Explanation   string
}

// Validate recomputes the recommended action and compares the player's
// choice against it. When the table has no entry, Found is false and the
// player's own action is echoed back.
func (s *Service) Validate(played Action, a hand.Analysis, dealerUp deck.Card, canDouble, canSplit bool) Validation {
	correct, ok := s.Recommend(a, dealerUp, canDouble, canSplit)
	if !ok {
		return Validation{
			CorrectAction: played,
			Explanation:   "No strategy entry for this hand",
		}
	}

	v := Validation{Found: true, CorrectAction: correct, Correct: played == correct}
	if v.Correct {
		v.Explanation = "Correct! That is the optimal play."
	} else {
		v.Explanation = fmt.Sprintf("The optimal play would be: %s", correct.Title())
	}
	return v
}
