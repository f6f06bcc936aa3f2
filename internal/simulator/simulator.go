// Package simulator measures the basic strategy table by playing many
// rounds with it as an autoplayer.
package simulator

import (
	"context"
	"fmt"
	"io"
	rand "math/rand/v2"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/randutil"
	"github.com/lox/blackjack/internal/strategy"
	"golang.org/x/sync/errgroup"
)

// minRoundCards covers a round with several splits
const minRoundCards = 30

// Config holds configuration for running simulations
type Config struct {
	Rounds         int
	Workers        int
	Seed           int64
	Bet            float64
	ReshuffleBelow int
	Logger         *log.Logger
}

// Results aggregates every settled hand
type Results struct {
	Rounds     int
	Hands      int
	Wins       int
	Losses     int
	Pushes     int
	Blackjacks int
	Doubles    int
	Splits     int
	NoEntry    int // decisions the table had no entry for
	Wagered    float64
	Returned   float64
}

// Net is the player's result across all rounds
func (r Results) Net() float64 {
	return r.Returned - r.Wagered
}

// HouseEdge is the house's expected gain as a percentage of money wagered
func (r Results) HouseEdge() float64 {
	if r.Wagered == 0 {
		return 0
	}
	return -r.Net() / r.Wagered * 100
}

func (r *Results) merge(o Results) {
	r.Rounds += o.Rounds
	r.Hands += o.Hands
	r.Wins += o.Wins
	r.Losses += o.Losses
	r.Pushes += o.Pushes
	r.Blackjacks += o.Blackjacks
	r.Doubles += o.Doubles
	r.Splits += o.Splits
	r.NoEntry += o.NoEntry
	r.Wagered += o.Wagered
	r.Returned += o.Returned
}

// Simulator plays rounds with the strategy table deciding every action
type Simulator struct {
	config   Config
	engine   *engine.Engine
	strategy *strategy.Service
	logger   *log.Logger
}

// New creates a new simulator with the given configuration
func New(config Config, eng *engine.Engine, strat *strategy.Service) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.Bet <= 0 {
		config.Bet = 10
	}
	logger := config.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Simulator{
		config:   config,
		engine:   eng,
		strategy: strat,
		logger:   logger.WithPrefix("simulator"),
	}
}

// Run loads the table and splits the rounds across workers. Each worker
// has its own shoe seeded from Seed and its index, so results are
// reproducible for a given seed and worker count.
func (s *Simulator) Run(ctx context.Context) (Results, error) {
	if _, err := s.strategy.Load(ctx); err != nil {
		return Results{}, err
	}
	if s.config.Rounds <= 0 {
		return Results{}, fmt.Errorf("rounds must be positive: %d", s.config.Rounds)
	}

	workers := min(s.config.Workers, s.config.Rounds)
	perWorker := s.config.Rounds / workers
	remainder := s.config.Rounds % workers

	g, ctx := errgroup.WithContext(ctx)
	partials := make([]Results, workers)
	for w := 0; w < workers; w++ {
		rounds := perWorker
		if w < remainder {
			rounds++
		}
		g.Go(func() error {
			rng := randutil.Derive(s.config.Seed, w)
			r, err := s.runWorker(ctx, rng, rounds)
			if err != nil {
				return fmt.Errorf("worker %d: %w", w, err)
			}
			partials[w] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Results{}, err
	}

	var total Results
	for _, p := range partials {
		total.merge(p)
	}
	s.logger.Info("Simulation finished",
		"rounds", total.Rounds,
		"hands", total.Hands,
		"workers", workers,
		"seed", s.config.Seed,
		"house_edge", fmt.Sprintf("%.3f%%", total.HouseEdge()))
	return total, nil
}

func (s *Simulator) runWorker(ctx context.Context, rng *rand.Rand, rounds int) (Results, error) {
	var r Results
	shoe := s.engine.NewShoe(rng)
	for i := 0; i < rounds; i++ {
		if err := ctx.Err(); err != nil {
			return r, err
		}
		if shoe.Remaining() < max(s.config.ReshuffleBelow, minRoundCards) {
			shoe = s.engine.NewShoe(rng)
		}
		var err error
		if shoe, err = s.playRound(shoe, &r); err != nil {
			return r, err
		}
	}
	return r, nil
}

func (s *Simulator) playRound(shoe deck.Deck, r *Results) (deck.Deck, error) {
	deal, err := s.engine.DealInitialCards(shoe)
	if err != nil {
		return shoe, err
	}
	shoe = deal.Deck
	r.Rounds++

	player := deal.Player
	player.Bet = s.config.Bet
	dealer := deal.Dealer
	up, _ := dealer.UpCard()

	var hands []hand.Hand
	if player.Value().Blackjack {
		dealer = dealer.Reveal()
		hands = []hand.Hand{player}
	} else {
		hands, shoe, err = s.playHands(player, up, shoe, r)
		if err != nil {
			return shoe, err
		}
		allBusted := true
		for _, h := range hands {
			allBusted = allBusted && h.Busted
		}
		if allBusted {
			dealer = dealer.Reveal()
		} else if dealer, shoe, err = s.engine.PlayDealerTurn(dealer, shoe); err != nil {
			return shoe, err
		}
	}

	for _, h := range hands {
		res := s.engine.DetermineWinner(h, dealer)
		r.Hands++
		r.Wagered += h.Bet
		r.Returned += res.Payout
		switch res.Outcome {
		case engine.Blackjack:
			r.Blackjacks++
		case engine.Win:
			r.Wins++
		case engine.Push:
			r.Pushes++
		case engine.Lose:
			r.Losses++
		}
	}
	return shoe, nil
}

// playHands plays the player's hand and any split hands to completion.
// The autoplayer has unlimited bankroll.
func (s *Simulator) playHands(first hand.Hand, up deck.Card, shoe deck.Deck, r *Results) ([]hand.Hand, deck.Deck, error) {
	hands := []hand.Hand{first}
	for i := 0; i < len(hands); i++ {
		for !hands[i].Closed() {
			h := hands[i]
			canDouble := s.engine.CanDouble(h, h.Bet)
			canSplit := s.engine.CanSplit(h, h.Bet)

			action, ok := s.strategy.Recommend(hand.Analyze(h.Cards), up, canDouble, canSplit)
			if !ok {
				r.NoEntry++
				action = fallbackAction(h)
			}

			var err error
			switch action {
			case strategy.Stand:
				hands[i] = s.engine.Stand(h)
			case strategy.Double:
				r.Doubles++
				hands[i], shoe, err = s.engine.DoubleDown(h, shoe)
			case strategy.Split:
				r.Splits++
				var pair [2]hand.Hand
				pair, shoe, err = s.engine.Split(h, shoe)
				if err == nil {
					hands = append(hands[:i], append(pair[:], hands[i+1:]...)...)
				}
			default:
				hands[i], shoe, err = s.engine.Hit(h, shoe)
			}
			if err != nil {
				return hands, shoe, err
			}
		}
	}
	return hands, shoe, nil
}

// fallbackAction mimics the dealer when the table has no entry
func fallbackAction(h hand.Hand) strategy.Action {
	if h.Value().Soft < engine.DealerStandsOn {
		return strategy.Hit
	}
	return strategy.Stand
}
