package main

import (
	"fmt"
	"time"

	"github.com/lox/blackjack/internal/simulator"
)

// SimulateCmd autoplays rounds with the strategy table
type SimulateCmd struct {
	Rounds  int     `short:"n" default:"100000" help:"Number of rounds to play"`
	Workers int     `short:"w" default:"0" help:"Parallel workers (0 = number of CPUs)"`
	Bet     float64 `default:"10" help:"Flat bet per hand"`
}

func (c *SimulateCmd) Run(g *Globals) error {
	a, err := newApp(g, false)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := signalContext()
	defer cancel()

	sim := simulator.New(simulator.Config{
		Rounds:         c.Rounds,
		Workers:        c.Workers,
		Seed:           a.seed,
		Bet:            c.Bet,
		ReshuffleBelow: a.cfg.Rules.ReshuffleBelow,
		Logger:         a.logger,
	}, a.engine, a.strategy)

	start := time.Now()
	r, err := sim.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fmt.Println(titleStyle.Render(" Simulation "))
	fmt.Printf("Rounds:      %d (%d hands) in %s\n", r.Rounds, r.Hands, elapsed.Round(time.Millisecond))
	fmt.Printf("Wins:        %d (%.2f%%)\n", r.Wins, pct(r.Wins, r.Hands))
	fmt.Printf("Blackjacks:  %d (%.2f%%)\n", r.Blackjacks, pct(r.Blackjacks, r.Hands))
	fmt.Printf("Pushes:      %d (%.2f%%)\n", r.Pushes, pct(r.Pushes, r.Hands))
	fmt.Printf("Losses:      %d (%.2f%%)\n", r.Losses, pct(r.Losses, r.Hands))
	fmt.Printf("Doubles:     %d  Splits: %d\n", r.Doubles, r.Splits)
	fmt.Printf("Wagered:     $%.2f\n", r.Wagered)
	fmt.Printf("Net:         $%.2f\n", r.Net())
	fmt.Printf("House edge:  %.3f%%\n", r.HouseEdge())
	if r.NoEntry > 0 {
		fmt.Printf("No entry:    %d decisions fell back to dealer rules\n", r.NoEntry)
	}
	return nil
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}
