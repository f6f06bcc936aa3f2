package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/strategy"
)

// StrategyCmd groups the strategy table commands
type StrategyCmd struct {
	Show   StrategyShowCmd   `cmd:"" help:"Print the loaded strategy table"`
	Advise StrategyAdviseCmd `cmd:"" help:"Recommend an action for a hand, e.g. advise 'Ah 7d' 9s"`
}

var codeStyles = map[strategy.Code]lipgloss.Style{
	strategy.CodeHit:             lipgloss.NewStyle().Foreground(lipgloss.Color("#FAFAFA")),
	strategy.CodeStand:           lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")),
	strategy.CodeDouble:          lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")),
	strategy.CodeDoubleElseHit:   lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")),
	strategy.CodeDoubleElseStand: lipgloss.NewStyle().Foreground(lipgloss.Color("#96CEB4")),
	strategy.CodeSplit:           lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	strategy.CodeSplitElseHit:    lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
	strategy.CodeSplitElseStand:  lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
}

type StrategyShowCmd struct{}

func (c *StrategyShowCmd) Run(g *Globals) error {
	t, err := loadTable(g)
	if err != nil {
		return err
	}

	fmt.Println(titleStyle.Render(" " + t.Name + " "))
	if t.Description != "" {
		fmt.Println(t.Description)
	}

	hard := make([]string, 0, len(t.Hard))
	for _, total := range t.HardTotals() {
		hard = append(hard, strconv.Itoa(total))
	}
	fmt.Println(renderSection("Hard", hard, func(k string) strategy.Row {
		n, _ := strconv.Atoi(k)
		return t.Hard[n]
	}))
	fmt.Println(renderSection("Soft", t.SoftKeys(), func(k string) strategy.Row { return t.Soft[k] }))
	fmt.Println(renderSection("Pair", t.PairKeys(), func(k string) strategy.Row { return t.Pairs[k] }))

	for _, code := range []strategy.Code{
		strategy.CodeHit, strategy.CodeStand, strategy.CodeDouble, strategy.CodeDoubleElseHit,
		strategy.CodeDoubleElseStand, strategy.CodeSplit, strategy.CodeSplitElseHit, strategy.CodeSplitElseStand,
	} {
		fmt.Printf("%-3s %s\n", code, strategy.ExplanationFor(code))
	}
	return nil
}

func renderSection(name string, keys []string, row func(string) strategy.Row) string {
	headers := append([]string{name}, strategy.DealerCodes...)
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		r := row(k)
		cells := []string{k}
		for _, dc := range strategy.DealerCodes {
			cells = append(cells, string(r[dc]))
		}
		rows = append(rows, cells)
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#626262"))).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(r, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if r == table.HeaderRow || col == 0 {
				return base.Bold(true)
			}
			if r < len(rows) && col < len(rows[r]) {
				if s, ok := codeStyles[strategy.Code(rows[r][col])]; ok {
					return s.Padding(0, 1)
				}
			}
			return base
		}).
		String()
}

// StrategyAdviseCmd looks up one concrete hand
type StrategyAdviseCmd struct {
	Cards  string `arg:"" help:"Player cards, e.g. 'Ah 7d'"`
	Dealer string `arg:"" help:"Dealer up-card, e.g. 9s"`
}

func (c *StrategyAdviseCmd) Run(g *Globals) error {
	cards, err := deck.ParseCards(c.Cards)
	if err != nil {
		return err
	}
	if len(cards) < 2 {
		return fmt.Errorf("need at least two player cards, got %d", len(cards))
	}
	up, err := deck.ParseCard(c.Dealer)
	if err != nil {
		return err
	}

	t, err := loadTable(g)
	if err != nil {
		return err
	}

	a := hand.Analyze(cards)
	code, ok := t.Lookup(a, up.StrategyCode())
	if !ok {
		fmt.Fprintf(os.Stderr, "No strategy entry for %s against %s\n", c.Cards, up)
		return strategy.ErrNoRecommendation
	}
	action := code.Resolve(len(cards) == 2, a.Type == hand.Pair)

	fmt.Printf("%s (%s %s) vs %s: %s\n", formatHand(cards), a.Type, hand.Evaluate(cards), up, titleStyle.Render(action.Title()))
	fmt.Printf("%s: %s\n", code, strategy.ExplanationFor(code))
	return nil
}

func formatHand(cards []deck.Card) string {
	return hand.Hand{Cards: cards}.String()
}

func loadTable(g *Globals) (*strategy.Table, error) {
	a, err := newApp(g, false)
	if err != nil {
		return nil, err
	}
	defer a.Close()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Strategy.Timeout())
	defer cancel()
	return a.strategy.Load(ctx)
}
