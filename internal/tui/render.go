package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/engine"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/strategy"
)

func helpText(mode game.Mode) string {
	common := "train, play, help, quit"
	if mode == game.ModeTraining {
		return "Answer with h/s/d/p. next (or enter) for a new hand, filter hard|soft|pair, reset to clear stats. " + common
	}
	return "bet N (or just N) to deal, h/s/d/p to act, hint, new, reset to restore bankroll. " + common
}

func filterSummary(f strategy.Filter) string {
	types := f.Types()
	if len(types) == 0 {
		return "none"
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// formatCards formats cards with suit colours
func formatCards(cards []deck.Card) string {
	if len(cards) == 0 {
		return InfoStyle.Render("--")
	}
	parts := make([]string, len(cards))
	for i, c := range cards {
		switch {
		case !c.FaceUp:
			parts[i] = HiddenCardStyle.Render(c.String())
		case c.IsRed():
			parts[i] = RedCardStyle.Render(c.String())
		default:
			parts[i] = BlackCardStyle.Render(c.String())
		}
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderBoard() string {
	s := m.game.Snapshot()
	var b strings.Builder

	title := fmt.Sprintf("Blackjack · round %d", s.RoundNumber)
	if s.Mode == game.ModeTraining {
		title = "Blackjack · basic strategy training"
	}
	b.WriteString(HeaderStyle.Render(title))
	b.WriteString("\n\n")

	dealerValue := ""
	if len(s.Dealer.Cards) > 0 {
		dealerValue = "  " + s.Dealer.Value().String()
	}
	fmt.Fprintf(&b, "%s %s%s\n\n", LabelStyle.Render("Dealer:"), formatCards(s.Dealer.Cards), dealerValue)

	for i, h := range s.Player {
		fmt.Fprintln(&b, m.renderHand(s, i, h))
	}
	if len(s.Player) == 0 {
		fmt.Fprintf(&b, "%s %s\n", LabelStyle.Render("Player:"), formatCards(nil))
	}

	if s.ShowMessage && s.Message != "" {
		b.WriteString("\n" + WarningStyle.Render(s.Message) + "\n")
	}
	b.WriteString("\n" + ActionsStyle.Render(m.availableActions(s)))
	return b.String()
}

func (m *Model) renderHand(s game.State, i int, h hand.Hand) string {
	label := "Player:"
	if len(s.Player) > 1 {
		label = fmt.Sprintf("Hand %d:", i+1)
	}
	line := fmt.Sprintf("%s %s  %s  $%.0f", LabelStyle.Render(label), formatCards(h.Cards), h.Value(), h.Bet)
	if h.DoubledDown {
		line += " (doubled)"
	}
	if i < len(s.Results) && s.Phase == game.PhaseGameOver {
		line += "  " + resultStyle(s.Results[i]).Render(string(s.Results[i].Outcome))
	}
	if s.Phase == game.PhasePlayerTurn && i == s.ActiveHand {
		line = ActiveHandStyle.Render("▶ ") + line
	}
	return line
}

func (m *Model) availableActions(s game.State) string {
	if s.Mode == game.ModeTraining {
		if tr := m.game.Training(); tr.LastAnswer != nil {
			return "[next]"
		}
		return "[h]it  [s]tand  [d]ouble  s[p]lit"
	}
	switch s.Phase {
	case game.PhaseBetting, game.PhaseGameOver:
		rules := m.game.Rules()
		chips := make([]string, 0, len(rules.Chips))
		for _, c := range rules.Chips {
			if float64(c) <= s.Bankroll {
				chips = append(chips, fmt.Sprintf("%d", c))
			}
		}
		return fmt.Sprintf("bet %.0f-%.0f  chips: %s", rules.MinBet, min(rules.MaxBet, s.Bankroll), strings.Join(chips, " "))
	case game.PhasePlayerTurn:
		var actions []string
		if m.game.CanHit() {
			actions = append(actions, "[h]it")
		}
		if m.game.CanStand() {
			actions = append(actions, "[s]tand")
		}
		if m.game.CanDouble() {
			actions = append(actions, "[d]ouble")
		}
		if m.game.CanSplit() {
			actions = append(actions, "s[p]lit")
		}
		return strings.Join(append(actions, "hint"), "  ")
	}
	return ""
}

func (m *Model) renderSidebar() string {
	s := m.game.Snapshot()
	var b strings.Builder

	b.WriteString(LabelStyle.Render("Bankroll") + "\n")
	fmt.Fprintf(&b, "$%.2f\n", s.Bankroll)
	if s.CurrentBet > 0 {
		fmt.Fprintf(&b, "Bet: $%.0f\n", s.CurrentBet)
	}
	if s.Deck != nil {
		fmt.Fprintf(&b, "Shoe: %d cards\n", s.Deck.Remaining())
	}

	tr := m.game.Training()
	st := tr.Stats
	b.WriteString("\n" + LabelStyle.Render("Training") + "\n")
	fmt.Fprintf(&b, "Correct: %d/%d (%d%%)\n", st.CorrectAttempts, st.TotalAttempts, m.game.SuccessRate())
	fmt.Fprintf(&b, "Streak: %d  Best: %d\n", st.Streak, st.BestStreak)
	for _, t := range hand.AllTypes {
		c := st.ByCategory.Get(t)
		fmt.Fprintf(&b, "  %-5s %d/%d\n", t, c.Correct, c.Total)
	}
	if s.Mode == game.ModeTraining {
		fmt.Fprintf(&b, "Filter: %s\n", filterSummary(tr.Filter))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderInputPane() string {
	status := InfoStyle.Render(string(m.game.Snapshot().Mode) + " mode")
	if m.loading {
		status = WarningStyle.Render("loading strategy...")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.input.View(), "  ", status)
}

func resultStyle(r engine.Result) lipgloss.Style {
	switch {
	case r.Outcome.IsWin():
		return SuccessStyle
	case r.Outcome == engine.Push:
		return InfoStyle
	default:
		return ErrorStyle
	}
}
