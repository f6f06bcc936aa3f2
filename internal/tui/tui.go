// Package tui is the terminal front end for play and training.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/hand"
	"github.com/lox/blackjack/internal/strategy"
)

const maxLogEntries = 200

// Model is the Bubble Tea model driving a game.Service
type Model struct {
	ctx      context.Context
	game     *game.Service
	strategy *strategy.Service
	logger   *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	gameLog  []string
	loading  bool
	quitting bool

	width  int
	height int
}

// tableLoadedMsg reports the end of an asynchronous strategy load
type tableLoadedMsg struct {
	err error
}

// New creates a model. ctx bounds strategy loads and stats writes.
func New(ctx context.Context, svc *game.Service, strat *strategy.Service, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)

	ti := textinput.New()
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 40
	ti.Prompt = "> "
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)

	m := &Model{
		ctx:         ctx,
		game:        svc,
		strategy:    strat,
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
	}
	m.addLog(InfoStyle.Render("Type 'help' for commands"))
	return m
}

// Init initializes the TUI model
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages in the TUI
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tableLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.addLog(ErrorStyle.Render("Strategy unavailable: " + msg.err.Error()))
			break
		}
		if err := m.game.SetMode(m.ctx, game.ModeTraining); err != nil {
			m.addLog(ErrorStyle.Render(err.Error()))
			break
		}
		m.addLog(SuccessStyle.Render("Training mode"))
		if m.game.Training().Scenario == nil {
			m.addLog(WarningStyle.Render("No hand types enabled. Use 'filter hard|soft|pair' then 'next'"))
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "pgup":
			m.logViewport.HalfPageUp()
		case "pgdown":
			m.logViewport.HalfPageDown()
		case "enter":
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if cmd := m.execute(line); cmd != nil {
				cmds = append(cmds, cmd)
			}
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// execute runs one command line and returns a follow-up command, if any
func (m *Model) execute(line string) tea.Cmd {
	fields := strings.Fields(strings.ToLower(line))
	var verb string
	if len(fields) > 0 {
		verb = fields[0]
	}

	switch verb {
	case "quit", "q":
		m.quitting = true
		return tea.Quit
	case "help":
		m.addLog(InfoStyle.Render(helpText(m.game.Snapshot().Mode)))
		return nil
	case "train":
		return m.startTraining()
	case "play":
		if err := m.game.SetMode(m.ctx, game.ModePlay); err != nil {
			m.reportError(err)
		} else {
			m.addLog(SuccessStyle.Render("Play mode"))
		}
		return nil
	}

	if m.game.Snapshot().Mode == game.ModeTraining {
		m.executeTraining(verb, fields)
	} else {
		m.executePlay(verb, fields)
	}
	return nil
}

func (m *Model) startTraining() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	m.addLog(InfoStyle.Render("Loading strategy table..."))
	strat, ctx := m.strategy, m.ctx
	return func() tea.Msg {
		_, err := strat.Load(ctx)
		return tableLoadedMsg{err: err}
	}
}

func (m *Model) executePlay(verb string, fields []string) {
	s := m.game.Snapshot()
	var err error
	switch verb {
	case "", "new", "n":
		if s.Phase == game.PhaseGameOver || verb != "" {
			err = m.game.NewRound()
		}
	case "bet", "b":
		amount := s.CurrentBet
		if len(fields) > 1 {
			amount, err = strconv.ParseFloat(fields[1], 64)
		}
		if err == nil {
			err = m.placeBet(amount)
		}
	case "hit", "h":
		err = m.game.Hit()
	case "stand", "s":
		err = m.game.Stand()
	case "double", "d":
		err = m.game.Double()
	case "split", "p":
		err = m.game.Split()
	case "hint", "?":
		if action, ok := m.game.Hint(m.ctx); ok {
			m.addLog(WarningStyle.Render("Basic strategy says: " + action.Title()))
		} else {
			m.addLog(InfoStyle.Render("No hint available"))
		}
	case "reset":
		m.game.ResetBankroll()
		m.addLog(InfoStyle.Render(fmt.Sprintf("Bankroll reset to $%.0f", m.game.Rules().Bankroll)))
	default:
		// A bare number is a bet
		if amount, perr := strconv.ParseFloat(verb, 64); perr == nil {
			err = m.placeBet(amount)
		} else {
			err = fmt.Errorf("unknown command %q", verb)
		}
	}
	if err != nil {
		m.reportError(err)
		return
	}
	m.logRoundEnd(s)
}

func (m *Model) placeBet(amount float64) error {
	if m.game.Snapshot().Phase == game.PhaseGameOver {
		if err := m.game.NewRound(); err != nil {
			return err
		}
	}
	return m.game.PlaceBet(amount)
}

// logRoundEnd writes the settlement message once per round
func (m *Model) logRoundEnd(before game.State) {
	after := m.game.Snapshot()
	if after.Phase == game.PhaseGameOver && (before.Phase != game.PhaseGameOver || before.RoundID != after.RoundID) {
		m.addLog(fmt.Sprintf("Round %d: %s  (dealer %s, bankroll $%.2f)",
			after.RoundNumber, after.Message, after.Dealer.Value(), after.Bankroll))
	}
}

func (m *Model) executeTraining(verb string, fields []string) {
	var err error
	switch verb {
	case "", "next", "n":
		err = m.game.NextTrainingScenario()
	case "filter", "f":
		if len(fields) < 2 {
			err = errors.New("usage: filter hard|soft|pair")
			break
		}
		t := hand.Type(strings.TrimSuffix(fields[1], "s"))
		switch t {
		case hand.Hard, hand.Soft, hand.Pair:
			m.game.ToggleFilter(t)
			m.addLog(InfoStyle.Render("Filter: " + filterSummary(m.game.Training().Filter)))
		default:
			err = fmt.Errorf("unknown hand type %q", fields[1])
		}
	case "reset":
		m.game.ResetTrainingStats(m.ctx)
		m.addLog(InfoStyle.Render("Training stats reset"))
	default:
		action, perr := strategy.ParseAction(verb)
		if perr != nil {
			err = fmt.Errorf("unknown command %q", verb)
			break
		}
		var answer game.Answer
		answer, err = m.game.SubmitTrainingAnswer(m.ctx, action)
		if err == nil {
			style := ErrorStyle
			if answer.WasCorrect {
				style = SuccessStyle
			}
			m.addLog(style.Render(m.game.Snapshot().Message) + "  " + InfoStyle.Render(answer.Explanation))
		}
	}
	if err != nil {
		m.reportError(err)
	}
}

func (m *Model) reportError(err error) {
	m.logger.Debug("Command failed", "error", err)
	m.addLog(ErrorStyle.Render(err.Error()))
}

// addLog appends an entry to the log pane and scrolls to it
func (m *Model) addLog(entry string) {
	m.gameLog = append(m.gameLog, entry)
	if len(m.gameLog) > maxLogEntries {
		m.gameLog = m.gameLog[len(m.gameLog)-maxLogEntries:]
	}
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// View renders the TUI
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	inputPane := inputPaneStyle.Width(max(m.width-2, 1)).Render(m.renderInputPane())
	inputHeight := lipgloss.Height(inputPane)

	board := m.renderBoard()
	sidebar := m.renderSidebar()
	sidebarWidth := max(lipgloss.Width(sidebar), 28)
	topHeight := max(m.height-inputHeight-2, 1)

	boardWidth := max(m.width-sidebarWidth-4, 1)
	boardHeight := lipgloss.Height(board)
	m.logViewport.Width = boardWidth
	m.logViewport.Height = max(topHeight-boardHeight-1, 1)

	left := lipgloss.JoinVertical(lipgloss.Left, board, "", m.logViewport.View())
	leftPane := paneStyle.Width(boardWidth).Height(topHeight).Render(left)
	sidePane := paneStyle.Width(sidebarWidth).Height(topHeight).Render(sidebar)

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, leftPane, sidePane),
		inputPane)
}
