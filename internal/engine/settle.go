package engine

import (
	"fmt"

	"github.com/lox/blackjack/internal/hand"
)

// Outcome is the result of one player hand against the dealer
type Outcome string

const (
	Win       Outcome = "win"
	Lose      Outcome = "lose"
	Push      Outcome = "push"
	Blackjack Outcome = "blackjack"
)

// IsWin reports whether the outcome pays the player a profit
func (o Outcome) IsWin() bool {
	return o == Win || o == Blackjack
}

// Payout multipliers applied to the hand's bet. Each is the total returned
// to the bankroll, stake included; the stake itself was taken when the bet
// was placed.
const (
	BlackjackPayout = 2.5
	WinPayout       = 2.0
	PushPayout      = 1.0
)

// Result is the settlement of one hand
type Result struct {
	Outcome Outcome
	Payout  float64
	Message string
}

// DetermineWinner settles a player hand against the dealer hand. The first
// matching rule wins: player bust, player natural (split hands never
// count), dealer natural, dealer bust, then higher total.
func (e *Engine) DetermineWinner(player, dealer hand.Hand) Result {
	r := settle(player, dealer)
	e.logger.Debug("Settled hand", "player", player, "dealer", dealer, "outcome", r.Outcome, "payout", r.Payout)
	return r
}

func settle(player, dealer hand.Hand) Result {
	pv, dv := player.Value(), dealer.Value()

	if pv.Bust {
		return Result{Outcome: Lose, Payout: 0, Message: "Bust! You lose."}
	}

	if pv.Blackjack && !player.Split {
		if dv.Blackjack {
			return Result{Outcome: Push, Payout: player.Bet * PushPayout, Message: "Both have blackjack. Push!"}
		}
		return Result{Outcome: Blackjack, Payout: player.Bet * BlackjackPayout, Message: "Blackjack! Pays 3:2!"}
	}

	if dv.Blackjack {
		return Result{Outcome: Lose, Payout: 0, Message: "Dealer has blackjack. You lose."}
	}

	if dv.Bust {
		return Result{Outcome: Win, Payout: player.Bet * WinPayout, Message: "Dealer busts! You win!"}
	}

	p, d := pv.Soft, dv.Soft
	switch {
	case p > d:
		return Result{Outcome: Win, Payout: player.Bet * WinPayout, Message: fmt.Sprintf("%d beats %d. You win!", p, d)}
	case d > p:
		return Result{Outcome: Lose, Payout: 0, Message: fmt.Sprintf("%d beats %d. Dealer wins.", d, p)}
	default:
		return Result{Outcome: Push, Payout: player.Bet * PushPayout, Message: fmt.Sprintf("Push at %d. Bet returned.", p)}
	}
}
