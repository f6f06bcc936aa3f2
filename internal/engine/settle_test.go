package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetermineWinner(t *testing.T) {
	t.Parallel()
	e := New(quietLogger())

	tests := []struct {
		name    string
		player  string
		dealer  string
		split   bool
		outcome Outcome
		payout  float64
	}{
		{name: "blackjack pays 3:2", player: "As Kh", dealer: "10d 9c", outcome: Blackjack, payout: 250},
		{name: "both blackjack push", player: "As Kh", dealer: "Ad Qc", outcome: Push, payout: 100},
		{name: "split 21 is not a natural", player: "As Kh", dealer: "10d 9c", split: true, outcome: Win, payout: 200},
		{name: "dealer blackjack beats 21", player: "7s 7h 7d", dealer: "Ad Qc", outcome: Lose, payout: 0},
		{name: "higher total wins", player: "10s Kh", dealer: "10d 9c", outcome: Win, payout: 200},
		{name: "lower total loses", player: "10s 8h", dealer: "10d 9c", outcome: Lose, payout: 0},
		{name: "equal totals push", player: "10s 8h", dealer: "9d 9c", outcome: Push, payout: 100},
		{name: "dealer bust", player: "10s 2h", dealer: "10d 6c 9h", outcome: Win, payout: 200},
		{name: "player bust loses to dealer bust", player: "10s 6h Kd", dealer: "10d 6c 9h", outcome: Lose, payout: 0},
		{name: "player bust loses to dealer blackjack", player: "10s 6h Kd", dealer: "Ad Kc", outcome: Lose, payout: 0},
		{name: "soft totals compared", player: "As 7h", dealer: "10d 7c", outcome: Win, payout: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			player := makeHand(100, tt.player)
			player.Split = tt.split
			r := e.DetermineWinner(player, makeHand(0, tt.dealer))
			assert.Equal(t, tt.outcome, r.Outcome)
			assert.Equal(t, tt.payout, r.Payout)
			assert.NotEmpty(t, r.Message)
		})
	}
}

func TestOddBetBlackjackPayout(t *testing.T) {
	t.Parallel()
	e := New(quietLogger())
	r := e.DetermineWinner(makeHand(25, "As Jh"), makeHand(0, "10d 8c"))
	assert.Equal(t, 62.5, r.Payout)
	assert.True(t, r.Outcome.IsWin())
}
