package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "blackjack.hcl")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)

	assert.Equal(t, 6, cfg.Rules.Decks)
	assert.Equal(t, 1000.0, cfg.Rules.Bankroll)
	assert.Equal(t, 10.0, cfg.Rules.MinBet)
	assert.Equal(t, 500.0, cfg.Rules.MaxBet)
	assert.Equal(t, []int{10, 25, 50, 100, 500}, cfg.Rules.Chips)
	assert.Equal(t, 52, cfg.Rules.ShoeRefreshBelow)
	assert.Equal(t, 20, cfg.Rules.ReshuffleBelow)
	assert.Equal(t, "embedded", cfg.Strategy.Source)
	assert.Equal(t, 5*time.Second, cfg.Strategy.Timeout())
	assert.Equal(t, BackendFile, cfg.Stats.Backend)
	assert.Equal(t, "blackjack-stats.json", cfg.Stats.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
rules {
  decks    = 2
  bankroll = 250
  chips    = [5, 25]
}

strategy {
  source = "https://example.com/basic.json"
}

stats {
  backend = "sqlite"
}

log {
  level = "debug"
  file  = "blackjack.log"
}
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Rules.Decks)
	assert.Equal(t, 250.0, cfg.Rules.Bankroll)
	assert.Equal(t, 10.0, cfg.Rules.MinBet, "unset values keep defaults")
	assert.Equal(t, []int{5, 25}, cfg.Rules.Chips)
	assert.Equal(t, "https://example.com/basic.json", cfg.Strategy.Source)
	assert.Equal(t, BackendSQLite, cfg.Stats.Backend)
	assert.Equal(t, "blackjack-stats.db", cfg.Stats.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "blackjack.log", cfg.Log.File)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, `rules { decks = 2 }`)
	t.Setenv("BLACKJACK_DECKS", "4")
	t.Setenv("BLACKJACK_STATS_BACKEND", "memory")
	t.Setenv("BLACKJACK_CHIPS", "1,5,25")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Rules.Decks)
	assert.Equal(t, BackendMemory, cfg.Stats.Backend)
	assert.Equal(t, []int{1, 5, 25}, cfg.Rules.Chips)
}

func TestLoadInvalid(t *testing.T) {
	tests := map[string]string{
		"syntax":      `rules {`,
		"unknown":     `rules { jokers = true }`,
		"decks":       `rules { decks = 12 }`,
		"limits":      "rules {\n  min_bet = 100\n  max_bet = 50\n}",
		"bankroll":    `rules { bankroll = 5 }`,
		"shoe":        "rules {\n  shoe_refresh_below = 10\n  reshuffle_below = 20\n}",
		"backend":     `stats { backend = "redis" }`,
		"log level":   `log { level = "loud" }`,
		"bad chip":    `rules { chips = [0] }`,
		"tiny shoe":   "rules {\n  decks = 1\n  shoe_refresh_below = 60\n}",
		"neg timeout": `strategy { timeout_ms = -1 }`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
}

func TestDefaultValidates(t *testing.T) {
	require.NoError(t, Default().Validate())
}
