// Package config loads blackjack settings from an HCL file with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Stats backends
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Config is the complete application configuration
type Config struct {
	Rules    *RulesConfig    `hcl:"rules,block"`
	Strategy *StrategyConfig `hcl:"strategy,block"`
	Stats    *StatsConfig    `hcl:"stats,block"`
	Log      *LogConfig      `hcl:"log,block"`
}

// RulesConfig holds table limits and shoe handling
type RulesConfig struct {
	Decks            int     `hcl:"decks,optional" env:"BLACKJACK_DECKS"`
	Bankroll         float64 `hcl:"bankroll,optional" env:"BLACKJACK_BANKROLL"`
	MinBet           float64 `hcl:"min_bet,optional" env:"BLACKJACK_MIN_BET"`
	MaxBet           float64 `hcl:"max_bet,optional" env:"BLACKJACK_MAX_BET"`
	Chips            []int   `hcl:"chips,optional" env:"BLACKJACK_CHIPS" envSeparator:","`
	ShoeRefreshBelow int     `hcl:"shoe_refresh_below,optional" env:"BLACKJACK_SHOE_REFRESH_BELOW"`
	ReshuffleBelow   int     `hcl:"reshuffle_below,optional" env:"BLACKJACK_RESHUFFLE_BELOW"`
}

// StrategyConfig says where the basic strategy table comes from
type StrategyConfig struct {
	Source    string `hcl:"source,optional" env:"BLACKJACK_STRATEGY_SOURCE"`
	TimeoutMS int    `hcl:"timeout_ms,optional" env:"BLACKJACK_STRATEGY_TIMEOUT_MS"`
}

// Timeout is the fetch timeout as a duration
func (s StrategyConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// StatsConfig selects where training stats persist
type StatsConfig struct {
	Backend string `hcl:"backend,optional" env:"BLACKJACK_STATS_BACKEND"`
	Path    string `hcl:"path,optional" env:"BLACKJACK_STATS_PATH"`
}

// LogConfig controls the log level and destination
type LogConfig struct {
	Level string `hcl:"level,optional" env:"BLACKJACK_LOG_LEVEL"`
	File  string `hcl:"file,optional" env:"BLACKJACK_LOG_FILE"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads filename, fills missing values with defaults, applies
// BLACKJACK_* environment overrides and validates the result. A missing
// file yields the defaults.
func Load(filename string) (*Config, error) {
	var cfg Config
	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			parser := hclparse.NewParser()
			file, diags := parser.ParseHCLFile(filename)
			if diags.HasErrors() {
				return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
			}
			if diags := gohcl.DecodeBody(file.Body, nil, &cfg); diags.HasErrors() {
				return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("stat config: %w", err)
		}
	}
	cfg.applyDefaults()

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Rules == nil {
		c.Rules = &RulesConfig{}
	}
	if c.Strategy == nil {
		c.Strategy = &StrategyConfig{}
	}
	if c.Stats == nil {
		c.Stats = &StatsConfig{}
	}
	if c.Log == nil {
		c.Log = &LogConfig{}
	}

	r := c.Rules
	if r.Decks == 0 {
		r.Decks = 6
	}
	if r.Bankroll == 0 {
		r.Bankroll = 1000
	}
	if r.MinBet == 0 {
		r.MinBet = 10
	}
	if r.MaxBet == 0 {
		r.MaxBet = 500
	}
	if len(r.Chips) == 0 {
		r.Chips = []int{10, 25, 50, 100, 500}
	}
	if r.ShoeRefreshBelow == 0 {
		r.ShoeRefreshBelow = 52
	}
	if r.ReshuffleBelow == 0 {
		r.ReshuffleBelow = 20
	}

	if c.Strategy.Source == "" {
		c.Strategy.Source = "embedded"
	}
	if c.Strategy.TimeoutMS == 0 {
		c.Strategy.TimeoutMS = 5000
	}

	if c.Stats.Backend == "" {
		c.Stats.Backend = BackendFile
	}
	if c.Stats.Path == "" {
		switch c.Stats.Backend {
		case BackendSQLite:
			c.Stats.Path = "blackjack-stats.db"
		default:
			c.Stats.Path = "blackjack-stats.json"
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks the configuration for consistency
func (c *Config) Validate() error {
	r := c.Rules
	if r.Decks < 1 || r.Decks > 8 {
		return fmt.Errorf("invalid deck count: %d", r.Decks)
	}
	if r.MinBet <= 0 {
		return fmt.Errorf("min_bet must be positive: %v", r.MinBet)
	}
	if r.MaxBet < r.MinBet {
		return fmt.Errorf("max_bet (%v) must be at least min_bet (%v)", r.MaxBet, r.MinBet)
	}
	if r.Bankroll < r.MinBet {
		return fmt.Errorf("bankroll (%v) must cover min_bet (%v)", r.Bankroll, r.MinBet)
	}
	for _, chip := range r.Chips {
		if chip <= 0 {
			return fmt.Errorf("invalid chip value: %d", chip)
		}
	}
	if r.ReshuffleBelow < 0 || r.ShoeRefreshBelow < r.ReshuffleBelow {
		return fmt.Errorf("shoe_refresh_below (%d) must be at least reshuffle_below (%d)", r.ShoeRefreshBelow, r.ReshuffleBelow)
	}
	if r.ShoeRefreshBelow >= r.Decks*52 {
		return fmt.Errorf("shoe_refresh_below (%d) must be less than the shoe size (%d)", r.ShoeRefreshBelow, r.Decks*52)
	}
	if c.Strategy.TimeoutMS < 0 {
		return fmt.Errorf("invalid strategy timeout: %dms", c.Strategy.TimeoutMS)
	}
	switch c.Stats.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown stats backend: %q", c.Stats.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
