package main

import (
	"github.com/alecthomas/kong"
)

// version is set by ldflags during build
var version = "dev"

// Globals are flags shared by every command
type Globals struct {
	Config string `short:"c" default:"blackjack.hcl" type:"path" help:"HCL config file (missing file uses defaults)"`
	Debug  bool   `help:"Enable debug logging"`
	Seed   *int64 `help:"Deterministic RNG seed (optional)"`
}

type CLI struct {
	Globals

	Version  kong.VersionFlag `short:"v" help:"Show version"`
	Play     PlayCmd          `cmd:"" default:"1" help:"Play blackjack rounds against the dealer"`
	Train    TrainCmd         `cmd:"" help:"Drill basic strategy decisions"`
	Simulate SimulateCmd      `cmd:"" help:"Measure the strategy table by autoplaying many rounds"`
	Strategy StrategyCmd      `cmd:"" help:"Inspect the basic strategy table"`
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("blackjack"),
		kong.Description("Blackjack rules engine and basic strategy trainer"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version,
		},
	)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
