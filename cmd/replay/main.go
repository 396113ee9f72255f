package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/nietz/internal/config"
	"github.com/danielpatrickdp/nietz/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to fixture JSON")
	configPath := flag.String("config", "", "optional nietz.yaml (defaults when empty)")
	verbose := flag.Bool("v", false, "print the replayed text of every turn")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--config nietz.yaml] [-v]")
		os.Exit(2)
	}
	os.Exit(runFixtureMode(*fixturePath, *configPath, *verbose))
}

// #endregion main

// #region fixture-mode

func runFixtureMode(path, configPath string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	cfg := config.Default()
	if configPath != "" {
		if cfg, err = config.Load(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "load config: %v\n", err)
			return 2
		}
	}

	start, err := f.StartState()
	if err != nil {
		fmt.Fprintf(os.Stderr, "start state: %v\n", err)
		return 2
	}

	results, final, err := replay.Replay(start, f.ToInteractions(), f.ToReplayConfig(cfg))
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 1
	}

	code := printComparison(results, f.ExpectedResults, verbose)
	printSummary(replay.Summarize(results, final))
	return code
}

// #endregion fixture-mode

// #region output

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.ReplayResult, expected []replay.FixtureExpectedResult, verbose bool) int {
	fmt.Printf("%-8s| %-28s| %-28s| %s\n", "Turn", "Expected", "Replayed", "Match")
	fmt.Printf("%-8s+%-29s+%-29s+%s\n",
		"--------", "-----------------------------", "-----------------------------", "------")

	total := len(results)
	if len(expected) < total {
		total = len(expected)
	}

	matches := 0
	for i := 0; i < total; i++ {
		r, e := results[i], expected[i]
		exp := e.Kind + "/" + e.Dominant
		got := r.Kind.String() + "/" + r.Dominant.String()
		match := "DIFF"
		if exp == got && (e.Text == "" || e.Text == r.Text) {
			match = "OK"
			matches++
		}
		fmt.Printf("%-8s| %-28s| %-28s| %s\n", r.TurnID, exp, got, match)
		if verbose && r.Text != "" {
			fmt.Printf("        %s\n", strings.ReplaceAll(r.Text, "\n", "\n        "))
		}
	}

	diverge := total - matches + abs(len(results)-len(expected))
	fmt.Printf("\nSummary: %d total, %d match, %d diverge\n", total, matches, diverge)
	if diverge > 0 {
		return 1
	}
	return 0
}

func printSummary(s replay.ReplaySummary) {
	fmt.Printf("Turns: %d (utterances %d, empty corpus %d, directives %d, ignored %d, exited %v)\n",
		s.TotalTurns, s.Utterances, s.EmptyCorpus, s.Directives, s.Ignored, s.Exited)
	fmt.Printf("Dominant: %s\n", s.Dominant)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// #endregion output
