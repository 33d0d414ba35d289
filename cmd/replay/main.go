package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the screening audit db (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	limit := flag.Int("limit", 100, "most recent runs to replay in DB mode")
	noAutoseal := flag.Bool("no-autoseal", false, "skip automated sealing in DB mode")
	keyFile := flag.String("key", "", "audit key file, if the db seals personal data")
	verbose := flag.Bool("v", false, "print divergence details")
	flag.Parse()

	if (*dbPath == "" && *fixturePath == "") || (*dbPath != "" && *fixturePath != "") {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/screener.db [--key file] [--limit N] [--no-autoseal]")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if *fixturePath != "" {
		exitCode = runFixtureMode(*fixturePath, *verbose)
	} else {
		exitCode = runDBMode(*dbPath, *keyFile, *limit, !*noAutoseal, *verbose)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

// runDBMode re-screens audited runs against their own as-of dates and checks
// that the stored summaries are reproduced.
func runDBMode(dbPath, keyFile string, limit int, autoseal, verbose bool) int {
	store, err := audit.OpenStore(dbPath, keyFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer store.Close()

	runs, err := store.ListRuns(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "list runs: %v\n", err)
		return 2
	}
	if len(runs) == 0 {
		fmt.Fprintln(os.Stderr, "no runs found in screening_runs")
		return 2
	}

	inputs := make([]replay.Input, 0, len(runs))
	for _, run := range runs {
		in, err := replay.FromRun(run)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip %v\n", err)
			continue
		}
		inputs = append(inputs, in)
	}

	config := replay.DefaultReplayConfig(crecord.Date{})
	config.Autosealing = autoseal
	return printComparison(replay.Replay(inputs, config), verbose)
}

// #endregion db-mode

// #region output

func runFixtureMode(path string, verbose bool) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}
	if f.Description != "" {
		fmt.Println(f.Description)
	}
	return printComparison(replay.Replay(f.Inputs(), f.Config.ToReplayConfig(f.AsOf)), verbose)
}

// printComparison outputs a comparison table and returns the exit code.
func printComparison(results []replay.ReplayResult, verbose bool) int {
	fmt.Printf("%-28s| %-10s| %-10s| %s\n", "Run", "Cases", "Charges", "Result")
	fmt.Printf("%-28s+%-11s+%-11s+%s\n",
		strings.Repeat("-", 28), strings.Repeat("-", 11), strings.Repeat("-", 11), "----------")

	for _, r := range results {
		fmt.Printf("%-28s| %-10d| %-10d| %s\n", r.Name, r.Summary.ClearableCases, r.Summary.ClearableCharges, r.Action)
		if verbose && r.Action != replay.ActionMatch {
			fmt.Printf("    %s\n", r.Reason)
		}
	}

	s := replay.Summarize(results)
	fmt.Printf("\nSummary: %d total, %d match, %d diverge, %d eval fail, %d error\n",
		s.Total, s.Matches, s.Divergences, s.EvalFailures, s.Errors)

	if s.Matches != s.Total {
		return 1
	}
	return 0
}

// #endregion output
