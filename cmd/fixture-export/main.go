package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/replay"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the audit database")
	last := flag.Int("last", 20, "number of most recent runs to export")
	outPath := flag.String("out", "", "output fixture JSON path")
	noAutoseal := flag.Bool("no-autoseal", false, "runs were screened without automated sealing")
	keyFile := flag.String("key", "", "audit key file, if the db seals personal data")
	flag.Parse()

	if *dbPath == "" || *outPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/audit.db --out path/to/fixture.json [--key file] [--last N] [--no-autoseal]")
		os.Exit(2)
	}

	if err := run(*dbPath, *keyFile, *last, *outPath, !*noAutoseal); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region extract

func run(dbPath, keyFile string, last int, outPath string, autoseal bool) error {
	store, err := audit.OpenStore(dbPath, keyFile)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	runs, err := store.ListRuns(last)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no runs found in %s", dbPath)
	}
	slices.Reverse(runs) // chronological

	inputs := make([]replay.Input, 0, len(runs))
	for _, r := range runs {
		in, err := replay.FromRun(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "skip: %v\n", err)
			continue
		}
		inputs = append(inputs, in)
	}

	config := replay.DefaultReplayConfig(crecord.Date{})
	config.Autosealing = autoseal
	results := replay.Replay(inputs, config)

	// Only runs the current rules still reproduce become expectations.
	var cases []replay.FixtureCase
	for i, res := range results {
		if res.Action != replay.ActionMatch {
			fmt.Fprintf(os.Stderr, "skip %s: %s %s\n", res.Name, res.Action, res.Reason)
			continue
		}
		cases = append(cases, buildCase(inputs[i], res))
	}
	if len(cases) == 0 {
		return fmt.Errorf("none of the last %d runs replayed cleanly", len(runs))
	}

	fmt.Printf("Exporting %d of %d runs\n", len(cases), len(runs))
	return writeFixture(buildFixture(cases, autoseal), outPath)
}

// #endregion extract

// #region output

func buildCase(in replay.Input, res replay.ReplayResult) replay.FixtureCase {
	return replay.FixtureCase{
		Name:   in.Name,
		AsOf:   in.AsOf,
		Record: in.Record,
		Expected: replay.FixtureExpected{
			ClearableCases:   res.Summary.ClearableCases,
			ClearableCharges: res.Summary.ClearableCharges,
			RemainingCharges: res.RemainingCharges,
			NextSteps:        nextSteps(res.Summary),
		},
	}
}

// nextSteps collects, per docket, the distinct charge-level sentences.
func nextSteps(s analysis.Summary) map[string][]string {
	out := make(map[string][]string, len(s.Cases))
	for _, docket := range slices.Sorted(maps.Keys(s.Cases)) {
		cs := s.Cases[docket]
		var steps []string
		for _, seq := range slices.Sorted(maps.Keys(cs.Charges)) {
			step := strings.TrimSpace(cs.Charges[seq].NextSteps)
			if step != "" && !slices.Contains(steps, step) {
				steps = append(steps, step)
			}
		}
		if len(steps) > 0 {
			out[docket] = steps
		}
	}
	return out
}

func buildFixture(cases []replay.FixtureCase, autoseal bool) replay.Fixture {
	return replay.Fixture{
		Description: fmt.Sprintf("Audit export: %d screening runs", len(cases)),
		AsOf:        cases[len(cases)-1].AsOf,
		Config:      replay.FixtureConfig{Autosealing: &autoseal},
		Cases:       cases,
	}
}

func writeFixture(fixture replay.Fixture, outPath string) error {
	data, err := json.MarshalIndent(fixture, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal fixture: %w", err)
	}

	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("Wrote fixture to %s (%d bytes, %d cases)\n", outPath, len(data), len(fixture.Cases))
	return nil
}

// #endregion output
