package replay

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/eval"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description string        `json:"description"`
	AsOf        crecord.Date  `json:"as_of"`
	Config      FixtureConfig `json:"config"`
	Cases       []FixtureCase `json:"cases"`
}

// FixtureConfig holds the screening settings for every case in a fixture.
// Zero values fall back to the defaults.
type FixtureConfig struct {
	Rules            []string `json:"rules"`
	Autosealing      *bool    `json:"autosealing"`
	TrafficMarker    string   `json:"traffic_marker"`
	MaxSummaryErrors int      `json:"max_summary_errors"`
}

// FixtureCase is one record and what it should screen to. AsOf overrides
// the fixture date for this case.
type FixtureCase struct {
	Name     string          `json:"name"`
	AsOf     crecord.Date    `json:"as_of"`
	Record   crecord.Record  `json:"record"`
	Expected FixtureExpected `json:"expected"`
}

// FixtureExpected mirrors Expectation with JSON tags.
type FixtureExpected struct {
	ClearableCases   int                 `json:"clearable_cases"`
	ClearableCharges int                 `json:"clearable_charges"`
	RemainingCharges int                 `json:"remaining_charges"`
	NextSteps        map[string][]string `json:"next_steps"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	if f.AsOf.IsZero() {
		return nil, fmt.Errorf("parse fixture %s: as_of is required", path)
	}
	return &f, nil
}

// ToReplayConfig converts a FixtureConfig to a domain ReplayConfig.
func (fc *FixtureConfig) ToReplayConfig(asOf crecord.Date) ReplayConfig {
	config := DefaultReplayConfig(asOf)
	if len(fc.Rules) > 0 {
		config.RuleNames = fc.Rules
	}
	if fc.Autosealing != nil {
		config.Autosealing = *fc.Autosealing
	}
	if fc.TrafficMarker != "" {
		config.Rules.TrafficMarker = fc.TrafficMarker
	}
	config.EvalConfig = eval.EvalConfig{
		MaxSummaryErrors: fc.MaxSummaryErrors,
		RequireCoverage:  true,
	}
	return config
}

// ToInput converts a FixtureCase to a domain Input.
func (fc *FixtureCase) ToInput() Input {
	return Input{
		Name:   fc.Name,
		AsOf:   fc.AsOf,
		Record: fc.Record,
		Expected: &Expectation{
			ClearableCases:   fc.Expected.ClearableCases,
			ClearableCharges: fc.Expected.ClearableCharges,
			RemainingCharges: fc.Expected.RemainingCharges,
			NextSteps:        fc.Expected.NextSteps,
		},
	}
}

// Inputs converts every case of the fixture.
func (f *Fixture) Inputs() []Input {
	out := make([]Input, len(f.Cases))
	for i := range f.Cases {
		out[i] = f.Cases[i].ToInput()
	}
	return out
}

// #endregion fixture-loader

// #region audit-runs

// FromRun rebuilds a replay input from an audited run. The stored summary
// becomes the baseline the replay must reproduce.
func FromRun(run audit.Run) (Input, error) {
	rec, err := crecord.Decode([]byte(run.RecordJSON))
	if err != nil {
		return Input{}, fmt.Errorf("run %s: %w", run.RunID, err)
	}
	var baseline analysis.Summary
	if err := json.Unmarshal([]byte(run.SummaryJSON), &baseline); err != nil {
		return Input{}, fmt.Errorf("run %s: summary: %w", run.RunID, err)
	}
	return Input{
		Name:     run.RunID,
		AsOf:     run.AsOf,
		Record:   rec,
		Baseline: &baseline,
	}, nil
}

// #endregion audit-runs
