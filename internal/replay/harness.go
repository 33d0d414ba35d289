package replay

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/eval"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/rules"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// Replay outcomes.
const (
	ActionMatch    = "match"
	ActionDiverge  = "diverge"
	ActionEvalFail = "eval_fail"
	ActionError    = "error"
)

// #region types
// Expectation is what a fixture case should screen to. NextSteps maps a
// docket to substrings that must occur in that case's steps or any of its
// charges' steps.
type Expectation struct {
	ClearableCases   int
	ClearableCharges int
	RemainingCharges int
	NextSteps        map[string][]string
}

// Input is one record to re-screen. Expected and Baseline are both optional;
// Baseline is a previously stored summary that must be reproduced exactly.
type Input struct {
	Name     string
	AsOf     crecord.Date // overrides ReplayConfig.AsOf when set
	Record   crecord.Record
	Expected *Expectation
	Baseline *analysis.Summary
}

// ReplayConfig bundles the rule and eval settings for a replay run.
type ReplayConfig struct {
	AsOf        crecord.Date
	RuleNames   []string
	Autosealing bool
	Rules       rules.Config
	EvalConfig  eval.EvalConfig
}

// DefaultReplayConfig screens with the statutory rule order, automated
// sealing and current thresholds.
func DefaultReplayConfig(asOf crecord.Date) ReplayConfig {
	return ReplayConfig{
		AsOf:        asOf,
		RuleNames:   analysis.DefaultRuleNames(),
		Autosealing: true,
		Rules:       rules.DefaultConfig(),
		EvalConfig:  eval.DefaultEvalConfig(),
	}
}

// ReplayResult captures the outcome of re-screening one input.
type ReplayResult struct {
	Name   string
	Action string // "match" | "diverge" | "eval_fail" | "error"
	Reason string

	Summary          analysis.Summary
	RemainingCharges int

	// nil if screening failed
	EvalResult *eval.EvalResult
}

// ReplaySummary provides aggregate stats from a replay run.
type ReplaySummary struct {
	Total          int
	Matches        int
	Divergences    int
	EvalFailures   int
	Errors         int
	ClearedCharges int
}

// #endregion types

// #region replay
// Replay screens each input in memory: validate, screen, summarize, eval,
// then compare against the expectation and baseline.
func Replay(inputs []Input, config ReplayConfig) []ReplayResult {
	results := make([]ReplayResult, 0, len(inputs))
	harness := eval.NewEvalHarness(config.EvalConfig)

	for _, in := range inputs {
		asOf := config.AsOf
		if !in.AsOf.IsZero() {
			asOf = in.AsOf
		}

		// 1. Validate
		if err := crecord.Validate(in.Record); err != nil {
			results = append(results, ReplayResult{Name: in.Name, Action: ActionError, Reason: err.Error()})
			continue
		}

		// 2. Screen
		e := rules.NewEvaluator(asOf, rules.WithConfig(config.Rules))
		a, err := analysis.Screen(in.Record, e, config.RuleNames, config.Autosealing, nil)
		if err != nil {
			results = append(results, ReplayResult{Name: in.Name, Action: ActionError, Reason: err.Error()})
			continue
		}
		s := a.Summarize()
		result := ReplayResult{
			Name:             in.Name,
			Summary:          s,
			RemainingCharges: a.Remaining().ChargeCount(),
		}

		// 3. Eval
		ev := harness.Run(a, s)
		result.EvalResult = &ev
		if !ev.Passed {
			result.Action = ActionEvalFail
			result.Reason = ev.Reason
			results = append(results, result)
			continue
		}

		// 4. Compare
		var diffs []string
		if in.Expected != nil {
			diffs = append(diffs, compare(*in.Expected, result)...)
		}
		if in.Baseline != nil {
			if d := cmp.Diff(*in.Baseline, s, cmpopts.IgnoreFields(analysis.Summary{}, "RunID"), cmpopts.EquateEmpty()); d != "" {
				diffs = append(diffs, "summary differs from baseline (-stored +replayed):\n"+d)
			}
		}
		if len(diffs) > 0 {
			result.Action = ActionDiverge
			result.Reason = strings.Join(diffs, "; ")
		} else {
			result.Action = ActionMatch
			result.Reason = ev.Reason
		}
		results = append(results, result)
	}

	return results
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []ReplayResult) ReplaySummary {
	s := ReplaySummary{Total: len(results)}
	for _, r := range results {
		switch r.Action {
		case ActionMatch:
			s.Matches++
		case ActionDiverge:
			s.Divergences++
		case ActionEvalFail:
			s.EvalFailures++
		case ActionError:
			s.Errors++
		}
		s.ClearedCharges += r.Summary.ClearableCharges
	}
	return s
}

// #endregion replay

// #region compare
func compare(want Expectation, got ReplayResult) []string {
	var diffs []string
	s := got.Summary
	if s.ClearableCases != want.ClearableCases {
		diffs = append(diffs, fmt.Sprintf("clearable cases: expected %d, got %d", want.ClearableCases, s.ClearableCases))
	}
	if s.ClearableCharges != want.ClearableCharges {
		diffs = append(diffs, fmt.Sprintf("clearable charges: expected %d, got %d", want.ClearableCharges, s.ClearableCharges))
	}
	if got.RemainingCharges != want.RemainingCharges {
		diffs = append(diffs, fmt.Sprintf("remaining charges: expected %d, got %d", want.RemainingCharges, got.RemainingCharges))
	}
	for _, docket := range slices.Sorted(maps.Keys(want.NextSteps)) {
		steps := want.NextSteps[docket]
		cs, ok := s.Cases[docket]
		if !ok {
			diffs = append(diffs, fmt.Sprintf("case %s missing from summary", docket))
			continue
		}
		text := caseText(cs)
		for _, step := range steps {
			if !strings.Contains(text, step) {
				diffs = append(diffs, fmt.Sprintf("case %s: no step containing %q", docket, step))
			}
		}
	}
	return diffs
}

func caseText(cs *analysis.CaseSummary) string {
	var b strings.Builder
	b.WriteString(cs.NextSteps)
	for _, ch := range cs.Charges {
		b.WriteString("\n")
		b.WriteString(ch.NextSteps)
	}
	return b.String()
}

// #endregion compare
