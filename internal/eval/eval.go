package eval

import (
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/google/go-cmp/cmp"
)

// #region eval-harness
// EvalHarness checks a finished screening for internal consistency: rules
// only ever remove charges, petitions only cover charges from the record, the
// summary accounts for every case and summarizing the same decisions twice
// gives the same report.
type EvalHarness struct {
	config EvalConfig
}

// NewEvalHarness creates an eval harness with the given configuration.
func NewEvalHarness(config EvalConfig) *EvalHarness {
	return &EvalHarness{config: config}
}

// Run evaluates a screening. It never alters the analysis or summary.
func (h *EvalHarness) Run(a *analysis.Analysis, s analysis.Summary) EvalResult {
	original, remaining := a.Original(), a.Remaining()
	known := chargeKeys(original)
	var (
		metrics     []EvalMetric
		failReasons []string
	)
	check := func(name string, value float64, pass bool, reason string) {
		metrics = append(metrics, EvalMetric{Name: name, Value: value, Pass: pass})
		if !pass {
			failReasons = append(failReasons, reason)
		}
	}

	// 1. The remainder is a subset of the original record.
	stray := 0
	for key := range chargeKeys(remaining) {
		if !known[key] {
			stray++
		}
	}
	check("remainder_subset", float64(stray), stray == 0,
		fmt.Sprintf("%d remaining charges are not in the original record", stray))

	// 2. Petitions cover only original charges, none of which remain.
	var outside, overlap int
	left := chargeKeys(remaining)
	for _, d := range a.Decisions() {
		ps, ok := d.Value.([]petition.Petition)
		if !ok {
			continue
		}
		for _, p := range ps {
			for _, c := range p.Cases {
				for _, ch := range c.Charges {
					key := c.DocketNumber + "/" + ch.Sequence
					if !known[key] {
						outside++
					}
					if left[key] {
						overlap++
					}
				}
			}
		}
	}
	check("petitions_in_record", float64(outside), outside == 0,
		fmt.Sprintf("%d petition charges are not in the original record", outside))
	check("petition_remainder_overlap", float64(overlap), overlap == 0,
		fmt.Sprintf("%d petition charges are still in the remainder", overlap))

	// 3. Clearable counts are bounded by the record.
	total := original.ChargeCount()
	check("clearable_charges", float64(s.ClearableCharges), s.ClearableCharges <= total,
		fmt.Sprintf("clearable charges %d exceed %d charges", s.ClearableCharges, total))
	check("clearable_cases", float64(s.ClearableCases), s.ClearableCases <= len(original.Cases),
		fmt.Sprintf("clearable cases %d exceed %d cases", s.ClearableCases, len(original.Cases)))

	// 4. Every case appears in the summary.
	if h.config.RequireCoverage {
		missing := 0
		for _, c := range original.Cases {
			if _, ok := s.Cases[c.DocketNumber]; !ok {
				missing++
			}
		}
		check("summary_coverage", float64(missing), missing == 0,
			fmt.Sprintf("%d cases are missing from the summary", missing))
	}

	// 5. Summary errors.
	errs := len(s.Errors)
	check("summary_errors", float64(errs), errs <= h.config.MaxSummaryErrors,
		fmt.Sprintf("summary reported %d errors", errs))

	// 6. The decisions summarize to the same report every time.
	first := analysis.Summarize(original, a.Decisions())
	second := analysis.Summarize(a.Original(), a.Decisions())
	diff := cmp.Diff(first, second)
	check("summary_reproducible", float64(len(diff)), diff == "",
		"summarizing the same decisions twice gave different reports")

	reason := "all checks passed"
	if len(failReasons) == 1 {
		reason = fmt.Sprintf("eval failed: %s", failReasons[0])
	} else if len(failReasons) > 1 {
		reason = fmt.Sprintf("eval failed: %d checks: %s", len(failReasons), failReasons[0])
	}

	return EvalResult{
		Passed:  len(failReasons) == 0,
		Metrics: metrics,
		Reason:  reason,
	}
}

// #endregion eval-harness

// #region helpers
// chargeKeys indexes a record's charges by docket and sequence.
func chargeKeys(rec crecord.Record) map[string]bool {
	keys := make(map[string]bool, rec.ChargeCount())
	for _, c := range rec.Cases {
		for _, ch := range c.Charges {
			keys[c.DocketNumber+"/"+ch.Sequence] = true
		}
	}
	return keys
}

// #endregion helpers
