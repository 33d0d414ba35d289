package analysis

import (
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/rules"
	"go.uber.org/zap"
)

// #region analysis
// Analysis threads a record through rules. It holds an immutable snapshot of
// the original record, the current remainder and the decisions made so far.
// The caller chooses the rule order; Analysis does not check it.
type Analysis struct {
	original  crecord.Record
	remaining crecord.Record
	decisions []decision.Decision
	logger    *zap.Logger
}

// New snapshots rec. Later changes to rec are not seen by the analysis.
func New(rec crecord.Record, logger *zap.Logger) *Analysis {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analysis{
		original:  rec.Clone(),
		remaining: rec.Clone(),
		logger:    logger.Named("analysis"),
	}
}

// Apply runs rule on the remainder, replaces the remainder with the rule's
// output and records its decision.
func (a *Analysis) Apply(rule rules.Rule) *Analysis {
	remaining, d := rule(a.remaining)
	a.remaining = remaining
	a.decisions = append(a.decisions, d)
	return a
}

// ApplyAll applies each rule in order.
func (a *Analysis) ApplyAll(rs ...rules.Rule) *Analysis {
	for _, r := range rs {
		a.Apply(r)
	}
	return a
}

// Inspect runs a non-filtering rule over the original record. Its decision
// is recorded; the remainder is left as it was.
func (a *Analysis) Inspect(rule rules.Rule) *Analysis {
	_, d := rule(a.original.Clone())
	a.decisions = append(a.decisions, d)
	return a
}

// Original returns a copy of the snapshot taken at construction.
func (a *Analysis) Original() crecord.Record { return a.original.Clone() }

// Remaining returns a copy of the current remainder.
func (a *Analysis) Remaining() crecord.Record { return a.remaining.Clone() }

// Decisions returns the decisions in the order they were made.
func (a *Analysis) Decisions() []decision.Decision {
	return append([]decision.Decision(nil), a.decisions...)
}

// #endregion analysis

// #region screen
// Screen runs the named rules in order and, when autoseal is set, inspects
// the original record for automated sealing eligibility.
func Screen(rec crecord.Record, e *rules.Evaluator, names []string, autoseal bool, logger *zap.Logger) (*Analysis, error) {
	seq, err := e.Sequence(names)
	if err != nil {
		return nil, err
	}
	a := New(rec, logger).ApplyAll(seq...)
	if autoseal {
		a.Inspect(e.AutosealingEligibility)
	}
	return a, nil
}

// DefaultRuleNames lists the statutory rule sequence by name.
func DefaultRuleNames() []string {
	ids := rules.DefaultSequence()
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, string(id))
	}
	return out
}

// #endregion screen
