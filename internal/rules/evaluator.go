package rules

import (
	"errors"
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/statutes"
	"go.uber.org/zap"
)

// ErrUnknownRule is returned when a rule name has no implementation.
var ErrUnknownRule = errors.New("unknown rule")

// #region evaluator
// Evaluator binds the rules to an evaluation date, thresholds, statute tables
// and a diagnostics sink. Its rule methods are pure given those inputs.
type Evaluator struct {
	Now      crecord.Date
	Config   Config
	Statutes *statutes.Table
	Attorney petition.Attorney
	Sink     *logging.Sink

	logger *zap.Logger
}

// Option configures an Evaluator.
type Option func(*Evaluator)

func WithConfig(cfg Config) Option { return func(e *Evaluator) { e.Config = cfg } }
func WithStatutes(t *statutes.Table) Option { return func(e *Evaluator) { e.Statutes = t } }
func WithAttorney(a petition.Attorney) Option { return func(e *Evaluator) { e.Attorney = a } }
func WithSink(s *logging.Sink) Option { return func(e *Evaluator) { e.Sink = s } }
func WithLogger(l *zap.Logger) Option { return func(e *Evaluator) { e.logger = l } }

// NewEvaluator builds an evaluator for the given as-of date with default
// thresholds and the embedded statute tables.
func NewEvaluator(now crecord.Date, opts ...Option) *Evaluator {
	e := &Evaluator{
		Now:      now,
		Config:   DefaultConfig(),
		Statutes: statutes.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	e.logger = e.logger.Named("rules")
	return e
}

// #endregion evaluator

// #region registry
// ByID returns the rule implementing a rule id.
func (e *Evaluator) ByID(id decision.RuleID) (Rule, bool) {
	switch id {
	case decision.RuleFilterTrafficCases:
		return e.FilterTrafficCases, true
	case decision.RuleExpungeDeceased:
		return e.ExpungeDeceased, true
	case decision.RuleExpungeOver70:
		return e.ExpungeOver70, true
	case decision.RuleExpungeNonconvictions:
		return e.ExpungeNonconvictions, true
	case decision.RuleExpungeSummaryConvictions:
		return e.ExpungeSummaryConvictions, true
	case decision.RuleSealConvictions:
		return e.SealConvictions, true
	case decision.RuleAutosealingEligibility:
		return e.AutosealingEligibility, true
	}
	return nil, false
}

// DefaultSequence is the statutory order rules are applied in.
func DefaultSequence() []decision.RuleID {
	return []decision.RuleID{
		decision.RuleFilterTrafficCases,
		decision.RuleExpungeDeceased,
		decision.RuleExpungeOver70,
		decision.RuleExpungeNonconvictions,
		decision.RuleExpungeSummaryConvictions,
		decision.RuleSealConvictions,
	}
}

// Sequence resolves rule names in order.
func (e *Evaluator) Sequence(names []string) ([]Rule, error) {
	out := make([]Rule, 0, len(names))
	for _, name := range names {
		r, ok := e.ByID(decision.RuleID(name))
		if !ok {
			return nil, fmt.Errorf("rule %q: %w", name, ErrUnknownRule)
		}
		out = append(out, r)
	}
	return out, nil
}

// #endregion registry

// #region helpers
func (e *Evaluator) traced(rule decision.RuleID, d decision.Decision, remaining crecord.Record) {
	e.logger.Debug("rule applied",
		zap.String("rule", string(rule)),
		zap.Bool("value", d.Bool()),
		zap.Int("remaining_cases", len(remaining.Cases)),
		zap.Int("remaining_charges", remaining.ChargeCount()),
	)
}

func (e *Evaluator) issues(errs []error) {
	if len(errs) > 0 {
		e.Sink.Issues(errs)
	}
}

// #endregion helpers
