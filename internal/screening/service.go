package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/analysis"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/config"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/eval"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/metrics"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/rules"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// #region types
// Report is everything one screening produced.
type Report struct {
	RunID       string              `json:"run_id"`
	AsOf        crecord.Date        `json:"as_of"`
	Summary     analysis.Summary    `json:"summary"`
	Decisions   []decision.Decision `json:"decisions"`
	Petitions   []petition.Petition `json:"petitions"`
	Remaining   crecord.Record      `json:"remaining"`
	Diagnostics []logging.Entry     `json:"diagnostics"`
	Eval        eval.EvalResult     `json:"eval"`
}

// BatchItem is one record's outcome within a batch. Exactly one of Report
// and Error is set.
type BatchItem struct {
	Index  int     `json:"index"`
	Report *Report `json:"report,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

// WithMetrics records screenings on m.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithStore writes every successful screening to the audit store.
func WithStore(st *audit.Store) Option { return func(s *Service) { s.store = st } }

// WithClock replaces time.Now, for run ids and the default as-of date.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// #endregion types

// #region service
// Service screens records with a fixed configuration. It is safe for
// concurrent use; every screening gets its own evaluator and sink.
type Service struct {
	cfg     config.Config
	logger  *zap.Logger
	metrics *metrics.Metrics
	store   *audit.Store
	now     func() time.Time
	harness *eval.EvalHarness
}

// New builds a service. cfg must already be valid.
func New(cfg config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:     cfg,
		now:     time.Now,
		harness: eval.NewEvalHarness(eval.DefaultEvalConfig()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.logger = s.logger.Named("screening")
	return s
}

// Config returns the configuration the service screens with.
func (s *Service) Config() config.Config { return s.cfg }

// Screen screens rec as of the configured date.
func (s *Service) Screen(ctx context.Context, rec crecord.Record) (Report, error) {
	return s.ScreenAt(ctx, rec, crecord.Date{})
}

// ScreenAt screens rec as of asOf, or the configured date when asOf is zero.
func (s *Service) ScreenAt(ctx context.Context, rec crecord.Record, asOf crecord.Date) (Report, error) {
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	start := s.now()
	if asOf.IsZero() {
		asOf = s.cfg.AsOfDate(start)
	}

	// 1. Validate
	if err := crecord.Validate(rec); err != nil {
		s.metrics.ObserveScreening(metrics.OutcomeInvalid, 0, 0)
		return Report{}, fmt.Errorf("validate: %w", err)
	}

	runID := ulid.MustNew(ulid.Timestamp(start), ulid.DefaultEntropy()).String()
	logger := s.logger.With(zap.String("run_id", runID))
	sink := logging.NewSink(logger)
	sink.Issues(rec.DataIssues())

	// 2. Analyze
	e := rules.NewEvaluator(asOf,
		rules.WithConfig(s.cfg.RuleConfig()),
		rules.WithAttorney(s.cfg.Attorney),
		rules.WithSink(sink),
		rules.WithLogger(logger),
	)
	a, err := analysis.Screen(rec, e, s.cfg.Rules, s.cfg.Autosealing, logger)
	if err != nil {
		s.metrics.ObserveScreening(metrics.OutcomeError, 0, 0)
		return Report{}, fmt.Errorf("screen: %w", err)
	}

	// 3. Summarize and check
	summary := a.Summarize()
	summary.RunID = runID
	result := s.harness.Run(a, summary)
	if !result.Passed {
		s.metrics.EvalFailed()
		logger.Warn("consistency check failed", zap.String("reason", result.Reason))
	}

	report := Report{
		RunID:       runID,
		AsOf:        asOf,
		Summary:     summary,
		Decisions:   a.Decisions(),
		Petitions:   collectPetitions(a.Decisions()),
		Remaining:   a.Remaining(),
		Diagnostics: sink.Entries(),
		Eval:        result,
	}
	for _, d := range report.Diagnostics {
		s.metrics.Diagnostic(d.Code)
	}
	s.metrics.ObserveDecisions(report.Decisions)
	s.metrics.ObserveScreening(metrics.OutcomeOK, s.now().Sub(start), summary.ClearableCharges)

	// 4. Audit
	if s.store != nil {
		if err := s.record(rec, report); err != nil {
			return Report{}, err
		}
	}

	logger.Info("screened",
		zap.String("as_of", asOf.String()),
		zap.Int("cases", len(rec.Cases)),
		zap.Int("clearable_cases", summary.ClearableCases),
		zap.Int("clearable_charges", summary.ClearableCharges),
		zap.Int("petitions", len(report.Petitions)),
		zap.Bool("eval_passed", result.Passed),
	)
	return report, nil
}

// #endregion service

// #region audit
func (s *Service) record(rec crecord.Record, r Report) error {
	recordJSON, err := crecord.Encode(rec)
	if err != nil {
		return err
	}
	summaryJSON, err := json.Marshal(r.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	evalJSON, err := json.Marshal(r.Eval)
	if err != nil {
		return fmt.Errorf("marshal eval: %w", err)
	}
	err = s.store.RecordRun(audit.Run{
		RunID:       r.RunID,
		AsOf:        r.AsOf,
		Person:      rec.Person.FullName(),
		RecordJSON:  string(recordJSON),
		SummaryJSON: string(summaryJSON),
		EvalJSON:    string(evalJSON),
		Petitions:   r.Petitions,
		Passed:      r.Eval.Passed,
		CreatedAt:   s.now().UTC(),
	}, r.Decisions)
	if err != nil {
		return fmt.Errorf("audit run %s: %w", r.RunID, err)
	}
	return nil
}

// #endregion audit

// #region helpers
func collectPetitions(ds []decision.Decision) []petition.Petition {
	out := []petition.Petition{}
	for _, d := range ds {
		if ps, ok := d.Value.([]petition.Petition); ok {
			out = append(out, ps...)
		}
	}
	return out
}

// #endregion helpers
