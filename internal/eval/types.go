package eval

// #region eval-config
// EvalConfig holds thresholds for post-screening consistency checks.
type EvalConfig struct {
	MaxSummaryErrors int  // fail if the summary reports more errors than this
	RequireCoverage  bool // fail if a record case is missing from the summary
}

// DefaultEvalConfig tolerates no summary errors.
func DefaultEvalConfig() EvalConfig {
	return EvalConfig{
		MaxSummaryErrors: 0,
		RequireCoverage:  true,
	}
}

// #endregion eval-config

// #region eval-metric
// EvalMetric captures a single consistency check result.
type EvalMetric struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Pass  bool    `json:"pass"`
}

// #endregion eval-metric

// #region eval-result
// EvalResult is the output of a consistency run.
type EvalResult struct {
	Passed  bool         `json:"passed"`
	Metrics []EvalMetric `json:"metrics"`
	Reason  string       `json:"reason"`
}

// #endregion eval-result
