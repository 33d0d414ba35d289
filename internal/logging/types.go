package logging

import "time"

// #region level
// Level grades a diagnostic entry.
type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// #endregion level

// #region entry
// Entry is one diagnostic collected while screening a record.
type Entry struct {
	Level   Level  `json:"level"`
	Code    string `json:"code"`              // e.g. "unknown_grade", "missing_disposition"
	Subject string `json:"subject,omitempty"` // docket/charge the entry concerns
	Message string `json:"message"`
}

// #endregion entry

// #region provenance-entry
// ProvenanceEntry is a single row in the decision_log table: one top-level
// rule decision of one screening run.
type ProvenanceEntry struct {
	RunID        string
	Rule         string
	DecisionName string
	Truthy       bool
	DecisionJSON string
	CreatedAt    time.Time
}

// #endregion provenance-entry
