package logging

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"
)

// #region helpers
func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	_, err = db.Exec(`CREATE TABLE decision_log (
		run_id        TEXT NOT NULL,
		rule          TEXT NOT NULL,
		decision_name TEXT NOT NULL,
		truthy        INTEGER NOT NULL,
		decision_json TEXT,
		created_at    TEXT NOT NULL
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

// #endregion helpers

// #region log-decision-tests
func TestLogDecision_Success(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	entry := ProvenanceEntry{
		RunID:        "01HZZZRUN",
		Rule:         "expunge_nonconvictions",
		DecisionName: "Expungements of nonconvictions.",
		Truthy:       true,
		DecisionJSON: `{"name":"Expungements of nonconvictions."}`,
		CreatedAt:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	if err := LogDecision(db, entry); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM decision_log").Scan(&count)
	if count != 1 {
		t.Errorf("expected 1 row, got %d", count)
	}

	var runID, rule string
	var truthy bool
	db.QueryRow("SELECT run_id, rule, truthy FROM decision_log").Scan(&runID, &rule, &truthy)
	if runID != "01HZZZRUN" {
		t.Errorf("expected run_id '01HZZZRUN', got %q", runID)
	}
	if rule != "expunge_nonconvictions" {
		t.Errorf("expected rule 'expunge_nonconvictions', got %q", rule)
	}
	if !truthy {
		t.Error("expected truthy=true")
	}
}

func TestLogDecision_RolledBackTx(t *testing.T) {
	db := setupDB(t)
	defer db.Close()
	db.SetMaxOpenConns(1)

	tx, err := db.Begin()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := LogDecision(tx, ProvenanceEntry{RunID: "r5", Rule: "seal_convictions", DecisionName: "Sealing"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback: %v", err)
	}

	var count int
	db.QueryRow("SELECT COUNT(*) FROM decision_log").Scan(&count)
	if count != 0 {
		t.Errorf("expected the rollback to drop the row, got %d", count)
	}
}

func TestLogDecision_ZeroCreatedAt(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	before := time.Now().UTC()
	err := LogDecision(db, ProvenanceEntry{RunID: "r2", Rule: "seal_convictions", DecisionName: "Sealing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var createdAtStr string
	db.QueryRow("SELECT created_at FROM decision_log").Scan(&createdAtStr)
	createdAt, err := time.Parse(time.RFC3339Nano, createdAtStr)
	if err != nil {
		t.Fatalf("parse created_at: %v", err)
	}
	if createdAt.Before(before) {
		t.Error("expected auto-filled created_at to be >= test start time")
	}
}

func TestLogDecision_EmptyJSONIsNull(t *testing.T) {
	db := setupDB(t)
	defer db.Close()

	if err := LogDecision(db, ProvenanceEntry{RunID: "r3", Rule: "expunge_deceased", DecisionName: "d"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decisionJSON sql.NullString
	db.QueryRow("SELECT decision_json FROM decision_log").Scan(&decisionJSON)
	if decisionJSON.Valid {
		t.Error("expected NULL decision_json for empty string")
	}
}

func TestLogDecision_Error(t *testing.T) {
	db := setupDB(t)
	db.Close() // close to force error

	if err := LogDecision(db, ProvenanceEntry{RunID: "r4", Rule: "x", DecisionName: "x"}); err == nil {
		t.Fatal("expected error on closed db")
	}
}

// #endregion log-decision-tests

// #region null-if-empty-tests
func TestNullIfEmpty(t *testing.T) {
	if result := nullIfEmpty(""); result != nil {
		t.Errorf("expected nil for empty string, got %v", result)
	}
	if result := nullIfEmpty("hello"); result != "hello" {
		t.Errorf("expected 'hello', got %v", result)
	}
}

// #endregion null-if-empty-tests
