package audit

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/cipher"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/logging"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS screening_runs (
	run_id        TEXT PRIMARY KEY,
	as_of         TEXT NOT NULL,
	person        TEXT NOT NULL,
	record_json   TEXT NOT NULL,
	summary_json  TEXT NOT NULL,
	eval_json     TEXT,
	petitions     TEXT NOT NULL,
	passed        INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS decision_log (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id        TEXT NOT NULL,
	rule          TEXT NOT NULL,
	decision_name TEXT NOT NULL,
	truthy        INTEGER NOT NULL,
	decision_json TEXT,
	created_at    TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES screening_runs(run_id)
);
`

// #endregion schema

// #region store-struct
// Store keeps an audit trail of screening runs in SQLite. Writes are
// serialized; SQLite allows one writer at a time.
//
// With a sealer, the columns that identify the person (person, record_json,
// petitions, decision_json) are encrypted at rest.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	sealer *cipher.Sealer
}

// Option configures a Store.
type Option func(*Store)

// WithSealer encrypts personal data on write and decrypts it on read.
func WithSealer(s *cipher.Sealer) Option { return func(st *Store) { st.sealer = s } }

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string, opts ...Option) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s := &Store{db: db}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// OpenStore opens dbPath, sealing personal data with the key in keyFile
// when keyFile is set. A missing key file is created.
func OpenStore(dbPath, keyFile string) (*Store, error) {
	if keyFile == "" {
		return NewStore(dbPath)
	}
	sealer, err := cipher.FromKeyFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("audit key: %w", err)
	}
	return NewStore(dbPath, WithSealer(sealer))
}

// #endregion constructor

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #region record-run
// RecordRun inserts a run and one decision_log row per top-level decision in
// a single transaction.
func (s *Store) RecordRun(run Run, decisions []decision.Decision) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	var evalJSON any
	if run.EvalJSON != "" {
		evalJSON = run.EvalJSON
	}
	petitions, err := run.Petitions.Value()
	if err != nil {
		return fmt.Errorf("petitions: %w", err)
	}
	sealed, err := s.seal(run.Person, run.RecordJSON, petitions.(string))
	if err != nil {
		return err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO screening_runs (run_id, as_of, person, record_json, summary_json, eval_json, petitions, passed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.AsOf.String(), sealed[0], sealed[1], run.SummaryJSON, evalJSON,
		sealed[2], run.Passed, run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, d := range decisions {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("marshal decision %s: %w", d.Rule, err)
		}
		decisionJSON, err := s.sealer.Seal(string(data))
		if err != nil {
			return fmt.Errorf("seal decision %s: %w", d.Rule, err)
		}
		err = logging.LogDecision(tx, logging.ProvenanceEntry{
			RunID:        run.RunID,
			Rule:         string(d.Rule),
			DecisionName: d.Name,
			Truthy:       d.Bool(),
			DecisionJSON: decisionJSON,
			CreatedAt:    run.CreatedAt,
		})
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// #endregion record-run

// #region get-run
// GetRun retrieves a run by id.
func (s *Store) GetRun(id string) (Run, error) {
	row := s.db.QueryRow(
		`SELECT run_id, as_of, person, record_json, summary_json, eval_json, petitions, passed, created_at
		 FROM screening_runs WHERE run_id = ?`, id,
	)
	run, err := s.scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("get run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// #endregion get-run

// #region list-runs
// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT run_id, as_of, person, record_json, summary_json, eval_json, petitions, passed, created_at
		 FROM screening_runs ORDER BY created_at DESC, run_id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// #endregion list-runs

// #region decisions
// Decisions returns the decision_log rows of a run in insertion order.
func (s *Store) Decisions(runID string) ([]logging.ProvenanceEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, rule, decision_name, truthy, decision_json, created_at
		 FROM decision_log WHERE run_id = ? ORDER BY id ASC`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var entries []logging.ProvenanceEntry
	for rows.Next() {
		var (
			e          logging.ProvenanceEntry
			data       sql.NullString
			createdStr string
		)
		if err := rows.Scan(&e.RunID, &e.Rule, &e.DecisionName, &e.Truthy, &data, &createdStr); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if data.Valid {
			if e.DecisionJSON, err = s.sealer.Open(data.String); err != nil {
				return nil, fmt.Errorf("decision %s: %w", e.Rule, err)
			}
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion decisions

// #region scan
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRun(row scanner) (Run, error) {
	var (
		run                       Run
		person, record, petitions string
		asOf, createdStr          string
		evalJSON                  sql.NullString
	)
	err := row.Scan(&run.RunID, &asOf, &person, &record, &run.SummaryJSON,
		&evalJSON, &petitions, &run.Passed, &createdStr)
	if err != nil {
		return Run{}, err
	}
	opened, err := s.open(person, record, petitions)
	if err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.RunID, err)
	}
	run.Person, run.RecordJSON = opened[0], opened[1]
	if err := run.Petitions.Scan(opened[2]); err != nil {
		return Run{}, fmt.Errorf("run %s: %w", run.RunID, err)
	}
	if evalJSON.Valid {
		run.EvalJSON = evalJSON.String
	}
	if asOf != "" {
		if run.AsOf, err = crecord.ParseDate(asOf); err != nil {
			return Run{}, fmt.Errorf("as_of: %w", err)
		}
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return run, nil
}

func (s *Store) seal(values ...string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		sealed, err := s.sealer.Seal(v)
		if err != nil {
			return nil, fmt.Errorf("seal: %w", err)
		}
		out[i] = sealed
	}
	return out, nil
}

func (s *Store) open(values ...string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		opened, err := s.sealer.Open(v)
		if err != nil {
			return nil, err
		}
		out[i] = opened
	}
	return out, nil
}

// #endregion scan
