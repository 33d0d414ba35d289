package audit

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/cipher"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
)

func tempDB(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := NewStore(filepath.Join(dir, "audit.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRun(id string, created time.Time) Run {
	person := crecord.Person{FirstName: "Jane", LastName: "Smorp"}
	c := crecord.Case{
		DocketNumber: "CP-51-CR-0000001-2010",
		Charges:      []crecord.Charge{{Offense: "Theft", Sequence: "1", Disposition: "Nolle Prossed"}},
	}
	return Run{
		RunID:       id,
		AsOf:        crecord.NewDate(2026, 10, 14),
		Person:      person.FullName(),
		RecordJSON:  `{"cases":[]}`,
		SummaryJSON: `{"clearable_cases":1}`,
		EvalJSON:    `{"passed":true}`,
		Petitions: petition.Petitions{
			petition.NewExpungement(person, petition.Attorney{}, petition.TypeFull, petition.ProcedureNonsummary, "", c),
		},
		Passed:    true,
		CreatedAt: created,
	}
}

func TestRecordAndGetRun(t *testing.T) {
	s := tempDB(t)
	run := sampleRun("run-1", time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))

	if err := s.RecordRun(run, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Person != "Jane Smorp" {
		t.Fatalf("expected Jane Smorp, got %q", got.Person)
	}
	if !got.AsOf.Equal(run.AsOf) {
		t.Fatalf("expected as_of %s, got %s", run.AsOf, got.AsOf)
	}
	if !got.Passed || got.EvalJSON != run.EvalJSON {
		t.Fatalf("unexpected eval fields: passed=%v eval=%q", got.Passed, got.EvalJSON)
	}
	if len(got.Petitions) != 1 || got.Petitions[0].ID != run.Petitions[0].ID {
		t.Fatalf("petitions did not round trip: %+v", got.Petitions)
	}
	if !got.CreatedAt.Equal(run.CreatedAt) {
		t.Fatalf("expected created %v, got %v", run.CreatedAt, got.CreatedAt)
	}
}

func TestGetRunNotFound(t *testing.T) {
	s := tempDB(t)

	_, err := s.GetRun("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEmptyEvalIsNull(t *testing.T) {
	s := tempDB(t)
	run := sampleRun("run-1", time.Time{})
	run.EvalJSON = ""
	run.Petitions = nil

	if err := s.RecordRun(run, nil); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	var isNull bool
	if err := s.DB().QueryRow(`SELECT eval_json IS NULL FROM screening_runs WHERE run_id = ?`, "run-1").Scan(&isNull); err != nil {
		t.Fatalf("query: %v", err)
	}
	if !isNull {
		t.Fatal("expected NULL eval_json")
	}

	got, err := s.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.EvalJSON != "" || len(got.Petitions) != 0 {
		t.Fatalf("unexpected run %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be filled in")
	}
}

func TestListRunsNewestFirst(t *testing.T) {
	s := tempDB(t)
	base := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-a", "run-b", "run-c"} {
		if err := s.RecordRun(sampleRun(id, base.Add(time.Duration(i)*time.Minute)), nil); err != nil {
			t.Fatalf("RecordRun %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].RunID != "run-c" || runs[1].RunID != "run-b" {
		t.Fatalf("unexpected order %s, %s", runs[0].RunID, runs[1].RunID)
	}
}

func TestDecisionsAreLoggedInOrder(t *testing.T) {
	s := tempDB(t)
	first := decision.ForRule(decision.RuleFilterTrafficCases, decision.KindFilter,
		"Filter traffic cases", []crecord.Case{}, nil)
	second := decision.ForRule(decision.RuleExpungeNonconvictions, decision.KindPetition,
		"Expungements for nonconvictions.", []petition.Petition{{}}, nil)

	if err := s.RecordRun(sampleRun("run-1", time.Time{}), []decision.Decision{first, second}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	entries, err := s.Decisions("run-1")
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Rule != string(decision.RuleFilterTrafficCases) || entries[0].Truthy {
		t.Fatalf("unexpected first entry %+v", entries[0])
	}
	if entries[1].Rule != string(decision.RuleExpungeNonconvictions) || !entries[1].Truthy {
		t.Fatalf("unexpected second entry %+v", entries[1])
	}
	if !strings.Contains(entries[1].DecisionJSON, `"rule":"expunge_nonconvictions"`) {
		t.Fatalf("decision json missing rule: %s", entries[1].DecisionJSON)
	}
}

func TestRecordRunIsAtomic(t *testing.T) {
	s := tempDB(t)
	good := decision.ForRule(decision.RuleFilterTrafficCases, decision.KindFilter,
		"Filter traffic cases", []crecord.Case{}, nil)
	bad := decision.New("Unencodable", func() {}, "")

	if err := s.RecordRun(sampleRun("run-1", time.Time{}), []decision.Decision{good, bad}); err == nil {
		t.Fatal("expected an error for an unencodable decision")
	}

	if _, err := s.GetRun("run-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("a failed run should leave no row, got %v", err)
	}
	entries, err := s.Decisions("run-1")
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("a failed run should leave no decisions, got %d", len(entries))
	}

	// The store is still usable afterwards.
	if err := s.RecordRun(sampleRun("run-1", time.Time{}), []decision.Decision{good}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
}

func TestDecisionsScopedToRun(t *testing.T) {
	s := tempDB(t)
	d := decision.ForRule(decision.RuleSealConvictions, decision.KindPetition, "Sealing", nil, nil)

	err := s.RecordRun(Run{RunID: "run-1", Person: "x", RecordJSON: "{}", SummaryJSON: "{}"}, []decision.Decision{d})
	if err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	entries, err := s.Decisions("other")
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries for another run, got %d", len(entries))
	}
}

func TestSealedColumns(t *testing.T) {
	sealer, err := cipher.FromKeyFile(filepath.Join(t.TempDir(), "audit.key"))
	if err != nil {
		t.Fatalf("sealer: %v", err)
	}
	path := filepath.Join(t.TempDir(), "audit.db")
	s, err := NewStore(path, WithSealer(sealer))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer s.Close()

	run := sampleRun("run-sealed", time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC))
	d := decision.ForRule(decision.RuleExpungeNonconvictions, decision.KindPetition, "Expungements for nonconvictions.", []petition.Petition(run.Petitions), nil)
	if err := s.RecordRun(run, []decision.Decision{d}); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}

	// 1. Raw columns hold no personal data
	var person, record, petitions, decisionJSON string
	if err := s.DB().QueryRow(`SELECT person, record_json, petitions FROM screening_runs`).Scan(&person, &record, &petitions); err != nil {
		t.Fatalf("raw row: %v", err)
	}
	if err := s.DB().QueryRow(`SELECT decision_json FROM decision_log`).Scan(&decisionJSON); err != nil {
		t.Fatalf("raw decision: %v", err)
	}
	for name, v := range map[string]string{"person": person, "record": record, "petitions": petitions, "decision": decisionJSON} {
		if !cipher.IsSealed(v) || strings.Contains(v, "Smorp") {
			t.Errorf("%s column not sealed: %q", name, v)
		}
	}

	// 2. Reads decrypt transparently
	got, err := s.GetRun("run-sealed")
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if got.Person != "Jane Smorp" || got.RecordJSON != run.RecordJSON || len(got.Petitions) != 1 {
		t.Fatalf("sealed run did not round trip: %+v", got)
	}
	entries, err := s.Decisions("run-sealed")
	if err != nil {
		t.Fatalf("Decisions: %v", err)
	}
	if len(entries) != 1 || !strings.Contains(entries[0].DecisionJSON, "Smorp") {
		t.Fatalf("decision did not open: %+v", entries)
	}

	// 3. Without the key the run cannot be read
	plain, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer plain.Close()
	if _, err := plain.GetRun("run-sealed"); !errors.Is(err, cipher.ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt without key, got %v", err)
	}
}
