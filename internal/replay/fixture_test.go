package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/audit"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
)

// #region fixture-tests

// TestFixture_Screening loads the screening fixture, replays every case and
// expects each to match. This is the regression baseline: a change to a
// threshold or a rule's reasoning shows up here first.
func TestFixture_Screening(t *testing.T) {
	f, err := LoadFixture(filepath.Join("testdata", "screening.json"))
	if err != nil {
		t.Fatalf("LoadFixture: %v", err)
	}

	results := Replay(f.Inputs(), f.Config.ToReplayConfig(f.AsOf))

	if len(results) != len(f.Cases) {
		t.Fatalf("expected %d results, got %d", len(f.Cases), len(results))
	}
	for i, r := range results {
		if r.Name != f.Cases[i].Name {
			t.Errorf("case %d: expected name=%s, got %s", i, f.Cases[i].Name, r.Name)
		}
		if r.Action != ActionMatch {
			t.Errorf("case %s: expected action=match, got %s (reason: %s)", r.Name, r.Action, r.Reason)
		}
	}
}

// TestLoadFixture_NotFound verifies error on missing file.
func TestLoadFixture_NotFound(t *testing.T) {
	_, err := LoadFixture("testdata/nonexistent.json")
	if err == nil {
		t.Fatal("expected error for missing file, got nil")
	}
}

// TestLoadFixture_Malformed verifies error on invalid JSON.
func TestLoadFixture_Malformed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte("{not valid json}"), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	_, err := LoadFixture(path)
	if err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestLoadFixture_RequiresAsOf(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "undated.json")
	if err := os.WriteFile(path, []byte(`{"description": "no date", "cases": []}`), 0644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}

	if _, err := LoadFixture(path); err == nil {
		t.Fatal("expected error for a fixture without as_of")
	}
}

func TestFixtureConfig_Overrides(t *testing.T) {
	off := false
	fc := FixtureConfig{Rules: []string{"expunge_nonconvictions"}, Autosealing: &off, TrafficMarker: "MT"}

	config := fc.ToReplayConfig(crecord.NewDate(2026, 10, 14))

	if len(config.RuleNames) != 1 || config.RuleNames[0] != "expunge_nonconvictions" {
		t.Fatalf("unexpected rules %v", config.RuleNames)
	}
	if config.Autosealing {
		t.Fatal("expected autosealing off")
	}
	if config.Rules.TrafficMarker != "MT" {
		t.Fatalf("expected marker MT, got %s", config.Rules.TrafficMarker)
	}
	if config.Rules.SeniorAge != 70 {
		t.Fatalf("unset thresholds should keep defaults, got senior age %d", config.Rules.SeniorAge)
	}
}

// TestFromRun_ReproducesStoredSummary round-trips a screening through its
// audited JSON forms and checks the replay reproduces it.
func TestFromRun_ReproducesStoredSummary(t *testing.T) {
	rec := sampleRecord()
	config := DefaultReplayConfig(asOf)
	first := Replay([]Input{{Name: "original", Record: rec}}, config)[0]
	if first.Action != ActionMatch {
		t.Fatalf("expected match, got %s (%s)", first.Action, first.Reason)
	}

	recordJSON, err := crecord.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	summaryJSON, err := json.Marshal(first.Summary)
	if err != nil {
		t.Fatalf("marshal summary: %v", err)
	}
	in, err := FromRun(audit.Run{RunID: "run-1", AsOf: asOf, RecordJSON: string(recordJSON), SummaryJSON: string(summaryJSON)})
	if err != nil {
		t.Fatalf("FromRun: %v", err)
	}

	r := Replay([]Input{in}, DefaultReplayConfig(crecord.Date{}))[0]
	if r.Action != ActionMatch {
		t.Fatalf("expected the stored summary to be reproduced, got %s: %s", r.Action, r.Reason)
	}
}

func TestFromRun_BadRecord(t *testing.T) {
	_, err := FromRun(audit.Run{RunID: "run-1", RecordJSON: "{", SummaryJSON: "{}"})
	if err == nil {
		t.Fatal("expected error for a malformed record")
	}
}

// #endregion fixture-tests
