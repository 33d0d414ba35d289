package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f64(v float64) *float64 { return &v }

func sampleRecord() crecord.Record {
	d := crecord.MustDate("2015-01-01")
	return crecord.Record{
		Person: crecord.Person{FirstName: "Jane", LastName: "Smorp", DateOfBirth: crecord.MustDate("1980-01-01")},
		Cases: []crecord.Case{{
			DocketNumber:    "CP-1",
			Status:          "Closed",
			TotalFines:      f64(50),
			FinesPaid:       f64(50),
			ArrestDate:      d,
			DispositionDate: d,
			Charges: []crecord.Charge{
				{Offense: "Theft", Grade: "M2", Statute: "18 § 3921", Sequence: "1", Disposition: "Nolle Prossed"},
				{Offense: "Trespass", Grade: "S", Statute: "18 § 3503", Sequence: "2", Disposition: "Guilty"},
			},
		}},
	}
}

// writeConfig writes a config pinning the evaluation date and quiet logging.
func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "screener.yaml")
	require.NoError(t, os.WriteFile(path, []byte("as_of: \"2026-10-14\"\nlog_level: error\n"), 0o644))
	return path
}

func writeRecord(t *testing.T, dir string, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	path := filepath.Join(dir, "record.json")
	require.NoError(t, os.WriteFile(path, b, 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestScreenJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	rec := writeRecord(t, dir, sampleRecord())

	out, err := execute(t, "", "screen", "-c", cfg, "-r", rec, "-f", "json")
	require.NoError(t, err)

	var report struct {
		AsOf string `json:"as_of"`
		Summary struct {
			ClearableCharges int `json:"clearable_charges"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2026-10-14", report.AsOf)
	assert.Equal(t, 2, report.Summary.ClearableCharges)
}

func TestScreenText(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	rec := writeRecord(t, dir, sampleRecord())

	out, err := execute(t, "", "screen", "-c", cfg, "-r", rec, "--as-of", "2017-01-01")
	require.NoError(t, err)
	assert.Contains(t, out, "as of 2017-01-01")
	assert.Contains(t, out, "CP-1")
	assert.Contains(t, out, "1. Theft (M2)")
}

func TestScreenStdinBatch(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	bad := sampleRecord()
	bad.Person.FirstName = ""
	b, err := json.Marshal([]crecord.Record{sampleRecord(), bad})
	require.NoError(t, err)

	out, err := execute(t, string(b), "screen", "-c", cfg, "-r", "-", "-f", "json")
	require.NoError(t, err)

	var items []struct {
		Index int    `json:"index"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 2)
	assert.Empty(t, items[0].Error)
	assert.Contains(t, items[1].Error, "invalid record")
}

func TestScreenErrors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	rec := writeRecord(t, dir, sampleRecord())
	invalid := sampleRecord()
	invalid.Cases[0].DocketNumber = ""
	invalidPath := filepath.Join(dir, "invalid.json")
	b, err := json.Marshal(invalid)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(invalidPath, b, 0o644))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing record flag", []string{"screen", "-c", cfg}, "required flag"},
		{"bad format", []string{"screen", "-c", cfg, "-r", rec, "-f", "xml"}, "unknown format"},
		{"bad date", []string{"screen", "-c", cfg, "-r", rec, "--as-of", "tomorrow"}, "--as-of"},
		{"missing file", []string{"screen", "-c", cfg, "-r", filepath.Join(dir, "nope.json")}, "read record"},
		{"invalid record", []string{"screen", "-c", cfg, "-r", invalidPath}, "invalid record"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestAuditRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	rec := writeRecord(t, dir, sampleRecord())
	db := filepath.Join(dir, "audit.db")

	out, err := execute(t, "", "screen", "-c", cfg, "--db", db, "-r", rec, "-f", "json")
	require.NoError(t, err)
	var report struct {
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	require.NotEmpty(t, report.RunID)

	// 1. list
	out, err = execute(t, "", "audit", "list", "-c", cfg, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, report.RunID)
	assert.Contains(t, out, "Jane Smorp")

	// 2. show as JSON
	out, err = execute(t, "", "audit", "show", report.RunID, "-c", cfg, "--db", db, "-f", "json")
	require.NoError(t, err)
	var shown runView
	require.NoError(t, json.Unmarshal([]byte(out), &shown))
	assert.Equal(t, report.RunID, shown.RunID)
	assert.True(t, shown.Passed)
	assert.NotEmpty(t, shown.Decisions)
	assert.Equal(t, "filter_traffic_cases", shown.Decisions[0].Rule)

	// 3. show as text
	out, err = execute(t, "", "audit", "show", report.RunID, "-c", cfg, "--db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "Run "+report.RunID+" for Jane Smorp as of 2026-10-14")
	assert.Contains(t, out, "expunge_nonconvictions")

	// 4. export
	out, err = execute(t, "", "audit", "export", "-c", cfg, "--db", db)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"run_id":"`+report.RunID+`"`)
}

func TestAuditRequiresDB(t *testing.T) {
	cfg := writeConfig(t, t.TempDir())
	_, err := execute(t, "", "audit", "list", "-c", cfg)
	require.ErrorIs(t, err, errNoAuditDB)
}

func TestAuditShowUnknownRun(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)

	_, err := execute(t, "", "audit", "show", "missing", "-c", cfg, "--db", filepath.Join(dir, "audit.db"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run not found")
}

func TestAuditSealedWithKeyFile(t *testing.T) {
	dir := t.TempDir()
	cfg := filepath.Join(dir, "screener.yaml")
	key := filepath.Join(dir, "audit.key")
	db := filepath.Join(dir, "audit.db")
	body := "as_of: \"2026-10-14\"\nlog_level: error\naudit_db: " + db + "\naudit_key_file: " + key + "\n"
	require.NoError(t, os.WriteFile(cfg, []byte(body), 0o644))
	rec := writeRecord(t, dir, sampleRecord())

	_, err := execute(t, "", "screen", "-c", cfg, "-r", rec, "-f", "json")
	require.NoError(t, err)
	assert.FileExists(t, key)

	out, err := execute(t, "", "audit", "list", "-c", cfg, "-f", "json")
	require.NoError(t, err)
	var runs []runView
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, "Jane Smorp", runs[0].Person)

	for _, path := range []string{db, db + "-wal"} {
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		require.NoError(t, err)
		assert.NotContains(t, string(raw), "Smorp", path)
	}
}
