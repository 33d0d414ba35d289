package analysis

import (
	"strings"
	"testing"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/rules"
	"github.com/google/go-cmp/cmp"
)

var asOf = crecord.NewDate(2026, 10, 14)

func f64(v float64) *float64 { return &v }

func charge(seq, grade, disposition string) crecord.Charge {
	return crecord.Charge{
		Offense:     "Offense " + seq,
		Grade:       grade,
		Statute:     "18 § 3921",
		Sequence:    seq,
		Disposition: disposition,
	}
}

func closedCase(docket, disposed string, charges ...crecord.Charge) crecord.Case {
	d := crecord.MustDate(disposed)
	return crecord.Case{
		DocketNumber:    docket,
		Status:          "Closed",
		Charges:         charges,
		TotalFines:      f64(100),
		FinesPaid:       f64(100),
		ArrestDate:      d,
		DispositionDate: d,
	}
}

// helper: a nonconviction, an F2 and an old summary conviction.
func mixedRecord() crecord.Record {
	return crecord.Record{
		Person: crecord.Person{FirstName: "Jane", LastName: "Smorp", DateOfBirth: crecord.MustDate("1980-01-01")},
		Cases: []crecord.Case{
			closedCase("CP-1", "2020-01-01", charge("1", "M2", "Nolle Prossed"), charge("2", "F2", "Guilty")),
			closedCase("CP-2", "2015-01-01", charge("1", "S", "Guilty")),
		},
	}
}

func screen(t *testing.T, rec crecord.Record, autoseal bool) *Analysis {
	t.Helper()
	a, err := Screen(rec, rules.NewEvaluator(asOf), DefaultRuleNames(), autoseal, nil)
	if err != nil {
		t.Fatalf("Screen: %v", err)
	}
	return a
}

// #region analysis-tests
func TestAnalysisSnapshotsInput(t *testing.T) {
	rec := mixedRecord()
	a := New(rec, nil)
	rec.Cases[0].Charges[0].Disposition = "Guilty"
	rec.Cases = append(rec.Cases, closedCase("CP-3", "2020-01-01"))

	if got := a.Original(); len(got.Cases) != 2 || got.Cases[0].Charges[0].Disposition != "Nolle Prossed" {
		t.Fatalf("original changed with the input: %+v", got.Cases)
	}
}

func TestApplyRecordsDecisionsInOrder(t *testing.T) {
	e := rules.NewEvaluator(asOf)
	a := New(mixedRecord(), nil).Apply(e.FilterTrafficCases).Apply(e.ExpungeNonconvictions)

	ds := a.Decisions()
	if len(ds) != 2 {
		t.Fatalf("expected 2 decisions, got %d", len(ds))
	}
	if ds[0].Rule != decision.RuleFilterTrafficCases || ds[1].Rule != decision.RuleExpungeNonconvictions {
		t.Fatalf("unexpected order %s, %s", ds[0].Rule, ds[1].Rule)
	}
	if n := a.Remaining().ChargeCount(); n != 2 {
		t.Fatalf("expected 2 charges left, got %d", n)
	}
	if n := a.Original().ChargeCount(); n != 3 {
		t.Fatalf("original should keep 3 charges, got %d", n)
	}
}

func TestInspectLeavesRemainder(t *testing.T) {
	e := rules.NewEvaluator(asOf)
	a := New(mixedRecord(), nil).Apply(e.ExpungeNonconvictions)
	before := a.Remaining()
	a.Inspect(e.AutosealingEligibility)

	if diff := cmp.Diff(before, a.Remaining()); diff != "" {
		t.Fatalf("inspect changed the remainder (-want +got):\n%s", diff)
	}
	part := a.Decisions()[1].Value.(decision.Partition)
	// The nonconviction left the remainder but is still inspected.
	if len(part.Eligible) == 0 || part.Eligible[0].Charges[0].Sequence != "1" {
		t.Fatalf("expected the original record to be inspected, got %+v", part.Eligible)
	}
}

func TestScreenRejectsUnknownRule(t *testing.T) {
	if _, err := Screen(mixedRecord(), rules.NewEvaluator(asOf), []string{"pardon_everyone"}, false, nil); err == nil {
		t.Fatal("expected an error for an unknown rule")
	}
}

func TestRulesAreMonotonic(t *testing.T) {
	first := screen(t, mixedRecord(), false)
	second := screen(t, first.Remaining(), false)

	if diff := cmp.Diff(first.Remaining(), second.Remaining()); diff != "" {
		t.Fatalf("second pass moved more cases (-first +second):\n%s", diff)
	}
	for _, d := range second.Decisions() {
		if ps, ok := d.Value.([]petition.Petition); ok && len(ps) > 0 {
			t.Fatalf("%s proposed %d petitions on the second pass", d.Rule, len(ps))
		}
	}
}

// #endregion analysis-tests

// #region summary-tests
func TestSummarizeMixedRecord(t *testing.T) {
	s := screen(t, mixedRecord(), false).Summarize()

	if len(s.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", s.Errors)
	}
	if s.ClearableCases != 2 || s.ClearableCharges != 2 {
		t.Fatalf("expected 2 cases / 2 charges clearable, got %d / %d", s.ClearableCases, s.ClearableCharges)
	}
	cp1 := s.Cases["CP-1"]
	if cp1.Charges["1"].NextSteps != StepNonconviction {
		t.Errorf("unexpected nonconviction step %q", cp1.Charges["1"].NextSteps)
	}
	if cp1.Charges["2"].NextSteps != "" {
		t.Errorf("the felony should have no step, got %q", cp1.Charges["2"].NextSteps)
	}
	if cp1.NextSteps != StepPardon {
		t.Errorf("expected the pardon note, got %q", cp1.NextSteps)
	}
	if got := s.Cases["CP-2"].Charges["1"].NextSteps; got != StepSummaryExpungeable {
		t.Errorf("unexpected summary step %q", got)
	}
}

func TestSummarizeCountsChargesOnce(t *testing.T) {
	s := screen(t, mixedRecord(), true).Summarize()

	if s.ClearableCharges != 2 {
		t.Fatalf("charges cleared by two rules should count once, got %d", s.ClearableCharges)
	}
	if got := s.Cases["CP-1"].Charges["1"].NextSteps; got != StepNonconviction+StepAutosealed {
		t.Fatalf("unexpected steps %q", got)
	}
}

func TestSummarizeTrafficCase(t *testing.T) {
	for _, autoseal := range []bool{false, true} {
		rec := mixedRecord()
		rec.Cases = append(rec.Cases, closedCase("MC-51-TR-0001-2019", "2019-01-01", charge("1", "S", "Nolle Prossed")))
		s := screen(t, rec, autoseal).Summarize()

		traffic := s.Cases["MC-51-TR-0001-2019"]
		if traffic.NextSteps != StepTraffic {
			t.Fatalf("autoseal=%v: expected the traffic note, got %q", autoseal, traffic.NextSteps)
		}
		if got := traffic.Charges["1"].NextSteps; got != "" {
			t.Fatalf("autoseal=%v: a traffic charge should not get any other step, got %q", autoseal, got)
		}
		if s.ClearableCases != 2 || s.ClearableCharges != 2 {
			t.Fatalf("autoseal=%v: traffic cases are never clearable, got %d cases %d charges",
				autoseal, s.ClearableCases, s.ClearableCharges)
		}
	}
}

func TestSummarizeUnknownDecision(t *testing.T) {
	rec := mixedRecord()
	e := rules.NewEvaluator(asOf)
	_, nonconvictions := e.ExpungeNonconvictions(rec)
	decisions := []decision.Decision{
		decision.New("Expungements by royal decree.", true, "Because."),
		nonconvictions,
	}

	s := Summarize(rec, decisions)

	if len(s.Errors) != 1 || !strings.Contains(s.Errors[0], "Expungements by royal decree.") {
		t.Fatalf("expected one error naming the decision, got %v", s.Errors)
	}
	if s.Cases["CP-1"].Charges["1"].NextSteps != StepNonconviction {
		t.Fatal("known decisions should still be summarized")
	}
}

func TestSummarizeWrongPayload(t *testing.T) {
	d := decision.ForRule(decision.RuleSealConvictions, decision.KindPetition, rules.NameSealConvictions, nil, rules.FilterPayload{})
	s := Summarize(mixedRecord(), []decision.Decision{d})
	if len(s.Errors) != 1 || !strings.Contains(s.Errors[0], "FilterPayload") {
		t.Fatalf("expected a payload error, got %v", s.Errors)
	}
}

func TestSummarizeSealingSteps(t *testing.T) {
	theft := charge("1", "M2", "Guilty")
	owed := closedCase("CP-1", "2010-01-01", theft)
	owed.FinesPaid = f64(0)
	recent := closedCase("CP-2", "2022-01-01", charge("1", "M3", "Guilty"))
	rec := crecord.Record{Person: mixedRecord().Person, Cases: []crecord.Case{owed, recent}}

	e := rules.NewEvaluator(asOf)
	_, d := e.SealConvictions(rec)
	s := Summarize(rec, []decision.Decision{d})

	wait := d.Payload.(rules.SealingPayload).FullRecord.TenYearsSinceConviction.Text
	if !strings.Contains(wait, "eligible for sealing in 6 years") {
		t.Fatalf("expected the remaining wait in %q", wait)
	}

	got := s.Cases["CP-1"].Charges["1"].NextSteps
	want := StepSealingWait + wait + "Also, it " + StepOutstandingFines + "The case's total fines are 100.00, of which 0.00 has been paid."
	if got != want {
		t.Fatalf("unexpected sealing steps:\n got %q\nwant %q", got, want)
	}
	if got := s.Cases["CP-2"].Charges["1"].NextSteps; got != StepSealingWait+wait {
		t.Fatalf("expected only the wait note, got %q", got)
	}
}

func TestSummarizeFieldsAndPostPass(t *testing.T) {
	unresolved := charge("1", "M1", "")
	rec := crecord.Record{
		Person: mixedRecord().Person,
		Cases: []crecord.Case{
			closedCase("CP-1", "2021-05-05", unresolved),
			closedCase("CP-9", "2021-05-05"),
		},
	}
	s := Summarize(rec, nil)

	want := &ChargeSummary{
		Offense:         "Offense 1",
		Grade:           "M1",
		Disposition:     MissingDisposition,
		DispositionDate: crecord.MustDate("2021-05-05"),
	}
	if diff := cmp.Diff(want, s.Cases["CP-1"].Charges["1"]); diff != "" {
		t.Fatalf("charge summary mismatch (-want +got):\n%s", diff)
	}
	if s.Cases["CP-1"].NextSteps != "" {
		t.Fatal("no pardon note without a conviction")
	}
	if s.Cases["CP-9"].NextSteps != StepRelatedCase {
		t.Fatalf("expected the related case note, got %q", s.Cases["CP-9"].NextSteps)
	}
}

func TestSummarizeIsDeterministic(t *testing.T) {
	a := screen(t, mixedRecord(), true).Summarize()
	b := screen(t, mixedRecord(), true).Summarize()
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("summaries differ (-a +b):\n%s", diff)
	}
}

// #endregion summary-tests
