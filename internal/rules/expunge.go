package rules

import (
	"fmt"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
)

const (
	over70Reason  = "and the Petitioner is over 70 years old has been free of arrest or prosecution for ten years following from completion the sentence"
	summaryReason = ".  The petitioner has been arrest free for more than five years since this summary conviction"
)

// #region filter
// FilterTrafficCases removes traffic court cases from further analysis.
func (e *Evaluator) FilterTrafficCases(rec crecord.Record) (crecord.Record, decision.Decision) {
	marker := e.Config.TrafficMarker
	var (
		kept, removed []crecord.Case
		payload       FilterPayload
	)
	for _, c := range rec.Cases {
		traffic := marker != "" && strings.Contains(c.DocketNumber, marker)
		text := "The case is not a traffic case"
		if traffic {
			text = "The case is a traffic case"
			removed = append(removed, c.Clone())
		} else {
			kept = append(kept, c)
		}
		payload.Cases = append(payload.Cases, decision.New(fmt.Sprintf("Is %s a traffic case?", c.DocketNumber), traffic, text))
	}
	if removed == nil {
		removed = []crecord.Case{}
	}
	remaining := rec.WithCases(kept)
	d := decision.ForRule(decision.RuleFilterTrafficCases, decision.KindFilter, NameFilterTraffic, removed, payload)
	e.traced(decision.RuleFilterTrafficCases, d, remaining)
	return remaining, d
}

// #endregion filter

// #region over-70
// ExpungeOver70 proposes full expungement of every case when the person is
// over the senior age, arrest free and long released. It is all or nothing.
func (e *Evaluator) ExpungeOver70(rec crecord.Record) (crecord.Record, decision.Decision) {
	cfg := e.Config
	payload := OverSeventyPayload{
		OverAge:    e.IsOverAge(rec.Person, cfg.SeniorAge),
		ArrestFree: e.YearsSinceLastContact(rec, cfg.SeniorArrestFreeYears),
		Released:   e.YearsSinceFinalRelease(rec, cfg.SeniorReleaseYears),
	}
	petitions := []petition.Petition{}
	remaining := rec.Clone()
	if decision.All(payload.Children()...) {
		for _, c := range rec.Cases {
			petitions = append(petitions, petition.NewExpungement(
				rec.Person, e.Attorney, petition.TypeFull, petition.ProcedureNonsummary, over70Reason, c))
		}
		remaining = rec.WithCases(nil)
	}
	d := decision.ForRule(decision.RuleExpungeOver70, decision.KindPetition, NameOver70, petitions, payload)
	e.traced(decision.RuleExpungeOver70, d, remaining)
	return remaining, d
}

// #endregion over-70

// #region deceased
// ExpungeDeceased proposes full expungement of every case once the person
// has been dead long enough.
func (e *Evaluator) ExpungeDeceased(rec crecord.Record) (crecord.Record, decision.Decision) {
	payload := DeceasedPayload{DeceasedLongEnough: e.DeceasedFor(rec.Person, e.Config.DeceasedYears)}
	petitions := []petition.Petition{}
	remaining := rec.Clone()
	if payload.DeceasedLongEnough.Bool() {
		for _, c := range rec.Cases {
			petitions = append(petitions, petition.NewExpungement(
				rec.Person, e.Attorney, petition.TypeFull, petition.ProcedureNonsummary, "", c))
		}
		remaining = rec.WithCases(nil)
	}
	d := decision.ForRule(decision.RuleExpungeDeceased, decision.KindPetition, NameDeceased, petitions, payload)
	e.traced(decision.RuleExpungeDeceased, d, remaining)
	return remaining, d
}

// #endregion deceased

// #region nonconvictions
// ExpungeNonconvictions proposes expungement of charges that are resolved and
// not convictions. A case is fully expunged only if every charge qualifies.
func (e *Evaluator) ExpungeNonconvictions(rec crecord.Record) (crecord.Record, decision.Decision) {
	var (
		payload   NonconvictionPayload
		kept      []crecord.Case
		petitions = []petition.Petition{}
	)
	for _, c := range rec.Cases {
		var expungeable, rest []crecord.Charge
		entry := NonconvictionCase{Docket: c.DocketNumber}
		reasons := make([]decision.Decision, 0, len(c.Charges))
		for _, ch := range c.Charges {
			charge := NonconvictionCharge{Sequence: ch.Sequence, Decision: IsConvictionOrUnresolved(ch)}
			if charge.Expungeable() {
				expungeable = append(expungeable, ch)
			} else {
				rest = append(rest, ch)
			}
			entry.Charges = append(entry.Charges, charge)
			reasons = append(reasons, charge.Decision)
		}
		if len(expungeable) > 0 {
			petitions = append(petitions, petition.NewExpungement(
				rec.Person, e.Attorney, expungementType(expungeable, c), petition.ProcedureNonsummary, "",
				c.WithCharges(expungeable)))
		}
		if len(rest) > 0 {
			kept = append(kept, c.WithCharges(rest))
		}
		entry.Decision = decision.WithReasons(
			fmt.Sprintf("Does %s have expungeable nonconvictions?", c.DocketNumber), len(expungeable) > 0, reasons...)
		payload.Cases = append(payload.Cases, entry)
	}
	remaining := rec.WithCases(kept)
	d := decision.ForRule(decision.RuleExpungeNonconvictions, decision.KindPetition, NameNonconvictions, petitions, payload)
	e.traced(decision.RuleExpungeNonconvictions, d, remaining)
	return remaining, d
}

// #endregion nonconvictions

// #region summary-convictions
// ExpungeSummaryConvictions proposes expungement of summary convictions when
// the record has been arrest free for long enough.
func (e *Evaluator) ExpungeSummaryConvictions(rec crecord.Record) (crecord.Record, decision.Decision) {
	arrestFree := e.ArrestFreeFor(rec, e.Config.SummaryArrestFreeYears)
	var (
		payload   = SummaryPayload{ArrestFree: arrestFree}
		kept      []crecord.Case
		petitions = []petition.Petition{}
	)
	for _, c := range rec.Cases {
		var expungeable, rest []crecord.Charge
		entry := SummaryCase{Docket: c.DocketNumber}
		reasons := make([]decision.Decision, 0, len(c.Charges))
		for _, ch := range c.Charges {
			sc := IsSummaryConviction(ch)
			ok := arrestFree.Bool() && sc.Bool()
			charge := SummaryCharge{
				Sequence:          ch.Sequence,
				Decision:          decision.WithReasons(sc.Name, ok, sc.Reasons...),
				SummaryConviction: sc,
			}
			if ok {
				expungeable = append(expungeable, ch)
			} else {
				rest = append(rest, ch)
			}
			entry.Charges = append(entry.Charges, charge)
			reasons = append(reasons, charge.Decision)
		}
		if len(expungeable) > 0 {
			petitions = append(petitions, petition.NewExpungement(
				rec.Person, e.Attorney, expungementType(expungeable, c), petition.ProcedureSummary, summaryReason,
				c.WithCharges(expungeable)))
		}
		if len(rest) > 0 {
			kept = append(kept, c.WithCharges(rest))
		}
		entry.Decision = decision.WithReasons(
			fmt.Sprintf("Is %s expungeable?", c.DocketNumber), len(expungeable) > 0 && len(rest) == 0, reasons...)
		payload.Cases = append(payload.Cases, entry)
	}
	remaining := rec.WithCases(kept)
	d := decision.ForRule(decision.RuleExpungeSummaryConvictions, decision.KindPetition, NameSummaryConvictions, petitions, payload)
	e.traced(decision.RuleExpungeSummaryConvictions, d, remaining)
	return remaining, d
}

// #endregion summary-convictions

func expungementType(expungeable []crecord.Charge, c crecord.Case) petition.Type {
	if len(expungeable) == len(c.Charges) {
		return petition.TypeFull
	}
	return petition.TypePartial
}
