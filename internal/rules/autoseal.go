package rules

import (
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
)

// #region autosealing
// AutosealingEligibility classifies every charge as eligible or ineligible
// for automated sealing. It does not filter: the returned record is a copy
// of its input.
func (e *Evaluator) AutosealingEligibility(rec crecord.Record) (crecord.Record, decision.Decision) {
	recordOK := e.RecordNotExcludedFromAutosealing(rec)
	payload := AutosealPayload{RecordNotExcluded: recordOK}
	partition := decision.Partition{Eligible: []crecord.Case{}, Ineligible: []crecord.Case{}}

	for _, c := range rec.Cases {
		fines := FinesAndCostsPaid(c)
		noM1 := NoM1OrHigherInCase(c)
		entry := AutosealCase{Docket: c.DocketNumber}
		var eligible, ineligible []crecord.Charge
		reasons := make([]decision.Decision, 0, len(c.Charges))
		for _, ch := range c.Charges {
			charge := AutosealCharge{
				Sequence:          ch.Sequence,
				TenYearsFree:      e.TenYearsBetweenConvictions(rec, c, ch),
				FinesPaid:         fines,
				Nonconviction:     IsNonconviction(ch),
				SummaryConviction: IsSummaryConviction(ch),
				GradeBetween:      GradeIsBetween("M", "M2", ch),
				NotExcluded:       e.ChargeNotExcludedFromSealing(ch),
				NoM1InCase:        noM1,
				RecordNotExcluded: recordOK,
			}
			ok := charge.Nonconviction.Bool() ||
				decision.All(charge.FinesPaid, charge.SummaryConviction) ||
				decision.All(charge.GradeBetween, charge.TenYearsFree, charge.FinesPaid,
					charge.NotExcluded, charge.NoM1InCase, charge.RecordNotExcluded)
			charge.Decision = decision.WithReasons(
				fmt.Sprintf("Is the charge %s for %s eligible for automated sealing?", ch.Sequence, ch.Offense),
				ok,
				charge.TenYearsFree, charge.FinesPaid, charge.Nonconviction, charge.SummaryConviction,
				charge.GradeBetween, charge.NotExcluded, charge.NoM1InCase, charge.RecordNotExcluded,
			)
			if ok {
				eligible = append(eligible, ch)
			} else {
				ineligible = append(ineligible, ch)
			}
			entry.Charges = append(entry.Charges, charge)
			reasons = append(reasons, charge.Decision)
		}
		if len(eligible) > 0 {
			partition.Eligible = append(partition.Eligible, c.WithCharges(eligible))
		}
		if len(ineligible) > 0 {
			partition.Ineligible = append(partition.Ineligible, c.WithCharges(ineligible))
		}
		entry.Decision = decision.WithReasons(
			fmt.Sprintf("Automated sealing for case %s", c.DocketNumber), len(eligible) > 0, reasons...)
		payload.Cases = append(payload.Cases, entry)
	}

	remaining := rec.Clone()
	d := decision.ForRule(decision.RuleAutosealingEligibility, decision.KindEligibility, NameAutosealing, partition, payload)
	e.traced(decision.RuleAutosealingEligibility, d, remaining)
	return remaining, d
}

// #endregion autosealing
