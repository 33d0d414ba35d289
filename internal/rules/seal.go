package rules

import (
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
)

// #region seal-convictions
// SealConvictions proposes sealing petitions for charges that meet the
// per-charge conditions while the whole record meets its own requirements.
// Cases without a sealable charge stay in the remainder.
func (e *Evaluator) SealConvictions(rec crecord.Record) (crecord.Record, decision.Decision) {
	payload := SealingPayload{FullRecord: e.FullRecordRequirements(rec)}
	recordOK := payload.FullRecord.Decision.Bool()

	var kept []crecord.Case
	petitions := []petition.Petition{}
	for _, c := range rec.Cases {
		fines := FinesAndCostsPaid(c)
		entry := SealingCase{Docket: c.DocketNumber}
		var sealable, unsealable []crecord.Charge
		reasons := make([]decision.Decision, 0, len(c.Charges))
		for _, ch := range c.Charges {
			charge := e.sealingCharge(ch, fines)
			if decision.All(charge.Others()...) && charge.FinesPaid.Bool() && recordOK {
				charge.Decision.Value = Sealable
				sealable = append(sealable, ch)
			} else {
				charge.Decision.Value = NotSealable
				unsealable = append(unsealable, ch)
			}
			entry.Charges = append(entry.Charges, charge)
			reasons = append(reasons, charge.Decision)
		}

		outcome := NoChargesSealable
		switch {
		case len(sealable) > 0 && len(unsealable) == 0:
			outcome = AllChargesSealable
		case len(sealable) > 0:
			outcome = SomeSealable
		}
		if len(sealable) > 0 {
			petitions = append(petitions, petition.NewSealing(rec.Person, e.Attorney, "", c.WithCharges(sealable)))
		}
		if outcome != AllChargesSealable && len(unsealable) > 0 {
			kept = append(kept, c.WithCharges(unsealable))
		}
		entry.Decision = decision.WithReasons(fmt.Sprintf("Sealing case %s", c.DocketNumber), outcome, reasons...)
		payload.Cases = append(payload.Cases, entry)
	}

	remaining := rec.WithCases(kept)
	d := decision.ForRule(decision.RuleSealConvictions, decision.KindPetition, NameSealConvictions, petitions, payload)
	e.traced(decision.RuleSealConvictions, d, remaining)
	return remaining, d
}

func (e *Evaluator) sealingCharge(ch crecord.Charge, fines decision.Decision) SealingCharge {
	sc := SealingCharge{
		Sequence:               ch.Sequence,
		FinesPaid:              fines,
		MisdemeanorOrUngraded:  IsMisdemeanorOrUngraded(ch),
		NoDangerToPerson:       e.NoDangerToPerson(ch),
		NoOffenseAgainstFamily: e.NoOffenseAgainstFamily(ch),
		NoFirearmsOffense:      e.NoFirearmsOffense(ch),
		NoSexualOffense:        e.NoSexualOffense(ch),
		NoCorruptionOfMinors:   e.NoCorruptionOfMinors(ch),
	}
	reasons := append([]decision.Decision{sc.FinesPaid}, sc.Others()...)
	sc.Decision = decision.WithReasons(fmt.Sprintf("Sealing charge %s, %s", ch.Sequence, ch.Offense), NotSealable, reasons...)
	return sc
}

// #endregion seal-convictions
