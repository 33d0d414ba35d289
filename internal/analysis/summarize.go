package analysis

import (
	"fmt"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/petition"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/rules"
	"go.uber.org/zap"
)

// #region summarize
// Summarize flattens the analysis into a case-by-case, charge-by-charge
// report. It never fails: decisions it cannot interpret are reported in
// Summary.Errors and the rest of the report is still produced.
func (a *Analysis) Summarize() Summary {
	s := Summarize(a.original, a.decisions)
	for _, msg := range s.Errors {
		a.logger.Warn("summary error", zap.String("error", msg))
	}
	return s
}

// Summarize builds a summary of rec from decisions made about it.
func Summarize(rec crecord.Record, decisions []decision.Decision) Summary {
	b := &builder{
		summary: newSummary(rec),
		cleared: map[string]map[string]bool{},
		traffic: map[string]bool{},
	}
	for _, d := range decisions {
		switch d.Rule {
		case decision.RuleFilterTrafficCases:
			b.trafficCases(d)
		case decision.RuleExpungeOver70, decision.RuleExpungeDeceased:
			b.wholeCaseExpungements(d)
		case decision.RuleExpungeNonconvictions:
			b.nonconvictions(d)
		case decision.RuleExpungeSummaryConvictions:
			b.summaryConvictions(d)
		case decision.RuleSealConvictions:
			b.sealing(d)
		case decision.RuleAutosealingEligibility:
			b.autosealing(d)
		default:
			b.errorf("Decision named %q is not a recognized rule decision.", d.Name)
		}
	}
	b.notes(rec)
	return b.finish()
}

// #endregion summarize

// #region builder
type builder struct {
	summary Summary
	cleared map[string]map[string]bool
	traffic map[string]bool // dockets removed as traffic cases
}

func (b *builder) errorf(format string, args ...any) {
	b.summary.Errors = append(b.summary.Errors, fmt.Sprintf(format, args...))
}

func (b *builder) wrongPayload(d decision.Decision, want string) {
	b.errorf("Decision named %q carries a %T payload, expected %s.", d.Name, d.Payload, want)
}

func (b *builder) caseStep(d decision.Decision, docket, step string) {
	cs, ok := b.summary.Cases[docket]
	if !ok {
		b.errorf("Decision named %q refers to case %s, which is not in the record.", d.Name, docket)
		return
	}
	cs.NextSteps += step
}

func (b *builder) chargeStep(d decision.Decision, docket, seq, step string) {
	cs, ok := b.summary.Cases[docket]
	if !ok {
		b.errorf("Decision named %q refers to case %s, which is not in the record.", d.Name, docket)
		return
	}
	ch, ok := cs.Charges[seq]
	if !ok {
		b.errorf("Decision named %q refers to charge %s of %s, which is not in the record.", d.Name, seq, docket)
		return
	}
	ch.NextSteps += step
}

// clear marks a charge clearable. A charge cleared by several rules counts
// once and traffic cases never count.
func (b *builder) clear(docket, seq string) {
	if _, ok := b.summary.Cases[docket]; !ok || b.traffic[docket] {
		return
	}
	if b.cleared[docket] == nil {
		b.cleared[docket] = map[string]bool{}
	}
	b.cleared[docket][seq] = true
}

func (b *builder) finish() Summary {
	for _, seqs := range b.cleared {
		if len(seqs) > 0 {
			b.summary.ClearableCases++
			b.summary.ClearableCharges += len(seqs)
		}
	}
	return b.summary
}

// notes fills in the post-pass defaults: a hint for empty cases and a pardon
// note for cases with convictions that nothing else addressed. The pardon
// note goes on the case once, not on each untouched charge.
func (b *builder) notes(rec crecord.Record) {
	for _, c := range rec.Cases {
		cs := b.summary.Cases[c.DocketNumber]
		if len(cs.Charges) == 0 {
			cs.NextSteps = StepRelatedCase
			continue
		}
		if cs.NextSteps != "" {
			continue
		}
		untouched, convicted := false, false
		for _, ch := range cs.Charges {
			untouched = untouched || ch.NextSteps == ""
			convicted = convicted || ch.IsConviction
		}
		if untouched && convicted {
			cs.NextSteps = StepPardon
		}
	}
}

// #endregion builder

// #region interpreters
func (b *builder) trafficCases(d decision.Decision) {
	removed, ok := d.Value.([]crecord.Case)
	if !ok {
		b.errorf("Decision named %q has a %T value, expected the removed cases.", d.Name, d.Value)
		return
	}
	for _, c := range removed {
		b.traffic[c.DocketNumber] = true
		b.caseStep(d, c.DocketNumber, StepTraffic)
	}
}

func (b *builder) wholeCaseExpungements(d decision.Decision) {
	petitions, ok := d.Value.([]petition.Petition)
	if !ok {
		b.errorf("Decision named %q has a %T value, expected petitions.", d.Name, d.Value)
		return
	}
	for _, p := range petitions {
		for _, c := range p.Cases {
			b.caseStep(d, c.DocketNumber, StepCaseExpungeable)
			for _, ch := range c.Charges {
				b.clear(c.DocketNumber, ch.Sequence)
			}
		}
	}
}

func (b *builder) nonconvictions(d decision.Decision) {
	payload, ok := d.Payload.(rules.NonconvictionPayload)
	if !ok {
		b.wrongPayload(d, "a nonconviction payload")
		return
	}
	for _, c := range payload.Cases {
		for _, ch := range c.Charges {
			if !ch.Expungeable() {
				continue
			}
			b.chargeStep(d, c.Docket, ch.Sequence, StepNonconviction)
			b.clear(c.Docket, ch.Sequence)
		}
	}
}

func (b *builder) summaryConvictions(d decision.Decision) {
	payload, ok := d.Payload.(rules.SummaryPayload)
	if !ok {
		b.wrongPayload(d, "a summary conviction payload")
		return
	}
	arrestFree := payload.ArrestFree
	for _, c := range payload.Cases {
		for _, ch := range c.Charges {
			switch {
			case ch.Decision.Bool() && arrestFree.Bool():
				b.chargeStep(d, c.Docket, ch.Sequence, StepSummaryExpungeable)
				b.clear(c.Docket, ch.Sequence)
			case ch.SummaryConviction.Bool():
				b.chargeStep(d, c.Docket, ch.Sequence, StepSummaryWait+arrestFree.Text)
			}
		}
	}
}

func (b *builder) sealing(d decision.Decision) {
	payload, ok := d.Payload.(rules.SealingPayload)
	if !ok {
		b.wrongPayload(d, "a sealing payload")
		return
	}
	waiting := !payload.FullRecord.TenYearsSinceConviction.Bool() && decision.All(payload.FullRecord.Rest()...)
	for _, c := range payload.Cases {
		if c.Decision.Equal(rules.AllChargesSealable) {
			b.caseStep(d, c.Docket, StepCaseSealable)
			for _, ch := range c.Charges {
				b.clear(c.Docket, ch.Sequence)
			}
			continue
		}
		for _, ch := range c.Charges {
			if ch.Decision.Equal(rules.Sealable) {
				b.chargeStep(d, c.Docket, ch.Sequence, StepChargeSealable)
				b.clear(c.Docket, ch.Sequence)
				continue
			}
			var explanation string
			if waiting && decision.All(ch.Others()...) {
				explanation += StepSealingWait + payload.FullRecord.TenYearsSinceConviction.Text
			}
			if !ch.FinesPaid.Bool() {
				if explanation != "" {
					explanation += "Also, it "
				} else {
					explanation += "It "
				}
				explanation += StepOutstandingFines + ch.FinesPaid.Text
			}
			if explanation != "" {
				b.chargeStep(d, c.Docket, ch.Sequence, explanation)
			}
		}
	}
}

func (b *builder) autosealing(d decision.Decision) {
	payload, ok := d.Payload.(rules.AutosealPayload)
	if !ok {
		b.wrongPayload(d, "an autosealing payload")
		return
	}
	for _, c := range payload.Cases {
		// Autosealing inspects the original record, traffic cases included.
		if b.traffic[c.Docket] {
			continue
		}
		for _, ch := range c.Charges {
			switch {
			case ch.Decision.Bool():
				b.chargeStep(d, c.Docket, ch.Sequence, StepAutosealed)
				b.clear(c.Docket, ch.Sequence)
			case ch.BlockedOnlyByFines():
				b.chargeStep(d, c.Docket, ch.Sequence, StepAutosealAfterFines)
			case ch.BlockedOnlyByTime():
				b.chargeStep(d, c.Docket, ch.Sequence, StepAutosealAfterWait+ch.TenYearsFree.Text)
			}
		}
	}
}

// #endregion interpreters
