package analysis

import (
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
)

// MissingDisposition stands in for an empty disposition in a summary.
const MissingDisposition = "Unknown (missing disposition)"

// Next-step sentences written into summaries.
const (
	StepTraffic            = "Our system does not review traffic court cases. You can speak with a lawyer about your options for expunging traffic cases. "
	StepCaseExpungeable    = "Case likely expungeable by petition. "
	StepNonconviction      = "Nonconviction likely expungeable by petition. "
	StepSummaryExpungeable = "Charge likely can be expunged. "
	StepSummaryWait        = "Charge likely cannot be expunged yet. There must be five (5) years since the last arrest or prosecution. "
	StepCaseSealable       = "Case likely sealable by petition. "
	StepChargeSealable     = "Charge is likely sealable by petition. "
	StepSealingWait        = "You'll need to wait before this may become sealable. "
	StepOutstandingFines   = "looks like there are outstanding fines that must be paid before any sealing could be possible. "
	StepAutosealed         = "This charge may be automatically sealed."
	StepAutosealAfterFines = "This charge may be eligible for automatic sealing once all fines are paid."
	StepAutosealAfterWait  = "This charge may become sealable. "
	StepRelatedCase        = "This case may be related to another (such as through a transfer), and sealing or expunging the other case may seal or expunge this one as well."
	StepPardon             = "You may need a pardon before this can be expunged or sealed. "
)

// #region summary-types
// Summary is the flattened report handed to presentation layers. Cases is
// keyed by docket number.
type Summary struct {
	RunID            string                  `json:"run_id,omitempty"`
	ClearableCases   int                     `json:"clearable_cases"`
	ClearableCharges int                     `json:"clearable_charges"`
	Cases            map[string]*CaseSummary `json:"cases"`
	Errors           []string                `json:"errors"`
}

// CaseSummary is keyed by charge sequence.
type CaseSummary struct {
	NextSteps string                    `json:"next_steps"`
	Charges   map[string]*ChargeSummary `json:"charges"`
}

type ChargeSummary struct {
	Offense         string       `json:"offense"`
	IsConviction    bool         `json:"is_conviction"`
	Grade           string       `json:"grade"`
	Disposition     string       `json:"disposition"`
	DispositionDate crecord.Date `json:"disposition_date"`
	NextSteps       string       `json:"next_steps"`
}

// #endregion summary-types

// newSummary lists every case and charge of the original record with empty
// next steps.
func newSummary(rec crecord.Record) Summary {
	s := Summary{Cases: make(map[string]*CaseSummary, len(rec.Cases)), Errors: []string{}}
	for _, c := range rec.Cases {
		cs := &CaseSummary{Charges: make(map[string]*ChargeSummary, len(c.Charges))}
		for _, ch := range c.Charges {
			disposition := ch.Disposition
			if disposition == "" {
				disposition = MissingDisposition
			}
			when := ch.DispositionDate
			if when.IsZero() {
				when = c.DispositionDate
			}
			cs.Charges[ch.Sequence] = &ChargeSummary{
				Offense:         ch.Offense,
				IsConviction:    ch.IsConviction(),
				Grade:           ch.Grade,
				Disposition:     disposition,
				DispositionDate: when,
			}
		}
		s.Cases[c.DocketNumber] = cs
	}
	return s
}
