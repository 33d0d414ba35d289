package rules

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/statutes"
)

var (
	murderOffense = regexp.MustCompile(`(?i)^murder`)
	felonyGrade   = regexp.MustCompile(`(?i)^F`)
	misdemeanor   = regexp.MustCompile(`^M`)
)

// #region fines
// FinesAndCostsPaid is true when nothing is owed on the case. A case with no
// recorded total is treated as paid.
func FinesAndCostsPaid(c crecord.Case) decision.Decision {
	name := fmt.Sprintf("Fines and costs are all paid on the case %s?", c.DocketNumber)
	remaining, known := c.FinesRemaining()
	if !known {
		return decision.New(name, true,
			"Total fines are not recorded for this case, so we assume nothing is owed. Confirm this with the court.")
	}
	paid := 0.0
	if c.FinesPaid != nil {
		paid = *c.FinesPaid
	}
	return decision.New(name, remaining <= 0,
		fmt.Sprintf("The case's total fines are %.2f, of which %.2f has been paid.", *c.TotalFines, paid))
}

// #endregion fines

// #region charge-exclusions
// IsMisdemeanorOrUngraded is true for M grades and missing grades.
func IsMisdemeanorOrUngraded(ch crecord.Charge) decision.Decision {
	name := "The offense is a misdemeanor or nongraded offense w/ a penalty of <= 5 years."
	switch {
	case misdemeanor.MatchString(ch.Grade):
		return decision.New(name, true, "Charge is a misdemeanor")
	case strings.TrimSpace(ch.Grade) == "":
		return decision.New(name, true, "Charge is ungraded. But be careful - we don't know the maximum penalty for the offense.")
	}
	return decision.New(name, false, "Charge is neither a misdemeanor nor ungraded.")
}

// NoDangerToPerson is true unless the charge is an Article B conviction at
// or above the range's grade floor. A missing grade fails.
func (e *Evaluator) NoDangerToPerson(ch crecord.Charge) decision.Decision {
	name := "Is this not a conviction for an Article B offense (M1 or more serious)?"
	st, err := statutes.Parse(ch.Statute)
	if err != nil {
		return decision.New(name, true, fmt.Sprintf("Couldn't read the statute %s, so it's probably not Article B.", ch.Statute))
	}
	r := e.Statutes.Range(statutes.DangerToPerson)
	if !r.Contains(st) || !ch.IsConviction() {
		return decision.New(name, true, fmt.Sprintf("Statute %s appears not to be an Article B conviction.", ch.Statute))
	}
	switch {
	case strings.TrimSpace(ch.Grade) == "":
		return decision.New(name, false, fmt.Sprintf(
			"Statute %s is an Article B conviction, but we do not know the grade. It may or may not be an excluded offense.", ch.Statute))
	case r.GradeFloor == "" || crecord.GradeGTE(ch.Grade, r.GradeFloor):
		return decision.New(name, false, fmt.Sprintf(
			"Statute %s is an Article B conviction, with a grade of at least %s.", ch.Statute, r.GradeFloor))
	}
	return decision.New(name, true, fmt.Sprintf(
		"Statute %s is an Article B conviction, but graded below %s.", ch.Statute, r.GradeFloor))
}

// NoOffenseAgainstFamily is true unless the charge is an Article D conviction.
func (e *Evaluator) NoOffenseAgainstFamily(ch crecord.Charge) decision.Decision {
	return e.rangeCheck(ch, statutes.OffenseAgainstFamily,
		fmt.Sprintf("Charge for %s is not an offense against the family.", ch.Statute),
		"The statute doesn't appear to be one of the Article D offense statutes.")
}

// NoFirearmsOffense is true unless the charge is a Chapter 61 conviction.
func (e *Evaluator) NoFirearmsOffense(ch crecord.Charge) decision.Decision {
	return e.rangeCheck(ch, statutes.Firearms,
		fmt.Sprintf("Charge for %s is not a firearms offense.", ch.Statute),
		"The statute doesn't appear to be one of the Chapter 61 firearms statutes.")
}

func (e *Evaluator) rangeCheck(ch crecord.Charge, cat statutes.Category, name, unreadable string) decision.Decision {
	st, err := statutes.Parse(ch.Statute)
	if err != nil {
		return decision.New(name, true, unreadable)
	}
	r := e.Statutes.Range(cat)
	if r.Contains(st) && ch.IsConviction() {
		return decision.New(name, false, fmt.Sprintf("Statute %s is a conviction for %s.", ch.Statute, r.Description))
	}
	if r.Contains(st) {
		return decision.New(name, true, fmt.Sprintf("Statute %s falls under %s, but the charge is not a conviction.", ch.Statute, r.Description))
	}
	return decision.New(name, true, fmt.Sprintf("Statute %s is not among %s.", ch.Statute, r.Description))
}

// NoSexualOffense is true unless the charge is a conviction for a tiered
// sexual or registration offense.
func (e *Evaluator) NoSexualOffense(ch crecord.Charge) decision.Decision {
	name := "This charge is not a disqualifying sexual or registration offense?"
	st, err := statutes.Parse(ch.Statute)
	if err != nil {
		return decision.New(name, true, "This doesn't appear to be one of the tiered sex offense statutes.")
	}
	if ch.IsConviction() && e.Statutes.IsTieredSexOffense(st) {
		return decision.New(name, false, fmt.Sprintf("Statute %s is a conviction for a tiered sexual or registration offense.", ch.Statute))
	}
	return decision.New(name, true, fmt.Sprintf("Statute %s is not a conviction for a tiered sexual or registration offense.", ch.Statute))
}

// NoCorruptionOfMinors is true unless the charge is a conviction under the
// corruption of minors clause.
func (e *Evaluator) NoCorruptionOfMinors(ch crecord.Charge) decision.Decision {
	name := "This charge is not a disqualifying corruption of minors offense?"
	st, err := statutes.Parse(ch.Statute)
	if err != nil {
		return decision.New(name, true, "This doesn't appear to be the corruption of minors statute.")
	}
	if ch.IsConviction() && e.Statutes.IsCorruptionOfMinors(st) {
		return decision.New(name, false, fmt.Sprintf("Statute %s is a conviction for corruption of minors.", ch.Statute))
	}
	return decision.New(name, true, fmt.Sprintf("Statute %s is not a conviction for corruption of minors.", ch.Statute))
}

// NoCrueltyToAnimals is true unless the charge is a cruelty-to-animals conviction.
func (e *Evaluator) NoCrueltyToAnimals(ch crecord.Charge) decision.Decision {
	name := "Is the charge not a conviction for cruelty to animals?"
	st, err := statutes.Parse(ch.Statute)
	excluded := err == nil && ch.IsConviction() && e.Statutes.IsCrueltyToAnimals(st)
	return decision.New(name, !excluded,
		fmt.Sprintf("The charge has disposition of %s, for offense of %s", ch.Disposition, ch.Statute))
}

// ChargeNotExcludedFromSealing is true when none of the charge-level
// offense categories apply.
func (e *Evaluator) ChargeNotExcludedFromSealing(ch crecord.Charge) decision.Decision {
	reasons := []decision.Decision{
		e.NoDangerToPerson(ch),
		e.NoOffenseAgainstFamily(ch),
		e.NoFirearmsOffense(ch),
		e.NoSexualOffense(ch),
		e.NoCrueltyToAnimals(ch),
		e.NoCorruptionOfMinors(ch),
	}
	return decision.WithReasons(
		fmt.Sprintf("Is the charge for %s not excluded from sealing?", ch.Offense),
		decision.All(reasons...),
		reasons...,
	)
}

// #endregion charge-exclusions

// #region record-requirements
// TenYearsSinceLastConviction is true when the latest M3-or-worse conviction
// was disposed of more than the configured number of years ago.
func (e *Evaluator) TenYearsSinceLastConviction(rec crecord.Record) decision.Decision {
	limit := e.Config.SealingConvictionFreeYears
	name := fmt.Sprintf("Has the person been free of conviction for at least %d years?", limit)

	var (
		total, dated int
		last         crecord.Date
		lastDocket   string
	)
	for _, c := range rec.Cases {
		for _, ch := range c.Charges {
			if !ch.IsConviction() || !crecord.GradeGTE(ch.Grade, "M3") {
				continue
			}
			total++
			when := ch.DispositionDate
			if when.IsZero() {
				when = c.DispositionDate
			}
			if when.IsZero() {
				continue
			}
			dated++
			if lastDocket == "" || when.After(last) {
				last, lastDocket = when, c.DocketNumber
			}
		}
	}
	if total == 0 {
		return decision.New(name, true, "The person appears to have no convictions.")
	}
	if dated == 0 {
		return decision.New(name, false,
			fmt.Sprintf("The disposition dates are missing, so to be safe, we assume it has not been %d years since the last conviction.", limit))
	}

	years := crecord.YearsBetween(last, e.Now)
	text := fmt.Sprintf("It has been %d years since the last conviction on %s in %s.", years, last, lastDocket)
	if total > dated {
		text += fmt.Sprintf(" But note that there were %d convictions without disposition dates, so our estimate of the last conviction date may be wrong.", total-dated)
	}
	ok := years > limit
	if !ok {
		text += fmt.Sprintf(" Person may be eligible for sealing in %d years, if there are no further convictions. ", limit-years)
	}
	return decision.New(name, ok, text)
}

// NoF1OrMurderConvictions is true when no charge is an F1 or murder
// conviction. An ungraded conviction fails since it may be an F1.
func NoF1OrMurderConvictions(rec crecord.Record) decision.Decision {
	var reasons []decision.Decision
	for _, c := range rec.Cases {
		for _, ch := range c.Charges {
			if d := notFelony1(ch); !d.Bool() {
				reasons = append(reasons, d)
				continue
			}
			reasons = append(reasons, notMurder(ch))
		}
	}
	return decision.WithReasons("No F1 or murder convictions in the record?", decision.All(reasons...), reasons...)
}

func notFelony1(ch crecord.Charge) decision.Decision {
	name := "Is the charge not an F1 conviction?"
	grade := strings.TrimSpace(ch.Grade)
	switch {
	case !ch.IsConviction():
		return decision.New(name, true, fmt.Sprintf("The charge was %s, but the disposition was %s", grade, ch.Disposition))
	case grade == "":
		return decision.New(name, false, "The charge's grade is unknown, so we don't know its *not* an F1.")
	case strings.HasPrefix(grade, "F1"):
		return decision.New(name, false, "The charge is an F1 conviction")
	}
	return decision.New(name, true, fmt.Sprintf("The charge is %s, which is not F1", grade))
}

func notMurder(ch crecord.Charge) decision.Decision {
	name := "Is the charge NOT a murder conviction?"
	if !ch.IsConviction() {
		return decision.New(name, true, "Not a conviction.")
	}
	if murderOffense.MatchString(ch.Offense) {
		return decision.New(name, false, "The charge was a murder conviction.")
	}
	return decision.New(name, true, "Conviction for something other than murder.")
}

// limitWithin counts failing charge checks over cases disposed within the
// window. It passes while the count stays below limit.
func (e *Evaluator) limitWithin(rec crecord.Record, name string, limit, within int, check func(crecord.Charge) decision.Decision) decision.Decision {
	var reasons []decision.Decision
	failing := 0
	for _, c := range rec.Cases {
		if c.YearsPassedDisposition(e.Now) > within {
			continue
		}
		for _, ch := range c.Charges {
			d := check(ch)
			if !d.Bool() {
				failing++
			}
			reasons = append(reasons, d)
		}
	}
	return decision.WithReasons(name, failing < limit, reasons...)
}

func (e *Evaluator) recordNoDangerToPerson(rec crecord.Record, limit, within int) decision.Decision {
	return e.limitWithin(rec,
		fmt.Sprintf("No convictions in the record for article B offenses, felonies or punishable by more than 7 years, in the last %d years.", within),
		limit, within, e.NoDangerToPerson)
}

func (e *Evaluator) recordNoOffenseAgainstFamily(rec crecord.Record, limit, within int) decision.Decision {
	return e.limitWithin(rec,
		fmt.Sprintf("Not convicted within %d years %d or more times of an offense against the family.", within, limit),
		limit, within, e.NoOffenseAgainstFamily)
}

func (e *Evaluator) recordNoFirearmsOffense(rec crecord.Record, limit, within int) decision.Decision {
	return e.limitWithin(rec,
		fmt.Sprintf("Not convicted within %d years %d or more times of a firearms offense.", within, limit),
		limit, within, e.NoFirearmsOffense)
}

func (e *Evaluator) recordNoSexualOffense(rec crecord.Record, limit, within int) decision.Decision {
	return e.limitWithin(rec,
		fmt.Sprintf("Not convicted within %d years %d or more times of certain sexual or registration-related offenses.", within, limit),
		limit, within, e.NoSexualOffense)
}

// OffensesPunishableByTwoYears passes while fewer than limit convictions
// graded as a two-year proxy were disposed of strictly within the window.
func (e *Evaluator) OffensesPunishableByTwoYears(rec crecord.Record, limit, within int) decision.Decision {
	var reasons []decision.Decision
	for _, c := range rec.Cases {
		for _, ch := range c.Charges {
			if ch.IsConviction() && e.Statutes.PunishableTwoYears(ch.Grade) && c.YearsPassedDisposition(e.Now) < within {
				reasons = append(reasons, chargeListing(c, ch))
			}
		}
	}
	return decision.WithReasons(
		fmt.Sprintf("The record has fewer than %d convictions for offenses punishable by two or more years in the last %d years.", limit, within),
		len(reasons) < limit,
		reasons...,
	)
}

// NoSingleStatuteConvictions passes while fewer than limit convictions under
// the statute were disposed of strictly within the window.
func (e *Evaluator) NoSingleStatuteConvictions(rec crecord.Record, ss statutes.SingleStatute, limit int, within float64) decision.Decision {
	var reasons []decision.Decision
	for _, c := range rec.Cases {
		if float64(c.YearsPassedDisposition(e.Now)) >= within {
			continue
		}
		for _, ch := range c.Charges {
			st, err := statutes.Parse(ch.Statute)
			if err == nil && ch.IsConviction() && ss.Matches(st) {
				reasons = append(reasons, chargeListing(c, ch))
			}
		}
	}
	return decision.WithReasons(fmt.Sprintf("No %s convictions in this record.", ss.Description), len(reasons) < limit, reasons...)
}

// FullRecordRequirements evaluates the whole-record conditions for petition
// sealing.
func (e *Evaluator) FullRecordRequirements(rec crecord.Record) SealingRecordChecks {
	checks := SealingRecordChecks{
		TenYearsSinceConviction: e.TenYearsSinceLastConviction(rec),
		NoF1OrMurder:            NoF1OrMurderConvictions(rec),
		NoDangerToPerson:        e.recordNoDangerToPerson(rec, 1, 20),
		NoOffenseAgainstFamily:  e.recordNoOffenseAgainstFamily(rec, 1, 20),
		NoFirearmsOffense:       e.recordNoFirearmsOffense(rec, 1, 20),
		NoSexualOffense:         e.recordNoSexualOffense(rec, 1, 20),
		PunishableTwoYearsIn20:  e.OffensesPunishableByTwoYears(rec, 4, 20),
		PunishableTwoYearsIn15:  e.OffensesPunishableByTwoYears(rec, 2, 15),
	}
	for _, ss := range e.Statutes.SingleStatutes {
		checks.SingleStatuteExclusions = append(checks.SingleStatuteExclusions, e.NoSingleStatuteConvictions(rec, ss, 1, 15))
	}
	reasons := append([]decision.Decision{checks.TenYearsSinceConviction}, checks.Rest()...)
	checks.Decision = decision.WithReasons("Sealing requirements that relate to the whole record.", decision.All(reasons...), reasons...)
	return checks
}

// #endregion record-requirements

// #region autoseal-requirements
// NoM1OrHigherInCase is true when no conviction in the case is M1 or worse.
func NoM1OrHigherInCase(c crecord.Case) decision.Decision {
	serious := 0
	for _, ch := range c.Charges {
		if ch.IsConviction() && crecord.GradeGTE(ch.Grade, "M1") {
			serious++
		}
	}
	return decision.New(
		"Are there no convictions for M1 or more severe offenses in this case?",
		serious == 0,
		fmt.Sprintf("There are %d charges graded M1 or more severe in the case %s.", serious, c.DocketNumber),
	)
}

// TenYearsBetweenConvictions is true for nonconvictions and for convictions
// followed by at least the configured gap before the next conviction.
func (e *Evaluator) TenYearsBetweenConvictions(rec crecord.Record, c crecord.Case, ch crecord.Charge) decision.Decision {
	gap := e.Config.AutosealConvictionGap
	name := fmt.Sprintf("Has it been %d years since a conviction for %s?", gap, ch.Offense)
	if !ch.IsConviction() {
		return decision.New(name, true, "This charge was not a conviction.")
	}
	years := rec.YearsBetweenConvictions(c.DocketNumber, ch, e.Now)
	text := fmt.Sprintf("%d years elapsed after the conviction for %s in %s.", years, ch.Offense, c.DocketNumber)
	ok := years >= gap
	if !ok {
		text += fmt.Sprintf(" It looks like enough time between convictions for sealing may pass after %d more years.", gap-years)
	}
	return decision.New(name, ok, text)
}

// anyFelonyConviction is true when the record has a felony conviction.
func anyFelonyConviction(rec crecord.Record) decision.Decision {
	var found []decision.Decision
	for _, c := range rec.Cases {
		for _, ch := range c.Charges {
			if ch.IsConviction() && felonyGrade.MatchString(ch.Grade) {
				found = append(found, chargeListing(c, ch))
			}
		}
	}
	return decision.WithReasons("Are there any felony convictions in the record?", len(found) > 0, found...)
}

// convictionsAtLeast is true when the record has at least n convictions
// graded grade or worse.
func convictionsAtLeast(rec crecord.Record, n int, grade string) decision.Decision {
	var found []decision.Decision
	for _, c := range rec.Cases {
		for _, ch := range c.Charges {
			if ch.IsConviction() && crecord.GradeGTE(ch.Grade, grade) {
				found = append(found, chargeListing(c, ch))
			}
		}
	}
	return decision.WithReasons(
		fmt.Sprintf("Does %s's record contain %d or more convictions, graded %s or higher?", rec.Person.FullName(), n, grade),
		len(found) >= n,
		found...,
	)
}

// RecordNotExcludedFromAutosealing is true when nothing in the record bars
// every charge from automated sealing.
func (e *Evaluator) RecordNotExcludedFromAutosealing(rec crecord.Record) decision.Decision {
	bars := []decision.Decision{
		anyFelonyConviction(rec),
		convictionsAtLeast(rec, 2, "M1"),
		convictionsAtLeast(rec, 4, "M"),
	}
	for _, ss := range e.Statutes.SingleStatutes {
		d := e.NoSingleStatuteConvictions(rec, ss, 1, math.Inf(1))
		bars = append(bars, decision.WithReasons(
			fmt.Sprintf("Does the record have any convictions for %s?", ss.Description), !d.Bool(), d.Reasons...))
	}
	return decision.WithReasons(
		"Is this record free of any convictions that exclude it from autosealing?",
		!decision.Any(bars...),
		bars...,
	)
}

// #endregion autoseal-requirements

func chargeListing(c crecord.Case, ch crecord.Charge) decision.Decision {
	return decision.New(
		fmt.Sprintf("%s charge %s, %s (%s)", c.DocketNumber, ch.Sequence, ch.Offense, ch.Grade),
		true,
		fmt.Sprintf("Disposition: %s", ch.Disposition),
	)
}
