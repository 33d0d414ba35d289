package rules

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/danielpatrickdp/cleanslate/go-screener/internal/crecord"
	"github.com/danielpatrickdp/cleanslate/go-screener/internal/decision"
)

// #region person
// IsOverAge is true when the person is strictly older than limit.
func (e *Evaluator) IsOverAge(p crecord.Person, limit int) decision.Decision {
	age := p.Age(e.Now)
	return decision.New(
		fmt.Sprintf("Is %s over %d?", p.FirstName, limit),
		age > limit,
		fmt.Sprintf("%s is %d", p.FirstName, age),
	)
}

// DeceasedFor is true when the person died more than years ago.
func (e *Evaluator) DeceasedFor(p crecord.Person, years int) decision.Decision {
	dead := p.YearsDead(e.Now)
	text := fmt.Sprintf("%s is not dead, as far as I know.", p.FirstName)
	if dead >= 0 {
		text = fmt.Sprintf("It has been %s since %s's death.", yearsText(dead), p.FirstName)
	}
	return decision.New(
		fmt.Sprintf("Has %s been deceased for %d years?", p.FirstName, years),
		dead > float64(years),
		text,
	)
}

// #endregion person

// #region record-time
// YearsSinceLastContact is true when the record has been free of arrest or
// prosecution for at least limit years.
func (e *Evaluator) YearsSinceLastContact(rec crecord.Record, limit int) decision.Decision {
	years := rec.YearsSinceLastArrestOrProsecution(e.Now)
	return decision.New(
		fmt.Sprintf("Has %s been free of arrest or prosecution for %d years?", rec.Person.FirstName, limit),
		years >= float64(limit),
		contactText(years),
	)
}

// YearsSinceFinalRelease is true when the final release from confinement was
// more than limit years ago. A person never confined passes.
func (e *Evaluator) YearsSinceFinalRelease(rec crecord.Record, limit int) decision.Decision {
	years, issues := rec.YearsSinceFinalRelease(e.Now)
	e.issues(issues)
	text := fmt.Sprintf("It has been %s.", yearsText(years))
	if math.IsInf(years, 1) {
		text = fmt.Sprintf("%s does not appear to have been confined.", rec.Person.FirstName)
	}
	return decision.New(
		fmt.Sprintf("Has it been at least %d years since %s's final release from custody?", limit, rec.Person.FirstName),
		years > float64(limit),
		text,
	)
}

// ArrestFreeFor is true when the record has been arrest free for more than
// limit years.
func (e *Evaluator) ArrestFreeFor(rec crecord.Record, limit int) decision.Decision {
	years := rec.YearsSinceLastArrestOrProsecution(e.Now)
	text := fmt.Sprintf("It appears to have been %s since the last arrest or prosecution.", yearsText(years))
	if math.IsInf(years, 1) {
		text = "There is no arrest or prosecution on the record."
	}
	return decision.New(
		fmt.Sprintf("Has %s been arrest free and prosecution free for %s years?", rec.Person.FirstName, numberWord(limit)),
		years > float64(limit),
		text,
	)
}

func contactText(years float64) string {
	if math.IsInf(years, 1) {
		return "There is no arrest or prosecution on the record."
	}
	return fmt.Sprintf("It has been %s.", yearsText(years))
}

// #endregion record-time

// #region charge
// IsSummary is true for a charge graded S.
func IsSummary(ch crecord.Charge) decision.Decision {
	grade := strings.TrimSpace(ch.Grade)
	return decision.New(
		fmt.Sprintf("Is this charge for %s a summary?", ch.Offense),
		grade == "S",
		fmt.Sprintf("The charge's grade is %s", grade),
	)
}

// IsUnresolved is true when the charge has no disposition.
func IsUnresolved(ch crecord.Charge) decision.Decision {
	name := fmt.Sprintf("Is charge %s, for %s, still unresolved?", ch.Sequence, ch.Offense)
	if ch.IsUnresolved() {
		return decision.New(name, true, "The charge has no disposition, so it appears to be unresolved.")
	}
	return decision.New(name, false, fmt.Sprintf("The charge was resolved with the disposition, '%s'.", ch.Disposition))
}

// IsConviction has a nil value when the disposition is missing, which
// coerces to false.
func IsConviction(ch crecord.Charge) decision.Decision {
	name := fmt.Sprintf("Is charge %s, for %s, a conviction?", ch.Sequence, ch.Offense)
	if ch.IsUnresolved() {
		return decision.New(name, nil,
			"The charge is missing a disposition, so this case may not be closed (it may have simply been transferred).")
	}
	if ch.IsConviction() {
		return decision.New(name, true, fmt.Sprintf("The charge's disposition %s indicates a conviction", ch.Disposition))
	}
	return decision.New(name, false, fmt.Sprintf("The charge's disposition %s indicates its not a conviction.", ch.Disposition))
}

// IsConvictionOrUnresolved is true when the charge cannot be expunged as a
// nonconviction.
func IsConvictionOrUnresolved(ch crecord.Charge) decision.Decision {
	unresolved, conviction := IsUnresolved(ch), IsConviction(ch)
	return decision.WithReasons(
		fmt.Sprintf("Is charge %s, for %s, either a conviction or still unresolved?", ch.Sequence, ch.Offense),
		decision.Any(unresolved, conviction),
		unresolved, conviction,
	)
}

// IsSummaryConviction is true for a conviction graded S.
func IsSummaryConviction(ch crecord.Charge) decision.Decision {
	summary, conviction := IsSummary(ch), IsConviction(ch)
	return decision.WithReasons(
		fmt.Sprintf("Is the charge %s for %s a summary conviction?", ch.Sequence, ch.Offense),
		decision.All(summary, conviction),
		summary, conviction,
	)
}

// IsNonconviction is true for a resolved charge that is not a conviction.
func IsNonconviction(ch crecord.Charge) decision.Decision {
	name := fmt.Sprintf("Is charge %s, for %s, a nonconviction?", ch.Sequence, ch.Offense)
	switch {
	case ch.IsUnresolved():
		return decision.New(name, false, "The charge has no disposition, so it appears to be unresolved.")
	case ch.IsConviction():
		return decision.New(name, false, fmt.Sprintf("The charge's disposition %s indicates a conviction", ch.Disposition))
	}
	return decision.New(name, true, fmt.Sprintf("The charge was resolved with the disposition, '%s'.", ch.Disposition))
}

// GradeIsBetween is true when lo <= grade <= hi in the grade order.
func GradeIsBetween(lo, hi string, ch crecord.Charge) decision.Decision {
	return decision.New(
		fmt.Sprintf("Is the grade of %s between %s and %s?", ch.Offense, lo, hi),
		crecord.GradeBetween(lo, hi, ch.Grade),
		fmt.Sprintf("The charge's grade is %q.", ch.Grade),
	)
}

// #endregion charge

// #region text
func yearsText(years float64) string {
	if math.IsInf(years, 0) {
		return "an unlimited number of years"
	}
	n := strconv.FormatFloat(years, 'f', -1, 64)
	if n == "1" {
		return "1 year"
	}
	return n + " years"
}

var smallNumbers = []string{
	"zero", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine", "ten",
	"eleven", "twelve", "thirteen", "fourteen", "fifteen", "sixteen", "seventeen", "eighteen", "nineteen", "twenty",
}

func numberWord(n int) string {
	if n >= 0 && n < len(smallNumbers) {
		return smallNumbers[n]
	}
	return strconv.Itoa(n)
}

// #endregion text
