package crecord

import (
	"math"
	"strings"
)

// #region address
// Address is a two-line mailing address.
type Address struct {
	LineOne      string `json:"line_one" yaml:"line_one"`
	CityStateZip string `json:"city_state_zip" yaml:"city_state_zip"`
}

func (a Address) String() string {
	return a.LineOne + "\n" + a.CityStateZip
}

// #endregion address

// #region person
// Person is the subject of a criminal record.
type Person struct {
	FirstName   string   `json:"first_name" validate:"required"`
	LastName    string   `json:"last_name" validate:"required"`
	DateOfBirth Date     `json:"date_of_birth"`
	DateOfDeath Date     `json:"date_of_death"`
	Aliases     []string `json:"aliases"`
	SSN         string   `json:"ssn,omitempty"`
	Address     *Address `json:"address,omitempty"`
}

// Age is the person's age in whole years on asOf. An absent birth date gives 0.
func (p Person) Age(asOf Date) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	return YearsBetween(p.DateOfBirth, asOf)
}

// YearsDead is the number of whole years since death, or -Inf if the person
// is not known to have died.
func (p Person) YearsDead(asOf Date) float64 {
	if p.DateOfDeath.IsZero() {
		return math.Inf(-1)
	}
	return float64(YearsBetween(p.DateOfDeath, asOf))
}

func (p Person) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Person) clone() Person {
	out := p
	out.Aliases = append([]string(nil), p.Aliases...)
	if p.Address != nil {
		addr := *p.Address
		out.Address = &addr
	}
	return out
}

// #endregion person
