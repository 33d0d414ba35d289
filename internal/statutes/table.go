package statutes

import (
	_ "embed"
	"fmt"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed exclusions.yaml
var exclusionsYAML []byte

// #region types
// Category names a section range whose convictions exclude sealing.
type Category string

const (
	DangerToPerson       Category = "danger_to_person"
	OffenseAgainstFamily Category = "offense_against_family"
	Firearms             Category = "firearms"
)

func (c *Category) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	switch incoming := Category(s); incoming {
	case DangerToPerson, OffenseAgainstFamily, Firearms:
		*c = incoming
		return nil
	default:
		return fmt.Errorf("invalid value for category: %q", s)
	}
}

// Range is an exclusive section range within a chapter. GradeFloor, when
// set, is the least severe grade the exclusion applies to.
type Range struct {
	Category    Category `yaml:"category"`
	Description string   `yaml:"description"`
	Chapter     int      `yaml:"chapter"`
	Above       float64  `yaml:"above"`
	Below       float64  `yaml:"below"`
	GradeFloor  string   `yaml:"grade_floor"`
}

// Contains reports above < section < below within the range's chapter.
func (r Range) Contains(s Statute) bool {
	return s.Chapter == r.Chapter && s.Section > r.Above && s.Section < r.Below
}

// SingleStatute is a set of sections any conviction for which bars sealing.
type SingleStatute struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description"`
	Chapter     int       `yaml:"chapter"`
	Sections    []float64 `yaml:"sections"`
}

// Matches reports the statute is one of the listed sections.
func (ss SingleStatute) Matches(s Statute) bool {
	return s.Chapter == ss.Chapter && slices.Contains(ss.Sections, s.Section)
}

// Table is the full set of exclusion data.
type Table struct {
	Ranges                   []Range         `yaml:"ranges"`
	TieredSexOffenses        []string        `yaml:"tiered_sex_offenses"`
	CorruptionOfMinors       string          `yaml:"corruption_of_minors"`
	CrueltyToAnimals         []float64       `yaml:"cruelty_to_animals"`
	SingleStatutes           []SingleStatute `yaml:"single_statutes"`
	PunishableTwoYearsGrades []string        `yaml:"punishable_two_years_grades"`
}

// #endregion types

// #region load
// Load parses and validates a table document.
func Load(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal the statute table: %w", err)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Load(exclusionsYAML)
})

// Default is the embedded table. It panics if the embedded YAML is invalid,
// which the package tests guard against.
func Default() *Table {
	t, err := loadDefault()
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) validate() error {
	seen := map[Category]bool{}
	for _, r := range t.Ranges {
		if r.Above >= r.Below {
			return fmt.Errorf("range %s: above %v must be less than below %v", r.Category, r.Above, r.Below)
		}
		if seen[r.Category] {
			return fmt.Errorf("range %s declared twice", r.Category)
		}
		seen[r.Category] = true
	}
	for _, c := range []Category{DangerToPerson, OffenseAgainstFamily, Firearms} {
		if !seen[c] {
			return fmt.Errorf("missing range %s", c)
		}
	}
	for _, ss := range t.SingleStatutes {
		if ss.Name == "" || len(ss.Sections) == 0 {
			return fmt.Errorf("single statute %q needs a name and sections", ss.Name)
		}
	}
	if t.CorruptionOfMinors == "" {
		return fmt.Errorf("corruption_of_minors key is required")
	}
	return nil
}

// #endregion load

// #region lookups
// Range returns the range for a category. Load guarantees it exists.
func (t *Table) Range(c Category) Range {
	for _, r := range t.Ranges {
		if r.Category == c {
			return r
		}
	}
	return Range{Category: c}
}

// IsTieredSexOffense reports the statute key is on the tier list.
func (t *Table) IsTieredSexOffense(s Statute) bool {
	return s.Chapter == 18 && slices.Contains(t.TieredSexOffenses, s.Key())
}

// IsCorruptionOfMinors reports the statute is the corruption-of-minors clause.
func (t *Table) IsCorruptionOfMinors(s Statute) bool {
	return s.Chapter == 18 && s.Key() == t.CorruptionOfMinors
}

// IsCrueltyToAnimals reports a Title 18 cruelty-to-animals section.
func (t *Table) IsCrueltyToAnimals(s Statute) bool {
	return s.Chapter == 18 && slices.Contains(t.CrueltyToAnimals, s.Section)
}

// PunishableTwoYears reports whether a grade stands in for an offense
// punishable by two or more years.
func (t *Table) PunishableTwoYears(grade string) bool {
	return slices.Contains(t.PunishableTwoYearsGrades, grade)
}

// #endregion lookups
