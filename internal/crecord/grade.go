package crecord

import "strings"

// #region grade-order
// gradeOrder lists grade codes from least to most severe.
var gradeOrder = []string{"", "S", "M", "IC", "M3", "M2", "M1", "F", "F3", "F2", "F1"}

// GradeRank returns the severity index of a grade code. Unknown codes rank as
// the least severe and report known=false.
func GradeRank(grade string) (rank int, known bool) {
	g := strings.ToUpper(strings.TrimSpace(grade))
	for i, code := range gradeOrder {
		if code == g {
			return i, true
		}
	}
	return 0, false
}

// GradeGTE reports whether grade a is at least as severe as grade b.
func GradeGTE(a, b string) bool {
	ra, _ := GradeRank(a)
	rb, _ := GradeRank(b)
	return ra >= rb
}

// GradeBetween reports whether lo <= grade <= hi in severity.
func GradeBetween(lo, hi, grade string) bool {
	return GradeGTE(grade, lo) && GradeGTE(hi, grade)
}

// IsFelonyGrade reports whether the grade code names a felony tier.
func IsFelonyGrade(grade string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(grade)), "F")
}

// IsMisdemeanorGrade reports whether the grade code names a misdemeanor tier.
func IsMisdemeanorGrade(grade string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(grade)), "M")
}

// #endregion grade-order
