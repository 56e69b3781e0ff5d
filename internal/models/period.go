package models

// PeriodCode identifies a grading period.
type PeriodCode string

const (
	// PeriodFirstTerm is the first-term scrutinio.
	PeriodFirstTerm PeriodCode = "P"
	// PeriodSecondTerm is the second-term scrutinio.
	PeriodSecondTerm PeriodCode = "S"
	// PeriodFinal is the end-of-year scrutinio.
	PeriodFinal PeriodCode = "F"
	// PeriodDeferred is the deferred-judgement scrutinio for students whose
	// final outcome was suspended pending recovery exams.
	PeriodDeferred PeriodCode = "E"
	// PeriodSupplementary is the supplementary scrutinio held after the
	// deferred round.
	PeriodSupplementary PeriodCode = "U"
)

// AllPeriods lists every valid period code. Codes are case-sensitive.
var AllPeriods = []PeriodCode{PeriodFirstTerm, PeriodSecondTerm, PeriodFinal, PeriodDeferred, PeriodSupplementary}

// Valid reports whether the code belongs to the fixed period set.
func (p PeriodCode) Valid() bool {
	for _, known := range AllPeriods {
		if p == known {
			return true
		}
	}
	return false
}

// PeriodChoices returns the period codes as plain strings for choice checks.
func PeriodChoices() []string {
	choices := make([]string, len(AllPeriods))
	for i, p := range AllPeriods {
		choices[i] = string(p)
	}
	return choices
}
