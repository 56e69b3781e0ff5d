package models

import "time"

// OutcomeCode is the final per-student result of a grading session.
type OutcomeCode string

const (
	// OutcomeAdmitted — the student passed and moves on.
	OutcomeAdmitted OutcomeCode = "A"
	// OutcomeNotAdmitted — the student failed.
	OutcomeNotAdmitted OutcomeCode = "N"
	// OutcomeSuspended — judgement deferred to the recovery scrutinio.
	OutcomeSuspended OutcomeCode = "S"
	// OutcomeNotGraded — the student could not be graded (e.g. exceeded
	// the absence limit).
	OutcomeNotGraded OutcomeCode = "X"
)

// AllOutcomes lists every valid outcome code.
var AllOutcomes = []OutcomeCode{OutcomeAdmitted, OutcomeNotAdmitted, OutcomeSuspended, OutcomeNotGraded}

// Outcome is the aggregated result of one student in one session, unique
// per (session, student).
type Outcome struct {
	ID        string      `db:"id" json:"id"`
	SessionID string      `db:"session_id" json:"session_id"`
	StudentID string      `db:"student_id" json:"student_id"`
	Result    OutcomeCode `db:"result" json:"result"`
	Average   float64     `db:"average" json:"average"`
	// Credit points awarded this term and carried over from prior terms.
	Credit      int       `db:"credit" json:"credit"`
	PriorCredit int       `db:"prior_credit" json:"prior_credit"`
	Extra       ExtraData `db:"extra" json:"extra"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
