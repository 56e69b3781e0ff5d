package models

import "time"

// ArchivedOutcome is the immutable transcript snapshot of a student's
// outcome, unique per student. It deliberately carries a free-text class
// label instead of a class reference so it survives deletion of the live
// class and session data.
type ArchivedOutcome struct {
	ID          string      `db:"id" json:"id"`
	StudentID   string      `db:"student_id" json:"student_id"`
	ClassLabel  string      `db:"class_label" json:"class_label"`
	Result      OutcomeCode `db:"result" json:"result"`
	Period      PeriodCode  `db:"period" json:"period"`
	Average     float64     `db:"average" json:"average"`
	Credit      int         `db:"credit" json:"credit"`
	PriorCredit int         `db:"prior_credit" json:"prior_credit"`
	Extra       ExtraData   `db:"extra" json:"extra"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `db:"updated_at" json:"updated_at"`
}

// ArchivedGrade is one per-subject vote inside an archived transcript,
// unique per (archived outcome, subject).
type ArchivedGrade struct {
	ID                string `db:"id" json:"id"`
	ArchivedOutcomeID string `db:"archived_outcome_id" json:"archived_outcome_id"`
	SubjectID         string `db:"subject_id" json:"subject_id"`
	Grade             *int   `db:"grade" json:"grade,omitempty"`
	// Gaps is free text describing remaining learning gaps.
	Gaps      *string   `db:"gaps" json:"gaps,omitempty"`
	Extra     ExtraData `db:"extra" json:"extra"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Transcript bundles an archived outcome with its per-subject grades.
type Transcript struct {
	Outcome ArchivedOutcome `json:"outcome"`
	Grades  []ArchivedGrade `json:"grades"`
}
