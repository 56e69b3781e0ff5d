package models

import "time"

// RecoveryMode is the recovery-plan code attached to an insufficient mark.
type RecoveryMode string

const (
	// RecoveryNone — no recovery plan assigned.
	RecoveryNone RecoveryMode = ""
	// RecoveryAutonomous — independent study.
	RecoveryAutonomous RecoveryMode = "A"
	// RecoveryCourse — dedicated recovery course.
	RecoveryCourse RecoveryMode = "C"
	// RecoveryHelpDesk — subject help desk (sportello).
	RecoveryHelpDesk RecoveryMode = "S"
	// RecoveryInClass — recovery during ordinary lessons.
	RecoveryInClass RecoveryMode = "I"
)

// AllRecoveryModes lists every valid recovery code.
var AllRecoveryModes = []RecoveryMode{RecoveryNone, RecoveryAutonomous, RecoveryCourse, RecoveryHelpDesk, RecoveryInClass}

// Marks carries the per-subject mark components shared by proposals and
// finalized grades. Component marks are nullable; an unset component is
// simply not part of the subject's assessment.
type Marks struct {
	Oral      *int `db:"oral" json:"oral,omitempty"`
	Written   *int `db:"written" json:"written,omitempty"`
	Practical *int `db:"practical" json:"practical,omitempty"`
	Single    *int `db:"single" json:"single,omitempty"`
	// RecoveryDebt is free text describing the debt to recover.
	RecoveryDebt *string      `db:"recovery_debt" json:"recovery_debt,omitempty"`
	Recovery     RecoveryMode `db:"recovery" json:"recovery"`
	Absences     int          `db:"absences" json:"absences"`
}

// GradeProposal is a teacher's pre-session proposed grade, unique per
// (period, student, subject, teacher). The looser (period, student,
// subject) uniqueness is waived for civic-education subjects, which
// collect one proposal from every teacher of the class.
type GradeProposal struct {
	ID        string     `db:"id" json:"id"`
	Period    PeriodCode `db:"period" json:"period"`
	ClassID   string     `db:"class_id" json:"class_id"`
	StudentID string     `db:"student_id" json:"student_id"`
	SubjectID string     `db:"subject_id" json:"subject_id"`
	TeacherID string     `db:"teacher_id" json:"teacher_id"`
	Marks
	Extra     ExtraData `db:"extra" json:"extra"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SessionGrade is the finalized grade of one student in one subject within
// a session, unique per (session, student, subject) regardless of which
// teacher authored the underlying proposal.
type SessionGrade struct {
	ID        string `db:"id" json:"id"`
	SessionID string `db:"session_id" json:"session_id"`
	StudentID string `db:"student_id" json:"student_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	Marks
	Extra     ExtraData `db:"extra" json:"extra"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ProposalFilter narrows proposal listings.
type ProposalFilter struct {
	Period    PeriodCode
	ClassID   string
	StudentID string
	SubjectID string
	TeacherID string
}
