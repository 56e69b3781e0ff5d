package models

// SessionResults bundles everything a published session exposes to
// students and families.
type SessionResults struct {
	Session  GradingSession `json:"session"`
	Outcomes []Outcome      `json:"outcomes"`
	Grades   []SessionGrade `json:"grades"`
}

// ClassResults is the published view of a class across its visible
// sessions. Sessions whose visibility gate has not been reached are never
// included.
type ClassResults struct {
	ClassID  string           `json:"class_id"`
	Sessions []SessionResults `json:"sessions"`
}
