package models

import (
	"strconv"
	"time"
)

// SubjectType classifies a subject for grading rules.
type SubjectType string

const (
	SubjectTypeNormal   SubjectType = "N"
	SubjectTypeReligion SubjectType = "R"
	SubjectTypeSupport  SubjectType = "S"
	// SubjectTypeCivicEducation marks educazione civica, graded jointly by
	// every teacher of the class.
	SubjectTypeCivicEducation SubjectType = "E"
)

// Subject is a taught discipline referenced by grade records.
type Subject struct {
	ID        string      `db:"id" json:"id"`
	Name      string      `db:"name" json:"name"`
	Type      SubjectType `db:"type" json:"type"`
	CreatedAt time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt time.Time   `db:"updated_at" json:"updated_at"`
}

// IsCivicEducation reports whether the civic-education proposal carve-out
// applies to this subject.
func (s *Subject) IsCivicEducation() bool {
	return s != nil && s.Type == SubjectTypeCivicEducation
}

// Student is an enrolled student reference.
type Student struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	ClassID   *string   `db:"class_id" json:"class_id,omitempty"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Teacher is a teaching-staff reference.
type Teacher struct {
	ID        string    `db:"id" json:"id"`
	FirstName string    `db:"first_name" json:"first_name"`
	LastName  string    `db:"last_name" json:"last_name"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Class is a class-group reference (e.g. year 3, section A).
type Class struct {
	ID        string    `db:"id" json:"id"`
	Year      int       `db:"year" json:"year"`
	Section   string    `db:"section" json:"section"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Label renders the conventional class name, e.g. "3A".
func (c *Class) Label() string {
	if c == nil {
		return ""
	}
	return strconv.Itoa(c.Year) + c.Section
}
