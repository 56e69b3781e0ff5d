package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StepKind tags one step of a grading-session agenda. The tag is opaque to
// validation; process code interprets it when the session is run.
type StepKind string

const (
	StepSessionStart    StepKind = "SESSION_START"
	StepSessionBody     StepKind = "SESSION_BODY"
	StepSessionEnd      StepKind = "SESSION_END"
	StepDiscussionTopic StepKind = "DISCUSSION_TOPIC"
)

// SessionStep describes one ordered step of a grading session.
type SessionStep struct {
	Kind StepKind `json:"kind"`
	// RequiresArgument marks steps that need a free-text topic supplied
	// when the step is executed.
	RequiresArgument bool   `json:"requires_argument"`
	Section          string `json:"section,omitempty"`
	// TopicRef points into the definition's Topics map, numbered from 1.
	// Zero means the step references no topic.
	TopicRef int `json:"topic_ref,omitempty"`
}

// StepList is the ordered agenda persisted as JSONB.
type StepList []SessionStep

// TopicMap numbers discussion topics from 1, persisted as JSONB.
type TopicMap map[int]string

// VisibilityMap gates result publication per class: a nil entry means the
// class release has not been scheduled yet.
type VisibilityMap map[string]*time.Time

// SessionDefinition declares, per period, the agenda of grading sessions
// and when each class may see its results.
type SessionDefinition struct {
	ID               string        `db:"id" json:"id"`
	Period           PeriodCode    `db:"period" json:"period"`
	SessionDate      time.Time     `db:"session_date" json:"session_date"`
	ProposalDeadline time.Time     `db:"proposal_deadline" json:"proposal_deadline"`
	Topics           TopicMap      `db:"topics" json:"topics"`
	Steps            StepList      `db:"steps" json:"steps"`
	ClassVisibility  VisibilityMap `db:"class_visibility" json:"class_visibility"`
	Extra            ExtraData     `db:"extra" json:"extra"`
	CreatedAt        time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updated_at"`
}

// VisibleTo reports whether the class may see session results as of the
// given instant: true iff a release time is scheduled and already reached.
func (d *SessionDefinition) VisibleTo(classID string, asOf time.Time) bool {
	release, ok := d.ClassVisibility[classID]
	if !ok || release == nil {
		return false
	}
	return !asOf.Before(*release)
}

// DefinitionFilter narrows definition listings.
type DefinitionFilter struct {
	Period PeriodCode
}

func (s StepList) Value() (driver.Value, error) {
	if s == nil {
		s = StepList{}
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal steps: %w", err)
	}
	return data, nil
}

func (s *StepList) Scan(value interface{}) error {
	return scanJSON(value, s, "StepList")
}

func (m TopicMap) Value() (driver.Value, error) {
	if m == nil {
		m = TopicMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal topics: %w", err)
	}
	return data, nil
}

func (m *TopicMap) Scan(value interface{}) error {
	return scanJSON(value, m, "TopicMap")
}

func (m VisibilityMap) Value() (driver.Value, error) {
	if m == nil {
		m = VisibilityMap{}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("marshal class visibility: %w", err)
	}
	return data, nil
}

func (m *VisibilityMap) Scan(value interface{}) error {
	return scanJSON(value, m, "VisibilityMap")
}

func scanJSON(value interface{}, dest interface{}, kind string) error {
	if value == nil {
		return resetJSON(dest)
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, kind)
	}
	if len(data) == 0 {
		return resetJSON(dest)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", kind, err)
	}
	return nil
}

func resetJSON(dest interface{}) error {
	switch d := dest.(type) {
	case *StepList:
		*d = StepList{}
	case *TopicMap:
		*d = TopicMap{}
	case *VisibilityMap:
		*d = VisibilityMap{}
	}
	return nil
}
