package models

import "time"

// SessionState is the workflow status of a grading session. Transitions
// are driven by SessionService; the code set is configuration agreed with
// the registry operators.
type SessionState string

const (
	// SessionNotStarted is the state of a freshly instantiated session.
	SessionNotStarted SessionState = "N"
	// SessionInProgress marks a session currently being conducted.
	SessionInProgress SessionState = "C"
	// SessionClosed marks a completed session. Closed does not imply
	// published: visibility is gated by VisibleFrom alone.
	SessionClosed SessionState = "F"
)

// AllSessionStates lists every valid session state code.
var AllSessionStates = []SessionState{SessionNotStarted, SessionInProgress, SessionClosed}

// SyncStatus tracks whether session results were pushed to the external
// registry. It is a side channel and never gates visibility.
type SyncStatus string

const (
	// SyncNone means no push was ever attempted.
	SyncNone SyncStatus = ""
	// SyncPending means the session is queued for export.
	SyncPending SyncStatus = "N"
	// SyncExported means results were pushed to the registry.
	SyncExported SyncStatus = "E"
	// SyncConfirmed means the registry acknowledged the export.
	SyncConfirmed SyncStatus = "C"
	// SyncBlocked means the registry rejected the export.
	SyncBlocked SyncStatus = "B"
)

// AllSyncStatuses lists every valid sync status code.
var AllSyncStatuses = []SyncStatus{SyncNone, SyncPending, SyncExported, SyncConfirmed, SyncBlocked}

// GradingSession is one scrutinio instance, unique per (period, class).
type GradingSession struct {
	ID          string       `db:"id" json:"id"`
	Period      PeriodCode   `db:"period" json:"period"`
	ClassID     string       `db:"class_id" json:"class_id"`
	State       SessionState `db:"state" json:"state"`
	SessionDate *time.Time   `db:"session_date" json:"session_date,omitempty"`
	StartedAt   *time.Time   `db:"started_at" json:"started_at,omitempty"`
	EndedAt     *time.Time   `db:"ended_at" json:"ended_at,omitempty"`
	// VisibleFrom is the publication gate: once reached, outcomes and
	// grades are exposed to students and families regardless of State.
	VisibleFrom *time.Time `db:"visible_from" json:"visible_from,omitempty"`
	SyncStatus  SyncStatus `db:"sync_status" json:"sync_status"`
	Extra       ExtraData  `db:"extra" json:"extra"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// IsPublished reports whether results are visible as of the given instant.
// A nil VisibleFrom means never published, whatever the session state.
func (s *GradingSession) IsPublished(asOf time.Time) bool {
	if s.VisibleFrom == nil {
		return false
	}
	return !asOf.Before(*s.VisibleFrom)
}

// SessionFilter narrows session listings.
type SessionFilter struct {
	Period   PeriodCode
	ClassID  string
	State    SessionState
	Page     int
	PageSize int
}
