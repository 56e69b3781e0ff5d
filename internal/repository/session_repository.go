package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giua-dev/scrutini-api/internal/models"
)

// SessionRepository handles grading-session persistence.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, period, class_id, state, session_date, started_at, ended_at, visible_from, sync_status, extra, created_at, updated_at`

// FindByID returns one session.
func (r *SessionRepository) FindByID(ctx context.Context, id string) (*models.GradingSession, error) {
	var session models.GradingSession
	query := fmt.Sprintf("SELECT %s FROM grading_sessions WHERE id = $1", sessionColumns)
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// FindByPeriodAndClass returns the unique session for a (period, class).
func (r *SessionRepository) FindByPeriodAndClass(ctx context.Context, period models.PeriodCode, classID string) (*models.GradingSession, error) {
	var session models.GradingSession
	query := fmt.Sprintf("SELECT %s FROM grading_sessions WHERE period = $1 AND class_id = $2", sessionColumns)
	if err := r.db.GetContext(ctx, &session, query, period, classID); err != nil {
		return nil, err
	}
	return &session, nil
}

// Exists reports whether a session already occupies (period, class),
// excluding the given id when updating.
func (r *SessionRepository) Exists(ctx context.Context, period models.PeriodCode, classID, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM grading_sessions WHERE period = $1 AND class_id = $2"
	args := []interface{}{period, classID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check session uniqueness: %w", err)
	}
	return count > 0, nil
}

// List returns sessions matching the filter with a total count.
func (r *SessionRepository) List(ctx context.Context, filter models.SessionFilter) ([]models.GradingSession, int, error) {
	where := " WHERE 1=1"
	var args []interface{}
	if filter.Period != "" {
		where += fmt.Sprintf(" AND period = $%d", len(args)+1)
		args = append(args, filter.Period)
	}
	if filter.ClassID != "" {
		where += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.State != "" {
		where += fmt.Sprintf(" AND state = $%d", len(args)+1)
		args = append(args, filter.State)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(1) FROM grading_sessions"+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM grading_sessions%s ORDER BY period, class_id", sessionColumns, where)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
		args = append(args, size, (page-1)*size)
	}
	var sessions []models.GradingSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, total, nil
}

// ListVisibleByClass returns the class's sessions already published as of
// the given instant.
func (r *SessionRepository) ListVisibleByClass(ctx context.Context, classID string, asOf time.Time) ([]models.GradingSession, error) {
	query := fmt.Sprintf("SELECT %s FROM grading_sessions WHERE class_id = $1 AND visible_from IS NOT NULL AND visible_from <= $2 ORDER BY period", sessionColumns)
	var sessions []models.GradingSession
	if err := r.db.SelectContext(ctx, &sessions, query, classID, asOf); err != nil {
		return nil, fmt.Errorf("list visible sessions: %w", err)
	}
	return sessions, nil
}

// Create inserts a session and stamps the audit timestamps.
func (r *SessionRepository) Create(ctx context.Context, session *models.GradingSession) error {
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	const query = `INSERT INTO grading_sessions (id, period, class_id, state, session_date, started_at, ended_at, visible_from, sync_status, extra, created_at, updated_at)
        VALUES (:id, :period, :class_id, :state, :session_date, :started_at, :ended_at, :visible_from, :sync_status, :extra, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// UpdateState moves the session through its workflow, recording the
// occurred/started/ended timestamps alongside.
func (r *SessionRepository) UpdateState(ctx context.Context, id string, state models.SessionState, sessionDate, startedAt, endedAt *time.Time) error {
	const query = `UPDATE grading_sessions
        SET state = $2, session_date = $3, started_at = $4, ended_at = $5, updated_at = $6
        WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, state, sessionDate, startedAt, endedAt, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session state: %w", err)
	}
	return nil
}

// UpdateVisibility sets or clears the publication gate.
func (r *SessionRepository) UpdateVisibility(ctx context.Context, id string, visibleFrom *time.Time) error {
	const query = `UPDATE grading_sessions SET visible_from = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, visibleFrom, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session visibility: %w", err)
	}
	return nil
}

// UpdateSyncStatus records the external-registry push status.
func (r *SessionRepository) UpdateSyncStatus(ctx context.Context, id string, status models.SyncStatus) error {
	const query = `UPDATE grading_sessions SET sync_status = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session sync status: %w", err)
	}
	return nil
}

// UpdateExtra rewrites the extension bag.
func (r *SessionRepository) UpdateExtra(ctx context.Context, id string, extra models.ExtraData) error {
	const query = `UPDATE grading_sessions SET extra = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, extra, time.Now().UTC()); err != nil {
		return fmt.Errorf("update session extra: %w", err)
	}
	return nil
}
