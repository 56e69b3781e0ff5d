package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giua-dev/scrutini-api/internal/models"
)

// SessionGradeRepository handles finalized session-grade persistence.
type SessionGradeRepository struct {
	db *sqlx.DB
}

// NewSessionGradeRepository creates a new session-grade repository.
func NewSessionGradeRepository(db *sqlx.DB) *SessionGradeRepository {
	return &SessionGradeRepository{db: db}
}

const sessionGradeColumns = `id, session_id, student_id, subject_id, oral, written, practical, single, recovery_debt, recovery, absences, extra, created_at, updated_at`

// FindByID returns one finalized grade.
func (r *SessionGradeRepository) FindByID(ctx context.Context, id string) (*models.SessionGrade, error) {
	var grade models.SessionGrade
	query := fmt.Sprintf("SELECT %s FROM session_grades WHERE id = $1", sessionGradeColumns)
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ListBySession returns every finalized grade of a session.
func (r *SessionGradeRepository) ListBySession(ctx context.Context, sessionID string) ([]models.SessionGrade, error) {
	query := fmt.Sprintf("SELECT %s FROM session_grades WHERE session_id = $1 ORDER BY student_id, subject_id", sessionGradeColumns)
	var grades []models.SessionGrade
	if err := r.db.SelectContext(ctx, &grades, query, sessionID); err != nil {
		return nil, fmt.Errorf("list session grades: %w", err)
	}
	return grades, nil
}

// ListBySessionAndStudent returns one student's finalized grades.
func (r *SessionGradeRepository) ListBySessionAndStudent(ctx context.Context, sessionID, studentID string) ([]models.SessionGrade, error) {
	query := fmt.Sprintf("SELECT %s FROM session_grades WHERE session_id = $1 AND student_id = $2 ORDER BY subject_id", sessionGradeColumns)
	var grades []models.SessionGrade
	if err := r.db.SelectContext(ctx, &grades, query, sessionID, studentID); err != nil {
		return nil, fmt.Errorf("list student session grades: %w", err)
	}
	return grades, nil
}

// Exists reports whether (session, student, subject) is already occupied.
func (r *SessionGradeRepository) Exists(ctx context.Context, sessionID, studentID, subjectID, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM session_grades WHERE session_id = $1 AND student_id = $2 AND subject_id = $3"
	args := []interface{}{sessionID, studentID, subjectID}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check session grade uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a finalized grade and stamps the audit timestamps.
func (r *SessionGradeRepository) Create(ctx context.Context, grade *models.SessionGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	grade.CreatedAt = now
	grade.UpdatedAt = now
	const query = `INSERT INTO session_grades (id, session_id, student_id, subject_id, oral, written, practical, single, recovery_debt, recovery, absences, extra, created_at, updated_at)
        VALUES (:id, :session_id, :student_id, :subject_id, :oral, :written, :practical, :single, :recovery_debt, :recovery, :absences, :extra, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create session grade: %w", err)
	}
	return nil
}

// Update rewrites the mark fields; the key tuple is immutable.
func (r *SessionGradeRepository) Update(ctx context.Context, grade *models.SessionGrade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE session_grades
        SET oral = :oral, written = :written, practical = :practical, single = :single,
            recovery_debt = :recovery_debt, recovery = :recovery, absences = :absences,
            extra = :extra, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update session grade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update session grade %s: no rows affected", grade.ID)
	}
	return nil
}

// BulkCreate inserts the grades produced by closing a session in one
// transaction. Upserting on the composite key keeps the promotion
// re-runnable while the session is still open.
func (r *SessionGradeRepository) BulkCreate(ctx context.Context, grades []models.SessionGrade) error {
	if len(grades) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	for i := range grades {
		if grades[i].ID == "" {
			grades[i].ID = uuid.NewString()
		}
		now := time.Now().UTC()
		grades[i].CreatedAt = now
		grades[i].UpdatedAt = now
		const query = `INSERT INTO session_grades (id, session_id, student_id, subject_id, oral, written, practical, single, recovery_debt, recovery, absences, extra, created_at, updated_at)
            VALUES (:id, :session_id, :student_id, :subject_id, :oral, :written, :practical, :single, :recovery_debt, :recovery, :absences, :extra, :created_at, :updated_at)
            ON CONFLICT (session_id, student_id, subject_id)
            DO UPDATE SET oral = EXCLUDED.oral, written = EXCLUDED.written, practical = EXCLUDED.practical,
                single = EXCLUDED.single, recovery_debt = EXCLUDED.recovery_debt, recovery = EXCLUDED.recovery,
                absences = EXCLUDED.absences, extra = EXCLUDED.extra, updated_at = EXCLUDED.updated_at`
		if _, err := tx.NamedExecContext(ctx, query, grades[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("bulk create session grade: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session grades: %w", err)
	}
	return nil
}
