package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giua-dev/scrutini-api/internal/models"
)

// ArchiveRepository handles the immutable transcript archive.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository creates a new archive repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

const archivedOutcomeColumns = `id, student_id, class_label, result, period, average, credit, prior_credit, extra, created_at, updated_at`
const archivedGradeColumns = `id, archived_outcome_id, subject_id, grade, gaps, extra, created_at, updated_at`

// FindOutcomeByID returns one archived outcome.
func (r *ArchiveRepository) FindOutcomeByID(ctx context.Context, id string) (*models.ArchivedOutcome, error) {
	var outcome models.ArchivedOutcome
	query := fmt.Sprintf("SELECT %s FROM archived_outcomes WHERE id = $1", archivedOutcomeColumns)
	if err := r.db.GetContext(ctx, &outcome, query, id); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// FindOutcomeByStudent returns the unique archived outcome of a student.
func (r *ArchiveRepository) FindOutcomeByStudent(ctx context.Context, studentID string) (*models.ArchivedOutcome, error) {
	var outcome models.ArchivedOutcome
	query := fmt.Sprintf("SELECT %s FROM archived_outcomes WHERE student_id = $1", archivedOutcomeColumns)
	if err := r.db.GetContext(ctx, &outcome, query, studentID); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// FindGradeByID returns one archived grade.
func (r *ArchiveRepository) FindGradeByID(ctx context.Context, id string) (*models.ArchivedGrade, error) {
	var grade models.ArchivedGrade
	query := fmt.Sprintf("SELECT %s FROM archived_grades WHERE id = $1", archivedGradeColumns)
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// ExistsOutcome reports whether the student already has an archived
// outcome.
func (r *ArchiveRepository) ExistsOutcome(ctx context.Context, studentID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(1) FROM archived_outcomes WHERE student_id = $1", studentID); err != nil {
		return false, fmt.Errorf("check archived outcome uniqueness: %w", err)
	}
	return count > 0, nil
}

// ExistsGrade reports whether (archived outcome, subject) is occupied.
func (r *ArchiveRepository) ExistsGrade(ctx context.Context, archivedOutcomeID, subjectID string) (bool, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(1) FROM archived_grades WHERE archived_outcome_id = $1 AND subject_id = $2", archivedOutcomeID, subjectID); err != nil {
		return false, fmt.Errorf("check archived grade uniqueness: %w", err)
	}
	return count > 0, nil
}

// ListGrades returns the per-subject votes of an archived outcome.
func (r *ArchiveRepository) ListGrades(ctx context.Context, archivedOutcomeID string) ([]models.ArchivedGrade, error) {
	query := fmt.Sprintf("SELECT %s FROM archived_grades WHERE archived_outcome_id = $1 ORDER BY subject_id", archivedGradeColumns)
	var grades []models.ArchivedGrade
	if err := r.db.SelectContext(ctx, &grades, query, archivedOutcomeID); err != nil {
		return nil, fmt.Errorf("list archived grades: %w", err)
	}
	return grades, nil
}

// CreateSnapshot stores the outcome and its per-subject grades in one
// transaction. The snapshot is never re-derived afterwards.
func (r *ArchiveRepository) CreateSnapshot(ctx context.Context, outcome *models.ArchivedOutcome, grades []models.ArchivedGrade) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	outcome.CreatedAt = now
	outcome.UpdatedAt = now
	const outcomeQuery = `INSERT INTO archived_outcomes (id, student_id, class_label, result, period, average, credit, prior_credit, extra, created_at, updated_at)
        VALUES (:id, :student_id, :class_label, :result, :period, :average, :credit, :prior_credit, :extra, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, outcomeQuery, outcome); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("create archived outcome: %w", err)
	}
	for i := range grades {
		grades[i].ArchivedOutcomeID = outcome.ID
		if grades[i].ID == "" {
			grades[i].ID = uuid.NewString()
		}
		grades[i].CreatedAt = now
		grades[i].UpdatedAt = now
		const gradeQuery = `INSERT INTO archived_grades (id, archived_outcome_id, subject_id, grade, gaps, extra, created_at, updated_at)
            VALUES (:id, :archived_outcome_id, :subject_id, :grade, :gaps, :extra, :created_at, :updated_at)`
		if _, err := tx.NamedExecContext(ctx, gradeQuery, grades[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("create archived grade: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive snapshot: %w", err)
	}
	return nil
}

// UpdateOutcome applies a data correction to an archived outcome. There is
// no re-sync from live data.
func (r *ArchiveRepository) UpdateOutcome(ctx context.Context, outcome *models.ArchivedOutcome) error {
	outcome.UpdatedAt = time.Now().UTC()
	const query = `UPDATE archived_outcomes
        SET class_label = :class_label, result = :result, period = :period, average = :average,
            credit = :credit, prior_credit = :prior_credit, extra = :extra, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, outcome)
	if err != nil {
		return fmt.Errorf("update archived outcome: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update archived outcome %s: no rows affected", outcome.ID)
	}
	return nil
}

// UpdateGrade applies a data correction to an archived grade.
func (r *ArchiveRepository) UpdateGrade(ctx context.Context, grade *models.ArchivedGrade) error {
	grade.UpdatedAt = time.Now().UTC()
	const query = `UPDATE archived_grades
        SET grade = :grade, gaps = :gaps, extra = :extra, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, grade)
	if err != nil {
		return fmt.Errorf("update archived grade: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update archived grade %s: no rows affected", grade.ID)
	}
	return nil
}
