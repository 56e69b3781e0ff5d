package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giua-dev/scrutini-api/internal/models"
)

// ProposalRepository handles teacher grade-proposal persistence.
type ProposalRepository struct {
	db *sqlx.DB
}

// NewProposalRepository creates a new proposal repository.
func NewProposalRepository(db *sqlx.DB) *ProposalRepository {
	return &ProposalRepository{db: db}
}

const proposalColumns = `id, period, class_id, student_id, subject_id, teacher_id, oral, written, practical, single, recovery_debt, recovery, absences, extra, created_at, updated_at`

// FindByID returns one proposal.
func (r *ProposalRepository) FindByID(ctx context.Context, id string) (*models.GradeProposal, error) {
	var proposal models.GradeProposal
	query := fmt.Sprintf("SELECT %s FROM grade_proposals WHERE id = $1", proposalColumns)
	if err := r.db.GetContext(ctx, &proposal, query, id); err != nil {
		return nil, err
	}
	return &proposal, nil
}

// List returns proposals matching the filter.
func (r *ProposalRepository) List(ctx context.Context, filter models.ProposalFilter) ([]models.GradeProposal, error) {
	query := fmt.Sprintf("SELECT %s FROM grade_proposals WHERE 1=1", proposalColumns)
	var args []interface{}
	if filter.Period != "" {
		query += fmt.Sprintf(" AND period = $%d", len(args)+1)
		args = append(args, filter.Period)
	}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		query += fmt.Sprintf(" AND subject_id = $%d", len(args)+1)
		args = append(args, filter.SubjectID)
	}
	if filter.TeacherID != "" {
		query += fmt.Sprintf(" AND teacher_id = $%d", len(args)+1)
		args = append(args, filter.TeacherID)
	}
	query += " ORDER BY student_id, subject_id, teacher_id"
	var proposals []models.GradeProposal
	if err := r.db.SelectContext(ctx, &proposals, query, args...); err != nil {
		return nil, fmt.Errorf("list proposals: %w", err)
	}
	return proposals, nil
}

// ExistsForTeacher checks the strict 4-tuple key (period, student,
// subject, teacher). It applies to every subject type.
func (r *ProposalRepository) ExistsForTeacher(ctx context.Context, period models.PeriodCode, studentID, subjectID, teacherID, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM grade_proposals WHERE period = $1 AND student_id = $2 AND subject_id = $3 AND teacher_id = $4"
	args := []interface{}{period, studentID, subjectID, teacherID}
	if excludeID != "" {
		query += " AND id <> $5"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check proposal teacher uniqueness: %w", err)
	}
	return count > 0, nil
}

// ExistsForSubject checks the looser 3-tuple key (period, student,
// subject) ignoring the teacher. Callers skip this check for
// civic-education subjects.
func (r *ProposalRepository) ExistsForSubject(ctx context.Context, period models.PeriodCode, studentID, subjectID, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM grade_proposals WHERE period = $1 AND student_id = $2 AND subject_id = $3"
	args := []interface{}{period, studentID, subjectID}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check proposal subject uniqueness: %w", err)
	}
	return count > 0, nil
}

// Create inserts a proposal and stamps the audit timestamps.
func (r *ProposalRepository) Create(ctx context.Context, proposal *models.GradeProposal) error {
	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	proposal.CreatedAt = now
	proposal.UpdatedAt = now
	const query = `INSERT INTO grade_proposals (id, period, class_id, student_id, subject_id, teacher_id, oral, written, practical, single, recovery_debt, recovery, absences, extra, created_at, updated_at)
        VALUES (:id, :period, :class_id, :student_id, :subject_id, :teacher_id, :oral, :written, :practical, :single, :recovery_debt, :recovery, :absences, :extra, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, proposal); err != nil {
		return fmt.Errorf("create proposal: %w", err)
	}
	return nil
}

// Update rewrites the mark fields; the key tuple is immutable.
func (r *ProposalRepository) Update(ctx context.Context, proposal *models.GradeProposal) error {
	proposal.UpdatedAt = time.Now().UTC()
	const query = `UPDATE grade_proposals
        SET oral = :oral, written = :written, practical = :practical, single = :single,
            recovery_debt = :recovery_debt, recovery = :recovery, absences = :absences,
            extra = :extra, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, proposal)
	if err != nil {
		return fmt.Errorf("update proposal: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update proposal %s: no rows affected", proposal.ID)
	}
	return nil
}
