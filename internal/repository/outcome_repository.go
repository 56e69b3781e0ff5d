package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giua-dev/scrutini-api/internal/models"
)

// OutcomeRepository handles per-student outcome persistence.
type OutcomeRepository struct {
	db *sqlx.DB
}

// NewOutcomeRepository creates a new outcome repository.
func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

const outcomeColumns = `id, session_id, student_id, result, average, credit, prior_credit, extra, created_at, updated_at`

// FindByID returns one outcome.
func (r *OutcomeRepository) FindByID(ctx context.Context, id string) (*models.Outcome, error) {
	var outcome models.Outcome
	query := fmt.Sprintf("SELECT %s FROM outcomes WHERE id = $1", outcomeColumns)
	if err := r.db.GetContext(ctx, &outcome, query, id); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// FindBySessionAndStudent returns the unique outcome of one student in one
// session.
func (r *OutcomeRepository) FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*models.Outcome, error) {
	var outcome models.Outcome
	query := fmt.Sprintf("SELECT %s FROM outcomes WHERE session_id = $1 AND student_id = $2", outcomeColumns)
	if err := r.db.GetContext(ctx, &outcome, query, sessionID, studentID); err != nil {
		return nil, err
	}
	return &outcome, nil
}

// Exists reports whether (session, student) is already occupied.
func (r *OutcomeRepository) Exists(ctx context.Context, sessionID, studentID, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM outcomes WHERE session_id = $1 AND student_id = $2"
	args := []interface{}{sessionID, studentID}
	if excludeID != "" {
		query += " AND id <> $3"
		args = append(args, excludeID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return false, fmt.Errorf("check outcome uniqueness: %w", err)
	}
	return count > 0, nil
}

// ListBySession returns every outcome of a session.
func (r *OutcomeRepository) ListBySession(ctx context.Context, sessionID string) ([]models.Outcome, error) {
	query := fmt.Sprintf("SELECT %s FROM outcomes WHERE session_id = $1 ORDER BY student_id", outcomeColumns)
	var outcomes []models.Outcome
	if err := r.db.SelectContext(ctx, &outcomes, query, sessionID); err != nil {
		return nil, fmt.Errorf("list outcomes: %w", err)
	}
	return outcomes, nil
}

// Create inserts an outcome and stamps the audit timestamps.
func (r *OutcomeRepository) Create(ctx context.Context, outcome *models.Outcome) error {
	if outcome.ID == "" {
		outcome.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	outcome.CreatedAt = now
	outcome.UpdatedAt = now
	const query = `INSERT INTO outcomes (id, session_id, student_id, result, average, credit, prior_credit, extra, created_at, updated_at)
        VALUES (:id, :session_id, :student_id, :result, :average, :credit, :prior_credit, :extra, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, outcome); err != nil {
		return fmt.Errorf("create outcome: %w", err)
	}
	return nil
}

// Update rewrites the editable fields; the (session, student) key pair is
// immutable once created.
func (r *OutcomeRepository) Update(ctx context.Context, outcome *models.Outcome) error {
	outcome.UpdatedAt = time.Now().UTC()
	const query = `UPDATE outcomes
        SET result = :result, average = :average, credit = :credit, prior_credit = :prior_credit,
            extra = :extra, updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, outcome)
	if err != nil {
		return fmt.Errorf("update outcome: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update outcome %s: no rows affected", outcome.ID)
	}
	return nil
}
