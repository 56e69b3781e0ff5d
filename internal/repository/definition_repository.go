package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/giua-dev/scrutini-api/internal/models"
)

// DefinitionRepository handles grading-period definition persistence.
type DefinitionRepository struct {
	db *sqlx.DB
}

// NewDefinitionRepository creates a new definition repository.
func NewDefinitionRepository(db *sqlx.DB) *DefinitionRepository {
	return &DefinitionRepository{db: db}
}

const definitionColumns = `id, period, session_date, proposal_deadline, topics, steps, class_visibility, extra, created_at, updated_at`

// FindByID returns one definition.
func (r *DefinitionRepository) FindByID(ctx context.Context, id string) (*models.SessionDefinition, error) {
	var def models.SessionDefinition
	query := fmt.Sprintf("SELECT %s FROM session_definitions WHERE id = $1", definitionColumns)
	if err := r.db.GetContext(ctx, &def, query, id); err != nil {
		return nil, err
	}
	return &def, nil
}

// FindByPeriod returns the most recent definition for a period.
func (r *DefinitionRepository) FindByPeriod(ctx context.Context, period models.PeriodCode) (*models.SessionDefinition, error) {
	var def models.SessionDefinition
	query := fmt.Sprintf("SELECT %s FROM session_definitions WHERE period = $1 ORDER BY created_at DESC LIMIT 1", definitionColumns)
	if err := r.db.GetContext(ctx, &def, query, period); err != nil {
		return nil, err
	}
	return &def, nil
}

// List returns definitions matching the filter.
func (r *DefinitionRepository) List(ctx context.Context, filter models.DefinitionFilter) ([]models.SessionDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM session_definitions WHERE 1=1", definitionColumns)
	var args []interface{}
	if filter.Period != "" {
		query += fmt.Sprintf(" AND period = $%d", len(args)+1)
		args = append(args, filter.Period)
	}
	query += " ORDER BY session_date"
	var defs []models.SessionDefinition
	if err := r.db.SelectContext(ctx, &defs, query, args...); err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	return defs, nil
}

// Create inserts a definition and stamps the audit timestamps.
func (r *DefinitionRepository) Create(ctx context.Context, def *models.SessionDefinition) error {
	if def.ID == "" {
		def.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	def.CreatedAt = now
	def.UpdatedAt = now
	const query = `INSERT INTO session_definitions (id, period, session_date, proposal_deadline, topics, steps, class_visibility, extra, created_at, updated_at)
        VALUES (:id, :period, :session_date, :proposal_deadline, :topics, :steps, :class_visibility, :extra, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, def); err != nil {
		return fmt.Errorf("create definition: %w", err)
	}
	return nil
}

// Update rewrites the editable fields. created_at is never touched.
func (r *DefinitionRepository) Update(ctx context.Context, def *models.SessionDefinition) error {
	def.UpdatedAt = time.Now().UTC()
	const query = `UPDATE session_definitions
        SET period = :period, session_date = :session_date, proposal_deadline = :proposal_deadline,
            topics = :topics, steps = :steps, class_visibility = :class_visibility, extra = :extra,
            updated_at = :updated_at
        WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, def)
	if err != nil {
		return fmt.Errorf("update definition: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("update definition %s: no rows affected", def.ID)
	}
	return nil
}
