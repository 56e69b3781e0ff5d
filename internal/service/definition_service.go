package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/validation"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
)

type definitionRepository interface {
	FindByID(ctx context.Context, id string) (*models.SessionDefinition, error)
	FindByPeriod(ctx context.Context, period models.PeriodCode) (*models.SessionDefinition, error)
	List(ctx context.Context, filter models.DefinitionFilter) ([]models.SessionDefinition, error)
	Create(ctx context.Context, def *models.SessionDefinition) error
	Update(ctx context.Context, def *models.SessionDefinition) error
}

// DefinitionRequest carries a grading-period definition payload. Temporal
// fields arrive as strings so malformed values can be reported with the
// proper field.date / field.datetime templates instead of failing JSON
// binding.
type DefinitionRequest struct {
	Period           string              `json:"period"`
	SessionDate      string              `json:"session_date"`
	ProposalDeadline string              `json:"proposal_deadline"`
	Topics           map[int]string      `json:"topics"`
	Steps            []models.SessionStep `json:"steps"`
	// ClassVisibility maps class IDs to an RFC 3339 release timestamp or
	// the empty string for "not yet released".
	ClassVisibility map[string]string `json:"class_visibility"`
	Extra           models.ExtraData  `json:"extra"`
}

// DefinitionService validates and stores grading-period definitions.
type DefinitionService struct {
	repo   definitionRepository
	logger *zap.Logger
}

// NewDefinitionService constructs DefinitionService.
func NewDefinitionService(repo definitionRepository, logger *zap.Logger) *DefinitionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefinitionService{repo: repo, logger: logger}
}

// Get returns one definition.
func (s *DefinitionService) Get(ctx context.Context, id string) (*models.SessionDefinition, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "definition not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load definition")
	}
	return def, nil
}

// List returns definitions matching the filter.
func (s *DefinitionService) List(ctx context.Context, filter models.DefinitionFilter) ([]models.SessionDefinition, error) {
	defs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list definitions")
	}
	return defs, nil
}

// Create validates and stores a new definition.
func (s *DefinitionService) Create(ctx context.Context, req DefinitionRequest) (*models.SessionDefinition, error) {
	def, violations := s.build(req)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create definition")
	}
	s.logger.Info("definition created", zap.String("id", def.ID), zap.String("period", string(def.Period)))
	return def, nil
}

// Update validates and rewrites an existing definition.
func (s *DefinitionService) Update(ctx context.Context, id string, req DefinitionRequest) (*models.SessionDefinition, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	def, violations := s.build(req)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}
	def.ID = id
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update definition")
	}
	return s.Get(ctx, id)
}

// IsClassVisible applies the per-class visibility gate of the period's
// definition.
func (s *DefinitionService) IsClassVisible(ctx context.Context, period models.PeriodCode, classID string, asOf time.Time) (bool, error) {
	def, err := s.repo.FindByPeriod(ctx, period)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load definition")
	}
	return def.VisibleTo(classID, asOf), nil
}

func (s *DefinitionService) build(req DefinitionRequest) (*models.SessionDefinition, validation.List) {
	var violations validation.List

	validation.CheckNotBlank(&violations, "period", req.Period)
	if req.Period != "" {
		validation.CheckChoice(&violations, "period", req.Period, models.PeriodChoices())
	}
	sessionDate, _ := validation.CheckDate(&violations, "session_date", req.SessionDate)
	proposalDeadline, _ := validation.CheckDate(&violations, "proposal_deadline", req.ProposalDeadline)

	if len(req.Steps) == 0 {
		violations.Add("steps", validation.NotBlank)
	}
	for i, step := range req.Steps {
		if step.TopicRef != 0 {
			if _, ok := req.Topics[step.TopicRef]; !ok {
				violations.Add(fmt.Sprintf("steps[%d].topic_ref", i), validation.Choice)
			}
		}
	}

	visibility := models.VisibilityMap{}
	if len(req.ClassVisibility) == 0 {
		violations.Add("class_visibility", validation.NotBlank)
	}
	for classID, raw := range req.ClassVisibility {
		if raw == "" {
			visibility[classID] = nil
			continue
		}
		release, ok := validation.CheckDateTime(&violations, "class_visibility["+classID+"]", raw)
		if ok {
			utc := release.UTC()
			visibility[classID] = &utc
		}
	}

	topics := models.TopicMap(req.Topics)
	if topics == nil {
		topics = models.TopicMap{}
	}

	def := &models.SessionDefinition{
		Period:           models.PeriodCode(req.Period),
		SessionDate:      sessionDate,
		ProposalDeadline: proposalDeadline,
		Topics:           topics,
		Steps:            models.StepList(req.Steps),
		ClassVisibility:  visibility,
		Extra:            req.Extra,
	}
	return def, violations
}
