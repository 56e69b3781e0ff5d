package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/validation"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
)

type outcomeRepository interface {
	FindByID(ctx context.Context, id string) (*models.Outcome, error)
	FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*models.Outcome, error)
	Exists(ctx context.Context, sessionID, studentID, excludeID string) (bool, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.Outcome, error)
	Create(ctx context.Context, outcome *models.Outcome) error
	Update(ctx context.Context, outcome *models.Outcome) error
}

type studentReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// OutcomeRequest records or rewrites a student's session result.
type OutcomeRequest struct {
	StudentID   string           `json:"student_id"`
	Result      string           `json:"result"`
	Average     float64          `json:"average"`
	Credit      int              `json:"credit"`
	PriorCredit int              `json:"prior_credit"`
	Extra       models.ExtraData `json:"extra"`
}

// OutcomeService manages per-student session outcomes.
type OutcomeService struct {
	repo     outcomeRepository
	students studentReader
	sessions gradeSessionReader
	cache    *CacheService
	logger   *zap.Logger
}

// NewOutcomeService constructs OutcomeService.
func NewOutcomeService(repo outcomeRepository, students studentReader, sessions gradeSessionReader, cache *CacheService, logger *zap.Logger) *OutcomeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutcomeService{repo: repo, students: students, sessions: sessions, cache: cache, logger: logger}
}

// Get returns one outcome.
func (s *OutcomeService) Get(ctx context.Context, id string) (*models.Outcome, error) {
	outcome, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outcome")
	}
	return outcome, nil
}

// GetByStudent returns the unique outcome of one student in a session.
func (s *OutcomeService) GetByStudent(ctx context.Context, sessionID, studentID string) (*models.Outcome, error) {
	outcome, err := s.repo.FindBySessionAndStudent(ctx, sessionID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outcome")
	}
	return outcome, nil
}

// ListBySession returns every outcome of a session.
func (s *OutcomeService) ListBySession(ctx context.Context, sessionID string) ([]models.Outcome, error) {
	outcomes, err := s.repo.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list outcomes")
	}
	return outcomes, nil
}

// Record stores a student's result inside an open session. Each student
// holds at most one outcome per session.
func (s *OutcomeService) Record(ctx context.Context, sessionID string, req OutcomeRequest) (*models.Outcome, error) {
	session, err := s.loadOpenSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	violations := s.check(req, true)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	taken, err := s.repo.Exists(ctx, sessionID, req.StudentID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate outcome")
	}
	if taken {
		violations.Add("session_id+student_id", validation.Unique)
		return nil, appErrors.WithDetails(appErrors.ErrConflict, violations)
	}

	outcome := &models.Outcome{
		SessionID:   sessionID,
		StudentID:   req.StudentID,
		Result:      models.OutcomeCode(req.Result),
		Average:     req.Average,
		Credit:      req.Credit,
		PriorCredit: req.PriorCredit,
		Extra:       req.Extra,
	}
	if err := s.repo.Create(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create outcome")
	}
	s.logger.Info("outcome recorded",
		zap.String("id", outcome.ID),
		zap.String("session", sessionID),
		zap.String("student", outcome.StudentID),
		zap.String("result", string(outcome.Result)))
	s.invalidateResults(ctx, session.ClassID)
	return outcome, nil
}

// Update rewrites an outcome's editable fields; the (session, student)
// pair is immutable. The owning session must be in progress.
func (s *OutcomeService) Update(ctx context.Context, id string, req OutcomeRequest) (*models.Outcome, error) {
	outcome, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := s.loadOpenSession(ctx, outcome.SessionID)
	if err != nil {
		return nil, err
	}

	violations := s.check(req, false)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	outcome.Result = models.OutcomeCode(req.Result)
	outcome.Average = req.Average
	outcome.Credit = req.Credit
	outcome.PriorCredit = req.PriorCredit
	outcome.Extra = req.Extra
	if err := s.repo.Update(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update outcome")
	}
	s.invalidateResults(ctx, session.ClassID)
	return s.Get(ctx, id)
}

func (s *OutcomeService) check(req OutcomeRequest, requireStudent bool) validation.List {
	var violations validation.List
	if requireStudent {
		validation.CheckNotBlank(&violations, "student_id", req.StudentID)
	}
	validation.CheckNotBlank(&violations, "result", req.Result)
	if req.Result != "" {
		validation.CheckChoice(&violations, "result", req.Result, outcomeChoices())
	}
	if req.Average < 0 {
		violations.Add("average", validation.ZeroPositive)
	}
	validation.CheckZeroPositive(&violations, "credit", req.Credit)
	validation.CheckZeroPositive(&violations, "prior_credit", req.PriorCredit)
	return violations
}

func (s *OutcomeService) loadOpenSession(ctx context.Context, sessionID string) (*models.GradingSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.State != models.SessionInProgress {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session is not in progress")
	}
	return session, nil
}

func (s *OutcomeService) invalidateResults(ctx context.Context, classID string) {
	s.cache.Invalidate(ctx, "results:class:"+classID)
}

func outcomeChoices() []string {
	choices := make([]string, len(models.AllOutcomes))
	for i, c := range models.AllOutcomes {
		choices[i] = string(c)
	}
	return choices
}
