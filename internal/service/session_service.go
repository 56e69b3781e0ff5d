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

type sessionRepository interface {
	FindByID(ctx context.Context, id string) (*models.GradingSession, error)
	FindByPeriodAndClass(ctx context.Context, period models.PeriodCode, classID string) (*models.GradingSession, error)
	Exists(ctx context.Context, period models.PeriodCode, classID, excludeID string) (bool, error)
	List(ctx context.Context, filter models.SessionFilter) ([]models.GradingSession, int, error)
	ListVisibleByClass(ctx context.Context, classID string, asOf time.Time) ([]models.GradingSession, error)
	Create(ctx context.Context, session *models.GradingSession) error
	UpdateState(ctx context.Context, id string, state models.SessionState, sessionDate, startedAt, endedAt *time.Time) error
	UpdateVisibility(ctx context.Context, id string, visibleFrom *time.Time) error
	UpdateSyncStatus(ctx context.Context, id string, status models.SyncStatus) error
}

type classReader interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type sessionOutcomeLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.Outcome, error)
}

type sessionGradeLister interface {
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionGrade, error)
}

// Legal state transitions. Closed sessions may be reopened for
// corrections; everything else moves forward only.
var stateTransitions = map[models.SessionState][]models.SessionState{
	models.SessionNotStarted: {models.SessionInProgress},
	models.SessionInProgress: {models.SessionClosed},
	models.SessionClosed:     {models.SessionInProgress},
}

// CreateSessionRequest instantiates a session for a (period, class).
type CreateSessionRequest struct {
	Period  string           `json:"period"`
	ClassID string           `json:"class_id"`
	Extra   models.ExtraData `json:"extra"`
}

// UpdateStateRequest moves a session through its workflow. Timestamps are
// RFC 3339 strings; an empty field leaves the stored value untouched.
type UpdateStateRequest struct {
	State       string `json:"state"`
	SessionDate string `json:"session_date"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at"`
}

// VisibilityRequest sets or clears the publication gate.
type VisibilityRequest struct {
	VisibleFrom string `json:"visible_from"`
}

// SyncRequest records the external-registry push status.
type SyncRequest struct {
	Status string `json:"status"`
}

// SessionService manages grading-session lifecycle and publication.
type SessionService struct {
	repo     sessionRepository
	classes  classReader
	outcomes sessionOutcomeLister
	grades   sessionGradeLister
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

// NewSessionService constructs SessionService.
func NewSessionService(repo sessionRepository, classes classReader, outcomes sessionOutcomeLister, grades sessionGradeLister, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionService{
		repo:     repo,
		classes:  classes,
		outcomes: outcomes,
		grades:   grades,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id string) (*models.GradingSession, error) {
	session, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// List returns sessions with pagination metadata.
func (s *SessionService) List(ctx context.Context, filter models.SessionFilter) ([]models.GradingSession, *models.Pagination, error) {
	sessions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	return sessions, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create instantiates the unique session for a (period, class).
func (s *SessionService) Create(ctx context.Context, req CreateSessionRequest) (*models.GradingSession, error) {
	var violations validation.List
	validation.CheckNotBlank(&violations, "period", req.Period)
	if req.Period != "" {
		validation.CheckChoice(&violations, "period", req.Period, models.PeriodChoices())
	}
	validation.CheckNotBlank(&violations, "class_id", req.ClassID)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	exists, err := s.repo.Exists(ctx, models.PeriodCode(req.Period), req.ClassID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate session")
	}
	if exists {
		violations.Add("period+class_id", validation.Unique)
		return nil, appErrors.WithDetails(appErrors.ErrConflict, violations)
	}

	session := &models.GradingSession{
		Period:  models.PeriodCode(req.Period),
		ClassID: req.ClassID,
		State:   models.SessionNotStarted,
		Extra:   req.Extra,
	}
	if err := s.repo.Create(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	s.logger.Info("session created", zap.String("id", session.ID), zap.String("period", string(session.Period)), zap.String("class", session.ClassID))
	return session, nil
}

// UpdateState applies a workflow transition.
func (s *SessionService) UpdateState(ctx context.Context, id string, req UpdateStateRequest) (*models.GradingSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var violations validation.List
	validation.CheckNotBlank(&violations, "state", req.State)
	if req.State != "" {
		validation.CheckChoice(&violations, "state", req.State, sessionStateChoices())
	}
	sessionDate := mergeTimestamp(&violations, "session_date", req.SessionDate, session.SessionDate)
	startedAt := mergeTimestamp(&violations, "started_at", req.StartedAt, session.StartedAt)
	endedAt := mergeTimestamp(&violations, "ended_at", req.EndedAt, session.EndedAt)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	next := models.SessionState(req.State)
	if next != session.State && !transitionAllowed(session.State, next) {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("illegal transition %s -> %s", session.State, next))
	}

	if err := s.repo.UpdateState(ctx, id, next, sessionDate, startedAt, endedAt); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update session state")
	}
	s.invalidateResults(ctx, session.ClassID)
	return s.Get(ctx, id)
}

// SetVisibility sets or clears the publication gate. Visibility is
// independent of state: a closed session stays private until the gate is
// reached.
func (s *SessionService) SetVisibility(ctx context.Context, id string, req VisibilityRequest) (*models.GradingSession, error) {
	session, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var visibleFrom *time.Time
	if req.VisibleFrom != "" {
		var violations validation.List
		release, ok := validation.CheckDateTime(&violations, "visible_from", req.VisibleFrom)
		if !ok {
			return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
		}
		utc := release.UTC()
		visibleFrom = &utc
	}

	if err := s.repo.UpdateVisibility(ctx, id, visibleFrom); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update visibility")
	}
	s.invalidateResults(ctx, session.ClassID)
	return s.Get(ctx, id)
}

// UpdateSync records the external-registry push status.
func (s *SessionService) UpdateSync(ctx context.Context, id string, req SyncRequest) (*models.GradingSession, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	var violations validation.List
	validation.CheckChoice(&violations, "sync_status", req.Status, syncStatusChoices())
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	if err := s.repo.UpdateSyncStatus(ctx, id, models.SyncStatus(req.Status)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update sync status")
	}
	return s.Get(ctx, id)
}

// PublishedResults returns the class results already released to students
// and families. Only sessions whose visibility gate has been reached are
// included; a class with nothing released yet fails with ErrNotPublished.
// The payload is cached per class.
func (s *SessionService) PublishedResults(ctx context.Context, classID string) (*models.ClassResults, error) {
	cacheKey := "results:class:" + classID
	cached := &models.ClassResults{}
	if hit, err := s.cache.Get(ctx, cacheKey, cached); err == nil && hit {
		return cached, nil
	}

	sessions, err := s.repo.ListVisibleByClass(ctx, classID, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list published sessions")
	}
	if len(sessions) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotPublished, "no published results for this class")
	}

	results := &models.ClassResults{ClassID: classID, Sessions: make([]models.SessionResults, 0, len(sessions))}
	for _, session := range sessions {
		outcomes, err := s.outcomes.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outcomes")
		}
		grades, err := s.grades.ListBySession(ctx, session.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
		}
		results.Sessions = append(results.Sessions, models.SessionResults{Session: session, Outcomes: outcomes, Grades: grades})
	}

	if err := s.cache.Set(ctx, cacheKey, results, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache results", zap.String("class", classID), zap.Error(err))
	}
	return results, nil
}

func (s *SessionService) invalidateResults(ctx context.Context, classID string) {
	s.cache.Invalidate(ctx, "results:class:"+classID)
}

func transitionAllowed(from, to models.SessionState) bool {
	for _, next := range stateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func sessionStateChoices() []string {
	choices := make([]string, len(models.AllSessionStates))
	for i, st := range models.AllSessionStates {
		choices[i] = string(st)
	}
	return choices
}

func syncStatusChoices() []string {
	choices := make([]string, len(models.AllSyncStatuses))
	for i, st := range models.AllSyncStatuses {
		choices[i] = string(st)
	}
	return choices
}

// mergeTimestamp keeps the stored value when the request omits the field,
// so closing a session does not wipe the start timestamp recorded earlier.
func mergeTimestamp(violations *validation.List, field, raw string, current *time.Time) *time.Time {
	if raw == "" {
		return current
	}
	t, ok := validation.CheckDateTime(violations, field, raw)
	if !ok {
		return current
	}
	utc := t.UTC()
	return &utc
}
