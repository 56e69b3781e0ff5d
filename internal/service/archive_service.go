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

type archiveRepository interface {
	FindOutcomeByID(ctx context.Context, id string) (*models.ArchivedOutcome, error)
	FindOutcomeByStudent(ctx context.Context, studentID string) (*models.ArchivedOutcome, error)
	FindGradeByID(ctx context.Context, id string) (*models.ArchivedGrade, error)
	ExistsOutcome(ctx context.Context, studentID string) (bool, error)
	ListGrades(ctx context.Context, archivedOutcomeID string) ([]models.ArchivedGrade, error)
	CreateSnapshot(ctx context.Context, outcome *models.ArchivedOutcome, grades []models.ArchivedGrade) error
	UpdateOutcome(ctx context.Context, outcome *models.ArchivedOutcome) error
	UpdateGrade(ctx context.Context, grade *models.ArchivedGrade) error
}

type archiveOutcomeReader interface {
	FindBySessionAndStudent(ctx context.Context, sessionID, studentID string) (*models.Outcome, error)
}

type archiveGradeReader interface {
	ListBySessionAndStudent(ctx context.Context, sessionID, studentID string) ([]models.SessionGrade, error)
}

// OutcomeCorrection rewrites the editable fields of an archived outcome.
type OutcomeCorrection struct {
	ClassLabel  string           `json:"class_label"`
	Result      string           `json:"result"`
	Period      string           `json:"period"`
	Average     float64          `json:"average"`
	Credit      int              `json:"credit"`
	PriorCredit int              `json:"prior_credit"`
	Extra       models.ExtraData `json:"extra"`
}

// GradeCorrection rewrites the editable fields of an archived grade.
type GradeCorrection struct {
	Grade *int             `json:"grade"`
	Gaps  string           `json:"gaps"`
	Extra models.ExtraData `json:"extra"`
}

// ArchiveService maintains the transcript archive. Snapshots are taken
// once per student from a closed session and never re-derived; only
// explicit data corrections touch them afterwards.
type ArchiveService struct {
	repo     archiveRepository
	outcomes archiveOutcomeReader
	grades   archiveGradeReader
	sessions gradeSessionReader
	students studentReader
	classes  classReader
	logger   *zap.Logger
}

// NewArchiveService constructs ArchiveService.
func NewArchiveService(repo archiveRepository, outcomes archiveOutcomeReader, grades archiveGradeReader, sessions gradeSessionReader, students studentReader, classes classReader, logger *zap.Logger) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ArchiveService{
		repo:     repo,
		outcomes: outcomes,
		grades:   grades,
		sessions: sessions,
		students: students,
		classes:  classes,
		logger:   logger,
	}
}

// Transcript returns a student's archived outcome with its per-subject
// grades.
func (s *ArchiveService) Transcript(ctx context.Context, studentID string) (*models.Transcript, error) {
	outcome, err := s.repo.FindOutcomeByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "transcript not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript")
	}
	grades, err := s.repo.ListGrades(ctx, outcome.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load transcript grades")
	}
	return &models.Transcript{Outcome: *outcome, Grades: grades}, nil
}

// Snapshot archives a student's result from a closed session. The class
// reference is flattened to its label so the snapshot survives deletion of
// the live roster and session data.
func (s *ArchiveService) Snapshot(ctx context.Context, sessionID, studentID string) (*models.Transcript, error) {
	var violations validation.List
	validation.CheckNotBlank(&violations, "session_id", sessionID)
	validation.CheckNotBlank(&violations, "student_id", studentID)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.State != models.SessionClosed {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "session is not closed")
	}

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exists, err := s.repo.ExistsOutcome(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate snapshot")
	}
	if exists {
		violations.Add("student_id", validation.Unique)
		return nil, appErrors.WithDetails(appErrors.ErrConflict, violations)
	}

	class, err := s.classes.FindByID(ctx, session.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	outcome, err := s.outcomes.FindBySessionAndStudent(ctx, sessionID, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load outcome")
	}
	sessionGrades, err := s.grades.ListBySessionAndStudent(ctx, sessionID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	archived := &models.ArchivedOutcome{
		StudentID:   studentID,
		ClassLabel:  class.Label(),
		Result:      outcome.Result,
		Period:      session.Period,
		Average:     outcome.Average,
		Credit:      outcome.Credit,
		PriorCredit: outcome.PriorCredit,
		Extra:       outcome.Extra,
	}
	archivedGrades := make([]models.ArchivedGrade, 0, len(sessionGrades))
	for _, g := range sessionGrades {
		archivedGrades = append(archivedGrades, models.ArchivedGrade{
			SubjectID: g.SubjectID,
			Grade:     finalMark(g.Marks),
			Gaps:      g.RecoveryDebt,
			Extra:     g.Extra,
		})
	}

	if err := s.repo.CreateSnapshot(ctx, archived, archivedGrades); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to archive snapshot")
	}
	s.logger.Info("transcript archived",
		zap.String("student", studentID),
		zap.String("session", sessionID),
		zap.Int("grades", len(archivedGrades)))
	return &models.Transcript{Outcome: *archived, Grades: archivedGrades}, nil
}

// CorrectOutcome applies a data correction to an archived outcome. There
// is no re-sync from live session data.
func (s *ArchiveService) CorrectOutcome(ctx context.Context, id string, req OutcomeCorrection) (*models.ArchivedOutcome, error) {
	outcome, err := s.repo.FindOutcomeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archived outcome not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archived outcome")
	}

	var violations validation.List
	validation.CheckNotBlank(&violations, "class_label", req.ClassLabel)
	validation.CheckNotBlank(&violations, "result", req.Result)
	if req.Result != "" {
		validation.CheckChoice(&violations, "result", req.Result, outcomeChoices())
	}
	validation.CheckNotBlank(&violations, "period", req.Period)
	if req.Period != "" {
		validation.CheckChoice(&violations, "period", req.Period, models.PeriodChoices())
	}
	if req.Average < 0 {
		violations.Add("average", validation.ZeroPositive)
	}
	validation.CheckZeroPositive(&violations, "credit", req.Credit)
	validation.CheckZeroPositive(&violations, "prior_credit", req.PriorCredit)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	outcome.ClassLabel = req.ClassLabel
	outcome.Result = models.OutcomeCode(req.Result)
	outcome.Period = models.PeriodCode(req.Period)
	outcome.Average = req.Average
	outcome.Credit = req.Credit
	outcome.PriorCredit = req.PriorCredit
	outcome.Extra = req.Extra
	if err := s.repo.UpdateOutcome(ctx, outcome); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to correct archived outcome")
	}
	return outcome, nil
}

// CorrectGrade applies a data correction to an archived grade.
func (s *ArchiveService) CorrectGrade(ctx context.Context, id string, req GradeCorrection) (*models.ArchivedGrade, error) {
	grade, err := s.repo.FindGradeByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "archived grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archived grade")
	}

	var violations validation.List
	if req.Grade != nil {
		validation.CheckZeroPositive(&violations, "grade", *req.Grade)
	}
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	grade.Grade = req.Grade
	if req.Gaps != "" {
		gaps := req.Gaps
		grade.Gaps = &gaps
	} else {
		grade.Gaps = nil
	}
	grade.Extra = req.Extra
	if err := s.repo.UpdateGrade(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to correct archived grade")
	}
	return grade, nil
}

// finalMark collapses the mark components into the single archived vote,
// preferring the unified mark when present.
func finalMark(m models.Marks) *int {
	for _, v := range []*int{m.Single, m.Oral, m.Written, m.Practical} {
		if v != nil {
			return v
		}
	}
	return nil
}
