package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/validation"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
)

type proposalRepository interface {
	FindByID(ctx context.Context, id string) (*models.GradeProposal, error)
	List(ctx context.Context, filter models.ProposalFilter) ([]models.GradeProposal, error)
	ExistsForTeacher(ctx context.Context, period models.PeriodCode, studentID, subjectID, teacherID, excludeID string) (bool, error)
	ExistsForSubject(ctx context.Context, period models.PeriodCode, studentID, subjectID, excludeID string) (bool, error)
	Create(ctx context.Context, proposal *models.GradeProposal) error
	Update(ctx context.Context, proposal *models.GradeProposal) error
}

type sessionGradeRepository interface {
	FindByID(ctx context.Context, id string) (*models.SessionGrade, error)
	ListBySession(ctx context.Context, sessionID string) ([]models.SessionGrade, error)
	ListBySessionAndStudent(ctx context.Context, sessionID, studentID string) ([]models.SessionGrade, error)
	Exists(ctx context.Context, sessionID, studentID, subjectID, excludeID string) (bool, error)
	Create(ctx context.Context, grade *models.SessionGrade) error
	Update(ctx context.Context, grade *models.SessionGrade) error
	BulkCreate(ctx context.Context, grades []models.SessionGrade) error
}

type subjectReader interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
}

type gradeSessionReader interface {
	FindByID(ctx context.Context, id string) (*models.GradingSession, error)
}

// MarksRequest carries the per-subject mark components of a proposal or a
// finalized grade.
type MarksRequest struct {
	Oral         *int   `json:"oral"`
	Written      *int   `json:"written"`
	Practical    *int   `json:"practical"`
	Single       *int   `json:"single"`
	RecoveryDebt string `json:"recovery_debt"`
	Recovery     string `json:"recovery"`
	Absences     int    `json:"absences"`
}

// ProposalRequest is a teacher's pre-session proposal payload.
type ProposalRequest struct {
	Period    string `json:"period"`
	ClassID   string `json:"class_id"`
	StudentID string `json:"student_id"`
	SubjectID string `json:"subject_id"`
	TeacherID string `json:"teacher_id"`
	MarksRequest
	Extra models.ExtraData `json:"extra"`
}

// GradeRequest records a finalized grade inside an open session.
type GradeRequest struct {
	StudentID string `json:"student_id"`
	SubjectID string `json:"subject_id"`
	MarksRequest
	Extra models.ExtraData `json:"extra"`
}

// GradeService manages teacher proposals and finalized session grades,
// including the promotion of proposals into grades when a session starts.
type GradeService struct {
	proposals proposalRepository
	grades    sessionGradeRepository
	subjects  subjectReader
	sessions  gradeSessionReader
	cache     *CacheService
	logger    *zap.Logger
}

// NewGradeService constructs GradeService.
func NewGradeService(proposals proposalRepository, grades sessionGradeRepository, subjects subjectReader, sessions gradeSessionReader, cache *CacheService, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GradeService{
		proposals: proposals,
		grades:    grades,
		subjects:  subjects,
		sessions:  sessions,
		cache:     cache,
		logger:    logger,
	}
}

// GetProposal returns one proposal.
func (s *GradeService) GetProposal(ctx context.Context, id string) (*models.GradeProposal, error) {
	proposal, err := s.proposals.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load proposal")
	}
	return proposal, nil
}

// ListProposals returns proposals matching the filter.
func (s *GradeService) ListProposals(ctx context.Context, filter models.ProposalFilter) ([]models.GradeProposal, error) {
	proposals, err := s.proposals.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposals")
	}
	return proposals, nil
}

// SubmitProposal validates and stores a teacher's proposal. One proposal
// per (period, student, subject, teacher) always; for ordinary subjects
// the subject may carry only one proposal per student regardless of the
// teacher, while civic education collects one from every class teacher.
func (s *GradeService) SubmitProposal(ctx context.Context, req ProposalRequest) (*models.GradeProposal, error) {
	var violations validation.List
	validation.CheckNotBlank(&violations, "period", req.Period)
	if req.Period != "" {
		validation.CheckChoice(&violations, "period", req.Period, models.PeriodChoices())
	}
	validation.CheckNotBlank(&violations, "class_id", req.ClassID)
	validation.CheckNotBlank(&violations, "student_id", req.StudentID)
	validation.CheckNotBlank(&violations, "subject_id", req.SubjectID)
	validation.CheckNotBlank(&violations, "teacher_id", req.TeacherID)
	checkMarks(&violations, req.MarksRequest)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	subject, err := s.subjects.FindByID(ctx, req.SubjectID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	period := models.PeriodCode(req.Period)
	taken, err := s.proposals.ExistsForTeacher(ctx, period, req.StudentID, req.SubjectID, req.TeacherID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate proposal")
	}
	if taken {
		violations.Add("period+student_id+subject_id+teacher_id", validation.Unique)
	}
	if !subject.IsCivicEducation() {
		taken, err = s.proposals.ExistsForSubject(ctx, period, req.StudentID, req.SubjectID, "")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate proposal")
		}
		if taken {
			violations.Add("period+student_id+subject_id", validation.Unique)
		}
	}
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrConflict, violations)
	}

	proposal := &models.GradeProposal{
		Period:    period,
		ClassID:   req.ClassID,
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		Marks:     buildMarks(req.MarksRequest),
		Extra:     req.Extra,
	}
	if err := s.proposals.Create(ctx, proposal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create proposal")
	}
	s.logger.Info("proposal submitted",
		zap.String("id", proposal.ID),
		zap.String("period", string(proposal.Period)),
		zap.String("student", proposal.StudentID),
		zap.String("subject", proposal.SubjectID))
	return proposal, nil
}

// UpdateProposal rewrites the marks of an existing proposal. The key tuple
// is immutable.
func (s *GradeService) UpdateProposal(ctx context.Context, id string, req MarksRequest) (*models.GradeProposal, error) {
	proposal, err := s.GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}

	var violations validation.List
	checkMarks(&violations, req)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	proposal.Marks = buildMarks(req)
	if err := s.proposals.Update(ctx, proposal); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update proposal")
	}
	return s.GetProposal(ctx, id)
}

// GetGrade returns one finalized grade.
func (s *GradeService) GetGrade(ctx context.Context, id string) (*models.SessionGrade, error) {
	grade, err := s.grades.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}
	return grade, nil
}

// ListSessionGrades returns every finalized grade of a session.
func (s *GradeService) ListSessionGrades(ctx context.Context, sessionID string) ([]models.SessionGrade, error) {
	grades, err := s.grades.ListBySession(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// ListStudentGrades returns one student's finalized grades in a session.
func (s *GradeService) ListStudentGrades(ctx context.Context, sessionID, studentID string) ([]models.SessionGrade, error) {
	grades, err := s.grades.ListBySessionAndStudent(ctx, sessionID, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, nil
}

// RecordGrade stores a finalized grade inside a session. The session must
// be in progress; the (session, student, subject) slot must be free.
func (s *GradeService) RecordGrade(ctx context.Context, sessionID string, req GradeRequest) (*models.SessionGrade, error) {
	session, err := s.loadOpenSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	var violations validation.List
	validation.CheckNotBlank(&violations, "student_id", req.StudentID)
	validation.CheckNotBlank(&violations, "subject_id", req.SubjectID)
	checkMarks(&violations, req.MarksRequest)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	taken, err := s.grades.Exists(ctx, sessionID, req.StudentID, req.SubjectID, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate grade")
	}
	if taken {
		violations.Add("session_id+student_id+subject_id", validation.Unique)
		return nil, appErrors.WithDetails(appErrors.ErrConflict, violations)
	}

	grade := &models.SessionGrade{
		SessionID: sessionID,
		StudentID: req.StudentID,
		SubjectID: req.SubjectID,
		Marks:     buildMarks(req.MarksRequest),
		Extra:     req.Extra,
	}
	if err := s.grades.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	s.invalidateResults(ctx, session.ClassID)
	return grade, nil
}

// UpdateGrade rewrites the marks of a finalized grade. The owning session
// must be in progress, so corrections require reopening a closed session.
func (s *GradeService) UpdateGrade(ctx context.Context, id string, req MarksRequest) (*models.SessionGrade, error) {
	grade, err := s.GetGrade(ctx, id)
	if err != nil {
		return nil, err
	}
	session, err := s.loadOpenSession(ctx, grade.SessionID)
	if err != nil {
		return nil, err
	}

	var violations validation.List
	checkMarks(&violations, req)
	if !violations.Empty() {
		return nil, appErrors.WithDetails(appErrors.ErrValidation, violations)
	}

	grade.Marks = buildMarks(req)
	if err := s.grades.Update(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	s.invalidateResults(ctx, session.ClassID)
	return s.GetGrade(ctx, id)
}

// PromoteProposals seeds a session's grades from the teachers' proposals
// for the session's period and class. Ordinary subjects copy their single
// proposal; civic-education subjects merge every teacher's proposal into
// one grade per student, averaging each mark component and keeping the
// highest absence count. The promotion upserts, so re-running it while the
// session is open refreshes the seeded grades.
func (s *GradeService) PromoteProposals(ctx context.Context, sessionID string) ([]models.SessionGrade, error) {
	session, err := s.loadOpenSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	proposals, err := s.proposals.List(ctx, models.ProposalFilter{Period: session.Period, ClassID: session.ClassID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list proposals")
	}

	type slot struct {
		studentID string
		subjectID string
	}
	groups := make(map[slot][]models.GradeProposal)
	order := make([]slot, 0, len(proposals))
	for _, p := range proposals {
		key := slot{studentID: p.StudentID, subjectID: p.SubjectID}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], p)
	}

	grades := make([]models.SessionGrade, 0, len(order))
	for _, key := range order {
		group := groups[key]
		var marks models.Marks
		if len(group) == 1 {
			marks = group[0].Marks
		} else {
			marks = mergeMarks(group)
		}
		grades = append(grades, models.SessionGrade{
			SessionID: sessionID,
			StudentID: key.studentID,
			SubjectID: key.subjectID,
			Marks:     marks,
		})
	}

	if err := s.grades.BulkCreate(ctx, grades); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to promote proposals")
	}
	s.logger.Info("proposals promoted",
		zap.String("session", sessionID),
		zap.Int("proposals", len(proposals)),
		zap.Int("grades", len(grades)))
	s.invalidateResults(ctx, session.ClassID)
	return grades, nil
}

func (s *GradeService) loadOpenSession(ctx context.Context, sessionID string) (*models.GradingSession, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if session.State != models.SessionInProgress {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, fmt.Sprintf("session is not in progress (state %s)", session.State))
	}
	return session, nil
}

func (s *GradeService) invalidateResults(ctx context.Context, classID string) {
	s.cache.Invalidate(ctx, "results:class:"+classID)
}

func checkMarks(violations *validation.List, req MarksRequest) {
	for _, component := range []struct {
		field string
		value *int
	}{
		{"oral", req.Oral},
		{"written", req.Written},
		{"practical", req.Practical},
		{"single", req.Single},
	} {
		if component.value != nil {
			validation.CheckZeroPositive(violations, component.field, *component.value)
		}
	}
	validation.CheckZeroPositive(violations, "absences", req.Absences)
	validation.CheckChoice(violations, "recovery", req.Recovery, recoveryChoices())
}

func buildMarks(req MarksRequest) models.Marks {
	marks := models.Marks{
		Oral:      req.Oral,
		Written:   req.Written,
		Practical: req.Practical,
		Single:    req.Single,
		Recovery:  models.RecoveryMode(req.Recovery),
		Absences:  req.Absences,
	}
	if req.RecoveryDebt != "" {
		debt := req.RecoveryDebt
		marks.RecoveryDebt = &debt
	}
	return marks
}

func recoveryChoices() []string {
	choices := make([]string, len(models.AllRecoveryModes))
	for i, m := range models.AllRecoveryModes {
		choices[i] = string(m)
	}
	return choices
}

// mergeMarks combines the proposals of one student in one subject. Each
// mark component is the rounded average of the proposals that set it; the
// absence count is the maximum reported by any teacher.
func mergeMarks(group []models.GradeProposal) models.Marks {
	var merged models.Marks
	merged.Oral = averageComponent(group, func(m models.Marks) *int { return m.Oral })
	merged.Written = averageComponent(group, func(m models.Marks) *int { return m.Written })
	merged.Practical = averageComponent(group, func(m models.Marks) *int { return m.Practical })
	merged.Single = averageComponent(group, func(m models.Marks) *int { return m.Single })
	for _, p := range group {
		if p.Absences > merged.Absences {
			merged.Absences = p.Absences
		}
	}
	return merged
}

func averageComponent(group []models.GradeProposal, pick func(models.Marks) *int) *int {
	var sum, n int
	for _, p := range group {
		if v := pick(p.Marks); v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := int(math.Round(float64(sum) / float64(n)))
	return &avg
}
