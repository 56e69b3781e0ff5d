package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/giua-dev/scrutini-api/internal/models"
	"github.com/giua-dev/scrutini-api/internal/validation"
	appErrors "github.com/giua-dev/scrutini-api/pkg/errors"
)

type mockProposalRepo struct {
	proposals     []models.GradeProposal
	existsTeacher bool
	existsSubject bool
	subjectChecks int
	created       *models.GradeProposal
	updated       *models.GradeProposal
}

func (m *mockProposalRepo) FindByID(_ context.Context, id string) (*models.GradeProposal, error) {
	for i := range m.proposals {
		if m.proposals[i].ID == id {
			return &m.proposals[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockProposalRepo) List(_ context.Context, _ models.ProposalFilter) ([]models.GradeProposal, error) {
	return m.proposals, nil
}

func (m *mockProposalRepo) ExistsForTeacher(_ context.Context, _ models.PeriodCode, _, _, _, _ string) (bool, error) {
	return m.existsTeacher, nil
}

func (m *mockProposalRepo) ExistsForSubject(_ context.Context, _ models.PeriodCode, _, _, _ string) (bool, error) {
	m.subjectChecks++
	return m.existsSubject, nil
}

func (m *mockProposalRepo) Create(_ context.Context, proposal *models.GradeProposal) error {
	proposal.ID = "prop-new"
	m.created = proposal
	return nil
}

func (m *mockProposalRepo) Update(_ context.Context, proposal *models.GradeProposal) error {
	m.updated = proposal
	return nil
}

type mockSessionGradeRepo struct {
	grades  []models.SessionGrade
	exists  bool
	created *models.SessionGrade
	updated *models.SessionGrade
	bulk    []models.SessionGrade
}

func (m *mockSessionGradeRepo) FindByID(_ context.Context, id string) (*models.SessionGrade, error) {
	for i := range m.grades {
		if m.grades[i].ID == id {
			return &m.grades[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockSessionGradeRepo) ListBySession(_ context.Context, _ string) ([]models.SessionGrade, error) {
	return m.grades, nil
}

func (m *mockSessionGradeRepo) ListBySessionAndStudent(_ context.Context, _, studentID string) ([]models.SessionGrade, error) {
	var out []models.SessionGrade
	for _, g := range m.grades {
		if g.StudentID == studentID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (m *mockSessionGradeRepo) Exists(_ context.Context, _, _, _, _ string) (bool, error) {
	return m.exists, nil
}

func (m *mockSessionGradeRepo) Create(_ context.Context, grade *models.SessionGrade) error {
	grade.ID = "grade-new"
	m.created = grade
	return nil
}

func (m *mockSessionGradeRepo) Update(_ context.Context, grade *models.SessionGrade) error {
	m.updated = grade
	return nil
}

func (m *mockSessionGradeRepo) BulkCreate(_ context.Context, grades []models.SessionGrade) error {
	m.bulk = grades
	return nil
}

type mockSubjectReader struct {
	subjects map[string]*models.Subject
}

func (m *mockSubjectReader) FindByID(_ context.Context, id string) (*models.Subject, error) {
	if s, ok := m.subjects[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

type mockSessionReader struct {
	session *models.GradingSession
}

func (m *mockSessionReader) FindByID(_ context.Context, id string) (*models.GradingSession, error) {
	if m.session != nil && m.session.ID == id {
		return m.session, nil
	}
	return nil, sql.ErrNoRows
}

func defaultSubjects() *mockSubjectReader {
	return &mockSubjectReader{subjects: map[string]*models.Subject{
		"subj-math":  {ID: "subj-math", Name: "Matematica", Type: models.SubjectTypeNormal},
		"subj-civic": {ID: "subj-civic", Name: "Educazione civica", Type: models.SubjectTypeCivicEducation},
	}}
}

func newGradeService(proposals *mockProposalRepo, grades *mockSessionGradeRepo, sessions *mockSessionReader) *GradeService {
	return NewGradeService(proposals, grades, defaultSubjects(), sessions, newTestCache(&stubCacheRepo{}), zap.NewNop())
}

func intp(v int) *int { return &v }

func proposalRequest(subjectID, teacherID string) ProposalRequest {
	return ProposalRequest{
		Period:    "F",
		ClassID:   "class-1",
		StudentID: "stud-1",
		SubjectID: subjectID,
		TeacherID: teacherID,
		MarksRequest: MarksRequest{
			Oral:     intp(7),
			Absences: 3,
		},
	}
}

func TestSubmitProposal(t *testing.T) {
	proposals := &mockProposalRepo{}
	svc := newGradeService(proposals, &mockSessionGradeRepo{}, &mockSessionReader{})

	proposal, err := svc.SubmitProposal(context.Background(), proposalRequest("subj-math", "teach-1"))
	require.NoError(t, err)
	assert.Equal(t, "prop-new", proposal.ID)
	assert.Equal(t, 1, proposals.subjectChecks, "ordinary subjects check the subject-wide key")
}

func TestSubmitProposalDuplicateForTeacher(t *testing.T) {
	proposals := &mockProposalRepo{existsTeacher: true}
	svc := newGradeService(proposals, &mockSessionGradeRepo{}, &mockSessionReader{})

	_, err := svc.SubmitProposal(context.Background(), proposalRequest("subj-math", "teach-1"))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	list := violationsOf(t, err)
	assert.True(t, list.Has("period+student_id+subject_id+teacher_id", validation.Unique))
}

func TestSubmitProposalSubjectAlreadyProposed(t *testing.T) {
	proposals := &mockProposalRepo{existsSubject: true}
	svc := newGradeService(proposals, &mockSessionGradeRepo{}, &mockSessionReader{})

	_, err := svc.SubmitProposal(context.Background(), proposalRequest("subj-math", "teach-2"))
	require.Error(t, err)

	list := violationsOf(t, err)
	assert.True(t, list.Has("period+student_id+subject_id", validation.Unique))
}

func TestSubmitProposalCivicEducationAllowsManyTeachers(t *testing.T) {
	// Another teacher already proposed for the subject, but civic education
	// collects one proposal per class teacher.
	proposals := &mockProposalRepo{existsSubject: true}
	svc := newGradeService(proposals, &mockSessionGradeRepo{}, &mockSessionReader{})

	proposal, err := svc.SubmitProposal(context.Background(), proposalRequest("subj-civic", "teach-2"))
	require.NoError(t, err)
	assert.Equal(t, "prop-new", proposal.ID)
	assert.Equal(t, 0, proposals.subjectChecks, "subject-wide key is waived for civic education")
}

func TestSubmitProposalInvalidMarks(t *testing.T) {
	svc := newGradeService(&mockProposalRepo{}, &mockSessionGradeRepo{}, &mockSessionReader{})

	req := proposalRequest("subj-math", "teach-1")
	req.Oral = intp(-2)
	req.Absences = -1
	req.Recovery = "Q"

	_, err := svc.SubmitProposal(context.Background(), req)
	require.Error(t, err)

	list := violationsOf(t, err)
	assert.True(t, list.Has("oral", validation.ZeroPositive))
	assert.True(t, list.Has("absences", validation.ZeroPositive))
	assert.True(t, list.Has("recovery", validation.Choice))
}

func TestRecordGrade(t *testing.T) {
	grades := &mockSessionGradeRepo{}
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", ClassID: "class-1", State: models.SessionInProgress}}
	svc := newGradeService(&mockProposalRepo{}, grades, sessions)

	grade, err := svc.RecordGrade(context.Background(), "sess-1", GradeRequest{
		StudentID:    "stud-1",
		SubjectID:    "subj-math",
		MarksRequest: MarksRequest{Single: intp(8)},
	})
	require.NoError(t, err)
	assert.Equal(t, "grade-new", grade.ID)
	require.NotNil(t, grades.created)
}

func TestRecordGradeSessionNotOpen(t *testing.T) {
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", ClassID: "class-1", State: models.SessionClosed}}
	svc := newGradeService(&mockProposalRepo{}, &mockSessionGradeRepo{}, sessions)

	_, err := svc.RecordGrade(context.Background(), "sess-1", GradeRequest{StudentID: "stud-1", SubjectID: "subj-math"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestRecordGradeDuplicateSlot(t *testing.T) {
	grades := &mockSessionGradeRepo{exists: true}
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", ClassID: "class-1", State: models.SessionInProgress}}
	svc := newGradeService(&mockProposalRepo{}, grades, sessions)

	_, err := svc.RecordGrade(context.Background(), "sess-1", GradeRequest{StudentID: "stud-1", SubjectID: "subj-math"})
	require.Error(t, err)

	list := violationsOf(t, err)
	assert.True(t, list.Has("session_id+student_id+subject_id", validation.Unique))
}

func TestPromoteProposalsMergesCivicEducation(t *testing.T) {
	proposals := &mockProposalRepo{proposals: []models.GradeProposal{
		{
			ID: "p1", Period: models.PeriodFinal, ClassID: "class-1",
			StudentID: "stud-1", SubjectID: "subj-civic", TeacherID: "teach-1",
			Marks: models.Marks{Oral: intp(6), Absences: 2},
		},
		{
			ID: "p2", Period: models.PeriodFinal, ClassID: "class-1",
			StudentID: "stud-1", SubjectID: "subj-civic", TeacherID: "teach-2",
			Marks: models.Marks{Oral: intp(9), Absences: 5},
		},
		{
			ID: "p3", Period: models.PeriodFinal, ClassID: "class-1",
			StudentID: "stud-1", SubjectID: "subj-math", TeacherID: "teach-1",
			Marks: models.Marks{Written: intp(7), Absences: 1},
		},
	}}
	grades := &mockSessionGradeRepo{}
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", Period: models.PeriodFinal, ClassID: "class-1", State: models.SessionInProgress}}
	svc := newGradeService(proposals, grades, sessions)

	promoted, err := svc.PromoteProposals(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, promoted, 2)
	require.Len(t, grades.bulk, 2)

	var civic, math *models.SessionGrade
	for i := range promoted {
		switch promoted[i].SubjectID {
		case "subj-civic":
			civic = &promoted[i]
		case "subj-math":
			math = &promoted[i]
		}
	}
	require.NotNil(t, civic)
	require.NotNil(t, math)

	// (6+9)/2 rounds to 8; absences keep the maximum.
	require.NotNil(t, civic.Oral)
	assert.Equal(t, 8, *civic.Oral)
	assert.Equal(t, 5, civic.Absences)

	// Single-proposal subjects copy the marks as-is.
	require.NotNil(t, math.Written)
	assert.Equal(t, 7, *math.Written)
	assert.Equal(t, 1, math.Absences)
}

func TestUpdateGradeRequiresOpenSession(t *testing.T) {
	grades := &mockSessionGradeRepo{grades: []models.SessionGrade{
		{ID: "grade-1", SessionID: "sess-1", StudentID: "stud-1", SubjectID: "subj-math"},
	}}
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", ClassID: "class-1", State: models.SessionClosed}}
	svc := newGradeService(&mockProposalRepo{}, grades, sessions)

	_, err := svc.UpdateGrade(context.Background(), "grade-1", MarksRequest{Single: intp(9)})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Nil(t, grades.updated)
}

func TestUpdateProposalMarks(t *testing.T) {
	proposals := &mockProposalRepo{proposals: []models.GradeProposal{
		{ID: "prop-1", Period: models.PeriodFinal, StudentID: "stud-1", SubjectID: "subj-math", TeacherID: "teach-1"},
	}}
	svc := newGradeService(proposals, &mockSessionGradeRepo{}, &mockSessionReader{})

	updated, err := svc.UpdateProposal(context.Background(), "prop-1", MarksRequest{Single: intp(5), Recovery: "C", RecoveryDebt: "equazioni di secondo grado", Absences: 4})
	require.NoError(t, err)
	require.NotNil(t, proposals.updated)
	require.NotNil(t, updated.Single)
	assert.Equal(t, 5, *updated.Single)
	assert.Equal(t, models.RecoveryCourse, updated.Recovery)
	require.NotNil(t, updated.RecoveryDebt)
}
