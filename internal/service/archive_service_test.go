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

type mockArchiveRepo struct {
	outcomes       map[string]*models.ArchivedOutcome
	grades         map[string]*models.ArchivedGrade
	exists         bool
	snapOutcome    *models.ArchivedOutcome
	snapGrades     []models.ArchivedGrade
	updatedOutcome *models.ArchivedOutcome
	updatedGrade   *models.ArchivedGrade
}

func (m *mockArchiveRepo) FindOutcomeByID(_ context.Context, id string) (*models.ArchivedOutcome, error) {
	if o, ok := m.outcomes[id]; ok {
		return o, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockArchiveRepo) FindOutcomeByStudent(_ context.Context, studentID string) (*models.ArchivedOutcome, error) {
	for _, o := range m.outcomes {
		if o.StudentID == studentID {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockArchiveRepo) FindGradeByID(_ context.Context, id string) (*models.ArchivedGrade, error) {
	if g, ok := m.grades[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockArchiveRepo) ExistsOutcome(_ context.Context, _ string) (bool, error) {
	return m.exists, nil
}

func (m *mockArchiveRepo) ListGrades(_ context.Context, archivedOutcomeID string) ([]models.ArchivedGrade, error) {
	var out []models.ArchivedGrade
	for _, g := range m.grades {
		if g.ArchivedOutcomeID == archivedOutcomeID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (m *mockArchiveRepo) CreateSnapshot(_ context.Context, outcome *models.ArchivedOutcome, grades []models.ArchivedGrade) error {
	outcome.ID = "arch-new"
	m.snapOutcome = outcome
	m.snapGrades = grades
	return nil
}

func (m *mockArchiveRepo) UpdateOutcome(_ context.Context, outcome *models.ArchivedOutcome) error {
	m.updatedOutcome = outcome
	return nil
}

func (m *mockArchiveRepo) UpdateGrade(_ context.Context, grade *models.ArchivedGrade) error {
	m.updatedGrade = grade
	return nil
}

type mockArchiveOutcomeReader struct {
	outcome *models.Outcome
}

func (m *mockArchiveOutcomeReader) FindBySessionAndStudent(_ context.Context, _, _ string) (*models.Outcome, error) {
	if m.outcome == nil {
		return nil, sql.ErrNoRows
	}
	return m.outcome, nil
}

type mockArchiveGradeReader struct {
	grades []models.SessionGrade
}

func (m *mockArchiveGradeReader) ListBySessionAndStudent(_ context.Context, _, _ string) ([]models.SessionGrade, error) {
	return m.grades, nil
}

func closedSession() *mockSessionReader {
	return &mockSessionReader{session: &models.GradingSession{
		ID:      "sess-1",
		Period:  models.PeriodFinal,
		ClassID: "class-1",
		State:   models.SessionClosed,
	}}
}

func newArchiveService(repo *mockArchiveRepo, outcomes *mockArchiveOutcomeReader, grades *mockArchiveGradeReader, sessions *mockSessionReader) *ArchiveService {
	classes := &mockClassReader{classes: map[string]*models.Class{
		"class-1": {ID: "class-1", Year: 3, Section: "A"},
	}}
	return NewArchiveService(repo, outcomes, grades, sessions, defaultStudents(), classes, zap.NewNop())
}

func TestArchiveSnapshot(t *testing.T) {
	repo := &mockArchiveRepo{}
	debt := "equazioni di secondo grado"
	outcomes := &mockArchiveOutcomeReader{outcome: &models.Outcome{
		SessionID:   "sess-1",
		StudentID:   "stud-1",
		Result:      models.OutcomeAdmitted,
		Average:     7.4,
		Credit:      10,
		PriorCredit: 18,
	}}
	grades := &mockArchiveGradeReader{grades: []models.SessionGrade{
		{SubjectID: "subj-math", Marks: models.Marks{Single: intp(8), Oral: intp(6), RecoveryDebt: &debt}},
		{SubjectID: "subj-lab", Marks: models.Marks{Practical: intp(7)}},
	}}
	svc := newArchiveService(repo, outcomes, grades, closedSession())

	transcript, err := svc.Snapshot(context.Background(), "sess-1", "stud-1")
	require.NoError(t, err)
	assert.Equal(t, "arch-new", transcript.Outcome.ID)
	assert.Equal(t, "3A", transcript.Outcome.ClassLabel, "class reference is flattened to its label")
	assert.Equal(t, models.PeriodFinal, transcript.Outcome.Period)
	require.Len(t, transcript.Grades, 2)

	require.NotNil(t, transcript.Grades[0].Grade)
	assert.Equal(t, 8, *transcript.Grades[0].Grade, "unified mark wins over components")
	require.NotNil(t, transcript.Grades[0].Gaps)
	assert.Equal(t, debt, *transcript.Grades[0].Gaps)
	require.NotNil(t, transcript.Grades[1].Grade)
	assert.Equal(t, 7, *transcript.Grades[1].Grade)
	require.NotNil(t, repo.snapOutcome)
}

func TestArchiveSnapshotDuplicateStudent(t *testing.T) {
	repo := &mockArchiveRepo{exists: true}
	svc := newArchiveService(repo, &mockArchiveOutcomeReader{}, &mockArchiveGradeReader{}, closedSession())

	_, err := svc.Snapshot(context.Background(), "sess-1", "stud-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	list := violationsOf(t, err)
	assert.True(t, list.Has("student_id", validation.Unique))
	assert.Nil(t, repo.snapOutcome)
}

func TestArchiveSnapshotSessionNotClosed(t *testing.T) {
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", ClassID: "class-1", State: models.SessionInProgress}}
	svc := newArchiveService(&mockArchiveRepo{}, &mockArchiveOutcomeReader{}, &mockArchiveGradeReader{}, sessions)

	_, err := svc.Snapshot(context.Background(), "sess-1", "stud-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestArchiveTranscript(t *testing.T) {
	repo := &mockArchiveRepo{
		outcomes: map[string]*models.ArchivedOutcome{
			"arch-1": {ID: "arch-1", StudentID: "stud-1", ClassLabel: "3A", Result: models.OutcomeAdmitted, Period: models.PeriodFinal},
		},
		grades: map[string]*models.ArchivedGrade{
			"ag-1": {ID: "ag-1", ArchivedOutcomeID: "arch-1", SubjectID: "subj-math", Grade: intp(8)},
		},
	}
	svc := newArchiveService(repo, &mockArchiveOutcomeReader{}, &mockArchiveGradeReader{}, closedSession())

	transcript, err := svc.Transcript(context.Background(), "stud-1")
	require.NoError(t, err)
	assert.Equal(t, "arch-1", transcript.Outcome.ID)
	require.Len(t, transcript.Grades, 1)

	_, err = svc.Transcript(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestArchiveCorrectOutcome(t *testing.T) {
	repo := &mockArchiveRepo{
		outcomes: map[string]*models.ArchivedOutcome{
			"arch-1": {ID: "arch-1", StudentID: "stud-1", ClassLabel: "3A", Result: models.OutcomeSuspended, Period: models.PeriodFinal},
		},
	}
	svc := newArchiveService(repo, &mockArchiveOutcomeReader{}, &mockArchiveGradeReader{}, closedSession())

	outcome, err := svc.CorrectOutcome(context.Background(), "arch-1", OutcomeCorrection{
		ClassLabel: "3A",
		Result:     "A",
		Period:     "F",
		Average:    6.8,
		Credit:     9,
	})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAdmitted, outcome.Result)
	require.NotNil(t, repo.updatedOutcome)

	_, err = svc.CorrectOutcome(context.Background(), "arch-1", OutcomeCorrection{ClassLabel: "3A", Result: "Z", Period: "F"})
	require.Error(t, err)
	list := violationsOf(t, err)
	assert.True(t, list.Has("result", validation.Choice))
}

func TestArchiveCorrectGrade(t *testing.T) {
	debt := "frazioni"
	repo := &mockArchiveRepo{
		grades: map[string]*models.ArchivedGrade{
			"ag-1": {ID: "ag-1", ArchivedOutcomeID: "arch-1", SubjectID: "subj-math", Grade: intp(5), Gaps: &debt},
		},
	}
	svc := newArchiveService(repo, &mockArchiveOutcomeReader{}, &mockArchiveGradeReader{}, closedSession())

	grade, err := svc.CorrectGrade(context.Background(), "ag-1", GradeCorrection{Grade: intp(6)})
	require.NoError(t, err)
	require.NotNil(t, grade.Grade)
	assert.Equal(t, 6, *grade.Grade)
	assert.Nil(t, grade.Gaps, "empty correction clears the recorded gaps")
	require.NotNil(t, repo.updatedGrade)

	_, err = svc.CorrectGrade(context.Background(), "ag-1", GradeCorrection{Grade: intp(-1)})
	require.Error(t, err)
	list := violationsOf(t, err)
	assert.True(t, list.Has("grade", validation.ZeroPositive))
}
