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

type mockOutcomeRepo struct {
	outcomes map[string]*models.Outcome
	exists   bool
	created  *models.Outcome
	updated  *models.Outcome
}

func (m *mockOutcomeRepo) FindByID(_ context.Context, id string) (*models.Outcome, error) {
	if o, ok := m.outcomes[id]; ok {
		return o, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockOutcomeRepo) FindBySessionAndStudent(_ context.Context, sessionID, studentID string) (*models.Outcome, error) {
	for _, o := range m.outcomes {
		if o.SessionID == sessionID && o.StudentID == studentID {
			return o, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockOutcomeRepo) Exists(_ context.Context, _, _, _ string) (bool, error) {
	return m.exists, nil
}

func (m *mockOutcomeRepo) ListBySession(_ context.Context, _ string) ([]models.Outcome, error) {
	var out []models.Outcome
	for _, o := range m.outcomes {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOutcomeRepo) Create(_ context.Context, outcome *models.Outcome) error {
	outcome.ID = "out-new"
	m.created = outcome
	return nil
}

func (m *mockOutcomeRepo) Update(_ context.Context, outcome *models.Outcome) error {
	m.updated = outcome
	return nil
}

type mockStudentReader struct {
	students map[string]*models.Student
}

func (m *mockStudentReader) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func defaultStudents() *mockStudentReader {
	return &mockStudentReader{students: map[string]*models.Student{
		"stud-1": {ID: "stud-1", FirstName: "Anna", LastName: "Bianchi", Active: true},
	}}
}

func newOutcomeService(repo *mockOutcomeRepo, sessions *mockSessionReader) *OutcomeService {
	return NewOutcomeService(repo, defaultStudents(), sessions, newTestCache(&stubCacheRepo{}), zap.NewNop())
}

func openSession() *mockSessionReader {
	return &mockSessionReader{session: &models.GradingSession{ID: "sess-1", ClassID: "class-1", State: models.SessionInProgress}}
}

func TestOutcomeRecord(t *testing.T) {
	repo := &mockOutcomeRepo{outcomes: map[string]*models.Outcome{}}
	svc := newOutcomeService(repo, openSession())

	outcome, err := svc.Record(context.Background(), "sess-1", OutcomeRequest{
		StudentID:   "stud-1",
		Result:      "A",
		Average:     7.25,
		Credit:      11,
		PriorCredit: 19,
	})
	require.NoError(t, err)
	assert.Equal(t, "out-new", outcome.ID)
	assert.Equal(t, models.OutcomeAdmitted, outcome.Result)
	require.NotNil(t, repo.created)
}

func TestOutcomeRecordDuplicate(t *testing.T) {
	repo := &mockOutcomeRepo{outcomes: map[string]*models.Outcome{}, exists: true}
	svc := newOutcomeService(repo, openSession())

	_, err := svc.Record(context.Background(), "sess-1", OutcomeRequest{StudentID: "stud-1", Result: "A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	list := violationsOf(t, err)
	assert.True(t, list.Has("session_id+student_id", validation.Unique))
}

func TestOutcomeRecordInvalid(t *testing.T) {
	svc := newOutcomeService(&mockOutcomeRepo{}, openSession())

	_, err := svc.Record(context.Background(), "sess-1", OutcomeRequest{
		StudentID: "stud-1",
		Result:    "a",
		Average:   -1,
		Credit:    -3,
	})
	require.Error(t, err)

	list := violationsOf(t, err)
	assert.True(t, list.Has("result", validation.Choice))
	assert.True(t, list.Has("average", validation.ZeroPositive))
	assert.True(t, list.Has("credit", validation.ZeroPositive))
}

func TestOutcomeRecordSessionNotOpen(t *testing.T) {
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", State: models.SessionNotStarted}}
	svc := newOutcomeService(&mockOutcomeRepo{}, sessions)

	_, err := svc.Record(context.Background(), "sess-1", OutcomeRequest{StudentID: "stud-1", Result: "A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestOutcomeUpdate(t *testing.T) {
	repo := &mockOutcomeRepo{outcomes: map[string]*models.Outcome{
		"out-1": {ID: "out-1", SessionID: "sess-1", StudentID: "stud-1", Result: models.OutcomeSuspended},
	}}
	svc := newOutcomeService(repo, openSession())

	outcome, err := svc.Update(context.Background(), "out-1", OutcomeRequest{Result: "A", Average: 6.5, Credit: 9})
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeAdmitted, outcome.Result)
	assert.Equal(t, "stud-1", outcome.StudentID, "the key pair never changes")
	require.NotNil(t, repo.updated)
}

func TestOutcomeUpdateClosedSession(t *testing.T) {
	repo := &mockOutcomeRepo{outcomes: map[string]*models.Outcome{
		"out-1": {ID: "out-1", SessionID: "sess-1", StudentID: "stud-1"},
	}}
	sessions := &mockSessionReader{session: &models.GradingSession{ID: "sess-1", State: models.SessionClosed}}
	svc := newOutcomeService(repo, sessions)

	_, err := svc.Update(context.Background(), "out-1", OutcomeRequest{Result: "A"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}
