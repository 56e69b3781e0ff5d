package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/giua-dev/scrutini-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func sessionRows(id string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{"id", "period", "class_id", "state", "session_date", "started_at", "ended_at", "visible_from", "sync_status", "extra", "created_at", "updated_at"}).
		AddRow(id, "F", "class-1", "N", nil, nil, nil, nil, "", nil, now, now)
}

func TestSessionRepositoryCreateAndFind(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO grading_sessions")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	session := &models.GradingSession{Period: models.PeriodFinal, ClassID: "class-1", State: models.SessionNotStarted}
	require.NoError(t, repo.Create(context.Background(), session))
	require.NotEmpty(t, session.ID)
	require.False(t, session.CreatedAt.IsZero())
	require.Equal(t, session.CreatedAt, session.UpdatedAt)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, period, class_id, state")).
		WithArgs(session.ID).
		WillReturnRows(sessionRows(session.ID))

	found, err := repo.FindByID(context.Background(), session.ID)
	require.NoError(t, err)
	require.Equal(t, session.ID, found.ID)
	require.Equal(t, models.PeriodFinal, found.Period)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM grading_sessions WHERE period = $1 AND class_id = $2")).
		WithArgs("F", "class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), models.PeriodFinal, "class-1", "")
	require.NoError(t, err)
	require.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM grading_sessions WHERE period = $1 AND class_id = $2 AND id <> $3")).
		WithArgs("F", "class-1", "sess-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	exists, err = repo.Exists(context.Background(), models.PeriodFinal, "class-1", "sess-1")
	require.NoError(t, err)
	require.False(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(1) FROM grading_sessions WHERE 1=1 AND period = $1 AND class_id = $2")).
		WithArgs("F", "class-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY period, class_id LIMIT $3 OFFSET $4")).
		WithArgs("F", "class-1", 20, 0).
		WillReturnRows(sessionRows("sess-1"))

	sessions, total, err := repo.List(context.Background(), models.SessionFilter{
		Period:   models.PeriodFinal,
		ClassID:  "class-1",
		Page:     1,
		PageSize: 20,
	})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, sessions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryListVisibleByClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	asOf := time.Date(2026, 6, 15, 9, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("visible_from IS NOT NULL AND visible_from <= $2")).
		WithArgs("class-1", asOf).
		WillReturnRows(sessionRows("sess-1"))

	sessions, err := repo.ListVisibleByClass(context.Background(), "class-1", asOf)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateState(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	started := time.Date(2026, 6, 10, 15, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grading_sessions")).
		WithArgs("sess-1", models.SessionInProgress, nil, started, nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateState(context.Background(), "sess-1", models.SessionInProgress, nil, &started, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateVisibility(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	gate := time.Date(2026, 6, 12, 8, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grading_sessions SET visible_from = $2")).
		WithArgs("sess-1", gate, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateVisibility(context.Background(), "sess-1", &gate))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE grading_sessions SET visible_from = $2")).
		WithArgs("sess-1", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateVisibility(context.Background(), "sess-1", nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionRepositoryUpdateSyncStatus(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSessionRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE grading_sessions SET sync_status = $2")).
		WithArgs("sess-1", models.SyncExported, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateSyncStatus(context.Background(), "sess-1", models.SyncExported))
	require.NoError(t, mock.ExpectationsWereMet())
}
