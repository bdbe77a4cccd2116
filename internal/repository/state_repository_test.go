package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tempo-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tempo-schedule-api/pkg/errors"
)

func newStateRepoMock(t *testing.T) (*StateRepository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewStateRepository(sqlx.NewDb(db, "sqlmock")), mock, func() { db.Close() }
}

func TestStateRepositoryEnsureSchema(t *testing.T) {
	repo, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schedule_states").WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, repo.EnsureSchema(context.Background()))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schedule_states").WillReturnError(errors.New("permission denied"))
	assert.ErrorContains(t, repo.EnsureSchema(context.Background()), "permission denied")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepositoryUpsertAndGet(t *testing.T) {
	repo, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	state := models.NewScheduleState()
	state.Schedule.Set("Mon", models.ClassTypeLagree, "6:00 AM", models.AssignedCell("DB"))
	record, err := models.NewScheduleStateRecord("default", state)
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO schedule_states .* ON CONFLICT \\(id\\) DO UPDATE").
		WithArgs("default", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, repo.Upsert(context.Background(), record))
	assert.False(t, record.CreatedAt.IsZero())
	assert.Equal(t, int64(1), record.Revision)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "instructors", "schedule", "locked_assignments", "revision", "created_at", "updated_at"}).
		AddRow("default", []byte(record.Instructors), []byte(record.Schedule), []byte(`{}`), int64(3), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, instructors, schedule, locked_assignments, revision, created_at, updated_at FROM schedule_states WHERE id = $1")).
		WithArgs("default").
		WillReturnRows(rows)

	stored, err := repo.Get(context.Background(), "default")
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Revision)

	decoded, err := stored.State()
	require.NoError(t, err)
	assert.Equal(t, models.AssignedCell("DB"), decoded.Schedule.Cell("Mon", models.ClassTypeLagree, "6:00 AM"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepositoryGetMissing(t *testing.T) {
	repo, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("FROM schedule_states WHERE id").
		WithArgs("absent").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), "absent")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStateRepositoryUpsertFailure(t *testing.T) {
	repo, mock, cleanup := newStateRepoMock(t)
	defer cleanup()

	mock.ExpectExec("INSERT INTO schedule_states").WillReturnError(errors.New("connection reset"))
	err := repo.Upsert(context.Background(), &models.ScheduleStateRecord{ID: "default"})
	assert.ErrorContains(t, err, "upsert schedule state")
	assert.NoError(t, mock.ExpectationsWereMet())
}
