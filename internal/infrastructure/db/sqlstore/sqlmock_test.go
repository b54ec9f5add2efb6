package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"

	"github.com/modportal/portal-api/internal/core/domain"
	"github.com/modportal/portal-api/internal/core/ports"
)

func newMockStore(t *testing.T) (*ReportRepository, *UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	db, err := OpenDialector(postgres.New(postgres.Config{Conn: conn}), zerolog.Nop())
	require.NoError(t, err)
	return NewTaskRepository(db), NewUserRepository(db), mock
}

func TestReportRepository_CreateSurfacesDriverError(t *testing.T) {
	tasks, _, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO "tasks"`).WillReturnError(errors.New("connection reset by peer"))

	_, err := tasks.Create(context.Background(), &domain.Report{
		AuthorID:    1,
		Description: "x",
		Status:      domain.StatusPending,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert task")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_ListSurfacesDriverError(t *testing.T) {
	tasks, _, mock := newMockStore(t)
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).WillReturnError(errors.New("timeout"))

	_, err := tasks.List(context.Background(), ports.ListFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list task")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepository_UpdateStatusZeroRowsChecksExistence(t *testing.T) {
	tasks, _, mock := newMockStore(t)
	mock.ExpectExec(`UPDATE "tasks"`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT \* FROM "tasks"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

	err := tasks.UpdateStatus(context.Background(), 7, ports.StatusChange{Status: domain.StatusRejected, At: time.Now()})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_CreateDuplicateFromDriverMessage(t *testing.T) {
	_, users, mock := newMockStore(t)
	mock.ExpectQuery(`INSERT INTO "users"`).
		WillReturnError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`))

	_, err := users.Create(context.Background(), &domain.User{Username: "a", Email: "a@example.com", Role: domain.RoleUser})
	assert.ErrorIs(t, err, domain.ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
