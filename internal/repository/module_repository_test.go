package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-portal-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var moduleColumns = []string{"id", "name", "year", "term", "created_at"}

func TestModuleRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewModuleRepository(db)
	rows := sqlmock.NewRows(moduleColumns).
		AddRow("CS101", "Intro", "2025", "Mich", time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, year, term, created_at FROM modules WHERE 1=1 AND year = $1 AND term = $2 AND (LOWER(id) LIKE $3 OR LOWER(name) LIKE $3)")).
		WithArgs("2025", "Mich", "%intro%").
		WillReturnRows(rows)

	modules, err := repo.List(context.Background(), models.ModuleFilter{Year: "2025", Term: "Mich", Search: "Intro"})
	require.NoError(t, err)
	require.Len(t, modules, 1)
	require.Equal(t, "CS101", modules[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepositoryListEmptyIsNotNil(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewModuleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, year, term, created_at FROM modules")).
		WillReturnRows(sqlmock.NewRows(moduleColumns))

	modules, err := repo.List(context.Background(), models.ModuleFilter{})
	require.NoError(t, err)
	require.NotNil(t, modules)
	require.Empty(t, modules)
}

func TestModuleRepositoryCreateDuplicate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewModuleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO modules")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO modules")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	module := &models.Module{ID: "CS101", Name: "Intro", Year: "2025", Term: "Mich"}
	require.NoError(t, repo.Create(context.Background(), module))
	require.False(t, module.CreatedAt.IsZero())

	err := repo.Create(context.Background(), &models.Module{ID: "CS101", Name: "Intro", Year: "2025", Term: "Mich"})
	require.ErrorIs(t, err, ErrDuplicate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewModuleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM modules WHERE id = $1")).
		WithArgs("CS101").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM modules WHERE id = $1")).
		WithArgs("CS101").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "CS101"))
	require.ErrorIs(t, repo.Delete(context.Background(), "CS101"), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestModuleRepositoryDeleteError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewModuleRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM modules")).
		WillReturnError(errors.New("connection reset"))

	err := repo.Delete(context.Background(), "CS101")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}

func TestModuleRepositoryTerms(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewModuleRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT year, term FROM modules")).
		WillReturnRows(sqlmock.NewRows([]string{"year", "term"}).
			AddRow("2025", "Mich").
			AddRow("2024", "Lent"))

	terms, err := repo.Terms(context.Background())
	require.NoError(t, err)
	require.Len(t, terms, 2)
	require.Equal(t, "Lent", terms[1].Term)
}
