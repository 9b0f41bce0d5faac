package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/printmailhq/printmail/internal/domain/taxonomy"
)

var categoryColumnNames = []string{
	"id", "name", "description", "parent_id", "is_active", "created_at", "updated_at",
}

func TestFindActiveByNameReturnsNilWhenAbsent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM document_categories WHERE name=").
		WithArgs("Legal").
		WillReturnRows(sqlmock.NewRows(categoryColumnNames))

	repo := NewCategoryRepository(db)
	c, err := repo.FindActiveByName(context.Background(), "Legal")
	require.NoError(t, err)
	assert.Nil(t, c)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindActiveByNameFindsActiveRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM document_categories WHERE name=").
		WithArgs("Legal").
		WillReturnRows(sqlmock.NewRows(categoryColumnNames).
			AddRow("cat-1", "Legal", "Legal documents", "", true, now, now))

	repo := NewCategoryRepository(db)
	c, err := repo.FindActiveByName(context.Background(), "Legal")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, domain.CategoryID("cat-1"), c.ID)
	assert.True(t, c.Active)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveOrdersByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("FROM document_categories WHERE is_active=1 ORDER BY name").
		WillReturnRows(sqlmock.NewRows(categoryColumnNames).
			AddRow("cat-1", "Academic", "papers", "", true, now, now).
			AddRow("cat-2", "Legal", "contracts", "", true, now, now))

	repo := NewCategoryRepository(db)
	cats, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Academic", cats[0].Name)
	assert.Equal(t, "Legal", cats[1].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountIncludesInactiveRows(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(13))

	repo := NewCategoryRepository(db)
	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13, n)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetActiveMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE document_categories SET is_active=").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM document_categories WHERE id=").
		WithArgs(domain.CategoryID("ghost")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewCategoryRepository(db)
	err = repo.SetActive(context.Background(), "ghost", false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}
