package mysql

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printmailhq/printmail/internal/domain/analysis"
	domain "github.com/printmailhq/printmail/internal/domain/documents"
)

var documentColumnNames = []string{
	"id", "file_name", "file_url", "file_size", "is_public", "name", "description",
	"document_type", "ownership_status", "tags_json", "language", "publication_year",
	"target_audience", "content_rating", "is_original_work", "uploader_name", "uploader_email",
	"view_count", "download_count", "print_count", "average_rating", "flag_count",
	"created_at", "updated_at",
	"analyzed", "category", "summary", "themes_json", "entities_json", "social_handles_json",
	"reading_level", "estimated_read_time", "key_phrases_json", "citations_json", "toc_json",
}

func addDocumentRow(rows *sqlmock.Rows, id string, analyzed bool) *sqlmock.Rows {
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	return rows.AddRow(
		id, "thesis.pdf", "https://files.example.com/pdfs/thesis.pdf", int64(1024), true,
		"My Thesis", "a thesis",
		"academic", "originator", `["ml"]`, "en", 2024,
		"researchers", "general", true, "Ada", "ada@example.com",
		7, 2, 1, 4.5, 0,
		now, now,
		analyzed, "Academic", "A study.", `["ml"]`, `[{"type":"person","name":"Ada"}]`, `[]`,
		"graduate", "12 min", `["neural nets"]`, `[]`, `["Intro"]`,
	)
}

func TestGetReturnsDocumentWithAnalysis(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := addDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-1", true)
	mock.ExpectQuery("FROM documents WHERE id=").WithArgs(domain.DocumentID("doc-1")).WillReturnRows(rows)

	repo := NewDocumentRepository(db)
	doc, err := repo.Get(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentID("doc-1"), doc.ID)
	assert.Equal(t, []string{"ml"}, doc.Tags)
	require.True(t, doc.Analyzed)
	require.NotNil(t, doc.Analysis)
	assert.Equal(t, "Academic", doc.Analysis.Category)
	assert.Equal(t, []analysis.Entity{{Type: analysis.EntityPerson, Name: "Ada"}}, doc.Analysis.Entities)
	assert.Equal(t, []string{"Intro"}, doc.Analysis.TableOfContents)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUnanalyzedDocumentHasNoAnalysis(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := addDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-2", false)
	mock.ExpectQuery("FROM documents WHERE id=").WithArgs(domain.DocumentID("doc-2")).WillReturnRows(rows)

	repo := NewDocumentRepository(db)
	doc, err := repo.Get(context.Background(), "doc-2")
	require.NoError(t, err)
	assert.False(t, doc.Analyzed)
	assert.Nil(t, doc.Analysis)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("FROM documents WHERE id=").
		WithArgs(domain.DocumentID("ghost")).
		WillReturnRows(sqlmock.NewRows(documentColumnNames))

	repo := NewDocumentRepository(db)
	_, err = repo.Get(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementReturnsNewCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE documents SET view_count = view_count").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT view_count FROM documents").
		WithArgs(domain.DocumentID("doc-1")).
		WillReturnRows(sqlmock.NewRows([]string{"view_count"}).AddRow(8))

	repo := NewDocumentRepository(db)
	count, err := repo.Increment(context.Background(), "doc-1", domain.CounterView)
	require.NoError(t, err)
	assert.Equal(t, 8, count)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementMissingDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE documents SET print_count = print_count").
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewDocumentRepository(db)
	_, err = repo.Increment(context.Background(), "ghost", domain.CounterPrint)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrementRejectsUnknownCounter(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewDocumentRepository(db)
	_, err = repo.Increment(context.Background(), "doc-1", domain.Counter("likes"))
	assert.Error(t, err)
}

func TestSaveAnalysisPatchesRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE documents SET\\s+analyzed=1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewDocumentRepository(db)
	res := analysis.DefaultResult()
	res.Category = "Academic"
	require.NoError(t, repo.SaveAnalysis(context.Background(), "doc-1", res))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAnalysisMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	// MySQL reports 0 affected rows both for no-op updates and missing rows,
	// so the repo falls back to an existence probe
	mock.ExpectExec("UPDATE documents SET\\s+analyzed=1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM documents WHERE id=").
		WithArgs(domain.DocumentID("ghost")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	repo := NewDocumentRepository(db)
	err = repo.SaveAnalysis(context.Background(), "ghost", analysis.DefaultResult())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveAnalysisNoopUpdateStillSucceeds(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE documents SET\\s+analyzed=1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT 1 FROM documents WHERE id=").
		WithArgs(domain.DocumentID("doc-1")).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	repo := NewDocumentRepository(db)
	assert.NoError(t, repo.SaveAnalysis(context.Background(), "doc-1", analysis.DefaultResult()))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHighlyFlaggedUsesThresholdDefaults(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rows := addDocumentRow(sqlmock.NewRows(documentColumnNames), "doc-9", false)
	mock.ExpectQuery("FROM documents WHERE flag_count >=").
		WithArgs(3, 50).
		WillReturnRows(rows)

	repo := NewDocumentRepository(db)
	list, err := repo.HighlyFlagged(context.Background(), 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.DocumentID("doc-9"), list[0].ID)

	assert.NoError(t, mock.ExpectationsWereMet())
}
