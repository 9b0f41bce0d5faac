package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/printmailhq/printmail/internal/domain/analysis"
	domain "github.com/printmailhq/printmail/internal/domain/documents"
)

type DocumentRepository struct {
	db *sql.DB
}

func NewDocumentRepository(db *sql.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `
id, file_name, file_url, file_size, is_public, name, description,
document_type, ownership_status, tags_json, language, publication_year,
target_audience, content_rating, is_original_work, uploader_name, uploader_email,
view_count, download_count, print_count, average_rating, flag_count,
created_at, updated_at,
analyzed, category, summary, themes_json, entities_json, social_handles_json,
reading_level, estimated_read_time, key_phrases_json, citations_json, toc_json`

// Save insert/update Document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents
(id, file_name, file_url, file_size, is_public, name, description,
 document_type, ownership_status, tags_json, language, publication_year,
 target_audience, content_rating, is_original_work, uploader_name, uploader_email,
 view_count, download_count, print_count, average_rating, flag_count,
 created_at, updated_at, analyzed)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
 is_public=VALUES(is_public), name=VALUES(name), description=VALUES(description),
 document_type=VALUES(document_type), ownership_status=VALUES(ownership_status),
 tags_json=VALUES(tags_json), language=VALUES(language),
 publication_year=VALUES(publication_year), target_audience=VALUES(target_audience),
 content_rating=VALUES(content_rating), is_original_work=VALUES(is_original_work),
 updated_at=VALUES(updated_at);
`
	created := d.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := d.UpdatedAt
	if updated.IsZero() {
		updated = created
	}

	_, err := r.db.ExecContext(ctx, q,
		d.ID, d.FileName, d.FileURL, d.FileSize, d.IsPublic,
		stringOrDash(d.Name), d.Description,
		stringOrDash(d.DocumentType), stringOrDash(string(d.OwnershipStatus)),
		jsonList(d.Tags), d.Language, d.PublicationYear,
		d.TargetAudience, d.ContentRating, d.IsOriginalWork,
		d.UploaderName, d.UploaderEmail,
		d.ViewCount, d.DownloadCount, d.PrintCount, d.AverageRating, d.FlagCount,
		created, updated, d.Analyzed,
	)
	return err
}

// Get by ID
func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id=? LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, id)

	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

// ListPublic returns public documents newest-first, optionally filtered
func (r *DocumentRepository) ListPublic(ctx context.Context, f domain.ListFilter, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_public=1`
	args := []interface{}{}

	if f.Category != "" {
		query += " AND category = ?"
		args = append(args, f.Category)
	}
	if f.DocumentType != "" {
		query += " AND document_type = ?"
		args = append(args, f.DocumentType)
	}
	if f.Tag != "" {
		query += " AND tags_json LIKE ?"
		args = append(args, `%"`+escapeLikePattern(f.Tag)+`"%`)
	}
	if f.Language != "" {
		query += " AND language = ?"
		args = append(args, f.Language)
	}
	if f.TargetAudience != "" {
		query += " AND target_audience = ?"
		args = append(args, f.TargetAudience)
	}
	if f.ContentRating != "" {
		query += " AND content_rating = ?"
		args = append(args, f.ContentRating)
	}
	if f.PublicationYear > 0 {
		query += " AND publication_year = ?"
		args = append(args, f.PublicationYear)
	}
	if f.OwnershipStatus != "" {
		query += " AND ownership_status = ?"
		args = append(args, f.OwnershipStatus)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	return r.queryDocuments(ctx, query, args...)
}

// Search matches the term across name, description, category, type, tags and
// themes (case-insensitive via collation)
func (r *DocumentRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLikePattern(term) + "%"

	query := `SELECT ` + documentColumns + ` FROM documents
WHERE is_public=1 AND (
  name LIKE ? OR description LIKE ? OR category LIKE ? OR document_type LIKE ?
  OR tags_json LIKE ? OR themes_json LIKE ?
)
ORDER BY created_at DESC LIMIT ?;`

	return r.queryDocuments(ctx, query, pattern, pattern, pattern, pattern, pattern, pattern, limit)
}

// Top returns public documents ordered by an engagement counter
func (r *DocumentRepository) Top(ctx context.Context, by domain.Counter, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	col, err := counterColumn(by)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_public=1 ORDER BY ` + col + ` DESC LIMIT ?;`
	return r.queryDocuments(ctx, query, limit)
}

// TopRated returns public documents ordered by average rating
func (r *DocumentRepository) TopRated(ctx context.Context, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_public=1 ORDER BY average_rating DESC LIMIT ?;`
	return r.queryDocuments(ctx, query, limit)
}

// Increment bumps one engagement counter and returns the new value
func (r *DocumentRepository) Increment(ctx context.Context, id domain.DocumentID, c domain.Counter) (int, error) {
	col, err := counterColumn(c)
	if err != nil {
		return 0, err
	}

	q := fmt.Sprintf(`UPDATE documents SET %s = %s + 1, updated_at = ? WHERE id = ?;`, col, col)
	res, err := r.db.ExecContext(ctx, q, time.Now(), id)
	if err != nil {
		return 0, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return 0, domain.ErrNotFound
	}

	var count int
	if err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM documents WHERE id=?;`, col), id).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SetPublic flips the visibility flag (moderation/admin action)
func (r *DocumentRepository) SetPublic(ctx context.Context, id domain.DocumentID, public bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET is_public=?, updated_at=? WHERE id=?;`, public, time.Now(), id)
	if err != nil {
		return err
	}
	return r.checkExists(ctx, res, id)
}

// IncrementFlagCount bumps the moderation flag counter
func (r *DocumentRepository) IncrementFlagCount(ctx context.Context, id domain.DocumentID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET flag_count = flag_count + 1, updated_at=? WHERE id=?;`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HighlyFlagged lists documents that accumulated at least threshold flags,
// most-flagged first
func (r *DocumentRepository) HighlyFlagged(ctx context.Context, threshold, limit int) ([]*domain.Document, error) {
	if threshold <= 0 {
		threshold = 3
	}
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE flag_count >= ? ORDER BY flag_count DESC LIMIT ?;`
	return r.queryDocuments(ctx, query, threshold, limit)
}

// SaveAnalysis patches every analysis column plus analyzed=true in a single
// write. Idempotent re-runs overwrite the prior analysis.
func (r *DocumentRepository) SaveAnalysis(ctx context.Context, id domain.DocumentID, res *analysis.Result) error {
	const q = `
UPDATE documents SET
 analyzed=1,
 category=?, summary=?, themes_json=?, entities_json=?, social_handles_json=?,
 reading_level=?, estimated_read_time=?, key_phrases_json=?, citations_json=?, toc_json=?,
 updated_at=?
WHERE id=?;`
	execRes, err := r.db.ExecContext(ctx, q,
		res.Category, res.Summary,
		jsonList(res.Themes), jsonList(res.Entities), jsonList(res.SocialHandles),
		res.ReadingLevel, res.EstimatedReadTime,
		jsonList(res.KeyPhrases), jsonList(res.Citations), jsonList(res.TableOfContents),
		time.Now(), id,
	)
	if err != nil {
		return err
	}
	return r.checkExists(ctx, execRes, id)
}

// SaveRating inserts one rating row
func (r *DocumentRepository) SaveRating(ctx context.Context, rating *domain.Rating) error {
	created := rating.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_ratings (document_id, user_id, stars, review, created_at) VALUES (?,?,?,?,?);`,
		rating.DocumentID, rating.UserID, rating.Stars, rating.Review, created)
	return err
}

// AverageRating recomputes the mean star rating for a document
func (r *DocumentRepository) AverageRating(ctx context.Context, id domain.DocumentID) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(stars) FROM document_ratings WHERE document_id=?;`, id).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

// SetAverageRating stores the denormalized average on the document row
func (r *DocumentRepository) SetAverageRating(ctx context.Context, id domain.DocumentID, avg float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET average_rating=?, updated_at=? WHERE id=?;`, avg, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// checkExists distinguishes "row missing" from "update was a no-op": MySQL
// reports zero affected rows for both.
func (r *DocumentRepository) checkExists(ctx context.Context, res sql.Result, id domain.DocumentID) error {
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id=? LIMIT 1;`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func (r *DocumentRepository) queryDocuments(ctx context.Context, query string, args ...interface{}) ([]*domain.Document, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row rowScanner) (*domain.Document, error) {
	var d domain.Document
	var tagsJSON string
	var res analysis.Result
	var themesJSON, entitiesJSON, handlesJSON, phrasesJSON, citationsJSON, tocJSON string

	if err := row.Scan(
		&d.ID, &d.FileName, &d.FileURL, &d.FileSize, &d.IsPublic, &d.Name, &d.Description,
		&d.DocumentType, &d.OwnershipStatus, &tagsJSON, &d.Language, &d.PublicationYear,
		&d.TargetAudience, &d.ContentRating, &d.IsOriginalWork, &d.UploaderName, &d.UploaderEmail,
		&d.ViewCount, &d.DownloadCount, &d.PrintCount, &d.AverageRating, &d.FlagCount,
		&d.CreatedAt, &d.UpdatedAt,
		&d.Analyzed, &res.Category, &res.Summary, &themesJSON, &entitiesJSON, &handlesJSON,
		&res.ReadingLevel, &res.EstimatedReadTime, &phrasesJSON, &citationsJSON, &tocJSON,
	); err != nil {
		return nil, err
	}

	fromJSONList(tagsJSON, &d.Tags)

	if d.Analyzed {
		res.Themes = []string{}
		res.Entities = []analysis.Entity{}
		res.SocialHandles = []analysis.SocialHandle{}
		res.KeyPhrases = []string{}
		res.Citations = []analysis.Citation{}
		res.TableOfContents = []string{}
		fromJSONList(themesJSON, &res.Themes)
		fromJSONList(entitiesJSON, &res.Entities)
		fromJSONList(handlesJSON, &res.SocialHandles)
		fromJSONList(phrasesJSON, &res.KeyPhrases)
		fromJSONList(citationsJSON, &res.Citations)
		fromJSONList(tocJSON, &res.TableOfContents)
		d.Analysis = &res
	}
	return &d, nil
}

func counterColumn(c domain.Counter) (string, error) {
	switch c {
	case domain.CounterView:
		return "view_count", nil
	case domain.CounterDownload:
		return "download_count", nil
	case domain.CounterPrint:
		return "print_count", nil
	}
	return "", fmt.Errorf("unknown counter: %s", c)
}
