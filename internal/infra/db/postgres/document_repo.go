package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"

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

// Save inserts or updates a document record
func (r *DocumentRepository) Save(ctx context.Context, d *domain.Document) error {
	const q = `
INSERT INTO documents
(id, file_name, file_url, file_size, is_public, name, description,
 document_type, ownership_status, tags_json, language, publication_year,
 target_audience, content_rating, is_original_work, uploader_name, uploader_email,
 view_count, download_count, print_count, average_rating, flag_count,
 created_at, updated_at, analyzed)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
ON CONFLICT (id) DO UPDATE SET
 is_public=EXCLUDED.is_public, name=EXCLUDED.name, description=EXCLUDED.description,
 document_type=EXCLUDED.document_type, ownership_status=EXCLUDED.ownership_status,
 tags_json=EXCLUDED.tags_json, language=EXCLUDED.language,
 publication_year=EXCLUDED.publication_year, target_audience=EXCLUDED.target_audience,
 content_rating=EXCLUDED.content_rating, is_original_work=EXCLUDED.is_original_work,
 updated_at=EXCLUDED.updated_at;
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

func (r *DocumentRepository) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents WHERE id=$1 LIMIT 1;`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return d, err
}

func (r *DocumentRepository) ListPublic(ctx context.Context, f domain.ListFilter, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_public=TRUE`
	args := []interface{}{}
	n := 0
	arg := func(v interface{}) string {
		n++
		args = append(args, v)
		return fmt.Sprintf("$%d", n)
	}

	if f.Category != "" {
		query += " AND category = " + arg(f.Category)
	}
	if f.DocumentType != "" {
		query += " AND document_type = " + arg(f.DocumentType)
	}
	if f.Tag != "" {
		query += " AND tags_json LIKE " + arg(`%"`+escapeLikePattern(f.Tag)+`"%`)
	}
	if f.Language != "" {
		query += " AND language = " + arg(f.Language)
	}
	if f.TargetAudience != "" {
		query += " AND target_audience = " + arg(f.TargetAudience)
	}
	if f.ContentRating != "" {
		query += " AND content_rating = " + arg(f.ContentRating)
	}
	if f.PublicationYear > 0 {
		query += " AND publication_year = " + arg(f.PublicationYear)
	}
	if f.OwnershipStatus != "" {
		query += " AND ownership_status = " + arg(f.OwnershipStatus)
	}

	query += " ORDER BY created_at DESC, id DESC LIMIT " + arg(limit)

	return r.queryDocuments(ctx, query, args...)
}

func (r *DocumentRepository) Search(ctx context.Context, term string, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + escapeLikePattern(term) + "%"

	query := `SELECT ` + documentColumns + ` FROM documents
WHERE is_public=TRUE AND (
  name ILIKE $1 OR description ILIKE $1 OR category ILIKE $1 OR document_type ILIKE $1
  OR tags_json ILIKE $1 OR themes_json ILIKE $1
)
ORDER BY created_at DESC LIMIT $2;`

	return r.queryDocuments(ctx, query, pattern, limit)
}

func (r *DocumentRepository) Top(ctx context.Context, by domain.Counter, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	col, err := counterColumn(by)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_public=TRUE ORDER BY ` + col + ` DESC LIMIT $1;`
	return r.queryDocuments(ctx, query, limit)
}

func (r *DocumentRepository) TopRated(ctx context.Context, limit int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 10
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE is_public=TRUE ORDER BY average_rating DESC LIMIT $1;`
	return r.queryDocuments(ctx, query, limit)
}

func (r *DocumentRepository) Increment(ctx context.Context, id domain.DocumentID, c domain.Counter) (int, error) {
	col, err := counterColumn(c)
	if err != nil {
		return 0, err
	}

	q := fmt.Sprintf(`UPDATE documents SET %s = %s + 1, updated_at = $1 WHERE id = $2 RETURNING %s;`, col, col, col)
	var count int
	err = r.db.QueryRowContext(ctx, q, time.Now(), id).Scan(&count)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, domain.ErrNotFound
	}
	return count, err
}

func (r *DocumentRepository) SetPublic(ctx context.Context, id domain.DocumentID, public bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET is_public=$1, updated_at=$2 WHERE id=$3;`, public, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) IncrementFlagCount(ctx context.Context, id domain.DocumentID) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET flag_count = flag_count + 1, updated_at=$1 WHERE id=$2;`, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// HighlyFlagged lists documents that accumulated at least threshold flags
func (r *DocumentRepository) HighlyFlagged(ctx context.Context, threshold, limit int) ([]*domain.Document, error) {
	if threshold <= 0 {
		threshold = 3
	}
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT ` + documentColumns + ` FROM documents WHERE flag_count >= $1 ORDER BY flag_count DESC LIMIT $2;`
	return r.queryDocuments(ctx, query, threshold, limit)
}

// SaveAnalysis patches every analysis column plus analyzed=true in one write
func (r *DocumentRepository) SaveAnalysis(ctx context.Context, id domain.DocumentID, res *analysis.Result) error {
	const q = `
UPDATE documents SET
 analyzed=TRUE,
 category=$1, summary=$2, themes_json=$3, entities_json=$4, social_handles_json=$5,
 reading_level=$6, estimated_read_time=$7, key_phrases_json=$8, citations_json=$9, toc_json=$10,
 updated_at=$11
WHERE id=$12;`
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
	if n, _ := execRes.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *DocumentRepository) SaveRating(ctx context.Context, rating *domain.Rating) error {
	created := rating.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO document_ratings (document_id, user_id, stars, review, created_at) VALUES ($1,$2,$3,$4,$5);`,
		rating.DocumentID, rating.UserID, rating.Stars, rating.Review, created)
	return err
}

func (r *DocumentRepository) AverageRating(ctx context.Context, id domain.DocumentID) (float64, error) {
	var avg sql.NullFloat64
	err := r.db.QueryRowContext(ctx,
		`SELECT AVG(stars) FROM document_ratings WHERE document_id=$1;`, id).Scan(&avg)
	if err != nil {
		return 0, err
	}
	return avg.Float64, nil
}

func (r *DocumentRepository) SetAverageRating(ctx context.Context, id domain.DocumentID, avg float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET average_rating=$1, updated_at=$2 WHERE id=$3;`, avg, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
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
