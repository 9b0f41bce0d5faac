package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	domain "github.com/printmailhq/printmail/internal/domain/moderation"
)

type ModerationRepository struct {
	db *sql.DB
}

func NewModerationRepository(db *sql.DB) *ModerationRepository {
	return &ModerationRepository{db: db}
}

// Save inserts or updates a moderation flag
func (r *ModerationRepository) Save(ctx context.Context, f *domain.Flag) error {
	const q = `
INSERT INTO moderation_flags
  (id, document_id, reason, description, flagged_by, status, reviewed_by, review_notes,
   created_at, updated_at, resolved_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  status=VALUES(status), reviewed_by=VALUES(reviewed_by), review_notes=VALUES(review_notes),
  updated_at=VALUES(updated_at), resolved_at=VALUES(resolved_at);
`
	created := f.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := f.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	var resolved sql.NullTime
	if !f.ResolvedAt.IsZero() {
		resolved = sql.NullTime{Time: f.ResolvedAt, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, q,
		f.ID, f.DocumentID, stringOrDash(f.Reason), f.Description, f.FlaggedBy,
		string(f.Status), f.ReviewedBy, f.ReviewNotes, created, updated, resolved)
	return err
}

func (r *ModerationRepository) Get(ctx context.Context, id domain.FlagID) (*domain.Flag, error) {
	const q = `
SELECT id, document_id, reason, description, flagged_by, status, reviewed_by, review_notes,
       created_at, updated_at, resolved_at
FROM moderation_flags WHERE id=? LIMIT 1;`
	f, err := scanFlag(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return f, err
}

func (r *ModerationRepository) ListByDocument(ctx context.Context, documentID string) ([]*domain.Flag, error) {
	const q = `
SELECT id, document_id, reason, description, flagged_by, status, reviewed_by, review_notes,
       created_at, updated_at, resolved_at
FROM moderation_flags WHERE document_id=? ORDER BY created_at DESC, id DESC;`
	return r.queryFlags(ctx, q, documentID)
}

func (r *ModerationRepository) ListPending(ctx context.Context, limit int) ([]*domain.Flag, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, document_id, reason, description, flagged_by, status, reviewed_by, review_notes,
       created_at, updated_at, resolved_at
FROM moderation_flags WHERE status=? ORDER BY created_at ASC LIMIT ?;`
	return r.queryFlags(ctx, q, string(domain.StatusPending), limit)
}

func (r *ModerationRepository) queryFlags(ctx context.Context, q string, args ...interface{}) ([]*domain.Flag, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Flag
	for rows.Next() {
		f, err := scanFlag(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func scanFlag(row rowScanner) (*domain.Flag, error) {
	var f domain.Flag
	var resolved sql.NullTime
	if err := row.Scan(&f.ID, &f.DocumentID, &f.Reason, &f.Description, &f.FlaggedBy,
		&f.Status, &f.ReviewedBy, &f.ReviewNotes, &f.CreatedAt, &f.UpdatedAt, &resolved); err != nil {
		return nil, err
	}
	if resolved.Valid {
		f.ResolvedAt = resolved.Time
	}
	return &f, nil
}
