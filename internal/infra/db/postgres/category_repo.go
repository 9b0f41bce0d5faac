package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"

	domain "github.com/printmailhq/printmail/internal/domain/taxonomy"
)

type CategoryRepository struct {
	db *sql.DB
}

func NewCategoryRepository(db *sql.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Save inserts or updates a category row
func (r *CategoryRepository) Save(ctx context.Context, c *domain.Category) error {
	const q = `
INSERT INTO document_categories
  (id, name, description, parent_id, is_active, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
ON CONFLICT (id) DO UPDATE SET
  name=EXCLUDED.name, description=EXCLUDED.description, parent_id=EXCLUDED.parent_id,
  is_active=EXCLUDED.is_active, updated_at=EXCLUDED.updated_at;
`
	created := c.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	updated := c.UpdatedAt
	if updated.IsZero() {
		updated = created
	}
	_, err := r.db.ExecContext(ctx, q,
		c.ID, stringOrDash(c.Name), c.Description, string(c.ParentID), c.Active, created, updated)
	return err
}

func (r *CategoryRepository) Get(ctx context.Context, id domain.CategoryID) (*domain.Category, error) {
	const q = `
SELECT id, name, description, parent_id, is_active, created_at, updated_at
FROM document_categories WHERE id=$1 LIMIT 1;`
	c, err := scanCategory(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return c, err
}

func (r *CategoryRepository) FindActiveByName(ctx context.Context, name string) (*domain.Category, error) {
	const q = `
SELECT id, name, description, parent_id, is_active, created_at, updated_at
FROM document_categories WHERE name=$1 AND is_active=TRUE LIMIT 1;`
	c, err := scanCategory(r.db.QueryRowContext(ctx, q, name))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *CategoryRepository) ListActive(ctx context.Context) ([]*domain.Category, error) {
	const q = `
SELECT id, name, description, parent_id, is_active, created_at, updated_at
FROM document_categories WHERE is_active=TRUE ORDER BY name ASC;`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_categories;`).Scan(&n)
	return n, err
}

func (r *CategoryRepository) SetActive(ctx context.Context, id domain.CategoryID, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE document_categories SET is_active=$1, updated_at=$2 WHERE id=$3;`,
		active, time.Now(), id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCategory(row rowScanner) (*domain.Category, error) {
	var c domain.Category
	var parent string
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &parent, &c.Active, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	c.ParentID = domain.CategoryID(parent)
	return &c, nil
}
