package mysql

import (
	"context"
	"database/sql"

	domain "github.com/printmailhq/printmail/internal/domain/relations"
)

type RelationsRepository struct {
	db *sql.DB
}

func NewRelationsRepository(db *sql.DB) *RelationsRepository {
	return &RelationsRepository{db: db}
}

// Upsert creates the relationship or, when the (source, related, type, value)
// tuple already exists, refreshes its strength
func (r *RelationsRepository) Upsert(ctx context.Context, rel *domain.Relationship) error {
	const q = `
INSERT INTO document_relationships
  (source_document_id, related_document_id, relationship_type, relationship_value, strength)
VALUES (?,?,?,?,?)
ON DUPLICATE KEY UPDATE strength=VALUES(strength);
`
	_, err := r.db.ExecContext(ctx, q,
		rel.SourceID, rel.RelatedID, string(rel.Type), rel.Value, rel.Strength)
	return err
}

func (r *RelationsRepository) ListBySource(ctx context.Context, sourceID string) ([]*domain.Relationship, error) {
	const q = `
SELECT id, source_document_id, related_document_id, relationship_type, relationship_value, strength
FROM document_relationships WHERE source_document_id=? ORDER BY strength DESC, id DESC;`
	return r.queryRelationships(ctx, q, sourceID)
}

func (r *RelationsRepository) ListByTypeValue(ctx context.Context, t domain.Type, value string) ([]*domain.Relationship, error) {
	const q = `
SELECT id, source_document_id, related_document_id, relationship_type, relationship_value, strength
FROM document_relationships WHERE relationship_type=? AND relationship_value=?
ORDER BY strength DESC, id DESC;`
	return r.queryRelationships(ctx, q, string(t), value)
}

func (r *RelationsRepository) queryRelationships(ctx context.Context, q string, args ...interface{}) ([]*domain.Relationship, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Relationship
	for rows.Next() {
		var rel domain.Relationship
		var typ string
		if err := rows.Scan(&rel.ID, &rel.SourceID, &rel.RelatedID, &typ, &rel.Value, &rel.Strength); err != nil {
			return nil, err
		}
		rel.Type = domain.Type(typ)
		out = append(out, &rel)
	}
	return out, rows.Err()
}
