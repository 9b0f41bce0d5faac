package relations

import (
	"context"
	"fmt"

	"github.com/printmailhq/printmail/internal/domain/documents"
	domain "github.com/printmailhq/printmail/internal/domain/relations"
)

// Service implements document relationship use-cases
type Service struct {
	Repo domain.Repository
	Docs documents.Repository
}

// Link upserts one relationship; strength is clamped to [0,1]
func (s *Service) Link(ctx context.Context, sourceID, relatedID string, t domain.Type, value string, strength float64) (*domain.Relationship, error) {
	switch t {
	case domain.TypeTheme, domain.TypeCategory, domain.TypeEntity:
	default:
		return nil, fmt.Errorf("unknown relationship type: %s", t)
	}
	if sourceID == relatedID {
		return nil, fmt.Errorf("document cannot relate to itself")
	}
	if _, err := s.Docs.Get(ctx, documents.DocumentID(sourceID)); err != nil {
		return nil, err
	}
	if _, err := s.Docs.Get(ctx, documents.DocumentID(relatedID)); err != nil {
		return nil, err
	}

	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}

	r := &domain.Relationship{
		SourceID:  sourceID,
		RelatedID: relatedID,
		Type:      t,
		Value:     value,
		Strength:  strength,
	}
	if err := s.Repo.Upsert(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Related resolves a document's relationships into public documents only.
// Hidden documents silently drop out of the answer.
func (s *Service) Related(ctx context.Context, sourceID string) ([]*documents.Document, error) {
	rels, err := s.Repo.ListBySource(ctx, sourceID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(rels))
	out := make([]*documents.Document, 0, len(rels))
	for _, rel := range rels {
		if seen[rel.RelatedID] {
			continue
		}
		seen[rel.RelatedID] = true

		doc, err := s.Docs.Get(ctx, documents.DocumentID(rel.RelatedID))
		if err != nil {
			continue
		}
		if doc.IsPublic {
			out = append(out, doc)
		}
	}
	return out, nil
}

// SharingTheme lists relationships carrying the same theme value
func (s *Service) SharingTheme(ctx context.Context, theme string) ([]*domain.Relationship, error) {
	return s.Repo.ListByTypeValue(ctx, domain.TypeTheme, theme)
}
