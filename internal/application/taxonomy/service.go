package taxonomy

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/printmailhq/printmail/internal/application"
	domain "github.com/printmailhq/printmail/internal/domain/taxonomy"
)

// Service implements use-cases untuk category registry
type Service struct {
	Repo  domain.Repository
	Clock application.Clock
	Log   *logrus.Logger
}

// SeedDefaults inserts the starter list only when the registry is empty.
// Idempotent; called on every cold start.
func (s *Service) SeedDefaults(ctx context.Context) error {
	count, err := s.Repo.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	now := s.Clock.Now()
	for _, d := range domain.Defaults {
		c := &domain.Category{
			ID:          domain.CategoryID(uuid.New().String()),
			Name:        d.Name,
			Description: d.Description,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.Repo.Save(ctx, c); err != nil {
			return err
		}
	}
	if s.Log != nil {
		s.Log.WithField("count", len(domain.Defaults)).Info("seeded default categories")
	}
	return nil
}

// Register adds one category. Duplicate check only looks at active rows, so a
// deactivated name can be reused.
func (s *Service) Register(ctx context.Context, name, description string, parent domain.CategoryID) (*domain.Category, error) {
	existing, err := s.Repo.FindActiveByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicateName
	}

	now := s.Clock.Now()
	c := &domain.Category{
		ID:          domain.CategoryID(uuid.New().String()),
		Name:        name,
		Description: description,
		ParentID:    parent,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Deactivate soft-deletes a category; documents keep referencing the name.
func (s *Service) Deactivate(ctx context.Context, id domain.CategoryID) error {
	return s.Repo.SetActive(ctx, id, false)
}

// ListActive returns the active categories ordered by name
func (s *Service) ListActive(ctx context.Context) ([]*domain.Category, error) {
	return s.Repo.ListActive(ctx)
}

// PromptListing renders the active registry for the extraction prompt
func (s *Service) PromptListing(ctx context.Context) (string, error) {
	cats, err := s.Repo.ListActive(ctx)
	if err != nil {
		return "", err
	}
	return domain.PromptListing(cats), nil
}
