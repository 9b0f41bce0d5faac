package moderation

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/printmailhq/printmail/internal/application"
	"github.com/printmailhq/printmail/internal/domain/documents"
	domain "github.com/printmailhq/printmail/internal/domain/moderation"
)

// Service implements community flagging and admin review
type Service struct {
	Flags domain.Repository
	Docs  documents.Repository
	Clock application.Clock
	Log   *logrus.Logger
}

// FlagDocument files a community report and bumps the document's flag counter
func (s *Service) FlagDocument(ctx context.Context, documentID, reason, description, flaggedBy string) (*domain.Flag, error) {
	if reason == "" {
		return nil, fmt.Errorf("reason is required")
	}
	if _, err := s.Docs.Get(ctx, documents.DocumentID(documentID)); err != nil {
		return nil, err
	}

	now := s.Clock.Now()
	f := &domain.Flag{
		ID:          domain.FlagID(uuid.New().String()),
		DocumentID:  documentID,
		Reason:      reason,
		Description: description,
		FlaggedBy:   flaggedBy,
		Status:      domain.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Flags.Save(ctx, f); err != nil {
		return nil, err
	}

	if err := s.Docs.IncrementFlagCount(ctx, documents.DocumentID(documentID)); err != nil {
		// flag row tersimpan, counter gagal: cukup log
		if s.Log != nil {
			s.Log.WithField("document_id", documentID).WithError(err).
				Warn("flag saved but counter bump failed")
		}
	}
	return f, nil
}

// ReviewFlag moves a pending flag to a terminal status, exactly once.
// Acceptance hides the referenced document from the public repository.
func (s *Service) ReviewFlag(ctx context.Context, id domain.FlagID, verdict domain.Status, reviewedBy, notes string) (*domain.Flag, error) {
	if !verdict.Terminal() {
		return nil, domain.ErrInvalidStatus
	}

	f, err := s.Flags.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.Status.Terminal() {
		return nil, domain.ErrAlreadyResolved
	}

	now := s.Clock.Now()
	f.Status = verdict
	f.ReviewedBy = reviewedBy
	f.ReviewNotes = notes
	f.UpdatedAt = now
	f.ResolvedAt = now
	if err := s.Flags.Save(ctx, f); err != nil {
		return nil, err
	}

	if verdict == domain.StatusAccepted {
		if err := s.Docs.SetPublic(ctx, documents.DocumentID(f.DocumentID), false); err != nil &&
			!errors.Is(err, documents.ErrNotFound) {
			return nil, err
		}
	}
	return f, nil
}

// FlagsByDocument lists every flag against one document
func (s *Service) FlagsByDocument(ctx context.Context, documentID string) ([]*domain.Flag, error) {
	return s.Flags.ListByDocument(ctx, documentID)
}

// Pending lists flags awaiting review, oldest first
func (s *Service) Pending(ctx context.Context, limit int) ([]*domain.Flag, error) {
	return s.Flags.ListPending(ctx, limit)
}

// HighlyFlagged lists documents whose flag count reached the threshold
func (s *Service) HighlyFlagged(ctx context.Context, threshold, limit int) ([]*documents.Document, error) {
	return s.Docs.HighlyFlagged(ctx, threshold, limit)
}
