package documents

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/printmailhq/printmail/internal/application"
	domain "github.com/printmailhq/printmail/internal/domain/documents"
)

// Analyzer triggers the metadata pipeline for a freshly uploaded document.
type Analyzer interface {
	AnalyzeAsync(id domain.DocumentID)
}

// Service implements use-cases untuk Document
type Service struct {
	Repo      domain.Repository
	Artifacts domain.ArtifactStore
	Analyzer  Analyzer
	Clock     application.Clock
	Log       *logrus.Logger
}

//
// ==== USE CASES ====
//

// Command untuk upload dokumen
type UploadCommand struct {
	File        io.Reader
	FileName    string
	FileSize    int64
	ContentType string

	IsPublic        bool
	Name            string
	Description     string
	DocumentType    string
	OwnershipStatus string

	Tags            []string
	Language        string
	PublicationYear int
	TargetAudience  string
	ContentRating   string
	IsOriginalWork  bool

	UploaderName  string
	UploaderEmail string
}

// Upload stores the PDF, creates the document row with analyzed=false, and
// submits the analysis pipeline fire-and-forget. The caller gets the document
// back immediately; analysis never blocks the checkout flow.
func (s *Service) Upload(ctx context.Context, cmd UploadCommand) (*domain.Document, error) {
	if cmd.File == nil {
		return nil, fmt.Errorf("no file provided")
	}
	if cmd.ContentType != "application/pdf" {
		return nil, fmt.Errorf("only PDF files are supported, got %q", cmd.ContentType)
	}

	now := s.Clock.Now()
	id := domain.DocumentID(uuid.New().String())

	key := fmt.Sprintf("pdfs/%d-%s", now.UnixMilli(), sanitizeFileName(cmd.FileName))
	url, err := s.Artifacts.Put(ctx, key, cmd.File, cmd.FileSize, cmd.ContentType)
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	doc := &domain.Document{
		ID:              id,
		FileName:        cmd.FileName,
		FileURL:         url,
		FileSize:        cmd.FileSize,
		IsPublic:        cmd.IsPublic,
		Name:            cmd.Name,
		Description:     cmd.Description,
		DocumentType:    cmd.DocumentType,
		OwnershipStatus: domain.OwnershipStatus(cmd.OwnershipStatus),
		Tags:            cmd.Tags,
		Language:        cmd.Language,
		PublicationYear: cmd.PublicationYear,
		TargetAudience:  cmd.TargetAudience,
		ContentRating:   cmd.ContentRating,
		IsOriginalWork:  cmd.IsOriginalWork,
		UploaderName:    cmd.UploaderName,
		UploaderEmail:   cmd.UploaderEmail,
		CreatedAt:       now,
		UpdatedAt:       now,
		Analyzed:        false,
	}
	if err := s.Repo.Save(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	if s.Analyzer != nil {
		s.Analyzer.AnalyzeAsync(id)
	}

	return doc, nil
}

// Get ambil 1 dokumen by id
func (s *Service) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	return s.Repo.Get(ctx, id)
}

// ListPublic ambil dokumen publik terbaru, bisa difilter
func (s *Service) ListPublic(ctx context.Context, filter domain.ListFilter, limit int) ([]*domain.Document, error) {
	return s.Repo.ListPublic(ctx, filter, limit)
}

// Search cari dokumen publik by term
func (s *Service) Search(ctx context.Context, term string, limit int) ([]*domain.Document, error) {
	if strings.TrimSpace(term) == "" {
		return s.Repo.ListPublic(ctx, domain.ListFilter{}, limit)
	}
	return s.Repo.Search(ctx, term, limit)
}

// Top ranks public documents: by prints/views/downloads counters or rating
func (s *Service) Top(ctx context.Context, by string, limit int) ([]*domain.Document, error) {
	switch by {
	case "rating":
		return s.Repo.TopRated(ctx, limit)
	case "views":
		return s.Repo.Top(ctx, domain.CounterView, limit)
	case "downloads":
		return s.Repo.Top(ctx, domain.CounterDownload, limit)
	case "", "prints":
		return s.Repo.Top(ctx, domain.CounterPrint, limit)
	}
	return nil, fmt.Errorf("unknown ranking: %s", by)
}

// RecordView bumps the view counter
func (s *Service) RecordView(ctx context.Context, id domain.DocumentID) (int, error) {
	return s.Repo.Increment(ctx, id, domain.CounterView)
}

// RecordDownload bumps the download counter
func (s *Service) RecordDownload(ctx context.Context, id domain.DocumentID) (int, error) {
	return s.Repo.Increment(ctx, id, domain.CounterDownload)
}

// SetPublic is the admin switch for repository visibility
func (s *Service) SetPublic(ctx context.Context, id domain.DocumentID, public bool) error {
	return s.Repo.SetPublic(ctx, id, public)
}

// Rate stores one rating and refreshes the document's denormalized average
func (s *Service) Rate(ctx context.Context, id domain.DocumentID, stars int, review, userID string) (float64, error) {
	if stars < 1 || stars > 5 {
		return 0, fmt.Errorf("rating must be between 1 and 5")
	}
	if _, err := s.Repo.Get(ctx, id); err != nil {
		return 0, err
	}

	rating := &domain.Rating{
		DocumentID: id,
		UserID:     userID,
		Stars:      stars,
		Review:     review,
		CreatedAt:  s.Clock.Now(),
	}
	if err := s.Repo.SaveRating(ctx, rating); err != nil {
		return 0, err
	}

	avg, err := s.Repo.AverageRating(ctx, id)
	if err != nil {
		return 0, err
	}
	if err := s.Repo.SetAverageRating(ctx, id, avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// sanitizeFileName keeps object keys flat and predictable
func sanitizeFileName(name string) string {
	base := filepath.Base(name)
	base = strings.ReplaceAll(base, " ", "_")
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "document.pdf"
	}
	return base
}
