package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	domain "github.com/printmailhq/printmail/internal/domain/analysis"
	"github.com/printmailhq/printmail/internal/domain/documents"
	"github.com/printmailhq/printmail/internal/domain/pipelineerrors"
	"github.com/printmailhq/printmail/internal/domain/taxonomy"
	"github.com/printmailhq/printmail/internal/infra/ai/prompt"
)

// asyncTimeout bounds one fire-and-forget pipeline run.
const asyncTimeout = 2 * time.Minute

// Service implements the document analysis pipeline: taxonomy listing →
// prompt build → extraction → normalization → persistence merge. One
// synchronous best-effort pass per document, no retry.
type Service struct {
	Docs      documents.Repository
	Taxonomy  taxonomy.Repository
	Extractor domain.Extractor
	Errors    pipelineerrors.Repository
	Log       *logrus.Logger
}

// Analyze runs the full pipeline for one document and persists the result.
// Re-runs are idempotent: the prior analysis is overwritten. Malformed model
// output is recovered into a fully-defaulted result and recorded, never
// surfaced as a failure.
func (s *Service) Analyze(ctx context.Context, id documents.DocumentID) (*domain.Result, error) {
	doc, err := s.Docs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	cats, err := s.Taxonomy.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	systemPrompt := prompt.GetSystemPrompt(taxonomy.PromptListing(cats))
	userPrompt := prompt.GetUserPrompt(prompt.DocumentMeta{
		Name:            doc.Name,
		DocumentType:    doc.DocumentType,
		Description:     doc.Description,
		FileURL:         doc.FileURL,
		Tags:            doc.Tags,
		Language:        doc.Language,
		PublicationYear: doc.PublicationYear,
		TargetAudience:  doc.TargetAudience,
		ContentRating:   doc.ContentRating,
		IsOriginalWork:  doc.IsOriginalWork,
		UploaderName:    doc.UploaderName,
	})

	raw, err := s.Extractor.Extract(ctx, systemPrompt, userPrompt)
	if err != nil {
		s.recordError(ctx, string(id), "extract", err, "")
		return nil, err
	}

	res, nerr := domain.Normalize(raw)
	if nerr != nil {
		// recovered locally with the defaulted result; keep a trace for operators
		s.logger().WithField("document_id", id).WithError(nerr).
			Warn("model output had no parseable JSON, stored defaults")
		s.recordError(ctx, string(id), "normalize", nerr, raw)
	}

	// The model is told to stay inside the registry but is not trusted:
	// an unknown category lands in the catch-all.
	if res.Category != domain.DefaultCategory && !taxonomy.Names(cats)[res.Category] {
		s.logger().WithFields(logrus.Fields{
			"document_id": id,
			"category":    res.Category,
		}).Warn("model returned unregistered category, coercing")
		res.Category = domain.FallbackCategory
	}

	if err := s.Docs.SaveAnalysis(ctx, id, res); err != nil {
		s.recordError(ctx, string(id), "persist", err, "")
		return nil, err
	}

	return res, nil
}

// AnalyzeAsync submits the pipeline as a fire-and-forget task. Errors are
// logged and persisted, never propagated: analysis is best-effort enrichment,
// not a checkout precondition. There is no ordering guarantee relative to
// checkout completion.
func (s *Service) AnalyzeAsync(id documents.DocumentID) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()

		if _, err := s.Analyze(ctx, id); err != nil {
			s.logger().WithField("document_id", id).WithError(err).
				Error("background analysis failed, document stays unanalyzed")
		}
	}()
}

func (s *Service) recordError(ctx context.Context, docID, stage string, cause error, raw string) {
	if s.Errors == nil {
		return
	}
	details := ""
	if raw != "" {
		b, _ := json.Marshal(map[string]string{"raw_output": truncate(raw, 4000)})
		details = string(b)
	}
	e := &pipelineerrors.PipelineError{
		DocumentID:  docID,
		Stage:       stage,
		Message:     cause.Error(),
		DetailsJSON: details,
	}
	if err := s.Errors.Save(ctx, e); err != nil && !errors.Is(err, context.Canceled) {
		s.logger().WithError(err).Warn("could not persist pipeline error")
	}
}

func (s *Service) logger() *logrus.Logger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
