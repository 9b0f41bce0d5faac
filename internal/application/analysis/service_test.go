package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/printmailhq/printmail/internal/domain/analysis"
	"github.com/printmailhq/printmail/internal/domain/documents"
	"github.com/printmailhq/printmail/internal/domain/pipelineerrors"
	"github.com/printmailhq/printmail/internal/domain/taxonomy"
)

type fakeDocs struct {
	documents.Repository
	doc     *documents.Document
	saved   *domain.Result
	saveErr error
}

func (f *fakeDocs) Get(ctx context.Context, id documents.DocumentID) (*documents.Document, error) {
	if f.doc == nil {
		return nil, documents.ErrNotFound
	}
	return f.doc, nil
}

func (f *fakeDocs) SaveAnalysis(ctx context.Context, id documents.DocumentID, res *domain.Result) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = res
	return nil
}

type fakeTaxonomy struct {
	taxonomy.Repository
	cats []*taxonomy.Category
}

func (f *fakeTaxonomy) ListActive(ctx context.Context) ([]*taxonomy.Category, error) {
	return f.cats, nil
}

type fakeExtractor struct {
	raw string
	err error
}

func (f *fakeExtractor) Extract(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return f.raw, f.err
}

type fakeErrorLog struct {
	saved []*pipelineerrors.PipelineError
}

func (f *fakeErrorLog) Save(ctx context.Context, e *pipelineerrors.PipelineError) error {
	f.saved = append(f.saved, e)
	return nil
}

func (f *fakeErrorLog) ListByDocument(ctx context.Context, documentID string, limit int) ([]*pipelineerrors.PipelineError, error) {
	return f.saved, nil
}

func activeCats(names ...string) []*taxonomy.Category {
	out := make([]*taxonomy.Category, 0, len(names))
	for _, n := range names {
		out = append(out, &taxonomy.Category{Name: n, Active: true})
	}
	return out
}

func newService(docs *fakeDocs, ext *fakeExtractor, errLog *fakeErrorLog, cats []*taxonomy.Category) *Service {
	return &Service{
		Docs:      docs,
		Taxonomy:  &fakeTaxonomy{cats: cats},
		Extractor: ext,
		Errors:    errLog,
	}
}

func TestAnalyzeStoresNormalizedResult(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1", Name: "Paper"}}
	ext := &fakeExtractor{raw: `Here you go: {"category":"Academic","summary":"A study.","themes":["ml"]}`}
	errLog := &fakeErrorLog{}
	svc := newService(docs, ext, errLog, activeCats("Academic", "Other"))

	res, err := svc.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)

	require.NotNil(t, docs.saved)
	assert.Equal(t, "Academic", docs.saved.Category)
	assert.Equal(t, "A study.", docs.saved.Summary)
	assert.Equal(t, []string{"ml"}, docs.saved.Themes)
	assert.Same(t, docs.saved, res)
	assert.Empty(t, errLog.saved)
}

func TestAnalyzeMalformedOutputStoresDefaults(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1"}}
	ext := &fakeExtractor{raw: "the model rambled and produced no JSON at all"}
	errLog := &fakeErrorLog{}
	svc := newService(docs, ext, errLog, activeCats("Academic", "Other"))

	res, err := svc.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultCategory, res.Category)
	assert.Equal(t, domain.DefaultSummary, res.Summary)
	require.NotNil(t, docs.saved)

	require.Len(t, errLog.saved, 1)
	assert.Equal(t, "normalize", errLog.saved[0].Stage)
	assert.Contains(t, errLog.saved[0].DetailsJSON, "raw_output")
}

func TestAnalyzeCoercesUnknownCategory(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1"}}
	ext := &fakeExtractor{raw: `{"category":"Starships","summary":"s"}`}
	svc := newService(docs, ext, &fakeErrorLog{}, activeCats("Academic", "Other"))

	res, err := svc.Analyze(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, domain.FallbackCategory, res.Category)
	assert.Equal(t, domain.FallbackCategory, docs.saved.Category)
}

func TestAnalyzeExtractionFailureRecorded(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1"}}
	ext := &fakeExtractor{err: domain.ErrExtractionFailed}
	errLog := &fakeErrorLog{}
	svc := newService(docs, ext, errLog, activeCats("Academic"))

	_, err := svc.Analyze(context.Background(), "doc-1")
	require.ErrorIs(t, err, domain.ErrExtractionFailed)

	assert.Nil(t, docs.saved)
	require.Len(t, errLog.saved, 1)
	assert.Equal(t, "extract", errLog.saved[0].Stage)
}

func TestAnalyzePersistFailureRecorded(t *testing.T) {
	boom := errors.New("db down")
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1"}, saveErr: boom}
	ext := &fakeExtractor{raw: `{"category":"Academic"}`}
	errLog := &fakeErrorLog{}
	svc := newService(docs, ext, errLog, activeCats("Academic"))

	_, err := svc.Analyze(context.Background(), "doc-1")
	require.ErrorIs(t, err, boom)
	require.Len(t, errLog.saved, 1)
	assert.Equal(t, "persist", errLog.saved[0].Stage)
}

func TestAnalyzeMissingDocument(t *testing.T) {
	svc := newService(&fakeDocs{}, &fakeExtractor{}, &fakeErrorLog{}, nil)
	_, err := svc.Analyze(context.Background(), "nope")
	assert.ErrorIs(t, err, documents.ErrNotFound)
}
