package documents

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/printmailhq/printmail/internal/domain/documents"
)

type fakeRepo struct {
	domain.Repository
	saved     *domain.Document
	ratings   []*domain.Rating
	avg       float64
	storedAvg float64
}

func (f *fakeRepo) Save(ctx context.Context, d *domain.Document) error {
	f.saved = d
	return nil
}

func (f *fakeRepo) Get(ctx context.Context, id domain.DocumentID) (*domain.Document, error) {
	if f.saved == nil || f.saved.ID != id {
		return nil, domain.ErrNotFound
	}
	return f.saved, nil
}

func (f *fakeRepo) SaveRating(ctx context.Context, r *domain.Rating) error {
	f.ratings = append(f.ratings, r)
	return nil
}

func (f *fakeRepo) AverageRating(ctx context.Context, id domain.DocumentID) (float64, error) {
	return f.avg, nil
}

func (f *fakeRepo) SetAverageRating(ctx context.Context, id domain.DocumentID, avg float64) error {
	f.storedAvg = avg
	return nil
}

type fakeStore struct {
	key  string
	size int64
	ct   string
	body string
}

func (f *fakeStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	b, _ := io.ReadAll(r)
	f.key = key
	f.size = size
	f.ct = contentType
	f.body = string(b)
	return "https://files.example.com/" + key, nil
}

type fakeAnalyzer struct {
	ids []domain.DocumentID
}

func (f *fakeAnalyzer) AnalyzeAsync(id domain.DocumentID) {
	f.ids = append(f.ids, id)
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(repo *fakeRepo, store *fakeStore, an *fakeAnalyzer) *Service {
	return &Service{
		Repo:      repo,
		Artifacts: store,
		Analyzer:  an,
		Clock:     fixedClock{t: time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC)},
	}
}

func pdfUpload() UploadCommand {
	return UploadCommand{
		File:         strings.NewReader("%PDF-1.7 fake"),
		FileName:     "my thesis.pdf",
		FileSize:     13,
		ContentType:  "application/pdf",
		IsPublic:     true,
		Name:         "My Thesis",
		DocumentType: "academic",
	}
}

func TestUploadStoresFileAndTriggersAnalysis(t *testing.T) {
	repo := &fakeRepo{}
	store := &fakeStore{}
	an := &fakeAnalyzer{}
	svc := newService(repo, store, an)

	doc, err := svc.Upload(context.Background(), pdfUpload())
	require.NoError(t, err)

	// object key carries the upload timestamp and a sanitized filename
	assert.Equal(t, "pdfs/1748773800000-my_thesis.pdf", store.key)
	assert.Equal(t, "application/pdf", store.ct)
	assert.Equal(t, "%PDF-1.7 fake", store.body)

	require.NotNil(t, repo.saved)
	assert.Equal(t, "https://files.example.com/"+store.key, repo.saved.FileURL)
	assert.False(t, repo.saved.Analyzed)
	assert.Zero(t, repo.saved.ViewCount)

	// pipeline submitted fire-and-forget with the new id
	require.Len(t, an.ids, 1)
	assert.Equal(t, doc.ID, an.ids[0])
}

func TestUploadRejectsNonPDF(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeStore{}, &fakeAnalyzer{})

	cmd := pdfUpload()
	cmd.ContentType = "image/png"
	_, err := svc.Upload(context.Background(), cmd)
	assert.Error(t, err)
}

func TestUploadRequiresFile(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeStore{}, &fakeAnalyzer{})

	cmd := pdfUpload()
	cmd.File = nil
	_, err := svc.Upload(context.Background(), cmd)
	assert.Error(t, err)
}

func TestRateRecomputesAverage(t *testing.T) {
	repo := &fakeRepo{avg: 4.5}
	store := &fakeStore{}
	svc := newService(repo, store, &fakeAnalyzer{})

	doc, err := svc.Upload(context.Background(), pdfUpload())
	require.NoError(t, err)

	avg, err := svc.Rate(context.Background(), doc.ID, 5, "great read", "user-1")
	require.NoError(t, err)

	assert.Equal(t, 4.5, avg)
	assert.Equal(t, 4.5, repo.storedAvg)
	require.Len(t, repo.ratings, 1)
	assert.Equal(t, 5, repo.ratings[0].Stars)
}

func TestRateRejectsOutOfRangeStars(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeStore{}, &fakeAnalyzer{})
	_, err := svc.Rate(context.Background(), "doc-1", 6, "", "")
	assert.Error(t, err)
}

func TestRateUnknownDocument(t *testing.T) {
	svc := newService(&fakeRepo{}, &fakeStore{}, &fakeAnalyzer{})
	_, err := svc.Rate(context.Background(), "ghost", 3, "", "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b.pdf", sanitizeFileName("a b.pdf"))
	assert.Equal(t, "b.pdf", sanitizeFileName("../a/b.pdf"))
	assert.Equal(t, "document.pdf", sanitizeFileName(""))
}
