package moderation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printmailhq/printmail/internal/domain/documents"
	domain "github.com/printmailhq/printmail/internal/domain/moderation"
)

type memFlags struct {
	flags map[domain.FlagID]*domain.Flag
}

func newMemFlags() *memFlags {
	return &memFlags{flags: make(map[domain.FlagID]*domain.Flag)}
}

func (m *memFlags) Save(ctx context.Context, f *domain.Flag) error {
	cp := *f
	m.flags[f.ID] = &cp
	return nil
}

func (m *memFlags) Get(ctx context.Context, id domain.FlagID) (*domain.Flag, error) {
	f, ok := m.flags[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *f
	return &cp, nil
}

func (m *memFlags) ListByDocument(ctx context.Context, documentID string) ([]*domain.Flag, error) {
	var out []*domain.Flag
	for _, f := range m.flags {
		if f.DocumentID == documentID {
			out = append(out, f)
		}
	}
	return out, nil
}

func (m *memFlags) ListPending(ctx context.Context, limit int) ([]*domain.Flag, error) {
	var out []*domain.Flag
	for _, f := range m.flags {
		if f.Status == domain.StatusPending {
			out = append(out, f)
		}
	}
	return out, nil
}

type fakeDocs struct {
	documents.Repository
	exists    bool
	flagCount int
	public    map[string]bool
}

func (f *fakeDocs) Get(ctx context.Context, id documents.DocumentID) (*documents.Document, error) {
	if !f.exists {
		return nil, documents.ErrNotFound
	}
	return &documents.Document{ID: id, IsPublic: true}, nil
}

func (f *fakeDocs) IncrementFlagCount(ctx context.Context, id documents.DocumentID) error {
	f.flagCount++
	return nil
}

func (f *fakeDocs) SetPublic(ctx context.Context, id documents.DocumentID, public bool) error {
	if f.public == nil {
		f.public = make(map[string]bool)
	}
	f.public[string(id)] = public
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func newService(docs *fakeDocs) (*Service, *memFlags) {
	flags := newMemFlags()
	return &Service{
		Flags: flags,
		Docs:  docs,
		Clock: fixedClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)},
	}, flags
}

func TestFlagDocumentBumpsCounter(t *testing.T) {
	docs := &fakeDocs{exists: true}
	svc, _ := newService(docs)

	f, err := svc.FlagDocument(context.Background(), "doc-1", "copyright", "pirated book", "user-9")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, f.Status)
	assert.Equal(t, "doc-1", f.DocumentID)
	assert.Equal(t, 1, docs.flagCount)
}

func TestFlagDocumentRequiresExistingDocument(t *testing.T) {
	svc, _ := newService(&fakeDocs{exists: false})
	_, err := svc.FlagDocument(context.Background(), "ghost", "spam", "", "")
	assert.ErrorIs(t, err, documents.ErrNotFound)
}

func TestReviewAcceptedHidesDocument(t *testing.T) {
	docs := &fakeDocs{exists: true}
	svc, _ := newService(docs)

	f, err := svc.FlagDocument(context.Background(), "doc-1", "copyright", "", "")
	require.NoError(t, err)

	reviewed, err := svc.ReviewFlag(context.Background(), f.ID, domain.StatusAccepted, "admin", "confirmed")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAccepted, reviewed.Status)
	assert.Equal(t, "admin", reviewed.ReviewedBy)
	assert.False(t, reviewed.ResolvedAt.IsZero())
	assert.False(t, docs.public["doc-1"])
}

func TestReviewRejectedKeepsDocumentVisible(t *testing.T) {
	docs := &fakeDocs{exists: true}
	svc, _ := newService(docs)

	f, _ := svc.FlagDocument(context.Background(), "doc-1", "spam", "", "")
	_, err := svc.ReviewFlag(context.Background(), f.ID, domain.StatusRejected, "admin", "")
	require.NoError(t, err)

	_, touched := docs.public["doc-1"]
	assert.False(t, touched)
}

func TestReviewIsTerminalOnce(t *testing.T) {
	svc, _ := newService(&fakeDocs{exists: true})

	f, _ := svc.FlagDocument(context.Background(), "doc-1", "spam", "", "")
	_, err := svc.ReviewFlag(context.Background(), f.ID, domain.StatusRejected, "admin", "")
	require.NoError(t, err)

	_, err = svc.ReviewFlag(context.Background(), f.ID, domain.StatusAccepted, "admin", "flip")
	assert.ErrorIs(t, err, domain.ErrAlreadyResolved)
}

func TestReviewRejectsNonTerminalVerdict(t *testing.T) {
	svc, _ := newService(&fakeDocs{exists: true})
	f, _ := svc.FlagDocument(context.Background(), "doc-1", "spam", "", "")

	_, err := svc.ReviewFlag(context.Background(), f.ID, domain.StatusPending, "admin", "")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
