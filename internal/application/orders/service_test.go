package orders

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/printmailhq/printmail/internal/domain/documents"
	domain "github.com/printmailhq/printmail/internal/domain/orders"
)

type memOrders struct {
	orders map[domain.OrderID]*domain.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[domain.OrderID]*domain.Order)}
}

func (m *memOrders) Save(ctx context.Context, o *domain.Order) error {
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *memOrders) Get(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return o, nil
}

func (m *memOrders) Latest(ctx context.Context, limit int) ([]*domain.Order, error) {
	var out []*domain.Order
	for _, o := range m.orders {
		out = append(out, o)
	}
	return out, nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id domain.OrderID, status domain.Status) error {
	o, ok := m.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	o.Status = status
	return nil
}

type fakeDocs struct {
	documents.Repository
	doc        *documents.Document
	printBumps int
}

func (f *fakeDocs) Get(ctx context.Context, id documents.DocumentID) (*documents.Document, error) {
	if f.doc == nil {
		return nil, documents.ErrNotFound
	}
	return f.doc, nil
}

func (f *fakeDocs) Increment(ctx context.Context, id documents.DocumentID, c documents.Counter) (int, error) {
	if c == documents.CounterPrint {
		f.printBumps++
	}
	return f.printBumps, nil
}

type fakePayment struct {
	amount   int64
	currency string
	meta     map[string]string
}

func (f *fakePayment) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (domain.PaymentIntent, error) {
	f.amount = amountCents
	f.currency = currency
	f.meta = metadata
	return domain.PaymentIntent{ID: "pi_1", ClientSecret: "pi_1_secret"}, nil
}

type fakeMail struct {
	req domain.LetterRequest
	res domain.LetterResult
	err error
}

func (f *fakeMail) CreateLetter(ctx context.Context, req domain.LetterRequest) (domain.LetterResult, error) {
	f.req = req
	return f.res, f.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func testAddress() domain.Address {
	return domain.Address{
		Name:    "Ada Lovelace",
		Line1:   "12 Analytical Row",
		City:    "London",
		State:   "LDN",
		Zip:     "E1 6AN",
		Country: "GB",
	}
}

func newService(docs *fakeDocs, pay *fakePayment, mail *fakeMail) (*Service, *memOrders) {
	repo := newMemOrders()
	return &Service{
		Repo:    repo,
		Docs:    docs,
		Payment: pay,
		Mail:    mail,
		Clock:   fixedClock{t: time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)},
	}, repo
}

func TestCreatePaymentIntentDerivesAmountServerSide(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1"}}
	pay := &fakePayment{}
	svc, _ := newService(docs, pay, &fakeMail{})

	intent, err := svc.CreatePaymentIntent(context.Background(), "doc-1", domain.MailPremium)
	require.NoError(t, err)

	assert.Equal(t, "pi_1_secret", intent.ClientSecret)
	assert.Equal(t, PricePremiumCents, pay.amount)
	assert.Equal(t, "usd", pay.currency)
	assert.Equal(t, "doc-1", pay.meta["document_id"])
	assert.Equal(t, "premium", pay.meta["mail_type"])
}

func TestCreatePaymentIntentUnknownTier(t *testing.T) {
	svc, _ := newService(&fakeDocs{doc: &documents.Document{ID: "doc-1"}}, &fakePayment{}, &fakeMail{})
	_, err := svc.CreatePaymentIntent(context.Background(), "doc-1", "express")
	assert.Error(t, err)
}

func TestPlaceOrderSubmitsLetterAndBumpsPrintCount(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{
		ID:       "doc-1",
		FileName: "thesis.pdf",
		FileURL:  "https://files.example.com/pdfs/thesis.pdf",
	}}
	mail := &fakeMail{res: domain.LetterResult{
		ID:                   "ltr_1",
		TrackingNumber:       "TRK42",
		ExpectedDeliveryDate: "2025-06-05",
	}}
	svc, repo := newService(docs, &fakePayment{}, mail)

	order, err := svc.PlaceOrder(context.Background(), "doc-1", testAddress(), domain.MailPremium)
	require.NoError(t, err)

	// letter derived from tier and document
	assert.Equal(t, "https://files.example.com/pdfs/thesis.pdf", mail.req.FileURL)
	assert.True(t, mail.req.Color)
	assert.Equal(t, "usps_first_class", mail.req.MailClass)

	assert.Equal(t, domain.StatusCreated, order.Status)
	assert.Equal(t, "TRK42", order.TrackingID)
	assert.Equal(t, "2025-06-05", order.ExpectedDeliveryDate)
	assert.Equal(t, PricePremiumCents, order.PriceCents)
	assert.Equal(t, 1, docs.printBumps)

	stored, err := repo.Get(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.TrackingID, stored.TrackingID)
}

func TestPlaceOrderStandardTier(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1", FileURL: "u"}}
	mail := &fakeMail{res: domain.LetterResult{ID: "ltr_2"}}
	svc, _ := newService(docs, &fakePayment{}, mail)

	order, err := svc.PlaceOrder(context.Background(), "doc-1", testAddress(), domain.MailStandard)
	require.NoError(t, err)

	assert.False(t, mail.req.Color)
	assert.Equal(t, "usps_standard", mail.req.MailClass)
	assert.Equal(t, PriceStandardCents, order.PriceCents)
	// no tracking number yet, fall back to the letter id
	assert.Equal(t, "ltr_2", order.TrackingID)
}

func TestPlaceOrderMailFailureLeavesNoOrder(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1", FileURL: "u"}}
	mail := &fakeMail{err: errors.New("lob down")}
	svc, repo := newService(docs, &fakePayment{}, mail)

	_, err := svc.PlaceOrder(context.Background(), "doc-1", testAddress(), domain.MailStandard)
	require.Error(t, err)
	assert.Empty(t, repo.orders)
	assert.Zero(t, docs.printBumps)
}

func TestUpdateStatusValidatesTransitionTarget(t *testing.T) {
	docs := &fakeDocs{doc: &documents.Document{ID: "doc-1", FileURL: "u"}}
	svc, _ := newService(docs, &fakePayment{}, &fakeMail{res: domain.LetterResult{ID: "l"}})

	order, err := svc.PlaceOrder(context.Background(), "doc-1", testAddress(), domain.MailStandard)
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(context.Background(), order.ID, domain.StatusInTransit))
	assert.Error(t, svc.UpdateStatus(context.Background(), order.ID, "teleported"))
}
