package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/printmailhq/printmail/internal/application"
	"github.com/printmailhq/printmail/internal/domain/documents"
	domain "github.com/printmailhq/printmail/internal/domain/orders"
)

// Price per mail tier, in cents. Premium buys color + first-class.
const (
	PriceStandardCents int64 = 299
	PricePremiumCents  int64 = 599
)

// PriceFor returns the charge for a mail tier
func PriceFor(t domain.MailType) (int64, error) {
	switch t {
	case domain.MailStandard:
		return PriceStandardCents, nil
	case domain.MailPremium:
		return PricePremiumCents, nil
	}
	return 0, fmt.Errorf("unknown mail type: %s", t)
}

// Service implements checkout and order fulfillment use-cases
type Service struct {
	Repo    domain.Repository
	Docs    documents.Repository
	Payment domain.PaymentClient
	Mail    domain.MailClient
	Clock   application.Clock
	Log     *logrus.Logger
}

// CreatePaymentIntent opens a client-side payment for one document + tier.
// The amount is derived server-side from the tier, never taken from the client.
func (s *Service) CreatePaymentIntent(ctx context.Context, documentID string, mailType domain.MailType) (domain.PaymentIntent, error) {
	price, err := PriceFor(mailType)
	if err != nil {
		return domain.PaymentIntent{}, err
	}
	if _, err := s.Docs.Get(ctx, documents.DocumentID(documentID)); err != nil {
		return domain.PaymentIntent{}, err
	}

	return s.Payment.CreatePaymentIntent(ctx, price, "usd", map[string]string{
		"document_id": documentID,
		"mail_type":   string(mailType),
	})
}

// PlaceOrder submits the letter to the mail API and records the order.
// Called after payment completion; the print counter is bumped as a side
// effect so the document ranks in the "most printed" listing.
func (s *Service) PlaceOrder(ctx context.Context, documentID string, to domain.Address, mailType domain.MailType) (*domain.Order, error) {
	price, err := PriceFor(mailType)
	if err != nil {
		return nil, err
	}

	doc, err := s.Docs.Get(ctx, documents.DocumentID(documentID))
	if err != nil {
		return nil, err
	}

	req := domain.LetterRequest{
		Description: fmt.Sprintf("PrintMail order for %s", doc.FileName),
		To:          to,
		FileURL:     doc.FileURL,
		Color:       mailType == domain.MailPremium,
		DoubleSided: true,
		MailClass:   mailClass(mailType),
	}
	letter, err := s.Mail.CreateLetter(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create letter: %w", err)
	}

	now := s.Clock.Now()
	order := &domain.Order{
		ID:                   domain.OrderID(uuid.New().String()),
		DocumentID:           documentID,
		TrackingID:           letter.TrackingNumber,
		MailType:             mailType,
		PriceCents:           price,
		Recipient:            to,
		Status:               domain.StatusCreated,
		ExpectedDeliveryDate: letter.ExpectedDeliveryDate,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if order.TrackingID == "" {
		order.TrackingID = letter.ID
	}
	if err := s.Repo.Save(ctx, order); err != nil {
		return nil, fmt.Errorf("save order: %w", err)
	}

	if _, err := s.Docs.Increment(ctx, documents.DocumentID(documentID), documents.CounterPrint); err != nil {
		// order sudah jalan, counter gagal: log saja
		if s.Log != nil {
			s.Log.WithField("document_id", documentID).WithError(err).
				Warn("order placed but print counter bump failed")
		}
	}
	return order, nil
}

// Get ambil 1 order by id
func (s *Service) Get(ctx context.Context, id domain.OrderID) (*domain.Order, error) {
	return s.Repo.Get(ctx, id)
}

// Latest lists the most recent orders
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Order, error) {
	return s.Repo.Latest(ctx, limit)
}

// UpdateStatus applies a fulfillment status transition (webhook driven)
func (s *Service) UpdateStatus(ctx context.Context, id domain.OrderID, status domain.Status) error {
	switch status {
	case domain.StatusCreated, domain.StatusInTransit, domain.StatusDelivered, domain.StatusFailed:
	default:
		return fmt.Errorf("unknown order status: %s", status)
	}
	return s.Repo.UpdateStatus(ctx, id, status)
}

func mailClass(t domain.MailType) string {
	if t == domain.MailPremium {
		return "usps_first_class"
	}
	return "usps_standard"
}
