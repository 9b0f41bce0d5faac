package orders

import "context"

// Repository port for orders
type Repository interface {
	Save(ctx context.Context, o *Order) error
	Get(ctx context.Context, id OrderID) (*Order, error)
	Latest(ctx context.Context, limit int) ([]*Order, error)
	UpdateStatus(ctx context.Context, id OrderID, status Status) error
}

// LetterRequest is what the mail fulfillment API needs to print and post one
// document.
type LetterRequest struct {
	Description string
	To          Address
	FileURL     string
	Color       bool
	DoubleSided bool
	MailClass   string
}

// LetterResult is the fulfillment API's acknowledgement.
type LetterResult struct {
	ID                   string
	TrackingNumber       string
	ExpectedDeliveryDate string
}

// MailClient port (interface untuk API surat fisik)
type MailClient interface {
	CreateLetter(ctx context.Context, req LetterRequest) (LetterResult, error)
}

// PaymentIntent is the processor's handle for one client-side payment.
type PaymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// PaymentClient port (interface untuk payment processor)
type PaymentClient interface {
	CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (PaymentIntent, error)
}
