package orders

import "time"

// OrderID identifier type
type OrderID string

// MailType enum: service tier for the physical letter
type MailType string

const (
	MailStandard MailType = "standard"
	MailPremium  MailType = "premium"
)

// Status enum
type Status string

const (
	StatusCreated   Status = "created"
	StatusInTransit Status = "in_transit"
	StatusDelivered Status = "delivered"
	StatusFailed    Status = "failed"
)

// Address is the recipient mailing address
type Address struct {
	Name    string `json:"name"`
	Company string `json:"company,omitempty"`
	Line1   string `json:"address_line1"`
	Line2   string `json:"address_line2,omitempty"`
	City    string `json:"address_city"`
	State   string `json:"address_state"`
	Zip     string `json:"address_zip"`
	Country string `json:"address_country"`
}

// Order is one paid print-and-mail job for a document. Created once per
// completed payment; status is mutated by downstream fulfillment events.
type Order struct {
	ID         OrderID  `json:"id"`
	DocumentID string   `json:"document_id"`
	TrackingID string   `json:"tracking_id"`
	MailType   MailType `json:"mail_type"`
	PriceCents int64    `json:"price_cents"`

	Recipient Address `json:"recipient"`

	Status               Status    `json:"status"`
	ExpectedDeliveryDate string    `json:"expected_delivery_date,omitempty"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}
