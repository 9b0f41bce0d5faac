package stripe

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"github.com/printmailhq/printmail/internal/domain/orders"
)

type Client struct {
	api *client.API
}

func NewClient(apiKey string) *Client {
	api := &client.API{}
	api.Init(apiKey, nil)
	return &Client{api: api}
}

// CreatePaymentIntent creates one payment intent and returns the client
// secret the checkout form confirms against. Amounts are minor units (cents).
func (c *Client) CreatePaymentIntent(ctx context.Context, amountCents int64, currency string, metadata map[string]string) (orders.PaymentIntent, error) {
	if currency == "" {
		currency = "usd"
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := c.api.PaymentIntents.New(params)
	if err != nil {
		return orders.PaymentIntent{}, fmt.Errorf("create payment intent: %w", err)
	}
	return orders.PaymentIntent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}
