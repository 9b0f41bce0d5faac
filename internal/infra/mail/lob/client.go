package lob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/printmailhq/printmail/internal/domain/orders"
)

const defaultBaseURL = "https://api.lob.com/v1"

// Client is a narrow REST client for the Lob letters API. Lob publishes no
// maintained Go SDK; the letter call is a single form-encoded POST.
type Client struct {
	apiKey  string
	baseURL string
	from    orders.Address
	httpc   *http.Client
}

// NewClient builds a letters client. from is the sender address printed on
// every letter.
func NewClient(apiKey string, from orders.Address) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		from:    from,
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

type letterResponse struct {
	ID                   string `json:"id"`
	TrackingNumber       string `json:"tracking_number"`
	ExpectedDeliveryDate string `json:"expected_delivery_date"`
	Error                *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateLetter submits one print-and-mail job and returns Lob's tracking
// handle. The file is passed as a URL reference; Lob fetches it.
func (c *Client) CreateLetter(ctx context.Context, req orders.LetterRequest) (orders.LetterResult, error) {
	form := url.Values{}
	form.Set("description", req.Description)
	form.Set("file", req.FileURL)
	form.Set("color", fmt.Sprintf("%t", req.Color))
	form.Set("double_sided", fmt.Sprintf("%t", req.DoubleSided))
	form.Set("address_placement", "insert_blank_page")
	if req.MailClass != "" {
		form.Set("mail_type", req.MailClass)
	}
	encodeAddress(form, "to", req.To)
	encodeAddress(form, "from", c.from)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/letters", strings.NewReader(form.Encode()))
	if err != nil {
		return orders.LetterResult{}, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	// Lob authenticates with the API key as the basic-auth username.
	httpReq.SetBasicAuth(c.apiKey, "")

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return orders.LetterResult{}, fmt.Errorf("lob request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return orders.LetterResult{}, fmt.Errorf("lob response: %w", err)
	}

	var lr letterResponse
	if err := json.Unmarshal(body, &lr); err != nil {
		return orders.LetterResult{}, fmt.Errorf("lob response decode (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode >= 400 {
		msg := resp.Status
		if lr.Error != nil && lr.Error.Message != "" {
			msg = lr.Error.Message
		}
		return orders.LetterResult{}, fmt.Errorf("lob letter create failed: %s", msg)
	}

	return orders.LetterResult{
		ID:                   lr.ID,
		TrackingNumber:       lr.TrackingNumber,
		ExpectedDeliveryDate: lr.ExpectedDeliveryDate,
	}, nil
}

func encodeAddress(form url.Values, prefix string, a orders.Address) {
	form.Set(prefix+"[name]", a.Name)
	if a.Company != "" {
		form.Set(prefix+"[company]", a.Company)
	}
	form.Set(prefix+"[address_line1]", a.Line1)
	if a.Line2 != "" {
		form.Set(prefix+"[address_line2]", a.Line2)
	}
	form.Set(prefix+"[address_city]", a.City)
	form.Set(prefix+"[address_state]", a.State)
	form.Set(prefix+"[address_zip]", a.Zip)
	form.Set(prefix+"[address_country]", a.Country)
}
