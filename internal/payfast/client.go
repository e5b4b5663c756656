package payfast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client performs the server confirmation round-trip against the gateway's
// validate endpoint.
type Client struct {
	httpClient  *http.Client
	validateURL string
}

// NewClient creates a gateway client with a bounded request timeout.
func NewClient(settings Settings, timeout time.Duration) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		validateURL: settings.ValidateURL,
	}
}

// Validate re-posts the notification's key fields to the gateway and
// requires an explicit affirmative marker in the response body. Transport
// errors and non-2xx statuses report a plain error; the caller treats any
// of those as an authentication failure.
func (c *Client) Validate(ctx context.Context, n *Notification) (bool, error) {
	form := url.Values{}
	form.Set("m_payment_id", n.MPaymentID)
	form.Set("pf_payment_id", n.PFPaymentID)
	form.Set("payment_status", n.PaymentStatus)
	form.Set("item_name", n.ItemName)
	form.Set("amount_gross", n.AmountGross)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.validateURL, strings.NewReader(form.Encode()))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false, fmt.Errorf("gateway validation returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return false, err
	}

	return strings.Contains(string(body), "VALID"), nil
}
