package payfast

import (
	"fmt"
	"html"
	"strings"

	"loadhitch/internal/domain"
)

// PaymentRequest is an outbound redirect payload for the gateway's process
// endpoint. The customer's browser posts these fields to PayFast; the
// gateway later reports the outcome through the notify URL.
type PaymentRequest struct {
	MerchantID  string
	MerchantKey string
	ReturnURL   string
	CancelURL   string
	NotifyURL   string

	NameFirst    string
	NameLast     string
	EmailAddress string
	CellNumber   string

	MPaymentID string
	Amount     string
	ItemName   string
	ItemDesc   string

	CustomStr1 string // load id
	CustomStr2 string // customer id
	CustomStr3 string // driver id, empty if unassigned

	PaymentMethod       string
	EmailConfirmation   string
	ConfirmationAddress string

	Signature string
}

// BuildPaymentRequest assembles a signed gateway request for a payment.
func BuildPaymentRequest(settings Settings, payment *domain.Payment, load *domain.Load, customer *domain.Customer) *PaymentRequest {
	req := &PaymentRequest{
		MerchantID:  settings.MerchantID,
		MerchantKey: settings.MerchantKey,
		ReturnURL:   settings.ReturnURL,
		CancelURL:   settings.CancelURL,
		NotifyURL:   settings.NotifyURL,

		NameFirst:    customer.FirstName(),
		NameLast:     customer.LastName(),
		EmailAddress: customer.Email,
		CellNumber:   customer.Phone,

		MPaymentID: payment.ID,
		Amount:     payment.Amount.StringFixed(2),
		ItemName:   fmt.Sprintf("LoadHitch - %s", load.Title),
		ItemDesc:   fmt.Sprintf("%s (%dkg)", load.Description, load.WeightKg),

		CustomStr1: load.ID,
		CustomStr2: customer.ID,
		CustomStr3: load.AssignedDriverID,

		PaymentMethod:       "cc",
		EmailConfirmation:   "1",
		ConfirmationAddress: customer.Email,
	}

	req.Signature = Sign(req.signatureFields(), settings.Passphrase)
	return req
}

func (r *PaymentRequest) signatureFields() []Field {
	return []Field{
		{"merchant_id", r.MerchantID},
		{"merchant_key", r.MerchantKey},
		{"return_url", r.ReturnURL},
		{"cancel_url", r.CancelURL},
		{"notify_url", r.NotifyURL},
		{"name_first", r.NameFirst},
		{"name_last", r.NameLast},
		{"email_address", r.EmailAddress},
		{"cell_number", r.CellNumber},
		{"m_payment_id", r.MPaymentID},
		{"amount", r.Amount},
		{"item_name", r.ItemName},
		{"item_description", r.ItemDesc},
		{"custom_str1", r.CustomStr1},
		{"custom_str2", r.CustomStr2},
		{"custom_str3", r.CustomStr3},
		{"email_confirmation", r.EmailConfirmation},
		{"confirmation_address", r.ConfirmationAddress},
		{"payment_method", r.PaymentMethod},
	}
}

// FormFields returns the complete ordered field set for the redirect form,
// signature included.
func (r *PaymentRequest) FormFields() []Field {
	return append(r.signatureFields(), Field{"signature", r.Signature})
}

// FormHTML renders an auto-submitting HTML form posting the request to the
// gateway's process endpoint. Empty fields are omitted.
func (r *PaymentRequest) FormHTML(processURL string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<form action=%q method=\"post\" id=\"payfast-form\">\n", processURL)
	for _, f := range r.FormFields() {
		if f.Value == "" {
			continue
		}
		fmt.Fprintf(&b, "  <input type=\"hidden\" name=%q value=%q />\n", f.Key, html.EscapeString(f.Value))
	}
	b.WriteString("  <button type=\"submit\">Pay with PayFast</button>\n")
	b.WriteString("</form>\n")
	b.WriteString("<script>document.getElementById('payfast-form').submit();</script>\n")
	return b.String()
}
