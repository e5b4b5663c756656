package payfast

import "net/url"

// Gateway payment status vocabulary.
const (
	StatusComplete  = "COMPLETE"
	StatusFailed    = "FAILED"
	StatusPending   = "PENDING"
	StatusCancelled = "CANCELLED"
)

// Notification is an inbound ITN callback. It is untrusted input: nothing
// here may be acted on before the validator has passed all three checks,
// and it is never persisted verbatim.
type Notification struct {
	MPaymentID  string // our payment id
	PFPaymentID string // gateway transaction id

	PaymentStatus   string
	ItemName        string
	ItemDescription string
	AmountGross     string
	AmountFee       string
	AmountNet       string

	CustomStr1 string // load id
	CustomStr2 string // customer id
	CustomStr3 string // driver id, empty if unassigned

	NameFirst    string
	NameLast     string
	EmailAddress string

	MerchantID string
	Signature  string
}

// ParseNotification projects the gateway's form fields onto a Notification.
func ParseNotification(form url.Values) *Notification {
	return &Notification{
		MPaymentID:      form.Get("m_payment_id"),
		PFPaymentID:     form.Get("pf_payment_id"),
		PaymentStatus:   form.Get("payment_status"),
		ItemName:        form.Get("item_name"),
		ItemDescription: form.Get("item_description"),
		AmountGross:     form.Get("amount_gross"),
		AmountFee:       form.Get("amount_fee"),
		AmountNet:       form.Get("amount_net"),
		CustomStr1:      form.Get("custom_str1"),
		CustomStr2:      form.Get("custom_str2"),
		CustomStr3:      form.Get("custom_str3"),
		NameFirst:       form.Get("name_first"),
		NameLast:        form.Get("name_last"),
		EmailAddress:    form.Get("email_address"),
		MerchantID:      form.Get("merchant_id"),
		Signature:       form.Get("signature"),
	}
}

// SignatureFields returns the declared field set the signature is computed
// over, excluding the signature itself.
func (n *Notification) SignatureFields() []Field {
	return []Field{
		{"m_payment_id", n.MPaymentID},
		{"pf_payment_id", n.PFPaymentID},
		{"payment_status", n.PaymentStatus},
		{"item_name", n.ItemName},
		{"item_description", n.ItemDescription},
		{"amount_gross", n.AmountGross},
		{"amount_fee", n.AmountFee},
		{"amount_net", n.AmountNet},
		{"custom_str1", n.CustomStr1},
		{"custom_str2", n.CustomStr2},
		{"custom_str3", n.CustomStr3},
		{"name_first", n.NameFirst},
		{"name_last", n.NameLast},
		{"email_address", n.EmailAddress},
		{"merchant_id", n.MerchantID},
	}
}

// IsComplete reports a successful payment.
func (n *Notification) IsComplete() bool { return n.PaymentStatus == StatusComplete }

// IsFailed reports a failed payment.
func (n *Notification) IsFailed() bool { return n.PaymentStatus == StatusFailed }

// IsCancelled reports a cancelled payment.
func (n *Notification) IsCancelled() bool { return n.PaymentStatus == StatusCancelled }
