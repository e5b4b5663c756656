// Package payfast implements the PayFast gateway wire protocol: the
// signature canonicalization shared by outbound requests and inbound ITN
// (Instant Transaction Notification) callbacks, the notification and
// payment-request field sets, and the server-side confirmation round-trip.
package payfast

// Settings is the immutable gateway configuration handed to the validator
// and request builder at construction. Sandbox endpoints are the defaults.
type Settings struct {
	MerchantID  string
	MerchantKey string
	Passphrase  string
	ProcessURL  string
	ValidateURL string

	ReturnURL string
	CancelURL string
	NotifyURL string

	// RemoteValidation enables the server confirmation round-trip as the
	// third validation check.
	RemoteValidation bool
}

// Gateway endpoint URLs.
const (
	SandboxProcessURL  = "https://sandbox.payfast.co.za/eng/process"
	SandboxValidateURL = "https://sandbox.payfast.co.za/eng/query/validate"

	ProductionProcessURL  = "https://www.payfast.co.za/eng/process"
	ProductionValidateURL = "https://www.payfast.co.za/eng/query/validate"
)

// EndpointURLs returns the process and validate endpoints for the chosen
// environment.
func EndpointURLs(sandbox bool) (processURL, validateURL string) {
	if sandbox {
		return SandboxProcessURL, SandboxValidateURL
	}
	return ProductionProcessURL, ProductionValidateURL
}
