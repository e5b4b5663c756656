package service

import "errors"

var (
	// ErrAuthFailure is returned when an inbound gateway notification fails
	// any validation check. Callers must not reveal which check failed.
	ErrAuthFailure = errors.New("notification authentication failed")

	// ErrInvalidTransition is returned on a payment state-machine misuse.
	ErrInvalidTransition = errors.New("invalid payment state transition")

	// ErrPayoutFailed is returned when the payout collaborator fails.
	// The payment remains HELD and the operation can be retried.
	ErrPayoutFailed = errors.New("driver payout failed")

	// ErrRefundFailed is returned when the refund collaborator fails.
	// The payment remains HELD and the operation can be retried.
	ErrRefundFailed = errors.New("refund failed")

	// ErrPaymentBusy is returned when another writer holds the payment's
	// advisory lock. Retryable.
	ErrPaymentBusy = errors.New("payment is being processed")

	// ErrNoRateTier is returned when no rate tier covers the requested
	// category and weight, even after the default-category fallback.
	ErrNoRateTier = errors.New("no rate tier configured for category and weight")

	// ErrEstimationFailure is returned when the fallback distance
	// computation cannot run. Coordinates must be finite.
	ErrEstimationFailure = errors.New("distance estimation failed")

	// ErrLoadNotFound is returned when a payment references an unknown load.
	ErrLoadNotFound = errors.New("load not found")

	// ErrInvalidLoadID is returned when the load ID is empty.
	ErrInvalidLoadID = errors.New("invalid load id")

	// ErrInvalidCustomerID is returned when the customer ID is empty.
	ErrInvalidCustomerID = errors.New("invalid customer id")

	// ErrInvalidDriverID is returned when the driver ID is empty.
	ErrInvalidDriverID = errors.New("invalid driver id")

	// ErrInvalidPaymentID is returned when the payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidPaymentAmount is returned when the amount is not positive.
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")

	// ErrInvalidRefundReason is returned when a refund has no reason.
	ErrInvalidRefundReason = errors.New("refund reason is required")

	// ErrInvalidWeight is returned when the weight is not positive.
	ErrInvalidWeight = errors.New("invalid weight")
)
