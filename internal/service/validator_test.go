package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
)

func validSettings() payfast.Settings {
	return payfast.Settings{
		MerchantID:  "10000100",
		MerchantKey: "46f0cd694581a",
		Passphrase:  "secret",
	}
}

func signedNotification(t *testing.T, settings payfast.Settings, amount string) *payfast.Notification {
	t.Helper()

	n := &payfast.Notification{
		MPaymentID:    "pay-1",
		PFPaymentID:   "PF-123",
		PaymentStatus: payfast.StatusComplete,
		ItemName:      "LoadHitch - Couch",
		AmountGross:   amount,
		MerchantID:    settings.MerchantID,
	}
	n.Signature = payfast.Sign(n.SignatureFields(), settings.Passphrase)
	return n
}

func heldAmountPayment(amount string) *domain.Payment {
	return &domain.Payment{
		ID:     "pay-1",
		Amount: decimal.RequireFromString(amount),
		Status: domain.PaymentStatusPending,
	}
}

func TestValidate_AcceptsAuthenticNotification(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	v := NewNotificationValidator(settings, nil, nil)

	n := signedNotification(t, settings, "670.00")
	if err := v.Validate(context.Background(), n, heldAmountPayment("670.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_RejectsBadSignature(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	v := NewNotificationValidator(settings, nil, nil)

	n := signedNotification(t, settings, "670.00")
	n.Signature = "0123456789abcdef0123456789abcdef"

	if err := v.Validate(context.Background(), n, heldAmountPayment("670.00")); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}
}

func TestValidate_RejectsTamperedAmount(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	v := NewNotificationValidator(settings, nil, nil)

	// Signature is valid for the tampered amount; the cross-check against
	// the stored payment must still reject it.
	n := signedNotification(t, settings, "1.00")

	if err := v.Validate(context.Background(), n, heldAmountPayment("670.00")); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}
}

func TestValidate_RejectsNonCanonicalAmount(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	v := NewNotificationValidator(settings, nil, nil)

	// The gateway always sends two decimal places; anything else is not a
	// gateway rendering of the stored amount.
	for _, gross := range []string{"670.0", "670", "670.000"} {
		n := signedNotification(t, settings, gross)
		if err := v.Validate(context.Background(), n, heldAmountPayment("670.00")); err != ErrAuthFailure {
			t.Errorf("amount_gross %q: expected ErrAuthFailure, got %v", gross, err)
		}
	}
}

func TestValidate_RejectsUnparseableAmount(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	v := NewNotificationValidator(settings, nil, nil)

	n := signedNotification(t, settings, "not-a-number")

	if err := v.Validate(context.Background(), n, heldAmountPayment("670.00")); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}
}

func TestValidate_RemoteRoundTrip(t *testing.T) {
	t.Parallel()

	settings := validSettings()
	settings.RemoteValidation = true

	remote := &MockRemoteValidator{Valid: true}
	v := NewNotificationValidator(settings, remote, nil)

	n := signedNotification(t, settings, "670.00")
	payment := heldAmountPayment("670.00")

	if err := v.Validate(context.Background(), n, payment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.CallCount != 1 {
		t.Errorf("expected one round-trip, got %d", remote.CallCount)
	}

	// Gateway says invalid.
	remote.Valid = false
	if err := v.Validate(context.Background(), n, payment); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}

	// Transport failure counts as a failed check.
	remote.Err = errors.New("connection refused")
	if err := v.Validate(context.Background(), n, payment); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}
}

func TestValidate_RemoteSkippedWhenDisabled(t *testing.T) {
	t.Parallel()

	settings := validSettings() // RemoteValidation false
	remote := &MockRemoteValidator{Valid: false}
	v := NewNotificationValidator(settings, remote, nil)

	n := signedNotification(t, settings, "670.00")
	if err := v.Validate(context.Background(), n, heldAmountPayment("670.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if remote.CallCount != 0 {
		t.Error("round-trip must be skipped when disabled")
	}
}
