package service

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
)

type processorFixture struct {
	processor *NotificationProcessor
	escrow    *escrowFixture
	settings  payfast.Settings
}

func newProcessorFixture() *processorFixture {
	escrow := newEscrowFixture()
	settings := validSettings()
	validator := NewNotificationValidator(settings, nil, nil)

	return &processorFixture{
		processor: NewNotificationProcessor(escrow.svc, validator, nil),
		escrow:    escrow,
		settings:  settings,
	}
}

func (f *processorFixture) addPendingPayment(id, amount string) {
	f.escrow.paymentRepo.AddPayment(&domain.Payment{
		ID:     id,
		Amount: decimal.RequireFromString(amount),
		Status: domain.PaymentStatusPending,
	})
}

func (f *processorFixture) notification(paymentID, status, amount string) *payfast.Notification {
	n := &payfast.Notification{
		MPaymentID:    paymentID,
		PFPaymentID:   "PF-123",
		PaymentStatus: status,
		AmountGross:   amount,
		MerchantID:    f.settings.MerchantID,
	}
	n.Signature = payfast.Sign(n.SignatureFields(), f.settings.Passphrase)
	return n
}

func TestProcess_CompleteHoldsFunds(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	n := f.notification("pay-1", payfast.StatusComplete, "670.00")
	if err := f.processor.Process(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.escrow.paymentRepo.GetPayment("pay-1")
	if stored.Status != domain.PaymentStatusHeld {
		t.Errorf("expected HELD, got %s", stored.Status)
	}
	if stored.TransactionID != "PF-123" {
		t.Errorf("expected gateway transaction id, got %s", stored.TransactionID)
	}
}

func TestProcess_ReplayedDeliveryIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	n := f.notification("pay-1", payfast.StatusComplete, "670.00")

	for i := 0; i < 3; i++ {
		if err := f.processor.Process(context.Background(), n); err != nil {
			t.Fatalf("delivery %d: unexpected error: %v", i+1, err)
		}
	}

	if f.escrow.publisher.Count() != 1 {
		t.Errorf("expected exactly one held event, got %d", f.escrow.publisher.Count())
	}
	if got := f.escrow.paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusHeld {
		t.Errorf("expected HELD, got %s", got)
	}
}

func TestProcess_FailedMarksPaymentFailed(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	n := f.notification("pay-1", payfast.StatusFailed, "670.00")
	if err := f.processor.Process(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.escrow.paymentRepo.GetPayment("pay-1")
	if stored.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED, got %s", stored.Status)
	}
	if !strings.Contains(stored.FailureReason, payfast.StatusFailed) {
		t.Errorf("failure reason must record the gateway status, got %q", stored.FailureReason)
	}
}

func TestProcess_CompleteAfterFailedIsRejected(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	if err := f.processor.Process(context.Background(), f.notification("pay-1", payfast.StatusFailed, "670.00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := f.processor.Process(context.Background(), f.notification("pay-1", payfast.StatusComplete, "670.00"))
	if err != ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestProcess_PendingStatusIsAcknowledgedWithoutTransition(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	n := f.notification("pay-1", payfast.StatusPending, "670.00")
	if err := f.processor.Process(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := f.escrow.paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusPending {
		t.Errorf("expected PENDING, got %s", got)
	}
}

func TestProcess_UnknownPaymentIsAuthFailure(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()

	n := f.notification("missing", payfast.StatusComplete, "670.00")
	if err := f.processor.Process(context.Background(), n); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}

	if err := f.processor.Process(context.Background(), &payfast.Notification{}); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure for missing payment id, got %v", err)
	}
}

func TestProcess_TamperedNotificationIsRejected(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	n := f.notification("pay-1", payfast.StatusComplete, "670.00")
	n.AmountGross = "1.00" // breaks the signature

	if err := f.processor.Process(context.Background(), n); err != ErrAuthFailure {
		t.Errorf("expected ErrAuthFailure, got %v", err)
	}
	if got := f.escrow.paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusPending {
		t.Errorf("rejected notification must not transition, got %s", got)
	}
}

func TestProcess_CancelledMarksPaymentFailed(t *testing.T) {
	t.Parallel()

	f := newProcessorFixture()
	f.addPendingPayment("pay-1", "670.00")

	n := f.notification("pay-1", payfast.StatusCancelled, "670.00")
	if err := f.processor.Process(context.Background(), n); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored := f.escrow.paymentRepo.GetPayment("pay-1")
	if stored.Status != domain.PaymentStatusFailed {
		t.Errorf("expected FAILED, got %s", stored.Status)
	}
	if !strings.Contains(stored.FailureReason, payfast.StatusCancelled) {
		t.Errorf("failure reason must record the gateway status, got %q", stored.FailureReason)
	}
}
