package repository

import (
	"context"
	"time"

	"loadhitch/internal/domain"
)

// PaymentRepository defines the persistence operations for escrow payments.
// All Mark* operations are guarded single-statement transitions: they update
// the row only when it is still in the expected source state and return
// ErrStateConflict otherwise, so a transition and its side data commit as
// one atomic unit.
type PaymentRepository interface {
	// Create persists a new payment in PENDING state.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// GetByLoadID retrieves the payment for a load.
	GetByLoadID(ctx context.Context, loadID string) (*domain.Payment, error)

	// ListByCustomer retrieves a customer's payments, newest first.
	ListByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error)

	// ListReleasedByDriver retrieves a driver's released payouts, newest first.
	ListReleasedByDriver(ctx context.Context, driverID string) ([]*domain.Payment, error)

	// MarkHeld transitions PENDING -> HELD, recording the gateway
	// transaction id and paid-at timestamp.
	MarkHeld(ctx context.Context, id, transactionID string, paidAt time.Time) error

	// MarkFailed transitions PENDING -> FAILED, recording the reason.
	MarkFailed(ctx context.Context, id, reason string) error

	// MarkReleased transitions HELD -> RELEASED, recording the driver and
	// payout transaction id.
	MarkReleased(ctx context.Context, id, driverID, payoutTransactionID string, releasedAt time.Time) error

	// MarkRefunded transitions HELD -> REFUNDED, recording the reason and
	// refund transaction id.
	MarkRefunded(ctx context.Context, id, reason, refundTransactionID string, refundedAt time.Time) error
}
