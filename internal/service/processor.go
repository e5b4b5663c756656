package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
	"loadhitch/internal/repository"
)

// notificationValidator authenticates a parsed notification against its
// payment.
type notificationValidator interface {
	Validate(ctx context.Context, n *payfast.Notification, payment *domain.Payment) error
}

// escrowTransitions is the slice of the escrow service the processor drives.
type escrowTransitions interface {
	Get(ctx context.Context, id string) (*domain.Payment, error)
	ConfirmHeld(ctx context.Context, paymentID, transactionID string) error
	Fail(ctx context.Context, paymentID, reason string) error
}

// NotificationProcessor turns authenticated gateway notifications into
// payment transitions. Processing is idempotent: the gateway retries
// deliveries until acknowledged, so replays of an already-applied
// notification must succeed without side effects.
type NotificationProcessor struct {
	escrow    escrowTransitions
	validator notificationValidator
	logger    *logrus.Logger
}

// NewNotificationProcessor creates a new NotificationProcessor.
func NewNotificationProcessor(escrow escrowTransitions, validator notificationValidator, logger *logrus.Logger) *NotificationProcessor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationProcessor{escrow: escrow, validator: validator, logger: logger}
}

// Process validates a notification and applies its status to the payment
// it references. Unknown payments and failed checks all surface as
// ErrAuthFailure.
func (p *NotificationProcessor) Process(ctx context.Context, n *payfast.Notification) error {
	if n.MPaymentID == "" {
		return ErrAuthFailure
	}

	payment, err := p.escrow.Get(ctx, n.MPaymentID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			p.logger.WithField("payment_id", n.MPaymentID).Warn("notification for unknown payment")
			return ErrAuthFailure
		}
		return err
	}

	if err := p.validator.Validate(ctx, n, payment); err != nil {
		return err
	}

	return p.apply(ctx, n, payment)
}

func (p *NotificationProcessor) apply(ctx context.Context, n *payfast.Notification, payment *domain.Payment) error {
	switch {
	case n.IsComplete():
		return p.escrow.ConfirmHeld(ctx, payment.ID, n.PFPaymentID)

	case n.IsFailed(), n.IsCancelled():
		return p.escrow.Fail(ctx, payment.ID, "payment "+n.PaymentStatus)

	default:
		// PENDING and unrecognized statuses carry no transition; acknowledge
		// so the gateway stops retrying.
		p.logger.WithFields(logrus.Fields{
			"payment_id": payment.ID,
			"status":     n.PaymentStatus,
		}).Info("no transition for notification status")
		return nil
	}
}
