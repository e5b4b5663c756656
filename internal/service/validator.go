package service

import (
	"context"

	"github.com/sirupsen/logrus"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
)

// RemoteValidator performs the gateway's server confirmation round-trip.
type RemoteValidator interface {
	Validate(ctx context.Context, n *payfast.Notification) (bool, error)
}

// NotificationValidator authenticates inbound gateway notifications. Three
// checks run in order: signature, amount cross-check against the stored
// payment, and (when enabled) the server confirmation round-trip. Every
// failure collapses to ErrAuthFailure so responses cannot tell an attacker
// which check tripped; the specific check is only logged.
type NotificationValidator struct {
	settings payfast.Settings
	remote   RemoteValidator
	logger   *logrus.Logger
}

// NewNotificationValidator creates a new NotificationValidator. remote may
// be nil when RemoteValidation is disabled.
func NewNotificationValidator(settings payfast.Settings, remote RemoteValidator, logger *logrus.Logger) *NotificationValidator {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &NotificationValidator{settings: settings, remote: remote, logger: logger}
}

// Validate runs all checks against the notification and the payment it
// claims to settle.
func (v *NotificationValidator) Validate(ctx context.Context, n *payfast.Notification, payment *domain.Payment) error {
	if !payfast.VerifySignature(n.SignatureFields(), v.settings.Passphrase, n.Signature) {
		v.logger.WithField("payment_id", n.MPaymentID).Warn("notification signature mismatch")
		return ErrAuthFailure
	}

	if n.AmountGross != payment.Amount.StringFixed(2) {
		v.logger.WithFields(logrus.Fields{
			"payment_id":   n.MPaymentID,
			"amount_gross": n.AmountGross,
			"expected":     payment.Amount.StringFixed(2),
		}).Warn("notification amount mismatch")
		return ErrAuthFailure
	}

	if v.settings.RemoteValidation && v.remote != nil {
		ok, err := v.remote.Validate(ctx, n)
		if err != nil {
			v.logger.WithFields(logrus.Fields{
				"payment_id": n.MPaymentID,
				"error":      err,
			}).Warn("server confirmation round-trip failed")
			return ErrAuthFailure
		}
		if !ok {
			v.logger.WithField("payment_id", n.MPaymentID).Warn("gateway rejected notification")
			return ErrAuthFailure
		}
	}

	return nil
}
