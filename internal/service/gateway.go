package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"loadhitch/internal/domain"
)

// EscrowGateway moves held funds out of escrow. Implementations must be
// safe for concurrent use; the escrow service serializes calls per payment
// but not across payments.
type EscrowGateway interface {
	// Payout transfers the driver's share and returns the provider's
	// transaction id.
	Payout(ctx context.Context, payment *domain.Payment) (string, error)

	// Refund returns the gross amount to the customer and returns the
	// provider's transaction id.
	Refund(ctx context.Context, payment *domain.Payment) (string, error)
}

// SimulatedGateway is the default EscrowGateway. PayFast has no payout
// API for marketplace splits, so disbursement happens out of band and this
// gateway only mints traceable transaction ids.
type SimulatedGateway struct {
	logger *logrus.Logger
}

// NewSimulatedGateway creates a new SimulatedGateway.
func NewSimulatedGateway(logger *logrus.Logger) *SimulatedGateway {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &SimulatedGateway{logger: logger}
}

// Payout records a simulated driver payout.
func (g *SimulatedGateway) Payout(ctx context.Context, payment *domain.Payment) (string, error) {
	txnID := fmt.Sprintf("PAYOUT-%s", shortID())
	g.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"transaction_id": txnID,
		"amount":         payment.DriverPayout.StringFixed(2),
	}).Info("simulated driver payout")
	return txnID, nil
}

// Refund records a simulated customer refund.
func (g *SimulatedGateway) Refund(ctx context.Context, payment *domain.Payment) (string, error) {
	txnID := fmt.Sprintf("REFUND-%s", shortID())
	g.logger.WithFields(logrus.Fields{
		"payment_id":     payment.ID,
		"transaction_id": txnID,
		"amount":         payment.Amount.StringFixed(2),
	}).Info("simulated customer refund")
	return txnID, nil
}

func shortID() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}
