package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
	"loadhitch/internal/redis"
	"loadhitch/internal/repository"
)

// paymentLockTTL bounds how long a crashed writer can hold a payment's
// advisory lock.
const paymentLockTTL = 30 * time.Second

// EscrowService owns the payment state machine. Funds move
// PENDING -> HELD -> RELEASED|REFUNDED, or PENDING -> FAILED; terminal
// states admit no further transitions. Every transition commits through a
// guarded single-statement update, and transitions that call out to the
// escrow gateway are additionally serialized per payment by a Redis
// advisory lock.
type EscrowService struct {
	paymentRepo  repository.PaymentRepository
	loadRepo     repository.LoadRepository
	customerRepo repository.CustomerRepository
	locks        redis.LockStoreInterface
	gateway      EscrowGateway
	notifier     Notifier
	settings     payfast.Settings
	now          func() time.Time
	logger       *logrus.Logger
}

// NewEscrowService creates a new EscrowService. notifier may be nil; now
// defaults to time.Now.
func NewEscrowService(
	paymentRepo repository.PaymentRepository,
	loadRepo repository.LoadRepository,
	customerRepo repository.CustomerRepository,
	locks redis.LockStoreInterface,
	gateway EscrowGateway,
	notifier Notifier,
	settings payfast.Settings,
	now func() time.Time,
	logger *logrus.Logger,
) *EscrowService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &EscrowService{
		paymentRepo:  paymentRepo,
		loadRepo:     loadRepo,
		customerRepo: customerRepo,
		locks:        locks,
		gateway:      gateway,
		notifier:     notifier,
		settings:     settings,
		now:          now,
		logger:       logger,
	}
}

// InitiatePaymentRequest contains the inputs for a new escrow payment.
type InitiatePaymentRequest struct {
	LoadID     string
	CustomerID string
	Amount     decimal.Decimal
	Method     string
	Notes      string
}

// Initiate creates a PENDING payment for a load. A load carries at most
// one live payment: if one already exists and has not failed, it is
// returned unchanged so retried checkouts stay idempotent.
func (s *EscrowService) Initiate(ctx context.Context, req InitiatePaymentRequest) (*domain.Payment, error) {
	if req.LoadID == "" {
		return nil, ErrInvalidLoadID
	}
	if req.CustomerID == "" {
		return nil, ErrInvalidCustomerID
	}
	if !req.Amount.IsPositive() {
		return nil, ErrInvalidPaymentAmount
	}

	load, err := s.loadRepo.GetByID(ctx, req.LoadID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrLoadNotFound
		}
		return nil, fmt.Errorf("failed to fetch load: %w", err)
	}

	existing, err := s.paymentRepo.GetByLoadID(ctx, req.LoadID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing payment: %w", err)
	}
	if existing != nil && existing.Status != domain.PaymentStatusFailed {
		return existing, nil
	}

	fee, payout := domain.SplitAmount(req.Amount)

	method := req.Method
	if method == "" {
		method = "Card"
	}

	payment := &domain.Payment{
		ID:           uuid.New().String(),
		LoadID:       load.ID,
		CustomerID:   req.CustomerID,
		DriverID:     load.AssignedDriverID,
		Amount:       req.Amount,
		PlatformFee:  fee,
		DriverPayout: payout,
		Status:       domain.PaymentStatusPending,
		Method:       method,
		Notes:        req.Notes,
		CreatedAt:    s.now(),
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"load_id":    payment.LoadID,
		"amount":     payment.Amount.StringFixed(2),
	}).Info("payment initiated")

	return payment, nil
}

// Get retrieves a payment by ID.
func (s *EscrowService) Get(ctx context.Context, id string) (*domain.Payment, error) {
	if id == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.paymentRepo.GetByID(ctx, id)
}

// GetByLoad retrieves the payment for a load.
func (s *EscrowService) GetByLoad(ctx context.Context, loadID string) (*domain.Payment, error) {
	if loadID == "" {
		return nil, ErrInvalidLoadID
	}
	return s.paymentRepo.GetByLoadID(ctx, loadID)
}

// ListCustomerPayments retrieves a customer's payments, newest first.
func (s *EscrowService) ListCustomerPayments(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	if customerID == "" {
		return nil, ErrInvalidCustomerID
	}
	return s.paymentRepo.ListByCustomer(ctx, customerID)
}

// DriverEarnings summarizes a driver's released payouts.
type DriverEarnings struct {
	Payments []*domain.Payment
	Total    decimal.Decimal
}

// ListDriverEarnings retrieves a driver's released payments and their
// payout total.
func (s *EscrowService) ListDriverEarnings(ctx context.Context, driverID string) (*DriverEarnings, error) {
	if driverID == "" {
		return nil, ErrInvalidDriverID
	}

	payments, err := s.paymentRepo.ListReleasedByDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.DriverPayout)
	}

	return &DriverEarnings{Payments: payments, Total: total}, nil
}

// Checkout builds the signed gateway redirect for a PENDING payment.
func (s *EscrowService) Checkout(ctx context.Context, paymentID string) (*payfast.PaymentRequest, error) {
	payment, err := s.Get(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.Status != domain.PaymentStatusPending {
		return nil, ErrInvalidTransition
	}

	load, err := s.loadRepo.GetByID(ctx, payment.LoadID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch load: %w", err)
	}

	customer, err := s.customerRepo.GetByID(ctx, payment.CustomerID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customer: %w", err)
	}

	return payfast.BuildPaymentRequest(s.settings, payment, load, customer), nil
}

// ConfirmHeld transitions a payment PENDING -> HELD after the gateway
// confirmed capture. Replays against a payment that is already HELD or
// past it are no-ops; confirming a FAILED payment is an invalid
// transition.
func (s *EscrowService) ConfirmHeld(ctx context.Context, paymentID, transactionID string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	return s.withLock(ctx, paymentID, func() error {
		return s.confirmHeld(ctx, paymentID, transactionID)
	})
}

func (s *EscrowService) confirmHeld(ctx context.Context, paymentID, transactionID string) error {
	err := s.paymentRepo.MarkHeld(ctx, paymentID, transactionID, s.now())
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"payment_id":     paymentID,
			"transaction_id": transactionID,
		}).Info("payment held in escrow")
		s.publish(ctx, EventPaymentHeld, paymentID)
		return nil
	}
	if !errors.Is(err, repository.ErrStateConflict) {
		return err
	}

	payment, getErr := s.paymentRepo.GetByID(ctx, paymentID)
	if getErr != nil {
		return getErr
	}

	switch payment.Status {
	case domain.PaymentStatusHeld, domain.PaymentStatusReleased, domain.PaymentStatusRefunded:
		// Duplicate confirmation, already at or past HELD.
		return nil
	default:
		return ErrInvalidTransition
	}
}

// Fail transitions a payment PENDING -> FAILED. A failure notice for a
// payment whose funds are already held is logged and dropped: held funds
// never revert on the gateway's say-so.
func (s *EscrowService) Fail(ctx context.Context, paymentID, reason string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	return s.withLock(ctx, paymentID, func() error {
		return s.fail(ctx, paymentID, reason)
	})
}

func (s *EscrowService) fail(ctx context.Context, paymentID, reason string) error {
	err := s.paymentRepo.MarkFailed(ctx, paymentID, reason)
	if err == nil {
		s.logger.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"reason":     reason,
		}).Info("payment failed")
		s.publish(ctx, EventPaymentFailed, paymentID)
		return nil
	}
	if !errors.Is(err, repository.ErrStateConflict) {
		return err
	}

	payment, getErr := s.paymentRepo.GetByID(ctx, paymentID)
	if getErr != nil {
		return getErr
	}

	if payment.Status == domain.PaymentStatusFailed {
		return nil
	}

	s.logger.WithFields(logrus.Fields{
		"payment_id": paymentID,
		"status":     payment.Status,
		"reason":     reason,
	}).Warn("ignoring failure notice for payment past PENDING")
	return nil
}

// Release pays out a HELD payment. driverID may be empty, in which case
// the payout goes to the load's assigned driver. The gateway call and the
// guarded transition run under the payment's advisory lock; a gateway
// failure leaves the payment HELD and retryable.
func (s *EscrowService) Release(ctx context.Context, paymentID, driverID string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}

	return s.withLock(ctx, paymentID, func() error {
		payment, err := s.paymentRepo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusHeld {
			return ErrInvalidTransition
		}

		if driverID == "" {
			driverID = payment.DriverID
		}
		if driverID == "" {
			load, err := s.loadRepo.GetByID(ctx, payment.LoadID)
			if err != nil {
				return fmt.Errorf("failed to fetch load: %w", err)
			}
			driverID = load.AssignedDriverID
		}
		if driverID == "" {
			return ErrInvalidDriverID
		}

		txnID, err := s.gateway.Payout(ctx, payment)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"payment_id": paymentID,
				"error":      err,
			}).Error("driver payout failed, payment stays held")
			return fmt.Errorf("%w: %v", ErrPayoutFailed, err)
		}

		if err := s.paymentRepo.MarkReleased(ctx, paymentID, driverID, txnID, s.now()); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return ErrInvalidTransition
			}
			return err
		}

		s.logger.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"driver_id":  driverID,
			"payout":     payment.DriverPayout.StringFixed(2),
		}).Info("payment released to driver")
		s.publish(ctx, EventPaymentReleased, paymentID)
		return nil
	})
}

// Refund returns a HELD payment's gross amount to the customer. The reason
// is mandatory. A gateway failure leaves the payment HELD and retryable.
func (s *EscrowService) Refund(ctx context.Context, paymentID, reason string) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}
	if reason == "" {
		return ErrInvalidRefundReason
	}

	return s.withLock(ctx, paymentID, func() error {
		payment, err := s.paymentRepo.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.Status != domain.PaymentStatusHeld {
			return ErrInvalidTransition
		}

		txnID, err := s.gateway.Refund(ctx, payment)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"payment_id": paymentID,
				"error":      err,
			}).Error("refund failed, payment stays held")
			return fmt.Errorf("%w: %v", ErrRefundFailed, err)
		}

		if err := s.paymentRepo.MarkRefunded(ctx, paymentID, reason, txnID, s.now()); err != nil {
			if errors.Is(err, repository.ErrStateConflict) {
				return ErrInvalidTransition
			}
			return err
		}

		s.logger.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"amount":     payment.Amount.StringFixed(2),
			"reason":     reason,
		}).Info("payment refunded to customer")
		s.publish(ctx, EventPaymentRefunded, paymentID)
		return nil
	})
}

// withLock runs fn under the payment's advisory lock.
func (s *EscrowService) withLock(ctx context.Context, paymentID string, fn func() error) error {
	acquired, err := s.locks.AcquirePaymentLock(ctx, paymentID, paymentLockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire payment lock: %w", err)
	}
	if !acquired {
		return ErrPaymentBusy
	}
	defer func() {
		if err := s.locks.ReleasePaymentLock(ctx, paymentID); err != nil {
			s.logger.WithFields(logrus.Fields{
				"payment_id": paymentID,
				"error":      err,
			}).Warn("failed to release payment lock")
		}
	}()

	return fn()
}

// publish emits a payment event. Notification delivery is best-effort and
// never affects the transition outcome.
func (s *EscrowService) publish(ctx context.Context, event string, paymentID string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyPaymentEvent(ctx, event, paymentID); err != nil {
		s.logger.WithFields(logrus.Fields{
			"payment_id": paymentID,
			"event":      event,
			"error":      err,
		}).Warn("failed to publish payment event")
	}
}
