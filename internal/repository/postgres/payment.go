package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"loadhitch/internal/domain"
	"loadhitch/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `
	id, load_id, customer_id, driver_id, amount, platform_fee, driver_payout,
	status, method, transaction_id, payout_transaction_id, refund_transaction_id,
	failure_reason, refund_reason, notes, last4, card_brand,
	created_at, paid_at, released_at, refunded_at
`

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, load_id, customer_id, driver_id, amount, platform_fee, driver_payout,
			status, method, notes, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	var driverID sql.NullString
	if payment.DriverID != "" {
		driverID = sql.NullString{String: payment.DriverID, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.LoadID,
		payment.CustomerID,
		driverID,
		payment.Amount,
		payment.PlatformFee,
		payment.DriverPayout,
		payment.Status,
		payment.Method,
		payment.Notes,
		payment.CreatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// GetByLoadID retrieves the payment for a load.
func (r *PaymentRepository) GetByLoadID(ctx context.Context, loadID string) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE load_id = $1 ORDER BY created_at DESC LIMIT 1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, loadID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return payment, nil
}

// ListByCustomer retrieves a customer's payments, newest first.
func (r *PaymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, customerID)
}

// ListReleasedByDriver retrieves a driver's released payouts, newest first.
func (r *PaymentRepository) ListReleasedByDriver(ctx context.Context, driverID string) ([]*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE driver_id = $1 AND status = $2 ORDER BY released_at DESC`
	return r.list(ctx, query, driverID, domain.PaymentStatusReleased)
}

// MarkHeld transitions PENDING -> HELD. The status guard in the WHERE clause
// makes the transition atomic with its side data.
func (r *PaymentRepository) MarkHeld(ctx context.Context, id, transactionID string, paidAt time.Time) error {
	query := `
		UPDATE payments
		SET status = $1, transaction_id = $2, paid_at = $3
		WHERE id = $4 AND status = $5
	`

	return r.guardedExec(ctx, query,
		domain.PaymentStatusHeld, transactionID, paidAt, id, domain.PaymentStatusPending)
}

// MarkFailed transitions PENDING -> FAILED.
func (r *PaymentRepository) MarkFailed(ctx context.Context, id, reason string) error {
	query := `
		UPDATE payments
		SET status = $1, failure_reason = $2
		WHERE id = $3 AND status = $4
	`

	return r.guardedExec(ctx, query,
		domain.PaymentStatusFailed, reason, id, domain.PaymentStatusPending)
}

// MarkReleased transitions HELD -> RELEASED.
func (r *PaymentRepository) MarkReleased(ctx context.Context, id, driverID, payoutTransactionID string, releasedAt time.Time) error {
	query := `
		UPDATE payments
		SET status = $1, driver_id = $2, payout_transaction_id = $3, released_at = $4
		WHERE id = $5 AND status = $6
	`

	return r.guardedExec(ctx, query,
		domain.PaymentStatusReleased, driverID, payoutTransactionID, releasedAt, id, domain.PaymentStatusHeld)
}

// MarkRefunded transitions HELD -> REFUNDED.
func (r *PaymentRepository) MarkRefunded(ctx context.Context, id, reason, refundTransactionID string, refundedAt time.Time) error {
	query := `
		UPDATE payments
		SET status = $1, refund_reason = $2, refund_transaction_id = $3, refunded_at = $4
		WHERE id = $5 AND status = $6
	`

	return r.guardedExec(ctx, query,
		domain.PaymentStatusRefunded, reason, refundTransactionID, refundedAt, id, domain.PaymentStatusHeld)
}

// guardedExec runs a status-guarded update and translates "no rows matched"
// into ErrStateConflict.
func (r *PaymentRepository) guardedExec(ctx context.Context, query string, args ...any) error {
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrStateConflict
	}

	return nil
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []*domain.Payment
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	var (
		payment       domain.Payment
		driverID      sql.NullString
		transactionID sql.NullString
		payoutTxnID   sql.NullString
		refundTxnID   sql.NullString
		failureReason sql.NullString
		refundReason  sql.NullString
		notes         sql.NullString
		last4         sql.NullString
		cardBrand     sql.NullString
		paidAt        sql.NullTime
		releasedAt    sql.NullTime
		refundedAt    sql.NullTime
	)

	err := row.Scan(
		&payment.ID,
		&payment.LoadID,
		&payment.CustomerID,
		&driverID,
		&payment.Amount,
		&payment.PlatformFee,
		&payment.DriverPayout,
		&payment.Status,
		&payment.Method,
		&transactionID,
		&payoutTxnID,
		&refundTxnID,
		&failureReason,
		&refundReason,
		&notes,
		&last4,
		&cardBrand,
		&payment.CreatedAt,
		&paidAt,
		&releasedAt,
		&refundedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.DriverID = driverID.String
	payment.TransactionID = transactionID.String
	payment.DriverPayoutTransactionID = payoutTxnID.String
	payment.RefundTransactionID = refundTxnID.String
	payment.FailureReason = failureReason.String
	payment.RefundReason = refundReason.String
	payment.Notes = notes.String
	payment.Last4 = last4.String
	payment.CardBrand = cardBrand.String
	if paidAt.Valid {
		payment.PaidAt = &paidAt.Time
	}
	if releasedAt.Valid {
		payment.ReleasedAt = &releasedAt.Time
	}
	if refundedAt.Valid {
		payment.RefundedAt = &refundedAt.Time
	}

	return &payment, nil
}
