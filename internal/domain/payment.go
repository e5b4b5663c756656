package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus represents the current status of an escrow payment.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"  // Payment initiated, awaiting gateway confirmation
	PaymentStatusHeld     PaymentStatus = "HELD"     // Funds captured and held in escrow
	PaymentStatusReleased PaymentStatus = "RELEASED" // Payout transferred to the driver
	PaymentStatusRefunded PaymentStatus = "REFUNDED" // Refunded to the customer
	PaymentStatusFailed   PaymentStatus = "FAILED"   // Payment failed before funds were held
)

// IsTerminal reports whether the status admits no further transitions.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusReleased || s == PaymentStatusRefunded || s == PaymentStatusFailed
}

// PlatformFeeRate is the share of every payment retained by the platform.
var PlatformFeeRate = decimal.NewFromFloat(0.15)

// Payment is the escrow unit for a load delivery. Funds move
// Pending -> Held -> Released|Refunded, or Pending -> Failed.
type Payment struct {
	ID         string
	LoadID     string
	CustomerID string
	DriverID   string // empty until the payout is released

	Amount       decimal.Decimal // gross amount in ZAR
	PlatformFee  decimal.Decimal // 15% of Amount
	DriverPayout decimal.Decimal // Amount - PlatformFee

	Status PaymentStatus
	Method string // Card, EFT, Cash

	TransactionID             string // gateway transaction id, set on Held
	DriverPayoutTransactionID string // set on Released
	RefundTransactionID       string // set on Refunded

	FailureReason string // set only on Failed
	RefundReason  string // set only on Refunded
	Notes         string

	Last4     string // card metadata from the direct-capture path
	CardBrand string

	CreatedAt  time.Time
	PaidAt     *time.Time
	ReleasedAt *time.Time
	RefundedAt *time.Time
}

// SplitAmount splits a gross amount into platform fee and driver payout.
// The fee is rounded to 2 decimal places; the payout is the exact remainder
// so that fee + payout == amount always holds.
func SplitAmount(amount decimal.Decimal) (fee, payout decimal.Decimal) {
	fee = amount.Mul(PlatformFeeRate).Round(2)
	payout = amount.Sub(fee)
	if !fee.Add(payout).Equal(amount) {
		panic(fmt.Sprintf("payment split broke invariant: %s + %s != %s", fee, payout, amount))
	}
	return fee, payout
}
