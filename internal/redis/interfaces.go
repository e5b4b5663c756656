package redis

import (
	"context"
	"time"
)

// LockStoreInterface defines the interface for distributed payment locking.
type LockStoreInterface interface {
	AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error)
	ReleasePaymentLock(ctx context.Context, paymentID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LockStoreInterface = (*LockStore)(nil)
)
