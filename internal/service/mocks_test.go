package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
	"loadhitch/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is an in-memory PaymentRepository that enforces the
// same status guards as the SQL implementation.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount       int32
	MarkHeldCallCount     int32
	MarkReleasedCallCount int32
	MarkRefundedCallCount int32

	// Error injection
	CreateError error
	GetError    error
}

func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{payments: make(map[string]*domain.Payment)}
}

// AddPayment seeds a payment into the mock repository.
func (m *MockPaymentRepository) AddPayment(p *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[p.ID] = p
}

// GetPayment returns the stored payment for direct assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *p
	return &copy, nil
}

func (m *MockPaymentRepository) GetByLoadID(ctx context.Context, loadID string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *domain.Payment
	for _, p := range m.payments {
		if p.LoadID != loadID {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, repository.ErrNotFound
	}
	copy := *latest
	return &copy, nil
}

func (m *MockPaymentRepository) ListByCustomer(ctx context.Context, customerID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if p.CustomerID == customerID {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) ListReleasedByDriver(ctx context.Context, driverID string) ([]*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.Payment
	for _, p := range m.payments {
		if p.DriverID == driverID && p.Status == domain.PaymentStatusReleased {
			copy := *p
			result = append(result, &copy)
		}
	}
	return result, nil
}

func (m *MockPaymentRepository) MarkHeld(ctx context.Context, id, transactionID string, paidAt time.Time) error {
	atomic.AddInt32(&m.MarkHeldCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return repository.ErrStateConflict
	}
	p.Status = domain.PaymentStatusHeld
	p.TransactionID = transactionID
	p.PaidAt = &paidAt
	return nil
}

func (m *MockPaymentRepository) MarkFailed(ctx context.Context, id, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return repository.ErrStateConflict
	}
	p.Status = domain.PaymentStatusFailed
	p.FailureReason = reason
	return nil
}

func (m *MockPaymentRepository) MarkReleased(ctx context.Context, id, driverID, payoutTransactionID string, releasedAt time.Time) error {
	atomic.AddInt32(&m.MarkReleasedCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != domain.PaymentStatusHeld {
		return repository.ErrStateConflict
	}
	p.Status = domain.PaymentStatusReleased
	p.DriverID = driverID
	p.DriverPayoutTransactionID = payoutTransactionID
	p.ReleasedAt = &releasedAt
	return nil
}

func (m *MockPaymentRepository) MarkRefunded(ctx context.Context, id, reason, refundTransactionID string, refundedAt time.Time) error {
	atomic.AddInt32(&m.MarkRefundedCallCount, 1)
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok || p.Status != domain.PaymentStatusHeld {
		return repository.ErrStateConflict
	}
	p.Status = domain.PaymentStatusRefunded
	p.RefundReason = reason
	p.RefundTransactionID = refundTransactionID
	p.RefundedAt = &refundedAt
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOAD / CUSTOMER REPOSITORIES
// ──────────────────────────────────────────────

type MockLoadRepository struct {
	mu    sync.RWMutex
	loads map[string]*domain.Load
}

func NewMockLoadRepository() *MockLoadRepository {
	return &MockLoadRepository{loads: make(map[string]*domain.Load)}
}

func (m *MockLoadRepository) AddLoad(l *domain.Load) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads[l.ID] = l
}

func (m *MockLoadRepository) GetByID(ctx context.Context, id string) (*domain.Load, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	l, ok := m.loads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *l
	return &copy, nil
}

type MockCustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]*domain.Customer
}

func NewMockCustomerRepository() *MockCustomerRepository {
	return &MockCustomerRepository{customers: make(map[string]*domain.Customer)}
}

func (m *MockCustomerRepository) AddCustomer(c *domain.Customer) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.customers[c.ID] = c
}

func (m *MockCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *c
	return &copy, nil
}

// ──────────────────────────────────────────────
// MOCK RATE TIER REPOSITORY
// ──────────────────────────────────────────────

type MockRateTierRepository struct {
	mu    sync.RWMutex
	tiers []*domain.RateTier

	ListCallCount int32
	ListError     error
}

func NewMockRateTierRepository() *MockRateTierRepository {
	return &MockRateTierRepository{}
}

func (m *MockRateTierRepository) AddTier(t *domain.RateTier) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers = append(m.tiers, t)
}

func (m *MockRateTierRepository) ListByCategory(ctx context.Context, category string) ([]*domain.RateTier, error) {
	atomic.AddInt32(&m.ListCallCount, 1)
	if m.ListError != nil {
		return nil, m.ListError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var result []*domain.RateTier
	for _, t := range m.tiers {
		if t.Category == category {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MockRateTierRepository) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tiers), nil
}

func (m *MockRateTierRepository) Create(ctx context.Context, tier *domain.RateTier) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers = append(m.tiers, tier)
	return nil
}

// ──────────────────────────────────────────────
// MOCK LOCK STORE
// ──────────────────────────────────────────────

type MockLockStore struct {
	mu    sync.Mutex
	locks map[string]bool

	AcquireError error
}

func NewMockLockStore() *MockLockStore {
	return &MockLockStore{locks: make(map[string]bool)}
}

// Hold marks a payment's lock as taken by another writer.
func (m *MockLockStore) Hold(paymentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.locks[paymentID] = true
}

func (m *MockLockStore) AcquirePaymentLock(ctx context.Context, paymentID string, ttl time.Duration) (bool, error) {
	if m.AcquireError != nil {
		return false, m.AcquireError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locks[paymentID] {
		return false, nil
	}
	m.locks[paymentID] = true
	return true, nil
}

func (m *MockLockStore) ReleasePaymentLock(ctx context.Context, paymentID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.locks, paymentID)
	return nil
}

// ──────────────────────────────────────────────
// MOCK GATEWAY / ROUTING / PUBLISHER
// ──────────────────────────────────────────────

type MockGateway struct {
	PayoutCallCount int32
	RefundCallCount int32

	PayoutError error
	RefundError error
}

func NewMockGateway() *MockGateway {
	return &MockGateway{}
}

func (m *MockGateway) Payout(ctx context.Context, payment *domain.Payment) (string, error) {
	atomic.AddInt32(&m.PayoutCallCount, 1)
	if m.PayoutError != nil {
		return "", m.PayoutError
	}
	return "PAYOUT-TEST", nil
}

func (m *MockGateway) Refund(ctx context.Context, payment *domain.Payment) (string, error) {
	atomic.AddInt32(&m.RefundCallCount, 1)
	if m.RefundError != nil {
		return "", m.RefundError
	}
	return "REFUND-TEST", nil
}

type MockRouteSource struct {
	DistanceKm float64
	Err        error

	CallCount int32
}

func (m *MockRouteSource) RoadDistanceKm(ctx context.Context, pickup, delivery domain.Coordinate) (float64, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.Err != nil {
		return 0, m.Err
	}
	return m.DistanceKm, nil
}

type MockPublisher struct {
	mu     sync.Mutex
	Topics []string
	Bodies [][]byte

	PublishError error
}

func (m *MockPublisher) Publish(topic string, body []byte) error {
	if m.PublishError != nil {
		return m.PublishError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Topics = append(m.Topics, topic)
	m.Bodies = append(m.Bodies, body)
	return nil
}

func (m *MockPublisher) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Topics)
}

type MockRemoteValidator struct {
	Valid     bool
	Err       error
	CallCount int32
}

func (m *MockRemoteValidator) Validate(ctx context.Context, n *payfast.Notification) (bool, error) {
	atomic.AddInt32(&m.CallCount, 1)
	if m.Err != nil {
		return false, m.Err
	}
	return m.Valid, nil
}
