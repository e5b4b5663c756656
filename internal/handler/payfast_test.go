package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loadhitch/internal/domain"
	"loadhitch/internal/payfast"
	"loadhitch/internal/repository"
	"loadhitch/internal/service"
)

// fakeEscrow records the transitions the processor drives.
type fakeEscrow struct {
	payments  map[string]*domain.Payment
	heldCalls int
	failCalls int

	getErr error // injected lookup failure
}

func newFakeEscrow() *fakeEscrow {
	return &fakeEscrow{payments: make(map[string]*domain.Payment)}
}

func (f *fakeEscrow) Get(ctx context.Context, id string) (*domain.Payment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (f *fakeEscrow) ConfirmHeld(ctx context.Context, paymentID, transactionID string) error {
	f.heldCalls++
	f.payments[paymentID].Status = domain.PaymentStatusHeld
	f.payments[paymentID].TransactionID = transactionID
	return nil
}

func (f *fakeEscrow) Fail(ctx context.Context, paymentID, reason string) error {
	f.failCalls++
	f.payments[paymentID].Status = domain.PaymentStatusFailed
	return nil
}

func newNotifyRouter(escrow *fakeEscrow, settings payfast.Settings) *gin.Engine {
	gin.SetMode(gin.TestMode)

	validator := service.NewNotificationValidator(settings, nil, nil)
	processor := service.NewNotificationProcessor(escrow, validator, nil)
	h := NewPayFastHandler(processor, nil)

	router := gin.New()
	router.POST("/v1/payfast/notify", h.Notify)
	router.GET("/v1/payfast/return", h.Return)
	router.GET("/v1/payfast/cancel", h.Cancel)
	return router
}

func signedForm(settings payfast.Settings, paymentID, status, amount string) url.Values {
	n := &payfast.Notification{
		MPaymentID:    paymentID,
		PFPaymentID:   "PF-123",
		PaymentStatus: status,
		AmountGross:   amount,
		MerchantID:    settings.MerchantID,
	}
	n.Signature = payfast.Sign(n.SignatureFields(), settings.Passphrase)

	form := url.Values{}
	for _, f := range n.SignatureFields() {
		if f.Value != "" {
			form.Set(f.Key, f.Value)
		}
	}
	form.Set("signature", n.Signature)
	return form
}

func postForm(router *gin.Engine, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/v1/payfast/notify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestNotify_AcceptsAuthenticWebhook(t *testing.T) {
	settings := payfast.Settings{MerchantID: "10000100", Passphrase: "secret"}
	escrow := newFakeEscrow()
	escrow.payments["pay-1"] = &domain.Payment{
		ID:     "pay-1",
		Amount: decimal.RequireFromString("670.00"),
		Status: domain.PaymentStatusPending,
	}
	router := newNotifyRouter(escrow, settings)

	w := postForm(router, signedForm(settings, "pay-1", payfast.StatusComplete, "670.00"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", w.Code, w.Body.String())
	}
	if escrow.heldCalls != 1 {
		t.Errorf("expected one hold transition, got %d", escrow.heldCalls)
	}
}

func TestNotify_RejectionsAreIndistinguishable(t *testing.T) {
	settings := payfast.Settings{MerchantID: "10000100", Passphrase: "secret"}
	escrow := newFakeEscrow()
	escrow.payments["pay-1"] = &domain.Payment{
		ID:     "pay-1",
		Amount: decimal.RequireFromString("670.00"),
		Status: domain.PaymentStatusPending,
	}
	router := newNotifyRouter(escrow, settings)

	// Tampered signature.
	tamperedSig := signedForm(settings, "pay-1", payfast.StatusComplete, "670.00")
	tamperedSig.Set("signature", "0123456789abcdef0123456789abcdef")

	// Valid signature over the wrong amount.
	wrongAmount := signedForm(settings, "pay-1", payfast.StatusComplete, "1.00")

	// Unknown payment.
	unknown := signedForm(settings, "missing", payfast.StatusComplete, "670.00")

	var bodies []string
	for _, form := range []url.Values{tamperedSig, wrongAmount, unknown} {
		w := postForm(router, form)
		if w.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", w.Code)
		}
		bodies = append(bodies, w.Body.String())
	}

	// Same generic body for every failure mode.
	for _, body := range bodies {
		if body != bodies[0] {
			t.Errorf("rejection bodies must not differ: %q vs %q", bodies[0], body)
		}
		if strings.Contains(body, "signature") || strings.Contains(body, "amount") {
			t.Errorf("rejection body must not reveal the failed check: %q", body)
		}
	}

	if escrow.heldCalls != 0 {
		t.Errorf("rejected webhooks must not transition, got %d calls", escrow.heldCalls)
	}
}

func TestNotify_TransientFailureAnswersServerError(t *testing.T) {
	settings := payfast.Settings{MerchantID: "10000100", Passphrase: "secret"}
	escrow := newFakeEscrow()
	escrow.getErr = errors.New("db connection refused")
	router := newNotifyRouter(escrow, settings)

	// A 400 would stop the gateway's retries and lose the notification;
	// an infrastructure failure must answer 500 so delivery is retried.
	w := postForm(router, signedForm(settings, "pay-1", payfast.StatusComplete, "670.00"))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d (%s)", w.Code, w.Body.String())
	}
	if escrow.heldCalls != 0 {
		t.Errorf("failed lookup must not transition, got %d calls", escrow.heldCalls)
	}
}

func TestNotify_FailedStatusTransitions(t *testing.T) {
	settings := payfast.Settings{MerchantID: "10000100", Passphrase: "secret"}
	escrow := newFakeEscrow()
	escrow.payments["pay-1"] = &domain.Payment{
		ID:     "pay-1",
		Amount: decimal.RequireFromString("670.00"),
		Status: domain.PaymentStatusPending,
	}
	router := newNotifyRouter(escrow, settings)

	w := postForm(router, signedForm(settings, "pay-1", payfast.StatusFailed, "670.00"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if escrow.failCalls != 1 {
		t.Errorf("expected one fail transition, got %d", escrow.failCalls)
	}
}

func TestReturnAndCancelPages(t *testing.T) {
	settings := payfast.Settings{MerchantID: "10000100"}
	router := newNotifyRouter(newFakeEscrow(), settings)

	for _, path := range []string{"/v1/payfast/return", "/v1/payfast/cancel"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d", path, w.Code)
		}
	}
}
