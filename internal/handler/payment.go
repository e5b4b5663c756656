package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"loadhitch/internal/domain"
	"loadhitch/internal/service"
)

// PaymentHandler handles HTTP requests for escrow payments.
type PaymentHandler struct {
	escrowService *service.EscrowService
	processURL    string
}

// NewPaymentHandler creates a new PaymentHandler. processURL is the gateway
// endpoint checkout forms post to.
func NewPaymentHandler(escrowService *service.EscrowService, processURL string) *PaymentHandler {
	return &PaymentHandler{escrowService: escrowService, processURL: processURL}
}

// InitiatePaymentRequest is the HTTP request body for initiating a payment.
type InitiatePaymentRequest struct {
	LoadID     string          `json:"load_id"`
	CustomerID string          `json:"customer_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method"`
	Notes      string          `json:"notes"`
}

// ReleaseRequest is the HTTP request body for releasing a payment. The
// body is optional; without it the payout goes to the load's assigned
// driver.
type ReleaseRequest struct {
	DriverID string `json:"driver_id"`
}

// RefundRequest is the HTTP request body for refunding a payment.
type RefundRequest struct {
	Reason string `json:"reason"`
}

// PaymentResponse is the HTTP response for payment operations.
type PaymentResponse struct {
	ID         string `json:"id"`
	LoadID     string `json:"load_id"`
	CustomerID string `json:"customer_id"`
	DriverID   string `json:"driver_id,omitempty"`

	Amount       string `json:"amount"`
	PlatformFee  string `json:"platform_fee"`
	DriverPayout string `json:"driver_payout"`

	Status string `json:"status"`
	Method string `json:"method"`

	TransactionID             string `json:"transaction_id,omitempty"`
	DriverPayoutTransactionID string `json:"driver_payout_transaction_id,omitempty"`
	RefundTransactionID       string `json:"refund_transaction_id,omitempty"`

	FailureReason string `json:"failure_reason,omitempty"`
	RefundReason  string `json:"refund_reason,omitempty"`
	Notes         string `json:"notes,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
	RefundedAt *time.Time `json:"refunded_at,omitempty"`
}

// EarningsResponse is the HTTP response for driver earnings.
type EarningsResponse struct {
	DriverID      string            `json:"driver_id"`
	TotalEarnings string            `json:"total_earnings"`
	Payments      []PaymentResponse `json:"payments"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:         p.ID,
		LoadID:     p.LoadID,
		CustomerID: p.CustomerID,
		DriverID:   p.DriverID,

		Amount:       p.Amount.StringFixed(2),
		PlatformFee:  p.PlatformFee.StringFixed(2),
		DriverPayout: p.DriverPayout.StringFixed(2),

		Status: string(p.Status),
		Method: p.Method,

		TransactionID:             p.TransactionID,
		DriverPayoutTransactionID: p.DriverPayoutTransactionID,
		RefundTransactionID:       p.RefundTransactionID,

		FailureReason: p.FailureReason,
		RefundReason:  p.RefundReason,
		Notes:         p.Notes,

		CreatedAt:  p.CreatedAt,
		PaidAt:     p.PaidAt,
		ReleasedAt: p.ReleasedAt,
		RefundedAt: p.RefundedAt,
	}
}

// InitiatePayment handles POST /v1/payments
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	payment, err := h.escrowService.Initiate(c.Request.Context(), service.InitiatePaymentRequest{
		LoadID:     req.LoadID,
		CustomerID: req.CustomerID,
		Amount:     req.Amount,
		Method:     req.Method,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toPaymentResponse(payment))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.escrowService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// Checkout handles GET /v1/payments/:id/checkout
// It renders the signed auto-submitting gateway form.
func (h *PaymentHandler) Checkout(c *gin.Context) {
	req, err := h.escrowService.Checkout(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(req.FormHTML(h.processURL)))
}

// ReleasePayment handles POST /v1/payments/:id/release
func (h *PaymentHandler) ReleasePayment(c *gin.Context) {
	paymentID := c.Param("id")

	// Body is optional.
	var req ReleaseRequest
	_ = c.ShouldBindJSON(&req)

	if err := h.escrowService.Release(c.Request.Context(), paymentID, req.DriverID); err != nil {
		respondError(c, err)
		return
	}

	payment, err := h.escrowService.Get(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// RefundPayment handles POST /v1/payments/:id/refund
func (h *PaymentHandler) RefundPayment(c *gin.Context) {
	paymentID := c.Param("id")

	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if err := h.escrowService.Refund(c.Request.Context(), paymentID, req.Reason); err != nil {
		respondError(c, err)
		return
	}

	payment, err := h.escrowService.Get(c.Request.Context(), paymentID)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// GetLoadPayment handles GET /v1/loads/:id/payment
func (h *PaymentHandler) GetLoadPayment(c *gin.Context) {
	payment, err := h.escrowService.GetByLoad(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toPaymentResponse(payment))
}

// ListCustomerPayments handles GET /v1/customers/:id/payments
func (h *PaymentHandler) ListCustomerPayments(c *gin.Context) {
	payments, err := h.escrowService.ListCustomerPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, out)
}

// GetDriverEarnings handles GET /v1/drivers/:id/earnings
func (h *PaymentHandler) GetDriverEarnings(c *gin.Context) {
	driverID := c.Param("id")

	earnings, err := h.escrowService.ListDriverEarnings(c.Request.Context(), driverID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]PaymentResponse, 0, len(earnings.Payments))
	for _, p := range earnings.Payments {
		out = append(out, toPaymentResponse(p))
	}

	respondJSON(c, http.StatusOK, EarningsResponse{
		DriverID:      driverID,
		TotalEarnings: earnings.Total.StringFixed(2),
		Payments:      out,
	})
}
