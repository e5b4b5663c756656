package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"loadhitch/internal/repository"
	"loadhitch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrLoadNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidLoadID),
		errors.Is(err, service.ErrInvalidCustomerID),
		errors.Is(err, service.ErrInvalidDriverID),
		errors.Is(err, service.ErrInvalidPaymentID),
		errors.Is(err, service.ErrInvalidPaymentAmount),
		errors.Is(err, service.ErrInvalidRefundReason),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrAuthFailure):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrPaymentBusy),
		errors.Is(err, repository.ErrStateConflict):
		return http.StatusConflict

	// Upstream gateway errors
	case errors.Is(err, service.ErrPayoutFailed),
		errors.Is(err, service.ErrRefundFailed):
		return http.StatusBadGateway

	// No pricing configured for the request
	case errors.Is(err, service.ErrNoRateTier):
		return http.StatusUnprocessableEntity

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
