package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loadhitch/internal/service"
)

// PricingHandler handles HTTP requests for price quotes.
type PricingHandler struct {
	pricingService *service.PricingService
}

// NewPricingHandler creates a new PricingHandler.
func NewPricingHandler(pricingService *service.PricingService) *PricingHandler {
	return &PricingHandler{pricingService: pricingService}
}

// EstimateRequest is the HTTP request body for a price quote.
type EstimateRequest struct {
	PickupLat   float64 `json:"pickup_lat"`
	PickupLng   float64 `json:"pickup_lng"`
	DeliveryLat float64 `json:"delivery_lat"`
	DeliveryLng float64 `json:"delivery_lng"`
	Category    string  `json:"category"`
	WeightKg    int     `json:"weight_kg"`
}

// EstimateResponse is the HTTP response for a price quote.
type EstimateResponse struct {
	BaseFare       string `json:"base_fare"`
	DistanceCost   string `json:"distance_cost"`
	WeightCost     string `json:"weight_cost"`
	SurgeCharge    string `json:"surge_charge"`
	SubTotal       string `json:"sub_total"`
	PlatformFee    string `json:"platform_fee"`
	TotalPrice     string `json:"total_price"`
	DriverEarnings string `json:"driver_earnings"`

	DistanceKm      float64 `json:"distance_km"`
	WeightKg        int     `json:"weight_kg"`
	Category        string  `json:"category"`
	SurgeMultiplier string  `json:"surge_multiplier"`

	Breakdown string `json:"breakdown"`
}

// Estimate handles POST /v1/pricing/estimate
func (h *PricingHandler) Estimate(c *gin.Context) {
	var req EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	estimate, err := h.pricingService.Quote(c.Request.Context(), service.QuoteRequest{
		PickupLat:   req.PickupLat,
		PickupLng:   req.PickupLng,
		DeliveryLat: req.DeliveryLat,
		DeliveryLng: req.DeliveryLng,
		Category:    req.Category,
		WeightKg:    req.WeightKg,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, EstimateResponse{
		BaseFare:       estimate.BaseFare.StringFixed(2),
		DistanceCost:   estimate.DistanceCost.StringFixed(2),
		WeightCost:     estimate.WeightCost.StringFixed(2),
		SurgeCharge:    estimate.SurgeCharge.StringFixed(2),
		SubTotal:       estimate.SubTotal.StringFixed(2),
		PlatformFee:    estimate.PlatformFee.StringFixed(2),
		TotalPrice:     estimate.TotalPrice.StringFixed(2),
		DriverEarnings: estimate.DriverEarnings.StringFixed(2),

		DistanceKm:      estimate.DistanceKm,
		WeightKg:        estimate.WeightKg,
		Category:        estimate.Category,
		SurgeMultiplier: estimate.SurgeMultiplier.StringFixed(2),

		Breakdown: estimate.Breakdown(),
	})
}
