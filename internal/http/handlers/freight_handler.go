// README: One-off freight quotes.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/ratetable"
	"freightdesk/internal/types"
)

type Quoter interface {
	Calculate(ctx context.Context, clientID types.ID, req pricing.RatingRequest) (pricing.Quote, error)
}

type FreightHandler struct {
	quoter Quoter
}

func NewFreightHandler(quoter Quoter) *FreightHandler {
	return &FreightHandler{quoter: quoter}
}

type quoteReq struct {
	ClientID          string    `json:"client_id"`
	ServiceCategory   string    `json:"service_category"`
	CargoCategory     string    `json:"cargo_category"`
	WeightKg          float64   `json:"weight_kg"`
	DeclaredValue     float64   `json:"declared_value"`
	CityID            string    `json:"city_id"`
	CityDistanceKm    *float64  `json:"city_distance_km"`
	AdditionalCharges []float64 `json:"additional_charges"`
	HasCollection     bool      `json:"has_collection"`
	HasDelivery       *bool     `json:"has_delivery"`
}

type quoteResp struct {
	Amount   string `json:"amount"`
	Fallback bool   `json:"fallback"`
	Warning  string `json:"warning,omitempty"`
}

func (h *FreightHandler) Quote(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	hasDelivery := true
	if req.HasDelivery != nil {
		hasDelivery = *req.HasDelivery
	}

	quote, err := h.quoter.Calculate(c.Request.Context(), types.ID(req.ClientID), pricing.RatingRequest{
		ServiceCategory:          ratetable.ServiceCategory(req.ServiceCategory),
		CargoCategory:            pricing.CargoCategory(req.CargoCategory),
		WeightKg:                 req.WeightKg,
		DeclaredValue:            req.DeclaredValue,
		CityID:                   types.ID(req.CityID),
		CityDistanceKm:           req.CityDistanceKm,
		AdditionalServiceCharges: req.AdditionalCharges,
		HasCollection:            req.HasCollection,
		HasDelivery:              hasDelivery,
	})
	if err != nil {
		writeFreightError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, quoteResp{
		Amount:   money(quote.Amount),
		Fallback: quote.Fallback,
		Warning:  warningText(quote.Warning),
	})
}
