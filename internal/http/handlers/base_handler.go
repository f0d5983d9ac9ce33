// README: Base handler utilities (JSON helpers, error mapping).
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/pricing"
	"freightdesk/internal/modules/reconciliation"
)

type errorResponse struct {
	Error string `json:"error"`
}

// isValidID accepts ULIDs, UUIDs and the slug ids used for clients and cities.
func isValidID(v string) bool {
	if v == "" || len(v) > 64 {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}

func writeJSON(c *gin.Context, status int, v any) {
	c.JSON(status, v)
}

func writeError(c *gin.Context, status int, msg string) {
	writeJSON(c, status, errorResponse{Error: msg})
}

func writeFreightError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidRatingInput),
		errors.Is(err, reconciliation.ErrInvalidFreightValue),
		errors.Is(err, delivery.ErrBadRequest):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, delivery.ErrNotFound), errors.Is(err, reconciliation.ErrSessionNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, reconciliation.ErrSessionClosed):
		writeError(c, http.StatusConflict, err.Error())
	default:
		_ = c.Error(err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func warningText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

type recordResponse struct {
	ID                string    `json:"id"`
	MinuteNumber      string    `json:"minute_number"`
	ClientID          string    `json:"client_id"`
	ServiceCategory   string    `json:"service_category"`
	CargoCategory     string    `json:"cargo_category"`
	WeightKg          float64   `json:"weight_kg"`
	DeclaredValue     float64   `json:"declared_value"`
	CityID            string    `json:"city_id,omitempty"`
	AdditionalCharges []float64 `json:"additional_charges"`
	HasCollection     bool      `json:"has_collection"`
	HasDelivery       bool      `json:"has_delivery"`
	ReceiverName      string    `json:"receiver_name"`
	Notes             string    `json:"notes"`
	TotalFreight      string    `json:"total_freight"`
}

func toRecordResponse(r *delivery.Record) recordResponse {
	charges := r.AdditionalCharges
	if charges == nil {
		charges = []float64{}
	}
	return recordResponse{
		ID:                r.ID.String(),
		MinuteNumber:      r.MinuteNumber,
		ClientID:          r.ClientID.String(),
		ServiceCategory:   string(r.ServiceCategory),
		CargoCategory:     string(r.CargoCategory),
		WeightKg:          r.WeightKg,
		DeclaredValue:     r.DeclaredValue,
		CityID:            r.CityID.String(),
		AdditionalCharges: charges,
		HasCollection:     r.HasCollection,
		HasDelivery:       r.HasDelivery,
		ReceiverName:      r.ReceiverName,
		Notes:             r.Notes,
		TotalFreight:      money(r.TotalFreight),
	}
}
