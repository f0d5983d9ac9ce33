// README: Delivery lookups and duplicate minute number checks.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/types"
)

type DeliveryService interface {
	Get(ctx context.Context, id types.ID) (*delivery.Record, error)
	MinuteExists(ctx context.Context, minute string, clientID, excludeID types.ID) (bool, error)
}

type DeliveryHandler struct {
	deliveries DeliveryService
}

func NewDeliveryHandler(svc DeliveryService) *DeliveryHandler {
	return &DeliveryHandler{deliveries: svc}
}

func (h *DeliveryHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid delivery id")
		return
	}
	r, err := h.deliveries.Get(c.Request.Context(), types.ID(id))
	if err != nil {
		writeFreightError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toRecordResponse(r))
}

// MinuteCheck answers whether the minute number is already used by another record of the client.
func (h *DeliveryHandler) MinuteCheck(c *gin.Context) {
	minute := strings.TrimSpace(c.Query("minute_number"))
	clientID := c.Query("client_id")
	if minute == "" || !isValidID(clientID) {
		writeError(c, http.StatusBadRequest, "minute_number and client_id are required")
		return
	}
	excludeID := c.Query("exclude_id")
	if excludeID != "" && !isValidID(excludeID) {
		writeError(c, http.StatusBadRequest, "invalid exclude_id")
		return
	}
	exists, err := h.deliveries.MinuteExists(c.Request.Context(), minute, types.ID(clientID), types.ID(excludeID))
	if err != nil {
		writeFreightError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"exists": exists})
}
