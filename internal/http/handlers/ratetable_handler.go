// README: Rate table administration hooks.
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"freightdesk/internal/types"
)

type TableInvalidator interface {
	Invalidate(ctx context.Context, tableID types.ID) error
}

type RateTableHandler struct {
	tables TableInvalidator
}

func NewRateTableHandler(tables TableInvalidator) *RateTableHandler {
	return &RateTableHandler{tables: tables}
}

// InvalidateCache is called by the admin tooling after a table is edited. Open
// sessions keep the snapshot they already hold.
func (h *RateTableHandler) InvalidateCache(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid rate table id")
		return
	}
	if err := h.tables.Invalidate(c.Request.Context(), types.ID(id)); err != nil {
		writeFreightError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
