// README: Freight reconciliation sessions backing the delivery form.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightdesk/internal/http/middleware"
	"freightdesk/internal/modules/delivery"
	"freightdesk/internal/modules/reconciliation"
	"freightdesk/internal/types"
)

type SessionHandler struct {
	sessions *reconciliation.Manager
	logger   *zap.Logger
}

func NewSessionHandler(sessions *reconciliation.Manager, logger *zap.Logger) *SessionHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionHandler{sessions: sessions, logger: logger}
}

type openSessionReq struct {
	DeliveryID string           `json:"delivery_id"`
	Draft      *delivery.Record `json:"draft"`
}

type freightValueReq struct {
	Value string `json:"value"`
}

type submitReq struct {
	ConfirmDuplicate bool `json:"confirm_duplicate"`
}

type sessionResp struct {
	ID           string         `json:"id"`
	State        string         `json:"state"`
	Displayed    string         `json:"displayed"`
	LastComputed *string        `json:"last_computed,omitempty"`
	Fallback     bool           `json:"fallback"`
	Warning      string         `json:"warning,omitempty"`
	Pending      bool           `json:"pending"`
	Record       recordResponse `json:"record"`
}

func toSessionResp(v reconciliation.View) sessionResp {
	resp := sessionResp{
		ID:        v.ID.String(),
		State:     string(v.State),
		Displayed: money(v.Displayed),
		Fallback:  v.Fallback,
		Warning:   v.Warning,
		Pending:   v.Pending,
		Record:    toRecordResponse(&v.Record),
	}
	if v.LastComputed != nil {
		lc := money(*v.LastComputed)
		resp.LastComputed = &lc
	}
	return resp
}

func (h *SessionHandler) Open(c *gin.Context) {
	var req openSessionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := reconciliation.OpenCommand{DeliveryID: types.ID(req.DeliveryID)}
	switch {
	case req.DeliveryID != "":
		if !isValidID(req.DeliveryID) {
			writeError(c, http.StatusBadRequest, "invalid delivery id")
			return
		}
	case req.Draft != nil:
		cmd.Draft = *req.Draft
		cmd.Draft.ID = ""
		if !cmd.Draft.HasCollection && !cmd.Draft.HasDelivery {
			cmd.Draft.HasDelivery = true
		}
	default:
		writeError(c, http.StatusBadRequest, "delivery_id or draft is required")
		return
	}

	s, err := h.sessions.Open(c.Request.Context(), cmd)
	if err != nil {
		writeFreightError(c, err)
		return
	}
	h.logger.Info("freight session opened",
		zap.String("session_id", s.ID().String()),
		zap.String("delivery_id", req.DeliveryID),
		zap.String("caller_uid", middleware.CallerUID(c)),
	)
	writeJSON(c, http.StatusCreated, toSessionResp(s.View()))
}

func (h *SessionHandler) Get(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	writeJSON(c, http.StatusOK, toSessionResp(s.View()))
}

func (h *SessionHandler) Edit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var edit reconciliation.Edit
	if err := c.ShouldBindJSON(&edit); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := s.ApplyEdit(c.Request.Context(), edit)
	if err != nil {
		writeFreightError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSessionResp(v))
}

// SetFreight records a manually typed freight. Route guards decide who may call it.
func (h *SessionHandler) SetFreight(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req freightValueReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	v, err := s.EditFreight(req.Value)
	if err != nil {
		writeFreightError(c, err)
		return
	}
	h.logger.Info("freight overridden",
		zap.String("session_id", s.ID().String()),
		zap.String("value", v.Displayed.StringFixed(2)),
		zap.String("caller_uid", middleware.CallerUID(c)),
		zap.String("caller_role", middleware.CallerRole(c)),
	)
	writeJSON(c, http.StatusOK, toSessionResp(v))
}

func (h *SessionHandler) Recalculate(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	v, err := s.Recalculate(c.Request.Context())
	if err != nil {
		writeFreightError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, toSessionResp(v))
}

func (h *SessionHandler) Submit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req submitReq
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "invalid json")
			return
		}
	}
	out, err := s.Submit(c.Request.Context(), req.ConfirmDuplicate)
	if err != nil {
		writeFreightError(c, err)
		return
	}
	if out.NeedsConfirmation {
		writeJSON(c, http.StatusConflict, gin.H{
			"error":              "minute number already used for this client",
			"needs_confirmation": true,
		})
		return
	}
	if out.Record == nil {
		c.Status(http.StatusNoContent)
		return
	}
	writeJSON(c, http.StatusOK, toRecordResponse(out.Record))
}

func (h *SessionHandler) Close(c *gin.Context) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return
	}
	if err := h.sessions.Close(types.ID(id)); err != nil && !errors.Is(err, reconciliation.ErrSessionNotFound) {
		writeFreightError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) session(c *gin.Context) (*reconciliation.Session, bool) {
	id := c.Param("id")
	if !isValidID(id) {
		writeError(c, http.StatusBadRequest, "invalid session id")
		return nil, false
	}
	s, err := h.sessions.Get(types.ID(id))
	if err != nil {
		writeFreightError(c, err)
		return nil, false
	}
	return s, true
}
