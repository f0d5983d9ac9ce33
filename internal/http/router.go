// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"freightdesk/internal/http/handlers"
	"freightdesk/internal/http/middleware"
	"freightdesk/internal/infra"
	"freightdesk/internal/modules/reconciliation"
)

type RouterDeps struct {
	Quoter     handlers.Quoter
	Deliveries handlers.DeliveryService
	Sessions   *reconciliation.Manager
	Tables     handlers.TableInvalidator
	// Verifier guards /api. Nil serves the API without authentication.
	Verifier      infra.TokenVerifier
	OverrideRoles []string
	Logger        *zap.Logger
}

func NewRouter(deps RouterDeps) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logging(logger), middleware.Recovery(logger))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	api := r.Group("/api")
	if deps.Verifier != nil {
		api.Use(middleware.Auth(deps.Verifier))
	}

	freightHandler := handlers.NewFreightHandler(deps.Quoter)
	api.POST("/freight/quote", freightHandler.Quote)

	deliveryHandler := handlers.NewDeliveryHandler(deps.Deliveries)
	api.GET("/deliveries/minute-check", deliveryHandler.MinuteCheck)
	api.GET("/deliveries/:id", deliveryHandler.Get)

	sessionHandler := handlers.NewSessionHandler(deps.Sessions, logger)
	sessions := api.Group("/freight/sessions")
	sessions.POST("", sessionHandler.Open)
	sessions.GET("/:id", sessionHandler.Get)
	sessions.PATCH("/:id", sessionHandler.Edit)
	sessions.PUT("/:id/freight", middleware.RequireRole(deps.OverrideRoles), sessionHandler.SetFreight)
	sessions.POST("/:id/recalculate", sessionHandler.Recalculate)
	sessions.POST("/:id/submit", sessionHandler.Submit)
	sessions.DELETE("/:id", sessionHandler.Close)

	if deps.Tables != nil {
		tableHandler := handlers.NewRateTableHandler(deps.Tables)
		api.DELETE("/rate-tables/:id/cache", middleware.RequireRole(deps.OverrideRoles), tableHandler.InvalidateCache)
	}

	return r
}
