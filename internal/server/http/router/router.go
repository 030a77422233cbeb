package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"

	"github.com/buyside/procure/internal/server/http/handlers"
	"github.com/buyside/procure/internal/server/http/middleware"
)

// Setup configures gin router with handlers and middleware.
func Setup(facade handlers.ProcurementFacade, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	orderHandler := handlers.NewOrderHandler(facade)
	negotiationHandler := handlers.NewNegotiationHandler(facade)

	api := engine.Group("/api")
	tenant := api.Group("/tenants/:tenant_id")
	tenant.Use(middleware.EmployeeRequired())

	tenant.POST("/connect", orderHandler.Connect)
	tenant.POST("/orders", orderHandler.Submit)
	tenant.GET("/orders", orderHandler.List)
	tenant.GET("/orders/:order_id", orderHandler.Get)

	order := tenant.Group("/orders/:order_id")
	order.POST("/send", negotiationHandler.Send)
	order.POST("/suggestions", negotiationHandler.Suggest)
	order.POST("/suggestions/accept", negotiationHandler.Accept)
	order.POST("/suggestions/reject", negotiationHandler.Reject)
	order.POST("/suggestions/counter", negotiationHandler.Counter)
	order.POST("/cancel", negotiationHandler.Cancel)
	order.POST("/finalize", negotiationHandler.Finalize)

	return engine
}
