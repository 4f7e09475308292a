package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdiomande/stockroom/internal/server/handlers"
)

// Handlers groups every HTTP handler the router needs.
type Handlers struct {
	Products  *handlers.ProductHandler
	Masters   *handlers.MasterHandler
	Invoices  *handlers.InvoiceHandler
	Imports   *handlers.ImportHandler
	Dashboard *handlers.DashboardHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")

	api.GET("/products", h.Products.List)
	api.POST("/products", h.Products.Create)
	api.PUT("/products/:code", h.Products.Update)
	api.DELETE("/products/:code", h.Products.Delete)
	api.GET("/products/export.csv", h.Products.ExportCSV)

	api.GET("/masters/:kind", h.Masters.List)
	api.POST("/masters/:kind", h.Masters.Create)
	api.PUT("/masters/:kind/:id", h.Masters.Update)
	api.DELETE("/masters/:kind/:id", h.Masters.Delete)

	api.GET("/invoices", h.Invoices.List)
	api.POST("/invoices", h.Invoices.Create)
	api.GET("/invoices/:number", h.Invoices.Get)
	api.GET("/invoices/:number/document", h.Invoices.Document)
	api.GET("/invoices/:number/delivery-note", h.Invoices.DeliveryNote)

	api.POST("/imports", h.Imports.Begin)
	api.GET("/imports/:id", h.Imports.Get)
	api.POST("/imports/:id/commit", h.Imports.Commit)
	api.POST("/imports/:id/back", h.Imports.Back)
	api.DELETE("/imports/:id", h.Imports.Abandon)

	api.GET("/dashboard/summary", h.Dashboard.Summary)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
