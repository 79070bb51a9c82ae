package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JASIELAB/CULTUREMEDIA/internal/server/handlers"
)

// Handlers collects the route handlers the engine needs.
type Handlers struct {
	Batches   *handlers.BatchHandler
	Solutions *handlers.SolutionHandler
	Recipes   *handlers.RecipeHandler
	Exports   *handlers.ExportHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	batches := r.Group("/batches")
	{
		batches.POST("", h.Batches.Register)
		batches.GET("", h.Batches.List)
		batches.GET("/:code", h.Batches.Get)
		batches.DELETE("/:code", h.Batches.Delete)
		batches.POST("/:code/dispose", h.Batches.Dispose)
		batches.POST("/:code/return", h.Batches.Return)
		batches.GET("/:code/payload", h.Batches.Payload)
		batches.GET("/:code/label.png", h.Batches.Label)
		batches.GET("/:code/qr.png", h.Batches.QR)
	}

	solutions := r.Group("/solutions")
	{
		solutions.POST("", h.Solutions.Register)
		solutions.GET("", h.Solutions.List)
		solutions.GET("/:code", h.Solutions.Get)
		solutions.DELETE("/:code", h.Solutions.Delete)
		solutions.POST("/:code/dispose", h.Solutions.Dispose)
		solutions.GET("/:code/label.png", h.Solutions.Label)
	}

	r.GET("/movements", h.Batches.Movements)

	r.GET("/recipes", h.Recipes.List)
	r.GET("/recipes/:name", h.Recipes.Get)

	exports := r.Group("/exports")
	{
		exports.GET("/batches.csv", h.Exports.BatchesCSV)
		exports.GET("/solutions.csv", h.Exports.SolutionsCSV)
		exports.GET("/movements.csv", h.Exports.MovementsCSV)
		exports.GET("/inventory.xlsx", h.Exports.Workbook)
		exports.POST("/inventory.xlsx", h.Exports.ImportWorkbook)
	}

	r.GET("/report/summary", h.Exports.Summary)

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
