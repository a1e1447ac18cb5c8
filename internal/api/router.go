package api

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serviceName = "velocity-service"

// NewRouter builds the gin engine with CORS, metrics middleware, and the
// analysis routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	r.Use(cors.New(corsConfig))

	r.Use(PrometheusMiddleware(serviceName))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": serviceName,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/analyze-velocity", h.SubmitAnalysis)
	r.GET("/analyze-velocity/:jobId", h.GetAnalysis)

	return r
}
