package router

import (
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"barbearia/internal/middleware"
)

// Handler registers its routes on the /api group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimit rate.Limit
	RateBurst int
	CORS      middleware.CORSConfig
	// StaticDir serves the booking/admin pages when it exists.
	StaticDir string
}

type Router struct {
	engine  *gin.Engine
	metrics *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(config Config, handlers ...Handler) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	r := &Router{
		engine:  engine,
		metrics: newRouterMetrics("barbearia_http"),
	}

	engine.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
		r.metricsMiddleware(),
		middleware.CORS(config.CORS),
	)

	if config.RateLimit > 0 {
		engine.Use(middleware.RateLimit(config.RateLimit, config.RateBurst))
	}

	api := engine.Group("/api")
	for _, h := range handlers {
		h.RegisterRoutes(api)
	}

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.setupStaticPages(config.StaticDir)

	return r
}

// setupStaticPages hosts the client web app when the directory is present.
// Incidental plumbing; the API works without it.
func (r *Router) setupStaticPages(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); err != nil {
		return
	}

	r.engine.Static("/public", dir)
	r.engine.StaticFile("/", dir+"/index.html")
	r.engine.StaticFile("/booking", dir+"/booking.html")
	r.engine.StaticFile("/admin", dir+"/admin.html")
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: prefix + "_request_duration_seconds",
				Help: "Duration of HTTP requests in seconds",
			},
			[]string{"method", "path", "status"},
		),
		requestTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		status := fmt.Sprintf("%d", c.Writer.Status())
		duration := time.Since(start).Seconds()

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(duration)
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
