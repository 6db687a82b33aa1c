package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/roach88/memberbridge/internal/migrate"
)

const requestIDHeader = "X-Request-ID"

// Options configures the router.
type Options struct {
	// Logger receives one event per request. Defaults to a no-op.
	Logger zerolog.Logger

	// Registry, when set, exposes its collectors on GET /metrics.
	Registry *prometheus.Registry
}

// NewRouter builds the gin engine serving the member API around an
// orchestrator.
func NewRouter(orc *migrate.Orchestrator, opts Options) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	registerValidators()

	h := &handlers{orc: orc, log: opts.Logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(opts.Logger))

	api := r.Group("/api")
	api.GET("/health", h.health)

	members := api.Group("/v1/members")
	members.GET("", h.list)
	members.POST("", h.create)
	members.GET("/search", h.search)
	members.GET("/:id", h.get)
	members.PUT("/:id", h.update)
	members.DELETE("/:id", h.delete)

	if opts.Registry != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(
			opts.Registry,
			promhttp.HandlerOpts{Registry: opts.Registry},
		)))
	}

	return r
}

// requestID assigns each request an identifier, honoring one supplied
// by the caller, and echoes it in the response.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// requestLogger emits one structured event per completed request.
func requestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("request_id", c.GetString("request_id")).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	}
}
