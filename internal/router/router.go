package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/care-portal/internal/middleware"
	"github.com/jwalitptl/care-portal/pkg/metrics"
)

// Handler is implemented by every API handler group.
type Handler interface {
	RegisterRoutes(*gin.RouterGroup, *middleware.AuthMiddleware)
}

// PublicHandler serves routes outside /api/v1 without authentication.
type PublicHandler interface {
	RegisterRoutes(gin.IRouter)
}

type RouterConfig struct {
	Mode           string
	RateLimit      rate.Limit
	RateBurst      int
	RequestTimeout time.Duration
	CORSConfig     middleware.CORSConfig
}

type Router struct {
	engine  *gin.Engine
	auth    *middleware.AuthMiddleware
	api     []Handler
	public  []PublicHandler
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
	config  RouterConfig
}

func NewRouter(
	auth *middleware.AuthMiddleware,
	m *metrics.Metrics,
	config RouterConfig,
	public []PublicHandler,
	api ...Handler,
) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}

	r := &Router{
		engine:  gin.New(),
		auth:    auth,
		api:     api,
		public:  public,
		metrics: m,
		config:  config,
	}
	if config.RateLimit > 0 {
		r.limiter = middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		})
	}

	r.engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.Metrics(m),
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.CORS(config.CORSConfig),
	)
	return r
}

func (r *Router) Setup() {
	for _, h := range r.public {
		h.RegisterRoutes(r.engine)
	}

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.SizeLimit(middleware.DefaultSizeLimitConfig()),
		middleware.Timeout(r.config.RequestTimeout),
	)
	if r.limiter != nil {
		api.Use(r.limiter.RateLimit())
	}
	api.Use(r.auth.Authenticate())

	for _, h := range r.api {
		h.RegisterRoutes(api, r.auth)
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
