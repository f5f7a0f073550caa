// Package kernel assembles the storefront's HTTP handler: the global
// middleware stack, the operational endpoints and the API routes.
package kernel

import (
	"context"
	"net/http"
	"time"

	"github.com/jcorner/storefront/app/routes"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/metrics"
	"github.com/jcorner/storefront/pkg/middleware"
	"github.com/jcorner/storefront/pkg/reqid"
	"github.com/jcorner/storefront/pkg/response"
	"github.com/jcorner/storefront/pkg/router"
)

// FilesPath is where a local storage disk is served.
const FilesPath = "/storage"

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config is everything the kernel needs from the application.
type Config struct {
	Prefix   string
	Services routes.Services
	Tokens   middleware.TokenVerifier
	// Health is checked by GET /healthz.
	Health Pinger
	// Files serves uploaded images when they live on the local disk.
	Files http.Handler
	CORS  middleware.CORSOptions
	// Limiter is optional.
	Limiter *middleware.RateLimiter
}

type HTTPKernel struct {
	router *router.Router
}

// NewHTTPKernel builds the router. Global middleware, outermost first:
//
//  1. Request ID  so everything downstream can tag its logs
//  2. Logger      logs request_id from context
//  3. Recovery    catches panics before they kill the goroutine
//  4. Metrics     route-labelled latency and counts
//  5. CORS        answers preflights
//  6. Rate limit  rejects abusers before any handler work
func NewHTTPKernel(cfg Config) *HTTPKernel {
	r := router.New()

	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)
	r.Use(middleware.Recovery)
	r.Use(metrics.Middleware())
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Limiter != nil {
		r.Use(cfg.Limiter.Middleware)
	}

	r.Get("/metrics", "metrics", metrics.Handler())
	r.Get("/healthz", "healthz", healthz(cfg.Health))
	if cfg.Files != nil {
		r.Mount(FilesPath, http.StripPrefix(FilesPath, cfg.Files))
	}

	routes.RegisterAPI(r, cfg.Prefix, cfg.Services, cfg.Tokens)

	return &HTTPKernel{router: r}
}

func (k *HTTPKernel) Handler() http.Handler { return k.router.Handler() }

// Routes lists the mounted routes for route:list.
func (k *HTTPKernel) Routes() []router.RouteInfo { return k.router.Routes() }

func healthz(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.WithCtx(r.Context()).Warn("health check failed", "error", err)
				response.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		response.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
