package app

import (
	"time"

	"github.com/jcorner/storefront/app/routes"
	"github.com/jcorner/storefront/config"
	"github.com/jcorner/storefront/internal/kernel"
	"github.com/jcorner/storefront/pkg/middleware"
	"github.com/jcorner/storefront/pkg/storage"
)

const rateWindow = time.Minute

type kernelDeps struct {
	services routes.Services
	tokens   middleware.TokenVerifier
	health   kernel.Pinger
	disk     storage.Disk
	limiter  *middleware.RateLimiter
}

// buildKernel turns the booted services into the HTTP kernel. Images on a
// local disk are served by the app itself.
func buildKernel(d kernelDeps) *kernel.HTTPKernel {
	cors := middleware.DefaultCORSOptions()
	cors.AllowedOrigins = config.CORSOrigins()

	cfg := kernel.Config{
		Prefix:   config.APIPrefix(),
		Services: d.services,
		Tokens:   d.tokens,
		Health:   d.health,
		CORS:     cors,
		Limiter:  d.limiter,
	}
	if local, ok := d.disk.(*storage.LocalDisk); ok {
		cfg.Files = local.Handler()
	}
	return kernel.NewHTTPKernel(cfg)
}
