// Package app boots the storefront: it reads configuration, connects the
// backing services and assembles the HTTP kernel. Every CLI command goes
// through here so serve, migrate and seed see the same wiring.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jcorner/storefront/app/repositories"
	"github.com/jcorner/storefront/app/routes"
	"github.com/jcorner/storefront/app/services"
	"github.com/jcorner/storefront/config"
	"github.com/jcorner/storefront/internal/kernel"
	"github.com/jcorner/storefront/internal/memstore"
	"github.com/jcorner/storefront/pkg/auth"
	"github.com/jcorner/storefront/pkg/cache"
	"github.com/jcorner/storefront/pkg/database"
	"github.com/jcorner/storefront/pkg/logger"
	"github.com/jcorner/storefront/pkg/middleware"
	"github.com/jcorner/storefront/pkg/storage"
)

// ErrNoDatabase is returned by commands that need MongoDB when the
// configured driver is "memory".
var ErrNoDatabase = errors.New("this command needs DB_DRIVER=mongo")

// Application holds the booted services and the resources they depend on.
type Application struct {
	Users    *services.UserService
	Products *services.ProductService
	Carts    *services.CartService
	Orders   *services.OrderService
	Kernel   *kernel.HTTPKernel

	db       *database.DB
	cache    *cache.Store
	limiter  *middleware.RateLimiter
	logSink  *logger.MongoHandler
	shutdown []func(context.Context) error
}

// backend is the persistence a booted application runs on.
type backend struct {
	users    services.UserRepository
	products services.ProductRepository
	carts    services.CartRepository
	orders   services.OrderRepository
	tx       services.Transactor
	health   kernel.Pinger
}

// Boot wires everything from config. Callers must Close the result.
func Boot(ctx context.Context) (*Application, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logger.Setup(config.AppEnv())
	if err := config.CheckSecrets(); err != nil {
		logger.Error("refusing to boot", "error", err)
		return nil, fmt.Errorf("config: %w", err)
	}

	a := &Application{}
	be, err := a.openBackend(ctx)
	if err != nil {
		return nil, err
	}

	if addr := config.RedisAddr(); addr != "" {
		store, err := cache.Connect(ctx, addr, config.RedisPassword())
		if err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", "addr", addr, "error", err)
		} else {
			a.cache = store
			a.onClose(func(context.Context) error { return store.Close() })
		}
	}

	disk, err := storage.New(ctx, storageOptions())
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	tokens := auth.NewTokenService(config.JWTSecret(), config.TokenTTL())
	a.Users = services.NewUserService(be.users, tokens, config.BcryptCost())
	a.Products = services.NewProductService(be.products, services.NewImageService(disk), a.catalogCache(), config.ProductCacheTTL())
	a.Carts = services.NewCartService(be.carts)
	a.Orders = services.NewOrderService(be.orders, be.carts, be.tx)

	a.limiter = middleware.NewRateLimiter(config.RateLimitPerMinute(), rateWindow)
	a.Kernel = buildKernel(kernelDeps{
		services: routes.Services{Users: a.Users, Products: a.Products, Carts: a.Carts, Orders: a.Orders},
		tokens:   tokens,
		health:   be.health,
		disk:     disk,
		limiter:  a.limiter,
	})

	logger.Info("storefront booted",
		"env", config.AppEnv(),
		"db", config.DatabaseDriver(),
		"storage", config.StorageDefault(),
		"cache", a.cache.Enabled(),
	)
	return a, nil
}

func (a *Application) openBackend(ctx context.Context) (backend, error) {
	if config.DatabaseDriver() == "memory" {
		logger.Warn("using in-memory store, data is lost on exit")
		store := memstore.New()
		return backend{
			users:    store.Users(),
			products: store.Products(),
			carts:    store.Carts(),
			orders:   store.Orders(),
			tx:       store,
			health:   store,
		}, nil
	}

	db, err := ConnectDB(ctx)
	if err != nil {
		return backend{}, err
	}
	a.db = db
	a.onClose(db.Close)

	if col := config.LogMongoCollection(); col != "" {
		a.logSink = logger.NewMongoHandler(db.Collection(col), slog.LevelInfo)
		logger.Setup(config.AppEnv(), a.logSink)
	}

	mdb := db.Database()
	return backend{
		users:    repositories.NewUserRepository(mdb),
		products: repositories.NewProductRepository(mdb),
		carts:    repositories.NewCartRepository(mdb),
		orders:   repositories.NewOrderRepository(mdb),
		tx:       db,
		health:   db,
	}, nil
}

// ConnectDB opens MongoDB as configured. Returns ErrNoDatabase for the
// memory driver.
func ConnectDB(ctx context.Context) (*database.DB, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if config.DatabaseDriver() != "mongo" {
		return nil, ErrNoDatabase
	}
	return database.Connect(ctx, database.Options{
		URI:          config.MongoURI(),
		Database:     config.MongoDatabase(),
		Transactions: config.MongoTransactions(),
	})
}

// catalogCache keeps a disconnected store from becoming a non-nil interface.
func (a *Application) catalogCache() services.Cache {
	if !a.cache.Enabled() {
		return nil
	}
	return a.cache
}

func (a *Application) onClose(fn func(context.Context) error) {
	a.shutdown = append(a.shutdown, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *Application) Close(ctx context.Context) error {
	if a.limiter != nil {
		a.limiter.Stop()
	}
	if a.logSink != nil {
		logger.Setup(config.AppEnv())
		a.logSink.Close()
	}
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.shutdown = nil
	return errors.Join(errs...)
}

func storageOptions() storage.Options {
	return storage.Options{
		Driver:     config.StorageDefault(),
		LocalRoot:  config.StorageLocalRoot(),
		LocalURL:   config.StorageURL(),
		S3Bucket:   config.StorageS3Bucket(),
		S3Region:   config.StorageS3Region(),
		S3Key:      config.StorageS3Key(),
		S3Secret:   config.StorageS3Secret(),
		S3Endpoint: config.StorageS3Endpoint(),
		S3URL:      config.StorageS3URL(),
	}
}
