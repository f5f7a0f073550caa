package app

import (
	"context"

	"github.com/jcorner/storefront/config"
	"github.com/jcorner/storefront/internal/server"
)

// Serve boots the application and blocks serving HTTP until ctx ends or
// the process is signalled.
func Serve(ctx context.Context) error {
	a, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout())
		defer cancel()
		_ = a.Close(closeCtx)
	}()

	opts := server.DefaultOptions(":" + config.AppPort())
	opts.ShutdownTimeout = config.ShutdownTimeout()
	return server.Start(ctx, a.Kernel.Handler(), opts)
}
