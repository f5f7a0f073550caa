package app

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/jcorner/storefront/config"
	"github.com/jcorner/storefront/database/seeders"
	"github.com/jcorner/storefront/internal/kernel"
	"github.com/jcorner/storefront/pkg/migration"
)

// RouteList prints every mounted route. No backing services are needed.
func RouteList(w io.Writer) error {
	if err := config.Load(); err != nil {
		return err
	}
	infos := kernel.NewHTTPKernel(kernel.Config{Prefix: config.APIPrefix()}).Routes()

	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "METHOD\tPATH\tNAME")
	fmt.Fprintln(tw, "------\t----\t----")
	for _, ri := range infos {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
	}
	return tw.Flush()
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, w io.Writer) error {
	return withRunner(ctx, w, func(r *migration.Runner) error {
		fmt.Fprintln(w, "Running migrations…")
		return r.Run(ctx)
	})
}

// MigrateRollback reverses the last batch.
func MigrateRollback(ctx context.Context, w io.Writer) error {
	return withRunner(ctx, w, func(r *migration.Runner) error {
		fmt.Fprintln(w, "Rolling back last batch…")
		return r.Rollback(ctx)
	})
}

// MigrateStatus prints whether each migration has run.
func MigrateStatus(ctx context.Context, w io.Writer) error {
	return withRunner(ctx, w, func(r *migration.Runner) error {
		st, err := r.Status(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
		fmt.Fprintln(tw, "RAN\tBATCH\tMIGRATION")
		for _, s := range st {
			ran, batch := "No", "-"
			if s.Ran {
				ran, batch = "Yes", fmt.Sprint(s.Batch)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ran, batch, s.Name)
		}
		return tw.Flush()
	})
}

func withRunner(ctx context.Context, w io.Writer, fn func(*migration.Runner) error) error {
	db, err := ConnectDB(ctx)
	if err != nil {
		return err
	}
	defer db.Close(context.Background())
	return fn(migration.New(db.Database(), w))
}

// Seed boots the application and runs the named seeders, or all of them.
func Seed(ctx context.Context, w io.Writer, opts map[string]string, only ...string) error {
	if err := config.Load(); err != nil {
		return err
	}
	if config.DatabaseDriver() != "mongo" {
		return ErrNoDatabase
	}
	a, err := Boot(ctx)
	if err != nil {
		return err
	}
	defer a.Close(context.Background())

	fmt.Fprintln(w, "Running seeders…")
	env := seeders.Env{Users: a.Users, Products: a.Products, Options: opts}
	if err := seeders.RunAll(ctx, env, w, only...); err != nil {
		return err
	}
	fmt.Fprintln(w, "✅ Seeding complete")
	return nil
}
