// Package seeders provides a registry of database seed functions.
//
// Define a seeder in any file in this package:
//
//	func init() {
//	    seeders.Register("admin", SeedAdmin)
//	}
//
// Then run via CLI: storefront seed
package seeders

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/jcorner/storefront/app/models"
	"github.com/jcorner/storefront/app/services"
)

// UserCreator is the part of services.UserService seeders use.
type UserCreator interface {
	Register(ctx context.Context, in services.Registration) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	SetAdmin(ctx context.Context, userID string, admin bool) (*models.User, error)
}

// ProductCreator is the part of services.ProductService seeders use.
type ProductCreator interface {
	Create(ctx context.Context, in services.ProductInput, img *services.Upload) (*models.Product, error)
}

// Env is what a seeder gets to work with. Seeders go through the services so
// seeded data obeys the same rules as data created over HTTP.
type Env struct {
	Users    UserCreator
	Products ProductCreator
	Options  map[string]string
}

// SeederFunc is the signature for a seed function.
type SeederFunc func(ctx context.Context, env Env) error

type seederEntry struct {
	name string
	fn   SeederFunc
}

var (
	mu      sync.Mutex
	entries []seederEntry
)

// Register adds a seeder to the global registry.
func Register(name string, fn SeederFunc) {
	mu.Lock()
	defer mu.Unlock()
	entries = append(entries, seederEntry{name: name, fn: fn})
}

// RunAll executes the named seeders, or every registered seeder when only is
// empty, in registration order. It stops on the first error.
func RunAll(ctx context.Context, env Env, out io.Writer, only ...string) error {
	mu.Lock()
	current := make([]seederEntry, len(entries))
	copy(current, entries)
	mu.Unlock()

	want := make(map[string]bool, len(only))
	for _, n := range only {
		want[n] = true
	}

	ran := 0
	for _, e := range current {
		if len(want) > 0 && !want[e.name] {
			continue
		}
		fmt.Fprintf(out, "  • Running seeder: %s … ", e.name)
		if err := e.fn(ctx, env); err != nil {
			fmt.Fprintln(out, "FAILED")
			return fmt.Errorf("seeder %q: %w", e.name, err)
		}
		fmt.Fprintln(out, "done")
		ran++
	}
	if ran == 0 {
		fmt.Fprintln(out, "  (no seeders ran)")
	}
	return nil
}
