// Package migration runs versioned schema changes against MongoDB. For a
// document store a "schema change" is mostly index management, so each
// migration receives the database handle and creates or drops indexes.
//
// Migrations register themselves from database/migrations:
//
//	func init() {
//	    migration.Register("20260101000000_users_email_unique", &UsersEmailUnique{})
//	}
//
// Run from CLI:
//
//	storefront migrate             // run all pending
//	storefront migrate:rollback    // rollback last batch
//	storefront migrate:status
package migration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcorner/storefront/pkg/logger"
)

// Collection is where applied migrations are recorded.
const Collection = "schema_migrations"

// Migration is the interface every migration must implement.
type Migration interface {
	Up(ctx context.Context, db *mongo.Database) error
	Down(ctx context.Context, db *mongo.Database) error
}

type record struct {
	Name  string    `bson:"name"`
	Batch int       `bson:"batch"`
	RunAt time.Time `bson:"runAt"`
}

type registered struct {
	name string
	m    Migration
}

var registry []registered

// Register adds a migration to the global registry. name should be
// timestamp-prefixed; pending migrations run in name order.
func Register(name string, m Migration) {
	registry = append(registry, registered{name: name, m: m})
}

// Status is one line of migrate:status output.
type Status struct {
	Name  string
	Ran   bool
	Batch int
}

// Runner executes and tracks migrations.
type Runner struct {
	db         *mongo.Database
	out        io.Writer
	migrations []registered
}

// New creates a Runner over every registered migration. Progress lines are
// written to out.
func New(db *mongo.Database, out io.Writer) *Runner {
	ms := append([]registered(nil), registry...)
	sort.Slice(ms, func(i, j int) bool { return ms[i].name < ms[j].name })
	return &Runner{db: db, out: out, migrations: ms}
}

func (r *Runner) tracking() *mongo.Collection { return r.db.Collection(Collection) }

func (r *Runner) applied(ctx context.Context) (map[string]record, error) {
	cur, err := r.tracking().Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	var recs []record
	if err := cur.All(ctx, &recs); err != nil {
		return nil, err
	}
	out := make(map[string]record, len(recs))
	for _, rec := range recs {
		out[rec.Name] = rec
	}
	return out, nil
}

// Pending returns the migrations that have not yet been applied.
func (r *Runner) Pending(ctx context.Context) ([]string, error) {
	ran, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, reg := range r.migrations {
		if _, ok := ran[reg.name]; !ok {
			names = append(names, reg.name)
		}
	}
	return names, nil
}

// Run applies all pending migrations as one batch.
func (r *Runner) Run(ctx context.Context) error {
	if len(r.migrations) == 0 {
		return ErrNoMigrations
	}

	ran, err := r.applied(ctx)
	if err != nil {
		return fmt.Errorf("migration: fetch applied: %w", err)
	}

	batch := 1
	for _, rec := range ran {
		if rec.Batch >= batch {
			batch = rec.Batch + 1
		}
	}

	count := 0
	for _, reg := range r.migrations {
		if _, ok := ran[reg.name]; ok {
			continue
		}
		logger.Info("migration: running", "name", reg.name)
		fmt.Fprintf(r.out, "  ▶ Migrating: %s\n", reg.name)

		if err := reg.m.Up(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s up: %w", reg.name, err)
		}
		rec := record{Name: reg.name, Batch: batch, RunAt: time.Now().UTC()}
		if _, err := r.tracking().InsertOne(ctx, rec); err != nil {
			return fmt.Errorf("migration: record %s: %w", reg.name, err)
		}
		fmt.Fprintf(r.out, "  ✅ Migrated:  %s\n", reg.name)
		count++
	}

	if count == 0 {
		fmt.Fprintln(r.out, "Nothing to migrate.")
		return nil
	}
	logger.Info("migration: done", "ran", count, "batch", batch)
	return nil
}

// Rollback reverses every migration from the most recent batch, newest first.
func (r *Runner) Rollback(ctx context.Context) error {
	var last record
	err := r.tracking().FindOne(ctx, bson.D{},
		options.FindOne().SetSort(bson.D{{Key: "batch", Value: -1}})).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		fmt.Fprintln(r.out, "Nothing to roll back.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("migration: last batch: %w", err)
	}

	cur, err := r.tracking().Find(ctx, bson.D{{Key: "batch", Value: last.Batch}},
		options.Find().SetSort(bson.D{{Key: "name", Value: -1}}))
	if err != nil {
		return fmt.Errorf("migration: batch %d: %w", last.Batch, err)
	}
	var recs []record
	if err := cur.All(ctx, &recs); err != nil {
		return err
	}

	byName := make(map[string]Migration, len(r.migrations))
	for _, reg := range r.migrations {
		byName[reg.name] = reg.m
	}

	for _, rec := range recs {
		m, ok := byName[rec.Name]
		if !ok {
			return fmt.Errorf("migration: %s is recorded but not registered", rec.Name)
		}
		fmt.Fprintf(r.out, "  ◀ Rolling back: %s\n", rec.Name)
		if err := m.Down(ctx, r.db); err != nil {
			return fmt.Errorf("migration: %s down: %w", rec.Name, err)
		}
		if _, err := r.tracking().DeleteOne(ctx, bson.D{{Key: "name", Value: rec.Name}}); err != nil {
			return fmt.Errorf("migration: unrecord %s: %w", rec.Name, err)
		}
	}
	return nil
}

// Status reports every registered migration and whether it has run.
func (r *Runner) Status(ctx context.Context) ([]Status, error) {
	ran, err := r.applied(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Status, 0, len(r.migrations))
	for _, reg := range r.migrations {
		rec, ok := ran[reg.name]
		out = append(out, Status{Name: reg.name, Ran: ok, Batch: rec.Batch})
	}
	return out, nil
}

// ErrNoMigrations is returned when Run is called but no migrations are registered.
var ErrNoMigrations = errors.New("no migrations registered")
