// Package database owns the MongoDB client: connecting, health checks and
// the transaction boundary used by multi-document writes.
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type Options struct {
	URI      string
	Database string
	// Transactions enables real multi-document transactions. Requires a
	// replica set or sharded cluster.
	Transactions bool
	MaxPoolSize  uint64
}

// DB is a connected client bound to one database.
type DB struct {
	client       *mongo.Client
	db           *mongo.Database
	transactions bool
}

// Connect opens the client, configures the pool and verifies the server is
// reachable. Returns an error instead of exiting so the caller can shut
// down gracefully.
func Connect(ctx context.Context, opts Options) (*DB, error) {
	pool := opts.MaxPoolSize
	if pool == 0 {
		pool = 50
	}

	clientOpts := options.Client().ApplyURI(opts.URI).
		SetConnectTimeout(10 * time.Second).
		SetServerSelectionTimeout(10 * time.Second).
		SetMaxPoolSize(pool).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("database: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("database: ping: %w", err)
	}

	return New(client, opts.Database, opts.Transactions), nil
}

// New wraps an already connected client.
func New(client *mongo.Client, database string, transactions bool) *DB {
	return &DB{client: client, db: client.Database(database), transactions: transactions}
}

func (d *DB) Database() *mongo.Database { return d.db }

func (d *DB) Collection(name string) *mongo.Collection { return d.db.Collection(name) }

func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx, readpref.Primary())
}

func (d *DB) Close(ctx context.Context) error {
	return d.client.Disconnect(ctx)
}

// WithTransaction runs fn inside a multi-document transaction when
// transactions are enabled. Otherwise fn runs directly on ctx and its writes
// are applied one by one.
func (d *DB) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !d.transactions {
		return fn(ctx)
	}

	return d.client.UseSession(ctx, func(sc mongo.SessionContext) error {
		_, err := sc.WithTransaction(sc, func(txCtx mongo.SessionContext) (interface{}, error) {
			return nil, fn(txCtx)
		})
		return err
	})
}
