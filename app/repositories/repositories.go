// Package repositories implements the persistence collections on MongoDB.
package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jcorner/storefront/pkg/metrics"
)

var (
	// ErrNotFound is returned when no document matches, including for ids
	// that are not valid ObjectIDs.
	ErrNotFound = errors.New("repositories: not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("repositories: duplicate key")
)

// Collection names.
const (
	UsersCollection    = "users"
	ProductsCollection = "products"
	CartsCollection    = "carts"
	OrdersCollection   = "orders"
)

func objectID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, ErrNotFound
	}
	return oid, nil
}

func byID(oid primitive.ObjectID) bson.D {
	return bson.D{{Key: "_id", Value: oid}}
}

// translate maps driver errors onto the package sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrDuplicate
	default:
		return err
	}
}

// observe starts a timer for a collection operation:
//
//	defer observe(UsersCollection, "find")()
func observe(collection, op string) func() {
	start := time.Now()
	return func() { metrics.ObserveDBQuery(collection, op, start) }
}

func findAll[T any](ctx context.Context, col *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cur, err := col.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
