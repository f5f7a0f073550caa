// Package migrations contains the storefront's index migrations. Each file
// registers itself from init(); cmd/storefront imports the package so all of
// them are known at CLI startup.
package migrations

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexMigration creates one named index on Up and drops it on Down.
type indexMigration struct {
	collection string
	model      mongo.IndexModel
}

func (m *indexMigration) Up(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(m.collection).Indexes().CreateOne(ctx, m.model)
	return err
}

func (m *indexMigration) Down(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(m.collection).Indexes().DropOne(ctx, *m.model.Options.Name)
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.Code == 27 { // IndexNotFound
		return nil
	}
	return err
}

func unique(collection, name string, keys bson.D) *indexMigration {
	return &indexMigration{
		collection: collection,
		model:      mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name).SetUnique(true)},
	}
}

func index(collection, name string, keys bson.D) *indexMigration {
	return &indexMigration{
		collection: collection,
		model:      mongo.IndexModel{Keys: keys, Options: options.Index().SetName(name)},
	}
}
