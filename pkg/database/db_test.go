package database

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestWithTransactionRunsDirectlyWhenDisabled(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("runs fn", func(mt *mtest.T) {
		db := New(mt.Client, "storefront", false)

		calls := 0
		err := db.WithTransaction(context.Background(), func(context.Context) error {
			calls++
			return nil
		})
		assert.NoError(mt, err)
		assert.Equal(mt, 1, calls)
	})

	mt.Run("propagates error", func(mt *mtest.T) {
		db := New(mt.Client, "storefront", false)
		boom := errors.New("boom")

		err := db.WithTransaction(context.Background(), func(context.Context) error { return boom })
		assert.ErrorIs(mt, err, boom)
	})
}

func TestPing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("ok", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		db := New(mt.Client, "storefront", false)
		assert.NoError(mt, db.Ping(context.Background()))
		assert.Equal(mt, "storefront", db.Database().Name())
	})
}
