package migration

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

type countingMigration struct{ up, down int }

func (m *countingMigration) Up(context.Context, *mongo.Database) error   { m.up++; return nil }
func (m *countingMigration) Down(context.Context, *mongo.Database) error { m.down++; return nil }

func TestRunAppliesPendingAsNextBatch(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("run", func(mt *mtest.T) {
		first, second := &countingMigration{}, &countingMigration{}
		var out bytes.Buffer
		r := &Runner{db: mt.DB, out: &out, migrations: []registered{
			{name: "001_first", m: first},
			{name: "002_second", m: second},
		}}

		ns := mt.DB.Name() + "." + Collection
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
				bson.D{{Key: "name", Value: "001_first"}, {Key: "batch", Value: 3}}),
			mtest.CreateSuccessResponse(),
		)

		require.NoError(mt, r.Run(context.Background()))
		assert.Equal(mt, 0, first.up)
		assert.Equal(mt, 1, second.up)
		assert.Contains(mt, out.String(), "Migrated:  002_second")

		started := mt.GetStartedEvent()
		for started != nil && started.CommandName != "insert" {
			started = mt.GetStartedEvent()
		}
		require.NotNil(mt, started)
		doc := started.Command.Lookup("documents").Array().Index(0).Value().Document()
		assert.Equal(mt, int32(4), doc.Lookup("batch").Int32())
	})
}

func TestStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("status", func(mt *mtest.T) {
		r := &Runner{db: mt.DB, out: &bytes.Buffer{}, migrations: []registered{
			{name: "001_first", m: &countingMigration{}},
			{name: "002_second", m: &countingMigration{}},
		}}
		ns := mt.DB.Name() + "." + Collection
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "name", Value: "001_first"}, {Key: "batch", Value: 1}}))

		status, err := r.Status(context.Background())
		require.NoError(mt, err)
		assert.Equal(mt, []Status{
			{Name: "001_first", Ran: true, Batch: 1},
			{Name: "002_second", Ran: false},
		}, status)
	})
}

func TestRunWithoutMigrations(t *testing.T) {
	r := &Runner{out: &bytes.Buffer{}}
	assert.ErrorIs(t, r.Run(context.Background()), ErrNoMigrations)
}
