package logger

import (
	"bytes"
	"context"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type recordingSink struct {
	mu   sync.Mutex
	docs []LogDocument
}

func (s *recordingSink) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, d := range docs {
		s.docs = append(s.docs, d.(LogDocument))
	}
	return &mongo.InsertManyResult{}, nil
}

func TestWithCtxFallsBackToBase(t *testing.T) {
	assert.Same(t, L, WithCtx(context.Background()))

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := InjectLogger(context.Background(), custom)
	assert.Same(t, custom, WithCtx(ctx))
}

func TestNewUsesJSONInProduction(t *testing.T) {
	var buf bytes.Buffer
	New("production", &buf).Info("hello", "k", "v")
	assert.Contains(t, buf.String(), `"msg":"hello"`)

	buf.Reset()
	New("local", &buf).Debug("dbg")
	assert.Contains(t, buf.String(), "msg=dbg")
}

func TestMongoHandlerFlushesOnClose(t *testing.T) {
	sink := &recordingSink{}
	h := newMongoHandler(sink, slog.LevelInfo)

	log := slog.New(h).With("request_id", "rid-1")
	log.Debug("skipped")
	log.Info("stored", "order_id", "o1")
	log.WithGroup("db").Warn("grouped", "op", "find")
	h.Close()
	h.Close()

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.docs, 2)
	assert.Equal(t, "stored", sink.docs[0].Msg)
	assert.Equal(t, "rid-1", sink.docs[0].RequestID)
	assert.Equal(t, "o1", sink.docs[0].Attrs["order_id"])
	assert.Equal(t, "find", sink.docs[1].Attrs["db.op"])
}

func TestMultiHandlerFansOut(t *testing.T) {
	var a, b bytes.Buffer
	log := slog.New(NewMultiHandler(
		slog.NewTextHandler(&a, nil),
		slog.NewTextHandler(&b, &slog.HandlerOptions{Level: slog.LevelError}),
	))

	log.Info("info line")
	assert.Contains(t, a.String(), "info line")
	assert.Empty(t, b.String())
}
