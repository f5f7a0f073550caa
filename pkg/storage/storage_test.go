package storage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalDiskRoundTrip(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "http://localhost:8080/storage/")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "products/a.png", strings.NewReader("PNG"), "image/png"))

	ok, err := d.Exists(ctx, "products/a.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := d.Get(ctx, "products/a.png")
	require.NoError(t, err)
	data, _ := io.ReadAll(rc)
	rc.Close()
	assert.Equal(t, "PNG", string(data))

	assert.Equal(t, "http://localhost:8080/storage/products/a.png", d.URL("products/a.png"))

	require.NoError(t, d.Delete(ctx, "products/a.png"))
	require.NoError(t, d.Delete(ctx, "products/a.png"))
	_, err = d.Get(ctx, "products/a.png")
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestLocalDiskStaysInsideRoot(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	d, err := NewLocal(root, "")
	require.NoError(t, err)

	require.NoError(t, d.Put(ctx, "../../escape.txt", strings.NewReader("x"), ""))
	ok, err := d.Exists(ctx, "escape.txt")
	require.NoError(t, err)
	assert.True(t, ok, "path should be clamped under root")
}

func TestLocalDiskHandler(t *testing.T) {
	ctx := context.Background()
	d, err := NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, d.Put(ctx, "products/b.png", strings.NewReader("IMG"), ""))

	rec := httptest.NewRecorder()
	d.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/products/b.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "IMG", rec.Body.String())
}

// fakeS3 is a path-style S3 endpoint backed by a map.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := strings.TrimPrefix(r.URL.Path, "/images-bucket/")
	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		f.objects[key] = string(body)
		w.Header().Set("ETag", `"etag"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodHead:
		if _, ok := f.objects[key]; !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		body, ok := f.objects[key]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		_, _ = io.WriteString(w, body)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	}
}

func TestS3DiskAgainstFakeEndpoint(t *testing.T) {
	ctx := context.Background()
	fake := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(fake)
	defer srv.Close()

	disk, err := New(ctx, Options{
		Driver:     "s3",
		S3Bucket:   "images-bucket",
		S3Region:   "us-east-1",
		S3Key:      "key",
		S3Secret:   "secret",
		S3Endpoint: srv.URL,
		S3URL:      "https://cdn.example.com/",
	})
	require.NoError(t, err)

	require.NoError(t, disk.Put(ctx, "products/c.png", strings.NewReader("CARD"), "image/png"))
	fake.mu.Lock()
	assert.Contains(t, fake.objects["products/c.png"], "CARD")
	fake.mu.Unlock()

	ok, err := disk.Exists(ctx, "products/c.png")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, disk.Delete(ctx, "products/c.png"))
	ok, err = disk.Exists(ctx, "products/c.png")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = disk.Get(ctx, "products/c.png")
	assert.ErrorIs(t, err, ErrNotExist)

	assert.Equal(t, "https://cdn.example.com/products/c.png", disk.URL("products/c.png"))
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), Options{Driver: "ftp"})
	assert.Error(t, err)

	_, err = New(context.Background(), Options{Driver: "s3"})
	assert.Error(t, err)
}
