package services

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcorner/storefront/pkg/storage"
)

var (
	pngBytes  = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 600)...)
	webpBytes = []byte("RIFF\x00\x00\x00\x00WEBPVP8 ")
)

func TestImageServiceOnLocalDisk(t *testing.T) {
	ctx := context.Background()
	disk, err := storage.NewLocal(t.TempDir(), "http://cdn.test/storage")
	require.NoError(t, err)
	svc := NewImageService(disk)

	img, err := svc.Upload(ctx, Upload{Filename: "Card.PNG", ContentType: "image/png", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(img.PublicID, "products/"))
	assert.True(t, strings.HasSuffix(img.PublicID, ".png"))
	assert.Equal(t, "http://cdn.test/storage/"+img.PublicID, img.URL)

	rc, err := disk.Get(ctx, img.PublicID)
	require.NoError(t, err)
	stored, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, pngBytes, stored, "the sniffed prefix is written back")

	require.NoError(t, svc.Delete(ctx, img.PublicID))
	ok, _ := disk.Exists(ctx, img.PublicID)
	assert.False(t, ok)

	assert.NoError(t, svc.Delete(ctx, ""))
}

func TestImageServiceExtensionFromContent(t *testing.T) {
	disk, err := storage.NewLocal(t.TempDir(), "")
	require.NoError(t, err)
	svc := NewImageService(disk)

	img, err := svc.Upload(context.Background(), Upload{Filename: "blob", Body: bytes.NewReader(webpBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(img.PublicID, ".webp"))

	img, err = svc.Upload(context.Background(), Upload{Filename: "evil.html", ContentType: "text/html", Body: bytes.NewReader(pngBytes)})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(img.PublicID, ".png"), "filename extension is ignored")
}

func TestImageServiceRejectsNonImages(t *testing.T) {
	root := t.TempDir()
	disk, err := storage.NewLocal(root, "")
	require.NoError(t, err)
	svc := NewImageService(disk)

	for name, body := range map[string]string{
		"evil.html": "<html><script>alert(1)</script></html>",
		"card.png":  "not really a png",
		"empty.png": "",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), Upload{Filename: name, ContentType: "image/png", Body: strings.NewReader(body)})
			assert.ErrorIs(t, err, ErrUnsupportedImage)
		})
	}

	entries, _ := os.ReadDir(root)
	assert.Empty(t, entries, "nothing is written for rejected uploads")
}
