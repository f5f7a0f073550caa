package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/google/uuid"

	"github.com/jcorner/storefront/pkg/metrics"
	"github.com/jcorner/storefront/pkg/storage"
)

// imageFolder is the storage prefix for product images.
const imageFolder = "products"

var imageExts = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// sniffLen is how much of an upload is read to detect its type.
const sniffLen = 512

// ErrUnsupportedImage is returned by Upload when the content is not one of
// the accepted image formats.
var ErrUnsupportedImage = errors.New("unsupported image type")

// ImageService hosts product images on a storage disk. The public id of an
// image is its path on the disk.
type ImageService struct {
	disk storage.Disk
}

func NewImageService(disk storage.Disk) *ImageService {
	return &ImageService{disk: disk}
}

// Upload stores u under a fresh random name and returns its URL and id.
// The format is detected from the content; the client's filename and
// content type are ignored.
func (s *ImageService) Upload(ctx context.Context, u Upload) (Image, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(u.Body, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return Image{}, fmt.Errorf("image upload: %w", err)
	}
	head = head[:n]

	contentType := http.DetectContentType(head)
	ext, ok := imageExts[contentType]
	if !ok {
		return Image{}, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}
	id := path.Join(imageFolder, uuid.NewString()+ext)

	err = s.disk.Put(ctx, id, io.MultiReader(bytes.NewReader(head), u.Body), contentType)
	metrics.RecordImageOp("upload", err)
	if err != nil {
		return Image{}, fmt.Errorf("image upload: %w", err)
	}
	return Image{URL: s.disk.URL(id), PublicID: id}, nil
}

// Delete removes the image with publicID. Missing images are not an error.
func (s *ImageService) Delete(ctx context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	err := s.disk.Delete(ctx, publicID)
	metrics.RecordImageOp("delete", err)
	if err != nil {
		return fmt.Errorf("image delete %s: %w", publicID, err)
	}
	return nil
}
