package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/google/uuid"
	"golang.org/x/image/draw"

	"github.com/realorfakerf/myblog/internal/repository"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	maxUploadSize = 5 << 20
	maxImageWidth = 1024
	jpegQuality   = 80
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/webp": true,
}

// Media validates, downscales, and uploads images, handing back the
// public URL to persist on the owning record.
type Media struct {
	store repository.ObjectStore
}

func NewMedia(store repository.ObjectStore) *Media {
	return &Media{store: store}
}

// Upload checks the declared content type and size before touching the
// image bytes, then resizes to the maximum width, re-encodes as JPEG, and
// stores the object under a randomized per-user path.
func (m *Media) Upload(ctx context.Context, userID, contentType string, size int64, r io.Reader) (string, error) {
	if userID == "" {
		return "", ErrUnauthenticated
	}
	if !allowedImageTypes[contentType] {
		return "", validationf("unsupported image type %q", contentType)
	}
	if size > maxUploadSize {
		return "", validationf("image cannot exceed %d MB", maxUploadSize>>20)
	}

	src, _, err := image.Decode(io.LimitReader(r, maxUploadSize))
	if err != nil {
		return "", validationf("file is not a valid image")
	}

	encoded, err := encodeJPEG(downscale(src))
	if err != nil {
		return "", err
	}

	objectName := fmt.Sprintf("%s/%s.jpg", userID, uuid.NewString())
	return m.store.Put(ctx, objectName, "image/jpeg", encoded)
}

// downscale caps the width at maxImageWidth, preserving aspect ratio.
// Narrower images pass through untouched.
func downscale(src image.Image) image.Image {
	bounds := src.Bounds()
	width := bounds.Dx()
	if width <= maxImageWidth {
		return src
	}
	height := bounds.Dy() * maxImageWidth / width
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("jpeg.Encode: %v", err)
	}
	return buf.Bytes(), nil
}
