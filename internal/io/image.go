package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"net/http"

	"golang.org/x/image/draw"
)

const jpegQuality = 90

// ErrEmptyImage is returned when there are no image bytes to process.
var ErrEmptyImage = errors.New("empty image data")

// CoverOptions controls how cover art is prepared for embedding.
type CoverOptions struct {
	// Resize shrinks images larger than MaxSize on either side.
	Resize  bool
	MaxSize int

	// ConvertToJPEG re-encodes non-JPEG images as JPEG.
	ConvertToJPEG bool
}

// Cover is prepared cover art ready to be embedded as an ID3 picture.
type Cover struct {
	Data     []byte
	MimeType string
}

// ImageService prepares cover art extracted from FLAC files.
//
// Example usage:
//
//	svc := NewImageService()
//
//	// Cover art exported by metaflac
//	raw, _ := reader.ReadArtwork(ctx, "/music/flac/01.flac")
//
//	cover, err := svc.PrepareCover(ctx, raw, CoverOptions{Resize: true, MaxSize: 1000, ConvertToJPEG: true})
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// PrepareCover applies opts to data. Images that need no change are
// returned as-is so an embedded JPEG is not re-encoded for nothing.
func (s *ImageService) PrepareCover(ctx context.Context, data []byte, opts CoverOptions) (*Cover, error) {
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mime := http.DetectContentType(data)
	needsJPEG := opts.ConvertToJPEG && mime != "image/jpeg"

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	needsResize := opts.Resize && opts.MaxSize > 0 && (cfg.Width > opts.MaxSize || cfg.Height > opts.MaxSize)

	if !needsJPEG && !needsResize {
		return &Cover{Data: data, MimeType: mime}, nil
	}
	if needsResize {
		out, err := s.ResizeImage(ctx, data, opts.MaxSize, opts.MaxSize)
		if err != nil {
			return nil, err
		}
		return &Cover{Data: out, MimeType: "image/jpeg"}, nil
	}
	out, err := s.ConvertToJPEG(ctx, data)
	if err != nil {
		return nil, err
	}
	return &Cover{Data: out, MimeType: "image/jpeg"}, nil
}

// ResizeImage scales an image to fit within maxWidth x maxHeight,
// preserving the aspect ratio, and returns it JPEG encoded. Images already
// within bounds keep their size but are still re-encoded.
//
// Catmull-Rom is used for the scaling.
//
//	// A 1500x1000 image becomes 1000x666
//	resized, err := svc.ResizeImage(ctx, imageData, 1000, 1000)
func (s *ImageService) ResizeImage(ctx context.Context, data []byte, maxWidth, maxHeight int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := fitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	return encodeJPEG(dst)
}

// ConvertToJPEG decodes data and re-encodes it as JPEG.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return encodeJPEG(img)
}

func fitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width <= maxWidth && height <= maxHeight {
		return width, height
	}
	ratio := float64(width) / float64(height)
	if float64(maxWidth)/float64(maxHeight) > ratio {
		// height is the limiting side
		return max(1, int(float64(maxHeight)*ratio)), maxHeight
	}
	return maxWidth, max(1, int(float64(maxWidth)/ratio))
}

func encodeJPEG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
