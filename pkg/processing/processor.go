package processing

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"

	"github.com/menta2k/face-parts/pkg/types"
)

// Processor handles image processing operations
type Processor struct{}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Normalize returns an upright copy of img. Upright images are returned as is.
func (p *Processor) Normalize(img *types.Image) *types.Image {
	if img == nil || img.Image == nil {
		return img
	}
	switch img.Orientation {
	case 0, types.OrientationUp:
		return img
	}
	return &types.Image{
		Image:       Orient(img.Image, img.Orientation),
		Scale:       img.Scale,
		Orientation: types.OrientationUp,
	}
}

// Orient applies the transform that makes an image with the given EXIF
// orientation display upright.
func Orient(img image.Image, o types.Orientation) image.Image {
	switch o {
	case types.OrientationUpMirrored:
		return imaging.FlipH(img)
	case types.OrientationDown:
		return imaging.Rotate180(img)
	case types.OrientationDownMirrored:
		return imaging.FlipV(img)
	case types.OrientationLeftMirrored:
		return imaging.Transpose(img)
	case types.OrientationRight:
		return imaging.Rotate270(img)
	case types.OrientationRightMirrored:
		return imaging.Transverse(img)
	case types.OrientationLeft:
		return imaging.Rotate90(img)
	}
	return img
}

// PrepareImageForModel converts an image to base64 for sending to vision models
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		w, h := b.Dx(), b.Dy()
		if w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	switch strings.ToLower(format) {
	case "png":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(&buf, img); err != nil {
			return "", err
		}
	default: // jpg
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return "", err
		}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// HasAlpha reports whether a format keeps transparency
func HasAlpha(format string) bool {
	switch strings.ToLower(format) {
	case "png", "webp":
		return true
	}
	return false
}

// SaveImage saves an image to a file with the specified format and quality
func (p *Processor) SaveImage(img image.Image, path, format string, quality int, lossless bool) error {
	switch strings.ToLower(format) {
	case "webp":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		opts := &webp.Options{Lossless: lossless, Quality: float32(quality)}
		if err := webp.Encode(f, img, opts); err != nil {
			return fmt.Errorf("failed to encode webp: %w", err)
		}
		return nil
	case "png":
		return imaging.Save(img, path)
	case "jpg", "jpeg":
		return imaging.Save(img, path, imaging.JPEGQuality(quality))
	default:
		return fmt.Errorf("unsupported output format: %s", format)
	}
}
