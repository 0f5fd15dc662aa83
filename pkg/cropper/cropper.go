package cropper

import (
	"image"
	"image/draw"

	"github.com/disintegration/imaging"

	"github.com/menta2k/face-parts/pkg/geometry"
	"github.com/menta2k/face-parts/pkg/render"
	"github.com/menta2k/face-parts/pkg/types"
)

// RegionCropper cuts landmark regions out of a source image
type RegionCropper struct {
	config CropConfig
}

// CropConfig holds configuration for region cropping
type CropConfig struct {
	Mode types.CropMode
}

// New creates a new RegionCropper using bounding-box crops
func New() *RegionCropper {
	return &RegionCropper{
		config: CropConfig{
			Mode: types.CropBoundingBox,
		},
	}
}

// NewWithConfig creates a new RegionCropper with custom configuration
func NewWithConfig(config CropConfig) *RegionCropper {
	if config.Mode == "" {
		config.Mode = types.CropBoundingBox
	}
	return &RegionCropper{config: config}
}

// Mode returns the configured crop mode
func (c *RegionCropper) Mode() types.CropMode {
	return c.config.Mode
}

// Crop extracts the region outlined by pts using the configured mode.
// It returns nil when the region is empty or degenerate.
func (c *RegionCropper) Crop(src *types.Image, pts []geometry.Point) *types.Image {
	if c.config.Mode == types.CropPolygon {
		return CropPolygon(src, pts)
	}
	return CropBoundingBox(src, pts)
}

// CropRect copies the part of src inside rect. The rectangle is clamped to
// the image bounds; nil is returned when nothing positive remains.
func CropRect(src *types.Image, rect geometry.Rect) *types.Image {
	if !src.Usable() || rect.Empty() || !rect.Finite() {
		return nil
	}

	bounds := src.Bounds()
	r := rect.Integer().Add(bounds.Min).Intersect(bounds)
	if r.Empty() {
		return nil
	}

	return &types.Image{
		Image:       imaging.Crop(src.Image, r),
		Scale:       src.Scale,
		Orientation: types.OrientationUp,
	}
}

// CropBoundingBox crops src to the minimal rectangle containing pts
func CropBoundingBox(src *types.Image, pts []geometry.Point) *types.Image {
	rect, ok := geometry.BoundingRect(pts)
	if !ok {
		return nil
	}
	return CropRect(src, rect)
}

// CropPolygon returns an image sized to the bounding rectangle of pts,
// clamped to the source, in which only the polygon interior carries source
// pixels. Everything outside the polygon stays transparent.
func CropPolygon(src *types.Image, pts []geometry.Point) *types.Image {
	if !src.Usable() {
		return nil
	}
	rect, ok := geometry.BoundingRect(pts)
	if !ok || rect.Empty() || !rect.Finite() {
		return nil
	}

	bounds := src.Bounds()
	r := rect.Integer().Intersect(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if r.Empty() {
		return nil
	}

	mask := render.PolygonMask(pts, r)
	dst := image.NewNRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.DrawMask(dst, dst.Bounds(), src.Image, bounds.Min.Add(r.Min), mask, image.Point{}, draw.Over)

	return &types.Image{Image: dst, Scale: src.Scale, Orientation: types.OrientationUp}
}
