// Package render draws landmark outlines onto a copy of the source image.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/vector"

	"github.com/menta2k/face-parts/pkg/geometry"
	"github.com/menta2k/face-parts/pkg/types"
)

// Stroke style for the composite. Width is in points and scales with pixel density.
var (
	StrokeColor = color.NRGBA{0, 255, 0, 255}
	StrokeWidth = 2.0
)

// Composite returns a new image with every face box and landmark region
// outlined. The source image is never modified.
func Composite(src *types.Image, faces []geometry.MappedFace) *types.Image {
	if !src.Usable() {
		return nil
	}

	canvas := imaging.Clone(src.Image)
	b := canvas.Bounds()
	width := StrokeWidth * src.ScaleFactor()

	r := vector.NewRasterizer(b.Dx(), b.Dy())
	for _, face := range faces {
		strokeRect(r, face.Rect, width)
		for _, region := range face.Regions {
			strokeClosed(r, region.Points, width)
		}
	}

	mask := image.NewAlpha(b)
	r.Draw(mask, b, image.Opaque, image.Point{})
	draw.DrawMask(canvas, b, image.NewUniform(StrokeColor), image.Point{}, mask, image.Point{}, draw.Over)

	return &types.Image{Image: canvas, Scale: src.Scale, Orientation: types.OrientationUp}
}

func strokeRect(r *vector.Rasterizer, rect geometry.Rect, width float64) {
	x0, y0 := rect.X, rect.Y
	x1, y1 := rect.X+rect.Width, rect.Y+rect.Height
	strokeClosed(r, []geometry.Point{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}}, width)
}

// strokeClosed outlines a polyline and closes it back to its first point
func strokeClosed(r *vector.Rasterizer, pts []geometry.Point, width float64) {
	if len(pts) < 2 {
		return
	}
	for i := range pts {
		strokeSegment(r, pts[i], pts[(i+1)%len(pts)], width)
	}
}

// strokeSegment adds a square-capped quad around a-b. Every quad shares the
// same winding so overlaps at joins accumulate instead of cancelling.
func strokeSegment(r *vector.Rasterizer, a, b geometry.Point, width float64) {
	if !finite(a) || !finite(b) {
		return
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	hw := width / 2
	ux, uy := dx/l*hw, dy/l*hw
	nx, ny := -uy, ux
	ax, ay := a.X-ux, a.Y-uy
	bx, by := b.X+ux, b.Y+uy

	r.MoveTo(float32(ax+nx), float32(ay+ny))
	r.LineTo(float32(bx+nx), float32(by+ny))
	r.LineTo(float32(bx-nx), float32(by-ny))
	r.LineTo(float32(ax-nx), float32(ay-ny))
	r.ClosePath()
}

// PolygonMask rasterizes the closed polygon into an alpha mask covering
// bounds. Mask pixel (0,0) corresponds to bounds.Min in pixel space.
func PolygonMask(pts []geometry.Point, bounds image.Rectangle) *image.Alpha {
	mask := image.NewAlpha(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	if len(pts) < 3 || bounds.Empty() {
		return mask
	}
	for _, p := range pts {
		if !finite(p) {
			return mask
		}
	}

	ox, oy := float64(bounds.Min.X), float64(bounds.Min.Y)
	r := vector.NewRasterizer(bounds.Dx(), bounds.Dy())
	r.MoveTo(float32(pts[0].X-ox), float32(pts[0].Y-oy))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X-ox), float32(p.Y-oy))
	}
	r.ClosePath()
	r.Draw(mask, mask.Bounds(), image.Opaque, image.Point{})
	return mask
}

func finite(p geometry.Point) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
