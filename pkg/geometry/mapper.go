// Package geometry converts normalized detector output into pixel space.
//
// Detectors report boxes relative to the whole image and landmark points
// relative to their face box, both with a bottom-left origin and Y up.
// Pixel space has a top-left origin and Y down.
package geometry

import (
	"image"
	"math"

	"github.com/menta2k/face-parts/pkg/types"
)

// Point is an absolute position in source-image pixels
type Point struct {
	X float64
	Y float64
}

// Rect is an axis-aligned rectangle in source-image pixels
type Rect struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Empty reports whether the rectangle has no positive area
func (r Rect) Empty() bool {
	return !(r.Width > 0) || !(r.Height > 0)
}

// Finite reports whether every edge is a finite number
func (r Rect) Finite() bool {
	for _, v := range []float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Integer rounds the rectangle edges to the nearest pixel
func (r Rect) Integer() image.Rectangle {
	return image.Rect(
		int(math.Round(r.X)),
		int(math.Round(r.Y)),
		int(math.Round(r.X+r.Width)),
		int(math.Round(r.Y+r.Height)),
	)
}

// MapFaceBox converts a normalized face box to pixel space, flipping Y
func MapFaceBox(box types.Box, imageWidth, imageHeight int) Rect {
	w, h := float64(imageWidth), float64(imageHeight)
	return Rect{
		X:      box.X * w,
		Y:      (1 - box.Y - box.H) * h,
		Width:  box.W * w,
		Height: box.H * h,
	}
}

// MapRegionPoints converts points normalized to a face box into pixel space.
// ref is the pixel-space face box returned by MapFaceBox.
func MapRegionPoints(points []types.Point, ref Rect) []Point {
	out := make([]Point, len(points))
	for i, p := range points {
		out[i] = Point{
			X: ref.X + p.X*ref.Width,
			Y: ref.Y + (1-p.Y)*ref.Height,
		}
	}
	return out
}

// BoundingRect returns the minimal rectangle containing all points.
// ok is false for an empty sequence.
func BoundingRect(points []Point) (r Rect, ok bool) {
	if len(points) == 0 {
		return Rect{}, false
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range points {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}, true
}

// MappedRegion is a landmark region in pixel space
type MappedRegion struct {
	Name   types.RegionName
	Points []Point
}

// MappedFace is a face observation in pixel space
type MappedFace struct {
	Rect    Rect
	Regions []MappedRegion
}

// Region looks up a mapped region by name
func (f MappedFace) Region(name types.RegionName) (MappedRegion, bool) {
	for _, r := range f.Regions {
		if r.Name == name {
			return r, true
		}
	}
	return MappedRegion{}, false
}

// MapFace maps a whole observation against an image of the given size
func MapFace(face types.FaceObservation, imageWidth, imageHeight int) MappedFace {
	rect := MapFaceBox(face.BoundingBox, imageWidth, imageHeight)
	mapped := MappedFace{Rect: rect, Regions: make([]MappedRegion, 0, len(face.Landmarks))}
	for _, region := range face.Landmarks {
		mapped.Regions = append(mapped.Regions, MappedRegion{
			Name:   region.Name,
			Points: MapRegionPoints(region.Points, rect),
		})
	}
	return mapped
}

// MapFaces maps every observation against the same image size
func MapFaces(faces []types.FaceObservation, imageWidth, imageHeight int) []MappedFace {
	out := make([]MappedFace, len(faces))
	for i, f := range faces {
		out[i] = MapFace(f, imageWidth, imageHeight)
	}
	return out
}
