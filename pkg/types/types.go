package types

import "image"

// Box represents a normalized bounding box with coordinates in [0,1] range.
// The origin is bottom-left and Y points up, as reported by landmark detectors.
type Box struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Point is a normalized landmark point relative to its face's bounding box (Y up)
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// RegionName identifies a facial landmark region
type RegionName string

const (
	FaceContour RegionName = "faceContour"
	LeftEye     RegionName = "leftEye"
	RightEye    RegionName = "rightEye"
	Nose        RegionName = "nose"
	OuterLips   RegionName = "outerLips"
)

// RegionNames returns the known regions in drawing order
func RegionNames() []RegionName {
	return []RegionName{FaceContour, LeftEye, RightEye, Nose, OuterLips}
}

// LandmarkRegion is a named closed polygon of normalized points
type LandmarkRegion struct {
	Name   RegionName `json:"name"`
	Points []Point    `json:"points"`
}

// FaceObservation is one detected face
type FaceObservation struct {
	BoundingBox Box              `json:"boundingBox"`
	Landmarks   []LandmarkRegion `json:"landmarks,omitempty"`
}

// Region looks up a landmark region by name. A missing region is not an error.
func (f FaceObservation) Region(name RegionName) (LandmarkRegion, bool) {
	for _, r := range f.Landmarks {
		if r.Name == name {
			return r, true
		}
	}
	return LandmarkRegion{}, false
}

// Orientation mirrors the eight EXIF orientations of a captured still
type Orientation int

const (
	OrientationUp Orientation = iota + 1
	OrientationUpMirrored
	OrientationDown
	OrientationDownMirrored
	OrientationLeftMirrored
	OrientationRight
	OrientationRightMirrored
	OrientationLeft
)

// Image is an immutable pixel buffer with its pixel density.
// Every transform produces a new Image; nothing mutates one in place.
type Image struct {
	image.Image
	Scale       float64
	Orientation Orientation
}

// NewImage wraps pixels as an upright Image with scale 1
func NewImage(img image.Image) *Image {
	return &Image{Image: img, Scale: 1, Orientation: OrientationUp}
}

// ScaleFactor returns the pixel density, treating unset values as 1
func (i *Image) ScaleFactor() float64 {
	if i == nil || i.Scale <= 0 {
		return 1
	}
	return i.Scale
}

// Usable reports whether the image has a decodable, non-empty pixel buffer
func (i *Image) Usable() bool {
	return i != nil && i.Image != nil && !i.Bounds().Empty()
}

// CropMode selects how landmark regions are cut out of the source image
type CropMode string

const (
	CropBoundingBox CropMode = "bbox"
	CropPolygon     CropMode = "polygon"
)

// FaceParts is the per-face output of one detection call.
// OriginalWithDrawings is the same pointer for every face of a call.
type FaceParts struct {
	OriginalWithDrawings *Image
	FaceCropped          *Image
	FaceContour          *Image
	LeftEye              *Image
	RightEye             *Image
	Nose                 *Image
	Lips                 *Image
}

// Region returns the crop for a landmark region, or nil when absent
func (p FaceParts) Region(name RegionName) *Image {
	switch name {
	case FaceContour:
		return p.FaceContour
	case LeftEye:
		return p.LeftEye
	case RightEye:
		return p.RightEye
	case Nose:
		return p.Nose
	case OuterLips:
		return p.Lips
	}
	return nil
}

// SetRegion stores the crop for a landmark region
func (p *FaceParts) SetRegion(name RegionName, img *Image) {
	switch name {
	case FaceContour:
		p.FaceContour = img
	case LeftEye:
		p.LeftEye = img
	case RightEye:
		p.RightEye = img
	case Nose:
		p.Nose = img
	case OuterLips:
		p.Lips = img
	}
}
