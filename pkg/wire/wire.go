// Package wire reads and writes landmark observations as JSON.
//
// The format is shared by model backends, sidecar files and the CLI:
//
//	{"faces": [{
//	  "boundingBox": {"x": 0.2, "y": 0.3, "width": 0.4, "height": 0.4},
//	  "landmarks": {"leftEye": [{"x": 0.2, "y": 0.6}, [0.3, 0.6]]}
//	}]}
//
// Coordinates are normalized with a bottom-left origin. Points may be
// objects or two-element arrays. A bare array of faces is also accepted.
package wire

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/menta2k/face-parts/pkg/types"
)

// Document is the top-level wire object
type Document struct {
	Faces []Face `json:"faces"`
}

// Face is one observation on the wire
type Face struct {
	BoundingBox Box                `json:"boundingBox"`
	Landmarks   map[string][]Point `json:"landmarks,omitempty"`
}

// Box accepts both width/height and w/h keys
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	W      float64 `json:"w,omitempty"`
	H      float64 `json:"h,omitempty"`
}

// Point is a normalized landmark point
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UnmarshalJSON accepts {"x":..,"y":..} and [x, y]
func (p *Point) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var pair []float64
		if err := json.Unmarshal(data, &pair); err != nil {
			return err
		}
		if len(pair) != 2 {
			return fmt.Errorf("point array must have 2 elements, got %d", len(pair))
		}
		p.X, p.Y = pair[0], pair[1]
		return nil
	}
	type plain Point
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = Point(v)
	return nil
}

// Parse decodes observations from raw JSON, tolerating the code fences,
// comments and trailing commas vision models like to add.
func Parse(raw string) ([]types.FaceObservation, error) {
	raw = sanitizeModelJSON(raw)
	if raw == "" {
		return nil, fmt.Errorf("empty landmark document")
	}

	var doc Document
	if strings.HasPrefix(raw, "[") {
		if err := json.Unmarshal([]byte(raw), &doc.Faces); err != nil {
			return nil, fmt.Errorf("failed to parse landmark array: %w", err)
		}
	} else if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse landmark document: %w", err)
	}

	return doc.Observations(), nil
}

// Observations converts the wire document into domain observations
func (d Document) Observations() []types.FaceObservation {
	out := make([]types.FaceObservation, 0, len(d.Faces))
	for _, f := range d.Faces {
		out = append(out, f.observation())
	}
	return out
}

func (f Face) observation() types.FaceObservation {
	w, h := f.BoundingBox.Width, f.BoundingBox.Height
	if w == 0 && h == 0 {
		w, h = f.BoundingBox.W, f.BoundingBox.H
	}

	obs := types.FaceObservation{
		BoundingBox: types.Box{X: f.BoundingBox.X, Y: f.BoundingBox.Y, W: w, H: h},
	}
	for _, name := range regionOrder(f.Landmarks) {
		pts := f.Landmarks[name]
		region := types.LandmarkRegion{Name: types.RegionName(name), Points: make([]types.Point, len(pts))}
		for i, p := range pts {
			region.Points[i] = types.Point{X: p.X, Y: p.Y}
		}
		obs.Landmarks = append(obs.Landmarks, region)
	}
	return obs
}

// regionOrder lists known regions first in drawing order, then any others by name
func regionOrder(landmarks map[string][]Point) []string {
	var names, extra []string
	known := map[string]bool{}
	for _, n := range types.RegionNames() {
		known[string(n)] = true
		if _, ok := landmarks[string(n)]; ok {
			names = append(names, string(n))
		}
	}
	for n := range landmarks {
		if !known[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

// FromObservations builds a wire document from domain observations
func FromObservations(faces []types.FaceObservation) Document {
	doc := Document{Faces: make([]Face, 0, len(faces))}
	for _, f := range faces {
		face := Face{BoundingBox: Box{X: f.BoundingBox.X, Y: f.BoundingBox.Y, Width: f.BoundingBox.W, Height: f.BoundingBox.H}}
		if len(f.Landmarks) > 0 {
			face.Landmarks = make(map[string][]Point, len(f.Landmarks))
		}
		for _, r := range f.Landmarks {
			pts := make([]Point, len(r.Points))
			for i, p := range r.Points {
				pts[i] = Point{X: p.X, Y: p.Y}
			}
			face.Landmarks[string(r.Name)] = pts
		}
		doc.Faces = append(doc.Faces, face)
	}
	return doc
}

// Marshal encodes observations as an indented wire document
func Marshal(faces []types.FaceObservation) ([]byte, error) {
	return json.MarshalIndent(FromObservations(faces), "", "  ")
}

var (
	reBlock = regexp.MustCompile(`(?s)/\*.*?\*/`)
	reLine  = regexp.MustCompile(`(?m)^\s*//.*$`)
)

// sanitizeModelJSON removes code fences, comments, and trailing commas
func sanitizeModelJSON(raw string) string {
	raw = strings.TrimSpace(raw)

	// Strip triple-backtick fences if present
	if strings.HasPrefix(raw, "```") {
		if i := strings.Index(raw, "\n"); i >= 0 {
			raw = raw[i+1:]
		}
		if j := strings.LastIndex(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	raw = strings.Trim(strings.TrimSpace(raw), "`")

	raw = reBlock.ReplaceAllString(raw, "")
	raw = reLine.ReplaceAllString(raw, "")
	raw = stripTrailingCommas(raw)

	// Keep only the outermost object or array
	open, closing := "{", "}"
	if i, j := strings.Index(raw, "["), strings.Index(raw, "{"); i >= 0 && (j < 0 || i < j) {
		open, closing = "[", "]"
	}
	if start := strings.Index(raw, open); start >= 0 {
		if end := strings.LastIndex(raw, closing); end > start {
			raw = raw[start : end+1]
		}
	}
	return strings.TrimSpace(raw)
}

// stripTrailingCommas drops commas that directly precede a closing brace or
// bracket. Commas inside string values are kept.
func stripTrailingCommas(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	inString, escaped := false, false
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		switch {
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == ',':
			j := i + 1
			for j < len(raw) && strings.IndexByte(" \t\r\n", raw[j]) >= 0 {
				j++
			}
			if j < len(raw) && (raw[j] == '}' || raw[j] == ']') {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}
