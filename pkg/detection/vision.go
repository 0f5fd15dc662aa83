package detection

import (
	"context"
	"fmt"

	"github.com/menta2k/face-parts/pkg/client"
	"github.com/menta2k/face-parts/pkg/processing"
	"github.com/menta2k/face-parts/pkg/types"
)

// SimpleTestPrompt for testing if the model can see images
const SimpleTestPrompt = `What do you see in this image? Describe it briefly.`

// DefaultPrompt asks a vision model for faces and landmark outlines
const DefaultPrompt = `You are a facial landmark locator.

Return JSON only:
{
  "faces": [
    {
      "boundingBox": {"x": 0.0, "y": 0.0, "width": 0.0, "height": 0.0},
      "landmarks": {
        "faceContour": [[0.0, 0.0]],
        "leftEye": [[0.0, 0.0]],
        "rightEye": [[0.0, 0.0]],
        "nose": [[0.0, 0.0]],
        "outerLips": [[0.0, 0.0]]
      }
    }
  ]
}

HARD RULES
- boundingBox is normalized to the whole image in [0,1] (NOT pixels).
- The origin is the BOTTOM-LEFT corner of the image and y grows UPWARDS.
- Landmark points are normalized to the face's own boundingBox, same convention.
- Each landmark is an ordered outline; the last point connects back to the first.
- Omit a landmark you cannot see. Do not invent faces.
- If there are no faces, return {"faces": []}.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// VisionConfig holds configuration for model-backed detection
type VisionConfig struct {
	Model       string
	Prompt      string
	SendFormat  string
	SendSize    int
	SendQuality int
}

// VisionDetector locates landmarks by prompting a vision model
type VisionDetector struct {
	client    client.VisionClient
	processor *processing.Processor
	config    VisionConfig
}

// NewVisionDetector creates a detector with default send settings
func NewVisionDetector(c client.VisionClient, model string) *VisionDetector {
	return NewVisionDetectorWithConfig(c, VisionConfig{Model: model})
}

// NewVisionDetectorWithConfig creates a detector with custom configuration
func NewVisionDetectorWithConfig(c client.VisionClient, config VisionConfig) *VisionDetector {
	if config.Prompt == "" {
		config.Prompt = DefaultPrompt
	}
	if config.SendFormat == "" {
		config.SendFormat = "jpg"
	}
	if config.SendQuality <= 0 {
		config.SendQuality = 85
	}
	return &VisionDetector{
		client:    c,
		processor: processing.NewProcessor(),
		config:    config,
	}
}

// Detect sends the image to the model and returns its observations.
// Resizing before sending is safe since all coordinates are normalized.
func (d *VisionDetector) Detect(ctx context.Context, img *types.Image) ([]types.FaceObservation, error) {
	if !img.Usable() {
		return nil, ErrNoImage
	}

	imgB64, err := d.processor.PrepareImageForModel(img.Image, d.config.SendFormat, d.config.SendSize, d.config.SendQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare image for model: %w", err)
	}

	faces, err := d.client.DetectLandmarks(ctx, d.config.Model, d.config.Prompt, imgB64)
	if err != nil {
		return nil, fmt.Errorf("landmark detection failed: %w", err)
	}
	return dropEmptyFaces(faces), nil
}

// TestVision tests if the model can actually see the image with a simple prompt
func (d *VisionDetector) TestVision(ctx context.Context, img *types.Image) (string, error) {
	if !img.Usable() {
		return "", ErrNoImage
	}
	imgB64, err := d.processor.PrepareImageForModel(img.Image, d.config.SendFormat, d.config.SendSize, d.config.SendQuality)
	if err != nil {
		return "", err
	}
	return d.client.SimpleQuery(ctx, d.config.Model, SimpleTestPrompt, imgB64)
}

// dropEmptyFaces removes placeholder faces models emit with a zero box and
// no landmarks. Out-of-range boxes are kept; later stages tolerate them.
func dropEmptyFaces(faces []types.FaceObservation) []types.FaceObservation {
	out := faces[:0:0]
	for _, f := range faces {
		if f.BoundingBox == (types.Box{}) && len(f.Landmarks) == 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}
