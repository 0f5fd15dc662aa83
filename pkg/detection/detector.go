package detection

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/menta2k/face-parts/pkg/types"
	"github.com/menta2k/face-parts/pkg/wire"
)

var (
	// ErrNoImage is returned when a detector is handed an image without pixels
	ErrNoImage = errors.New("no usable image")
	// ErrDetectorPanic wraps a panic raised inside a detector
	ErrDetectorPanic = errors.New("detector panicked")
)

// Detector finds faces and their landmark regions in an upright image.
// An empty result with a nil error means no faces were found.
type Detector interface {
	Detect(ctx context.Context, img *types.Image) ([]types.FaceObservation, error)
}

// DetectorFunc adapts a plain function to the Detector interface
type DetectorFunc func(ctx context.Context, img *types.Image) ([]types.FaceObservation, error)

// Detect calls f(ctx, img)
func (f DetectorFunc) Detect(ctx context.Context, img *types.Image) ([]types.FaceObservation, error) {
	return f(ctx, img)
}

// Outcome is the single completion of an asynchronous detection
type Outcome struct {
	Faces []types.FaceObservation
	Err   error
}

// Run starts d on its own goroutine. The returned channel yields exactly one
// Outcome and is then closed. A panicking detector yields ErrDetectorPanic.
func Run(ctx context.Context, d Detector, img *types.Image) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		done <- detect(ctx, d, img)
	}()
	return done
}

func detect(ctx context.Context, d Detector, img *types.Image) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Err: fmt.Errorf("%w: %v", ErrDetectorPanic, r)}
		}
	}()

	faces, err := d.Detect(ctx, img)
	if err != nil {
		return Outcome{Err: err}
	}
	return Outcome{Faces: faces}
}

// StaticDetector returns fixed observations, or Err when set
type StaticDetector struct {
	Faces []types.FaceObservation
	Err   error
}

// Detect returns the configured observations
func (s StaticDetector) Detect(ctx context.Context, img *types.Image) ([]types.FaceObservation, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Faces, nil
}

// JSONDetector replays observations stored in a wire-format sidecar file,
// typically exported from an on-device landmark detector.
type JSONDetector struct {
	path string
}

// NewJSONDetector creates a detector reading observations from path
func NewJSONDetector(path string) *JSONDetector {
	return &JSONDetector{path: path}
}

// Detect reads and parses the sidecar file
func (j *JSONDetector) Detect(ctx context.Context, img *types.Image) ([]types.FaceObservation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(j.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read landmark file: %w", err)
	}
	faces, err := wire.Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse landmark file %s: %w", j.path, err)
	}
	return faces, nil
}
