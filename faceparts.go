// Package faceparts outlines and extracts facial landmark regions from a
// captured still image.
//
// A Detector (an on-device model export, a vision LLM, or anything else)
// reports faces as normalized boxes with named landmark outlines. The
// Extractor maps those into pixel space, draws every outline onto a single
// composite copy of the image, and cuts each region out of the untouched
// source, either as a bounding-box crop or as an alpha-masked polygon.
//
// Basic usage:
//
//	detector := detection.NewJSONDetector("selfie.landmarks.json")
//	extractor := faceparts.New(detector)
//
//	img, err := faceparts.LoadImage("selfie.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	for i, face := range extractor.Extract(context.Background(), img) {
//		if face.LeftEye != nil {
//			fmt.Printf("face %d: left eye %v\n", i, face.LeftEye.Bounds())
//		}
//	}
//
// Decode failures, detector failures and photos without faces all produce an
// empty result; callers show the original image in that case. The reason is
// logged, never returned.
package faceparts

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/menta2k/face-parts/internal/logging"
	"github.com/menta2k/face-parts/pkg/analyzer"
	"github.com/menta2k/face-parts/pkg/cropper"
	"github.com/menta2k/face-parts/pkg/detection"
	"github.com/menta2k/face-parts/pkg/geometry"
	"github.com/menta2k/face-parts/pkg/processing"
	"github.com/menta2k/face-parts/pkg/render"
	"github.com/menta2k/face-parts/pkg/types"
)

// Version of the face parts library
const Version = "1.0.0"

// Extractor runs detection and region extraction for captured images
type Extractor struct {
	detector  detection.Detector
	analyzer  *analyzer.ImageAnalyzer
	processor *processing.Processor
	cropper   *cropper.RegionCropper
	log       logrus.FieldLogger
}

// Options configures an Extractor
type Options struct {
	CropMode types.CropMode
	Analyzer *analyzer.Config
	Logger   logrus.FieldLogger
}

// New creates an Extractor with bounding-box crops and no logging
func New(d detection.Detector) *Extractor {
	return NewWithConfig(d, Options{})
}

// NewWithConfig creates an Extractor with custom options
func NewWithConfig(d detection.Detector, opts Options) *Extractor {
	a := analyzer.New()
	if opts.Analyzer != nil {
		a = analyzer.NewWithConfig(*opts.Analyzer)
	}
	log := opts.Logger
	if log == nil {
		log = logging.Discard()
	}
	return &Extractor{
		detector:  d,
		analyzer:  a,
		processor: processing.NewProcessor(),
		cropper:   cropper.NewWithConfig(cropper.CropConfig{Mode: opts.CropMode}),
		log:       log,
	}
}

// Extract blocks until detection and extraction finish
func (e *Extractor) Extract(ctx context.Context, src *types.Image) []types.FaceParts {
	return <-e.ExtractAsync(ctx, src)
}

// ExtractAsync starts a request and returns a channel that yields exactly
// one result, possibly empty, and is then closed. Orientation fixes, drawing
// and cropping run on a worker goroutine; delivering results to UI state is
// up to the caller.
func (e *Extractor) ExtractAsync(ctx context.Context, src *types.Image) <-chan []types.FaceParts {
	out := make(chan []types.FaceParts, 1)
	log := e.log.WithField(logging.RequestIDKey, uuid.NewString())

	if !src.Usable() {
		log.Warn("decode failure: image has no usable pixel buffer")
		out <- nil
		close(out)
		return out
	}

	go func() {
		defer close(out)
		img := e.processor.Normalize(src)
		out <- e.complete(log, img, <-detection.Run(ctx, e.detector, img))
	}()
	return out
}

// DetectAndExtract calls completion exactly once, from a worker goroutine
func (e *Extractor) DetectAndExtract(ctx context.Context, src *types.Image, completion func([]types.FaceParts)) {
	results := e.ExtractAsync(ctx, src)
	go func() {
		completion(<-results)
	}()
}

// ExtractFromReader decodes captured bytes and extracts from them.
// Undecodable input yields an empty result.
func (e *Extractor) ExtractFromReader(ctx context.Context, r io.Reader) []types.FaceParts {
	img, err := e.analyzer.LoadImageFromReader(r)
	if err != nil {
		e.log.WithError(err).Warn("decode failure")
		return nil
	}
	return e.Extract(ctx, img)
}

func (e *Extractor) complete(log logrus.FieldLogger, img *types.Image, outcome detection.Outcome) (parts []types.FaceParts) {
	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", fmt.Sprint(r)).Error("extraction failed")
			parts = nil
		}
	}()

	if outcome.Err != nil {
		log.WithError(outcome.Err).Warn("detection failure")
		return nil
	}
	if len(outcome.Faces) == 0 {
		log.Info("no faces found")
		return nil
	}

	parts = Build(img, outcome.Faces, e.cropper.Mode())
	log.WithFields(logrus.Fields{
		"faces": len(parts),
		"mode":  e.cropper.Mode(),
	}).Debug("extracted face parts")
	return parts
}

// Build maps observations onto src, draws the shared composite and crops
// every present region. It is synchronous and has no side effects.
func Build(src *types.Image, faces []types.FaceObservation, mode types.CropMode) []types.FaceParts {
	if !src.Usable() || len(faces) == 0 {
		return nil
	}

	b := src.Bounds()
	mapped := geometry.MapFaces(faces, b.Dx(), b.Dy())
	composite := render.Composite(src, mapped)
	c := cropper.NewWithConfig(cropper.CropConfig{Mode: mode})

	parts := make([]types.FaceParts, 0, len(mapped))
	for _, face := range mapped {
		p := types.FaceParts{
			OriginalWithDrawings: composite,
			FaceCropped:          cropper.CropRect(src, face.Rect),
		}
		for _, name := range types.RegionNames() {
			if region, ok := face.Region(name); ok {
				p.SetRegion(name, c.Crop(src, region.Points))
			}
		}
		parts = append(parts, p)
	}
	return parts
}

// LoadImage loads a captured image from a file path or URL, upright
func LoadImage(source string) (*types.Image, error) {
	return analyzer.New().LoadImageSmart(source)
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
