package client

import (
	"context"

	"github.com/menta2k/face-parts/pkg/types"
)

// VisionClient is a vision-model backend able to locate facial landmarks
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
	DetectLandmarks(ctx context.Context, model, prompt, imgB64 string) ([]types.FaceObservation, error)
}
