package main

import (
	"fmt"

	"github.com/menta2k/face-parts/internal/config"
	"github.com/menta2k/face-parts/internal/utils"
	"github.com/menta2k/face-parts/pkg/client"
	"github.com/menta2k/face-parts/pkg/detection"
	"github.com/menta2k/face-parts/pkg/llamacpp"
	"github.com/menta2k/face-parts/pkg/ollama"
)

// newVisionClient creates the model client for the configured backend
func newVisionClient(cfg config.DetectorConfig) (client.VisionClient, error) {
	url := cfg.URL
	switch cfg.Backend {
	case "ollama":
		if url == "" {
			url = "http://localhost:11435/api/chat"
		}
		c, err := ollama.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
		return c, nil
	case "llamacpp":
		c, err := llamacpp.NewClient(url)
		if err != nil {
			return nil, fmt.Errorf("failed to create llama.cpp client: %w", err)
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown backend: %s (use 'file', 'ollama' or 'llamacpp')", cfg.Backend)
	}
}

// newDetector builds the landmark detector for an input image
func newDetector(cfg config.DetectorConfig, input, landmarks string) (detection.Detector, error) {
	if cfg.Backend == "file" {
		if landmarks == "" {
			landmarks = utils.SidecarPath(input)
		}
		if !utils.FileExists(landmarks) {
			return nil, fmt.Errorf("landmark file not found: %s", landmarks)
		}
		return detection.NewJSONDetector(landmarks), nil
	}

	c, err := newVisionClient(cfg)
	if err != nil {
		return nil, err
	}
	return detection.NewVisionDetectorWithConfig(c, detection.VisionConfig{
		Model:       cfg.Model,
		SendFormat:  cfg.SendFormat,
		SendSize:    cfg.SendSize,
		SendQuality: cfg.SendQuality,
	}), nil
}
