package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/menta2k/face-parts/pkg/analyzer"
	"github.com/menta2k/face-parts/pkg/detection"
	"github.com/menta2k/face-parts/pkg/processing"
	"github.com/menta2k/face-parts/pkg/wire"
)

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Print detected faces and landmarks as JSON",
	Long: `Run the configured detector on an image and print its observations in
the landmark file format. The output can be saved next to the image and
used later with the file backend.

Examples:
  faceparts detect --in photo.jpg --backend llamacpp --model minicpm > photo.landmarks.json

  # Check that the model can see the image at all
  faceparts detect --in photo.jpg --backend ollama --model llava --test`,
	Args: cobra.NoArgs,
	RunE: runDetect,
}

func init() {
	rootCmd.AddCommand(detectCmd)

	addDetectorFlags(detectCmd)
	detectCmd.Flags().Bool("test", false, "only ask the model to describe the image")
	detectCmd.Flags().String("save", "", "also write the JSON to this file")
}

func runDetect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDetectorFlags(cmd, &cfg.Detector)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	in := mustGetString(cmd, "in")
	img, err := analyzer.NewWithConfig(analyzerConfig(cfg)).LoadImageSmart(in)
	if err != nil {
		return err
	}
	img = processing.NewProcessor().Normalize(img)

	d, err := newDetector(cfg.Detector, in, mustGetString(cmd, "landmarks"))
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "test") {
		vd, ok := d.(*detection.VisionDetector)
		if !ok {
			return fmt.Errorf("--test needs a model backend, got %s", cfg.Detector.Backend)
		}
		answer, err := vd.TestVision(context.Background(), img)
		if err != nil {
			return err
		}
		fmt.Println(answer)
		return nil
	}

	outcome := <-detection.Run(context.Background(), d, img)
	if outcome.Err != nil {
		return fmt.Errorf("detection failed: %w", outcome.Err)
	}
	logger.WithField("faces", len(outcome.Faces)).Info("detection complete")

	data, err := wire.Marshal(outcome.Faces)
	if err != nil {
		return err
	}
	if path := mustGetString(cmd, "save"); path != "" {
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return err
		}
		logger.Infof("wrote %s", path)
	}
	fmt.Println(string(data))
	return nil
}
