package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	faceparts "github.com/menta2k/face-parts"
	"github.com/menta2k/face-parts/internal/config"
	"github.com/menta2k/face-parts/internal/utils"
	"github.com/menta2k/face-parts/pkg/analyzer"
	"github.com/menta2k/face-parts/pkg/processing"
	"github.com/menta2k/face-parts/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Draw landmark outlines and save every face region",
	Long: `Detect faces in an image, write a composite with all outlines drawn in
green, and save a crop for each face and each landmark region found.

Examples:
  # Use landmarks from photo.landmarks.json
  faceparts extract --in photo.jpg

  # Ask a vision model served by Ollama, with transparent polygon crops
  faceparts extract --in photo.jpg --backend ollama --model openbmb/minicpm-v4.5 --mode polygon --ext png`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	addDetectorFlags(extractCmd)
	extractCmd.Flags().String("mode", "", "region crop mode: bbox|polygon")
	extractCmd.Flags().String("out", "", "output directory")
	extractCmd.Flags().String("prefix", "", "output filename prefix")
	extractCmd.Flags().String("ext", "", "output format: jpg|png|webp")
	extractCmd.Flags().Int("quality", 0, "JPEG/WebP output quality (1-100)")
	extractCmd.Flags().Bool("lossless", false, "WebP output lossless mode")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyDetectorFlags(cmd, &cfg.Detector)
	stringOverride(cmd, "mode", &cfg.Extract.CropMode)
	stringOverride(cmd, "out", &cfg.Output.Dir)
	stringOverride(cmd, "prefix", &cfg.Output.Prefix)
	stringOverride(cmd, "ext", &cfg.Output.Format)
	intOverride(cmd, "quality", &cfg.Output.Quality)
	boolOverride(cmd, "lossless", &cfg.Output.Lossless)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	in := mustGetString(cmd, "in")
	detector, err := newDetector(cfg.Detector, in, mustGetString(cmd, "landmarks"))
	if err != nil {
		return err
	}

	mode := types.CropMode(cfg.Extract.CropMode)
	format := strings.ToLower(cfg.Output.Format)
	if mode == types.CropPolygon && !processing.HasAlpha(format) {
		logger.WithField("format", format).Warn("polygon crops need transparency, writing png instead")
		format = "png"
	}

	a := analyzer.NewWithConfig(analyzerConfig(cfg))
	img, err := a.LoadImageSmart(in)
	if err != nil {
		return err
	}
	info := a.GetImageInfo(img)
	logger.WithFields(logrus.Fields{
		"input":  in,
		"width":  info.Width,
		"height": info.Height,
	}).Info("loaded image")

	extractor := faceparts.NewWithConfig(detector, faceparts.Options{
		CropMode: mode,
		Logger:   logger,
	})
	parts := extractor.Extract(context.Background(), img)
	if len(parts) == 0 {
		logger.Info("nothing to write")
		return nil
	}

	if err := utils.EnsureDir(cfg.Output.Dir); err != nil {
		return err
	}
	w := &partWriter{
		processor: processing.NewProcessor(),
		log:       logger,
		input:     in,
		dir:       cfg.Output.Dir,
		prefix:    cfg.Output.Prefix,
		format:    format,
		quality:   cfg.Output.Quality,
		lossless:  cfg.Output.Lossless,
	}
	return w.write(parts)
}

func analyzerConfig(cfg *config.Config) analyzer.Config {
	return analyzer.Config{
		SupportedFormats: cfg.Analyzer.SupportedFormats,
		MinImageSize:     cfg.Analyzer.MinImageSize,
		Scale:            cfg.Analyzer.Scale,
	}
}

type partWriter struct {
	processor *processing.Processor
	log       logrus.FieldLogger
	input     string
	dir       string
	prefix    string
	format    string
	quality   int
	lossless  bool
}

func (w *partWriter) write(parts []types.FaceParts) error {
	// every face shares the composite
	path := utils.CompositeFilename(w.input, w.dir, w.prefix, w.format)
	if err := w.save(parts[0].OriginalWithDrawings, path); err != nil {
		return err
	}

	written := 1
	for i, p := range parts {
		if p.FaceCropped != nil {
			if err := w.save(p.FaceCropped, utils.PartFilename(w.input, w.dir, w.prefix, i+1, "face", w.format)); err != nil {
				return err
			}
			written++
		}
		for _, name := range types.RegionNames() {
			crop := p.Region(name)
			if crop == nil {
				continue
			}
			if err := w.save(crop, utils.PartFilename(w.input, w.dir, w.prefix, i+1, string(name), w.format)); err != nil {
				return err
			}
			written++
		}
	}

	w.log.WithFields(logrus.Fields{
		"faces": len(parts),
		"files": written,
		"dir":   w.dir,
	}).Info("extraction complete")
	return nil
}

func (w *partWriter) save(img *types.Image, path string) error {
	if err := w.processor.SaveImage(img.Image, path, w.format, w.quality, w.lossless); err != nil {
		return fmt.Errorf("save %s failed: %w", path, err)
	}
	w.log.Debugf("wrote %s", path)
	return nil
}
