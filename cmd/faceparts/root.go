package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/menta2k/face-parts/internal/config"
	"github.com/menta2k/face-parts/internal/logging"
	"github.com/menta2k/face-parts/internal/utils"
)

var (
	cfgFile  string
	logLevel string
	logFile  string
)

var rootCmd = &cobra.Command{
	Use:   "faceparts",
	Short: "Outline and extract facial landmark regions from photos",
	Long: `faceparts draws detected face and landmark outlines onto a copy of a
photo and cuts every region (face, eyes, nose, lips, contour) out of the
original image.

Landmarks come from a JSON sidecar file or from a vision model served by
Ollama or llama.cpp.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (json or yaml, default "+config.GetConfigPath()+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace|debug|info|warn|error")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this file (rotated)")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig resolves defaults, the config file, the environment and the
// persistent flags, in that order.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()

	path := cfgFile
	if path == "" && utils.FileExists(config.GetConfigPath()) {
		path = config.GetConfigPath()
	}
	if path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if logFile != "" {
		cfg.Log.File = logFile
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*logrus.Logger, error) {
	return logging.New(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
	})
}
