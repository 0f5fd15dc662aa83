package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the application configuration
type Config struct {
	Analyzer AnalyzerConfig `json:"analyzer" yaml:"analyzer"`
	Detector DetectorConfig `json:"detector" yaml:"detector"`
	Extract  ExtractConfig  `json:"extract" yaml:"extract"`
	Output   OutputConfig   `json:"output" yaml:"output"`
	Log      LogConfig      `json:"log" yaml:"log"`
}

// AnalyzerConfig holds configuration for decoding captured images
type AnalyzerConfig struct {
	SupportedFormats []string `json:"supported_formats" yaml:"supported_formats" validate:"min=1,dive,oneof=jpg jpeg png webp"`
	MinImageSize     int      `json:"min_image_size" yaml:"min_image_size" validate:"min=1"`
	Scale            float64  `json:"scale" yaml:"scale" validate:"gt=0,lte=8"`
}

// DetectorConfig selects and tunes the landmark detector
type DetectorConfig struct {
	Backend     string `json:"backend" yaml:"backend" validate:"oneof=file ollama llamacpp"`
	URL         string `json:"url" yaml:"url" validate:"omitempty,url"`
	Model       string `json:"model" yaml:"model" validate:"required_unless=Backend file"`
	SendFormat  string `json:"send_format" yaml:"send_format" validate:"oneof=jpg png"`
	SendSize    int    `json:"send_size" yaml:"send_size" validate:"min=0"`
	SendQuality int    `json:"send_quality" yaml:"send_quality" validate:"min=1,max=100"`
}

// ExtractConfig holds configuration for region extraction
type ExtractConfig struct {
	CropMode string `json:"crop_mode" yaml:"crop_mode" validate:"oneof=bbox polygon"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format   string `json:"format" yaml:"format" validate:"oneof=jpg jpeg png webp"`
	Quality  int    `json:"quality" yaml:"quality" validate:"min=1,max=100"`
	Lossless bool   `json:"lossless" yaml:"lossless"`
	Dir      string `json:"dir" yaml:"dir" validate:"required"`
	Prefix   string `json:"prefix" yaml:"prefix"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `json:"level" yaml:"level" validate:"oneof=trace debug info warn warning error"`
	File  string `json:"file" yaml:"file"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Analyzer: AnalyzerConfig{
			SupportedFormats: []string{"jpg", "jpeg", "png", "webp"},
			MinImageSize:     32,
			Scale:            1,
		},
		Detector: DetectorConfig{
			Backend:     "file",
			Model:       "openbmb/minicpm-v4.5",
			SendFormat:  "jpg",
			SendSize:    1536,
			SendQuality: 85,
		},
		Extract: ExtractConfig{
			CropMode: "bbox",
		},
		Output: OutputConfig{
			Format:  "png",
			Quality: 90,
			Dir:     "./out",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// LoadFromFile loads configuration from a JSON or YAML file on top of the defaults
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = json.Unmarshal(data, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides values from FACEPARTS_* environment variables.
// A .env file in the working directory is loaded first when present.
func (c *Config) ApplyEnv() error {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setInt := func(key string, dst *int) error {
		if v := os.Getenv(key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}

	setString("FACEPARTS_BACKEND", &c.Detector.Backend)
	setString("FACEPARTS_URL", &c.Detector.URL)
	setString("FACEPARTS_MODEL", &c.Detector.Model)
	setString("FACEPARTS_CROP_MODE", &c.Extract.CropMode)
	setString("FACEPARTS_OUTPUT_DIR", &c.Output.Dir)
	setString("FACEPARTS_OUTPUT_FORMAT", &c.Output.Format)
	setString("FACEPARTS_LOG_LEVEL", &c.Log.Level)
	setString("FACEPARTS_LOG_FILE", &c.Log.File)
	if err := setInt("FACEPARTS_SEND_SIZE", &c.Detector.SendSize); err != nil {
		return err
	}
	if err := setInt("FACEPARTS_OUTPUT_QUALITY", &c.Output.Quality); err != nil {
		return err
	}
	if v := os.Getenv("FACEPARTS_SCALE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("FACEPARTS_SCALE: %w", err)
		}
		c.Analyzer.Scale = f
	}
	return nil
}

// SaveToFile saves configuration to a JSON or YAML file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(c)
	default:
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

var validate = validator.New()

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok && len(errs) > 0 {
			fe := errs[0]
			return fmt.Errorf("invalid config: %s failed %q (value: %v)", fe.Namespace(), fe.Tag(), fe.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "face-parts", "config.json")
}
