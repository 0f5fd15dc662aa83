package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default config should validate: %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string]func(c *Config){
		"crop mode":   func(c *Config) { c.Extract.CropMode = "circle" },
		"backend":     func(c *Config) { c.Detector.Backend = "opencv" },
		"quality":     func(c *Config) { c.Output.Quality = 0 },
		"scale":       func(c *Config) { c.Analyzer.Scale = 0 },
		"model":       func(c *Config) { c.Detector.Backend = "ollama"; c.Detector.Model = "" },
		"format":      func(c *Config) { c.Output.Format = "gif" },
		"output dir":  func(c *Config) { c.Output.Dir = "" },
		"bad formats": func(c *Config) { c.Analyzer.SupportedFormats = []string{"tiff"} },
	}
	for name, mutate := range cases {
		c := Default()
		mutate(c)
		if err := c.Validate(); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestSaveAndLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	c := Default()
	c.Extract.CropMode = "polygon"

	if err := c.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	loaded, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if loaded.Extract.CropMode != "polygon" {
		t.Errorf("Expected polygon, got %s", loaded.Extract.CropMode)
	}
}

func TestLoadYAMLKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "detector:\n  backend: ollama\n  url: http://localhost:11434\noutput:\n  format: webp\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFromFile(path)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}
	if c.Detector.Backend != "ollama" || c.Output.Format != "webp" {
		t.Errorf("Unexpected config %+v", c)
	}
	if c.Output.Quality != 90 || c.Extract.CropMode != "bbox" {
		t.Error("Expected unspecified fields to keep defaults")
	}
	if err := c.Validate(); err != nil {
		t.Errorf("Expected valid config: %v", err)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	os.WriteFile(path, []byte("{not json"), 0o644)
	if _, err := LoadFromFile(path); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("Expected read error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("FACEPARTS_CROP_MODE", "polygon")
	t.Setenv("FACEPARTS_SEND_SIZE", "512")
	t.Setenv("FACEPARTS_SCALE", "2")

	c := Default()
	if err := c.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if c.Extract.CropMode != "polygon" || c.Detector.SendSize != 512 || c.Analyzer.Scale != 2 {
		t.Errorf("Environment not applied: %+v", c)
	}
}

func TestApplyEnvBadNumber(t *testing.T) {
	t.Setenv("FACEPARTS_OUTPUT_QUALITY", "high")
	err := Default().ApplyEnv()
	if err == nil || !strings.Contains(err.Error(), "FACEPARTS_OUTPUT_QUALITY") {
		t.Errorf("Expected quality parse error, got %v", err)
	}
}

func TestGetConfigPath(t *testing.T) {
	if !strings.HasSuffix(GetConfigPath(), "config.json") {
		t.Error("Expected config.json path")
	}
}
