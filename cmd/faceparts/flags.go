package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/menta2k/face-parts/internal/config"
)

// mustGetString gets a string flag value or panics if the flag doesn't exist.
// Flags are defined in init(), so errors indicate programming bugs.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// stringOverride replaces dst when the flag was set explicitly
func stringOverride(cmd *cobra.Command, name string, dst *string) {
	if cmd.Flags().Changed(name) {
		*dst = mustGetString(cmd, name)
	}
}

func intOverride(cmd *cobra.Command, name string, dst *int) {
	if cmd.Flags().Changed(name) {
		*dst = mustGetInt(cmd, name)
	}
}

func boolOverride(cmd *cobra.Command, name string, dst *bool) {
	if cmd.Flags().Changed(name) {
		*dst = mustGetBool(cmd, name)
	}
}

// addDetectorFlags registers the flags shared by commands that run detection
func addDetectorFlags(cmd *cobra.Command) {
	cmd.Flags().String("in", "", "input image path or URL (jpg/png/webp)")
	cmd.Flags().String("landmarks", "", "landmark JSON file for the file backend (default <in>.landmarks.json)")
	cmd.Flags().String("backend", "", "detector backend: file|ollama|llamacpp")
	cmd.Flags().String("url", "", "model server URL (defaults: ollama=http://localhost:11435/api/chat, llamacpp=http://localhost:8080)")
	cmd.Flags().String("model", "", "vision model name")
	cmd.Flags().String("sendfmt", "", "format sent to the model: jpg|png")
	cmd.Flags().Int("sendsize", 0, "max long side sent to the model (px), 0=original")
	cmd.Flags().Int("sendq", 0, "JPEG quality for the image sent to the model (1-100)")
	_ = cmd.MarkFlagRequired("in")
}

func applyDetectorFlags(cmd *cobra.Command, d *config.DetectorConfig) {
	stringOverride(cmd, "backend", &d.Backend)
	stringOverride(cmd, "url", &d.URL)
	stringOverride(cmd, "model", &d.Model)
	stringOverride(cmd, "sendfmt", &d.SendFormat)
	intOverride(cmd, "sendsize", &d.SendSize)
	intOverride(cmd, "sendq", &d.SendQuality)
}
