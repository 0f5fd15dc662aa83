package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureDir creates a directory if it doesn't exist
func EnsureDir(dir string) error {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return os.MkdirAll(dir, 0755)
	}
	return nil
}

// GetFileExtension returns the file extension without the dot
func GetFileExtension(filename string) string {
	ext := filepath.Ext(filename)
	if len(ext) > 0 {
		return strings.ToLower(ext[1:])
	}
	return ""
}

// IsImageFile checks if a file has an image extension
func IsImageFile(filename string) bool {
	switch GetFileExtension(filename) {
	case "jpg", "jpeg", "png", "webp":
		return true
	}
	return false
}

// BaseName returns the file name without directory and extension
func BaseName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CompositeFilename names the annotated full image for an input file
func CompositeFilename(inputFile, outputDir, prefix, format string) string {
	name := fmt.Sprintf("%s%s_landmarks.%s", prefix, SanitizeFilename(BaseName(inputFile)), format)
	return filepath.Join(outputDir, name)
}

// PartFilename names one per-face crop, e.g. selfie_face01_leftEye.png
func PartFilename(inputFile, outputDir, prefix string, face int, part, format string) string {
	name := fmt.Sprintf("%s%s_face%02d_%s.%s", prefix, SanitizeFilename(BaseName(inputFile)), face, part, format)
	return filepath.Join(outputDir, name)
}

// SidecarPath returns the conventional landmark file next to an image
func SidecarPath(imagePath string) string {
	return strings.TrimSuffix(imagePath, filepath.Ext(imagePath)) + ".landmarks.json"
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// SanitizeFilename removes or replaces invalid characters in filenames
func SanitizeFilename(filename string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|"}
	result := filename

	for _, char := range invalid {
		result = strings.ReplaceAll(result, char, "_")
	}

	// Remove leading/trailing spaces and dots
	return strings.Trim(result, " .")
}
