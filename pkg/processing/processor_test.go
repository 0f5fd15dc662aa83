package processing

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/menta2k/face-parts/pkg/types"
)

// createTestImage creates a test image with a marked top-left pixel
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{0, 0, 255, 255})
		}
	}
	img.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	return img
}

func TestNormalizeUpright(t *testing.T) {
	p := NewProcessor()
	img := types.NewImage(createTestImage(40, 20))
	if got := p.Normalize(img); got != img {
		t.Error("Expected upright image to be returned unchanged")
	}
}

func TestNormalizeRotated(t *testing.T) {
	p := NewProcessor()
	img := &types.Image{Image: createTestImage(40, 20), Scale: 2, Orientation: types.OrientationRight}

	got := p.Normalize(img)
	if got == img {
		t.Fatal("Expected a new image")
	}
	if got.Orientation != types.OrientationUp || got.Scale != 2 {
		t.Errorf("Unexpected metadata: orientation=%d scale=%f", got.Orientation, got.Scale)
	}
	if got.Bounds().Dx() != 20 || got.Bounds().Dy() != 40 {
		t.Errorf("Expected 20x40 after rotation, got %v", got.Bounds())
	}
	if img.Bounds().Dx() != 40 {
		t.Error("Source image must not change")
	}
}

func TestOrient(t *testing.T) {
	src := createTestImage(4, 2)
	cases := []struct {
		o          types.Orientation
		w, h       int
		markX, mkY int
	}{
		{types.OrientationUp, 4, 2, 0, 0},
		{types.OrientationUpMirrored, 4, 2, 3, 0},
		{types.OrientationDown, 4, 2, 3, 1},
		{types.OrientationDownMirrored, 4, 2, 0, 1},
		{types.OrientationRight, 2, 4, 1, 0},
		{types.OrientationLeft, 2, 4, 0, 3},
	}
	for _, c := range cases {
		out := Orient(src, c.o)
		b := out.Bounds()
		if b.Dx() != c.w || b.Dy() != c.h {
			t.Errorf("orientation %d: expected %dx%d, got %dx%d", c.o, c.w, c.h, b.Dx(), b.Dy())
			continue
		}
		r, _, _, _ := out.At(b.Min.X+c.markX, b.Min.Y+c.mkY).RGBA()
		if r>>8 != 255 {
			t.Errorf("orientation %d: expected marker at (%d,%d)", c.o, c.markX, c.mkY)
		}
	}
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	b64, err := p.PrepareImageForModel(createTestImage(400, 200), "jpg", 100, 80)
	if err != nil {
		t.Fatalf("PrepareImageForModel failed: %v", err)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		t.Fatalf("Invalid base64: %v", err)
	}
	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Invalid jpeg: %v", err)
	}
	if cfg.Width != 100 || cfg.Height != 50 {
		t.Errorf("Expected 100x50, got %dx%d", cfg.Width, cfg.Height)
	}
}

func TestSaveImage(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	img := createTestImage(10, 10)

	path := filepath.Join(dir, "out.png")
	if err := p.SaveImage(img, path, "png", 90, false); err != nil {
		t.Fatalf("SaveImage failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("Expected non-empty file, got %v", err)
	}

	if err := p.SaveImage(img, filepath.Join(dir, "out.bmp"), "bmp", 90, false); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestHasAlpha(t *testing.T) {
	if !HasAlpha("PNG") || !HasAlpha("webp") || HasAlpha("jpg") {
		t.Error("Unexpected HasAlpha result")
	}
}
