package render

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/menta2k/face-parts/pkg/geometry"
	"github.com/menta2k/face-parts/pkg/types"
)

// createTestImage creates a uniform gray test image
func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{64, 64, 64, 255})
		}
	}
	return img
}

func testFace() geometry.MappedFace {
	return geometry.MappedFace{
		Rect: geometry.Rect{X: 20, Y: 20, Width: 60, Height: 60},
		Regions: []geometry.MappedRegion{
			{Name: types.Nose, Points: []geometry.Point{{X: 45, Y: 40}, {X: 55, Y: 40}, {X: 50, Y: 60}}},
		},
	}
}

func isStroke(c color.NRGBA) bool {
	return c.G > 200 && c.R < 60 && c.B < 60
}

func TestCompositeDoesNotMutateSource(t *testing.T) {
	px := createTestImage(100, 100)
	before := append([]uint8(nil), px.Pix...)
	src := types.NewImage(px)

	out := Composite(src, []geometry.MappedFace{testFace()})
	if out == nil {
		t.Fatal("Composite returned nil")
	}
	if out == src || out.Image == src.Image {
		t.Error("Composite must return a new image")
	}
	if !bytes.Equal(before, px.Pix) {
		t.Error("Composite modified the source pixels")
	}
}

func TestCompositeDrawsOutlines(t *testing.T) {
	src := types.NewImage(createTestImage(100, 100))
	out := Composite(src, []geometry.MappedFace{testFace()})
	canvas := out.Image.(*image.NRGBA)

	if c := canvas.NRGBAAt(20, 50); !isStroke(c) {
		t.Errorf("Expected face box stroke at (20,50), got %v", c)
	}
	if c := canvas.NRGBAAt(50, 40); !isStroke(c) {
		t.Errorf("Expected nose stroke at (50,40), got %v", c)
	}
	if c := canvas.NRGBAAt(5, 5); c != (color.NRGBA{64, 64, 64, 255}) {
		t.Errorf("Expected untouched pixel at (5,5), got %v", c)
	}
	if c := canvas.NRGBAAt(35, 70); c != (color.NRGBA{64, 64, 64, 255}) {
		t.Errorf("Expected untouched pixel inside face at (35,70), got %v", c)
	}
}

func TestCompositeKeepsScale(t *testing.T) {
	src := &types.Image{Image: createTestImage(50, 50), Scale: 3, Orientation: types.OrientationUp}
	out := Composite(src, nil)
	if out.Scale != 3 {
		t.Errorf("Expected scale 3, got %f", out.Scale)
	}
	if out.Bounds().Dx() != 50 || out.Bounds().Dy() != 50 {
		t.Errorf("Expected 50x50, got %v", out.Bounds())
	}
}

func TestCompositeToleratesOutOfBoundsGeometry(t *testing.T) {
	src := types.NewImage(createTestImage(40, 40))
	face := geometry.MappedFace{
		Rect: geometry.Rect{X: -100, Y: -50, Width: 500, Height: 300},
		Regions: []geometry.MappedRegion{
			{Name: types.LeftEye, Points: []geometry.Point{{X: -10, Y: -10}, {X: 90, Y: 5}, {X: 30, Y: 80}}},
		},
	}
	if out := Composite(src, []geometry.MappedFace{face}); out == nil {
		t.Fatal("Expected composite for out-of-bounds geometry")
	}
}

func TestCompositeUnusableSource(t *testing.T) {
	if out := Composite(nil, nil); out != nil {
		t.Error("Expected nil composite for nil source")
	}
	if out := Composite(&types.Image{}, nil); out != nil {
		t.Error("Expected nil composite for image without pixels")
	}
}

func TestPolygonMask(t *testing.T) {
	square := []geometry.Point{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30}}
	mask := PolygonMask(square, image.Rect(10, 10, 30, 30))

	if mask.Bounds() != image.Rect(0, 0, 20, 20) {
		t.Fatalf("Expected 20x20 mask at origin, got %v", mask.Bounds())
	}
	if a := mask.AlphaAt(10, 10).A; a < 250 {
		t.Errorf("Expected opaque interior, got alpha %d", a)
	}

	triangle := []geometry.Point{{X: 0, Y: 0}, {X: 20, Y: 0}, {X: 0, Y: 20}}
	mask = PolygonMask(triangle, image.Rect(0, 0, 20, 20))
	if a := mask.AlphaAt(2, 2).A; a < 250 {
		t.Errorf("Expected opaque pixel inside triangle, got %d", a)
	}
	if a := mask.AlphaAt(18, 18).A; a != 0 {
		t.Errorf("Expected transparent pixel outside triangle, got %d", a)
	}
}

func TestPolygonMaskTooFewPoints(t *testing.T) {
	mask := PolygonMask([]geometry.Point{{X: 0, Y: 0}, {X: 5, Y: 5}}, image.Rect(0, 0, 5, 5))
	for _, a := range mask.Pix {
		if a != 0 {
			t.Fatal("Expected empty mask for a two-point polygon")
		}
	}
}

func BenchmarkComposite(b *testing.B) {
	src := types.NewImage(createTestImage(1920, 1080))
	faces := []geometry.MappedFace{testFace()}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Composite(src, faces)
	}
}
