package visual

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func solidImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestCompareIdentical(t *testing.T) {
	a := solidImage(20, 10, color.RGBA{R: 200, G: 200, B: 200, A: 255})
	b := solidImage(20, 10, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	res, err := Compare(a, b, 0.01)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if !res.Match {
		t.Error("identical images did not match")
	}
	if res.DiffPixels != 0 {
		t.Errorf("diff pixels = %d, want 0", res.DiffPixels)
	}
	if res.TotalPixels != 200 {
		t.Errorf("total pixels = %d, want 200", res.TotalPixels)
	}
}

func TestCompareDifferent(t *testing.T) {
	a := solidImage(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	b := solidImage(10, 10, color.RGBA{A: 255})

	res, err := Compare(a, b, 0.01)
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}

	if res.Match {
		t.Error("white vs black matched within a 1% threshold")
	}
	if res.DiffPixels == 0 {
		t.Error("diff pixels = 0 for fully different images")
	}
	if res.DiffRatio <= 0.5 {
		t.Errorf("diff ratio = %f, want > 0.5", res.DiffRatio)
	}
}

func TestCompareSizeMismatch(t *testing.T) {
	a := solidImage(10, 10, color.RGBA{A: 255})
	b := solidImage(20, 10, color.RGBA{A: 255})

	if _, err := Compare(a, b, 0.01); err == nil {
		t.Error("Compare() with mismatched sizes expected error, got nil")
	}
}

func TestCompareFiles(t *testing.T) {
	dir := t.TempDir()

	writePNG := func(name string, img image.Image) string {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			t.Fatal(err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			t.Fatal(err)
		}
		return path
	}

	gray := color.RGBA{R: 128, G: 128, B: 128, A: 255}
	baseline := writePNG("baseline.png", solidImage(8, 8, gray))
	captured := writePNG("captured.png", solidImage(8, 8, gray))

	res, err := CompareFiles(baseline, captured, 0.01)
	if err != nil {
		t.Fatalf("CompareFiles() error = %v", err)
	}
	if !res.Match {
		t.Error("identical files did not match")
	}
}

func TestCompareFilesMissingBaseline(t *testing.T) {
	if _, err := CompareFiles(filepath.Join(t.TempDir(), "nope.png"), "also-nope.png", 0.01); err == nil {
		t.Error("CompareFiles() with missing baseline expected error, got nil")
	}
}
