package visual

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/orisano/pixelmatch"

	"dev/bravebird/dashboard-verifier/pkg/models"
)

// Compare diffs two images pixel by pixel. The result matches when the
// ratio of differing pixels stays at or below maxDiffRatio. Images must
// share dimensions.
func Compare(baseline, captured image.Image, maxDiffRatio float64) (models.CompareResult, error) {
	bb := baseline.Bounds()
	cb := captured.Bounds()
	if bb.Dx() != cb.Dx() || bb.Dy() != cb.Dy() {
		return models.CompareResult{}, fmt.Errorf("image size mismatch: baseline %dx%d, captured %dx%d",
			bb.Dx(), bb.Dy(), cb.Dx(), cb.Dy())
	}

	diff, err := pixelmatch.MatchPixel(baseline, captured, pixelmatch.Threshold(0.1))
	if err != nil {
		return models.CompareResult{}, fmt.Errorf("pixel match failed: %w", err)
	}

	total := bb.Dx() * bb.Dy()
	ratio := 0.0
	if total > 0 {
		ratio = float64(diff) / float64(total)
	}

	return models.CompareResult{
		DiffPixels:  diff,
		TotalPixels: total,
		DiffRatio:   ratio,
		Match:       ratio <= maxDiffRatio,
	}, nil
}

// CompareFiles diffs two PNG files on disk
func CompareFiles(baselinePath, capturedPath string, maxDiffRatio float64) (models.CompareResult, error) {
	baseline, err := loadPNG(baselinePath)
	if err != nil {
		return models.CompareResult{}, fmt.Errorf("failed to load baseline: %w", err)
	}

	captured, err := loadPNG(capturedPath)
	if err != nil {
		return models.CompareResult{}, fmt.Errorf("failed to load captured image: %w", err)
	}

	return Compare(baseline, captured, maxDiffRatio)
}

func loadPNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return png.Decode(f)
}
