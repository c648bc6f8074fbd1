package classifier

import (
	"fmt"
	"image"
	"image/draw"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"

	"race-clock/internal/frames"
)

// TrainDir builds a model from labelled cell crops laid out as
// <dir>/<label>/*.png. Directories whose name is not a label are skipped.
func TrainDir(dir string, width, height int, logger *log.Logger) (*Model, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read training directory: %w", err)
	}

	t := NewTrainer(width, height)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		label, err := ParseLabel(e.Name())
		if err != nil {
			logger.Printf("Skipping %s: %v", e.Name(), err)
			continue
		}
		paths, err := filepath.Glob(filepath.Join(dir, e.Name(), frames.DefaultPattern))
		if err != nil {
			return nil, err
		}
		sort.Strings(paths)
		for _, p := range paths {
			img, err := frames.Load(p)
			if err != nil {
				return nil, err
			}
			if err := t.Add(label, toGray(img)); err != nil {
				return nil, fmt.Errorf("%s: %w", p, err)
			}
		}
		logger.Printf("Label %s: %d samples", label, t.Samples(label))
	}
	return t.Model()
}

// toGray returns img as an *image.Gray with origin (0,0).
func toGray(img image.Image) *image.Gray {
	b := img.Bounds()
	if g, ok := img.(*image.Gray); ok && b.Min == (image.Point{}) {
		return g
	}
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Bounds(), img, b.Min, draw.Src)
	return g
}
