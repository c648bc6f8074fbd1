// Package digits cuts the digit cells of the race clock out of a frame.
package digits

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"race-clock/internal/frames"
	"race-clock/internal/layout"
)

// ErrOutOfBounds is returned when the clock band does not fit in the frame.
var ErrOutOfBounds = errors.New("clock band outside frame")

// Extractor crops digit cells according to a fixed layout.
type Extractor struct {
	layout layout.DigitLayout
}

// NewExtractor creates an extractor for l.
func NewExtractor(l layout.DigitLayout) (*Extractor, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Extractor{layout: l}, nil
}

// Layout returns the layout the extractor crops with.
func (e *Extractor) Layout() layout.DigitLayout {
	return e.layout
}

// ExtractFile decodes path and extracts its cells.
func (e *Extractor) ExtractFile(path string) ([]*image.Gray, error) {
	img, err := frames.Load(path)
	if err != nil {
		return nil, err
	}
	cells, err := e.Extract(img)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cells, nil
}

// Extract returns one grayscale image per cell, index 0 being the rightmost.
// Every cell is CellWidth x CellHeight with its origin at (0, 0).
func (e *Extractor) Extract(img image.Image) ([]*image.Gray, error) {
	band, err := e.Band(img)
	if err != nil {
		return nil, err
	}

	cells := make([]*image.Gray, e.layout.Cells())
	for k := range cells {
		r := e.layout.CellRect(k)
		cell := image.NewGray(image.Rect(0, 0, r.Width, r.Height))
		for y := 0; y < r.Height; y++ {
			src := band.Pix[y*band.Stride+r.X : y*band.Stride+r.Right()]
			copy(cell.Pix[y*cell.Stride:], src)
		}
		cells[k] = cell
	}
	return cells, nil
}

// Band crops the clock band and converts it to luma.
func (e *Extractor) Band(img image.Image) (*image.Gray, error) {
	bounds := img.Bounds()
	crop := e.layout.CropRect().Translate(bounds.Min.X, bounds.Min.Y)
	if !crop.Within(bounds) {
		return nil, fmt.Errorf("%w: band %s, frame %v", ErrOutOfBounds, crop, bounds)
	}

	gray := imaging.Grayscale(imaging.Crop(img, crop.ToImage()))
	out := image.NewGray(image.Rect(0, 0, crop.Width, crop.Height))
	for y := 0; y < crop.Height; y++ {
		row := gray.Pix[y*gray.Stride:]
		for x := 0; x < crop.Width; x++ {
			out.Pix[y*out.Stride+x] = row[x*4]
		}
	}
	return out, nil
}
