// Package ocr classifies clock digit cells with Tesseract.
package ocr

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"race-clock/internal/classifier"
)

// DigitChars is the whitelist for clock cells.
const DigitChars = "0123456789"

// minCellHeight is the height cells are upscaled to before recognition.
const minCellHeight = 120

// Engine is a classifier.Classifier backed by a Tesseract client.
// A cell Tesseract reads no digit from is Blank.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

var _ classifier.Classifier = (*Engine)(nil)

// NewEngine creates an engine configured for single digit recognition.
func NewEngine() (*Engine, error) {
	client := gosseract.NewClient()

	if err := client.SetLanguage("eng"); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}
	// Digits are not dictionary words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_CHAR); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := client.SetWhitelist(DigitChars); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set whitelist: %w", err)
	}

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Classify implements classifier.Classifier. The underlying client is not
// safe for concurrent use, so cells are recognised one at a time.
func (e *Engine) Classify(cells []*image.Gray) ([]classifier.Label, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	labels := make([]classifier.Label, len(cells))
	for i, cell := range cells {
		l, err := e.recognize(cell)
		if err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
		labels[i] = l
	}
	return labels, nil
}

func (e *Engine) recognize(cell *image.Gray) (classifier.Label, error) {
	buf, err := encodeCell(cell)
	if err != nil {
		return "", err
	}
	if err := e.client.SetImageFromBytes(buf); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := e.client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return labelFromText(text), nil
}

// labelFromText keeps the first digit Tesseract returned.
func labelFromText(text string) classifier.Label {
	for _, r := range strings.TrimSpace(text) {
		if r >= '0' && r <= '9' {
			return classifier.Label(string(r))
		}
	}
	return classifier.Blank
}

// encodeCell upscales, binarises and PNG-encodes a cell so the lit segments
// end up dark on a light background.
func encodeCell(cell *image.Gray) ([]byte, error) {
	b := cell.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("empty cell")
	}
	gray, err := gocv.NewMatFromBytes(b.Dy(), b.Dx(), gocv.MatTypeCV8UC1, packed(cell))
	if err != nil {
		return nil, fmt.Errorf("failed to wrap cell: %w", err)
	}
	defer gray.Close()

	scaled := gocv.NewMat()
	defer scaled.Close()
	scale := float64(minCellHeight) / float64(b.Dy())
	gocv.Resize(gray, &scaled, image.Point{}, scale, scale, gocv.InterpolationCubic)

	binary := gocv.NewMat()
	defer binary.Close()
	gocv.Threshold(scaled, &binary, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)

	if needsInvert(gocv.CountNonZero(binary), binary.Rows()*binary.Cols()) {
		gocv.BitwiseNot(binary, &binary)
	}

	out, err := gocv.IMEncode(gocv.PNGFileExt, binary)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}
	defer out.Close()

	data := out.GetBytes()
	return append([]byte(nil), data...), nil
}

// needsInvert reports whether a binarised cell with lit white pixels out of
// total is mostly dark. Tesseract expects dark glyphs on a light background;
// the clock draws light segments.
func needsInvert(lit, total int) bool {
	if total <= 0 {
		return false
	}
	return float64(lit)/float64(total) < 0.5
}

// packed returns the cell's pixels without row padding.
func packed(cell *image.Gray) []byte {
	b := cell.Bounds()
	if cell.Stride == b.Dx() && b.Min == (image.Point{}) {
		return cell.Pix[:b.Dx()*b.Dy()]
	}
	out := make([]byte, 0, b.Dx()*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := cell.PixOffset(b.Min.X, y)
		out = append(out, cell.Pix[off:off+b.Dx()]...)
	}
	return out
}
