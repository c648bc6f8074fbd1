// Package scene finds scene cuts in a run of frames by comparing color
// histograms of neighbouring frames.
package scene

import (
	"errors"
	"fmt"
	"io"
	"log"
	"math"

	"gonum.org/v1/gonum/stat"
)

// ErrNoFrames is returned when a cut is requested over an empty run.
var ErrNoFrames = errors.New("no frames to search for a scene cut")

// Histogram is a per-frame bin count.
type Histogram []float64

// HistogramSource computes the histogram of a frame.
type HistogramSource interface {
	Histogram(frame string) (Histogram, error)
}

// Cut is the frame chosen as a scene boundary.
type Cut struct {
	// Index is the position of Frame in the slice passed to FindCut.
	Index int
	Frame string
	// Correlation between Frame and the frame before it. It is 1 when the
	// run holds a single frame.
	Correlation float64
	// Hard is true when Correlation fell below the threshold; false means
	// the weakest pair was taken as a best guess.
	Hard bool
}

// Detector locates scene cuts.
type Detector struct {
	source HistogramSource
	logger *log.Logger
}

// NewDetector creates a detector. A nil logger discards output.
func NewDetector(source HistogramSource, logger *log.Logger) *Detector {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Detector{source: source, logger: logger}
}

// Correlation returns the Pearson correlation of two histograms, the same
// measure as OpenCV's HISTCMP_CORREL. Two flat histograms correlate at 1.
func Correlation(a, b Histogram) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	c := stat.Correlation(a, b, nil)
	if math.IsNaN(c) {
		return 1
	}
	return c
}

// FindCut walks frames from the newest back to the oldest and returns the
// later frame of the first adjacent pair whose correlation is below
// threshold. When no pair is below threshold, the later frame of the least
// correlated pair is returned instead, so a cut is always produced for a
// non-empty run.
func (d *Detector) FindCut(frames []string, threshold float64) (Cut, error) {
	if len(frames) == 0 {
		return Cut{}, ErrNoFrames
	}
	hists := make(map[int]Histogram, 2)
	histogram := func(i int) (Histogram, error) {
		if h, ok := hists[i]; ok {
			return h, nil
		}
		h, err := d.source.Histogram(frames[i])
		if err != nil {
			return nil, fmt.Errorf("histogram of %s: %w", frames[i], err)
		}
		delete(hists, i+2)
		hists[i] = h
		return h, nil
	}
	cut, err := walk(len(frames), threshold, func(later, earlier int) (float64, error) {
		hl, err := histogram(later)
		if err != nil {
			return 0, err
		}
		he, err := histogram(earlier)
		if err != nil {
			return 0, err
		}
		return Correlation(hl, he), nil
	})
	if err != nil {
		return Cut{}, err
	}
	cut.Frame = frames[cut.Index]
	if cut.Hard {
		d.logger.Printf("Scene cut at %s (correlation %.3f < %.2f)", cut.Frame, cut.Correlation, threshold)
	} else {
		d.logger.Printf("No cut below %.2f, weakest pair at %s (correlation %.3f)", threshold, cut.Frame, cut.Correlation)
	}
	return cut, nil
}

// walk implements FindCut over n frames given a pairwise correlation.
func walk(n int, threshold float64, correlate func(later, earlier int) (float64, error)) (Cut, error) {
	best := Cut{Index: n - 1, Correlation: 1}
	lowest := math.Inf(1)
	for later := n - 1; later > 0; later-- {
		c, err := correlate(later, later-1)
		if err != nil {
			return Cut{}, err
		}
		if c < threshold {
			return Cut{Index: later, Correlation: c, Hard: true}, nil
		}
		if c < lowest {
			lowest = c
			best = Cut{Index: later, Correlation: c}
		}
	}
	return best, nil
}
