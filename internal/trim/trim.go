// Package trim narrows a noisy capture directory down to the frames of the
// race itself, using the clock readings to anchor scene-cut searches.
package trim

import (
	"errors"
	"fmt"
	"io"
	"log"

	"race-clock/internal/scene"
	"race-clock/internal/timeread"
)

// ErrClockNeverStarts is returned when no frame shows a running clock.
var ErrClockNeverStarts = errors.New("clock never starts")

// Default search parameters.
const (
	DefaultStartThreshold = 0.6
	DefaultEndThreshold   = 0.8
	DefaultLookBack       = 20
)

// Range is a half-open span [Lower, Upper) of the input frames.
type Range struct {
	Lower  int
	Upper  int
	Frames []string
}

// Len returns the number of frames in the range.
func (r Range) Len() int {
	return r.Upper - r.Lower
}

// Locator finds the race clip within a run of frames.
type Locator struct {
	detector *scene.Detector
	logger   *log.Logger

	StartThreshold float64
	EndThreshold   float64
	// LookBack bounds how many frames before an anchor are searched for a cut.
	LookBack int
	// StopOnExtraDigit ends the race where the extra digit disappears. Layouts
	// without an extra digit must clear it; the clock then never stops.
	StopOnExtraDigit bool
}

// NewLocator creates a locator with the default thresholds. A nil logger
// discards output.
func NewLocator(detector *scene.Detector, logger *log.Logger) *Locator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Locator{
		detector:         detector,
		logger:           logger,
		StartThreshold:   DefaultStartThreshold,
		EndThreshold:     DefaultEndThreshold,
		LookBack:         DefaultLookBack,
		StopOnExtraDigit: true,
	}
}

// Locate returns the race range of paths. records[i] must be the reading of
// paths[i].
//
// The lower bound is the scene cut just before the first frame whose clock
// reads at least 1. The upper bound is the scene cut before the first frame,
// from the start onward, on which the extra digit has disappeared; when the
// extra digit never disappears, or StopOnExtraDigit is off, the range runs
// to the end.
func (l *Locator) Locate(paths []string, records []timeread.FrameRecord) (Range, error) {
	if len(paths) != len(records) {
		return Range{}, fmt.Errorf("got %d records for %d frames", len(records), len(paths))
	}

	start := -1
	for i, r := range records {
		if r.Time >= 1 {
			start = i
			break
		}
	}
	if start < 0 {
		return Range{}, ErrClockNeverStarts
	}

	lower, err := l.boundary(paths, start, l.StartThreshold, 0)
	if err != nil {
		return Range{}, fmt.Errorf("start boundary: %w", err)
	}
	l.logger.Printf("Clock starts at %s, race begins at %s", paths[start], paths[lower])

	upper := len(paths)
	for i := start; l.StopOnExtraDigit && i < len(records); i++ {
		if !records[i].HasExtraDigit {
			upper, err = l.boundary(paths, i, l.EndThreshold, lower)
			if err != nil {
				return Range{}, fmt.Errorf("end boundary: %w", err)
			}
			l.logger.Printf("Clock stops at %s, race ends before %s", paths[i], paths[upper])
			break
		}
	}
	if upper < lower {
		upper = lower
	}

	return Range{Lower: lower, Upper: upper, Frames: paths[lower:upper]}, nil
}

// boundary searches the window of at most LookBack frames ending at anchor,
// never reaching before floor, and returns the absolute index of the cut.
func (l *Locator) boundary(paths []string, anchor int, threshold float64, floor int) (int, error) {
	from := max(floor, anchor-l.LookBack, 0)
	cut, err := l.detector.FindCut(paths[from:anchor+1], threshold)
	if err != nil {
		return 0, err
	}
	return from + cut.Index, nil
}
