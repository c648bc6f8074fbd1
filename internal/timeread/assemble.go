// Package timeread turns frames into race clock readings.
package timeread

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"race-clock/internal/classifier"
	"race-clock/internal/layout"
)

// ErrUnknownLabel is returned for a classifier label that is neither a digit nor Blank.
var ErrUnknownLabel = errors.New("unknown digit label")

// FrameRecord is the clock reading of one frame.
type FrameRecord struct {
	Source        string `json:"file"`
	Time          int    `json:"ts"`
	Display       string `json:"time"`
	HasExtraDigit bool   `json:"extra"`
}

func (r FrameRecord) String() string {
	return fmt.Sprintf("%s ts=%d (%s)", r.Source, r.Time, r.Display)
}

// Reading is the assembled value of one frame's labels.
type Reading struct {
	Display       string
	Time          int
	HasExtraDigit bool
}

// Assemble combines per-cell labels, indexed like the layout's cells, into a
// reading. Minutes count 60, tens 10 and units 1; a Blank position adds
// nothing and does not affect the others. The extra cell, when the layout
// has one, only sets HasExtraDigit. All-Blank input is a valid empty reading.
func Assemble(labels []classifier.Label, l layout.DigitLayout) (Reading, error) {
	if len(labels) != l.Cells() {
		return Reading{}, fmt.Errorf("got %d labels for %d cells", len(labels), l.Cells())
	}
	pos := l.Positions()

	digit := func(idx int) (int, bool, error) {
		lab := labels[idx]
		if lab.IsBlank() {
			return 0, false, nil
		}
		v, ok := lab.Digit()
		if !ok {
			return 0, false, fmt.Errorf("%w %q at cell %d", ErrUnknownLabel, lab, idx)
		}
		return v, true, nil
	}

	var (
		r  Reading
		sb strings.Builder
	)
	if v, ok, err := digit(pos.Minutes); err != nil {
		return Reading{}, err
	} else if ok {
		sb.WriteString(strconv.Itoa(v))
		sb.WriteByte('.')
		r.Time += v * 60
	}
	if v, ok, err := digit(pos.Tens); err != nil {
		return Reading{}, err
	} else if ok {
		sb.WriteString(strconv.Itoa(v))
		r.Time += v * 10
	}
	if v, ok, err := digit(pos.Units); err != nil {
		return Reading{}, err
	} else if ok {
		sb.WriteString(strconv.Itoa(v))
		r.Time += v
	}
	if pos.Extra >= 0 {
		_, ok, err := digit(pos.Extra)
		if err != nil {
			return Reading{}, err
		}
		r.HasExtraDigit = ok
	}
	r.Display = sb.String()
	return r, nil
}
