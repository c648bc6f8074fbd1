// Package layout describes where the race clock sits in a captured frame.
//
// Geometry is fixed and pixel-exact for the broadcast player the frames are
// captured from. The tables below are display specific; they are not derived
// from a general formula and must not be "fixed".
package layout

import (
	"fmt"

	"race-clock/pkg/geometry"
)

// Clock band and digit cell dimensions, in pixels.
const (
	BandTop    = 42
	BandBottom = 82
	BandLeft   = 70

	CellWidth  = 26
	CellHeight = BandBottom - BandTop
	CellGap    = 11

	// RCWOffset shifts the band horizontally for the wide player variant.
	RCWOffset = 996
)

// Variant names accepted by ByName.
const (
	NameLegacy3   = "legacy3"
	NameExtended4 = "extended4"
)

// DigitLayout is the crop geometry for one clock display variant.
type DigitLayout struct {
	Name string

	// Band is the clock region before any horizontal offset is applied.
	Band geometry.RectInt

	// Offset is added to the band's left and right edges.
	Offset int

	// BaseOffset is the left edge of the rightmost cell inside the band.
	BaseOffset int

	// CellOffsets holds, per cell, the distance of that cell from the
	// rightmost one. Index 0 is the rightmost cell.
	CellOffsets []int

	// ExtraDigit marks cell 0 as a running indicator rather than a digit
	// that contributes to the time value.
	ExtraDigit bool
}

// Legacy3 is the three-cell "M.SS" display. There is no gap between the
// units and tens cells; the gap before the minutes cell holds the separator.
func Legacy3() DigitLayout {
	return DigitLayout{
		Name:        NameLegacy3,
		Band:        geometry.NewRectInt(BandLeft, BandTop, 168, BandBottom),
		BaseOffset:  72,
		CellOffsets: []int{0, CellWidth, CellWidth + CellGap + CellWidth},
	}
}

// Extended4 is the four-cell display with a trailing fast-changing digit to
// the right of the seconds. Every cell is separated by one gap.
func Extended4() DigitLayout {
	step := CellGap + CellWidth
	return DigitLayout{
		Name:        NameExtended4,
		Band:        geometry.NewRectInt(BandLeft, BandTop, BandLeft+112+CellWidth, BandBottom),
		BaseOffset:  112,
		CellOffsets: []int{0, step, 2 * step, 3 * step},
		ExtraDigit:  true,
	}
}

// ByName returns the layout variant with the given name.
func ByName(name string) (DigitLayout, error) {
	switch name {
	case NameLegacy3, "":
		return Legacy3(), nil
	case NameExtended4:
		return Extended4(), nil
	default:
		return DigitLayout{}, fmt.Errorf("unknown layout %q", name)
	}
}

// WithOffset returns a copy of l shifted horizontally by offset pixels.
func (l DigitLayout) WithOffset(offset int) DigitLayout {
	l.Offset = offset
	l.CellOffsets = append([]int(nil), l.CellOffsets...)
	return l
}

// WithRCW applies RCWOffset when rcw is set.
func (l DigitLayout) WithRCW(rcw bool) DigitLayout {
	if !rcw {
		return l.WithOffset(0)
	}
	return l.WithOffset(RCWOffset)
}

// Cells returns the number of digit cells.
func (l DigitLayout) Cells() int {
	return len(l.CellOffsets)
}

// CropRect returns the band rectangle in frame coordinates.
func (l DigitLayout) CropRect() geometry.RectInt {
	return l.Band.Translate(l.Offset, 0)
}

// CellRect returns the column range of cell k in band coordinates.
func (l DigitLayout) CellRect(k int) geometry.RectInt {
	off := l.CellOffsets[k]
	return geometry.NewRectInt(l.BaseOffset-off-1, 0, l.Band.Width-off-1, l.Band.Height)
}

// Positions maps cell indices to clock positions. A value of -1 means the
// position is absent from the layout.
type Positions struct {
	Extra   int
	Units   int
	Tens    int
	Minutes int
}

// Positions returns the cell index of each clock position.
func (l DigitLayout) Positions() Positions {
	if l.ExtraDigit {
		return Positions{Extra: 0, Units: 1, Tens: 2, Minutes: 3}
	}
	return Positions{Extra: -1, Units: 0, Tens: 1, Minutes: 2}
}

// Validate checks that every cell lies inside the band and has CellWidth columns.
func (l DigitLayout) Validate() error {
	if l.Band.Empty() {
		return fmt.Errorf("layout %s: empty band %s", l.Name, l.Band)
	}
	if len(l.CellOffsets) == 0 {
		return fmt.Errorf("layout %s: no cells", l.Name)
	}
	want := l.Positions()
	if want.Minutes >= len(l.CellOffsets) {
		return fmt.Errorf("layout %s: %d cells, need %d", l.Name, len(l.CellOffsets), want.Minutes+1)
	}
	for k := range l.CellOffsets {
		r := l.CellRect(k)
		if r.X < 0 || r.Right() > l.Band.Width {
			return fmt.Errorf("layout %s: cell %d %s outside band width %d", l.Name, k, r, l.Band.Width)
		}
		if r.Width != CellWidth {
			return fmt.Errorf("layout %s: cell %d is %d px wide, want %d", l.Name, k, r.Width, CellWidth)
		}
	}
	return nil
}
