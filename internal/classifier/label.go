// Package classifier labels digit cells of the race clock.
package classifier

import (
	"fmt"
	"image"
)

// Label is the class of one digit cell: "0" to "9", or Blank.
type Label string

// Blank means no segment of the cell is lit.
const Blank Label = "_"

// Digit returns the numeric value of l. ok is false for Blank.
func (l Label) Digit() (v int, ok bool) {
	if len(l) != 1 || l[0] < '0' || l[0] > '9' {
		return 0, false
	}
	return int(l[0] - '0'), true
}

// IsBlank reports whether l is Blank.
func (l Label) IsBlank() bool { return l == Blank }

// Valid reports whether l is a digit or Blank.
func (l Label) Valid() bool {
	_, ok := l.Digit()
	return ok || l.IsBlank()
}

// ParseLabel parses a label as written in training directory names and
// model files. "blank" and "o" are accepted for Blank.
func ParseLabel(s string) (Label, error) {
	switch s {
	case string(Blank), "blank", "o":
		return Blank, nil
	}
	l := Label(s)
	if _, ok := l.Digit(); !ok {
		return "", fmt.Errorf("invalid digit label %q", s)
	}
	return l, nil
}

// Classifier maps digit cells to labels. Implementations are stateless once
// constructed and return exactly one label per cell, in order.
type Classifier interface {
	Classify(cells []*image.Gray) ([]Label, error)
}

// Func adapts a per-cell function to the Classifier interface.
type Func func(cell *image.Gray) (Label, error)

// Classify implements Classifier.
func (f Func) Classify(cells []*image.Gray) ([]Label, error) {
	out := make([]Label, len(cells))
	for i, c := range cells {
		l, err := f(c)
		if err != nil {
			return nil, err
		}
		out[i] = l
	}
	return out, nil
}
