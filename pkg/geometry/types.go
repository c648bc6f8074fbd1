// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"fmt"
	"image"
)

// RectInt represents a rectangle with integer pixel coordinates.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// NewRectInt creates a RectInt from its edges. Right and bottom are exclusive.
func NewRectInt(left, top, right, bottom int) RectInt {
	return RectInt{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// Right returns the exclusive right edge.
func (r RectInt) Right() int { return r.X + r.Width }

// Bottom returns the exclusive bottom edge.
func (r RectInt) Bottom() int { return r.Y + r.Height }

// Translate returns the rectangle shifted by dx, dy.
func (r RectInt) Translate(dx, dy int) RectInt {
	return RectInt{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// ToImage converts to an image.Rectangle.
func (r RectInt) ToImage() image.Rectangle {
	return image.Rect(r.X, r.Y, r.Right(), r.Bottom())
}

// Within reports whether r lies entirely inside bounds.
func (r RectInt) Within(bounds image.Rectangle) bool {
	return r.ToImage().In(bounds)
}

func (r RectInt) String() string {
	return fmt.Sprintf("[%d,%d %dx%d]", r.X, r.Y, r.Width, r.Height)
}
