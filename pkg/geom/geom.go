// Package geom separates the two coordinate spaces used while cropping.
//
// Display space is the scaled-down preview a user interacts with. Source space
// is the full-resolution decoded image. Values from the two spaces have
// distinct types, and Scale is the only way to convert between them.
package geom

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// Epsilon absorbs floating point noise in bounds checks
const Epsilon = 1e-9

// ErrInvalidScale is returned when a display scale cannot be computed
var ErrInvalidScale = errors.New("invalid display scale")

// DisplayPoint is a pointer position on the preview surface
type DisplayPoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Sub returns p-q
func (p DisplayPoint) Sub(q DisplayPoint) DisplayPoint {
	return DisplayPoint{X: p.X - q.X, Y: p.Y - q.Y}
}

// DisplaySize is the size of the preview surface
type DisplaySize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// DisplayRect is a rectangle on the preview surface
type DisplayRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Origin returns the top-left corner
func (r DisplayRect) Origin() DisplayPoint {
	return DisplayPoint{X: r.X, Y: r.Y}
}

// Right returns the x coordinate of the right edge
func (r DisplayRect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the y coordinate of the bottom edge
func (r DisplayRect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point of the rectangle
func (r DisplayRect) Center() DisplayPoint {
	return DisplayPoint{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// ContainsStrict reports whether p lies strictly inside r (edges excluded)
func (r DisplayRect) ContainsStrict(p DisplayPoint) bool {
	return p.X > r.X && p.X < r.Right() && p.Y > r.Y && p.Y < r.Bottom()
}

// Within reports whether r lies inside [0,size.Width]x[0,size.Height]
func (r DisplayRect) Within(size DisplaySize) bool {
	return r.X >= -Epsilon && r.Y >= -Epsilon &&
		r.Right() <= size.Width+Epsilon && r.Bottom() <= size.Height+Epsilon
}

// Aspect returns width/height, or 0 for a degenerate rectangle
func (r DisplayRect) Aspect() float64 {
	if r.Height == 0 {
		return 0
	}
	return r.Width / r.Height
}

func (r DisplayRect) String() string {
	return fmt.Sprintf("display(%.2f,%.2f %.2fx%.2f)", r.X, r.Y, r.Width, r.Height)
}

// SourceRect is a rectangle in source image pixels, relative to the image's
// bounds origin
type SourceRect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rectangle returns the smallest integer rectangle covering r
func (r SourceRect) Rectangle() image.Rectangle {
	return image.Rect(
		int(math.Floor(r.X+Epsilon)),
		int(math.Floor(r.Y+Epsilon)),
		int(math.Ceil(r.X+r.Width-Epsilon)),
		int(math.Ceil(r.Y+r.Height-Epsilon)),
	)
}

// Center returns the center of r in source pixels
func (r SourceRect) Center() (float64, float64) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

func (r SourceRect) String() string {
	return fmt.Sprintf("source(%.2f,%.2f %.2fx%.2f)", r.X, r.Y, r.Width, r.Height)
}

// Scale maps source pixels to display pixels: display = source * s
type Scale float64

// FitScale returns the largest scale no greater than 1 at which a srcW x srcH
// image fits inside maxW x maxH
func FitScale(srcW, srcH int, maxW, maxH float64) (Scale, error) {
	if srcW <= 0 || srcH <= 0 {
		return 0, fmt.Errorf("%w: source %dx%d", ErrInvalidScale, srcW, srcH)
	}
	if maxW <= 0 || maxH <= 0 {
		return 0, fmt.Errorf("%w: display bounds %.2fx%.2f", ErrInvalidScale, maxW, maxH)
	}
	s := math.Min(maxW/float64(srcW), maxH/float64(srcH))
	return Scale(math.Min(s, 1)), nil
}

// DisplaySize returns the size of a srcW x srcH image in display space
func (s Scale) DisplaySize(srcW, srcH int) DisplaySize {
	return DisplaySize{Width: float64(srcW) * float64(s), Height: float64(srcH) * float64(s)}
}

// ToSource maps a display rectangle into source space
func (s Scale) ToSource(r DisplayRect) SourceRect {
	f := float64(s)
	return SourceRect{X: r.X / f, Y: r.Y / f, Width: r.Width / f, Height: r.Height / f}
}

// ToDisplay maps a source rectangle into display space
func (s Scale) ToDisplay(r SourceRect) DisplayRect {
	f := float64(s)
	return DisplayRect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}
