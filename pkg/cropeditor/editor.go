// Package cropeditor implements an aspect-locked crop region over a scaled
// preview of a source image.
//
// The region lives in display space and is changed only through pointer
// gestures: a press inside the region moves it, a press on a corner handle
// resizes it with the opposite corner pinned. Apply maps the region back to
// source space and resamples it into a fixed-size output.
//
// An Editor is driven from a single event loop and is not safe for
// concurrent use.
package cropeditor

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/menta2k/passport-photo/pkg/geom"
)

var (
	// ErrNoImage is returned when the editor is given no decodable image
	ErrNoImage = errors.New("no source image")
	// ErrInvalidTarget is returned by Apply for non-positive output sizes
	ErrInvalidTarget = errors.New("invalid target size")
)

// Editor owns the crop region and the gesture state for one source image
type Editor struct {
	config  Config
	src     image.Image
	scale   geom.Scale
	display geom.DisplaySize
	region  geom.DisplayRect
	state   Interaction
}

// New creates an editor for src. It fails with ErrNoImage when src is nil or
// empty, in which case no region exists.
func New(src image.Image, config Config) (*Editor, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid editor config: %w", err)
	}

	e := &Editor{config: config, state: Idle{}}
	if err := e.Load(src); err != nil {
		return nil, err
	}
	return e, nil
}

// Load replaces the source image, recomputing the display scale and
// resetting the region and gesture state. On error the editor is unchanged.
func (e *Editor) Load(src image.Image) error {
	if src == nil || src.Bounds().Empty() {
		return ErrNoImage
	}

	bounds := src.Bounds()
	scale, err := geom.FitScale(bounds.Dx(), bounds.Dy(), e.config.MaxDisplayWidth, e.config.MaxDisplayHeight)
	if err != nil {
		return fmt.Errorf("failed to fit preview: %w", err)
	}

	e.src = src
	e.scale = scale
	e.display = scale.DisplaySize(bounds.Dx(), bounds.Dy())
	e.region = InitialRegion(e.display, e.config)
	e.state = Idle{}
	return nil
}

// InitialRegion returns the centered starting region for a preview of the
// given size
func InitialRegion(display geom.DisplaySize, config Config) geom.DisplayRect {
	width := math.Min(config.InitialMaxWidth, display.Width*config.InitialFill)
	// Short wide previews would otherwise get a region taller than the preview
	width = math.Min(width, display.Height*config.InitialFill*config.Aspect.Ratio())
	height := config.Aspect.HeightFor(width)

	return geom.DisplayRect{
		X:      (display.Width - width) / 2,
		Y:      (display.Height - height) / 2,
		Width:  width,
		Height: height,
	}
}

// Config returns the editor configuration
func (e *Editor) Config() Config { return e.config }

// Source returns the image being cropped
func (e *Editor) Source() image.Image { return e.src }

// Scale returns the source-to-display scale
func (e *Editor) Scale() geom.Scale { return e.scale }

// Display returns the preview size
func (e *Editor) Display() geom.DisplaySize { return e.display }

// Region returns the crop region in display space
func (e *Editor) Region() geom.DisplayRect { return e.region }

// Interaction returns the current gesture state
func (e *Editor) Interaction() Interaction { return e.state }

// SourceRegion returns the crop region mapped to source pixels
func (e *Editor) SourceRegion() geom.SourceRect {
	return e.scale.ToSource(e.region)
}

// HitTest classifies p against the current region
func (e *Editor) HitTest(p geom.DisplayPoint) Hit {
	return HitTest(p, e.region, e.config.HandleTolerance)
}

// Begin starts a gesture at p. It only has an effect while idle; during a
// gesture the current interaction is returned unchanged.
func (e *Editor) Begin(p geom.DisplayPoint) Interaction {
	if Active(e.state) {
		return e.state
	}

	hit := e.HitTest(p)
	if c, ok := hit.Corner(); ok {
		e.state = Resizing{Corner: c, Anchor: p}
	} else if hit == HitMove {
		e.state = Moving{Offset: p.Sub(e.region.Origin())}
	}
	return e.state
}

// Update applies a pointer move to the active gesture. It returns the region
// and whether it changed. Moves are clamped to the preview; resizes that
// would break the size or bounds constraints are dropped.
func (e *Editor) Update(p geom.DisplayPoint) (geom.DisplayRect, bool) {
	switch s := e.state.(type) {
	case Moving:
		next := e.moved(p, s)
		changed := next != e.region
		e.region = next
		return e.region, changed
	case Resizing:
		next, ok := e.resized(p, s)
		if !ok {
			return e.region, false
		}
		changed := next != e.region
		e.region = next
		e.state = Resizing{Corner: s.Corner, Anchor: p}
		return e.region, changed
	}
	return e.region, false
}

// End finishes any gesture. It is valid to call at any time.
func (e *Editor) End() Interaction {
	e.state = Idle{}
	return e.state
}

func (e *Editor) moved(p geom.DisplayPoint, s Moving) geom.DisplayRect {
	next := e.region
	next.X = clamp(p.X-s.Offset.X, 0, e.display.Width-next.Width)
	next.Y = clamp(p.Y-s.Offset.Y, 0, e.display.Height-next.Height)
	return next
}

func (e *Editor) resized(p geom.DisplayPoint, s Resizing) (geom.DisplayRect, bool) {
	r := e.region
	dx := p.X - s.Anchor.X

	width := r.Width + dx
	if s.Corner.west() {
		width = r.Width - dx
	}
	height := e.config.Aspect.HeightFor(width)
	if width <= e.config.MinSize || height <= e.config.MinSize {
		return r, false
	}

	next := geom.DisplayRect{X: r.X, Y: r.Y, Width: width, Height: height}
	switch s.Corner {
	case NorthWest:
		next.X = r.Right() - width
		next.Y = r.Bottom() - height
	case NorthEast:
		next.Y = r.Bottom() - height
	case SouthWest:
		next.X = r.Right() - width
	}

	if !next.Within(e.display) {
		return r, false
	}
	return next, true
}

// clamp returns v limited to [lo, hi]; lo wins when the range is empty
func clamp(v, lo, hi float64) float64 {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}
