package cropeditor

import (
	"math"

	"github.com/menta2k/passport-photo/pkg/geom"
)

// Corner identifies one of the four resize handles
type Corner int

const (
	NorthWest Corner = iota
	NorthEast
	SouthWest
	SouthEast
)

// scanOrder decides overlapping handle zones on tiny regions
var scanOrder = [...]Corner{NorthWest, NorthEast, SouthWest, SouthEast}

func (c Corner) String() string {
	switch c {
	case NorthWest:
		return "nw"
	case NorthEast:
		return "ne"
	case SouthWest:
		return "sw"
	case SouthEast:
		return "se"
	}
	return "unknown"
}

// Of returns the position of corner c on r
func (c Corner) Of(r geom.DisplayRect) geom.DisplayPoint {
	switch c {
	case NorthEast:
		return geom.DisplayPoint{X: r.Right(), Y: r.Y}
	case SouthWest:
		return geom.DisplayPoint{X: r.X, Y: r.Bottom()}
	case SouthEast:
		return geom.DisplayPoint{X: r.Right(), Y: r.Bottom()}
	}
	return r.Origin()
}

// west reports whether dragging c to the right shrinks the region
func (c Corner) west() bool {
	return c == NorthWest || c == SouthWest
}

// Hit is the result of testing a pointer position against the crop region
type Hit int

const (
	HitNone Hit = iota
	HitMove
	HitNorthWest
	HitNorthEast
	HitSouthWest
	HitSouthEast
)

// Corner returns the handle addressed by h, if any
func (h Hit) Corner() (Corner, bool) {
	switch h {
	case HitNorthWest:
		return NorthWest, true
	case HitNorthEast:
		return NorthEast, true
	case HitSouthWest:
		return SouthWest, true
	case HitSouthEast:
		return SouthEast, true
	}
	return 0, false
}

func (h Hit) String() string {
	if c, ok := h.Corner(); ok {
		return c.String()
	}
	if h == HitMove {
		return "move"
	}
	return "none"
}

func hitFor(c Corner) Hit {
	return HitNorthWest + Hit(c)
}

// HitTest classifies p against region r. Each corner owns a square zone of
// half-width tolerance; the first matching corner in nw, ne, sw, se order
// wins. Points strictly inside r but outside every zone hit the body.
func HitTest(p geom.DisplayPoint, r geom.DisplayRect, tolerance float64) Hit {
	for _, c := range scanOrder {
		cp := c.Of(r)
		if math.Abs(p.X-cp.X) <= tolerance && math.Abs(p.Y-cp.Y) <= tolerance {
			return hitFor(c)
		}
	}
	if r.ContainsStrict(p) {
		return HitMove
	}
	return HitNone
}
