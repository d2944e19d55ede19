package cropeditor

import (
	"math"

	"github.com/menta2k/passport-photo/pkg/geom"
	"github.com/menta2k/passport-photo/pkg/types"
)

// Focus replaces the region with an aspect-locked rectangle around a
// normalized subject box, widened by padding (a fraction of the subject size
// added on each side). The rectangle is shrunk to fit the preview and shifted
// inside it. Focus is refused during a gesture or when the result would fall
// below the minimum size.
func (e *Editor) Focus(box types.Box, padding float64) bool {
	if Active(e.state) || box.W <= 0 || box.H <= 0 {
		return false
	}
	if padding < 0 {
		padding = 0
	}

	ratio := e.config.Aspect.Ratio()
	dw, dh := e.display.Width, e.display.Height

	cx, cy := box.Center()
	center := geom.DisplayPoint{X: clamp(cx, 0, 1) * dw, Y: clamp(cy, 0, 1) * dh}

	// Narrowest region containing the subject, then padded
	width := math.Max(box.W*dw, box.H*dh*ratio) * (1 + 2*padding)
	width = math.Min(width, math.Min(dw, dh*ratio))
	height := e.config.Aspect.HeightFor(width)
	if width <= e.config.MinSize || height <= e.config.MinSize {
		return false
	}

	e.region = geom.DisplayRect{
		X:      clamp(center.X-width/2, 0, dw-width),
		Y:      clamp(center.Y-height/2, 0, dh-height),
		Width:  width,
		Height: height,
	}
	return true
}
