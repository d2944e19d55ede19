package cropeditor

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Apply resamples the source pixels under the crop region into a new
// width x height image. It reflects the region at call time, so callers
// should not invoke it from inside a gesture callback.
func (e *Editor) Apply(width, height int) (*image.NRGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidTarget, width, height)
	}

	region := e.SourceRegion()
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("%w: empty crop region %s", ErrInvalidTarget, region)
	}

	bounds := e.src.Bounds()
	kx := float64(width) / region.Width
	ky := float64(height) / region.Height
	ox := float64(bounds.Min.X) + region.X
	oy := float64(bounds.Min.Y) + region.Y

	// Source to destination: translate the region origin to 0,0 then scale
	s2d := f64.Aff3{
		kx, 0, -ox * kx,
		0, ky, -oy * ky,
	}
	sr := region.Rectangle().Add(bounds.Min).Intersect(bounds)
	if sr.Empty() {
		return nil, fmt.Errorf("%w: region %s outside image %v", ErrInvalidTarget, region, bounds)
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	e.config.interpolator().Transform(dst, s2d, e.src, sr, draw.Src, nil)
	return dst, nil
}
