package passport

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// Adjustments are tone filters with CSS filter semantics. Brightness,
// Contrast and Saturation are percentages where 100 leaves the image
// unchanged; Hue is a rotation in degrees.
type Adjustments struct {
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
	Hue        int `json:"hue"`
}

// NoAdjustments leaves pixels untouched
var NoAdjustments = Adjustments{Brightness: 100, Contrast: 100, Saturation: 100}

// Validate checks the values against the supported ranges
func (a Adjustments) Validate() error {
	switch {
	case a.Brightness < 50 || a.Brightness > 150:
		return fmt.Errorf("brightness %d%% out of range 50-150", a.Brightness)
	case a.Contrast < 50 || a.Contrast > 150:
		return fmt.Errorf("contrast %d%% out of range 50-150", a.Contrast)
	case a.Saturation < 0 || a.Saturation > 200:
		return fmt.Errorf("saturation %d%% out of range 0-200", a.Saturation)
	case a.Hue < -180 || a.Hue > 180:
		return fmt.Errorf("hue %d out of range -180..180", a.Hue)
	}
	return nil
}

// IsIdentity reports whether applying a would change nothing
func (a Adjustments) IsIdentity() bool {
	return a.Brightness == 100 && a.Contrast == 100 && a.Saturation == 100 && a.Hue%360 == 0
}

// Apply runs brightness, contrast, saturate and hue-rotate in that order.
// Alpha is preserved.
func (a Adjustments) Apply(img image.Image) *image.NRGBA {
	if a.IsIdentity() {
		return imaging.Clone(img)
	}

	brightness := float64(a.Brightness) / 100
	contrast := float64(a.Contrast) / 100
	saturate := saturateMatrix(float64(a.Saturation) / 100)
	hue := hueRotateMatrix(float64(a.Hue) * math.Pi / 180)

	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		px := [3]float64{float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255}
		for i := range px {
			px[i] = clampUnit(px[i] * brightness)
			px[i] = clampUnit((px[i]-0.5)*contrast + 0.5)
		}
		px = saturate.apply(px)
		px = hue.apply(px)
		return color.NRGBA{R: toByte(px[0]), G: toByte(px[1]), B: toByte(px[2]), A: c.A}
	})
}

type matrix3 [3][3]float64

func (m matrix3) apply(v [3]float64) [3]float64 {
	var out [3]float64
	for i := range out {
		out[i] = clampUnit(m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2])
	}
	return out
}

// Filter Effects Module Level 1, feColorMatrix type="saturate"
func saturateMatrix(s float64) matrix3 {
	return matrix3{
		{0.213 + 0.787*s, 0.715 - 0.715*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 + 0.285*s, 0.072 - 0.072*s},
		{0.213 - 0.213*s, 0.715 - 0.715*s, 0.072 + 0.928*s},
	}
}

// Filter Effects Module Level 1, feColorMatrix type="hueRotate"
func hueRotateMatrix(rad float64) matrix3 {
	c, s := math.Cos(rad), math.Sin(rad)
	return matrix3{
		{0.213 + c*0.787 - s*0.213, 0.715 - c*0.715 - s*0.715, 0.072 - c*0.072 + s*0.928},
		{0.213 - c*0.213 + s*0.143, 0.715 + c*0.285 + s*0.140, 0.072 - c*0.072 - s*0.283},
		{0.213 - c*0.213 - s*0.787, 0.715 - c*0.715 + s*0.715, 0.072 + c*0.928 + s*0.072},
	}
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func toByte(v float64) uint8 {
	return uint8(v*255 + 0.5)
}
