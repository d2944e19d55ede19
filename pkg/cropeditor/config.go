package cropeditor

import (
	"fmt"
	"strings"

	"golang.org/x/image/draw"
)

// AspectRatio is a fixed width:height ratio the crop region must keep
type AspectRatio struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Name   string `json:"name"`
}

// Passport is the 35x45mm document ratio (413x531 px at 300 DPI)
var Passport = AspectRatio{Width: 413, Height: 531, Name: "passport"}

// Ratio returns width/height
func (a AspectRatio) Ratio() float64 {
	return float64(a.Width) / float64(a.Height)
}

// HeightFor returns the height matching width w
func (a AspectRatio) HeightFor(w float64) float64 {
	return w * float64(a.Height) / float64(a.Width)
}

// Config holds the editor's interaction parameters. All lengths are in
// display pixels.
type Config struct {
	MaxDisplayWidth  float64     `json:"max_display_width"`
	MaxDisplayHeight float64     `json:"max_display_height"`
	Aspect           AspectRatio `json:"aspect"`
	MinSize          float64     `json:"min_size"`
	HandleTolerance  float64     `json:"handle_tolerance"`
	InitialMaxWidth  float64     `json:"initial_max_width"`
	InitialFill      float64     `json:"initial_fill"`
	// Interpolator is one of bilinear, approxbilinear, catmullrom, nearest
	Interpolator string `json:"interpolator"`
}

// DefaultConfig returns the passport cropper defaults
func DefaultConfig() Config {
	return Config{
		MaxDisplayWidth:  600,
		MaxDisplayHeight: 400,
		Aspect:           Passport,
		MinSize:          50,
		HandleTolerance:  16,
		InitialMaxWidth:  200,
		InitialFill:      0.8,
		Interpolator:     "bilinear",
	}
}

// Validate checks the configuration for values the editor cannot work with
func (c Config) Validate() error {
	if c.MaxDisplayWidth <= 0 || c.MaxDisplayHeight <= 0 {
		return fmt.Errorf("display bounds must be positive, got %.2fx%.2f", c.MaxDisplayWidth, c.MaxDisplayHeight)
	}
	if c.Aspect.Width <= 0 || c.Aspect.Height <= 0 {
		return fmt.Errorf("aspect ratio terms must be positive, got %d:%d", c.Aspect.Width, c.Aspect.Height)
	}
	if c.MinSize < 0 {
		return fmt.Errorf("min_size must not be negative")
	}
	if c.HandleTolerance <= 0 {
		return fmt.Errorf("handle_tolerance must be positive")
	}
	if c.InitialMaxWidth <= 0 {
		return fmt.Errorf("initial_max_width must be positive")
	}
	if c.InitialFill <= 0 || c.InitialFill > 1 {
		return fmt.Errorf("initial_fill must be in (0, 1]")
	}
	if _, ok := interpolators[strings.ToLower(c.Interpolator)]; !ok && c.Interpolator != "" {
		return fmt.Errorf("unknown interpolator %q", c.Interpolator)
	}
	return nil
}

var interpolators = map[string]draw.Interpolator{
	"bilinear":       draw.BiLinear,
	"approxbilinear": draw.ApproxBiLinear,
	"catmullrom":     draw.CatmullRom,
	"nearest":        draw.NearestNeighbor,
}

func (c Config) interpolator() draw.Interpolator {
	if in, ok := interpolators[strings.ToLower(c.Interpolator)]; ok {
		return in
	}
	return draw.BiLinear
}
