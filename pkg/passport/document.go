// Package passport turns a cropped portrait into a finished passport photo:
// a background fill, tone adjustments and an optional caption band with the
// holder's name and the date.
package passport

import (
	"errors"
	"image"

	"github.com/menta2k/passport-photo/pkg/cropeditor"
)

var (
	// ErrNoImage is returned when Compose gets no portrait
	ErrNoImage = errors.New("no portrait image")
	// ErrUnknownBackground is returned for background specs that do not parse
	ErrUnknownBackground = errors.New("unknown background")
)

const mmPerInch = 25.4

// Document describes the printed output in pixels at a given density
type Document struct {
	Width  int `json:"width"`
	Height int `json:"height"`
	DPI    int `json:"dpi"`
}

// Passport is a 35x45mm photo at 300 DPI
var Passport = Document{Width: 413, Height: 531, DPI: 300}

// Bounds returns the document rectangle anchored at 0,0
func (d Document) Bounds() image.Rectangle {
	return image.Rect(0, 0, d.Width, d.Height)
}

// Aspect returns the ratio the crop region must keep for this document
func (d Document) Aspect() cropeditor.AspectRatio {
	return cropeditor.AspectRatio{Width: d.Width, Height: d.Height, Name: "document"}
}

// SizeMM returns the printed size in millimetres
func (d Document) SizeMM() (float64, float64) {
	if d.DPI <= 0 {
		return 0, 0
	}
	return float64(d.Width) / float64(d.DPI) * mmPerInch, float64(d.Height) / float64(d.DPI) * mmPerInch
}

func (d Document) valid() bool {
	return d.Width > 0 && d.Height > 0
}
