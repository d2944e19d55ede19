package passport

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	captionPadding = 4
	captionGap     = 1

	DefaultNameSize = 35
	DefaultDateSize = 20
)

// DateLayout is the printed date format, dd/mm/yyyy
const DateLayout = "02/01/2006"

var captionBand = color.NRGBA{R: 255, G: 255, B: 255, A: 230}

// Caption is the name and date band printed along the bottom of the photo
type Caption struct {
	Name     string `json:"name"`
	Date     string `json:"date"`
	NameSize int    `json:"name_size"`
	DateSize int    `json:"date_size"`
}

// FormatDate renders t the way captions print dates
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// Empty reports whether there is nothing to print
func (c Caption) Empty() bool {
	return strings.TrimSpace(c.Name) == "" && strings.TrimSpace(c.Date) == ""
}

func (c Caption) withDefaults() Caption {
	if c.NameSize == 0 {
		c.NameSize = DefaultNameSize
	}
	if c.DateSize == 0 {
		c.DateSize = DefaultDateSize
	}
	return c
}

// Validate checks font sizes; zero sizes take the defaults
func (c Caption) Validate() error {
	c = c.withDefaults()
	if c.NameSize < 10 || c.NameSize > 50 {
		return fmt.Errorf("name size %d out of range 10-50", c.NameSize)
	}
	if c.DateSize < 8 || c.DateSize > 30 {
		return fmt.Errorf("date size %d out of range 8-30", c.DateSize)
	}
	return nil
}

func (c Caption) lines() []captionLine {
	c = c.withDefaults()
	var out []captionLine
	if name := strings.TrimSpace(c.Name); name != "" {
		out = append(out, captionLine{text: name, size: c.NameSize})
	}
	if date := strings.TrimSpace(c.Date); date != "" {
		out = append(out, captionLine{text: date, size: c.DateSize})
	}
	return out
}

type captionLine struct {
	text string
	size int
}

// BandHeight is the height in pixels of the band Draw paints
func (c Caption) BandHeight() int {
	lines := c.lines()
	if len(lines) == 0 {
		return 0
	}
	h := 2 * captionPadding
	for i, l := range lines {
		if i > 0 {
			h += captionGap
		}
		h += l.size
	}
	return h
}

var (
	boldOnce sync.Once
	boldFont *opentype.Font
	boldErr  error
)

func loadBold() (*opentype.Font, error) {
	boldOnce.Do(func() {
		boldFont, boldErr = opentype.Parse(gobold.TTF)
	})
	return boldFont, boldErr
}

// Draw paints the caption band onto the bottom of img with black bold text
// centred on each line. Text wider than the image is clipped.
func (c Caption) Draw(img draw.Image) error {
	lines := c.lines()
	if len(lines) == 0 {
		return nil
	}

	f, err := loadBold()
	if err != nil {
		return fmt.Errorf("failed to load caption font: %w", err)
	}

	b := img.Bounds()
	band := image.Rect(b.Min.X, b.Max.Y-c.BandHeight(), b.Max.X, b.Max.Y).Intersect(b)
	draw.Draw(img, band, image.NewUniform(captionBand), image.Point{}, draw.Over)

	y := band.Min.Y + captionPadding
	for i, l := range lines {
		if i > 0 {
			y += captionGap
		}
		if err := drawCentered(img, f, l, y); err != nil {
			return err
		}
		y += l.size
	}
	return nil
}

func drawCentered(img draw.Image, f *opentype.Font, l captionLine, top int) error {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    float64(l.size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return fmt.Errorf("failed to create caption face: %w", err)
	}
	defer face.Close()

	b := img.Bounds()
	width := font.MeasureString(face, l.text)
	x := fixed.I(b.Min.X) + (fixed.I(b.Dx())-width)/2

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: face,
		Dot:  fixed.Point26_6{X: x, Y: fixed.I(top) + face.Metrics().Ascent},
	}
	d.DrawString(l.text)
	return nil
}
