package passport

import (
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidImage(width, height int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestDocument(t *testing.T) {
	w, h := Passport.SizeMM()
	assert.InDelta(t, 35, w, 0.1)
	assert.InDelta(t, 45, h, 0.1)
	assert.Equal(t, image.Rect(0, 0, 413, 531), Passport.Bounds())
	assert.InDelta(t, 413.0/531.0, Passport.Aspect().Ratio(), 1e-12)

	w, h = Document{Width: 10, Height: 10}.SizeMM()
	assert.Zero(t, w)
	assert.Zero(t, h)
}

func TestAdjustmentsValidate(t *testing.T) {
	assert.NoError(t, NoAdjustments.Validate())
	assert.NoError(t, Adjustments{Brightness: 50, Contrast: 150, Saturation: 0, Hue: -180}.Validate())

	bad := []Adjustments{
		{Brightness: 49, Contrast: 100, Saturation: 100},
		{Brightness: 100, Contrast: 151, Saturation: 100},
		{Brightness: 100, Contrast: 100, Saturation: 201},
		{Brightness: 100, Contrast: 100, Saturation: 100, Hue: 181},
	}
	for _, a := range bad {
		assert.Error(t, a.Validate(), "%+v", a)
	}
}

func TestAdjustmentsApply(t *testing.T) {
	tests := []struct {
		name  string
		adj   Adjustments
		in    color.NRGBA
		check func(t *testing.T, c color.NRGBA)
	}{
		{
			name: "identity",
			adj:  NoAdjustments,
			in:   color.NRGBA{12, 34, 56, 200},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Equal(t, color.NRGBA{12, 34, 56, 200}, c)
			},
		},
		{
			name: "brightness",
			adj:  Adjustments{Brightness: 150, Contrast: 100, Saturation: 100},
			in:   color.NRGBA{100, 100, 100, 255},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 150, int(c.R), 1)
				assert.InDelta(t, 150, int(c.B), 1)
			},
		},
		{
			name: "contrast",
			adj:  Adjustments{Brightness: 100, Contrast: 50, Saturation: 100},
			in:   color.NRGBA{0, 0, 0, 255},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 64, int(c.G), 1)
			},
		},
		{
			name: "desaturate",
			adj:  Adjustments{Brightness: 100, Contrast: 100, Saturation: 0},
			in:   color.NRGBA{255, 0, 0, 255},
			check: func(t *testing.T, c color.NRGBA) {
				assert.Equal(t, c.R, c.G)
				assert.Equal(t, c.G, c.B)
				assert.InDelta(t, 54, int(c.R), 1)
			},
		},
		{
			name: "hue keeps gray",
			adj:  Adjustments{Brightness: 100, Contrast: 100, Saturation: 100, Hue: 180},
			in:   color.NRGBA{128, 128, 128, 77},
			check: func(t *testing.T, c color.NRGBA) {
				assert.InDelta(t, 128, int(c.R), 1)
				assert.InDelta(t, 128, int(c.G), 1)
				assert.InDelta(t, 128, int(c.B), 1)
				assert.Equal(t, uint8(77), c.A)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.adj.Apply(solidImage(4, 4, tt.in))
			require.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
			tt.check(t, out.NRGBAAt(2, 2))
		})
	}
}

func TestParseBackground(t *testing.T) {
	tests := []struct {
		spec string
		want Background
	}{
		{"", Solid{Color: color.NRGBA{255, 255, 255, 255}}},
		{"White", Solid{Color: color.NRGBA{255, 255, 255, 255}}},
		{"#f00", Solid{Color: color.NRGBA{255, 0, 0, 255}}},
		{"#00ff0080", Solid{Color: color.NRGBA{0, 255, 0, 128}}},
		{"gradient-blue-dark", Gradient{
			Start:     color.NRGBA{0x1e, 0x40, 0xaf, 255},
			End:       color.NRGBA{0x0f, 0x17, 0x2a, 255},
			Direction: Vertical,
		}},
		{"gradient:#000000, #ffffff, Horizontal", Gradient{
			Start:     color.NRGBA{0, 0, 0, 255},
			End:       color.NRGBA{255, 255, 255, 255},
			Direction: Horizontal,
		}},
	}
	for _, tt := range tests {
		got, err := ParseBackground(tt.spec)
		require.NoError(t, err, tt.spec)
		assert.Equal(t, tt.want, got, tt.spec)
	}

	for _, spec := range []string{"mauve", "gradient-nope", "gradient:#000", "gradient:#000,#fff,sideways", "#12345", "#gggggg"} {
		_, err := ParseBackground(spec)
		assert.ErrorIs(t, err, ErrUnknownBackground, spec)
	}
}

func TestTemplatesParse(t *testing.T) {
	seen := map[string]bool{}
	for _, tpl := range Templates {
		assert.False(t, seen[tpl.ID], "duplicate template %s", tpl.ID)
		seen[tpl.ID] = true
		_, err := ParseBackground("gradient-" + tpl.ID)
		assert.NoError(t, err, tpl.ID)
	}
	assert.Len(t, Templates, 10)
}

func TestGradientRender(t *testing.T) {
	black := color.NRGBA{0, 0, 0, 255}
	white := color.NRGBA{255, 255, 255, 255}

	v := Gradient{Start: black, End: white, Direction: Vertical}.Render(10, 100)
	assert.InDelta(t, 0, int(v.NRGBAAt(5, 0).R), 2)
	assert.InDelta(t, 255, int(v.NRGBAAt(5, 99).R), 2)
	assert.Equal(t, v.NRGBAAt(0, 50), v.NRGBAAt(9, 50))

	h := Gradient{Start: black, End: white, Direction: Horizontal}.Render(100, 10)
	assert.Less(t, h.NRGBAAt(10, 5).R, h.NRGBAAt(90, 5).R)
	assert.Equal(t, h.NRGBAAt(50, 0), h.NRGBAAt(50, 9))

	d := Gradient{Start: black, End: white, Direction: Diagonal}.Render(50, 50)
	assert.Less(t, d.NRGBAAt(0, 0).R, d.NRGBAAt(25, 25).R)
	assert.Less(t, d.NRGBAAt(25, 25).R, d.NRGBAAt(49, 49).R)
}

func TestCaptionBandHeight(t *testing.T) {
	assert.Equal(t, 0, Caption{}.BandHeight())
	assert.True(t, Caption{Name: "  "}.Empty())
	assert.Equal(t, 4+35+1+20+4, Caption{Name: "JANE DOE", Date: "01/02/2024"}.BandHeight())
	assert.Equal(t, 4+35+4, Caption{Name: "JANE DOE"}.BandHeight())
	assert.Equal(t, 4+12+4, Caption{Date: "01/02/2024", DateSize: 12}.BandHeight())
}

func TestCaptionValidate(t *testing.T) {
	assert.NoError(t, Caption{}.Validate())
	assert.Error(t, Caption{NameSize: 60}.Validate())
	assert.Error(t, Caption{DateSize: 5}.Validate())
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05/03/2024", FormatDate(time.Date(2024, time.March, 5, 12, 0, 0, 0, time.UTC)))
}

func TestCaptionDraw(t *testing.T) {
	red := color.NRGBA{255, 0, 0, 255}
	img := solidImage(413, 531, red)
	c := Caption{Name: "JANE DOE", Date: "01/02/2024"}
	require.NoError(t, c.Draw(img))

	top := 531 - c.BandHeight()
	assert.Equal(t, red, img.NRGBAAt(0, top-1), "above the band")

	corner := img.NRGBAAt(0, 530)
	assert.Equal(t, uint8(255), corner.R)
	assert.InDelta(t, 230, int(corner.G), 2)

	dark := 0
	for y := top; y < 531; y++ {
		for x := 0; x < 413; x++ {
			if p := img.NRGBAAt(x, y); p.R < 80 && p.G < 80 {
				dark++
			}
		}
	}
	assert.Greater(t, dark, 50, "expected text pixels in the band")
}

func TestCompose(t *testing.T) {
	blue := color.NRGBA{0, 0, 255, 255}

	t.Run("nil portrait", func(t *testing.T) {
		_, err := Compose(nil, ComposeOptions{})
		assert.ErrorIs(t, err, ErrNoImage)
	})

	t.Run("defaults", func(t *testing.T) {
		out, err := Compose(solidImage(413, 531, blue), ComposeOptions{})
		require.NoError(t, err)
		assert.Equal(t, Passport.Bounds(), out.Bounds())
		assert.Equal(t, blue, out.NRGBAAt(200, 260))
	})

	t.Run("rescales", func(t *testing.T) {
		out, err := Compose(solidImage(100, 128, blue), ComposeOptions{})
		require.NoError(t, err)
		assert.Equal(t, Passport.Bounds(), out.Bounds())
		assert.Equal(t, blue, out.NRGBAAt(200, 260))
	})

	t.Run("transparent portrait shows background", func(t *testing.T) {
		bg, err := ParseBackground("#00ff00")
		require.NoError(t, err)
		doc := Document{Width: 40, Height: 50, DPI: 300}
		out, err := Compose(solidImage(40, 50, color.NRGBA{}), ComposeOptions{Document: doc, Background: bg})
		require.NoError(t, err)
		assert.Equal(t, doc.Bounds(), out.Bounds())
		assert.Equal(t, color.NRGBA{0, 255, 0, 255}, out.NRGBAAt(20, 25))
	})

	t.Run("caption", func(t *testing.T) {
		opts := ComposeOptions{Caption: Caption{Name: "JANE DOE"}}
		out, err := Compose(solidImage(413, 531, blue), opts)
		require.NoError(t, err)
		assert.Equal(t, blue, out.NRGBAAt(0, 0))
		assert.InDelta(t, 230, int(out.NRGBAAt(0, 530).R), 2)
	})

	t.Run("invalid adjustments", func(t *testing.T) {
		_, err := Compose(solidImage(10, 10, blue), ComposeOptions{Adjust: Adjustments{Brightness: 10}})
		assert.Error(t, err)
	})
}
