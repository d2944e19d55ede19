package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/passport-photo/pkg/geom"
)

func createTestImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return img
}

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNormalizeFormat(t *testing.T) {
	for in, want := range map[string]string{"": FormatJPEG, "JPEG": FormatJPEG, ".jpg": FormatJPEG, "png": FormatPNG, ".WebP": FormatWebP} {
		got, err := NormalizeFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := NormalizeFormat("gif")
	assert.Error(t, err)
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	p := NewProcessor()
	dir := t.TempDir()
	src := createTestImage(40, 30)

	for _, format := range []string{FormatPNG, FormatJPEG, FormatWebP} {
		t.Run(format, func(t *testing.T) {
			path := filepath.Join(dir, "out."+format)
			require.NoError(t, p.SaveImage(src, path, format, 90))

			img, err := p.LoadImage(path)
			require.NoError(t, err)
			assert.Equal(t, 40, img.Bounds().Dx())
			assert.Equal(t, 30, img.Bounds().Dy())
		})
	}
}

func TestLoadImageMissing(t *testing.T) {
	_, err := NewProcessor().LoadImage(filepath.Join(t.TempDir(), "nope.jpg"))
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	p := NewProcessor()
	img, err := p.Decode(pngBytes(t, createTestImage(8, 6)))
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 8, 6), img.Bounds())

	_, err = p.Decode([]byte("not an image"))
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestLoadImageFromURL(t *testing.T) {
	data := pngBytes(t, createTestImage(12, 10))
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/photo.png":
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write(data)
		case "/page":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := NewProcessor()
	ctx := context.Background()

	img, err := p.LoadImageSmart(ctx, srv.URL+"/photo.png")
	require.NoError(t, err)
	assert.Equal(t, 12, img.Bounds().Dx())

	_, err = p.LoadImageFromURL(ctx, srv.URL+"/page")
	assert.ErrorContains(t, err, "Content-Type")

	_, err = p.LoadImageFromURL(ctx, srv.URL+"/missing")
	assert.ErrorContains(t, err, "404")

	_, err = p.LoadImageFromURL(ctx, "ftp://example.com/a.png")
	assert.ErrorContains(t, err, "unsupported URL scheme")
}

func TestPrepareImageForModel(t *testing.T) {
	p := NewProcessor()
	encoded, err := p.PrepareImageForModel(createTestImage(200, 100), "png", 50, 80)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 50, img.Bounds().Dx())
	assert.Equal(t, 25, img.Bounds().Dy())
}

func TestCreateDebugOverlay(t *testing.T) {
	p := NewProcessor()
	src := createTestImage(200, 200)
	region := geom.SourceRect{X: 40, Y: 50, Width: 100, Height: 120}

	out := p.CreateDebugOverlay(src, region, 10)
	require.Equal(t, src.Bounds(), out.Bounds())

	gold := color.NRGBA{255, 204, 0, 255}
	assert.Equal(t, gold, out.NRGBAAt(90, 50), "top edge")
	assert.Equal(t, gold, out.NRGBAAt(40, 110), "left edge")
	assert.Equal(t, gold, out.NRGBAAt(36, 46), "north-west handle")
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, out.NRGBAAt(90, 110), "center crosshair")
	assert.Equal(t, src.NRGBAAt(10, 10), out.NRGBAAt(10, 10), "outside untouched")
	assert.Equal(t, color.NRGBA{R: 10, G: 10, B: 128, A: 255}, src.NRGBAAt(10, 10), "source untouched")
}
