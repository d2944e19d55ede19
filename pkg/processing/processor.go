// Package processing loads, encodes and annotates images for the passport
// pipeline.
package processing

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	"github.com/menta2k/passport-photo/pkg/geom"
)

// ErrUnknownFormat is returned for image data no registered decoder accepts
var ErrUnknownFormat = errors.New("image: unknown or unsupported format")

// Formats the processor can write
const (
	FormatJPEG = "jpg"
	FormatPNG  = "png"
	FormatWebP = "webp"
)

const userAgent = "passport-photo/1.0"

// Processor handles image input and output
type Processor struct {
	httpClient *http.Client
}

// NewProcessor creates a new image processor
func NewProcessor() *Processor {
	return &Processor{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

// LoadImageFromURL downloads and decodes an image over http or https
func (p *Processor) LoadImageFromURL(ctx context.Context, imageURL string) (image.Image, error) {
	parsedURL, err := url.Parse(imageURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are supported)", parsedURL.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		return nil, fmt.Errorf("URL does not point to an image (Content-Type: %s)", ct)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return p.Decode(data)
}

// LoadImage opens a file, applying EXIF orientation. WebP files the
// registered decoders reject are retried with libwebp.
func (p *Processor) LoadImage(path string) (image.Image, error) {
	img, openErr := imaging.Open(path, imaging.AutoOrientation(true))
	if openErr == nil {
		return img, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, fmt.Errorf("failed to load %s: %w", path, openErr)
}

// LoadImageSmart loads from a URL when source looks like one, otherwise from disk
func (p *Processor) LoadImageSmart(ctx context.Context, source string) (image.Image, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.LoadImageFromURL(ctx, source)
	}
	return p.LoadImage(source)
}

// Decode decodes in-memory image data
func (p *Processor) Decode(data []byte) (image.Image, error) {
	if img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true)); err == nil {
		return img, nil
	}
	if img, err := webp.Decode(bytes.NewReader(data)); err == nil {
		return img, nil
	}
	return nil, ErrUnknownFormat
}

// PrepareImageForModel downsizes img so its longer side is at most maxDim
// and returns it base64 encoded for a vision model
func (p *Processor) PrepareImageForModel(img image.Image, format string, maxDim int, quality int) (string, error) {
	if maxDim > 0 {
		b := img.Bounds()
		if w, h := b.Dx(), b.Dy(); w > maxDim || h > maxDim {
			if w >= h {
				img = imaging.Resize(img, maxDim, 0, imaging.Lanczos)
			} else {
				img = imaging.Resize(img, 0, maxDim, imaging.Lanczos)
			}
		}
	}

	var buf bytes.Buffer
	if err := p.Encode(&buf, img, format, quality); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// NormalizeFormat maps a format name or file extension onto one of the
// supported formats
func NormalizeFormat(format string) (string, error) {
	switch strings.TrimPrefix(strings.ToLower(format), ".") {
	case "jpg", "jpeg", "":
		return FormatJPEG, nil
	case "png":
		return FormatPNG, nil
	case "webp":
		return FormatWebP, nil
	}
	return "", fmt.Errorf("unsupported output format %q", format)
}

// Encode writes img to w. Quality applies to jpg and lossy webp; a webp
// quality of 100 is written lossless.
func (p *Processor) Encode(w io.Writer, img image.Image, format string, quality int) error {
	f, err := NormalizeFormat(format)
	if err != nil {
		return err
	}
	if quality <= 0 || quality > 100 {
		quality = 95
	}

	switch f {
	case FormatWebP:
		return webp.Encode(w, img, &webp.Options{Lossless: quality == 100, Quality: float32(quality)})
	case FormatPNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	default:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: quality})
	}
}

// SaveImage writes img to path in the given format
func (p *Processor) SaveImage(img image.Image, path, format string, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := p.Encode(f, img, format, quality); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}

// CreateDebugOverlay draws the crop region onto a copy of img: the outline,
// a filled square on each corner handle of side handle source pixels and a
// crosshair on the region center. The image center is marked in blue.
func (p *Processor) CreateDebugOverlay(img image.Image, region geom.SourceRect, handle float64) *image.NRGBA {
	nrgba := imaging.Clone(img)
	w := nrgba.Bounds().Dx()
	h := nrgba.Bounds().Dy()

	gold := color.NRGBA{255, 204, 0, 255}
	red := color.NRGBA{255, 0, 0, 255}
	blue := color.NRGBA{0, 170, 255, 255}
	stroke := int(math.Max(2, 0.004*float64(min(w, h))))
	cross := int(math.Max(4, 0.01*float64(min(w, h))))

	r := region.Rectangle()
	if r.Empty() {
		return nrgba
	}
	for s := 0; s < stroke; s++ {
		drawHLine(nrgba, r.Min.Y+s, r.Min.X, r.Max.X, gold)
		drawHLine(nrgba, r.Max.Y-1-s, r.Min.X, r.Max.X, gold)
		drawVLine(nrgba, r.Min.X+s, r.Min.Y, r.Max.Y, gold)
		drawVLine(nrgba, r.Max.X-1-s, r.Min.Y, r.Max.Y, gold)
	}

	half := int(math.Max(handle/2, float64(stroke)))
	for _, c := range []image.Point{r.Min, {r.Max.X - 1, r.Min.Y}, {r.Min.X, r.Max.Y - 1}, {r.Max.X - 1, r.Max.Y - 1}} {
		for y := c.Y - half; y <= c.Y+half; y++ {
			drawHLine(nrgba, y, c.X-half, c.X+half+1, gold)
		}
	}

	cx, cy := region.Center()
	px, py := int(cx+0.5), int(cy+0.5)
	drawHLine(nrgba, py, px-cross, px+cross, red)
	drawVLine(nrgba, px, py-cross, py+cross, red)

	ix, iy := w/2, h/2
	drawHLine(nrgba, iy, ix-6, ix+6, blue)
	drawVLine(nrgba, ix, iy-6, iy+6, blue)

	return nrgba
}

func drawHLine(img *image.NRGBA, y, x0, x1 int, c color.NRGBA) {
	b := img.Bounds()
	if y < 0 || y >= b.Dy() {
		return
	}
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	x0, x1 = max(x0, 0), min(x1, b.Dx())
	for x := x0; x < x1; x++ {
		img.SetNRGBA(x, y, c)
	}
}

func drawVLine(img *image.NRGBA, x, y0, y1 int, c color.NRGBA) {
	b := img.Bounds()
	if x < 0 || x >= b.Dx() {
		return
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	y0, y1 = max(y0, 0), min(y1, b.Dy())
	for y := y0; y < y1; y++ {
		img.SetNRGBA(x, y, c)
	}
}
