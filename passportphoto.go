// Package passportphoto turns an ordinary photo into a passport photo.
//
// The source image is shown as a preview in which a crop region with the
// document's aspect ratio is moved and resized by pointer gestures. The
// region can be seeded from a vision model that locates the head. The crop
// is resampled to the document size, laid over a background, tone adjusted
// and captioned.
//
// Basic usage:
//
//	studio := passportphoto.New()
//	img, err := studio.LoadImage(ctx, "portrait.jpg")
//	if err != nil {
//		log.Fatal(err)
//	}
//	ed, err := studio.OpenEditor(img)
//	if err != nil {
//		log.Fatal(err)
//	}
//	ed.Handle(cropeditor.Event{Type: cropeditor.PointerDown, X: 300, Y: 200})
//	ed.Handle(cropeditor.Event{Type: cropeditor.PointerMove, X: 320, Y: 210})
//	ed.Handle(cropeditor.Event{Type: cropeditor.PointerUp, X: 320, Y: 210})
//
//	crop, err := studio.Crop(ed)
//	if err != nil {
//		log.Fatal(err)
//	}
//	photo, err := studio.Compose(crop, passportphoto.Finish{Caption: passport.Caption{Name: "JANE DOE"}})
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = studio.SaveImage(photo, "passport.jpg")
//
// The package consists of these components:
//
//  1. Crop editor (pkg/cropeditor): the region, hit testing and gestures
//  2. Geometry (pkg/geom): display and source coordinate spaces
//  3. Passport (pkg/passport): document size, backgrounds, filters, caption
//  4. Processing (pkg/processing): image loading, encoding, debug overlay
//  5. Detection (pkg/detection): optional vision model head locator
package passportphoto

import (
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/menta2k/passport-photo/internal/config"
	"github.com/menta2k/passport-photo/pkg/cropeditor"
	"github.com/menta2k/passport-photo/pkg/detection"
	"github.com/menta2k/passport-photo/pkg/geom"
	"github.com/menta2k/passport-photo/pkg/passport"
	"github.com/menta2k/passport-photo/pkg/processing"
)

// Version of the passport photo library
const Version = "1.0.0"

// Studio wires the editor, the vision detector and the finishing steps
// together with one configuration
type Studio struct {
	config    *config.Config
	processor *processing.Processor
	detector  *detection.Detector
	model     string
	logger    *zap.Logger
}

// Option configures a Studio
type Option func(*Studio)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(s *Studio) { s.logger = logger }
}

// WithDetector enables SuggestRegion using d with the given model
func WithDetector(d *detection.Detector, model string) Option {
	return func(s *Studio) {
		s.detector = d
		s.model = model
	}
}

// New creates a Studio with the default configuration
func New(opts ...Option) *Studio {
	s, _ := NewWithConfig(config.Default(), opts...)
	return s
}

// NewWithConfig creates a Studio with cfg, which must be valid
func NewWithConfig(cfg *config.Config, opts ...Option) (*Studio, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	s := &Studio{
		config:    cfg,
		processor: processing.NewProcessor(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Config returns the configuration in use
func (s *Studio) Config() *config.Config { return s.config }

// Document returns the output document
func (s *Studio) Document() passport.Document { return s.config.Document }

// LoadImage loads a photo from a path or an http(s) URL
func (s *Studio) LoadImage(ctx context.Context, source string) (image.Image, error) {
	img, err := s.processor.LoadImageSmart(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", source, err)
	}
	b := img.Bounds()
	s.logger.Debug("image loaded", zap.String("source", source), zap.Int("width", b.Dx()), zap.Int("height", b.Dy()))
	return img, nil
}

// OpenEditor starts a crop editor on img with the document's aspect ratio
func (s *Studio) OpenEditor(img image.Image) (*cropeditor.Editor, error) {
	ed, err := cropeditor.New(img, s.config.EditorConfig())
	if err != nil {
		return nil, err
	}
	s.logger.Debug("editor opened",
		zap.Float64("scale", float64(ed.Scale())),
		zap.Stringer("region", ed.Region()))
	return ed, nil
}

// SuggestRegion moves the region onto the head found by the vision model.
// It reports whether the region changed. Without a detector, or when the
// model finds no usable head, the region is left alone and no error is
// returned; transport errors are returned.
func (s *Studio) SuggestRegion(ctx context.Context, ed *cropeditor.Editor) (bool, error) {
	if s.detector == nil {
		return false, nil
	}

	imgB64, err := s.processor.PrepareImageForModel(ed.Source(), processing.FormatJPEG, s.config.Vision.MaxDim, 85)
	if err != nil {
		return false, fmt.Errorf("failed to encode image for model: %w", err)
	}

	box, err := s.detector.LocateHead(ctx, s.model, imgB64)
	if errors.Is(err, detection.ErrNoSubject) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("head detection: %w", err)
	}

	if !ed.Focus(box, s.config.Vision.Padding) {
		s.logger.Info("suggested region rejected", zap.Float64("w", box.W), zap.Float64("h", box.H))
		return false, nil
	}
	s.logger.Info("region suggested", zap.Stringer("region", ed.Region()))
	return true, nil
}

// Crop resamples the editor's region to the document size
func (s *Studio) Crop(ed *cropeditor.Editor) (*image.NRGBA, error) {
	doc := s.config.Document
	out, err := ed.Apply(doc.Width, doc.Height)
	if err != nil {
		return nil, fmt.Errorf("crop: %w", err)
	}
	s.logger.Debug("cropped", zap.Stringer("source_region", ed.SourceRegion()))
	return out, nil
}

// Finish holds the finishing choices for a cropped portrait. A nil
// Background is white; zero Adjust leaves tones alone.
type Finish struct {
	Background passport.Background
	Adjust     passport.Adjustments
	Caption    passport.Caption
}

// Compose finishes a cropped portrait as the configured document
func (s *Studio) Compose(portrait image.Image, f Finish) (*image.NRGBA, error) {
	return passport.Compose(portrait, passport.ComposeOptions{
		Document:   s.config.Document,
		Background: f.Background,
		Adjust:     f.Adjust,
		Caption:    f.Caption,
	})
}

// SaveImage writes img to path. The format follows the path's extension,
// falling back to the configured output format.
func (s *Studio) SaveImage(img image.Image, path string) error {
	format := s.config.Output.Format
	if ext := filepath.Ext(path); ext != "" {
		format = ext
	}
	if err := s.processor.SaveImage(img, path, format, s.config.Output.Quality); err != nil {
		return err
	}
	s.logger.Info("image saved", zap.String("path", path))
	return nil
}

// Request describes one run of the whole pipeline
type Request struct {
	Source   string
	Detect   bool
	Gestures []cropeditor.Event
	Finish   Finish
}

// Result is the outcome of Make
type Result struct {
	Photo     *image.NRGBA
	Source    image.Image
	Region    geom.DisplayRect
	Crop      geom.SourceRect
	Scale     geom.Scale
	Suggested bool
	Changes   int
}

// Make loads the source, optionally seeds the region from the vision model,
// replays the gestures and finishes the crop. A failed detection is logged
// and the centered region is kept.
func (s *Studio) Make(ctx context.Context, req Request) (*Result, error) {
	img, err := s.LoadImage(ctx, req.Source)
	if err != nil {
		return nil, err
	}
	ed, err := s.OpenEditor(img)
	if err != nil {
		return nil, err
	}

	res := &Result{Source: img, Scale: ed.Scale()}
	if req.Detect {
		res.Suggested, err = s.SuggestRegion(ctx, ed)
		if err != nil {
			s.logger.Warn("keeping centered region", zap.Error(err))
		}
	}
	res.Changes = ed.Replay(req.Gestures)
	ed.End()

	crop, err := s.Crop(ed)
	if err != nil {
		return nil, err
	}
	res.Photo, err = s.Compose(crop, req.Finish)
	if err != nil {
		return nil, err
	}
	res.Region = ed.Region()
	res.Crop = ed.SourceRegion()
	return res, nil
}
