// Package detection asks a vision model where the head and shoulders are in a
// portrait so the crop region can start around them.
package detection

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/menta2k/passport-photo/pkg/client"
	"github.com/menta2k/passport-photo/pkg/types"
)

// ErrNoSubject is returned when the model finds no usable head in the image
var ErrNoSubject = errors.New("no head found")

// ProbePrompt checks whether a model can see images at all
const ProbePrompt = `What do you see in this image? Describe it briefly.`

// HeadPrompt asks for the head-and-shoulders box of the main person
const HeadPrompt = `You locate the person in an identity photo.

Return JSON only:
{
  "primary": {
    "label": "person",
    "confidence": 0.0,
    "box": {"x": 0.0, "y": 0.0, "w": 0.0, "h": 0.0},
    "cx": 0.0,
    "cy": 0.0
  },
  "description": "short neutral sentence (max 20 words)",
  "tags": ["tag1", "tag2", "tag3"]
}

RULES
- Coordinates are normalized to [0,1], not pixels.
- The box covers the head from the top of the hair to the chin, plus the top of the shoulders.
- cx, cy is the center of the face.
- If several people are visible, pick the largest face.
- Describe only what is visible. Do not guess identities.
- If no person is visible, return label "none" with confidence 0.
- JSON only. No markdown, no code fences, no comments, no trailing commas.`

// DefaultMinConfidence is the confidence below which a detection is ignored
const DefaultMinConfidence = 0.3

// Detector locates heads using a vision model
type Detector struct {
	client        client.VisionClient
	logger        *zap.Logger
	minConfidence float64
}

// Option configures a Detector
type Option func(*Detector)

// WithLogger sets the logger; the default discards everything
func WithLogger(logger *zap.Logger) Option {
	return func(d *Detector) { d.logger = logger }
}

// WithMinConfidence sets the confidence a detection needs to be used
func WithMinConfidence(c float64) Option {
	return func(d *Detector) { d.minConfidence = c }
}

// NewDetector creates a detector backed by c
func NewDetector(c client.VisionClient, opts ...Option) *Detector {
	d := &Detector{client: c, logger: zap.NewNop(), minConfidence: DefaultMinConfidence}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect runs prompt against the image and returns the cleaned up result.
// The result may describe an unusable detection; see Usable.
func (d *Detector) Detect(ctx context.Context, model, imgB64, prompt string) (*types.AnalysisResult, error) {
	result, err := d.client.Analyze(ctx, model, prompt, imgB64)
	if err != nil {
		return nil, err
	}

	result.Primary.Box = result.Primary.Box.Clamp()
	result.Primary.Cx = clamp(result.Primary.Cx, 0, 1)
	result.Primary.Cy = clamp(result.Primary.Cy, 0, 1)
	result.Tags = normalizeTags(result.Tags)
	if isFallback(result) {
		result.Primary.Label = "none"
		result.Primary.Confidence = 0
	}
	return result, nil
}

// LocateHead returns the normalized head-and-shoulders box, or ErrNoSubject
// when the model's answer is not usable
func (d *Detector) LocateHead(ctx context.Context, model, imgB64 string) (types.Box, error) {
	result, err := d.Detect(ctx, model, imgB64, HeadPrompt)
	if err != nil {
		d.logger.Warn("head detection failed", zap.String("model", model), zap.Error(err))
		return types.Box{}, err
	}

	log := d.logger.With(
		zap.String("model", model),
		zap.String("label", result.Primary.Label),
		zap.Float64("confidence", result.Primary.Confidence),
		zap.Strings("tags", result.Tags),
	)
	if !d.Usable(result) {
		log.Info("head detection not usable")
		return types.Box{}, ErrNoSubject
	}

	box := result.Primary.Box
	log.Debug("head located",
		zap.Float64("x", box.X), zap.Float64("y", box.Y),
		zap.Float64("w", box.W), zap.Float64("h", box.H))
	return box, nil
}

// Usable reports whether result names a subject with a non-empty box and
// enough confidence
func (d *Detector) Usable(result *types.AnalysisResult) bool {
	if result == nil {
		return false
	}
	p := result.Primary
	if strings.EqualFold(p.Label, "none") || p.Confidence < d.minConfidence {
		return false
	}
	return p.Box.W > 0 && p.Box.H > 0
}

// Probe asks the model for a short description, to check it accepts images
func (d *Detector) Probe(ctx context.Context, model, imgB64 string) (string, error) {
	return d.client.Query(ctx, model, ProbePrompt, imgB64)
}

func isFallback(result *types.AnalysisResult) bool {
	for _, t := range result.Tags {
		if t == "fallback" {
			return true
		}
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeTags lowercases, trims and dedupes tags, keeping at most five
func normalizeTags(tags []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 5)
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
		if len(out) == 5 {
			break
		}
	}
	return out
}
