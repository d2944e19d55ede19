package passport

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// ComposeOptions controls how a cropped portrait becomes a document.
// Zero values pick the passport document, a white background and no
// adjustments.
type ComposeOptions struct {
	Document   Document
	Background Background
	Adjust     Adjustments
	Caption    Caption
}

func (o ComposeOptions) withDefaults() ComposeOptions {
	if !o.Document.valid() {
		o.Document = Passport
	}
	if o.Background == nil {
		o.Background = Solid{Color: namedColors["white"]}
	}
	if o.Adjust == (Adjustments{}) {
		o.Adjust = NoAdjustments
	}
	return o
}

// Compose lays the portrait over the background, applies tone adjustments
// to the portrait only and prints the caption. A portrait whose size differs
// from the document is rescaled to fill it.
func Compose(portrait image.Image, opts ComposeOptions) (*image.NRGBA, error) {
	if portrait == nil {
		return nil, ErrNoImage
	}
	opts = opts.withDefaults()
	if err := opts.Adjust.Validate(); err != nil {
		return nil, fmt.Errorf("invalid adjustments: %w", err)
	}
	if err := opts.Caption.Validate(); err != nil {
		return nil, fmt.Errorf("invalid caption: %w", err)
	}

	doc := opts.Document
	out := opts.Background.Render(doc.Width, doc.Height)
	adjusted := opts.Adjust.Apply(portrait)

	if adjusted.Bounds().Size() == out.Bounds().Size() {
		draw.Draw(out, out.Bounds(), adjusted, adjusted.Bounds().Min, draw.Over)
	} else {
		draw.BiLinear.Scale(out, out.Bounds(), adjusted, adjusted.Bounds(), draw.Over, nil)
	}

	if err := opts.Caption.Draw(out); err != nil {
		return nil, err
	}
	return out, nil
}
