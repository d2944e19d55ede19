package passport

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/draw"
)

// Background paints the area behind the portrait
type Background interface {
	Render(width, height int) *image.NRGBA
}

// Solid fills with a single color
type Solid struct {
	Color color.NRGBA
}

// Render implements Background
func (s Solid) Render(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(s.Color), image.Point{}, draw.Src)
	return img
}

// Direction is the axis a gradient runs along
type Direction string

const (
	Vertical   Direction = "vertical"
	Horizontal Direction = "horizontal"
	Diagonal   Direction = "diagonal"
)

// Gradient is a two-stop linear gradient from Start to End
type Gradient struct {
	Start     color.NRGBA
	End       color.NRGBA
	Direction Direction
}

// Render implements Background
func (g Gradient) Render(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	w, h := float64(width), float64(height)
	diag := w*w + h*h

	for y := 0; y < height; y++ {
		py := float64(y) + 0.5
		for x := 0; x < width; x++ {
			px := float64(x) + 0.5
			var t float64
			switch g.Direction {
			case Horizontal:
				t = px / w
			case Diagonal:
				t = (px*w + py*h) / diag
			default:
				t = py / h
			}
			img.SetNRGBA(x, y, lerp(g.Start, g.End, t))
		}
	}
	return img
}

func lerp(a, b color.NRGBA, t float64) color.NRGBA {
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t + 0.5)
	}
	return color.NRGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: mix(a.A, b.A)}
}

// Template is a named preset gradient
type Template struct {
	ID    string
	Name  string
	Start string
	End   string
}

// Templates are the preset gradients offered for backgrounds
var Templates = []Template{
	{ID: "blue-light", Name: "Blue Light", Start: "#e0f2fe", End: "#0ea5e9"},
	{ID: "blue-dark", Name: "Blue Dark", Start: "#1e40af", End: "#0f172a"},
	{ID: "green-light", Name: "Blue Green", Start: "#1493fcff", End: "#16a34a"},
	{ID: "green-dark", Name: "Gray Dark", Start: "#2d2323ff", End: "#F4F0F0"},
	{ID: "purple-light", Name: "Purple Light", Start: "#f3e8ff", End: "#9333ea"},
	{ID: "purple-dark", Name: "Purple Dark", Start: "#7c3aed", End: "#1e1b4b"},
	{ID: "red-light", Name: "Red Light", Start: "#fef2f2", End: "#dc2626"},
	{ID: "red-dark", Name: "Red Dark", Start: "#991b1b", End: "#0f172a"},
	{ID: "orange-light", Name: "Pink Light", Start: "#fff7ed", End: "#f223a9fd"},
	{ID: "orange-dark", Name: "Orange Dark", Start: "#b54417ff", End: "#0f172a"},
}

var namedColors = map[string]color.NRGBA{
	"white":     {255, 255, 255, 255},
	"black":     {0, 0, 0, 255},
	"gray":      {128, 128, 128, 255},
	"lightgray": {211, 211, 211, 255},
	"blue":      {0, 0, 255, 255},
	"lightblue": {173, 216, 230, 255},
	"red":       {255, 0, 0, 255},
}

// ParseBackground turns a background spec into a Background. Accepted forms:
//
//	white, lightblue, ...          named color
//	#fff, #ffffff, #ffffffff       hex color
//	gradient-<template id>         preset gradient
//	gradient:#start,#end[,dir]     custom gradient, dir vertical|horizontal|diagonal
func ParseBackground(spec string) (Background, error) {
	spec = strings.TrimSpace(spec)
	lower := strings.ToLower(spec)

	switch {
	case lower == "":
		return Solid{Color: namedColors["white"]}, nil
	case strings.HasPrefix(lower, "gradient-"):
		id := strings.TrimPrefix(lower, "gradient-")
		for _, tpl := range Templates {
			if tpl.ID == id {
				g, err := tpl.Gradient()
				if err != nil {
					return nil, err
				}
				return g, nil
			}
		}
		return nil, fmt.Errorf("%w: no gradient template %q", ErrUnknownBackground, id)
	case strings.HasPrefix(lower, "gradient:"):
		return parseGradient(spec[len("gradient:"):])
	case strings.HasPrefix(lower, "#"):
		c, err := ParseHexColor(spec)
		if err != nil {
			return nil, err
		}
		return Solid{Color: c}, nil
	}

	if c, ok := namedColors[lower]; ok {
		return Solid{Color: c}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackground, spec)
}

// Gradient returns the template as a vertical gradient
func (t Template) Gradient() (Gradient, error) {
	start, err := ParseHexColor(t.Start)
	if err != nil {
		return Gradient{}, err
	}
	end, err := ParseHexColor(t.End)
	if err != nil {
		return Gradient{}, err
	}
	return Gradient{Start: start, End: end, Direction: Vertical}, nil
}

func parseGradient(args string) (Background, error) {
	parts := strings.Split(args, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return nil, fmt.Errorf("%w: gradient needs start,end[,direction]", ErrUnknownBackground)
	}

	start, err := ParseHexColor(strings.TrimSpace(parts[0]))
	if err != nil {
		return nil, err
	}
	end, err := ParseHexColor(strings.TrimSpace(parts[1]))
	if err != nil {
		return nil, err
	}

	dir := Vertical
	if len(parts) == 3 {
		switch d := Direction(strings.ToLower(strings.TrimSpace(parts[2]))); d {
		case Vertical, Horizontal, Diagonal:
			dir = d
		default:
			return nil, fmt.Errorf("%w: gradient direction %q", ErrUnknownBackground, parts[2])
		}
	}
	return Gradient{Start: start, End: end, Direction: dir}, nil
}

// ParseHexColor parses #rgb, #rrggbb and #rrggbbaa
func ParseHexColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return color.NRGBA{}, fmt.Errorf("%w: bad hex color %q", ErrUnknownBackground, s)
	}

	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("%w: bad hex color %q", ErrUnknownBackground, s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
