package cropeditor

import "github.com/menta2k/passport-photo/pkg/geom"

// Interaction is the editor's gesture state. Exactly one of Idle, Moving or
// Resizing is held at any time.
type Interaction interface {
	interaction()
	String() string
}

// Idle means no gesture is in progress
type Idle struct{}

// Moving drags the whole region. Offset is the pointer position relative to
// the region origin when the gesture started.
type Moving struct {
	Offset geom.DisplayPoint
}

// Resizing drags one corner while the opposite corner stays put. Anchor is
// the pointer position of the last accepted update.
type Resizing struct {
	Corner Corner
	Anchor geom.DisplayPoint
}

func (Idle) interaction()     {}
func (Moving) interaction()   {}
func (Resizing) interaction() {}

func (Idle) String() string       { return "none" }
func (Moving) String() string     { return "moving" }
func (r Resizing) String() string { return "resizing:" + r.Corner.String() }

// Active reports whether a gesture is in progress
func Active(i Interaction) bool {
	_, idle := i.(Idle)
	return !idle
}
