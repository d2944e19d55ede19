package cropeditor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/menta2k/passport-photo/pkg/geom"
	"github.com/menta2k/passport-photo/pkg/types"
)

func TestHandleEndsOnEveryExitEvent(t *testing.T) {
	for _, exit := range []EventType{PointerUp, PointerLeave, PointerCancel} {
		t.Run(string(exit), func(t *testing.T) {
			start := passportRegion(100, 100, 200)
			e := newTestEditor(t, start)
			c := start.Center()

			e.Handle(Event{Type: PointerDown, X: c.X, Y: c.Y})
			require.True(t, Active(e.Interaction()))

			e.Handle(Event{Type: exit, X: c.X, Y: c.Y})
			assert.Equal(t, Idle{}, e.Interaction())

			assert.False(t, e.Handle(Event{Type: PointerMove, X: c.X + 50, Y: c.Y}))
			assert.Equal(t, start, e.Region())
		})
	}
}

func TestReplay(t *testing.T) {
	script := `[
		{"type": "down", "x": 200, "y": 220},
		{"type": "move", "x": 210, "y": 230},
		{"type": "move", "x": 220, "y": 240},
		{"type": "up", "x": 220, "y": 240},
		{"type": "move", "x": 400, "y": 400},
		{"type": "down", "x": 320, "y": 377.142857},
		{"type": "move", "x": 360, "y": 377},
		{"type": "leave", "x": 360, "y": 377}
	]`
	events, err := ReadEvents(strings.NewReader(script))
	require.NoError(t, err)
	require.Len(t, events, 8)

	e := newTestEditor(t, passportRegion(100, 100, 200))
	changes := e.Replay(events)

	assert.Equal(t, 3, changes)
	r := e.Region()
	assert.InDelta(t, 120, r.X, tolerance)
	assert.InDelta(t, 120, r.Y, tolerance)
	assert.InDelta(t, 240, r.Width, tolerance)
	assert.Equal(t, Idle{}, e.Interaction())
}

func TestReadEventsRejectsUnknownType(t *testing.T) {
	_, err := ReadEvents(strings.NewReader(`[{"type": "wheel", "x": 1, "y": 2}]`))
	assert.Error(t, err)

	_, err = ReadEvents(strings.NewReader(`{"type": "down"}`))
	assert.Error(t, err)
}

func TestFocus(t *testing.T) {
	// 1500x1000 previews at 600x400
	e, err := New(createTestImage(1500, 1000), DefaultConfig())
	require.NoError(t, err)

	subject := types.Box{X: 0.4, Y: 0.2, W: 0.2, H: 0.3}
	require.True(t, e.Focus(subject, 0.2))

	r := e.Region()
	assert.InDelta(t, 120*1.4, r.Width, tolerance)
	assert.InDelta(t, 300, r.Center().X, tolerance)
	assert.InDelta(t, 140, r.Center().Y, tolerance)
	assertRegionValid(t, e)

	// Subject box in display space sits inside the region
	assert.LessOrEqual(t, r.X, 0.4*600)
	assert.GreaterOrEqual(t, r.Right(), 0.6*600)
	assert.LessOrEqual(t, r.Y, 0.2*400)
	assert.GreaterOrEqual(t, r.Bottom(), 0.5*400)
}

func TestFocusShiftsInsidePreview(t *testing.T) {
	e, err := New(createTestImage(1500, 1000), DefaultConfig())
	require.NoError(t, err)

	require.True(t, e.Focus(types.Box{X: 0.9, Y: 0.0, W: 0.1, H: 0.4}, 0.5))
	r := e.Region()
	assert.InDelta(t, 600, r.Right(), tolerance)
	assert.InDelta(t, 0, r.Y, tolerance)
	assertRegionValid(t, e)
}

func TestFocusRefused(t *testing.T) {
	start := passportRegion(100, 100, 200)
	e := newTestEditor(t, start)

	assert.False(t, e.Focus(types.Box{X: 0.5, Y: 0.5, W: 0.01, H: 0.01}, 0), "below min size")
	assert.False(t, e.Focus(types.Box{}, 0), "empty box")

	e.Begin(start.Center())
	assert.False(t, e.Focus(types.Box{X: 0.2, Y: 0.2, W: 0.5, H: 0.5}, 0), "gesture in progress")
	assert.Equal(t, start, e.Region())
}

func TestCornerOf(t *testing.T) {
	r := geom.DisplayRect{X: 1, Y: 2, Width: 3, Height: 4}
	assert.Equal(t, geom.DisplayPoint{X: 1, Y: 2}, NorthWest.Of(r))
	assert.Equal(t, geom.DisplayPoint{X: 4, Y: 2}, NorthEast.Of(r))
	assert.Equal(t, geom.DisplayPoint{X: 1, Y: 6}, SouthWest.Of(r))
	assert.Equal(t, geom.DisplayPoint{X: 4, Y: 6}, SouthEast.Of(r))
	assert.Equal(t, "resizing:se", Resizing{Corner: SouthEast}.String())
}
