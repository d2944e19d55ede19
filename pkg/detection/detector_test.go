package detection

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/menta2k/passport-photo/pkg/types"
)

type fakeClient struct {
	result *types.AnalysisResult
	text   string
	err    error
	prompt string
}

func (f *fakeClient) Query(_ context.Context, _, prompt, _ string) (string, error) {
	f.prompt = prompt
	return f.text, f.err
}

func (f *fakeClient) Analyze(_ context.Context, _, prompt, _ string) (*types.AnalysisResult, error) {
	f.prompt = prompt
	return f.result, f.err
}

func person(conf float64, box types.Box) *types.AnalysisResult {
	cx, cy := box.Center()
	return &types.AnalysisResult{
		Primary: types.Primary{Label: "person", Confidence: conf, Box: box, Cx: cx, Cy: cy},
		Tags:    []string{" Portrait", "portrait", "FACE", "", "a", "b", "c", "d"},
	}
}

func TestLocateHead(t *testing.T) {
	box := types.Box{X: 0.3, Y: 0.1, W: 0.4, H: 0.5}
	fc := &fakeClient{result: person(0.9, box)}
	d := NewDetector(fc)

	got, err := d.LocateHead(context.Background(), "llava", "")
	require.NoError(t, err)
	assert.InDelta(t, box.X, got.X, 1e-9)
	assert.InDelta(t, box.Y, got.Y, 1e-9)
	assert.InDelta(t, box.W, got.W, 1e-9)
	assert.InDelta(t, box.H, got.H, 1e-9)
	assert.Equal(t, HeadPrompt, fc.prompt)
}

func TestLocateHeadClampsBox(t *testing.T) {
	fc := &fakeClient{result: person(0.9, types.Box{X: 0.8, Y: -0.1, W: 0.5, H: 0.5})}
	got, err := NewDetector(fc).LocateHead(context.Background(), "llava", "")
	require.NoError(t, err)
	assert.InDelta(t, 0.8, got.X, 1e-9)
	assert.InDelta(t, 0.2, got.W, 1e-9)
	assert.InDelta(t, 0, got.Y, 1e-9)
	assert.InDelta(t, 0.4, got.H, 1e-9)
}

func TestLocateHeadNotUsable(t *testing.T) {
	tests := []struct {
		name   string
		result *types.AnalysisResult
	}{
		{"low confidence", person(0.1, types.Box{X: 0.2, Y: 0.2, W: 0.5, H: 0.5})},
		{"none label", &types.AnalysisResult{Primary: types.Primary{Label: "None", Confidence: 0.9, Box: types.DefaultHeadBox}}},
		{"empty box", person(0.9, types.Box{X: 0.5, Y: 0.5})},
		{"parse fallback", types.ParseAnalysisResult("no idea")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zap.InfoLevel)
			d := NewDetector(&fakeClient{result: tt.result}, WithLogger(zap.New(core)))

			_, err := d.LocateHead(context.Background(), "llava", "")
			assert.ErrorIs(t, err, ErrNoSubject)
			assert.Equal(t, 1, logs.FilterMessage("head detection not usable").Len())
		})
	}
}

func TestLocateHeadClientError(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := NewDetector(&fakeClient{err: boom}).LocateHead(context.Background(), "llava", "")
	assert.ErrorIs(t, err, boom)
}

func TestMinConfidence(t *testing.T) {
	fc := &fakeClient{result: person(0.2, types.Box{X: 0.2, Y: 0.2, W: 0.5, H: 0.5})}
	_, err := NewDetector(fc, WithMinConfidence(0.1)).LocateHead(context.Background(), "m", "")
	assert.NoError(t, err)
}

func TestDetectNormalizesTags(t *testing.T) {
	fc := &fakeClient{result: person(0.9, types.DefaultHeadBox)}
	res, err := NewDetector(fc).Detect(context.Background(), "m", "", "custom")
	require.NoError(t, err)
	assert.Equal(t, []string{"portrait", "face", "a", "b", "c"}, res.Tags)
	assert.Equal(t, "custom", fc.prompt)
}

func TestProbe(t *testing.T) {
	fc := &fakeClient{text: "a man in a suit"}
	text, err := NewDetector(fc).Probe(context.Background(), "m", "")
	require.NoError(t, err)
	assert.Equal(t, "a man in a suit", text)
	assert.Equal(t, ProbePrompt, fc.prompt)
}
