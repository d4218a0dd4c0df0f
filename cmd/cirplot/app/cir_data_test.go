package app

import (
	"math"
	"testing"

	"github.com/sigwatch/dab-cir/internal/cir"
)

func TestCIRDataUpdate(t *testing.T) {
	data := NewCIRData(NewSmoothBounds(0.3))

	data.Update(&cir.FrameProfile{FrameIndex: 3, Taps: []float64{0.1, 0, 0.01}})
	data.Update(&cir.FrameProfile{FrameIndex: 4, Taps: []float64{0.3, 0.2, 0.03}})

	if data.Width != 3 || data.Height != 2 {
		t.Fatalf("matrix = %dx%d, want 3x2", data.Width, data.Height)
	}
	if data.FrameFirst != 3 || data.FrameLast != 4 {
		t.Errorf("frame range = %d - %d, want 3 - 4", data.FrameFirst, data.FrameLast)
	}

	if got := *data.Rows[0][0]; math.Abs(got-(-20)) > 1e-9 {
		t.Errorf("Rows[0][0] = %g dB, want -20", got)
	}
	if data.Rows[0][1] != nil {
		t.Errorf("Rows[0][1] = %v, want nil for a zero tap", *data.Rows[0][1])
	}
	if got := *data.Rows[1][2]; math.Abs(got-20*math.Log10(0.03)) > 1e-9 {
		t.Errorf("Rows[1][2] = %g dB", got)
	}
}

func TestCIRDataAggregateProfile(t *testing.T) {
	data := NewCIRData(NewSmoothBounds(0.3))
	data.Update(&cir.FrameProfile{FrameIndex: 0, Taps: []float64{0.1, 0.4}})
	data.Update(&cir.FrameProfile{FrameIndex: 1, Taps: []float64{0.3, 0.2}})

	profile := data.AggregateProfile()
	want := []float64{0.2, 0.3}
	if len(profile) != len(want) {
		t.Fatalf("len(profile) = %d, want %d", len(profile), len(want))
	}
	for i := range want {
		if math.Abs(profile[i]-want[i]) > 1e-12 {
			t.Errorf("profile[%d] = %g, want %g", i, profile[i], want[i])
		}
	}
}

func TestRendererSmoke(t *testing.T) {
	data := NewCIRData(NewSmoothBounds(0.3))
	taps := make([]float64, 300)
	for i := range taps {
		taps[i] = 0.001 + 0.0005*float64(i%7)
	}
	for frame := 0; frame < 50; frame++ {
		data.Update(&cir.FrameProfile{FrameIndex: frame, Taps: taps})
	}

	renderer, err := NewRenderer(RenderConfig{
		ColorTheme:    ThermalTheme,
		SampleRate:    2_048_000,
		FrameDuration: 96_000_000, // 96ms in nanoseconds
	})
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	img, err := renderer.Render(data, data.BoundsTracker.Current())
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	wantWidth := data.Width + defaultLeftBorder + defaultRightBorder
	wantHeight := data.Height + defaultTopBorder + defaultBottomBorder
	if got := img.Bounds().Dx(); got != wantWidth {
		t.Errorf("image width = %d, want %d", got, wantWidth)
	}
	if got := img.Bounds().Dy(); got != wantHeight {
		t.Errorf("image height = %d, want %d", got, wantHeight)
	}
}

func TestNewRendererInvalidSampleRate(t *testing.T) {
	if _, err := NewRenderer(RenderConfig{}); err == nil {
		t.Error("NewRenderer() error = nil for missing sample rate")
	}
}
