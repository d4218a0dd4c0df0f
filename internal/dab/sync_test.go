package dab

import (
	"math"
	"math/cmplx"
	"math/rand"
	"testing"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.FrameLength = 3000
	cfg.NullSymbolLength = 300
	cfg.ReferenceLength = 100
	cfg.BackOff = 50
	cfg.MaxDelay = 120
	cfg.Stride = 20
	return cfg
}

// unitNoise returns n samples of unit magnitude and random phase, so
// every magnitude-sum window has the same energy unless it covers a
// keyed-off region.
func unitNoise(n int, rng *rand.Rand) []complex128 {
	samples := make([]complex128, n)
	for i := range samples {
		samples[i] = cmplx.Rect(1, 2*math.Pi*rng.Float64())
	}
	return samples
}

func TestFrameSynchronizer(t *testing.T) {
	cfg := testConfig()
	fs := NewFrameSynchronizer(cfg)
	lastCandidate := cfg.FrameLength - cfg.NullSymbolLength - cfg.Stride

	tests := []struct {
		name string
		gap  int // start of the keyed-off block
		want int
	}{
		{"frame start", 0, 0},
		{"stride aligned", 1040, 1040},
		{"last candidate", lastCandidate, lastCandidate},
		{"off grid rounds to nearest window", 1047, 1040},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frame := unitNoise(cfg.FrameLength, rand.New(rand.NewSource(1)))
			for i := 0; i < cfg.NullSymbolLength; i++ {
				frame[tt.gap+i] = 0
			}

			if got := fs.FindNullOffset(magnitudePrefix(frame)); got != tt.want {
				t.Errorf("FindNullOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMagnitudePrefix(t *testing.T) {
	frame := []complex128{3 + 4i, 0, 1, -2i}
	want := []float64{0, 5, 5, 6, 8}

	prefix := magnitudePrefix(frame)
	if len(prefix) != len(want) {
		t.Fatalf("len(prefix) = %d, want %d", len(prefix), len(want))
	}
	for i := range want {
		if math.Abs(prefix[i]-want[i]) > 1e-12 {
			t.Errorf("prefix[%d] = %g, want %g", i, prefix[i], want[i])
		}
	}
}
