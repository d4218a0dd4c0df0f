package dab

import (
	"context"
	"errors"
	"math/rand"
	"testing"
)

// buildRecording assembles one frame per NULL offset: unit-magnitude
// noise, a keyed-off block at the given offset and a copy of ref right
// after it, plus enough trailing samples for the last frame's
// correlation windows.
func buildRecording(cfg Config, offsets []int, ref []complex128, rng *rand.Rand) []complex128 {
	tail := cfg.MaxDelay + len(ref)
	channel := unitNoise(len(offsets)*cfg.FrameLength+tail, rng)
	for frame, off := range offsets {
		start := frame * cfg.FrameLength
		for i := 0; i < cfg.NullSymbolLength; i++ {
			channel[start+off+i] = 0
		}
		copy(channel[start+off+cfg.NullSymbolLength:], ref)
	}
	return channel
}

func TestNewScanner(t *testing.T) {
	invalid := testConfig()
	invalid.NullSymbolLength = invalid.FrameLength

	if _, err := NewScanner(invalid); err == nil {
		t.Error("NewScanner() error = nil, want invalid configuration error")
	}
	if _, err := NewScanner(testConfig(), WithWorkers(2)); err != nil {
		t.Errorf("NewScanner() error = %v", err)
	}
}

func TestScan(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(11))
	ref := unitNoise(cfg.ReferenceLength, rng)
	offsets := []int{40, 1500, 2500}

	scanner, err := NewScanner(cfg, WithWorkers(2))
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	channel := buildRecording(cfg, offsets, ref, rng)
	profiles, err := scanner.Scan(context.Background(), channel, ref)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}
	if len(profiles) != len(offsets) {
		t.Fatalf("len(profiles) = %d, want %d", len(profiles), len(offsets))
	}

	for i, p := range profiles {
		if p.FrameIndex != i {
			t.Errorf("profiles[%d].FrameIndex = %d", i, p.FrameIndex)
		}
		if p.NullOffset != offsets[i] {
			t.Errorf("profiles[%d].NullOffset = %d, want %d", i, p.NullOffset, offsets[i])
		}
		if p.ChannelPower <= 0 {
			t.Errorf("profiles[%d].ChannelPower = %g, want positive", i, p.ChannelPower)
		}
		if got := p.PeakDelay(); got != cfg.BackOff {
			t.Errorf("profiles[%d].PeakDelay() = %d, want %d", i, got, cfg.BackOff)
		}
	}
}

func TestScanErrors(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(23))
	ref := unitNoise(cfg.ReferenceLength, rng)

	scanner, err := NewScanner(cfg)
	if err != nil {
		t.Fatalf("NewScanner() error = %v", err)
	}

	t.Run("recording shorter than a frame", func(t *testing.T) {
		channel := unitNoise(cfg.FrameLength-1, rng)
		if _, err := scanner.Scan(context.Background(), channel, ref); !errors.Is(err, ErrInsufficientSamples) {
			t.Errorf("Scan() error = %v, want ErrInsufficientSamples", err)
		}
	})

	t.Run("empty reference", func(t *testing.T) {
		channel := buildRecording(cfg, []int{40}, ref, rng)
		if _, err := scanner.Scan(context.Background(), channel, nil); !errors.Is(err, ErrInsufficientSamples) {
			t.Errorf("Scan() error = %v, want ErrInsufficientSamples", err)
		}
	})

	t.Run("zero power frame", func(t *testing.T) {
		channel := buildRecording(cfg, []int{40, 1500}, ref, rng)
		for i := cfg.FrameLength; i < 2*cfg.FrameLength; i++ {
			channel[i] = 0
		}

		_, err := scanner.Scan(context.Background(), channel, ref)
		if !errors.Is(err, ErrDegenerateInput) {
			t.Fatalf("Scan() error = %v, want ErrDegenerateInput", err)
		}
		var fe *FrameError
		if !errors.As(err, &fe) || fe.Frame != 1 {
			t.Errorf("Scan() error = %v, want FrameError for frame 1", err)
		}
	})

	t.Run("late NULL symbol without trailing samples", func(t *testing.T) {
		late := cfg.FrameLength - cfg.NullSymbolLength - cfg.Stride
		channel := buildRecording(cfg, []int{late}, ref, rng)[:cfg.FrameLength]
		if _, err := scanner.Scan(context.Background(), channel, ref); !errors.Is(err, ErrInsufficientSamples) {
			t.Errorf("Scan() error = %v, want ErrInsufficientSamples", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		channel := buildRecording(cfg, []int{40}, ref, rng)
		if _, err := scanner.Scan(ctx, channel, ref); !errors.Is(err, context.Canceled) {
			t.Errorf("Scan() error = %v, want context.Canceled", err)
		}
	})
}

func TestScanReferenceLength(t *testing.T) {
	cfg := testConfig()
	rng := rand.New(rand.NewSource(31))
	short := unitNoise(cfg.ReferenceLength-10, rng)
	channel := buildRecording(cfg, []int{40}, short, rng)

	t.Run("lenient by default", func(t *testing.T) {
		scanner, err := NewScanner(cfg)
		if err != nil {
			t.Fatalf("NewScanner() error = %v", err)
		}

		profiles, err := scanner.Scan(context.Background(), channel, short)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if got := profiles[0].PeakDelay(); got != cfg.BackOff {
			t.Errorf("PeakDelay() = %d, want %d", got, cfg.BackOff)
		}
	})

	t.Run("strict", func(t *testing.T) {
		strict := cfg
		strict.StrictReferenceLength = true
		scanner, err := NewScanner(strict)
		if err != nil {
			t.Fatalf("NewScanner() error = %v", err)
		}

		if _, err := scanner.Scan(context.Background(), channel, short); !errors.Is(err, ErrReferenceLength) {
			t.Errorf("Scan() error = %v, want ErrReferenceLength", err)
		}
	})
}
