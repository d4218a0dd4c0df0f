package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sigwatch/dab-cir/internal/iq"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	data := `
scan:
  maxDelay: 500
  strictReferenceLength: true
capture:
  frequency: 225648000
  duration: 10s
  gain: 20
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewConfig()
	c.Format = iq.FormatFC64
	if err := c.loadFile(path); err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}

	// Overridden fields take the file values, the rest keep defaults.
	if c.Scan.MaxDelay != 500 {
		t.Errorf("Scan.MaxDelay = %d, want 500", c.Scan.MaxDelay)
	}
	if !c.Scan.StrictReferenceLength {
		t.Error("Scan.StrictReferenceLength = false, want true")
	}
	if c.Scan.FrameLength != 196608 {
		t.Errorf("Scan.FrameLength = %d, want default 196608", c.Scan.FrameLength)
	}

	if c.Capture == nil {
		t.Fatal("Capture = nil")
	}
	if c.Capture.Frequency != 225_648_000 {
		t.Errorf("Capture.Frequency = %d", c.Capture.Frequency)
	}
	if got := time.Duration(c.Capture.Duration); got != 10*time.Second {
		t.Errorf("Capture.Duration = %s, want 10s", got)
	}
	if c.Capture.SampleRate != c.Scan.SampleRate {
		t.Errorf("Capture.SampleRate = %d, want scan sample rate %d", c.Capture.SampleRate, c.Scan.SampleRate)
	}
	if c.Format != iq.FormatU8 {
		t.Errorf("Format = %q, want u8 when capturing", c.Format)
	}
}

func TestLoadFileScanOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scan.yaml")
	if err := os.WriteFile(path, []byte("scan:\n  stride: 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	c := NewConfig()
	if err := c.loadFile(path); err != nil {
		t.Fatalf("loadFile() error = %v", err)
	}
	if c.Scan.Stride != 10 {
		t.Errorf("Scan.Stride = %d, want 10", c.Scan.Stride)
	}
	if c.Capture != nil {
		t.Errorf("Capture = %+v, want nil", c.Capture)
	}
	if err := c.Scan.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}
