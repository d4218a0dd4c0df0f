package dab

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientSamples is returned when the recording is shorter
	// than one frame, or a correlation window would read past its end.
	// Truncating or zero-padding instead would corrupt the correlation
	// and energy sums, so the scan fails outright.
	ErrInsufficientSamples = errors.New("not enough samples")

	// ErrDegenerateInput is returned when a frame carries no energy at
	// all, leaving the power normalization undefined.
	ErrDegenerateInput = errors.New("degenerate input: frame has zero power")

	// ErrReferenceLength is returned in strict mode when the loaded
	// reference waveform length does not match the configured one.
	ErrReferenceLength = errors.New("reference waveform length mismatch")
)

// FrameError wraps an error with the index of the frame it occurred in.
type FrameError struct {
	Frame int
	Err   error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("frame %d: %s", e.Frame, e.Err)
}

func (e *FrameError) Unwrap() error {
	return e.Err
}
