package dab

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// ImpulseResponseEstimator turns a synchronised frame into a channel
// impulse response estimate. It slides the phase reference waveform over
// MaxDelay candidate delays starting just before the end of the NULL
// symbol and records the correlation magnitude at each, normalized by
// the frame's channel power. Each multipath component of the received
// signal carries its own delayed copy of the reference, so the taps
// trace the arrival profile of the channel.
type ImpulseResponseEstimator struct {
	nullSymbolLength int
	backOff          int
	maxDelay         int
}

func NewImpulseResponseEstimator(cfg Config) *ImpulseResponseEstimator {
	return &ImpulseResponseEstimator{
		nullSymbolLength: cfg.NullSymbolLength,
		backOff:          cfg.BackOff,
		maxDelay:         cfg.MaxDelay,
	}
}

// Estimate computes the tap magnitudes for the frame starting at
// frameStart in channel, with the NULL symbol at nullOffset relative to
// the frame start. channelPower is the frame's total magnitude sum. A
// correlation window falling outside the recording is a hard error;
// truncating it would skew the correlation statistics.
func (e *ImpulseResponseEstimator) Estimate(channel, reference []complex128, frameStart, nullOffset int, channelPower float64) ([]float64, error) {
	start := frameStart + nullOffset + e.nullSymbolLength - e.backOff
	end := start + e.maxDelay - 1 + len(reference)
	if start < 0 || end > len(channel) {
		return nil, fmt.Errorf("correlation window [%d:%d) outside recording of %d samples: %w",
			start, end, len(channel), ErrInsufficientSamples)
	}

	taps := make([]float64, e.maxDelay)
	for d := range taps {
		taps[d] = correlationMagnitude(reference, channel[start+d:start+d+len(reference)])
	}
	floats.Scale(1/channelPower, taps)
	return taps, nil
}

// correlationMagnitude returns the magnitude of the complex Pearson
// correlation coefficient between two equally long sample windows. The
// result is in [0, 1] and invariant under scaling or phase rotation of
// either window; a window with zero variance yields 0.
func correlationMagnitude(a, b []complex128) float64 {
	n := complex(float64(len(a)), 0)

	var meanA, meanB complex128
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov complex128
	var varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * cmplx.Conj(db)
		varA += real(da)*real(da) + imag(da)*imag(da)
		varB += real(db)*real(db) + imag(db)*imag(db)
	}

	den := math.Sqrt(varA * varB)
	if den == 0 {
		return 0
	}
	return cmplx.Abs(cov) / den
}
