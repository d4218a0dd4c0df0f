package dab

import (
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
)

// FrameSynchronizer locates the NULL symbol within a single transmission
// frame. The transmitter keys off for the duration of the NULL symbol, so
// its start is the minimum of a sliding magnitude-sum window over the
// frame. The search is subsampled by Stride; the synchronisation error
// this introduces (at most Stride-1 samples) is absorbed by the
// estimator's back-off.
type FrameSynchronizer struct {
	frameLength      int
	nullSymbolLength int
	stride           int
}

func NewFrameSynchronizer(cfg Config) *FrameSynchronizer {
	return &FrameSynchronizer{
		frameLength:      cfg.FrameLength,
		nullSymbolLength: cfg.NullSymbolLength,
		stride:           cfg.Stride,
	}
}

// FindNullOffset returns the NULL symbol start relative to the frame
// start. prefix is the frame's cumulative magnitude profile as produced
// by magnitudePrefix, which makes every candidate window sum a single
// subtraction. Candidate offsets run over [0, frameLength -
// nullSymbolLength) in steps of the stride.
func (s *FrameSynchronizer) FindNullOffset(prefix []float64) int {
	limit := s.frameLength - s.nullSymbolLength
	sums := make([]float64, 0, (limit+s.stride-1)/s.stride)
	for off := 0; off < limit; off += s.stride {
		sums = append(sums, prefix[off+s.nullSymbolLength]-prefix[off])
	}
	return s.stride * floats.MinIdx(sums)
}

// magnitudePrefix returns the cumulative magnitude profile of frame:
// prefix[i] holds the sum of sample magnitudes over frame[:i], so
// prefix[len(frame)] is the total channel power.
func magnitudePrefix(frame []complex128) []float64 {
	prefix := make([]float64, len(frame)+1)
	for i, v := range frame {
		prefix[i+1] = cmplx.Abs(v)
	}
	floats.CumSum(prefix[1:], prefix[1:])
	return prefix
}
