package app

import (
	"math"

	"github.com/sigwatch/dab-cir/internal/cir"
)

// CIRData accumulates a session's impulse response profiles into the
// delay/time matrix the heatmap is rendered from. Tap magnitudes are
// converted to dB; a zero tap has no defined level and is kept as nil so
// the renderer can leave it at the background color.
type CIRData struct {
	Width, Height         int // delays x frames
	FrameFirst, FrameLast int
	BoundsTracker         *SmoothBounds
	Rows                  [][]*float64

	linearSum   []float64
	linearCount []int
}

func NewCIRData(b *SmoothBounds) *CIRData {
	return &CIRData{
		BoundsTracker: b,
		Rows:          make([][]*float64, 0),
	}
}

func (s *CIRData) Update(p *cir.FrameProfile) {
	s.Width = max(s.Width, len(p.Taps))
	s.Height++

	if s.Height == 1 {
		s.FrameFirst = p.FrameIndex
	}
	s.FrameLast = p.FrameIndex

	if len(s.linearSum) < s.Width {
		s.linearSum = append(s.linearSum, make([]float64, s.Width-len(s.linearSum))...)
		s.linearCount = append(s.linearCount, make([]int, s.Width-len(s.linearCount))...)
	}

	levels := make([]*float64, len(p.Taps))
	for i, tap := range p.Taps {
		s.linearSum[i] += tap
		s.linearCount[i]++

		if tap <= 0 {
			continue
		}
		db := 20 * math.Log10(tap)
		levels[i] = &db
		s.BoundsTracker.Update(levels[i])
	}
	s.Rows = append(s.Rows, levels)
}

// AggregateProfile returns the mean linear tap magnitude per delay over
// all accumulated frames.
func (s *CIRData) AggregateProfile() []float64 {
	profile := make([]float64, s.Width)
	for i := range profile {
		if s.linearCount[i] > 0 {
			profile[i] = s.linearSum[i] / float64(s.linearCount[i])
		}
	}
	return profile
}
