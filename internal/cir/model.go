package cir

import "time"

// SpeedOfLight is used to translate tap delays into path-length
// differences, in meters per second.
const SpeedOfLight = 299_792_458.0

// ScanSession describes one stored analysis run over a single recording.
type ScanSession struct {
	ID           int64     `json:"ID"`                      // Unique identifier for the session
	StartTime    time.Time `json:"startTime"`               // When the scan was performed
	SourceFile   string    `json:"sourceFile"`              // Path of the analyzed IQ recording
	SampleFormat string    `json:"sampleFormat"`            // Stored sample format ("u8" or "fc64")
	SampleRate   int       `json:"sampleRate"`              // Samples per second of the recording
	Config       *string   `json:"config,string,omitempty"` // Scan configuration in JSON format
}

// FrameProfile is the channel impulse response estimated from one
// transmission frame: one normalized correlation magnitude per candidate
// delay, plus the NULL symbol position the estimate was anchored on.
type FrameProfile struct {
	FrameIndex   int       `json:"frameIndex"`   // Position of the frame within the recording
	NullOffset   int       `json:"nullOffset"`   // NULL symbol start, relative to the frame start
	ChannelPower float64   `json:"channelPower"` // Sum of sample magnitudes over the frame
	Taps         []float64 `json:"taps"`         // Normalized correlation magnitude per delay
}

// PeakDelay returns the delay index with the strongest tap, or -1 for an
// empty profile.
func (p *FrameProfile) PeakDelay() int {
	peak := -1
	var best float64
	for i, tap := range p.Taps {
		if peak < 0 || tap > best {
			peak, best = i, tap
		}
	}
	return peak
}

// DelaySeconds converts a tap index into the corresponding propagation
// delay for a recording at the given sample rate.
func DelaySeconds(delay, sampleRate int) float64 {
	return float64(delay) / float64(sampleRate)
}

// DelayMeters converts a tap index into the extra path length a multipath
// component travelled relative to the first arrival.
func DelayMeters(delay, sampleRate int) float64 {
	return DelaySeconds(delay, sampleRate) * SpeedOfLight
}
