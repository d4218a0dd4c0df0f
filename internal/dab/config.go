package dab

import "fmt"

// Reference configuration for DAB transmission mode I at 2.048 MS/s.
// The NULL symbol lasts 2656 T (about 1.3 ms), a full transmission frame
// is 96 ms = 196608 T, and the phase reference symbol fills the remaining
// 5208 - 2656 = 2552 T of the synchronisation channel.
const (
	DefaultFrameLength      = 196608
	DefaultNullSymbolLength = 2656
	DefaultReferenceLength  = 2552
	DefaultBackOff          = 50
	DefaultMaxDelay         = 1000
	DefaultStride           = 20
	DefaultSampleRate       = 2_048_000
)

// Config holds the scan parameters. All lengths are in samples at
// SampleRate. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// FrameLength is the duration of one transmission frame.
	FrameLength int `yaml:"frameLength" json:"frameLength"`

	// NullSymbolLength is the duration of the NULL symbol searched for by
	// the synchronizer.
	NullSymbolLength int `yaml:"nullSymbolLength" json:"nullSymbolLength"`

	// ReferenceLength is the expected phase reference symbol length. A
	// loaded waveform of a different length is reported but still used,
	// unless StrictReferenceLength is set.
	ReferenceLength int `yaml:"referenceLength" json:"referenceLength"`

	// BackOff moves the correlation start this many samples before the
	// nominal end of the NULL symbol, giving the correlator margin for
	// the positional error of the subsampled search.
	BackOff int `yaml:"backOff" json:"backOff"`

	// MaxDelay is the number of candidate delays evaluated per frame. In
	// TM1 the longest plausible spacing between carrier components is
	// around 504 T (246 us, or 74 km at the speed of light), which bounds
	// the number of correlations worth computing.
	MaxDelay int `yaml:"maxDelay" json:"maxDelay"`

	// Stride is the subsampling step of the NULL symbol energy search.
	Stride int `yaml:"stride" json:"stride"`

	// SampleRate of the recording, in samples per second.
	SampleRate int `yaml:"sampleRate" json:"sampleRate"`

	// StrictReferenceLength turns a reference waveform length mismatch
	// into a fatal error instead of a warning.
	StrictReferenceLength bool `yaml:"strictReferenceLength" json:"strictReferenceLength"`
}

// DefaultConfig returns the reference TM1 configuration.
func DefaultConfig() Config {
	return Config{
		FrameLength:      DefaultFrameLength,
		NullSymbolLength: DefaultNullSymbolLength,
		ReferenceLength:  DefaultReferenceLength,
		BackOff:          DefaultBackOff,
		MaxDelay:         DefaultMaxDelay,
		Stride:           DefaultStride,
		SampleRate:       DefaultSampleRate,
	}
}

func (c *Config) Validate() error {
	if c.FrameLength <= 0 {
		return fmt.Errorf("dab.Config: frame length must be positive: %d", c.FrameLength)
	}
	if c.NullSymbolLength <= 0 {
		return fmt.Errorf("dab.Config: NULL symbol length must be positive: %d", c.NullSymbolLength)
	}
	if c.NullSymbolLength >= c.FrameLength {
		return fmt.Errorf("dab.Config: NULL symbol length must be shorter than the frame: %d >= %d",
			c.NullSymbolLength, c.FrameLength)
	}
	if c.ReferenceLength <= 0 {
		return fmt.Errorf("dab.Config: reference length must be positive: %d", c.ReferenceLength)
	}
	if c.BackOff < 0 {
		return fmt.Errorf("dab.Config: back-off must not be negative: %d", c.BackOff)
	}
	if c.MaxDelay <= 0 {
		return fmt.Errorf("dab.Config: max delay must be positive: %d", c.MaxDelay)
	}
	if c.Stride <= 0 {
		return fmt.Errorf("dab.Config: stride must be positive: %d", c.Stride)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("dab.Config: sample rate must be positive: %d", c.SampleRate)
	}
	return nil
}
