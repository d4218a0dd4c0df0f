// Package capture records raw IQ files by driving an external `rtl_sdr`
// process.
package capture

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// Runtime is the capture tool binary name
	Runtime = "rtl_sdr"

	// SampleRateMin and SampleRateMax bound the rates the RTL2832U
	// supports
	SampleRateMin = 225_000
	SampleRateMax = 3_200_000
)

type TimeDuration time.Duration

func NewTimeDuration(d time.Duration) TimeDuration {
	return TimeDuration(d)
}

func (d *TimeDuration) UnmarshalYAML(value *yaml.Node) error {
	duration, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("capture.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *TimeDuration) UnmarshalJSON(bytes []byte) error {
	var v string
	if err := json.Unmarshal(bytes, &v); err != nil {
		return err
	}

	duration, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("capture.TimeDuration: failed to parse: %s", err)
	}

	*d = TimeDuration(duration)
	return nil
}

func (d *TimeDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(*d).String())
}

func (d *TimeDuration) String() string {
	return time.Duration(*d).String()
}

// Config is the `rtl_sdr` tool configuration. The tool streams 8-bit
// unsigned interleaved I/Q to stdout; the recorder redirects that into
// the output file.
type Config struct {
	// Required
	Frequency  int64 `yaml:"frequency" json:"frequency"`   // -f center frequency (Hz)
	SampleRate int   `yaml:"sampleRate" json:"sampleRate"` // -s sample rate (Hz)

	// Duration of the capture; converted into the -n sample count.
	// Without it rtl_sdr runs until killed.
	Duration TimeDuration `yaml:"duration" json:"duration"`

	// Common Optional Parameters
	DeviceIndex int `yaml:"deviceIndex" json:"deviceIndex"` // -d device_index (default: 0)
	Gain        int `yaml:"gain" json:"gain"`               // -g tuner_gain in dB (default: automatic)
	PPMError    int `yaml:"ppmError" json:"ppmError"`       // -p ppm_error (default: 0)

	// Hardware Options
	DirectSampling bool `yaml:"directSampling" json:"directSampling"` // -D enable direct sampling (default: off)
	BiasTee        bool `yaml:"biasTee" json:"biasTee"`               // -T enable bias-tee (default: off)
}

func (c *Config) Validate() error {
	if c.Frequency <= 0 {
		return fmt.Errorf("capture.Config: frequency must be positive: %d", c.Frequency)
	}
	if c.SampleRate < SampleRateMin || c.SampleRate > SampleRateMax {
		return fmt.Errorf("capture.Config: invalid sample rate: %d, must be between %d and %d Hz",
			c.SampleRate, SampleRateMin, SampleRateMax)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("capture.Config: duration must be positive: %s", c.Duration.String())
	}
	return nil
}

// SampleCount returns the number of complex samples the capture will
// produce.
func (c *Config) SampleCount() int64 {
	return int64(time.Duration(c.Duration).Seconds() * float64(c.SampleRate))
}

// Args returns the command line arguments for `rtl_sdr`
// See `man rtl_sdr` for more information:
// https://manpages.debian.org/bookworm/rtl-sdr/rtl_sdr.1.en.html
func (c *Config) Args() ([]string, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	args := []string{
		"-f", strconv.FormatInt(c.Frequency, 10),
		"-s", strconv.Itoa(c.SampleRate),
		"-n", strconv.FormatInt(c.SampleCount(), 10),
	}

	args = append(args, "-d", strconv.Itoa(c.DeviceIndex)) // 0 is the default device index

	if c.Gain > 0 {
		args = append(args, "-g", strconv.Itoa(c.Gain))
	}

	if c.PPMError != 0 {
		args = append(args, "-p", strconv.Itoa(c.PPMError))
	}

	if c.DirectSampling {
		args = append(args, "-D")
	}

	if c.BiasTee {
		args = append(args, "-T")
	}

	args = append(args, "-") // Always dump to stdout

	return args, nil
}
