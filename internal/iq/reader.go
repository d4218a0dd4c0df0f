// Package iq loads raw interleaved I/Q recordings into complex sample
// slices.
package iq

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Format identifies the on-disk sample layout of a recording.
type Format string

const (
	// FormatU8 is 8-bit unsigned interleaved I/Q, the native output of
	// rtl_sdr. Each rail is mapped to (v / 256) - 0.5.
	FormatU8 Format = "u8"

	// FormatFC64 is interleaved little-endian float32 I/Q pairs.
	FormatFC64 Format = "fc64"
)

// ParseFormat maps a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatU8:
		return FormatU8, nil
	case FormatFC64:
		return FormatFC64, nil
	default:
		return "", fmt.Errorf("unknown sample format %q", s)
	}
}

// SampleSize returns the number of bytes one complex sample occupies.
func (f Format) SampleSize() int {
	switch f {
	case FormatU8:
		return 2
	case FormatFC64:
		return 8
	default:
		return 0
	}
}

// ReadFile loads an entire recording into memory. A file size that is
// not a whole number of samples indicates a truncated or mistyped
// recording and is an error.
func ReadFile(path string, format Format) ([]complex128, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s recording: %w", format, err)
	}
	samples, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return samples, nil
}

// Decode converts raw recording bytes into complex samples.
func Decode(data []byte, format Format) ([]complex128, error) {
	size := format.SampleSize()
	if size == 0 {
		return nil, fmt.Errorf("unknown sample format %q", format)
	}
	if len(data)%size != 0 {
		return nil, fmt.Errorf("%d bytes is not a whole number of %s samples", len(data), format)
	}

	samples := make([]complex128, len(data)/size)
	switch format {
	case FormatU8:
		for i := range samples {
			re := float64(data[2*i])/256 - 0.5
			im := float64(data[2*i+1])/256 - 0.5
			samples[i] = complex(re, im)
		}
	case FormatFC64:
		for i := range samples {
			re := math.Float32frombits(binary.LittleEndian.Uint32(data[8*i:]))
			im := math.Float32frombits(binary.LittleEndian.Uint32(data[8*i+4:]))
			samples[i] = complex(float64(re), float64(im))
		}
	}
	return samples, nil
}

// LoadReference reads a stored phase reference waveform. Reference
// waveforms are kept as fc64 regardless of the recording format.
func LoadReference(path string) ([]complex128, error) {
	return ReadFile(path, FormatFC64)
}
