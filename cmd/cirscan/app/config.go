package app

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sigwatch/dab-cir/internal/capture"
	"github.com/sigwatch/dab-cir/internal/dab"
	"github.com/sigwatch/dab-cir/internal/iq"
)

// Config represents the main application configuration
type Config struct {
	InputFile     string
	ReferenceFile string
	DBPath        string
	Format        iq.Format
	Workers       int
	Verbose       bool

	Scan dab.Config

	// Capture, when set, records InputFile with rtl_sdr before scanning.
	Capture *capture.Config
}

// fileConfig is the optional YAML configuration file layout. The scan
// section overrides individual reference defaults; a capture section
// enables recording the input file first.
type fileConfig struct {
	Scan    *dab.Config     `yaml:"scan"`
	Capture *capture.Config `yaml:"capture"`
}

func NewConfig() *Config {
	return &Config{
		Format: iq.FormatU8,
		Scan:   dab.DefaultConfig(),
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var format, configPath string
	flag.StringVar(&c.InputFile, "i", "", "Path to the IQ recording")
	flag.StringVar(&c.ReferenceFile, "r", "", "Path to the phase reference waveform (fc64)")
	flag.StringVar(&c.DBPath, "db", "", "Path to the output database file")
	flag.StringVar(&format, "f", string(iq.FormatU8), "Input sample format. [u8, fc64]")
	flag.StringVar(&configPath, "c", "", "Path to the configuration file")
	flag.IntVar(&c.Workers, "w", 0, "Number of scan workers (default: number of CPUs)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	var err error
	if c.InputFile == "" {
		err = errors.New("input file is required")
	} else if c.ReferenceFile == "" {
		err = errors.New("reference file is required")
	} else if c.DBPath == "" {
		err = errors.New("db path is required")
	}

	if err == nil {
		c.Format, err = iq.ParseFormat(strings.ToLower(format))
	}
	if err == nil && configPath != "" {
		err = c.loadFile(configPath)
	}
	if err == nil {
		err = c.Scan.Validate()
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}
	return c, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading configuration file: %w", err)
	}

	fc := fileConfig{Scan: &c.Scan}
	if err = yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parsing configuration file: %w", err)
	}

	c.Capture = fc.Capture
	if c.Capture != nil {
		if c.Capture.SampleRate == 0 {
			c.Capture.SampleRate = c.Scan.SampleRate
		}
		c.Format = iq.FormatU8 // rtl_sdr produces u8
	}
	return nil
}
