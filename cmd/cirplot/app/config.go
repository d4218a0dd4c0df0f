package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath      string
	SessionID   int64
	OutputFile  string
	ProfileFile string
	Format      ImageFormat
	Theme       ColorTheme
	FontFile    string
	MaxPower    *float64
	MinPower    *float64
	FirstFrame  *int
	LastFrame   *int
	MaxDelay    int
	Verbose     bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

var validColorThemes = map[ColorTheme]struct{}{
	"":             {},
	ClassicTheme:   {},
	GrayscaleTheme: {},
	JungleTheme:    {},
	ThermalTheme:   {},
	MarineTheme:    {},
}

func NewConfig() *Config {
	return &Config{
		Format: ImagePNG,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var minPower, maxPower float64
	var firstFrame, lastFrame int
	flag.StringVar(&c.DBPath, "db", "", "Path to the database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&c.ProfileFile, "profile", "", "Also render an aggregate delay profile chart to this file (PNG)")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.StringVar(&theme, "theme", "", "Color theme. [classic, grayscale, jungle, thermal, marine]")
	flag.StringVar(&c.FontFile, "font", "", "Path to a TTF font for annotations (built-in bitmap font if empty)")
	flag.Float64Var(&minPower, "min-power", 0, "Define a manual minimum tap level in dB (format -nn.n)")
	flag.Float64Var(&maxPower, "max-power", 0, "Define a manual maximum tap level in dB (format -nn.n)")
	flag.IntVar(&firstFrame, "first", 0, "First frame index to plot")
	flag.IntVar(&lastFrame, "last", 0, "Last frame index to plot")
	flag.IntVar(&c.MaxDelay, "max-delay", 0, "Limit the number of plotted delays")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)
	theme = strings.ToLower(theme)

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "min-power":
			c.MinPower = &minPower
		case "max-power":
			c.MaxPower = &maxPower
		case "first":
			c.FirstFrame = &firstFrame
		case "last":
			c.LastFrame = &lastFrame
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if _, ok := validColorThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	} else if (c.FirstFrame == nil) != (c.LastFrame == nil) {
		err = errors.New("first and last frame must be given together")
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	c.OutputFile = fmt.Sprintf("%s.%s", c.OutputFile, c.Format)
	return c, nil
}
