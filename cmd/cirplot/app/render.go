package app

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sigwatch/dab-cir/internal/cir"
)

const (
	dpi            = 120.0
	fontSize       = 12.0
	tickMarkHeight = 5
	pixelsPerLabel = 150

	// Default border sizes in pixels
	defaultTopBorder    = 40
	defaultLeftBorder   = 80
	defaultBottomBorder = 40
	defaultRightBorder  = 40
)

// BorderConfig defines the sizes of white space around the heatmap
type BorderConfig struct {
	Top    int // Space for delay scale
	Left   int // Space for frame time scale
	Bottom int // Space for information bar
	Right  int // Right padding
}

// RenderConfig holds all configuration options for heatmap visualization
type RenderConfig struct {
	// Font configuration; FontFile is an optional TTF, the built-in
	// bitmap font is used when it is empty
	FontFile string
	FontSize float64

	// Visual configuration
	ColorTheme   ColorTheme // Color scheme for tap levels
	ColorMapSize int        // Number of colors in gradient (0 for default)

	// Recording geometry, for the delay and time scales
	SampleRate    int
	FrameDuration time.Duration

	// Border configuration
	BorderConfig BorderConfig
}

// Renderer draws the delay/time heatmap of a scan session. Each pixel
// column is one candidate delay, each pixel row one transmission frame.
type Renderer struct {
	colorMap *ColorMapper
	config   RenderConfig
}

// NewRenderer creates a new heatmap renderer with the given configuration
func NewRenderer(config RenderConfig) (*Renderer, error) {
	if config.SampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", config.SampleRate)
	}

	// Set defaults for zero values
	if config.FontSize == 0 {
		config.FontSize = fontSize
	}
	if config.BorderConfig.Top == 0 {
		config.BorderConfig.Top = defaultTopBorder
	}
	if config.BorderConfig.Left == 0 {
		config.BorderConfig.Left = defaultLeftBorder
	}
	if config.BorderConfig.Bottom == 0 {
		config.BorderConfig.Bottom = defaultBottomBorder
	}
	if config.BorderConfig.Right == 0 {
		config.BorderConfig.Right = defaultRightBorder
	}

	return &Renderer{config: config}, nil
}

// Render creates an image of the impulse response matrix with annotations
func (r *Renderer) Render(data *CIRData, bounds PowerBounds) (*image.RGBA, error) {
	// Create image with space for borders
	fullWidth := data.Width + r.config.BorderConfig.Left + r.config.BorderConfig.Right
	fullHeight := data.Height + r.config.BorderConfig.Top + r.config.BorderConfig.Bottom
	img := image.NewRGBA(image.Rect(0, 0, fullWidth, fullHeight))

	// Fill with white background
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Define heatmap area (1:1 mapping)
	area := image.Rect(
		r.config.BorderConfig.Left,
		r.config.BorderConfig.Top,
		r.config.BorderConfig.Left+data.Width,
		r.config.BorderConfig.Top+data.Height,
	)

	// Update or create color map
	if r.colorMap == nil {
		r.colorMap = NewColorMapperWithSize(r.config.ColorTheme, bounds, r.config.ColorMapSize)
	} else {
		r.colorMap.UpdateBounds(bounds)
	}

	// Create annotator for drawing scales and labels
	ann, err := newAnnotator(annotatorConfig{
		FontFile:      r.config.FontFile,
		FontSize:      r.config.FontSize,
		SampleRate:    r.config.SampleRate,
		FrameDuration: r.config.FrameDuration,
		Borders:       r.config.BorderConfig,
	})
	if err != nil {
		return nil, fmt.Errorf("creating annotator: %w", err)
	}
	defer ann.Close()

	// First draw annotations
	ann.annotate(img, data)

	// Then render the matrix (overwriting any overlapping annotations)
	r.renderMatrix(img, area, data)

	return img, nil
}

// renderMatrix draws the impulse response matrix using the color map
func (r *Renderer) renderMatrix(img *image.RGBA, area image.Rectangle, data *CIRData) {
	for y, row := range data.Rows {
		imgY := area.Min.Y + y
		for x, level := range row {
			imgX := area.Min.X + x
			if level != nil {
				img.Set(imgX, imgY, r.colorMap.GetColor(level))
			}
		}
	}
}

// Internal annotator implementation
type annotatorConfig struct {
	FontFile      string
	FontSize      float64
	SampleRate    int
	FrameDuration time.Duration
	Borders       BorderConfig
}

type annotator struct {
	config   annotatorConfig
	fontFace font.Face
}

func newAnnotator(config annotatorConfig) (*annotator, error) {
	fontFace := font.Face(basicfont.Face7x13)

	if config.FontFile != "" {
		fontBytes, err := os.ReadFile(config.FontFile)
		if err != nil {
			return nil, fmt.Errorf("reading font file: %w", err)
		}
		parsedFont, err := freetype.ParseFont(fontBytes)
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
		fontFace = truetype.NewFace(parsedFont, &truetype.Options{
			Size:    config.FontSize,
			DPI:     dpi,
			Hinting: font.HintingNone,
		})
	}

	return &annotator{
		config:   config,
		fontFace: fontFace,
	}, nil
}

func (a *annotator) Close() error {
	if a.fontFace != nil {
		return a.fontFace.Close()
	}
	return nil
}

func (a *annotator) drawString(img *image.RGBA, label string, x, y int) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: a.fontFace,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(label)
}

func (a *annotator) annotate(img *image.RGBA, data *CIRData) {
	a.drawDelayScale(img, data)
	a.drawTimeScale(img, data)
	a.drawInfoBar(img, data)
}

// drawDelayScale labels the horizontal axis with the propagation delay
// of each tap column.
func (a *annotator) drawDelayScale(img *image.RGBA, data *CIRData) {
	step := niceDelayStep(data.Width)

	// Get actual font height in pixels
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	textY := a.config.Borders.Top - fontHeight/2

	for delay := 0; delay < data.Width; delay += step {
		x := a.config.Borders.Left + delay

		// Draw tick mark
		for y := a.config.Borders.Top - tickMarkHeight; y < a.config.Borders.Top; y++ {
			img.Set(x, y, color.Black)
		}

		// Format and draw delay label
		label := formatDelay(delay, a.config.SampleRate)
		width := font.MeasureString(a.fontFace, label)
		a.drawString(img, label, x-(width.Round()/2), textY)
	}
}

// drawTimeScale labels the vertical axis with the elapsed recording time
// of each frame row.
func (a *annotator) drawTimeScale(img *image.RGBA, data *CIRData) {
	step := niceFrameStep(data.Height)

	// Get font metrics once
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()

	for row := 0; row < data.Height; row += step {
		imgY := row + a.config.Borders.Top

		// Draw tick mark
		for x := a.config.Borders.Left - tickMarkHeight; x < a.config.Borders.Left; x++ {
			img.Set(x, imgY, color.Black)
		}

		// Center text vertically relative to the tick mark position
		textY := imgY + fontHeight/2 - metrics.Descent.Round()

		elapsed := time.Duration(data.FrameFirst+row) * a.config.FrameDuration
		a.drawString(img, fmt.Sprintf("%.1fs", elapsed.Seconds()), 10, textY)
	}
}

func (a *annotator) drawInfoBar(img *image.RGBA, data *CIRData) {
	var sb strings.Builder

	maxDelay := data.Width - 1
	sb.WriteString(fmt.Sprintf("Delay: 0 - %s (%s)",
		formatDelay(maxDelay, a.config.SampleRate),
		formatDistance(maxDelay, a.config.SampleRate)))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("Frames: %d - %d", data.FrameFirst, data.FrameLast))
	sb.WriteString("; ")
	sb.WriteString(fmt.Sprintf("1px = %s", formatDelay(1, a.config.SampleRate)))

	// Center text vertically in bottom border
	metrics := a.fontFace.Metrics()
	fontHeight := (metrics.Ascent + metrics.Descent).Round()
	textY := img.Bounds().Max.Y - (a.config.Borders.Bottom-fontHeight)/2 - metrics.Descent.Round()

	a.drawString(img, sb.String(), a.config.Borders.Left, textY)
}

// Helper functions

func formatDelay(delay, sampleRate int) string {
	return humanize.SIWithDigits(cir.DelaySeconds(delay, sampleRate), 1, "s")
}

func formatDistance(delay, sampleRate int) string {
	return humanize.SIWithDigits(cir.DelayMeters(delay, sampleRate), 1, "m")
}

// niceDelayStep picks a label step, in taps, that keeps roughly
// pixelsPerLabel pixels between labels.
func niceDelayStep(width int) int {
	steps := []int{10, 20, 50, 100, 200, 500, 1000, 2000, 5000}

	for _, step := range steps {
		if step >= pixelsPerLabel && width/step >= 2 {
			return step
		}
	}
	return max(width/2, 1)
}

// niceFrameStep picks a label step, in frame rows, aiming for a label
// roughly every 40 pixels.
func niceFrameStep(height int) int {
	steps := []int{10, 25, 50, 100, 250, 500, 1000, 2500}

	for _, step := range steps {
		if step >= 40 && height/step >= 2 {
			return step
		}
	}
	return max(height/2, 1)
}
