package app

import (
	"context"
	"encoding/json"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/sigwatch/dab-cir/internal/cir"
	"github.com/sigwatch/dab-cir/internal/dab"
	"github.com/sigwatch/dab-cir/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.NewSqliteStore(config.DBPath)
	defer store.Close()

	return renderSession(ctx, store, config, logger)
}

// sessionScanConfig recovers the scan configuration stored with the
// session; the reference defaults fill in when the session carries none.
func sessionScanConfig(session *cir.ScanSession) dab.Config {
	cfg := dab.DefaultConfig()
	if session.SampleRate > 0 {
		cfg.SampleRate = session.SampleRate
	}
	if session.Config != nil {
		_ = json.Unmarshal([]byte(*session.Config), &cfg)
	}
	return cfg
}

func renderSession(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) error {
	var opts []storage.ReaderOption
	var filters []any
	if config.FirstFrame != nil && config.LastFrame != nil {
		opts = append(opts, storage.WithFrameRange(*config.FirstFrame, *config.LastFrame))

		filters = append(filters,
			slog.Int("firstFrame", *config.FirstFrame),
			slog.Int("lastFrame", *config.LastFrame))
	}
	if config.MaxDelay > 0 {
		opts = append(opts, storage.WithMaxDelay(config.MaxDelay))
		filters = append(filters, slog.Int("maxDelay", config.MaxDelay))
	}

	logger.Info("reader configuration", filters...)

	reader, err := store.ReadProfiles(ctx, config.SessionID, opts...)
	if err != nil {
		return err
	}
	defer reader.Close()

	session := reader.Session()
	scanCfg := sessionScanConfig(session)

	data := NewCIRData(NewSmoothBounds(0.3))
	for reader.Next(ctx) {
		data.Update(reader.Current())
	}
	if err = reader.Error(); err != nil {
		return err
	}
	if data.Height == 0 {
		return fmt.Errorf("session %d has no stored profiles", config.SessionID)
	}

	bounds := data.BoundsTracker.Current()
	if config.MinPower != nil {
		bounds.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		bounds.Max = *config.MaxPower
	}

	logger.Info("finished reading profiles",
		slog.Group("stats",
			slog.String("source", session.SourceFile),
			slog.Int("frames", data.Height),
			slog.Int("delays", data.Width),
			slog.String("minLevel", fmt.Sprintf("%0.2fdB", bounds.Min)),
			slog.String("maxLevel", fmt.Sprintf("%0.2fdB", bounds.Max)),
		))

	frameDuration := time.Duration(float64(scanCfg.FrameLength) / float64(scanCfg.SampleRate) * float64(time.Second))
	renderer, err := NewRenderer(RenderConfig{
		FontFile:      config.FontFile,
		ColorTheme:    config.Theme,
		SampleRate:    scanCfg.SampleRate,
		FrameDuration: frameDuration,
	})
	if err != nil {
		return fmt.Errorf("creating renderer: %w", err)
	}

	logger.Info("rendering heatmap",
		slog.Group("image",
			slog.String("destination", config.OutputFile),
			slog.String("format", string(config.Format)),
			slog.String("theme", string(config.Theme)),
			slog.Int("width", data.Width),
			slog.Int("height", data.Height),
		))

	img, err := renderer.Render(data, bounds)
	if err != nil {
		return fmt.Errorf("rendering heatmap: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	if err != nil {
		return err
	}

	if config.ProfileFile != "" {
		logger.Info("rendering aggregate delay profile", slog.String("destination", config.ProfileFile))
		if err = renderDelayProfile(data, scanCfg.SampleRate, config.ProfileFile); err != nil {
			return err
		}
	}
	return nil
}
