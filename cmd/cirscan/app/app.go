package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sigwatch/dab-cir/internal/capture"
	"github.com/sigwatch/dab-cir/internal/cir"
	"github.com/sigwatch/dab-cir/internal/dab"
	"github.com/sigwatch/dab-cir/internal/iq"
	"github.com/sigwatch/dab-cir/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if config.Capture != nil {
		if err := record(ctx, config, logger); err != nil {
			return fmt.Errorf("capturing recording: %w", err)
		}
	}

	reference, err := iq.LoadReference(config.ReferenceFile)
	if err != nil {
		return fmt.Errorf("loading reference waveform: %w", err)
	}
	logger.Info("reference waveform loaded",
		slog.String("file", config.ReferenceFile),
		slog.Int("samples", len(reference)))

	channel, err := iq.ReadFile(config.InputFile, config.Format)
	if err != nil {
		return fmt.Errorf("loading recording: %w", err)
	}
	logger.Info("recording loaded",
		slog.String("file", config.InputFile),
		slog.String("format", string(config.Format)),
		slog.String("samples", humanize.Comma(int64(len(channel)))),
		slog.String("duration", fmt.Sprintf("%.2fs", float64(len(channel))/float64(config.Scan.SampleRate))))

	scanner, err := dab.NewScanner(config.Scan, dab.WithWorkers(config.Workers), dab.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating scanner: %w", err)
	}

	started := time.Now()
	profiles, err := scanner.Scan(ctx, channel, reference)
	if err != nil {
		return fmt.Errorf("scanning recording: %w", err)
	}

	logger.Info("scan finished",
		slog.Int("frames", len(profiles)),
		slog.Duration("elapsed", time.Since(started).Round(time.Millisecond)))
	logStrongestPath(profiles, config.Scan.SampleRate, logger)

	return storeProfiles(ctx, config, profiles, logger)
}

func record(ctx context.Context, config *Config, logger *slog.Logger) error {
	recorder, err := capture.NewRecorder(config.Capture, capture.WithLogger(logger))
	if err != nil {
		return err
	}
	return recorder.Record(ctx, config.InputFile)
}

// logStrongestPath reports the single strongest tap over the whole scan,
// a quick sanity check that the reference actually correlates with the
// recording.
func logStrongestPath(profiles []cir.FrameProfile, sampleRate int, logger *slog.Logger) {
	frame, delay := -1, -1
	var best float64
	for i := range profiles {
		d := profiles[i].PeakDelay()
		if d >= 0 && profiles[i].Taps[d] > best {
			frame, delay, best = profiles[i].FrameIndex, d, profiles[i].Taps[d]
		}
	}
	if delay < 0 {
		return
	}

	logger.Info("strongest path",
		slog.Int("frame", frame),
		slog.Int("delay", delay),
		slog.String("time", fmt.Sprintf("%.2fus", cir.DelaySeconds(delay, sampleRate)*1e6)),
		slog.String("distance", fmt.Sprintf("%.0fm", cir.DelayMeters(delay, sampleRate))))
}

func storeProfiles(ctx context.Context, config *Config, profiles []cir.FrameProfile, logger *slog.Logger) (err error) {
	store := storage.NewSqliteStore(config.DBPath)
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	sessionID, err := store.CreateSession(ctx, config.InputFile, string(config.Format), config.Scan.SampleRate, &config.Scan)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	for i := range profiles {
		if err = store.StoreFrameProfile(ctx, sessionID, &profiles[i]); err != nil {
			return fmt.Errorf("storing frame %d: %w", profiles[i].FrameIndex, err)
		}
	}

	logger.Info("session stored",
		slog.Int64("session", sessionID),
		slog.String("db", config.DBPath))
	return nil
}
