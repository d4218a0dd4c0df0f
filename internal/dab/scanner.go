package dab

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"

	"github.com/sigwatch/dab-cir/internal/cir"
)

// Option configures a Scanner.
type Option func(*Scanner)

// WithWorkers sets the number of frames processed concurrently. Values
// below one are ignored.
func WithWorkers(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets the logger used for scan progress and warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Scanner estimates a channel impulse response for every complete frame
// of a recording. Frames are independent of each other, so they are
// distributed over a pool of workers writing into index-addressed result
// slots; the output is always in frame order regardless of completion
// order.
type Scanner struct {
	cfg     Config
	sync    *FrameSynchronizer
	est     *ImpulseResponseEstimator
	workers int
	logger  *slog.Logger
}

// NewScanner validates cfg and creates a Scanner. The worker count
// defaults to the number of CPUs and the logger to a discard logger.
func NewScanner(cfg Config, opts ...Option) (*Scanner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Scanner{
		cfg:     cfg,
		sync:    NewFrameSynchronizer(cfg),
		est:     NewImpulseResponseEstimator(cfg),
		workers: runtime.NumCPU(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Scan synchronises and estimates every complete frame in channel using
// the given phase reference waveform. Trailing samples beyond the last
// complete frame do not form a frame of their own but remain available
// to correlation windows running past the frame boundary. The first
// frame error aborts the scan and is returned wrapped in a FrameError.
func (s *Scanner) Scan(ctx context.Context, channel, reference []complex128) ([]cir.FrameProfile, error) {
	if len(reference) == 0 {
		return nil, fmt.Errorf("empty reference waveform: %w", ErrInsufficientSamples)
	}
	if len(reference) != s.cfg.ReferenceLength {
		if s.cfg.StrictReferenceLength {
			return nil, fmt.Errorf("got %d samples, want %d: %w",
				len(reference), s.cfg.ReferenceLength, ErrReferenceLength)
		}
		s.logger.Warn("unexpected reference waveform length",
			slog.Int("got", len(reference)),
			slog.Int("want", s.cfg.ReferenceLength))
	}

	frameCount := len(channel) / s.cfg.FrameLength
	if frameCount == 0 {
		return nil, fmt.Errorf("recording of %d samples is shorter than one frame (%d): %w",
			len(channel), s.cfg.FrameLength, ErrInsufficientSamples)
	}

	s.logger.Info("scanning recording",
		slog.Int("samples", len(channel)),
		slog.Int("frames", frameCount),
		slog.Int("workers", min(s.workers, frameCount)))

	profiles := make([]cir.FrameProfile, frameCount)
	jobs := make(chan int)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		scanErr error
	)
	fail := func(err error) {
		mu.Lock()
		if scanErr == nil {
			scanErr = err
		}
		mu.Unlock()
	}
	failed := func() bool {
		mu.Lock()
		defer mu.Unlock()
		return scanErr != nil
	}

	for i := 0; i < min(s.workers, frameCount); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for frame := range jobs {
				if failed() {
					continue
				}
				p, err := s.scanFrame(channel, reference, frame)
				if err != nil {
					fail(err)
					continue
				}
				profiles[frame] = *p
			}
		}()
	}

feed:
	for frame := 0; frame < frameCount; frame++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- frame:
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scanErr != nil {
		return nil, scanErr
	}
	return profiles, nil
}

func (s *Scanner) scanFrame(channel, reference []complex128, frame int) (*cir.FrameProfile, error) {
	start := frame * s.cfg.FrameLength
	prefix := magnitudePrefix(channel[start : start+s.cfg.FrameLength])

	power := prefix[len(prefix)-1]
	if power == 0 {
		return nil, &FrameError{Frame: frame, Err: ErrDegenerateInput}
	}

	nullOffset := s.sync.FindNullOffset(prefix)
	taps, err := s.est.Estimate(channel, reference, start, nullOffset, power)
	if err != nil {
		return nil, &FrameError{Frame: frame, Err: err}
	}

	s.logger.Debug("frame scanned",
		slog.Int("frame", frame),
		slog.Int("nullOffset", nullOffset))

	return &cir.FrameProfile{
		FrameIndex:   frame,
		NullOffset:   nullOffset,
		ChannelPower: power,
		Taps:         taps,
	}, nil
}
