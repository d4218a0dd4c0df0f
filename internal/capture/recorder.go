package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
)

// ErrBrokenPipe is returned when there's an error reading from stderr
var ErrBrokenPipe = errors.New("broken pipe")

// WithLogger sets the logger for the recorder
func WithLogger(logger *slog.Logger) func(r *Recorder) {
	return func(r *Recorder) {
		r.logger = logger.With(slog.String("tool", Runtime))
	}
}

// Recorder runs one capture at a time, streaming the tool's stdout into
// the output file and relaying its stderr diagnostics to the logger.
type Recorder struct {
	binPath string
	args    []string
	logger  *slog.Logger
}

// NewRecorder locates the capture tool and prepares its arguments.
func NewRecorder(config *Config, options ...func(r *Recorder)) (*Recorder, error) {
	binPath, err := FindRuntime(Runtime)
	if err != nil {
		return nil, fmt.Errorf("error finding runtime: %w", err)
	}

	args, err := config.Args()
	if err != nil {
		return nil, fmt.Errorf("error creating args: %w", err)
	}

	r := Recorder{
		binPath: binPath,
		args:    args,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&r)
	}

	return &r, nil
}

// Record captures into path, overwriting it. Cancelling the context
// kills the tool; whatever was written so far stays on disk.
func (r *Recorder) Record(ctx context.Context, path string) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating output file: %w", err)
	}
	defer closeWithError(out, &err)

	cmd := exec.CommandContext(ctx, r.binPath, r.args...)
	cmd.Stdout = out

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("error creating stderr pipe: %w", err)
	}

	if err = cmd.Start(); err != nil {
		return fmt.Errorf("error starting command: %w", err)
	}

	r.logger.Info("starting capture...", slog.String("file", path))

	done := make(chan error, 1)
	go r.handleStderr(stderr, done)

	waitErr := cmd.Wait()
	if waitErr != nil && ctx.Err() == nil {
		waitErr = fmt.Errorf("command exited with error: %w", waitErr)
	} else if ctx.Err() != nil {
		waitErr = ctx.Err()
	}

	if pipeErr := <-done; pipeErr != nil {
		r.logger.Error(pipeErr.Error())
	}

	if waitErr != nil {
		return waitErr
	}

	r.logger.Info("capture finished", slog.String("file", path))
	return nil
}

// handleStderr reads from stderr and logs the tool's diagnostics.
func (r *Recorder) handleStderr(stderr io.Reader, done chan<- error) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" {
			continue
		}

		r.logger.Warn(fmt.Sprintf("%s >> %s", Runtime, line)) // simple logging here
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, fs.ErrClosed) {
		done <- fmt.Errorf("%w: error reading stderr: %w", ErrBrokenPipe, err)
		return
	}

	done <- nil
}

func closeWithError(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}
