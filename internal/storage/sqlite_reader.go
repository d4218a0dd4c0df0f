package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sigwatch/dab-cir/internal/cir"
)

// ErrNoData indicates either that no profile data exists for the given
// parameters, or that all available data has been read from the reader.
var ErrNoData = fmt.Errorf("no data available")

// ReaderOption configures a ProfileReader with specific filtering criteria.
type ReaderOption func(*ProfileReader)

// WithFrameRange limits the reader to frames with indexes in [first, last].
func WithFrameRange(first, last int) ReaderOption {
	return func(r *ProfileReader) {
		r.firstFrame = &first
		r.lastFrame = &last
	}
}

// WithMaxDelay limits each profile to taps with delays below maxDelay.
func WithMaxDelay(maxDelay int) ReaderOption {
	return func(r *ProfileReader) {
		r.maxDelay = maxDelay
	}
}

// newProfileReader creates a ProfileReader for reading impulse response
// profiles from a database, applying optional filters.
func newProfileReader(ctx context.Context, db *sql.DB, sessionID int64, opts ...ReaderOption) (*ProfileReader, error) {
	pr := &ProfileReader{
		db:        db,
		sessionID: sessionID,
		maxDelay:  math.MaxInt32,
	}
	for _, opt := range opts {
		opt(pr)
	}
	if err := pr.init(ctx); err != nil {
		return nil, fmt.Errorf("initializing reader: %w", err)
	}
	return pr, nil
}

// ProfileReader provides an iterator-based interface for reading a scan
// session's impulse response profiles in frame order. Each profile is
// assembled from the frame row and its ordered tap rows.
type ProfileReader struct {
	db *sql.DB

	sessionID int64
	session   *cir.ScanSession

	firstFrame *int // Optional start of frame range filter
	lastFrame  *int // Optional end of frame range filter
	maxDelay   int

	current    *cir.FrameProfile
	nextFrame  frameData
	nextTap    tapData
	nextExists bool
	rows       *sql.Rows
	err        error
}

func (pr *ProfileReader) init(ctx context.Context) error {
	if pr.db == nil {
		return errors.New("database connection required")
	}
	if pr.sessionID <= 0 {
		return errors.New("session ID required")
	}

	steps := []struct {
		msg string
		fn  func(context.Context) error
	}{
		{msg: "loading session", fn: pr.loadSession},
		{msg: "initializing filters", fn: pr.initFilters},
		{msg: "initializing query", fn: pr.initQuery},
	}
	for _, s := range steps {
		if err := s.fn(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.msg, err)
		}
	}
	return nil
}

func (pr *ProfileReader) loadSession(ctx context.Context) error {
	session, err := querySession(ctx, pr.db, pr.sessionID)
	if err != nil {
		return err
	}

	pr.session = session
	return nil
}

func (pr *ProfileReader) initFilters(ctx context.Context) (err error) {
	if pr.maxDelay <= 0 {
		return fmt.Errorf("max delay must be positive: %d", pr.maxDelay)
	}
	if pr.firstFrame != nil && pr.lastFrame != nil {
		if *pr.firstFrame > *pr.lastFrame {
			return fmt.Errorf("first frame %d is after last frame %d", *pr.firstFrame, *pr.lastFrame)
		}
		return nil
	}

	stmt, err := pr.db.PrepareContext(ctx, selectFrameBoundsSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	var first, last sql.NullInt64
	if err = stmt.QueryRowContext(ctx, pr.sessionID).Scan(&first, &last); err != nil {
		return fmt.Errorf("scanning frame bounds: %w", err)
	}

	if pr.firstFrame == nil {
		f := int(first.Int64)
		pr.firstFrame = &f
	}
	if pr.lastFrame == nil {
		l := int(last.Int64)
		pr.lastFrame = &l
	}

	return nil
}

func (pr *ProfileReader) initQuery(ctx context.Context) (err error) {
	stmt, err := pr.db.PrepareContext(ctx, selectProfilesSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if pr.rows, err = stmt.QueryContext(ctx, pr.sessionID, pr.firstFrame, pr.lastFrame, pr.maxDelay); err != nil {
		return err
	}
	return nil
}

func (pr *ProfileReader) scanRow() (frameData, tapData, error) {
	var frame frameData
	var tap tapData

	err := pr.rows.Scan(&frame.FrameIndex, &frame.NullOffset, &frame.ChannelPower, &tap.Delay, &tap.Magnitude)
	if err != nil {
		return frameData{}, tapData{}, fmt.Errorf("scanning profile row: %w", err)
	}
	return frame, tap, nil
}

func (pr *ProfileReader) newProfile(frame frameData) *cir.FrameProfile {
	return &cir.FrameProfile{
		FrameIndex:   frame.FrameIndex,
		NullOffset:   frame.NullOffset,
		ChannelPower: frame.ChannelPower,
		Taps:         make([]float64, 0, 64),
	}
}

// Session returns metadata about the scan session this reader is
// accessing.
func (pr *ProfileReader) Session() *cir.ScanSession {
	return pr.session
}

// Next advances the iterator and returns true if there is another profile
// to read, false when the iteration is complete or if an error occurred.
func (pr *ProfileReader) Next(ctx context.Context) bool {
	if pr.err != nil || pr.rows == nil {
		return false
	}

	if pr.nextExists {
		pr.current = pr.newProfile(pr.nextFrame)
		pr.current.Taps = append(pr.current.Taps, pr.nextTap.Magnitude)
		pr.nextExists = false
	} else {
		pr.current = nil
	}

	for {
		select {
		case <-ctx.Done():
			pr.err = ctx.Err()
			return false
		default:
		}

		if !pr.rows.Next() {
			if pr.current != nil && len(pr.current.Taps) > 0 {
				pr.err = ErrNoData
				return true
			}
			return false
		}

		frame, tap, err := pr.scanRow()
		if err != nil {
			pr.err = err
			return false
		}

		// If no current profile, start a new one
		if pr.current == nil {
			pr.current = pr.newProfile(frame)
			pr.current.Taps = append(pr.current.Taps, tap.Magnitude)
			continue
		}

		// Frame index rolled over - complete current profile
		if frame.FrameIndex != pr.current.FrameIndex {
			pr.nextFrame = frame
			pr.nextTap = tap
			pr.nextExists = true
			return true
		}

		// Add tap to current profile; rows arrive ordered by delay
		pr.current.Taps = append(pr.current.Taps, tap.Magnitude)
	}
}

// Current returns the current profile in the iteration. If called after
// Next() returns false, the behavior is undefined.
func (pr *ProfileReader) Current() *cir.FrameProfile {
	return pr.current
}

// Error returns any error that occurred during iteration. If Next()
// returns false, Error() should be checked to distinguish between end of
// data and an error condition.
func (pr *ProfileReader) Error() error {
	if pr.err != nil && !errors.Is(pr.err, ErrNoData) {
		return pr.err
	}
	if pr.rows != nil {
		return pr.rows.Err()
	}
	return nil
}

// Close releases any resources associated with the reader. After Close
// is called, the reader should not be used.
func (pr *ProfileReader) Close() error {
	if pr.rows != nil {
		err := pr.rows.Close()
		pr.current = nil
		pr.nextExists = false
		pr.rows = nil
		return err
	}
	return nil
}
