package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sigwatch/dab-cir/internal/cir"
)

// Store provides an interface for managing impulse response scan storage.
// It handles sessions and per-frame channel impulse response profiles.
// All operations that write to the database should be considered atomic.
type Store interface {
	// CreateSession initializes a new scan session and returns its unique
	// identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - sourceFile: Path of the analyzed IQ recording
	//   - sampleFormat: On-disk sample format of the recording
	//   - sampleRate: Samples per second of the recording
	//   - config: Optional scan configuration. Can be string, []byte, or
	//     JSON-serializable object
	CreateSession(ctx context.Context, sourceFile, sampleFormat string, sampleRate int, config any) (sessionID int64, err error)

	// Session retrieves a specific scan session by its ID.
	Session(ctx context.Context, id int64) (session *cir.ScanSession, err error)

	// Sessions returns all scan sessions stored in the database, ordered
	// by start time in ascending order.
	Sessions(ctx context.Context) (sessions []*cir.ScanSession, err error)

	// StoreFrameProfile saves one frame's impulse response profile. The
	// frame row and all of its tap rows are stored in a single atomic
	// transaction.
	StoreFrameProfile(ctx context.Context, sessionID int64, profile *cir.FrameProfile) error

	// Close releases all database connections and resources. After Close
	// is called, the store instance cannot be reused. It is safe to call
	// Close multiple times.
	Close() error
}
