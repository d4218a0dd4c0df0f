package storage

const initSchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    start_time DATETIME NOT NULL,
    source_file TEXT NOT NULL,
    sample_format TEXT NOT NULL,
    sample_rate INTEGER NOT NULL,
    config TEXT
);

CREATE TABLE IF NOT EXISTS frames (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id INTEGER NOT NULL REFERENCES sessions(id),
    frame_index INTEGER NOT NULL,
    null_offset INTEGER NOT NULL,
    channel_power REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS taps (
    frame_id INTEGER NOT NULL REFERENCES frames(id),
    delay INTEGER NOT NULL,
    magnitude REAL NOT NULL
);`

// Indexes are created on Close, once the bulk inserts are done.
const initIndexesSQL = `
CREATE UNIQUE INDEX IF NOT EXISTS idx_frames_session_frame ON frames(session_id, frame_index);
CREATE INDEX IF NOT EXISTS idx_taps_frame_delay ON taps(frame_id, delay);`

const (
	insertSessionSQL = `
INSERT INTO sessions (
                      start_time,
                      source_file,
                      sample_format,
                      sample_rate,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?, ?)`

	selectSessionSQL = `
SELECT
    id,
    start_time,
    source_file,
    sample_format,
    sample_rate,
    config
FROM sessions
WHERE
    id = ?`

	selectSessionsSQL = `
SELECT
    id,
    start_time,
    source_file,
    sample_format,
    sample_rate,
    config
FROM sessions
ORDER BY start_time`

	insertFrameSQL = `
INSERT INTO frames (session_id,
                    frame_index,
                    null_offset,
                    channel_power)
VALUES (?, ?, ?, ?)`

	insertTapSQL = `
    INSERT INTO taps (
        frame_id,
        delay,
        magnitude
    )
    VALUES `

	selectFrameBoundsSQL = `
SELECT
    MIN(frame_index),
    MAX(frame_index)
FROM frames
WHERE session_id = ?`

	selectProfilesSQL = `
SELECT
    f.frame_index,
    f.null_offset,
    f.channel_power,
    t.delay,
    t.magnitude
FROM frames f
JOIN taps t ON t.frame_id = f.id
WHERE
    f.session_id = ?
    AND f.frame_index BETWEEN ? AND ?
    AND t.delay < ?
ORDER BY f.frame_index, t.delay`
)
