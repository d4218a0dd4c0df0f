package storage

type frameData struct {
	ID           int64
	SessionID    int64
	FrameIndex   int
	NullOffset   int
	ChannelPower float64
}

type tapData struct {
	FrameID   int64
	Delay     int
	Magnitude float64
}
