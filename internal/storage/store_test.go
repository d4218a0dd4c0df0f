package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sigwatch/dab-cir/internal/cir"
)

func testProfiles() []*cir.FrameProfile {
	return []*cir.FrameProfile{
		{FrameIndex: 0, NullOffset: 1040, ChannelPower: 1201.5, Taps: []float64{0.1, 0.8, 0.3, 0.05}},
		{FrameIndex: 1, NullOffset: 1060, ChannelPower: 1198.2, Taps: []float64{0.2, 0.7, 0.4, 0.02}},
		{FrameIndex: 2, NullOffset: 980, ChannelPower: 1210.0, Taps: []float64{0.15, 0.9, 0.1, 0.01}},
	}
}

func newTestStore(t *testing.T) (*SqliteStore, int64) {
	t.Helper()
	ctx := context.Background()

	store := NewSqliteStore(filepath.Join(t.TempDir(), "scan.db"))
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
	})

	sessionID, err := store.CreateSession(ctx, "dab_225648kHz.iq", "u8", 2_048_000, map[string]int{"maxDelay": 4})
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	for _, p := range testProfiles() {
		if err := store.StoreFrameProfile(ctx, sessionID, p); err != nil {
			t.Fatalf("StoreFrameProfile() error = %v", err)
		}
	}
	return store, sessionID
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, sessionID := newTestStore(t)

	session, err := store.Session(ctx, sessionID)
	if err != nil {
		t.Fatalf("Session() error = %v", err)
	}
	if session.SourceFile != "dab_225648kHz.iq" {
		t.Errorf("SourceFile = %q", session.SourceFile)
	}
	if session.SampleFormat != "u8" {
		t.Errorf("SampleFormat = %q", session.SampleFormat)
	}
	if session.SampleRate != 2_048_000 {
		t.Errorf("SampleRate = %d", session.SampleRate)
	}
	if session.Config == nil || *session.Config != `{"maxDelay":4}` {
		t.Errorf("Config = %v", session.Config)
	}

	sessions, err := store.Sessions(ctx)
	if err != nil {
		t.Fatalf("Sessions() error = %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != sessionID {
		t.Errorf("Sessions() = %v", sessions)
	}
}

func TestReadProfiles(t *testing.T) {
	ctx := context.Background()
	store, sessionID := newTestStore(t)
	want := testProfiles()

	reader, err := store.ReadProfiles(ctx, sessionID)
	if err != nil {
		t.Fatalf("ReadProfiles() error = %v", err)
	}
	defer reader.Close()

	if reader.Session().ID != sessionID {
		t.Errorf("Session().ID = %d, want %d", reader.Session().ID, sessionID)
	}

	var got []*cir.FrameProfile
	for reader.Next(ctx) {
		got = append(got, reader.Current())
	}
	if err := reader.Error(); err != nil {
		t.Fatalf("Error() = %v", err)
	}

	if len(got) != len(want) {
		t.Fatalf("read %d profiles, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].FrameIndex != want[i].FrameIndex {
			t.Errorf("profiles[%d].FrameIndex = %d, want %d", i, got[i].FrameIndex, want[i].FrameIndex)
		}
		if got[i].NullOffset != want[i].NullOffset {
			t.Errorf("profiles[%d].NullOffset = %d, want %d", i, got[i].NullOffset, want[i].NullOffset)
		}
		if got[i].ChannelPower != want[i].ChannelPower {
			t.Errorf("profiles[%d].ChannelPower = %g, want %g", i, got[i].ChannelPower, want[i].ChannelPower)
		}
		if len(got[i].Taps) != len(want[i].Taps) {
			t.Fatalf("profiles[%d] has %d taps, want %d", i, len(got[i].Taps), len(want[i].Taps))
		}
		for d := range want[i].Taps {
			if got[i].Taps[d] != want[i].Taps[d] {
				t.Errorf("profiles[%d].Taps[%d] = %g, want %g", i, d, got[i].Taps[d], want[i].Taps[d])
			}
		}
	}
}

func TestReadProfilesFiltered(t *testing.T) {
	ctx := context.Background()
	store, sessionID := newTestStore(t)

	reader, err := store.ReadProfiles(ctx, sessionID, WithFrameRange(1, 2), WithMaxDelay(2))
	if err != nil {
		t.Fatalf("ReadProfiles() error = %v", err)
	}
	defer reader.Close()

	var got []*cir.FrameProfile
	for reader.Next(ctx) {
		got = append(got, reader.Current())
	}
	if err := reader.Error(); err != nil {
		t.Fatalf("Error() = %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("read %d profiles, want 2", len(got))
	}
	if got[0].FrameIndex != 1 || got[1].FrameIndex != 2 {
		t.Errorf("frame indexes = %d, %d, want 1, 2", got[0].FrameIndex, got[1].FrameIndex)
	}
	for i, p := range got {
		if len(p.Taps) != 2 {
			t.Errorf("profiles[%d] has %d taps, want 2", i, len(p.Taps))
		}
	}
}

func TestReadProfilesInvalidOptions(t *testing.T) {
	ctx := context.Background()
	store, sessionID := newTestStore(t)

	if _, err := store.ReadProfiles(ctx, sessionID, WithFrameRange(2, 1)); err == nil {
		t.Error("ReadProfiles() error = nil for inverted frame range")
	}
	if _, err := store.ReadProfiles(ctx, sessionID, WithMaxDelay(0)); err == nil {
		t.Error("ReadProfiles() error = nil for non-positive max delay")
	}
	if _, err := store.ReadProfiles(ctx, 0); err == nil {
		t.Error("ReadProfiles() error = nil for missing session ID")
	}
}
