package mpris

import (
	"context"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/notification"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/domain/track"
)

func TestPlaybackStatus(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{"playing", "Playing"},
		{"paused", "Paused"},
		{"loading", "Stopped"},
		{"ended", "Stopped"},
		{"errored", "Stopped"},
		{"idle", "Stopped"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			assert.Equal(t, tt.want, PlaybackStatus(tt.status))
		})
	}
}

func TestLoopStatusRoundTrip(t *testing.T) {
	for _, mode := range []playback.RepeatMode{playback.RepeatNone, playback.RepeatOne, playback.RepeatAll} {
		got, err := ParseLoopStatus(LoopStatus(mode.String()))
		require.NoError(t, err)
		assert.Equal(t, mode, got)
	}

	_, err := ParseLoopStatus("Shuffle")
	assert.ErrorIs(t, err, ErrUnknownLoopStatus)
}

func TestMetadata(t *testing.T) {
	state := &playerv1.PlayerState{
		Index: 2,
		Track: &playerv1.Track{Index: 2, ID: "c", Title: "Charlie", AssetPath: "c.mp3"},
	}
	resolve := func(p string) string { return "http://host/audio/" + p }

	md := Metadata(state, resolve)
	assert.Equal(t, dbus.ObjectPath("/org/cornerpocket/track/2"), md["mpris:trackid"].Value())
	assert.Equal(t, "Charlie", md["xesam:title"].Value())
	assert.Equal(t, "http://host/audio/c.mp3", md["xesam:url"].Value())
	assert.NotContains(t, md, "mpris:length")

	state.DurationKnown = true
	state.DurationMs = 1500
	md = Metadata(state, nil)
	assert.Equal(t, int64(1_500_000), md["mpris:length"].Value())
	assert.NotContains(t, md, "xesam:url")

	md = Metadata(&playerv1.PlayerState{}, nil)
	assert.Equal(t, noTrack, md["mpris:trackid"].Value())
}

func TestSeekTarget(t *testing.T) {
	state := &playerv1.PlayerState{PositionMs: 2000, DurationMs: 5000}

	target, next := SeekTarget(state, 1_000_000)
	assert.False(t, next)
	assert.Equal(t, 3*time.Second, target)

	target, next = SeekTarget(state, -10_000_000)
	assert.False(t, next)
	assert.Equal(t, time.Duration(0), target)

	_, next = SeekTarget(state, 4_000_000)
	assert.True(t, next)
}

func TestClampVolume(t *testing.T) {
	assert.Equal(t, 0.0, ClampVolume(-1))
	assert.Equal(t, 0.4, ClampVolume(0.4))
	assert.Equal(t, 1.0, ClampVolume(1.7))
}

// fakePlayer records commands against a fixed snapshot.
type fakePlayer struct {
	snapshot playback.Snapshot
	calls    []string
	seeks    []time.Duration
	err      error
}

func (f *fakePlayer) Snapshot() playback.Snapshot { return f.snapshot }

func (f *fakePlayer) GetNotificationManager() *notification.Manager { return notification.NewManager() }

func (f *fakePlayer) record(name string) (playback.Snapshot, error) {
	f.calls = append(f.calls, name)
	return f.snapshot, f.err
}

func (f *fakePlayer) Play(ctx context.Context) (playback.Snapshot, error)  { return f.record("play") }
func (f *fakePlayer) Pause(ctx context.Context) (playback.Snapshot, error) { return f.record("pause") }
func (f *fakePlayer) Next(ctx context.Context) (playback.Snapshot, error)  { return f.record("next") }

func (f *fakePlayer) TogglePlay(ctx context.Context) (playback.Snapshot, error) {
	return f.record("toggle")
}

func (f *fakePlayer) Previous(ctx context.Context) (playback.Snapshot, error) {
	return f.record("previous")
}

func (f *fakePlayer) Seek(ctx context.Context, position time.Duration) (playback.Snapshot, error) {
	f.seeks = append(f.seeks, position)
	f.snapshot.Position = position
	return f.record("seek")
}

func (f *fakePlayer) SetVolume(ctx context.Context, v float64) (playback.Snapshot, error) {
	return f.record("volume")
}

func (f *fakePlayer) SetRepeat(ctx context.Context, mode playback.RepeatMode) (playback.Snapshot, error) {
	return f.record("repeat")
}

func playingSnapshot() playback.Snapshot {
	return playback.Snapshot{
		Index:         1,
		Track:         track.Track{ID: "b", AssetPath: "b.mp3"},
		TrackCount:    3,
		Status:        playback.StatusPlaying,
		Position:      time.Second,
		Duration:      4 * time.Second,
		DurationKnown: true,
		Volume:        1,
	}
}

func TestPlayerObject_Methods(t *testing.T) {
	player := &fakePlayer{snapshot: playingSnapshot()}
	obj := &playerObject{server: NewServer("test", player, nil)}

	assert.Nil(t, obj.PlayPause())
	assert.Nil(t, obj.Stop())
	assert.Nil(t, obj.Seek(2_000_000))
	assert.Equal(t, []time.Duration{3 * time.Second}, player.seeks)

	// Past the end skips to the next track.
	assert.Nil(t, obj.Seek(10_000_000))

	// Wrong track id is ignored.
	assert.Nil(t, obj.SetPosition(TrackObjectPath(0), 500_000))
	assert.Nil(t, obj.SetPosition(TrackObjectPath(1), 500_000))
	assert.Equal(t, []time.Duration{3 * time.Second, 500 * time.Millisecond}, player.seeks)

	assert.Equal(t, []string{"toggle", "pause", "seek", "next", "seek"}, player.calls)
	assert.NotNil(t, obj.OpenUri("http://example.com/x.mp3"))
}

func TestPlayerObject_PauseWhenNotPlaying(t *testing.T) {
	player := &fakePlayer{snapshot: playingSnapshot()}
	player.snapshot.Status = playback.StatusPaused
	obj := &playerObject{server: NewServer("test", player, nil)}

	assert.Nil(t, obj.Pause())
	assert.Empty(t, player.calls)
}

func TestPlayerObject_InvalidCommandIsNotABusError(t *testing.T) {
	player := &fakePlayer{snapshot: playingSnapshot(), err: playback.ErrPlaybackBlocked}
	obj := &playerObject{server: NewServer("test", player, nil)}

	assert.Nil(t, obj.Play())
}

func TestServer_SendKeepsLatest(t *testing.T) {
	s := NewServer("test", &fakePlayer{}, nil)

	require.NoError(t, s.Send(&playerv1.Notification{State: &playerv1.PlayerState{Volume: 0.1}}))
	require.NoError(t, s.Send(&playerv1.Notification{State: &playerv1.PlayerState{Volume: 0.9}}))
	require.NoError(t, s.Send(&playerv1.Notification{}))

	assert.Len(t, s.wake, 1)
	assert.Equal(t, 0.9, s.pending.Volume)
	assert.NoError(t, s.Close())
}
