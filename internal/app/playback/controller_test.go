package playback

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osa030/cornerpocket/internal/domain/playlist"
	"github.com/osa030/cornerpocket/internal/domain/track"
)

type loadCall struct {
	gen  Generation
	path string
}

type seekCall struct {
	gen      Generation
	position time.Duration
}

// fakeBackend records calls; lifecycle callbacks are injected by the tests.
type fakeBackend struct {
	loads   []loadCall
	plays   []Generation
	pauses  []Generation
	seeks   []seekCall
	volumes []float64
	playErr error
}

func (b *fakeBackend) Load(gen Generation, assetPath string) {
	b.loads = append(b.loads, loadCall{gen, assetPath})
}

func (b *fakeBackend) Play(gen Generation) error {
	b.plays = append(b.plays, gen)
	return b.playErr
}

func (b *fakeBackend) Pause(gen Generation) {
	b.pauses = append(b.pauses, gen)
}

func (b *fakeBackend) Seek(gen Generation, position time.Duration) {
	b.seeks = append(b.seeks, seekCall{gen, position})
}

func (b *fakeBackend) SetVolume(volume float64) {
	b.volumes = append(b.volumes, volume)
}

func testPlaylist(t *testing.T, n int) *playlist.Playlist {
	t.Helper()
	tracks := make([]track.Track, n)
	for i := range tracks {
		tracks[i] = track.Track{
			ID:        fmt.Sprintf("track-%d", i+1),
			Title:     fmt.Sprintf("Track %d", i+1),
			AssetPath: fmt.Sprintf("track%d.mp3", i+1),
		}
	}
	pl, err := playlist.New("test", tracks)
	require.NoError(t, err)
	return pl
}

func newTestController(t *testing.T, cfg Config) (*Controller, *fakeBackend) {
	t.Helper()
	if cfg.DefaultVolume == 0 {
		cfg.DefaultVolume = 1.0
	}
	backend := &fakeBackend{}
	c, err := NewController(testPlaylist(t, 6), backend, cfg)
	require.NoError(t, err)
	return c, backend
}

// loadAndPlay drives index to Playing with the given duration.
func loadAndPlay(t *testing.T, c *Controller, index int, d time.Duration) {
	t.Helper()
	require.NoError(t, c.SelectTrack(index))
	c.OnMetadataLoaded(c.Generation(), d)
	require.NoError(t, c.Play())
	require.Equal(t, StatusPlaying, c.Snapshot().Status)
}

func TestNewController(t *testing.T) {
	c, backend := newTestController(t, Config{})

	s := c.Snapshot()
	assert.Equal(t, StatusIdle, s.Status)
	assert.Equal(t, 0, s.Index)
	assert.Equal(t, 6, s.TrackCount)
	assert.Equal(t, 1.0, s.Volume)
	assert.False(t, s.DurationKnown)
	assert.Equal(t, "Play", s.TransportLabel())
	assert.Equal(t, "100%", s.VolumePercentLabel())
	assert.Empty(t, backend.loads)

	_, err := NewController(testPlaylist(t, 1), &fakeBackend{}, Config{DefaultVolume: 1.5})
	assert.True(t, errors.Is(err, ErrVolumeOutOfRange))

	_, err = NewController(nil, &fakeBackend{}, Config{DefaultVolume: 1})
	assert.Error(t, err)
}

func TestController_SelectThenMetadata(t *testing.T) {
	for index := 0; index < 6; index++ {
		t.Run(fmt.Sprintf("index %d", index), func(t *testing.T) {
			c, backend := newTestController(t, Config{})

			require.NoError(t, c.SelectTrack(index))
			require.Len(t, backend.loads, 1)
			assert.Equal(t, fmt.Sprintf("track%d.mp3", index+1), backend.loads[0].path)

			c.OnMetadataLoaded(backend.loads[0].gen, 180*time.Second)

			s := c.Snapshot()
			assert.Equal(t, index, s.Index)
			assert.Equal(t, index, s.ActiveIndex())
			assert.Equal(t, StatusLoading, s.Status)
			assert.True(t, s.DurationKnown)
			assert.Equal(t, 180*time.Second, s.Duration)
			assert.Equal(t, time.Duration(0), s.Position)
		})
	}
}

func TestController_NextWraps(t *testing.T) {
	for i := 0; i < 6; i++ {
		t.Run(fmt.Sprintf("from %d", i), func(t *testing.T) {
			c, _ := newTestController(t, Config{})
			require.NoError(t, c.SelectTrack(i))

			c.Next()

			s := c.Snapshot()
			assert.Equal(t, (i+1)%6, s.Index)
			assert.Equal(t, StatusLoading, s.Status)
		})
	}
}

func TestController_PreviousWraps(t *testing.T) {
	c, backend := newTestController(t, Config{})
	require.NoError(t, c.SelectTrack(0))

	c.Previous()

	assert.Equal(t, 5, c.Snapshot().Index)
	assert.Equal(t, "track6.mp3", backend.loads[len(backend.loads)-1].path)

	c.Previous()
	assert.Equal(t, 4, c.Snapshot().Index)
}

func TestController_NextSingleTrackReloads(t *testing.T) {
	backend := &fakeBackend{}
	c, err := NewController(testPlaylist(t, 1), backend, Config{DefaultVolume: 1})
	require.NoError(t, err)

	require.NoError(t, c.SelectTrack(0))
	c.Next()

	assert.Equal(t, 0, c.Snapshot().Index)
	assert.Len(t, backend.loads, 2)
	assert.Equal(t, Generation(2), c.Generation())
}

func TestController_SetVolumeLabel(t *testing.T) {
	setups := map[string]func(c *Controller){
		"idle":    func(c *Controller) {},
		"loading": func(c *Controller) { _ = c.SelectTrack(2) },
		"playing": func(c *Controller) {
			_ = c.SelectTrack(0)
			c.OnMetadataLoaded(c.Generation(), time.Minute)
			_ = c.Play()
		},
		"errored": func(c *Controller) {
			_ = c.SelectTrack(1)
			c.OnError(c.Generation(), ErrorAssetNotFound)
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			c, backend := newTestController(t, Config{})
			setup(c)
			before := c.Snapshot()

			require.NoError(t, c.SetVolume(0.5))

			s := c.Snapshot()
			assert.Equal(t, 0.5, s.Volume)
			assert.Equal(t, "50%", s.VolumePercentLabel())
			assert.Equal(t, before.Status, s.Status)
			assert.Equal(t, []float64{0.5}, backend.volumes)
		})
	}
}

func TestController_VolumePersistsAcrossTrackChanges(t *testing.T) {
	c, _ := newTestController(t, Config{})
	require.NoError(t, c.SetVolume(0.25))

	c.Next()
	c.Next()
	require.NoError(t, c.SelectTrack(5))

	assert.Equal(t, 0.25, c.Snapshot().Volume)
	assert.Equal(t, "25%", c.Snapshot().VolumePercentLabel())
}

func TestController_TimeUpdateIgnoredUnlessPlaying(t *testing.T) {
	setups := map[string]func(c *Controller){
		"idle":    func(c *Controller) {},
		"loading": func(c *Controller) { _ = c.SelectTrack(0) },
		"loading with duration": func(c *Controller) {
			_ = c.SelectTrack(0)
			c.OnMetadataLoaded(c.Generation(), time.Minute)
		},
		"paused": func(c *Controller) {
			_ = c.SelectTrack(0)
			c.OnMetadataLoaded(c.Generation(), time.Minute)
			_ = c.Play()
			_ = c.Pause()
		},
		"ended": func(c *Controller) {
			_ = c.SelectTrack(5)
			c.OnMetadataLoaded(c.Generation(), time.Minute)
			_ = c.Play()
			c.OnEnded(c.Generation())
		},
		"errored": func(c *Controller) {
			_ = c.SelectTrack(0)
			c.OnError(c.Generation(), ErrorDecode)
		},
	}

	for name, setup := range setups {
		t.Run(name, func(t *testing.T) {
			c, _ := newTestController(t, Config{})
			setup(c)
			before := c.Snapshot()

			c.OnTimeUpdate(c.Generation(), 30*time.Second)

			assert.Equal(t, before, c.Snapshot())
		})
	}
}

func TestController_StaleCallbacksDropped(t *testing.T) {
	c, backend := newTestController(t, Config{})

	require.NoError(t, c.SelectTrack(0))
	stale := c.Generation()
	c.OnMetadataLoaded(stale, time.Minute)
	require.NoError(t, c.Play())

	require.NoError(t, c.SelectTrack(3))
	require.NotEqual(t, stale, c.Generation())
	before := c.Snapshot()

	c.OnMetadataLoaded(stale, 2*time.Minute)
	c.OnTimeUpdate(stale, 10*time.Second)
	c.OnEnded(stale)
	c.OnError(stale, ErrorAssetNotFound)

	assert.Equal(t, before, c.Snapshot())
	assert.Len(t, backend.loads, 2)
}

func TestController_ScenarioPlayAndProgress(t *testing.T) {
	c, backend := newTestController(t, Config{})

	require.NoError(t, c.SelectTrack(0))
	c.OnMetadataLoaded(c.Generation(), 180*time.Second)
	require.NoError(t, c.Play())

	s := c.Snapshot()
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, 180*time.Second, s.Duration)
	assert.Equal(t, "Pause", s.TransportLabel())
	assert.Equal(t, []Generation{1}, backend.plays)

	c.OnTimeUpdate(c.Generation(), 90*time.Second)

	s = c.Snapshot()
	assert.Equal(t, 90*time.Second, s.Position)
	assert.InDelta(t, 50.0, s.ProgressPercent(), 1e-9)
}

func TestController_ScenarioErrorThenNext(t *testing.T) {
	c, _ := newTestController(t, Config{})

	require.NoError(t, c.SelectTrack(1))
	c.OnError(c.Generation(), ErrorAssetNotFound)

	s := c.Snapshot()
	assert.Equal(t, StatusErrored, s.Status)
	assert.False(t, s.DurationKnown)
	assert.Equal(t, ErrorAssetNotFound, s.LastError)
	assert.Equal(t, 1, s.Index)

	c.Next()

	s = c.Snapshot()
	assert.Equal(t, 2, s.Index)
	assert.Equal(t, StatusLoading, s.Status)
	assert.Equal(t, ErrorNone, s.LastError)
}

func TestController_EndedRepeatModes(t *testing.T) {
	tests := []struct {
		name       string
		repeat     RepeatMode
		index      int
		wantIndex  int
		wantStatus Status
		wantLoad   bool
	}{
		{"none on last track stays ended", RepeatNone, 5, 5, StatusEnded, false},
		{"none in the middle advances", RepeatNone, 2, 3, StatusLoading, true},
		{"all on last track wraps", RepeatAll, 5, 0, StatusLoading, true},
		{"all in the middle advances", RepeatAll, 1, 2, StatusLoading, true},
		{"one reloads the same track", RepeatOne, 5, 5, StatusLoading, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, backend := newTestController(t, Config{Repeat: tt.repeat})
			loadAndPlay(t, c, tt.index, 3*time.Minute)
			gen := c.Generation()
			loads := len(backend.loads)

			c.OnEnded(gen)

			s := c.Snapshot()
			assert.Equal(t, tt.wantIndex, s.Index)
			assert.Equal(t, tt.wantStatus, s.Status)
			if tt.wantLoad {
				assert.Len(t, backend.loads, loads+1)
				assert.Equal(t, gen+1, s.Generation)
				assert.Equal(t, time.Duration(0), s.Position)
				assert.False(t, s.DurationKnown)
			} else {
				assert.Len(t, backend.loads, loads)
				assert.Equal(t, gen, s.Generation)
				assert.Equal(t, 3*time.Minute, s.Position)
				assert.InDelta(t, 100.0, s.ProgressPercent(), 1e-9)
			}
		})
	}
}

func TestController_PlayFromEndedRestarts(t *testing.T) {
	c, backend := newTestController(t, Config{})
	loadAndPlay(t, c, 5, time.Minute)
	c.OnEnded(c.Generation())
	require.Equal(t, StatusEnded, c.Snapshot().Status)

	require.NoError(t, c.Play())

	s := c.Snapshot()
	assert.Equal(t, StatusPlaying, s.Status)
	assert.Equal(t, time.Duration(0), s.Position)
	assert.Equal(t, []seekCall{{c.Generation(), 0}}, backend.seeks)
}

func TestController_BlockedPlayFromEndedKeepsPosition(t *testing.T) {
	c, backend := newTestController(t, Config{})
	loadAndPlay(t, c, 5, time.Minute)
	c.OnEnded(c.Generation())
	backend.playErr = ErrPlaybackBlocked

	err := c.Play()

	assert.ErrorIs(t, err, ErrPlaybackBlocked)
	s := c.Snapshot()
	assert.Equal(t, StatusEnded, s.Status)
	assert.Equal(t, time.Minute, s.Position)
	assert.True(t, s.Blocked)
	assert.Empty(t, backend.seeks)

	backend.playErr = nil
	require.NoError(t, c.Play())
	assert.Equal(t, time.Duration(0), c.Snapshot().Position)
	assert.Equal(t, []seekCall{{c.Generation(), 0}}, backend.seeks)
}

func TestController_InvalidCommands(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(c *Controller)
		command  func(c *Controller) error
		sentinel error
	}{
		{
			name:     "select negative index",
			command:  func(c *Controller) error { return c.SelectTrack(-1) },
			sentinel: ErrIndexOutOfRange,
		},
		{
			name:     "select past the end",
			command:  func(c *Controller) error { return c.SelectTrack(6) },
			sentinel: ErrIndexOutOfRange,
		},
		{
			name:     "seek with unknown duration",
			setup:    func(c *Controller) { _ = c.SelectTrack(0) },
			command:  func(c *Controller) error { return c.Seek(10 * time.Second) },
			sentinel: ErrDurationUnknown,
		},
		{
			name: "seek while loading",
			setup: func(c *Controller) {
				_ = c.SelectTrack(0)
				c.OnMetadataLoaded(c.Generation(), time.Minute)
			},
			command:  func(c *Controller) error { return c.Seek(10 * time.Second) },
			sentinel: ErrWrongState,
		},
		{
			name:     "seek past duration",
			setup:    func(c *Controller) { loadAndPlayNoT(c, 0, time.Minute) },
			command:  func(c *Controller) error { return c.Seek(61 * time.Second) },
			sentinel: ErrPositionOutOfRange,
		},
		{
			name:     "seek negative",
			setup:    func(c *Controller) { loadAndPlayNoT(c, 0, time.Minute) },
			command:  func(c *Controller) error { return c.Seek(-time.Second) },
			sentinel: ErrPositionOutOfRange,
		},
		{
			name:     "volume above one",
			command:  func(c *Controller) error { return c.SetVolume(1.5) },
			sentinel: ErrVolumeOutOfRange,
		},
		{
			name:     "volume below zero",
			command:  func(c *Controller) error { return c.SetVolume(-0.1) },
			sentinel: ErrVolumeOutOfRange,
		},
		{
			name:     "volume NaN",
			command:  func(c *Controller) error { return c.SetVolume(math.NaN()) },
			sentinel: ErrVolumeOutOfRange,
		},
		{
			name:     "play from idle",
			command:  func(c *Controller) error { return c.Play() },
			sentinel: ErrWrongState,
		},
		{
			name:     "play before metadata",
			setup:    func(c *Controller) { _ = c.SelectTrack(0) },
			command:  func(c *Controller) error { return c.Play() },
			sentinel: ErrDurationUnknown,
		},
		{
			name: "play from errored",
			setup: func(c *Controller) {
				_ = c.SelectTrack(0)
				c.OnError(c.Generation(), ErrorDecode)
			},
			command:  func(c *Controller) error { return c.Play() },
			sentinel: ErrWrongState,
		},
		{
			name:     "pause from loading",
			setup:    func(c *Controller) { _ = c.SelectTrack(0) },
			command:  func(c *Controller) error { return c.Pause() },
			sentinel: ErrWrongState,
		},
		{
			name: "pause from paused",
			setup: func(c *Controller) {
				loadAndPlayNoT(c, 0, time.Minute)
				_ = c.Pause()
			},
			command:  func(c *Controller) error { return c.Pause() },
			sentinel: ErrWrongState,
		},
		{
			name:     "unknown repeat mode",
			command:  func(c *Controller) error { return c.SetRepeat(RepeatMode(9)) },
			sentinel: ErrUnknownRepeatMode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestController(t, Config{})
			if tt.setup != nil {
				tt.setup(c)
			}
			before := c.Snapshot()

			err := tt.command(c)

			require.Error(t, err)
			assert.True(t, IsInvalidCommand(err), "expected invalid command, got %v", err)
			assert.True(t, errors.Is(err, tt.sentinel), "expected %v, got %v", tt.sentinel, err)
			assert.Equal(t, before, c.Snapshot())
		})
	}
}

// loadAndPlayNoT is loadAndPlay for table setups that have no *testing.T.
func loadAndPlayNoT(c *Controller, index int, d time.Duration) {
	_ = c.SelectTrack(index)
	c.OnMetadataLoaded(c.Generation(), d)
	_ = c.Play()
}

func TestController_SelectCurrentTrack(t *testing.T) {
	t.Run("no-op while loading", func(t *testing.T) {
		c, backend := newTestController(t, Config{})
		require.NoError(t, c.SelectTrack(2))
		require.NoError(t, c.SelectTrack(2))
		assert.Len(t, backend.loads, 1)
	})

	t.Run("no-op while playing", func(t *testing.T) {
		c, backend := newTestController(t, Config{})
		loadAndPlay(t, c, 2, time.Minute)
		require.NoError(t, c.SelectTrack(2))
		assert.Len(t, backend.loads, 1)
		assert.Equal(t, StatusPlaying, c.Snapshot().Status)
	})

	t.Run("retries after error", func(t *testing.T) {
		c, backend := newTestController(t, Config{})
		require.NoError(t, c.SelectTrack(2))
		c.OnError(c.Generation(), ErrorAssetNotFound)

		require.NoError(t, c.SelectTrack(2))

		assert.Len(t, backend.loads, 2)
		assert.Equal(t, StatusLoading, c.Snapshot().Status)
		assert.Equal(t, Generation(2), c.Generation())
	})

	t.Run("initial select loads index zero", func(t *testing.T) {
		c, backend := newTestController(t, Config{})
		require.NoError(t, c.SelectTrack(0))
		assert.Len(t, backend.loads, 1)
	})
}

func TestController_PlayBlocked(t *testing.T) {
	c, backend := newTestController(t, Config{})
	require.NoError(t, c.SelectTrack(0))
	c.OnMetadataLoaded(c.Generation(), time.Minute)
	backend.playErr = ErrPlaybackBlocked

	err := c.Play()

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPlaybackBlocked))
	assert.False(t, IsInvalidCommand(err))
	s := c.Snapshot()
	assert.Equal(t, StatusLoading, s.Status)
	assert.True(t, s.Blocked)
	assert.Equal(t, "Play", s.TransportLabel())

	backend.playErr = nil
	require.NoError(t, c.Play())
	s = c.Snapshot()
	assert.Equal(t, StatusPlaying, s.Status)
	assert.False(t, s.Blocked)
}

func TestController_PlayBackendFailure(t *testing.T) {
	c, backend := newTestController(t, Config{})
	require.NoError(t, c.SelectTrack(0))
	c.OnMetadataLoaded(c.Generation(), time.Minute)
	backend.playErr = errors.New("device gone")

	err := c.Play()

	require.Error(t, err)
	assert.False(t, IsInvalidCommand(err))
	s := c.Snapshot()
	assert.Equal(t, StatusErrored, s.Status)
	assert.Equal(t, ErrorDecode, s.LastError)
}

func TestController_PauseAndResume(t *testing.T) {
	c, backend := newTestController(t, Config{})
	loadAndPlay(t, c, 0, time.Minute)
	c.OnTimeUpdate(c.Generation(), 20*time.Second)

	require.NoError(t, c.Pause())
	assert.Equal(t, StatusPaused, c.Snapshot().Status)
	assert.Equal(t, 20*time.Second, c.Snapshot().Position)
	assert.Equal(t, []Generation{1}, backend.pauses)

	require.NoError(t, c.TogglePlay())
	assert.Equal(t, StatusPlaying, c.Snapshot().Status)
	require.NoError(t, c.TogglePlay())
	assert.Equal(t, StatusPaused, c.Snapshot().Status)
}

func TestController_Seek(t *testing.T) {
	c, backend := newTestController(t, Config{})
	loadAndPlay(t, c, 0, time.Minute)
	require.NoError(t, c.Pause())

	require.NoError(t, c.Seek(45*time.Second))

	s := c.Snapshot()
	assert.Equal(t, 45*time.Second, s.Position)
	assert.Equal(t, StatusPaused, s.Status)
	assert.Equal(t, []seekCall{{1, 45 * time.Second}}, backend.seeks)

	require.NoError(t, c.Seek(time.Minute))
	assert.InDelta(t, 100.0, c.Snapshot().ProgressPercent(), 1e-9)
}

func TestController_TimeUpdateClamped(t *testing.T) {
	c, _ := newTestController(t, Config{})
	loadAndPlay(t, c, 0, time.Minute)

	c.OnTimeUpdate(c.Generation(), 2*time.Minute)
	assert.Equal(t, time.Minute, c.Snapshot().Position)

	c.OnTimeUpdate(c.Generation(), -time.Second)
	assert.Equal(t, time.Duration(0), c.Snapshot().Position)
}

func TestController_NegativeDurationIsDecodeError(t *testing.T) {
	c, _ := newTestController(t, Config{})
	require.NoError(t, c.SelectTrack(0))

	c.OnMetadataLoaded(c.Generation(), -time.Second)

	s := c.Snapshot()
	assert.Equal(t, StatusErrored, s.Status)
	assert.Equal(t, ErrorDecode, s.LastError)
}

func TestController_ZeroDuration(t *testing.T) {
	c, _ := newTestController(t, Config{})
	require.NoError(t, c.SelectTrack(0))

	c.OnMetadataLoaded(c.Generation(), 0)

	s := c.Snapshot()
	assert.Equal(t, StatusLoading, s.Status)
	assert.True(t, s.DurationKnown)
	assert.Equal(t, 0.0, s.ProgressPercent())

	require.NoError(t, c.Play())
	assert.Equal(t, StatusPlaying, c.Snapshot().Status)
}

func TestController_Autoplay(t *testing.T) {
	t.Run("next while playing resumes", func(t *testing.T) {
		c, backend := newTestController(t, Config{Autoplay: true})
		loadAndPlay(t, c, 0, time.Minute)

		c.Next()
		require.Equal(t, StatusLoading, c.Snapshot().Status)
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		assert.Equal(t, StatusPlaying, c.Snapshot().Status)
		assert.Equal(t, []Generation{1, 2}, backend.plays)
	})

	t.Run("repeated skips before metadata resume", func(t *testing.T) {
		c, backend := newTestController(t, Config{Autoplay: true})
		loadAndPlay(t, c, 0, time.Minute)

		c.Next()
		c.Next()
		require.NoError(t, c.SelectTrack(4))
		c.Previous()
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		s := c.Snapshot()
		assert.Equal(t, 3, s.Index)
		assert.Equal(t, StatusPlaying, s.Status)
		assert.Equal(t, []Generation{1, 5}, backend.plays)
	})

	t.Run("skip after resumed track does not resume twice", func(t *testing.T) {
		c, _ := newTestController(t, Config{Autoplay: true})
		loadAndPlay(t, c, 0, time.Minute)
		c.Next()
		c.OnMetadataLoaded(c.Generation(), time.Minute)
		require.NoError(t, c.Pause())

		c.Next()
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		assert.Equal(t, StatusLoading, c.Snapshot().Status)
	})

	t.Run("next while paused does not resume", func(t *testing.T) {
		c, _ := newTestController(t, Config{Autoplay: true})
		loadAndPlay(t, c, 0, time.Minute)
		require.NoError(t, c.Pause())

		c.Next()
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		assert.Equal(t, StatusLoading, c.Snapshot().Status)
	})

	t.Run("auto-advance resumes", func(t *testing.T) {
		c, _ := newTestController(t, Config{Autoplay: true})
		loadAndPlay(t, c, 0, time.Minute)

		c.OnEnded(c.Generation())
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		s := c.Snapshot()
		assert.Equal(t, 1, s.Index)
		assert.Equal(t, StatusPlaying, s.Status)
	})

	t.Run("disabled keeps loading", func(t *testing.T) {
		c, _ := newTestController(t, Config{})
		loadAndPlay(t, c, 0, time.Minute)

		c.OnEnded(c.Generation())
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		assert.Equal(t, StatusLoading, c.Snapshot().Status)
	})

	t.Run("blocked autoplay keeps loading", func(t *testing.T) {
		c, backend := newTestController(t, Config{Autoplay: true})
		loadAndPlay(t, c, 0, time.Minute)
		backend.playErr = ErrPlaybackBlocked

		c.Next()
		c.OnMetadataLoaded(c.Generation(), time.Minute)

		s := c.Snapshot()
		assert.Equal(t, StatusLoading, s.Status)
		assert.True(t, s.Blocked)
	})
}

func TestController_Events(t *testing.T) {
	c, _ := newTestController(t, Config{})

	require.NoError(t, c.SelectTrack(1))
	c.OnMetadataLoaded(c.Generation(), time.Minute)
	require.NoError(t, c.Play())
	require.NoError(t, c.SetVolume(0.5))
	require.NoError(t, c.SetRepeat(RepeatAll))

	want := []EventType{EventTrackChanged, EventMetadataLoaded, EventStateChanged, EventVolumeChanged, EventRepeatChanged}
	for _, w := range want {
		select {
		case ev := <-c.Events():
			assert.Equal(t, w, ev.Type)
			assert.Equal(t, 1, ev.Snapshot.Index)
		default:
			t.Fatalf("missing event %s", w)
		}
	}

	c.Close()
	_, ok := <-c.Events()
	assert.False(t, ok)
}

func TestController_EventBufferFullDoesNotBlock(t *testing.T) {
	c, _ := newTestController(t, Config{EventBuffer: 1})

	for i := 0; i < 10; i++ {
		c.Next()
	}

	assert.Len(t, c.Events(), 1)
	assert.Equal(t, 4, c.Snapshot().Index)
}

func TestParseRepeatMode(t *testing.T) {
	tests := []struct {
		input   string
		want    RepeatMode
		wantErr bool
	}{
		{"", RepeatNone, false},
		{"none", RepeatNone, false},
		{"one", RepeatOne, false},
		{"all", RepeatAll, false},
		{"shuffle", RepeatNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRepeatMode(tt.input)
			if tt.wantErr {
				assert.True(t, IsInvalidCommand(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if tt.input != "" {
				assert.Equal(t, tt.input, got.String())
			}
		})
	}
}

func TestSnapshot_DerivedValues(t *testing.T) {
	tests := []struct {
		name     string
		snapshot Snapshot
		progress float64
		label    string
		volume   string
	}{
		{
			name:     "unknown duration",
			snapshot: Snapshot{Status: StatusLoading, Volume: 1},
			progress: 0,
			label:    "Play",
			volume:   "100%",
		},
		{
			name:     "quarter through",
			snapshot: Snapshot{Status: StatusPlaying, Position: 30 * time.Second, Duration: 2 * time.Minute, DurationKnown: true, Volume: 0.333},
			progress: 25,
			label:    "Pause",
			volume:   "33%",
		},
		{
			name:     "paused",
			snapshot: Snapshot{Status: StatusPaused, Position: time.Minute, Duration: 2 * time.Minute, DurationKnown: true, Volume: 0.005},
			progress: 50,
			label:    "Play",
			volume:   "1%",
		},
		{
			name:     "muted",
			snapshot: Snapshot{Status: StatusEnded, Volume: 0},
			progress: 0,
			label:    "Play",
			volume:   "0%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.progress, tt.snapshot.ProgressPercent(), 1e-9)
			assert.Equal(t, tt.label, tt.snapshot.TransportLabel())
			assert.Equal(t, tt.volume, tt.snapshot.VolumePercentLabel())
		})
	}
}
