package playback

import (
	"math"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/domain/playlist"
)

// Config holds controller configuration.
type Config struct {
	Repeat        RepeatMode
	Autoplay      bool    // Start playing on metadata after a track change that interrupted playback
	DefaultVolume float64 // Initial volume in [0, 1]
	EventBuffer   int     // Size of the events channel (default 64)
}

// Controller owns the playback state and mediates commands and backend callbacks.
// It is not safe for concurrent use: run it on a Loop, or from a single goroutine.
type Controller struct {
	playlist *playlist.Playlist
	backend  Backend
	config   Config

	index         int
	status        Status
	position      time.Duration
	duration      time.Duration
	durationKnown bool
	volume        float64
	repeat        RepeatMode
	generation    Generation
	lastError     ErrorCode
	blocked       bool

	// Generation for which the controller will call Play itself on metadata.
	resumeGen Generation

	eventCh chan Event
	closed  bool
}

// NewController creates a controller in status Idle at index 0.
func NewController(pl *playlist.Playlist, backend Backend, cfg Config) (*Controller, error) {
	if pl == nil || pl.Len() == 0 {
		return nil, playlist.ErrEmptyPlaylist
	}
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	if !validVolume(cfg.DefaultVolume) {
		return nil, errors.Wrapf(ErrVolumeOutOfRange, "default volume %v", cfg.DefaultVolume)
	}
	if cfg.EventBuffer <= 0 {
		cfg.EventBuffer = 64
	}

	return &Controller{
		playlist: pl,
		backend:  backend,
		config:   cfg,
		status:   StatusIdle,
		volume:   cfg.DefaultVolume,
		repeat:   cfg.Repeat,
		eventCh:  make(chan Event, cfg.EventBuffer),
	}, nil
}

// Events returns the event channel.
func (c *Controller) Events() <-chan Event {
	return c.eventCh
}

// Playlist returns the playlist the controller navigates.
func (c *Controller) Playlist() *playlist.Playlist {
	return c.playlist
}

// Generation returns the current load generation.
func (c *Controller) Generation() Generation {
	return c.generation
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	t, _ := c.playlist.At(c.index)
	return Snapshot{
		Index:         c.index,
		Track:         t,
		TrackCount:    c.playlist.Len(),
		Status:        c.status,
		Position:      c.position,
		Duration:      c.duration,
		DurationKnown: c.durationKnown,
		Volume:        c.volume,
		Repeat:        c.repeat,
		Generation:    c.generation,
		LastError:     c.lastError,
		Blocked:       c.blocked,
	}
}

// SelectTrack makes index the current track and starts loading it.
// Selecting the current track is a no-op unless nothing is loaded, the track
// ended or the last load failed, in which case the load is issued again.
func (c *Controller) SelectTrack(index int) error {
	if index < 0 || index >= c.playlist.Len() {
		return invalid(ErrIndexOutOfRange, "index %d (tracks: %d)", index, c.playlist.Len())
	}

	if index == c.index {
		switch c.status {
		case StatusLoading, StatusPlaying, StatusPaused:
			return nil
		}
	}

	c.load(index, c.resuming())
	return nil
}

// Next loads the following track, wrapping to the first.
func (c *Controller) Next() {
	c.load(c.playlist.NextIndex(c.index), c.resuming())
}

// Previous loads the preceding track, wrapping to the last.
func (c *Controller) Previous() {
	c.load(c.playlist.PrevIndex(c.index), c.resuming())
}

// Play starts playback from Loading (duration known), Paused or Ended.
// From Ended the position restarts at zero once the backend accepts. Playing is a no-op.
func (c *Controller) Play() error {
	switch c.status {
	case StatusPlaying:
		return nil
	case StatusPaused, StatusEnded:
	case StatusLoading:
		if !c.durationKnown {
			return invalid(ErrDurationUnknown, "play while loading")
		}
	default:
		return invalid(ErrWrongState, "play from %s", c.status)
	}

	if err := c.backend.Play(c.generation); err != nil {
		if errors.Is(err, ErrPlaybackBlocked) {
			zlog.Info().Msgf("playback: play blocked: generation=%d", c.generation)
			c.blocked = true
			c.emit(EventStateChanged)
			return err
		}
		zlog.Warn().Msgf("playback: backend failed to play: generation=%d error=%v", c.generation, err)
		c.fail(ErrorDecode)
		return errors.Wrap(err, "backend play")
	}

	if c.status == StatusEnded {
		c.position = 0
		c.backend.Seek(c.generation, 0)
	}
	c.blocked = false
	c.status = StatusPlaying
	c.emit(EventStateChanged)
	return nil
}

// Pause freezes playback. Valid from Playing only.
func (c *Controller) Pause() error {
	if c.status != StatusPlaying {
		return invalid(ErrWrongState, "pause from %s", c.status)
	}

	c.backend.Pause(c.generation)
	c.status = StatusPaused
	c.emit(EventStateChanged)
	return nil
}

// TogglePlay pauses when playing and plays otherwise.
func (c *Controller) TogglePlay() error {
	if c.status == StatusPlaying {
		return c.Pause()
	}
	return c.Play()
}

// Seek moves the position. Requires a known duration and status Playing or Paused.
func (c *Controller) Seek(position time.Duration) error {
	if !c.durationKnown {
		return invalid(ErrDurationUnknown, "seek")
	}
	if c.status != StatusPlaying && c.status != StatusPaused {
		return invalid(ErrWrongState, "seek from %s", c.status)
	}
	if position < 0 || position > c.duration {
		return invalid(ErrPositionOutOfRange, "position %v (duration: %v)", position, c.duration)
	}

	c.position = position
	c.backend.Seek(c.generation, position)
	c.emit(EventPositionChanged)
	return nil
}

// SetVolume sets the volume in [0, 1]. Valid from any status.
func (c *Controller) SetVolume(v float64) error {
	if !validVolume(v) {
		return invalid(ErrVolumeOutOfRange, "volume %v", v)
	}

	c.volume = v
	c.backend.SetVolume(v)
	c.emit(EventVolumeChanged)
	return nil
}

// SetRepeat changes the repeat mode.
func (c *Controller) SetRepeat(mode RepeatMode) error {
	switch mode {
	case RepeatNone, RepeatOne, RepeatAll:
	default:
		return invalid(ErrUnknownRepeatMode, "repeat mode %d", mode)
	}

	c.repeat = mode
	c.emit(EventRepeatChanged)
	return nil
}

// OnMetadataLoaded records the duration of the current load.
// Status stays Loading unless autoplay resumes playback.
func (c *Controller) OnMetadataLoaded(gen Generation, duration time.Duration) {
	if gen != c.generation || c.status != StatusLoading || c.durationKnown {
		zlog.Debug().Msgf("playback: dropping metadata: generation=%d current=%d status=%s", gen, c.generation, c.status)
		return
	}
	if duration < 0 {
		zlog.Warn().Msgf("playback: negative duration: generation=%d duration=%v", gen, duration)
		c.fail(ErrorDecode)
		return
	}

	c.duration = duration
	c.durationKnown = true
	c.emit(EventMetadataLoaded)

	if c.resumeGen == gen {
		c.resumeGen = 0
		if err := c.Play(); err != nil {
			zlog.Info().Msgf("playback: autoplay did not start: generation=%d error=%v", gen, err)
		}
	}
}

// OnTimeUpdate updates the position while playing.
func (c *Controller) OnTimeUpdate(gen Generation, position time.Duration) {
	if gen != c.generation || c.status != StatusPlaying {
		return
	}

	if position < 0 {
		position = 0
	}
	if position > c.duration {
		position = c.duration
	}
	if position == c.position {
		return
	}

	c.position = position
	c.emit(EventPositionChanged)
}

// OnEnded moves to Ended and advances according to the repeat mode.
func (c *Controller) OnEnded(gen Generation) {
	if gen != c.generation || c.status != StatusPlaying {
		zlog.Debug().Msgf("playback: dropping ended: generation=%d current=%d status=%s", gen, c.generation, c.status)
		return
	}

	c.status = StatusEnded
	c.position = c.duration
	c.emit(EventEnded)

	switch c.repeat {
	case RepeatOne:
		c.load(c.index, true)
	case RepeatAll:
		c.load(c.playlist.NextIndex(c.index), true)
	default:
		if !c.playlist.IsLast(c.index) {
			c.load(c.index+1, true)
		}
	}
}

// OnError fails the current load attempt. It never advances.
func (c *Controller) OnError(gen Generation, code ErrorCode) {
	if gen != c.generation {
		zlog.Debug().Msgf("playback: dropping error: generation=%d current=%d code=%s", gen, c.generation, code)
		return
	}
	if code == ErrorNone {
		code = ErrorDecode
	}
	c.fail(code)
}

// Close closes the events channel. The controller must not be used afterwards.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.eventCh)
}

// resuming reports whether a track change should carry playback over: the
// player is playing, or the current load is still waiting to resume.
func (c *Controller) resuming() bool {
	return c.status == StatusPlaying || (c.resumeGen != 0 && c.resumeGen == c.generation)
}

// load issues a new load for index. resume records that playback was
// interrupted, so autoplay may restart it once metadata arrives.
func (c *Controller) load(index int, resume bool) {
	c.generation++
	c.index = index
	c.status = StatusLoading
	c.position = 0
	c.duration = 0
	c.durationKnown = false
	c.lastError = ErrorNone
	c.blocked = false
	c.resumeGen = 0
	if resume && c.config.Autoplay {
		c.resumeGen = c.generation
	}

	t, _ := c.playlist.At(index)
	zlog.Debug().Msgf("playback: loading: index=%d id=%s generation=%d", index, t.ID, c.generation)
	c.backend.Load(c.generation, t.AssetPath)
	c.emit(EventTrackChanged)
}

func (c *Controller) fail(code ErrorCode) {
	t, _ := c.playlist.At(c.index)
	zlog.Warn().Msgf("playback: load failed: index=%d id=%s code=%s", c.index, t.ID, code)

	c.status = StatusErrored
	c.duration = 0
	c.durationKnown = false
	c.lastError = code
	c.blocked = false
	c.resumeGen = 0
	c.emit(EventErrored)
}

// emit sends an event without blocking. Events are dropped when the buffer is full.
func (c *Controller) emit(t EventType) {
	if c.closed {
		return
	}
	select {
	case c.eventCh <- Event{Type: t, Snapshot: c.Snapshot()}:
	default:
		zlog.Debug().Msgf("playback: event buffer full, dropping %s", t)
	}
}

func validVolume(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}
