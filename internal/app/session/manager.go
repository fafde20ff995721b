// Package session provides the player session manager.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/check"
	"github.com/osa030/cornerpocket/internal/app/notification"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/domain/playlist"
	"github.com/osa030/cornerpocket/internal/infra/config"
	"github.com/osa030/cornerpocket/internal/infra/store"
)

var (
	ErrSessionNotRunning = errors.New("session is not running")
	ErrChecksUnavailable = errors.New("asset checks are not configured")
	ErrHistoryDisabled   = errors.New("play history is disabled")
)

// MediaBackend is a playback backend that reports through callbacks.
type MediaBackend interface {
	playback.Backend
	Attach(cb playback.Callbacks)
}

// gesturer is implemented by backends with an autoplay policy.
type gesturer interface {
	Gesture()
}

// Store persists preferences and play history.
type Store interface {
	LoadPreferences(ctx context.Context) (store.Preferences, error)
	SavePreferences(ctx context.Context, p store.Preferences) error
	AppendHistory(ctx context.Context, e store.HistoryEntry) (store.HistoryEntry, error)
	RecentHistory(ctx context.Context, limit int) ([]store.HistoryEntry, error)
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore enables preference persistence and play history.
func WithStore(s Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithChecker enables on-demand asset checks.
func WithChecker(r *check.Runner) Option {
	return func(m *Manager) {
		m.checker = r
	}
}

// WithLoadTimeout overrides the load watchdog deadline. Zero disables it.
func WithLoadTimeout(d time.Duration) Option {
	return func(m *Manager) {
		m.loadTimeout = d
	}
}

// Manager runs one playback controller and fans its events out.
type Manager struct {
	mu sync.Mutex

	// Configuration
	config      *config.Config
	loadTimeout time.Duration

	// Components
	playlist     *playlist.Playlist
	backend      MediaBackend
	controller   *playback.Controller
	loop         *playback.Loop
	notification *notification.Manager
	store        Store
	checker      *check.Runner

	watchdog    *time.Timer
	watchdogGen playback.Generation
	started     bool
	closed      bool

	// Channels
	ctx       context.Context
	cancel    context.CancelFunc
	forwarded chan struct{}
	done      chan struct{}
}

// NewManager creates a new session manager for pl.
func NewManager(cfg *config.Config, pl *playlist.Playlist, backend MediaBackend, opts ...Option) (*Manager, error) {
	repeat, err := playback.ParseRepeatMode(cfg.Playback.Repeat)
	if err != nil {
		return nil, errors.Wrap(err, "invalid repeat mode")
	}

	ctrl, err := playback.NewController(pl, backend, playback.Config{
		Repeat:        repeat,
		Autoplay:      cfg.Playback.Autoplay,
		DefaultVolume: cfg.Playback.DefaultVolume,
		EventBuffer:   256,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create playback controller")
	}

	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		config:       cfg,
		loadTimeout:  cfg.LoadTimeout(),
		playlist:     pl,
		backend:      backend,
		controller:   ctrl,
		loop:         playback.NewLoop(ctrl, 256),
		notification: notification.NewManager(),
		ctx:          ctx,
		cancel:       cancel,
		forwarded:    make(chan struct{}),
		done:         make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.loop.OnLoad(m.armWatchdog)
	backend.Attach(m.loop.Callbacks())
	return m, nil
}

// Start restores preferences, starts the loop and loads the first track.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return errors.New("session already started")
	}
	m.started = true
	m.mu.Unlock()

	startIndex := m.config.Playback.StartIndex
	if startIndex >= m.playlist.Len() {
		zlog.Warn().Msgf("session: start index out of range, using 0: index=%d tracks=%d", startIndex, m.playlist.Len())
		startIndex = 0
	}
	volume := m.config.Playback.DefaultVolume
	repeat, _ := playback.ParseRepeatMode(m.config.Playback.Repeat)

	if m.store != nil && m.config.Store.Restore {
		prefs, err := m.store.LoadPreferences(ctx)
		switch {
		case errors.Is(err, store.ErrNoPreferences):
			zlog.Info().Msg("session: no saved preferences")
		case err != nil:
			zlog.Warn().Msgf("session: failed to load preferences: %v", err)
		default:
			startIndex, volume, repeat = m.restore(prefs, startIndex, volume, repeat)
		}
	}

	go func() {
		if err := m.loop.Run(m.ctx); err != nil && !errors.Is(err, context.Canceled) {
			zlog.Error().Msgf("session: playback loop stopped: %v", err)
		}
	}()
	go m.forwardEvents()

	err := m.loop.Do(ctx, func(c *playback.Controller) error {
		if err := c.SetVolume(volume); err != nil {
			return err
		}
		if err := c.SetRepeat(repeat); err != nil {
			return err
		}
		return c.SelectTrack(startIndex)
	})
	if err != nil {
		return errors.Wrap(err, "failed to load first track")
	}

	zlog.Info().Msgf("session: started: playlist=%s tracks=%d index=%d", m.playlist.Name(), m.playlist.Len(), startIndex)
	return nil
}

// restore applies saved preferences over the configured defaults.
// The last track is located by ID so a reordered playlist still resumes on it.
func (m *Manager) restore(p store.Preferences, index int, volume float64, repeat playback.RepeatMode) (int, float64, playback.RepeatMode) {
	if p.Volume >= 0 && p.Volume <= 1 {
		volume = p.Volume
	}
	if r, err := playback.ParseRepeatMode(p.Repeat); err == nil {
		repeat = r
	}
	if i := m.playlist.IndexOf(p.LastTrackID); i >= 0 {
		index = i
	} else if p.LastIndex >= 0 && p.LastIndex < m.playlist.Len() {
		index = p.LastIndex
	}
	zlog.Info().Msgf("session: restored preferences: index=%d volume=%.2f repeat=%s", index, volume, repeat)
	return index, volume, repeat
}

// Done is closed once the session has shut down.
func (m *Manager) Done() <-chan struct{} {
	return m.done
}

// Playlist returns the session playlist.
func (m *Manager) Playlist() *playlist.Playlist {
	return m.playlist
}

// Snapshot returns the latest published state.
func (m *Manager) Snapshot() playback.Snapshot {
	return m.loop.Snapshot()
}

// GetNotificationManager returns the notification manager.
func (m *Manager) GetNotificationManager() *notification.Manager {
	return m.notification
}

// SelectTrack makes index the current track.
func (m *Manager) SelectTrack(ctx context.Context, index int) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error { return c.SelectTrack(index) })
}

// Next moves to the next track.
func (m *Manager) Next(ctx context.Context) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error {
		c.Next()
		return nil
	})
}

// Previous moves to the previous track.
func (m *Manager) Previous(ctx context.Context) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error {
		c.Previous()
		return nil
	})
}

// Play starts playback. It counts as a user gesture for autoplay policies.
func (m *Manager) Play(ctx context.Context) (playback.Snapshot, error) {
	m.gesture()
	return m.do(ctx, func(c *playback.Controller) error { return c.Play() })
}

// Pause pauses playback.
func (m *Manager) Pause(ctx context.Context) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error { return c.Pause() })
}

// TogglePlay toggles between playing and paused.
func (m *Manager) TogglePlay(ctx context.Context) (playback.Snapshot, error) {
	m.gesture()
	return m.do(ctx, func(c *playback.Controller) error { return c.TogglePlay() })
}

// Seek moves the playback position.
func (m *Manager) Seek(ctx context.Context, position time.Duration) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error { return c.Seek(position) })
}

// SetVolume sets the volume in [0, 1].
func (m *Manager) SetVolume(ctx context.Context, v float64) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error { return c.SetVolume(v) })
}

// SetRepeat sets the repeat mode.
func (m *Manager) SetRepeat(ctx context.Context, mode playback.RepeatMode) (playback.Snapshot, error) {
	return m.do(ctx, func(c *playback.Controller) error { return c.SetRepeat(mode) })
}

// CheckAssets runs the asset checks over the playlist.
func (m *Manager) CheckAssets(ctx context.Context) (*check.Report, error) {
	if m.checker == nil {
		return nil, ErrChecksUnavailable
	}
	return m.checker.Run(ctx, m.playlist)
}

// History returns the most recent plays, newest first.
func (m *Manager) History(ctx context.Context, limit int) ([]store.HistoryEntry, error) {
	if m.store == nil {
		return nil, ErrHistoryDisabled
	}
	return m.store.RecentHistory(ctx, limit)
}

// Close stops the loop, drains pending events and releases subscribers.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	started := m.started
	if m.watchdog != nil {
		m.watchdog.Stop()
	}
	m.mu.Unlock()

	m.cancel()
	if started {
		<-m.loop.Done()
	}
	// The loop has stopped; nothing else touches the controller.
	m.controller.Close()
	if started {
		<-m.forwarded
	}

	m.notification.Broadcast(&playerv1.Notification{
		Type:  playerv1.NotificationTypeSessionEnded,
		State: ToPlayerState(m.loop.Snapshot()),
	})
	close(m.done)
	m.notification.Close()
	zlog.Info().Msg("session: closed")
}

func (m *Manager) do(ctx context.Context, fn func(*playback.Controller) error) (playback.Snapshot, error) {
	m.mu.Lock()
	running := m.started && !m.closed
	m.mu.Unlock()
	if !running {
		return playback.Snapshot{}, ErrSessionNotRunning
	}

	if err := m.loop.Do(ctx, fn); err != nil {
		if errors.Is(err, playback.ErrLoopStopped) {
			return m.loop.Snapshot(), ErrSessionNotRunning
		}
		return m.loop.Snapshot(), err
	}
	return m.loop.Snapshot(), nil
}

func (m *Manager) gesture() {
	if g, ok := m.backend.(gesturer); ok {
		g.Gesture()
	}
}
