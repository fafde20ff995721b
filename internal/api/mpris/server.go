// Package mpris exposes the player on the D-Bus session bus as an MPRIS
// media player, so desktop media keys and applets can drive it.
package mpris

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
	"github.com/godbus/dbus/v5/prop"
	zlog "github.com/rs/zerolog/log"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/notification"
	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/app/session"
)

const (
	objectPath  = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	rootIface   = "org.mpris.MediaPlayer2"
	playerIface = "org.mpris.MediaPlayer2.Player"
	busPrefix   = "org.mpris.MediaPlayer2."

	commandTimeout = 5 * time.Second
)

// Player is the part of the session manager MPRIS drives.
type Player interface {
	Snapshot() playback.Snapshot
	GetNotificationManager() *notification.Manager
	Play(ctx context.Context) (playback.Snapshot, error)
	Pause(ctx context.Context) (playback.Snapshot, error)
	TogglePlay(ctx context.Context) (playback.Snapshot, error)
	Next(ctx context.Context) (playback.Snapshot, error)
	Previous(ctx context.Context) (playback.Snapshot, error)
	Seek(ctx context.Context, position time.Duration) (playback.Snapshot, error)
	SetVolume(ctx context.Context, v float64) (playback.Snapshot, error)
	SetRepeat(ctx context.Context, mode playback.RepeatMode) (playback.Snapshot, error)
}

// Server publishes one player under org.mpris.MediaPlayer2.<name>.
type Server struct {
	name     string
	player   Player
	assetURL func(string) string

	conn  *dbus.Conn
	props *prop.Properties

	mu      sync.Mutex
	pending *playerv1.PlayerState
	wake    chan struct{}
	subID   string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewServer creates a server. assetURL resolves a track asset path for xesam:url.
func NewServer(name string, player Player, assetURL func(string) string) *Server {
	return &Server{
		name:     name,
		player:   player,
		assetURL: assetURL,
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

// Start connects to the session bus, claims the bus name and exports the
// MPRIS interfaces. Property updates follow player notifications until Close.
func (s *Server) Start(ctx context.Context) error {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return errors.Wrap(err, "session bus connection failed")
	}

	busName := busPrefix + s.name
	reply, err := conn.RequestName(busName, dbus.NameFlagDoNotQueue)
	if err != nil {
		conn.Close()
		return errors.Wrapf(err, "failed to request bus name %s", busName)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		conn.Close()
		return errors.Newf("bus name %s already taken", busName)
	}

	root := &rootObject{}
	player := &playerObject{server: s}
	if err := conn.Export(root, objectPath, rootIface); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to export root interface")
	}
	if err := conn.Export(player, objectPath, playerIface); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to export player interface")
	}

	state := session.ToPlayerState(s.player.Snapshot())
	props, err := prop.Export(conn, objectPath, s.propertyMap(state))
	if err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to export properties")
	}

	node := &introspect.Node{
		Name: string(objectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			prop.IntrospectData,
			{
				Name:       rootIface,
				Methods:    introspect.Methods(root),
				Properties: props.Introspection(rootIface),
			},
			{
				Name:       playerIface,
				Methods:    introspect.Methods(player),
				Properties: props.Introspection(playerIface),
				Signals: []introspect.Signal{{
					Name: "Seeked",
					Args: []introspect.Arg{{Name: "Position", Type: "x"}},
				}},
			},
		},
	}
	if err := conn.Export(introspect.NewIntrospectable(node), objectPath, "org.freedesktop.DBus.Introspectable"); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to export introspection")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.conn = conn
	s.props = props
	s.cancel = cancel
	s.mu.Unlock()

	subID, _ := s.player.GetNotificationManager().Subscribe(s)
	s.mu.Lock()
	s.subID = subID
	s.mu.Unlock()

	go s.run(runCtx)

	zlog.Info().Msgf("mpris: exported: name=%s", busName)
	return nil
}

// Send implements notification.Stream. Only the latest state is kept, so a
// slow bus never holds up a broadcast.
func (s *Server) Send(n *playerv1.Notification) error {
	if n.State == nil {
		return nil
	}
	s.mu.Lock()
	s.pending = n.State
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

// Close releases the bus name and stops property updates.
func (s *Server) Close() error {
	s.mu.Lock()
	conn, cancel, subID := s.conn, s.cancel, s.subID
	s.mu.Unlock()
	if conn == nil {
		return nil
	}

	s.player.GetNotificationManager().Unsubscribe(subID)
	cancel()
	<-s.done
	return conn.Close()
}

func (s *Server) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
			s.mu.Lock()
			state := s.pending
			s.pending = nil
			s.mu.Unlock()
			if state != nil {
				s.apply(state)
			}
		}
	}
}

func (s *Server) apply(state *playerv1.PlayerState) {
	s.props.SetMust(playerIface, "PlaybackStatus", PlaybackStatus(state.Status))
	s.props.SetMust(playerIface, "LoopStatus", LoopStatus(state.Repeat))
	s.props.SetMust(playerIface, "Volume", state.Volume)
	s.props.SetMust(playerIface, "Metadata", Metadata(state, s.assetURL))
	s.props.SetMust(playerIface, "Position", toMicros(state.PositionMs))
	s.props.SetMust(playerIface, "CanPlay", canPlay(state))
	s.props.SetMust(playerIface, "CanSeek", canSeek(state))
}

func (s *Server) propertyMap(state *playerv1.PlayerState) prop.Map {
	return prop.Map{
		rootIface: {
			"CanQuit":             {Value: false, Emit: prop.EmitTrue},
			"CanRaise":            {Value: false, Emit: prop.EmitTrue},
			"HasTrackList":        {Value: false, Emit: prop.EmitTrue},
			"Identity":            {Value: s.name, Emit: prop.EmitTrue},
			"SupportedUriSchemes": {Value: []string{"http", "https"}, Emit: prop.EmitTrue},
			"SupportedMimeTypes":  {Value: []string{"audio/mpeg", "audio/wav"}, Emit: prop.EmitTrue},
		},
		playerIface: {
			"PlaybackStatus": {Value: PlaybackStatus(state.Status), Emit: prop.EmitTrue},
			"LoopStatus": {
				Value:    LoopStatus(state.Repeat),
				Writable: true,
				Emit:     prop.EmitTrue,
				Callback: s.onLoopStatus,
			},
			"Rate":          {Value: 1.0, Emit: prop.EmitTrue},
			"MinimumRate":   {Value: 1.0, Emit: prop.EmitTrue},
			"MaximumRate":   {Value: 1.0, Emit: prop.EmitTrue},
			"Shuffle":       {Value: false, Emit: prop.EmitTrue},
			"Metadata":      {Value: Metadata(state, s.assetURL), Emit: prop.EmitTrue},
			"Volume":        {Value: state.Volume, Writable: true, Emit: prop.EmitTrue, Callback: s.onVolume},
			"Position":      {Value: toMicros(state.PositionMs), Emit: prop.EmitFalse},
			"CanGoNext":     {Value: true, Emit: prop.EmitTrue},
			"CanGoPrevious": {Value: true, Emit: prop.EmitTrue},
			"CanPlay":       {Value: canPlay(state), Emit: prop.EmitTrue},
			"CanPause":      {Value: true, Emit: prop.EmitTrue},
			"CanSeek":       {Value: canSeek(state), Emit: prop.EmitTrue},
			"CanControl":    {Value: true, Emit: prop.EmitFalse},
		},
	}
}

func (s *Server) onLoopStatus(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(string)
	if !ok {
		return dbus.MakeFailedError(errors.New("LoopStatus must be a string"))
	}
	mode, err := ParseLoopStatus(v)
	if err != nil {
		return dbus.MakeFailedError(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := s.player.SetRepeat(ctx, mode); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

func (s *Server) onVolume(c *prop.Change) *dbus.Error {
	v, ok := c.Value.(float64)
	if !ok {
		return dbus.MakeFailedError(errors.New("Volume must be a double"))
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := s.player.SetVolume(ctx, ClampVolume(v)); err != nil {
		return dbus.MakeFailedError(err)
	}
	return nil
}

// emitSeeked signals a position jump. A no-op before Start.
func (s *Server) emitSeeked(position time.Duration) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}
	if err := conn.Emit(objectPath, playerIface+".Seeked", position.Microseconds()); err != nil {
		zlog.Warn().Msgf("mpris: failed to emit Seeked: %v", err)
	}
}

func canPlay(state *playerv1.PlayerState) bool {
	switch state.Status {
	case "paused", "ended", "playing":
		return true
	case "loading":
		return state.DurationKnown
	default:
		return false
	}
}

func canSeek(state *playerv1.PlayerState) bool {
	return state.DurationKnown && (state.Status == "playing" || state.Status == "paused")
}
