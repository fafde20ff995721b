package mpris

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/godbus/dbus/v5"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/app/playback"
	"github.com/osa030/cornerpocket/internal/app/session"
)

// rootObject implements org.mpris.MediaPlayer2. The player has no window
// and is not quittable over the bus.
type rootObject struct{}

func (rootObject) Raise() *dbus.Error { return nil }

func (rootObject) Quit() *dbus.Error { return nil }

// playerObject implements org.mpris.MediaPlayer2.Player.
type playerObject struct {
	server *Server
}

func (p *playerObject) Next() *dbus.Error {
	return p.call("Next", p.server.player.Next)
}

func (p *playerObject) Previous() *dbus.Error {
	return p.call("Previous", p.server.player.Previous)
}

func (p *playerObject) Pause() *dbus.Error {
	if p.server.player.Snapshot().Status != playback.StatusPlaying {
		return nil
	}
	return p.call("Pause", p.server.player.Pause)
}

func (p *playerObject) PlayPause() *dbus.Error {
	return p.call("PlayPause", p.server.player.TogglePlay)
}

// Stop pauses; the controller has no separate stopped state.
func (p *playerObject) Stop() *dbus.Error {
	return p.Pause()
}

func (p *playerObject) Play() *dbus.Error {
	return p.call("Play", p.server.player.Play)
}

// Seek moves relative to the current position. Seeking past the end skips
// to the next track.
func (p *playerObject) Seek(offset int64) *dbus.Error {
	state := session.ToPlayerState(p.server.player.Snapshot())
	if !canSeek(state) {
		return nil
	}

	target, next := SeekTarget(state, offset)
	if next {
		return p.Next()
	}
	return p.seekTo(target)
}

// SetPosition is ignored when trackID is not the current track.
func (p *playerObject) SetPosition(trackID dbus.ObjectPath, position int64) *dbus.Error {
	state := session.ToPlayerState(p.server.player.Snapshot())
	if trackID != TrackObjectPath(state.Index) || !canSeek(state) {
		return nil
	}
	target := time.Duration(position) * time.Microsecond
	if target < 0 || target > time.Duration(state.DurationMs)*time.Millisecond {
		return nil
	}
	return p.seekTo(target)
}

func (p *playerObject) OpenUri(uri string) *dbus.Error {
	return dbus.MakeFailedError(errors.Newf("opening %s is not supported: the playlist is fixed", uri))
}

func (p *playerObject) seekTo(target time.Duration) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	snapshot, err := p.server.player.Seek(ctx, target)
	if err != nil {
		return p.fail("Seek", err)
	}
	p.server.emitSeeked(snapshot.Position)
	return nil
}

func (p *playerObject) call(method string, fn func(context.Context) (playback.Snapshot, error)) *dbus.Error {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if _, err := fn(ctx); err != nil {
		return p.fail(method, err)
	}
	return nil
}

// fail reports command errors. Invalid commands are not bus errors: MPRIS
// clients fire methods without checking Can* first.
func (p *playerObject) fail(method string, err error) *dbus.Error {
	if playback.IsInvalidCommand(err) || errors.Is(err, playback.ErrPlaybackBlocked) {
		zlog.Debug().Msgf("mpris: %s ignored: %v", method, err)
		return nil
	}
	zlog.Warn().Msgf("mpris: %s failed: %v", method, err)
	return dbus.MakeFailedError(err)
}
