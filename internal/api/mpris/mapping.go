package mpris

import (
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/godbus/dbus/v5"

	playerv1 "github.com/osa030/cornerpocket/internal/api/player/v1"
	"github.com/osa030/cornerpocket/internal/app/playback"
)

// ErrUnknownLoopStatus is returned for LoopStatus values outside the MPRIS set.
var ErrUnknownLoopStatus = errors.New("unknown loop status")

// noTrack is the MPRIS object path for "no current track".
const noTrack = dbus.ObjectPath("/org/mpris/MediaPlayer2/TrackList/NoTrack")

// PlaybackStatus maps a player status to Playing, Paused or Stopped.
func PlaybackStatus(status string) string {
	switch status {
	case "playing":
		return "Playing"
	case "paused":
		return "Paused"
	default:
		return "Stopped"
	}
}

// LoopStatus maps a repeat mode to None, Track or Playlist.
func LoopStatus(repeat string) string {
	switch repeat {
	case "one":
		return "Track"
	case "all":
		return "Playlist"
	default:
		return "None"
	}
}

// ParseLoopStatus maps an MPRIS LoopStatus back to a repeat mode.
func ParseLoopStatus(s string) (playback.RepeatMode, error) {
	switch s {
	case "None":
		return playback.RepeatNone, nil
	case "Track":
		return playback.RepeatOne, nil
	case "Playlist":
		return playback.RepeatAll, nil
	default:
		return playback.RepeatNone, errors.Wrapf(ErrUnknownLoopStatus, "%q", s)
	}
}

// TrackObjectPath returns the MPRIS track id for a playlist index.
func TrackObjectPath(index int32) dbus.ObjectPath {
	return dbus.ObjectPath("/org/cornerpocket/track/" + strconv.Itoa(int(index)))
}

// Metadata builds the MPRIS Metadata map for a state.
// mpris:length is only present once the duration is known.
func Metadata(state *playerv1.PlayerState, assetURL func(string) string) map[string]dbus.Variant {
	if state == nil || state.Track == nil {
		return map[string]dbus.Variant{
			"mpris:trackid": dbus.MakeVariant(noTrack),
		}
	}

	md := map[string]dbus.Variant{
		"mpris:trackid": dbus.MakeVariant(TrackObjectPath(state.Index)),
		"xesam:title":   dbus.MakeVariant(state.Track.Title),
	}
	if assetURL != nil {
		md["xesam:url"] = dbus.MakeVariant(assetURL(state.Track.AssetPath))
	}
	if state.DurationKnown {
		md["mpris:length"] = dbus.MakeVariant(toMicros(state.DurationMs))
	}
	return md
}

// SeekTarget applies an MPRIS relative offset to the current position.
// A target past the end reports next=true; a negative target clamps to zero.
func SeekTarget(state *playerv1.PlayerState, offsetMicros int64) (target time.Duration, next bool) {
	target = time.Duration(state.PositionMs)*time.Millisecond + time.Duration(offsetMicros)*time.Microsecond
	if target < 0 {
		target = 0
	}
	if target > time.Duration(state.DurationMs)*time.Millisecond {
		return 0, true
	}
	return target, false
}

// ClampVolume maps an MPRIS volume onto [0, 1].
func ClampVolume(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func toMicros(ms int64) int64 {
	return ms * 1000
}
