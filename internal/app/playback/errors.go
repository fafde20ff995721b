package playback

import "github.com/cockroachdb/errors"

// ErrInvalidCommand marks every precondition violation. Commands returning
// an error marked with it have not mutated the controller.
var ErrInvalidCommand = errors.New("invalid command")

var (
	ErrIndexOutOfRange    = errors.New("track index out of range")
	ErrDurationUnknown    = errors.New("duration unknown")
	ErrPositionOutOfRange = errors.New("position out of range")
	ErrVolumeOutOfRange   = errors.New("volume out of range")
	ErrUnknownRepeatMode  = errors.New("unknown repeat mode")
	ErrWrongState         = errors.New("command not allowed in current state")
)

// ErrPlaybackBlocked is returned by a Backend when an autoplay policy refused
// to start playback. It is neither an invalid command nor a load failure.
var ErrPlaybackBlocked = errors.New("playback blocked by autoplay policy")

// invalid wraps a sentinel with context and marks it as an invalid command.
func invalid(sentinel error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(sentinel, format, args...), ErrInvalidCommand)
}

// IsInvalidCommand reports whether err is a precondition violation.
func IsInvalidCommand(err error) bool {
	return errors.Is(err, ErrInvalidCommand)
}
