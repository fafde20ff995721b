// Package playback provides the playback-state controller.
package playback

// Status represents the transport status.
type Status int

const (
	StatusIdle    Status = iota // Nothing loaded yet
	StatusLoading               // Asset requested, waiting for metadata or play
	StatusPlaying               // Producing audio
	StatusPaused                // Position frozen
	StatusEnded                 // Reached the end of the track
	StatusErrored               // Load attempt failed
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrorCode identifies why a load attempt failed.
type ErrorCode int

const (
	ErrorNone          ErrorCode = iota
	ErrorAssetNotFound           // Failure before metadata resolved
	ErrorDecode                  // Failure after partial load
	ErrorLoadTimeout             // No metadata within the watchdog deadline
)

// String returns the string representation of the error code.
func (c ErrorCode) String() string {
	switch c {
	case ErrorNone:
		return ""
	case ErrorAssetNotFound:
		return "asset_not_found"
	case ErrorDecode:
		return "decode_error"
	case ErrorLoadTimeout:
		return "load_timeout"
	default:
		return "unknown"
	}
}

// RepeatMode controls what happens when a track ends.
type RepeatMode int

const (
	RepeatNone RepeatMode = iota // Advance, stop after the last track
	RepeatOne                    // Reload the same track
	RepeatAll                    // Advance and wrap around
)

// String returns the string representation of the repeat mode.
func (r RepeatMode) String() string {
	switch r {
	case RepeatNone:
		return "none"
	case RepeatOne:
		return "one"
	case RepeatAll:
		return "all"
	default:
		return "unknown"
	}
}

// ParseRepeatMode parses "none", "one" or "all". An empty string means none.
func ParseRepeatMode(s string) (RepeatMode, error) {
	switch s {
	case "none", "":
		return RepeatNone, nil
	case "one":
		return RepeatOne, nil
	case "all":
		return RepeatAll, nil
	default:
		return RepeatNone, invalid(ErrUnknownRepeatMode, "repeat mode %q", s)
	}
}
