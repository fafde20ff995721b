package playback

import (
	"math"
	"strconv"
	"time"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

// Snapshot is an immutable copy of the playback state.
type Snapshot struct {
	Index         int
	Track         track.Track
	TrackCount    int
	Status        Status
	Position      time.Duration
	Duration      time.Duration // Zero while unknown
	DurationKnown bool
	Volume        float64
	Repeat        RepeatMode
	Generation    Generation
	LastError     ErrorCode
	Blocked       bool // Last play attempt was refused by an autoplay policy
}

// ProgressPercent returns 100*position/duration, or 0 when the duration is not positive.
func (s Snapshot) ProgressPercent() float64 {
	if !s.DurationKnown || s.Duration <= 0 {
		return 0
	}
	return 100 * float64(s.Position) / float64(s.Duration)
}

// ActiveIndex returns the playlist index to mark as active.
func (s Snapshot) ActiveIndex() int {
	return s.Index
}

// TransportLabel returns the label for the play/pause button.
func (s Snapshot) TransportLabel() string {
	if s.Status == StatusPlaying {
		return "Pause"
	}
	return "Play"
}

// VolumePercentLabel returns the volume readout, e.g. "50%".
func (s Snapshot) VolumePercentLabel() string {
	return strconv.Itoa(int(math.Round(s.Volume*100))) + "%"
}
