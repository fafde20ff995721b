package playback

// EventType represents a playback event type.
type EventType int

const (
	EventTrackChanged    EventType = iota // A new load was issued
	EventMetadataLoaded                   // Duration became known
	EventStateChanged                     // Status or blocked flag changed
	EventPositionChanged                  // Position moved (time update or seek)
	EventVolumeChanged                    // Volume changed
	EventRepeatChanged                    // Repeat mode changed
	EventErrored                          // Load attempt failed
	EventEnded                            // Track reached its end
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventTrackChanged:
		return "track_changed"
	case EventMetadataLoaded:
		return "metadata_loaded"
	case EventStateChanged:
		return "state_changed"
	case EventPositionChanged:
		return "position_changed"
	case EventVolumeChanged:
		return "volume_changed"
	case EventRepeatChanged:
		return "repeat_changed"
	case EventErrored:
		return "errored"
	case EventEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// Event represents a playback event together with the state right after it.
type Event struct {
	Type     EventType
	Snapshot Snapshot
}
