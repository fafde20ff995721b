package playback

import "time"

// Generation identifies one load attempt. It increases on every track change.
type Generation uint64

// Backend is the media backend the controller drives. Calls must not block:
// loading happens asynchronously and is reported through Callbacks.
//
//go:generate mockgen -destination=mocks/backend_mock.go -package=mocks github.com/osa030/cornerpocket/internal/app/playback Backend
type Backend interface {
	// Load starts fetching and decoding the asset for the given generation.
	// Any previous load is superseded.
	Load(gen Generation, assetPath string)
	// Play starts producing audio. ErrPlaybackBlocked means a policy refused it.
	Play(gen Generation) error
	// Pause stops producing audio and freezes the position.
	Pause(gen Generation)
	// Seek moves the playhead.
	Seek(gen Generation, position time.Duration)
	// SetVolume applies a linear volume in [0, 1].
	SetVolume(volume float64)
}

// Callbacks is the capability set a Backend invokes as a load progresses.
// Every call carries the generation it belongs to.
type Callbacks interface {
	OnMetadataLoaded(gen Generation, duration time.Duration)
	OnTimeUpdate(gen Generation, position time.Duration)
	OnEnded(gen Generation)
	OnError(gen Generation, code ErrorCode)
}
