// Package playlist provides the Playlist domain entity.
package playlist

import (
	"github.com/cockroachdb/errors"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

var (
	ErrEmptyPlaylist  = errors.New("playlist must contain at least one track")
	ErrDuplicateTrack = errors.New("duplicate track id")
)

// Playlist is an ordered, non-empty sequence of tracks.
// It is fixed at construction and read-only afterwards.
type Playlist struct {
	name   string
	tracks []track.Track
}

// New creates a playlist from the given tracks.
func New(name string, tracks []track.Track) (*Playlist, error) {
	if len(tracks) == 0 {
		return nil, ErrEmptyPlaylist
	}

	seen := make(map[string]bool, len(tracks))
	copied := make([]track.Track, len(tracks))
	for i, t := range tracks {
		if err := t.Validate(); err != nil {
			return nil, errors.Wrapf(err, "track %d", i)
		}
		if seen[t.ID] {
			return nil, errors.Wrapf(ErrDuplicateTrack, "track %d: %s", i, t.ID)
		}
		seen[t.ID] = true
		copied[i] = t
	}

	return &Playlist{name: name, tracks: copied}, nil
}

// Name returns the playlist name.
func (p *Playlist) Name() string {
	return p.name
}

// Len returns the number of tracks.
func (p *Playlist) Len() int {
	return len(p.tracks)
}

// At returns the track at index i.
func (p *Playlist) At(i int) (track.Track, bool) {
	if i < 0 || i >= len(p.tracks) {
		return track.Track{}, false
	}
	return p.tracks[i], true
}

// Tracks returns a copy of the tracks.
func (p *Playlist) Tracks() []track.Track {
	result := make([]track.Track, len(p.tracks))
	copy(result, p.tracks)
	return result
}

// TrackIDs returns all track IDs in the playlist.
func (p *Playlist) TrackIDs() []string {
	ids := make([]string, len(p.tracks))
	for i, t := range p.tracks {
		ids[i] = t.ID
	}
	return ids
}

// IndexOf returns the index of the track with the given ID, or -1.
func (p *Playlist) IndexOf(id string) int {
	for i, t := range p.tracks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// NextIndex returns the index after i, wrapping to 0.
func (p *Playlist) NextIndex(i int) int {
	return (i + 1) % len(p.tracks)
}

// PrevIndex returns the index before i, wrapping to the last track.
func (p *Playlist) PrevIndex(i int) int {
	n := len(p.tracks)
	return (i - 1 + n) % n
}

// IsLast reports whether i is the last index.
func (p *Playlist) IsLast(i int) bool {
	return i == len(p.tracks)-1
}
