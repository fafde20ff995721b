// Package track provides the Track domain entity.
package track

import (
	"net/url"
	"path"
	"strings"

	"github.com/cockroachdb/errors"
)

// ErrInvalidTrack is returned when a track is missing required fields.
var ErrInvalidTrack = errors.New("invalid track")

// Track represents one playable media entry.
// Tracks are immutable once they are part of a playlist.
type Track struct {
	ID        string // Stable identifier, unique within a playlist
	Title     string // Display title
	AssetPath string // Path under the asset prefix, or an absolute http(s) URL
}

// Validate checks that the track carries an ID and an asset path.
func (t Track) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.Wrap(ErrInvalidTrack, "id is required")
	}
	if strings.TrimSpace(t.AssetPath) == "" {
		return errors.Wrapf(ErrInvalidTrack, "asset path is required (id: %s)", t.ID)
	}
	return nil
}

// IsRemote reports whether the asset path is an absolute http(s) URL.
func (t Track) IsRemote() bool {
	u, err := url.Parse(t.AssetPath)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// DisplayTitle returns the title, falling back to the asset file name.
func (t Track) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	name := path.Base(t.AssetPath)
	return strings.TrimSuffix(name, path.Ext(name))
}
