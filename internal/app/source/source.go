// Package source provides the strategies a playlist is assembled from.
package source

import (
	"context"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

// Source is the interface for playlist track sources.
// Different implementations read tracks from configuration, the asset
// library or a streaming service.
type Source interface {
	// Tracks returns the tracks this source contributes, in order.
	Tracks(ctx context.Context) ([]track.Track, error)

	// Name returns the source type (used in config).
	Name() string
}

// Lister lists the file names available in the asset library.
type Lister interface {
	Names() []string
}

// SpotifyClient defines the Spotify operations needed by the spotify source.
type SpotifyClient interface {
	PlaylistTracks(ctx context.Context, playlistURL string) ([]track.Track, error)
}
