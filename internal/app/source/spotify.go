package source

import (
	"context"

	"github.com/cockroachdb/errors"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

type SpotifySourceConfig struct {
	PlaylistURL string `mapstructure:"playlist_url" validate:"required"`
	Limit       int    `mapstructure:"limit" validate:"gte=0"`
}

// SpotifySource provides the preview clips of a Spotify playlist.
// The playlist is fetched once and cached.
type SpotifySource struct {
	spotify SpotifyClient
	config  *SpotifySourceConfig
	cache   []track.Track
}

// NewSpotifySource creates a new SpotifySource.
func NewSpotifySource(spotify SpotifyClient, settings map[string]any) (*SpotifySource, error) {
	if spotify == nil {
		return nil, errors.New("spotify source requires a spotify client")
	}

	var config SpotifySourceConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &SpotifySource{spotify: spotify, config: &config}, nil
}

// Tracks returns the playlist tracks that have a preview.
func (s *SpotifySource) Tracks(ctx context.Context) ([]track.Track, error) {
	if s.cache == nil {
		tracks, err := s.spotify.PlaylistTracks(ctx, s.config.PlaylistURL)
		if err != nil {
			return nil, errors.Wrap(err, "failed to get playlist tracks")
		}
		s.cache = tracks
	}

	tracks := s.cache
	if s.config.Limit > 0 && len(tracks) > s.config.Limit {
		tracks = tracks[:s.config.Limit]
	}
	return append([]track.Track(nil), tracks...), nil
}

// Name returns the source name.
func (s *SpotifySource) Name() string {
	return "spotify"
}
