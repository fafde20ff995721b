package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/domain/playlist"
	"github.com/osa030/cornerpocket/internal/domain/track"
)

// SourceWithMetadata wraps a source with its metadata.
type SourceWithMetadata struct {
	Source      Source
	DisplayName string
}

// Chain concatenates the tracks of several sources into one playlist.
type Chain struct {
	sources []SourceWithMetadata
}

// NewChain creates a new source chain.
func NewChain(sources []SourceWithMetadata) *Chain {
	return &Chain{sources: sources}
}

// Build asks every source for tracks and assembles the playlist.
// A failing source is skipped; a track ID seen earlier in the chain is dropped.
func (c *Chain) Build(ctx context.Context, name string) (*playlist.Playlist, error) {
	var all []track.Track
	seen := make(map[string]bool)

	for i, sm := range c.sources {
		zlog.Debug().Msgf("source: reading: index=%d total=%d name=%s type=%s",
			i+1, len(c.sources), sm.DisplayName, sm.Source.Name())

		tracks, err := sm.Source.Tracks(ctx)
		if err != nil {
			zlog.Warn().Msgf("source: failed, skipping: source=%s error=%v", sm.DisplayName, err)
			continue
		}

		added := 0
		for _, t := range tracks {
			if err := t.Validate(); err != nil {
				zlog.Warn().Msgf("source: invalid track dropped: source=%s error=%v", sm.DisplayName, err)
				continue
			}
			if seen[t.ID] {
				zlog.Debug().Msgf("source: duplicate track dropped: source=%s id=%s", sm.DisplayName, t.ID)
				continue
			}
			seen[t.ID] = true
			all = append(all, t)
			added++
		}

		zlog.Info().Msgf("source: contributed tracks: source=%s count=%d total_so_far=%d",
			sm.DisplayName, added, len(all))
	}

	if len(all) == 0 {
		return nil, errors.Wrap(playlist.ErrEmptyPlaylist, "no source returned tracks")
	}
	return playlist.New(name, all)
}
