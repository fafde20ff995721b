package source

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/infra/config"
)

// NewChainFromConfig creates a source chain from configuration.
// library and spotify may be nil when no source needs them.
func NewChainFromConfig(cfg *config.Config, library Lister, spotify SpotifyClient) (*Chain, error) {
	if len(cfg.Playlist.Sources) == 0 {
		return nil, errors.New("no playlist sources configured")
	}

	var sources []SourceWithMetadata

	for i, scfg := range cfg.Playlist.Sources {
		var src Source
		var err error
		switch scfg.Type {
		case "static":
			src, err = NewStaticSource(scfg.Settings)

		case "directory":
			src, err = NewDirectorySource(library, scfg.Settings)

		case "spotify":
			src, err = NewSpotifySource(spotify, scfg.Settings)

		default:
			return nil, errors.Newf("unsupported source type: %s (source index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		displayName := scfg.DisplayName
		if displayName == "" {
			displayName = scfg.Type
		}
		sources = append(sources, SourceWithMetadata{Source: src, DisplayName: displayName})

		zlog.Info().Msgf("source: registered: index=%d type=%s display_name=%s", i+1, scfg.Type, displayName)
	}

	return NewChain(sources), nil
}
