package source

import (
	"context"
	"path"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

type DirectorySourceConfig struct {
	Pattern string `mapstructure:"pattern" default:"*"`
	Limit   int    `mapstructure:"limit" validate:"gte=0"` // 0 means no limit
}

// DirectorySource provides one track per matching file in the asset library,
// in lexical order.
type DirectorySource struct {
	library Lister
	config  *DirectorySourceConfig
}

// NewDirectorySource creates a new DirectorySource.
func NewDirectorySource(library Lister, settings map[string]any) (*DirectorySource, error) {
	if library == nil {
		return nil, errors.New("directory source requires an asset library")
	}

	var config DirectorySourceConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	if _, err := path.Match(config.Pattern, ""); err != nil {
		return nil, errors.Wrapf(err, "invalid pattern %q", config.Pattern)
	}
	return &DirectorySource{library: library, config: &config}, nil
}

// Tracks lists the matching library files.
func (s *DirectorySource) Tracks(ctx context.Context) ([]track.Track, error) {
	var tracks []track.Track
	for _, name := range s.library.Names() {
		if ok, _ := path.Match(s.config.Pattern, name); !ok {
			continue
		}
		tracks = append(tracks, track.Track{
			ID:        name,
			Title:     titleFromFile(name),
			AssetPath: name,
		})
		if s.config.Limit > 0 && len(tracks) >= s.config.Limit {
			break
		}
	}
	return tracks, nil
}

// Name returns the source name.
func (s *DirectorySource) Name() string {
	return "directory"
}

// titleFromFile turns "01_first-light.mp3" into "01 first-light".
func titleFromFile(name string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	return strings.TrimSpace(strings.ReplaceAll(base, "_", " "))
}
