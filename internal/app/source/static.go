package source

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/domain/track"
)

type StaticTrackConfig struct {
	ID    string `mapstructure:"id" validate:"required"`
	Title string `mapstructure:"title"`
	Path  string `mapstructure:"path" validate:"required"`
}

type StaticSourceConfig struct {
	Tracks []StaticTrackConfig `mapstructure:"tracks" validate:"required,min=1,dive"`
}

// StaticSource provides tracks listed verbatim in the configuration.
type StaticSource struct {
	config *StaticSourceConfig
}

// NewStaticSource creates a new StaticSource.
func NewStaticSource(settings map[string]any) (*StaticSource, error) {
	var config StaticSourceConfig
	if err := decodeSettings(settings, &config); err != nil {
		return nil, err
	}
	return &StaticSource{config: &config}, nil
}

// Tracks returns the configured tracks.
func (s *StaticSource) Tracks(ctx context.Context) ([]track.Track, error) {
	tracks := make([]track.Track, 0, len(s.config.Tracks))
	for _, tc := range s.config.Tracks {
		tracks = append(tracks, track.Track{ID: tc.ID, Title: tc.Title, AssetPath: tc.Path})
	}
	return tracks, nil
}

// Name returns the source name.
func (s *StaticSource) Name() string {
	return "static"
}

// decodeSettings decodes, defaults and validates source settings.
func decodeSettings(settings map[string]any, out any) error {
	if err := mapstructure.Decode(settings, out); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(out); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	zlog.Debug().Msgf("source config: %+v", out)
	if err := validator.New().Struct(out); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
