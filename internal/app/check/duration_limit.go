package check

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/assets"
	"github.com/osa030/cornerpocket/internal/infra/media"
)

// DurationLimitConfig represents the configuration for DurationLimitCheck.
type DurationLimitConfig struct {
	MinSeconds float64 `yaml:"min_seconds" mapstructure:"min_seconds" default:"1" validate:"gte=0"`
	MaxSeconds float64 `yaml:"max_seconds" mapstructure:"max_seconds" validate:"gte=0"` // 0 means no limit
}

// DurationLimitCheck decodes the asset and checks its duration.
type DurationLimitCheck struct {
	config *DurationLimitConfig
}

// NewDurationLimitCheck creates a new duration limit check.
func NewDurationLimitCheck() *DurationLimitCheck {
	return &DurationLimitCheck{}
}

func (c *DurationLimitCheck) Name() string {
	return "duration_limit"
}

func (c *DurationLimitCheck) Description() string {
	return "Checks that the asset decodes and its duration is within allowed limits"
}

func (c *DurationLimitCheck) ReturnCodes() []string {
	return []string{"undecodable", "duration_limit_exceeded"}
}

func (c *DurationLimitCheck) ValidateConfig(settings map[string]any) error {
	var config DurationLimitConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	if config.MaxSeconds > 0 && config.MinSeconds > config.MaxSeconds {
		return errors.New("min_seconds cannot be greater than max_seconds")
	}
	c.config = &config
	zlog.Info().Msgf("duration limit check config: %+v", config)
	return nil
}

func (c *DurationLimitCheck) Check(ctx context.Context, t track.Track, resp *assets.Response) Result {
	info, err := media.Probe(resp.Body, resp.ContentType, t.AssetPath)
	if err != nil {
		return Fail("undecodable", err.Error())
	}

	// If config is not set, any decodable asset passes
	if c.config == nil {
		return Pass()
	}

	seconds := info.Duration.Seconds()
	if seconds < c.config.MinSeconds {
		return Fail("duration_limit_exceeded", fmt.Sprintf("%v shorter than %vs", info.Duration.Round(time.Millisecond), c.config.MinSeconds))
	}
	if c.config.MaxSeconds > 0 && seconds > c.config.MaxSeconds {
		return Fail("duration_limit_exceeded", fmt.Sprintf("%v longer than %vs", info.Duration.Round(time.Millisecond), c.config.MaxSeconds))
	}
	return Pass()
}

func init() {
	Register("duration_limit", func() Check {
		return NewDurationLimitCheck()
	})
}
