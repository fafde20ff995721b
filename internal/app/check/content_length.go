package check

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// ContentLengthConfig represents the configuration for ContentLengthCheck.
type ContentLengthConfig struct {
	MinBytes int64 `yaml:"min_bytes" mapstructure:"min_bytes" default:"1" validate:"gte=1"`
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes" validate:"gte=0"` // 0 means no limit
}

// ContentLengthCheck fails empty or oversized assets.
type ContentLengthCheck struct {
	config *ContentLengthConfig
}

// NewContentLengthCheck creates a new content length check with default settings.
func NewContentLengthCheck() *ContentLengthCheck {
	return &ContentLengthCheck{config: &ContentLengthConfig{MinBytes: 1}}
}

func (c *ContentLengthCheck) Name() string {
	return "content_length"
}

func (c *ContentLengthCheck) Description() string {
	return "Checks that the asset size is within allowed limits"
}

func (c *ContentLengthCheck) ReturnCodes() []string {
	return []string{"content_length"}
}

func (c *ContentLengthCheck) ValidateConfig(settings map[string]any) error {
	var config ContentLengthConfig
	if err := decodeSettings(settings, &config); err != nil {
		return err
	}
	if config.MaxBytes > 0 && config.MinBytes > config.MaxBytes {
		return errors.New("min_bytes cannot be greater than max_bytes")
	}
	c.config = &config
	zlog.Info().Msgf("content length check config: %+v", config)
	return nil
}

func (c *ContentLengthCheck) Check(ctx context.Context, t track.Track, resp *assets.Response) Result {
	if c.config == nil {
		return Pass()
	}

	size := int64(len(resp.Body))
	if size < c.config.MinBytes {
		return Fail("content_length", fmt.Sprintf("%d bytes, minimum %d", size, c.config.MinBytes))
	}
	if c.config.MaxBytes > 0 && size > c.config.MaxBytes {
		return Fail("content_length", fmt.Sprintf("%d bytes, maximum %d", size, c.config.MaxBytes))
	}
	return Pass()
}

func init() {
	Register("content_length", func() Check {
		return NewContentLengthCheck()
	})
}
