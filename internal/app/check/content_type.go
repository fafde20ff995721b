package check

import (
	"context"
	"fmt"

	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// AudioContentTypeCheck fails assets served with a non-audio content type.
type AudioContentTypeCheck struct{}

func (c *AudioContentTypeCheck) Name() string {
	return "audio_content_type"
}

func (c *AudioContentTypeCheck) Description() string {
	return "Checks that the asset is served as audio"
}

func (c *AudioContentTypeCheck) ReturnCodes() []string {
	return []string{"not_audio"}
}

func (c *AudioContentTypeCheck) ValidateConfig(settings map[string]any) error {
	return nil
}

func (c *AudioContentTypeCheck) Check(ctx context.Context, t track.Track, resp *assets.Response) Result {
	if !assets.IsAudioContentType(resp.ContentType) {
		return Fail("not_audio", fmt.Sprintf("content type %q", resp.ContentType))
	}
	return Pass()
}

func init() {
	Register("audio_content_type", func() Check {
		return &AudioContentTypeCheck{}
	})
}
