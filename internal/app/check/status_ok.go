package check

import (
	"context"
	"fmt"

	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// StatusOKCheck fails assets that are not served with a 2xx status.
type StatusOKCheck struct{}

func (c *StatusOKCheck) Name() string {
	return "status_ok"
}

func (c *StatusOKCheck) Description() string {
	return "Checks that the asset is served successfully"
}

func (c *StatusOKCheck) ReturnCodes() []string {
	return []string{"asset_missing"}
}

func (c *StatusOKCheck) ValidateConfig(settings map[string]any) error {
	return nil
}

func (c *StatusOKCheck) Check(ctx context.Context, t track.Track, resp *assets.Response) Result {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Fail("asset_missing", fmt.Sprintf("status %d", resp.StatusCode))
	}
	return Pass()
}

func init() {
	Register("status_ok", func() Check {
		return &StatusOKCheck{}
	})
}
