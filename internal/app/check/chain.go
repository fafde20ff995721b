package check

import (
	"context"

	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// Chain executes checks in sequence.
type Chain struct {
	checks []Check
}

// NewChain creates a new check chain.
func NewChain() *Chain {
	return &Chain{
		checks: make([]Check, 0),
	}
}

// Add adds a check to the chain.
func (c *Chain) Add(ch Check) {
	c.checks = append(c.checks, ch)
}

// Execute runs all checks in sequence.
// Returns immediately if any check fails.
func (c *Chain) Execute(ctx context.Context, t track.Track, resp *assets.Response) Result {
	for _, ch := range c.checks {
		if result := ch.Check(ctx, t, resp); !result.Passed {
			return result
		}
	}
	return Pass()
}

// Checks returns all checks in the chain.
func (c *Chain) Checks() []Check {
	return c.checks
}
