// Package check provides the asset check chain run against a playlist.
package check

import (
	"context"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"

	"github.com/osa030/cornerpocket/internal/domain/track"
	"github.com/osa030/cornerpocket/internal/infra/assets"
)

// Result represents the result of a check.
type Result struct {
	Passed bool
	Code   string // e.g., "asset_missing", "not_audio"
	Detail string
}

// Pass returns a passing result.
func Pass() Result {
	return Result{Passed: true}
}

// Fail returns a failing result with the given code.
func Fail(code, detail string) Result {
	return Result{Passed: false, Code: code, Detail: detail}
}

// Check is the interface for asset checks.
type Check interface {
	// Name returns the check name (used in config).
	Name() string
	// Description returns a human-readable description.
	Description() string
	// ReturnCodes returns the codes this check can fail with.
	ReturnCodes() []string
	// ValidateConfig validates and applies the check settings.
	ValidateConfig(settings map[string]any) error
	// Check inspects the fetched asset of a track.
	Check(ctx context.Context, t track.Track, resp *assets.Response) Result
}

// registry holds registered check factories.
var registry = make(map[string]func() Check)

// Register registers a check factory.
func Register(name string, factory func() Check) {
	registry[name] = factory
}

// GetRegistered returns all registered check factories.
func GetRegistered() map[string]func() Check {
	return registry
}

// RegisteredNames returns the registered check names in lexical order.
func RegisteredNames() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeSettings decodes settings into config, applies defaults and validates.
func decodeSettings(settings map[string]any, config any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:  config,
		TagName: "mapstructure",
	})
	if err != nil {
		return errors.Wrap(err, "failed to create decoder")
	}
	if err := decoder.Decode(settings); err != nil {
		return errors.Wrap(err, "failed to decode settings")
	}
	if err := defaults.Set(config); err != nil {
		return errors.Wrap(err, "failed to set defaults")
	}
	if err := validator.New().Struct(config); err != nil {
		return errors.Wrap(err, "validation failed")
	}
	return nil
}
