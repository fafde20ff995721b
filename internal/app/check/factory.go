package check

import (
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/cornerpocket/internal/infra/config"
)

// chainOrder is the order checks run in; cheap header checks come before decoding.
var chainOrder = []string{"status_ok", "audio_content_type", "content_length", "duration_limit"}

// alwaysOn checks run unless explicitly disabled.
var alwaysOn = map[string]bool{"status_ok": true, "audio_content_type": true}

// NewChainFromConfig builds the check chain from configuration.
func NewChainFromConfig(cfg *config.Config) (*Chain, error) {
	chain := NewChain()

	for name := range cfg.Checks {
		if _, ok := registry[name]; !ok {
			return nil, errors.Newf("unknown check: %s", name)
		}
	}

	for _, name := range chainOrder {
		factory, ok := registry[name]
		if !ok {
			continue
		}

		ccfg, configured := cfg.Checks[name]
		enabled := ccfg.Enabled || (!configured && alwaysOn[name])
		if !enabled {
			continue
		}

		ch := factory()
		if err := ch.ValidateConfig(ccfg.Settings); err != nil {
			return nil, errors.Wrapf(err, "invalid settings for check %s", name)
		}
		chain.Add(ch)
		zlog.Debug().Msgf("check: enabled: name=%s", name)
	}

	return chain, nil
}
