package config

import (
	"os"

	"github.com/pseudomuto/steward/pkg/consts"
	"go.uber.org/fx"
)

// Provider returns the project configuration, or nil when there is no
// steward.yaml in the working directory.
type Provider func() (*Config, error)

var Module = fx.Module("config", fx.Provide(
	// Commands resolve the config lazily so that --dir is applied first.
	func() Provider { return Load },
))

// Load reads steward.yaml from the working directory. A missing file yields a
// nil config and no error.
func Load() (*Config, error) {
	if _, err := os.Stat(consts.ConfigFile); os.IsNotExist(err) {
		return nil, nil
	}

	return LoadConfigFile(consts.ConfigFile)
}

// Static returns a Provider that always yields cfg.
func Static(cfg *Config) Provider {
	return func() (*Config, error) { return cfg, nil }
}
