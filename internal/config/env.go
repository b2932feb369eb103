package config

import (
	"github.com/caarlos0/env/v11"

	"github.com/backmassage/thumbvtt/internal/failure"
)

// LoadEnv applies THUMBVTT_* environment overrides on top of cfg. Variables
// that are unset leave the current value alone, so call it after
// [DefaultConfig] and before flag parsing.
func LoadEnv(cfg *Config) error {
	return loadEnv(cfg, env.Options{})
}

func loadEnv(cfg *Config, opts env.Options) error {
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return failure.Config("environment", "%v", err)
	}
	return nil
}
