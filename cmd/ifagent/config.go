package main

import (
	"fmt"

	"github.com/ifwatch/agent/internal/config"
	"github.com/ifwatch/agent/internal/paths"
)

// resolveConfig loads configuration from configPath if given, otherwise from
// the per-user/root default location, creating a default file there the
// first time it's needed.
func resolveConfig() (*config.Config, *paths.Paths, error) {
	p, err := paths.DefaultPaths()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve paths: %w", err)
	}

	path := configPath
	if path == "" {
		if _, err := p.CreateDefaultConfig(); err != nil {
			return nil, nil, fmt.Errorf("create default config: %w", err)
		}
		path = p.ConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", path, err)
	}

	return cfg, p, nil
}
