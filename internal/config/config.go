// Package config loads the optional YAML configuration shared by the commands.
package config

import (
	"context"
	"fmt"
	"linecode/internal/ctxlog"
	"linecode/internal/history"
	"linecode/internal/server"
	"os"

	"github.com/goccy/go-yaml"
)

type Config struct {
	Log     ctxlog.Config  `yaml:"log"`
	History history.Config `yaml:"history"`
	Server  server.Config  `yaml:"server"`
}

// Load reads filename in strict mode. An empty filename yields the zero Config.
func Load(ctx context.Context, filename string) (Config, error) {
	if filename == "" {
		return Config{}, nil
	}

	file, err := os.Open(filename)
	if err != nil {
		return Config{}, fmt.Errorf("open %q: %w", filename, err)
	}
	defer ctxlog.Close(ctx, "config file", file)

	dec := yaml.NewDecoder(file, yaml.Strict())

	var config Config
	err = dec.Decode(&config)
	if err != nil {
		return Config{}, fmt.Errorf("yaml: %w", err)
	}

	return config, nil
}
