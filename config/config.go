// Package config loads the two settings the tool recognizes: where the feed
// lives and whether connections are inferred.
//
// Values come from, in increasing precedence: built-in defaults, a YAML file,
// environment variables, and whatever the command line sets afterwards.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile     = "gtfsjson.yml"
	DefaultFeedPath = "gtfs"

	FeedPathEnv    = "GTFSJSON_FEED_PATH"
	ConnectionsEnv = "GTFSJSON_CONNECTIONS"
)

// Config is the application configuration
type Config struct {
	FeedPath    string `yaml:"feedPath" validate:"required"`
	Connections bool   `yaml:"connections"`
}

func Default() Config {
	return Config{
		FeedPath:    DefaultFeedPath,
		Connections: true,
	}
}

// Load builds the configuration from the defaults, the YAML file at path and
// the environment. A missing file is only an error when required is true.
//
// The result is not validated: callers apply their own overrides first and
// then call Validate.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (cfg *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(FeedPathEnv); ok && v != "" {
		cfg.FeedPath = v
	}
	if v, ok := lookup(ConnectionsEnv); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", ConnectionsEnv, v, err)
		}
		cfg.Connections = b
	}
	return nil
}

// Validate checks the struct tags of the configuration.
func (cfg Config) Validate() error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
