package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvSource      = "DOIFIND_SOURCE"
	EnvMailto      = "DOIFIND_MAILTO"
	EnvS2APIKey    = "S2_API_KEY"
	EnvCache       = "DOIFIND_CACHE"
	EnvConcurrency = "DOIFIND_CONCURRENCY"
)

// Load builds the configuration from defaults, the config file at path and
// the environment. An empty path means Path(); a missing default file is not
// an error, but a missing explicit path is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}

	if path != "" {
		if err := cfg.readFile(path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				err = nil
			}
			if err != nil {
				return Config{}, err
			}
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.CachePath = ExpandPath(cfg.CachePath)
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("%w: parsing %s: %w", ErrInvalid, path, err)
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSource); ok && v != "" {
		c.Source = v
	}
	if v, ok := lookup(EnvMailto); ok && v != "" {
		c.Mailto = v
	}
	if v, ok := lookup(EnvS2APIKey); ok && v != "" {
		c.S2APIKey = v
	}
	if v, ok := lookup(EnvCache); ok && v != "" {
		c.CachePath = v
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q is not an integer", ErrInvalid, EnvConcurrency, v)
		}
		c.Concurrency = n
	}
	return nil
}

// LoadDotEnv loads variables from the given .env files (default ".env")
// into the process environment without overriding variables already set.
// Missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
