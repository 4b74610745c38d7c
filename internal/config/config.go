// Package config loads doifind configuration from the config file, the
// environment and .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matsen/doifind/internal/batch"
	"github.com/matsen/doifind/internal/match"
	"github.com/matsen/doifind/internal/query"
	"github.com/matsen/doifind/internal/retry"
)

var (
	// ErrInvalid is returned by Validate for out-of-range settings.
	ErrInvalid = errors.New("invalid configuration")
	// ErrMissingCredentials is returned when the selected source needs an API key.
	ErrMissingCredentials = errors.New("missing credentials")
	// ErrUnknownSource is returned for a source other than crossref or s2.
	ErrUnknownSource = errors.New("unknown source")
)

// Supported search sources.
const (
	SourceCrossref = "crossref"
	SourceS2       = "s2"
)

// Sources lists the valid values for Config.Source.
var Sources = []string{SourceCrossref, SourceS2}

const (
	// Dir is the directory name under XDG_CONFIG_HOME and the user cache dir.
	Dir = "doifind"
	// File is the config file name.
	File = "config.yml"
	// CacheFile is the default lookup cache database name.
	CacheFile = "lookups.db"
)

// Config is the resolved configuration for a run.
type Config struct {
	Source      string        `yaml:"source"`
	BaseURL     string        `yaml:"base_url,omitempty"` // overrides the source's API endpoint
	Mailto      string        `yaml:"mailto,omitempty"`
	S2APIKey    string        `yaml:"s2_api_key,omitempty"`
	Concurrency int           `yaml:"concurrency"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	Rows        int           `yaml:"rows"`
	RateLimit   float64       `yaml:"rate_limit,omitempty"` // requests per second; 0 uses the source default
	CachePath   string        `yaml:"cache_path,omitempty"`
	CacheTTL    time.Duration `yaml:"cache_ttl,omitempty"`
	Retry       retry.Policy  `yaml:"retry"`
	Match       match.Config  `yaml:"match"`
}

// Default returns the built-in configuration.
func Default() Config {
	b := batch.DefaultConfig()
	return Config{
		Source:      SourceCrossref,
		Concurrency: b.Concurrency,
		CallTimeout: b.CallTimeout,
		Rows:        query.DefaultRows,
		CachePath:   DefaultCachePath(),
		Retry:       b.Retry,
		Match:       b.Match,
	}
}

// Validate reports the first fatal problem with the configuration.
func (c Config) Validate() error {
	switch c.Source {
	case SourceCrossref:
	case SourceS2:
		if c.S2APIKey == "" {
			return fmt.Errorf("%w: source %q requires s2_api_key or S2_API_KEY", ErrMissingCredentials, c.Source)
		}
	default:
		return fmt.Errorf("%w: %q (valid: %v)", ErrUnknownSource, c.Source, Sources)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("%w: rate_limit must not be negative, got %v", ErrInvalid, c.RateLimit)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("%w: cache_ttl must not be negative, got %v", ErrInvalid, c.CacheTTL)
	}
	if err := c.Batch().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return nil
}

// Batch returns the coordinator settings.
func (c Config) Batch() batch.Config {
	return batch.Config{
		Concurrency: c.Concurrency,
		CallTimeout: c.CallTimeout,
		Rows:        c.Rows,
		Retry:       c.Retry,
		Match:       c.Match,
	}
}

// IsConfigError reports whether err should abort the run before any lookup.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrInvalid) || errors.Is(err, ErrMissingCredentials) || errors.Is(err, ErrUnknownSource)
}

// Path returns the config file path.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/doifind/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, Dir, File)
}

// DefaultCachePath returns the lookup cache location under the user cache dir.
func DefaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, Dir, CacheFile)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
