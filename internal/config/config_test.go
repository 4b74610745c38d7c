package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// isolate points XDG_CONFIG_HOME at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, k := range []string{EnvSource, EnvMailto, EnvS2APIKey, EnvCache, EnvConcurrency} {
		t.Setenv(k, "")
	}
	return dir
}

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	configDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(configDir, File)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := Path(), "/custom/config/doifind/config.yml"; got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := Path(), filepath.Join(home, ".config", "doifind", "config.yml"); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_NotFound(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := Default()
	if cfg.Source != SourceCrossref {
		t.Errorf("Source = %q, want %q", cfg.Source, SourceCrossref)
	}
	if cfg.Concurrency != def.Concurrency || cfg.Rows != def.Rows {
		t.Errorf("cfg = %+v, want defaults", cfg)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoad_ExplicitPathMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("Load() should fail for a missing explicit path")
	}
}

func TestLoad_Valid(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, `
source: s2
mailto: someone@example.org
s2_api_key: test-s2-key
concurrency: 8
call_timeout: 10s
rows: 3
rate_limit: 2.5
cache_path: /tmp/doifind-test.db
cache_ttl: 24h
retry:
  max_attempts: 5
  base_delay: 250ms
  max_delay: 4s
  multiplier: 2
match:
  title_weight: 0.6
  author_weight: 0.25
  year_weight: 0.15
  min_title: 0.9
  min_year: 0.5
`)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Source != SourceS2 {
		t.Errorf("Source = %q, want s2", cfg.Source)
	}
	if cfg.Mailto != "someone@example.org" {
		t.Errorf("Mailto = %q", cfg.Mailto)
	}
	if cfg.S2APIKey != "test-s2-key" {
		t.Errorf("S2APIKey = %q", cfg.S2APIKey)
	}
	if cfg.Concurrency != 8 || cfg.Rows != 3 {
		t.Errorf("Concurrency/Rows = %d/%d, want 8/3", cfg.Concurrency, cfg.Rows)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %v, want 10s", cfg.CallTimeout)
	}
	if cfg.RateLimit != 2.5 {
		t.Errorf("RateLimit = %v, want 2.5", cfg.RateLimit)
	}
	if cfg.CachePath != "/tmp/doifind-test.db" || cfg.CacheTTL != 24*time.Hour {
		t.Errorf("cache = %q/%v", cfg.CachePath, cfg.CacheTTL)
	}
	if cfg.Retry.MaxAttempts != 5 || cfg.Retry.BaseDelay != 250*time.Millisecond || cfg.Retry.MaxDelay != 4*time.Second {
		t.Errorf("Retry = %+v", cfg.Retry)
	}
	if cfg.Match.MinTitle != 0.9 {
		t.Errorf("Match.MinTitle = %v, want 0.9", cfg.Match.MinTitle)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "mailto: a@b.org\n")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	def := Default()
	if cfg.Retry != def.Retry || cfg.Match != def.Match {
		t.Errorf("nested defaults lost: retry=%+v match=%+v", cfg.Retry, cfg.Match)
	}
	if cfg.Mailto != "a@b.org" {
		t.Errorf("Mailto = %q", cfg.Mailto)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := writeConfig(t, dir, "source: [unterminated\n")

	_, err := Load(path)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := isolate(t)
	writeConfig(t, dir, "source: crossref\nmailto: file@example.org\n")
	t.Setenv(EnvSource, "s2")
	t.Setenv(EnvMailto, "env@example.org")
	t.Setenv(EnvS2APIKey, "env-key")
	t.Setenv(EnvCache, "/tmp/env.db")
	t.Setenv(EnvConcurrency, "2")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Source != "s2" || cfg.Mailto != "env@example.org" || cfg.S2APIKey != "env-key" {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.CachePath != "/tmp/env.db" || cfg.Concurrency != 2 {
		t.Errorf("env not applied: cache=%q concurrency=%d", cfg.CachePath, cfg.Concurrency)
	}
}

func TestLoad_BadConcurrencyEnv(t *testing.T) {
	isolate(t)
	t.Setenv(EnvConcurrency, "many")

	if _, err := Load(""); !errors.Is(err, ErrInvalid) {
		t.Errorf("Load() error = %v, want ErrInvalid", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"default", func(*Config) {}, nil},
		{"s2 with key", func(c *Config) { c.Source = SourceS2; c.S2APIKey = "k" }, nil},
		{"s2 without key", func(c *Config) { c.Source = SourceS2 }, ErrMissingCredentials},
		{"unknown source", func(c *Config) { c.Source = "pubmed" }, ErrUnknownSource},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalid},
		{"threshold above one", func(c *Config) { c.Match.MinTitle = 1.5 }, ErrInvalid},
		{"negative rate", func(c *Config) { c.RateLimit = -1 }, ErrInvalid},
		{"no attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, ErrInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(&cfg)
			err := cfg.Validate()
			if tt.want == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Validate() error = %v, want %v", err, tt.want)
			}
			if !IsConfigError(err) {
				t.Errorf("IsConfigError(%v) = false", err)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("DOIFIND_MAILTO=dotenv@example.org\n"), 0644); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override set variables, so unset the isolate value.
	if err := os.Unsetenv(EnvMailto); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvMailto) })

	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Mailto != "dotenv@example.org" {
		t.Errorf("Mailto = %q, want dotenv@example.org", cfg.Mailto)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~", home},
		{"~/cache/lookups.db", filepath.Join(home, "cache/lookups.db")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
