// Package config loads daemon configuration from an optional TOML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Duration decodes from a TOML string, accepting either a Go duration or a
// bare second count, the same syntax the environment overrides use. A bare
// TOML integer is rejected rather than silently read as nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := parseDuration(string(b))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type SDKConfig struct {
	YouTubeURL string `toml:"youtube_url"`
	VimeoURL   string `toml:"vimeo_url"`
}

type Config struct {
	Listen     string `toml:"listen"`
	DBPath     string `toml:"db_path"`
	CORSOrigin string `toml:"cors_origin"`
	APIToken   string `toml:"api_token"`

	SourceTimeout Duration `toml:"source_timeout"`
	IdleTimeout   Duration `toml:"idle_timeout"`

	SDK SDKConfig `toml:"sdk"`
}

func Default() Config {
	return Config{
		Listen:        ":7936",
		DBPath:        "./data/playerd.db",
		SourceTimeout: Duration(30 * time.Second),
		IdleTimeout:   Duration(10 * time.Second),
	}
}

// Load reads path when it exists, then applies environment overrides and
// validates. A missing file is not an error; the defaults apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config: %w", err)
		default:
			if err := toml.Unmarshal(raw, &cfg); err != nil {
				return cfg, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Listen = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("CORS_ORIGIN"); v != "" {
		c.CORSOrigin = v
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("SOURCE_TIMEOUT"); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.SourceTimeout = Duration(d)
		}
	}
	if v := os.Getenv("IDLE_TIMEOUT"); v != "" {
		if d, err := parseDuration(v); err == nil {
			c.IdleTimeout = Duration(d)
		}
	}
	if v := os.Getenv("YOUTUBE_SDK_URL"); v != "" {
		c.SDK.YouTubeURL = v
	}
	if v := os.Getenv("VIMEO_SDK_URL"); v != "" {
		c.SDK.VimeoURL = v
	}
}

// parseDuration accepts either a Go duration string or a bare second count.
func parseDuration(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("config: listen address must not be empty")
	}
	if c.DBPath == "" {
		return errors.New("config: db path must not be empty")
	}
	if c.SourceTimeout <= 0 {
		return errors.New("config: source timeout must be positive")
	}
	if c.IdleTimeout < 0 {
		return errors.New("config: idle timeout must not be negative")
	}
	return nil
}
