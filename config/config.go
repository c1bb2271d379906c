// Package config loads the command line configuration.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Client  ClientConfig  `yaml:"client"`
	Archive ArchiveConfig `yaml:"archive"`
	Log     LogConfig     `yaml:"log"`
}

type ClientConfig struct {
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRedirects int           `yaml:"max_redirects"`
	MaxBodySize  int64         `yaml:"max_body_size"`

	// Hosts pins host names to addresses, bypassing the system resolver.
	Hosts map[string][]string `yaml:"hosts"`
}

type ArchiveConfig struct {
	// Path of the SQLite database, written by fetch --archive.
	// Empty means DefaultArchivePath.
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn or error.
}

const (
	DefaultUserAgent    = "httpwrap/1.0"
	DefaultTimeout      = 30 * time.Second
	DefaultMaxRedirects = 10
	DefaultMaxBodySize  = 64 << 20
	DefaultArchivePath  = "httpwrap.db"
	DefaultLogLevel     = "warn"
)

func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads path. A missing file yields the defaults, a malformed one
// is an error. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, errors.Wrap(err, "reading config")
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(err, "parsing %s", path)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("HTTPWRAP_USER_AGENT"); v != "" {
		c.Client.UserAgent = v
	}
	if v := os.Getenv("HTTPWRAP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrap(err, "HTTPWRAP_TIMEOUT")
		}
		c.Client.Timeout = d
	}
	if v := os.Getenv("HTTPWRAP_MAX_REDIRECTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "HTTPWRAP_MAX_REDIRECTS")
		}
		c.Client.MaxRedirects = n
	}
	if v := os.Getenv("HTTPWRAP_MAX_BODY_SIZE"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return errors.Wrap(err, "HTTPWRAP_MAX_BODY_SIZE")
		}
		c.Client.MaxBodySize = n
	}
	if v := os.Getenv("HTTPWRAP_ARCHIVE_PATH"); v != "" {
		c.Archive.Path = v
	}
	if v := os.Getenv("HTTPWRAP_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Client.UserAgent == "" {
		c.Client.UserAgent = DefaultUserAgent
	}
	if c.Client.Timeout == 0 {
		c.Client.Timeout = DefaultTimeout
	}
	if c.Client.MaxRedirects == 0 {
		c.Client.MaxRedirects = DefaultMaxRedirects
	}
	if c.Client.MaxBodySize == 0 {
		c.Client.MaxBodySize = DefaultMaxBodySize
	}
	if c.Archive.Path == "" {
		c.Archive.Path = DefaultArchivePath
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
