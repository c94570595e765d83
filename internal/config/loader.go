package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config.yaml"

// Load builds the nursery configuration from CONFIG_PATH (or ./config.yaml
// when present) overlaid with environment variables, then normalizes and
// validates it. A CONFIG_PATH that does not exist is an error; a missing
// ./config.yaml is not, so container deployments can run on ENV alone.
func Load() (*Config, error) {
	path, explicit := os.LookupEnv("CONFIG_PATH")
	explicit = explicit && path != ""
	if !explicit {
		path = defaultConfigPath
	}

	cfg, err := read(path, explicit)
	if err != nil {
		return nil, err
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return cfg, nil
}

func read(path string, explicit bool) (*Config, error) {
	var cfg Config

	_, err := os.Stat(path)
	switch {
	case err == nil:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	case explicit || !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	default:
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config: read env: %w", err)
		}
	}
	return &cfg, nil
}

// normalize cleans values that reach email copy, download links and the
// store selector, so operators can write them loosely in YAML or ENV.
func (c *Config) normalize() {
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	c.Site.PublicURL = strings.TrimRight(strings.TrimSpace(c.Site.PublicURL), "/")
	c.Mail.From = strings.TrimSpace(c.Mail.From)
	c.Mail.AdminEmail = strings.TrimSpace(c.Mail.AdminEmail)
	c.Mail.HREmail = strings.TrimSpace(c.Mail.HREmail)
	c.Kafka.Topic = strings.TrimSpace(c.Kafka.Topic)
}
