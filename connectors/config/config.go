package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultConsoleURL = "https://console.redhat.com"
	defaultAuthURL    = "https://sso.redhat.com/auth/realms/redhat-external/protocol/openid-connect/token"
	defaultTagKey     = "produto"
)

// ErrMissingCredentials is returned before any network call when the service
// account credentials are not in the environment.
var ErrMissingCredentials = errors.New("OPENSHIFT_CLIENT_ID and OPENSHIFT_CLIENT_SECRET must be set")

// Config carries everything an extraction run needs. Credentials come from the
// environment only; endpoints and report tweaks may come from an optional YAML
// file pointed to by CONFIG_PATH (default ./config.yml).
type Config struct {
	ClientID     string
	ClientSecret string
	ConsoleURL   string
	AuthURL      string
	TagKey       string
	UsageCodes   []string
}

type fileConfig struct {
	API struct {
		ConsoleURL string `yaml:"console_url"`
		AuthURL    string `yaml:"auth_url"`
	} `yaml:"api"`
	Reports struct {
		TagKey     string   `yaml:"tag_key"`
		UsageCodes []string `yaml:"usage_codes"`
	} `yaml:"reports"`
}

// Load builds the run configuration: defaults, then the optional YAML file,
// then environment overrides. Missing credentials fail fast.
func Load() (*Config, error) {
	c := &Config{
		ClientID:     os.Getenv("OPENSHIFT_CLIENT_ID"),
		ClientSecret: os.Getenv("OPENSHIFT_CLIENT_SECRET"),
		ConsoleURL:   defaultConsoleURL,
		AuthURL:      defaultAuthURL,
		TagKey:       defaultTagKey,
		UsageCodes:   []string{"compute", "memory", "volumes"},
	}
	if c.ClientID == "" || c.ClientSecret == "" {
		return nil, ErrMissingCredentials
	}

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config.yml"
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// the file is optional
	case err != nil:
		return nil, err
	default:
		var fc fileConfig
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		if fc.API.ConsoleURL != "" {
			c.ConsoleURL = fc.API.ConsoleURL
		}
		if fc.API.AuthURL != "" {
			c.AuthURL = fc.API.AuthURL
		}
		if fc.Reports.TagKey != "" {
			c.TagKey = fc.Reports.TagKey
		}
		if len(fc.Reports.UsageCodes) > 0 {
			c.UsageCodes = fc.Reports.UsageCodes
		}
		slog.Info(fmt.Sprintf("Loaded config: %s", path))
	}

	if v := os.Getenv("CONSOLE_URL"); v != "" {
		c.ConsoleURL = v
	}
	return c, nil
}
