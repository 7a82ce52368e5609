// Package config loads the engine configuration from a YAML or JSON file
// with K_ environment overrides.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/vkblast/vkblast/auth"
	"github.com/vkblast/vkblast/core/dispatch"
	"github.com/vkblast/vkblast/core/factory"
	"github.com/vkblast/vkblast/core/metrics"
	"github.com/vkblast/vkblast/core/template"
)

type Config struct {
	// Token is the access token used for every send. Usually supplied via
	// the K_TOKEN environment override rather than the file.
	Token string `json:"token"`
	// Auth configures the OAuth2 client-credentials flow used when Token
	// is empty.
	Auth      auth.Conf            `json:"auth"`
	Transport factory.ModuleConfig `json:"transport"`
	Dispatch  dispatch.Config      `json:"dispatch"`
	Template  template.Grammar     `json:"template"`
	Metrics   metrics.Config       `json:"metrics"`
	SendLog   SendLogConfig        `json:"send_log"`
	API       APIConfig            `json:"api"`
	Sentry    SentryConfig         `json:"sentry"`
}

// APIConfig configures the optional HTTP report endpoint.
type APIConfig struct {
	// Addr is the listen address; empty disables the endpoint.
	Addr string `json:"addr"`
	// Token guards the endpoint with a bearer check when non-empty.
	Token string `json:"token"`
}

// SetDefaults fills unset sections.
func (c *Config) SetDefaults() {
	if c.Transport.Type == "" {
		c.Transport.Type = "vk"
	}
	c.Template.SetDefaults()
	c.SendLog.SetDefaults()
}

// Validate checks cross-section consistency.
func (c Config) Validate() error {
	return c.SendLog.Validate()
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
