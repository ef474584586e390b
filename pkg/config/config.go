// Package config provides runtime configuration for the packing optimizer:
// solver limits from environment/config file via Viper, and the YAML
// container catalog and mission profiles that collaborators reference by
// name.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	apiv1 "github.com/packmate/mission-packing-optimizer/api/v1"
)

// Configuration keys. Environment variables use the PACKMATE_ prefix with
// underscores, e.g. PACKMATE_NODE_EXPANSION_CEILING.
const (
	KeyNodeExpansionCeiling = "node-expansion-ceiling"
	KeySolveTimeout         = "solve-timeout"
	KeyCatalogPath          = "catalog-path"
	KeyDevLogging           = "dev-logging"
)

// Defaults.
const (
	DefaultNodeExpansionCeiling = apiv1.DefaultNodeExpansionCeiling
	DefaultSolveTimeout         = 0 * time.Second // no deadline unless requested
)

// Config holds the optimizer's runtime settings.
type Config struct {
	// NodeExpansionCeiling bounds the exact search per request unless the
	// request carries its own ceiling.
	NodeExpansionCeiling int

	// SolveTimeout is the default wall-clock budget per solve. Zero means
	// none; requests may still carry their own deadline.
	SolveTimeout time.Duration

	// CatalogPath points at the container catalog / mission profile YAML.
	// Empty disables catalog resolution.
	CatalogPath string

	// DevLogging switches the logger to development mode.
	DevLogging bool
}

// Load reads configuration from an optional config file and the
// environment. Precedence: environment over file over defaults.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyNodeExpansionCeiling, DefaultNodeExpansionCeiling)
	v.SetDefault(KeySolveTimeout, DefaultSolveTimeout)
	v.SetDefault(KeyCatalogPath, "")
	v.SetDefault(KeyDevLogging, false)

	v.SetEnvPrefix("PACKMATE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		NodeExpansionCeiling: v.GetInt(KeyNodeExpansionCeiling),
		SolveTimeout:         v.GetDuration(KeySolveTimeout),
		CatalogPath:          v.GetString(KeyCatalogPath),
		DevLogging:           v.GetBool(KeyDevLogging),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks for invalid configuration values.
func (c *Config) Validate() error {
	if c.NodeExpansionCeiling <= 0 {
		return fmt.Errorf("node expansion ceiling must be > 0, got %d", c.NodeExpansionCeiling)
	}
	if c.SolveTimeout < 0 {
		return fmt.Errorf("solve timeout must be >= 0, got %s", c.SolveTimeout)
	}
	return nil
}
