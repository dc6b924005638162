// Package config provides a reusable loader for channelledger configuration
// files and environment variables. It is versioned so that applications can
// depend on a stable API contract.
//
// Version: v0.1.0
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/synnergy-network/channelledger/pkg/utils"
)

// Version is the semantic version of this configuration package.
const Version = "v0.1.0"

// Config represents the unified configuration for a channelledger process:
// how it reaches Postgres, which chains it will accept events for, and how
// it logs and caches.
type Config struct {
	Database struct {
		Host     string `mapstructure:"host" json:"host"`
		Port     int    `mapstructure:"port" json:"port"`
		User     string `mapstructure:"user" json:"user"`
		Password string `mapstructure:"password" json:"password"`
		Name     string `mapstructure:"name" json:"name"`
		SSLMode  string `mapstructure:"ssl_mode" json:"ssl_mode"`
		// DSN overrides Host/Port/User/Password/Name/SSLMode entirely when set.
		DSN string `mapstructure:"dsn" json:"dsn"`
	} `mapstructure:"database" json:"database"`

	Chains struct {
		// AllowedChainIDs is the configured chain-id allowlist that
		// ChainAllowed checks against; an empty list accepts any chain id.
		// The store and the CLI do not consult it when accepting events or
		// state updates.
		AllowedChainIDs []int64 `mapstructure:"allowed_chain_ids" json:"allowed_chain_ids"`
	} `mapstructure:"chains" json:"chains"`

	Cache struct {
		Enabled  bool `mapstructure:"enabled" json:"enabled"`
		Capacity int  `mapstructure:"capacity" json:"capacity"`
	} `mapstructure:"cache" json:"cache"`

	Logging struct {
		Level string `mapstructure:"level" json:"level"`
	} `mapstructure:"logging" json:"logging"`
}

// AppConfig holds the configuration loaded via Load or LoadFromEnv.
var AppConfig Config

// DSN returns the assembled Postgres connection string, preferring an
// explicit Database.DSN override over the discrete fields.
func (c *Config) DSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return utils.PostgresDSN(c.Database.Host, c.Database.Port, c.Database.User,
		c.Database.Password, c.Database.Name, c.Database.SSLMode)
}

// ChainAllowed reports whether chainID may be accepted, honoring an empty
// allowlist as "accept everything".
func (c *Config) ChainAllowed(chainID int64) bool {
	if len(c.Chains.AllowedChainIDs) == 0 {
		return true
	}
	for _, id := range c.Chains.AllowedChainIDs {
		if id == chainID {
			return true
		}
	}
	return false
}

// Load reads configuration files and merges any environment specific
// overrides. The resulting configuration is stored in AppConfig and returned.
//
// The function uses the provided environment name to merge additional config
// files. If env is empty, only the default configuration is loaded.
func Load(env string) (*Config, error) {
	viper.SetConfigName("default")
	viper.AddConfigPath("config")
	viper.SetConfigType("yaml")
	if err := viper.ReadInConfig(); err != nil {
		return nil, utils.Wrap(err, "load config")
	}

	if env != "" {
		viper.SetConfigName(env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, utils.Wrap(err, fmt.Sprintf("merge %s config", env))
		}
	}

	viper.AutomaticEnv() // picks up from .env

	if err := viper.Unmarshal(&AppConfig); err != nil {
		return nil, utils.Wrap(err, "unmarshal config")
	}
	return &AppConfig, nil
}

// LoadFromEnv loads configuration using the CHANNELLEDGER_ENV environment
// variable, falling back to discrete CHANNELLEDGER_DB_* variables when no
// config file is present.
func LoadFromEnv() (*Config, error) {
	cfg, err := Load(utils.EnvOrDefault("CHANNELLEDGER_ENV", ""))
	if err == nil {
		return cfg, nil
	}

	// No config file on disk: build a Config purely from the environment.
	var fallback Config
	fallback.Database.Host = utils.EnvOrDefault("CHANNELLEDGER_DB_HOST", "localhost")
	fallback.Database.Port = utils.EnvOrDefaultInt("CHANNELLEDGER_DB_PORT", 5432)
	fallback.Database.User = utils.EnvOrDefault("CHANNELLEDGER_DB_USER", "channelledger")
	fallback.Database.Password = utils.EnvOrDefault("CHANNELLEDGER_DB_PASSWORD", "")
	fallback.Database.Name = utils.EnvOrDefault("CHANNELLEDGER_DB_NAME", "channelledger")
	fallback.Database.SSLMode = utils.EnvOrDefault("CHANNELLEDGER_DB_SSLMODE", "disable")
	fallback.Database.DSN = utils.EnvOrDefault("CHANNELLEDGER_DB_DSN", "")
	fallback.Cache.Enabled = utils.EnvOrDefault("CHANNELLEDGER_CACHE_ENABLED", "true") == "true"
	fallback.Cache.Capacity = utils.EnvOrDefaultInt("CHANNELLEDGER_CACHE_CAPACITY", 1024)
	fallback.Logging.Level = utils.EnvOrDefault("CHANNELLEDGER_LOG_LEVEL", "info")
	AppConfig = fallback
	return &AppConfig, nil
}
