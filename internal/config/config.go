package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Network NetworkConfig `mapstructure:"network"`
	Server  ServerConfig  `mapstructure:"server"`
}

type NetworkConfig struct {
	Source   string      `mapstructure:"source"`
	Path     string      `mapstructure:"path"`
	Capacity int         `mapstructure:"capacity"`
	Neo4j    Neo4jConfig `mapstructure:"neo4j"`
}

type Neo4jConfig struct {
	URI      string `mapstructure:"uri"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
}

type ServerConfig struct {
	Listen         string `mapstructure:"listen"`
	ReadOnly       bool   `mapstructure:"read_only"`
	APIToken       string `mapstructure:"api_token"`
	CORSOrigin     string `mapstructure:"cors_origin"`
	ReloadInterval string `mapstructure:"reload_interval"`
}

// Source kinds accepted by network.source.
const (
	SourceYAML   = "yaml"
	SourceSQLite = "sqlite"
	SourceNeo4j  = "neo4j"
)

// Load reads the configuration from file and environment variables.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".fuelnet"))
		}
		v.AddConfigPath(".")
		v.SetConfigName("fuelnet")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix("FUELNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	// Secrets may reference environment variables: api_token: ${FUELNET_TOKEN}
	cfg.Server.APIToken = os.ExpandEnv(cfg.Server.APIToken)
	cfg.Network.Neo4j.Password = os.ExpandEnv(cfg.Network.Neo4j.Password)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.source", SourceYAML)
	v.SetDefault("network.path", "./network.yaml")
	v.SetDefault("network.capacity", 0)
	v.SetDefault("network.neo4j.uri", "bolt://localhost:7687")
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.read_only", true)
	v.SetDefault("server.reload_interval", "")
}

// Validate checks values that viper cannot type-check.
func (c *Config) Validate() error {
	switch c.Network.Source {
	case SourceYAML, SourceSQLite:
		if c.Network.Path == "" {
			return fmt.Errorf("network.path is required for source %q", c.Network.Source)
		}
	case SourceNeo4j:
		if c.Network.Neo4j.URI == "" {
			return fmt.Errorf("network.neo4j.uri is required for source %q", c.Network.Source)
		}
	default:
		return fmt.Errorf("invalid network.source %q (use: yaml, sqlite, neo4j)", c.Network.Source)
	}

	if c.Network.Capacity < 0 {
		return fmt.Errorf("network.capacity must be >= 0, got %d", c.Network.Capacity)
	}

	if _, err := c.Server.Reload(); err != nil {
		return err
	}
	return nil
}

// Reload parses reload_interval. Zero means hot reload is disabled.
func (s ServerConfig) Reload() (time.Duration, error) {
	if s.ReloadInterval == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s.ReloadInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid server.reload_interval %q: %w (use Go duration format: 5m, 1h)", s.ReloadInterval, err)
	}
	if d < time.Minute {
		return 0, fmt.Errorf("server.reload_interval must be at least 1m, got %s", d)
	}
	return d, nil
}
