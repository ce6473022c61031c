// Package config loads Momentum configuration from a config file and
// MOMENTUM_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"momentum/internal/storage"
)

type Config struct {
	// DBPath is the sqlite database location.
	DBPath string

	// Timezone for calendar-day streak rules and time-of-day achievements.
	Timezone string

	HTTP HTTPConfig

	LogLevel string
}

type HTTPConfig struct {
	Host string
	Port int
}

func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration. Precedence: env vars (MOMENTUM_*), then config
// file (momentum.yaml in cwd or the explicit file), then defaults.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	defaultDB, err := storage.DefaultDBPath()
	if err != nil {
		return nil, err
	}
	v.SetDefault("db_path", defaultDB)
	v.SetDefault("timezone", "UTC")
	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("log_level", "info")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("momentum")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("MOMENTUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// Absent config file is fine; everything has a default. A file that
		// exists but does not parse is not.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		DBPath:   v.GetString("db_path"),
		Timezone: v.GetString("timezone"),
		HTTP: HTTPConfig{
			Host: v.GetString("http.host"),
			Port: v.GetInt("http.port"),
		},
		LogLevel: v.GetString("log_level"),
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}
