// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Mode       *string `toml:"mode"`
	Lang       *string `toml:"lang"`
	Difficulty *string `toml:"difficulty"`
	DailyMax   *int    `toml:"daily-max"`
	Snippets   *string `toml:"snippets"`
	Shuffle    *bool   `toml:"shuffle"`
}

// ServerConfig maps `typrr serve` settings.
type ServerConfig struct {
	Addr       *string `toml:"addr"`
	DBDriver   *string `toml:"db-driver"`
	DBDSN      *string `toml:"db-dsn"`
	JWTSecret  *string `toml:"jwt-secret"`
	TokenTTL   *string `toml:"token-ttl"`
	CORSOrigin *string `toml:"cors-origin"`
}

// ClientConfig maps API client settings.
type ClientConfig struct {
	APIURL *string `toml:"api-url"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

func (c FileConfig) validate() error {
	if c.Server.TokenTTL != nil {
		if _, err := time.ParseDuration(*c.Server.TokenTTL); err != nil {
			return fmt.Errorf("invalid server.token-ttl: %w", err)
		}
	}
	if c.Practice.DailyMax != nil && *c.Practice.DailyMax <= 0 {
		return fmt.Errorf("practice.daily-max must be > 0")
	}
	return nil
}
