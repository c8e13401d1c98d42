package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// TableSource names a file to preload into the catalog at startup.
type TableSource struct {
	Name string `mapstructure:"name"`
	Path string `mapstructure:"path"`
}

// Config holds the CLI settings, read from an optional YAML file and
// CSVQL_* environment variables.
type Config struct {
	Prompt      string `mapstructure:"prompt"`
	HistoryFile string `mapstructure:"history_file"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`

	Tables []TableSource `mapstructure:"tables"`
}

// LoadConfig reads the configuration. An empty path loads defaults and
// environment overrides only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("prompt", "csvql> ")
	v.SetDefault("history_file", defaultHistoryPath())
	v.SetDefault("log.level", "warn")

	v.SetEnvPrefix("CSVQL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".csvql_history"
	}
	return filepath.Join(home, ".csvql_history")
}
