package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"github.com/atelier/console-backend/internal/archive"
	"github.com/atelier/console-backend/internal/chatstate"
)

type Config struct {
	Server  ServerConfig  `json:"server"`
	Gateway GatewayConfig `json:"gateway"`
	Archive ArchiveConfig `json:"archive"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

type GatewayConfig struct {
	URL            string `json:"url"`
	MainSessionKey string `json:"main_session_key" mapstructure:"main_session_key"`
}

type ArchiveConfig struct {
	Enabled  bool           `json:"enabled"`
	Database archive.Config `json:"database"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	homeDir, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(filepath.Join(homeDir, ".atelier"))
	}

	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.port", 8090)
	viper.SetDefault("gateway.url", "ws://localhost:7777/ws")
	viper.SetDefault("gateway.main_session_key", chatstate.DefaultMainKey)
	viper.SetDefault("archive.enabled", false)
	viper.SetDefault("archive.database.host", "localhost")
	viper.SetDefault("archive.database.port", 5432)
	viper.SetDefault("archive.database.user", "atelier")
	viper.SetDefault("archive.database.database", "atelier")
	viper.SetDefault("archive.database.sslmode", "disable")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// No config file: defaults plus env overrides are enough.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	loadEnvOverrides(&cfg)

	return &cfg, nil
}

func loadEnvOverrides(cfg *Config) {
	if port := os.Getenv("ATELIER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if host := os.Getenv("ATELIER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if url := os.Getenv("ATELIER_GATEWAY_URL"); url != "" {
		cfg.Gateway.URL = url
	}

	if dbHost := os.Getenv("POSTGRES_HOST"); dbHost != "" {
		cfg.Archive.Database.Host = dbHost
	}
	if dbPort := os.Getenv("POSTGRES_PORT"); dbPort != "" {
		if port, err := strconv.Atoi(dbPort); err == nil {
			cfg.Archive.Database.Port = port
		}
	}
	if dbUser := os.Getenv("POSTGRES_USER"); dbUser != "" {
		cfg.Archive.Database.User = dbUser
	}
	if dbPass := os.Getenv("POSTGRES_PASSWORD"); dbPass != "" {
		cfg.Archive.Database.Password = dbPass
	}
	if dbName := os.Getenv("POSTGRES_DB"); dbName != "" {
		cfg.Archive.Database.Database = dbName
	}
}
