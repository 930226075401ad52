package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yakshaver/go-tide-times/internal/catalog"
)

type Config struct {
	Server  ServerConfig
	Sources SourcesConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type SourcesConfig struct {
	TideURL          string
	MoonURL          string
	WarningURL       string
	ReferenceStation string
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Sources: SourcesConfig{
			TideURL:          getEnv("TIDE_URL", "https://erddap.marine.ie/erddap/tabledap/IMI-TidePrediction.csv"),
			MoonURL:          getEnv("MOON_URL", "https://aa.usno.navy.mil/api/moon/phases/year"),
			WarningURL:       getEnv("WARNING_URL", "https://www.met.ie/warningsxml/rss.xml"),
			ReferenceStation: getEnv("REFERENCE_STATION", "Dublin_Port"),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/tide-times.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if _, ok := catalog.Find(c.Sources.ReferenceStation); !ok {
		return fmt.Errorf("unknown reference station: %q", c.Sources.ReferenceStation)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}
