package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port           string `env:"PORT" envDefault:"8080"`
	DBDSN          string `env:"DB_DSN" envDefault:"sarisari.db"`
	LogFile        string `env:"LOG_FILE" envDefault:"./sarisari.log"`
	VoidWindowDays int    `env:"VOID_WINDOW_DAYS" envDefault:"7"`
}

// Load parses configuration from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	log.Printf("[config] PORT=%s DB_DSN=%s LOG_FILE=%s VOID_WINDOW_DAYS=%d",
		cfg.Port, cfg.DBDSN, cfg.LogFile, cfg.VoidWindowDays)
	return cfg, nil
}
