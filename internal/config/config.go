package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN           string
	HTTPAddr        string
	Environment     string
	DefaultTimezone string
	MigrationsPath  string
	SweepInterval   time.Duration
}

func Load() (*Config, error) {
	// A missing .env file is fine; plain environment variables still apply.
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:           os.Getenv("DB_DSN"),
		HTTPAddr:        os.Getenv("HTTP_ADDR"),
		Environment:     os.Getenv("ENV"),
		DefaultTimezone: os.Getenv("DEFAULT_TIMEZONE"),
		MigrationsPath:  os.Getenv("MIGRATIONS_PATH"),
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DefaultTimezone == "" {
		cfg.DefaultTimezone = "America/Los_Angeles"
	}
	if cfg.MigrationsPath == "" {
		cfg.MigrationsPath = "migrations"
	}

	cfg.SweepInterval = 12 * time.Hour
	if raw := os.Getenv("SWEEP_INTERVAL"); raw != "" {
		interval, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("parse SWEEP_INTERVAL: %w", err)
		}
		cfg.SweepInterval = interval
	}

	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
