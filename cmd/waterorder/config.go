package main

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	oteladapter "github.com/neomorfeo/waterorder/internal/adapter/otel"
)

const (
	storeMemory = "memory"
	storeSQLite = "sqlite"
)

// config holds everything run() needs from the environment.
type config struct {
	Port             string
	Store            string
	DatabasePath     string
	Username         string
	Password         string
	SchedulerWorkers int
	LogLevel         slog.Level
	Otel             oteladapter.Config
}

func loadConfig() (config, error) {
	cfg := config{
		Port:             envOrDefault("PORT", "8080"),
		Store:            envOrDefault("STORE", storeMemory),
		DatabasePath:     envOrDefault("DATABASE_PATH", "waterorder.db"),
		Username:         envOrDefault("AUTH_USERNAME", "farmer"),
		Password:         envOrDefault("AUTH_PASSWORD", "password"),
		SchedulerWorkers: intOrDefault("SCHEDULER_WORKERS", 1),
		Otel:             oteladapter.ConfigFromEnv(),
	}

	if cfg.Store != storeMemory && cfg.Store != storeSQLite {
		return config{}, fmt.Errorf("unsupported STORE %q (use %q or %q)", cfg.Store, storeMemory, storeSQLite)
	}

	if err := cfg.LogLevel.UnmarshalText([]byte(envOrDefault("LOG_LEVEL", "info"))); err != nil {
		return config{}, fmt.Errorf("parsing LOG_LEVEL: %w", err)
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// intOrDefault returns fallback when the variable is unset, malformed or below 1.
func intOrDefault(key string, fallback int) int {
	n, err := strconv.Atoi(os.Getenv(key))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
