// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
)

// Config is the service-level configuration loaded at startup
type Config struct {
	// Port is the HTTP port serving liveness and readiness checks
	Port string `yaml:"port"`

	// GracefulShutdownSeconds bounds how long shutdown waits for in-flight work
	GracefulShutdownSeconds int `yaml:"graceful_shutdown_seconds"`
}

// GracefulShutdown returns the shutdown grace period as a duration
func (c Config) GracefulShutdown() time.Duration {
	return time.Duration(c.GracefulShutdownSeconds) * time.Second
}

func defaultConfig() Config {
	return Config{
		Port:                    "8080",
		GracefulShutdownSeconds: 25,
	}
}

// loadConfig reads the optional YAML config file named by CONFIG_PATH and
// applies environment overrides on top.
func loadConfig(ctx context.Context) Config {
	config := defaultConfig()

	if path := os.Getenv(constants.EnvConfigPath); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			slog.ErrorContext(ctx, "failed to read config file, using defaults",
				"error", err,
				"path", path)
		} else if err := yaml.Unmarshal(data, &config); err != nil {
			slog.ErrorContext(ctx, "failed to parse config file, using defaults",
				"error", err,
				"path", path)
		}
	}

	if port := os.Getenv("PORT"); port != "" {
		config.Port = port
	}

	return config
}
