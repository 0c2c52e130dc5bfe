// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"os"
	"strconv"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
)

// Config holds the configuration for the NATS client
type Config struct {
	// URL is the NATS server URL
	URL string

	// Timeout is the connection and request timeout
	Timeout time.Duration

	// MaxReconnect is the maximum number of reconnect attempts
	MaxReconnect int

	// ReconnectWait is the delay between reconnect attempts
	ReconnectWait time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Timeout:       10 * time.Second,
		MaxReconnect:  -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if url := os.Getenv(constants.EnvNATSURL); url != "" {
		config.URL = url
	}

	if timeoutStr := os.Getenv("NATS_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			config.Timeout = timeout
		}
	}

	if reconnectStr := os.Getenv("NATS_MAX_RECONNECT"); reconnectStr != "" {
		if reconnect, err := strconv.Atoi(reconnectStr); err == nil {
			config.MaxReconnect = reconnect
		}
	}

	if waitStr := os.Getenv("NATS_RECONNECT_WAIT"); waitStr != "" {
		if wait, err := time.ParseDuration(waitStr); err == nil {
			config.ReconnectWait = wait
		}
	}

	return config
}
