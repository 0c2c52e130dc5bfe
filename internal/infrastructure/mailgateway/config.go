// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mailgateway

import (
	"os"
	"strconv"
	"time"
)

// Config holds the configuration for the mail gateway client
type Config struct {
	// BaseURL is the mail gateway API base URL
	BaseURL string

	// APIKey is the bearer token used to authenticate against the gateway
	APIKey string

	// Timeout is the HTTP client timeout for requests
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the delay between retry attempts
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		BaseURL:    "http://lfx-api.k8s.orb.local/mail",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RetryDelay: 1 * time.Second,
	}
}

// NewConfigFromEnv creates a Config from environment variables
func NewConfigFromEnv() Config {
	config := DefaultConfig()

	if baseURL := os.Getenv("MAILGATEWAY_BASE_URL"); baseURL != "" {
		config.BaseURL = baseURL
	}

	if apiKey := os.Getenv("MAILGATEWAY_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}

	if timeoutStr := os.Getenv("MAILGATEWAY_TIMEOUT"); timeoutStr != "" {
		if timeout, err := time.ParseDuration(timeoutStr); err == nil {
			config.Timeout = timeout
		}
	}

	if retriesStr := os.Getenv("MAILGATEWAY_MAX_RETRIES"); retriesStr != "" {
		if retries, err := strconv.Atoi(retriesStr); err == nil {
			config.MaxRetries = retries
		}
	}

	if delayStr := os.Getenv("MAILGATEWAY_RETRY_DELAY"); delayStr != "" {
		if delay, err := time.ParseDuration(delayStr); err == nil {
			config.RetryDelay = delay
		}
	}

	return config
}
