// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package httpclient provides a generic HTTP client with retry logic and
// middleware support.
package httpclient

import "time"

// Config holds the configuration for the HTTP client
type Config struct {
	// Timeout is the per-request timeout
	Timeout time.Duration

	// MaxRetries is the maximum number of retry attempts for failed requests
	MaxRetries int

	// RetryDelay is the base delay between retry attempts
	RetryDelay time.Duration

	// RetryBackoff enables exponential backoff with jitter between retries
	RetryBackoff bool

	// MaxDelay caps the backoff delay between retries
	MaxDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Timeout:      30 * time.Second,
		MaxRetries:   2,
		RetryDelay:   1 * time.Second,
		RetryBackoff: true,
		MaxDelay:     30 * time.Second,
	}
}
