// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package constants defines validation constants and formats for the calendar event service.
package constants

const (
	// TimestampFormat defines the standard timestamp format for the system (RFC3339)
	TimestampFormat = "2006-01-02T15:04:05Z07:00"

	// TimestampFormatName is the human-readable name for the timestamp format
	TimestampFormatName = "RFC3339"
)

// Event validity bounds
const (
	// MinSupportedYear is the earliest year an event component may reference.
	// Dates before this cannot be represented by downstream clients and are
	// rejected during materialization.
	MinSupportedYear = 1970

	// MaxAdjustedHour caps the hour a proportionally shifted end time may reach
	// when the start time of a same-day event moves.
	MaxAdjustedHour = 23
)

// Validation error messages
const (
	ErrInvalidTimestampFormat = "invalid timestamp format, expected RFC3339 (2006-01-02T15:04:05Z07:00)"
	ErrEmptyTimestamp         = "timestamp cannot be empty"
	ErrEndBeforeStart         = "event end time must be after its start time"
	ErrPreMinimumEra          = "event dates before 1970 are not supported"
)
