// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateRFC3339(t *testing.T) {
	tests := []struct {
		name        string
		timestamp   string
		expectError bool
	}{
		{
			name:        "valid RFC3339 timestamp",
			timestamp:   "2023-06-15T10:30:45Z",
			expectError: false,
		},
		{
			name:        "valid RFC3339 with timezone",
			timestamp:   "2023-06-15T10:30:45+02:00",
			expectError: false,
		},
		{
			name:        "valid RFC3339 with microseconds",
			timestamp:   "2023-06-15T10:30:45.123456Z",
			expectError: false,
		},
		{
			name:        "empty string",
			timestamp:   "",
			expectError: true,
		},
		{
			name:        "invalid format - missing timezone",
			timestamp:   "2023-06-15T10:30:45",
			expectError: true,
		},
		{
			name:        "invalid format - wrong delimiter",
			timestamp:   "2023-06-15 10:30:45Z",
			expectError: true,
		},
		{
			name:        "invalid date",
			timestamp:   "2023-13-45T10:30:45Z",
			expectError: true,
		},
		{
			name:        "not a timestamp",
			timestamp:   "not-a-timestamp",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ValidateRFC3339(tt.timestamp)

			if tt.expectError {
				assert.Error(t, err)
				assert.Zero(t, result)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, result)
				// Verify we can format it back to the same string (or compatible)
				formatted := result.Format("2006-01-02T15:04:05Z07:00")
				_, parseErr := time.Parse("2006-01-02T15:04:05Z07:00", formatted)
				assert.NoError(t, parseErr)
			}
		})
	}
}
