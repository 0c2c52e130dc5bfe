// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package redaction masks personally identifying values before they reach
// logs.
package redaction

import "strings"

// RedactEmail masks the local part of an email address, keeping the first
// character and the full domain so log lines stay correlatable.
func RedactEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return "***"
	}
	return email[:1] + "***" + email[at:]
}
