// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

// NATS subject constants for message publishing
const (
	// Indexing subjects for search and discovery
	IndexCalendarEventSubject = "lfx.index.calendar_event"

	// Access control subjects for OpenFGA integration
	UpdateAccessCalendarEventSubject    = "lfx.update_access.calendar_event"
	DeleteAllAccessCalendarEventSubject = "lfx.delete_all_access.calendar_event"
)
