// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package constants

const (
	// KVBucketNameCalendarEvents is the name of the KV bucket for event snapshots.
	KVBucketNameCalendarEvents = "calendar-events"

	// KVBucketNameCalendarAlarms is the name of the KV bucket for alarm records.
	KVBucketNameCalendarAlarms = "calendar-alarms"

	// KVLookupCalendarEventPrefix is the key pattern for unique constraint lookups
	KVLookupCalendarEventPrefix = "lookup/calendar_events/%s"
)
