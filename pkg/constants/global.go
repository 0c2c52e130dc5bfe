// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package constants defines global constants used throughout the calendar event service.
package constants

// Service constants
const (
	// ServiceName is the name of this service
	ServiceName = "calendar-event"
)

// NATS messaging subjects consumed by this service
const (
	// BillingGetEntitlementSubject is the NATS subject for checking whether an
	// account holds the feature entitlement for multi-recipient notifications
	BillingGetEntitlementSubject = "lfx.billing-api.get_entitlement"

	// MailResolveAddressTypeSubject is the NATS subject for resolving whether a
	// recipient address is an internal or external mailbox
	MailResolveAddressTypeSubject = "lfx.mail-api.resolve_address_type"

	// AccessCheckGroupCapabilitySubject is the NATS subject for checking a
	// user's capability on a sharing group
	AccessCheckGroupCapabilitySubject = "lfx.access-api.check_group_capability"
)

// NATS messaging subjects served by this service
const (
	// EventSaveSubject is the NATS subject on which save requests are received
	EventSaveSubject = "lfx.calendar-api.save_event"

	// EventDeleteSubject is the NATS subject on which delete requests are received
	EventDeleteSubject = "lfx.calendar-api.delete_event"

	// EventExcludeOccurrenceSubject is the NATS subject on which single
	// occurrence exclusion requests are received
	EventExcludeOccurrenceSubject = "lfx.calendar-api.exclude_occurrence"

	// EventAPIQueue is the queue group for load-balanced event request handling
	EventAPIQueue = "calendar-api-queue"
)

// Environment variables
const (
	// EnvNATSURL is the environment variable for NATS server URL
	EnvNATSURL = "NATS_URL"
	// EnvConfigPath is the environment variable for the service config file path
	EnvConfigPath = "CONFIG_PATH"
)

// Access control object model
const (
	// ObjectTypeCalendarEvent is the fga-sync object type for calendar events
	ObjectTypeCalendarEvent = "calendar_event"

	// RelationCalendar is the access-inheritance reference to the owning calendar
	RelationCalendar = "calendar"
)

// Capability names looked up against the permission oracle
const (
	// CapabilityWrite is the capability required to edit events on a shared calendar
	CapabilityWrite = "write"

	// CapabilityRead is the capability granted to every member of a shared calendar's group
	CapabilityRead = "read"
)

// Account tiers recognized by the entitlement check
const (
	// AccountTierFree identifies free-tier accounts, always denied multi-recipient notifications
	AccountTierFree = "free"
	// AccountTierExternal identifies external accounts, always allowed notifications
	AccountTierExternal = "external"
	// AccountTierPaid identifies paid accounts, subject to the entitlement lookup
	AccountTierPaid = "paid"
)
