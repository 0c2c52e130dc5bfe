// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package model defines the domain models and entities for the calendar event service.
package model

import (
	"fmt"
	"strings"
)

// AttendeeStatus is the RSVP status of an event participant.
type AttendeeStatus string

// AttendeeStatus constants for event participation
const (
	// StatusNeedsAction means the attendee has been invited but not yet responded
	StatusNeedsAction AttendeeStatus = "needs-action"
	// StatusAddedPending means the attendee was added to the draft but the
	// invitation has not been dispatched yet
	StatusAddedPending AttendeeStatus = "added-pending"
	// StatusAccepted means the attendee accepted the invitation
	StatusAccepted AttendeeStatus = "accepted"
	// StatusDeclined means the attendee declined the invitation
	StatusDeclined AttendeeStatus = "declined"
	// StatusTentative means the attendee tentatively accepted the invitation
	StatusTentative AttendeeStatus = "tentative"
)

// IsResponse reports whether the status is an actionable reply a guest can
// send back to the organizer. Needs-action and added-pending are not replies.
func (s AttendeeStatus) IsResponse() bool {
	switch s {
	case StatusAccepted, StatusDeclined, StatusTentative:
		return true
	}
	return false
}

// EventAddress is a mail address optionally paired with a display name.
// Identity is the normalized email only; names never participate in equality.
type EventAddress struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// NormalizeEmail canonicalizes an email address for identity comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizedEmail returns the canonical form of the address's email.
func (a EventAddress) NormalizedEmail() string {
	return NormalizeEmail(a.Email)
}

// SameAddress reports whether two addresses refer to the same mailbox,
// ignoring display names and formatting.
func (a EventAddress) SameAddress(other EventAddress) bool {
	return a.NormalizedEmail() == other.NormalizedEmail()
}

// BelongsTo reports whether the address matches any of the given own addresses.
func (a EventAddress) BelongsTo(ownAddresses []EventAddress) bool {
	for _, own := range ownAddresses {
		if a.SameAddress(own) {
			return true
		}
	}
	return false
}

// String renders the address for logging and iTIP payloads.
func (a EventAddress) String() string {
	if a.Name == "" {
		return a.Email
	}
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Attendee is an event participant with an RSVP status.
type Attendee struct {
	Address EventAddress   `json:"address"`
	Status  AttendeeStatus `json:"status"`
}

// Is reports attendee identity equality (normalized email only).
func (a Attendee) Is(other Attendee) bool {
	return a.Address.SameAddress(other.Address)
}

// Contact is an optional contact-book record attached to a recipient.
type Contact struct {
	UID       string `json:"uid"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// AttendeesEqual compares two attendee sets order-insensitively by
// address+status pair. Names are ignored.
func AttendeesEqual(a, b []Attendee) bool {
	if len(a) != len(b) {
		return false
	}
	statuses := make(map[string]AttendeeStatus, len(a))
	for _, attendee := range a {
		statuses[attendee.Address.NormalizedEmail()] = attendee.Status
	}
	for _, attendee := range b {
		status, ok := statuses[attendee.Address.NormalizedEmail()]
		if !ok || status != attendee.Status {
			return false
		}
	}
	return true
}
