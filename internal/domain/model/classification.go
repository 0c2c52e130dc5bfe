// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

// EventType is the editor's role with respect to the event being edited.
// The four variants are mutually exclusive and computed once per draft
// lifetime; every permission query is a pure function of the variant plus the
// current attendee count, never re-derived ad hoc.
type EventType string

// EventType constants
const (
	// EventTypeOwn means the editor is, or becomes, the organizer with full rights
	EventTypeOwn EventType = "own"
	// EventTypeSharedReadOnly means the event lives on a shared calendar the
	// editor cannot write to
	EventTypeSharedReadOnly EventType = "shared-read-only"
	// EventTypeSharedReadWrite means the event lives on a shared calendar the
	// editor may write to; the organizer stays unchanged
	EventTypeSharedReadWrite EventType = "shared-read-write"
	// EventTypeInvite means the editor is a guest of someone else's event
	EventTypeInvite EventType = "invite"
)

// EventClassification is the result of classifying the editing party's role
// and rights for one draft lifetime.
type EventClassification struct {
	Type      EventType     `json:"type"`
	Organizer *EventAddress `json:"organizer,omitempty"`
	// PossibleOrganizers is the set of addresses the organizer may be switched
	// to; a singleton or empty set means the organizer is locked
	PossibleOrganizers []EventAddress `json:"possible_organizers,omitempty"`
}

// CanModifyGuests reports whether the editor may add or remove attendees.
func (c EventClassification) CanModifyGuests() bool {
	return c.Type == EventTypeOwn
}

// CanModifyOrganizer reports whether the organizer may be reassigned: only on
// an own event with no real guests yet.
func (c EventClassification) CanModifyOrganizer(hasGuests bool) bool {
	return c.Type == EventTypeOwn && !hasGuests
}

// CanModifyOwnAttendance reports whether the editor may change their RSVP.
func (c EventClassification) CanModifyOwnAttendance() bool {
	return c.Type == EventTypeOwn || c.Type == EventTypeInvite
}

// IsReadOnly reports whether no field of the event may be edited at all.
func (c EventClassification) IsReadOnly() bool {
	return c.Type == EventTypeSharedReadOnly
}

// OrganizerEligible reports whether the given address may become organizer
// under this classification.
func (c EventClassification) OrganizerEligible(address EventAddress) bool {
	return address.BelongsTo(c.PossibleOrganizers)
}
