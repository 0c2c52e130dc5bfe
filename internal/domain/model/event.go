// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/akamensky/base58"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// CalendarEvent is an immutable persisted snapshot of an event. A new
// snapshot is materialized from the working draft on every save; existing
// snapshots are never mutated in place.
type CalendarEvent struct {
	// UID is the stable event identity, preserved across edits
	UID string `json:"uid"`
	// CalendarUID identifies the owning calendar
	CalendarUID string `json:"calendar_uid"`

	Summary     string `json:"summary"`
	Location    string `json:"location"`
	Description string `json:"description"`

	// StartTime and EndTime are UTC day boundaries for all-day events and
	// explicit zoned instants for timed events, never mixed
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	AllDay    bool      `json:"all_day"`

	// Confidential marks the invite contents as confidential; confidential
	// invites to external recipients require confirmed passwords
	Confidential bool `json:"confidential"`

	// Sequence distinguishes successive versions of the same event identity,
	// used by recipients to discard stale updates
	Sequence int64 `json:"sequence"`

	Organizer *EventAddress `json:"organizer,omitempty"`
	Attendees []Attendee    `json:"attendees,omitempty"`

	RepeatRule *RepeatRule `json:"repeat_rule,omitempty"`
	// RecurrenceText is the serialized RFC 5545 RRULE, derived from RepeatRule
	// during materialization
	RecurrenceText string `json:"recurrence_text,omitempty"`

	AlarmRefs []string `json:"alarm_refs,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimeOfDay is a wall-clock time within a day, used by timed drafts. All-day
// drafts carry no TimeOfDay at all.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Valid reports whether the value denotes a real wall-clock time.
func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

// MinutesFromMidnight converts the time to minutes since midnight.
func (t TimeOfDay) MinutesFromMidnight() int {
	return t.Hour*60 + t.Minute
}

// TimeOfDayFromMinutes builds a TimeOfDay from minutes since midnight,
// capping the hour at 23 so proportional end-time shifts stay within the day.
func TimeOfDayFromMinutes(minutes int) TimeOfDay {
	if minutes < 0 {
		minutes = 0
	}
	hour := minutes / 60
	if hour > 23 {
		return TimeOfDay{Hour: 23, Minute: minutes % 60}
	}
	return TimeOfDay{Hour: hour, Minute: minutes % 60}
}

// Alarm is a reminder attached to an event.
type Alarm struct {
	UID string `json:"uid"`
	// Trigger is the reminder offset before the event start, e.g. "5M", "1H", "1D"
	Trigger string `json:"trigger"`
}

// CalendarInfo describes a calendar visible to the editor.
type CalendarInfo struct {
	UID string `json:"uid"`
	// GroupUID is the sharing group whose capabilities govern edits
	GroupUID string `json:"group_uid"`
	// Shared is true when the calendar is shared with the editor rather than
	// owned by them
	Shared bool `json:"shared"`
	Name   string `json:"name"`
}

// Editor is the identity of the party performing an edit session.
type Editor struct {
	// DefaultSender is the address used as organizer for newly owned events
	DefaultSender EventAddress `json:"default_sender"`
	// OwnAddresses is the full alias set belonging to the editor
	OwnAddresses []EventAddress `json:"own_addresses"`
	// AccountUID identifies the account for entitlement checks
	AccountUID string `json:"account_uid"`
	// AccountTier is the account's billing tier
	AccountTier string `json:"account_tier"`
}

// Owns reports whether the given address is one of the editor's own.
func (e Editor) Owns(address EventAddress) bool {
	return address.BelongsTo(e.OwnAddresses)
}

// DeriveEventUID computes the stable identity assigned to an event on first
// creation. The derivation is deterministic over the owning calendar identity
// and the creation instant so that retried creations converge on one key.
func DeriveEventUID(calendarUID string, createdAt time.Time) string {
	data := fmt.Sprintf("%s|%d", calendarUID, createdAt.UnixMilli())
	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}

// Clone returns a deep copy of the event.
func (e *CalendarEvent) Clone() *CalendarEvent {
	if e == nil {
		return nil
	}
	clone := *e
	if e.Organizer != nil {
		organizer := *e.Organizer
		clone.Organizer = &organizer
	}
	clone.Attendees = make([]Attendee, len(e.Attendees))
	copy(clone.Attendees, e.Attendees)
	clone.RepeatRule = e.RepeatRule.Clone()
	clone.AlarmRefs = make([]string, len(e.AlarmRefs))
	copy(clone.AlarmRefs, e.AlarmRefs)
	return &clone
}

// Validate runs the user-correctable validity checks performed before an
// event snapshot may be persisted. It fails fast reporting the first check
// that does not hold.
func (e *CalendarEvent) Validate() error {
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return errors.NewValidation("event start and end times are required")
	}
	if !e.EndTime.After(e.StartTime) {
		return errors.NewValidation(constants.ErrEndBeforeStart)
	}
	if e.StartTime.Year() < constants.MinSupportedYear || e.EndTime.Year() < constants.MinSupportedYear {
		return errors.NewValidation(constants.ErrPreMinimumEra)
	}
	if e.RepeatRule != nil && e.RepeatRule.Interval < 1 {
		return errors.NewValidation("repeat interval must be at least 1")
	}
	return nil
}

// SelfAttendee returns the attendee record matching one of the editor's own
// addresses, or nil when the editor is not a participant.
func (e *CalendarEvent) SelfAttendee(ownAddresses []EventAddress) *Attendee {
	for i := range e.Attendees {
		if e.Attendees[i].Address.BelongsTo(ownAddresses) {
			return &e.Attendees[i]
		}
	}
	return nil
}

// HasGuests reports whether the event has any attendee besides the editor.
// A single attendee who is the editor themselves counts as zero guests.
func (e *CalendarEvent) HasGuests(ownAddresses []EventAddress) bool {
	if e == nil || len(e.Attendees) == 0 {
		return false
	}
	if len(e.Attendees) == 1 && e.Attendees[0].Address.BelongsTo(ownAddresses) {
		return false
	}
	return true
}

// Tags generates a consistent set of tags for the event, used when the
// snapshot is published for indexing.
func (e *CalendarEvent) Tags() []string {
	var tags []string

	if e == nil {
		return nil
	}

	if e.UID != "" {
		tags = append(tags, e.UID)
		tags = append(tags, fmt.Sprintf("event_uid:%s", e.UID))
	}

	if e.CalendarUID != "" {
		tags = append(tags, fmt.Sprintf("calendar_uid:%s", e.CalendarUID))
	}

	if e.Summary != "" {
		tags = append(tags, fmt.Sprintf("summary:%s", e.Summary))
	}

	if e.Organizer != nil && e.Organizer.Email != "" {
		tags = append(tags, fmt.Sprintf("organizer:%s", e.Organizer.NormalizedEmail()))
	}

	return tags
}
