// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// AddressPayload is a mail address with an optional display name
type AddressPayload struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// EditorPayload identifies the party performing the edit
type EditorPayload struct {
	DefaultSender AddressPayload   `json:"default_sender"`
	OwnAddresses  []AddressPayload `json:"own_addresses,omitempty"`
	AccountUID    string           `json:"account_uid"`
	AccountTier   string           `json:"account_tier"`
}

// CalendarPayload describes the calendar the draft belongs to
type CalendarPayload struct {
	UID      string `json:"uid"`
	GroupUID string `json:"group_uid,omitempty"`
	Shared   bool   `json:"shared,omitempty"`
	Name     string `json:"name,omitempty"`
}

// GuestPayload is one attendee addition, optionally with a preshared password
// for confidential external delivery
type GuestPayload struct {
	Address           AddressPayload `json:"address"`
	Password          string         `json:"password,omitempty"`
	PasswordConfirmed bool           `json:"password_confirmed,omitempty"`
}

// EventChangesPayload carries the field edits to apply to the draft. Nil
// pointers leave the corresponding field untouched.
type EventChangesPayload struct {
	Summary      *string `json:"summary,omitempty"`
	Location     *string `json:"location,omitempty"`
	Description  *string `json:"description,omitempty"`
	Confidential *bool   `json:"confidential,omitempty"`

	// StartDate and EndDate use the 2006-01-02 layout
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
	// StartTime and EndTime use the 15:04 layout
	StartTime *string `json:"start_time,omitempty"`
	EndTime   *string `json:"end_time,omitempty"`
	AllDay    *bool   `json:"all_day,omitempty"`

	RepeatFrequency *string `json:"repeat_frequency,omitempty"`
	RepeatInterval  *int    `json:"repeat_interval,omitempty"`
	RepeatEndType   *string `json:"repeat_end_type,omitempty"`
	RepeatEndCount  *int    `json:"repeat_end_count,omitempty"`
	// RepeatUntilDate uses the 2006-01-02 layout
	RepeatUntilDate *string `json:"repeat_until_date,omitempty"`

	AddGuests       []GuestPayload `json:"add_guests,omitempty"`
	RemoveAttendees []string       `json:"remove_attendees,omitempty"`
	Organizer       *AddressPayload `json:"organizer,omitempty"`
	OwnAttendance   *string         `json:"own_attendance,omitempty"`

	AddAlarms []string `json:"add_alarms,omitempty"`
}

// SaveEventRequest is the inbound payload on the save subject
type SaveEventRequest struct {
	Editor   EditorPayload   `json:"editor"`
	Calendar CalendarPayload `json:"calendar"`
	// EventUID is empty when creating a new event
	EventUID string `json:"event_uid,omitempty"`
	// Timezone is the editor's IANA display timezone, UTC when empty
	Timezone string              `json:"timezone,omitempty"`
	Changes  EventChangesPayload `json:"changes"`

	ForceUpdate bool `json:"force_update,omitempty"`
	// NotifyAttendees pre-answers the update confirmation: yes, no, or cancel
	NotifyAttendees string `json:"notify_attendees,omitempty"`
	// AllowInsecurePassword pre-answers the insecure password confirmation
	AllowInsecurePassword bool `json:"allow_insecure_password,omitempty"`
}

// DeleteEventRequest is the inbound payload on the delete subject
type DeleteEventRequest struct {
	Editor   EditorPayload   `json:"editor"`
	Calendar CalendarPayload `json:"calendar"`
	EventUID string          `json:"event_uid"`
	Timezone string          `json:"timezone,omitempty"`
}

// ExcludeOccurrenceRequest is the inbound payload on the exclusion subject
type ExcludeOccurrenceRequest struct {
	EventUID string `json:"event_uid"`
	// OccurrenceStart is the RFC 3339 start instant of the occurrence to drop
	OccurrenceStart string `json:"occurrence_start"`
}

// SaveEventResponse is the reply payload on the save subject
type SaveEventResponse struct {
	Status   string               `json:"status"`
	Event    *model.CalendarEvent `json:"event,omitempty"`
	Revision uint64               `json:"revision,omitempty"`
}

// ExcludeOccurrenceResponse is the reply payload on the exclusion subject
type ExcludeOccurrenceResponse struct {
	Event    *model.CalendarEvent `json:"event"`
	Revision uint64               `json:"revision"`
}

// ErrorResponse is the reply payload for failed requests
type ErrorResponse struct {
	Error string `json:"error"`
}

func convertAddressPayloadToDomain(p AddressPayload) model.EventAddress {
	return model.EventAddress{Name: p.Name, Email: p.Email}
}

func convertEditorPayloadToDomain(p EditorPayload) model.Editor {
	editor := model.Editor{
		DefaultSender: convertAddressPayloadToDomain(p.DefaultSender),
		AccountUID:    p.AccountUID,
		AccountTier:   p.AccountTier,
	}
	for _, address := range p.OwnAddresses {
		editor.OwnAddresses = append(editor.OwnAddresses, convertAddressPayloadToDomain(address))
	}
	// The default sender is always part of the editor's alias set
	if !editor.DefaultSender.BelongsTo(editor.OwnAddresses) {
		editor.OwnAddresses = append(editor.OwnAddresses, editor.DefaultSender)
	}
	return editor
}

func convertCalendarPayloadToDomain(p CalendarPayload) model.CalendarInfo {
	return model.CalendarInfo{
		UID:      p.UID,
		GroupUID: p.GroupUID,
		Shared:   p.Shared,
		Name:     p.Name,
	}
}
