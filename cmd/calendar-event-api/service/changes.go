// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"time"

	internalservice "github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/service"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// applyChanges replays the request's field edits onto the draft. The payload
// is validated before this runs, so layout parses cannot fail here.
func applyChanges(draft *internalservice.EventDraft, changes *EventChangesPayload) error {
	if changes.Summary != nil {
		draft.SetSummary(*changes.Summary)
	}
	if changes.Location != nil {
		draft.SetLocation(*changes.Location)
	}
	if changes.Description != nil {
		draft.SetDescription(*changes.Description)
	}
	if changes.Confidential != nil {
		draft.SetConfidential(*changes.Confidential)
	}

	if changes.AllDay != nil {
		draft.SetAllDay(*changes.AllDay)
	}
	if changes.StartDate != nil {
		date, _ := time.Parse(dateLayout, *changes.StartDate)
		draft.SetStartDate(date)
	}
	if changes.EndDate != nil {
		date, _ := time.Parse(dateLayout, *changes.EndDate)
		draft.SetEndDate(date)
	}
	if changes.StartTime != nil {
		draft.SetStartTime(parseTimeOfDay(*changes.StartTime))
	}
	if changes.EndTime != nil {
		draft.SetEndTime(parseTimeOfDay(*changes.EndTime))
	}

	if changes.RepeatFrequency != nil {
		draft.SetRepeatFrequency(model.RepeatFrequency(*changes.RepeatFrequency))
	}
	if changes.RepeatInterval != nil {
		draft.SetRepeatInterval(*changes.RepeatInterval)
	}
	if changes.RepeatEndType != nil {
		draft.SetRepeatEndType(model.RepeatEndType(*changes.RepeatEndType))
	}
	if changes.RepeatEndCount != nil {
		draft.SetRepeatEndCount(*changes.RepeatEndCount)
	}
	if changes.RepeatUntilDate != nil {
		until, _ := time.Parse(dateLayout, *changes.RepeatUntilDate)
		draft.SetRepeatUntilDate(until)
	}

	for _, guest := range changes.AddGuests {
		address := convertAddressPayloadToDomain(guest.Address)
		if _, err := draft.AddGuest(address, nil); err != nil {
			return err
		}
		if guest.Password != "" {
			draft.Rosters().SetPassword(address.Email, guest.Password)
			if guest.PasswordConfirmed {
				draft.Rosters().ConfirmPassword(address.Email)
			}
		}
	}
	for _, email := range changes.RemoveAttendees {
		if _, err := draft.RemoveAttendee(model.EventAddress{Email: email}); err != nil {
			return err
		}
	}

	if changes.Organizer != nil {
		if err := draft.SetOrganizer(convertAddressPayloadToDomain(*changes.Organizer)); err != nil {
			return err
		}
	}
	if changes.OwnAttendance != nil {
		if err := draft.SetOwnAttendance(model.AttendeeStatus(*changes.OwnAttendance)); err != nil {
			return err
		}
	}

	for _, trigger := range changes.AddAlarms {
		draft.AddAlarm(trigger)
	}

	return nil
}

func parseTimeOfDay(value string) model.TimeOfDay {
	parsed, _ := time.Parse(timeLayout, value)
	return model.TimeOfDay{Hour: parsed.Hour(), Minute: parsed.Minute()}
}
