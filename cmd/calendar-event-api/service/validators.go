// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/utils"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04"
)

func validateAddress(p AddressPayload, field string) error {
	if p.Email == "" {
		return errors.NewValidation(fmt.Sprintf("%s email is required", field))
	}
	if _, err := mail.ParseAddress(p.Email); err != nil {
		return errors.NewValidation(fmt.Sprintf("%s email is not a valid address", field), err)
	}
	return nil
}

func validateEditor(p EditorPayload) error {
	if err := validateAddress(p.DefaultSender, "editor default sender"); err != nil {
		return err
	}
	for _, address := range p.OwnAddresses {
		if err := validateAddress(address, "editor alias"); err != nil {
			return err
		}
	}
	return nil
}

func validateSaveRequest(req *SaveEventRequest) error {
	if err := validateEditor(req.Editor); err != nil {
		return err
	}
	if req.Calendar.UID == "" {
		return errors.NewValidation("calendar uid is required")
	}

	switch req.NotifyAttendees {
	case "", string(notifyYes), string(notifyNo), string(notifyCancel):
	default:
		return errors.NewValidation("notify_attendees must be yes, no, or cancel")
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			return errors.NewValidation("timezone is not a valid IANA zone name", err)
		}
	}

	return validateChanges(&req.Changes)
}

func validateChanges(changes *EventChangesPayload) error {
	for field, value := range map[string]*string{
		"start_date":        changes.StartDate,
		"end_date":          changes.EndDate,
		"repeat_until_date": changes.RepeatUntilDate,
	} {
		if value == nil {
			continue
		}
		if _, err := time.Parse(dateLayout, *value); err != nil {
			return errors.NewValidation(fmt.Sprintf("%s must use the %s layout", field, dateLayout), err)
		}
	}

	for field, value := range map[string]*string{
		"start_time": changes.StartTime,
		"end_time":   changes.EndTime,
	} {
		if value == nil {
			continue
		}
		if _, err := time.Parse(timeLayout, *value); err != nil {
			return errors.NewValidation(fmt.Sprintf("%s must use the %s layout", field, timeLayout), err)
		}
	}

	if changes.RepeatFrequency != nil {
		switch model.RepeatFrequency(*changes.RepeatFrequency) {
		case "", model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyAnnually:
		default:
			return errors.NewValidation("repeat_frequency must be daily, weekly, monthly, or annually")
		}
	}

	if changes.RepeatEndType != nil {
		switch model.RepeatEndType(*changes.RepeatEndType) {
		case model.EndTypeNever, model.EndTypeCount, model.EndTypeUntilDate:
		default:
			return errors.NewValidation("repeat_end_type must be never, count, or until")
		}
	}

	if changes.OwnAttendance != nil {
		if !model.AttendeeStatus(*changes.OwnAttendance).IsResponse() {
			return errors.NewValidation("own_attendance must be accepted, declined, or tentative")
		}
	}

	for _, guest := range changes.AddGuests {
		if err := validateAddress(guest.Address, "guest"); err != nil {
			return err
		}
	}
	if changes.Organizer != nil {
		if err := validateAddress(*changes.Organizer, "organizer"); err != nil {
			return err
		}
	}

	return nil
}

func validateDeleteRequest(req *DeleteEventRequest) error {
	if err := validateEditor(req.Editor); err != nil {
		return err
	}
	if req.Calendar.UID == "" {
		return errors.NewValidation("calendar uid is required")
	}
	if req.EventUID == "" {
		return errors.NewValidation("event uid is required")
	}
	return nil
}

func validateExcludeRequest(req *ExcludeOccurrenceRequest) (time.Time, error) {
	if req.EventUID == "" {
		return time.Time{}, errors.NewValidation("event uid is required")
	}
	occurrenceStart, err := utils.ValidateRFC3339(req.OccurrenceStart)
	if err != nil {
		return time.Time{}, errors.NewValidation("occurrence_start must be an RFC 3339 instant", err)
	}
	return occurrenceStart, nil
}
