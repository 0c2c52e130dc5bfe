// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mailgateway

import (
	"bytes"
	"strconv"
	"time"

	"github.com/emersion/go-ical"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	errs "github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

const productID = "-//Linux Foundation//LFX Calendar Event Service//EN"

// iTIP methods understood by the mail gateway
const (
	methodRequest = "REQUEST"
	methodCancel  = "CANCEL"
	methodReply   = "REPLY"
)

// encodeITIP renders the event as an iCalendar iTIP message. The attendee
// set is passed explicitly because replies carry only the responding
// attendee, not the full participant list.
func encodeITIP(event *model.CalendarEvent, method string, attendees []model.Attendee) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Props.SetText(ical.PropMethod, method)
	cal.Children = append(cal.Children, eventComponent(event, attendees))

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, errs.NewUnexpected("failed to encode calendar payload", err)
	}
	return buf.Bytes(), nil
}

func eventComponent(event *model.CalendarEvent, attendees []model.Attendee) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, event.UID)
	ve.Props.SetText(ical.PropSummary, event.Summary)
	ve.Props.SetText(ical.PropSequence, strconv.FormatInt(event.Sequence, 10))
	ve.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, event.StartTime)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, event.EndTime)

	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	if event.Confidential {
		ve.Props.SetText(ical.PropClass, "CONFIDENTIAL")
	}
	if event.RecurrenceText != "" {
		ve.Props.SetText(ical.PropRecurrenceRule, event.RecurrenceText)
	}
	if event.RepeatRule != nil {
		for _, excluded := range event.RepeatRule.ExcludedDates {
			p := ical.NewProp(ical.PropExceptionDates)
			p.SetDateTime(excluded)
			ve.Props.Add(p)
		}
	}

	if event.Organizer != nil {
		ve.Props.Add(addressProp(ical.PropOrganizer, *event.Organizer, ""))
	}
	for _, attendee := range attendees {
		ve.Props.Add(addressProp(ical.PropAttendee, attendee.Address, partStat(attendee.Status)))
	}

	return ve
}

func addressProp(name string, address model.EventAddress, participation string) *ical.Prop {
	p := ical.NewProp(name)
	p.SetText("mailto:" + address.NormalizedEmail())
	if address.Name != "" {
		p.Params.Set(ical.ParamCommonName, address.Name)
	}
	if participation != "" {
		p.Params.Set(ical.ParamParticipationStatus, participation)
	}
	return p
}

func partStat(status model.AttendeeStatus) string {
	switch status {
	case model.StatusAccepted:
		return "ACCEPTED"
	case model.StatusDeclined:
		return "DECLINED"
	case model.StatusTentative:
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}
