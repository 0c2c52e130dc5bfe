// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mailgateway

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

func testEvent() *model.CalendarEvent {
	return &model.CalendarEvent{
		UID:         "event-1",
		CalendarUID: "calendar-1",
		Summary:     "Planning sync",
		Location:    "Room 4",
		StartTime:   time.Date(2023, 3, 12, 10, 0, 0, 0, time.UTC),
		EndTime:     time.Date(2023, 3, 12, 11, 0, 0, 0, time.UTC),
		Sequence:    2,
		Organizer:   &model.EventAddress{Name: "Alice", Email: "alice@example.com"},
		Attendees: []model.Attendee{
			{Address: model.EventAddress{Email: "alice@example.com"}, Status: model.StatusAccepted},
			{Address: model.EventAddress{Email: "bob@example.com"}, Status: model.StatusNeedsAction},
		},
	}
}

func TestEncodeITIPInvite(t *testing.T) {
	event := testEvent()

	payload, err := encodeITIP(event, methodRequest, event.Attendees)
	require.NoError(t, err)

	text := string(payload)
	assert.Contains(t, text, "METHOD:REQUEST")
	assert.Contains(t, text, "UID:event-1")
	assert.Contains(t, text, "SUMMARY:Planning sync")
	assert.Contains(t, text, "SEQUENCE:2")
	assert.Contains(t, text, "ORGANIZER;CN=Alice:mailto:alice@example.com")
	assert.Contains(t, text, "PARTSTAT=ACCEPTED:mailto:alice@example.com")
	assert.Contains(t, text, "PARTSTAT=NEEDS-ACTION:mailto:bob@example.com")
}

func TestEncodeITIPReplyCarriesOnlyResponder(t *testing.T) {
	event := testEvent()
	reply := []model.Attendee{
		{Address: model.EventAddress{Email: "alice@example.com"}, Status: model.StatusDeclined},
	}

	payload, err := encodeITIP(event, methodReply, reply)
	require.NoError(t, err)

	text := string(payload)
	assert.Contains(t, text, "METHOD:REPLY")
	assert.Contains(t, text, "PARTSTAT=DECLINED:mailto:alice@example.com")
	assert.NotContains(t, text, "bob@example.com")
}

func TestEncodeITIPConfidentialRecurring(t *testing.T) {
	event := testEvent()
	event.Confidential = true
	event.RecurrenceText = "FREQ=WEEKLY;INTERVAL=1"
	event.RepeatRule = &model.RepeatRule{
		Frequency: model.FrequencyWeekly,
		Interval:  1,
		EndType:   model.EndTypeNever,
		ExcludedDates: []time.Time{
			time.Date(2023, 3, 19, 10, 0, 0, 0, time.UTC),
		},
	}

	payload, err := encodeITIP(event, methodRequest, event.Attendees)
	require.NoError(t, err)

	text := string(payload)
	assert.Contains(t, text, "CLASS:CONFIDENTIAL")
	assert.Contains(t, text, "RRULE:FREQ=WEEKLY;INTERVAL=1")
	assert.Contains(t, text, "EXDATE:20230319T100000Z")
}
