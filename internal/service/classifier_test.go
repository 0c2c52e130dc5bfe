// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/infrastructure/mock"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
)

func testEditor() model.Editor {
	return model.Editor{
		DefaultSender: model.EventAddress{Name: "Alice", Email: "alice@example.com"},
		OwnAddresses: []model.EventAddress{
			{Name: "Alice", Email: "alice@example.com"},
			{Name: "Alice Work", Email: "alice@work.example.com"},
		},
		AccountUID:  "account-alice",
		AccountTier: constants.AccountTierPaid,
	}
}

func timedEvent(calendarUID string, attendees ...model.Attendee) *model.CalendarEvent {
	start := time.Date(2023, 3, 12, 10, 0, 0, 0, time.UTC)
	return &model.CalendarEvent{
		UID:         "event-1",
		CalendarUID: calendarUID,
		Summary:     "Planning sync",
		StartTime:   start,
		EndTime:     start.Add(time.Hour),
		Attendees:   attendees,
	}
}

func TestClassifyEvent(t *testing.T) {
	editor := testEditor()
	self := model.EventAddress{Name: "Alice", Email: "alice@example.com"}
	other := model.EventAddress{Name: "Bob", Email: "bob@other.example.com"}
	guest := model.Attendee{Address: other, Status: model.StatusAccepted}

	ownCalendar := model.CalendarInfo{UID: "cal-own", Name: "Private"}
	sharedCalendar := model.CalendarInfo{UID: "cal-shared", GroupUID: "group-1", Shared: true, Name: "Team"}
	calendars := map[string]model.CalendarInfo{
		ownCalendar.UID:    ownCalendar,
		sharedCalendar.UID: sharedCalendar,
	}

	testCases := []struct {
		name               string
		original           *model.CalendarEvent
		grantWrite         bool
		expectedType       model.EventType
		expectedOrganizer  *model.EventAddress
		expectedPossible   []model.EventAddress
		expectOwnAddresses bool
	}{
		{
			name:               "no original event",
			original:           nil,
			expectedType:       model.EventTypeOwn,
			expectedOrganizer:  &self,
			expectOwnAddresses: true,
		},
		{
			name: "calendar not visible yields invite with copied organizer",
			original: func() *model.CalendarEvent {
				event := timedEvent("cal-foreign", guest)
				event.Organizer = &other
				return event
			}(),
			expectedType:      model.EventTypeInvite,
			expectedOrganizer: &other,
			expectedPossible:  []model.EventAddress{other},
		},
		{
			name:         "calendar not visible without organizer",
			original:     timedEvent("cal-foreign"),
			expectedType: model.EventTypeInvite,
		},
		{
			name: "shared calendar without write capability",
			original: func() *model.CalendarEvent {
				event := timedEvent(sharedCalendar.UID, guest)
				event.Organizer = &other
				return event
			}(),
			expectedType:      model.EventTypeSharedReadOnly,
			expectedOrganizer: &other,
			expectedPossible:  []model.EventAddress{other},
		},
		{
			name: "shared calendar with write capability",
			original: func() *model.CalendarEvent {
				event := timedEvent(sharedCalendar.UID, guest)
				event.Organizer = &other
				return event
			}(),
			grantWrite:        true,
			expectedType:      model.EventTypeSharedReadWrite,
			expectedOrganizer: &other,
			expectedPossible:  []model.EventAddress{other},
		},
		{
			name: "own calendar with own organizer and guests locks organizer",
			original: func() *model.CalendarEvent {
				event := timedEvent(ownCalendar.UID,
					model.Attendee{Address: self, Status: model.StatusAccepted},
					guest,
				)
				event.Organizer = &self
				return event
			}(),
			expectedType:      model.EventTypeOwn,
			expectedOrganizer: &self,
			expectedPossible:  []model.EventAddress{self},
		},
		{
			name: "own calendar with no organizer and no guests keeps aliases open",
			original: func() *model.CalendarEvent {
				return timedEvent(ownCalendar.UID)
			}(),
			expectedType:       model.EventTypeOwn,
			expectedOrganizer:  &self,
			expectOwnAddresses: true,
		},
		{
			name: "own calendar where the only attendee is the editor counts as no guests",
			original: func() *model.CalendarEvent {
				event := timedEvent(ownCalendar.UID,
					model.Attendee{Address: self, Status: model.StatusAccepted},
				)
				event.Organizer = &other
				return event
			}(),
			expectedType:       model.EventTypeOwn,
			expectedOrganizer:  &self,
			expectOwnAddresses: true,
		},
		{
			name: "own calendar with foreign organizer and real guests is an invite",
			original: func() *model.CalendarEvent {
				event := timedEvent(ownCalendar.UID,
					model.Attendee{Address: self, Status: model.StatusNeedsAction},
					guest,
				)
				event.Organizer = &other
				return event
			}(),
			expectedType:      model.EventTypeInvite,
			expectedOrganizer: &other,
			expectedPossible:  []model.EventAddress{other},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			capabilities := mock.NewMockCapabilityChecker()
			if tc.grantWrite {
				capabilities.Grant(editor.AccountUID, sharedCalendar.GroupUID, constants.CapabilityWrite)
			}

			classification := ClassifyEvent(context.Background(), tc.original, calendars, editor, capabilities)

			assert.Equal(t, tc.expectedType, classification.Type)
			if tc.expectedOrganizer != nil {
				require.NotNil(t, classification.Organizer)
				assert.True(t, classification.Organizer.SameAddress(*tc.expectedOrganizer))
			} else {
				assert.Nil(t, classification.Organizer)
			}
			if tc.expectOwnAddresses {
				assert.Equal(t, editor.OwnAddresses, classification.PossibleOrganizers)
			} else if tc.expectedPossible != nil {
				require.Len(t, classification.PossibleOrganizers, len(tc.expectedPossible))
				for i, possible := range tc.expectedPossible {
					assert.True(t, classification.PossibleOrganizers[i].SameAddress(possible))
				}
			} else {
				assert.Empty(t, classification.PossibleOrganizers)
			}
		})
	}
}

func TestClassificationPermissions(t *testing.T) {
	testCases := []struct {
		name                 string
		eventType            model.EventType
		hasGuests            bool
		canModifyGuests      bool
		canModifyOrganizer   bool
		canModifyAttendance  bool
		readOnly             bool
	}{
		{
			name:                "own event without guests",
			eventType:           model.EventTypeOwn,
			canModifyGuests:     true,
			canModifyOrganizer:  true,
			canModifyAttendance: true,
		},
		{
			name:                "own event with guests locks organizer",
			eventType:           model.EventTypeOwn,
			hasGuests:           true,
			canModifyGuests:     true,
			canModifyAttendance: true,
		},
		{
			name:      "shared read-only",
			eventType: model.EventTypeSharedReadOnly,
			readOnly:  true,
		},
		{
			name:      "shared read-write",
			eventType: model.EventTypeSharedReadWrite,
		},
		{
			name:                "invite allows own attendance only",
			eventType:           model.EventTypeInvite,
			hasGuests:           true,
			canModifyAttendance: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			classification := model.EventClassification{Type: tc.eventType}
			assert.Equal(t, tc.canModifyGuests, classification.CanModifyGuests())
			assert.Equal(t, tc.canModifyOrganizer, classification.CanModifyOrganizer(tc.hasGuests))
			assert.Equal(t, tc.canModifyAttendance, classification.CanModifyOwnAttendance())
			assert.Equal(t, tc.readOnly, classification.IsReadOnly())
		})
	}
}
