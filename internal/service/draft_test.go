// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	errs "github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

func newTestDraft(t *testing.T, original *model.CalendarEvent, classification model.EventClassification) *EventDraft {
	t.Helper()
	return NewEventDraft(DraftOptions{
		Editor: testEditor(),
		Calendar: model.CalendarInfo{
			UID:  "cal-own",
			Name: "Private",
		},
		Original:       original,
		Classification: classification,
		Zone:           time.UTC,
		Now:            time.Date(2023, 3, 12, 9, 30, 0, 0, time.UTC),
	})
}

func ownClassification() model.EventClassification {
	editor := testEditor()
	organizer := editor.DefaultSender
	return model.EventClassification{
		Type:               model.EventTypeOwn,
		Organizer:          &organizer,
		PossibleOrganizers: editor.OwnAddresses,
	}
}

func recurringDraft(t *testing.T, exclusions ...time.Time) *EventDraft {
	t.Helper()
	draft := newTestDraft(t, nil, ownClassification())
	draft.SetRepeatFrequency(model.FrequencyWeekly)
	for _, excluded := range exclusions {
		draft.RepeatRule().InsertExcludedDate(excluded)
	}
	return draft
}

func TestNewDraftDefaults(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())

	event, err := draft.Materialize(time.Date(2023, 3, 12, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)

	// Defaults: next full hour, one hour long, same day
	assert.Equal(t, time.Date(2023, 3, 12, 10, 0, 0, 0, time.UTC), event.StartTime)
	assert.Equal(t, time.Date(2023, 3, 12, 11, 0, 0, 0, time.UTC), event.EndTime)
	assert.False(t, event.AllDay)
	assert.NotEmpty(t, event.UID)
}

func TestSetStartDateShiftsEndAndClearsExclusions(t *testing.T) {
	draft := recurringDraft(t, time.Date(2023, 3, 19, 10, 0, 0, 0, time.UTC))
	draft.SetEndDate(time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC))

	// Moving the start two days forward drags the end along
	draft.SetStartDate(time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC))

	event, err := draft.Materialize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 14, event.StartTime.Day())
	assert.Equal(t, 16, event.EndTime.Day())
	assert.Empty(t, draft.RepeatRule().ExcludedDates)
}

func TestSetStartDateShiftsEndAcrossDSTTransition(t *testing.T) {
	zone, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks spring forward on March 12, 2023: midnight-to-midnight across
	// that day is only 23 elapsed hours
	draft := NewEventDraft(DraftOptions{
		Editor:         testEditor(),
		Calendar:       model.CalendarInfo{UID: "cal-own"},
		Classification: ownClassification(),
		Zone:           zone,
		Now:            time.Date(2023, 3, 10, 9, 30, 0, 0, zone),
	})
	draft.SetStartDate(time.Date(2023, 3, 12, 0, 0, 0, 0, zone))
	draft.SetEndDate(time.Date(2023, 3, 14, 0, 0, 0, 0, zone))
	draft.SetStartTime(model.TimeOfDay{Hour: 10})
	draft.SetEndTime(model.TimeOfDay{Hour: 11})

	// Moving the start one calendar day forward drags the end one day too
	draft.SetStartDate(time.Date(2023, 3, 13, 0, 0, 0, 0, zone))

	event, err := draft.Materialize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, 13, event.StartTime.In(zone).Day())
	assert.Equal(t, 15, event.EndTime.In(zone).Day())
}

func TestSetStartDateClampsPreMinimumEra(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())

	draft.SetStartDate(time.Date(1969, 7, 20, 0, 0, 0, 0, time.UTC))

	event, err := draft.Materialize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, time.Now().Year(), event.StartTime.Year())
	assert.Equal(t, time.July, event.StartTime.Month())
	assert.Equal(t, 20, event.StartTime.Day())
}

func TestSetStartTimePreservesDurationOnSameDay(t *testing.T) {
	testCases := []struct {
		name        string
		start       model.TimeOfDay
		end         model.TimeOfDay
		newStart    model.TimeOfDay
		expectedEnd model.TimeOfDay
	}{
		{
			name:        "shift keeps one hour duration",
			start:       model.TimeOfDay{Hour: 10},
			end:         model.TimeOfDay{Hour: 11},
			newStart:    model.TimeOfDay{Hour: 14},
			expectedEnd: model.TimeOfDay{Hour: 15},
		},
		{
			name:        "adjusted hour caps at 23",
			start:       model.TimeOfDay{Hour: 10},
			end:         model.TimeOfDay{Hour: 12},
			newStart:    model.TimeOfDay{Hour: 22, Minute: 30},
			expectedEnd: model.TimeOfDay{Hour: 23, Minute: 30},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			draft := newTestDraft(t, nil, ownClassification())
			draft.SetStartTime(tc.start)
			draft.SetEndTime(tc.end)

			draft.SetStartTime(tc.newStart)

			event, err := draft.Materialize(time.Now())
			require.NoError(t, err)
			assert.Equal(t, tc.expectedEnd.Hour, event.EndTime.Hour())
			assert.Equal(t, tc.expectedEnd.Minute, event.EndTime.Minute())
		})
	}
}

func TestSetAllDayReprojectsExclusions(t *testing.T) {
	draft := recurringDraft(t)
	draft.SetStartTime(model.TimeOfDay{Hour: 10})
	draft.RepeatRule().InsertExcludedDate(time.Date(2023, 3, 19, 10, 0, 0, 0, time.UTC))

	draft.SetAllDay(true)
	require.Len(t, draft.RepeatRule().ExcludedDates, 1)
	assert.Equal(t, time.Date(2023, 3, 19, 0, 0, 0, 0, time.UTC), draft.RepeatRule().ExcludedDates[0])

	// Switching back re-anchors the marker at the start time of day
	draft.SetAllDay(false)
	require.Len(t, draft.RepeatRule().ExcludedDates, 1)
	assert.Equal(t, time.Date(2023, 3, 19, 10, 0, 0, 0, time.UTC), draft.RepeatRule().ExcludedDates[0])
}

func TestRecurrenceSettersInvalidateExclusions(t *testing.T) {
	excluded := time.Date(2023, 3, 19, 10, 0, 0, 0, time.UTC)

	testCases := []struct {
		name   string
		mutate func(*EventDraft)
		// cleared reports whether the exclusion list should be empty afterwards
		cleared bool
	}{
		{
			name:    "changing frequency clears",
			mutate:  func(d *EventDraft) { d.SetRepeatFrequency(model.FrequencyDaily) },
			cleared: true,
		},
		{
			name:    "re-setting the same frequency leaves exclusions untouched",
			mutate:  func(d *EventDraft) { d.SetRepeatFrequency(model.FrequencyWeekly) },
			cleared: false,
		},
		{
			name:    "changing interval clears",
			mutate:  func(d *EventDraft) { d.SetRepeatInterval(2) },
			cleared: true,
		},
		{
			name:    "re-setting the same interval leaves exclusions untouched",
			mutate:  func(d *EventDraft) { d.SetRepeatInterval(1) },
			cleared: false,
		},
		{
			name:    "changing end type clears",
			mutate:  func(d *EventDraft) { d.SetRepeatEndType(model.EndTypeCount) },
			cleared: true,
		},
		{
			name:    "changing end count clears",
			mutate:  func(d *EventDraft) { d.SetRepeatEndCount(5) },
			cleared: true,
		},
		{
			name:    "changing until date clears",
			mutate:  func(d *EventDraft) { d.SetRepeatUntilDate(time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)) },
			cleared: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			draft := recurringDraft(t, excluded)
			require.NotEmpty(t, draft.RepeatRule().ExcludedDates)

			tc.mutate(draft)

			if tc.cleared {
				assert.Empty(t, draft.RepeatRule().ExcludedDates)
			} else {
				assert.Len(t, draft.RepeatRule().ExcludedDates, 1)
			}
		})
	}
}

func TestSetRepeatEndTypeSeedsDefaults(t *testing.T) {
	draft := recurringDraft(t)
	draft.SetStartDate(time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC))

	draft.SetRepeatEndType(model.EndTypeUntilDate)
	assert.Equal(t, time.Date(2023, 4, 14, 0, 0, 0, 0, time.UTC), draft.RepeatRule().UntilDate)

	draft.SetRepeatEndType(model.EndTypeCount)
	assert.Equal(t, 1, draft.RepeatRule().EndCount)
}

func TestAlarmLifecycle(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())

	first := draft.AddAlarm("-PT10M")
	second := draft.AddAlarm("-PT1H")
	require.NotEqual(t, first, second)
	assert.Len(t, draft.Alarms(), 2)

	assert.True(t, draft.ChangeAlarm(first, "-PT30M"))
	alarms := draft.Alarms()
	assert.Equal(t, "-PT30M", alarms[0].Trigger)

	// Empty trigger removes
	assert.True(t, draft.ChangeAlarm(second, ""))
	assert.Len(t, draft.Alarms(), 1)

	assert.False(t, draft.ChangeAlarm("no-such-alarm", "-PT5M"))
}

func TestAddGuestSelfInviteSuppression(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())

	// Adding one of the editor's own addresses never creates an invite entry
	added, err := draft.AddGuest(model.EventAddress{Name: "Alice Work", Email: "alice@work.example.com"}, nil)
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, 0, draft.Rosters().Roster(model.RosterInvite).Len())

	self := draft.SelfAttendee()
	require.NotNil(t, self)
	assert.Equal(t, "alice@work.example.com", self.Address.Email)
	assert.Equal(t, model.StatusAccepted, self.Status)

	// The organizer-eligible alias replaced the current organizer
	require.NotNil(t, draft.Organizer())
	assert.Equal(t, "alice@work.example.com", draft.Organizer().Email)
}

func TestAddGuestAutoJoinsEditor(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())

	added, err := draft.AddGuest(model.EventAddress{Email: "x@ex.com"}, nil)
	require.NoError(t, err)
	require.True(t, added)

	attendees := draft.Attendees()
	require.Len(t, attendees, 2)
	assert.Equal(t, "alice@example.com", attendees[0].Address.Email)
	assert.Equal(t, model.StatusAccepted, attendees[0].Status)
	assert.Equal(t, "x@ex.com", attendees[1].Address.Email)
	assert.Equal(t, model.StatusAddedPending, attendees[1].Status)

	// Duplicate adds are no-ops
	added, err = draft.AddGuest(model.EventAddress{Email: "X@EX.COM"}, nil)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, draft.Attendees(), 2)
}

func TestRemoveAttendeeQueuesCancellationForOriginalAttendees(t *testing.T) {
	other := model.EventAddress{Name: "Bob", Email: "bob@other.example.com"}
	original := timedEvent("cal-own",
		model.Attendee{Address: model.EventAddress{Email: "alice@example.com"}, Status: model.StatusAccepted},
		model.Attendee{Address: other, Status: model.StatusAccepted},
	)
	self := model.EventAddress{Email: "alice@example.com"}
	original.Organizer = &self

	draft := newTestDraft(t, original, ownClassification())

	// Hydration placed bob on the update roster
	kind, held := draft.Rosters().Holding("bob@other.example.com")
	require.True(t, held)
	assert.Equal(t, model.RosterUpdate, kind)

	removed, err := draft.RemoveAttendee(other)
	require.NoError(t, err)
	require.True(t, removed)

	kind, held = draft.Rosters().Holding("bob@other.example.com")
	require.True(t, held)
	assert.Equal(t, model.RosterCancel, kind)

	// A guest never persisted gets no cancellation entry
	_, err = draft.AddGuest(model.EventAddress{Email: "new@ex.com"}, nil)
	require.NoError(t, err)
	removed, err = draft.RemoveAttendee(model.EventAddress{Email: "new@ex.com"})
	require.NoError(t, err)
	require.True(t, removed)
	_, held = draft.Rosters().Holding("new@ex.com")
	assert.False(t, held)
}

func TestGuestMutationsRequireOwnEvent(t *testing.T) {
	guest := model.EventAddress{Email: "bob@other.example.com"}
	original := timedEvent("cal-shared",
		model.Attendee{Address: model.EventAddress{Email: "alice@example.com"}, Status: model.StatusAccepted},
		model.Attendee{Address: guest, Status: model.StatusAccepted},
	)

	for _, eventType := range []model.EventType{model.EventTypeSharedReadOnly, model.EventTypeInvite} {
		t.Run(string(eventType), func(t *testing.T) {
			draft := newTestDraft(t, original, model.EventClassification{Type: eventType})

			added, err := draft.AddGuest(model.EventAddress{Email: "x@ex.com"}, nil)
			require.Error(t, err)
			assert.ErrorAs(t, err, &errs.Forbidden{})
			assert.False(t, added)

			removed, err := draft.RemoveAttendee(guest)
			require.Error(t, err)
			assert.ErrorAs(t, err, &errs.Forbidden{})
			assert.False(t, removed)

			// The attendee list is untouched
			assert.Len(t, draft.Attendees(), 2)
		})
	}
}

func TestSetOrganizerRequiresOwnEventWithoutGuests(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())
	workAlias := model.EventAddress{Email: "alice@work.example.com"}

	require.NoError(t, draft.SetOrganizer(workAlias))
	assert.Equal(t, "alice@work.example.com", draft.Organizer().Email)
	require.NotNil(t, draft.SelfAttendee())

	// Guests lock the organizer
	_, err := draft.AddGuest(model.EventAddress{Email: "x@ex.com"}, nil)
	require.NoError(t, err)
	err = draft.SetOrganizer(model.EventAddress{Email: "alice@example.com"})
	require.Error(t, err)
	assert.ErrorAs(t, err, &errs.Forbidden{})

	// Foreign addresses are rejected outright
	empty := newTestDraft(t, nil, ownClassification())
	err = empty.SetOrganizer(model.EventAddress{Email: "stranger@ex.com"})
	require.Error(t, err)
	assert.ErrorAs(t, err, &errs.Validation{})
}

func TestMaterializeAllDayBoundaries(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())
	draft.SetStartDate(time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC))
	draft.SetEndDate(time.Date(2023, 3, 15, 0, 0, 0, 0, time.UTC))
	draft.SetAllDay(true)

	event, err := draft.Materialize(time.Now())
	require.NoError(t, err)
	assert.True(t, event.AllDay)
	assert.Equal(t, time.Date(2023, 3, 14, 0, 0, 0, 0, time.UTC), event.StartTime)
	// The end boundary is the midnight after the last day
	assert.Equal(t, time.Date(2023, 3, 16, 0, 0, 0, 0, time.UTC), event.EndTime)
}

func TestMaterializeRejectsEndBeforeStart(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())
	draft.SetStartTime(model.TimeOfDay{Hour: 12})
	draft.SetEndTime(model.TimeOfDay{Hour: 10})

	_, err := draft.Materialize(time.Now())
	require.Error(t, err)
	assert.ErrorAs(t, err, &errs.Validation{})
}

func TestMaterializeSequence(t *testing.T) {
	original := timedEvent("cal-own")
	original.Sequence = 3
	self := model.EventAddress{Email: "alice@example.com"}
	original.Organizer = &self

	// Own events always advance the counter
	draft := newTestDraft(t, original, ownClassification())
	event, err := draft.Materialize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(4), event.Sequence)
	assert.Equal(t, original.UID, event.UID)

	// A guest's first save of a received event keeps sequence zero
	received := timedEvent("cal-own")
	received.Sequence = 0
	inviteDraft := newTestDraft(t, received, model.EventClassification{Type: model.EventTypeInvite})
	event, err = inviteDraft.Materialize(time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), event.Sequence)
}

func TestMaterializeDerivesStableUID(t *testing.T) {
	draft := newTestDraft(t, nil, ownClassification())
	now := time.Date(2023, 3, 12, 9, 30, 0, 0, time.UTC)

	first, err := draft.Materialize(now)
	require.NoError(t, err)
	second, err := draft.Materialize(now)
	require.NoError(t, err)

	assert.NotEmpty(t, first.UID)
	assert.Equal(t, first.UID, second.UID)
}
