// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// EventDraft is the mutable working copy of one edit session. It is created
// either empty (new event) or hydrated from a persisted snapshot; the
// original snapshot is never mutated, and materialization always allocates a
// fresh output. Drafts are single-owner: no concurrent edit sessions share
// one draft.
type EventDraft struct {
	editor         model.Editor
	calendar       model.CalendarInfo
	classification model.EventClassification
	original       *model.CalendarEvent
	originalRev    uint64
	zone           *time.Location

	summary     string
	location    string
	description string

	startDate time.Time
	endDate   time.Time
	startTime *model.TimeOfDay
	endTime   *model.TimeOfDay
	allDay    bool

	repeat *model.RepeatRule
	alarms []model.Alarm

	organizer *model.EventAddress
	self      *model.Attendee

	rosters *RosterSet
	ledger  *AttendeeStatusLedger

	// processing is the single-flight guard for SaveAndSend
	processing atomic.Bool
}

// DraftOptions carries everything needed to open an edit session.
type DraftOptions struct {
	Editor   model.Editor
	Calendar model.CalendarInfo
	// Original is the persisted snapshot being edited, nil for a new event
	Original *model.CalendarEvent
	// OriginalRevision is the store revision of Original, used for optimistic updates
	OriginalRevision uint64
	Classification   model.EventClassification
	// Zone is the editor's display timezone; time.Local when nil
	Zone *time.Location
	// Now anchors default dates for new drafts; time.Now when zero
	Now time.Time
}

// NewEventDraft opens an edit session. A nil Original yields an empty draft
// with defaults populated from the current time; otherwise the draft is
// hydrated from the snapshot's fields.
func NewEventDraft(opts DraftOptions) *EventDraft {
	zone := opts.Zone
	if zone == nil {
		zone = time.Local
	}
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	d := &EventDraft{
		editor:         opts.Editor,
		calendar:       opts.Calendar,
		classification: opts.Classification,
		original:       opts.Original,
		originalRev:    opts.OriginalRevision,
		zone:           zone,
		rosters:        NewRosterSet(),
		ledger:         NewAttendeeStatusLedger(),
	}

	if opts.Original == nil {
		d.organizer = opts.Classification.Organizer
		d.initDefaults(now)
		return d
	}

	d.hydrate(opts.Original)
	return d
}

// initDefaults populates a new draft: start at the next full hour, one hour
// duration, same day.
func (d *EventDraft) initDefaults(now time.Time) {
	local := now.In(d.zone)
	d.startDate = dateOnly(local)
	d.endDate = d.startDate

	start := model.TimeOfDay{Hour: local.Hour() + 1}
	if start.Hour > 23 {
		start.Hour = 23
	}
	d.startTime = &start
	end := model.TimeOfDayFromMinutes(start.MinutesFromMidnight() + 60)
	d.endTime = &end
}

// hydrate copies a persisted snapshot into the working draft. Attendees that
// are not the editor land on the update roster, since they already received
// the event and future sends are updates, not invitations.
func (d *EventDraft) hydrate(original *model.CalendarEvent) {
	d.summary = original.Summary
	d.location = original.Location
	d.description = original.Description
	d.allDay = original.AllDay
	d.rosters.SetConfidential(original.Confidential)
	d.repeat = original.RepeatRule.Clone()

	if original.AllDay {
		start := original.StartTime.UTC()
		end := original.EndTime.UTC().Add(-24 * time.Hour)
		d.startDate = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, d.zone)
		d.endDate = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, d.zone)
	} else {
		start := original.StartTime.In(d.zone)
		end := original.EndTime.In(d.zone)
		d.startDate = dateOnly(start)
		d.endDate = dateOnly(end)
		d.startTime = &model.TimeOfDay{Hour: start.Hour(), Minute: start.Minute()}
		d.endTime = &model.TimeOfDay{Hour: end.Hour(), Minute: end.Minute()}
	}

	if original.Organizer != nil {
		organizer := *original.Organizer
		d.organizer = &organizer
	}

	for _, attendee := range original.Attendees {
		d.ledger.Set(attendee.Address.Email, attendee.Status)
		if attendee.Address.BelongsTo(d.editor.OwnAddresses) {
			self := attendee
			d.self = &self
			continue
		}
		d.rosters.Add(model.RosterUpdate, attendee.Address, nil)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// daysBetween counts calendar days from a to b. The dates are re-anchored in
// UTC so a DST transition between them cannot skew the count.
func daysBetween(a, b time.Time) int {
	utcA := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	utcB := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(utcB.Sub(utcA).Hours() / 24)
}

// Accessors

// Original returns the persisted snapshot being edited, nil for a new event.
func (d *EventDraft) Original() *model.CalendarEvent { return d.original }

// OriginalRevision returns the store revision of the original snapshot.
func (d *EventDraft) OriginalRevision() uint64 { return d.originalRev }

// Classification returns the role classification for this edit session.
func (d *EventDraft) Classification() model.EventClassification { return d.classification }

// Editor returns the editing party's identity.
func (d *EventDraft) Editor() model.Editor { return d.editor }

// Calendar returns the calendar the draft will be saved to.
func (d *EventDraft) Calendar() model.CalendarInfo { return d.calendar }

// Rosters returns the notification roster triple.
func (d *EventDraft) Rosters() *RosterSet { return d.rosters }

// Ledger returns the attendee status ledger.
func (d *EventDraft) Ledger() *AttendeeStatusLedger { return d.ledger }

// Alarms returns the draft's reminder list.
func (d *EventDraft) Alarms() []model.Alarm {
	out := make([]model.Alarm, len(d.alarms))
	copy(out, d.alarms)
	return out
}

// Organizer returns the current organizer, nil when none.
func (d *EventDraft) Organizer() *model.EventAddress { return d.organizer }

// RepeatRule returns the draft's repeat rule, nil for a one-off event.
func (d *EventDraft) RepeatRule() *model.RepeatRule { return d.repeat }

// Timezone returns the draft's display timezone.
func (d *EventDraft) Timezone() *time.Location { return d.zone }

// AllDay reports whether the draft is an all-day event.
func (d *EventDraft) AllDay() bool { return d.allDay }

// Simple field setters

// SetSummary sets the event title.
func (d *EventDraft) SetSummary(summary string) { d.summary = summary }

// SetLocation sets the event location.
func (d *EventDraft) SetLocation(location string) { d.location = location }

// SetDescription sets the event description.
func (d *EventDraft) SetDescription(description string) { d.description = description }

// SetConfidential sets invite confidentiality uniformly across all rosters.
func (d *EventDraft) SetConfidential(confidential bool) { d.rosters.SetConfidential(confidential) }

// Confidential reports the invite confidentiality flag.
func (d *EventDraft) Confidential() bool { return d.rosters.Confidential() }

// Date and time mutations

// SetStartDate moves the start date, shifting the end date by the same day
// delta so the duration in days is preserved. Start dates before the minimum
// supported year are clamped to the current year. All recurrence exclusions
// are invalidated because they are keyed to absolute instants that just moved.
func (d *EventDraft) SetStartDate(date time.Time) {
	date = dateOnly(date.In(d.zone))
	if date.Year() < constants.MinSupportedYear {
		now := time.Now().In(d.zone)
		date = time.Date(now.Year(), date.Month(), date.Day(), 0, 0, 0, 0, d.zone)
	}

	deltaDays := daysBetween(d.startDate, date)
	d.startDate = date
	d.endDate = d.endDate.AddDate(0, 0, deltaDays)
	d.invalidateExclusions()
}

// SetEndDate moves the end date, leaving the start fixed. End-before-start is
// caught at materialization, not here.
func (d *EventDraft) SetEndDate(date time.Time) {
	d.endDate = dateOnly(date.In(d.zone))
}

// SetStartTime moves the start time of day. For a same-day timed event the
// end time shifts proportionally to preserve the prior duration, with the
// adjusted hour capped at 23. Exclusions are always invalidated.
func (d *EventDraft) SetStartTime(t model.TimeOfDay) {
	if d.startDate.Equal(d.endDate) && d.startTime != nil && d.endTime != nil {
		duration := d.endTime.MinutesFromMidnight() - d.startTime.MinutesFromMidnight()
		if duration > 0 {
			shifted := model.TimeOfDayFromMinutes(t.MinutesFromMidnight() + duration)
			d.endTime = &shifted
		}
	}
	start := t
	d.startTime = &start
	d.invalidateExclusions()
}

// SetEndTime moves the end time of day, leaving the start fixed.
func (d *EventDraft) SetEndTime(t model.TimeOfDay) {
	end := t
	d.endTime = &end
}

// SetAllDay toggles between all-day and timed representation. Exclusion dates
// are re-projected between the UTC day-boundary form and the local
// start-time-of-day form; when no valid start time exists for the timed form
// the exclusions are invalidated instead of guessed.
func (d *EventDraft) SetAllDay(allDay bool) {
	if d.allDay == allDay {
		return
	}
	d.allDay = allDay

	if d.repeat == nil || len(d.repeat.ExcludedDates) == 0 {
		return
	}

	if allDay {
		// Timed instants become UTC day boundaries of their local date.
		projected := make([]time.Time, 0, len(d.repeat.ExcludedDates))
		for _, excluded := range d.repeat.ExcludedDates {
			local := excluded.In(d.zone)
			projected = append(projected, time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC))
		}
		d.repeat.ExcludedDates = projected
		return
	}

	if d.startTime == nil || !d.startTime.Valid() {
		d.repeat.ClearExcludedDates()
		return
	}
	// UTC day markers become local instants at the start time of day.
	projected := make([]time.Time, 0, len(d.repeat.ExcludedDates))
	for _, excluded := range d.repeat.ExcludedDates {
		day := excluded.UTC()
		projected = append(projected, time.Date(day.Year(), day.Month(), day.Day(), d.startTime.Hour, d.startTime.Minute, 0, 0, d.zone))
	}
	d.repeat.ExcludedDates = projected
}

// Recurrence mutations

// SetRepeatFrequency changes the repeat frequency, creating a default rule on
// first use and removing the rule for an empty frequency. An actual change
// invalidates all exclusions; re-setting the same value leaves them untouched.
func (d *EventDraft) SetRepeatFrequency(frequency model.RepeatFrequency) {
	if frequency == "" {
		d.repeat = nil
		return
	}
	if d.repeat == nil {
		d.repeat = &model.RepeatRule{
			Frequency: frequency,
			Interval:  1,
			EndType:   model.EndTypeNever,
		}
		return
	}
	if d.repeat.Frequency == frequency {
		return
	}
	d.repeat.Frequency = frequency
	d.repeat.ClearExcludedDates()
}

// SetRepeatInterval changes the repeat interval; an actual change invalidates
// all exclusions.
func (d *EventDraft) SetRepeatInterval(interval int) {
	if d.repeat == nil || d.repeat.Interval == interval || interval < 1 {
		return
	}
	d.repeat.Interval = interval
	d.repeat.ClearExcludedDates()
}

// SetRepeatEndType changes the end policy. Switching to "until" seeds a
// default end date one month past the start; switching away resets the
// occurrence count to 1. An actual change invalidates all exclusions.
func (d *EventDraft) SetRepeatEndType(endType model.RepeatEndType) {
	if d.repeat == nil || d.repeat.EndType == endType {
		return
	}
	d.repeat.EndType = endType
	if endType == model.EndTypeUntilDate {
		d.repeat.UntilDate = d.startDate.AddDate(0, 1, 0)
	} else {
		d.repeat.EndCount = 1
	}
	d.repeat.ClearExcludedDates()
}

// SetRepeatEndCount changes the occurrence count; an actual change
// invalidates all exclusions.
func (d *EventDraft) SetRepeatEndCount(count int) {
	if d.repeat == nil || d.repeat.EndCount == count {
		return
	}
	d.repeat.EndCount = count
	d.repeat.ClearExcludedDates()
}

// SetRepeatUntilDate changes the end date; an actual change invalidates all
// exclusions.
func (d *EventDraft) SetRepeatUntilDate(until time.Time) {
	if d.repeat == nil || d.repeat.UntilDate.Equal(until) {
		return
	}
	d.repeat.UntilDate = until
	d.repeat.ClearExcludedDates()
}

// Alarm mutations

// AddAlarm appends a reminder and returns its fresh identifier.
func (d *EventDraft) AddAlarm(trigger string) string {
	alarm := model.Alarm{UID: uuid.New().String(), Trigger: trigger}
	d.alarms = append(d.alarms, alarm)
	return alarm.UID
}

// ChangeAlarm updates the reminder with the given identifier, removing it
// when the trigger is empty. It reports whether the identifier was known.
func (d *EventDraft) ChangeAlarm(alarmUID, trigger string) bool {
	for i := range d.alarms {
		if d.alarms[i].UID != alarmUID {
			continue
		}
		if trigger == "" {
			d.alarms = append(d.alarms[:i], d.alarms[i+1:]...)
		} else {
			d.alarms[i].Trigger = trigger
		}
		return true
	}
	return false
}

// Attendee mutations

// AddGuest adds an attendee to the draft. Permitted only when the
// classification allows guest changes. Adding an address that is already an
// attendee is a no-op.
//
// The editor's own addresses are never placed on the invite roster
// (self-invites are never transmitted); an own address joins directly as an
// accepted self-attendee, and when it is organizer-eligible it replaces the
// current organizer. Foreign addresses land on the invite roster with status
// added-pending. After the very first attendee is inserted, the editor
// auto-joins as accepted if not yet represented: an organizer cannot invite
// others without participating themselves.
func (d *EventDraft) AddGuest(address model.EventAddress, contact *model.Contact) (bool, error) {
	if !d.classification.CanModifyGuests() {
		return false, errs.NewForbidden("attendees cannot be changed on this event")
	}
	if d.isAttendee(address.Email) {
		return false, nil
	}

	hadAttendees := d.self != nil || d.rosters.invite.Len() > 0 || d.rosters.update.Len() > 0

	if d.editor.Owns(address) {
		self := model.Attendee{Address: address, Status: model.StatusAccepted}
		d.self = &self
		d.ledger.Set(address.Email, model.StatusAccepted)
		if d.classification.OrganizerEligible(address) {
			organizer := address
			d.organizer = &organizer
		}
		return true, nil
	}

	d.rosters.Add(model.RosterInvite, address, contact)
	d.ledger.Set(address.Email, model.StatusAddedPending)

	if !hadAttendees && d.self == nil {
		selfAddress := d.editor.DefaultSender
		if d.organizer != nil && d.editor.Owns(*d.organizer) {
			selfAddress = *d.organizer
		}
		self := model.Attendee{Address: selfAddress, Status: model.StatusAccepted}
		d.self = &self
		d.ledger.Set(selfAddress.Email, model.StatusAccepted)
	}
	return true, nil
}

// RemoveAttendee removes an attendee from whichever roster holds it and drops
// its ledger entry. Permitted only when the classification allows guest
// changes. An address that was present on the original persisted event is
// additionally queued on the cancellation roster so a cancellation notice
// goes out.
func (d *EventDraft) RemoveAttendee(address model.EventAddress) (bool, error) {
	if !d.classification.CanModifyGuests() {
		return false, errs.NewForbidden("attendees cannot be changed on this event")
	}

	removed := false

	if d.self != nil && d.self.Address.SameAddress(address) {
		d.self = nil
		removed = true
	}
	if _, found := d.rosters.Remove(address.Email); found {
		removed = true
	}
	d.ledger.Delete(address.Email)

	if d.original != nil {
		for _, attendee := range d.original.Attendees {
			if attendee.Address.SameAddress(address) {
				d.rosters.Add(model.RosterCancel, address, nil)
				break
			}
		}
	}
	return removed, nil
}

// SetOrganizer reassigns the organizer. Permitted only on an own event with
// no real guests; the new organizer becomes the self-attendee.
func (d *EventDraft) SetOrganizer(address model.EventAddress) error {
	if !d.classification.CanModifyOrganizer(d.hasRealGuests()) {
		return errs.NewForbidden("organizer cannot be changed on this event")
	}
	if !d.editor.Owns(address) {
		return errs.NewValidation("organizer must be one of the editor's own addresses")
	}
	organizer := address
	d.organizer = &organizer
	self := model.Attendee{Address: address, Status: model.StatusAccepted}
	d.self = &self
	d.ledger.Set(address.Email, model.StatusAccepted)
	return nil
}

// SetOwnAttendance records the editor's desired RSVP status.
func (d *EventDraft) SetOwnAttendance(status model.AttendeeStatus) error {
	if !d.classification.CanModifyOwnAttendance() {
		return errs.NewForbidden("attendance cannot be changed on this event")
	}
	if d.self == nil {
		return errs.NewValidation("editor is not an attendee of this event")
	}
	d.ledger.Set(d.self.Address.Email, status)
	return nil
}

// Attendees returns the externally observable attendee list: the editor's own
// record first, followed by the invite roster's entries and then the update
// roster's entries, each with its status looked up in the ledger. The
// projection is recomputed on every read, so it is always defined from the
// best-available synchronous roster state.
func (d *EventDraft) Attendees() []model.Attendee {
	var out []model.Attendee

	if d.self != nil {
		out = append(out, model.Attendee{
			Address: d.self.Address,
			Status:  d.ledger.GetOrDefault(d.self.Address.Email, model.StatusAccepted),
		})
	}
	for _, roster := range []*RecipientRoster{d.rosters.invite, d.rosters.update} {
		for _, entry := range roster.Entries() {
			out = append(out, model.Attendee{
				Address: entry.Address,
				Status:  d.ledger.GetOrDefault(entry.Address.Email, model.StatusNeedsAction),
			})
		}
	}
	return out
}

// SelfAttendee returns the editor's own attendee record, nil when absent.
func (d *EventDraft) SelfAttendee() *model.Attendee {
	if d.self == nil {
		return nil
	}
	self := model.Attendee{
		Address: d.self.Address,
		Status:  d.ledger.GetOrDefault(d.self.Address.Email, model.StatusAccepted),
	}
	return &self
}

// GuestPasswordStrength scores the preshared password of a rostered guest,
// for display. Unknown addresses score zero.
func (d *EventDraft) GuestPasswordStrength(email string) int {
	for _, roster := range d.rosters.all() {
		if entry := roster.Get(email); entry != nil {
			return entry.PasswordStrength()
		}
	}
	return 0
}

func (d *EventDraft) isAttendee(email string) bool {
	if d.self != nil && d.self.Address.NormalizedEmail() == model.NormalizeEmail(email) {
		return true
	}
	_, held := d.rosters.Holding(email)
	return held
}

// hasRealGuests reports whether anyone besides the editor participates.
func (d *EventDraft) hasRealGuests() bool {
	return d.rosters.invite.Len() > 0 || d.rosters.update.Len() > 0
}

func (d *EventDraft) invalidateExclusions() {
	if d.repeat != nil {
		d.repeat.ClearExcludedDates()
	}
}

// beginProcessing acquires the single-flight guard, reporting false when a
// save is already in flight.
func (d *EventDraft) beginProcessing() bool {
	return d.processing.CompareAndSwap(false, true)
}

// endProcessing releases the single-flight guard.
func (d *EventDraft) endProcessing() {
	d.processing.Store(false)
}

// Materialize combines the draft fields into a fresh persisted-shape snapshot
// anchored at the given instant. It runs the user-correctable validity checks
// and fails fast reporting the first one that does not hold.
func (d *EventDraft) Materialize(now time.Time) (*model.CalendarEvent, error) {
	start, end, err := d.instants()
	if err != nil {
		return nil, err
	}

	event := &model.CalendarEvent{
		CalendarUID:  d.calendar.UID,
		Summary:      d.summary,
		Location:     d.location,
		Description:  d.description,
		StartTime:    start,
		EndTime:      end,
		AllDay:       d.allDay,
		Confidential: d.rosters.Confidential(),
		Attendees:    d.Attendees(),
		RepeatRule:   d.repeat.Clone(),
		UpdatedAt:    now,
	}

	if d.organizer != nil {
		organizer := *d.organizer
		event.Organizer = &organizer
	}

	for _, alarm := range d.alarms {
		event.AlarmRefs = append(event.AlarmRefs, alarm.UID)
	}

	if d.original != nil && d.original.UID != "" {
		event.UID = d.original.UID
		event.CreatedAt = d.original.CreatedAt
	} else {
		event.UID = model.DeriveEventUID(d.calendar.UID, now)
		event.CreatedAt = now
	}

	var prior int64
	if d.original != nil {
		prior = d.original.Sequence
	}
	event.Sequence = nextSequence(prior, d.classification.Type == model.EventTypeOwn)

	if event.RepeatRule != nil {
		text, errRule := event.RepeatRule.RRuleString(start)
		if errRule != nil {
			return nil, errRule
		}
		event.RecurrenceText = text
	}

	if err := event.Validate(); err != nil {
		return nil, err
	}
	return event, nil
}

func (d *EventDraft) instants() (time.Time, time.Time, error) {
	if d.startDate.IsZero() || d.endDate.IsZero() {
		return time.Time{}, time.Time{}, errs.NewValidation("event dates are required")
	}

	if d.allDay {
		// All-day events are stored as UTC day boundaries; the end boundary is
		// the midnight after the last day.
		start := time.Date(d.startDate.Year(), d.startDate.Month(), d.startDate.Day(), 0, 0, 0, 0, time.UTC)
		end := time.Date(d.endDate.Year(), d.endDate.Month(), d.endDate.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
		return start, end, nil
	}

	if d.startTime == nil || d.endTime == nil || !d.startTime.Valid() || !d.endTime.Valid() {
		return time.Time{}, time.Time{}, errs.NewValidation("a valid time of day is required for timed events")
	}
	start := time.Date(d.startDate.Year(), d.startDate.Month(), d.startDate.Day(), d.startTime.Hour, d.startTime.Minute, 0, 0, d.zone)
	end := time.Date(d.endDate.Year(), d.endDate.Month(), d.endDate.Day(), d.endTime.Hour, d.endTime.Minute, 0, 0, d.zone)
	return start, end, nil
}

// nextSequence advances the revision counter. Authoritative (own-event) edits
// always increment; other saves bump only an already-advanced counter so a
// guest's first save of a received event keeps sequence zero.
func nextSequence(prior int64, forced bool) int64 {
	if forced || prior > 0 {
		return prior + 1
	}
	return prior
}
