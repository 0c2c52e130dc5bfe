// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

import (
	"sort"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// RepeatFrequency is the unit a repeating event advances by.
type RepeatFrequency string

// RepeatFrequency constants
const (
	FrequencyDaily    RepeatFrequency = "daily"
	FrequencyWeekly   RepeatFrequency = "weekly"
	FrequencyMonthly  RepeatFrequency = "monthly"
	FrequencyAnnually RepeatFrequency = "annually"
)

// RepeatEndType is the policy terminating a repeating series.
type RepeatEndType string

// RepeatEndType constants
const (
	// EndTypeNever repeats without bound
	EndTypeNever RepeatEndType = "never"
	// EndTypeCount stops after a fixed number of occurrences
	EndTypeCount RepeatEndType = "count"
	// EndTypeUntilDate stops at a given date
	EndTypeUntilDate RepeatEndType = "until"
)

// RepeatRule describes the recurrence of an event together with the instants
// at which individual occurrences are suppressed.
//
// The excluded-date list is always sorted ascending and deduplicated by exact
// instant equality. Any change to frequency, interval, end type, or end value
// clears the list, because occurrence identities under the new rule no longer
// correspond to the old exclusions.
type RepeatRule struct {
	Frequency RepeatFrequency `json:"frequency"`
	Interval  int             `json:"interval"`
	EndType   RepeatEndType   `json:"end_type"`
	// EndCount is the occurrence count when EndType is "count"
	EndCount int `json:"end_count,omitempty"`
	// UntilDate is the inclusive end date when EndType is "until"
	UntilDate     time.Time   `json:"until_date,omitempty"`
	ExcludedDates []time.Time `json:"excluded_dates,omitempty"`
}

// Clone returns a deep copy of the rule.
func (r *RepeatRule) Clone() *RepeatRule {
	if r == nil {
		return nil
	}
	clone := *r
	clone.ExcludedDates = make([]time.Time, len(r.ExcludedDates))
	copy(clone.ExcludedDates, r.ExcludedDates)
	return &clone
}

// Equal compares two rules field by field, including ordered comparison of
// their excluded dates.
func (r *RepeatRule) Equal(other *RepeatRule) bool {
	if r == nil || other == nil {
		return r == other
	}
	if r.Frequency != other.Frequency ||
		r.Interval != other.Interval ||
		r.EndType != other.EndType ||
		r.EndCount != other.EndCount ||
		!r.UntilDate.Equal(other.UntilDate) {
		return false
	}
	if len(r.ExcludedDates) != len(other.ExcludedDates) {
		return false
	}
	for i := range r.ExcludedDates {
		if !r.ExcludedDates[i].Equal(other.ExcludedDates[i]) {
			return false
		}
	}
	return true
}

// InsertExcludedDate adds an occurrence instant to the exclusion list,
// keeping the list sorted ascending. Inserting an instant already present is
// a no-op.
func (r *RepeatRule) InsertExcludedDate(instant time.Time) {
	idx := sort.Search(len(r.ExcludedDates), func(i int) bool {
		return !r.ExcludedDates[i].Before(instant)
	})
	if idx < len(r.ExcludedDates) && r.ExcludedDates[idx].Equal(instant) {
		return
	}
	r.ExcludedDates = append(r.ExcludedDates, time.Time{})
	copy(r.ExcludedDates[idx+1:], r.ExcludedDates[idx:])
	r.ExcludedDates[idx] = instant
}

// ClearExcludedDates drops all exclusions. This is the invalidation primitive
// invoked by every mutation that can desynchronize exclusion semantics.
func (r *RepeatRule) ClearExcludedDates() {
	r.ExcludedDates = nil
}

// RRuleString serializes the rule to an RFC 5545 RRULE value anchored at the
// given series start.
func (r *RepeatRule) RRuleString(seriesStart time.Time) (string, error) {
	opt := rrule.ROption{
		Dtstart:  seriesStart,
		Interval: r.Interval,
	}

	switch r.Frequency {
	case FrequencyDaily:
		opt.Freq = rrule.DAILY
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	case FrequencyAnnually:
		opt.Freq = rrule.YEARLY
	default:
		return "", errors.NewValidation("unknown repeat frequency: " + string(r.Frequency))
	}

	switch r.EndType {
	case EndTypeNever:
	case EndTypeCount:
		opt.Count = r.EndCount
	case EndTypeUntilDate:
		opt.Until = r.UntilDate.UTC()
	default:
		return "", errors.NewValidation("unknown repeat end type: " + string(r.EndType))
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return "", errors.NewValidation("repeat rule is not serializable", err)
	}

	return rule.String(), nil
}

// OccurrenceAfter returns the first occurrence strictly after the given
// instant, honoring the exclusion list. The boolean is false when the series
// has no further occurrences.
func (r *RepeatRule) OccurrenceAfter(seriesStart, after time.Time) (time.Time, bool) {
	opt := rrule.ROption{Dtstart: seriesStart, Interval: r.Interval}
	switch r.Frequency {
	case FrequencyDaily:
		opt.Freq = rrule.DAILY
	case FrequencyWeekly:
		opt.Freq = rrule.WEEKLY
	case FrequencyMonthly:
		opt.Freq = rrule.MONTHLY
	case FrequencyAnnually:
		opt.Freq = rrule.YEARLY
	default:
		return time.Time{}, false
	}
	switch r.EndType {
	case EndTypeCount:
		opt.Count = r.EndCount
	case EndTypeUntilDate:
		opt.Until = r.UntilDate.UTC()
	}

	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return time.Time{}, false
	}

	excluded := make(map[int64]struct{}, len(r.ExcludedDates))
	for _, d := range r.ExcludedDates {
		excluded[d.Unix()] = struct{}{}
	}

	next := rule.After(after, false)
	for !next.IsZero() {
		if _, skip := excluded[next.Unix()]; !skip {
			return next, true
		}
		next = rule.After(next, false)
	}
	return time.Time{}, false
}
