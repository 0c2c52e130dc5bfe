// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// RequiresNotification reports whether the differences between a previous
// snapshot and its reworked successor are visible to guests and therefore
// warrant an update notification.
//
// Bookkeeping fields are deliberately excluded from the comparison: the
// sequence counter advances as a consequence of saving and must not itself
// trigger a send, timestamps are maintenance metadata, and reminders are
// private to the editor. A nil previous snapshot
// means a brand-new event, which is handled by the invitation path rather
// than the update path, so it never requires an update.
func RequiresNotification(previous, next *model.CalendarEvent) bool {
	if previous == nil || next == nil {
		return false
	}

	if !previous.StartTime.Equal(next.StartTime) ||
		!previous.EndTime.Equal(next.EndTime) ||
		previous.AllDay != next.AllDay {
		return true
	}

	if previous.Summary != next.Summary ||
		previous.Location != next.Location ||
		previous.Description != next.Description ||
		previous.Confidential != next.Confidential ||
		previous.UID != next.UID {
		return true
	}

	if !sameOrganizer(previous.Organizer, next.Organizer) {
		return true
	}

	if !previous.RepeatRule.Equal(next.RepeatRule) {
		return true
	}

	if !model.AttendeesEqual(previous.Attendees, next.Attendees) {
		return true
	}

	return false
}

func sameOrganizer(a, b *model.EventAddress) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.SameAddress(*b)
}
