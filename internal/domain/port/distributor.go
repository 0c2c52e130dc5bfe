// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// NotificationDistributor delivers event notifications to recipient rosters.
//
// Implementations may return errors.RateLimited when the account is
// throttled and errors.PayloadTooLarge when the encoded notification exceeds
// the delivery size limit; the core translates both into user-facing errors
// and never retries on its own.
type NotificationDistributor interface {
	// SendInvite dispatches a first invitation to the given recipients
	SendInvite(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error

	// SendUpdate dispatches an update notice to the given recipients
	SendUpdate(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error

	// SendCancellation dispatches a cancellation notice to the given recipients
	SendCancellation(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error

	// SendResponse dispatches the editor's RSVP to the organizer
	SendResponse(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry, sender model.EventAddress, status model.AttendeeStatus) error
}
