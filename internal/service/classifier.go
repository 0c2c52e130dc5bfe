// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
)

// ClassifyEvent computes the editing party's role and rights for one draft
// lifetime. It is deterministic and has no side effects: the result depends
// only on the original event (nil for a new draft), the calendars visible to
// the editor, the editor's own address set, and the capability oracle.
func ClassifyEvent(
	ctx context.Context,
	original *model.CalendarEvent,
	calendars map[string]model.CalendarInfo,
	editor model.Editor,
	capabilities port.GroupCapabilityChecker,
) model.EventClassification {
	// New event: the editor is the organizer and may still pick any alias.
	if original == nil {
		organizer := editor.DefaultSender
		return model.EventClassification{
			Type:               model.EventTypeOwn,
			Organizer:          &organizer,
			PossibleOrganizers: editor.OwnAddresses,
		}
	}

	calendar, visible := calendars[original.CalendarUID]

	// Owning calendar not visible, e.g. an event loaded from an external file:
	// the editor is a guest and the organizer is whatever was present.
	if !visible {
		classification := model.EventClassification{Type: model.EventTypeInvite}
		if original.Organizer != nil {
			organizer := *original.Organizer
			classification.Organizer = &organizer
			classification.PossibleOrganizers = []model.EventAddress{organizer}
		}
		return classification
	}

	// Shared calendar: the organizer is copied unchanged and editing rights
	// follow the write capability on the calendar's group.
	if calendar.Shared {
		eventType := model.EventTypeSharedReadOnly
		if capabilities.HasCapabilityOnGroup(ctx, editor.AccountUID, calendar.GroupUID, constants.CapabilityWrite) {
			eventType = model.EventTypeSharedReadWrite
		}
		slog.DebugContext(ctx, "classified event on shared calendar",
			"event_type", eventType,
			"group_uid", calendar.GroupUID,
		)
		classification := model.EventClassification{Type: eventType}
		if original.Organizer != nil {
			organizer := *original.Organizer
			classification.Organizer = &organizer
			classification.PossibleOrganizers = []model.EventAddress{organizer}
		}
		return classification
	}

	// Editor's own calendar.
	hasGuests := original.HasGuests(editor.OwnAddresses)
	organizerIsOwn := original.Organizer != nil && editor.Owns(*original.Organizer)

	if original.Organizer == nil || organizerIsOwn || !hasGuests {
		effective := editor.DefaultSender
		if organizerIsOwn {
			effective = *original.Organizer
		}
		possible := editor.OwnAddresses
		if hasGuests {
			// Guests already exist, so the organizer identity is locked.
			possible = []model.EventAddress{effective}
		}
		return model.EventClassification{
			Type:               model.EventTypeOwn,
			Organizer:          &effective,
			PossibleOrganizers: possible,
		}
	}

	// Someone else organizes and guests exist: the editor is a guest on their
	// own calendar, the organizer is unmodifiable.
	organizer := *original.Organizer
	return model.EventClassification{
		Type:               model.EventTypeInvite,
		Organizer:          &organizer,
		PossibleOrganizers: []model.EventAddress{organizer},
	}
}
