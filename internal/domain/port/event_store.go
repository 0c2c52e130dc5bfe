// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package port defines the interfaces between the event-editing core and its
// external collaborators.
package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// EventStore is the persistence collaborator for event snapshots and alarms.
//
// Implementations must report a distinguishable not-found condition
// (errors.NotFound); the orchestrator swallows it as a no-op on delete and
// propagates every other failure.
type EventStore interface {
	// GetEvent retrieves an event snapshot by UID and returns its revision
	GetEvent(ctx context.Context, uid string) (*model.CalendarEvent, uint64, error)

	// CreateEvent persists a new snapshot together with its alarms
	CreateEvent(ctx context.Context, event *model.CalendarEvent, alarms []model.Alarm, timezone string, calendarUID string) (*model.CalendarEvent, uint64, error)

	// UpdateEvent replaces an existing snapshot, checking the expected revision
	UpdateEvent(ctx context.Context, event *model.CalendarEvent, alarms []model.Alarm, timezone string, calendarUID string, expectedRevision uint64) (*model.CalendarEvent, uint64, error)

	// DeleteEvent removes a snapshot and its alarms
	DeleteEvent(ctx context.Context, uid string, expectedRevision uint64) error

	// LoadAlarms retrieves the alarm records referenced by an event
	LoadAlarms(ctx context.Context, alarmRefs []string) ([]model.Alarm, error)
}
