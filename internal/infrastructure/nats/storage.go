// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/vmihailenco/msgpack/v5"
)

type storage struct {
	client *NATSClient
}

// eventRecord is the stored shape of an event snapshot. The timezone travels
// with the snapshot so timed instants can be presented in the zone the event
// was authored in.
type eventRecord struct {
	Event    *model.CalendarEvent `json:"event"`
	Timezone string               `json:"timezone"`
}

// GetEvent retrieves a single event snapshot by UID and returns its revision
func (s *storage) GetEvent(ctx context.Context, uid string) (*model.CalendarEvent, uint64, error) {
	slog.DebugContext(ctx, "nats storage: getting event",
		"event_uid", uid)

	record := &eventRecord{}
	rev, err := s.get(ctx, constants.KVBucketNameCalendarEvents, uid, record, false)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			slog.DebugContext(ctx, "event not found", "event_uid", uid, "error", err)
			return nil, 0, errs.NewNotFound("event not found")
		}
		slog.ErrorContext(ctx, "failed to get event", "error", err, "event_uid", uid)
		return nil, 0, errs.NewServiceUnavailable("failed to get event")
	}

	slog.DebugContext(ctx, "nats storage: event retrieved",
		"event_uid", uid,
		"calendar_uid", record.Event.CalendarUID,
		"revision", rev)

	return record.Event, rev, nil
}

// CreateEvent persists a new event snapshot together with its alarms
func (s *storage) CreateEvent(ctx context.Context, event *model.CalendarEvent, alarms []model.Alarm, timezone string, calendarUID string) (*model.CalendarEvent, uint64, error) {
	slog.DebugContext(ctx, "nats storage: creating event",
		"event_uid", event.UID,
		"calendar_uid", calendarUID)

	// Reserve the event identity first so a duplicate create surfaces as a
	// conflict instead of silently overwriting
	if _, err := s.createLookupKey(ctx, event.UID); err != nil {
		return nil, 0, err
	}

	if err := s.putAlarms(ctx, alarms); err != nil {
		return nil, 0, err
	}

	record := &eventRecord{Event: event, Timezone: timezone}
	rev, err := s.put(ctx, constants.KVBucketNameCalendarEvents, event.UID, record)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create event", "error", err, "event_uid", event.UID)
		return nil, 0, errs.NewServiceUnavailable("failed to create event")
	}

	slog.DebugContext(ctx, "nats storage: event created",
		"event_uid", event.UID,
		"revision", rev)

	return event, rev, nil
}

// UpdateEvent replaces an existing event snapshot with revision checking
func (s *storage) UpdateEvent(ctx context.Context, event *model.CalendarEvent, alarms []model.Alarm, timezone string, calendarUID string, expectedRevision uint64) (*model.CalendarEvent, uint64, error) {
	slog.DebugContext(ctx, "nats storage: updating event",
		"event_uid", event.UID,
		"calendar_uid", calendarUID,
		"expected_revision", expectedRevision)

	if err := s.putAlarms(ctx, alarms); err != nil {
		return nil, 0, err
	}

	record := &eventRecord{Event: event, Timezone: timezone}
	rev, err := s.putWithRevision(ctx, constants.KVBucketNameCalendarEvents, event.UID, record, expectedRevision)
	if err != nil {
		slog.ErrorContext(ctx, "failed to update event", "error", err, "event_uid", event.UID)
		return nil, 0, errs.NewConflict("failed to update event, revision may be stale", err)
	}

	slog.DebugContext(ctx, "nats storage: event updated",
		"event_uid", event.UID,
		"revision", rev)

	return event, rev, nil
}

// DeleteEvent removes an event snapshot and its alarms with revision checking
func (s *storage) DeleteEvent(ctx context.Context, uid string, expectedRevision uint64) error {
	slog.DebugContext(ctx, "nats storage: deleting event",
		"event_uid", uid,
		"expected_revision", expectedRevision)

	record := &eventRecord{}
	if _, err := s.get(ctx, constants.KVBucketNameCalendarEvents, uid, record, false); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return errs.NewNotFound("event not found")
		}
		return errs.NewServiceUnavailable("failed to load event for deletion")
	}

	if err := s.delete(ctx, constants.KVBucketNameCalendarEvents, uid, expectedRevision); err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return errs.NewNotFound("event not found")
		}
		slog.ErrorContext(ctx, "failed to delete event", "error", err, "event_uid", uid)
		return errs.NewServiceUnavailable("failed to delete event")
	}

	// Release the identity constraint so the UID could be recreated
	if kv, exists := s.client.kvStore[constants.KVBucketNameCalendarEvents]; exists && kv != nil {
		lookupKey := fmt.Sprintf(constants.KVLookupCalendarEventPrefix, uid)
		if err := kv.Purge(ctx, lookupKey); err != nil {
			slog.WarnContext(ctx, "failed to delete event lookup key", "error", err, "lookup_key", lookupKey)
		}
	}

	// Alarms ride along with the event; stale alarm keys are harmless so a
	// partial cleanup failure only logs
	for _, ref := range record.Event.AlarmRefs {
		if err := s.deleteAlarm(ctx, ref); err != nil {
			slog.WarnContext(ctx, "failed to delete alarm during event deletion",
				"error", err,
				"event_uid", uid,
				"alarm_uid", ref)
		}
	}

	slog.DebugContext(ctx, "nats storage: event deleted",
		"event_uid", uid)

	return nil
}

// LoadAlarms retrieves the alarm records referenced by an event. References
// to vanished alarms are skipped rather than failing the load.
func (s *storage) LoadAlarms(ctx context.Context, alarmRefs []string) ([]model.Alarm, error) {
	kv, exists := s.client.kvStore[constants.KVBucketNameCalendarAlarms]
	if !exists || kv == nil {
		return nil, errs.NewServiceUnavailable("KV bucket not available")
	}

	var alarms []model.Alarm
	for _, ref := range alarmRefs {
		entry, err := kv.Get(ctx, ref)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyNotFound) {
				slog.WarnContext(ctx, "alarm reference points to missing alarm", "alarm_uid", ref)
				continue
			}
			slog.ErrorContext(ctx, "failed to load alarm", "error", err, "alarm_uid", ref)
			return nil, errs.NewServiceUnavailable("failed to load alarms")
		}

		alarm := model.Alarm{}
		if errUnmarshal := msgpack.Unmarshal(entry.Value(), &alarm); errUnmarshal != nil {
			slog.ErrorContext(ctx, "failed to decode alarm", "error", errUnmarshal, "alarm_uid", ref)
			return nil, errs.NewUnexpected("failed to decode alarm record", errUnmarshal)
		}
		alarms = append(alarms, alarm)
	}
	return alarms, nil
}

// putAlarms stores alarm records in the alarms bucket keyed by alarm UID.
// Alarm records never leave this service, so they use the compact msgpack
// encoding instead of JSON.
func (s *storage) putAlarms(ctx context.Context, alarms []model.Alarm) error {
	kv, exists := s.client.kvStore[constants.KVBucketNameCalendarAlarms]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}

	for _, alarm := range alarms {
		data, err := msgpack.Marshal(alarm)
		if err != nil {
			return errs.NewUnexpected("failed to encode alarm record", err)
		}
		if _, err := kv.Put(ctx, alarm.UID, data); err != nil {
			slog.ErrorContext(ctx, "failed to store alarm", "error", err, "alarm_uid", alarm.UID)
			return errs.NewServiceUnavailable("failed to store alarms")
		}
	}
	return nil
}

func (s *storage) deleteAlarm(ctx context.Context, uid string) error {
	kv, exists := s.client.kvStore[constants.KVBucketNameCalendarAlarms]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}
	if err := kv.Purge(ctx, uid); err != nil {
		return err
	}
	return nil
}

// get retrieves a model from the NATS KV store by bucket and UID.
// It unmarshals the data into the provided model and returns the revision.
// If the UID is empty, it returns a validation error.
func (s *storage) get(ctx context.Context, bucket, uid string, model any, onlyRevision bool) (uint64, error) {
	if uid == "" {
		return 0, errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[bucket]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, errGet := kv.Get(ctx, uid)
	if errGet != nil {
		return 0, errGet
	}

	if !onlyRevision {
		errUnmarshal := json.Unmarshal(data.Value(), model)
		if errUnmarshal != nil {
			return 0, errUnmarshal
		}
	}

	return data.Revision(), nil
}

// put stores a model in the NATS KV store by bucket and UID.
// It marshals the model into JSON and stores it, returning the revision.
func (s *storage) put(ctx context.Context, bucket, uid string, model any) (uint64, error) {
	if uid == "" {
		return 0, errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[bucket]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, err := json.Marshal(model)
	if err != nil {
		return 0, err
	}

	revision, err := kv.Put(ctx, uid, data)
	if err != nil {
		return 0, err
	}

	return revision, nil
}

// putWithRevision stores a model in the NATS KV store with expected revision
// checking. It performs a conditional update based on the expected revision.
func (s *storage) putWithRevision(ctx context.Context, bucket, uid string, model any, expectedRevision uint64) (uint64, error) {
	if uid == "" {
		return 0, errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[bucket]
	if !exists || kv == nil {
		return 0, errs.NewServiceUnavailable("KV bucket not available")
	}

	data, err := json.Marshal(model)
	if err != nil {
		return 0, err
	}

	revision, err := kv.Update(ctx, uid, data, expectedRevision)
	if err != nil {
		return 0, err
	}

	return revision, nil
}

// delete removes a model from the NATS KV store by bucket and UID with
// revision checking.
func (s *storage) delete(ctx context.Context, bucket, uid string, expectedRevision uint64) error {
	if uid == "" {
		return errs.NewValidation("UID cannot be empty")
	}

	kv, exists := s.client.kvStore[bucket]
	if !exists || kv == nil {
		return errs.NewServiceUnavailable("KV bucket not available")
	}

	err := kv.Delete(ctx, uid, jetstream.LastRevision(expectedRevision))
	if err != nil {
		return err
	}

	return nil
}

// createLookupKey creates a unique constraint key for an event identity.
// Creation fails with a conflict if the key already exists.
func (s *storage) createLookupKey(ctx context.Context, eventUID string) (string, error) {
	lookupKey := fmt.Sprintf(constants.KVLookupCalendarEventPrefix, eventUID)

	kv, exists := s.client.kvStore[constants.KVBucketNameCalendarEvents]
	if !exists || kv == nil {
		return lookupKey, errs.NewServiceUnavailable("KV bucket not available")
	}

	_, err := kv.Create(ctx, lookupKey, []byte(eventUID))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyExists) {
			slog.WarnContext(ctx, "constraint violation - event already exists",
				"lookup_key", lookupKey,
				"event_uid", eventUID,
			)
			return lookupKey, errs.NewConflict("event with same identity already exists")
		}
		slog.ErrorContext(ctx, "failed to create event lookup key",
			"error", err,
			"lookup_key", lookupKey,
			"event_uid", eventUID,
		)
		return lookupKey, errs.NewUnexpected("failed to create event lookup key", err)
	}

	return lookupKey, nil
}

// IsReady checks if the storage is ready by verifying the client connection
func (s *storage) IsReady(ctx context.Context) error {
	return s.client.IsReady(ctx)
}

// NewStorage creates the NATS KV backed event store
func NewStorage(client *NATSClient) port.EventStore {
	return &storage{
		client: client,
	}
}
