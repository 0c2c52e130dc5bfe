// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// MockEventStore provides an in-memory implementation of the EventStore port
type MockEventStore struct {
	events    map[string]*model.CalendarEvent
	revisions map[string]uint64
	alarms    map[string]model.Alarm
	mu        sync.RWMutex

	// Call counters for assertions
	CreateCalls int
	UpdateCalls int
	DeleteCalls int

	// FailNext makes the next mutating call fail with the given error
	FailNext error
}

// Ensure MockEventStore implements the EventStore interface
var _ port.EventStore = (*MockEventStore)(nil)

// NewMockEventStore creates an empty in-memory event store
func NewMockEventStore() *MockEventStore {
	return &MockEventStore{
		events:    make(map[string]*model.CalendarEvent),
		revisions: make(map[string]uint64),
		alarms:    make(map[string]model.Alarm),
	}
}

// SeedEvent inserts an event directly, bypassing counters, and returns its revision
func (m *MockEventStore) SeedEvent(event *model.CalendarEvent) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events[event.UID] = event.Clone()
	m.revisions[event.UID]++
	return m.revisions[event.UID]
}

// SeedAlarm inserts an alarm record directly
func (m *MockEventStore) SeedAlarm(alarm model.Alarm) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.alarms[alarm.UID] = alarm
}

// EventCount returns the number of stored events
func (m *MockEventStore) EventCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.events)
}

// GetEvent retrieves an event snapshot by UID and returns its revision
func (m *MockEventStore) GetEvent(_ context.Context, uid string) (*model.CalendarEvent, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	event, ok := m.events[uid]
	if !ok {
		return nil, 0, errors.NewNotFound(fmt.Sprintf("event not found: %s", uid))
	}
	return event.Clone(), m.revisions[uid], nil
}

// CreateEvent persists a new snapshot together with its alarms
func (m *MockEventStore) CreateEvent(_ context.Context, event *model.CalendarEvent, alarms []model.Alarm, _ string, _ string) (*model.CalendarEvent, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls++
	if err := m.takeFailure(); err != nil {
		return nil, 0, err
	}
	if _, exists := m.events[event.UID]; exists {
		return nil, 0, errors.NewConflict(fmt.Sprintf("event already exists: %s", event.UID))
	}

	m.events[event.UID] = event.Clone()
	m.revisions[event.UID] = 1
	for _, alarm := range alarms {
		m.alarms[alarm.UID] = alarm
	}
	return event.Clone(), 1, nil
}

// UpdateEvent replaces an existing snapshot, checking the expected revision
func (m *MockEventStore) UpdateEvent(_ context.Context, event *model.CalendarEvent, alarms []model.Alarm, _ string, _ string, expectedRevision uint64) (*model.CalendarEvent, uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UpdateCalls++
	if err := m.takeFailure(); err != nil {
		return nil, 0, err
	}
	if _, exists := m.events[event.UID]; !exists {
		return nil, 0, errors.NewNotFound(fmt.Sprintf("event not found: %s", event.UID))
	}
	if m.revisions[event.UID] != expectedRevision {
		return nil, 0, errors.NewConflict(fmt.Sprintf("revision mismatch for event %s: expected %d, have %d",
			event.UID, expectedRevision, m.revisions[event.UID]))
	}

	m.events[event.UID] = event.Clone()
	m.revisions[event.UID]++
	for _, alarm := range alarms {
		m.alarms[alarm.UID] = alarm
	}
	return event.Clone(), m.revisions[event.UID], nil
}

// DeleteEvent removes a snapshot and its alarms
func (m *MockEventStore) DeleteEvent(_ context.Context, uid string, expectedRevision uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DeleteCalls++
	if err := m.takeFailure(); err != nil {
		return err
	}
	event, exists := m.events[uid]
	if !exists {
		return errors.NewNotFound(fmt.Sprintf("event not found: %s", uid))
	}
	if m.revisions[uid] != expectedRevision {
		return errors.NewConflict(fmt.Sprintf("revision mismatch for event %s: expected %d, have %d",
			uid, expectedRevision, m.revisions[uid]))
	}

	for _, ref := range event.AlarmRefs {
		delete(m.alarms, ref)
	}
	delete(m.events, uid)
	delete(m.revisions, uid)
	return nil
}

// LoadAlarms retrieves the alarm records referenced by an event
func (m *MockEventStore) LoadAlarms(_ context.Context, alarmRefs []string) ([]model.Alarm, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []model.Alarm
	for _, ref := range alarmRefs {
		if alarm, ok := m.alarms[ref]; ok {
			out = append(out, alarm)
		}
	}
	return out, nil
}

func (m *MockEventStore) takeFailure() error {
	if m.FailNext == nil {
		return nil
	}
	err := m.FailNext
	m.FailNext = nil
	return err
}
