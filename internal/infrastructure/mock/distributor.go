// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
)

// SentNotification records one dispatch through the mock distributor
type SentNotification struct {
	// Kind is one of "invite", "update", "cancellation", "response"
	Kind string
	// EventUID identifies the event the notification was about
	EventUID string
	// Recipients are the addressed emails with the ledger status each entry
	// carried at dispatch time
	Recipients []model.RecipientEntry
	// Sender is set for responses only
	Sender model.EventAddress
	// Status is set for responses only
	Status model.AttendeeStatus
}

// MockDistributor records every dispatched notification for assertions
type MockDistributor struct {
	mu   sync.Mutex
	sent []SentNotification

	// FailWith makes every send fail with the given error when set
	FailWith error
}

// Ensure MockDistributor implements the NotificationDistributor interface
var _ port.NotificationDistributor = (*MockDistributor)(nil)

// NewMockDistributor creates a recording distributor
func NewMockDistributor() *MockDistributor {
	return &MockDistributor{}
}

// Sent returns all recorded notifications in dispatch order
func (m *MockDistributor) Sent() []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SentNotification, len(m.sent))
	copy(out, m.sent)
	return out
}

// SentOfKind returns the recorded notifications of one kind in dispatch order
func (m *MockDistributor) SentOfKind(kind string) []SentNotification {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []SentNotification
	for _, notification := range m.sent {
		if notification.Kind == kind {
			out = append(out, notification)
		}
	}
	return out
}

// SendInvite dispatches a first invitation to the given recipients
func (m *MockDistributor) SendInvite(_ context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error {
	return m.record("invite", event, recipients, model.EventAddress{}, "")
}

// SendUpdate dispatches an update notice to the given recipients
func (m *MockDistributor) SendUpdate(_ context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error {
	return m.record("update", event, recipients, model.EventAddress{}, "")
}

// SendCancellation dispatches a cancellation notice to the given recipients
func (m *MockDistributor) SendCancellation(_ context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error {
	return m.record("cancellation", event, recipients, model.EventAddress{}, "")
}

// SendResponse dispatches the editor's RSVP to the organizer
func (m *MockDistributor) SendResponse(_ context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry, sender model.EventAddress, status model.AttendeeStatus) error {
	return m.record("response", event, recipients, sender, status)
}

func (m *MockDistributor) record(kind string, event *model.CalendarEvent, recipients []*model.RecipientEntry, sender model.EventAddress, status model.AttendeeStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return m.FailWith
	}

	// Snapshot recipient state at dispatch time; entries mutate afterwards
	snapshot := make([]model.RecipientEntry, 0, len(recipients))
	for _, entry := range recipients {
		snapshot = append(snapshot, *entry)
	}
	m.sent = append(m.sent, SentNotification{
		Kind:       kind,
		EventUID:   event.UID,
		Recipients: snapshot,
		Sender:     sender,
		Status:     status,
	})
	return nil
}
