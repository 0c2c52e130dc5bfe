// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
)

// PublishedMessage records one message handed to the mock publisher
type PublishedMessage struct {
	// Channel is "indexer" or "access"
	Channel string
	Subject string
	Message any
}

// MockMessagePublisher records indexer and access messages for assertions
type MockMessagePublisher struct {
	mu        sync.Mutex
	published []PublishedMessage
}

// Ensure MockMessagePublisher implements the MessagePublisher interface
var _ port.MessagePublisher = (*MockMessagePublisher)(nil)

// NewMockMessagePublisher creates a new recording publisher for testing
func NewMockMessagePublisher() *MockMessagePublisher {
	return &MockMessagePublisher{}
}

// Published returns all recorded messages in publish order
func (m *MockMessagePublisher) Published() []PublishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PublishedMessage, len(m.published))
	copy(out, m.published)
	return out
}

// Indexer records an indexer message
func (m *MockMessagePublisher) Indexer(ctx context.Context, subject string, message any) error {
	slog.DebugContext(ctx, "mock indexer message published", "subject", subject)
	m.record("indexer", subject, message)
	return nil
}

// Access records an access control message
func (m *MockMessagePublisher) Access(ctx context.Context, subject string, message any) error {
	slog.DebugContext(ctx, "mock access control message published", "subject", subject)
	m.record("access", subject, message)
	return nil
}

func (m *MockMessagePublisher) record(channel, subject string, message any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.published = append(m.published, PublishedMessage{Channel: channel, Subject: subject, Message: message})
}
