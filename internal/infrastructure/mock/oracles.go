// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mock

import (
	"context"
	"fmt"
	"sync"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
)

// MockDirectory resolves recipient types from a static table
type MockDirectory struct {
	mu    sync.RWMutex
	types map[string]model.RecipientType

	// DefaultType is returned for addresses not in the table
	DefaultType model.RecipientType
	// FailFor makes resolution of the listed addresses fail
	FailFor map[string]error
}

// Ensure MockDirectory implements the AddressDirectory interface
var _ port.AddressDirectory = (*MockDirectory)(nil)

// NewMockDirectory creates a directory that resolves everything as external
// unless told otherwise
func NewMockDirectory() *MockDirectory {
	return &MockDirectory{
		types:       make(map[string]model.RecipientType),
		DefaultType: model.RecipientExternal,
		FailFor:     make(map[string]error),
	}
}

// SetType pins the resolution result for one address
func (m *MockDirectory) SetType(email string, recipientType model.RecipientType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types[model.NormalizeEmail(email)] = recipientType
}

// ResolveRecipientType classifies a single address
func (m *MockDirectory) ResolveRecipientType(_ context.Context, email string) (model.RecipientType, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	key := model.NormalizeEmail(email)
	if err, ok := m.FailFor[key]; ok {
		return model.RecipientUnknown, err
	}
	if recipientType, ok := m.types[key]; ok {
		return recipientType, nil
	}
	return m.DefaultType, nil
}

// MockCapabilityChecker answers capability lookups from a static grant table
type MockCapabilityChecker struct {
	mu     sync.RWMutex
	grants map[string]bool
}

// Ensure MockCapabilityChecker implements the GroupCapabilityChecker interface
var _ port.GroupCapabilityChecker = (*MockCapabilityChecker)(nil)

// NewMockCapabilityChecker creates a checker with no grants
func NewMockCapabilityChecker() *MockCapabilityChecker {
	return &MockCapabilityChecker{grants: make(map[string]bool)}
}

// Grant records a capability for a user on a group
func (m *MockCapabilityChecker) Grant(userUID, groupUID, capability string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.grants[grantKey(userUID, groupUID, capability)] = true
}

// HasCapabilityOnGroup reports whether the user holds the capability on the group
func (m *MockCapabilityChecker) HasCapabilityOnGroup(_ context.Context, userUID, groupUID, capability string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.grants[grantKey(userUID, groupUID, capability)]
}

func grantKey(userUID, groupUID, capability string) string {
	return fmt.Sprintf("%s|%s|%s", userUID, groupUID, capability)
}

// MockEntitlementChecker answers the notification entitlement check with a
// fixed result
type MockEntitlementChecker struct {
	// Allowed is the result returned for every check
	Allowed bool
	// Err, when set, fails the check
	Err error

	// Calls counts how many times the check ran
	Calls int
}

// Ensure MockEntitlementChecker implements the EntitlementChecker interface
var _ port.EntitlementChecker = (*MockEntitlementChecker)(nil)

// NewMockEntitlementChecker creates a checker that always allows
func NewMockEntitlementChecker() *MockEntitlementChecker {
	return &MockEntitlementChecker{Allowed: true}
}

// AllowedToSendNotifications reports the configured result
func (m *MockEntitlementChecker) AllowedToSendNotifications(_ context.Context, _ model.Editor) (bool, error) {
	m.Calls++
	if m.Err != nil {
		return false, m.Err
	}
	return m.Allowed, nil
}

// MockPrompter answers confirmation prompts from scripted decisions
type MockPrompter struct {
	// UpdateDecision is returned by AskForUpdates
	UpdateDecision port.UpdateDecision
	// AllowInsecure is returned by AskInsecurePassword
	AllowInsecure bool

	// UpdateAsks counts AskForUpdates invocations
	UpdateAsks int
	// PasswordAsks counts AskInsecurePassword invocations
	PasswordAsks int
	// Observed collects the operation names passed to ObserveOperation
	Observed []string
}

// Ensure MockPrompter implements the SavePrompter interface
var _ port.SavePrompter = (*MockPrompter)(nil)

// NewMockPrompter creates a prompter that agrees to everything
func NewMockPrompter() *MockPrompter {
	return &MockPrompter{
		UpdateDecision: port.UpdateDecisionYes,
		AllowInsecure:  true,
	}
}

// AskForUpdates asks whether existing attendees should be notified
func (m *MockPrompter) AskForUpdates(_ context.Context) (port.UpdateDecision, error) {
	m.UpdateAsks++
	return m.UpdateDecision, nil
}

// AskInsecurePassword asks whether a confidential invite may go out insecurely
func (m *MockPrompter) AskInsecurePassword(_ context.Context) (bool, error) {
	m.PasswordAsks++
	return m.AllowInsecure, nil
}

// ObserveOperation records the in-flight operation name
func (m *MockPrompter) ObserveOperation(_ context.Context, name string) {
	m.Observed = append(m.Observed, name)
}
