// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service implements the event-editing and reconciliation engine.
package service

import (
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// AttendeeStatusLedger is the authoritative mapping of attendee email to RSVP
// status. It is kept separate from the rosters so a status can be tracked even
// when the address is the editor's own and therefore never enters a roster.
type AttendeeStatusLedger struct {
	statuses map[string]model.AttendeeStatus
}

// NewAttendeeStatusLedger creates an empty ledger.
func NewAttendeeStatusLedger() *AttendeeStatusLedger {
	return &AttendeeStatusLedger{
		statuses: make(map[string]model.AttendeeStatus),
	}
}

// Get returns the recorded status for an address and whether one exists.
func (l *AttendeeStatusLedger) Get(email string) (model.AttendeeStatus, bool) {
	status, ok := l.statuses[model.NormalizeEmail(email)]
	return status, ok
}

// GetOrDefault returns the recorded status, falling back to the given default.
func (l *AttendeeStatusLedger) GetOrDefault(email string, fallback model.AttendeeStatus) model.AttendeeStatus {
	if status, ok := l.Get(email); ok {
		return status
	}
	return fallback
}

// Set records the status for an address.
func (l *AttendeeStatusLedger) Set(email string, status model.AttendeeStatus) {
	l.statuses[model.NormalizeEmail(email)] = status
}

// Delete drops the ledger entry for an address.
func (l *AttendeeStatusLedger) Delete(email string) {
	delete(l.statuses, model.NormalizeEmail(email))
}

// Len returns the number of tracked addresses.
func (l *AttendeeStatusLedger) Len() int {
	return len(l.statuses)
}
