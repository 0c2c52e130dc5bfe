// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package model

// RosterKind tags one of the three outbound notification channels.
type RosterKind string

// RosterKind constants
const (
	// RosterInvite collects recipients of a first invitation
	RosterInvite RosterKind = "invite"
	// RosterUpdate collects recipients of an update notice
	RosterUpdate RosterKind = "update"
	// RosterCancel collects recipients of a cancellation notice
	RosterCancel RosterKind = "cancel"
)

// ResolutionState tracks the asynchronous resolution of a recipient address.
type ResolutionState string

// ResolutionState constants
const (
	// ResolutionUnresolved means resolution has not started
	ResolutionUnresolved ResolutionState = "unresolved"
	// ResolutionResolving means a resolution request is in flight
	ResolutionResolving ResolutionState = "resolving"
	// ResolutionResolved means the recipient type is known
	ResolutionResolved ResolutionState = "resolved"
)

// RecipientType is the delivery classification of a resolved address.
type RecipientType string

// RecipientType constants
const (
	// RecipientInternal is a mailbox on the platform; delivery is always secure
	RecipientInternal RecipientType = "internal"
	// RecipientExternal is a mailbox outside the platform; confidential
	// delivery requires a preshared password
	RecipientExternal RecipientType = "external"
	// RecipientUnknown means resolution failed or has not completed
	RecipientUnknown RecipientType = "unknown"
)

// RecipientEntry is one pending recipient on a notification roster.
type RecipientEntry struct {
	Address EventAddress    `json:"address"`
	State   ResolutionState `json:"state"`
	Type    RecipientType   `json:"type"`
	// Password is the preshared password for confidential external delivery
	Password string `json:"password,omitempty"`
	// PasswordConfirmed is set once the password has been verified out of band
	PasswordConfirmed bool     `json:"password_confirmed,omitempty"`
	Contact           *Contact `json:"contact,omitempty"`
}

// Insecure reports whether sending a confidential invite to this recipient
// would go out without a confirmed password. Internal recipients are never
// insecure.
func (r *RecipientEntry) Insecure() bool {
	if r.Type == RecipientInternal {
		return false
	}
	return r.Password == "" || !r.PasswordConfirmed
}

// PasswordStrength scores the recipient's preshared password from 0 (absent)
// to 4, a coarse indicator for display next to external guests.
func (r *RecipientEntry) PasswordStrength() int {
	n := len(r.Password)
	switch {
	case n == 0:
		return 0
	case n < 6:
		return 1
	case n < 8:
		return 2
	case n < 12:
		return 3
	default:
		return 4
	}
}
