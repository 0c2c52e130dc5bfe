// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import "context"

// UpdateDecision is the caller's answer to the "notify existing attendees?"
// gate.
type UpdateDecision string

// UpdateDecision constants
const (
	// UpdateDecisionYes sends update notices
	UpdateDecisionYes UpdateDecision = "yes"
	// UpdateDecisionNo saves without notifying
	UpdateDecisionNo UpdateDecision = "no"
	// UpdateDecisionCancel aborts the save entirely
	UpdateDecisionCancel UpdateDecision = "cancel"
)

// SavePrompter supplies the user confirmations the save protocol needs.
// Implementations may suspend for arbitrarily long; the orchestrator holds no
// locks while a prompt is outstanding.
type SavePrompter interface {
	// AskForUpdates asks whether existing attendees should be notified
	AskForUpdates(ctx context.Context) (UpdateDecision, error)

	// AskInsecurePassword asks whether a confidential invite may go out to
	// external recipients whose passwords are unconfirmed
	AskInsecurePassword(ctx context.Context) (bool, error)

	// ObserveOperation lets the caller track an in-flight save step
	ObserveOperation(ctx context.Context, name string)
}
