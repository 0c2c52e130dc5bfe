// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
)

// notify_attendees answer values accepted on the save subject
const (
	notifyYes    = port.UpdateDecisionYes
	notifyNo     = port.UpdateDecisionNo
	notifyCancel = port.UpdateDecisionCancel
)

// scriptedPrompter answers the save protocol's confirmations from values the
// request carried, since a message API has nobody left to ask.
type scriptedPrompter struct {
	updates       port.UpdateDecision
	allowInsecure bool
}

func newScriptedPrompter(req *SaveEventRequest) scriptedPrompter {
	updates := port.UpdateDecision(req.NotifyAttendees)
	if updates == "" {
		updates = port.UpdateDecisionYes
	}
	return scriptedPrompter{
		updates:       updates,
		allowInsecure: req.AllowInsecurePassword,
	}
}

func (p scriptedPrompter) AskForUpdates(_ context.Context) (port.UpdateDecision, error) {
	return p.updates, nil
}

func (p scriptedPrompter) AskInsecurePassword(_ context.Context) (bool, error) {
	return p.allowInsecure, nil
}

func (p scriptedPrompter) ObserveOperation(ctx context.Context, name string) {
	slog.DebugContext(ctx, "save operation step", "operation", name)
}
