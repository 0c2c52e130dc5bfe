// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// EntitlementChecker answers whether an account holds the business feature
// entitlement required to send multi-recipient notifications. Free-tier
// accounts are always denied and external accounts always allowed; everything
// else depends on the account's entitlement state, which the check resolves
// asynchronously.
type EntitlementChecker interface {
	// AllowedToSendNotifications reports whether the editor's account may send
	// invites, cancellations, and forced updates
	AllowedToSendNotifications(ctx context.Context, editor model.Editor) (bool, error)
}
