// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
)

// AddressDirectory resolves whether a recipient address is an internal or an
// external mailbox. Resolution is asynchronous from the caller's point of
// view and may fail per address; an address that cannot be resolved is
// reported as RecipientUnknown rather than failing the whole batch.
type AddressDirectory interface {
	// ResolveRecipientType classifies a single address
	ResolveRecipientType(ctx context.Context, email string) (model.RecipientType, error)
}
