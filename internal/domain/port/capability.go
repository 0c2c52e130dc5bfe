// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import "context"

// GroupCapabilityChecker is the permission oracle answering whether a user
// holds a capability on a sharing group. Lookups are synchronous.
type GroupCapabilityChecker interface {
	// HasCapabilityOnGroup reports whether the user holds the capability
	HasCapabilityOnGroup(ctx context.Context, userUID, groupUID, capability string) bool
}
