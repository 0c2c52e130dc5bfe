// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package port

import (
	"context"
	"log/slog"
)

// Authenticator parses and validates the credential accompanying an inbound
// request, returning the acting principal.
type Authenticator interface {
	// ParsePrincipal parses and validates a bearer token, returning the principal
	ParsePrincipal(ctx context.Context, token string, logger *slog.Logger) (string, error)
}
