// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package mailgateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/httpclient"
)

// MapHTTPError maps httpclient errors to domain errors with proper context logging
func MapHTTPError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	if retryableErr, ok := err.(*httpclient.RetryableError); ok {
		slog.WarnContext(ctx, "mail gateway HTTP error occurred",
			"status_code", retryableErr.StatusCode,
			"message", retryableErr.Message,
		)

		switch retryableErr.StatusCode {
		case http.StatusTooManyRequests:
			return errors.NewRateLimited("mail gateway throttled the account, delay and retry", err)
		case http.StatusRequestEntityTooLarge:
			return errors.NewPayloadTooLarge("notification payload exceeds the delivery size limit", err)
		case http.StatusNotFound:
			return errors.NewNotFound("mail gateway route not found", err)
		case http.StatusUnauthorized:
			return errors.NewUnauthorized("mail gateway authentication failed", err)
		case http.StatusBadRequest:
			return errors.NewValidation(fmt.Sprintf("mail gateway rejected the notification: %s", retryableErr.Message), err)
		case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return errors.NewServiceUnavailable("mail gateway unavailable", err)
		default:
			slog.ErrorContext(ctx, "unexpected mail gateway HTTP status code",
				"status_code", retryableErr.StatusCode,
				"message", retryableErr.Message,
			)
			return errors.NewUnexpected("mail gateway API error", err)
		}
	}

	slog.ErrorContext(ctx, "mail gateway request failed with non-HTTP error",
		"error", err.Error(),
	)
	return errors.NewUnexpected("mail gateway request failed", err)
}
