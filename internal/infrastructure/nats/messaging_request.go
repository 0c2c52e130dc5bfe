// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/utils"
)

type messageRequest struct {
	client *NATSClient
}

func (m *messageRequest) get(ctx context.Context, subject, payload string) (string, error) {

	data := []byte(payload)

	// Transient request failures are retried; a responder answering with an
	// error payload is not.
	var msg *nats.Msg
	retryConfig := utils.NewRetryConfig(3, 100*time.Millisecond, 2*time.Second)
	err := utils.RetryWithExponentialBackoff(ctx, retryConfig, func() error {
		var reqErr error
		msg, reqErr = m.client.conn.RequestWithContext(ctx, subject, data)
		return reqErr
	})
	if err != nil {
		return "", err
	}

	// Try to parse as JSON error response first
	var errorResponse struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(msg.Data, &errorResponse); err == nil && errorResponse.Error != "" {
		slog.WarnContext(ctx, "message responded with an error", "subject", subject, "payload", payload, "error", errorResponse.Error)
		return "", errors.NewUnexpected(errorResponse.Error)
	}

	attribute := string(msg.Data)
	if attribute == "" {
		return "", errors.NewNotFound(fmt.Sprintf("attribute %s not found for: %s", subject, payload))
	}

	return attribute, nil

}

// ResolveRecipientType classifies an address as internal or external by
// asking the mail service
func (m *messageRequest) ResolveRecipientType(ctx context.Context, email string) (model.RecipientType, error) {
	slog.DebugContext(ctx, "resolving recipient type via NATS",
		"subject", constants.MailResolveAddressTypeSubject)

	answer, err := m.get(ctx, constants.MailResolveAddressTypeSubject, model.NormalizeEmail(email))
	if err != nil {
		slog.WarnContext(ctx, "recipient type resolution failed", "error", err)
		return model.RecipientUnknown, errors.NewServiceUnavailable(fmt.Sprintf("mail-api unavailable: %v", err))
	}

	switch model.RecipientType(answer) {
	case model.RecipientInternal:
		return model.RecipientInternal, nil
	case model.RecipientExternal:
		return model.RecipientExternal, nil
	default:
		slog.WarnContext(ctx, "unexpected recipient type answer", "answer", answer)
		return model.RecipientUnknown, nil
	}
}

// AllowedToSendNotifications checks the account's notification entitlement.
// Free-tier accounts are always denied and external accounts always allowed;
// everything else asks the billing service.
func (m *messageRequest) AllowedToSendNotifications(ctx context.Context, editor model.Editor) (bool, error) {
	switch editor.AccountTier {
	case constants.AccountTierFree:
		return false, nil
	case constants.AccountTierExternal:
		return true, nil
	}

	slog.DebugContext(ctx, "requesting notification entitlement via NATS",
		"account_uid", editor.AccountUID,
		"subject", constants.BillingGetEntitlementSubject)

	answer, err := m.get(ctx, constants.BillingGetEntitlementSubject, editor.AccountUID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to request entitlement",
			"error", err,
			"account_uid", editor.AccountUID)
		return false, errors.NewServiceUnavailable(fmt.Sprintf("billing-api unavailable: %v", err))
	}

	return answer == "true", nil
}

// HasCapabilityOnGroup asks the access service whether the user holds the
// capability on the sharing group. Lookup failures deny rather than error:
// the classifier treats a missing capability as read-only access.
func (m *messageRequest) HasCapabilityOnGroup(ctx context.Context, userUID, groupUID, capability string) bool {
	payload := fmt.Sprintf("%s:%s:%s", userUID, groupUID, capability)

	answer, err := m.get(ctx, constants.AccessCheckGroupCapabilitySubject, payload)
	if err != nil {
		slog.WarnContext(ctx, "capability lookup failed, denying",
			"error", err,
			"group_uid", groupUID,
			"capability", capability)
		return false
	}

	return answer == "true"
}

// NewAddressDirectory creates the NATS backed recipient type resolver.
func NewAddressDirectory(client *NATSClient) port.AddressDirectory {
	return &messageRequest{
		client: client,
	}
}

// NewEntitlementChecker creates the NATS backed entitlement checker.
func NewEntitlementChecker(client *NATSClient) port.EntitlementChecker {
	return &messageRequest{
		client: client,
	}
}

// NewGroupCapabilityChecker creates the NATS backed permission oracle.
func NewGroupCapabilityChecker(client *NATSClient) port.GroupCapabilityChecker {
	return &messageRequest{
		client: client,
	}
}
