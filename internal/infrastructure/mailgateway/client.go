// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package mailgateway delivers event notifications through the LFX mail
// gateway as iCalendar iTIP messages.
package mailgateway

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/google/go-querystring/query"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/httpclient"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/redaction"
)

// bearerAuthRoundTripper injects the gateway API key on every request
type bearerAuthRoundTripper struct {
	apiKey string
}

func (rt *bearerAuthRoundTripper) RoundTrip(req *http.Request, next func(*http.Request) (*http.Response, error)) (*http.Response, error) {
	if rt.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+rt.apiKey)
	}
	return next(req)
}

// Client sends iTIP notifications through the mail gateway API.
type Client struct {
	config     Config
	httpClient *httpclient.Client
}

// NewClient creates a new mail gateway client with the given configuration
func NewClient(config Config) *Client {
	httpConfig := httpclient.Config{
		Timeout:      config.Timeout,
		MaxRetries:   config.MaxRetries,
		RetryDelay:   config.RetryDelay,
		RetryBackoff: true,
	}

	client := httpclient.NewClient(httpConfig)
	client.AddRoundTripper(&bearerAuthRoundTripper{apiKey: config.APIKey})

	return &Client{
		config:     config,
		httpClient: client,
	}
}

// NewNotificationDistributor creates a mail gateway backed notification
// distributor.
func NewNotificationDistributor(config Config) port.NotificationDistributor {
	return NewClient(config)
}

// deliveryOptions are the per-recipient delivery parameters the gateway
// expects alongside the iTIP payload
type deliveryOptions struct {
	Method   string `url:"method"`
	EventUID string `url:"event_uid"`
	To       string `url:"to"`
	ToName   string `url:"to_name,omitempty"`
	Sender   string `url:"sender,omitempty"`
	// Secured tells the gateway to wrap the message for a recipient that
	// holds a preshared password
	Secured bool `url:"secured,omitempty"`
}

// SendInvite dispatches a first invitation to the given recipients.
func (c *Client) SendInvite(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error {
	return c.deliver(ctx, event, methodRequest, recipients, event.Attendees)
}

// SendUpdate dispatches an update notice to the given recipients.
func (c *Client) SendUpdate(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error {
	return c.deliver(ctx, event, methodRequest, recipients, event.Attendees)
}

// SendCancellation dispatches a cancellation notice to the given recipients.
func (c *Client) SendCancellation(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry) error {
	return c.deliver(ctx, event, methodCancel, recipients, event.Attendees)
}

// SendResponse dispatches the editor's RSVP to the organizer. The payload
// carries only the responding attendee.
func (c *Client) SendResponse(ctx context.Context, event *model.CalendarEvent, recipients []*model.RecipientEntry, sender model.EventAddress, status model.AttendeeStatus) error {
	reply := []model.Attendee{{Address: sender, Status: status}}
	return c.deliverFrom(ctx, event, methodReply, recipients, reply, sender.NormalizedEmail())
}

func (c *Client) deliver(ctx context.Context, event *model.CalendarEvent, method string, recipients []*model.RecipientEntry, attendees []model.Attendee) error {
	sender := ""
	if event.Organizer != nil {
		sender = event.Organizer.NormalizedEmail()
	}
	return c.deliverFrom(ctx, event, method, recipients, attendees, sender)
}

func (c *Client) deliverFrom(ctx context.Context, event *model.CalendarEvent, method string, recipients []*model.RecipientEntry, attendees []model.Attendee, sender string) error {
	if len(recipients) == 0 {
		return nil
	}

	payload, err := encodeITIP(event, method, attendees)
	if err != nil {
		return err
	}

	for _, recipient := range recipients {
		options := deliveryOptions{
			Method:   method,
			EventUID: event.UID,
			To:       recipient.Address.NormalizedEmail(),
			ToName:   recipient.Address.Name,
			Sender:   sender,
			Secured:  recipient.Password != "" && recipient.PasswordConfirmed,
		}
		if err := c.send(ctx, options, payload, recipient.Password); err != nil {
			return err
		}

		slog.DebugContext(ctx, "notification dispatched",
			"method", method,
			"event_uid", event.UID,
			"recipient", redaction.RedactEmail(recipient.Address.Email),
		)
	}

	return nil
}

// send posts one iTIP message. Delivery parameters travel as query values,
// the recipient password as a header so it never appears in request logs.
func (c *Client) send(ctx context.Context, options deliveryOptions, payload []byte, password string) error {
	values, err := query.Values(options)
	if err != nil {
		return MapHTTPError(ctx, err)
	}

	reqURL := c.config.BaseURL + "/v1/notifications?" + values.Encode()

	headers := map[string]string{
		"Content-Type": "text/calendar; charset=utf-8; method=" + options.Method,
	}
	if options.Secured {
		headers["X-Delivery-Password"] = password
	}

	if _, err := c.httpClient.Request(ctx, http.MethodPost, reqURL, bytes.NewReader(payload), headers); err != nil {
		return MapHTTPError(ctx, err)
	}

	return nil
}
