// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/cmd/calendar-event-api/service"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
)

// handleEventAPI sets up and starts the calendar event request subscriptions
func handleEventAPI(ctx context.Context, wg *sync.WaitGroup) error {
	slog.InfoContext(ctx, "starting calendar event API")

	// Get dependencies
	eventsAPI := service.NewEventsAPI(
		service.AuthService(ctx),
		service.EventStorage(ctx),
		service.NotificationDistributor(ctx),
		service.AddressDirectory(ctx),
		service.EntitlementChecker(ctx),
		service.CapabilityChecker(ctx),
		service.MessagePublisher(ctx),
	)
	natsClient := service.GetNATSClient(ctx)

	// Subscribe to all event request subjects
	handlers := map[string]func(context.Context, *nats.Msg){
		constants.EventSaveSubject:              eventsAPI.HandleSave,
		constants.EventDeleteSubject:            eventsAPI.HandleDelete,
		constants.EventExcludeOccurrenceSubject: eventsAPI.HandleExcludeOccurrence,
	}

	for subject, handler := range handlers {
		// Capture loop variables for closure
		subject := subject
		handler := handler
		_, subErr := natsClient.QueueSubscribe(
			subject,
			constants.EventAPIQueue,
			func(msg *nats.Msg) {
				// Check if service is shutting down
				select {
				case <-ctx.Done():
					slog.InfoContext(ctx, "rejecting message - service shutting down",
						"subject", msg.Subject)
					return
				default:
					// Continue processing
				}

				// Create fresh context with timeout for this message
				// Not derived from shutdown context to avoid cancellation issues
				msgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				handler(msgCtx, msg)
			},
		)
		if subErr != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", subject, subErr)
		}
		slog.InfoContext(ctx, "subscribed to event request subject",
			"subject", subject,
			"queue", constants.EventAPIQueue)
	}

	slog.InfoContext(ctx, "calendar event API started successfully")

	// Graceful shutdown
	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()
		slog.InfoContext(ctx, "shutting down calendar event API")
		// NATS client cleanup handled by Close() in main shutdown
	}()

	return nil
}
