// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

// Package service wires the NATS request surface to the event editing core.
package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	internalservice "github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/service"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// EventsAPI serves the calendar event request subjects.
type EventsAPI struct {
	auth         port.Authenticator
	store        port.EventStore
	distributor  port.NotificationDistributor
	directory    port.AddressDirectory
	entitlement  port.EntitlementChecker
	capabilities port.GroupCapabilityChecker
	publisher    port.MessagePublisher
}

// NewEventsAPI creates the request handler with its collaborators injected
func NewEventsAPI(
	auth port.Authenticator,
	store port.EventStore,
	distributor port.NotificationDistributor,
	directory port.AddressDirectory,
	entitlement port.EntitlementChecker,
	capabilities port.GroupCapabilityChecker,
	publisher port.MessagePublisher,
) *EventsAPI {
	return &EventsAPI{
		auth:         auth,
		store:        store,
		distributor:  distributor,
		directory:    directory,
		entitlement:  entitlement,
		capabilities: capabilities,
		publisher:    publisher,
	}
}

// authenticate validates the request's bearer token and returns a context
// carrying the acting principal.
func (s *EventsAPI) authenticate(ctx context.Context, msg *nats.Msg) (context.Context, error) {
	token := msg.Header.Get(constants.AuthorizationHeader)

	principal, err := s.auth.ParsePrincipal(ctx, token, slog.Default())
	if err != nil {
		return ctx, err
	}

	return context.WithValue(ctx, constants.PrincipalContextID, principal), nil
}

// HandleSave processes one save request and replies with the save result.
func (s *EventsAPI) HandleSave(ctx context.Context, msg *nats.Msg) {
	ctx, err := s.authenticate(ctx, msg)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	var req SaveEventRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.respondError(ctx, msg, errs.NewValidation("invalid save request payload", err))
		return
	}
	if err := validateSaveRequest(&req); err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	draft, err := s.openDraft(ctx, req.Editor, req.Calendar, req.EventUID, req.Timezone)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}
	if err := applyChanges(draft, &req.Changes); err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	orchestrator := internalservice.NewSaveOrchestrator(
		s.store, s.distributor, s.directory, s.entitlement, newScriptedPrompter(&req), s.publisher)

	result, err := orchestrator.SaveAndSend(ctx, draft, req.ForceUpdate)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	s.respond(ctx, msg, SaveEventResponse{
		Status:   string(result.Status),
		Event:    result.Event,
		Revision: result.Revision,
	})
}

// HandleDelete processes one delete request. Deleting an event that no
// longer exists succeeds.
func (s *EventsAPI) HandleDelete(ctx context.Context, msg *nats.Msg) {
	ctx, err := s.authenticate(ctx, msg)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	var req DeleteEventRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.respondError(ctx, msg, errs.NewValidation("invalid delete request payload", err))
		return
	}
	if err := validateDeleteRequest(&req); err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	draft, err := s.openDraft(ctx, req.Editor, req.Calendar, req.EventUID, req.Timezone)
	if err != nil {
		var notFoundErr errs.NotFound
		if stderrors.As(err, &notFoundErr) {
			s.respond(ctx, msg, SaveEventResponse{Status: string(internalservice.SaveStatusSaved)})
			return
		}
		s.respondError(ctx, msg, err)
		return
	}

	orchestrator := internalservice.NewSaveOrchestrator(
		s.store, s.distributor, s.directory, s.entitlement, scriptedPrompter{updates: notifyYes}, s.publisher)

	if err := orchestrator.DeleteEvent(ctx, draft); err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	s.respond(ctx, msg, SaveEventResponse{Status: string(internalservice.SaveStatusSaved)})
}

// HandleExcludeOccurrence suppresses a single occurrence of a recurring
// series and replies with the updated snapshot.
func (s *EventsAPI) HandleExcludeOccurrence(ctx context.Context, msg *nats.Msg) {
	ctx, err := s.authenticate(ctx, msg)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	var req ExcludeOccurrenceRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		s.respondError(ctx, msg, errs.NewValidation("invalid exclusion request payload", err))
		return
	}
	occurrenceStart, err := validateExcludeRequest(&req)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	orchestrator := internalservice.NewSaveOrchestrator(
		s.store, s.distributor, s.directory, s.entitlement, scriptedPrompter{updates: notifyYes}, s.publisher)

	event, revision, err := orchestrator.ExcludeOccurrence(ctx, req.EventUID, occurrenceStart)
	if err != nil {
		s.respondError(ctx, msg, err)
		return
	}

	s.respond(ctx, msg, ExcludeOccurrenceResponse{Event: event, Revision: revision})
}

// openDraft loads the original snapshot when an event UID is given,
// classifies the editor's role, and opens the edit session.
func (s *EventsAPI) openDraft(ctx context.Context, editorPayload EditorPayload, calendarPayload CalendarPayload, eventUID, timezone string) (*internalservice.EventDraft, error) {
	editor := convertEditorPayloadToDomain(editorPayload)
	calendar := convertCalendarPayloadToDomain(calendarPayload)

	var original *model.CalendarEvent
	var revision uint64
	if eventUID != "" {
		var err error
		original, revision, err = s.store.GetEvent(ctx, eventUID)
		if err != nil {
			return nil, err
		}
	}

	calendars := map[string]model.CalendarInfo{calendar.UID: calendar}
	classification := internalservice.ClassifyEvent(ctx, original, calendars, editor, s.capabilities)

	zone := time.UTC
	if timezone != "" {
		// Validated upstream
		zone, _ = time.LoadLocation(timezone)
	}

	return internalservice.NewEventDraft(internalservice.DraftOptions{
		Editor:           editor,
		Calendar:         calendar,
		Original:         original,
		OriginalRevision: revision,
		Classification:   classification,
		Zone:             zone,
	}), nil
}

func (s *EventsAPI) respond(ctx context.Context, msg *nats.Msg, payload any) {
	if msg.Reply == "" {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal response", "error", err)
		return
	}
	if err := msg.Respond(data); err != nil {
		slog.ErrorContext(ctx, "failed to respond to request", "error", err, "subject", msg.Subject)
	}
}

func (s *EventsAPI) respondError(ctx context.Context, msg *nats.Msg, err error) {
	slog.ErrorContext(ctx, "request failed", "error", err, "subject", msg.Subject)
	s.respond(ctx, msg, ErrorResponse{Error: err.Error()})
}
