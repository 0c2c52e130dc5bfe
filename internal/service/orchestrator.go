// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/constants"
	errs "github.com/linuxfoundation/lfx-v2-calendar-event-service/pkg/errors"
)

// SaveStatus is the terminal state of one save attempt.
type SaveStatus string

// SaveStatus constants
const (
	// SaveStatusSaved means the draft was persisted
	SaveStatusSaved SaveStatus = "saved"
	// SaveStatusNotSaved means the caller declined or cancelled at a gate
	SaveStatusNotSaved SaveStatus = "not-saved"
	// SaveStatusBusy means another save on the same draft was already in flight
	SaveStatusBusy SaveStatus = "busy"
)

// SaveResult reports what a save attempt did.
type SaveResult struct {
	Status   SaveStatus
	Event    *model.CalendarEvent
	Revision uint64
}

// SaveOrchestrator coordinates classification, diffing, user confirmation,
// notification dispatch, and persistence for one draft at a time.
type SaveOrchestrator struct {
	store       port.EventStore
	distributor port.NotificationDistributor
	directory   port.AddressDirectory
	entitlement port.EntitlementChecker
	prompter    port.SavePrompter
	publisher   port.MessagePublisher
}

// NewSaveOrchestrator creates an orchestrator with its external collaborators
// injected. The publisher may be nil, in which case downstream indexing and
// access messages are skipped.
func NewSaveOrchestrator(
	store port.EventStore,
	distributor port.NotificationDistributor,
	directory port.AddressDirectory,
	entitlement port.EntitlementChecker,
	prompter port.SavePrompter,
	publisher port.MessagePublisher,
) *SaveOrchestrator {
	return &SaveOrchestrator{
		store:       store,
		distributor: distributor,
		directory:   directory,
		entitlement: entitlement,
		prompter:    prompter,
		publisher:   publisher,
	}
}

// SaveAndSend runs the full save protocol for a draft: roster resolution,
// materialization, the role-dependent save path, and persistence. Re-entrant
// calls on the same draft are rejected with SaveStatusBusy rather than
// queued. The guard is released on every exit path.
func (o *SaveOrchestrator) SaveAndSend(ctx context.Context, draft *EventDraft, forceUpdate bool) (*SaveResult, error) {
	if !draft.beginProcessing() {
		slog.DebugContext(ctx, "save already in flight, rejecting re-entrant call")
		return &SaveResult{Status: SaveStatusBusy}, nil
	}
	defer draft.endProcessing()

	if o.prompter != nil {
		o.prompter.ObserveOperation(ctx, "save-event")
	}

	// Step 1: rosters must be authoritative before anything is decided
	if err := draft.Rosters().ResolveAll(ctx, o.directory); err != nil {
		slog.ErrorContext(ctx, "recipient resolution failed", "error", err)
		return nil, err
	}

	// Step 2: materialize, reporting user-correctable validation failures
	event, err := draft.Materialize(time.Now())
	if err != nil {
		slog.DebugContext(ctx, "draft failed validation", "error", err)
		return nil, err
	}

	slog.DebugContext(ctx, "executing save use case",
		"event_uid", event.UID,
		"calendar_uid", event.CalendarUID,
		"event_type", draft.Classification().Type,
		"force_update", forceUpdate,
	)

	// Step 3: branch on the role classification. Own events take the
	// notification path when anything needs to go out: a relevant change,
	// a forced update, or pending invites and cancellations on the rosters.
	rosters := draft.Rosters()
	pendingDispatch := rosters.Roster(model.RosterInvite).Len() > 0 ||
		rosters.Roster(model.RosterCancel).Len() > 0

	switch {
	case draft.Classification().Type == model.EventTypeOwn &&
		(forceUpdate || pendingDispatch || RequiresNotification(draft.Original(), event)):
		return o.notifyAndSave(ctx, draft, event, forceUpdate)

	case draft.Classification().Type == model.EventTypeInvite:
		return o.respondToOrganizer(ctx, draft, event)

	default:
		// Shared calendars and unchanged own events persist quietly.
		return o.persistOnly(ctx, draft, event)
	}
}

// notifyAndSave is the own-event path: confirm updates, re-check entitlement,
// confirm insecure passwords, then dispatch in fixed order so the persisted
// state reflects what was actually transmitted.
func (o *SaveOrchestrator) notifyAndSave(ctx context.Context, draft *EventDraft, event *model.CalendarEvent, forceUpdate bool) (*SaveResult, error) {
	rosters := draft.Rosters()
	inviteRoster := rosters.Roster(model.RosterInvite)
	updateRoster := rosters.Roster(model.RosterUpdate)
	cancelRoster := rosters.Roster(model.RosterCancel)

	// Step 1: the notify-existing-attendees gate, short-circuited by force-update
	sendUpdates := forceUpdate
	if !forceUpdate && updateRoster.Len() > 0 {
		decision, err := o.prompter.AskForUpdates(ctx)
		if err != nil {
			return nil, err
		}
		switch decision {
		case port.UpdateDecisionCancel:
			slog.DebugContext(ctx, "save cancelled at update confirmation gate")
			return &SaveResult{Status: SaveStatusNotSaved}, nil
		case port.UpdateDecisionYes:
			sendUpdates = true
		}
	}

	// Step 2: entitlement is re-checked here, after the async prompt, because
	// account state may have changed while the prompt was outstanding
	needsEntitlement := inviteRoster.Len() > 0 || cancelRoster.Len() > 0 ||
		(forceUpdate && updateRoster.Len() > 0)
	if needsEntitlement {
		allowed, err := o.entitlement.AllowedToSendNotifications(ctx, draft.Editor())
		if err != nil {
			slog.ErrorContext(ctx, "entitlement check failed", "error", err)
			return nil, err
		}
		if !allowed {
			return nil, errs.NewEntitlementRequired("sending event notifications requires a paid plan")
		}
	}

	// Step 3: confidential invites to recipients with unconfirmed passwords
	// need explicit confirmation; already-decided roster members are not re-prompted
	if inviteRoster.Len() > 0 && rosters.Confidential() {
		insecure := false
		for _, entry := range inviteRoster.Entries() {
			if entry.Insecure() {
				insecure = true
				break
			}
		}
		if insecure {
			proceed, err := o.prompter.AskInsecurePassword(ctx)
			if err != nil {
				return nil, err
			}
			if !proceed {
				slog.DebugContext(ctx, "save declined at insecure password gate")
				return &SaveResult{Status: SaveStatusNotSaved}, nil
			}
		}
	}

	// Step 4: fixed dispatch order, awaited sequentially. A failure partway
	// leaves a consistent subset applied and surfaces as an error.
	if err := o.dispatchInvites(ctx, draft, event, inviteRoster); err != nil {
		return nil, err
	}

	if cancelRoster.Len() > 0 {
		if err := o.distributor.SendCancellation(ctx, event, cancelRoster.Entries()); err != nil {
			slog.ErrorContext(ctx, "cancellation dispatch failed", "error", err)
			return nil, err
		}
	}

	saved, revision, err := o.persist(ctx, draft, event)
	if err != nil {
		return nil, err
	}

	if sendUpdates && updateRoster.Len() > 0 {
		if err := o.distributor.SendUpdate(ctx, saved, updateRoster.Entries()); err != nil {
			slog.ErrorContext(ctx, "update dispatch failed", "error", err)
			return nil, err
		}
	}

	o.publishEventMessages(ctx, draft, saved)
	return &SaveResult{Status: SaveStatusSaved, Event: saved, Revision: revision}, nil
}

// dispatchInvites sends first invitations to the added-pending subset of the
// invite roster, flipping each recipient's ledger status to needs-action on
// success so the persisted snapshot records post-dispatch state.
func (o *SaveOrchestrator) dispatchInvites(ctx context.Context, draft *EventDraft, event *model.CalendarEvent, inviteRoster *RecipientRoster) error {
	var pending []*model.RecipientEntry
	for _, entry := range inviteRoster.Entries() {
		if draft.Ledger().GetOrDefault(entry.Address.Email, model.StatusNeedsAction) == model.StatusAddedPending {
			pending = append(pending, entry)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	if err := o.distributor.SendInvite(ctx, event, pending); err != nil {
		slog.ErrorContext(ctx, "invite dispatch failed", "error", err)
		return err
	}

	for _, entry := range pending {
		draft.Ledger().Set(entry.Address.Email, model.StatusNeedsAction)
	}
	for i := range event.Attendees {
		if event.Attendees[i].Status == model.StatusAddedPending {
			event.Attendees[i].Status = draft.Ledger().GetOrDefault(event.Attendees[i].Address.Email, model.StatusNeedsAction)
		}
	}
	return nil
}

// respondToOrganizer is the invite path: if the editor's desired RSVP status
// actually changed and is an actionable response, a one-off response goes to
// the organizer before the event is persisted.
func (o *SaveOrchestrator) respondToOrganizer(ctx context.Context, draft *EventDraft, event *model.CalendarEvent) (*SaveResult, error) {
	self := draft.SelfAttendee()
	organizer := draft.Organizer()

	if self != nil && organizer != nil {
		previous := model.StatusNeedsAction
		if original := draft.Original(); original != nil {
			for _, attendee := range original.Attendees {
				if attendee.Address.SameAddress(self.Address) {
					previous = attendee.Status
					break
				}
			}
		}

		desired := self.Status
		if desired != previous && desired.IsResponse() {
			// Transient roster addressed to the organizer only
			response := NewRecipientRoster(model.RosterInvite)
			response.Add(*organizer, nil)
			if err := o.distributor.SendResponse(ctx, event, response.Entries(), self.Address, desired); err != nil {
				slog.ErrorContext(ctx, "response dispatch failed",
					"error", err,
					"organizer", organizer.Email,
				)
				return nil, err
			}
			slog.DebugContext(ctx, "response sent to organizer",
				"organizer", organizer.Email,
				"status", desired,
			)
		}
	}

	return o.persistOnly(ctx, draft, event)
}

// persistOnly saves the materialized snapshot without any notification.
func (o *SaveOrchestrator) persistOnly(ctx context.Context, draft *EventDraft, event *model.CalendarEvent) (*SaveResult, error) {
	saved, revision, err := o.persist(ctx, draft, event)
	if err != nil {
		return nil, err
	}
	o.publishEventMessages(ctx, draft, saved)
	return &SaveResult{Status: SaveStatusSaved, Event: saved, Revision: revision}, nil
}

func (o *SaveOrchestrator) persist(ctx context.Context, draft *EventDraft, event *model.CalendarEvent) (*model.CalendarEvent, uint64, error) {
	alarms := draft.Alarms()
	timezone := draft.Timezone().String()

	if draft.Original() == nil {
		saved, revision, err := o.store.CreateEvent(ctx, event, alarms, timezone, draft.Calendar().UID)
		if err != nil {
			slog.ErrorContext(ctx, "failed to create event", "error", err, "event_uid", event.UID)
			return nil, 0, err
		}
		slog.DebugContext(ctx, "event created", "event_uid", saved.UID, "revision", revision)
		return saved, revision, nil
	}

	saved, revision, err := o.store.UpdateEvent(ctx, event, alarms, timezone, draft.Calendar().UID, draft.OriginalRevision())
	if err != nil {
		slog.ErrorContext(ctx, "failed to update event",
			"error", err,
			"event_uid", event.UID,
			"expected_revision", draft.OriginalRevision(),
		)
		return nil, 0, err
	}
	slog.DebugContext(ctx, "event updated", "event_uid", saved.UID, "revision", revision)
	return saved, revision, nil
}

// DeleteEvent removes a persisted event. On an own event with outstanding
// attendees a cancellation notice is dispatched first. A missing event is an
// idempotent no-op, not an error.
func (o *SaveOrchestrator) DeleteEvent(ctx context.Context, draft *EventDraft) error {
	original := draft.Original()
	if original == nil || original.UID == "" {
		return nil
	}

	slog.DebugContext(ctx, "executing delete use case",
		"event_uid", original.UID,
		"event_type", draft.Classification().Type,
	)

	if draft.Classification().Type == model.EventTypeOwn {
		if err := draft.Rosters().ResolveAll(ctx, o.directory); err != nil {
			return err
		}
		recipients := draft.Rosters().AllRecipients()
		if len(recipients) > 0 {
			if err := o.distributor.SendCancellation(ctx, original, recipients); err != nil {
				slog.ErrorContext(ctx, "cancellation dispatch failed", "error", err)
				return err
			}
		}
	}

	err := o.store.DeleteEvent(ctx, original.UID, draft.OriginalRevision())
	if err != nil {
		var notFoundErr errs.NotFound
		if stderrors.As(err, &notFoundErr) {
			slog.DebugContext(ctx, "event already absent, treating delete as satisfied",
				"event_uid", original.UID,
			)
			return nil
		}
		slog.ErrorContext(ctx, "failed to delete event", "error", err, "event_uid", original.UID)
		return err
	}

	o.publishDeleteMessages(ctx, original)
	return nil
}

// ExcludeOccurrence suppresses a single occurrence of a recurring series by
// inserting its start instant into the root event's exclusion list, keeping
// the list sorted ascending, and persisting the updated root. The caller's
// in-memory draft of the clicked occurrence is left untouched.
func (o *SaveOrchestrator) ExcludeOccurrence(ctx context.Context, rootUID string, occurrenceStart time.Time) (*model.CalendarEvent, uint64, error) {
	root, revision, err := o.store.GetEvent(ctx, rootUID)
	if err != nil {
		return nil, 0, err
	}
	if root.RepeatRule == nil {
		return nil, 0, errs.NewValidation("event is not recurring, no occurrence to exclude")
	}

	updated := root.Clone()
	updated.RepeatRule.InsertExcludedDate(occurrenceStart)

	alarms, err := o.store.LoadAlarms(ctx, updated.AlarmRefs)
	if err != nil {
		return nil, 0, err
	}

	saved, newRevision, err := o.store.UpdateEvent(ctx, updated, alarms, "", updated.CalendarUID, revision)
	if err != nil {
		slog.ErrorContext(ctx, "failed to persist occurrence exclusion",
			"error", err,
			"event_uid", rootUID,
			"occurrence", occurrenceStart,
		)
		return nil, 0, err
	}

	slog.DebugContext(ctx, "occurrence excluded",
		"event_uid", rootUID,
		"occurrence", occurrenceStart,
		"exclusion_count", len(saved.RepeatRule.ExcludedDates),
	)
	return saved, newRevision, nil
}

// publishEventMessages emits the indexer and access control messages for a
// saved snapshot. Publishing failures are logged and swallowed: the save
// already succeeded and downstream indexes converge on the next write.
func (o *SaveOrchestrator) publishEventMessages(ctx context.Context, draft *EventDraft, event *model.CalendarEvent) {
	if o.publisher == nil {
		slog.WarnContext(ctx, "publisher not available, skipping event message publishing")
		return
	}

	action := model.ActionUpdated
	if draft.Original() == nil {
		action = model.ActionCreated
	}

	indexerMessage := &model.IndexerMessage{
		Action: action,
		Tags:   event.Tags(),
	}
	builtIndexerMessage, err := indexerMessage.Build(ctx, event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build event indexer message", "error", err)
		return
	}

	accessMessage := &model.AccessMessage{
		UID:        event.UID,
		ObjectType: constants.ObjectTypeCalendarEvent,
		Public:     !event.Confidential,
		Relations:  map[string][]string{},
		References: map[string]string{
			constants.RelationCalendar: event.CalendarUID,
		},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return o.publisher.Indexer(groupCtx, constants.IndexCalendarEventSubject, builtIndexerMessage)
	})
	group.Go(func() error {
		return o.publisher.Access(groupCtx, constants.UpdateAccessCalendarEventSubject, accessMessage)
	})
	if err := group.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to publish event messages",
			"error", err,
			"event_uid", event.UID,
		)
	}
}

func (o *SaveOrchestrator) publishDeleteMessages(ctx context.Context, event *model.CalendarEvent) {
	if o.publisher == nil {
		slog.WarnContext(ctx, "publisher not available, skipping event message publishing")
		return
	}

	indexerMessage := &model.IndexerMessage{Action: model.ActionDeleted}
	builtIndexerMessage, err := indexerMessage.Build(ctx, event.UID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build event indexer message", "error", err)
		return
	}

	accessMessage := &model.AccessMessage{
		UID:        event.UID,
		ObjectType: constants.ObjectTypeCalendarEvent,
		Relations:  map[string][]string{},
		References: map[string]string{},
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return o.publisher.Indexer(groupCtx, constants.IndexCalendarEventSubject, builtIndexerMessage)
	})
	group.Go(func() error {
		return o.publisher.Access(groupCtx, constants.DeleteAllAccessCalendarEventSubject, accessMessage)
	})
	if err := group.Wait(); err != nil {
		slog.ErrorContext(ctx, "failed to publish event deletion messages",
			"error", err,
			"event_uid", event.UID,
		)
	}
}
