// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/model"
	"github.com/linuxfoundation/lfx-v2-calendar-event-service/internal/domain/port"
)

// RecipientRoster is an ordered collection of pending recipients for one
// outbound purpose. Membership is mutated only by the main edit flow; the
// asynchronous resolution in ResolveAll updates per-entry resolution state
// but never membership, so the mutex protects field updates, not ordering.
type RecipientRoster struct {
	kind    model.RosterKind
	mu      sync.Mutex
	entries []*model.RecipientEntry
	index   map[string]*model.RecipientEntry
}

// NewRecipientRoster creates an empty roster for the given channel.
func NewRecipientRoster(kind model.RosterKind) *RecipientRoster {
	return &RecipientRoster{
		kind:  kind,
		index: make(map[string]*model.RecipientEntry),
	}
}

// Kind returns the roster's channel tag.
func (r *RecipientRoster) Kind() model.RosterKind {
	return r.kind
}

// Add appends a recipient, returning the entry. Adding an address already on
// the roster returns the existing entry unchanged.
func (r *RecipientRoster) Add(address model.EventAddress, contact *model.Contact) *model.RecipientEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := address.NormalizedEmail()
	if existing, ok := r.index[key]; ok {
		return existing
	}

	entry := &model.RecipientEntry{
		Address: address,
		State:   model.ResolutionUnresolved,
		Type:    model.RecipientUnknown,
		Contact: contact,
	}
	r.entries = append(r.entries, entry)
	r.index[key] = entry
	return entry
}

// Remove deletes the recipient with the given email. It reports whether the
// address was present; removing an absent address is a no-op.
func (r *RecipientRoster) Remove(email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := model.NormalizeEmail(email)
	if _, ok := r.index[key]; !ok {
		return false
	}
	delete(r.index, key)
	for i, entry := range r.entries {
		if entry.Address.NormalizedEmail() == key {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the address is on the roster.
func (r *RecipientRoster) Contains(email string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.index[model.NormalizeEmail(email)]
	return ok
}

// Get returns the entry for an address, or nil.
func (r *RecipientRoster) Get(email string) *model.RecipientEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.index[model.NormalizeEmail(email)]
}

// Entries returns the roster's entries in insertion order.
func (r *RecipientRoster) Entries() []*model.RecipientEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.RecipientEntry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of recipients on the roster.
func (r *RecipientRoster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// resolveAll resolves every unresolved entry against the directory. A lookup
// failure marks the entry RecipientUnknown rather than failing the batch.
func (r *RecipientRoster) resolveAll(ctx context.Context, directory port.AddressDirectory) error {
	group, ctx := errgroup.WithContext(ctx)

	for _, entry := range r.Entries() {
		r.mu.Lock()
		if entry.State == model.ResolutionResolved {
			r.mu.Unlock()
			continue
		}
		entry.State = model.ResolutionResolving
		r.mu.Unlock()

		group.Go(func() error {
			recipientType, err := directory.ResolveRecipientType(ctx, entry.Address.Email)
			if err != nil {
				slog.WarnContext(ctx, "recipient resolution failed",
					"roster", r.kind,
					"error", err,
				)
				recipientType = model.RecipientUnknown
			}

			r.mu.Lock()
			entry.Type = recipientType
			entry.State = model.ResolutionResolved
			r.mu.Unlock()
			return ctx.Err()
		})
	}

	return group.Wait()
}

// RosterSet owns the three notification rosters of one edit session and
// enforces the single-membership invariant: an address lives on at most one
// roster at any time.
type RosterSet struct {
	invite *RecipientRoster
	update *RecipientRoster
	cancel *RecipientRoster

	// confidential applies uniformly across all three rosters
	confidential bool
}

// NewRosterSet creates the invite/update/cancel roster triple.
func NewRosterSet() *RosterSet {
	return &RosterSet{
		invite: NewRecipientRoster(model.RosterInvite),
		update: NewRecipientRoster(model.RosterUpdate),
		cancel: NewRecipientRoster(model.RosterCancel),
	}
}

// Roster returns the roster for a channel.
func (s *RosterSet) Roster(kind model.RosterKind) *RecipientRoster {
	switch kind {
	case model.RosterInvite:
		return s.invite
	case model.RosterUpdate:
		return s.update
	default:
		return s.cancel
	}
}

// Add places an address on the given roster. If the address currently lives
// on a different roster it is removed there first, so a move is always a
// remove-then-add and never a copy.
func (s *RosterSet) Add(kind model.RosterKind, address model.EventAddress, contact *model.Contact) *model.RecipientEntry {
	for _, roster := range s.all() {
		if roster.kind != kind {
			roster.Remove(address.Email)
		}
	}
	return s.Roster(kind).Add(address, contact)
}

// Remove deletes the address from whichever roster holds it, reporting the
// roster it was removed from. Removing an absent address is a no-op with
// found == false; callers must check found before assuming a transition.
func (s *RosterSet) Remove(email string) (model.RosterKind, bool) {
	for _, roster := range s.all() {
		if roster.Remove(email) {
			return roster.kind, true
		}
	}
	return "", false
}

// Holding reports which roster, if any, currently holds the address.
func (s *RosterSet) Holding(email string) (model.RosterKind, bool) {
	for _, roster := range s.all() {
		if roster.Contains(email) {
			return roster.kind, true
		}
	}
	return "", false
}

// SetPassword records the preshared password for an address wherever it is
// rostered, marking it unconfirmed until verified out of band.
func (s *RosterSet) SetPassword(email, password string) bool {
	for _, roster := range s.all() {
		if entry := roster.Get(email); entry != nil {
			roster.mu.Lock()
			entry.Password = password
			entry.PasswordConfirmed = false
			roster.mu.Unlock()
			return true
		}
	}
	return false
}

// ConfirmPassword marks an address's preshared password as verified.
func (s *RosterSet) ConfirmPassword(email string) bool {
	for _, roster := range s.all() {
		if entry := roster.Get(email); entry != nil {
			roster.mu.Lock()
			entry.PasswordConfirmed = true
			roster.mu.Unlock()
			return true
		}
	}
	return false
}

// Password returns the preshared password for an address, if rostered.
func (s *RosterSet) Password(email string) (string, bool) {
	for _, roster := range s.all() {
		if entry := roster.Get(email); entry != nil {
			return entry.Password, true
		}
	}
	return "", false
}

// SetConfidential sets the confidentiality flag across all three rosters.
func (s *RosterSet) SetConfidential(confidential bool) {
	s.confidential = confidential
}

// Confidential returns the uniform confidentiality flag.
func (s *RosterSet) Confidential() bool {
	return s.confidential
}

// AllRecipients returns every rostered recipient across the three channels.
func (s *RosterSet) AllRecipients() []*model.RecipientEntry {
	var out []*model.RecipientEntry
	for _, roster := range s.all() {
		out = append(out, roster.Entries()...)
	}
	return out
}

// ResolveAll awaits recipient type resolution on all three rosters. No roster
// is authoritative for sending until this has completed.
func (s *RosterSet) ResolveAll(ctx context.Context, directory port.AddressDirectory) error {
	group, ctx := errgroup.WithContext(ctx)
	for _, roster := range s.all() {
		group.Go(func() error {
			return roster.resolveAll(ctx, directory)
		})
	}
	return group.Wait()
}

func (s *RosterSet) all() [3]*RecipientRoster {
	return [3]*RecipientRoster{s.invite, s.update, s.cancel}
}
