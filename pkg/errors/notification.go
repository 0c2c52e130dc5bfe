// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package errors

import "errors"

// EntitlementRequired represents an attempt to send invites, cancellations, or
// forced updates from an account that lacks the required feature entitlement.
type EntitlementRequired struct {
	base
}

// Error returns the error message for EntitlementRequired.
func (e EntitlementRequired) Error() string {
	return e.error()
}

// Unwrap returns the wrapped error, if any.
func (e EntitlementRequired) Unwrap() error {
	return e.err
}

// NewEntitlementRequired creates a new EntitlementRequired error with the provided message.
func NewEntitlementRequired(message string, err ...error) EntitlementRequired {
	return EntitlementRequired{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// RateLimited represents a throttled delivery attempt reported by the
// notification distributor. The caller should delay and retry; the core does
// not retry on its own.
type RateLimited struct {
	base
}

// Error returns the error message for RateLimited.
func (r RateLimited) Error() string {
	return r.error()
}

// Unwrap returns the wrapped error, if any.
func (r RateLimited) Unwrap() error {
	return r.err
}

// NewRateLimited creates a new RateLimited error with the provided message.
func NewRateLimited(message string, err ...error) RateLimited {
	return RateLimited{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}

// PayloadTooLarge represents a send or save whose payload exceeded the
// distributor's size limit.
type PayloadTooLarge struct {
	base
}

// Error returns the error message for PayloadTooLarge.
func (p PayloadTooLarge) Error() string {
	return p.error()
}

// Unwrap returns the wrapped error, if any.
func (p PayloadTooLarge) Unwrap() error {
	return p.err
}

// NewPayloadTooLarge creates a new PayloadTooLarge error with the provided message.
func NewPayloadTooLarge(message string, err ...error) PayloadTooLarge {
	return PayloadTooLarge{
		base: base{
			message: message,
			err:     errors.Join(err...),
		},
	}
}
