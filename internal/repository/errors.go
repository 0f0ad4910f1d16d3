// Package repository owns the authoritative in-memory collections of
// clients, owners and transports, plus the sentinel error values shared
// with the layers above.  Sentinels let handlers distinguish failure
// scenarios with errors.Is: a missing entity key maps to HTTP 404, an
// empty strategy result to 404 with a reason the requester can retry
// on, a credential mismatch to 401, and a repeated decision on a
// terminal notification to 409.
package repository

import "errors"

// ErrNotFound is returned when an entity key (email or registration
// plate) does not exist in the store.  Callers holding user-supplied
// keys should check existence first.
var ErrNotFound = errors.New("not found")

// ErrNoAvailableTransport is returned by selection strategies when no
// transport satisfies the predicate.  It is recoverable: the requester
// may retry later.  Wrapped values carry a human-readable reason.
var ErrNoAvailableTransport = errors.New("no available transport")

// ErrInvalidCredentials is returned on login when the account is
// unknown or the password does not match.  No state mutates.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrEmailExists is returned when registering a client or owner under
// an email already in use.
var ErrEmailExists = errors.New("email already exists")

// ErrRegistrationExists is returned when adding a transport whose
// registration plate is already listed.
var ErrRegistrationExists = errors.New("registration already exists")

// ErrNotificationResolved is returned when a decision is submitted for
// a notification that already reached a terminal state.  The engine
// applies nothing; re-evaluation must be a no-op.
var ErrNotificationResolved = errors.New("notification already resolved")

// ErrInsufficientAutonomy guards the accept path: a rental must never
// be applied when the transport cannot reach the destination and no
// refill was authorized.  Seeing this error outside the pre-check is a
// defect, not a user-facing condition.
var ErrInsufficientAutonomy = errors.New("insufficient autonomy")

// ErrNotEvaluableYet is returned when a rating notification is acted on
// before its scheduled evaluable time.
var ErrNotEvaluableYet = errors.New("rating not evaluable yet")
