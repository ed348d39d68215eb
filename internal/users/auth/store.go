// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package auth

import (
	"context"
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # User Data Access

// UserRepository defines the data access contract for user accounts.
type UserRepository interface {

	/*
		FindByID returns the account with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByID(context context.Context, id string) (*User, error)

	/*
		FindByEmail returns the account with the given email.

		Parameters:
		  - context: context.Context
		  - email: string

		Returns:
		  - *User: Hydrated entity
		  - error: Database retrieval failures
	*/
	FindByEmail(context context.Context, email string) (*User, error)

	/*
		FindPrincipal resolves an account ID into a request principal, joining
		the vendor profile (status and reason) for vendor accounts so that
		downstream gates never need a second read.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *sec.Principal: Role, active flag, and vendor status snapshot
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindPrincipal(context context.Context, id string) (*sec.Principal, error)

	/*
		Create persists a brand-new user account to the storage.

		Parameters:
		  - context: context.Context
		  - user: *User

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, user *User) error

	/*
		UpdatePassword replaces only the user's password hash.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - newHash: string

		Returns:
		  - error: Persistence failures
	*/
	UpdatePassword(context context.Context, userID, newHash string) error

	/*
		UpdateRole replaces the account's role. Used when a customer applies
		to become a vendor.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - role: sec.Role

		Returns:
		  - error: Persistence failures
	*/
	UpdateRole(context context.Context, userID string, role sec.Role) error

	/*
		SetActive flips the account's active flag. Deactivated accounts keep
		their data but fail every gate.

		Parameters:
		  - context: context.Context
		  - userID: string
		  - active: bool

		Returns:
		  - error: Persistence failures
	*/
	SetActive(context context.Context, userID string, active bool) error

	/*
		MarkVerified updates the user's status to isverified = true.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	MarkVerified(context context.Context, userID string) error
}

// # Session Data Access

// SessionRepository defines the data access contract for opaque-token sessions.
type SessionRepository interface {

	/*
		Create persists a new tracking session for an authenticated login.

		Parameters:
		  - context: context.Context
		  - session: *Session

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, session *Session) error

	/*
		FindUsableByTokenHash returns the session matching the given token
		hash, provided it is still active and unexpired.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - *Session: Hydrated entity
		  - error: apperr.SessionNotFound or database retrieval failures
	*/
	FindUsableByTokenHash(context context.Context, tokenHash string) (*Session, error)

	/*
		Touch updates the session's last-seen timestamp. It never moves the
		expiry window.

		Parameters:
		  - context: context.Context
		  - sessionID: string
		  - seenAt: time.Time

		Returns:
		  - error: Persistence failures
	*/
	Touch(context context.Context, sessionID string, seenAt time.Time) error

	/*
		InvalidateByTokenHash marks the session with the given token hash as
		permanently unusable. Invalidating an unknown or already-invalidated
		token is not an error.

		Parameters:
		  - context: context.Context
		  - tokenHash: string

		Returns:
		  - error: Persistence failures
	*/
	InvalidateByTokenHash(context context.Context, tokenHash string) error

	/*
		InvalidateAll invalidates every active session belonging to the userID.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - error: Persistence failures
	*/
	InvalidateAll(context context.Context, userID string) error

	/*
		DeleteSweepable physically removes sessions that are expired, or that
		are invalidated and last seen before the retention cutoff.

		Parameters:
		  - context: context.Context
		  - now: time.Time
		  - retention: time.Duration

		Returns:
		  - int64: Number of rows removed
		  - error: Cleanup failures
	*/
	DeleteSweepable(context context.Context, now time.Time, retention time.Duration) (int64, error)

	/*
		ListActive returns non-sensitive summaries of the user's active,
		unexpired sessions, newest first.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - []SessionSummary: Device list, newest first
		  - error: Database retrieval failures
	*/
	ListActive(context context.Context, userID string) ([]SessionSummary, error)
}

// # Volatile Data Access

// ResetTokenRepository defines the contract for storing volatile password reset tokens.
type ResetTokenRepository interface {

	/*
		Set stores a reset token associated with a userID for a limited duration.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given reset token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a reset token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}

// VerificationTokenRepository defines the contract for storing volatile email verification tokens.
type VerificationTokenRepository interface {

	/*
		Set stores a verification token associated with a userID.

		Parameters:
		  - context: context.Context
		  - token: string
		  - userID: string
		  - ttl: time.Duration

		Returns:
		  - error: Persistence failures
	*/
	Set(context context.Context, token string, userID string, ttl time.Duration) error

	/*
		Get retrieves the userID associated with a given verification token.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - string: UserID
		  - error: Retrieval failures
	*/
	Get(context context.Context, token string) (string, error)

	/*
		Delete removes a verification token after successful use.

		Parameters:
		  - context: context.Context
		  - token: string

		Returns:
		  - error: Persistence failures
	*/
	Delete(context context.Context, token string) error
}
