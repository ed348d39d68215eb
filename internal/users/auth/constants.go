// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package auth

import "time"

// # Authentication Constraints

const (
	// AccessTokenTTL is the duration a signed access token remains valid.
	// Short-lived (1 hour) to minimize the impact of a leaked token.
	AccessTokenTTL = 1 * time.Hour

	// RefreshTokenTTL is the duration a signed refresh token remains valid.
	// Long-lived (30 days) to provide a good user experience.
	RefreshTokenTTL = 30 * 24 * time.Hour

	// SessionTTL is the fixed validity window of an opaque session token.
	// Activity touches last-seen but never extends this window.
	SessionTTL = 48 * time.Hour

	// SessionRetention is how long an invalidated session is kept before the
	// sweeper may delete it, measured from its last-seen timestamp.
	SessionRetention = 7 * 24 * time.Hour

	// SessionTokenLength is the byte length of the random opaque session token.
	SessionTokenLength = 32

	// SweepInterval is how often the background sweeper runs.
	SweepInterval = 1 * time.Hour

	// ResetTokenTTL is the duration a password reset token remains valid.
	// Short-lived (1 hour) for security.
	ResetTokenTTL = 1 * time.Hour

	// ResetTokenLength is the byte length of the random password reset token.
	ResetTokenLength = 32

	// VerificationTokenTTL is the duration an email verification token remains valid.
	// Long-lived (24 hours) as users might not check email immediately.
	VerificationTokenTTL = 24 * time.Hour

	// VerificationTokenLength is the byte length of the random verification token.
	VerificationTokenLength = 32
)
