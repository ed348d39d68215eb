// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
Package auth implements the user identity and session management layer.

It defines the core domain entities (User, Session) and logic for
authentication, credential issuance, and account lifecycle.

# Architecture

This layer is the "Truth" of the system. Entities defined here have no external
dependencies and encapsulate all business rules related to user identity,
including the server-tracked session lifecycle.
*/
package auth

import (
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # Domain Entities

// User represents a registered member of the MealGrid platform.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	FullName     string    `json:"full_name"`
	Phone        string    `json:"phone,omitempty"`
	Role         sec.Role  `json:"role"`
	IsActive     bool      `json:"is_active"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Session represents a server-tracked opaque-token session.
//
// The cleartext token is handed to the client exactly once at login; only its
// SHA-256 hash is ever persisted, so the session table never contains a
// usable credential.
type Session struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	TokenHash  string            `json:"-"` // Hashed value of the opaque token. Omitted for security.
	ClientMeta map[string]string `json:"client_meta,omitempty"`
	UserAgent  string            `json:"user_agent"`
	IPAddress  string            `json:"ip_address"`
	IsActive   bool              `json:"is_active"`
	ExpiresAt  time.Time         `json:"expires_at"`
	LastSeenAt time.Time         `json:"last_seen_at"`
	CreatedAt  time.Time         `json:"created_at"`
}

// Usable reports whether the session may authenticate a request at the given
// instant: it must still be active and inside its fixed expiry window.
// Last-seen touches never extend the window.
func (session *Session) Usable(now time.Time) bool {
	return session.IsActive && now.Before(session.ExpiresAt)
}

// SweepEligible reports whether the sweeper may delete this session: either
// the expiry window has passed, or the session was invalidated and has sat
// idle beyond the retention period.
func (session *Session) SweepEligible(now time.Time, retention time.Duration) bool {
	if !now.Before(session.ExpiresAt) {
		return true
	}
	return !session.IsActive && now.Sub(session.LastSeenAt) > retention
}

// SessionSummary is the non-sensitive projection of a session returned by the
// device-listing endpoint. It never carries the token hash.
type SessionSummary struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"user_agent"`
	IPAddress  string    `json:"ip_address"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldFullName        = "full_name"
	FieldPhone           = "phone"
	FieldToken           = "token"
	FieldCurrentPassword = "current_password"
	FieldNewPassword     = "new_password"
	FieldAccessToken     = "access_token"
	FieldSessionToken    = "session_token"
	FieldTokenType       = "token_type"
	FieldExpiresIn       = "expires_in"
	FieldUser            = "user"
	FieldMessage         = "message"
	FieldSessions        = "sessions"
	FieldRemoved         = "removed"
)
