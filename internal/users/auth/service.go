// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

/*
This file implements the core identity and access management use cases.

It handles everything from user registration and secure password hashing to
the full credential lifecycle: signed access/refresh tokens and server-tracked
opaque sessions.

Architecture:

  - Service: Orchestrates business logic (Register, Login, session lifecycle).
  - Repository: Abstracted interfaces for Postgres (Users, Sessions) and Redis
    (volatile reset/verification tokens).
  - Security: Leverages bcrypt for passwords and HS256-signed JWTs.

The Service also satisfies the access chain's IdentityResolver contract:
LoadPrincipal for the signed-token path and ValidateSession for the
opaque-token path.
*/

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer defines the contract for issuing and verifying signed credentials.
type TokenIssuer interface {
	// Issue creates a signed token string for the given subject.
	Issue(subject string, role sec.Role, kind sec.TokenKind, timeToLive time.Duration) (string, error)

	// Verify parses a signed token string and enforces the expected kind.
	Verify(tokenString string, kind sec.TokenKind) (*sec.Claims, error)
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, credential
// issuance, or session logic must be reviewed by the security team.
type Service struct {
	userRepository              UserRepository
	sessionRepository           SessionRepository
	resetTokenRepository        ResetTokenRepository
	verificationTokenRepository VerificationTokenRepository
	tokens                      TokenIssuer
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	userRepo UserRepository,
	sessionRepo SessionRepository,
	resetRepo ResetTokenRepository,
	verifyRepo VerificationTokenRepository,
	tokens TokenIssuer,
) *Service {
	return &Service{
		userRepository:              userRepo,
		sessionRepository:           sessionRepo,
		resetTokenRepository:        resetRepo,
		verificationTokenRepository: verifyRepo,
		tokens:                      tokens,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new member.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	Phone    string
}

/*
Register validates, hashes, and persists a brand new user account.

Description: Enrolls a new customer, handling password hashing and the initial
verification token state. Vendor accounts start life as customers and apply
for vendor status separately.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *User: Created entity
  - err: Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict err.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Prevent storing plain-text passwords. Default cost is used for balance
	// between security and CPU utilization during registration spikes.
	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Email:        input.Email,
		PasswordHash: hashedPassword,
		FullName:     input.FullName,
		Phone:        input.Phone,
		Role:         sec.RoleCustomer,
		IsActive:     true,
		IsVerified:   false,
	}

	// Persist the user to the database
	if err := service.userRepository.Create(context, user); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	// Generate and store a verification token in Redis as an async-ready side effect
	token, err := sec.GenerateSecureToken(VerificationTokenLength)
	if err == nil {
		_ = service.verificationTokenRepository.Set(context, token, user.ID, VerificationTokenTTL)
		// TODO: Trigger email service with the verification link
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email      string
	Password   string
	UserAgent  string
	IPAddress  string
	ClientMeta map[string]string
}

// LoginSession represents a successfully established user session.
//
// SessionToken is the opaque, server-tracked credential; it is surfaced
// cleartext here exactly once and only its hash survives in storage.
type LoginSession struct {
	AccessToken           string
	RefreshToken          string
	RefreshTokenExpiresAt time.Time
	SessionToken          string
	SessionExpiresAt      time.Time
	User                  *User
}

/*
Login validates user credentials and issues the full credential set.

Description: Verifies identity with a constant-time password comparison, then
issues a short-lived access token, a long-lived refresh token, and an opaque
server-tracked session token with a fixed expiry window.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginSession: Transport-ready session credentials
  - err: Unauthorized, Forbidden (inactive account), or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*LoginSession, error) {

	user, err := service.userRepository.FindByEmail(context, input.Email)

	// If (err != nil) the user does not exist. Generic message to prevent enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Verify password hash using constant-time comparison in bcrypt to prevent timing attacks
	if !sec.CheckPasswordHash(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// Deactivated accounts hold valid credentials but may not sign in.
	if !user.IsActive {
		return nil, apperr.AccountInactive()
	}

	// Generate short-lived Access Token
	accessToken, err := service.tokens.Issue(user.ID, user.Role, sec.KindAccess, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	// Generate long-lived Refresh Token
	refreshToken, err := service.tokens.Issue(user.ID, user.Role, sec.KindRefresh, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	// Generate the opaque session token and persist only its hash
	sessionToken, err := sec.GenerateSecureToken(SessionTokenLength)
	if err != nil {
		return nil, fmt.Errorf("auth_service_session_token_failed: %w", err)
	}

	now := time.Now()
	sessionExpiresAt := now.Add(SessionTTL)
	session := &Session{
		ID:         uuid.New(),
		UserID:     user.ID,
		TokenHash:  sec.HashToken(sessionToken),
		ClientMeta: input.ClientMeta,
		UserAgent:  input.UserAgent,
		IPAddress:  input.IPAddress,
		IsActive:   true,
		ExpiresAt:  sessionExpiresAt,
		LastSeenAt: now,
	}

	if err := service.sessionRepository.Create(context, session); err != nil {
		return nil, fmt.Errorf("auth_service_session_creation_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		RefreshTokenExpiresAt: now.Add(RefreshTokenTTL),
		SessionToken:          sessionToken,
		SessionExpiresAt:      sessionExpiresAt,
		User:                  user,
	}, nil
}

// # Identity Resolution

/*
LoadPrincipal resolves a verified subject id into a request principal.

Description: Serves the signed-token path of the access chain. An unknown
subject is an authentication failure (the account may have been deleted since
the token was issued), while a database fault stays an internal error so the
caller sees 500, never 401.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *sec.Principal: Identity snapshot with vendor status
  - err: Unauthorized or internal failures
*/
func (service *Service) LoadPrincipal(context context.Context, userID string) (*sec.Principal, error) {
	principal, err := service.userRepository.FindPrincipal(context, userID)
	if err != nil {
		if appError := apperr.As(err); appError != nil && appError.HTTPStatus == 404 {
			return nil, apperr.Unauthorized("Account no longer exists")
		}
		return nil, fmt.Errorf("auth_service_load_principal_failed: %w", err)
	}

	return principal, nil
}

/*
ValidateSession resolves an opaque session token into a request principal.

Description: Serves the opaque-token path of the access chain. Exact hash
match against an active, unexpired session; a hit touches the last-seen
timestamp (best effort, never the expiry window) and loads the principal.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - *sec.Principal: Identity snapshot with vendor status
  - err: SessionNotFound (401), Unauthorized, or internal failures
*/
func (service *Service) ValidateSession(context context.Context, token string) (*sec.Principal, error) {
	session, err := service.sessionRepository.FindUsableByTokenHash(context, sec.HashToken(token))
	if err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_validate_session_failed: %w", err)
	}

	// Activity tracking must never block authentication.
	_ = service.sessionRepository.Touch(context, session.ID, time.Now())

	return service.LoadPrincipal(context, session.UserID)
}

// # Session Management

/*
Refresh exchanges a valid refresh token for a fresh credential pair.

Description: Verifies the refresh token (kind-checked so an access token can
never be replayed here), confirms the account still exists and is active, and
issues a rotated access/refresh pair.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *LoginSession: New signed credentials (no new opaque session)
  - err: Unauthorized or internal failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*LoginSession, error) {

	claims, err := service.tokens.Verify(refreshToken, sec.KindRefresh)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid or expired refresh token")
	}

	user, err := service.userRepository.FindByID(context, claims.UserID)
	if err != nil {
		return nil, apperr.Unauthorized("Account no longer exists")
	}

	if !user.IsActive {
		return nil, apperr.AccountInactive()
	}

	accessToken, err := service.tokens.Issue(user.ID, user.Role, sec.KindAccess, AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_access_token_failed: %w", err)
	}

	newRefreshToken, err := service.tokens.Issue(user.ID, user.Role, sec.KindRefresh, RefreshTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_rotate_failed: %w", err)
	}

	return &LoginSession{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		RefreshTokenExpiresAt: time.Now().Add(RefreshTokenTTL),
		User:                  user,
	}, nil
}

/*
Logout permanently invalidates the presented opaque session token.

Description: Idempotent. An unknown, expired, or already-invalidated token is
treated as a successful logout.

Parameters:
  - context: context.Context
  - sessionToken: string

Returns:
  - err: Revocation failures
*/
func (service *Service) Logout(context context.Context, sessionToken string) error {
	if err := service.sessionRepository.InvalidateByTokenHash(context, sec.HashToken(sessionToken)); err != nil {
		return fmt.Errorf("auth_service_logout_failed: %w", err)
	}
	return nil
}

/*
LogoutAll invalidates every active session belonging to the user.

Description: Logout-everywhere. Signed tokens remain valid until expiry, but
every opaque session dies immediately.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Batch revocation failures
*/
func (service *Service) LogoutAll(context context.Context, userID string) error {
	if err := service.sessionRepository.InvalidateAll(context, userID); err != nil {
		return fmt.Errorf("auth_service_logout_all_failed: %w", err)
	}
	return nil
}

/*
Sessions lists the user's active sessions, newest first.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - []SessionSummary: Non-sensitive device list
  - err: Retrieval failures
*/
func (service *Service) Sessions(context context.Context, userID string) ([]SessionSummary, error) {
	summaries, err := service.sessionRepository.ListActive(context, userID)
	if err != nil {
		return nil, fmt.Errorf("auth_service_sessions_failed: %w", err)
	}
	return summaries, nil
}

/*
SweepSessions reclaims storage from dead sessions.

Description: Deletes sessions that are expired, or invalidated and idle past
the retention period. Safe to skip any number of runs; nothing but storage
reclamation depends on it.

Parameters:
  - context: context.Context

Returns:
  - int64: Number of sessions removed
  - err: Cleanup failures
*/
func (service *Service) SweepSessions(context context.Context) (int64, error) {
	removed, err := service.sessionRepository.DeleteSweepable(context, time.Now(), SessionRetention)
	if err != nil {
		return 0, fmt.Errorf("auth_service_sweep_failed: %w", err)
	}
	return removed, nil
}

// # Password Recovery

/*
RequestPasswordReset initiates the forgot-password flow.

Description: Generates a secure token and saves it to Redis.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Discovery token
  - err: Generation errors
*/
func (service *Service) RequestPasswordReset(context context.Context, email string) (string, error) {
	// Look up user.
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent user enumeration.
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", nil
	}

	// Generate reset token
	token, err := sec.GenerateSecureToken(ResetTokenLength)
	if err != nil {
		return "", fmt.Errorf("auth_service_generate_reset_token_failed: %w", err)
	}

	// Save to Redis
	if err := service.resetTokenRepository.Set(context, token, user.ID, ResetTokenTTL); err != nil {
		return "", fmt.Errorf("auth_service_save_reset_token_failed: %w", err)
	}

	return token, nil
}

/*
ResetPassword completes the forgot-password flow.

Description: Verifies the token, hashes the new password, updates the DB,
and invalidates all active sessions for security cleanup.

Parameters:
  - context: context.Context
  - token: string
  - newPassword: string

Returns:
  - err: Validation or update failures
*/
func (service *Service) ResetPassword(context context.Context, token, newPassword string) error {

	// Retrieve the userID associated with the reset token from Redis
	userID, err := service.resetTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Hash the new password securely
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_reset_password_hash_failed: %w", err)
	}

	// Update the user's password in persistent storage
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_password_update_failed: %w", err)
	}

	// Security Cleanup: Invalidate EVERY active session for this user
	_ = service.sessionRepository.InvalidateAll(context, userID)

	// Delete the used token from Redis
	_ = service.resetTokenRepository.Delete(context, token)

	return nil
}

/*
ChangePassword allows an authenticated user to update their credentials.

Description: Verifies the current password, rotates the hash, and invalidates
every opaque session so stolen devices must sign in again.

Parameters:
  - context: context.Context
  - userID: string
  - currentPassword: string
  - newPassword: string

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) ChangePassword(context context.Context, userID, currentPassword, newPassword string) error {

	// Fetch user by ID
	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return err
	}

	// Verify the current password before allowing change
	if !sec.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return apperr.Unauthorized("Current password is incorrect")
	}

	// Hash the brand new password
	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_change_password_hash_failed: %w", err)
	}

	// Update the database with the new hash
	if err := service.userRepository.UpdatePassword(context, userID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_change_password_update_failed: %w", err)
	}

	// Security Side Effect: Invalidate all sessions to force re-login on other devices
	_ = service.sessionRepository.InvalidateAll(context, userID)

	return nil
}

/*
VerifyEmail confirms a user's email address using a secure token.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - err: Database or resolution errors
*/
func (service *Service) VerifyEmail(context context.Context, token string) error {

	// Retrieve the user ID associated with the verification token from Redis
	userID, err := service.verificationTokenRepository.Get(context, token)
	if err != nil {
		return err
	}

	// Update the user's status to verified in persistent storage
	if err := service.userRepository.MarkVerified(context, userID); err != nil {
		return fmt.Errorf("auth_service_verify_email_failed: %w", err)
	}

	// Cleanup the used verification token from Redis
	_ = service.verificationTokenRepository.Delete(context, token)

	return nil
}

// # Account Administration

/*
DeactivateUser disables an account and kills its sessions.

Description: Admin-only. The account row is retained; every opaque session is
invalidated immediately so a banned user cannot ride out an old credential.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Persistence failures
*/
func (service *Service) DeactivateUser(context context.Context, userID string) error {
	if _, err := service.userRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.userRepository.SetActive(context, userID, false); err != nil {
		return fmt.Errorf("auth_service_deactivate_failed: %w", err)
	}

	_ = service.sessionRepository.InvalidateAll(context, userID)

	return nil
}

/*
ReactivateUser re-enables a previously deactivated account.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - err: Persistence failures
*/
func (service *Service) ReactivateUser(context context.Context, userID string) error {
	if _, err := service.userRepository.FindByID(context, userID); err != nil {
		return err
	}

	if err := service.userRepository.SetActive(context, userID, true); err != nil {
		return fmt.Errorf("auth_service_reactivate_failed: %w", err)
	}

	return nil
}
