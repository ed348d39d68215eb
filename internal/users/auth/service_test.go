// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
	"github.com/mealgrid/mealgrid/internal/users/auth"
)

// # In-Memory Fakes

type memoryUserRepository struct {
	users        map[string]*auth.User
	vendorStatus map[string]sec.VendorStatus
	vendorReason map[string]string
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{
		users:        map[string]*auth.User{},
		vendorStatus: map[string]sec.VendorStatus{},
		vendorReason: map[string]string{},
	}
}

func (repo *memoryUserRepository) FindByID(_ context.Context, id string) (*auth.User, error) {
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return user, nil
}

func (repo *memoryUserRepository) FindByEmail(_ context.Context, email string) (*auth.User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *memoryUserRepository) FindPrincipal(_ context.Context, id string) (*sec.Principal, error) {
	user, ok := repo.users[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &sec.Principal{
		UserID:             user.ID,
		Role:               user.Role,
		IsActive:           user.IsActive,
		VendorStatus:       repo.vendorStatus[id],
		VendorStatusReason: repo.vendorReason[id],
	}, nil
}

func (repo *memoryUserRepository) Create(_ context.Context, user *auth.User) error {
	repo.users[user.ID] = user
	return nil
}

func (repo *memoryUserRepository) UpdatePassword(_ context.Context, userID, newHash string) error {
	if user, ok := repo.users[userID]; ok {
		user.PasswordHash = newHash
	}
	return nil
}

func (repo *memoryUserRepository) UpdateRole(_ context.Context, userID string, role sec.Role) error {
	if user, ok := repo.users[userID]; ok {
		user.Role = role
	}
	return nil
}

func (repo *memoryUserRepository) SetActive(_ context.Context, userID string, active bool) error {
	if user, ok := repo.users[userID]; ok {
		user.IsActive = active
	}
	return nil
}

func (repo *memoryUserRepository) MarkVerified(_ context.Context, userID string) error {
	if user, ok := repo.users[userID]; ok {
		user.IsVerified = true
	}
	return nil
}

// memorySessionRepository reuses the production eligibility predicates
// (Session.Usable, Session.SweepEligible) so the sweep tests exercise the
// same rules the SQL implements.
type memorySessionRepository struct {
	sessions map[string]*auth.Session
	failing  bool
}

func newMemorySessionRepository() *memorySessionRepository {
	return &memorySessionRepository{sessions: map[string]*auth.Session{}}
}

func (repo *memorySessionRepository) Create(_ context.Context, session *auth.Session) error {
	if repo.failing {
		return errors.New("connection refused")
	}
	copied := *session
	repo.sessions[session.ID] = &copied
	return nil
}

func (repo *memorySessionRepository) FindUsableByTokenHash(_ context.Context, tokenHash string) (*auth.Session, error) {
	if repo.failing {
		return nil, errors.New("connection refused")
	}
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash && session.Usable(time.Now()) {
			copied := *session
			return &copied, nil
		}
	}
	return nil, apperr.SessionNotFound()
}

func (repo *memorySessionRepository) Touch(_ context.Context, sessionID string, seenAt time.Time) error {
	if session, ok := repo.sessions[sessionID]; ok {
		session.LastSeenAt = seenAt
	}
	return nil
}

func (repo *memorySessionRepository) InvalidateByTokenHash(_ context.Context, tokenHash string) error {
	for _, session := range repo.sessions {
		if session.TokenHash == tokenHash {
			session.IsActive = false
		}
	}
	return nil
}

func (repo *memorySessionRepository) InvalidateAll(_ context.Context, userID string) error {
	for _, session := range repo.sessions {
		if session.UserID == userID {
			session.IsActive = false
		}
	}
	return nil
}

func (repo *memorySessionRepository) DeleteSweepable(_ context.Context, now time.Time, retention time.Duration) (int64, error) {
	var removed int64
	for id, session := range repo.sessions {
		if session.SweepEligible(now, retention) {
			delete(repo.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func (repo *memorySessionRepository) ListActive(_ context.Context, userID string) ([]auth.SessionSummary, error) {
	summaries := []auth.SessionSummary{}
	for _, session := range repo.sessions {
		if session.UserID == userID && session.Usable(time.Now()) {
			summaries = append(summaries, auth.SessionSummary{
				ID:         session.ID,
				UserAgent:  session.UserAgent,
				IPAddress:  session.IPAddress,
				CreatedAt:  session.CreatedAt,
				LastSeenAt: session.LastSeenAt,
				ExpiresAt:  session.ExpiresAt,
			})
		}
	}
	return summaries, nil
}

// memoryTokenRepository backs both the reset and verification token contracts.
type memoryTokenRepository struct {
	tokens map[string]string
}

func newMemoryTokenRepository() *memoryTokenRepository {
	return &memoryTokenRepository{tokens: map[string]string{}}
}

func (repo *memoryTokenRepository) Set(_ context.Context, token, userID string, _ time.Duration) error {
	repo.tokens[token] = userID
	return nil
}

func (repo *memoryTokenRepository) Get(_ context.Context, token string) (string, error) {
	userID, ok := repo.tokens[token]
	if !ok {
		return "", apperr.NotFound("Token")
	}
	return userID, nil
}

func (repo *memoryTokenRepository) Delete(_ context.Context, token string) error {
	delete(repo.tokens, token)
	return nil
}

// # Test Harness

type serviceHarness struct {
	service  *auth.Service
	users    *memoryUserRepository
	sessions *memorySessionRepository
	resets   *memoryTokenRepository
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	codec, err := sec.NewTokenCodec("test-secret-0123456789abcdef", "mealgrid.app")
	require.NoError(t, err)

	users := newMemoryUserRepository()
	sessions := newMemorySessionRepository()
	resets := newMemoryTokenRepository()
	verifications := newMemoryTokenRepository()

	return &serviceHarness{
		service:  auth.NewService(users, sessions, resets, verifications, codec),
		users:    users,
		sessions: sessions,
		resets:   resets,
	}
}

// seedUser registers a user directly against the repository.
func (harness *serviceHarness) seedUser(t *testing.T, id, email, password string, role sec.Role, active bool) *auth.User {
	t.Helper()

	hash, err := sec.HashPassword(password)
	require.NoError(t, err)

	user := &auth.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		FullName:     "Test User",
		Role:         role,
		IsActive:     active,
	}
	harness.users.users[id] = user
	return user
}

// # Lifecycle Tests

func TestService_LoginValidateLogout(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)

	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.NotEmpty(t, session.SessionToken)

	// The opaque token resolves to the right principal.
	principal, err := harness.service.ValidateSession(context.Background(), session.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.UserID)
	assert.Equal(t, sec.RoleCustomer, principal.Role)
	assert.True(t, principal.IsActive)

	// Logout kills it; validation now fails with the session-specific 401.
	require.NoError(t, harness.service.Logout(context.Background(), session.SessionToken))

	_, err = harness.service.ValidateSession(context.Background(), session.SessionToken)
	require.Error(t, err)
	assert.Equal(t, "SESSION_NOT_FOUND", apperr.As(err).Code)

	// Logging out again stays a no-op success.
	assert.NoError(t, harness.service.Logout(context.Background(), session.SessionToken))
}

func TestService_LoginFailures(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)
	harness.seedUser(t, "user-2", "parked@mealgrid.com", "hunter2secret", sec.RoleCustomer, false)

	tests := []struct {
		name     string
		email    string
		password string
		wantCode string
	}{
		{"unknown_email", "ghost@mealgrid.com", "hunter2secret", "UNAUTHORIZED"},
		{"wrong_password", "dana@mealgrid.com", "not-the-password", "UNAUTHORIZED"},
		{"inactive_account", "parked@mealgrid.com", "hunter2secret", "ACCOUNT_INACTIVE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := harness.service.Login(context.Background(), auth.LoginInput{
				Email:    tt.email,
				Password: tt.password,
			})
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, apperr.As(err).Code)
		})
	}
}

func TestService_ValidateSession_TouchesLastSeen(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)

	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)

	var stored *auth.Session
	for _, candidate := range harness.sessions.sessions {
		stored = candidate
	}
	require.NotNil(t, stored)

	expiryBefore := stored.ExpiresAt
	seenBefore := stored.LastSeenAt

	time.Sleep(5 * time.Millisecond)

	_, err = harness.service.ValidateSession(context.Background(), session.SessionToken)
	require.NoError(t, err)

	// Last-seen advanced; the expiry window is untouched.
	assert.True(t, stored.LastSeenAt.After(seenBefore))
	assert.Equal(t, expiryBefore, stored.ExpiresAt)
}

func TestService_ValidateSession_InfraErrorIsNotUnauthorized(t *testing.T) {
	harness := newServiceHarness(t)
	harness.sessions.failing = true

	_, err := harness.service.ValidateSession(context.Background(), "any-token")
	require.Error(t, err)

	// A storage fault must never masquerade as an authentication failure.
	assert.False(t, apperr.IsAppError(err))
}

func TestService_LoadPrincipal_UnknownUser(t *testing.T) {
	harness := newServiceHarness(t)

	_, err := harness.service.LoadPrincipal(context.Background(), "ghost")
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

func TestService_Refresh(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)

	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)

	refreshed, err := harness.service.Refresh(context.Background(), session.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.NotEmpty(t, refreshed.RefreshToken)

	// An access token presented at the refresh endpoint is rejected outright.
	_, err = harness.service.Refresh(context.Background(), session.AccessToken)
	require.Error(t, err)
	assert.Equal(t, 401, apperr.As(err).HTTPStatus)
}

func TestService_ChangePassword_InvalidatesAllSessions(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)

	first, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)

	second, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)

	err = harness.service.ChangePassword(context.Background(), "user-1", "hunter2secret", "brand-new-secret")
	require.NoError(t, err)

	_, err = harness.service.ValidateSession(context.Background(), first.SessionToken)
	assert.Error(t, err)
	_, err = harness.service.ValidateSession(context.Background(), second.SessionToken)
	assert.Error(t, err)

	// The new password works, the old one does not.
	_, err = harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "brand-new-secret",
	})
	assert.NoError(t, err)

	_, err = harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	assert.Error(t, err)
}

func TestService_ResetPassword_InvalidatesAllSessions(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)

	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)

	token, err := harness.service.RequestPasswordReset(context.Background(), "dana@mealgrid.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	require.NoError(t, harness.service.ResetPassword(context.Background(), token, "rotated-secret-1"))

	_, err = harness.service.ValidateSession(context.Background(), session.SessionToken)
	assert.Error(t, err)

	// The reset token is single-use.
	err = harness.service.ResetPassword(context.Background(), token, "rotated-secret-2")
	assert.Error(t, err)
}

func TestService_RequestPasswordReset_UnknownEmailIsSilent(t *testing.T) {
	harness := newServiceHarness(t)

	token, err := harness.service.RequestPasswordReset(context.Background(), "ghost@mealgrid.com")
	assert.NoError(t, err)
	assert.Empty(t, token)
}

func TestService_DeactivateUser_KillsSessions(t *testing.T) {
	harness := newServiceHarness(t)
	harness.seedUser(t, "user-1", "dana@mealgrid.com", "hunter2secret", sec.RoleCustomer, true)

	session, err := harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.NoError(t, err)

	require.NoError(t, harness.service.DeactivateUser(context.Background(), "user-1"))

	_, err = harness.service.ValidateSession(context.Background(), session.SessionToken)
	assert.Error(t, err)

	_, err = harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_INACTIVE", apperr.As(err).Code)

	require.NoError(t, harness.service.ReactivateUser(context.Background(), "user-1"))

	_, err = harness.service.Login(context.Background(), auth.LoginInput{
		Email:    "dana@mealgrid.com",
		Password: "hunter2secret",
	})
	assert.NoError(t, err)
}

// # Sweep Tests

func TestService_SweepSessions_RemovesExactlyTheEligible(t *testing.T) {
	harness := newServiceHarness(t)
	now := time.Now()

	seed := func(id string, active bool, expiresAt, lastSeenAt time.Time) {
		harness.sessions.sessions[id] = &auth.Session{
			ID:         id,
			UserID:     "user-1",
			TokenHash:  "hash-" + id,
			IsActive:   active,
			ExpiresAt:  expiresAt,
			LastSeenAt: lastSeenAt,
			CreatedAt:  now.Add(-10 * 24 * time.Hour),
		}
	}

	// Removable: expired (regardless of active flag), and long-dead inactive.
	seed("expired-active", true, now.Add(-time.Hour), now.Add(-time.Hour))
	seed("expired-inactive", false, now.Add(-time.Hour), now.Add(-time.Hour))
	seed("inactive-stale", false, now.Add(time.Hour), now.Add(-8*24*time.Hour))

	// Kept: everything the validator could still reject on its own terms.
	seed("active-live", true, now.Add(time.Hour), now)
	seed("inactive-recent", false, now.Add(time.Hour), now.Add(-time.Hour))

	removed, err := harness.service.SweepSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	_, kept := harness.sessions.sessions["active-live"]
	assert.True(t, kept)
	_, kept = harness.sessions.sessions["inactive-recent"]
	assert.True(t, kept)
	assert.Len(t, harness.sessions.sessions, 2)

	// Sweeping again removes nothing.
	removed, err = harness.service.SweepSessions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestService_Register(t *testing.T) {
	harness := newServiceHarness(t)

	user, err := harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    "new@mealgrid.com",
		Password: "hunter2secret",
		FullName: "New Customer",
	})
	require.NoError(t, err)
	assert.Equal(t, sec.RoleCustomer, user.Role)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsVerified)
	assert.NotEqual(t, "hunter2secret", user.PasswordHash)

	// Duplicate email is a conflict.
	_, err = harness.service.Register(context.Background(), auth.RegisterInput{
		Email:    "new@mealgrid.com",
		Password: "hunter2secret",
		FullName: "Imposter",
	})
	require.Error(t, err)
	assert.Equal(t, 409, apperr.As(err).HTTPStatus)
}
