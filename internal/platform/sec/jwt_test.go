// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

const testIssuer = "mealgrid.app"

/*
TestTokenCodec_RoundTrip verifies that a freshly issued token verifies back
to the same subject, role, and kind.
*/
func TestTokenCodec_RoundTrip(t *testing.T) {
	codec, err := sec.NewTokenCodec("test-secret", testIssuer)
	require.NoError(t, err)

	token, err := codec.Issue("user-123", sec.RoleVendor, sec.KindAccess, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Verify(token, sec.KindAccess)
	require.NoError(t, err)

	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, string(sec.RoleVendor), claims.Role)
	assert.Equal(t, sec.KindAccess, claims.Kind)
	assert.Equal(t, testIssuer, claims.Issuer)
}

/*
TestTokenCodec_Expired verifies that verification fails with ErrTokenExpired
strictly after the validity window.
*/
func TestTokenCodec_Expired(t *testing.T) {
	codec, err := sec.NewTokenCodec("test-secret", testIssuer)
	require.NoError(t, err)

	// Negative TTL produces a token that is already past its expiry.
	token, err := codec.Issue("user-123", sec.RoleCustomer, sec.KindAccess, -time.Minute)
	require.NoError(t, err)

	claims, err := codec.Verify(token, sec.KindAccess)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, sec.ErrTokenExpired)
}

/*
TestTokenCodec_BadSignature verifies that a token signed with a different
secret never yields a subject.
*/
func TestTokenCodec_BadSignature(t *testing.T) {
	issuingCodec, err := sec.NewTokenCodec("secret-one", testIssuer)
	require.NoError(t, err)

	verifyingCodec, err := sec.NewTokenCodec("secret-two", testIssuer)
	require.NoError(t, err)

	token, err := issuingCodec.Issue("user-123", sec.RoleCustomer, sec.KindAccess, time.Hour)
	require.NoError(t, err)

	claims, err := verifyingCodec.Verify(token, sec.KindAccess)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, sec.ErrTokenBadSignature)
}

/*
TestTokenCodec_Malformed verifies that structural garbage is rejected closed.
*/
func TestTokenCodec_Malformed(t *testing.T) {
	codec, err := sec.NewTokenCodec("test-secret", testIssuer)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not_a_jwt", "definitely-not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := codec.Verify(tt.token, sec.KindAccess)
			assert.Nil(t, claims)
			assert.ErrorIs(t, err, sec.ErrTokenMalformed)
		})
	}
}

/*
TestTokenCodec_WrongKind verifies that a refresh token is never accepted as
an access credential and vice versa.
*/
func TestTokenCodec_WrongKind(t *testing.T) {
	codec, err := sec.NewTokenCodec("test-secret", testIssuer)
	require.NoError(t, err)

	refreshToken, err := codec.Issue("user-123", sec.RoleCustomer, sec.KindRefresh, 24*time.Hour)
	require.NoError(t, err)

	claims, err := codec.Verify(refreshToken, sec.KindAccess)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, sec.ErrTokenWrongKind)

	accessToken, err := codec.Issue("user-123", sec.RoleCustomer, sec.KindAccess, time.Hour)
	require.NoError(t, err)

	claims, err = codec.Verify(accessToken, sec.KindRefresh)
	assert.Nil(t, claims)
	assert.ErrorIs(t, err, sec.ErrTokenWrongKind)
}

/*
TestNewTokenCodec_MissingSecret verifies that an empty signing secret is a
constructor error rather than a runtime fallback.
*/
func TestNewTokenCodec_MissingSecret(t *testing.T) {
	codec, err := sec.NewTokenCodec("", testIssuer)
	assert.Nil(t, codec)
	assert.Error(t, err)
}

/*
TestVendorStatus_CanTransitionTo exercises the vendor approval state machine.
*/
func TestVendorStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    sec.VendorStatus
		to      sec.VendorStatus
		allowed bool
	}{
		{"pending_to_approved", sec.VendorStatusPending, sec.VendorStatusApproved, true},
		{"pending_to_rejected", sec.VendorStatusPending, sec.VendorStatusRejected, true},
		{"pending_to_suspended", sec.VendorStatusPending, sec.VendorStatusSuspended, false},
		{"approved_to_suspended", sec.VendorStatusApproved, sec.VendorStatusSuspended, true},
		{"approved_to_rejected", sec.VendorStatusApproved, sec.VendorStatusRejected, false},
		{"suspended_to_approved", sec.VendorStatusSuspended, sec.VendorStatusApproved, true},
		{"suspended_to_rejected", sec.VendorStatusSuspended, sec.VendorStatusRejected, false},
		{"rejected_is_terminal", sec.VendorStatusRejected, sec.VendorStatusApproved, false},
		{"no_self_loop", sec.VendorStatusApproved, sec.VendorStatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}
