// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealgrid/mealgrid/internal/platform/ctxutil"
	"github.com/mealgrid/mealgrid/internal/platform/middleware"
	"github.com/mealgrid/mealgrid/internal/platform/respond"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # Stubs

// stubVerifier maps signed-token strings to claims or failures.
type stubVerifier struct {
	claims map[string]*sec.Claims
	errs   map[string]error
}

func (verifier *stubVerifier) Verify(tokenString string, _ sec.TokenKind) (*sec.Claims, error) {
	if err, ok := verifier.errs[tokenString]; ok {
		return nil, err
	}
	if claims, ok := verifier.claims[tokenString]; ok {
		return claims, nil
	}
	return nil, sec.ErrTokenBadSignature
}

// stubResolver maps subject ids and opaque tokens to principals.
type stubResolver struct {
	principals map[string]*sec.Principal
	sessions   map[string]*sec.Principal
	loadErr    error
	sessionErr error
}

func (resolver *stubResolver) LoadPrincipal(_ context.Context, userID string) (*sec.Principal, error) {
	if resolver.loadErr != nil {
		return nil, resolver.loadErr
	}
	if principal, ok := resolver.principals[userID]; ok {
		return principal, nil
	}
	return nil, errors.New("unexpected subject in test")
}

func (resolver *stubResolver) ValidateSession(_ context.Context, token string) (*sec.Principal, error) {
	if resolver.sessionErr != nil {
		return nil, resolver.sessionErr
	}
	if principal, ok := resolver.sessions[token]; ok {
		return principal, nil
	}
	return nil, errors.New("unexpected session token in test")
}

// # Harness

// echoHandler reports which principal (if any) reached the inner handler.
func echoHandler(t *testing.T, seen **sec.Principal) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		*seen = ctxutil.GetPrincipal(request.Context())
		writer.WriteHeader(http.StatusOK)
	})
}

func decodeErrorEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) respond.ErrorEnvelope {
	t.Helper()
	var envelope respond.ErrorEnvelope
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope
}

func customerPrincipal(id string) *sec.Principal {
	return &sec.Principal{UserID: id, Role: sec.RoleCustomer, IsActive: true}
}

// signedToken is shaped like a compact JWS so the chain routes it to the verifier.
const signedToken = "header.payload.signature"

// # Transport Tests

func TestAccessChain_TransportPrecedence(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]*sec.Principal{
		"headertoken": customerPrincipal("via-header"),
		"querytoken":  customerPrincipal("via-query"),
		"cookietoken": customerPrincipal("via-cookie"),
	}}
	verifier := &stubVerifier{}

	chain := middleware.RequireCustomer(verifier, resolver)

	tests := []struct {
		name       string
		header     string
		query      string
		cookie     string
		wantUserID string
	}{
		{"header_wins_over_all", "Bearer headertoken", "querytoken", "cookietoken", "via-header"},
		{"query_wins_over_cookie", "", "querytoken", "cookietoken", "via-query"},
		{"cookie_last", "", "", "cookietoken", "via-cookie"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Principal
			handler := chain(echoHandler(t, &seen))

			target := "/orders"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			request := httptest.NewRequest(http.MethodGet, target, nil)
			if tt.header != "" {
				request.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				request.AddCookie(&http.Cookie{Name: "auth_token", Value: tt.cookie})
			}

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			require.Equal(t, http.StatusOK, recorder.Code)
			require.NotNil(t, seen)
			assert.Equal(t, tt.wantUserID, seen.UserID)
		})
	}
}

func TestAccessChain_MissingCredential(t *testing.T) {
	chain := middleware.RequireCustomer(&stubVerifier{}, &stubResolver{})

	var seen *sec.Principal
	handler := chain(echoHandler(t, &seen))

	request := httptest.NewRequest(http.MethodGet, "/orders", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	assert.Nil(t, seen)

	envelope := decodeErrorEnvelope(t, recorder)
	assert.False(t, envelope.Success)
	assert.NotEmpty(t, envelope.Message)
}

func TestAccessChain_MalformedAuthorizationHeader(t *testing.T) {
	chain := middleware.RequireCustomer(&stubVerifier{}, &stubResolver{})

	for _, header := range []string{"headertoken", "Basic abc", "Bearer "} {
		request := httptest.NewRequest(http.MethodGet, "/orders", nil)
		request.Header.Set("Authorization", header)
		recorder := httptest.NewRecorder()

		var seen *sec.Principal
		chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code, "header %q", header)
	}
}

func TestAccessChain_VendorRoutesAreHeaderOnly(t *testing.T) {
	vendor := &sec.Principal{
		UserID:       "vendor-1",
		Role:         sec.RoleVendor,
		IsActive:     true,
		VendorStatus: sec.VendorStatusApproved,
	}
	resolver := &stubResolver{sessions: map[string]*sec.Principal{"vendortoken": vendor}}
	chain := middleware.RequireApprovedVendor(&stubVerifier{}, resolver)

	// Header transport works.
	var seen *sec.Principal
	request := httptest.NewRequest(http.MethodGet, "/vendor/outlets", nil)
	request.Header.Set("Authorization", "Bearer vendortoken")
	recorder := httptest.NewRecorder()
	chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	// Query and cookie transports are dead on vendor routes.
	request = httptest.NewRequest(http.MethodGet, "/vendor/outlets?token=vendortoken", nil)
	request.AddCookie(&http.Cookie{Name: "auth_token", Value: "vendortoken"})
	recorder = httptest.NewRecorder()
	chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

// # Credential Routing Tests

func TestAccessChain_SignedTokenPath(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.Claims{
		signedToken: {UserID: "user-1", Kind: sec.KindAccess},
	}}
	resolver := &stubResolver{principals: map[string]*sec.Principal{
		"user-1": customerPrincipal("user-1"),
	}}

	var seen *sec.Principal
	request := httptest.NewRequest(http.MethodGet, "/orders", nil)
	request.Header.Set("Authorization", "Bearer "+signedToken)
	recorder := httptest.NewRecorder()

	middleware.RequireCustomer(verifier, resolver)(echoHandler(t, &seen)).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
}

func TestAccessChain_ExpiredVersusInvalidToken(t *testing.T) {
	verifier := &stubVerifier{errs: map[string]error{
		"expired.jwt.token": sec.ErrTokenExpired,
		"garbage.jwt.token": sec.ErrTokenMalformed,
		"refresh.jwt.token": sec.ErrTokenWrongKind,
	}}
	chain := middleware.RequireCustomer(verifier, &stubResolver{})

	tests := []struct {
		name     string
		token    string
		wantCode string
	}{
		{"expired_gets_distinct_code", "expired.jwt.token", "TOKEN_EXPIRED"},
		{"malformed_stays_generic", "garbage.jwt.token", "UNAUTHORIZED"},
		{"wrong_kind_stays_generic", "refresh.jwt.token", "UNAUTHORIZED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Principal
			request := httptest.NewRequest(http.MethodGet, "/orders", nil)
			request.Header.Set("Authorization", "Bearer "+tt.token)
			recorder := httptest.NewRecorder()

			chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			envelope := decodeErrorEnvelope(t, recorder)
			assert.Equal(t, tt.wantCode, envelope.Code)
		})
	}
}

// # Gate Tests

func TestAccessChain_GateFailures(t *testing.T) {
	principals := map[string]*sec.Principal{
		"inactive":       {UserID: "inactive", Role: sec.RoleCustomer, IsActive: false},
		"customer":       {UserID: "customer", Role: sec.RoleCustomer, IsActive: true},
		"pending-vendor": {UserID: "pending-vendor", Role: sec.RoleVendor, IsActive: true, VendorStatus: sec.VendorStatusPending},
		"suspended-vendor": {
			UserID: "suspended-vendor", Role: sec.RoleVendor, IsActive: true,
			VendorStatus: sec.VendorStatusSuspended, VendorStatusReason: "hygiene violation",
		},
	}
	sessions := map[string]*sec.Principal{}
	for id, principal := range principals {
		sessions[id+"token"] = principal
	}
	resolver := &stubResolver{principals: principals, sessions: sessions}
	verifier := &stubVerifier{}

	tests := []struct {
		name             string
		chain            func(http.Handler) http.Handler
		token            string
		wantStatus       int
		wantCode         string
		wantVendorStatus string
	}{
		{
			name:       "inactive_account_is_403",
			chain:      middleware.RequireCustomer(verifier, resolver),
			token:      "inactivetoken",
			wantStatus: http.StatusForbidden,
			wantCode:   "ACCOUNT_INACTIVE",
		},
		{
			name:       "customer_on_vendor_route_is_403",
			chain:      middleware.RequireApprovedVendor(verifier, resolver),
			token:      "customertoken",
			wantStatus: http.StatusForbidden,
			wantCode:   "WRONG_ROLE",
		},
		{
			name:       "customer_on_admin_route_is_403",
			chain:      middleware.RequireAdmin(verifier, resolver),
			token:      "customertoken",
			wantStatus: http.StatusForbidden,
			wantCode:   "WRONG_ROLE",
		},
		{
			name:             "pending_vendor_on_mutating_route",
			chain:            middleware.RequireApprovedVendor(verifier, resolver),
			token:            "pending-vendortoken",
			wantStatus:       http.StatusForbidden,
			wantCode:         "VENDOR_NOT_APPROVED",
			wantVendorStatus: "pending",
		},
		{
			name:             "suspended_vendor_on_mutating_route",
			chain:            middleware.RequireApprovedVendor(verifier, resolver),
			token:            "suspended-vendortoken",
			wantStatus:       http.StatusForbidden,
			wantCode:         "VENDOR_NOT_APPROVED",
			wantVendorStatus: "suspended",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen *sec.Principal
			request := httptest.NewRequest(http.MethodGet, "/protected", nil)
			request.Header.Set("Authorization", "Bearer "+tt.token)
			recorder := httptest.NewRecorder()

			tt.chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			assert.Nil(t, seen)

			envelope := decodeErrorEnvelope(t, recorder)
			assert.False(t, envelope.Success)
			assert.Equal(t, tt.wantCode, envelope.Code)
			assert.Equal(t, tt.wantVendorStatus, envelope.VendorStatus)
		})
	}
}

func TestAccessChain_StatusScreenAdmitsPendingAndSuspended(t *testing.T) {
	sessions := map[string]*sec.Principal{
		"pendingtoken": {UserID: "v1", Role: sec.RoleVendor, IsActive: true, VendorStatus: sec.VendorStatusPending},
		"suspendtoken": {UserID: "v2", Role: sec.RoleVendor, IsActive: true, VendorStatus: sec.VendorStatusSuspended},
		"rejecttoken":  {UserID: "v3", Role: sec.RoleVendor, IsActive: true, VendorStatus: sec.VendorStatusRejected},
	}
	chain := middleware.RequireVendorStatusScreen(&stubVerifier{}, &stubResolver{sessions: sessions})

	for token, wantStatus := range map[string]int{
		"pendingtoken": http.StatusOK,
		"suspendtoken": http.StatusOK,
		"rejecttoken":  http.StatusForbidden,
	} {
		var seen *sec.Principal
		request := httptest.NewRequest(http.MethodGet, "/vendor/status", nil)
		request.Header.Set("Authorization", "Bearer "+token)
		recorder := httptest.NewRecorder()

		chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)
		assert.Equal(t, wantStatus, recorder.Code, "token %s", token)
	}
}

// # Optional Auth Tests

func TestAccessChain_OptionalDowngradesFailures(t *testing.T) {
	resolver := &stubResolver{sessions: map[string]*sec.Principal{
		"goodtoken": customerPrincipal("user-1"),
	}}
	chain := middleware.OptionalCustomer(&stubVerifier{}, resolver)

	// No credential: anonymous pass-through.
	var seen *sec.Principal
	request := httptest.NewRequest(http.MethodGet, "/outlets", nil)
	recorder := httptest.NewRecorder()
	chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)

	// Broken credential: still anonymous, never 401.
	request = httptest.NewRequest(http.MethodGet, "/outlets", nil)
	request.Header.Set("Authorization", "Bearer unknown-session")
	recorder = httptest.NewRecorder()
	chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Nil(t, seen)

	// Valid credential: the principal rides along.
	request = httptest.NewRequest(http.MethodGet, "/outlets", nil)
	request.Header.Set("Authorization", "Bearer goodtoken")
	recorder = httptest.NewRecorder()
	chain(echoHandler(t, &seen)).ServeHTTP(recorder, request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "user-1", seen.UserID)
}

// # Infrastructure Failure Tests

func TestAccessChain_InfrastructureFailureIs500(t *testing.T) {
	verifier := &stubVerifier{claims: map[string]*sec.Claims{
		signedToken: {UserID: "user-1", Kind: sec.KindAccess},
	}}
	resolver := &stubResolver{loadErr: errors.New("pgx: connection refused")}

	var seen *sec.Principal
	request := httptest.NewRequest(http.MethodGet, "/orders", nil)
	request.Header.Set("Authorization", "Bearer "+signedToken)
	recorder := httptest.NewRecorder()

	middleware.RequireCustomer(verifier, resolver)(echoHandler(t, &seen)).ServeHTTP(recorder, request)

	// A database fault must never read as "please sign in again".
	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	envelope := decodeErrorEnvelope(t, recorder)
	assert.False(t, envelope.Success)
	assert.NotContains(t, envelope.Message, "connection refused")
}
