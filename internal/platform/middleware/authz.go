// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

// Package middleware provides the HTTP middleware chain for the MealGrid API server.
//
// # Access Control
//
// This file implements the single parameterized access chain that guards
// every protected route class (customer, vendor, admin). One chain replaces
// three near-identical per-role middleware sets: the role requirement, the
// vendor-status requirement, and the credential transports are configuration,
// not copies.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/constants"
	"github.com/mealgrid/mealgrid/internal/platform/ctxutil"
	"github.com/mealgrid/mealgrid/internal/platform/respond"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # Contracts

// TokenVerifier defines the interface needed to verify signed credentials.
//
// # Why an interface?
//
// Defining TokenVerifier here decouples the middleware from [sec.TokenCodec],
// allowing us to inject stubs during unit testing.
type TokenVerifier interface {
	Verify(tokenString string, kind sec.TokenKind) (*sec.Claims, error)
}

// IdentityResolver turns a validated credential into a [sec.Principal].
//
// LoadPrincipal serves the signed-token path (subject id from JWT claims);
// ValidateSession serves the opaque-token path (server-tracked session lookup,
// which also touches the session's last-seen timestamp).
type IdentityResolver interface {
	LoadPrincipal(ctx context.Context, userID string) (*sec.Principal, error)
	ValidateSession(ctx context.Context, token string) (*sec.Principal, error)
}

// # Chain Configuration

// VendorRequirement selects the vendor-status gate applied after the role gate.
type VendorRequirement int

const (
	// VendorNotRequired skips the vendor-status gate entirely.
	VendorNotRequired VendorRequirement = iota

	// VendorApproved admits only vendors whose profile status is exactly "approved".
	// Every state-mutating vendor route uses this.
	VendorApproved

	// VendorAuthenticated admits any active, non-rejected vendor (including
	// pending and suspended). Status-screen routes only.
	VendorAuthenticated
)

// ChainConfig parameterizes one instantiation of the access chain.
type ChainConfig struct {
	// Role is the exact role required. Empty admits any authenticated role.
	Role sec.Role

	// Vendor is the vendor-status requirement layered on top of the role gate.
	Vendor VendorRequirement

	// AllowQueryToken enables the `?token=` fallback (customer routes only).
	AllowQueryToken bool

	// AllowCookieToken enables the auth_token cookie fallback (customer routes only).
	AllowCookieToken bool

	// Optional converts every authentication failure into an anonymous pass-through
	// instead of a rejection, for routes with degraded anonymous behavior.
	Optional bool
}

// # The Access Chain

// AccessChain composes credential validation, identity loading, and the
// role/status gates into a single request-time decision.
//
// # Flow
//
//  1. Extract the bearer credential (header, then query, then cookie, as configured).
//  2. Route it by shape: two dots means a signed JWT for the [TokenVerifier],
//     anything else is an opaque session token for the [IdentityResolver].
//  3. Load the principal and run RequireActive, RequireRole, and the vendor gate.
//  4. Inject the principal into the request context, or reject with the stage's
//     specific error. Failed stages short-circuit; later stages never run.
func AccessChain(verifier TokenVerifier, identities IdentityResolver, cfg ChainConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			principal, err := resolvePrincipal(verifier, identities, cfg, request)
			if err != nil {
				if cfg.Optional {
					// Degrade to anonymous: the handler sees no principal.
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, err)
				return
			}

			if err := runGates(principal, cfg); err != nil {
				if cfg.Optional {
					next.ServeHTTP(writer, request)
					return
				}
				respond.Error(writer, request, err)
				return
			}

			ctx := ctxutil.WithPrincipal(request.Context(), principal)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// resolvePrincipal validates the transported credential and loads the identity.
func resolvePrincipal(verifier TokenVerifier, identities IdentityResolver, cfg ChainConfig, request *http.Request) (*sec.Principal, error) {

	token, err := extractToken(request, cfg)
	if err != nil {
		return nil, err
	}

	// Opaque session tokens have no dots; signed JWTs always have two.
	if !isSignedToken(token) {
		return identities.ValidateSession(request.Context(), token)
	}

	claims, err := verifier.Verify(token, sec.KindAccess)
	if err != nil {
		switch {
		case errors.Is(err, sec.ErrTokenExpired):
			return nil, apperr.TokenExpired()
		default:
			// Malformed, bad signature, wrong kind: deliberately indistinct.
			return nil, apperr.Unauthorized("Invalid token")
		}
	}

	return identities.LoadPrincipal(request.Context(), claims.UserID)
}

// runGates applies the role/status gates in order. First failure wins.
func runGates(principal *sec.Principal, cfg ChainConfig) error {
	if err := sec.RequireActive(principal); err != nil {
		return err
	}

	if cfg.Role != "" {
		if err := sec.RequireRole(principal, cfg.Role); err != nil {
			return err
		}
	}

	switch cfg.Vendor {
	case VendorApproved:
		return sec.RequireVendorApproved(principal)
	case VendorAuthenticated:
		return sec.RequireVendorAuthenticated(principal)
	}

	return nil
}

// extractToken pulls the bearer credential from the request.
//
// Precedence: Authorization header, then `?token=`, then the auth_token
// cookie — fallbacks only where the chain configuration enables them.
func extractToken(request *http.Request, cfg ChainConfig) (string, error) {

	if header := request.Header.Get(constants.HeaderAuthorization); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			return "", apperr.Unauthorized("Invalid authorization format")
		}
		return parts[1], nil
	}

	if cfg.AllowQueryToken {
		if token := request.URL.Query().Get(constants.QueryTokenParam); token != "" {
			return token, nil
		}
	}

	if cfg.AllowCookieToken {
		if cookie, err := request.Cookie(constants.AuthTokenCookieName); err == nil && cookie.Value != "" {
			return cookie.Value, nil
		}
	}

	return "", apperr.Unauthorized("Authentication required")
}

// isSignedToken reports whether the credential is shaped like a compact JWS.
func isSignedToken(token string) bool {
	return strings.Count(token, ".") == 2
}

// # Route-Class Presets

// RequireCustomer guards customer routes. Customers may carry the credential
// in the header, the query string, or the auth cookie.
func RequireCustomer(verifier TokenVerifier, identities IdentityResolver) func(http.Handler) http.Handler {
	return AccessChain(verifier, identities, ChainConfig{
		Role:             sec.RoleCustomer,
		AllowQueryToken:  true,
		AllowCookieToken: true,
	})
}

// OptionalCustomer guards public routes with degraded anonymous behavior.
// Any credential failure yields an anonymous request, never a rejection.
func OptionalCustomer(verifier TokenVerifier, identities IdentityResolver) func(http.Handler) http.Handler {
	return AccessChain(verifier, identities, ChainConfig{
		AllowQueryToken:  true,
		AllowCookieToken: true,
		Optional:         true,
	})
}

// RequireApprovedVendor guards state-mutating vendor routes. Header transport only.
func RequireApprovedVendor(verifier TokenVerifier, identities IdentityResolver) func(http.Handler) http.Handler {
	return AccessChain(verifier, identities, ChainConfig{
		Role:   sec.RoleVendor,
		Vendor: VendorApproved,
	})
}

// RequireVendorStatusScreen guards the vendor status/pending view. It admits
// pending and suspended vendors so they can see where their application stands.
func RequireVendorStatusScreen(verifier TokenVerifier, identities IdentityResolver) func(http.Handler) http.Handler {
	return AccessChain(verifier, identities, ChainConfig{
		Role:   sec.RoleVendor,
		Vendor: VendorAuthenticated,
	})
}

// RequireAdmin guards admin routes. Header transport only.
func RequireAdmin(verifier TokenVerifier, identities IdentityResolver) func(http.Handler) http.Handler {
	return AccessChain(verifier, identities, ChainConfig{
		Role: sec.RoleAdmin,
	})
}

// RequireAuthenticated guards routes open to any signed-in role (e.g. the
// shared session-management endpoints).
func RequireAuthenticated(verifier TokenVerifier, identities IdentityResolver) func(http.Handler) http.Handler {
	return AccessChain(verifier, identities, ChainConfig{})
}
