// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package sec

import (
	"github.com/mealgrid/mealgrid/internal/platform/apperr"
)

// # Role & Status Gates
//
// Pure allow/deny decisions over a loaded [Principal]. No I/O: every fact a
// gate needs (active flag, role, vendor status) is loaded by the identity
// resolver before the gate runs. Each gate returns nil or one specific
// [apperr.AppError] so the HTTP layer maps failures to exact status codes.

// RequireActive denies principals whose underlying account is deactivated.
func RequireActive(principal *Principal) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if !principal.IsActive {
		return apperr.AccountInactive()
	}
	return nil
}

// RequireRole denies principals whose role is not exactly the required one.
//
// Roles are disjoint; an admin does not implicitly pass a vendor gate.
func RequireRole(principal *Principal, role Role) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if principal.Role != role {
		return apperr.WrongRole()
	}
	return nil
}

// RequireVendorApproved denies every vendor whose profile status is not
// exactly approved.
//
// Pending is surfaced distinctly ("awaiting approval") from the blocking
// rejected/suspended states, which carry the admin-supplied reason if one
// was recorded.
func RequireVendorApproved(principal *Principal) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if principal.VendorStatus == VendorStatusApproved {
		return nil
	}
	return apperr.VendorNotApproved(string(principal.VendorStatus), principal.VendorStatusReason)
}

// RequireVendorAuthenticated admits any active vendor that has not been
// rejected, including pending and suspended ones.
//
// This relaxed gate exists solely so a vendor can reach their own
// status/pending screen. It must never guard a state-mutating vendor route.
func RequireVendorAuthenticated(principal *Principal) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if principal.VendorStatus == VendorStatusRejected {
		return apperr.VendorNotApproved(string(principal.VendorStatus), principal.VendorStatusReason)
	}
	if principal.VendorStatus == VendorStatusNone {
		return apperr.WrongRole()
	}
	return nil
}

// # Ownership Gate

// Owned is implemented by every resource subject to the ownership gate.
//
// The owner-field mapping is explicit per resource type (Order exposes its
// customer, Outlet its vendor); nothing is inferred from type names at runtime.
type Owned interface {
	OwnerID() string
}

// RequireOwnerOrAdmin denies principals acting on a resource they do not own.
//
// Admin principals always pass. Callers must look the resource up first
// (yielding 404 for a missing resource) and gate only what exists, so a
// Forbidden can never mask a NotFound.
func RequireOwnerOrAdmin(principal *Principal, resource Owned) error {
	if principal == nil {
		return apperr.Unauthorized("Authentication required")
	}
	if principal.IsAdmin() {
		return nil
	}
	if principal.UserID != resource.OwnerID() {
		return apperr.Forbidden("You do not have access to this resource")
	}
	return nil
}
