// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package sec

// # Authenticated Principal

// Principal is the authenticated identity attached to a request after the
// access chain succeeds.
//
// It is created per request by the middleware chain, never persisted, and
// discarded at request end. For vendor accounts the approval status (and the
// admin-supplied reason, if any) is loaded eagerly so that downstream gates
// never need another database read.
type Principal struct {
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
	IsActive bool   `json:"is_active"`

	// VendorStatus is VendorStatusNone for non-vendor accounts.
	VendorStatus VendorStatus `json:"vendor_status,omitempty"`

	// VendorStatusReason is the admin-supplied note attached to a rejection
	// or suspension. Empty otherwise.
	VendorStatusReason string `json:"-"`
}

// IsAdmin reports whether the principal has the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// IsVendor reports whether the principal has the vendor role.
func (p *Principal) IsVendor() bool {
	return p != nil && p.Role == RoleVendor
}
