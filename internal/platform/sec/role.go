// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package sec

// # User Roles

// Role represents the authorization class granted to an account.
//
// Roles are disjoint: an admin is not a vendor, a vendor is not a customer.
// Route gating always checks for an exact role, never a hierarchy.
type Role string

const (
	// Platform operations staff with unrestricted access
	RoleAdmin Role = "admin"

	// Restaurant operators managing outlets, menus, and incoming orders
	RoleVendor Role = "vendor"

	// Default role for ordering end-users
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known account roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleVendor, RoleCustomer:
		return true
	}
	return false
}

// # Vendor Approval States

// VendorStatus is the approval state of a vendor profile.
//
// The state machine is driven exclusively by admin actions:
//
//	pending   -> approved | rejected
//	approved  -> suspended
//	suspended -> approved   (reinstatement)
//
// No self-service transition exists. Rejected is terminal.
type VendorStatus string

const (
	// VendorStatusNone marks a principal that has no vendor profile at all.
	VendorStatusNone VendorStatus = ""

	// VendorStatusPending means the application awaits admin review.
	VendorStatusPending VendorStatus = "pending"

	// VendorStatusApproved unlocks every vendor-scoped operation.
	VendorStatusApproved VendorStatus = "approved"

	// VendorStatusRejected blocks the vendor permanently.
	VendorStatusRejected VendorStatus = "rejected"

	// VendorStatusSuspended blocks vendor operations until an admin reinstates.
	VendorStatusSuspended VendorStatus = "suspended"
)

// Valid reports whether the status is a known vendor profile state.
func (s VendorStatus) Valid() bool {
	switch s {
	case VendorStatusPending, VendorStatusApproved, VendorStatusRejected, VendorStatusSuspended:
		return true
	}
	return false
}

// CanTransitionTo reports whether an admin may move a profile from the
// current status to the target status.
func (s VendorStatus) CanTransitionTo(target VendorStatus) bool {
	switch s {
	case VendorStatusPending:
		return target == VendorStatusApproved || target == VendorStatusRejected
	case VendorStatusApproved:
		return target == VendorStatusSuspended
	case VendorStatusSuspended:
		return target == VendorStatusApproved
	}
	return false
}
