// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mealgrid/mealgrid/internal/platform/apperr"
	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// ownedResource is a minimal Owned implementation for gate tests.
type ownedResource struct {
	owner string
}

func (r ownedResource) OwnerID() string { return r.owner }

func activeCustomer(id string) *sec.Principal {
	return &sec.Principal{UserID: id, Role: sec.RoleCustomer, IsActive: true}
}

func activeAdmin(id string) *sec.Principal {
	return &sec.Principal{UserID: id, Role: sec.RoleAdmin, IsActive: true}
}

func activeVendor(id string, status sec.VendorStatus, reason string) *sec.Principal {
	return &sec.Principal{
		UserID:             id,
		Role:               sec.RoleVendor,
		IsActive:           true,
		VendorStatus:       status,
		VendorStatusReason: reason,
	}
}

/*
TestRequireActive verifies the active-account gate.
*/
func TestRequireActive(t *testing.T) {
	assert.NoError(t, sec.RequireActive(activeCustomer("user-1")))

	inactive := activeCustomer("user-1")
	inactive.IsActive = false

	err := sec.RequireActive(inactive)
	require.Error(t, err)
	assert.Equal(t, "ACCOUNT_INACTIVE", apperr.As(err).Code)

	err = sec.RequireActive(nil)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperr.As(err).Code)
}

/*
TestRequireRole verifies exact-role matching with no hierarchy.
*/
func TestRequireRole(t *testing.T) {
	assert.NoError(t, sec.RequireRole(activeCustomer("user-1"), sec.RoleCustomer))

	// Admin does NOT implicitly pass a vendor-role check.
	err := sec.RequireRole(activeAdmin("admin-1"), sec.RoleVendor)
	require.Error(t, err)
	assert.Equal(t, "WRONG_ROLE", apperr.As(err).Code)

	err = sec.RequireRole(activeCustomer("user-1"), sec.RoleAdmin)
	require.Error(t, err)
	assert.Equal(t, "WRONG_ROLE", apperr.As(err).Code)
}

/*
TestRequireVendorApproved verifies the strict vendor-status gate,
including the status and reason carried on the rejection.
*/
func TestRequireVendorApproved(t *testing.T) {
	tests := []struct {
		name       string
		status     sec.VendorStatus
		reason     string
		allowed    bool
		wantStatus string
	}{
		{"approved_allowed", sec.VendorStatusApproved, "", true, ""},
		{"pending_blocked", sec.VendorStatusPending, "", false, "pending"},
		{"rejected_blocked", sec.VendorStatusRejected, "incomplete documents", false, "rejected"},
		{"suspended_blocked", sec.VendorStatusSuspended, "hygiene violation", false, "suspended"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sec.RequireVendorApproved(activeVendor("vendor-1", tt.status, tt.reason))

			if tt.allowed {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VENDOR_NOT_APPROVED", appError.Code)
			assert.Equal(t, tt.wantStatus, appError.VendorStatus)
			if tt.reason != "" {
				assert.Contains(t, appError.Message, tt.reason)
			}
		})
	}
}

/*
TestRequireVendorAuthenticated verifies the relaxed status-screen gate:
pending and suspended vendors pass, rejected vendors do not.
*/
func TestRequireVendorAuthenticated(t *testing.T) {
	assert.NoError(t, sec.RequireVendorAuthenticated(activeVendor("v", sec.VendorStatusPending, "")))
	assert.NoError(t, sec.RequireVendorAuthenticated(activeVendor("v", sec.VendorStatusSuspended, "")))
	assert.NoError(t, sec.RequireVendorAuthenticated(activeVendor("v", sec.VendorStatusApproved, "")))

	err := sec.RequireVendorAuthenticated(activeVendor("v", sec.VendorStatusRejected, ""))
	require.Error(t, err)
	assert.Equal(t, "VENDOR_NOT_APPROVED", apperr.As(err).Code)

	// A principal without any vendor profile never passes.
	err = sec.RequireVendorAuthenticated(activeCustomer("user-1"))
	require.Error(t, err)
	assert.Equal(t, "WRONG_ROLE", apperr.As(err).Code)
}

/*
TestRequireOwnerOrAdmin verifies the ownership gate: owner passes,
strangers are forbidden, admins always pass.
*/
func TestRequireOwnerOrAdmin(t *testing.T) {
	resource := ownedResource{owner: "user-a"}

	assert.NoError(t, sec.RequireOwnerOrAdmin(activeCustomer("user-a"), resource))
	assert.NoError(t, sec.RequireOwnerOrAdmin(activeAdmin("admin-1"), resource))

	err := sec.RequireOwnerOrAdmin(activeCustomer("user-b"), resource)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperr.As(err).Code)
}
