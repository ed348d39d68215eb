// Copyright (c) 2026 MealGrid. All rights reserved.
// Author: platform@mealgrid.app

package profile

import (
	"context"

	"github.com/mealgrid/mealgrid/internal/platform/sec"
)

// # Profile Data Access

// ProfileRepository defines the data access contract for vendor profiles.
type ProfileRepository interface {

	/*
		Create persists a brand-new vendor application.

		Parameters:
		  - context: context.Context
		  - profile: *VendorProfile

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, profile *VendorProfile) error

	/*
		FindByID returns the profile with the given ID.

		Parameters:
		  - context: context.Context
		  - id: string

		Returns:
		  - *VendorProfile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByID(context context.Context, id string) (*VendorProfile, error)

	/*
		FindByUserID returns the profile belonging to the given account.

		Parameters:
		  - context: context.Context
		  - userID: string

		Returns:
		  - *VendorProfile: Hydrated entity
		  - error: apperr.NotFound or database retrieval failures
	*/
	FindByUserID(context context.Context, userID string) (*VendorProfile, error)

	/*
		List returns profiles filtered by status (empty status = all),
		newest applications first.

		Parameters:
		  - context: context.Context
		  - status: sec.VendorStatus
		  - limit: int
		  - offset: int

		Returns:
		  - []*VendorProfile: Matched profiles
		  - int: Total match count
		  - error: Database retrieval failures
	*/
	List(context context.Context, status sec.VendorStatus, limit, offset int) ([]*VendorProfile, int, error)

	/*
		UpdateStatus records a reviewed transition on the profile row.

		Parameters:
		  - context: context.Context
		  - profile: *VendorProfile (Status, StatusReason, ReviewedBy, ReviewedAt already set)

		Returns:
		  - error: Persistence failures
	*/
	UpdateStatus(context context.Context, profile *VendorProfile) error
}

// RoleUpdater is the slice of the account repository this service needs to
// promote an applicant to the vendor role.
type RoleUpdater interface {
	UpdateRole(context context.Context, userID string, role sec.Role) error
}

// SessionInvalidator kills a user's opaque sessions after a suspension so a
// suspended vendor cannot keep mutating through an old credential.
type SessionInvalidator interface {
	InvalidateAll(context context.Context, userID string) error
}
